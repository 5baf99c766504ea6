package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/swiftcab/swiftcab-backend/internal/services"
)

// WebSocketHandler upgrades dashboard connections to the live feed
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		role := c.GetString("role")

		services.HandleWebSocket(hub, c.Writer, c.Request, userId, role)
	}
}
