package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/swiftcab/swiftcab-backend/internal/engine"
	"github.com/swiftcab/swiftcab-backend/internal/services"
)

// GetStats returns the admin dashboard counters. The Redis cache is
// advisory: a miss or stale entry falls through to one snapshot read.
func GetStats(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if services.RedisClient != nil {
			if cached, err := services.GetCachedAdminStats(ctx); err == nil {
				c.JSON(200, cached)
				return
			}
		}

		stats, err := eng.GetStats(ctx)
		if err != nil {
			respondError(c, err)
			return
		}

		if services.RedisClient != nil {
			services.CacheAdminStats(ctx, stats)
		}

		c.JSON(200, stats)
	}
}
