package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/swiftcab/swiftcab-backend/internal/engine"
)

// respondError translates the engine's error taxonomy into HTTP statuses:
// validation 400, not found 404, conflict 409, invalid transition 422,
// store failure 500.
func respondError(c *gin.Context, err error) {
	var (
		validationErr *engine.ValidationError
		notFoundErr   *engine.NotFoundError
		conflictErr   *engine.ConflictError
		transitionErr *engine.InvalidTransitionError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(400, gin.H{"error": validationErr.Message})
	case errors.As(err, &notFoundErr):
		c.JSON(404, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &conflictErr):
		c.JSON(409, gin.H{"error": conflictErr.Error()})
	case errors.As(err, &transitionErr):
		c.JSON(422, gin.H{
			"error": transitionErr.Error(),
			"from":  transitionErr.From,
			"to":    transitionErr.To,
		})
	default:
		c.JSON(500, gin.H{"error": "Internal server error"})
	}
}
