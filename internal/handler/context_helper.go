package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tkt-widget-api/internal/middleware"
	"github.com/noah-isme/tkt-widget-api/internal/models"
	appErrors "github.com/noah-isme/tkt-widget-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func userIDFromContext(c *gin.Context) (string, error) {
	claims := claimsFromContext(c)
	if claims == nil || claims.UserID == "" {
		return "", appErrors.ErrUnauthorized
	}
	return claims.UserID, nil
}
