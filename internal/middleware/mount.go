package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/sitesafe-learn/internal/response"
	"github.com/stemsi/sitesafe-learn/internal/service"
)

const (
	// ContextKeyMount is the Gin context key for mount ticket claims.
	ContextKeyMount = "mount"
)

// RequireMount validates a mount ticket from the Authorization header or the
// ?token= query param. The query fallback serves WebSocket upgrades, which
// cannot send headers from the browser.
func RequireMount(mounts *service.MountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractTicket(c)
		if token == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTicketRequired)
			return
		}

		claims, err := mounts.ParseTicket(token)
		if err != nil {
			if errors.Is(err, service.ErrMountExpired) {
				response.AbortFail(c, http.StatusGone, response.ErrMountExpired)
				return
			}
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTicketInvalid)
			return
		}

		c.Set(ContextKeyMount, claims)
		c.Next()
	}
}

// GetMount retrieves the mount claims from the Gin context.
func GetMount(c *gin.Context) *service.MountClaims {
	val, exists := c.Get(ContextKeyMount)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.MountClaims)
	if !ok {
		return nil
	}
	return claims
}

func extractTicket(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Query("token")
}
