package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Nithin3003/cloud-share-it/internal/application/ports"
	"github.com/Nithin3003/cloud-share-it/internal/infrastructure/jwt"
)

const (
	CtxUserID   = "userID"
	CtxTokenID  = "tokenID"
	CtxTokenExp = "tokenExp"
)

// AuthMiddleware accepts a bearer token that is validly signed, unexpired and not
// revoked. sessions may be nil to skip the revocation check.
func AuthMiddleware(jwtService *jwt.Service, sessions ports.SessionStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "missing Authorization header"},
			)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "invalid token format"},
			)
			return
		}

		claims, err := jwtService.ValidateToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "invalid token"},
			)
			return
		}
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "invalid token"},
			)
			return
		}

		if sessions != nil && claims.ID != "" {
			revoked, err := sessions.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				logger.Error("IsRevoked() error", zap.Error(err))
				c.AbortWithStatusJSON(
					http.StatusServiceUnavailable,
					gin.H{"error": "session store unavailable"},
				)
				return
			}
			if revoked {
				c.AbortWithStatusJSON(
					http.StatusUnauthorized,
					gin.H{"error": "token revoked"},
				)
				return
			}
		}

		c.Set(CtxUserID, userID)
		c.Set(CtxTokenID, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(CtxTokenExp, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// UserID returns the principal set by AuthMiddleware, or uuid.Nil.
func UserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(CtxUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

func TokenID(c *gin.Context) (string, time.Time) {
	exp, _ := c.Get(CtxTokenExp)
	t, _ := exp.(time.Time)
	return c.GetString(CtxTokenID), t
}
