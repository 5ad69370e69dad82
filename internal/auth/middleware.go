package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserHeader carries the acting user's ID. The gateway sets it after authenticating the caller.
const UserHeader = "X-Sharer-User-Id"

// UserRequired is a Gin middleware that requires a well-formed X-Sharer-User-Id header.
// It does not check that the user exists; services do that where it matters.
func UserRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader(UserHeader))
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing " + UserHeader + " header",
			})
			return
		}

		id, err := uuid.Parse(header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "invalid " + UserHeader + " header",
			})
			return
		}

		// Store the canonical form so comparisons with DB ids are exact.
		c.Set(userIDKey, id.String())

		c.Next()
	}
}
