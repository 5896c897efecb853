package stub

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthRequired resolves the bearer token to an active user and puts it in
// the request context. Responses copy FastAPI's security dependency: 401
// with WWW-Authenticate for anything the token is missing or wrong about,
// 400 for a deactivated account.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Header("WWW-Authenticate", "Bearer")
			detail(c, http.StatusUnauthorized, "Not authenticated")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.Header("WWW-Authenticate", "Bearer")
			detail(c, http.StatusUnauthorized, "Could not validate credentials")
			c.Abort()
			return
		}

		userID, _, err := h.Tokens.Parse(parts[1])
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			detail(c, http.StatusUnauthorized, "Could not validate credentials")
			c.Abort()
			return
		}

		user, err := h.Store.UserByID(c.Request.Context(), userID)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			detail(c, http.StatusUnauthorized, "Could not validate credentials")
			c.Abort()
			return
		}
		if !user.IsActive {
			detail(c, http.StatusBadRequest, "Inactive user")
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}
