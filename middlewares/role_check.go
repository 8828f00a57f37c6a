package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/smartmenu-api/utils"
)

// RequireRoles must run after AuthMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[strings.ToLower(r)] = true
	}

	return func(c *gin.Context) {
		role := strings.ToLower(c.GetString(CtxRole))
		if role == "" {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}
		if !allowed[role] {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("role %s may not perform this action", role))
			c.Abort()
			return
		}
		c.Next()
	}
}
