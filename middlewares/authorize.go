package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/regulens/synapse_backend/models"
	"github.com/regulens/synapse_backend/utils"
)

// Authorize gates a route on the policy table for one (resource, action).
// The role's allow-list is cached in redis; ClearPolicyCache drops it when
// the table changes between deploys.
func Authorize(resource models.Resource, action models.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := utils.GetUserRoleFromContext(c.Request.Context())
		if !ok || role == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			c.Abort()
			return
		}

		allowed, err := models.GetAllowedActionsCached(models.UserRole(role))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
			c.Abort()
			return
		}
		if !allowed[models.PolicyKey(resource, action)] {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}
