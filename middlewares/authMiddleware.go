package middlewares

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/regulens/synapse_backend/models"
	"github.com/regulens/synapse_backend/utils"
	"gorm.io/gorm"
)

type authString string

// AuthMiddleware parses the bearer token when present. Requests without a
// token pass through; Authorize rejects them on protected routes.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")

		if auth == "" {
			c.Next()
			return
		}

		bearer := "Bearer "
		if len(auth) <= len(bearer) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			c.Abort()
			return
		}
		auth = auth[len(bearer):]

		validate, err := utils.JwtValidate(auth)
		if err != nil || !validate.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			c.Abort()
			return
		}

		customClaim, _ := validate.Claims.(*utils.JwtCustomClaim)

		user, err := models.GetUserById(c.Request.Context(), customClaim.ID)
		if err != nil {
			if err == utils.ErrorRecordNotFound || err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
			}
			c.Abort()
			return
		}
		if !*user.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "user is disabled"})
			c.Abort()
			return
		}

		ctx := context.WithValue(c.Request.Context(), authString("auth"), customClaim)
		ctx = utils.SetTokenInContext(ctx, auth)
		ctx = utils.SetUsernameInContext(ctx, user.Username)
		ctx = utils.SetUserIdInContext(ctx, user.ID)
		ctx = utils.SetUserNameInContext(ctx, user.Name)
		ctx = utils.SetUserRoleInContext(ctx, string(user.Role))
		ctx = utils.SetIsAdminInContext(ctx, user.Role == models.UserRoleAdmin)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func CtxValue(ctx context.Context) *utils.JwtCustomClaim {
	raw, _ := ctx.Value(authString("auth")).(*utils.JwtCustomClaim)
	return raw
}
