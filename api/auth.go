package api

import (
	"github.com/gin-gonic/gin"
	"github.com/regulens/synapse_backend/models"
	"github.com/regulens/synapse_backend/utils"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		info, err := models.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		respondOK(c, "login successful", info)
	}
}

func MeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, ok := utils.GetUserIdFromContext(c.Request.Context())
		if !ok {
			respondBadRequest(c, "unauthorized")
			return
		}
		user, err := models.GetUserById(c.Request.Context(), userId)
		if err != nil {
			respondError(c, "api", "MeHandler", err)
			return
		}
		user.PrepareGive()
		respondOK(c, "", user)
	}
}

func RegisterUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewUser
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		user, err := models.CreateUser(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "api", "RegisterUserHandler", err)
			return
		}
		respondCreated(c, "user created", user)
	}
}

func ListUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := models.GetUsers(c.Request.Context())
		if err != nil {
			respondError(c, "api", "ListUsersHandler", err)
			return
		}
		respondOK(c, "", users)
	}
}

type toggleActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func ToggleUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathInt(c, "id")
		if !ok {
			return
		}
		var req toggleActiveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		user, err := models.ToggleActiveUser(c.Request.Context(), id, *req.IsActive)
		if err != nil {
			respondError(c, "api", "ToggleUserHandler", err)
			return
		}
		respondOK(c, "user updated", user)
	}
}
