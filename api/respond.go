package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/regulens/synapse_backend/config"
	"github.com/regulens/synapse_backend/models"
	"github.com/regulens/synapse_backend/utils"
)

// Every endpoint answers the same envelope: success, message, data.

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func respondCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": message,
	})
}

// respondError maps domain errors onto status codes. Unexpected errors are
// logged with request context and surface as 500.
func respondError(c *gin.Context, module, funcName string, err error) {
	var businessErr *models.BusinessError
	switch {
	case errors.As(err, &businessErr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": businessErr.Error()})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "record not found"})
	default:
		correlationId, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		config.LogError(config.GetLogger(), module, funcName, "correlation_id", correlationId, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal server error"})
	}
}

func respondBindError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "validation failed",
			"errors":  utils.ProcessValidationErrors(err),
		})
		return
	}
	respondBadRequest(c, "invalid request body")
}

func pathInt(c *gin.Context, name string) (int, bool) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return value, true
}
