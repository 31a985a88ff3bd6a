package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/regulens/synapse_backend/models"
	"github.com/regulens/synapse_backend/utils"
)

func CreateAssignmentHandler(notifier models.EscalationNotifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewUniversalAssignment
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		assignment, err := models.CreateUniversalAssignment(c.Request.Context(), userId, &input, notifier)
		if err != nil {
			respondError(c, "api", "CreateAssignmentHandler", err)
			return
		}
		respondCreated(c, "assignment created", assignment)
	}
}

func ListAssignmentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := utils.GetUserRoleFromContext(c.Request.Context())
		var phaseId *int
		if raw := c.Query("phase_id"); raw != "" {
			value, err := strconv.Atoi(raw)
			if err != nil {
				respondBadRequest(c, "invalid phase_id")
				return
			}
			phaseId = &value
		}
		assignments, err := models.GetAssignments(c.Request.Context(), models.UserRole(role), phaseId)
		if err != nil {
			respondError(c, "api", "ListAssignmentsHandler", err)
			return
		}
		respondOK(c, "", assignments)
	}
}

func AcknowledgeAssignmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathInt(c, "id")
		if !ok {
			return
		}
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		assignment, err := models.AcknowledgeAssignment(c.Request.Context(), id, userId)
		if err != nil {
			respondError(c, "api", "AcknowledgeAssignmentHandler", err)
			return
		}
		respondOK(c, "assignment acknowledged", assignment)
	}
}

type completeAssignmentRequest struct {
	Note string `json:"note"`
}

func CompleteAssignmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathInt(c, "id")
		if !ok {
			return
		}
		var req completeAssignmentRequest
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			respondBindError(c, err)
			return
		}
		assignment, err := models.CompleteAssignment(c.Request.Context(), id, req.Note)
		if err != nil {
			respondError(c, "api", "CompleteAssignmentHandler", err)
			return
		}
		respondOK(c, "assignment completed", assignment)
	}
}
