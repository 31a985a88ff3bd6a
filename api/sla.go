package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/regulens/synapse_backend/models"
)

func CreateSLAConfigHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.SLAConfig
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		cfg, err := models.CreateSLAConfig(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "api", "CreateSLAConfigHandler", err)
			return
		}
		respondCreated(c, "sla config created", cfg)
	}
}

func UpdateSLAConfigHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathInt(c, "id")
		if !ok {
			return
		}
		var req models.UpdateSLAConfigInput
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		cfg, err := models.UpdateSLAConfig(c.Request.Context(), id, &req)
		if err != nil {
			respondError(c, "api", "UpdateSLAConfigHandler", err)
			return
		}
		respondOK(c, "sla config updated", cfg)
	}
}

func ListSLAConfigsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		configs, err := models.GetSLAConfigs(c.Request.Context())
		if err != nil {
			respondError(c, "api", "ListSLAConfigsHandler", err)
			return
		}
		respondOK(c, "", configs)
	}
}

func CreateEscalationRuleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.EscalationRule
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		rule, err := models.CreateEscalationRule(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "api", "CreateEscalationRuleHandler", err)
			return
		}
		respondCreated(c, "escalation rule created", rule)
	}
}

func ListEscalationRulesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathInt(c, "id")
		if !ok {
			return
		}
		rules, err := models.GetEscalationRules(c.Request.Context(), id)
		if err != nil {
			respondError(c, "api", "ListEscalationRulesHandler", err)
			return
		}
		respondOK(c, "", rules)
	}
}

func ListSLATrackingsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		openOnly := c.Query("open") == "true"
		rows, err := models.GetSLATrackings(c.Request.Context(), openOnly)
		if err != nil {
			respondError(c, "api", "ListSLATrackingsHandler", err)
			return
		}
		respondOK(c, "", rows)
	}
}

func ListSLAViolationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		trackingId, ok := pathInt(c, "id")
		if !ok {
			return
		}
		violations, err := models.GetSLAViolations(c.Request.Context(), trackingId)
		if err != nil {
			respondError(c, "api", "ListSLAViolationsHandler", err)
			return
		}
		respondOK(c, "", violations)
	}
}

func ListAllSLAViolationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		violations, err := models.GetAllSLAViolations(c.Request.Context())
		if err != nil {
			respondError(c, "api", "ListAllSLAViolationsHandler", err)
			return
		}
		respondOK(c, "", violations)
	}
}

// CheckSLAHandler runs the escalation sweep on demand, same logic as the
// dispatcher's periodic sweep.
func CheckSLAHandler(notifier models.EscalationNotifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		fired, err := models.CheckSLAViolations(c.Request.Context(), time.Now(), notifier)
		if err != nil {
			respondError(c, "api", "CheckSLAHandler", err)
			return
		}
		respondOK(c, "sla check complete", gin.H{"escalations_fired": len(fired), "violations": fired})
	}
}
