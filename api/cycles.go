package api

import (
	"github.com/gin-gonic/gin"
	"github.com/regulens/synapse_backend/models"
	"github.com/regulens/synapse_backend/utils"
	"github.com/regulens/synapse_backend/workflow"
)

func CreateCycleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewTestCycle
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		cycle, err := models.CreateTestCycle(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "api", "CreateCycleHandler", err)
			return
		}
		respondCreated(c, "cycle created", cycle)
	}
}

func ListCyclesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		cycles, err := models.GetTestCycles(c.Request.Context())
		if err != nil {
			respondError(c, "api", "ListCyclesHandler", err)
			return
		}
		respondOK(c, "", cycles)
	}
}

func GetCycleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathInt(c, "id")
		if !ok {
			return
		}
		cycle, err := models.GetTestCycle(c.Request.Context(), id)
		if err != nil {
			respondError(c, "api", "GetCycleHandler", err)
			return
		}
		respondOK(c, "", cycle)
	}
}

func CreateReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		cycleId, ok := pathInt(c, "id")
		if !ok {
			return
		}
		var input models.NewReport
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		report, err := models.CreateReport(c.Request.Context(), cycleId, &input)
		if err != nil {
			respondError(c, "api", "CreateReportHandler", err)
			return
		}
		respondCreated(c, "report created", report)
	}
}

func ListReportsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		cycleId, ok := pathInt(c, "id")
		if !ok {
			return
		}
		reports, err := models.GetReportsByCycle(c.Request.Context(), cycleId)
		if err != nil {
			respondError(c, "api", "ListReportsHandler", err)
			return
		}
		respondOK(c, "", reports)
	}
}

// StartWorkflowHandler kicks off the 9-phase workflow for a report.
func StartWorkflowHandler(gateway workflow.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		cycleId, ok := pathInt(c, "id")
		if !ok {
			return
		}
		reportId, ok := pathInt(c, "reportId")
		if !ok {
			return
		}
		if err := utils.ValidateResourceId[models.Report](c.Request.Context(), reportId); err != nil {
			respondError(c, "api", "StartWorkflowHandler", err)
			return
		}
		workflowId, err := gateway.StartWorkflow(c.Request.Context(), cycleId, reportId)
		if err != nil {
			respondError(c, "api", "StartWorkflowHandler", err)
			return
		}
		respondCreated(c, "workflow started", gin.H{"workflow_id": workflowId})
	}
}

func ListPhasesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		cycleId, ok := pathInt(c, "id")
		if !ok {
			return
		}
		reportId, ok := pathInt(c, "reportId")
		if !ok {
			return
		}
		phases, err := models.GetPhases(c.Request.Context(), cycleId, reportId)
		if err != nil {
			respondError(c, "api", "ListPhasesHandler", err)
			return
		}
		respondOK(c, "", phases)
	}
}

// CompletePhaseHandler closes a non-versioned phase. The approval signal is
// queued through the outbox and the dispatcher advances the workflow.
func CompletePhaseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathInt(c, "id")
		if !ok {
			return
		}
		phase, err := models.CompletePhase(c.Request.Context(), id)
		if err != nil {
			respondError(c, "api", "CompletePhaseHandler", err)
			return
		}
		respondOK(c, "phase completion queued", phase)
	}
}

// WorkflowQueryHandler exposes the gateway's read-only queries.
func WorkflowQueryHandler(gateway workflow.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		cycleId, ok := pathInt(c, "id")
		if !ok {
			return
		}
		reportId, ok := pathInt(c, "reportId")
		if !ok {
			return
		}
		queryName := c.Param("query")
		result, err := gateway.Query(c.Request.Context(), cycleId, reportId, queryName)
		if err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		respondOK(c, "", result)
	}
}

func UniversalMetricsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		cycleId, ok := pathInt(c, "id")
		if !ok {
			return
		}
		reportId, ok := pathInt(c, "reportId")
		if !ok {
			return
		}
		metrics, err := models.GetUniversalMetrics(c.Request.Context(), cycleId, reportId)
		if err != nil {
			respondError(c, "api", "UniversalMetricsHandler", err)
			return
		}
		respondOK(c, "", metrics)
	}
}
