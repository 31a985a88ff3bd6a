package api

import (
	"github.com/gin-gonic/gin"
	"github.com/regulens/synapse_backend/middlewares"
	"github.com/regulens/synapse_backend/models"
	"github.com/regulens/synapse_backend/workflow"
)

// RegisterRoutes wires the REST surface. Route groups per versioned phase
// family share one generic handler set; everything else is flat.
func RegisterRoutes(r *gin.Engine, gateway workflow.Gateway, runner *workflow.RuleRunner, notifier models.EscalationNotifier) {

	r.POST("/api/login", LoginHandler())

	api := r.Group("/api")
	api.GET("/me", MeHandler())

	api.GET("/users",
		middlewares.Authorize(models.ResourceUsers, models.ActionRead), ListUsersHandler())
	api.POST("/users",
		middlewares.Authorize(models.ResourceUsers, models.ActionCreate), RegisterUserHandler())
	api.PATCH("/users/:id/active",
		middlewares.Authorize(models.ResourceUsers, models.ActionUpdate), ToggleUserHandler())

	api.POST("/cycles",
		middlewares.Authorize(models.ResourceCycles, models.ActionCreate), CreateCycleHandler())
	api.GET("/cycles",
		middlewares.Authorize(models.ResourceCycles, models.ActionRead), ListCyclesHandler())
	api.GET("/cycles/:id",
		middlewares.Authorize(models.ResourceCycles, models.ActionRead), GetCycleHandler())

	api.POST("/cycles/:id/reports",
		middlewares.Authorize(models.ResourceReports, models.ActionCreate), CreateReportHandler())
	api.GET("/cycles/:id/reports",
		middlewares.Authorize(models.ResourceReports, models.ActionRead), ListReportsHandler())

	api.POST("/cycles/:id/reports/:reportId/workflow",
		middlewares.Authorize(models.ResourcePhases, models.ActionCreate), StartWorkflowHandler(gateway))
	api.GET("/cycles/:id/reports/:reportId/phases",
		middlewares.Authorize(models.ResourcePhases, models.ActionRead), ListPhasesHandler())
	api.GET("/cycles/:id/reports/:reportId/query/:query",
		middlewares.Authorize(models.ResourcePhases, models.ActionRead), WorkflowQueryHandler(gateway))
	api.POST("/phases/:id/complete",
		middlewares.Authorize(models.ResourcePhases, models.ActionUpdate), CompletePhaseHandler())
	api.GET("/cycles/:id/reports/:reportId/metrics",
		middlewares.Authorize(models.ResourceMetrics, models.ActionRead), UniversalMetricsHandler())
	api.GET("/cycles/:id/reports/:reportId/finalization/export",
		middlewares.Authorize(models.ResourceReportFinal, models.ActionExport), ExportFinalizationHandler())

	registerVersionRoutes[models.ProfilingRuleVersion, models.ProfilingRule](
		api.Group("/profiling"),
		parseJSONItem((*models.NewProfilingRule).ToItem))
	registerVersionRoutes[models.ScopingVersion, models.ScopingDecision](
		api.Group("/scoping"),
		parseJSONItem((*models.NewScopingDecision).ToItem))
	registerVersionRoutes[models.SampleSelectionVersion, models.SampleRecord](
		api.Group("/sample-selection"),
		parseJSONItem((*models.NewSampleRecord).ToItem))
	registerVersionRoutes[models.ObservationVersion, models.ObservationItem](
		api.Group("/observations"),
		parseJSONItem((*models.NewObservationItem).ToItem))

	api.POST("/profiling/versions/:versionId/execute",
		middlewares.Authorize(models.ResourceExecution, models.ActionExecute), ExecuteRulesHandler(runner))
	api.GET("/profiling/versions/:versionId/jobs",
		middlewares.Authorize(models.ResourceExecution, models.ActionRead), ListJobsHandler())
	api.GET("/jobs/:jobId",
		middlewares.Authorize(models.ResourceExecution, models.ActionRead), GetJobHandler())
	api.GET("/jobs/:jobId/results",
		middlewares.Authorize(models.ResourceExecution, models.ActionRead), ListJobResultsHandler())

	api.POST("/sla/configs",
		middlewares.Authorize(models.ResourceSLA, models.ActionCreate), CreateSLAConfigHandler())
	api.GET("/sla/configs",
		middlewares.Authorize(models.ResourceSLA, models.ActionRead), ListSLAConfigsHandler())
	api.PATCH("/sla/configs/:id",
		middlewares.Authorize(models.ResourceSLA, models.ActionUpdate), UpdateSLAConfigHandler())
	api.POST("/sla/escalation-rules",
		middlewares.Authorize(models.ResourceSLA, models.ActionCreate), CreateEscalationRuleHandler())
	api.GET("/sla/configs/:id/escalation-rules",
		middlewares.Authorize(models.ResourceSLA, models.ActionRead), ListEscalationRulesHandler())
	api.GET("/sla/trackings",
		middlewares.Authorize(models.ResourceSLA, models.ActionRead), ListSLATrackingsHandler())
	api.GET("/sla/trackings/:id/violations",
		middlewares.Authorize(models.ResourceSLA, models.ActionRead), ListSLAViolationsHandler())
	api.GET("/sla/violations",
		middlewares.Authorize(models.ResourceSLA, models.ActionRead), ListAllSLAViolationsHandler())
	api.POST("/sla/check",
		middlewares.Authorize(models.ResourceSLA, models.ActionUpdate), CheckSLAHandler(notifier))

	api.POST("/assignments",
		middlewares.Authorize(models.ResourceAssignments, models.ActionCreate), CreateAssignmentHandler(notifier))
	api.GET("/assignments",
		middlewares.Authorize(models.ResourceAssignments, models.ActionRead), ListAssignmentsHandler())
	api.POST("/assignments/:id/acknowledge",
		middlewares.Authorize(models.ResourceAssignments, models.ActionUpdate), AcknowledgeAssignmentHandler())
	api.POST("/assignments/:id/complete",
		middlewares.Authorize(models.ResourceAssignments, models.ActionUpdate), CompleteAssignmentHandler())
}
