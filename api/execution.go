package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/regulens/synapse_backend/models"
	"github.com/regulens/synapse_backend/utils"
	"github.com/regulens/synapse_backend/workflow"
)

// ExecuteRulesHandler queues a profiling run for an approved rule version and
// launches it in the background.
func ExecuteRulesHandler(runner *workflow.RuleRunner) gin.HandlerFunc {
	return func(c *gin.Context) {
		versionId := c.Param("versionId")
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())

		job, err := models.CreateRuleExecutionJob(c.Request.Context(), versionId, userId)
		if err != nil {
			respondError(c, "api", "ExecuteRulesHandler", err)
			return
		}

		// run detached from the request lifetime
		go runner.ExecuteJob(context.Background(), job.ID)

		respondCreated(c, "execution queued", job)
	}
}

func GetJobHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		job, err := models.GetRuleExecutionJob(c.Request.Context(), c.Param("jobId"))
		if err != nil {
			respondError(c, "api", "GetJobHandler", err)
			return
		}
		respondOK(c, "", job)
	}
}

func ListJobsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		jobs, err := models.GetRuleExecutionJobs(c.Request.Context(), c.Param("versionId"))
		if err != nil {
			respondError(c, "api", "ListJobsHandler", err)
			return
		}
		respondOK(c, "", jobs)
	}
}

func ListJobResultsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := models.GetRuleExecutionResults(c.Request.Context(), c.Param("jobId"))
		if err != nil {
			respondError(c, "api", "ListJobResultsHandler", err)
			return
		}
		respondOK(c, "", results)
	}
}
