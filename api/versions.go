package api

import (
	"github.com/gin-gonic/gin"
	"github.com/regulens/synapse_backend/middlewares"
	"github.com/regulens/synapse_backend/models"
)

// One route set serves all four versioned phase families; only the item
// payload differs, supplied by parseItem per family.

type createVersionRequest struct {
	ParentVersionId *string `json:"parent_version_id"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type reasonRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type decisionRequest struct {
	Decision models.Decision `json:"decision" binding:"required"`
	Notes    string          `json:"notes"`
}

func registerVersionRoutes[V any, I any, PV models.VersionPtr[V], PI models.ItemPtr[I]](
	rg *gin.RouterGroup,
	parseItem func(c *gin.Context) (*I, error),
) {
	rg.POST("/phases/:phaseId/versions",
		middlewares.Authorize(models.ResourceVersions, models.ActionCreate),
		func(c *gin.Context) {
			phaseId, ok := pathInt(c, "phaseId")
			if !ok {
				return
			}
			var req createVersionRequest
			if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
				respondBindError(c, err)
				return
			}
			version, err := models.CreateVersion[V, I, PV, PI](c.Request.Context(), phaseId, req.ParentVersionId)
			if err != nil {
				respondError(c, "api", "CreateVersion", err)
				return
			}
			respondCreated(c, "version created", version)
		})

	rg.GET("/phases/:phaseId/versions",
		middlewares.Authorize(models.ResourceVersions, models.ActionRead),
		func(c *gin.Context) {
			phaseId, ok := pathInt(c, "phaseId")
			if !ok {
				return
			}
			versions, err := models.ListVersions[V, PV](c.Request.Context(), phaseId)
			if err != nil {
				respondError(c, "api", "ListVersions", err)
				return
			}
			respondOK(c, "", versions)
		})

	rg.GET("/phases/:phaseId/versions/current",
		middlewares.Authorize(models.ResourceVersions, models.ActionRead),
		func(c *gin.Context) {
			phaseId, ok := pathInt(c, "phaseId")
			if !ok {
				return
			}
			version, err := models.GetCurrentVersion[V, PV](c.Request.Context(), phaseId)
			if err != nil {
				respondError(c, "api", "GetCurrentVersion", err)
				return
			}
			respondOK(c, "", version)
		})

	rg.GET("/versions/:versionId",
		middlewares.Authorize(models.ResourceVersions, models.ActionRead),
		func(c *gin.Context) {
			version, err := models.GetVersion[V, PV](c.Request.Context(), c.Param("versionId"))
			if err != nil {
				respondError(c, "api", "GetVersion", err)
				return
			}
			respondOK(c, "", version)
		})

	rg.GET("/versions/:versionId/history",
		middlewares.Authorize(models.ResourceVersions, models.ActionRead),
		func(c *gin.Context) {
			histories, err := models.ListVersionHistory[V, PV](c.Request.Context(), c.Param("versionId"))
			if err != nil {
				respondError(c, "api", "ListVersionHistory", err)
				return
			}
			respondOK(c, "", histories)
		})

	rg.GET("/versions/:versionId/items",
		middlewares.Authorize(models.ResourceVersions, models.ActionRead),
		func(c *gin.Context) {
			items, err := models.ListVersionItems[I, PI](c.Request.Context(), c.Param("versionId"))
			if err != nil {
				respondError(c, "api", "ListVersionItems", err)
				return
			}
			respondOK(c, "", items)
		})

	rg.POST("/versions/:versionId/items",
		middlewares.Authorize(models.ResourceVersions, models.ActionUpdate),
		func(c *gin.Context) {
			item, err := parseItem(c)
			if err != nil {
				respondBadRequest(c, err.Error())
				return
			}
			if item == nil {
				// parseItem already responded
				return
			}
			created, err := models.AddVersionItem[V, I, PV, PI](c.Request.Context(), c.Param("versionId"), item)
			if err != nil {
				respondError(c, "api", "AddVersionItem", err)
				return
			}
			respondCreated(c, "item added", created)
		})

	rg.PATCH("/items/:itemId",
		middlewares.Authorize(models.ResourceVersions, models.ActionUpdate),
		func(c *gin.Context) {
			var updates map[string]interface{}
			if err := c.ShouldBindJSON(&updates); err != nil {
				respondBindError(c, err)
				return
			}
			item, err := models.UpdateVersionItem[V, I, PV, PI](c.Request.Context(), c.Param("itemId"), updates)
			if err != nil {
				respondError(c, "api", "UpdateVersionItem", err)
				return
			}
			respondOK(c, "item updated", item)
		})

	rg.DELETE("/items/:itemId",
		middlewares.Authorize(models.ResourceVersions, models.ActionDelete),
		func(c *gin.Context) {
			if err := models.DeleteVersionItem[V, I, PV, PI](c.Request.Context(), c.Param("itemId")); err != nil {
				respondError(c, "api", "DeleteVersionItem", err)
				return
			}
			respondOK(c, "item removed", nil)
		})

	rg.POST("/versions/:versionId/submit",
		middlewares.Authorize(models.ResourceVersions, models.ActionSubmit),
		func(c *gin.Context) {
			var req notesRequest
			if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
				respondBindError(c, err)
				return
			}
			version, err := models.SubmitVersionForApproval[V, I, PV, PI](c.Request.Context(), c.Param("versionId"), req.Notes)
			if err != nil {
				respondError(c, "api", "SubmitVersionForApproval", err)
				return
			}
			respondOK(c, "version submitted for approval", version)
		})

	rg.POST("/versions/:versionId/approve",
		middlewares.Authorize(models.ResourceVersions, models.ActionApprove),
		func(c *gin.Context) {
			var req notesRequest
			if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
				respondBindError(c, err)
				return
			}
			version, err := models.ApproveVersion[V, I, PV, PI](c.Request.Context(), c.Param("versionId"), req.Notes)
			if err != nil {
				respondError(c, "api", "ApproveVersion", err)
				return
			}
			respondOK(c, "version approved", version)
		})

	rg.POST("/versions/:versionId/reject",
		middlewares.Authorize(models.ResourceVersions, models.ActionApprove),
		func(c *gin.Context) {
			var req reasonRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				respondBindError(c, err)
				return
			}
			version, err := models.RejectVersion[V, I, PV, PI](c.Request.Context(), c.Param("versionId"), req.Reason)
			if err != nil {
				respondError(c, "api", "RejectVersion", err)
				return
			}
			respondOK(c, "version rejected", version)
		})

	rg.POST("/versions/:versionId/resubmit",
		middlewares.Authorize(models.ResourceVersions, models.ActionCreate),
		func(c *gin.Context) {
			version, err := models.ResubmitAfterFeedback[V, I, PV, PI](c.Request.Context(), c.Param("versionId"))
			if err != nil {
				respondError(c, "api", "ResubmitAfterFeedback", err)
				return
			}
			respondCreated(c, "new draft created from feedback", version)
		})

	rg.POST("/items/:itemId/tester-decision",
		middlewares.Authorize(models.ResourceDecisions, models.ActionTesterDecision),
		recordDecisionHandler[V, I, PV, PI](models.DeciderTester))

	rg.POST("/items/:itemId/report-owner-decision",
		middlewares.Authorize(models.ResourceDecisions, models.ActionReportOwnerDecision),
		recordDecisionHandler[V, I, PV, PI](models.DeciderReportOwner))
}

func recordDecisionHandler[V any, I any, PV models.VersionPtr[V], PI models.ItemPtr[I]](decider models.DeciderRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req decisionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		if !req.Decision.Valid() {
			respondBadRequest(c, "decision must be Approved or Rejected")
			return
		}
		item, err := models.RecordItemDecision[V, I, PV, PI](c.Request.Context(), c.Param("itemId"), decider, req.Decision, req.Notes)
		if err != nil {
			respondError(c, "api", "RecordItemDecision", err)
			return
		}
		respondOK(c, "decision recorded", item)
	}
}

func parseJSONItem[In any, I any](convert func(*In) (*I, error)) func(c *gin.Context) (*I, error) {
	return func(c *gin.Context) (*I, error) {
		var input In
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return nil, nil
		}
		return convert(&input)
	}
}
