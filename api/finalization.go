package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/regulens/synapse_backend/models/reports"
)

// ExportFinalizationHandler streams the sign-off workbook for a report.
func ExportFinalizationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		cycleId, ok := pathInt(c, "id")
		if !ok {
			return
		}
		reportId, ok := pathInt(c, "reportId")
		if !ok {
			return
		}

		filename := fmt.Sprintf("finalization-cycle%d-report%d.xlsx", cycleId, reportId)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename="+filename)

		if err := reports.ExportFinalizationSummary(c.Request.Context(), c.Writer, cycleId, reportId); err != nil {
			// headers may be gone already; log and close out
			respondError(c, "api", "ExportFinalizationHandler", err)
			return
		}
		c.Status(http.StatusOK)
	}
}
