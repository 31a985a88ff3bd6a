package reports

import (
	"context"
	"fmt"
	"io"

	"github.com/regulens/synapse_backend/config"
	"github.com/regulens/synapse_backend/models"
	"github.com/xuri/excelize/v2"
)

// Report Finalization export: one workbook summarizing the whole cycle/report
// run, suitable for the regulator-facing sign-off package.

type observationRow struct {
	Title    string `gorm:"column:title"`
	Severity string `gorm:"column:severity"`
	Status   string `gorm:"column:status"`
	Detail   string `gorm:"column:detail"`
}

func getApprovedObservations(ctx context.Context, phaseId int) ([]*observationRow, error) {

	sql := `
SELECT
    oi.title,
    oi.severity,
    oi.status,
    oi.detail
FROM
    observation_items oi
    JOIN observation_versions ov ON ov.id = oi.version_id
WHERE
    ov.phase_id = ? AND ov.status = 'Approved'
ORDER BY
    FIELD(oi.severity, 'Critical', 'High', 'Medium', 'Low'), oi.title
`

	var records []*observationRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, phaseId).Scan(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ExportFinalizationSummary writes the xlsx package for one cycle/report
// pair: a phase overview sheet and the approved observations sheet.
func ExportFinalizationSummary(ctx context.Context, w io.Writer, cycleId, reportId int) error {

	report, err := models.GetReport(ctx, reportId)
	if err != nil {
		return err
	}
	metrics, err := models.GetUniversalMetrics(ctx, cycleId, reportId)
	if err != nil {
		return err
	}
	phases, err := models.GetPhases(ctx, cycleId, reportId)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	sheet := "Phases"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	f.SetCellValue(sheet, "A1", "Report")
	f.SetCellValue(sheet, "B1", report.Name)
	f.SetCellValue(sheet, "A2", "Regulation")
	f.SetCellValue(sheet, "B2", report.RegulationRef)
	f.SetCellValue(sheet, "A3", "Overall Completion")
	f.SetCellValue(sheet, "B3", metrics.OverallRatio.String())

	f.SetCellValue(sheet, "A5", "Phase")
	f.SetCellValue(sheet, "B5", "Status")
	f.SetCellValue(sheet, "C5", "Versions")
	f.SetCellValue(sheet, "D5", "Items")
	f.SetCellValue(sheet, "E5", "Approved")
	f.SetCellValue(sheet, "F5", "Rejected")
	f.SetCellValue(sheet, "G5", "Completion")
	for i, pm := range metrics.Phases {
		row := fmt.Sprint(i + 6)
		f.SetCellValue(sheet, "A"+row, string(pm.Phase))
		f.SetCellValue(sheet, "B"+row, string(pm.Status))
		f.SetCellValue(sheet, "C"+row, pm.TotalVersions)
		f.SetCellValue(sheet, "D"+row, pm.TotalItems)
		f.SetCellValue(sheet, "E"+row, pm.ApprovedItems)
		f.SetCellValue(sheet, "F"+row, pm.RejectedItems)
		f.SetCellValue(sheet, "G"+row, pm.CompletionRatio.String())
	}

	obsSheet := "Observations"
	if _, err := f.NewSheet(obsSheet); err != nil {
		return err
	}
	f.SetCellValue(obsSheet, "A1", "Title")
	f.SetCellValue(obsSheet, "B1", "Severity")
	f.SetCellValue(obsSheet, "C1", "Status")
	f.SetCellValue(obsSheet, "D1", "Detail")

	for _, phase := range phases {
		if phase.Name != models.PhaseObservationManagement {
			continue
		}
		observations, err := getApprovedObservations(ctx, phase.ID)
		if err != nil {
			return err
		}
		for i, o := range observations {
			row := fmt.Sprint(i + 2)
			f.SetCellValue(obsSheet, "A"+row, o.Title)
			f.SetCellValue(obsSheet, "B"+row, o.Severity)
			f.SetCellValue(obsSheet, "C"+row, o.Status)
			f.SetCellValue(obsSheet, "D"+row, o.Detail)
		}
	}

	return f.Write(w)
}
