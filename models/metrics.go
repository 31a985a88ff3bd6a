package models

import (
	"context"

	"github.com/regulens/synapse_backend/config"
	"github.com/shopspring/decimal"
)

// Universal metrics roll every phase of a cycle/report pair into one shape
// so dashboards render any phase the same way. Each sub-metric queries on its
// own; a failing query logs and reports zeroes instead of failing the whole
// aggregation.

type PhaseMetrics struct {
	Phase           PhaseName       `json:"phase"`
	Status          PhaseStatus     `json:"status"`
	TotalVersions   int             `json:"total_versions"`
	CurrentVersion  int             `json:"current_version"`
	TotalItems      int             `json:"total_items"`
	ApprovedItems   int             `json:"approved_items"`
	RejectedItems   int             `json:"rejected_items"`
	PendingItems    int             `json:"pending_items"`
	CompletionRatio decimal.Decimal `json:"completion_ratio"`
}

type UniversalMetrics struct {
	CycleId        int             `json:"cycle_id"`
	ReportId       int             `json:"report_id"`
	Phases         []PhaseMetrics  `json:"phases"`
	OverallItems   int             `json:"overall_items"`
	OverallDone    int             `json:"overall_done"`
	OverallRatio   decimal.Decimal `json:"overall_ratio"`
	OpenSLAClocks  int             `json:"open_sla_clocks"`
	SLAViolations  int             `json:"sla_violations"`
	OpenAssignments int            `json:"open_assignments"`
}

// version table per phase family; phases without a versioned artifact have
// no entry and report phase status only.
var phaseVersionTables = map[PhaseName][2]string{
	PhaseDataProfiling: {"profiling_rule_versions", "profiling_rules"},
	PhaseScoping:       {"scoping_versions", "scoping_decisions"},
	PhaseSampleSelection: {"sample_selection_versions", "sample_records"},
	PhaseObservationManagement: {"observation_versions", "observation_items"},
}

type versionAggRow struct {
	TotalVersions  int `gorm:"column:total_versions"`
	CurrentVersion int `gorm:"column:current_version"`
	TotalItems     int `gorm:"column:total_items"`
	ApprovedItems  int `gorm:"column:approved_items"`
	RejectedItems  int `gorm:"column:rejected_items"`
	PendingItems   int `gorm:"column:pending_items"`
}

func phaseVersionMetrics(ctx context.Context, phaseId int, versionTable string) (versionAggRow, error) {
	db := config.GetDB()
	var row versionAggRow
	err := db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*)                                   AS total_versions,
			COALESCE(MAX(version_number), 0)           AS current_version,
			COALESCE(SUM(CASE WHEN status IN ('Approved', 'Pending Approval', 'Draft') THEN total_items ELSE 0 END), 0)    AS total_items,
			COALESCE(SUM(CASE WHEN status IN ('Approved', 'Pending Approval', 'Draft') THEN approved_items ELSE 0 END), 0) AS approved_items,
			COALESCE(SUM(CASE WHEN status IN ('Approved', 'Pending Approval', 'Draft') THEN rejected_items ELSE 0 END), 0) AS rejected_items,
			COALESCE(SUM(CASE WHEN status IN ('Approved', 'Pending Approval', 'Draft') THEN pending_items ELSE 0 END), 0)  AS pending_items
		FROM `+versionTable+`
		WHERE phase_id = ? AND status NOT IN ('Superseded', 'Rejected')`, phaseId).
		Scan(&row).Error
	return row, err
}

func ratio(done, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(done)).
		Div(decimal.NewFromInt(int64(total))).
		Round(4)
}

// GetUniversalMetrics aggregates all phases of one cycle/report pair.
func GetUniversalMetrics(ctx context.Context, cycleId, reportId int) (*UniversalMetrics, error) {

	phases, err := GetPhases(ctx, cycleId, reportId)
	if err != nil {
		return nil, err
	}

	out := UniversalMetrics{CycleId: cycleId, ReportId: reportId}
	for _, phase := range phases {
		pm := PhaseMetrics{
			Phase:           phase.Name,
			Status:          phase.Status,
			CompletionRatio: decimal.Zero,
		}
		if tables, ok := phaseVersionTables[phase.Name]; ok {
			row, err := phaseVersionMetrics(ctx, phase.ID, tables[0])
			if err != nil {
				// zeroed fallback keeps the dashboard up when one table misbehaves
				config.LogError(config.GetLogger(), "models", "GetUniversalMetrics", string(phase.Name), phase.ID, err)
				row = versionAggRow{}
			}
			pm.TotalVersions = row.TotalVersions
			pm.CurrentVersion = row.CurrentVersion
			pm.TotalItems = row.TotalItems
			pm.ApprovedItems = row.ApprovedItems
			pm.RejectedItems = row.RejectedItems
			pm.PendingItems = row.PendingItems
			pm.CompletionRatio = ratio(row.ApprovedItems+row.RejectedItems, row.TotalItems)
		} else if phase.Status == PhaseStatusComplete {
			pm.CompletionRatio = decimal.NewFromInt(1)
		}
		out.OverallItems += pm.TotalItems
		out.OverallDone += pm.ApprovedItems + pm.RejectedItems
		out.Phases = append(out.Phases, pm)
	}
	out.OverallRatio = ratio(out.OverallDone, out.OverallItems)

	phaseIds := make([]int, 0, len(phases))
	for _, p := range phases {
		phaseIds = append(phaseIds, p.ID)
	}
	db := config.GetDB()

	var openClocks int64
	if err := db.WithContext(ctx).Model(&SLATracking{}).
		Where("phase_id IN ? AND completed_at IS NULL", phaseIds).
		Count(&openClocks).Error; err != nil {
		config.LogError(config.GetLogger(), "models", "GetUniversalMetrics", "open_sla_clocks", phaseIds, err)
		openClocks = 0
	}
	out.OpenSLAClocks = int(openClocks)

	var violations int64
	if err := db.WithContext(ctx).Model(&SLAViolation{}).
		Joins("JOIN sla_trackings ON sla_trackings.id = sla_violations.tracking_id").
		Where("sla_trackings.phase_id IN ?", phaseIds).
		Count(&violations).Error; err != nil {
		config.LogError(config.GetLogger(), "models", "GetUniversalMetrics", "sla_violations", phaseIds, err)
		violations = 0
	}
	out.SLAViolations = int(violations)

	var openAssignments int64
	if err := db.WithContext(ctx).Model(&UniversalAssignment{}).
		Where("phase_id IN ? AND status <> ?", phaseIds, AssignmentStatusCompleted).
		Count(&openAssignments).Error; err != nil {
		config.LogError(config.GetLogger(), "models", "GetUniversalMetrics", "open_assignments", phaseIds, err)
		openAssignments = 0
	}
	out.OpenAssignments = int(openAssignments)

	return &out, nil
}
