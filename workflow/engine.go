package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/regulens/synapse_backend/config"
	"github.com/regulens/synapse_backend/models"
	"gorm.io/gorm"
)

var ErrUnknownSignal = errors.New("unknown workflow signal")
var ErrUnknownQuery = errors.New("unknown workflow query")

// Engine drives the 9-phase workflow directly against the database. Phase
// rows are the workflow state; signals move them.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) StartWorkflow(ctx context.Context, cycleId, reportId int) (string, error) {

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.WorkflowPhase{}).
			Where("cycle_id = ? AND report_id = ?", cycleId, reportId).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return models.NewBusinessError("workflow already started for this report")
		}

		for _, name := range models.PhaseOrder {
			phase := models.WorkflowPhase{
				CycleId:  cycleId,
				ReportId: reportId,
				Name:     name,
				Status:   models.PhaseStatusNotStarted,
			}
			if err := tx.Create(&phase).Error; err != nil {
				return err
			}
			if name == models.PhaseOrder[0] {
				if err := models.MarkPhaseInProgress(tx, &phase); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return models.WorkflowIdFor(cycleId, reportId), nil
}

func (e *Engine) Signal(ctx context.Context, phaseId int, signal string, payload json.RawMessage) error {

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var phase models.WorkflowPhase
		if err := tx.Where("id = ?", phaseId).First(&phase).Error; err != nil {
			return err
		}

		switch signal {
		case models.SignalApproval:
			return e.handleApproval(tx, &phase)
		case models.SignalRevision:
			return e.handleRevision(tx, &phase)
		default:
			return fmt.Errorf("%w: %s", ErrUnknownSignal, signal)
		}
	})
	if err == nil {
		config.WorkflowSignalsTotal.WithLabelValues(signal).Inc()
	}
	return err
}

// handleApproval completes the signalled phase and opens the next one.
// Re-delivery of the same signal is a no-op once the phase is complete.
func (e *Engine) handleApproval(tx *gorm.DB, phase *models.WorkflowPhase) error {
	if phase.Status == models.PhaseStatusComplete {
		return nil
	}
	if err := models.MarkPhaseComplete(tx, phase); err != nil {
		return err
	}

	nextName := models.NextPhase(phase.Name)
	if nextName == "" {
		return nil
	}
	var next models.WorkflowPhase
	err := tx.Where("cycle_id = ? AND report_id = ? AND name = ?",
		phase.CycleId, phase.ReportId, nextName).First(&next).Error
	if err != nil {
		return err
	}
	if next.Status != models.PhaseStatusNotStarted {
		return nil
	}
	return models.MarkPhaseInProgress(tx, &next)
}

// handleRevision reopens a completed phase after a rejected version so the
// tester can rework it. A phase still in progress stays as it is.
func (e *Engine) handleRevision(tx *gorm.DB, phase *models.WorkflowPhase) error {
	if phase.Status != models.PhaseStatusComplete {
		return nil
	}
	return models.MarkPhaseInProgress(tx, phase)
}

func (e *Engine) Query(ctx context.Context, cycleId, reportId int, queryName string) (interface{}, error) {
	switch queryName {
	case models.QueryPhaseStatus:
		return models.GetPhases(ctx, cycleId, reportId)
	case models.QueryPhaseVersions:
		return e.queryPhaseVersions(ctx, cycleId, reportId)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuery, queryName)
	}
}

// queryPhaseVersions reports the current version core per versioned phase.
func (e *Engine) queryPhaseVersions(ctx context.Context, cycleId, reportId int) (map[string]*models.VersionCore, error) {
	phases, err := models.GetPhases(ctx, cycleId, reportId)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*models.VersionCore)
	for _, phase := range phases {
		switch phase.Name {
		case models.PhaseDataProfiling:
			collectCurrent[models.ProfilingRuleVersion](ctx, phase.ID, out)
		case models.PhaseScoping:
			collectCurrent[models.ScopingVersion](ctx, phase.ID, out)
		case models.PhaseSampleSelection:
			collectCurrent[models.SampleSelectionVersion](ctx, phase.ID, out)
		case models.PhaseObservationManagement:
			collectCurrent[models.ObservationVersion](ctx, phase.ID, out)
		}
	}
	return out, nil
}

func collectCurrent[V any, PV models.VersionPtr[V]](ctx context.Context, phaseId int, out map[string]*models.VersionCore) {
	version, err := models.GetCurrentVersion[V, PV](ctx, phaseId)
	if err != nil {
		return
	}
	out[PV(version).Family()] = PV(version).Core()
}
