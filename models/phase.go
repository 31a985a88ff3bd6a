package models

import (
	"context"
	"fmt"
	"time"

	"github.com/regulens/synapse_backend/config"
	"github.com/regulens/synapse_backend/utils"
	"gorm.io/gorm"
)

// WorkflowPhase is one stage of the 9-step workflow for a cycle/report pair.
// Rows are created by the workflow engine when the pair's workflow starts.
type WorkflowPhase struct {
	ID          int         `gorm:"primary_key" json:"id"`
	CycleId     int         `gorm:"index;not null;uniqueIndex:idx_cycle_report_phase" json:"cycle_id"`
	ReportId    int         `gorm:"not null;uniqueIndex:idx_cycle_report_phase" json:"report_id"`
	Name        PhaseName   `gorm:"size:40;not null;uniqueIndex:idx_cycle_report_phase" json:"name"`
	Status      PhaseStatus `gorm:"size:20;not null;default:'Not Started'" json:"status"`
	StartedAt   *time.Time  `json:"started_at"`
	CompletedAt *time.Time  `json:"completed_at"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// WorkflowIdFor names the workflow instance of a cycle/report pair.
func WorkflowIdFor(cycleId, reportId int) string {
	return fmt.Sprintf("cycle-%d-report-%d", cycleId, reportId)
}

func GetPhase(ctx context.Context, id int) (*WorkflowPhase, error) {
	return utils.FetchModel[WorkflowPhase](ctx, id)
}

func GetPhases(ctx context.Context, cycleId, reportId int) ([]*WorkflowPhase, error) {
	db := config.GetDB()
	var phases []*WorkflowPhase
	if err := db.WithContext(ctx).
		Where("cycle_id = ? AND report_id = ?", cycleId, reportId).
		Find(&phases).Error; err != nil {
		return nil, err
	}
	// fixed workflow order, not insertion order
	ordered := make([]*WorkflowPhase, 0, len(phases))
	for _, name := range PhaseOrder {
		for _, p := range phases {
			if p.Name == name {
				ordered = append(ordered, p)
			}
		}
	}
	return ordered, nil
}

// CompletePhase queues the approval signal for a phase that has no version
// lifecycle. Versioned phases complete through version approval instead, and
// only an in-progress phase can be completed. The signal travels through the
// outbox so the workflow engine advances exactly once.
func CompletePhase(ctx context.Context, phaseId int) (*WorkflowPhase, error) {
	phase, err := GetPhase(ctx, phaseId)
	if err != nil {
		return nil, err
	}
	if phase.Name.Versioned() {
		return nil, NewBusinessError(fmt.Sprintf("%s completes through version approval", phase.Name))
	}
	if phase.Status != PhaseStatusInProgress {
		return nil, NewBusinessError("phase is not in progress")
	}
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return EnqueueWorkflowEvent(tx, phase.ID, SignalApproval, nil)
	})
	if err != nil {
		return nil, err
	}
	return phase, nil
}

// MarkPhaseInProgress opens a phase and its SLA tracking window.
func MarkPhaseInProgress(tx *gorm.DB, phase *WorkflowPhase) error {
	now := time.Now()
	if err := tx.Model(phase).Updates(map[string]interface{}{
		"Status":    PhaseStatusInProgress,
		"StartedAt": now,
	}).Error; err != nil {
		return err
	}
	phase.Status = PhaseStatusInProgress
	phase.StartedAt = &now
	return OpenSLATracking(tx, string(phase.Name), &phase.ID, nil, now)
}

// MarkPhaseComplete closes a phase and resolves its SLA tracking window.
func MarkPhaseComplete(tx *gorm.DB, phase *WorkflowPhase) error {
	now := time.Now()
	if err := tx.Model(phase).Updates(map[string]interface{}{
		"Status":      PhaseStatusComplete,
		"CompletedAt": now,
	}).Error; err != nil {
		return err
	}
	phase.Status = PhaseStatusComplete
	phase.CompletedAt = &now
	return CompleteSLATracking(tx, string(phase.Name), &phase.ID, now)
}
