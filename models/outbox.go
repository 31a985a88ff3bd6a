package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkflowEventRecord implements a transactional outbox for workflow signals:
// the event row is written inside the caller's DB transaction and dispatched
// to the workflow gateway asynchronously after commit.
type WorkflowEventRecord struct {
	ID            int                 `gorm:"primary_key" json:"id"`
	EventId       string              `gorm:"uniqueIndex;size:36;not null" json:"event_id"`
	PhaseId       int                 `gorm:"index;not null" json:"phase_id"`
	Signal        string              `gorm:"size:50;not null" json:"signal"`
	Payload       json.RawMessage     `gorm:"type:json" json:"payload"`
	IsProcessed   bool                `gorm:"index;not null;default:false" json:"is_processed"`
	PublishStatus OutboxPublishStatus `gorm:"size:20;not null;default:'PENDING'" json:"publish_status"`
	AttemptCount  int                 `gorm:"not null;default:0" json:"attempt_count"`
	LastError     *string             `gorm:"type:text" json:"last_error"`
	CreatedAt     time.Time           `gorm:"autoCreateTime" json:"created_at"`
	ProcessedAt   *time.Time          `json:"processed_at"`
}

// EnqueueWorkflowEvent writes the outbox row inside tx. It does NOT touch the
// gateway; dispatching happens after commit.
func EnqueueWorkflowEvent(tx *gorm.DB, phaseId int, signal string, payload json.RawMessage) error {
	record := WorkflowEventRecord{
		EventId:       uuid.NewString(),
		PhaseId:       phaseId,
		Signal:        signal,
		Payload:       payload,
		IsProcessed:   false,
		PublishStatus: OutboxPublishStatusPending,
	}
	return tx.Create(&record).Error
}

// FetchPendingWorkflowEvents returns unprocessed outbox rows, oldest first.
func FetchPendingWorkflowEvents(tx *gorm.DB, limit int) ([]*WorkflowEventRecord, error) {
	var records []*WorkflowEventRecord
	err := tx.Where("is_processed = ? AND publish_status = ?", false, OutboxPublishStatusPending).
		Order("id").Limit(limit).Find(&records).Error
	return records, err
}
