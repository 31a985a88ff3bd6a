package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/regulens/synapse_backend/config"
	"github.com/regulens/synapse_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const handlerWorkflowSignal = "workflow_signal"

// OutboxDispatcher moves committed workflow events from the outbox table to
// the gateway. At-least-once with idempotency keys; poison events go DEAD
// after MaxAttempts. The same loop runs the SLA sweep so a worker deployment
// needs exactly one background process.
type OutboxDispatcher struct {
	DB           *gorm.DB
	Logger       *logrus.Logger
	Gateway      Gateway
	Notifier     models.EscalationNotifier
	DispatcherID string

	BatchSize    int
	PollInterval time.Duration
	SLAInterval  time.Duration
	MaxAttempts  int

	lastSLACheck time.Time
}

func NewOutboxDispatcher(db *gorm.DB, logger *logrus.Logger, gateway Gateway, notifier models.EscalationNotifier) *OutboxDispatcher {
	return &OutboxDispatcher{
		DB:           db,
		Logger:       logger,
		Gateway:      gateway,
		Notifier:     notifier,
		DispatcherID: uuid.NewString(),
		BatchSize:    50,
		PollInterval: 500 * time.Millisecond,
		SLAInterval:  time.Minute,
		MaxAttempts:  20,
	}
}

func (d *OutboxDispatcher) Run(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		d.dispatchOnce(ctx)
		d.maybeCheckSLA(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.PollInterval):
		}
	}
}

func (d *OutboxDispatcher) dispatchOnce(ctx context.Context) {
	if d.DB == nil || d.Gateway == nil {
		return
	}

	// Plain read, no row locks. Concurrent dispatchers may pick up the same
	// batch; the idempotency key taken in handleEvent makes the duplicate a
	// no-op.
	var pending []models.WorkflowEventRecord
	err := d.DB.WithContext(ctx).
		Where("is_processed = 0 AND publish_status = ?", models.OutboxPublishStatusPending).
		Order("id ASC").
		Limit(d.BatchSize).
		Find(&pending).Error
	if err != nil || len(pending) == 0 {
		return
	}

	for i := range pending {
		d.handleEvent(ctx, &pending[i])
	}
}

func (d *OutboxDispatcher) handleEvent(ctx context.Context, rec *models.WorkflowEventRecord) {
	db := d.DB.WithContext(ctx)

	var skip bool
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		skip, err = BeginIdempotency(tx, handlerWorkflowSignal, rec.EventId)
		return err
	})
	if err == ErrIdempotencyInProgress {
		return
	}
	if err != nil {
		d.logEventError(rec, err)
		return
	}
	if skip {
		d.markProcessed(ctx, rec.ID)
		return
	}

	if err := d.Gateway.Signal(ctx, rec.PhaseId, rec.Signal, rec.Payload); err != nil {
		d.markFailed(ctx, rec, err)
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := MarkIdempotencySucceeded(tx, handlerWorkflowSignal, rec.EventId); err != nil {
			return err
		}
		now := time.Now()
		return tx.Model(&models.WorkflowEventRecord{}).
			Where("id = ?", rec.ID).
			Updates(map[string]interface{}{
				"is_processed":   true,
				"publish_status": models.OutboxPublishStatusPublished,
				"processed_at":   &now,
			}).Error
	})
	if err != nil {
		d.logEventError(rec, err)
	}
}

func (d *OutboxDispatcher) markProcessed(ctx context.Context, recordID int) {
	now := time.Now()
	_ = d.DB.WithContext(ctx).Model(&models.WorkflowEventRecord{}).
		Where("id = ?", recordID).
		Updates(map[string]interface{}{
			"is_processed":   true,
			"publish_status": models.OutboxPublishStatusPublished,
			"processed_at":   &now,
		}).Error
}

func (d *OutboxDispatcher) markFailed(ctx context.Context, rec *models.WorkflowEventRecord, cause error) {
	db := d.DB.WithContext(ctx)
	msg := cause.Error()
	attempt := rec.AttemptCount + 1

	_ = db.Transaction(func(tx *gorm.DB) error {
		return MarkIdempotencyFailed(tx, handlerWorkflowSignal, rec.EventId, cause)
	})

	updates := map[string]interface{}{
		"attempt_count": gorm.Expr("attempt_count + 1"),
		"last_error":    &msg,
	}
	if d.MaxAttempts > 0 && attempt >= d.MaxAttempts {
		updates["publish_status"] = models.OutboxPublishStatusDead
		if d.Logger != nil {
			d.Logger.WithFields(logrus.Fields{
				"field":    "OutboxDispatcher",
				"event_id": rec.EventId,
				"signal":   rec.Signal,
				"attempt":  attempt,
			}).Error("workflow event moved to DEAD after max attempts: " + fmt.Sprintf("%v", cause))
		}
	}
	if err := db.Model(&models.WorkflowEventRecord{}).
		Where("id = ?", rec.ID).
		Updates(updates).Error; err != nil {
		d.logEventError(rec, err)
	}
}

// maybeCheckSLA runs the escalation sweep at most once per SLAInterval, under
// a cross-instance lock so only one dispatcher sweeps at a time.
func (d *OutboxDispatcher) maybeCheckSLA(ctx context.Context) {
	if time.Since(d.lastSLACheck) < d.SLAInterval {
		return
	}
	d.lastSLACheck = time.Now()

	lock, err := AcquireJobLock(ctx, "sla-sweep", d.SLAInterval)
	if err != nil {
		return
	}
	defer ReleaseJobLock(ctx, lock)

	if _, err := models.CheckSLAViolations(ctx, time.Now(), d.Notifier); err != nil {
		config.LogError(config.GetLogger(), "workflow", "maybeCheckSLA", "sweep", d.DispatcherID, err)
	}
}

func (d *OutboxDispatcher) logEventError(rec *models.WorkflowEventRecord, err error) {
	if d.Logger == nil {
		return
	}
	d.Logger.WithFields(logrus.Fields{
		"field":    "OutboxDispatcher",
		"event_id": rec.EventId,
		"signal":   rec.Signal,
	}).Error(err.Error())
}
