package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/regulens/synapse_backend/config"
	"github.com/regulens/synapse_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RuleExecutionJob tracks one background run of a profiling rule version
// against source data. The runner moves it Queued -> Running -> terminal.
type RuleExecutionJob struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	VersionId   string     `gorm:"index;size:36;not null" json:"version_id"`
	Status      JobStatus  `gorm:"size:20;not null;default:'Queued'" json:"status"`
	TotalRules  int        `gorm:"not null;default:0" json:"total_rules"`
	DoneRules   int        `gorm:"not null;default:0" json:"done_rules"`
	LastError   string     `gorm:"size:500" json:"last_error"`
	RequestedBy *int       `json:"requested_by"`
	StartedAt   *time.Time `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// RuleExecutionResult is the per-rule outcome of a job.
type RuleExecutionResult struct {
	ID           string          `gorm:"primaryKey;size:36" json:"id"`
	JobId        string          `gorm:"index;size:36;not null" json:"job_id"`
	RuleId       string          `gorm:"index;size:36;not null" json:"rule_id"`
	Passed       *bool           `gorm:"not null" json:"passed"`
	RecordsTotal int             `gorm:"not null;default:0" json:"records_total"`
	RecordsFail  int             `gorm:"not null;default:0" json:"records_fail"`
	QualityScore decimal.Decimal `gorm:"type:decimal(7,4);not null" json:"quality_score"`
	Detail       string          `gorm:"type:text" json:"detail"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// CreateRuleExecutionJob queues an execution for an approved rule version.
func CreateRuleExecutionJob(ctx context.Context, versionId string, requestedBy int) (*RuleExecutionJob, error) {

	db := config.GetDB()
	var job *RuleExecutionJob
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var version ProfilingRuleVersion
		if err := tx.Where("id = ?", versionId).First(&version).Error; err != nil {
			return utils.ErrorRecordNotFound
		}
		if version.Status != VersionStatusApproved {
			return NewBusinessError("only approved rule versions can be executed")
		}

		var running int64
		if err := tx.Model(&RuleExecutionJob{}).
			Where("version_id = ? AND status IN ?", versionId,
				[]JobStatus{JobStatusQueued, JobStatusRunning}).
			Count(&running).Error; err != nil {
			return err
		}
		if running > 0 {
			return NewBusinessError("an execution is already in flight for this version")
		}

		var total int64
		if err := tx.Model(&ProfilingRule{}).Where("version_id = ?", versionId).Count(&total).Error; err != nil {
			return err
		}

		job = &RuleExecutionJob{
			ID:          uuid.NewString(),
			VersionId:   versionId,
			Status:      JobStatusQueued,
			TotalRules:  int(total),
			RequestedBy: &requestedBy,
		}
		return tx.Create(job).Error
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func GetRuleExecutionJob(ctx context.Context, id string) (*RuleExecutionJob, error) {
	return utils.FetchModelByUUID[RuleExecutionJob](ctx, id)
}

func GetRuleExecutionJobs(ctx context.Context, versionId string) ([]*RuleExecutionJob, error) {
	return utils.FetchModelsWhere[RuleExecutionJob](ctx, "version_id = ?", versionId)
}

func GetRuleExecutionResults(ctx context.Context, jobId string) ([]*RuleExecutionResult, error) {
	return utils.FetchModelsWhere[RuleExecutionResult](ctx, "job_id = ?", jobId)
}
