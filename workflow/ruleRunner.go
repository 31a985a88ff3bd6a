package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/regulens/synapse_backend/config"
	"github.com/regulens/synapse_backend/models"
	"github.com/regulens/synapse_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RuleRunner executes queued profiling jobs in the background. One job runs
// at a time per rule version, enforced with a redis lock across instances.
type RuleRunner struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewRuleRunner(db *gorm.DB, logger *logrus.Logger) *RuleRunner {
	return &RuleRunner{DB: db, Logger: logger}
}

// ruleQuery is the executable part of a rule definition. The generated SQL
// must return total and fail counts for the profiled attribute.
type ruleQuery struct {
	SQL string `json:"sql"`
}

type ruleCountRow struct {
	RecordsTotal int `gorm:"column:records_total"`
	RecordsFail  int `gorm:"column:records_fail"`
}

// ExecuteJob runs one queued job to completion. Meant to be launched on a
// goroutine right after the job row is created.
func (r *RuleRunner) ExecuteJob(ctx context.Context, jobId string) {
	db := r.DB.WithContext(ctx)

	var job models.RuleExecutionJob
	if err := db.Where("id = ?", jobId).First(&job).Error; err != nil {
		r.logJobError(jobId, err)
		return
	}
	if job.Status != models.JobStatusQueued {
		return
	}

	lock, err := AcquireJobLock(ctx, "rule-exec:"+job.VersionId, 10*time.Minute)
	if err != nil {
		r.failJob(ctx, &job, err)
		return
	}
	defer ReleaseJobLock(ctx, lock)

	now := time.Now()
	if err := db.Model(&job).Updates(map[string]interface{}{
		"Status":    models.JobStatusRunning,
		"StartedAt": now,
	}).Error; err != nil {
		r.logJobError(jobId, err)
		return
	}

	var rules []*models.ProfilingRule
	if err := db.Where("version_id = ?", job.VersionId).Find(&rules).Error; err != nil {
		r.failJob(ctx, &job, err)
		return
	}

	var lastErr error
	for _, rule := range rules {
		result := r.runRule(ctx, &job, rule)
		if err := db.Create(result).Error; err != nil {
			lastErr = err
			r.logJobError(jobId, err)
			continue
		}
		if err := db.Model(&job).
			UpdateColumn("done_rules", gorm.Expr("done_rules + 1")).Error; err != nil {
			lastErr = err
		}
	}

	done := time.Now()
	updates := map[string]interface{}{
		"Status":     models.JobStatusCompleted,
		"FinishedAt": done,
	}
	if lastErr != nil {
		updates["Status"] = models.JobStatusFailed
		updates["LastError"] = lastErr.Error()
	}
	if err := db.Model(&job).Updates(updates).Error; err != nil {
		r.logJobError(jobId, err)
	}
}

func (r *RuleRunner) runRule(ctx context.Context, job *models.RuleExecutionJob, rule *models.ProfilingRule) *models.RuleExecutionResult {
	result := &models.RuleExecutionResult{
		ID:           uuid.NewString(),
		JobId:        job.ID,
		RuleId:       rule.ItemCore.ID,
		QualityScore: decimal.Zero,
	}

	var q ruleQuery
	if len(rule.Definition) > 0 {
		if err := utils.UnmarshalFromJSON(rule.Definition, &q); err != nil {
			result.Passed = boolPtr(false)
			result.Detail = "invalid rule definition: " + err.Error()
			return result
		}
	}
	if q.SQL == "" {
		result.Passed = boolPtr(false)
		result.Detail = "rule has no executable query"
		return result
	}

	var row ruleCountRow
	if err := r.DB.WithContext(ctx).Raw(q.SQL).Scan(&row).Error; err != nil {
		result.Passed = boolPtr(false)
		result.Detail = err.Error()
		return result
	}

	result.RecordsTotal = row.RecordsTotal
	result.RecordsFail = row.RecordsFail
	result.Passed = boolPtr(row.RecordsFail == 0)
	if row.RecordsTotal > 0 {
		result.QualityScore = decimal.NewFromInt(int64(row.RecordsTotal - row.RecordsFail)).
			Div(decimal.NewFromInt(int64(row.RecordsTotal))).
			Round(4)
	}
	return result
}

func (r *RuleRunner) failJob(ctx context.Context, job *models.RuleExecutionJob, cause error) {
	now := time.Now()
	if err := r.DB.WithContext(ctx).Model(job).Updates(map[string]interface{}{
		"Status":     models.JobStatusFailed,
		"LastError":  cause.Error(),
		"FinishedAt": now,
	}).Error; err != nil {
		r.logJobError(job.ID, err)
	}
	config.LogError(config.GetLogger(), "workflow", "ExecuteJob", "job", job.ID, cause)
}

func (r *RuleRunner) logJobError(jobId string, err error) {
	if r.Logger == nil {
		return
	}
	r.Logger.WithFields(logrus.Fields{
		"field":  "RuleRunner",
		"job_id": jobId,
	}).Error(err.Error())
}

func boolPtr(b bool) *bool { return &b }
