package models

import (
	"context"
	"fmt"
	"time"

	"github.com/regulens/synapse_backend/config"
	"github.com/regulens/synapse_backend/utils"
	"gorm.io/gorm"
)

// Business window for SLA clocks. Hours outside the window and weekends do
// not consume SLA time.
const (
	businessDayStartHour = 9
	businessDayEndHour   = 17
)

type SLAStatus string

const (
	SLAStatusOnTrack       SLAStatus = "On Track"
	SLAStatusViolated      SLAStatus = "Violated"
	SLAStatusCompleted     SLAStatus = "Completed"
	SLAStatusCompletedLate SLAStatus = "Completed Late"
)

// SLAConfig sets the hour budget for one activity type, usually a phase
// name. BusinessHoursOnly confines the clock to the 09:00-17:00 window and
// WeekendExcluded skips Saturday/Sunday; both default to true. Inactive
// configs suspend tracking without losing the setup.
type SLAConfig struct {
	ID                int       `gorm:"primary_key" json:"id"`
	ActivityType      string    `gorm:"size:40;not null;unique" json:"activity_type" binding:"required"`
	BusinessHours     float64   `gorm:"not null" json:"business_hours" binding:"required"`
	BusinessHoursOnly *bool     `gorm:"not null;default:true" json:"business_hours_only"`
	WeekendExcluded   *bool     `gorm:"not null;default:true" json:"weekend_excluded"`
	IsActive          *bool     `gorm:"not null" json:"is_active"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// EscalationRule fires Level N once a tracking row has been overdue for
// HoursAfterBreach business hours. The notice goes to a whole role or to one
// user; EmailTemplate picks the message body, empty means the default.
type EscalationRule struct {
	ID               int       `gorm:"primary_key" json:"id"`
	SLAConfigId      int       `gorm:"index;not null" json:"sla_config_id" binding:"required"`
	Level            int       `gorm:"not null" json:"level" binding:"required"`
	HoursAfterBreach float64   `gorm:"not null" json:"hours_after_breach"`
	NotifyRole       UserRole  `gorm:"size:20" json:"notify_role"`
	NotifyUserId     *int      `json:"notify_user_id"`
	EmailTemplate    string    `gorm:"size:100" json:"email_template"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// SLATracking is one open or resolved SLA clock. Exactly one of PhaseId and
// AssignmentId is set depending on what the clock tracks.
type SLATracking struct {
	ID           int        `gorm:"primary_key" json:"id"`
	ActivityType string     `gorm:"size:40;not null;index" json:"activity_type"`
	PhaseId      *int       `gorm:"index" json:"phase_id"`
	AssignmentId *int       `gorm:"index" json:"assignment_id"`
	StartedAt    time.Time  `gorm:"not null" json:"started_at"`
	DueAt        time.Time  `gorm:"not null;index" json:"due_at"`
	CompletedAt  *time.Time `json:"completed_at"`
	Status       SLAStatus  `gorm:"size:20;not null;default:'On Track'" json:"status"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// SLAViolation is the audit record of one escalation level firing.
type SLAViolation struct {
	ID             int       `gorm:"primary_key" json:"id"`
	TrackingId     int       `gorm:"index;not null;uniqueIndex:idx_tracking_level" json:"tracking_id"`
	Level          int       `gorm:"not null;uniqueIndex:idx_tracking_level" json:"level"`
	NotifiedRole   UserRole  `gorm:"size:20" json:"notified_role"`
	NotifiedUserId *int      `json:"notified_user_id"`
	Message        string    `gorm:"size:500" json:"message"`
	NotifiedAt     time.Time `gorm:"not null" json:"notified_at"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// EscalationNotifier delivers escalation notices. Implemented by the mailer.
type EscalationNotifier interface {
	NotifyRole(ctx context.Context, role UserRole, subject string, body string) error
	NotifyUser(ctx context.Context, userId int, subject string, body string) error
}

func windowBounds(businessHoursOnly bool) (startHour, endHour int) {
	if businessHoursOnly {
		return businessDayStartHour, businessDayEndHour
	}
	return 0, 24
}

// rollToWindowStart moves t forward to the next instant the SLA clock runs.
func rollToWindowStart(t time.Time, businessHoursOnly, weekendExcluded bool) time.Time {
	startHour, endHour := windowBounds(businessHoursOnly)
	for {
		if weekendExcluded {
			switch t.Weekday() {
			case time.Saturday:
				t = time.Date(t.Year(), t.Month(), t.Day()+2, startHour, 0, 0, 0, t.Location())
				continue
			case time.Sunday:
				t = time.Date(t.Year(), t.Month(), t.Day()+1, startHour, 0, 0, 0, t.Location())
				continue
			}
		}
		if t.Hour() < startHour {
			return time.Date(t.Year(), t.Month(), t.Day(), startHour, 0, 0, 0, t.Location())
		}
		if t.Hour() >= endHour {
			t = time.Date(t.Year(), t.Month(), t.Day()+1, startHour, 0, 0, 0, t.Location())
			continue
		}
		return t
	}
}

func rollToBusinessStart(t time.Time) time.Time {
	return rollToWindowStart(t, true, true)
}

func computeDueDate(start time.Time, hours float64, businessHoursOnly, weekendExcluded bool) time.Time {
	if !businessHoursOnly && !weekendExcluded {
		return start.Add(time.Duration(hours * float64(time.Hour)))
	}
	_, endHour := windowBounds(businessHoursOnly)
	t := rollToWindowStart(start, businessHoursOnly, weekendExcluded)
	remaining := time.Duration(hours * float64(time.Hour))
	for remaining > 0 {
		dayEnd := time.Date(t.Year(), t.Month(), t.Day(), endHour, 0, 0, 0, t.Location())
		window := dayEnd.Sub(t)
		if remaining <= window {
			return t.Add(remaining)
		}
		remaining -= window
		t = rollToWindowStart(dayEnd, businessHoursOnly, weekendExcluded)
	}
	return t
}

// ComputeDueDate adds businessHours of working time to start, counting only
// weekday hours between 09:00 and 17:00.
func ComputeDueDate(start time.Time, businessHours float64) time.Time {
	return computeDueDate(start, businessHours, true, true)
}

// DueFrom computes the due date for this config's calendar. Unset flags
// behave as true, matching the column defaults.
func (c *SLAConfig) DueFrom(start time.Time) time.Time {
	businessHoursOnly := c.BusinessHoursOnly == nil || *c.BusinessHoursOnly
	weekendExcluded := c.WeekendExcluded == nil || *c.WeekendExcluded
	return computeDueDate(start, c.BusinessHours, businessHoursOnly, weekendExcluded)
}

// BusinessHoursBetween measures working time elapsed from start to end,
// the inverse of ComputeDueDate. Used to place overdue rows on the
// escalation ladder.
func BusinessHoursBetween(start, end time.Time) float64 {
	t := rollToBusinessStart(start)
	if !end.After(t) {
		return 0
	}
	var elapsed time.Duration
	for {
		dayEnd := time.Date(t.Year(), t.Month(), t.Day(), businessDayEndHour, 0, 0, 0, t.Location())
		if end.Before(dayEnd) {
			elapsed += end.Sub(t)
			break
		}
		elapsed += dayEnd.Sub(t)
		t = rollToBusinessStart(dayEnd)
		if !end.After(t) {
			break
		}
	}
	return elapsed.Hours()
}

// OpenSLATracking starts an SLA clock for an activity if a live config
// exists. Missing or inactive configs make this a no-op so phases without
// an SLA still progress.
func OpenSLATracking(tx *gorm.DB, activityType string, phaseId *int, assignmentId *int, startedAt time.Time) error {
	var cfg SLAConfig
	if err := tx.Model(&SLAConfig{}).Where("activity_type = ?", activityType).Take(&cfg).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}
	if cfg.IsActive != nil && !*cfg.IsActive {
		return nil
	}
	tracking := SLATracking{
		ActivityType: activityType,
		PhaseId:      phaseId,
		AssignmentId: assignmentId,
		StartedAt:    startedAt,
		DueAt:        cfg.DueFrom(startedAt),
		Status:       SLAStatusOnTrack,
	}
	return tx.Create(&tracking).Error
}

// CompleteSLATracking closes the open clock for a phase activity, marking it
// late when it resolves past its due date.
func CompleteSLATracking(tx *gorm.DB, activityType string, phaseId *int, completedAt time.Time) error {
	var tracking SLATracking
	err := tx.Model(&SLATracking{}).
		Where("activity_type = ? AND phase_id = ? AND completed_at IS NULL", activityType, phaseId).
		Take(&tracking).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}
	status := SLAStatusCompleted
	if completedAt.After(tracking.DueAt) {
		status = SLAStatusCompletedLate
	}
	return tx.Model(&tracking).Updates(map[string]interface{}{
		"CompletedAt": completedAt,
		"Status":      status,
	}).Error
}

// CompleteAssignmentSLATracking closes the open clock for an assignment.
func CompleteAssignmentSLATracking(tx *gorm.DB, assignmentId int, completedAt time.Time) error {
	var tracking SLATracking
	err := tx.Model(&SLATracking{}).
		Where("assignment_id = ? AND completed_at IS NULL", assignmentId).
		Take(&tracking).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}
	status := SLAStatusCompleted
	if completedAt.After(tracking.DueAt) {
		status = SLAStatusCompletedLate
	}
	return tx.Model(&tracking).Updates(map[string]interface{}{
		"CompletedAt": completedAt,
		"Status":      status,
	}).Error
}

// Named escalation email bodies. Rules reference one by name; empty or
// unknown names fall back to the default.
const defaultEscalationTemplate = "default"

var escalationTemplates = map[string]string{
	defaultEscalationTemplate: "{{.ActivityType}} overdue by {{.OverdueHours}} business hours (due {{.DueAt}})",
	"reminder":                "Reminder: {{.ActivityType}} is past its SLA, overdue by {{.OverdueHours}} business hours since {{.DueAt}}.",
	"urgent":                  "Urgent: {{.ActivityType}} breached its SLA at escalation level {{.Level}}. Overdue by {{.OverdueHours}} business hours, due {{.DueAt}}.",
}

// KnownEscalationTemplate reports whether name resolves to a template.
func KnownEscalationTemplate(name string) bool {
	if name == "" {
		return true
	}
	_, ok := escalationTemplates[name]
	return ok
}

// RenderEscalationMessage renders the named escalation template with the
// violation data. Render failures fall back to a plain summary so a bad
// template never blocks the notice.
func RenderEscalationMessage(name string, data map[string]interface{}) string {
	tmpl, ok := escalationTemplates[name]
	if !ok {
		tmpl = escalationTemplates[defaultEscalationTemplate]
	}
	out, err := utils.ExecTemplate(tmpl, data)
	if err != nil {
		return fmt.Sprintf("%v overdue by %v business hours (due %v)",
			data["ActivityType"], data["OverdueHours"], data["DueAt"])
	}
	return out
}

// CheckSLAViolations scans open clocks, flips overdue ones to Violated and
// fires any escalation levels whose breach window has elapsed. Safe to call
// from both the API and the dispatcher sweep; the unique (tracking, level)
// index keeps repeated sweeps from double-notifying.
func CheckSLAViolations(ctx context.Context, now time.Time, notifier EscalationNotifier) ([]*SLAViolation, error) {
	db := config.GetDB()
	var fired []*SLAViolation

	var overdue []*SLATracking
	if err := db.WithContext(ctx).
		Where("completed_at IS NULL AND due_at < ?", now).
		Find(&overdue).Error; err != nil {
		return nil, err
	}

	for _, tracking := range overdue {
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if tracking.Status != SLAStatusViolated {
				if err := tx.Model(tracking).UpdateColumn("Status", SLAStatusViolated).Error; err != nil {
					return err
				}
				tracking.Status = SLAStatusViolated
				config.SLAViolationsTotal.Inc()
			}

			var cfg SLAConfig
			if err := tx.Model(&SLAConfig{}).
				Where("activity_type = ?", tracking.ActivityType).Take(&cfg).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return nil
				}
				return err
			}
			var rules []*EscalationRule
			if err := tx.Model(&EscalationRule{}).
				Where("sla_config_id = ?", cfg.ID).
				Order("level asc").
				Find(&rules).Error; err != nil {
				return err
			}

			overdueHours := BusinessHoursBetween(tracking.DueAt, now)
			for _, rule := range rules {
				if overdueHours < rule.HoursAfterBreach {
					break
				}
				var count int64
				if err := tx.Model(&SLAViolation{}).
					Where("tracking_id = ? AND level = ?", tracking.ID, rule.Level).
					Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					continue
				}
				violation := SLAViolation{
					TrackingId:     tracking.ID,
					Level:          rule.Level,
					NotifiedRole:   rule.NotifyRole,
					NotifiedUserId: rule.NotifyUserId,
					Message: RenderEscalationMessage(rule.EmailTemplate, map[string]interface{}{
						"ActivityType": tracking.ActivityType,
						"OverdueHours": fmt.Sprintf("%.1f", overdueHours),
						"DueAt":        tracking.DueAt.Format(time.RFC3339),
						"Level":        rule.Level,
					}),
					NotifiedAt: now,
				}
				if err := tx.Create(&violation).Error; err != nil {
					return err
				}
				if notifier != nil {
					subject := fmt.Sprintf("SLA escalation level %d: %s", rule.Level, tracking.ActivityType)
					var notifyErr error
					if rule.NotifyUserId != nil {
						notifyErr = notifier.NotifyUser(ctx, *rule.NotifyUserId, subject, violation.Message)
					} else {
						notifyErr = notifier.NotifyRole(ctx, rule.NotifyRole, subject, violation.Message)
					}
					if notifyErr != nil {
						config.LogError(config.GetLogger(), "models", "CheckSLAViolations", "notify", violation, notifyErr)
					}
				}
				fired = append(fired, &violation)
			}
			return nil
		})
		if err != nil {
			config.LogError(config.GetLogger(), "models", "CheckSLAViolations", "tracking", tracking.ID, err)
		}
	}
	return fired, nil
}

func CreateSLAConfig(ctx context.Context, input *SLAConfig) (*SLAConfig, error) {
	if input.BusinessHours <= 0 {
		return nil, NewBusinessError("business_hours must be positive")
	}
	if err := utils.ValidateUnique[SLAConfig](ctx, "activity_type", input.ActivityType, 0); err != nil {
		return nil, NewBusinessError(err.Error())
	}
	if input.IsActive == nil {
		input.IsActive = utils.NewTrue()
	}
	if input.BusinessHoursOnly == nil {
		input.BusinessHoursOnly = utils.NewTrue()
	}
	if input.WeekendExcluded == nil {
		input.WeekendExcluded = utils.NewTrue()
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(input).Error; err != nil {
		return nil, err
	}
	return input, nil
}

type UpdateSLAConfigInput struct {
	BusinessHours     float64 `json:"business_hours" binding:"required"`
	BusinessHoursOnly *bool   `json:"business_hours_only"`
	WeekendExcluded   *bool   `json:"weekend_excluded"`
	IsActive          *bool   `json:"is_active"`
}

func UpdateSLAConfig(ctx context.Context, id int, input *UpdateSLAConfigInput) (*SLAConfig, error) {
	if input.BusinessHours <= 0 {
		return nil, NewBusinessError("business_hours must be positive")
	}
	cfg, err := utils.FetchModel[SLAConfig](ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"BusinessHours": input.BusinessHours}
	if input.BusinessHoursOnly != nil {
		updates["BusinessHoursOnly"] = *input.BusinessHoursOnly
	}
	if input.WeekendExcluded != nil {
		updates["WeekendExcluded"] = *input.WeekendExcluded
	}
	if input.IsActive != nil {
		updates["IsActive"] = *input.IsActive
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(cfg).Updates(updates).Error; err != nil {
		return nil, err
	}
	return utils.FetchModel[SLAConfig](ctx, id)
}

func GetSLAConfigs(ctx context.Context) ([]*SLAConfig, error) {
	return utils.FetchAllModels[SLAConfig](ctx)
}

func CreateEscalationRule(ctx context.Context, input *EscalationRule) (*EscalationRule, error) {
	if err := utils.ValidateResourceId[SLAConfig](ctx, input.SLAConfigId); err != nil {
		return nil, NewBusinessError("sla config not found")
	}
	if input.Level <= 0 {
		return nil, NewBusinessError("level must be positive")
	}
	if input.NotifyRole != "" && !input.NotifyRole.Valid() {
		return nil, NewBusinessError("invalid notify role")
	}
	if input.NotifyRole == "" && input.NotifyUserId == nil {
		return nil, NewBusinessError("escalation rule needs a notify role or a notify user")
	}
	if input.NotifyUserId != nil {
		if err := utils.ValidateResourceId[User](ctx, *input.NotifyUserId); err != nil {
			return nil, NewBusinessError("notify user not found")
		}
	}
	if !KnownEscalationTemplate(input.EmailTemplate) {
		return nil, NewBusinessError("unknown email template")
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(input).Error; err != nil {
		return nil, err
	}
	return input, nil
}

func GetEscalationRules(ctx context.Context, slaConfigId int) ([]*EscalationRule, error) {
	return utils.FetchModelsWhere[EscalationRule](ctx, "sla_config_id = ?", slaConfigId)
}

func GetSLATrackings(ctx context.Context, openOnly bool) ([]*SLATracking, error) {
	db := config.GetDB()
	var rows []*SLATracking
	dbCtx := db.WithContext(ctx).Model(&SLATracking{})
	if openOnly {
		dbCtx = dbCtx.Where("completed_at IS NULL")
	}
	if err := dbCtx.Order("due_at asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func GetSLAViolations(ctx context.Context, trackingId int) ([]*SLAViolation, error) {
	return utils.FetchModelsWhere[SLAViolation](ctx, "tracking_id = ?", trackingId)
}

func GetAllSLAViolations(ctx context.Context) ([]*SLAViolation, error) {
	db := config.GetDB()
	var rows []*SLAViolation
	if err := db.WithContext(ctx).Order("notified_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
