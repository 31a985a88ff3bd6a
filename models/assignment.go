package models

import (
	"context"
	"time"

	"github.com/regulens/synapse_backend/config"
	"github.com/regulens/synapse_backend/utils"
	"gorm.io/gorm"
)

// UniversalAssignment is a cross-phase work handoff between roles (provide
// data, review a version, confirm an observation). It carries its own SLA
// clock, opened on creation and closed on completion.
type UniversalAssignment struct {
	ID             int              `gorm:"primary_key" json:"id"`
	AssignmentType string           `gorm:"size:60;not null" json:"assignment_type" binding:"required"`
	Title          string           `gorm:"size:200;not null" json:"title" binding:"required"`
	Description    string           `gorm:"type:text" json:"description"`
	PhaseId        *int             `gorm:"index" json:"phase_id"`
	FromUserId     int              `gorm:"not null" json:"from_user_id"`
	ToRole         UserRole         `gorm:"size:20;not null" json:"to_role" binding:"required"`
	ToUserId       *int             `gorm:"index" json:"to_user_id"`
	Status         AssignmentStatus `gorm:"size:20;not null;default:'Assigned'" json:"status"`
	AcknowledgedAt *time.Time       `json:"acknowledged_at"`
	CompletedAt    *time.Time       `json:"completed_at"`
	CompletionNote string           `gorm:"type:text" json:"completion_note"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUniversalAssignment struct {
	AssignmentType string   `json:"assignment_type" binding:"required"`
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description"`
	PhaseId        *int     `json:"phase_id"`
	ToRole         UserRole `json:"to_role" binding:"required"`
	ToUserId       *int     `json:"to_user_id"`
}

func CreateUniversalAssignment(ctx context.Context, fromUserId int, input *NewUniversalAssignment, notifier EscalationNotifier) (*UniversalAssignment, error) {

	if !input.ToRole.Valid() {
		return nil, NewBusinessError("invalid target role")
	}
	if input.PhaseId != nil {
		if err := utils.ValidateResourceId[WorkflowPhase](ctx, *input.PhaseId); err != nil {
			return nil, NewBusinessError("phase not found")
		}
	}
	if input.ToUserId != nil {
		if err := utils.ValidateResourceId[User](ctx, *input.ToUserId); err != nil {
			return nil, NewBusinessError("target user not found")
		}
	}

	assignment := UniversalAssignment{
		AssignmentType: input.AssignmentType,
		Title:          input.Title,
		Description:    input.Description,
		PhaseId:        input.PhaseId,
		FromUserId:     fromUserId,
		ToRole:         input.ToRole,
		ToUserId:       input.ToUserId,
		Status:         AssignmentStatusAssigned,
	}
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		return OpenSLATracking(tx, assignment.AssignmentType, nil, &assignment.ID, time.Now())
	})
	if err != nil {
		return nil, err
	}

	if notifier != nil {
		if err := notifier.NotifyRole(ctx, assignment.ToRole,
			"New assignment: "+assignment.Title, assignment.Description); err != nil {
			config.LogError(config.GetLogger(), "models", "CreateUniversalAssignment", "notify", assignment.ID, err)
		}
	}
	return &assignment, nil
}

// AcknowledgeAssignment moves Assigned -> Acknowledged for the acting user.
func AcknowledgeAssignment(ctx context.Context, id int, userId int) (*UniversalAssignment, error) {

	db := config.GetDB()
	assignment, err := utils.FetchModel[UniversalAssignment](ctx, id)
	if err != nil {
		return nil, err
	}
	if assignment.Status != AssignmentStatusAssigned {
		return nil, NewBusinessError("assignment is not awaiting acknowledgement")
	}
	now := time.Now()
	if err := db.WithContext(ctx).Model(assignment).Updates(map[string]interface{}{
		"Status":         AssignmentStatusAcknowledged,
		"ToUserId":       userId,
		"AcknowledgedAt": now,
	}).Error; err != nil {
		return nil, err
	}
	assignment.Status = AssignmentStatusAcknowledged
	assignment.ToUserId = &userId
	assignment.AcknowledgedAt = &now
	return assignment, nil
}

// CompleteAssignment closes the assignment and its SLA clock.
func CompleteAssignment(ctx context.Context, id int, note string) (*UniversalAssignment, error) {

	db := config.GetDB()
	var assignment *UniversalAssignment
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a UniversalAssignment
		if err := tx.Where("id = ?", id).First(&a).Error; err != nil {
			return utils.ErrorRecordNotFound
		}
		if a.Status == AssignmentStatusCompleted {
			return NewBusinessError("assignment is already completed")
		}
		now := time.Now()
		if err := tx.Model(&a).Updates(map[string]interface{}{
			"Status":         AssignmentStatusCompleted,
			"CompletedAt":    now,
			"CompletionNote": note,
		}).Error; err != nil {
			return err
		}
		if err := CompleteAssignmentSLATracking(tx, a.ID, now); err != nil {
			return err
		}
		a.Status = AssignmentStatusCompleted
		a.CompletedAt = &now
		a.CompletionNote = note
		assignment = &a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

// GetAssignments lists assignments visible to a role, optionally scoped to a
// phase. Admin sees everything.
func GetAssignments(ctx context.Context, role UserRole, phaseId *int) ([]*UniversalAssignment, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&UniversalAssignment{})
	if role != UserRoleAdmin {
		dbCtx = dbCtx.Where("to_role = ?", role)
	}
	if phaseId != nil {
		dbCtx = dbCtx.Where("phase_id = ?", *phaseId)
	}
	var rows []*UniversalAssignment
	if err := dbCtx.Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
