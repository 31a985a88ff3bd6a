package models

import (
	"context"
	"errors"
	"time"

	"github.com/regulens/synapse_backend/config"
	"github.com/regulens/synapse_backend/utils"
	"gorm.io/gorm"
)

type History struct {
	ID            int       `gorm:"primary_key" json:"id"`
	ActionType    string    `gorm:"size:20;not null" json:"action_type" binding:"required"`
	Before        string    `gorm:"type:text" json:"before"`
	After         string    `gorm:"type:text" json:"after"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	ReferenceID   string    `gorm:"index;size:36" json:"reference_id"`
	ReferenceType string    `gorm:"size:255" json:"reference_type"`
	UserId        int       `gorm:"index;not null" json:"user_id"`
	UserName      string    `gorm:"size:100" json:"user_name"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func createHistory(tx *gorm.DB,
	actionType string,
	referenceId string,
	referenceType string,
	before interface{},
	after interface{},
	description string) (err error) {

	var history History

	b, _ := utils.MarshalToJSON(before)
	a, _ := utils.MarshalToJSON(after)

	ctx := tx.Statement.Context
	// get userId, userName from context
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return errors.New("user id is required")
	}
	userName, _ := utils.GetUserNameFromContext(ctx)

	history.ActionType = actionType
	history.Before = b
	history.After = a
	history.Description = description
	history.ReferenceID = referenceId
	history.ReferenceType = referenceType
	history.UserId = userId
	history.UserName = userName

	return tx.Create(&history).Error
}

// ListVersionHistory lists the audit trail of one phase version.
func ListVersionHistory[V any, PV VersionPtr[V]](ctx context.Context, versionId string) ([]*History, error) {
	var v V
	db := config.GetDB()
	return GetHistories(db.WithContext(ctx), PV(&v).Family()+"_version", versionId)
}

// GetHistories lists audit rows for one entity, newest first.
func GetHistories(tx *gorm.DB, referenceType string, referenceId string) ([]*History, error) {
	var histories []*History
	err := tx.Where("reference_type = ? AND reference_id = ?", referenceType, referenceId).
		Order("created_at DESC").Find(&histories).Error
	return histories, err
}
