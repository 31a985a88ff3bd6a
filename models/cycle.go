package models

import (
	"context"
	"time"

	"github.com/regulens/synapse_backend/config"
	"github.com/regulens/synapse_backend/utils"
)

// TestCycle groups the reports under test for one regulatory period.
type TestCycle struct {
	ID        int         `gorm:"primary_key" json:"id"`
	Name      string      `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Status    CycleStatus `gorm:"size:20;not null;default:'Planned'" json:"status"`
	StartDate *time.Time  `json:"start_date"`
	EndDate   *time.Time  `json:"end_date"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewTestCycle struct {
	Name      string     `json:"name" binding:"required"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

func CreateTestCycle(ctx context.Context, input *NewTestCycle) (*TestCycle, error) {

	if err := utils.ValidateUnique[TestCycle](ctx, "name", input.Name, 0); err != nil {
		return nil, NewBusinessError(err.Error())
	}

	db := config.GetDB()
	cycle := TestCycle{
		Name:      input.Name,
		Status:    CycleStatusActive,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}
	if err := db.WithContext(ctx).Create(&cycle).Error; err != nil {
		return nil, err
	}
	return &cycle, nil
}

func GetTestCycle(ctx context.Context, id int) (*TestCycle, error) {
	return utils.FetchModel[TestCycle](ctx, id)
}

func GetTestCycles(ctx context.Context) ([]*TestCycle, error) {
	return utils.FetchAllModels[TestCycle](ctx)
}
