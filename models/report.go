package models

import (
	"context"
	"time"

	"github.com/regulens/synapse_backend/config"
	"github.com/regulens/synapse_backend/utils"
)

// Report is one regulatory report under test inside a cycle. The 9 workflow
// phases hang off the cycle/report pair.
type Report struct {
	ID            int       `gorm:"primary_key" json:"id"`
	CycleId       int       `gorm:"index;not null" json:"cycle_id" binding:"required"`
	Name          string    `gorm:"size:200;not null" json:"name" binding:"required"`
	RegulationRef string    `gorm:"size:100" json:"regulation_ref"`
	OwnerUserId   *int      `json:"owner_user_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewReport struct {
	Name          string `json:"name" binding:"required"`
	RegulationRef string `json:"regulation_ref"`
	OwnerUserId   *int   `json:"owner_user_id"`
}

func CreateReport(ctx context.Context, cycleId int, input *NewReport) (*Report, error) {

	if err := utils.ValidateResourceId[TestCycle](ctx, cycleId); err != nil {
		return nil, err
	}
	if input.OwnerUserId != nil {
		if err := utils.ValidateResourceId[User](ctx, *input.OwnerUserId); err != nil {
			return nil, NewBusinessError("owner user not found")
		}
	}

	db := config.GetDB()
	report := Report{
		CycleId:       cycleId,
		Name:          input.Name,
		RegulationRef: input.RegulationRef,
		OwnerUserId:   input.OwnerUserId,
	}
	if err := db.WithContext(ctx).Create(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func GetReport(ctx context.Context, id int) (*Report, error) {
	return utils.FetchModel[Report](ctx, id)
}

func GetReportsByCycle(ctx context.Context, cycleId int) ([]*Report, error) {
	return utils.FetchModelsWhere[Report](ctx, "cycle_id = ?", cycleId)
}
