package models

import (
	"encoding/json"
)

// Observation Management family. Findings raised during test execution,
// graded by severity and reviewed before they reach the final report.

type ObservationVersion struct {
	VersionCore
}

func (ObservationVersion) TableName() string { return "observation_versions" }

func (v *ObservationVersion) Core() *VersionCore { return &v.VersionCore }
func (v *ObservationVersion) Family() string     { return "observation" }

type ObservationItem struct {
	ItemCore
	Severity ObservationSeverity `gorm:"size:20;not null" json:"severity"`
	Title    string              `gorm:"size:200;not null" json:"title"`
	Detail   string              `gorm:"type:text" json:"detail"`
	Metadata json.RawMessage     `gorm:"type:json" json:"metadata"`
}

func (ObservationItem) TableName() string { return "observation_items" }

func (i *ObservationItem) Base() *ItemCore { return &i.ItemCore }
func (i *ObservationItem) Family() string  { return "observation" }

type NewObservationItem struct {
	Severity ObservationSeverity `json:"severity" binding:"required"`
	Title    string              `json:"title" binding:"required"`
	Detail   string              `json:"detail"`
	Metadata json.RawMessage     `json:"metadata"`
}

func (input *NewObservationItem) ToItem() (*ObservationItem, error) {
	if !input.Severity.Valid() {
		return nil, NewBusinessError("invalid severity")
	}
	return &ObservationItem{
		Severity: input.Severity,
		Title:    input.Title,
		Detail:   input.Detail,
		Metadata: input.Metadata,
	}, nil
}
