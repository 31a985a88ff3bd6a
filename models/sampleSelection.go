package models

import (
	"encoding/json"
)

// Sample Selection family. Each record is one candidate sample pulled from a
// source system, reviewed like any other versioned item.

type SampleSelectionVersion struct {
	VersionCore
}

func (SampleSelectionVersion) TableName() string { return "sample_selection_versions" }

func (v *SampleSelectionVersion) Core() *VersionCore { return &v.VersionCore }
func (v *SampleSelectionVersion) Family() string     { return "sample_selection" }

type SampleRecord struct {
	ItemCore
	Category   SampleCategory  `gorm:"size:20;not null" json:"category"`
	Source     SampleSource    `gorm:"size:20;not null" json:"source"`
	Identifier string          `gorm:"size:200;not null" json:"identifier"`
	Data       json.RawMessage `gorm:"type:json" json:"data"`
}

func (SampleRecord) TableName() string { return "sample_records" }

func (i *SampleRecord) Base() *ItemCore { return &i.ItemCore }
func (i *SampleRecord) Family() string  { return "sample_selection" }

type NewSampleRecord struct {
	Category   SampleCategory  `json:"category" binding:"required"`
	Source     SampleSource    `json:"source" binding:"required"`
	Identifier string          `json:"identifier" binding:"required"`
	Data       json.RawMessage `json:"data"`
}

func (input *NewSampleRecord) ToItem() (*SampleRecord, error) {
	if !input.Category.Valid() {
		return nil, NewBusinessError("invalid sample category")
	}
	if !input.Source.Valid() {
		return nil, NewBusinessError("invalid sample source")
	}
	return &SampleRecord{
		Category:   input.Category,
		Source:     input.Source,
		Identifier: input.Identifier,
		Data:       input.Data,
	}, nil
}
