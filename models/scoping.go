package models

// Scoping family. One decision row per report attribute saying whether it is
// tested this cycle.

type ScopingVersion struct {
	VersionCore
}

func (ScopingVersion) TableName() string { return "scoping_versions" }

func (v *ScopingVersion) Core() *VersionCore { return &v.VersionCore }
func (v *ScopingVersion) Family() string     { return "scoping" }

type ScopingDecision struct {
	ItemCore
	AttributeId   int    `gorm:"index;not null" json:"attribute_id"`
	AttributeName string `gorm:"size:200;not null" json:"attribute_name"`
	InScope       *bool  `gorm:"not null" json:"in_scope"`
	Rationale     string `gorm:"type:text" json:"rationale"`
}

func (ScopingDecision) TableName() string { return "scoping_decisions" }

func (i *ScopingDecision) Base() *ItemCore { return &i.ItemCore }
func (i *ScopingDecision) Family() string  { return "scoping" }

type NewScopingDecision struct {
	AttributeId   int    `json:"attribute_id" binding:"required"`
	AttributeName string `json:"attribute_name" binding:"required"`
	InScope       *bool  `json:"in_scope" binding:"required"`
	Rationale     string `json:"rationale"`
}

func (input *NewScopingDecision) ToItem() (*ScopingDecision, error) {
	if input.InScope == nil {
		return nil, NewBusinessError("in_scope is required")
	}
	return &ScopingDecision{
		AttributeId:   input.AttributeId,
		AttributeName: input.AttributeName,
		InScope:       input.InScope,
		Rationale:     input.Rationale,
	}, nil
}
