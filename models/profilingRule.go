package models

import (
	"encoding/json"
)

// Data Profiling family. Rules are generated by the LLM pipeline or entered
// by testers, then go through the dual tester/report-owner review.

type ProfilingRuleVersion struct {
	VersionCore
}

func (ProfilingRuleVersion) TableName() string { return "profiling_rule_versions" }

func (v *ProfilingRuleVersion) Core() *VersionCore { return &v.VersionCore }
func (v *ProfilingRuleVersion) Family() string     { return "profiling" }

type ProfilingRule struct {
	ItemCore
	AttributeId  int             `gorm:"index;not null" json:"attribute_id"`
	RuleName     string          `gorm:"size:200;not null" json:"rule_name"`
	RuleType     RuleType        `gorm:"size:30;not null" json:"rule_type"`
	Definition   json.RawMessage `gorm:"type:json" json:"definition"`
	LLMRationale string          `gorm:"type:text" json:"llm_rationale"`
}

func (ProfilingRule) TableName() string { return "profiling_rules" }

func (i *ProfilingRule) Base() *ItemCore { return &i.ItemCore }
func (i *ProfilingRule) Family() string  { return "profiling" }

type NewProfilingRule struct {
	AttributeId  int             `json:"attribute_id" binding:"required"`
	RuleName     string          `json:"rule_name" binding:"required"`
	RuleType     RuleType        `json:"rule_type" binding:"required"`
	Definition   json.RawMessage `json:"definition"`
	LLMRationale string          `json:"llm_rationale"`
}

func (input *NewProfilingRule) ToItem() (*ProfilingRule, error) {
	if !input.RuleType.Valid() {
		return nil, NewBusinessError("invalid rule type")
	}
	return &ProfilingRule{
		AttributeId:  input.AttributeId,
		RuleName:     input.RuleName,
		RuleType:     input.RuleType,
		Definition:   input.Definition,
		LLMRationale: input.LLMRationale,
	}, nil
}
