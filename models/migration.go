package models

import (
	"github.com/regulens/synapse_backend/config"
)

// MigrateTable syncs the schema. Order matters for foreign-key-ish lookups
// only at seed time; gorm handles the rest.
func MigrateTable() error {
	db := config.GetDB()
	return db.AutoMigrate(
		&User{},
		&TestCycle{},
		&Report{},
		&WorkflowPhase{},

		&ProfilingRuleVersion{},
		&ProfilingRule{},
		&ScopingVersion{},
		&ScopingDecision{},
		&SampleSelectionVersion{},
		&SampleRecord{},
		&ObservationVersion{},
		&ObservationItem{},

		&RuleExecutionJob{},
		&RuleExecutionResult{},

		&SLAConfig{},
		&EscalationRule{},
		&SLATracking{},
		&SLAViolation{},

		&UniversalAssignment{},

		&WorkflowEventRecord{},
		&IdempotencyKey{},
		&History{},
	)
}
