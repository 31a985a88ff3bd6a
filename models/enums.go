package models

type UserRole string

const (
	UserRoleAdmin         UserRole = "Admin"
	UserRoleTester        UserRole = "Tester"
	UserRoleTestExecutive UserRole = "Test Executive"
	UserRoleReportOwner   UserRole = "Report Owner"
	UserRoleDataOwner     UserRole = "Data Owner"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleTester, UserRoleTestExecutive, UserRoleReportOwner, UserRoleDataOwner:
		return true
	}
	return false
}

type PhaseName string

const (
	PhasePlanning              PhaseName = "Planning"
	PhaseDataProfiling         PhaseName = "Data Profiling"
	PhaseScoping               PhaseName = "Scoping"
	PhaseSampleSelection       PhaseName = "Sample Selection"
	PhaseDataOwnerId           PhaseName = "Data Owner ID"
	PhaseRequestForInformation PhaseName = "Request for Information"
	PhaseTestExecution         PhaseName = "Test Execution"
	PhaseObservationManagement PhaseName = "Observation Management"
	PhaseReportFinalization    PhaseName = "Report Finalization"
)

// PhaseOrder is the fixed 9-step order every cycle/report pair walks through.
var PhaseOrder = []PhaseName{
	PhasePlanning,
	PhaseDataProfiling,
	PhaseScoping,
	PhaseSampleSelection,
	PhaseDataOwnerId,
	PhaseRequestForInformation,
	PhaseTestExecution,
	PhaseObservationManagement,
	PhaseReportFinalization,
}

// Versioned reports whether a phase completes through the dual-approval
// version lifecycle. The other phases complete by an explicit tester action.
func (p PhaseName) Versioned() bool {
	switch p {
	case PhaseDataProfiling, PhaseScoping, PhaseSampleSelection, PhaseObservationManagement:
		return true
	}
	return false
}

func (p PhaseName) Valid() bool {
	for _, name := range PhaseOrder {
		if name == p {
			return true
		}
	}
	return false
}

// NextPhase returns the phase after p, or "" when p is the last phase.
func NextPhase(p PhaseName) PhaseName {
	for i, name := range PhaseOrder {
		if name == p && i+1 < len(PhaseOrder) {
			return PhaseOrder[i+1]
		}
	}
	return ""
}

type PhaseStatus string

const (
	PhaseStatusNotStarted PhaseStatus = "Not Started"
	PhaseStatusInProgress PhaseStatus = "In Progress"
	PhaseStatusComplete   PhaseStatus = "Complete"
)

type VersionStatus string

const (
	VersionStatusDraft           VersionStatus = "Draft"
	VersionStatusPendingApproval VersionStatus = "Pending Approval"
	VersionStatusApproved        VersionStatus = "Approved"
	VersionStatusRejected        VersionStatus = "Rejected"
	VersionStatusSuperseded      VersionStatus = "Superseded"
)

type Decision string

const (
	DecisionApproved Decision = "Approved"
	DecisionRejected Decision = "Rejected"
)

func (d Decision) Valid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "Pending"
	ItemStatusSubmitted ItemStatus = "Submitted"
	ItemStatusApproved  ItemStatus = "Approved"
	ItemStatusRejected  ItemStatus = "Rejected"
)

type DeciderRole string

const (
	DeciderTester      DeciderRole = "Tester"
	DeciderReportOwner DeciderRole = "Report Owner"
)

type RuleType string

const (
	RuleTypeCompleteness RuleType = "Completeness"
	RuleTypeValidity     RuleType = "Validity"
	RuleTypeAccuracy     RuleType = "Accuracy"
	RuleTypeConsistency  RuleType = "Consistency"
	RuleTypeUniqueness   RuleType = "Uniqueness"
)

func (t RuleType) Valid() bool {
	switch t {
	case RuleTypeCompleteness, RuleTypeValidity, RuleTypeAccuracy, RuleTypeConsistency, RuleTypeUniqueness:
		return true
	}
	return false
}

type SampleCategory string

const (
	SampleCategoryClean    SampleCategory = "Clean"
	SampleCategoryAnomaly  SampleCategory = "Anomaly"
	SampleCategoryBoundary SampleCategory = "Boundary"
)

func (c SampleCategory) Valid() bool {
	return c == SampleCategoryClean || c == SampleCategoryAnomaly || c == SampleCategoryBoundary
}

type SampleSource string

const (
	SampleSourceLLM            SampleSource = "LLM"
	SampleSourceManual         SampleSource = "Manual"
	SampleSourceCarriedForward SampleSource = "Carried Forward"
)

func (s SampleSource) Valid() bool {
	return s == SampleSourceLLM || s == SampleSourceManual || s == SampleSourceCarriedForward
}

type ObservationSeverity string

const (
	SeverityLow      ObservationSeverity = "Low"
	SeverityMedium   ObservationSeverity = "Medium"
	SeverityHigh     ObservationSeverity = "High"
	SeverityCritical ObservationSeverity = "Critical"
)

func (s ObservationSeverity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

type JobStatus string

const (
	JobStatusQueued    JobStatus = "Queued"
	JobStatusRunning   JobStatus = "Running"
	JobStatusCompleted JobStatus = "Completed"
	JobStatusFailed    JobStatus = "Failed"
)

type AssignmentStatus string

const (
	AssignmentStatusAssigned     AssignmentStatus = "Assigned"
	AssignmentStatusAcknowledged AssignmentStatus = "Acknowledged"
	AssignmentStatusCompleted    AssignmentStatus = "Completed"
)

type CycleStatus string

const (
	CycleStatusActive   CycleStatus = "Active"
	CycleStatusClosed   CycleStatus = "Closed"
	CycleStatusPlanned  CycleStatus = "Planned"
	CycleStatusArchived CycleStatus = "Archived"
)

type IdempotencyStatus string

const (
	IdempotencyStatusStarted   IdempotencyStatus = "STARTED"
	IdempotencyStatusSucceeded IdempotencyStatus = "SUCCEEDED"
	IdempotencyStatusFailed    IdempotencyStatus = "FAILED"
)

type OutboxPublishStatus string

const (
	OutboxPublishStatusPending   OutboxPublishStatus = "PENDING"
	OutboxPublishStatusPublished OutboxPublishStatus = "PUBLISHED"
	OutboxPublishStatusDead      OutboxPublishStatus = "DEAD"
)

// Workflow signal names understood by the workflow gateway.
const (
	SignalApproval = "approval_signal"
	SignalRevision = "revision_signal"
)

// Workflow query names understood by the workflow gateway.
const (
	QueryPhaseStatus   = "get_phase_status"
	QueryPhaseVersions = "get_phase_versions"
)
