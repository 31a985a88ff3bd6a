package models_test

import (
	"testing"

	"github.com/regulens/synapse_backend/models"
)

func dec(d models.Decision) *models.Decision { return &d }

func TestDeriveItemStatus(t *testing.T) {
	approved := dec(models.DecisionApproved)
	rejected := dec(models.DecisionRejected)

	cases := []struct {
		name   string
		tester *models.Decision
		owner  *models.Decision
		want   models.ItemStatus
	}{
		{"no decisions", nil, nil, models.ItemStatusPending},
		{"tester approved only", approved, nil, models.ItemStatusSubmitted},
		{"both approved", approved, approved, models.ItemStatusApproved},
		{"tester rejected", rejected, nil, models.ItemStatusRejected},
		{"owner rejected overrides tester approval", approved, rejected, models.ItemStatusRejected},
		{"owner approved without tester", nil, approved, models.ItemStatusPending},
		{"both rejected", rejected, rejected, models.ItemStatusRejected},
	}
	for _, c := range cases {
		if got := models.DeriveItemStatus(c.tester, c.owner); got != c.want {
			t.Errorf("%s: got %q want %q", c.name, got, c.want)
		}
	}
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]models.VersionStatus{
		{models.VersionStatusDraft, models.VersionStatusPendingApproval},
		{models.VersionStatusPendingApproval, models.VersionStatusApproved},
		{models.VersionStatusPendingApproval, models.VersionStatusRejected},
		{models.VersionStatusApproved, models.VersionStatusSuperseded},
	}
	for _, pair := range allowed {
		if !models.CanTransition(pair[0], pair[1]) {
			t.Errorf("expected %q -> %q to be allowed", pair[0], pair[1])
		}
	}

	denied := [][2]models.VersionStatus{
		{models.VersionStatusDraft, models.VersionStatusApproved},
		{models.VersionStatusDraft, models.VersionStatusRejected},
		{models.VersionStatusApproved, models.VersionStatusDraft},
		{models.VersionStatusApproved, models.VersionStatusPendingApproval},
		{models.VersionStatusRejected, models.VersionStatusApproved},
		{models.VersionStatusRejected, models.VersionStatusDraft},
		{models.VersionStatusSuperseded, models.VersionStatusDraft},
		{models.VersionStatusPendingApproval, models.VersionStatusSuperseded},
	}
	for _, pair := range denied {
		if models.CanTransition(pair[0], pair[1]) {
			t.Errorf("expected %q -> %q to be denied", pair[0], pair[1])
		}
	}
}

func TestRecomputeCounts_TotalInvariant(t *testing.T) {
	statuses := []models.ItemStatus{
		models.ItemStatusApproved,
		models.ItemStatusApproved,
		models.ItemStatusRejected,
		models.ItemStatusPending,
		models.ItemStatusSubmitted,
	}
	total, approved, rejected, pending := models.RecomputeCounts(statuses)
	if total != 5 || approved != 2 || rejected != 1 {
		t.Fatalf("got total=%d approved=%d rejected=%d", total, approved, rejected)
	}
	// Submitted counts as pending until the report owner decides.
	if pending != 2 {
		t.Fatalf("got pending=%d, want 2", pending)
	}
	if total != approved+rejected+pending {
		t.Fatalf("count invariant broken: %d != %d+%d+%d", total, approved, rejected, pending)
	}

	total, approved, rejected, pending = models.RecomputeCounts(nil)
	if total != 0 || approved != 0 || rejected != 0 || pending != 0 {
		t.Fatalf("empty slice should produce zero counts")
	}
}

func TestCarryForwardEligible(t *testing.T) {
	approved := dec(models.DecisionApproved)
	rejected := dec(models.DecisionRejected)

	cases := []struct {
		name string
		core models.ItemCore
		want bool
	}{
		{"tester approved, owner silent", models.ItemCore{TesterDecision: approved}, true},
		{"tester approved, owner approved", models.ItemCore{TesterDecision: approved, OwnerDecision: approved}, true},
		{"tester approved, owner rejected", models.ItemCore{TesterDecision: approved, OwnerDecision: rejected}, false},
		{"tester rejected", models.ItemCore{TesterDecision: rejected}, false},
		{"undecided", models.ItemCore{}, false},
	}
	for _, c := range cases {
		if got := models.CarryForwardEligible(&c.core); got != c.want {
			t.Errorf("%s: got %v want %v", c.name, got, c.want)
		}
	}
}

func TestAllDecided(t *testing.T) {
	approved := dec(models.DecisionApproved)
	rejected := dec(models.DecisionRejected)

	if models.AllDecided(nil) {
		t.Error("empty version must not count as fully decided")
	}
	full := []*models.ItemCore{
		{TesterDecision: approved, OwnerDecision: approved},
		{TesterDecision: approved, OwnerDecision: rejected},
	}
	if !models.AllDecided(full) {
		t.Error("expected fully decided")
	}
	partial := []*models.ItemCore{
		{TesterDecision: approved, OwnerDecision: approved},
		{TesterDecision: approved},
	}
	if models.AllDecided(partial) {
		t.Error("item without an owner decision must block")
	}
}

func TestPhaseOrderAndNextPhase(t *testing.T) {
	if len(models.PhaseOrder) != 9 {
		t.Fatalf("expected 9 phases, got %d", len(models.PhaseOrder))
	}
	if models.PhaseOrder[0] != models.PhasePlanning {
		t.Errorf("workflow must start at Planning, got %q", models.PhaseOrder[0])
	}
	if models.PhaseOrder[len(models.PhaseOrder)-1] != models.PhaseReportFinalization {
		t.Errorf("workflow must end at Report Finalization")
	}

	for i := 0; i < len(models.PhaseOrder)-1; i++ {
		if got := models.NextPhase(models.PhaseOrder[i]); got != models.PhaseOrder[i+1] {
			t.Errorf("NextPhase(%q) = %q, want %q", models.PhaseOrder[i], got, models.PhaseOrder[i+1])
		}
	}
	if got := models.NextPhase(models.PhaseReportFinalization); got != "" {
		t.Errorf("last phase must have no successor, got %q", got)
	}
	if got := models.NextPhase("Nonexistent"); got != "" {
		t.Errorf("unknown phase must have no successor, got %q", got)
	}
}

func TestPhaseNameVersioned(t *testing.T) {
	versioned := map[models.PhaseName]bool{
		models.PhaseDataProfiling:         true,
		models.PhaseScoping:               true,
		models.PhaseSampleSelection:       true,
		models.PhaseObservationManagement: true,
	}
	for _, name := range models.PhaseOrder {
		if got := name.Versioned(); got != versioned[name] {
			t.Errorf("%q.Versioned() = %v, want %v", name, got, versioned[name])
		}
	}
}

func TestWorkflowIdFor(t *testing.T) {
	if got := models.WorkflowIdFor(3, 17); got != "cycle-3-report-17" {
		t.Errorf("got %q", got)
	}
}
