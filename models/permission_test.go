package models_test

import (
	"testing"

	"github.com/regulens/synapse_backend/models"
)

func TestIsAllowed_AdminPassesEverything(t *testing.T) {
	resources := []models.Resource{
		models.ResourceCycles, models.ResourceVersions, models.ResourceDecisions,
		models.ResourceExecution, models.ResourceSLA, models.ResourceAssignments,
		models.ResourceMetrics, models.ResourceUsers, models.ResourceReportFinal,
	}
	actions := []models.Action{
		models.ActionRead, models.ActionCreate, models.ActionUpdate, models.ActionDelete,
		models.ActionSubmit, models.ActionApprove, models.ActionExecute, models.ActionExport,
	}
	for _, res := range resources {
		for _, act := range actions {
			if !models.IsAllowed(models.UserRoleAdmin, res, act) {
				t.Errorf("admin denied %s %s", res, act)
			}
		}
	}
}

func TestIsAllowed_RoleSeparation(t *testing.T) {
	// Testers build and submit versions but never approve them.
	if !models.IsAllowed(models.UserRoleTester, models.ResourceVersions, models.ActionSubmit) {
		t.Error("tester must be able to submit versions")
	}
	if models.IsAllowed(models.UserRoleTester, models.ResourceVersions, models.ActionApprove) {
		t.Error("tester must not approve versions")
	}

	// Report owners approve but never edit version content.
	if !models.IsAllowed(models.UserRoleReportOwner, models.ResourceVersions, models.ActionApprove) {
		t.Error("report owner must be able to approve versions")
	}
	if models.IsAllowed(models.UserRoleReportOwner, models.ResourceVersions, models.ActionUpdate) {
		t.Error("report owner must not edit version items")
	}
	if models.IsAllowed(models.UserRoleReportOwner, models.ResourceVersions, models.ActionSubmit) {
		t.Error("report owner must not submit versions")
	}

	// Decision endpoints are split by decider.
	if models.IsAllowed(models.UserRoleTester, models.ResourceDecisions, models.ActionReportOwnerDecision) {
		t.Error("tester must not record report owner decisions")
	}
	if models.IsAllowed(models.UserRoleReportOwner, models.ResourceDecisions, models.ActionTesterDecision) {
		t.Error("report owner must not record tester decisions")
	}

	// Data owners only read.
	if models.IsAllowed(models.UserRoleDataOwner, models.ResourceVersions, models.ActionCreate) {
		t.Error("data owner must not create versions")
	}
	if !models.IsAllowed(models.UserRoleDataOwner, models.ResourceVersions, models.ActionRead) {
		t.Error("data owner must be able to read versions")
	}

	// Testers complete non-versioned phases; owners and data owners do not.
	if !models.IsAllowed(models.UserRoleTester, models.ResourcePhases, models.ActionUpdate) {
		t.Error("tester must be able to complete phases")
	}
	if models.IsAllowed(models.UserRoleReportOwner, models.ResourcePhases, models.ActionUpdate) {
		t.Error("report owner must not complete phases")
	}
	if models.IsAllowed(models.UserRoleDataOwner, models.ResourcePhases, models.ActionUpdate) {
		t.Error("data owner must not complete phases")
	}

	// Only test executives manage cycles and SLA budgets.
	if models.IsAllowed(models.UserRoleTester, models.ResourceCycles, models.ActionCreate) {
		t.Error("tester must not create cycles")
	}
	if !models.IsAllowed(models.UserRoleTestExecutive, models.ResourceSLA, models.ActionCreate) {
		t.Error("test executive must manage sla configs")
	}
}

func TestIsAllowed_UnknownResourceOrAction(t *testing.T) {
	if models.IsAllowed(models.UserRoleTester, "nonexistent", models.ActionRead) {
		t.Error("unknown resource must be denied")
	}
	if models.IsAllowed(models.UserRoleTester, models.ResourceCycles, "nonexistent") {
		t.Error("unknown action must be denied")
	}
}

func TestAllowedActions_MatchesIsAllowed(t *testing.T) {
	roles := []models.UserRole{
		models.UserRoleTester, models.UserRoleTestExecutive,
		models.UserRoleReportOwner, models.UserRoleDataOwner,
	}
	checks := []struct {
		resource models.Resource
		action   models.Action
	}{
		{models.ResourceVersions, models.ActionSubmit},
		{models.ResourceVersions, models.ActionApprove},
		{models.ResourceDecisions, models.ActionTesterDecision},
		{models.ResourceDecisions, models.ActionReportOwnerDecision},
		{models.ResourceExecution, models.ActionExecute},
		{models.ResourceReportFinal, models.ActionExport},
	}
	for _, role := range roles {
		flat := models.AllowedActions(role)
		for _, c := range checks {
			want := models.IsAllowed(role, c.resource, c.action)
			if flat[models.PolicyKey(c.resource, c.action)] != want {
				t.Errorf("role %s: flattened map disagrees with IsAllowed for %s %s", role, c.resource, c.action)
			}
		}
	}
}
