package models

import (
	"fmt"

	"github.com/regulens/synapse_backend/config"
)

// Authorization is a declarative policy table keyed by (resource, action),
// checked once by the authorize middleware. Admin passes everything.

type Resource string

const (
	ResourceCycles      Resource = "cycles"
	ResourceReports     Resource = "reports"
	ResourcePhases      Resource = "phases"
	ResourceVersions    Resource = "versions"
	ResourceDecisions   Resource = "decisions"
	ResourceExecution   Resource = "execution"
	ResourceSLA         Resource = "sla"
	ResourceAssignments Resource = "assignments"
	ResourceMetrics     Resource = "metrics"
	ResourceUsers       Resource = "users"
	ResourceReportFinal Resource = "report_finalization"
)

type Action string

const (
	ActionRead                 Action = "read"
	ActionCreate               Action = "create"
	ActionUpdate               Action = "update"
	ActionDelete               Action = "delete"
	ActionSubmit               Action = "submit"
	ActionApprove              Action = "approve"
	ActionTesterDecision       Action = "tester_decision"
	ActionReportOwnerDecision  Action = "report_owner_decision"
	ActionExecute              Action = "execute"
	ActionExport               Action = "export"
)

var testerRoles = []UserRole{UserRoleTester, UserRoleTestExecutive}
var allRoles = []UserRole{UserRoleTester, UserRoleTestExecutive, UserRoleReportOwner, UserRoleDataOwner}

// policyTable lists the non-admin roles allowed per (resource, action).
// Admin is implicitly allowed everywhere and is not listed.
var policyTable = map[Resource]map[Action][]UserRole{
	ResourceCycles: {
		ActionRead:   allRoles,
		ActionCreate: {UserRoleTestExecutive},
	},
	ResourceReports: {
		ActionRead:   allRoles,
		ActionCreate: {UserRoleTestExecutive},
	},
	ResourcePhases: {
		ActionRead:   allRoles,
		ActionCreate: {UserRoleTester, UserRoleTestExecutive},
		ActionUpdate: {UserRoleTester, UserRoleTestExecutive},
	},
	ResourceVersions: {
		ActionRead:    allRoles,
		ActionCreate:  testerRoles,
		ActionUpdate:  testerRoles,
		ActionDelete:  testerRoles,
		ActionSubmit:  testerRoles,
		ActionApprove: {UserRoleReportOwner},
	},
	ResourceDecisions: {
		ActionTesterDecision:      testerRoles,
		ActionReportOwnerDecision: {UserRoleReportOwner},
	},
	ResourceExecution: {
		ActionRead:    allRoles,
		ActionExecute: testerRoles,
	},
	ResourceSLA: {
		ActionRead:   allRoles,
		ActionCreate: {UserRoleTestExecutive},
		ActionUpdate: {UserRoleTestExecutive},
		ActionDelete: {UserRoleTestExecutive},
	},
	ResourceAssignments: {
		ActionRead:   allRoles,
		ActionCreate: {UserRoleTester, UserRoleTestExecutive, UserRoleReportOwner},
		ActionUpdate: allRoles,
	},
	ResourceMetrics: {
		ActionRead: allRoles,
	},
	ResourceUsers: {
		ActionRead: allRoles,
	},
	ResourceReportFinal: {
		ActionExport: {UserRoleTester, UserRoleTestExecutive, UserRoleReportOwner},
	},
}

// IsAllowed checks the policy table for a role.
func IsAllowed(role UserRole, resource Resource, action Action) bool {
	if role == UserRoleAdmin {
		return true
	}
	actions, ok := policyTable[resource]
	if !ok {
		return false
	}
	roles, ok := actions[action]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// AllowedActions flattens a role's permissions to "resource|action" keys,
// used by the middleware's redis-cached lookup.
func AllowedActions(role UserRole) map[string]bool {
	allowed := make(map[string]bool)
	for resource, actions := range policyTable {
		for action, roles := range actions {
			if role == UserRoleAdmin {
				allowed[PolicyKey(resource, action)] = true
				continue
			}
			for _, r := range roles {
				if r == role {
					allowed[PolicyKey(resource, action)] = true
				}
			}
		}
	}
	return allowed
}

func PolicyKey(resource Resource, action Action) string {
	return fmt.Sprintf("%s|%s", resource, action)
}

// GetAllowedActionsCached resolves a role's allow-list from redis or the table.
func GetAllowedActionsCached(role UserRole) (map[string]bool, error) {
	var allowed map[string]bool
	exists, err := config.GetRedisObject("AllowedActions:Role:"+string(role), &allowed)
	if err != nil {
		return nil, err
	}
	if !exists {
		allowed = AllowedActions(role)
		if err := config.SetRedisObject("AllowedActions:Role:"+string(role), &allowed, 0); err != nil {
			return nil, err
		}
	}
	return allowed, nil
}
