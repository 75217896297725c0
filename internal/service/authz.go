package service

import (
	"github.com/google/uuid"
	"github.com/learnhub/proctor-backend/internal/model"
)

// Action names a protected operation. Role capability lives in one
// declarative table instead of inline role-string comparisons scattered
// across operations.
type Action string

const (
	ActionSubmitRequest   Action = "request:submit"
	ActionApproveRequest  Action = "request:approve"
	ActionRejectRequest   Action = "request:reject"
	ActionListPending     Action = "request:list_pending"
	ActionManageSet       Action = "set:manage"
	ActionManageQuestions Action = "question:manage"
	ActionAssignStudents  Action = "assignment:write"
	ActionViewAssignments Action = "assignment:read"
	ActionMonitorCourse   Action = "course:monitor"
)

// staffActions are permitted to instructors (owner-scoped) and admins
// (unscoped).
var staffActions = map[Action]bool{
	ActionApproveRequest:  true,
	ActionRejectRequest:   true,
	ActionListPending:     true,
	ActionManageSet:       true,
	ActionManageQuestions: true,
	ActionAssignStudents:  true,
	ActionViewAssignments: true,
	ActionMonitorCourse:   true,
}

// rolePermissions is the (role, action) → allowed table.
var rolePermissions = map[model.Role]map[Action]bool{
	model.RoleStudent: {
		ActionSubmitRequest: true,
	},
	model.RoleInstructor: staffActions,
	model.RoleAdmin: func() map[Action]bool {
		all := map[Action]bool{ActionSubmitRequest: true}
		for a := range staffActions {
			all[a] = true
		}
		return all
	}(),
}

// RoleCan reports whether a role may ever perform an action, regardless of
// resource ownership. Used to reject implausible callers before any lookup,
// so unauthorized callers learn nothing about resource existence.
func RoleCan(role model.Role, action Action) bool {
	return rolePermissions[role][action]
}

// Authorize decides whether an actor may perform an action against a
// resource owned by resourceOwnerID. Admins pass any ownership check;
// instructors only on resources they own.
func Authorize(actor model.Actor, resourceOwnerID uuid.UUID, action Action) bool {
	if !RoleCan(actor.Role, action) {
		return false
	}
	if actor.Role == model.RoleAdmin {
		return true
	}
	return actor.ID == resourceOwnerID
}
