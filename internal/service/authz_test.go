package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/learnhub/proctor-backend/internal/model"
)

func TestRoleCan(t *testing.T) {
	staff := []Action{
		ActionApproveRequest,
		ActionRejectRequest,
		ActionListPending,
		ActionManageSet,
		ActionManageQuestions,
		ActionAssignStudents,
		ActionViewAssignments,
		ActionMonitorCourse,
	}

	for _, a := range staff {
		if RoleCan(model.RoleStudent, a) {
			t.Errorf("student allowed %s", a)
		}
		if !RoleCan(model.RoleInstructor, a) {
			t.Errorf("instructor denied %s", a)
		}
		if !RoleCan(model.RoleAdmin, a) {
			t.Errorf("admin denied %s", a)
		}
	}

	if !RoleCan(model.RoleStudent, ActionSubmitRequest) {
		t.Errorf("student denied %s", ActionSubmitRequest)
	}
	if RoleCan(model.RoleInstructor, ActionSubmitRequest) {
		t.Errorf("instructor allowed %s", ActionSubmitRequest)
	}

	if RoleCan(model.Role("GHOST"), ActionManageSet) {
		t.Errorf("unknown role allowed %s", ActionManageSet)
	}
}

func TestAuthorize(t *testing.T) {
	owner := uuid.New()

	if !Authorize(model.Actor{ID: owner, Role: model.RoleInstructor}, owner, ActionManageSet) {
		t.Errorf("owner instructor denied")
	}
	if Authorize(model.Actor{ID: uuid.New(), Role: model.RoleInstructor}, owner, ActionManageSet) {
		t.Errorf("non-owner instructor allowed")
	}
	if !Authorize(model.Actor{ID: uuid.New(), Role: model.RoleAdmin}, owner, ActionManageSet) {
		t.Errorf("admin denied on foreign resource")
	}
	// Ownership never rescues a role that lacks the action.
	if Authorize(model.Actor{ID: owner, Role: model.RoleStudent}, owner, ActionManageSet) {
		t.Errorf("student allowed via ownership")
	}
}
