// Package policy decides who may do what with tasks and users. Every handler
// consults Authorize; decisions are pure functions of principal, action and
// resource.
package policy

import (
	"errors"

	"task_manager/internal/models"
)

// Action is an operation subject to authorization.
type Action string

const (
	ListTasks    Action = "list_tasks"
	ViewTask     Action = "view_task"
	CreateTask   Action = "create_task"
	UpdateTask   Action = "update_task"
	DeleteTask   Action = "delete_task"
	ListUsers    Action = "list_users"
	RegisterUser Action = "register_user"
)

// Denial reasons, surfaced verbatim to clients.
const (
	ReasonAdminOnly      = "Requires admin role"
	ReasonViewNotOwner   = "Not allowed to view this task"
	ReasonUpdateNotOwner = "Not allowed to update this task"
	ReasonUnknownAction  = "Action not allowed"
)

// ErrForbidden is matched with errors.Is for any denied Decision.
var ErrForbidden = errors.New("forbidden")

// Principal is the caller on whose behalf an action runs. A nil *Principal
// is an anonymous caller.
type Principal struct {
	UserID int
	Role   models.Role
}

// PrincipalOf builds the principal for an authenticated user.
func PrincipalOf(u models.User) *Principal {
	return &Principal{UserID: u.ID, Role: u.Role}
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == models.RoleAdmin
}

// Options carries deployment switches that influence decisions.
type Options struct {
	PublicRegistration bool
}

type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// Err returns nil when allowed, otherwise a *DeniedError.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &DeniedError{Reason: d.Reason}
}

// DeniedError carries the reason of a denied decision.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string { return "forbidden: " + e.Reason }

func (e *DeniedError) Is(target error) bool { return target == ErrForbidden }

// Policy evaluates decisions under fixed Options.
type Policy struct {
	opts Options
}

func New(opts Options) *Policy {
	return &Policy{opts: opts}
}

// Authorize decides whether p may perform a on task. task is ignored by
// actions that do not target a single task and may be nil for them.
func (pol *Policy) Authorize(p *Principal, a Action, task *models.Task) Decision {
	if a == RegisterUser {
		if p.IsAdmin() || pol.opts.PublicRegistration {
			return allow()
		}
		return deny(ReasonAdminOnly)
	}

	// every other action needs an authenticated caller
	if p == nil {
		return deny(ReasonUnknownAction)
	}

	switch a {
	case ListTasks:
		return allow()
	case CreateTask, DeleteTask, ListUsers:
		if p.IsAdmin() {
			return allow()
		}
		return deny(ReasonAdminOnly)
	case ViewTask:
		return ownerOrAdmin(p, task, ReasonViewNotOwner)
	case UpdateTask:
		return ownerOrAdmin(p, task, ReasonUpdateNotOwner)
	default:
		return deny(ReasonUnknownAction)
	}
}

func ownerOrAdmin(p *Principal, task *models.Task, reason string) Decision {
	if p.IsAdmin() {
		return allow()
	}
	if task != nil && task.UserID == p.UserID {
		return allow()
	}
	return deny(reason)
}

// noOwner matches no task; user ids start at 1.
const noOwner = 0

// TaskScope returns the owner filter for listing: nil means every task.
// An anonymous principal is scoped to no owner at all.
func TaskScope(p *Principal) *int {
	if p.IsAdmin() {
		return nil
	}
	id := noOwner
	if p != nil {
		id = p.UserID
	}
	return &id
}
