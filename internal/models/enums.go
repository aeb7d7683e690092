package models

import (
	"fmt"
	"strings"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "PLANNING"
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectOnHold    ProjectStatus = "ON_HOLD"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectCancelled ProjectStatus = "CANCELLED"
)

// TaskStatus is the lifecycle state of a task or subtask.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskBlocked    TaskStatus = "BLOCKED"
	TaskOnHold     TaskStatus = "ON_HOLD"
	TaskDone       TaskStatus = "DONE"
	TaskCancelled  TaskStatus = "CANCELLED"
)

// IsTerminal reports whether automatic recalculation must leave the status alone.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskDone || s == TaskCancelled
}

type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// GlobalRole is the system-wide role of a user.
type GlobalRole string

const (
	RoleAdmin   GlobalRole = "ADMIN"
	RoleManager GlobalRole = "MANAGER"
	RoleMember  GlobalRole = "MEMBER"
)

// MemberRole is the role a user holds inside a single project.
type MemberRole string

const (
	MemberRoleOwner   MemberRole = "OWNER"
	MemberRoleManager MemberRole = "MANAGER"
	MemberRoleMember  MemberRole = "MEMBER"
	MemberRoleViewer  MemberRole = "VIEWER"
)

type UserStatus string

const (
	UserActive    UserStatus = "ACTIVE"
	UserSuspended UserStatus = "SUSPENDED"
)

type NotificationType string

const (
	NotifyDueSoon        NotificationType = "DUE_SOON_3D"
	NotifyDeadlinePassed NotificationType = "DEADLINE_PASSED"
)

// EntityType identifies what an activity log row refers to.
type EntityType string

const (
	EntityProject EntityType = "PROJECT"
	EntityTask    EntityType = "TASK"
)

type ActivityAction string

const (
	ActionInsert       ActivityAction = "INSERT"
	ActionUpdate       ActivityAction = "UPDATE"
	ActionDelete       ActivityAction = "DELETE"
	ActionStatusChange ActivityAction = "STATUS_CHANGE"
)

// EnumError is returned by the Parse functions for values outside the closed set.
type EnumError struct {
	Kind  string
	Value string
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Kind, e.Value)
}

func normalize(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

func parseEnum[T ~string](kind, raw string, allowed ...T) (T, error) {
	v := T(normalize(raw))
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	var zero T
	return zero, &EnumError{Kind: kind, Value: raw}
}

func ParseProjectStatus(v string) (ProjectStatus, error) {
	return parseEnum("project status", v,
		ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled)
}

func ParseTaskStatus(v string) (TaskStatus, error) {
	return parseEnum("task status", v,
		TaskTodo, TaskInProgress, TaskBlocked, TaskOnHold, TaskDone, TaskCancelled)
}

// ParsePriority treats an empty value as MEDIUM.
func ParsePriority(v string) (Priority, error) {
	if strings.TrimSpace(v) == "" {
		return PriorityMedium, nil
	}
	return parseEnum("priority", v, PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical)
}

func ParseGlobalRole(v string) (GlobalRole, error) {
	return parseEnum("global role", v, RoleAdmin, RoleManager, RoleMember)
}

func ParseMemberRole(v string) (MemberRole, error) {
	return parseEnum("member role", v, MemberRoleOwner, MemberRoleManager, MemberRoleMember, MemberRoleViewer)
}

func ParseUserStatus(v string) (UserStatus, error) {
	return parseEnum("user status", v, UserActive, UserSuspended)
}

func ParseNotificationType(v string) (NotificationType, error) {
	return parseEnum("notification type", v, NotifyDueSoon, NotifyDeadlinePassed)
}

func ParseEntityType(v string) (EntityType, error) {
	return parseEnum("entity type", v, EntityProject, EntityTask)
}
