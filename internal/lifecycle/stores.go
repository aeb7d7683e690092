// Package lifecycle holds the project and task lifecycle rules: status
// derivation and cascade, creation gating, dependency ordering, deletion
// authorization and due-date notifications.
//
// Persistence is reached only through the store interfaces in this file.
package lifecycle

import (
	"context"
	"time"

	"github.com/NafisaTasnimR/UpNext/internal/models"
)

// Actor is the authenticated user an operation is performed for.
type Actor struct {
	UserID   uint
	Username string
	Role     models.GlobalRole
}

func (a Actor) IsAdmin() bool   { return a.Role == models.RoleAdmin }
func (a Actor) IsManager() bool { return a.Role == models.RoleManager }

// Get methods return ErrNotFound (possibly wrapped) for a missing row.
type ProjectStore interface {
	Get(ctx context.Context, id uint) (*models.Project, error)
	ListAll(ctx context.Context) ([]models.Project, error)
	ListByOwner(ctx context.Context, userID uint) ([]models.Project, error)
	ListByManager(ctx context.Context, userID uint) ([]models.Project, error)
	ListByMember(ctx context.Context, userID uint) ([]models.Project, error)
	Save(ctx context.Context, project *models.Project) error
	UpdateStatus(ctx context.Context, id uint, status models.ProjectStatus) error
	// Delete removes the project with its tasks, memberships and every row hanging off them.
	Delete(ctx context.Context, id uint) error
}

type TaskStore interface {
	Get(ctx context.Context, id uint) (*models.Task, error)
	ListByProject(ctx context.Context, projectID uint) ([]models.Task, error)
	ListChildren(ctx context.Context, parentID uint) ([]models.Task, error)
	// ListDueOn returns tasks whose due date falls on the given calendar day.
	ListDueOn(ctx context.Context, day time.Time) ([]models.Task, error)
	ListByAssignee(ctx context.Context, userID uint) ([]models.Task, error)
	Save(ctx context.Context, task *models.Task) error
	UpdateStatus(ctx context.Context, id uint, status models.TaskStatus) error
	SetProgress(ctx context.Context, id uint, pct float64) error
	Assign(ctx context.Context, id uint, userID *uint) error
	// Delete removes the task, its descendants and their dependencies,
	// comments, attachments, notifications and activity rows.
	Delete(ctx context.Context, id uint) error
}

type DependencyStore interface {
	// ListForSuccessor returns the predecessor tasks of taskID.
	ListForSuccessor(ctx context.Context, taskID uint) ([]models.Task, error)
	// ListSuccessorIDs returns the ids of tasks that depend on taskID.
	ListSuccessorIDs(ctx context.Context, taskID uint) ([]uint, error)
	HasUnfinishedPredecessor(ctx context.Context, taskID uint) (bool, error)
	Exists(ctx context.Context, predecessorID, successorID uint) (bool, error)
	Add(ctx context.Context, predecessorID, successorID uint) error
	Remove(ctx context.Context, predecessorID, successorID uint) error
}

type MembershipStore interface {
	IsMember(ctx context.Context, projectID, userID uint) (bool, error)
	HasRole(ctx context.Context, projectID, userID uint, role models.MemberRole) (bool, error)
	ListMembers(ctx context.Context, projectID uint) ([]models.ProjectMember, error)
	// Upsert adds the user to the project or changes the role they hold.
	Upsert(ctx context.Context, projectID, userID uint, role models.MemberRole) error
	Remove(ctx context.Context, projectID, userID uint) error
}

type ActivityLogStore interface {
	// EarliestInsertActor returns the performer of the first INSERT row for the entity.
	EarliestInsertActor(ctx context.Context, entityType models.EntityType, entityID uint) (string, bool, error)
	Append(ctx context.Context, entry *models.ActivityLog) error
}

type NotificationStore interface {
	Exists(ctx context.Context, taskID, userID uint, typ models.NotificationType) (bool, error)
	Create(ctx context.Context, taskID, userID uint, typ models.NotificationType, message string) error
}

// Stores bundles the store collaborators that share one connection or transaction.
type Stores struct {
	Projects      ProjectStore
	Tasks         TaskStore
	Dependencies  DependencyStore
	Members       MembershipStore
	Activity      ActivityLogStore
	Notifications NotificationStore
}

// Transactor runs fn with stores bound to a single transaction. A non-nil
// error from fn rolls back every write made through those stores.
type Transactor interface {
	InTx(ctx context.Context, fn func(Stores) error) error
}

// Clock returns the current time; tests substitute a fixed one.
type Clock func() time.Time
