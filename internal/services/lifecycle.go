package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NafisaTasnimR/UpNext/internal/lifecycle"
	"github.com/NafisaTasnimR/UpNext/internal/models"
	"github.com/NafisaTasnimR/UpNext/internal/store"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Lifecycle bundles the lifecycle rules bound to one store. Services share a
// single instance; transaction-scoped rule sets are built per call by inTx.
type Lifecycle struct {
	store    *store.Store
	Engine   *lifecycle.StatusEngine
	Guard    *lifecycle.Guard
	Deps     *lifecycle.DependencyChecker
	Notifier *lifecycle.NotificationGenerator
	clock    lifecycle.Clock
	loc      *time.Location
}

// NewLifecycle binds the rules to st. A nil clock reads the wall clock and a
// nil loc means UTC; loc decides which calendar day "today" is.
func NewLifecycle(st *store.Store, clock lifecycle.Clock, loc *time.Location) *Lifecycle {
	if clock == nil {
		clock = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	s := st.Stores()
	return &Lifecycle{
		store:    st,
		Engine:   lifecycle.NewStatusEngine(s, st),
		Guard:    lifecycle.NewGuard(s.Projects, s.Tasks, s.Activity),
		Deps:     lifecycle.NewDependencyChecker(s.Dependencies, s.Tasks),
		Notifier: lifecycle.NewNotificationGenerator(s.Tasks, s.Notifications),
		clock:    clock,
		loc:      loc,
	}
}

func (l *Lifecycle) Store() *store.Store { return l.store }

// Today is the current calendar day in the configured time zone.
func (l *Lifecycle) Today() time.Time {
	return lifecycle.Day(l.clock().In(l.loc))
}

// txRules are the rule sets bound to the stores of one transaction.
type txRules struct {
	lifecycle.Stores
	users    store.UserStore
	creation *lifecycle.CreationValidator
	deps     *lifecycle.DependencyChecker
}

// inTx runs fn in one transaction. Calls made inside fn must go through the
// supplied rules, never through l's own collaborators.
func (l *Lifecycle) inTx(ctx context.Context, fn func(r txRules) error) error {
	return l.store.Tx(ctx, func(tx *store.Store) error {
		s := tx.Stores()
		return fn(txRules{
			Stores:   s,
			users:    tx.Users(),
			creation: lifecycle.NewCreationValidator(s.Projects, s.Tasks, s.Members),
			deps:     lifecycle.NewDependencyChecker(s.Dependencies, s.Tasks),
		})
	})
}

// canView allows ADMIN, the project owner and any project member.
func canView(ctx context.Context, s lifecycle.Stores, project *models.Project, actor lifecycle.Actor) (bool, error) {
	if actor.IsAdmin() || project.OwnerID == actor.UserID {
		return true, nil
	}
	return s.Members.IsMember(ctx, project.ID, actor.UserID)
}

// canManage allows ADMIN, the project owner and project managers.
func canManage(ctx context.Context, s lifecycle.Stores, project *models.Project, actor lifecycle.Actor) (bool, error) {
	if actor.IsAdmin() || project.OwnerID == actor.UserID {
		return true, nil
	}
	return lifecycle.ManagesProject(ctx, s.Members, project.ID, actor.UserID)
}

// hideMissing reports a missing project or task as forbidden to anyone but
// ADMIN, so a denied lookup reads the same whether the target exists or not.
func hideMissing(err error, actor lifecycle.Actor) error {
	if !actor.IsAdmin() && errors.Is(err, lifecycle.ErrNotFound) {
		return lifecycle.ErrForbidden
	}
	return err
}

// visibleProject loads a project the actor may see. A project the actor may
// not see, or one that does not exist, is reported as forbidden.
func visibleProject(ctx context.Context, s lifecycle.Stores, projectID uint, actor lifecycle.Actor) (*models.Project, error) {
	project, err := s.Projects.Get(ctx, projectID)
	if err != nil {
		return nil, hideMissing(err, actor)
	}
	ok, err := canView(ctx, s, project, actor)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, lifecycle.ErrForbidden
	}
	return project, nil
}

func logActivity(ctx context.Context, s lifecycle.Stores, actor lifecycle.Actor, entity models.EntityType, entityID uint,
	action models.ActivityAction, projectID, taskID *uint, details string) error {
	entry := &models.ActivityLog{
		EntityType:  entity,
		EntityID:    entityID,
		Action:      action,
		PerformedBy: actor.Username,
		ProjectID:   projectID,
		TaskID:      taskID,
		Details:     details,
	}
	if err := s.Activity.Append(ctx, entry); err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

// parseDate reads an optional YYYY-MM-DD value. Blank means absent.
func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, lifecycle.InvalidInput(fmt.Errorf("%s must be a date in YYYY-MM-DD form", field))
	}
	return &t, nil
}

func checkDateOrder(startField string, start *time.Time, endField string, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return lifecycle.InvalidInput(fmt.Errorf("%s must not be before %s", endField, startField))
	}
	return nil
}

func uintPtr(v uint) *uint { return &v }
