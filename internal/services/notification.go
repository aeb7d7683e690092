package services

import (
	"context"
	"sort"

	"github.com/NafisaTasnimR/UpNext/internal/lifecycle"
	"github.com/NafisaTasnimR/UpNext/internal/models"
)

// NotificationService serves the in-app inbox and the overdue task view.
// Notifications themselves are written by the daily scan.
type NotificationService struct {
	lc *Lifecycle
}

func NewNotificationService(lc *Lifecycle) *NotificationService {
	return &NotificationService{lc: lc}
}

type InboxRequest struct {
	UnreadOnly bool `form:"unread_only"`
}

type InboxResponse struct {
	Unread int64                 `json:"unread"`
	Items  []models.Notification `json:"items"`
}

func (s *NotificationService) Inbox(ctx context.Context, req *InboxRequest, actor lifecycle.Actor) (*InboxResponse, error) {
	notifications := s.lc.store.Notifications()
	items, err := notifications.ListForUser(ctx, actor.UserID, req.UnreadOnly)
	if err != nil {
		return nil, err
	}
	unread, err := notifications.CountUnread(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return &InboxResponse{Unread: unread, Items: items}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id uint, actor lifecycle.Actor) error {
	return s.lc.store.Notifications().MarkRead(ctx, id, actor.UserID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, actor lifecycle.Actor) (int64, error) {
	return s.lc.store.Notifications().MarkAllRead(ctx, actor.UserID)
}

// Overdue lists open tasks past their due date. ADMIN sees every such task,
// a MANAGER sees those in projects they own or manage plus their own, and
// everyone else sees only tasks assigned to them.
func (s *NotificationService) Overdue(ctx context.Context, actor lifecycle.Actor) ([]models.Task, error) {
	tasks := s.lc.store.Tasks()
	today := s.lc.Today()
	if actor.IsAdmin() {
		return tasks.ListOverdue(ctx, today, nil, nil)
	}

	mine, err := tasks.ListOverdue(ctx, today, nil, &actor.UserID)
	if err != nil {
		return nil, err
	}
	if !actor.IsManager() {
		return mine, nil
	}

	projectIDs, err := s.managedProjectIDs(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if len(projectIDs) == 0 {
		return mine, nil
	}
	managed, err := tasks.ListOverdue(ctx, today, projectIDs, nil)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]bool, len(managed))
	for _, t := range managed {
		seen[t.ID] = true
	}
	for _, t := range mine {
		if !seen[t.ID] {
			managed = append(managed, t)
		}
	}
	sort.SliceStable(managed, func(i, j int) bool {
		a, b := managed[i], managed[j]
		if !a.DueDate.Equal(*b.DueDate) {
			return a.DueDate.Before(*b.DueDate)
		}
		return a.ID < b.ID
	})
	return managed, nil
}

func (s *NotificationService) managedProjectIDs(ctx context.Context, userID uint) ([]uint, error) {
	projects := s.lc.store.Projects()
	owned, err := projects.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	managed, err := projects.ListByManager(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[uint]bool)
	var ids []uint
	for _, p := range append(owned, managed...) {
		if !seen[p.ID] {
			seen[p.ID] = true
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}
