package lifecycle

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/NafisaTasnimR/UpNext/internal/models"
)

// memDB is an in-memory implementation of every store interface.
type memDB struct {
	projects      map[uint]*models.Project
	tasks         map[uint]*models.Task
	deps          [][2]uint
	members       map[[2]uint]models.MemberRole
	logs          []models.ActivityLog
	notifications []models.Notification

	nextID uint

	failUpdateStatus map[uint]error
	failExists       map[uint]error
	failListDueOn    error
}

func newMemDB() *memDB {
	return &memDB{
		projects: map[uint]*models.Project{},
		tasks:    map[uint]*models.Task{},
		members:  map[[2]uint]models.MemberRole{},
	}
}

func (m *memDB) stores() Stores {
	return Stores{
		Projects:      memProjects{m},
		Tasks:         memTasks{m},
		Dependencies:  memDeps{m},
		Members:       memMembers{m},
		Activity:      memActivity{m},
		Notifications: memNotifications{m},
	}
}

func (m *memDB) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memDB) addProject(p models.Project) *models.Project {
	if p.ID == 0 {
		p.ID = m.id()
	}
	m.projects[p.ID] = &p
	return &p
}

func (m *memDB) addTask(t models.Task) *models.Task {
	if t.ID == 0 {
		t.ID = m.id()
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	m.tasks[t.ID] = &t
	return &t
}

func (m *memDB) logInsert(entityType models.EntityType, id uint, username string, at time.Time) {
	m.logs = append(m.logs, models.ActivityLog{
		ID: m.id(), EntityType: entityType, EntityID: id, Action: models.ActionInsert,
		PerformedBy: username, OccurredAt: at,
	})
}

type memProjects struct{ m *memDB }

func (s memProjects) Get(_ context.Context, id uint) (*models.Project, error) {
	p, ok := s.m.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s memProjects) list(keep func(*models.Project) bool) []models.Project {
	var out []models.Project
	for _, p := range s.m.projects {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s memProjects) ListAll(context.Context) ([]models.Project, error) {
	return s.list(func(*models.Project) bool { return true }), nil
}

func (s memProjects) ListByOwner(_ context.Context, userID uint) ([]models.Project, error) {
	return s.list(func(p *models.Project) bool { return p.OwnerID == userID }), nil
}

func (s memProjects) ListByManager(_ context.Context, userID uint) ([]models.Project, error) {
	return s.list(func(p *models.Project) bool {
		return s.m.members[[2]uint{p.ID, userID}] == models.MemberRoleManager
	}), nil
}

func (s memProjects) ListByMember(_ context.Context, userID uint) ([]models.Project, error) {
	return s.list(func(p *models.Project) bool {
		_, ok := s.m.members[[2]uint{p.ID, userID}]
		return ok
	}), nil
}

func (s memProjects) Save(_ context.Context, p *models.Project) error {
	if p.ID == 0 {
		p.ID = s.m.id()
	}
	cp := *p
	s.m.projects[p.ID] = &cp
	return nil
}

func (s memProjects) UpdateStatus(_ context.Context, id uint, status models.ProjectStatus) error {
	p, ok := s.m.projects[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	return nil
}

func (s memProjects) Delete(_ context.Context, id uint) error {
	delete(s.m.projects, id)
	for tid, t := range s.m.tasks {
		if t.ProjectID == id {
			delete(s.m.tasks, tid)
		}
	}
	return nil
}

type memTasks struct{ m *memDB }

func (s memTasks) Get(_ context.Context, id uint) (*models.Task, error) {
	t, ok := s.m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s memTasks) list(keep func(*models.Task) bool) []models.Task {
	var out []models.Task
	for _, t := range s.m.tasks {
		if keep(t) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s memTasks) ListByProject(_ context.Context, projectID uint) ([]models.Task, error) {
	return s.list(func(t *models.Task) bool { return t.ProjectID == projectID }), nil
}

func (s memTasks) ListChildren(_ context.Context, parentID uint) ([]models.Task, error) {
	return s.list(func(t *models.Task) bool { return t.ParentTaskID != nil && *t.ParentTaskID == parentID }), nil
}

func (s memTasks) ListDueOn(_ context.Context, day time.Time) ([]models.Task, error) {
	if s.m.failListDueOn != nil {
		return nil, s.m.failListDueOn
	}
	return s.list(func(t *models.Task) bool { return t.DueDate != nil && Day(*t.DueDate).Equal(Day(day)) }), nil
}

func (s memTasks) ListByAssignee(_ context.Context, userID uint) ([]models.Task, error) {
	return s.list(func(t *models.Task) bool { return t.AssigneeID != nil && *t.AssigneeID == userID }), nil
}

func (s memTasks) Save(_ context.Context, t *models.Task) error {
	if t.ID == 0 {
		t.ID = s.m.id()
	}
	cp := *t
	s.m.tasks[t.ID] = &cp
	return nil
}

func (s memTasks) UpdateStatus(_ context.Context, id uint, status models.TaskStatus) error {
	if err := s.m.failUpdateStatus[id]; err != nil {
		return err
	}
	t, ok := s.m.tasks[id]
	if !ok {
		return ErrNotFound
	}
	t.Status = status
	return nil
}

func (s memTasks) SetProgress(_ context.Context, id uint, pct float64) error {
	t, ok := s.m.tasks[id]
	if !ok {
		return ErrNotFound
	}
	t.ProgressPct = pct
	return nil
}

func (s memTasks) Assign(_ context.Context, id uint, userID *uint) error {
	t, ok := s.m.tasks[id]
	if !ok {
		return ErrNotFound
	}
	t.AssigneeID = userID
	return nil
}

func (s memTasks) Delete(_ context.Context, id uint) error {
	for _, child := range s.list(func(t *models.Task) bool { return t.ParentTaskID != nil && *t.ParentTaskID == id }) {
		_ = s.Delete(context.Background(), child.ID)
	}
	delete(s.m.tasks, id)
	return nil
}

type memDeps struct{ m *memDB }

func (s memDeps) ListForSuccessor(_ context.Context, taskID uint) ([]models.Task, error) {
	var out []models.Task
	for _, d := range s.m.deps {
		if d[1] == taskID {
			if t, ok := s.m.tasks[d[0]]; ok {
				out = append(out, *t)
			}
		}
	}
	return out, nil
}

func (s memDeps) ListSuccessorIDs(_ context.Context, taskID uint) ([]uint, error) {
	var out []uint
	for _, d := range s.m.deps {
		if d[0] == taskID {
			out = append(out, d[1])
		}
	}
	return out, nil
}

func (s memDeps) HasUnfinishedPredecessor(ctx context.Context, taskID uint) (bool, error) {
	preds, _ := s.ListForSuccessor(ctx, taskID)
	for _, p := range preds {
		if p.Status != models.TaskDone {
			return true, nil
		}
	}
	return false, nil
}

func (s memDeps) Exists(_ context.Context, pred, succ uint) (bool, error) {
	for _, d := range s.m.deps {
		if d == [2]uint{pred, succ} {
			return true, nil
		}
	}
	return false, nil
}

func (s memDeps) Add(_ context.Context, pred, succ uint) error {
	s.m.deps = append(s.m.deps, [2]uint{pred, succ})
	return nil
}

func (s memDeps) Remove(_ context.Context, pred, succ uint) error {
	for i, d := range s.m.deps {
		if d == [2]uint{pred, succ} {
			s.m.deps = append(s.m.deps[:i], s.m.deps[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

type memMembers struct{ m *memDB }

func (s memMembers) IsMember(_ context.Context, projectID, userID uint) (bool, error) {
	_, ok := s.m.members[[2]uint{projectID, userID}]
	return ok, nil
}

func (s memMembers) HasRole(_ context.Context, projectID, userID uint, role models.MemberRole) (bool, error) {
	r, ok := s.m.members[[2]uint{projectID, userID}]
	return ok && r == role, nil
}

func (s memMembers) ListMembers(_ context.Context, projectID uint) ([]models.ProjectMember, error) {
	var out []models.ProjectMember
	for k, r := range s.m.members {
		if k[0] == projectID {
			out = append(out, models.ProjectMember{ProjectID: k[0], UserID: k[1], Role: r})
		}
	}
	return out, nil
}

func (s memMembers) Upsert(_ context.Context, projectID, userID uint, role models.MemberRole) error {
	s.m.members[[2]uint{projectID, userID}] = role
	return nil
}

func (s memMembers) Remove(_ context.Context, projectID, userID uint) error {
	delete(s.m.members, [2]uint{projectID, userID})
	return nil
}

type memActivity struct{ m *memDB }

func (s memActivity) EarliestInsertActor(_ context.Context, entityType models.EntityType, entityID uint) (string, bool, error) {
	var best *models.ActivityLog
	for i := range s.m.logs {
		l := &s.m.logs[i]
		if l.EntityType != entityType || l.EntityID != entityID || l.Action != models.ActionInsert {
			continue
		}
		if best == nil || l.OccurredAt.Before(best.OccurredAt) {
			best = l
		}
	}
	if best == nil {
		return "", false, nil
	}
	return best.PerformedBy, true, nil
}

func (s memActivity) Append(_ context.Context, entry *models.ActivityLog) error {
	entry.ID = s.m.id()
	s.m.logs = append(s.m.logs, *entry)
	return nil
}

type memNotifications struct{ m *memDB }

func (s memNotifications) Exists(_ context.Context, taskID, userID uint, typ models.NotificationType) (bool, error) {
	if err := s.m.failExists[taskID]; err != nil {
		return false, err
	}
	for _, n := range s.m.notifications {
		if n.TaskID == taskID && n.UserID == userID && n.Type == typ {
			return true, nil
		}
	}
	return false, nil
}

func (s memNotifications) Create(_ context.Context, taskID, userID uint, typ models.NotificationType, message string) error {
	s.m.notifications = append(s.m.notifications, models.Notification{
		ID: s.m.id(), TaskID: taskID, UserID: userID, Type: typ, Message: message,
	})
	return nil
}

// snapshotTx is a Transactor over memDB that restores task and project
// state when fn fails.
type snapshotTx struct{ m *memDB }

func (tx snapshotTx) InTx(_ context.Context, fn func(Stores) error) error {
	projects := map[uint]models.Project{}
	for id, p := range tx.m.projects {
		projects[id] = *p
	}
	tasks := map[uint]models.Task{}
	for id, t := range tx.m.tasks {
		tasks[id] = *t
	}

	if err := fn(tx.m.stores()); err != nil {
		tx.m.projects = map[uint]*models.Project{}
		for id, p := range projects {
			p := p
			tx.m.projects[id] = &p
		}
		tx.m.tasks = map[uint]*models.Task{}
		for id, t := range tasks {
			t := t
			tx.m.tasks[id] = &t
		}
		return err
	}
	return nil
}

var errBoom = errors.New("boom")

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }
