// Package store implements the lifecycle store contracts on top of gorm.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/NafisaTasnimR/UpNext/internal/lifecycle"
	"gorm.io/gorm"
)

// Store is the gorm-backed implementation of every lifecycle store. The
// zero value is not usable; call New.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for the few callers that need raw access.
func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Stores returns the lifecycle view of this store.
func (s *Store) Stores() lifecycle.Stores {
	return lifecycle.Stores{
		Projects:      ProjectStore{s},
		Tasks:         TaskStore{s},
		Dependencies:  DependencyStore{s},
		Members:       MemberStore{s},
		Activity:      ActivityStore{s},
		Notifications: NotificationStore{s},
	}
}

func (s *Store) Projects() ProjectStore           { return ProjectStore{s} }
func (s *Store) Tasks() TaskStore                 { return TaskStore{s} }
func (s *Store) Dependencies() DependencyStore    { return DependencyStore{s} }
func (s *Store) Members() MemberStore             { return MemberStore{s} }
func (s *Store) Activity() ActivityStore          { return ActivityStore{s} }
func (s *Store) Notifications() NotificationStore { return NotificationStore{s} }

// InTx implements lifecycle.Transactor.
func (s *Store) InTx(ctx context.Context, fn func(lifecycle.Stores) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx).Stores())
	})
}

// Tx runs fn with a Store bound to one transaction.
func (s *Store) Tx(ctx context.Context, fn func(*Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

func translate(err error, what string, id uint) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, lifecycle.ErrNotFound)
	}
	return fmt.Errorf("%s %d: %w", what, id, err)
}

// affected turns a zero-row update into ErrNotFound.
func affected(res *gorm.DB, what string, id uint) error {
	if res.Error != nil {
		return fmt.Errorf("%s %d: %w", what, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s %d: %w", what, id, lifecycle.ErrNotFound)
	}
	return nil
}
