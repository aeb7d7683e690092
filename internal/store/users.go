package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NafisaTasnimR/UpNext/internal/lifecycle"
	"github.com/NafisaTasnimR/UpNext/internal/models"
	"gorm.io/gorm"
)

type UserStore struct{ s *Store }

func (s *Store) Users() UserStore { return UserStore{s} }

func (u UserStore) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := u.s.conn(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "user", id)
	}
	return &user, nil
}

func (u UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := u.s.conn(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %q: %w", username, lifecycle.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u UserStore) Create(ctx context.Context, user *models.User) error {
	return u.s.conn(ctx).Create(user).Error
}

// List pages through users ordered by id. A blank keyword matches everyone.
func (u UserStore) List(ctx context.Context, keyword string, page, pageSize int) ([]models.User, int64, error) {
	q := u.s.conn(ctx).Model(&models.User{})
	if keyword != "" {
		like := "%" + keyword + "%"
		q = q.Where("username LIKE ? OR full_name LIKE ? OR email LIKE ?", like, like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := q.Order("id").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error
	return users, total, err
}

func (u UserStore) UpdateRole(ctx context.Context, id uint, role models.GlobalRole) error {
	res := u.s.conn(ctx).Model(&models.User{}).Where("id = ?", id).Update("global_role", role)
	return affected(res, "user", id)
}

func (u UserStore) UpdateStatus(ctx context.Context, id uint, status models.UserStatus) error {
	res := u.s.conn(ctx).Model(&models.User{}).Where("id = ?", id).Update("status", status)
	return affected(res, "user", id)
}

func (u UserStore) TouchLogin(ctx context.Context, id uint, at time.Time) error {
	return u.s.conn(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login", at).Error
}

func (u UserStore) UpdatePassword(ctx context.Context, id uint, hash string) error {
	res := u.s.conn(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hash)
	return affected(res, "user", id)
}
