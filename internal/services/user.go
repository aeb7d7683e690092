package services

import (
	"context"
	"errors"

	"github.com/NafisaTasnimR/UpNext/internal/lifecycle"
	"github.com/NafisaTasnimR/UpNext/internal/models"
	"github.com/NafisaTasnimR/UpNext/internal/store"
	"github.com/NafisaTasnimR/UpNext/pkg/logger"
)

// UserService covers account administration. Every mutation is ADMIN only.
type UserService struct {
	users store.UserStore
}

func NewUserService(st *store.Store) *UserService {
	return &UserService{users: st.Users()}
}

type UserListRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Keyword  string `form:"keyword"`
}

type UserListResponse struct {
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Items    []models.User `json:"items"`
}

type UpdateUserRequest struct {
	Role   string `json:"role"`
	Status string `json:"status"`
}

// List is open to ADMIN and MANAGER accounts, which need it to staff projects.
func (s *UserService) List(ctx context.Context, req *UserListRequest, actor lifecycle.Actor) (*UserListResponse, error) {
	if !actor.IsAdmin() && !actor.IsManager() {
		return nil, lifecycle.ErrForbidden
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}
	users, total, err := s.users.List(ctx, req.Keyword, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}
	return &UserListResponse{Total: total, Page: req.Page, PageSize: req.PageSize, Items: users}, nil
}

// Update changes another user's global role or status.
func (s *UserService) Update(ctx context.Context, id uint, req *UpdateUserRequest, actor lifecycle.Actor) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, lifecycle.ErrForbidden
	}
	if id == actor.UserID {
		return nil, lifecycle.InvalidInput(errors.New("cannot modify your own account"))
	}
	if _, err := s.users.Get(ctx, id); err != nil {
		return nil, err
	}

	var role models.GlobalRole
	if req.Role != "" {
		parsed, err := models.ParseGlobalRole(req.Role)
		if err != nil {
			return nil, lifecycle.InvalidInput(err)
		}
		role = parsed
	}
	var status models.UserStatus
	if req.Status != "" {
		parsed, err := models.ParseUserStatus(req.Status)
		if err != nil {
			return nil, lifecycle.InvalidInput(err)
		}
		status = parsed
	}

	if role != "" {
		if err := s.users.UpdateRole(ctx, id, role); err != nil {
			return nil, err
		}
		logger.Infof("[User] User %d role set to %s by %s", id, role, actor.Username)
	}
	if status != "" {
		if err := s.users.UpdateStatus(ctx, id, status); err != nil {
			return nil, err
		}
		logger.Infof("[User] User %d status set to %s by %s", id, status, actor.Username)
	}
	return s.users.Get(ctx, id)
}
