package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NafisaTasnimR/UpNext/internal/config"
	"github.com/NafisaTasnimR/UpNext/internal/lifecycle"
	"github.com/NafisaTasnimR/UpNext/internal/models"
	"github.com/NafisaTasnimR/UpNext/internal/store"
	"github.com/NafisaTasnimR/UpNext/internal/utils"
	"github.com/NafisaTasnimR/UpNext/pkg/logger"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserSuspended      = errors.New("user is suspended")
)

type AuthService struct {
	users     store.UserStore
	jwtConfig *config.JWTConfig
}

func NewAuthService(st *store.Store, jwtCfg *config.JWTConfig) *AuthService {
	return &AuthService{
		users:     st.Users(),
		jwtConfig: jwtCfg,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token    string       `json:"token"`
	User     *models.User `json:"user"`
	ExpireAt time.Time    `json:"expire_at"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=6"`
	Email    string `json:"email" binding:"omitempty,email"`
	FullName string `json:"full_name" binding:"max=200"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// Register creates an active MEMBER account.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, lifecycle.InvalidInput(errors.New("username is required"))
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, lifecycle.InvalidInput(fmt.Errorf("username %q is already taken", username))
	} else if !errors.Is(err, lifecycle.ErrNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, lifecycle.InvalidInput(err)
	}
	user := &models.User{
		Username:   username,
		Password:   hash,
		Email:      strings.TrimSpace(req.Email),
		FullName:   strings.TrimSpace(req.FullName),
		GlobalRole: models.RoleMember,
		Status:     models.UserActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	logger.Infof("[Auth] Registered user %s", user.Username)
	return user, nil
}

// Login checks the password and issues a JWT
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, lifecycle.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, ErrUserSuspended
	}

	hours := s.jwtConfig.ExpireHour
	if hours <= 0 {
		hours = 24
	}
	token, err := utils.GenerateToken(user.ID, user.Username, string(user.GlobalRole), hours)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.users.TouchLogin(ctx, user.ID, now); err != nil {
		logger.Warnf("[Auth] Failed to record login for %s: %v", user.Username, err)
	}
	user.LastLogin = &now

	return &LoginResponse{
		Token:    token,
		User:     user,
		ExpireAt: now.Add(time.Duration(hours) * time.Hour),
	}, nil
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.users.Get(ctx, id)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uint, req *ChangePasswordRequest) error {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(req.OldPassword, user.Password) {
		return lifecycle.InvalidInput(errors.New("incorrect old password"))
	}
	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return lifecycle.InvalidInput(err)
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}
