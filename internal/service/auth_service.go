package service

import (
	"context"
	"errors"
	"quizmaster_backend/internal/config"
	"quizmaster_backend/internal/model"
	"quizmaster_backend/internal/repository"
	"quizmaster_backend/internal/util"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// swagger:model RegisterRequest
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest email 或 username 二选一
// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Username string `json:"username" validate:"required_without=Email"`
	Password string `json:"password" validate:"required"`
}

type AuthService struct {
	Users    repository.UserStore
	Sessions repository.SessionBlacklist
	Cfg      *config.Config
}

func NewAuthService(users repository.UserStore, sessions repository.SessionBlacklist, cfg *config.Config) *AuthService {
	return &AuthService{
		Users:    users,
		Sessions: sessions,
		Cfg:      cfg,
	}
}

func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*model.User, error) {
	if err := util.ValidateStruct(req); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.Users.FindByEmail(ctx, email); err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, util.ErrNotFound) {
		return nil, err
	}
	if _, err := s.Users.FindByUsername(ctx, username); err == nil {
		return nil, util.ErrUsernameTaken
	} else if !errors.Is(err, util.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:         username,
		Email:            email,
		Password:         string(hashedPassword),
		QuizzesCreated:   []string{},
		QuizzesAttempted: []string{},
		Announcements:    []model.Announcement{},
	}
	user.Touch(time.Now())

	if err := s.Users.Create(ctx, user); err != nil {
		// 并发注册时由唯一索引兜底
		if errors.Is(err, util.ErrConflict) {
			return nil, util.ErrEmailRegistered
		}
		return nil, err
	}
	return user, nil
}

// Login 校验凭证并签发会话令牌
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (string, *model.User, error) {
	if err := util.ValidateStruct(req); err != nil {
		return "", nil, err
	}

	var (
		user *model.User
		err  error
	)
	if req.Email != "" {
		user, err = s.Users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	} else {
		user, err = s.Users.FindByUsername(ctx, strings.TrimSpace(req.Username))
	}
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return "", nil, util.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	token, _, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Logout 将令牌的 jti 加入黑名单直到其过期
func (s *AuthService) Logout(ctx context.Context, claims *util.Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	ttl := s.Cfg.JWT.ExpireTime
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	return s.Sessions.Revoke(ctx, claims.ID, ttl)
}
