package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"brolearn_backend/internal/config"
	"brolearn_backend/internal/gamification"
	"brolearn_backend/internal/model"
	"brolearn_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

type AuthService struct {
	Users UserStore
	JWT   config.JWTConfig
	Now   func() time.Time
}

func NewAuthService(users UserStore, jwtCfg config.JWTConfig) *AuthService {
	return &AuthService{Users: users, JWT: jwtCfg, Now: time.Now}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type AuthResult struct {
	User         *model.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a level 1 user with no XP or streak. Registration counts
// as the first activity, so a completion on the same day leaves the streak
// at 0.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || name == "" {
		return nil, fmt.Errorf("%w: name and email are required", util.ErrValidation)
	}
	if len(in.Password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", util.ErrValidation, MinPasswordLength)
	}

	_, err := s.Users.FindByEmail(ctx, email)
	if err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, util.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	registeredAt := s.Now()
	user := &model.User{
		Name:           name,
		Email:          email,
		Password:       string(hashedPassword),
		Level:          gamification.MinLevel,
		LastActivityAt: &registeredAt,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, util.ErrConflict) {
			return nil, util.ErrEmailRegistered
		}
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.Users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}
	return s.issue(user)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := util.ParseJWT(refreshToken, s.JWT.RefreshSecret, util.TokenRefresh)
	if err != nil {
		return nil, err
	}
	user, err := s.Users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrUnauthorized
		}
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*model.User, error) {
	return s.Users.FindByID(ctx, userID)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	access, err := util.GenerateJWT(user, util.TokenAccess, s.JWT.Secret, s.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	refresh, err := util.GenerateJWT(user, util.TokenRefresh, s.JWT.RefreshSecret, s.JWT.RefreshExpireTime)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}
