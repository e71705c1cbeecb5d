package service

import (
	"context"
	"errors"
	"strings"

	"go-inventory-orders/internal/model"
	"go-inventory-orders/internal/repository"
	"go-inventory-orders/pkg/jwt"
	"go-inventory-orders/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Login(ctx context.Context, userName, password string) (*LoginResponse, error)
	ChangePassword(ctx context.Context, caller Identity, oldPassword, newPassword string) error
	ResetPassword(ctx context.Context, userName, newPassword string) error
	Authenticate(ctx context.Context, token string) (*Identity, error)
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
	log      *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, log *zap.Logger) AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{userRepo: userRepo, tokens: tokens, log: log.Named("auth")}
}

func (s *authService) Login(ctx context.Context, userName, password string) (*LoginResponse, error) {
	// 1. Find user by name
	user, err := s.userRepo.FindByName(ctx, strings.TrimSpace(userName))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, storeErr(err, nil)
	}

	// 2. Check if user is active
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 3. Verify password
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// 4. Single session: a new token version revokes every older token
	version := uuid.NewString()
	if err := s.userRepo.UpdateTokenVersion(ctx, user.ID, version); err != nil {
		return nil, storeErr(err, ErrUserNotFound)
	}
	user.TokenVersion = version

	token, err := s.tokens.GenerateToken(user.ID, user.UserName, user.Role, version)
	if err != nil {
		return nil, err
	}

	s.log.Info("user logged in", zap.String("user_name", user.UserName))
	return &LoginResponse{Token: token, User: user}, nil
}

func (s *authService) ChangePassword(ctx context.Context, caller Identity, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, caller.UserID)
	if err != nil {
		return storeErr(err, ErrUserNotFound)
	}
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	return s.setPassword(ctx, user, newPassword)
}

// ResetPassword sets a password without the old one. Operator tooling only.
func (s *authService) ResetPassword(ctx context.Context, userName, newPassword string) error {
	user, err := s.userRepo.FindByName(ctx, userName)
	if err != nil {
		return storeErr(err, ErrUserNotFound)
	}
	return s.setPassword(ctx, user, newPassword)
}

// setPassword applies the password policy, stores the hash and revokes
// existing sessions.
func (s *authService) setPassword(ctx context.Context, user *model.User, password string) error {
	if !validator.StrongPassword(password) {
		return validationError("new password must be at least 4 characters with an upper case letter, a lower case letter, a digit and a special character")
	}
	if err := user.SetPassword(password); err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		return storeErr(err, ErrUserNotFound)
	}
	if err := s.userRepo.UpdateTokenVersion(ctx, user.ID, uuid.NewString()); err != nil {
		return storeErr(err, ErrUserNotFound)
	}
	s.log.Info("password changed", zap.String("user_name", user.UserName))
	return nil
}

// Authenticate resolves a bearer token to the caller. Role and system flag
// come from the store, not the token, so demotions apply immediately.
func (s *authService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, jwt.ErrInvalidToken
	}
	if err != nil {
		return nil, storeErr(err, nil)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionRevoked
	}

	return &Identity{
		UserID:          user.ID,
		UserName:        user.UserName,
		Role:            user.Role,
		IsSystemAccount: user.IsSystemAccount,
	}, nil
}
