package service

import (
	"context"
	"errors"
	"strings"

	"go-inventory-orders/internal/model"
	"go-inventory-orders/internal/repository"
	"go-inventory-orders/pkg/validator"

	"go.uber.org/zap"
)

type UserService interface {
	Register(ctx context.Context, req *RegisterRequest) (*model.User, error)
	GetAllUsers(ctx context.Context, caller Identity) ([]model.User, error)
	EnsureAdmin(ctx context.Context, name, password string) (*model.User, error)
}

type RegisterRequest struct {
	UserName string `json:"user_name" validate:"notblank,max=100"`
	Password string `json:"password" validate:"strong_password"`
}

type userService struct {
	userRepo repository.UserRepository
	log      *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, log *zap.Logger) UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &userService{userRepo: userRepo, log: log.Named("users")}
}

func (s *userService) Register(ctx context.Context, req *RegisterRequest) (*model.User, error) {
	// 1. Validate request
	req.UserName = strings.TrimSpace(req.UserName)
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		if errs[0].Tag == "strong_password" {
			return nil, validationError("password must be at least 4 characters with an upper case letter, a lower case letter, a digit and a special character")
		}
		return nil, validationError("%s", errs[0])
	}

	// 2. Check if user name already exists
	if existing, err := s.userRepo.FindByName(ctx, req.UserName); err == nil && existing != nil {
		return nil, ErrUserNameExists
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, storeErr(err, nil)
	}

	// 3. Create user
	user := &model.User{
		UserName: req.UserName,
		Role:     model.RoleUser,
		IsActive: true,
	}
	user.CreatedBy = req.UserName
	user.UpdatedBy = req.UserName
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}

	// 4. Save to database
	if err := s.userRepo.Create(ctx, user); err != nil {
		if isDuplicate(err) {
			return nil, ErrUserNameExists
		}
		return nil, storeErr(err, nil)
	}

	s.log.Info("user registered", zap.String("user_name", user.UserName))
	return user, nil
}

// GetAllUsers lists every account except system accounts.
func (s *userService) GetAllUsers(ctx context.Context, caller Identity) ([]model.User, error) {
	if err := caller.requireAdmin(); err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, storeErr(err, nil)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// EnsureAdmin creates the seeded admin account on first start. An existing
// account keeps its password but is forced back to an active system admin.
func (s *userService) EnsureAdmin(ctx context.Context, name, password string) (*model.User, error) {
	user, err := s.userRepo.FindByName(ctx, name)
	switch {
	case err == nil:
		if user.IsAdmin() && user.IsSystemAccount && user.IsActive {
			return user, nil
		}
		user.Role = model.RoleAdmin
		user.IsSystemAccount = true
		user.IsActive = true
		user.UpdatedBy = "system"
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, storeErr(err, nil)
		}
		return user, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, storeErr(err, nil)
	}

	user = &model.User{
		UserName:        name,
		Role:            model.RoleAdmin,
		IsSystemAccount: true,
		IsActive:        true,
	}
	user.CreatedBy = "system"
	user.UpdatedBy = "system"
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, storeErr(err, nil)
	}
	s.log.Info("admin account seeded", zap.String("user_name", name))
	return user, nil
}
