package repository

import (
	"context"

	"go-inventory-orders/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByName(ctx context.Context, name string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	FindAll(ctx context.Context) ([]model.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error
	UpdateTokenVersion(ctx context.Context, userID uuid.UUID, version string) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) FindByName(ctx context.Context, name string) (*model.User, error) {
	var user model.User
	if err := conn(ctx, r.db).Where("user_name = ?", name).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := conn(ctx, r.db).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return translate(conn(ctx, r.db).Create(user).Error)
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return translate(conn(ctx, r.db).Save(user).Error)
}

// FindAll lists regular accounts; system accounts are never listed.
func (r *userRepo) FindAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := conn(ctx, r.db).Where("is_system_account = ?", false).Order("created_at ASC").Find(&users).Error
	return users, translate(err)
}

func (r *userRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error {
	return translate(conn(ctx, r.db).Model(&model.User{}).Where("id = ?", userID).Update("password", hashedPassword).Error)
}

func (r *userRepo) UpdateTokenVersion(ctx context.Context, userID uuid.UUID, version string) error {
	return translate(conn(ctx, r.db).Model(&model.User{}).Where("id = ?", userID).Update("token_version", version).Error)
}
