package model

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User represents an authenticated user in the system
type User struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	UserName        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"user_name"`
	Password        string    `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	Role            string    `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	IsSystemAccount bool      `gorm:"default:false" json:"-"`
	IsActive        bool      `gorm:"default:true" json:"is_active"`
	TokenVersion    string    `gorm:"type:varchar(255);default:''" json:"-"` // For single session enforcement
	BaseModel
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
