package model

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-social-shop/pkg/mediaurl"
)

const DefaultAvatarPath = "avatars/default.png"

// User represents an account on the platform. Staff accounts may manage
// the catalog and publishing sections.
type User struct {
	BaseModel
	Username   string `gorm:"type:varchar(150);uniqueIndex;not null" json:"username" validate:"required"`
	Email      string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password   string `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	Gender     string `gorm:"type:varchar(1)" json:"gender" validate:"omitempty,oneof=M F O"`
	AvatarPath string `gorm:"type:varchar(255)" json:"-"`
	Bio        string `gorm:"type:varchar(500)" json:"bio"`
	IsStaff    bool   `gorm:"default:false" json:"is_staff"`
	IsActive   bool   `gorm:"default:true" json:"is_active"`
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

// AvatarURL resolves the stored avatar path against the media base URL.
func (u *User) AvatarURL() string {
	if u.AvatarPath == "" {
		return mediaurl.Resolve(DefaultAvatarPath)
	}
	return mediaurl.Resolve(u.AvatarPath)
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Gender   string    `json:"gender"`
	Avatar   string    `json:"avatar"`
	Bio      string    `json:"bio"`
	IsStaff  bool      `json:"is_staff"`
	IsActive bool      `json:"is_active"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Gender:   u.Gender,
		Avatar:   u.AvatarURL(),
		Bio:      u.Bio,
		IsStaff:  u.IsStaff,
		IsActive: u.IsActive,
	}
}
