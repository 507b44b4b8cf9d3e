package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is the social-graph identity stored in PostgreSQL. ID equals the
// principal id issued by the identity provider.
type User struct {
	ID         string    `json:"id" gorm:"primaryKey;size:128"`
	Username   string    `json:"username" gorm:"size:50;uniqueIndex"`
	Email      string    `json:"email" gorm:"uniqueIndex"`
	Followings []string  `json:"followings" gorm:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UserCompact is the public projection inlined into other resources.
type UserCompact struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Username: u.Username}
}

type RegisterUserRequest struct {
	Username string `json:"username" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
