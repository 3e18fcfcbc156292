package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID          int64     `json:"id" db:"id" example:"1"`
	Email       string    `json:"email" db:"email" example:"coach@university.ru"`
	Password    string    `json:"-" db:"password_hash"`
	FullName    string    `json:"fullName" db:"full_name" example:"Иванов Иван"`
	IsActive    bool      `json:"isActive" db:"is_active" example:"true"`
	IsSuperuser bool      `json:"isSuperuser" db:"is_superuser" example:"false"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// AccessToken is the persisted revocation state of an issued token, keyed by its jti
type AccessToken struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	ExpiresAt time.Time `db:"expires_at"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
}
