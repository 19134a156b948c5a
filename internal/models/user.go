package models

import "time"

// User represents an account that can log in to the API.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"` // never serialized
	Role         Role      `json:"role" gorm:"type:varchar(50);not null"`
	CreatedAt    time.Time `json:"created_at"`
}
