package models

import (
	"time"
)

// User is a doctor account. Scans and patients hang off it.
type User struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:100;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"` // never sent to the client
	FCMToken     string    `gorm:"column:fcm_token;size:255" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Patients []Patient `gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE" json:"patients,omitempty"`
	Scans    []Scan    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"scans,omitempty"`
}

type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileInput struct {
	Name string `json:"name" binding:"required,max=100"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

type FCMTokenInput struct {
	Token string `json:"token" binding:"max=255"`
}
