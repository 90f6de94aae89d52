package models

import (
	"time"
)

const (
	RoleStudent = "student"
	RoleStaff   = "staff"
	RoleAdmin   = "admin"
)

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	FullName string `gorm:"size:255;not null" json:"full_name"`
	Email    string `gorm:"size:255;not null;unique" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Role     string `gorm:"size:20;not null;default:'student'" json:"role"`

	MatricNo *string `gorm:"size:50;unique" json:"matric_no"`
	Gender   *string `gorm:"size:10" json:"gender"`
	Phone    *string `gorm:"size:30" json:"phone"`
	Level    *string `gorm:"size:20" json:"level"`

	IsActive    bool `gorm:"default:true" json:"is_active"`
	IsGraduated bool `gorm:"default:false" json:"is_graduated"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
