package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Name       string     `json:"name"`
	Email      string     `json:"email" gorm:"unique;not null"`
	Password   string     `json:"-" gorm:"not null"`
	Department Department `json:"department"`
	IsActive   bool       `json:"is_active" gorm:"default:true"`
	CreatedBy  int
	UpdatedBy  int
}
