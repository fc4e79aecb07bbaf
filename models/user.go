package models

import "gorm.io/gorm"

// User is a back-office staff account. The school staff is small, so a user
// carries a single role; permissions derive from it in the middleware.
type User struct {
	gorm.Model
	Login        string `gorm:"column:login;uniqueIndex;not null" json:"login"`
	Name         string `gorm:"column:name"                       json:"name"`
	PasswordHash string `gorm:"column:password_hash;not null"     json:"-"`
	Role         string `gorm:"column:role;default:secretaria"    json:"role"`
}

func (User) TableName() string { return "users" }
