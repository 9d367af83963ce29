package models

// User is a store customer or administrator.
type User struct {
	Base
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	Email    string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Phone    string `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Password string `gorm:"type:varchar(255);not null" json:"-"`
	IsAdmin  bool   `gorm:"default:false" json:"is_admin"`
}
