package models

// Product represents one catalog item.
// Prices are stored in the smallest currency unit; UGX has no minor unit.
type Product struct {
	Base
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string `gorm:"type:varchar(255);not null;uniqueIndex" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"type:varchar(100);index" json:"category"`
	Price       int64  `gorm:"not null" json:"price"`
	Currency    string `gorm:"type:varchar(3);not null;default:'UGX'" json:"currency"`
	ImageURL    string `gorm:"type:varchar(255)" json:"image_url"`
	AgeRange    string `gorm:"type:varchar(50)" json:"age_range,omitempty"`
	Size        string `gorm:"type:varchar(50)" json:"size,omitempty"`
	Color       string `gorm:"type:varchar(50)" json:"color,omitempty"`
	InStock     bool   `gorm:"default:true" json:"in_stock"`
}
