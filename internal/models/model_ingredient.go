package models

import "time"

// Ingredient is a raw material with a display name and base unit.
type Ingredient struct {
	ID   string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Name string `gorm:"column:name;type:varchar(128);not null" json:"name"`
	// Unit is the base measurement unit, e.g. "g" or "ml".
	Unit string `gorm:"column:unit;type:varchar(16);not null" json:"unit"`
	// CreatedAt is managed by GORM and records the creation time.
	CreatedAt time.Time `json:"created_at"`
}

func (Ingredient) TableName() string {
	return "ingredient"
}
