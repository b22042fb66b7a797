package models

import "time"

// Meal is a prepared dish referenced by menu day assignments.
type Meal struct {
	ID   string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Name string `gorm:"column:name;type:varchar(128);not null" json:"name"`
	// CreatedAt is managed by GORM and records the creation time.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is managed by GORM and records the update time.
	UpdatedAt time.Time `json:"updated_at"`
}

func (Meal) TableName() string {
	return "meal"
}
