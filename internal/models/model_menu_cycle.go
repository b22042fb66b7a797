package models

import "time"

// MenuCycle is an ordered, repeating sequence of menu days. At most one
// cycle is active at a time; more than one active row is a data-integrity
// fault, never resolved by picking the first found.
type MenuCycle struct {
	ID              string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Name            string `gorm:"column:name;type:varchar(128);not null" json:"name"`
	CycleLengthDays int    `gorm:"column:cycle_length_days;not null" json:"cycle_length_days"`
	IsActive        bool   `gorm:"column:is_active;not null;default:false;index" json:"is_active"`
	// CreatedAt is managed by GORM and records the creation time.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is managed by GORM and records the update time.
	UpdatedAt time.Time `json:"updated_at"`
}

func (MenuCycle) TableName() string {
	return "menu_cycle"
}
