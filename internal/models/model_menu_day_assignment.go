package models

import (
	"time"

	"github.com/fatflowers/mealkit/pkg/types"
)

// MenuDayAssignment assigns a meal to one slot of a cycle day. At most
// one assignment per (cycle_day, slot) is meaningful for aggregation;
// duplicates are a data-quality fault surfaced by diagnostics.
type MenuDayAssignment struct {
	ID         string         `gorm:"column:id;type:uuid;primary_key" json:"id"`
	CycleDayID string         `gorm:"column:cycle_day_id;type:uuid;not null;index" json:"cycle_day_id"`
	MealID     string         `gorm:"column:meal_id;type:uuid;not null" json:"meal_id"`
	Slot       types.MealSlot `gorm:"column:slot;type:varchar(16);not null" json:"slot"`
	// CreatedAt is managed by GORM and records the creation time.
	CreatedAt time.Time `json:"created_at"`
}

func (MenuDayAssignment) TableName() string {
	return "menu_day_assignment"
}
