package models

import "time"

// MenuCycleDay is one position within a menu cycle. Indices are
// zero-based, contiguous and unique within a cycle.
type MenuCycleDay struct {
	ID      string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	CycleID string `gorm:"column:cycle_id;type:uuid;not null;uniqueIndex:idx_cycle_day_index,priority:1" json:"cycle_id"`
	// DayIndex is in [0, cycle_length_days).
	DayIndex int `gorm:"column:day_index;not null;uniqueIndex:idx_cycle_day_index,priority:2" json:"day_index"`
	// CreatedAt is managed by GORM and records the creation time.
	CreatedAt time.Time `json:"created_at"`
}

func (MenuCycleDay) TableName() string {
	return "menu_cycle_day"
}
