package models

import (
	"time"

	"github.com/fatflowers/mealkit/pkg/types"

	"gorm.io/datatypes"
)

// SubscriptionStateLog is the append-only transition audit trail. One row
// is written at creation (PreviousState nil) and one per successful
// transition. Rows are never updated or deleted.
type SubscriptionStateLog struct {
	ID             string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	SubscriptionID string `gorm:"column:subscription_id;type:uuid;not null;index" json:"subscription_id"`
	// PreviousState is nil for the creation entry.
	PreviousState *types.SubscriptionState `gorm:"column:previous_state;type:varchar(64);default:null" json:"previous_state"`
	NewState      types.SubscriptionState  `gorm:"column:new_state;type:varchar(64);not null" json:"new_state"`
	Reason        string                   `gorm:"column:reason;type:varchar(256)" json:"reason"`
	// ChangedBy is "system" for automated transitions, else the user id.
	ChangedBy string    `gorm:"column:changed_by;type:varchar(64);not null" json:"changed_by"`
	ChangedAt time.Time `gorm:"column:changed_at;not null" json:"changed_at"`
	// Extra stores additional JSON data attached by callers.
	Extra datatypes.JSONMap `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	// CreatedAt is managed by GORM and records the creation time.
	CreatedAt time.Time `json:"created_at"`
}

func (SubscriptionStateLog) TableName() string {
	return "subscription_state_log"
}
