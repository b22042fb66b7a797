package models

import (
	"time"

	"github.com/fatflowers/mealkit/pkg/types"
)

// Subscription stores one user's meal subscription. Status is owned
// exclusively by the state machine; everything else is written once at
// creation.
type Subscription struct {
	ID     string                  `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID string                  `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	PlanID string                  `gorm:"column:plan_id;type:uuid;not null;index" json:"plan_id"`
	Status types.SubscriptionState `gorm:"column:status;type:varchar(64);not null;index" json:"status"`
	// StartDate is the first day the subscription may deliver.
	StartDate time.Time `gorm:"column:start_date;not null" json:"start_date"`
	// EndDate is the last day of the paid period; nil while open-ended.
	EndDate *time.Time `gorm:"column:end_date;default:null" json:"end_date"`
	// PriceCharged snapshots the plan price at purchase time.
	PriceCharged  int64               `gorm:"column:price_charged;not null" json:"price_charged"`
	PaymentMethod types.PaymentMethod `gorm:"column:payment_method;type:varchar(32);not null" json:"payment_method"`
	AutoRenewal   bool                `gorm:"column:auto_renewal;not null;default:false" json:"auto_renewal"`
	// CompletedCycles counts successful payment cycles; never negative.
	CompletedCycles int `gorm:"column:completed_cycles;not null;default:0" json:"completed_cycles"`
	// CreatedAt is managed by GORM and records the creation time.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is managed by GORM and records the update time.
	UpdatedAt time.Time `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscription"
}

// CountsForKitchen reports whether the subscription occupies a meal slot
// for daily demand. Frozen subscriptions still count.
func (s *Subscription) CountsForKitchen() bool {
	return s != nil &&
		(s.Status == types.SubscriptionStateActive || s.Status == types.SubscriptionStateFrozen)
}
