package models

import (
	"fmt"
	"time"

	"github.com/fatflowers/mealkit/pkg/types"

	"gorm.io/datatypes"
)

// Plan is a static meal-plan definition. Plans are immutable once a
// subscription references them; historical pricing is never migrated.
type Plan struct {
	ID   string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Code string `gorm:"column:code;type:varchar(16);not null;uniqueIndex" json:"code"`
	Name string `gorm:"column:name;type:varchar(128);not null" json:"name"`
	// MealsPerDay is 1 or 2.
	MealsPerDay int `gorm:"column:meals_per_day;not null" json:"meals_per_day"`
	// DeliveryDays is the weekly delivery-day count (4 or 6).
	DeliveryDays int `gorm:"column:delivery_days;not null" json:"delivery_days"`
	// DeliveryPattern holds ISO weekdays (1=Monday..7=Sunday). Sunday is
	// never a delivery day regardless of pattern contents; the aggregator
	// enforces that, it is not derived from this field.
	DeliveryPattern datatypes.JSONSlice[int] `gorm:"column:delivery_pattern" json:"delivery_pattern"`
	BillingCycle    string                   `gorm:"column:billing_cycle;type:varchar(32);not null" json:"billing_cycle"`
	BasePrice       int64                    `gorm:"column:base_price;not null" json:"base_price"`
	DiscountedPrice *int64                   `gorm:"column:discounted_price;default:null" json:"discounted_price"`
	// CreatedAt is managed by GORM and records the creation time.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is managed by GORM and records the update time.
	UpdatedAt time.Time `json:"updated_at"`
}

func (Plan) TableName() string {
	return "plan"
}

// DeliversOnWeekday reports whether isoWeekday (1=Monday..7=Sunday) is in
// the plan's delivery pattern. The Sunday override lives in the
// aggregator, not here.
func (p *Plan) DeliversOnWeekday(isoWeekday int) bool {
	for _, d := range p.DeliveryPattern {
		if d == isoWeekday {
			return true
		}
	}
	return false
}

// EffectivePrice is the price charged to a new subscription: the
// discounted price when set, otherwise the base price.
func (p *Plan) EffectivePrice() int64 {
	if p.DiscountedPrice != nil {
		return *p.DiscountedPrice
	}
	return p.BasePrice
}

// Validate checks structural invariants of the plan definition.
func (p *Plan) Validate() error {
	if p.MealsPerDay != 1 && p.MealsPerDay != 2 {
		return fmt.Errorf("%w: meals_per_day must be 1 or 2, got %d", types.ErrValidation, p.MealsPerDay)
	}
	if p.DeliveryDays != 4 && p.DeliveryDays != 6 {
		return fmt.Errorf("%w: delivery_days must be 4 or 6, got %d", types.ErrValidation, p.DeliveryDays)
	}
	seen := map[int]bool{}
	for _, d := range p.DeliveryPattern {
		if d < 1 || d > 7 {
			return fmt.Errorf("%w: delivery_pattern weekday %d out of range [1,7]", types.ErrValidation, d)
		}
		if seen[d] {
			return fmt.Errorf("%w: delivery_pattern repeats weekday %d", types.ErrValidation, d)
		}
		seen[d] = true
	}
	if len(p.DeliveryPattern) != p.DeliveryDays {
		return fmt.Errorf("%w: delivery_pattern size %d inconsistent with delivery_days %d",
			types.ErrValidation, len(p.DeliveryPattern), p.DeliveryDays)
	}
	return nil
}
