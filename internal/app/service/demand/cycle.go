package demand

import (
	"time"

	"github.com/fatflowers/mealkit/internal/models"
	"github.com/fatflowers/mealkit/pkg/types"
)

// CycleDayIndex maps a calendar date onto a repeating menu cycle:
// (day_of_month - 1) mod cycle_length_days. The mapping is a pure
// function of day-of-month and deliberately ignores the cycle's real
// start date; changing it would silently shift every downstream kitchen
// quantity. cycleLength must be positive.
func CycleDayIndex(date time.Time, cycleLength int) int {
	return (date.Day() - 1) % cycleLength
}

// ISOWeekday returns the weekday with Monday=1 .. Sunday=7.
func ISOWeekday(date time.Time) int {
	wd := int(date.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// IsDeliveryDay reports whether the plan delivers on date. Sunday is
// never a delivery day, even when a pattern erroneously contains it.
func IsDeliveryDay(plan *models.Plan, date time.Time) bool {
	if date.Weekday() == time.Sunday {
		return false
	}
	return plan.DeliversOnWeekday(ISOWeekday(date))
}

// SlotFor picks the meal slot for a 1-meal plan on a given date:
// (sum of the plan code's first two byte values + weekday + day_of_month)
// mod 2, 0 meaning lunch. The hash is per plan per day, not per
// subscriber, so kitchen batches stay uniform within a plan. The
// two-byte-sum formula is load-bearing for output compatibility.
func SlotFor(plan *models.Plan, date time.Time) types.MealSlot {
	sum := 0
	for i := 0; i < len(plan.Code) && i < 2; i++ {
		sum += int(plan.Code[i])
	}
	if (sum+ISOWeekday(date)+date.Day())%2 == 0 {
		return types.MealSlotLunch
	}
	return types.MealSlotDinner
}
