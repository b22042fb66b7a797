package demand

import (
	"testing"
	"time"

	"github.com/fatflowers/mealkit/internal/models"
	"github.com/fatflowers/mealkit/pkg/types"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCycleDayIndex(t *testing.T) {
	cases := []struct {
		day         time.Time
		cycleLength int
		want        int
	}{
		{date(2026, 4, 1), 7, 0},
		{date(2026, 4, 7), 7, 6},
		{date(2026, 4, 8), 7, 0},
		{date(2026, 4, 15), 7, 0},
		{date(2026, 4, 15), 14, 0},
		{date(2026, 4, 15), 5, 4},
		{date(2026, 4, 30), 7, 1},
		// the index follows day-of-month only: the 1st is always index 0
		// no matter when the cycle was activated
		{date(2026, 5, 1), 7, 0},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, CycleDayIndex(tc.day, tc.cycleLength), "%s len=%d", tc.day.Format(time.DateOnly), tc.cycleLength)
	}
}

func TestISOWeekday(t *testing.T) {
	require.Equal(t, 1, ISOWeekday(date(2026, 3, 16))) // Monday
	require.Equal(t, 3, ISOWeekday(date(2026, 4, 15))) // Wednesday
	require.Equal(t, 6, ISOWeekday(date(2026, 3, 14))) // Saturday
	require.Equal(t, 7, ISOWeekday(date(2026, 3, 15))) // Sunday
}

func TestIsDeliveryDay_SundayNeverDelivers(t *testing.T) {
	plan := &models.Plan{
		Code:            "FULL",
		MealsPerDay:     1,
		DeliveryDays:    6,
		DeliveryPattern: datatypes.JSONSlice[int]{1, 2, 3, 4, 5, 6, 7},
	}
	// Sunday is excluded even when the pattern claims it
	require.False(t, IsDeliveryDay(plan, date(2026, 3, 15)))
	require.True(t, IsDeliveryDay(plan, date(2026, 3, 16)))
}

func TestIsDeliveryDay_Pattern(t *testing.T) {
	plan := &models.Plan{
		Code:            "MWF",
		MealsPerDay:     1,
		DeliveryDays:    4,
		DeliveryPattern: datatypes.JSONSlice[int]{1, 3, 5, 6},
	}
	require.True(t, IsDeliveryDay(plan, date(2026, 3, 16)))  // Monday
	require.False(t, IsDeliveryDay(plan, date(2026, 3, 17))) // Tuesday
	require.True(t, IsDeliveryDay(plan, date(2026, 3, 18)))  // Wednesday
}

func TestSlotFor(t *testing.T) {
	wednesday15th := date(2026, 4, 15) // weekday 3, day 15

	cases := []struct {
		code string
		want types.MealSlot
	}{
		// 'P'+'1' = 129, 129+3+15 = 147, odd
		{"P1", types.MealSlotDinner},
		// 'P'+'2' = 130, 130+3+15 = 148, even
		{"P2", types.MealSlotLunch},
		// short codes sum what they have: 'A' = 65, 65+3+15 = 83, odd
		{"A", types.MealSlotDinner},
	}
	for _, tc := range cases {
		plan := &models.Plan{Code: tc.code}
		require.Equal(t, tc.want, SlotFor(plan, wednesday15th), "code %q", tc.code)
	}
}

func TestSlotFor_VariesByDateNotSubscriber(t *testing.T) {
	plan := &models.Plan{Code: "P1"}
	// 129+3+15 = 147 on Wednesday the 15th (dinner),
	// 129+1+20 = 150 on Monday the 20th (lunch)
	require.Equal(t, types.MealSlotDinner, SlotFor(plan, date(2026, 4, 15)))
	require.Equal(t, types.MealSlotLunch, SlotFor(plan, date(2026, 4, 20)))
}
