package models

import (
	"testing"

	"github.com/fatflowers/mealkit/pkg/types"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func validPlan() *Plan {
	return &Plan{
		ID:              "plan-1",
		Code:            "STD2",
		Name:            "Standard",
		MealsPerDay:     2,
		DeliveryDays:    6,
		DeliveryPattern: datatypes.JSONSlice[int]{1, 2, 3, 4, 5, 6},
		BillingCycle:    "monthly",
		BasePrice:       5000,
	}
}

func TestPlanValidate(t *testing.T) {
	require.NoError(t, validPlan().Validate())

	cases := []struct {
		name   string
		mutate func(*Plan)
	}{
		{"zero meals per day", func(p *Plan) { p.MealsPerDay = 0 }},
		{"three meals per day", func(p *Plan) { p.MealsPerDay = 3 }},
		{"five delivery days", func(p *Plan) { p.DeliveryDays = 5 }},
		{"weekday out of range", func(p *Plan) { p.DeliveryPattern = datatypes.JSONSlice[int]{0, 2, 3, 4, 5, 6} }},
		{"weekday above seven", func(p *Plan) { p.DeliveryPattern = datatypes.JSONSlice[int]{1, 2, 3, 4, 5, 8} }},
		{"repeated weekday", func(p *Plan) { p.DeliveryPattern = datatypes.JSONSlice[int]{1, 1, 3, 4, 5, 6} }},
		{"pattern size mismatch", func(p *Plan) { p.DeliveryPattern = datatypes.JSONSlice[int]{1, 2, 3, 4} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPlan()
			tc.mutate(p)
			require.ErrorIs(t, p.Validate(), types.ErrValidation)
		})
	}
}

func TestPlanEffectivePrice(t *testing.T) {
	p := validPlan()
	require.Equal(t, int64(5000), p.EffectivePrice())

	discounted := int64(4200)
	p.DiscountedPrice = &discounted
	require.Equal(t, int64(4200), p.EffectivePrice())
}

func TestSubscriptionCountsForKitchen(t *testing.T) {
	cases := map[types.SubscriptionState]bool{
		types.SubscriptionStateActive:         true,
		types.SubscriptionStateFrozen:         true,
		types.SubscriptionStateNewJoiner:      false,
		types.SubscriptionStateCurious:        false,
		types.SubscriptionStateExiting:        false,
		types.SubscriptionStateCancelled:      false,
		types.SubscriptionStatePendingPayment: false,
	}
	for st, want := range cases {
		sub := &Subscription{Status: st}
		require.Equal(t, want, sub.CountsForKitchen(), "status %s", st)
	}
}
