package statemachine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fatflowers/mealkit/internal/models"
	"github.com/fatflowers/mealkit/internal/store"
	"github.com/fatflowers/mealkit/pkg/clock"
	"github.com/fatflowers/mealkit/pkg/config"
	"github.com/fatflowers/mealkit/pkg/tool"
	"github.com/fatflowers/mealkit/pkg/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var testNow = time.Date(2026, 4, 15, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, mem *store.Memory) *Service {
	t.Helper()
	cfg := &config.Config{Subscription: config.SubscriptionConfig{RequiredCycles: 2}}
	return NewService(cfg, mem.Stores(), mem, clock.Fixed{T: testNow}, zap.NewNop().Sugar())
}

func seedPlan(mem *store.Memory) *models.Plan {
	discounted := int64(4500)
	plan := &models.Plan{
		ID:              tool.GenerateUUIDV7(),
		Code:            "STD2",
		Name:            "Standard two meals",
		MealsPerDay:     2,
		DeliveryDays:    6,
		DeliveryPattern: datatypes.JSONSlice[int]{1, 2, 3, 4, 5, 6},
		BillingCycle:    "monthly",
		BasePrice:       5000,
		DiscountedPrice: &discounted,
	}
	mem.AddPlan(plan)
	return plan
}

func seedSubscription(mem *store.Memory, status types.SubscriptionState, mutate ...func(*models.Subscription)) *models.Subscription {
	sub := &models.Subscription{
		ID:            tool.GenerateUUIDV7(),
		UserID:        "user-1",
		PlanID:        tool.GenerateUUIDV7(),
		Status:        status,
		StartDate:     testNow.AddDate(0, -1, 0),
		PriceCharged:  4500,
		PaymentMethod: types.PaymentMethodCreditCard,
		AutoRenewal:   true,
		CreatedAt:     testNow,
		UpdatedAt:     testNow,
	}
	for _, fn := range mutate {
		fn(sub)
	}
	mem.AddSubscription(sub)
	return sub
}

func TestCreateSubscription_InitialStates(t *testing.T) {
	cases := []struct {
		name        string
		method      types.PaymentMethod
		autoRenewal bool
		want        types.SubscriptionState
	}{
		{"credit card with auto renewal", types.PaymentMethodCreditCard, true, types.SubscriptionStateNewJoiner},
		{"credit card without auto renewal", types.PaymentMethodCreditCard, false, types.SubscriptionStateCurious},
		{"wire transfer", types.PaymentMethodWireTransfer, true, types.SubscriptionStatePendingApproval},
		{"cash", types.PaymentMethodCash, false, types.SubscriptionStatePendingApproval},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mem := store.NewMemory()
			plan := seedPlan(mem)
			svc := newTestService(t, mem)

			sub, err := svc.CreateSubscription(context.Background(), &CreateSubscriptionInput{
				UserID:        "user-1",
				PlanID:        plan.ID,
				StartDate:     testNow,
				PaymentMethod: tc.method,
				AutoRenewal:   tc.autoRenewal,
				Actor:         types.UserActor("user-1"),
			})
			require.NoError(t, err)
			require.Equal(t, tc.want, sub.Status)
		})
	}
}

func TestCreateSubscription_SnapshotsDiscountedPrice(t *testing.T) {
	mem := store.NewMemory()
	plan := seedPlan(mem)
	svc := newTestService(t, mem)

	sub, err := svc.CreateSubscription(context.Background(), &CreateSubscriptionInput{
		UserID:        "user-1",
		PlanID:        plan.ID,
		StartDate:     testNow,
		PaymentMethod: types.PaymentMethodCreditCard,
		AutoRenewal:   true,
		Actor:         types.UserActor("user-1"),
	})
	require.NoError(t, err)
	require.Equal(t, int64(4500), sub.PriceCharged)
}

func TestCreateSubscription_WritesCreationHistory(t *testing.T) {
	mem := store.NewMemory()
	plan := seedPlan(mem)
	svc := newTestService(t, mem)

	sub, err := svc.CreateSubscription(context.Background(), &CreateSubscriptionInput{
		UserID:        "user-1",
		PlanID:        plan.ID,
		StartDate:     testNow,
		PaymentMethod: types.PaymentMethodWireTransfer,
		Actor:         types.UserActor("user-1"),
	})
	require.NoError(t, err)

	entries, err := svc.GetStateHistory(context.Background(), sub.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Nil(t, entries[0].PreviousState)
	require.Equal(t, types.SubscriptionStatePendingApproval, entries[0].NewState)
	require.Equal(t, "user-1", entries[0].ChangedBy)
}

func TestCreateSubscription_Validation(t *testing.T) {
	mem := store.NewMemory()
	plan := seedPlan(mem)
	svc := newTestService(t, mem)

	end := testNow.AddDate(0, -2, 0)
	cases := []struct {
		name string
		in   *CreateSubscriptionInput
	}{
		{"missing user", &CreateSubscriptionInput{PlanID: plan.ID, StartDate: testNow, PaymentMethod: types.PaymentMethodCash}},
		{"missing plan", &CreateSubscriptionInput{UserID: "u", StartDate: testNow, PaymentMethod: types.PaymentMethodCash}},
		{"missing start date", &CreateSubscriptionInput{UserID: "u", PlanID: plan.ID, PaymentMethod: types.PaymentMethodCash}},
		{"missing payment method", &CreateSubscriptionInput{UserID: "u", PlanID: plan.ID, StartDate: testNow}},
		{"end before start", &CreateSubscriptionInput{UserID: "u", PlanID: plan.ID, StartDate: testNow, EndDate: &end, PaymentMethod: types.PaymentMethodCash}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateSubscription(context.Background(), tc.in)
			require.ErrorIs(t, err, types.ErrValidation)
		})
	}
}

func TestCreateSubscription_UnknownPlan(t *testing.T) {
	mem := store.NewMemory()
	svc := newTestService(t, mem)

	_, err := svc.CreateSubscription(context.Background(), &CreateSubscriptionInput{
		UserID:        "user-1",
		PlanID:        "no-such-plan",
		StartDate:     testNow,
		PaymentMethod: types.PaymentMethodCash,
	})
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestExecuteTransition_AllowedEdge(t *testing.T) {
	mem := store.NewMemory()
	sub := seedSubscription(mem, types.SubscriptionStateActive)
	svc := newTestService(t, mem)

	err := svc.ExecuteTransition(context.Background(), sub.ID, types.SubscriptionStateFrozen, "vacation", types.UserActor("user-1"))
	require.NoError(t, err)

	got, err := svc.GetSubscription(context.Background(), sub.ID)
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStateFrozen, got.Status)

	entries, err := svc.GetStateHistory(context.Background(), sub.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].PreviousState)
	require.Equal(t, types.SubscriptionStateActive, *entries[0].PreviousState)
	require.Equal(t, types.SubscriptionStateFrozen, entries[0].NewState)
	require.Equal(t, "vacation", entries[0].Reason)
	require.Equal(t, "user-1", entries[0].ChangedBy)
}

func TestExecuteTransition_DisallowedEdge(t *testing.T) {
	mem := store.NewMemory()
	sub := seedSubscription(mem, types.SubscriptionStateCurious)
	svc := newTestService(t, mem)

	err := svc.ExecuteTransition(context.Background(), sub.ID, types.SubscriptionStateActive, "", types.SystemActor())
	require.ErrorIs(t, err, types.ErrInvalidTransition)

	// a rejected transition leaves no history behind
	entries, listErr := svc.GetStateHistory(context.Background(), sub.ID)
	require.NoError(t, listErr)
	require.Empty(t, entries)
}

func TestExecuteTransition_TerminalStatesHaveNoExit(t *testing.T) {
	for _, terminal := range []types.SubscriptionState{types.SubscriptionStateCancelled, types.SubscriptionStateExpired} {
		for _, target := range types.AllSubscriptionStates() {
			mem := store.NewMemory()
			sub := seedSubscription(mem, terminal)
			svc := newTestService(t, mem)

			err := svc.ExecuteTransition(context.Background(), sub.ID, target, "", types.SystemActor())
			require.ErrorIs(t, err, types.ErrInvalidTransition, "edge %s -> %s must be rejected", terminal, target)
		}
	}
}

func TestExecuteTransition_UnknownTarget(t *testing.T) {
	mem := store.NewMemory()
	sub := seedSubscription(mem, types.SubscriptionStateActive)
	svc := newTestService(t, mem)

	err := svc.ExecuteTransition(context.Background(), sub.ID, "Paused", "", types.SystemActor())
	require.ErrorIs(t, err, types.ErrValidation)
}

func TestExecuteTransition_FailedStatusWriteLeavesNoHistory(t *testing.T) {
	mem := store.NewMemory()
	sub := seedSubscription(mem, types.SubscriptionStateActive)
	mem.FailStatusUpdate[sub.ID] = errors.New("write refused")
	svc := newTestService(t, mem)

	err := svc.ExecuteTransition(context.Background(), sub.ID, types.SubscriptionStateFrozen, "vacation", types.UserActor("user-1"))
	require.Error(t, err)

	// the history append inside the failed unit must be rolled back
	entries, listErr := svc.GetStateHistory(context.Background(), sub.ID)
	require.NoError(t, listErr)
	require.Empty(t, entries)

	got, getErr := svc.GetSubscription(context.Background(), sub.ID)
	require.NoError(t, getErr)
	require.Equal(t, types.SubscriptionStateActive, got.Status)
}

func TestExecuteTransition_UnknownSubscription(t *testing.T) {
	mem := store.NewMemory()
	svc := newTestService(t, mem)

	err := svc.ExecuteTransition(context.Background(), "missing", types.SubscriptionStateCancelled, "", types.SystemActor())
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestExecuteTransition_JoinerActivationRequiresCycles(t *testing.T) {
	mem := store.NewMemory()
	sub := seedSubscription(mem, types.SubscriptionStateNewJoiner, func(s *models.Subscription) {
		s.CompletedCycles = 1
	})
	svc := newTestService(t, mem)

	err := svc.ExecuteTransition(context.Background(), sub.ID, types.SubscriptionStateActive, "manual", types.SystemActor())
	require.ErrorIs(t, err, types.ErrBusinessRuleViolation)

	got, err := svc.GetSubscription(context.Background(), sub.ID)
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStateNewJoiner, got.Status)
}

func TestExecuteTransition_ApprovalRejectsCreditCard(t *testing.T) {
	mem := store.NewMemory()
	sub := seedSubscription(mem, types.SubscriptionStatePendingApproval, func(s *models.Subscription) {
		s.PaymentMethod = types.PaymentMethodCreditCard
	})
	svc := newTestService(t, mem)

	err := svc.ExecuteTransition(context.Background(), sub.ID, types.SubscriptionStateActive, "approved", types.UserActor("admin-1"))
	require.ErrorIs(t, err, types.ErrBusinessRuleViolation)
}

func TestExecuteTransition_ApprovalAllowsWireTransfer(t *testing.T) {
	mem := store.NewMemory()
	sub := seedSubscription(mem, types.SubscriptionStatePendingApproval, func(s *models.Subscription) {
		s.PaymentMethod = types.PaymentMethodWireTransfer
	})
	svc := newTestService(t, mem)

	err := svc.ExecuteTransition(context.Background(), sub.ID, types.SubscriptionStateActive, "approved", types.UserActor("admin-1"))
	require.NoError(t, err)

	got, err := svc.GetSubscription(context.Background(), sub.ID)
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStateActive, got.Status)
}

func TestProcessPaymentSuccess_ActivatesAtThreshold(t *testing.T) {
	mem := store.NewMemory()
	sub := seedSubscription(mem, types.SubscriptionStateNewJoiner)
	svc := newTestService(t, mem)

	activated, err := svc.ProcessPaymentSuccess(context.Background(), sub.ID)
	require.NoError(t, err)
	require.False(t, activated)

	activated, err = svc.ProcessPaymentSuccess(context.Background(), sub.ID)
	require.NoError(t, err)
	require.True(t, activated)

	got, err := svc.GetSubscription(context.Background(), sub.ID)
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStateActive, got.Status)
	require.Equal(t, 2, got.CompletedCycles)

	entries, err := svc.GetStateHistory(context.Background(), sub.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, ReasonCyclesCompleted, entries[0].Reason)
	require.Equal(t, "system", entries[0].ChangedBy)
}

func TestProcessPaymentSuccess_CountsCyclesInAnyState(t *testing.T) {
	mem := store.NewMemory()
	sub := seedSubscription(mem, types.SubscriptionStateActive, func(s *models.Subscription) {
		s.CompletedCycles = 5
	})
	svc := newTestService(t, mem)

	activated, err := svc.ProcessPaymentSuccess(context.Background(), sub.ID)
	require.NoError(t, err)
	require.False(t, activated)

	got, err := svc.GetSubscription(context.Background(), sub.ID)
	require.NoError(t, err)
	require.Equal(t, 6, got.CompletedCycles)
	require.Equal(t, types.SubscriptionStateActive, got.Status)
}

func TestProcessPaymentFailure_Cancels(t *testing.T) {
	mem := store.NewMemory()
	sub := seedSubscription(mem, types.SubscriptionStateActive)
	svc := newTestService(t, mem)

	cancelled, err := svc.ProcessPaymentFailure(context.Background(), sub.ID)
	require.NoError(t, err)
	require.True(t, cancelled)

	got, err := svc.GetSubscription(context.Background(), sub.ID)
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStateCancelled, got.Status)

	entries, err := svc.GetStateHistory(context.Background(), sub.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, ReasonPaymentFailure, entries[0].Reason)
	require.Equal(t, "system", entries[0].ChangedBy)
}

func TestProcessPaymentFailure_AlreadyTerminal(t *testing.T) {
	mem := store.NewMemory()
	sub := seedSubscription(mem, types.SubscriptionStateCancelled)
	svc := newTestService(t, mem)

	_, err := svc.ProcessPaymentFailure(context.Background(), sub.ID)
	require.ErrorIs(t, err, types.ErrInvalidTransition)
}

func TestGetStateHistory_NewestFirst(t *testing.T) {
	mem := store.NewMemory()
	sub := seedSubscription(mem, types.SubscriptionStateActive)
	svc := newTestService(t, mem)

	require.NoError(t, svc.ExecuteTransition(context.Background(), sub.ID, types.SubscriptionStateFrozen, "vacation", types.UserActor("user-1")))
	require.NoError(t, svc.ExecuteTransition(context.Background(), sub.ID, types.SubscriptionStateActive, "back home", types.UserActor("user-1")))
	require.NoError(t, svc.ExecuteTransition(context.Background(), sub.ID, types.SubscriptionStateExiting, "moving away", types.UserActor("user-1")))

	entries, err := svc.GetStateHistory(context.Background(), sub.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, types.SubscriptionStateExiting, entries[0].NewState)
	require.Equal(t, types.SubscriptionStateActive, entries[1].NewState)
	require.Equal(t, types.SubscriptionStateFrozen, entries[2].NewState)
}

func TestGetStateHistory_UnknownSubscription(t *testing.T) {
	mem := store.NewMemory()
	svc := newTestService(t, mem)

	_, err := svc.GetStateHistory(context.Background(), "missing")
	require.ErrorIs(t, err, types.ErrNotFound)
}
