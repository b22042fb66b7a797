package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fatflowers/mealkit/internal/models"
	"github.com/fatflowers/mealkit/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestMemoryAtomically_RollsBackOnError(t *testing.T) {
	mem := NewMemory()
	mem.AddSubscription(&models.Subscription{
		ID: "sub-1", UserID: "u", PlanID: "p",
		Status: types.SubscriptionStateActive, StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		PaymentMethod: types.PaymentMethodCash,
	})

	boom := errors.New("write refused")
	err := mem.Atomically(context.Background(), func(st Stores) error {
		prev := types.SubscriptionStateActive
		require.NoError(t, st.History.Append(context.Background(), &models.SubscriptionStateLog{
			ID: "log-1", SubscriptionID: "sub-1",
			PreviousState: &prev, NewState: types.SubscriptionStateFrozen,
			ChangedBy: "system", ChangedAt: time.Now(),
		}))
		require.NoError(t, st.Subscriptions.UpdateStatus(context.Background(), "sub-1", types.SubscriptionStateFrozen, time.Now()))
		return boom
	})
	require.ErrorIs(t, err, boom)

	// neither write survives the failed unit
	sub, getErr := mem.Stores().Subscriptions.Get(context.Background(), "sub-1")
	require.NoError(t, getErr)
	require.Equal(t, types.SubscriptionStateActive, sub.Status)

	entries, listErr := mem.Stores().History.ListBySubscription(context.Background(), "sub-1")
	require.NoError(t, listErr)
	require.Empty(t, entries)
}

func TestMemoryAtomically_KeepsWritesOnSuccess(t *testing.T) {
	mem := NewMemory()
	err := mem.Atomically(context.Background(), func(st Stores) error {
		return st.Subscriptions.Create(context.Background(), &models.Subscription{
			ID: "sub-1", UserID: "u", PlanID: "p",
			Status: types.SubscriptionStateCurious, StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			PaymentMethod: types.PaymentMethodCreditCard,
		})
	})
	require.NoError(t, err)

	sub, err := mem.Stores().Subscriptions.Get(context.Background(), "sub-1")
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStateCurious, sub.Status)
}
