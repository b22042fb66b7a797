package statemachine

import (
	"context"

	"github.com/fatflowers/mealkit/internal/models"
	"github.com/fatflowers/mealkit/internal/store"
	"github.com/fatflowers/mealkit/pkg/clock"
	"github.com/fatflowers/mealkit/pkg/logctx"
	"github.com/fatflowers/mealkit/pkg/types"

	"github.com/samber/lo"
)

// Sweeps are caller-driven batch transitions (admin action or external
// cron); the service never schedules itself. A sweep returns the number
// of subscriptions successfully transitioned and skips individual
// failures instead of aborting the batch.

// CheckAndActivateNewJoiners activates every New_Joiner that has reached
// the required completed cycle count.
func (s *Service) CheckAndActivateNewJoiners(ctx context.Context) (int, error) {
	subs, err := s.stores.Subscriptions.List(ctx, store.SubscriptionFilter{
		Statuses: []types.SubscriptionState{types.SubscriptionStateNewJoiner},
	})
	if err != nil {
		return 0, err
	}

	eligible := lo.Filter(subs, func(sub *models.Subscription, _ int) bool {
		return sub.CompletedCycles >= s.requiredCycles()
	})

	count := 0
	for _, sub := range eligible {
		if err := s.ExecuteTransition(ctx, sub.ID, types.SubscriptionStateActive, ReasonCyclesCompleted, types.SystemActor()); err != nil {
			logctx.FromCtx(ctx, s.log).Warnw("joiner activation skipped",
				"subscription_id", sub.ID, "err", err)
			continue
		}
		count++
	}
	return count, nil
}

// CheckAndCancelExitingSubscriptions cancels every Exiting subscription
// whose end date has passed as of the injected clock.
func (s *Service) CheckAndCancelExitingSubscriptions(ctx context.Context) (int, error) {
	subs, err := s.stores.Subscriptions.List(ctx, store.SubscriptionFilter{
		Statuses: []types.SubscriptionState{types.SubscriptionStateExiting},
	})
	if err != nil {
		return 0, err
	}

	today := clock.Today(s.clk.Now())
	eligible := lo.Filter(subs, func(sub *models.Subscription, _ int) bool {
		return sub.EndDate != nil && sub.EndDate.Before(today)
	})

	count := 0
	for _, sub := range eligible {
		if err := s.ExecuteTransition(ctx, sub.ID, types.SubscriptionStateCancelled, ReasonEndDatePassed, types.SystemActor()); err != nil {
			logctx.FromCtx(ctx, s.log).Warnw("exit cancellation skipped",
				"subscription_id", sub.ID, "err", err)
			continue
		}
		count++
	}
	return count, nil
}
