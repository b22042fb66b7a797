package statemachine

import (
	"fmt"

	"github.com/fatflowers/mealkit/internal/models"
	"github.com/fatflowers/mealkit/pkg/types"
)

// edge is one directed transition in the lifecycle graph.
type edge struct {
	From types.SubscriptionState
	To   types.SubscriptionState
}

// allowedTransitions is the full transition table. States absent from the
// map (cancelled, expired) are terminal.
var allowedTransitions = map[types.SubscriptionState][]types.SubscriptionState{
	types.SubscriptionStatePendingPayment: {
		types.SubscriptionStateNewJoiner,
		types.SubscriptionStateCurious,
		types.SubscriptionStateCancelled,
	},
	types.SubscriptionStatePendingApproval: {
		types.SubscriptionStateActive,
		types.SubscriptionStateCancelled,
	},
	types.SubscriptionStateNewJoiner: {
		types.SubscriptionStateActive,
		types.SubscriptionStateFrozen,
		types.SubscriptionStateExiting,
		types.SubscriptionStateCancelled,
	},
	types.SubscriptionStateCurious: {
		types.SubscriptionStateExiting,
		types.SubscriptionStateFrozen,
		types.SubscriptionStateCancelled,
	},
	types.SubscriptionStateActive: {
		types.SubscriptionStateFrozen,
		types.SubscriptionStateExiting,
		types.SubscriptionStateCancelled,
	},
	types.SubscriptionStateFrozen: {
		types.SubscriptionStateActive,
		types.SubscriptionStateCancelled,
	},
	types.SubscriptionStateExiting: {
		types.SubscriptionStateCancelled,
		types.SubscriptionStateFrozen,
	},
}

func edgeAllowed(from, to types.SubscriptionState) bool {
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// predicate is a business rule attached to a specific edge. It returns
// nil when the rule passes and a types.ErrBusinessRuleViolation-wrapped
// error when it does not.
type predicate func(s *Service, sub *models.Subscription) error

// edgePredicates holds rules that apply only to their named edge; every
// other edge in the table passes unconditionally.
var edgePredicates = map[edge]predicate{
	{types.SubscriptionStateNewJoiner, types.SubscriptionStateActive}: func(s *Service, sub *models.Subscription) error {
		if sub.CompletedCycles < s.requiredCycles() {
			return fmt.Errorf("%w: business rule not satisfied for %s->%s: completed_cycles %d < %d",
				types.ErrBusinessRuleViolation,
				types.SubscriptionStateNewJoiner, types.SubscriptionStateActive,
				sub.CompletedCycles, s.requiredCycles())
		}
		return nil
	},
	{types.SubscriptionStatePendingApproval, types.SubscriptionStateActive}: func(_ *Service, sub *models.Subscription) error {
		if sub.PaymentMethod == types.PaymentMethodCreditCard {
			return fmt.Errorf("%w: business rule not satisfied for %s->%s: credit card subscriptions are not approved manually",
				types.ErrBusinessRuleViolation,
				types.SubscriptionStatePendingApproval, types.SubscriptionStateActive)
		}
		return nil
	},
}

// InitialState derives the creation state from payment method and renewal
// flag. Subscriptions are never created directly Active.
func InitialState(method types.PaymentMethod, autoRenewal bool) types.SubscriptionState {
	if method == types.PaymentMethodCreditCard {
		if autoRenewal {
			return types.SubscriptionStateNewJoiner
		}
		return types.SubscriptionStateCurious
	}
	return types.SubscriptionStatePendingApproval
}
