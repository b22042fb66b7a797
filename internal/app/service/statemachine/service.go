package statemachine

import (
	"context"
	"fmt"
	"time"

	"github.com/fatflowers/mealkit/internal/models"
	"github.com/fatflowers/mealkit/internal/store"
	"github.com/fatflowers/mealkit/pkg/clock"
	"github.com/fatflowers/mealkit/pkg/config"
	"github.com/fatflowers/mealkit/pkg/logctx"
	"github.com/fatflowers/mealkit/pkg/tool"
	"github.com/fatflowers/mealkit/pkg/types"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// reasons recorded by automated transitions
const (
	ReasonCyclesCompleted = "Completed required payment cycles"
	ReasonPaymentFailure  = "Payment failure"
	ReasonEndDatePassed   = "End date passed"
)

// Service owns every subscription status mutation. Status and history are
// written in one atomic unit; no reader can observe one without the other.
type Service struct {
	cfg    *config.Config
	stores store.Stores
	atomic store.Atomic
	clk    clock.Clock
	log    *zap.SugaredLogger
}

func NewService(cfg *config.Config, stores store.Stores, atomic store.Atomic, clk clock.Clock, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, stores: stores, atomic: atomic, clk: clk, log: log}
}

func (s *Service) requiredCycles() int {
	if s.cfg != nil && s.cfg.Subscription.RequiredCycles > 0 {
		return s.cfg.Subscription.RequiredCycles
	}
	return 2
}

// CreateSubscriptionInput is the creation request. Status is derived, not
// accepted from callers.
type CreateSubscriptionInput struct {
	UserID        string              `json:"user_id"`
	PlanID        string              `json:"plan_id"`
	StartDate     time.Time           `json:"start_date"`
	EndDate       *time.Time          `json:"end_date"`
	PaymentMethod types.PaymentMethod `json:"payment_method"`
	AutoRenewal   bool                `json:"auto_renewal"`
	Actor         types.Actor         `json:"-"`
}

func (in *CreateSubscriptionInput) validate() error {
	if in.UserID == "" {
		return fmt.Errorf("%w: user_id is required", types.ErrValidation)
	}
	if in.PlanID == "" {
		return fmt.Errorf("%w: plan_id is required", types.ErrValidation)
	}
	if in.StartDate.IsZero() {
		return fmt.Errorf("%w: start_date is required", types.ErrValidation)
	}
	if in.PaymentMethod == "" {
		return fmt.Errorf("%w: payment_method is required", types.ErrValidation)
	}
	if in.EndDate != nil && in.EndDate.Before(in.StartDate) {
		return fmt.Errorf("%w: end_date precedes start_date", types.ErrValidation)
	}
	return nil
}

// CreateSubscription creates a subscription in its derived initial state
// and writes the creation history entry (previous_state = none) in the
// same transaction.
func (s *Service) CreateSubscription(ctx context.Context, in *CreateSubscriptionInput) (*models.Subscription, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: nil input", types.ErrValidation)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	plan, err := s.stores.Plans.Get(ctx, in.PlanID)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	sub := &models.Subscription{
		ID:            tool.GenerateUUIDV7(),
		UserID:        in.UserID,
		PlanID:        plan.ID,
		Status:        InitialState(in.PaymentMethod, in.AutoRenewal),
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		PriceCharged:  plan.EffectivePrice(),
		PaymentMethod: in.PaymentMethod,
		AutoRenewal:   in.AutoRenewal,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.atomic.Atomically(ctx, func(st store.Stores) error {
		if err := st.Subscriptions.Create(ctx, sub); err != nil {
			return fmt.Errorf("failed to create subscription: %w", err)
		}
		entry := &models.SubscriptionStateLog{
			ID:             tool.GenerateUUIDV7(),
			SubscriptionID: sub.ID,
			PreviousState:  nil,
			NewState:       sub.Status,
			Reason:         "Subscription created",
			ChangedBy:      in.Actor.AuditValue(),
			ChangedAt:      now,
			Extra:          datatypes.JSONMap{},
		}
		if err := st.History.Append(ctx, entry); err != nil {
			return fmt.Errorf("failed to append creation history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("subscription created",
		"subscription_id", sub.ID, "user_id", sub.UserID, "plan_id", sub.PlanID, "status", sub.Status)
	return sub, nil
}

// ExecuteTransition moves a subscription along one edge of the table.
// The read, rule check, history append and status write share one atomic
// unit so concurrent requests on the same subscription cannot interleave.
func (s *Service) ExecuteTransition(ctx context.Context, id string, target types.SubscriptionState, reason string, actor types.Actor) error {
	if !target.Known() {
		return fmt.Errorf("%w: unknown target state %q", types.ErrValidation, target)
	}

	err := s.atomic.Atomically(ctx, func(st store.Stores) error {
		sub, err := st.Subscriptions.Get(ctx, id)
		if err != nil {
			return err
		}

		if !edgeAllowed(sub.Status, target) {
			return fmt.Errorf("%w: invalid transition from %s to %s", types.ErrInvalidTransition, sub.Status, target)
		}

		if pred, ok := edgePredicates[edge{sub.Status, target}]; ok {
			if err := pred(s, sub); err != nil {
				return err
			}
		}

		now := s.clk.Now()
		prev := sub.Status
		entry := &models.SubscriptionStateLog{
			ID:             tool.GenerateUUIDV7(),
			SubscriptionID: sub.ID,
			PreviousState:  &prev,
			NewState:       target,
			Reason:         reason,
			ChangedBy:      actor.AuditValue(),
			ChangedAt:      now,
			Extra:          datatypes.JSONMap{},
		}
		if err := st.History.Append(ctx, entry); err != nil {
			return fmt.Errorf("failed to append history: %w", err)
		}
		if err := st.Subscriptions.UpdateStatus(ctx, sub.ID, target, now); err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logctx.FromCtx(ctx, s.log).Infow("subscription transitioned",
		"subscription_id", id, "target", target, "changed_by", actor.AuditValue(), "reason", reason)
	return nil
}

// ProcessPaymentSuccess increments completed_cycles unconditionally and,
// when a New_Joiner reaches the required cycle count, runs the automatic
// activation through the full transition pipeline. The returned bool
// reports whether an automatic activation happened on this call.
func (s *Service) ProcessPaymentSuccess(ctx context.Context, id string) (bool, error) {
	count, err := s.stores.Subscriptions.IncrementCompletedCycles(ctx, id)
	if err != nil {
		return false, err
	}

	sub, err := s.stores.Subscriptions.Get(ctx, id)
	if err != nil {
		return false, err
	}

	if sub.Status != types.SubscriptionStateNewJoiner || count < s.requiredCycles() {
		return false, nil
	}

	if err := s.ExecuteTransition(ctx, id, types.SubscriptionStateActive, ReasonCyclesCompleted, types.SystemActor()); err != nil {
		return false, fmt.Errorf("payment recorded but activation failed: %w", err)
	}
	return true, nil
}

// ProcessPaymentFailure cancels the subscription through the transition
// pipeline. Failures (already-terminal subscriptions) are surfaced, not
// swallowed.
func (s *Service) ProcessPaymentFailure(ctx context.Context, id string) (bool, error) {
	if err := s.ExecuteTransition(ctx, id, types.SubscriptionStateCancelled, ReasonPaymentFailure, types.SystemActor()); err != nil {
		return false, err
	}
	return true, nil
}

// GetStateHistory returns the audit trail, newest first.
func (s *Service) GetStateHistory(ctx context.Context, id string) ([]*models.SubscriptionStateLog, error) {
	if _, err := s.stores.Subscriptions.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.stores.History.ListBySubscription(ctx, id)
}

// GetSubscription reads one subscription for callers outside the state
// machine.
func (s *Service) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	return s.stores.Subscriptions.Get(ctx, id)
}

// ScanSubscriptions is the paginated admin listing.
func (s *Service) ScanSubscriptions(ctx context.Context, req *store.ScanSubscriptionsRequest) (*store.ScanSubscriptionsResponse, error) {
	return s.stores.Subscriptions.Scan(ctx, req)
}

// ListPlans returns the plan catalog.
func (s *Service) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	return s.stores.Plans.List(ctx)
}
