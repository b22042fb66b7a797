package store

import (
	"context"
	"time"

	"github.com/fatflowers/mealkit/internal/models"
	"github.com/fatflowers/mealkit/pkg/types"
)

// SubscriptionFilter narrows subscription listings. Zero fields match
// everything.
type SubscriptionFilter struct {
	Statuses []types.SubscriptionState
	PlanID   string
	UserID   string
}

// ScanSubscriptionsRequest is the paginated admin listing request.
type ScanSubscriptionsRequest struct {
	Filters   []*types.CommonFilter
	From      int
	Size      int
	SortBy    string
	SortOrder string
}

type ScanSubscriptionsResponse struct {
	Items []*models.Subscription
	Total int64
}

// SubscriptionStore is the state machine's and aggregator's view of
// subscription persistence. Get returns types.ErrNotFound (wrapped) when
// the id is unknown.
type SubscriptionStore interface {
	Get(ctx context.Context, id string) (*models.Subscription, error)
	List(ctx context.Context, filter SubscriptionFilter) ([]*models.Subscription, error)
	Scan(ctx context.Context, req *ScanSubscriptionsRequest) (*ScanSubscriptionsResponse, error)
	Create(ctx context.Context, sub *models.Subscription) error
	UpdateStatus(ctx context.Context, id string, status types.SubscriptionState, at time.Time) error
	// IncrementCompletedCycles adds one and returns the new count.
	IncrementCompletedCycles(ctx context.Context, id string) (int, error)
}

// StateHistoryStore is the append-only transition audit log.
type StateHistoryStore interface {
	Append(ctx context.Context, entry *models.SubscriptionStateLog) error
	// ListBySubscription returns entries newest first.
	ListBySubscription(ctx context.Context, subscriptionID string) ([]*models.SubscriptionStateLog, error)
}

type PlanStore interface {
	Get(ctx context.Context, id string) (*models.Plan, error)
	List(ctx context.Context) ([]*models.Plan, error)
}

type MenuStore interface {
	// ActiveCycles returns every cycle flagged active. Callers decide how
	// to treat counts other than one.
	ActiveCycles(ctx context.Context) ([]*models.MenuCycle, error)
	DaysByCycle(ctx context.Context, cycleID string) ([]*models.MenuCycleDay, error)
	// DayByIndex returns (nil, nil) when no day exists at the index.
	DayByIndex(ctx context.Context, cycleID string, dayIndex int) (*models.MenuCycleDay, error)
	AssignmentsByCycleDay(ctx context.Context, cycleDayID string) ([]*models.MenuDayAssignment, error)
}

type MealStore interface {
	Get(ctx context.Context, id string) (*models.Meal, error)
	IngredientLines(ctx context.Context, mealID string) ([]*models.MealIngredient, error)
	Ingredient(ctx context.Context, id string) (*models.Ingredient, error)
}

// Stores bundles every store interface for constructor injection.
type Stores struct {
	Subscriptions SubscriptionStore
	History       StateHistoryStore
	Plans         PlanStore
	Menu          MenuStore
	Meals         MealStore
}

// Atomic runs fn against stores bound to a single transaction. A status
// write and its history entry must share one Atomically call so no reader
// observes one without the other.
type Atomic interface {
	Atomically(ctx context.Context, fn func(Stores) error) error
}
