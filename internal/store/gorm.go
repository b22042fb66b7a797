package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatflowers/mealkit/internal/models"
	"github.com/fatflowers/mealkit/pkg/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm binds the store interfaces to a gorm connection (or transaction).
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) Stores() Stores {
	return Stores{
		Subscriptions: &gormSubscriptions{db: g.db},
		History:       &gormHistory{db: g.db},
		Plans:         &gormPlans{db: g.db},
		Menu:          &gormMenu{db: g.db},
		Meals:         &gormMeals{db: g.db},
	}
}

// Atomically maps to a single database transaction.
func (g *Gorm) Atomically(ctx context.Context, fn func(Stores) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGorm(tx).Stores())
	})
}

type gormSubscriptions struct {
	db *gorm.DB
}

func (s *gormSubscriptions) Get(ctx context.Context, id string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: subscription %s", types.ErrNotFound, id)
		}
		return nil, err
	}
	return &sub, nil
}

func (s *gormSubscriptions) List(ctx context.Context, filter SubscriptionFilter) ([]*models.Subscription, error) {
	q := s.db.WithContext(ctx).Model(&models.Subscription{})
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if filter.PlanID != "" {
		q = q.Where("plan_id = ?", filter.PlanID)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	var subs []*models.Subscription
	if err := q.Order("created_at, id").Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// filtersAnd combines multiple CommonFilter into a single expression.
type filtersAnd struct {
	filters []*types.CommonFilter
}

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

func (s *gormSubscriptions) Scan(ctx context.Context, req *ScanSubscriptionsRequest) (*ScanSubscriptionsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil scan request", types.ErrValidation)
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	q := s.db.WithContext(ctx).Model(&models.Subscription{})
	if len(req.Filters) > 0 {
		q = q.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	desc := req.SortOrder != "asc"

	var items []*models.Subscription
	err := q.Order(clause.OrderByColumn{Column: clause.Column{Name: sortBy}, Desc: desc}).
		Offset(req.From).Limit(req.Size).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return &ScanSubscriptionsResponse{Items: items, Total: total}, nil
}

func (s *gormSubscriptions) Create(ctx context.Context, sub *models.Subscription) error {
	return s.db.WithContext(ctx).Create(sub).Error
}

func (s *gormSubscriptions) UpdateStatus(ctx context.Context, id string, status types.SubscriptionState, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: subscription %s", types.ErrNotFound, id)
	}
	return nil
}

func (s *gormSubscriptions) IncrementCompletedCycles(ctx context.Context, id string) (int, error) {
	res := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ?", id).
		UpdateColumn("completed_cycles", gorm.Expr("completed_cycles + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("%w: subscription %s", types.ErrNotFound, id)
	}
	var count int
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ?", id).
		Pluck("completed_cycles", &count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

type gormHistory struct {
	db *gorm.DB
}

func (h *gormHistory) Append(ctx context.Context, entry *models.SubscriptionStateLog) error {
	return h.db.WithContext(ctx).Create(entry).Error
}

func (h *gormHistory) ListBySubscription(ctx context.Context, subscriptionID string) ([]*models.SubscriptionStateLog, error) {
	var entries []*models.SubscriptionStateLog
	// UUIDv7 ids are time-ordered; they break ties between entries written
	// in the same transaction.
	err := h.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("changed_at DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

type gormPlans struct {
	db *gorm.DB
}

func (p *gormPlans) Get(ctx context.Context, id string) (*models.Plan, error) {
	var plan models.Plan
	if err := p.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: plan %s", types.ErrNotFound, id)
		}
		return nil, err
	}
	return &plan, nil
}

func (p *gormPlans) List(ctx context.Context) ([]*models.Plan, error) {
	var plans []*models.Plan
	if err := p.db.WithContext(ctx).Order("code").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

type gormMenu struct {
	db *gorm.DB
}

func (m *gormMenu) ActiveCycles(ctx context.Context) ([]*models.MenuCycle, error) {
	var cycles []*models.MenuCycle
	err := m.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at, id").
		Find(&cycles).Error
	if err != nil {
		return nil, err
	}
	return cycles, nil
}

func (m *gormMenu) DaysByCycle(ctx context.Context, cycleID string) ([]*models.MenuCycleDay, error) {
	var days []*models.MenuCycleDay
	err := m.db.WithContext(ctx).
		Where("cycle_id = ?", cycleID).
		Order("day_index").
		Find(&days).Error
	if err != nil {
		return nil, err
	}
	return days, nil
}

func (m *gormMenu) DayByIndex(ctx context.Context, cycleID string, dayIndex int) (*models.MenuCycleDay, error) {
	var day models.MenuCycleDay
	err := m.db.WithContext(ctx).
		Where("cycle_id = ? AND day_index = ?", cycleID, dayIndex).
		First(&day).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &day, nil
}

func (m *gormMenu) AssignmentsByCycleDay(ctx context.Context, cycleDayID string) ([]*models.MenuDayAssignment, error) {
	var assignments []*models.MenuDayAssignment
	err := m.db.WithContext(ctx).
		Where("cycle_day_id = ?", cycleDayID).
		Order("id").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

type gormMeals struct {
	db *gorm.DB
}

func (m *gormMeals) Get(ctx context.Context, id string) (*models.Meal, error) {
	var meal models.Meal
	if err := m.db.WithContext(ctx).Where("id = ?", id).First(&meal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: meal %s", types.ErrNotFound, id)
		}
		return nil, err
	}
	return &meal, nil
}

func (m *gormMeals) IngredientLines(ctx context.Context, mealID string) ([]*models.MealIngredient, error) {
	var lines []*models.MealIngredient
	err := m.db.WithContext(ctx).
		Where("meal_id = ?", mealID).
		Order("id").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (m *gormMeals) Ingredient(ctx context.Context, id string) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := m.db.WithContext(ctx).Where("id = ?", id).First(&ing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: ingredient %s", types.ErrNotFound, id)
		}
		return nil, err
	}
	return &ing, nil
}
