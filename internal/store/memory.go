package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fatflowers/mealkit/internal/models"
	"github.com/fatflowers/mealkit/pkg/types"
)

// Memory backs every store interface with in-process maps. It exists for
// tests; Atomically restores the subscription and history collections
// when fn fails, so partial writes never leak out of a failed unit.
type Memory struct {
	mu sync.Mutex

	subscriptions map[string]*models.Subscription
	subOrder      []string
	history       []*models.SubscriptionStateLog
	plans         map[string]*models.Plan
	cycles        []*models.MenuCycle
	cycleDays     []*models.MenuCycleDay
	assignments   []*models.MenuDayAssignment
	meals         map[string]*models.Meal
	mealLines     map[string][]*models.MealIngredient
	ingredients   map[string]*models.Ingredient

	// FailStatusUpdate injects an UpdateStatus error for a subscription
	// id, for partial-failure sweep tests.
	FailStatusUpdate map[string]error
}

func NewMemory() *Memory {
	return &Memory{
		subscriptions:    map[string]*models.Subscription{},
		plans:            map[string]*models.Plan{},
		meals:            map[string]*models.Meal{},
		mealLines:        map[string][]*models.MealIngredient{},
		ingredients:      map[string]*models.Ingredient{},
		FailStatusUpdate: map[string]error{},
	}
}

func (m *Memory) Stores() Stores {
	return Stores{
		Subscriptions: &memSubscriptions{m: m},
		History:       &memHistory{m: m},
		Plans:         &memPlans{m: m},
		Menu:          &memMenu{m: m},
		Meals:         &memMeals{m: m},
	}
}

// memSnapshot captures the collections services write to. Menu and meal
// data is read-only for services, so it is not part of the snapshot.
type memSnapshot struct {
	subscriptions map[string]*models.Subscription
	subOrder      []string
	history       []*models.SubscriptionStateLog
}

func (m *Memory) snapshot() memSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := make(map[string]*models.Subscription, len(m.subscriptions))
	for id, sub := range m.subscriptions {
		cp := *sub
		subs[id] = &cp
	}
	return memSnapshot{
		subscriptions: subs,
		subOrder:      append([]string(nil), m.subOrder...),
		history:       append([]*models.SubscriptionStateLog(nil), m.history...),
	}
}

func (m *Memory) restore(snap memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions = snap.subscriptions
	m.subOrder = snap.subOrder
	m.history = snap.history
}

func (m *Memory) Atomically(_ context.Context, fn func(Stores) error) error {
	snap := m.snapshot()
	if err := fn(m.Stores()); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

// Seed helpers.

func (m *Memory) AddPlan(p *models.Plan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[p.ID] = p
}

func (m *Memory) AddSubscription(s *models.Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subscriptions[s.ID]; !ok {
		m.subOrder = append(m.subOrder, s.ID)
	}
	m.subscriptions[s.ID] = s
}

func (m *Memory) AddCycle(c *models.MenuCycle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycles = append(m.cycles, c)
}

func (m *Memory) AddCycleDay(d *models.MenuCycleDay) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycleDays = append(m.cycleDays, d)
}

func (m *Memory) AddAssignment(a *models.MenuDayAssignment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments = append(m.assignments, a)
}

func (m *Memory) AddMeal(meal *models.Meal, lines ...*models.MealIngredient) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meals[meal.ID] = meal
	m.mealLines[meal.ID] = append(m.mealLines[meal.ID], lines...)
}

func (m *Memory) AddIngredient(i *models.Ingredient) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingredients[i.ID] = i
}

type memSubscriptions struct {
	m *Memory
}

func (s *memSubscriptions) Get(_ context.Context, id string) (*models.Subscription, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	sub, ok := s.m.subscriptions[id]
	if !ok {
		return nil, fmt.Errorf("%w: subscription %s", types.ErrNotFound, id)
	}
	cp := *sub
	return &cp, nil
}

func matchesFilter(sub *models.Subscription, filter SubscriptionFilter) bool {
	if len(filter.Statuses) > 0 {
		found := false
		for _, st := range filter.Statuses {
			if sub.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.PlanID != "" && sub.PlanID != filter.PlanID {
		return false
	}
	if filter.UserID != "" && sub.UserID != filter.UserID {
		return false
	}
	return true
}

func (s *memSubscriptions) List(_ context.Context, filter SubscriptionFilter) ([]*models.Subscription, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []*models.Subscription
	for _, id := range s.m.subOrder {
		sub := s.m.subscriptions[id]
		if matchesFilter(sub, filter) {
			cp := *sub
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memSubscriptions) Scan(ctx context.Context, req *ScanSubscriptionsRequest) (*ScanSubscriptionsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil scan request", types.ErrValidation)
	}
	// eq/in on status, user_id and plan_id cover what handler tests need.
	filter := SubscriptionFilter{}
	for _, f := range req.Filters {
		if len(f.Values) == 0 {
			continue
		}
		switch f.Field {
		case "status":
			for _, v := range f.Values {
				filter.Statuses = append(filter.Statuses, types.SubscriptionState(fmt.Sprint(v)))
			}
		case "user_id":
			filter.UserID = fmt.Sprint(f.Values[0])
		case "plan_id":
			filter.PlanID = fmt.Sprint(f.Values[0])
		}
	}
	items, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total := int64(len(items))
	from := req.From
	if from > len(items) {
		from = len(items)
	}
	size := req.Size
	if size <= 0 {
		size = 10
	}
	end := from + size
	if end > len(items) {
		end = len(items)
	}
	return &ScanSubscriptionsResponse{Items: items[from:end], Total: total}, nil
}

func (s *memSubscriptions) Create(_ context.Context, sub *models.Subscription) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.subscriptions[sub.ID]; ok {
		return fmt.Errorf("subscription %s already exists", sub.ID)
	}
	cp := *sub
	s.m.subscriptions[sub.ID] = &cp
	s.m.subOrder = append(s.m.subOrder, sub.ID)
	return nil
}

func (s *memSubscriptions) UpdateStatus(_ context.Context, id string, status types.SubscriptionState, at time.Time) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err, ok := s.m.FailStatusUpdate[id]; ok {
		return err
	}
	sub, ok := s.m.subscriptions[id]
	if !ok {
		return fmt.Errorf("%w: subscription %s", types.ErrNotFound, id)
	}
	sub.Status = status
	sub.UpdatedAt = at
	return nil
}

func (s *memSubscriptions) IncrementCompletedCycles(_ context.Context, id string) (int, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	sub, ok := s.m.subscriptions[id]
	if !ok {
		return 0, fmt.Errorf("%w: subscription %s", types.ErrNotFound, id)
	}
	sub.CompletedCycles++
	return sub.CompletedCycles, nil
}

type memHistory struct {
	m *Memory
}

func (h *memHistory) Append(_ context.Context, entry *models.SubscriptionStateLog) error {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	cp := *entry
	h.m.history = append(h.m.history, &cp)
	return nil
}

func (h *memHistory) ListBySubscription(_ context.Context, subscriptionID string) ([]*models.SubscriptionStateLog, error) {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	var out []*models.SubscriptionStateLog
	// newest first; insertion order breaks timestamp ties
	for i := len(h.m.history) - 1; i >= 0; i-- {
		if e := h.m.history[i]; e.SubscriptionID == subscriptionID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memPlans struct {
	m *Memory
}

func (p *memPlans) Get(_ context.Context, id string) (*models.Plan, error) {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	plan, ok := p.m.plans[id]
	if !ok {
		return nil, fmt.Errorf("%w: plan %s", types.ErrNotFound, id)
	}
	cp := *plan
	return &cp, nil
}

func (p *memPlans) List(_ context.Context) ([]*models.Plan, error) {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	out := make([]*models.Plan, 0, len(p.m.plans))
	for _, plan := range p.m.plans {
		cp := *plan
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

type memMenu struct {
	m *Memory
}

func (mn *memMenu) ActiveCycles(_ context.Context) ([]*models.MenuCycle, error) {
	mn.m.mu.Lock()
	defer mn.m.mu.Unlock()
	var out []*models.MenuCycle
	for _, c := range mn.m.cycles {
		if c.IsActive {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (mn *memMenu) DaysByCycle(_ context.Context, cycleID string) ([]*models.MenuCycleDay, error) {
	mn.m.mu.Lock()
	defer mn.m.mu.Unlock()
	var out []*models.MenuCycleDay
	for _, d := range mn.m.cycleDays {
		if d.CycleID == cycleID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayIndex < out[j].DayIndex })
	return out, nil
}

func (mn *memMenu) DayByIndex(_ context.Context, cycleID string, dayIndex int) (*models.MenuCycleDay, error) {
	mn.m.mu.Lock()
	defer mn.m.mu.Unlock()
	for _, d := range mn.m.cycleDays {
		if d.CycleID == cycleID && d.DayIndex == dayIndex {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (mn *memMenu) AssignmentsByCycleDay(_ context.Context, cycleDayID string) ([]*models.MenuDayAssignment, error) {
	mn.m.mu.Lock()
	defer mn.m.mu.Unlock()
	var out []*models.MenuDayAssignment
	for _, a := range mn.m.assignments {
		if a.CycleDayID == cycleDayID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memMeals struct {
	m *Memory
}

func (mm *memMeals) Get(_ context.Context, id string) (*models.Meal, error) {
	mm.m.mu.Lock()
	defer mm.m.mu.Unlock()
	meal, ok := mm.m.meals[id]
	if !ok {
		return nil, fmt.Errorf("%w: meal %s", types.ErrNotFound, id)
	}
	cp := *meal
	return &cp, nil
}

func (mm *memMeals) IngredientLines(_ context.Context, mealID string) ([]*models.MealIngredient, error) {
	mm.m.mu.Lock()
	defer mm.m.mu.Unlock()
	lines := mm.m.mealLines[mealID]
	out := make([]*models.MealIngredient, 0, len(lines))
	for _, l := range lines {
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (mm *memMeals) Ingredient(_ context.Context, id string) (*models.Ingredient, error) {
	mm.m.mu.Lock()
	defer mm.m.mu.Unlock()
	ing, ok := mm.m.ingredients[id]
	if !ok {
		return nil, fmt.Errorf("%w: ingredient %s", types.ErrNotFound, id)
	}
	cp := *ing
	return &cp, nil
}
