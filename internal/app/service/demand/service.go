package demand

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fatflowers/mealkit/internal/models"
	"github.com/fatflowers/mealkit/internal/store"
	"github.com/fatflowers/mealkit/pkg/logctx"
	"github.com/fatflowers/mealkit/pkg/metrics"
	"github.com/fatflowers/mealkit/pkg/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Service computes, for a target calendar date, the lunch/dinner meal
// counts across the subscriber base, the per-meal preparation list and
// the aggregated raw-material quantities. It performs no mutation; all
// reads within one call share a single transaction so the result is a
// consistent snapshot even under concurrent menu edits.
type Service struct {
	atomic store.Atomic
	log    *zap.SugaredLogger
	bpDur  *prometheus.HistogramVec
}

func NewService(atomic store.Atomic, log *zap.SugaredLogger) *Service {
	return &Service{
		atomic: atomic,
		log:    log,
		bpDur:  metrics.RegisterBusinessProcess("mealkit"),
	}
}

// MealPrep is one meal's serving count for the kitchen.
type MealPrep struct {
	MealID   string `json:"meal_id"`
	MealName string `json:"meal_name"`
	Count    int    `json:"count"`
}

// RawMaterial is an ingredient's aggregated required quantity for the day.
type RawMaterial struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
	Unit     string `json:"unit"`
}

// PlanBreakdown is the per-plan slot distribution feeding the totals.
type PlanBreakdown struct {
	PlanID      string `json:"plan_id"`
	PlanCode    string `json:"plan_code"`
	Subscribers int    `json:"subscribers"`
	LunchCount  int    `json:"lunch_count"`
	DinnerCount int    `json:"dinner_count"`
}

// DailyDemand is the kitchen view of one day.
type DailyDemand struct {
	Date           string          `json:"date"`
	CycleDayIndex  int             `json:"cycle_day_index"`
	LunchCount     int             `json:"lunch_count"`
	DinnerCount    int             `json:"dinner_count"`
	Plans          []PlanBreakdown `json:"plans"`
	MealsToPrepare []MealPrep      `json:"meals_to_prepare"`
	RawMaterials   []RawMaterial   `json:"raw_materials"`
	// Faults lists data-integrity problems recovered during computation
	// (orphaned meals, duplicate slot assignments, missing plans or
	// ingredients). A fault never blanks the rest of the day.
	Faults []string `json:"faults,omitempty"`
}

// activeCycle resolves the single active menu cycle. Zero active cycles
// and more than one are both call failures.
func (s *Service) activeCycle(ctx context.Context, st store.Stores) (*models.MenuCycle, error) {
	cycles, err := st.Menu.ActiveCycles(ctx)
	if err != nil {
		return nil, err
	}
	switch len(cycles) {
	case 0:
		return nil, types.ErrNoActiveMenuCycle
	case 1:
		if cycles[0].CycleLengthDays <= 0 {
			return nil, fmt.Errorf("%w: menu cycle %s has non-positive length %d",
				types.ErrDataIntegrity, cycles[0].ID, cycles[0].CycleLengthDays)
		}
		return cycles[0], nil
	default:
		return nil, fmt.Errorf("%w: found %d", types.ErrMultipleActiveMenuCycles, len(cycles))
	}
}

// planCounts computes the per-plan lunch/dinner contributions for a date.
// Plans missing from the catalog are reported as faults and skipped.
func (s *Service) planCounts(ctx context.Context, st store.Stores, date time.Time, subs []*models.Subscription) ([]PlanBreakdown, []string, error) {
	byPlan := lo.GroupBy(subs, func(sub *models.Subscription) string { return sub.PlanID })
	planIDs := lo.Keys(byPlan)
	sort.Strings(planIDs)

	var breakdowns []PlanBreakdown
	var faults []string
	for _, planID := range planIDs {
		plan, err := st.Plans.Get(ctx, planID)
		if err != nil {
			faults = append(faults, fmt.Sprintf("plan %s referenced by %d subscriptions not found", planID, len(byPlan[planID])))
			continue
		}

		b := PlanBreakdown{PlanID: plan.ID, PlanCode: plan.Code, Subscribers: len(byPlan[planID])}
		if IsDeliveryDay(plan, date) {
			switch plan.MealsPerDay {
			case 2:
				// every subscriber counts toward both slots
				b.LunchCount = b.Subscribers
				b.DinnerCount = b.Subscribers
			default:
				if SlotFor(plan, date) == types.MealSlotLunch {
					b.LunchCount = b.Subscribers
				} else {
					b.DinnerCount = b.Subscribers
				}
			}
		}
		breakdowns = append(breakdowns, b)
	}
	return breakdowns, faults, nil
}

// assignmentsForDate resolves the cycle day at the date's index and its
// assignments, keeping only the first assignment per slot; extras are
// data-quality faults.
func (s *Service) assignmentsForDate(ctx context.Context, st store.Stores, cycle *models.MenuCycle, idx int) ([]*models.MenuDayAssignment, []string, error) {
	day, err := st.Menu.DayByIndex(ctx, cycle.ID, idx)
	if err != nil {
		return nil, nil, err
	}
	if day == nil {
		return nil, nil, nil
	}
	assignments, err := st.Menu.AssignmentsByCycleDay(ctx, day.ID)
	if err != nil {
		return nil, nil, err
	}

	var kept []*models.MenuDayAssignment
	var faults []string
	seen := map[types.MealSlot]bool{}
	for _, a := range assignments {
		if seen[a.Slot] {
			faults = append(faults, fmt.Sprintf("duplicate %s assignment %s at day index %d skipped", a.Slot, a.ID, idx))
			continue
		}
		seen[a.Slot] = true
		kept = append(kept, a)
	}
	return kept, faults, nil
}

// ComputeDailyDemand runs the full aggregation for a target date. The
// whole read set shares one transaction.
func (s *Service) ComputeDailyDemand(ctx context.Context, date time.Time) (*DailyDemand, error) {
	start := time.Now()
	defer func() {
		s.bpDur.WithLabelValues("kitchen", "daily_demand").Observe(metrics.MillisecondsSince(start))
	}()

	var out *DailyDemand
	err := s.atomic.Atomically(ctx, func(st store.Stores) error {
		var err error
		out, err = s.computeDailyDemand(ctx, st, date)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) computeDailyDemand(ctx context.Context, st store.Stores, date time.Time) (*DailyDemand, error) {
	cycle, err := s.activeCycle(ctx, st)
	if err != nil {
		return nil, err
	}
	idx := CycleDayIndex(date, cycle.CycleLengthDays)

	assignments, faults, err := s.assignmentsForDate(ctx, st, cycle, idx)
	if err != nil {
		return nil, err
	}

	subs, err := st.Subscriptions.List(ctx, store.SubscriptionFilter{
		Statuses: []types.SubscriptionState{types.SubscriptionStateActive, types.SubscriptionStateFrozen},
	})
	if err != nil {
		return nil, err
	}

	plans, planFaults, err := s.planCounts(ctx, st, date, subs)
	if err != nil {
		return nil, err
	}
	faults = append(faults, planFaults...)

	out := &DailyDemand{
		Date:          date.Format(time.DateOnly),
		CycleDayIndex: idx,
		Plans:         plans,
	}
	for _, b := range plans {
		out.LunchCount += b.LunchCount
		out.DinnerCount += b.DinnerCount
	}

	// servings per assignment = slot total across all plans
	raw := map[string]*RawMaterial{}
	for _, a := range assignments {
		servings := out.LunchCount
		if a.Slot == types.MealSlotDinner {
			servings = out.DinnerCount
		}
		if servings == 0 {
			continue
		}

		meal, err := st.Meals.Get(ctx, a.MealID)
		if err != nil {
			faults = append(faults, fmt.Sprintf("assignment %s references missing meal %s, skipped", a.ID, a.MealID))
			continue
		}
		out.MealsToPrepare = append(out.MealsToPrepare, MealPrep{MealID: meal.ID, MealName: meal.Name, Count: servings})

		lines, err := st.Meals.IngredientLines(ctx, meal.ID)
		if err != nil {
			return nil, err
		}
		for _, line := range lines {
			ing, err := st.Meals.Ingredient(ctx, line.IngredientID)
			if err != nil {
				faults = append(faults, fmt.Sprintf("meal %s references missing ingredient %s, skipped", meal.ID, line.IngredientID))
				continue
			}
			key := ing.Name + "\x00" + ing.Unit
			if existing, ok := raw[key]; ok {
				// merge duplicate (name, unit) keys by summation
				existing.Quantity += line.WeightGrams * int64(servings)
			} else {
				raw[key] = &RawMaterial{Name: ing.Name, Unit: ing.Unit, Quantity: line.WeightGrams * int64(servings)}
			}
		}
	}

	out.RawMaterials = lo.Map(lo.Values(raw), func(r *RawMaterial, _ int) RawMaterial { return *r })
	sort.Slice(out.RawMaterials, func(i, j int) bool {
		if out.RawMaterials[i].Name != out.RawMaterials[j].Name {
			return out.RawMaterials[i].Name < out.RawMaterials[j].Name
		}
		return out.RawMaterials[i].Unit < out.RawMaterials[j].Unit
	})
	sort.Slice(out.MealsToPrepare, func(i, j int) bool {
		return out.MealsToPrepare[i].MealID < out.MealsToPrepare[j].MealID
	})
	out.Faults = faults

	if len(faults) > 0 {
		logctx.FromCtx(ctx, s.log).Warnw("daily demand computed with data faults",
			"date", out.Date, "faults", faults)
	}
	return out, nil
}
