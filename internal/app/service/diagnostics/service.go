package diagnostics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fatflowers/mealkit/internal/app/service/demand"
	"github.com/fatflowers/mealkit/internal/models"
	"github.com/fatflowers/mealkit/internal/store"
	"github.com/fatflowers/mealkit/pkg/types"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// dayIndexRule is surfaced verbatim on every report so operators reading
// unexpected counts know the index does not track the cycle's start date.
const dayIndexRule = "cycle_day_index = (day_of_month - 1) mod cycle_length_days; the mapping is day-of-month only and does not reset at the cycle's real start date"

// Service explains why a given day produced its counts. It is a
// read-only lens over the same stores the aggregator uses; it mutates
// nothing and never fails on missing menu data, it reports it.
type Service struct {
	stores store.Stores
	log    *zap.SugaredLogger
}

func NewService(stores store.Stores, log *zap.SugaredLogger) *Service {
	return &Service{stores: stores, log: log}
}

// OrphanRef is a reference whose target row does not exist.
type OrphanRef struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

// SlotDuplicate marks more than one assignment on one (day, slot).
type SlotDuplicate struct {
	DayIndex int            `json:"day_index"`
	Slot     types.MealSlot `json:"slot"`
	Count    int            `json:"count"`
}

// PlanSubscribers is the raw subscriber-by-plan breakdown for the date.
type PlanSubscribers struct {
	PlanID      string         `json:"plan_id"`
	PlanCode    string         `json:"plan_code"`
	Active      int            `json:"active"`
	Frozen      int            `json:"frozen"`
	Total       int            `json:"total"`
	DeliveryDay bool           `json:"delivery_day"`
	Slot        types.MealSlot `json:"slot,omitempty"`
	LunchCount  int            `json:"lunch_count"`
	DinnerCount int            `json:"dinner_count"`
	PlanMissing bool           `json:"plan_missing,omitempty"`
}

// Report is the structured explanation of one day's computation.
type Report struct {
	Date       string `json:"date"`
	DayOfMonth int    `json:"day_of_month"`

	ActiveCycleCount           int    `json:"active_cycle_count"`
	HasActiveCycle             bool   `json:"has_active_cycle"`
	CycleID                    string `json:"cycle_id,omitempty"`
	CycleLengthDays            int    `json:"cycle_length_days,omitempty"`
	ResolvedDayIndex           int    `json:"resolved_day_index"`
	DayIndexNotCycleStartAware bool   `json:"day_index_not_cycle_start_aware"`
	DayIndexRule               string `json:"day_index_rule"`

	CycleDayCount              int         `json:"cycle_day_count"`
	ContiguousDayIndices       bool        `json:"contiguous_day_indices"`
	AssignmentsAtResolvedIndex int         `json:"assignments_at_resolved_index"`
	AssignmentsPerDayIndex     map[int]int `json:"assignments_per_day_index"`

	DuplicateSlotAssignments []SlotDuplicate `json:"duplicate_slot_assignments,omitempty"`
	OrphanedAssignments      []OrphanRef     `json:"orphaned_assignments,omitempty"`
	OrphanedIngredients      []OrphanRef     `json:"orphaned_ingredients,omitempty"`

	SubscribersByPlan []PlanSubscribers `json:"subscribers_by_plan"`
	LunchCount        int               `json:"lunch_count"`
	DinnerCount       int               `json:"dinner_count"`

	Notes []string `json:"notes,omitempty"`
}

// ComputeDailyDiagnostics builds the report for a target date.
func (s *Service) ComputeDailyDiagnostics(ctx context.Context, date time.Time) (*Report, error) {
	r := &Report{
		Date:                       date.Format(time.DateOnly),
		DayOfMonth:                 date.Day(),
		ResolvedDayIndex:           -1,
		DayIndexNotCycleStartAware: true,
		DayIndexRule:               dayIndexRule,
		AssignmentsPerDayIndex:     map[int]int{},
	}

	cycles, err := s.stores.Menu.ActiveCycles(ctx)
	if err != nil {
		return nil, err
	}
	r.ActiveCycleCount = len(cycles)
	switch {
	case len(cycles) == 0:
		r.Notes = append(r.Notes, "no active menu cycle configured; demand computation fails for this date")
	case len(cycles) > 1:
		r.Notes = append(r.Notes, fmt.Sprintf("%d menu cycles flagged active; demand computation refuses to pick one", len(cycles)))
	case cycles[0].CycleLengthDays <= 0:
		r.Notes = append(r.Notes, fmt.Sprintf("active cycle %s has non-positive length %d", cycles[0].ID, cycles[0].CycleLengthDays))
	default:
		r.HasActiveCycle = true
	}

	if r.HasActiveCycle {
		cycle := cycles[0]
		r.CycleID = cycle.ID
		r.CycleLengthDays = cycle.CycleLengthDays
		r.ResolvedDayIndex = demand.CycleDayIndex(date, cycle.CycleLengthDays)
		if err := s.inspectMenu(ctx, cycle, r); err != nil {
			return nil, err
		}
	}

	if err := s.inspectSubscribers(ctx, date, r); err != nil {
		return nil, err
	}

	if r.HasActiveCycle && r.AssignmentsAtResolvedIndex == 0 {
		r.Notes = append(r.Notes, fmt.Sprintf("no assignments at day index %d; the kitchen report for this date is empty", r.ResolvedDayIndex))
	}
	return r, nil
}

func (s *Service) inspectMenu(ctx context.Context, cycle *models.MenuCycle, r *Report) error {
	days, err := s.stores.Menu.DaysByCycle(ctx, cycle.ID)
	if err != nil {
		return err
	}
	r.CycleDayCount = len(days)
	r.ContiguousDayIndices = contiguous(days, cycle.CycleLengthDays)
	if !r.ContiguousDayIndices {
		r.Notes = append(r.Notes, "cycle day indices are not contiguous and unique over [0, cycle_length_days)")
	}

	for _, day := range days {
		assignments, err := s.stores.Menu.AssignmentsByCycleDay(ctx, day.ID)
		if err != nil {
			return err
		}
		r.AssignmentsPerDayIndex[day.DayIndex] = len(assignments)
		if day.DayIndex == r.ResolvedDayIndex {
			r.AssignmentsAtResolvedIndex = len(assignments)
		}

		perSlot := lo.CountValuesBy(assignments, func(a *models.MenuDayAssignment) types.MealSlot { return a.Slot })
		for slot, n := range perSlot {
			if n > 1 {
				r.DuplicateSlotAssignments = append(r.DuplicateSlotAssignments, SlotDuplicate{DayIndex: day.DayIndex, Slot: slot, Count: n})
			}
		}

		for _, a := range assignments {
			meal, err := s.stores.Meals.Get(ctx, a.MealID)
			if err != nil {
				r.OrphanedAssignments = append(r.OrphanedAssignments, OrphanRef{SourceID: a.ID, TargetID: a.MealID})
				continue
			}
			if day.DayIndex != r.ResolvedDayIndex {
				continue
			}
			lines, err := s.stores.Meals.IngredientLines(ctx, meal.ID)
			if err != nil {
				return err
			}
			for _, line := range lines {
				if _, err := s.stores.Meals.Ingredient(ctx, line.IngredientID); err != nil {
					r.OrphanedIngredients = append(r.OrphanedIngredients, OrphanRef{SourceID: line.MealID, TargetID: line.IngredientID})
				}
			}
		}
	}

	sort.Slice(r.DuplicateSlotAssignments, func(i, j int) bool {
		a, b := r.DuplicateSlotAssignments[i], r.DuplicateSlotAssignments[j]
		if a.DayIndex != b.DayIndex {
			return a.DayIndex < b.DayIndex
		}
		return a.Slot < b.Slot
	})
	return nil
}

func (s *Service) inspectSubscribers(ctx context.Context, date time.Time, r *Report) error {
	subs, err := s.stores.Subscriptions.List(ctx, store.SubscriptionFilter{
		Statuses: []types.SubscriptionState{types.SubscriptionStateActive, types.SubscriptionStateFrozen},
	})
	if err != nil {
		return err
	}

	byPlan := lo.GroupBy(subs, func(sub *models.Subscription) string { return sub.PlanID })
	planIDs := lo.Keys(byPlan)
	sort.Strings(planIDs)

	for _, planID := range planIDs {
		group := byPlan[planID]
		ps := PlanSubscribers{PlanID: planID, Total: len(group)}
		for _, sub := range group {
			if sub.Status == types.SubscriptionStateActive {
				ps.Active++
			} else {
				ps.Frozen++
			}
		}

		plan, err := s.stores.Plans.Get(ctx, planID)
		if err != nil {
			ps.PlanMissing = true
			r.Notes = append(r.Notes, fmt.Sprintf("plan %s referenced by %d subscriptions not found", planID, len(group)))
			r.SubscribersByPlan = append(r.SubscribersByPlan, ps)
			continue
		}
		ps.PlanCode = plan.Code
		ps.DeliveryDay = demand.IsDeliveryDay(plan, date)
		if ps.DeliveryDay {
			if plan.MealsPerDay == 2 {
				ps.LunchCount = ps.Total
				ps.DinnerCount = ps.Total
			} else {
				ps.Slot = demand.SlotFor(plan, date)
				if ps.Slot == types.MealSlotLunch {
					ps.LunchCount = ps.Total
				} else {
					ps.DinnerCount = ps.Total
				}
			}
		}
		r.LunchCount += ps.LunchCount
		r.DinnerCount += ps.DinnerCount
		r.SubscribersByPlan = append(r.SubscribersByPlan, ps)
	}
	return nil
}

// contiguous reports whether days cover exactly [0, cycleLength) with no
// gaps or repeats.
func contiguous(days []*models.MenuCycleDay, cycleLength int) bool {
	if len(days) != cycleLength {
		return false
	}
	seen := make([]bool, cycleLength)
	for _, d := range days {
		if d.DayIndex < 0 || d.DayIndex >= cycleLength || seen[d.DayIndex] {
			return false
		}
		seen[d.DayIndex] = true
	}
	return true
}
