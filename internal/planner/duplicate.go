// internal/planner/duplicate.go
package planner

import (
	"context"
	"fmt"

	"alcyxob/fitness-planner/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Duplicator clones an existing plan's full hierarchy into the following
// week. Duplication has no baseline to diff against, so it replays the
// source tree directly instead of going through the draft machinery.
type Duplicator struct {
	gateway Gateway
}

// NewDuplicator returns a duplicator bound to the given gateway.
func NewDuplicator(gateway Gateway) *Duplicator {
	return &Duplicator{gateway: gateway}
}

// Duplicate copies the source plan into the next week: same client, trainer
// and notes, week bounds shifted by seven days, every day and exercise
// replayed depth-first in source order with fresh store-issued identities.
// day_of_week and order_index are preserved verbatim. Any other active plan
// for that client/week is deactivated first.
//
// Returns ErrNotFound (wrapped) when the source plan no longer exists.
func (d *Duplicator) Duplicate(ctx context.Context, sourcePlanID primitive.ObjectID) (*domain.WeeklyPlan, error) {
	source, err := d.gateway.FetchPlanHierarchy(ctx, sourcePlanID)
	if err != nil {
		return nil, fmt.Errorf("load source plan: %w", err)
	}

	weekStart, weekEnd := WeekBounds(source.WeekStart.AddDate(0, 0, 7))

	if err := d.gateway.DeactivateOverlapping(ctx, source.ClientID, weekStart); err != nil {
		return nil, fmt.Errorf("deactivate overlapping plans: %w", err)
	}

	clone := &domain.WeeklyPlan{
		TrainerID: source.TrainerID,
		ClientID:  source.ClientID,
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		Notes:     source.Notes,
		IsActive:  true,
	}
	planID, err := d.gateway.CreatePlan(ctx, clone)
	if err != nil {
		return nil, fmt.Errorf("create plan copy: %w", err)
	}
	clone.ID = planID

	for di := range source.Days {
		day := &source.Days[di]
		dayID, err := d.gateway.CreateDay(ctx, planID, dayPayloadFrom(day))
		if err != nil {
			return nil, fmt.Errorf("copy day %d: %w", day.DayOfWeek, err)
		}

		dayCopy := *day
		dayCopy.ID = dayID
		dayCopy.PlanID = planID
		dayCopy.Exercises = make([]domain.DayExercise, 0, len(day.Exercises))

		for ei := range day.Exercises {
			ex := &day.Exercises[ei]
			exID, err := d.gateway.CreateExercise(ctx, dayID, exercisePayloadFrom(ex))
			if err != nil {
				return nil, fmt.Errorf("copy exercise %d of day %d: %w", ex.OrderIndex, day.DayOfWeek, err)
			}
			exCopy := *ex
			exCopy.ID = exID
			exCopy.DayID = dayID
			dayCopy.Exercises = append(dayCopy.Exercises, exCopy)
		}
		clone.Days = append(clone.Days, dayCopy)
	}

	return clone, nil
}
