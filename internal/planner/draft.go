// internal/planner/draft.go
package planner

import (
	"fmt"

	"alcyxob/fitness-planner/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Draft is the locally mutable copy of one weekly plan's day/exercise
// hierarchy. It is edited through the methods below and reconciled against
// the persisted baseline by Engine.Save. A Draft is not safe for concurrent
// use; one editing session owns it.
type Draft struct {
	PlanID primitive.ObjectID
	Notes  string
	Days   []*DayNode
}

// NewDraft returns an empty draft for a plan that already exists remotely.
func NewDraft(planID primitive.ObjectID, notes string) *Draft {
	return &Draft{PlanID: planID, Notes: notes}
}

// HydrateDraft builds a draft from a fetched baseline hierarchy. Every node
// starts CLEAN and carries its server identity.
func HydrateDraft(plan *domain.WeeklyPlan) *Draft {
	draft := &Draft{
		PlanID: plan.ID,
		Notes:  plan.Notes,
		Days:   make([]*DayNode, 0, len(plan.Days)),
	}
	for i := range plan.Days {
		day := &plan.Days[i]
		node := &DayNode{
			ID:        day.ID,
			Tag:       TagClean,
			Payload:   dayPayloadFrom(day),
			Exercises: make([]*ExerciseNode, 0, len(day.Exercises)),
		}
		for j := range day.Exercises {
			ex := &day.Exercises[j]
			node.Exercises = append(node.Exercises, &ExerciseNode{
				ID:      ex.ID,
				Tag:     TagClean,
				Payload: exercisePayloadFrom(ex),
			})
		}
		draft.Days = append(draft.Days, node)
	}
	return draft
}

// AddDay appends an authored day. It refuses a weekday already occupied by a
// non-deleted day; at most one day may exist per weekday within a plan.
func (d *Draft) AddDay(dayOfWeek int, name string, isRestDay bool) (*DayNode, error) {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return nil, validationErrorf("day of week %d is out of range 0..6", dayOfWeek)
	}
	for _, day := range d.Days {
		if day.Tag != TagDeleted && day.Payload.DayOfWeek == dayOfWeek {
			return nil, validationErrorf("weekday %d already has a day in this plan", dayOfWeek)
		}
	}
	node := &DayNode{
		Tag: TagNew,
		Payload: DayPayload{
			DayOfWeek: dayOfWeek,
			Name:      name,
			IsRestDay: isRestDay,
		},
	}
	d.Days = append(d.Days, node)
	return node, nil
}

// AddExercise appends an authored exercise to the day at dayIndex.
func (d *Draft) AddExercise(dayIndex int, payload ExercisePayload) (*ExerciseNode, error) {
	day, err := d.day(dayIndex)
	if err != nil {
		return nil, err
	}
	if day.Tag == TagDeleted {
		return nil, validationErrorf("cannot add an exercise to a deleted day")
	}
	if payload.Sets < 1 {
		return nil, validationErrorf("sets must be a positive integer, got %d", payload.Sets)
	}
	node := &ExerciseNode{Tag: TagNew, Payload: payload}
	day.Exercises = append(day.Exercises, node)
	return node, nil
}

// UpdateDay merges patch into the day's payload. A CLEAN day is promoted to
// MODIFIED; NEW and MODIFIED keep their tag. A DELETED day rejects edits.
func (d *Draft) UpdateDay(dayIndex int, patch DayPatch) error {
	day, err := d.day(dayIndex)
	if err != nil {
		return err
	}
	if day.Tag == TagDeleted {
		return validationErrorf("cannot edit a deleted day")
	}
	if patch.Name != nil {
		day.Payload.Name = *patch.Name
	}
	if patch.IsRestDay != nil {
		day.Payload.IsRestDay = *patch.IsRestDay
	}
	if day.Tag == TagClean {
		day.Tag = TagModified
	}
	return nil
}

// UpdateExercise merges patch into an exercise payload with the same tag
// transition rules as UpdateDay.
func (d *Draft) UpdateExercise(dayIndex, exIndex int, patch ExercisePatch) error {
	day, err := d.day(dayIndex)
	if err != nil {
		return err
	}
	if day.Tag == TagDeleted {
		return validationErrorf("cannot edit exercises of a deleted day")
	}
	ex, err := dayExercise(day, exIndex)
	if err != nil {
		return err
	}
	if ex.Tag == TagDeleted {
		return validationErrorf("cannot edit a deleted exercise")
	}
	if patch.Sets != nil && *patch.Sets < 1 {
		return validationErrorf("sets must be a positive integer, got %d", *patch.Sets)
	}
	if patch.ExerciseID != nil {
		ex.Payload.ExerciseID = *patch.ExerciseID
	}
	if patch.Sets != nil {
		ex.Payload.Sets = *patch.Sets
	}
	if patch.Reps != nil {
		ex.Payload.Reps = *patch.Reps
	}
	if patch.WeightKg != nil {
		ex.Payload.WeightKg = patch.WeightKg
	}
	if patch.ClearWeight {
		ex.Payload.WeightKg = nil
	}
	if patch.RestSeconds != nil {
		ex.Payload.RestSeconds = *patch.RestSeconds
	}
	if patch.Notes != nil {
		ex.Payload.Notes = *patch.Notes
	}
	if ex.Tag == TagClean {
		ex.Tag = TagModified
	}
	return nil
}

// RemoveDay removes the day at dayIndex. An authored day (no identity) was
// never persisted, so it is spliced out immediately; a hydrated day is tagged
// DELETED and stays in the draft until the save pass consumes it.
func (d *Draft) RemoveDay(dayIndex int) error {
	day, err := d.day(dayIndex)
	if err != nil {
		return err
	}
	if day.ID.IsZero() {
		d.Days = append(d.Days[:dayIndex], d.Days[dayIndex+1:]...)
		return nil
	}
	day.Tag = TagDeleted
	return nil
}

// RemoveExercise removes the exercise at exIndex within the day at dayIndex,
// with the same splice-or-tag behavior as RemoveDay.
func (d *Draft) RemoveExercise(dayIndex, exIndex int) error {
	day, err := d.day(dayIndex)
	if err != nil {
		return err
	}
	ex, err := dayExercise(day, exIndex)
	if err != nil {
		return err
	}
	if ex.ID.IsZero() {
		day.Exercises = append(day.Exercises[:exIndex], day.Exercises[exIndex+1:]...)
		return nil
	}
	ex.Tag = TagDeleted
	return nil
}

// MoveExercise shifts an exercise to a new visual position among its
// siblings. Order indexes are intentionally not recomputed here; they are
// recomputed once, at save time, over the surviving siblings.
func (d *Draft) MoveExercise(dayIndex, fromIndex, toIndex int) error {
	day, err := d.day(dayIndex)
	if err != nil {
		return err
	}
	if _, err := dayExercise(day, fromIndex); err != nil {
		return err
	}
	if toIndex < 0 || toIndex >= len(day.Exercises) {
		return fmt.Errorf("exercise index %d out of range", toIndex)
	}
	ex := day.Exercises[fromIndex]
	day.Exercises = append(day.Exercises[:fromIndex], day.Exercises[fromIndex+1:]...)
	day.Exercises = append(day.Exercises[:toIndex], append([]*ExerciseNode{ex}, day.Exercises[toIndex:]...)...)
	return nil
}

func (d *Draft) day(dayIndex int) (*DayNode, error) {
	if dayIndex < 0 || dayIndex >= len(d.Days) {
		return nil, fmt.Errorf("day index %d out of range", dayIndex)
	}
	return d.Days[dayIndex], nil
}

func dayExercise(day *DayNode, exIndex int) (*ExerciseNode, error) {
	if exIndex < 0 || exIndex >= len(day.Exercises) {
		return nil, fmt.Errorf("exercise index %d out of range", exIndex)
	}
	return day.Exercises[exIndex], nil
}
