package planner

import (
	"testing"

	"alcyxob/fitness-planner/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }
func boolPtr(v bool) *bool        { return &v }
func floatPtr(v float64) *float64 { return &v }

// hydratedPlan builds a baseline with two days: a Monday with two exercises
// and a Wednesday rest day.
func hydratedPlan() *domain.WeeklyPlan {
	planID := primitive.NewObjectID()
	mondayID := primitive.NewObjectID()
	wednesdayID := primitive.NewObjectID()
	return &domain.WeeklyPlan{
		ID:    planID,
		Notes: "base week",
		Days: []domain.PlanDay{
			{
				ID:        mondayID,
				PlanID:    planID,
				DayOfWeek: 0,
				Name:      "Push",
				Exercises: []domain.DayExercise{
					{ID: primitive.NewObjectID(), DayID: mondayID, ExerciseID: primitive.NewObjectID(), Sets: 3, Reps: "8-10", OrderIndex: 0},
					{ID: primitive.NewObjectID(), DayID: mondayID, ExerciseID: primitive.NewObjectID(), Sets: 4, Reps: "12", OrderIndex: 1},
				},
			},
			{
				ID:         wednesdayID,
				PlanID:     planID,
				DayOfWeek:  2,
				Name:       "Rest",
				IsRestDay:  true,
				OrderIndex: 1,
			},
		},
	}
}

func TestHydrateDraftStartsClean(t *testing.T) {
	draft := HydrateDraft(hydratedPlan())

	require.Len(t, draft.Days, 2)
	for _, day := range draft.Days {
		assert.Equal(t, TagClean, day.Tag)
		assert.False(t, day.ID.IsZero())
		for _, ex := range day.Exercises {
			assert.Equal(t, TagClean, ex.Tag)
			assert.False(t, ex.ID.IsZero())
		}
	}
	assert.Equal(t, "base week", draft.Notes)
}

func TestAddDay(t *testing.T) {
	draft := HydrateDraft(hydratedPlan())

	node, err := draft.AddDay(4, "Legs", false)
	require.NoError(t, err)
	assert.Equal(t, TagNew, node.Tag)
	assert.True(t, node.ID.IsZero())
	assert.Len(t, draft.Days, 3)

	// Weekday already occupied.
	_, err = draft.AddDay(0, "Another Monday", false)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	// Out of range.
	_, err = draft.AddDay(7, "Nope", false)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	// Deleting the occupying day frees the weekday.
	require.NoError(t, draft.RemoveDay(0))
	_, err = draft.AddDay(0, "Monday Again", true)
	assert.NoError(t, err)
}

func TestUpdateDayTagTransitions(t *testing.T) {
	draft := HydrateDraft(hydratedPlan())

	// CLEAN -> MODIFIED
	require.NoError(t, draft.UpdateDay(0, DayPatch{Name: strPtr("Heavy Push")}))
	assert.Equal(t, TagModified, draft.Days[0].Tag)
	assert.Equal(t, "Heavy Push", draft.Days[0].Payload.Name)

	// MODIFIED stays MODIFIED
	require.NoError(t, draft.UpdateDay(0, DayPatch{IsRestDay: boolPtr(false)}))
	assert.Equal(t, TagModified, draft.Days[0].Tag)

	// NEW stays NEW through edits
	_, err := draft.AddDay(5, "Saturday", true)
	require.NoError(t, err)
	require.NoError(t, draft.UpdateDay(2, DayPatch{Name: strPtr("Long Run")}))
	assert.Equal(t, TagNew, draft.Days[2].Tag)

	// DELETED rejects edits
	require.NoError(t, draft.RemoveDay(1))
	err = draft.UpdateDay(1, DayPatch{Name: strPtr("Ghost")})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestRemoveDaySpliceVsTag(t *testing.T) {
	draft := HydrateDraft(hydratedPlan())

	// Authored day is spliced out entirely.
	_, err := draft.AddDay(4, "Legs", false)
	require.NoError(t, err)
	require.Len(t, draft.Days, 3)
	require.NoError(t, draft.RemoveDay(2))
	assert.Len(t, draft.Days, 2)

	// Hydrated day is kept, tagged DELETED.
	require.NoError(t, draft.RemoveDay(0))
	assert.Len(t, draft.Days, 2)
	assert.Equal(t, TagDeleted, draft.Days[0].Tag)
}

func TestAddExercise(t *testing.T) {
	draft := HydrateDraft(hydratedPlan())

	node, err := draft.AddExercise(0, ExercisePayload{ExerciseID: primitive.NewObjectID(), Sets: 3, Reps: "10"})
	require.NoError(t, err)
	assert.Equal(t, TagNew, node.Tag)
	assert.Len(t, draft.Days[0].Exercises, 3)

	// Sets must be positive.
	_, err = draft.AddExercise(0, ExercisePayload{ExerciseID: primitive.NewObjectID(), Sets: 0})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	// Cannot add to a deleted day.
	require.NoError(t, draft.RemoveDay(0))
	_, err = draft.AddExercise(0, ExercisePayload{ExerciseID: primitive.NewObjectID(), Sets: 3})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	// Index out of range is a plain error, not a validation error.
	_, err = draft.AddExercise(9, ExercisePayload{ExerciseID: primitive.NewObjectID(), Sets: 3})
	require.Error(t, err)
	assert.False(t, IsValidation(err))
}

func TestUpdateExercise(t *testing.T) {
	draft := HydrateDraft(hydratedPlan())

	require.NoError(t, draft.UpdateExercise(0, 0, ExercisePatch{Sets: intPtr(5), WeightKg: floatPtr(60)}))
	ex := draft.Days[0].Exercises[0]
	assert.Equal(t, TagModified, ex.Tag)
	assert.Equal(t, 5, ex.Payload.Sets)
	require.NotNil(t, ex.Payload.WeightKg)
	assert.Equal(t, 60.0, *ex.Payload.WeightKg)

	// ClearWeight removes a previously set weight.
	require.NoError(t, draft.UpdateExercise(0, 0, ExercisePatch{ClearWeight: true}))
	assert.Nil(t, draft.Days[0].Exercises[0].Payload.WeightKg)

	// Zero sets rejected, payload untouched.
	err := draft.UpdateExercise(0, 0, ExercisePatch{Sets: intPtr(0)})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, 5, draft.Days[0].Exercises[0].Payload.Sets)

	// Deleted exercise rejects edits.
	require.NoError(t, draft.RemoveExercise(0, 1))
	err = draft.UpdateExercise(0, 1, ExercisePatch{Reps: strPtr("15")})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestRemoveExerciseSpliceVsTag(t *testing.T) {
	draft := HydrateDraft(hydratedPlan())

	// Authored exercise splices out.
	_, err := draft.AddExercise(0, ExercisePayload{ExerciseID: primitive.NewObjectID(), Sets: 3})
	require.NoError(t, err)
	require.Len(t, draft.Days[0].Exercises, 3)
	require.NoError(t, draft.RemoveExercise(0, 2))
	assert.Len(t, draft.Days[0].Exercises, 2)

	// Hydrated exercise stays, tagged DELETED.
	require.NoError(t, draft.RemoveExercise(0, 0))
	assert.Len(t, draft.Days[0].Exercises, 2)
	assert.Equal(t, TagDeleted, draft.Days[0].Exercises[0].Tag)
}

func TestMoveExercise(t *testing.T) {
	draft := HydrateDraft(hydratedPlan())
	first := draft.Days[0].Exercises[0]
	second := draft.Days[0].Exercises[1]

	require.NoError(t, draft.MoveExercise(0, 0, 1))
	assert.Same(t, second, draft.Days[0].Exercises[0])
	assert.Same(t, first, draft.Days[0].Exercises[1])

	// Moving does not touch tags or stored order indexes.
	assert.Equal(t, TagClean, first.Tag)
	assert.Equal(t, 0, first.Payload.OrderIndex)

	assert.Error(t, draft.MoveExercise(0, 0, 5))
	assert.Error(t, draft.MoveExercise(5, 0, 1))
}
