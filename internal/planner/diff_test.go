package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func opKinds(ops []Op) []OpKind {
	kinds := make([]OpKind, len(ops))
	for i, op := range ops {
		kinds[i] = op.Kind
	}
	return kinds
}

func TestComputeOpsCleanDraftIsEmpty(t *testing.T) {
	draft := HydrateDraft(hydratedPlan())

	ops, err := ComputeOps(draft, "base week")
	require.NoError(t, err)
	assert.Empty(t, ops)

	// ComputeOps is pure; running it again gives the same answer.
	ops, err = ComputeOps(draft, "base week")
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestComputeOpsNotesChangeComesFirst(t *testing.T) {
	draft := HydrateDraft(hydratedPlan())
	draft.Notes = "deload week"
	_, err := draft.AddDay(4, "Legs", true)
	require.NoError(t, err)

	ops, err := ComputeOps(draft, "base week")
	require.NoError(t, err)
	require.NotEmpty(t, ops)
	assert.Equal(t, OpUpdatePlanNotes, ops[0].Kind)
	assert.Equal(t, "deload week", ops[0].Notes)
}

func TestComputeOpsNewDayWithChildren(t *testing.T) {
	draft := HydrateDraft(hydratedPlan())
	_, err := draft.AddDay(4, "Legs", false)
	require.NoError(t, err)
	_, err = draft.AddExercise(2, ExercisePayload{ExerciseID: primitive.NewObjectID(), Sets: 5, Reps: "5"})
	require.NoError(t, err)
	_, err = draft.AddExercise(2, ExercisePayload{ExerciseID: primitive.NewObjectID(), Sets: 3, Reps: "12"})
	require.NoError(t, err)

	ops, err := ComputeOps(draft, "base week")
	require.NoError(t, err)
	require.Equal(t, []OpKind{OpCreateDay, OpCreateExercise, OpCreateExercise}, opKinds(ops))

	// The day create precedes its children, which reference it by key.
	assert.Equal(t, 2, ops[0].DayKey)
	assert.Equal(t, 2, ops[1].DayKey)
	assert.True(t, ops[1].DayID.IsZero(), "parent has no identity yet")

	// Order indexes recomputed over the new siblings.
	assert.Equal(t, 2, ops[0].Day.OrderIndex)
	assert.Equal(t, 0, ops[1].Exercise.OrderIndex)
	assert.Equal(t, 1, ops[2].Exercise.OrderIndex)
}

func TestComputeOpsDeletedDaySkipsChildren(t *testing.T) {
	draft := HydrateDraft(hydratedPlan())
	require.NoError(t, draft.RemoveDay(0)) // Monday with two exercises

	ops, err := ComputeOps(draft, "base week")
	require.NoError(t, err)
	require.Equal(t, []OpKind{OpDeleteDay, OpUpdateDay}, opKinds(ops))
	assert.Equal(t, draft.Days[0].ID, ops[0].TargetID)

	// The surviving Wednesday shifts from position 1 to 0, so a reorder
	// update is emitted even though the day itself is CLEAN.
	assert.Equal(t, draft.Days[1].ID, ops[1].TargetID)
	assert.Equal(t, 0, ops[1].Day.OrderIndex)
}

func TestComputeOpsModifiedNodes(t *testing.T) {
	draft := HydrateDraft(hydratedPlan())
	require.NoError(t, draft.UpdateDay(0, DayPatch{Name: strPtr("Heavy Push")}))
	require.NoError(t, draft.UpdateExercise(0, 1, ExercisePatch{Sets: intPtr(5)}))

	ops, err := ComputeOps(draft, "base week")
	require.NoError(t, err)
	require.Equal(t, []OpKind{OpUpdateDay, OpUpdateExercise}, opKinds(ops))
	assert.Equal(t, "Heavy Push", ops[0].Day.Name)
	assert.Equal(t, 5, ops[1].Exercise.Sets)
	assert.Equal(t, draft.Days[0].Exercises[1].ID, ops[1].TargetID)
}

func TestComputeOpsPureReorderEmitsUpdates(t *testing.T) {
	draft := HydrateDraft(hydratedPlan())
	require.NoError(t, draft.MoveExercise(0, 0, 1))

	ops, err := ComputeOps(draft, "base week")
	require.NoError(t, err)

	// Both exercises changed position; each gets an update carrying only the
	// recomputed index.
	require.Equal(t, []OpKind{OpUpdateExercise, OpUpdateExercise}, opKinds(ops))
	assert.Equal(t, 0, ops[0].Exercise.OrderIndex)
	assert.Equal(t, 1, ops[1].Exercise.OrderIndex)
}

func TestComputeOpsDeletedSiblingShiftsSurvivors(t *testing.T) {
	draft := HydrateDraft(hydratedPlan())
	require.NoError(t, draft.RemoveExercise(0, 0))

	ops, err := ComputeOps(draft, "base week")
	require.NoError(t, err)

	// Delete for the first exercise, reorder update for the second (1 -> 0).
	require.Equal(t, []OpKind{OpDeleteExercise, OpUpdateExercise}, opKinds(ops))
	assert.Equal(t, 0, ops[1].Exercise.OrderIndex)
}

func TestComputeOpsValidation(t *testing.T) {
	t.Run("duplicate weekday", func(t *testing.T) {
		draft := HydrateDraft(hydratedPlan())
		// Force a duplicate by editing the node directly; AddDay would refuse.
		_, err := draft.AddDay(4, "Legs", true)
		require.NoError(t, err)
		draft.Days[2].Payload.DayOfWeek = 0

		_, err = ComputeOps(draft, "base week")
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("training day without exercises", func(t *testing.T) {
		draft := HydrateDraft(hydratedPlan())
		require.NoError(t, draft.RemoveExercise(0, 0))
		require.NoError(t, draft.RemoveExercise(0, 1))

		_, err := ComputeOps(draft, "base week")
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("rest day without exercises is fine", func(t *testing.T) {
		draft := HydrateDraft(hydratedPlan())
		require.NoError(t, draft.UpdateDay(0, DayPatch{IsRestDay: boolPtr(true)}))
		require.NoError(t, draft.RemoveExercise(0, 0))
		require.NoError(t, draft.RemoveExercise(0, 1))

		_, err := ComputeOps(draft, "base week")
		assert.NoError(t, err)
	})

	t.Run("deleted day exempt from exercise rule", func(t *testing.T) {
		draft := HydrateDraft(hydratedPlan())
		require.NoError(t, draft.RemoveExercise(0, 0))
		require.NoError(t, draft.RemoveExercise(0, 1))
		require.NoError(t, draft.RemoveDay(0))

		_, err := ComputeOps(draft, "base week")
		assert.NoError(t, err)
	})
}
