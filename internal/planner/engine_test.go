package planner

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"alcyxob/fitness-planner/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeGateway records every call and issues fresh identities for creates.
// failOn makes the named call kind fail; failAfter lets that many calls of
// any kind succeed first.
type fakeGateway struct {
	calls            []string
	createdDays      map[primitive.ObjectID]DayPayload
	createdExercises map[primitive.ObjectID]ExercisePayload
	deletedDays      []primitive.ObjectID
	deletedExercises []primitive.ObjectID
	updatedNotes     *string

	plan *domain.WeeklyPlan // served by FetchPlanHierarchy

	failOn    string
	failAfter int
	failErr   error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		createdDays:      make(map[primitive.ObjectID]DayPayload),
		createdExercises: make(map[primitive.ObjectID]ExercisePayload),
		failErr:          errors.New("gateway unavailable"),
	}
}

func (g *fakeGateway) step(name string) error {
	g.calls = append(g.calls, name)
	if g.failOn == name {
		if g.failAfter > 0 {
			g.failAfter--
			return nil
		}
		return g.failErr
	}
	return nil
}

func (g *fakeGateway) CreatePlan(ctx context.Context, plan *domain.WeeklyPlan) (primitive.ObjectID, error) {
	if err := g.step("create_plan"); err != nil {
		return primitive.NilObjectID, err
	}
	return primitive.NewObjectID(), nil
}

func (g *fakeGateway) UpdatePlanNotes(ctx context.Context, planID primitive.ObjectID, notes string) error {
	if err := g.step("update_plan_notes"); err != nil {
		return err
	}
	g.updatedNotes = &notes
	return nil
}

func (g *fakeGateway) DeactivateOverlapping(ctx context.Context, clientID primitive.ObjectID, weekStart time.Time) error {
	return g.step("deactivate_overlapping")
}

func (g *fakeGateway) CreateDay(ctx context.Context, planID primitive.ObjectID, day DayPayload) (primitive.ObjectID, error) {
	if err := g.step("create_day"); err != nil {
		return primitive.NilObjectID, err
	}
	id := primitive.NewObjectID()
	g.createdDays[id] = day
	return id, nil
}

func (g *fakeGateway) UpdateDay(ctx context.Context, dayID primitive.ObjectID, day DayPayload) error {
	return g.step("update_day")
}

func (g *fakeGateway) DeleteDay(ctx context.Context, dayID primitive.ObjectID) error {
	if err := g.step("delete_day"); err != nil {
		return err
	}
	g.deletedDays = append(g.deletedDays, dayID)
	return nil
}

func (g *fakeGateway) CreateExercise(ctx context.Context, dayID primitive.ObjectID, ex ExercisePayload) (primitive.ObjectID, error) {
	if err := g.step("create_exercise"); err != nil {
		return primitive.NilObjectID, err
	}
	if dayID.IsZero() {
		return primitive.NilObjectID, fmt.Errorf("create_exercise called with zero day ID")
	}
	id := primitive.NewObjectID()
	g.createdExercises[id] = ex
	return id, nil
}

func (g *fakeGateway) UpdateExercise(ctx context.Context, exerciseID primitive.ObjectID, ex ExercisePayload) error {
	return g.step("update_exercise")
}

func (g *fakeGateway) DeleteExercise(ctx context.Context, exerciseID primitive.ObjectID) error {
	if err := g.step("delete_exercise"); err != nil {
		return err
	}
	g.deletedExercises = append(g.deletedExercises, exerciseID)
	return nil
}

func (g *fakeGateway) FetchPlanHierarchy(ctx context.Context, planID primitive.ObjectID) (*domain.WeeklyPlan, error) {
	if err := g.step("fetch_plan"); err != nil {
		return nil, err
	}
	if g.plan == nil || g.plan.ID != planID {
		return nil, ErrNotFound
	}
	return g.plan, nil
}

// --- Save Tests ---

func TestEngineSaveNoChanges(t *testing.T) {
	gateway := newFakeGateway()
	engine := NewEngine(gateway)
	draft := HydrateDraft(hydratedPlan())

	result, err := engine.Save(context.Background(), draft, "base week")
	require.NoError(t, err)
	assert.False(t, result.Partial())
	assert.Empty(t, result.Succeeded)
	assert.Empty(t, gateway.calls)
}

func TestEngineSaveFullSuccessRehydrates(t *testing.T) {
	gateway := newFakeGateway()
	engine := NewEngine(gateway)
	draft := HydrateDraft(hydratedPlan())

	// One of everything: delete an exercise, edit the other, add a new day
	// with a child, change the notes.
	draft.Notes = "new notes"
	require.NoError(t, draft.RemoveExercise(0, 0))
	require.NoError(t, draft.UpdateExercise(0, 1, ExercisePatch{Sets: intPtr(5)}))
	_, err := draft.AddDay(4, "Legs", false)
	require.NoError(t, err)
	_, err = draft.AddExercise(2, ExercisePayload{ExerciseID: primitive.NewObjectID(), Sets: 5, Reps: "5"})
	require.NoError(t, err)

	result, err := engine.Save(context.Background(), draft, "base week")
	require.NoError(t, err)
	assert.False(t, result.Partial())
	assert.Len(t, result.Succeeded, 5)
	assert.Empty(t, result.Pending)

	require.NotNil(t, gateway.updatedNotes)
	assert.Equal(t, "new notes", *gateway.updatedNotes)

	// Rehydrated: deleted node gone, tags reset, identities assigned,
	// order indexes recomputed.
	require.Len(t, draft.Days, 3)
	for _, day := range draft.Days {
		assert.Equal(t, TagClean, day.Tag)
		assert.False(t, day.ID.IsZero())
		for _, ex := range day.Exercises {
			assert.Equal(t, TagClean, ex.Tag)
			assert.False(t, ex.ID.IsZero())
		}
	}
	require.Len(t, draft.Days[0].Exercises, 1)
	assert.Equal(t, 0, draft.Days[0].Exercises[0].Payload.OrderIndex)
	assert.Equal(t, 5, draft.Days[0].Exercises[0].Payload.Sets)
	assert.Equal(t, 2, draft.Days[2].Payload.OrderIndex)
}

func TestEngineSaveCreatesDayBeforeItsChildren(t *testing.T) {
	gateway := newFakeGateway()
	engine := NewEngine(gateway)
	draft := NewDraft(primitive.NewObjectID(), "")

	_, err := draft.AddDay(0, "Push", false)
	require.NoError(t, err)
	_, err = draft.AddExercise(0, ExercisePayload{ExerciseID: primitive.NewObjectID(), Sets: 3, Reps: "8"})
	require.NoError(t, err)

	_, err = engine.Save(context.Background(), draft, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"create_day", "create_exercise"}, gateway.calls)

	// The child took the server identity of its parent's create.
	require.Len(t, gateway.createdExercises, 1)
	assert.False(t, draft.Days[0].ID.IsZero())
	assert.False(t, draft.Days[0].Exercises[0].ID.IsZero())
}

func TestEngineSavePartialFailure(t *testing.T) {
	gateway := newFakeGateway()
	gateway.failOn = "create_exercise"
	gateway.failAfter = 1 // first exercise create succeeds, second fails
	engine := NewEngine(gateway)

	draft := NewDraft(primitive.NewObjectID(), "")
	_, err := draft.AddDay(0, "Push", false)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = draft.AddExercise(0, ExercisePayload{ExerciseID: primitive.NewObjectID(), Sets: 3})
		require.NoError(t, err)
	}

	result, err := engine.Save(context.Background(), draft, "")
	require.Error(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Partial())

	// Ops: create_day, create_exercise x3. The third op failed.
	assert.Len(t, result.Succeeded, 2)
	require.NotNil(t, result.Failed)
	assert.Equal(t, OpCreateExercise, result.Failed.Op.Kind)
	assert.ErrorIs(t, result.Failed.Err, gateway.failErr)
	assert.Len(t, result.Pending, 1)

	// No rollback: the applied creates stay applied.
	assert.Len(t, gateway.createdDays, 1)
	assert.Len(t, gateway.createdExercises, 1)

	// The draft was NOT rehydrated; the new nodes still carry no identity.
	assert.True(t, draft.Days[0].Exercises[0].ID.IsZero())
	assert.Equal(t, TagNew, draft.Days[0].Tag)
}

func TestEngineSaveValidationFailureMakesNoCalls(t *testing.T) {
	gateway := newFakeGateway()
	engine := NewEngine(gateway)
	draft := HydrateDraft(hydratedPlan())
	require.NoError(t, draft.RemoveExercise(0, 0))
	require.NoError(t, draft.RemoveExercise(0, 1))

	result, err := engine.Save(context.Background(), draft, "base week")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Nil(t, result)
	assert.Empty(t, gateway.calls)
}

func TestEngineSaveDeleteOrdering(t *testing.T) {
	gateway := newFakeGateway()
	engine := NewEngine(gateway)
	draft := HydrateDraft(hydratedPlan())
	deletedDayID := draft.Days[0].ID
	require.NoError(t, draft.RemoveDay(0))

	result, err := engine.Save(context.Background(), draft, "base week")
	require.NoError(t, err)
	assert.False(t, result.Partial())

	// One cascading day delete; the day's exercises are never addressed
	// individually.
	assert.Equal(t, []primitive.ObjectID{deletedDayID}, gateway.deletedDays)
	assert.Empty(t, gateway.deletedExercises)

	// Draft now holds only the surviving day.
	require.Len(t, draft.Days, 1)
	assert.Equal(t, 2, draft.Days[0].Payload.DayOfWeek)
	assert.Equal(t, 0, draft.Days[0].Payload.OrderIndex)
}
