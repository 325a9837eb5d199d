// internal/planner/gateway.go
package planner

import (
	"context"
	"time"

	"alcyxob/fitness-planner/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gateway is the persistence surface the engine reconciles against. Every
// create returns the server-issued identity; there is no multi-statement
// transaction across calls, which is why the engine orders and sequences
// them itself.
//
// Implementations must return an error matching ErrNotFound when the target
// row does not exist, so callers can tell a vanished entity apart from a
// transient failure.
type Gateway interface {
	CreatePlan(ctx context.Context, plan *domain.WeeklyPlan) (primitive.ObjectID, error)
	UpdatePlanNotes(ctx context.Context, planID primitive.ObjectID, notes string) error
	// DeactivateOverlapping deactivates every active plan for the client
	// whose week collides with weekStart. Called before CreatePlan to uphold
	// the single-active-plan-per-week invariant.
	DeactivateOverlapping(ctx context.Context, clientID primitive.ObjectID, weekStart time.Time) error

	CreateDay(ctx context.Context, planID primitive.ObjectID, day DayPayload) (primitive.ObjectID, error)
	UpdateDay(ctx context.Context, dayID primitive.ObjectID, day DayPayload) error
	// DeleteDay removes the day and cascades to its exercises.
	DeleteDay(ctx context.Context, dayID primitive.ObjectID) error

	CreateExercise(ctx context.Context, dayID primitive.ObjectID, ex ExercisePayload) (primitive.ObjectID, error)
	UpdateExercise(ctx context.Context, exerciseID primitive.ObjectID, ex ExercisePayload) error
	DeleteExercise(ctx context.Context, exerciseID primitive.ObjectID) error

	// FetchPlanHierarchy returns the plan with nested days and exercises,
	// pre-sorted by day_of_week then order_index.
	FetchPlanHierarchy(ctx context.Context, planID primitive.ObjectID) (*domain.WeeklyPlan, error)
}
