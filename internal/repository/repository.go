package repository

import (
	"alcyxob/fitness-planner/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddClientIDToTrainer(ctx context.Context, trainerID, clientID primitive.ObjectID) error
	GetClientsByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)
	SetTrainerForClient(ctx context.Context, clientID, trainerID primitive.ObjectID) error
}

// ExerciseRepository defines the interface for the trainer's exercise library.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error // Ensure trainer owns the exercise
}

// WeeklyPlanRepository defines the interface for weekly plan rows.
type WeeklyPlanRepository interface {
	Create(ctx context.Context, plan *domain.WeeklyPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WeeklyPlan, error)
	GetByClientAndTrainerID(ctx context.Context, clientID, trainerID primitive.ObjectID) ([]domain.WeeklyPlan, error)
	GetActiveForClientWeek(ctx context.Context, clientID primitive.ObjectID, weekStart time.Time) (*domain.WeeklyPlan, error)
	UpdateNotes(ctx context.Context, id primitive.ObjectID, notes string) error
	// DeactivateOverlapping clears the active flag on every active plan for
	// the client whose weekStart collides with the given week.
	DeactivateOverlapping(ctx context.Context, clientID primitive.ObjectID, weekStart time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error
}

// PlanDayRepository defines the interface for plan day rows.
type PlanDayRepository interface {
	Create(ctx context.Context, day *domain.PlanDay) (primitive.ObjectID, error)
	GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanDay, error)
	Update(ctx context.Context, day *domain.PlanDay) error
	// Delete removes the day and cascades to its exercises.
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// DayExerciseRepository defines the interface for prescribed exercise rows.
type DayExerciseRepository interface {
	Create(ctx context.Context, ex *domain.DayExercise) (primitive.ObjectID, error)
	GetByDayID(ctx context.Context, dayID primitive.ObjectID) ([]domain.DayExercise, error)
	GetByDayIDs(ctx context.Context, dayIDs []primitive.ObjectID) ([]domain.DayExercise, error)
	Update(ctx context.Context, ex *domain.DayExercise) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByDayID(ctx context.Context, dayID primitive.ObjectID) error
}

// WorkoutLogRepository defines the interface for client workout logs.
type WorkoutLogRepository interface {
	Create(ctx context.Context, log *domain.WorkoutLog) (primitive.ObjectID, error)
	GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.WorkoutLog, error)
	GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.WorkoutLog, error)
}
