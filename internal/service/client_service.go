// internal/service/client_service.go
package service

import (
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/planner"
	"alcyxob/fitness-planner/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrNoActivePlan  = errors.New("no active plan for this week")
	ErrDayNotInPlan  = errors.New("day does not belong to this plan")
	ErrLogValidation = errors.New("workout log validation failed")
)

// --- Service Interface ---
type ClientService interface {
	// GetMyPlanForWeek returns the client's active plan covering the week that
	// contains anchor, with nested days and exercises.
	GetMyPlanForWeek(ctx context.Context, clientID primitive.ObjectID, anchor time.Time) (*domain.WeeklyPlan, error)
	LogWorkout(ctx context.Context, clientID, planID, dayID primitive.ObjectID, performedAt time.Time, sets []domain.LoggedSet, comment string) (*domain.WorkoutLog, error)
	GetMyWorkoutLogs(ctx context.Context, clientID primitive.ObjectID) ([]domain.WorkoutLog, error)
}

// --- Service Implementation ---

// clientService implements the ClientService interface.
type clientService struct {
	gateway  *planGateway
	planRepo repository.WeeklyPlanRepository
	dayRepo  repository.PlanDayRepository
	logRepo  repository.WorkoutLogRepository
}

// NewClientService creates a new instance of clientService.
func NewClientService(
	planRepo repository.WeeklyPlanRepository,
	dayRepo repository.PlanDayRepository,
	exerciseRepo repository.DayExerciseRepository,
	logRepo repository.WorkoutLogRepository,
) ClientService {
	return &clientService{
		gateway: &planGateway{
			plans:     planRepo,
			days:      dayRepo,
			exercises: exerciseRepo,
		},
		planRepo: planRepo,
		dayRepo:  dayRepo,
		logRepo:  logRepo,
	}
}

// GetMyPlanForWeek resolves the Monday of the week containing anchor and
// loads the single active plan for that week, if any.
func (s *clientService) GetMyPlanForWeek(ctx context.Context, clientID primitive.ObjectID, anchor time.Time) (*domain.WeeklyPlan, error) {
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}

	weekStart, _ := planner.WeekBounds(anchor)
	plan, err := s.planRepo.GetActiveForClientWeek(ctx, clientID, weekStart)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActivePlan
		}
		return nil, err
	}

	full, err := s.gateway.FetchPlanHierarchy(ctx, plan.ID)
	if err != nil {
		if errors.Is(err, planner.ErrNotFound) {
			// Plan vanished between the two reads.
			return nil, ErrNoActivePlan
		}
		return nil, err
	}
	return full, nil
}

// LogWorkout records a completed session against one day of the client's
// plan. The day must belong to the plan and the plan to the client.
func (s *clientService) LogWorkout(ctx context.Context, clientID, planID, dayID primitive.ObjectID, performedAt time.Time, sets []domain.LoggedSet, comment string) (*domain.WorkoutLog, error) {
	if clientID == primitive.NilObjectID || planID == primitive.NilObjectID || dayID == primitive.NilObjectID {
		return nil, errors.New("client ID, plan ID, and day ID are required")
	}
	if len(sets) == 0 {
		return nil, ErrLogValidation
	}
	for _, set := range sets {
		if set.DayExerciseID == primitive.NilObjectID || set.SetsDone < 0 {
			return nil, ErrLogValidation
		}
	}

	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.ClientID != clientID {
		return nil, ErrPlanAccessDenied
	}

	days, err := s.dayRepo.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}
	found := false
	for i := range days {
		if days[i].ID == dayID {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrDayNotInPlan
	}

	log := &domain.WorkoutLog{
		ClientID:    clientID,
		PlanID:      planID,
		DayID:       dayID,
		PerformedAt: performedAt,
		Sets:        sets,
		Comment:     comment,
	}
	logID, err := s.logRepo.Create(ctx, log)
	if err != nil {
		return nil, err
	}
	log.ID = logID
	return log, nil
}

// GetMyWorkoutLogs returns the client's own logs, newest first.
func (s *clientService) GetMyWorkoutLogs(ctx context.Context, clientID primitive.ObjectID) ([]domain.WorkoutLog, error) {
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}
	return s.logRepo.GetByClientID(ctx, clientID)
}
