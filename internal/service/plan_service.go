// internal/service/plan_service.go
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
	ErrPlanNotFound     = errors.New("weekly plan not found")
	ErrPlanAccessDenied = errors.New("access denied to this weekly plan")
	ErrClientNotManaged = errors.New("client is not managed by this trainer")
	ErrStaleDraft       = errors.New("draft references entities that are not part of the plan")
	ErrWeekdayImmutable = errors.New("the weekday of an existing day cannot be changed")
)

// --- Submission DTOs ---

// SubmittedExercise is one prescribed exercise as sent by the editing client.
// A zero ID marks an exercise authored in this session.
type SubmittedExercise struct {
	ID          primitive.ObjectID
	ExerciseID  primitive.ObjectID
	Sets        int
	Reps        string
	WeightKg    *float64
	RestSeconds int
	Notes       string
}

// SubmittedDay is one plan day as sent by the editing client, with its
// exercises in the visual order the trainer arranged them.
type SubmittedDay struct {
	ID        primitive.ObjectID
	DayOfWeek int // 0=Monday .. 6=Sunday
	Name      string
	IsRestDay bool
	Exercises []SubmittedExercise
}

// PlanSubmission is the full edited state of a plan. Persisted days and
// exercises missing from the submission are treated as deleted.
type PlanSubmission struct {
	Notes string
	Days  []SubmittedDay
}

// --- Service Interface ---

type PlanService interface {
	CreatePlan(ctx context.Context, trainerID, clientID primitive.ObjectID, anchor time.Time, notes string) (*domain.WeeklyPlan, error)
	GetPlansForClient(ctx context.Context, trainerID, clientID primitive.ObjectID) ([]domain.WeeklyPlan, error)
	GetPlanHierarchy(ctx context.Context, trainerID, planID primitive.ObjectID) (*domain.WeeklyPlan, error)
	// SavePlan reconciles the submission against the persisted plan. On a
	// partial failure the returned SaveResult is non-nil alongside the error
	// so the caller can report which operations were applied.
	SavePlan(ctx context.Context, trainerID, planID primitive.ObjectID, submission PlanSubmission) (*domain.WeeklyPlan, *planner.SaveResult, error)
	// DuplicatePlan clones the plan into the following week with fresh
	// identities and returns the copy.
	DuplicatePlan(ctx context.Context, trainerID, sourcePlanID primitive.ObjectID) (*domain.WeeklyPlan, error)
	DeletePlan(ctx context.Context, trainerID, planID primitive.ObjectID) error
}

// --- Gateway Adapter ---

// planGateway backs planner.Gateway with the Mongo repositories, translating
// repository.ErrNotFound into the sentinel the engine expects.
type planGateway struct {
	plans     repository.WeeklyPlanRepository
	days      repository.PlanDayRepository
	exercises repository.DayExerciseRepository
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return planner.ErrNotFound
	}
	return err
}

func (g *planGateway) CreatePlan(ctx context.Context, plan *domain.WeeklyPlan) (primitive.ObjectID, error) {
	return g.plans.Create(ctx, plan)
}

func (g *planGateway) UpdatePlanNotes(ctx context.Context, planID primitive.ObjectID, notes string) error {
	return mapNotFound(g.plans.UpdateNotes(ctx, planID, notes))
}

func (g *planGateway) DeactivateOverlapping(ctx context.Context, clientID primitive.ObjectID, weekStart time.Time) error {
	return g.plans.DeactivateOverlapping(ctx, clientID, weekStart)
}

func (g *planGateway) CreateDay(ctx context.Context, planID primitive.ObjectID, day planner.DayPayload) (primitive.ObjectID, error) {
	return g.days.Create(ctx, &domain.PlanDay{
		PlanID:     planID,
		DayOfWeek:  day.DayOfWeek,
		Name:       day.Name,
		IsRestDay:  day.IsRestDay,
		OrderIndex: day.OrderIndex,
	})
}

func (g *planGateway) UpdateDay(ctx context.Context, dayID primitive.ObjectID, day planner.DayPayload) error {
	return mapNotFound(g.days.Update(ctx, &domain.PlanDay{
		ID:         dayID,
		DayOfWeek:  day.DayOfWeek,
		Name:       day.Name,
		IsRestDay:  day.IsRestDay,
		OrderIndex: day.OrderIndex,
	}))
}

func (g *planGateway) DeleteDay(ctx context.Context, dayID primitive.ObjectID) error {
	return mapNotFound(g.days.Delete(ctx, dayID))
}

func (g *planGateway) CreateExercise(ctx context.Context, dayID primitive.ObjectID, ex planner.ExercisePayload) (primitive.ObjectID, error) {
	return g.exercises.Create(ctx, &domain.DayExercise{
		DayID:       dayID,
		ExerciseID:  ex.ExerciseID,
		Sets:        ex.Sets,
		Reps:        ex.Reps,
		WeightKg:    ex.WeightKg,
		RestSeconds: ex.RestSeconds,
		Notes:       ex.Notes,
		OrderIndex:  ex.OrderIndex,
	})
}

func (g *planGateway) UpdateExercise(ctx context.Context, exerciseID primitive.ObjectID, ex planner.ExercisePayload) error {
	return mapNotFound(g.exercises.Update(ctx, &domain.DayExercise{
		ID:          exerciseID,
		ExerciseID:  ex.ExerciseID,
		Sets:        ex.Sets,
		Reps:        ex.Reps,
		WeightKg:    ex.WeightKg,
		RestSeconds: ex.RestSeconds,
		Notes:       ex.Notes,
		OrderIndex:  ex.OrderIndex,
	}))
}

func (g *planGateway) DeleteExercise(ctx context.Context, exerciseID primitive.ObjectID) error {
	return mapNotFound(g.exercises.Delete(ctx, exerciseID))
}

// FetchPlanHierarchy loads the plan, its days and all day exercises in three
// queries. Repositories return rows pre-sorted by dayOfWeek/orderIndex, so
// the assembled tree is already in visual order.
func (g *planGateway) FetchPlanHierarchy(ctx context.Context, planID primitive.ObjectID) (*domain.WeeklyPlan, error) {
	plan, err := g.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	days, err := g.days.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		plan.Days = []domain.PlanDay{}
		return plan, nil
	}

	dayIDs := make([]primitive.ObjectID, 0, len(days))
	for i := range days {
		dayIDs = append(dayIDs, days[i].ID)
	}
	exercises, err := g.exercises.GetByDayIDs(ctx, dayIDs)
	if err != nil {
		return nil, err
	}

	byDay := make(map[primitive.ObjectID][]domain.DayExercise, len(days))
	for _, ex := range exercises {
		byDay[ex.DayID] = append(byDay[ex.DayID], ex)
	}
	for i := range days {
		days[i].Exercises = byDay[days[i].ID]
	}
	plan.Days = days
	return plan, nil
}

// --- Service Implementation ---

type planService struct {
	gateway    *planGateway
	engine     *planner.Engine
	duplicator *planner.Duplicator
	planRepo   repository.WeeklyPlanRepository
	userRepo   repository.UserRepository
}

// NewPlanService creates a new instance of planService.
func NewPlanService(
	planRepo repository.WeeklyPlanRepository,
	dayRepo repository.PlanDayRepository,
	exerciseRepo repository.DayExerciseRepository,
	userRepo repository.UserRepository,
) PlanService {
	gateway := &planGateway{
		plans:     planRepo,
		days:      dayRepo,
		exercises: exerciseRepo,
	}
	return &planService{
		gateway:    gateway,
		engine:     planner.NewEngine(gateway),
		duplicator: planner.NewDuplicator(gateway),
		planRepo:   planRepo,
		userRepo:   userRepo,
	}
}

// CreatePlan creates an empty active plan covering the week containing
// anchor. Any other active plan for that client/week is deactivated first.
func (s *planService) CreatePlan(ctx context.Context, trainerID, clientID primitive.ObjectID, anchor time.Time, notes string) (*domain.WeeklyPlan, error) {
	if err := s.checkManagedClient(ctx, trainerID, clientID); err != nil {
		return nil, err
	}

	weekStart, weekEnd := planner.WeekBounds(anchor)
	if err := s.planRepo.DeactivateOverlapping(ctx, clientID, weekStart); err != nil {
		return nil, err
	}

	plan := &domain.WeeklyPlan{
		TrainerID: trainerID,
		ClientID:  clientID,
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		Notes:     notes,
		IsActive:  true,
	}
	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = planID
	plan.Days = []domain.PlanDay{}
	return plan, nil
}

// GetPlansForClient lists the plans the trainer has created for the client,
// newest week first. Day hierarchies are not loaded.
func (s *planService) GetPlansForClient(ctx context.Context, trainerID, clientID primitive.ObjectID) ([]domain.WeeklyPlan, error) {
	if err := s.checkManagedClient(ctx, trainerID, clientID); err != nil {
		return nil, err
	}
	return s.planRepo.GetByClientAndTrainerID(ctx, clientID, trainerID)
}

// GetPlanHierarchy loads one plan with nested days and exercises, enforcing
// trainer ownership.
func (s *planService) GetPlanHierarchy(ctx context.Context, trainerID, planID primitive.ObjectID) (*domain.WeeklyPlan, error) {
	plan, err := s.gateway.FetchPlanHierarchy(ctx, planID)
	if err != nil {
		if errors.Is(err, planner.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.TrainerID != trainerID {
		return nil, ErrPlanAccessDenied
	}
	return plan, nil
}

// SavePlan hydrates a draft from the persisted hierarchy, replays the
// submission onto it and runs a reconciliation pass. On full success the
// refreshed hierarchy is returned. On a partial failure the SaveResult
// describes what was applied; the persisted plan is left in that partially
// updated state and the caller should re-read it before retrying.
func (s *planService) SavePlan(ctx context.Context, trainerID, planID primitive.ObjectID, submission PlanSubmission) (*domain.WeeklyPlan, *planner.SaveResult, error) {
	plan, err := s.gateway.FetchPlanHierarchy(ctx, planID)
	if err != nil {
		if errors.Is(err, planner.ErrNotFound) {
			return nil, nil, ErrPlanNotFound
		}
		return nil, nil, err
	}
	if plan.TrainerID != trainerID {
		return nil, nil, ErrPlanAccessDenied
	}

	draft := planner.HydrateDraft(plan)
	if err := applySubmission(draft, submission); err != nil {
		return nil, nil, err
	}

	result, err := s.engine.Save(ctx, draft, plan.Notes)
	if err != nil {
		// result is non-nil when the pass started and halted partway.
		return nil, result, err
	}

	refreshed, err := s.gateway.FetchPlanHierarchy(ctx, planID)
	if err != nil {
		return nil, result, err
	}
	return refreshed, result, nil
}

// DuplicatePlan clones the plan into the following week.
func (s *planService) DuplicatePlan(ctx context.Context, trainerID, sourcePlanID primitive.ObjectID) (*domain.WeeklyPlan, error) {
	source, err := s.planRepo.GetByID(ctx, sourcePlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if source.TrainerID != trainerID {
		return nil, ErrPlanAccessDenied
	}

	clone, err := s.duplicator.Duplicate(ctx, sourcePlanID)
	if err != nil {
		if errors.Is(err, planner.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return clone, nil
}

// DeletePlan removes a plan shell. Days and exercises of deleted plans are
// left for a background sweep; the plan row going away already hides them
// from every query path.
func (s *planService) DeletePlan(ctx context.Context, trainerID, planID primitive.ObjectID) error {
	err := s.planRepo.Delete(ctx, planID, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	return nil
}

// checkManagedClient verifies the client exists and is managed by the trainer.
func (s *planService) checkManagedClient(ctx context.Context, trainerID, clientID primitive.ObjectID) error {
	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClientNotManaged
		}
		return err
	}
	if !client.IsClient() || client.TrainerID == nil || *client.TrainerID != trainerID {
		return ErrClientNotManaged
	}
	return nil
}

// --- Submission Replay ---

// applySubmission replays the submitted state onto a hydrated draft through
// the draft's own editing operations, so every tag transition follows the
// normal rules. Persisted nodes absent from the submission are removed;
// nodes without identity are added; the rest are patched field by field so
// untouched nodes stay CLEAN.
func applySubmission(draft *planner.Draft, submission PlanSubmission) error {
	draft.Notes = submission.Notes

	submittedDays := make(map[primitive.ObjectID]*SubmittedDay, len(submission.Days))
	for i := range submission.Days {
		sd := &submission.Days[i]
		if !sd.ID.IsZero() {
			submittedDays[sd.ID] = sd
		}
	}

	// Removing a hydrated day only tags it, so indexes stay stable here.
	for i, day := range draft.Days {
		if day.ID.IsZero() {
			continue
		}
		if _, ok := submittedDays[day.ID]; !ok {
			if err := draft.RemoveDay(i); err != nil {
				return err
			}
		}
	}

	for i := range submission.Days {
		sd := &submission.Days[i]
		if sd.ID.IsZero() {
			if err := addSubmittedDay(draft, sd); err != nil {
				return err
			}
			continue
		}

		dayIndex := findDay(draft, sd.ID)
		if dayIndex < 0 {
			return ErrStaleDraft
		}
		day := draft.Days[dayIndex]
		if day.Payload.DayOfWeek != sd.DayOfWeek {
			return ErrWeekdayImmutable
		}

		patch := planner.DayPatch{}
		if day.Payload.Name != sd.Name {
			patch.Name = &sd.Name
		}
		if day.Payload.IsRestDay != sd.IsRestDay {
			patch.IsRestDay = &sd.IsRestDay
		}
		if patch.Name != nil || patch.IsRestDay != nil {
			if err := draft.UpdateDay(dayIndex, patch); err != nil {
				return err
			}
		}

		if err := applyDayExercises(draft, dayIndex, sd); err != nil {
			return err
		}
	}
	return nil
}

func addSubmittedDay(draft *planner.Draft, sd *SubmittedDay) error {
	if _, err := draft.AddDay(sd.DayOfWeek, sd.Name, sd.IsRestDay); err != nil {
		return err
	}
	dayIndex := len(draft.Days) - 1
	for _, se := range sd.Exercises {
		if _, err := draft.AddExercise(dayIndex, submittedPayload(&se)); err != nil {
			return err
		}
	}
	return nil
}

func applyDayExercises(draft *planner.Draft, dayIndex int, sd *SubmittedDay) error {
	day := draft.Days[dayIndex]

	submitted := make(map[primitive.ObjectID]*SubmittedExercise, len(sd.Exercises))
	for i := range sd.Exercises {
		se := &sd.Exercises[i]
		if !se.ID.IsZero() {
			submitted[se.ID] = se
		}
	}

	// Removing hydrated exercises only tags them, so indexes stay stable.
	for j, ex := range day.Exercises {
		if ex.ID.IsZero() {
			continue
		}
		if _, ok := submitted[ex.ID]; !ok {
			if err := draft.RemoveExercise(dayIndex, j); err != nil {
				return err
			}
		}
	}

	ordered := make([]*planner.ExerciseNode, 0, len(day.Exercises)+len(sd.Exercises))
	for i := range sd.Exercises {
		se := &sd.Exercises[i]
		if se.ID.IsZero() {
			node, err := draft.AddExercise(dayIndex, submittedPayload(se))
			if err != nil {
				return err
			}
			ordered = append(ordered, node)
			continue
		}

		exIndex := findExercise(day, se.ID)
		if exIndex < 0 {
			return ErrStaleDraft
		}
		if err := patchExercise(draft, dayIndex, exIndex, se); err != nil {
			return err
		}
		ordered = append(ordered, day.Exercises[exIndex])
	}

	// Submission order is the visual order. Deleted nodes go last; their
	// position no longer matters.
	for _, ex := range day.Exercises {
		if ex.Tag == planner.TagDeleted {
			ordered = append(ordered, ex)
		}
	}
	day.Exercises = ordered
	return nil
}

func patchExercise(draft *planner.Draft, dayIndex, exIndex int, se *SubmittedExercise) error {
	current := draft.Days[dayIndex].Exercises[exIndex].Payload

	patch := planner.ExercisePatch{}
	changed := false
	if current.ExerciseID != se.ExerciseID {
		patch.ExerciseID = &se.ExerciseID
		changed = true
	}
	if current.Sets != se.Sets {
		patch.Sets = &se.Sets
		changed = true
	}
	if current.Reps != se.Reps {
		patch.Reps = &se.Reps
		changed = true
	}
	if !weightEqual(current.WeightKg, se.WeightKg) {
		if se.WeightKg == nil {
			patch.ClearWeight = true
		} else {
			patch.WeightKg = se.WeightKg
		}
		changed = true
	}
	if current.RestSeconds != se.RestSeconds {
		patch.RestSeconds = &se.RestSeconds
		changed = true
	}
	if current.Notes != se.Notes {
		patch.Notes = &se.Notes
		changed = true
	}
	if !changed {
		return nil
	}
	return draft.UpdateExercise(dayIndex, exIndex, patch)
}

func submittedPayload(se *SubmittedExercise) planner.ExercisePayload {
	return planner.ExercisePayload{
		ExerciseID:  se.ExerciseID,
		Sets:        se.Sets,
		Reps:        se.Reps,
		WeightKg:    se.WeightKg,
		RestSeconds: se.RestSeconds,
		Notes:       se.Notes,
	}
}

func weightEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func findDay(draft *planner.Draft, id primitive.ObjectID) int {
	for i, day := range draft.Days {
		if day.ID == id && day.Tag != planner.TagDeleted {
			return i
		}
	}
	return -1
}

func findExercise(day *planner.DayNode, id primitive.ObjectID) int {
	for j, ex := range day.Exercises {
		if ex.ID == id && ex.Tag != planner.TagDeleted {
			return j
		}
	}
	return -1
}
