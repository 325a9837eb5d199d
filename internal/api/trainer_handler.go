package api

import (
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/planner"
	"alcyxob/fitness-planner/internal/service"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainerHandler holds the services the trainer surface depends on.
type TrainerHandler struct {
	trainerService service.TrainerService
	planService    service.PlanService
}

// NewTrainerHandler creates a new TrainerHandler.
func NewTrainerHandler(trainerService service.TrainerService, planService service.PlanService) *TrainerHandler {
	return &TrainerHandler{
		trainerService: trainerService,
		planService:    planService,
	}
}

// --- Request/Response Structs ---

type AddClientRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// CreatePlanRequest creates an empty plan for the week containing WeekOf.
type CreatePlanRequest struct {
	WeekOf string `json:"weekOf" binding:"required"` // any date inside the week, YYYY-MM-DD
	Notes  string `json:"notes"`
}

// SavePlanExercise is one prescribed exercise in a plan submission. Omit the
// id for exercises authored in this editing session.
type SavePlanExercise struct {
	ID          string   `json:"id"`
	ExerciseID  string   `json:"exerciseId" binding:"required"`
	Sets        int      `json:"sets" binding:"required,min=1"`
	Reps        string   `json:"reps"`
	WeightKg    *float64 `json:"weightKg"`
	RestSeconds int      `json:"restSeconds" binding:"omitempty,min=0"`
	Notes       string   `json:"notes"`
}

// SavePlanDay is one day in a plan submission, exercises in visual order.
type SavePlanDay struct {
	ID        string             `json:"id"`
	DayOfWeek int                `json:"dayOfWeek" binding:"min=0,max=6"` // 0=Monday .. 6=Sunday
	Name      string             `json:"name"`
	IsRestDay bool               `json:"isRestDay"`
	Exercises []SavePlanExercise `json:"exercises"`
}

// SavePlanRequest is the full edited state of a plan. Persisted days and
// exercises missing from the request are deleted.
type SavePlanRequest struct {
	Notes string        `json:"notes"`
	Days  []SavePlanDay `json:"days"`
}

type DayExerciseResponse struct {
	ID          string   `json:"id"`
	ExerciseID  string   `json:"exerciseId"`
	Sets        int      `json:"sets"`
	Reps        string   `json:"reps,omitempty"`
	WeightKg    *float64 `json:"weightKg,omitempty"`
	RestSeconds int      `json:"restSeconds,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	OrderIndex  int      `json:"orderIndex"`
}

type PlanDayResponse struct {
	ID         string                `json:"id"`
	DayOfWeek  int                   `json:"dayOfWeek"`
	Name       string                `json:"name,omitempty"`
	IsRestDay  bool                  `json:"isRestDay"`
	OrderIndex int                   `json:"orderIndex"`
	Exercises  []DayExerciseResponse `json:"exercises"`
}

type PlanResponse struct {
	ID        string            `json:"id"`
	TrainerID string            `json:"trainerId"`
	ClientID  string            `json:"clientId"`
	WeekStart string            `json:"weekStart"` // YYYY-MM-DD, always a Monday
	WeekEnd   string            `json:"weekEnd"`   // YYYY-MM-DD, always a Sunday
	Notes     string            `json:"notes,omitempty"`
	IsActive  bool              `json:"isActive"`
	Days      []PlanDayResponse `json:"days,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// SaveReportOp describes one reconciliation operation in a save report.
type SaveReportOp struct {
	Operation string `json:"operation"`
	Error     string `json:"error,omitempty"`
}

// SavePlanResponse reports the outcome of a save. Status is "saved" when
// every operation applied, "partial" when the pass halted midway; applied
// operations are NOT rolled back, so after a partial save the client must
// re-fetch the plan before editing again.
type SavePlanResponse struct {
	Status    string         `json:"status"`
	Succeeded int            `json:"succeeded"`
	Failed    *SaveReportOp  `json:"failed,omitempty"`
	Pending   []SaveReportOp `json:"pending,omitempty"`
	Plan      *PlanResponse  `json:"plan,omitempty"`
}

// --- Mapping Helpers ---

func MapPlanToResponse(plan *domain.WeeklyPlan) PlanResponse {
	if plan == nil {
		return PlanResponse{}
	}
	resp := PlanResponse{
		ID:        plan.ID.Hex(),
		TrainerID: plan.TrainerID.Hex(),
		ClientID:  plan.ClientID.Hex(),
		WeekStart: planner.ISODate(plan.WeekStart),
		WeekEnd:   planner.ISODate(plan.WeekEnd),
		Notes:     plan.Notes,
		IsActive:  plan.IsActive,
		CreatedAt: plan.CreatedAt,
		UpdatedAt: plan.UpdatedAt,
	}
	if plan.Days != nil {
		resp.Days = make([]PlanDayResponse, len(plan.Days))
		for i := range plan.Days {
			resp.Days[i] = mapDayToResponse(&plan.Days[i])
		}
	}
	return resp
}

func mapDayToResponse(day *domain.PlanDay) PlanDayResponse {
	resp := PlanDayResponse{
		ID:         day.ID.Hex(),
		DayOfWeek:  day.DayOfWeek,
		Name:       day.Name,
		IsRestDay:  day.IsRestDay,
		OrderIndex: day.OrderIndex,
		Exercises:  make([]DayExerciseResponse, len(day.Exercises)),
	}
	for i := range day.Exercises {
		ex := &day.Exercises[i]
		resp.Exercises[i] = DayExerciseResponse{
			ID:          ex.ID.Hex(),
			ExerciseID:  ex.ExerciseID.Hex(),
			Sets:        ex.Sets,
			Reps:        ex.Reps,
			WeightKg:    ex.WeightKg,
			RestSeconds: ex.RestSeconds,
			Notes:       ex.Notes,
			OrderIndex:  ex.OrderIndex,
		}
	}
	return resp
}

func MapPlansToResponse(plans []domain.WeeklyPlan) []PlanResponse {
	responses := make([]PlanResponse, len(plans))
	for i := range plans {
		responses[i] = MapPlanToResponse(&plans[i])
	}
	return responses
}

// --- Client Management Handlers ---

// AddClientByEmail godoc
// @Summary Add a client to the trainer's roster
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AddClientRequest true "Client email"
// @Success 200 {object} UserResponse "Client assigned"
// @Failure 404 {object} gin.H "Client not found"
// @Failure 409 {object} gin.H "Client already assigned to another trainer"
// @Router /trainer/clients [post]
func (h *TrainerHandler) AddClientByEmail(c *gin.Context) {
	var req AddClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	trainerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	client, err := h.trainerService.AddClientByEmail(c.Request.Context(), trainerID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrClientNotRole):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrClientAlreadyAssigned):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to add client.")
		}
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(client))
}

// GetManagedClients godoc
// @Summary List the trainer's clients
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Router /trainer/clients [get]
func (h *TrainerHandler) GetManagedClients(c *gin.Context) {
	trainerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	clients, err := h.trainerService.GetManagedClients(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve clients.")
		return
	}

	responses := make([]UserResponse, len(clients))
	for i := range clients {
		responses[i] = MapUserToResponse(&clients[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetClientWorkoutLogs godoc
// @Summary List a managed client's workout logs
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Success 200 {array} WorkoutLogResponse
// @Failure 403 {object} gin.H "Client not managed by this trainer"
// @Router /trainer/clients/{clientId}/logs [get]
func (h *TrainerHandler) GetClientWorkoutLogs(c *gin.Context) {
	clientID, err := primitive.ObjectIDFromHex(c.Param("clientId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return
	}

	trainerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	logs, err := h.trainerService.GetClientWorkoutLogs(c.Request.Context(), trainerID, clientID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrClientNotManaged):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve workout logs.")
		}
		return
	}
	c.JSON(http.StatusOK, MapWorkoutLogsToResponse(logs))
}

// --- Plan Handlers ---

// CreatePlan godoc
// @Summary Create an empty weekly plan for a client
// @Description Creates an active plan covering the week that contains weekOf. Any other active plan for that client/week is deactivated.
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param request body CreatePlanRequest true "Plan details"
// @Success 201 {object} PlanResponse
// @Failure 403 {object} gin.H "Client not managed by this trainer"
// @Router /trainer/clients/{clientId}/plans [post]
func (h *TrainerHandler) CreatePlan(c *gin.Context) {
	clientID, err := primitive.ObjectIDFromHex(c.Param("clientId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return
	}

	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	anchor, err := time.Parse("2006-01-02", req.WeekOf)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "weekOf must be a date in YYYY-MM-DD format.")
		return
	}

	trainerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), trainerID, clientID, anchor, req.Notes)
	if err != nil {
		h.handlePlanServiceError(c, err, "Failed to create plan.")
		return
	}
	c.JSON(http.StatusCreated, MapPlanToResponse(plan))
}

// GetPlansForClient godoc
// @Summary List plans for a client
// @Description Returns the plans the trainer created for the client, newest week first, without day hierarchies.
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Success 200 {array} PlanResponse
// @Router /trainer/clients/{clientId}/plans [get]
func (h *TrainerHandler) GetPlansForClient(c *gin.Context) {
	clientID, err := primitive.ObjectIDFromHex(c.Param("clientId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return
	}

	trainerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	plans, err := h.planService.GetPlansForClient(c.Request.Context(), trainerID, clientID)
	if err != nil {
		h.handlePlanServiceError(c, err, "Failed to retrieve plans.")
		return
	}
	c.JSON(http.StatusOK, MapPlansToResponse(plans))
}

// GetPlanHierarchy godoc
// @Summary Get one plan with nested days and exercises
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Success 200 {object} PlanResponse
// @Failure 404 {object} gin.H "Plan not found"
// @Router /trainer/plans/{planId} [get]
func (h *TrainerHandler) GetPlanHierarchy(c *gin.Context) {
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}

	trainerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	plan, err := h.planService.GetPlanHierarchy(c.Request.Context(), trainerID, planID)
	if err != nil {
		h.handlePlanServiceError(c, err, "Failed to retrieve plan.")
		return
	}
	c.JSON(http.StatusOK, MapPlanToResponse(plan))
}

// SavePlan godoc
// @Summary Save the edited state of a plan
// @Description Reconciles the submitted plan state against persistence. The submitted state replaces the stored one: missing days/exercises are deleted, entries without an id are created. Applied operations are not rolled back on failure; a 207 response reports how far the save got.
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Param request body SavePlanRequest true "Full edited plan state"
// @Success 200 {object} SavePlanResponse "Fully saved"
// @Success 207 {object} SavePlanResponse "Partially saved; re-fetch before editing again"
// @Failure 400 {object} gin.H "Validation failed"
// @Failure 409 {object} gin.H "Submission references entities not in the plan"
// @Router /trainer/plans/{planId} [put]
func (h *TrainerHandler) SavePlan(c *gin.Context) {
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}

	var req SavePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	submission, err := mapSaveRequest(&req)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	trainerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	plan, result, err := h.planService.SavePlan(c.Request.Context(), trainerID, planID, submission)
	if err != nil {
		if result != nil && result.Partial() {
			c.JSON(http.StatusMultiStatus, mapSaveResult(result, nil))
			return
		}
		if planner.IsValidation(err) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		switch {
		case errors.Is(err, service.ErrStaleDraft), errors.Is(err, service.ErrWeekdayImmutable):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			h.handlePlanServiceError(c, err, "Failed to save plan.")
		}
		return
	}

	c.JSON(http.StatusOK, mapSaveResult(result, plan))
}

// DuplicatePlan godoc
// @Summary Duplicate a plan into the following week
// @Description Clones the plan with its full day/exercise hierarchy into the next week under fresh identities and activates the copy.
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Source plan ID"
// @Success 201 {object} PlanResponse "The cloned plan"
// @Failure 404 {object} gin.H "Source plan not found"
// @Router /trainer/plans/{planId}/duplicate [post]
func (h *TrainerHandler) DuplicatePlan(c *gin.Context) {
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}

	trainerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	clone, err := h.planService.DuplicatePlan(c.Request.Context(), trainerID, planID)
	if err != nil {
		h.handlePlanServiceError(c, err, "Failed to duplicate plan.")
		return
	}
	c.JSON(http.StatusCreated, MapPlanToResponse(clone))
}

// DeletePlan godoc
// @Summary Delete a plan
// @Tags Trainer
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Success 204 "Deleted"
// @Failure 404 {object} gin.H "Plan not found"
// @Router /trainer/plans/{planId} [delete]
func (h *TrainerHandler) DeletePlan(c *gin.Context) {
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}

	trainerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	if err := h.planService.DeletePlan(c.Request.Context(), trainerID, planID); err != nil {
		h.handlePlanServiceError(c, err, "Failed to delete plan.")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Helpers ---

func (h *TrainerHandler) handlePlanServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrPlanNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPlanAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrClientNotManaged):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}

func mapSaveRequest(req *SavePlanRequest) (service.PlanSubmission, error) {
	submission := service.PlanSubmission{
		Notes: req.Notes,
		Days:  make([]service.SubmittedDay, len(req.Days)),
	}
	for i := range req.Days {
		rd := &req.Days[i]
		day := service.SubmittedDay{
			DayOfWeek: rd.DayOfWeek,
			Name:      rd.Name,
			IsRestDay: rd.IsRestDay,
			Exercises: make([]service.SubmittedExercise, len(rd.Exercises)),
		}
		if rd.ID != "" {
			id, err := primitive.ObjectIDFromHex(rd.ID)
			if err != nil {
				return submission, fmt.Errorf("invalid day ID %q", rd.ID)
			}
			day.ID = id
		}
		for j := range rd.Exercises {
			re := &rd.Exercises[j]
			ex := service.SubmittedExercise{
				Sets:        re.Sets,
				Reps:        re.Reps,
				WeightKg:    re.WeightKg,
				RestSeconds: re.RestSeconds,
				Notes:       re.Notes,
			}
			if re.ID != "" {
				id, err := primitive.ObjectIDFromHex(re.ID)
				if err != nil {
					return submission, fmt.Errorf("invalid exercise ID %q", re.ID)
				}
				ex.ID = id
			}
			exerciseID, err := primitive.ObjectIDFromHex(re.ExerciseID)
			if err != nil {
				return submission, fmt.Errorf("invalid library exercise ID %q", re.ExerciseID)
			}
			ex.ExerciseID = exerciseID
			day.Exercises[j] = ex
		}
		submission.Days[i] = day
	}
	return submission, nil
}

func mapSaveResult(result *planner.SaveResult, plan *domain.WeeklyPlan) SavePlanResponse {
	resp := SavePlanResponse{
		Status:    "saved",
		Succeeded: len(result.Succeeded),
	}
	if result.Partial() {
		resp.Status = "partial"
		resp.Failed = &SaveReportOp{
			Operation: result.Failed.Op.Kind.String(),
			Error:     result.Failed.Err.Error(),
		}
		resp.Pending = make([]SaveReportOp, len(result.Pending))
		for i, op := range result.Pending {
			resp.Pending[i] = SaveReportOp{Operation: op.Kind.String()}
		}
	}
	if plan != nil {
		mapped := MapPlanToResponse(plan)
		resp.Plan = &mapped
	}
	return resp
}
