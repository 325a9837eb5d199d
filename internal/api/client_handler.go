package api

import (
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/service"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClientHandler holds the client service dependency.
type ClientHandler struct {
	clientService service.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// --- Request/Response Structs ---

type LoggedSetRequest struct {
	DayExerciseID string   `json:"dayExerciseId" binding:"required"`
	SetsDone      int      `json:"setsDone" binding:"min=0"`
	RepsDone      string   `json:"repsDone"`
	WeightKg      *float64 `json:"weightKg"`
}

type LogWorkoutRequest struct {
	PlanID      string             `json:"planId" binding:"required"`
	DayID       string             `json:"dayId" binding:"required"`
	PerformedAt *time.Time         `json:"performedAt"` // defaults to now
	Sets        []LoggedSetRequest `json:"sets" binding:"required,min=1"`
	Comment     string             `json:"comment"`
}

type LoggedSetResponse struct {
	DayExerciseID string   `json:"dayExerciseId"`
	SetsDone      int      `json:"setsDone"`
	RepsDone      string   `json:"repsDone,omitempty"`
	WeightKg      *float64 `json:"weightKg,omitempty"`
}

type WorkoutLogResponse struct {
	ID          string              `json:"id"`
	ClientID    string              `json:"clientId"`
	PlanID      string              `json:"planId"`
	DayID       string              `json:"dayId"`
	PerformedAt time.Time           `json:"performedAt"`
	Sets        []LoggedSetResponse `json:"sets"`
	Comment     string              `json:"comment,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// MapWorkoutLogToResponse converts a domain.WorkoutLog to its DTO.
func MapWorkoutLogToResponse(log *domain.WorkoutLog) WorkoutLogResponse {
	if log == nil {
		return WorkoutLogResponse{}
	}
	resp := WorkoutLogResponse{
		ID:          log.ID.Hex(),
		ClientID:    log.ClientID.Hex(),
		PlanID:      log.PlanID.Hex(),
		DayID:       log.DayID.Hex(),
		PerformedAt: log.PerformedAt,
		Comment:     log.Comment,
		CreatedAt:   log.CreatedAt,
		Sets:        make([]LoggedSetResponse, len(log.Sets)),
	}
	for i, set := range log.Sets {
		resp.Sets[i] = LoggedSetResponse{
			DayExerciseID: set.DayExerciseID.Hex(),
			SetsDone:      set.SetsDone,
			RepsDone:      set.RepsDone,
			WeightKg:      set.WeightKg,
		}
	}
	return resp
}

// MapWorkoutLogsToResponse converts a slice of logs to DTOs.
func MapWorkoutLogsToResponse(logs []domain.WorkoutLog) []WorkoutLogResponse {
	responses := make([]WorkoutLogResponse, len(logs))
	for i := range logs {
		responses[i] = MapWorkoutLogToResponse(&logs[i])
	}
	return responses
}

// --- Handler Methods ---

// GetMyPlan godoc
// @Summary Get the client's active plan for a week
// @Description Returns the active plan covering the week that contains the given date (query param "week", YYYY-MM-DD, defaults to today).
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Param week query string false "Any date inside the requested week, YYYY-MM-DD"
// @Success 200 {object} PlanResponse
// @Failure 404 {object} gin.H "No active plan for that week"
// @Router /client/plan [get]
func (h *ClientHandler) GetMyPlan(c *gin.Context) {
	clientID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	anchor := time.Now().UTC()
	if weekParam := c.Query("week"); weekParam != "" {
		parsed, err := time.Parse("2006-01-02", weekParam)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "week must be a date in YYYY-MM-DD format.")
			return
		}
		anchor = parsed
	}

	plan, err := h.clientService.GetMyPlanForWeek(c.Request.Context(), clientID, anchor)
	if err != nil {
		if errors.Is(err, service.ErrNoActivePlan) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve plan.")
		}
		return
	}
	c.JSON(http.StatusOK, MapPlanToResponse(plan))
}

// LogWorkout godoc
// @Summary Log a completed workout session
// @Tags Client
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body LogWorkoutRequest true "Workout log"
// @Success 201 {object} WorkoutLogResponse
// @Failure 400 {object} gin.H "Validation failed"
// @Failure 403 {object} gin.H "Plan belongs to another client"
// @Router /client/logs [post]
func (h *ClientHandler) LogWorkout(c *gin.Context) {
	var req LogWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	clientID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}
	dayID, err := primitive.ObjectIDFromHex(req.DayID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid day ID format.")
		return
	}

	sets := make([]domain.LoggedSet, len(req.Sets))
	for i, set := range req.Sets {
		exID, err := primitive.ObjectIDFromHex(set.DayExerciseID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid day exercise ID %q", set.DayExerciseID))
			return
		}
		sets[i] = domain.LoggedSet{
			DayExerciseID: exID,
			SetsDone:      set.SetsDone,
			RepsDone:      set.RepsDone,
			WeightKg:      set.WeightKg,
		}
	}

	performedAt := time.Time{}
	if req.PerformedAt != nil {
		performedAt = *req.PerformedAt
	}

	log, err := h.clientService.LogWorkout(c.Request.Context(), clientID, planID, dayID, performedAt, sets, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLogValidation):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPlanNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrPlanAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrDayNotInPlan):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to log workout.")
		}
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutLogToResponse(log))
}

// GetMyWorkoutLogs godoc
// @Summary List the client's workout logs
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {array} WorkoutLogResponse
// @Router /client/logs [get]
func (h *ClientHandler) GetMyWorkoutLogs(c *gin.Context) {
	clientID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	logs, err := h.clientService.GetMyWorkoutLogs(c.Request.Context(), clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve workout logs.")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutLogsToResponse(logs))
}
