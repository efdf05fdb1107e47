package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/nestfinance/nest-core/internal/domain"
	"github.com/nestfinance/nest-core/internal/middleware"
	"github.com/nestfinance/nest-core/internal/session"
)

// GoalHandler handles savings goal HTTP requests
type GoalHandler struct {
	sessions *session.Manager
}

// NewGoalHandler creates a new GoalHandler
func NewGoalHandler(sessions *session.Manager) *GoalHandler {
	return &GoalHandler{sessions: sessions}
}

// CreateGoalRequest represents the create goal request body
type CreateGoalRequest struct {
	Name          string  `json:"name"`
	TargetAmount  string  `json:"targetAmount"`
	CurrentAmount *string `json:"currentAmount,omitempty"`
	IsDebt        bool    `json:"isDebt,omitempty"`
	DueDate       *string `json:"dueDate,omitempty"`
}

// ContributeRequest represents the goal contribution request body
type ContributeRequest struct {
	Amount string `json:"amount"`
}

// GoalResponse represents a goal in API responses
type GoalResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	TargetAmount  string  `json:"targetAmount"`
	CurrentAmount string  `json:"currentAmount"`
	IsDebt        bool    `json:"isDebt"`
	DueDate       *string `json:"dueDate,omitempty"`
}

func toGoalResponse(g *domain.Goal) GoalResponse {
	resp := GoalResponse{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount.String(),
		CurrentAmount: g.CurrentAmount.String(),
		IsDebt:        g.IsDebt,
	}
	if g.DueDate != nil {
		due := g.DueDate.Format("2006-01-02")
		resp.DueDate = &due
	}
	return resp
}

// GetGoals handles GET /api/goals
func (h *GoalHandler) GetGoals(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	snap := h.sessions.StoreFor(userID).Snapshot()

	responses := make([]GoalResponse, 0, len(snap.Goals))
	for _, g := range snap.Goals {
		responses = append(responses, toGoalResponse(g))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"goals": responses})
}

// CreateGoal handles POST /api/goals
func (h *GoalHandler) CreateGoal(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateGoalRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body")
	}

	target, err := decimal.NewFromString(req.TargetAmount)
	if err != nil {
		return NewValidationError(c, "Target amount must be a valid decimal number")
	}

	input := &domain.GoalInput{
		Name:         req.Name,
		TargetAmount: target,
		IsDebt:       req.IsDebt,
	}
	if req.CurrentAmount != nil {
		current, err := decimal.NewFromString(*req.CurrentAmount)
		if err != nil {
			return NewValidationError(c, "Current amount must be a valid decimal number")
		}
		input.CurrentAmount = current
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			return NewValidationError(c, "Due date must be in YYYY-MM-DD format")
		}
		input.DueDate = &due
	}

	st := h.sessions.StoreFor(userID)
	id, err := st.AddGoal(c.Request().Context(), input)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

// Contribute handles POST /api/goals/:id/contribute
func (h *GoalHandler) Contribute(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id := c.Param("id")
	if id == "" {
		return NewValidationError(c, "Goal ID is required")
	}

	var req ContributeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Amount must be a valid decimal number")
	}

	st := h.sessions.StoreFor(userID)
	if err := st.ContributeToGoal(c.Request().Context(), id, amount); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
