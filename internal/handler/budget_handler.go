package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/nestfinance/nest-core/internal/domain"
	"github.com/nestfinance/nest-core/internal/middleware"
	"github.com/nestfinance/nest-core/internal/session"
)

// BudgetHandler handles budget HTTP requests
type BudgetHandler struct {
	sessions *session.Manager
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(sessions *session.Manager) *BudgetHandler {
	return &BudgetHandler{sessions: sessions}
}

// UpsertBudgetRequest represents the budget upsert request body.
// Carrying an ID updates the existing budget, otherwise one is created.
type UpsertBudgetRequest struct {
	ID       string `json:"id,omitempty"`
	Category string `json:"category"`
	Limit    string `json:"limit"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Limit    string `json:"limit"`
}

// GetBudgets handles GET /api/budgets
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	snap := h.sessions.StoreFor(userID).Snapshot()

	responses := make([]BudgetResponse, 0, len(snap.Budgets))
	for _, b := range snap.Budgets {
		responses = append(responses, BudgetResponse{
			ID:       b.ID,
			Category: b.Category,
			Limit:    b.Limit.String(),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"budgets": responses})
}

// UpsertBudget handles PUT /api/budgets
func (h *BudgetHandler) UpsertBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req UpsertBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body")
	}

	limit, err := decimal.NewFromString(req.Limit)
	if err != nil {
		return NewValidationError(c, "Limit must be a valid decimal number")
	}

	input := &domain.BudgetInput{
		ID:       req.ID,
		Category: req.Category,
		Limit:    limit,
	}

	st := h.sessions.StoreFor(userID)
	id, err := st.UpsertBudget(c.Request().Context(), input)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"id": id})
}
