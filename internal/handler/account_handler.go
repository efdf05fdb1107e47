package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/nestfinance/nest-core/internal/domain"
	"github.com/nestfinance/nest-core/internal/middleware"
	"github.com/nestfinance/nest-core/internal/session"
)

// AccountHandler handles account HTTP requests
type AccountHandler struct {
	sessions *session.Manager
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(sessions *session.Manager) *AccountHandler {
	return &AccountHandler{sessions: sessions}
}

// UpsertAccountRequest represents the account upsert request body.
// Carrying an ID updates the existing account, otherwise one is created.
type UpsertAccountRequest struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Balance string `json:"balance"`
	Type    string `json:"type"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Balance string `json:"balance"`
	Type    string `json:"type"`
}

// GetAccounts handles GET /api/accounts
func (h *AccountHandler) GetAccounts(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	snap := h.sessions.StoreFor(userID).Snapshot()

	responses := make([]AccountResponse, 0, len(snap.Accounts))
	for _, a := range snap.Accounts {
		responses = append(responses, AccountResponse{
			ID:      a.ID,
			Name:    a.Name,
			Balance: a.Balance.String(),
			Type:    string(a.Type),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"accounts": responses})
}

// UpsertAccount handles PUT /api/accounts
func (h *AccountHandler) UpsertAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req UpsertAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body")
	}

	balance, err := decimal.NewFromString(req.Balance)
	if err != nil {
		return NewValidationError(c, "Balance must be a valid decimal number")
	}

	input := &domain.AccountInput{
		ID:      req.ID,
		Name:    req.Name,
		Balance: balance,
		Type:    domain.AccountType(req.Type),
	}

	st := h.sessions.StoreFor(userID)
	id, err := st.UpsertAccount(c.Request().Context(), input)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"id": id})
}
