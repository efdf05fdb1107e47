package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/nestfinance/nest-core/internal/domain"
	"github.com/nestfinance/nest-core/internal/middleware"
	"github.com/nestfinance/nest-core/internal/session"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	sessions *session.Manager
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(sessions *session.Manager) *TransactionHandler {
	return &TransactionHandler{sessions: sessions}
}

// CreateTransactionRequest represents the create transaction request body
type CreateTransactionRequest struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Amount      string  `json:"amount"`
	Category    string  `json:"category"`
	AccountID   *string `json:"accountId,omitempty"`
}

// UpdateTransactionRequest represents the partial update request body.
// Omitted fields are left untouched.
type UpdateTransactionRequest struct {
	Description *string `json:"description,omitempty"`
	Amount      *string `json:"amount,omitempty"`
	Category    *string `json:"category,omitempty"`
	AccountID   *string `json:"accountId,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Amount      string  `json:"amount"`
	Category    string  `json:"category"`
	AccountID   *string `json:"accountId,omitempty"`
	Date        string  `json:"date"`
}

func toTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		Type:        string(t.Type),
		Description: t.Description,
		Amount:      t.Amount.String(),
		Category:    t.Category,
		AccountID:   t.AccountID,
		Date:        t.Date.Format("2006-01-02"),
	}
}

// GetTransactions handles GET /api/transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	snap := h.sessions.StoreFor(userID).Snapshot()

	responses := make([]TransactionResponse, 0, len(snap.Transactions))
	for _, t := range snap.Transactions {
		responses = append(responses, toTransactionResponse(t))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"transactions": responses,
		"loading":      snap.Loading,
		"revision":     snap.Revision,
	})
}

// CreateTransaction handles POST /api/transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Amount must be a valid decimal number")
	}

	input := &domain.TransactionInput{
		Type:        domain.TransactionType(req.Type),
		Description: req.Description,
		Amount:      amount,
		Category:    req.Category,
		AccountID:   req.AccountID,
	}

	st := h.sessions.StoreFor(userID)
	id, err := st.AddTransaction(c.Request().Context(), input)
	if err != nil {
		log.Debug().Err(err).Str("user_id", userID).Msg("Create transaction failed")
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

// UpdateTransaction handles PATCH /api/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id := c.Param("id")
	if id == "" {
		return NewValidationError(c, "Transaction ID is required")
	}

	var req UpdateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body")
	}

	patch := &domain.TransactionPatch{
		Description: req.Description,
		Category:    req.Category,
		AccountID:   req.AccountID,
	}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			return NewValidationError(c, "Amount must be a valid decimal number")
		}
		patch.Amount = &amount
	}

	st := h.sessions.StoreFor(userID)
	if err := st.UpdateTransaction(c.Request().Context(), id, patch); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// DeleteTransaction handles DELETE /api/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id := c.Param("id")
	if id == "" {
		return NewValidationError(c, "Transaction ID is required")
	}

	st := h.sessions.StoreFor(userID)
	if err := st.DeleteTransaction(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
