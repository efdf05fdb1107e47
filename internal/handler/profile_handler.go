package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/nestfinance/nest-core/internal/domain"
	"github.com/nestfinance/nest-core/internal/middleware"
	"github.com/nestfinance/nest-core/internal/session"
)

// ProfileHandler handles user profile HTTP requests
type ProfileHandler struct {
	sessions *session.Manager
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(sessions *session.Manager) *ProfileHandler {
	return &ProfileHandler{sessions: sessions}
}

// UpdateProfileRequest represents the profile patch request body.
// Omitted fields are left untouched.
type UpdateProfileRequest struct {
	RecurringIncome   *string `json:"recurringIncome,omitempty"`
	RecurringExpenses *string `json:"recurringExpenses,omitempty"`
	PlanTier          *string `json:"planTier,omitempty"`
}

// ProfileResponse represents the user profile in API responses
type ProfileResponse struct {
	RecurringIncome   string `json:"recurringIncome"`
	RecurringExpenses string `json:"recurringExpenses"`
	PlanTier          string `json:"planTier"`
}

// GetProfile handles GET /api/profile
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	snap := h.sessions.StoreFor(userID).Snapshot()
	if snap.Profile == nil {
		return NewNotFoundError(c, "Profile not found")
	}

	return c.JSON(http.StatusOK, ProfileResponse{
		RecurringIncome:   snap.Profile.RecurringIncome.String(),
		RecurringExpenses: snap.Profile.RecurringExpenses.String(),
		PlanTier:          string(snap.Profile.PlanTier),
	})
}

// UpdateProfile handles PATCH /api/profile
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body")
	}

	patch := &domain.ProfilePatch{}
	if req.RecurringIncome != nil {
		income, err := decimal.NewFromString(*req.RecurringIncome)
		if err != nil {
			return NewValidationError(c, "Recurring income must be a valid decimal number")
		}
		patch.RecurringIncome = &income
	}
	if req.RecurringExpenses != nil {
		expenses, err := decimal.NewFromString(*req.RecurringExpenses)
		if err != nil {
			return NewValidationError(c, "Recurring expenses must be a valid decimal number")
		}
		patch.RecurringExpenses = &expenses
	}
	if req.PlanTier != nil {
		tier := domain.PlanTier(*req.PlanTier)
		if tier != domain.PlanTierFree && tier != domain.PlanTierPremium {
			return NewValidationError(c, "Plan tier must be free or premium")
		}
		patch.PlanTier = &tier
	}

	st := h.sessions.StoreFor(userID)
	if err := st.UpdateUserProfile(c.Request().Context(), patch); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
