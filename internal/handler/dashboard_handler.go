package handler

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nestfinance/nest-core/internal/insights"
	"github.com/nestfinance/nest-core/internal/middleware"
	"github.com/nestfinance/nest-core/internal/session"
	"github.com/nestfinance/nest-core/internal/store"
	"github.com/nestfinance/nest-core/internal/util"
)

// DefaultTrendTopN is the number of trend categories returned when the
// request does not specify one.
const DefaultTrendTopN = 5

// DashboardHandler assembles the derived-view summary for a user's store
type DashboardHandler struct {
	sessions *session.Manager

	mu    sync.Mutex
	memos map[string]*insights.Memo[dashboardParams, DashboardResponse]
}

type dashboardParams struct {
	Start      time.Time
	End        time.Time
	Reference  time.Time
	TopN       int
	Categories int
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(sessions *session.Manager) *DashboardHandler {
	h := &DashboardHandler{
		sessions: sessions,
		memos:    make(map[string]*insights.Memo[dashboardParams, DashboardResponse]),
	}
	// A memo lives exactly as long as the session it summarizes.
	sessions.OnEvict(h.evictMemo)
	return h
}

func (h *DashboardHandler) evictMemo(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.memos, userID)
}

// DashboardResponse represents the dashboard summary in API responses
type DashboardResponse struct {
	SafeToSpend       string                    `json:"safeToSpend"`
	NetWorth          string                    `json:"netWorth"`
	BudgetProgress    int                       `json:"budgetProgress"`
	CategoryBreakdown []insights.CategoryAmount `json:"categoryBreakdown"`
	Trend             []insights.TrendEntry     `json:"trend"`
	Waterfall         []insights.WaterfallStep  `json:"waterfall"`
	Loading           bool                      `json:"loading"`
	Healthy           bool                      `json:"healthy"`
	Revision          uint64                    `json:"revision"`
}

func computeDashboard(snap store.Snapshot, p dashboardParams) DashboardResponse {
	r := insights.DateRange{Start: p.Start, End: p.End}
	return DashboardResponse{
		SafeToSpend:       insights.SafeToSpend(snap, r).String(),
		NetWorth:          insights.NetWorth(snap).String(),
		BudgetProgress:    insights.BudgetProgress(snap, r),
		CategoryBreakdown: insights.CategoryBreakdown(snap, r),
		Trend:             insights.MonthOverMonthTrend(snap, p.Reference, p.TopN),
		Waterfall:         insights.Waterfall(snap, r, p.Categories),
		Loading:           snap.Loading,
		Healthy:           snap.Healthy,
		Revision:          snap.Revision,
	}
}

func (h *DashboardHandler) memoFor(userID string) *insights.Memo[dashboardParams, DashboardResponse] {
	h.mu.Lock()
	defer h.mu.Unlock()
	memo, ok := h.memos[userID]
	if !ok {
		memo = insights.NewMemo(computeDashboard)
		h.memos[userID] = memo
	}
	return memo
}

// GetSummary handles GET /api/dashboard
//
// Query parameters: start and end (YYYY-MM-DD) bound the analysed range
// and default to the current month; month (YYYY-MM) picks the trend
// reference month; topN and categories bound the trend and waterfall
// sizes.
func (h *DashboardHandler) GetSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	params, err := parseDashboardParams(c)
	if err != nil {
		return err
	}

	snap := h.sessions.StoreFor(userID).Snapshot()
	summary := h.memoFor(userID).Get(snap, params)

	return c.JSON(http.StatusOK, summary)
}

// parseDashboardParams resolves the query parameters to month precision,
// so two requests for the same month produce identical params and the
// per-user memo can serve the second from cache.
func parseDashboardParams(c echo.Context) (dashboardParams, error) {
	params := dashboardParams{
		TopN:       DefaultTrendTopN,
		Categories: insights.DefaultWaterfallCategories,
	}

	year, month := util.CurrentMonth()
	if raw := c.QueryParam("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			return dashboardParams{}, NewValidationError(c, "Month must be in YYYY-MM format")
		}
		year, month = parsed.Year(), parsed.Month()
	}
	params.Reference = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	r := insights.MonthRange(year, month)
	params.Start, params.End = r.Start, r.End

	if raw := c.QueryParam("start"); raw != "" {
		start, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return dashboardParams{}, NewValidationError(c, "Start must be in YYYY-MM-DD format")
		}
		params.Start = start
	}
	if raw := c.QueryParam("end"); raw != "" {
		end, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return dashboardParams{}, NewValidationError(c, "End must be in YYYY-MM-DD format")
		}
		params.End = end
	}
	if raw := c.QueryParam("topN"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return dashboardParams{}, NewValidationError(c, "topN must be a positive integer")
		}
		params.TopN = n
	}
	if raw := c.QueryParam("categories"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return dashboardParams{}, NewValidationError(c, "categories must be a positive integer")
		}
		params.Categories = n
	}

	return params, nil
}
