package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/nestfinance/nest-core/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(
	e *echo.Echo,
	authenticate echo.MiddlewareFunc,
	rateLimiter *middleware.RateLimiter,
	transactionHandler *TransactionHandler,
	goalHandler *GoalHandler,
	budgetHandler *BudgetHandler,
	accountHandler *AccountHandler,
	profileHandler *ProfileHandler,
	dashboardHandler *DashboardHandler,
	exportHandler *ExportHandler,
	wsHandler *WebSocketHandler,
) {
	api := e.Group("/api")
	api.Use(authenticate)
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Transaction routes
	transactions := api.Group("/transactions")
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.PATCH("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Goal routes
	goals := api.Group("/goals")
	goals.GET("", goalHandler.GetGoals)
	goals.POST("", goalHandler.CreateGoal)
	goals.POST("/:id/contribute", goalHandler.Contribute)

	// Budget routes
	budgets := api.Group("/budgets")
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.PUT("", budgetHandler.UpsertBudget)

	// Account routes
	accounts := api.Group("/accounts")
	accounts.GET("", accountHandler.GetAccounts)
	accounts.PUT("", accountHandler.UpsertAccount)

	// Profile routes
	profile := api.Group("/profile")
	profile.GET("", profileHandler.GetProfile)
	profile.PATCH("", profileHandler.UpdateProfile)

	// Dashboard routes
	api.GET("/dashboard", dashboardHandler.GetSummary)

	// Export routes
	api.POST("/export", exportHandler.Export)

	// WebSocket endpoint (authenticated, outside the /api rate limit group
	// so long-lived connections do not consume request quota)
	ws := e.Group("/ws")
	ws.Use(authenticate)
	ws.GET("", wsHandler.HandleWS)
}
