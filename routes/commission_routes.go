package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/dealership_backend/controllers"
	"github.com/HSouheill/dealership_backend/middleware"
)

// RegisterCommissionRoutes sets up the commission report routes
func RegisterCommissionRoutes(e *echo.Echo, jwtSecret string, rc *controllers.CommissionReportController) {
	commission := e.Group("/api/commission")
	commission.Use(middleware.JWTMiddleware(jwtSecret))
	commission.Use(middleware.RequireUserType(middleware.UserTypeAdmin, middleware.UserTypeManager, middleware.UserTypeSalesManager))

	// Week picker
	commission.GET("/weeks", rc.GetWeeks)
	commission.PUT("/weeks/selected", rc.SelectWeek)

	// Live report and its adjustments
	commission.GET("/reports/:weekKey", rc.GetReport)
	commission.PUT("/reports/:weekKey/collections-bonus", rc.SelectCollectionsBonus)
	commission.DELETE("/reports/:weekKey/collections-bonus", rc.ClearCollectionsBonus)
	commission.POST("/reports/:weekKey/collections-bonus/lock", rc.LockCollectionsBonus)
	commission.POST("/reports/:weekKey/collections-bonus/unlock", rc.UnlockCollectionsBonus)
	commission.PUT("/reports/:weekKey/rows/manual-amount", rc.SetManualAmount)
	commission.PUT("/reports/:weekKey/rows/note", rc.SetNote)
	commission.POST("/reports/:weekKey/log", rc.PublishReport)

	// Published reports
	commission.GET("/logs", rc.ListLogs)
	commission.GET("/logs/:id", rc.GetLog)

	// Live updates
	commission.GET("/ws", rc.Subscribe)
}

// RegisterHealthRoutes sets up the unauthenticated status routes
func RegisterHealthRoutes(e *echo.Echo, store string) {
	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "Commission report backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":          "healthy",
			"adjustmentStore": store,
		})
	})
}
