// middleware/auth_middleware.go
package middleware

import (
	"net/http"

	"github.com/HSouheill/dealership_backend/models"
	"github.com/labstack/echo/v4"
)

// Roles allowed to view and edit commission reports
const (
	UserTypeAdmin        = "admin"
	UserTypeManager      = "manager"
	UserTypeSalesManager = "sales_manager"
)

// RequireUserType checks if the authenticated user has one of the allowed user types
func RequireUserType(allowedTypes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userType := ExtractUserType(c)

			if userType == "" {
				c.Logger().Error("Authentication failed: user type not found")
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Authentication failed: user type not found",
				})
			}

			for _, allowedType := range allowedTypes {
				// Handle both formats for sales manager
				if (userType == "sales_manager" && allowedType == "salesManager") ||
					(userType == "salesManager" && allowedType == "sales_manager") ||
					userType == allowedType {
					return next(c)
				}
			}

			c.Logger().Errorf("Access denied for user type: %s, allowed types: %v", userType, allowedTypes)
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Access denied for your user type",
			})
		}
	}
}
