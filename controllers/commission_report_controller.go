package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/dealership_backend/commission"
	"github.com/HSouheill/dealership_backend/middleware"
	"github.com/HSouheill/dealership_backend/models"
	"github.com/HSouheill/dealership_backend/repositories"
	"github.com/HSouheill/dealership_backend/services"
	"github.com/HSouheill/dealership_backend/websocket"
)

const defaultLogLimit = 50

type CommissionReportController struct {
	service *services.ReportService
	hub     *websocket.Hub
}

func NewCommissionReportController(service *services.ReportService, hub *websocket.Hub) *CommissionReportController {
	return &CommissionReportController{service: service, hub: hub}
}

type selectWeekRequest struct {
	WeekKey string `json:"weekKey" validate:"required"`
}

type collectionsBonusRequest struct {
	Value *float64 `json:"value" validate:"required,gte=0"`
}

type manualAmountRequest struct {
	RowKey       string `json:"rowKey" validate:"required"`
	ManualAmount string `json:"manualAmount" validate:"max=32"`
}

type noteRequest struct {
	RowKey string `json:"rowKey" validate:"required"`
	Notes  string `json:"notes" validate:"max=2000"`
}

// weeksResponse is the payload of the week picker
type weeksResponse struct {
	Weeks    []models.ReportingWeekSummary `json:"weeks"`
	Selected string                        `json:"selected"`
	Tiers    []float64                     `json:"collectionsBonusTiers"`
}

// errorStatus maps service errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, commission.ErrInvalidWeekKey),
		errors.Is(err, services.ErrInvalidRowKey),
		errors.Is(err, services.ErrInvalidBonusTier):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrCollectionsLocked),
		errors.Is(err, services.ErrNoBonusSelected),
		errors.Is(err, commission.ErrCollectionsIncomplete),
		errors.Is(err, commission.ErrEmptyReport):
		return http.StatusConflict
	case errors.Is(err, services.ErrUnknownWeek),
		errors.Is(err, repositories.ErrReportLogNotFound):
		return http.StatusNotFound
	case errors.Is(err, repositories.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c echo.Context, err error) error {
	status := errorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("Error handling %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		message = "Internal server error"
	}
	return c.JSON(status, models.Response{
		Status:  status,
		Message: message,
	})
}

var errInvalidBody = errors.New("invalid request body")

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errInvalidBody
	}
	return c.Validate(req)
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, models.Response{
		Status:  http.StatusBadRequest,
		Message: err.Error(),
	})
}

func respondOK(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// GetWeeks lists the reporting weeks and the caller's selection
func (rc *CommissionReportController) GetWeeks(c echo.Context) error {
	weeks, selected, err := rc.service.Weeks(c.Request().Context(), middleware.GetUserIDFromToken(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Reporting weeks retrieved successfully", weeksResponse{
		Weeks:    weeks,
		Selected: selected,
		Tiers:    rc.service.Adjustments().Tiers(),
	})
}

// SelectWeek changes the caller's selected week
func (rc *CommissionReportController) SelectWeek(c echo.Context) error {
	var req selectWeekRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err)
	}
	selected, err := rc.service.SelectWeek(c.Request().Context(), middleware.GetUserIDFromToken(c), req.WeekKey)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Week selected", map[string]string{"selected": selected})
}

// GetReport returns the live, editable report of a week
func (rc *CommissionReportController) GetReport(c echo.Context) error {
	view, err := rc.service.LiveReport(c.Request().Context(), c.Param("weekKey"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Commission report retrieved successfully", view)
}

// SelectCollectionsBonus picks the collections bonus tier of a week
func (rc *CommissionReportController) SelectCollectionsBonus(c echo.Context) error {
	var req collectionsBonusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err)
	}
	rec, err := rc.service.SelectCollectionsBonus(c.Request().Context(), c.Param("weekKey"), *req.Value)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Collections bonus selected", rec)
}

// ClearCollectionsBonus removes an unlocked collections bonus
func (rc *CommissionReportController) ClearCollectionsBonus(c echo.Context) error {
	if err := rc.service.ClearCollectionsBonus(c.Request().Context(), c.Param("weekKey")); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Collections bonus cleared", nil)
}

// LockCollectionsBonus locks the selected collections bonus
func (rc *CommissionReportController) LockCollectionsBonus(c echo.Context) error {
	rec, err := rc.service.LockCollectionsBonus(c.Request().Context(), c.Param("weekKey"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Collections bonus locked", rec)
}

// UnlockCollectionsBonus unlocks the collections bonus
func (rc *CommissionReportController) UnlockCollectionsBonus(c echo.Context) error {
	rec, err := rc.service.UnlockCollectionsBonus(c.Request().Context(), c.Param("weekKey"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Collections bonus unlocked", rec)
}

// SetManualAmount stores the manual commission of a row
func (rc *CommissionReportController) SetManualAmount(c echo.Context) error {
	var req manualAmountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err)
	}
	value, err := rc.service.SetManualAmount(c.Request().Context(), c.Param("weekKey"), req.RowKey, req.ManualAmount)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Manual amount saved", map[string]string{"rowKey": req.RowKey, "manualAmount": value})
}

// SetNote stores the note of a row
func (rc *CommissionReportController) SetNote(c echo.Context) error {
	var req noteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err)
	}
	value, err := rc.service.SetNote(c.Request().Context(), c.Param("weekKey"), req.RowKey, req.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Note saved", map[string]string{"rowKey": req.RowKey, "notes": value})
}

// PublishReport logs the current snapshot of a week
func (rc *CommissionReportController) PublishReport(c echo.Context) error {
	entry, err := rc.service.Publish(c.Request().Context(), c.Param("weekKey"), middleware.GetUserLabel(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Commission report logged",
		Data:    entry,
	})
}

// ListLogs lists published reports, newest first
func (rc *CommissionReportController) ListLogs(c echo.Context) error {
	limit := int64(defaultLogLimit)
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			return badRequest(c, errors.New("limit must be a positive integer"))
		}
		limit = parsed
	}
	logs, err := rc.service.ListLogs(c.Request().Context(), limit)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Commission report logs retrieved successfully", logs)
}

// GetLog replays a published report, read-only
func (rc *CommissionReportController) GetLog(c echo.Context) error {
	view, err := rc.service.ArchivedReport(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Commission report log retrieved successfully", view)
}

// Subscribe upgrades to a websocket that receives report change events
func (rc *CommissionReportController) Subscribe(c echo.Context) error {
	return websocket.HandleWebSocket(c, rc.hub, middleware.GetUserIDFromToken(c))
}
