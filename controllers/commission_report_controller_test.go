package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/dealership_backend/commission"
	"github.com/HSouheill/dealership_backend/models"
	"github.com/HSouheill/dealership_backend/repositories"
	"github.com/HSouheill/dealership_backend/services"
	"github.com/HSouheill/dealership_backend/websocket"
)

type staticSales []models.Sale

func (s staticSales) FindAll(context.Context) ([]models.Sale, error) { return s, nil }

type memoryLogs struct {
	mu   sync.Mutex
	logs []models.CommissionReportLog
}

func (m *memoryLogs) Insert(_ context.Context, log models.CommissionReportLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *memoryLogs) FindByID(_ context.Context, id string) (*models.CommissionReportLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.logs {
		if m.logs[i].ID == id {
			l := m.logs[i]
			return &l, nil
		}
	}
	return nil, repositories.ErrReportLogNotFound
}

func (m *memoryLogs) LatestForWeek(context.Context, string) (*models.CommissionReportLog, error) {
	return nil, repositories.ErrReportLogNotFound
}

func (m *memoryLogs) List(_ context.Context, limit int64) ([]models.CommissionReportLogSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.CommissionReportLogSummary
	for _, l := range m.logs {
		out = append(out, models.CommissionReportLogSummary{ID: l.ID, WeekKey: l.WeekKey})
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func amount(v float64) *float64 { return &v }

func testServer(t *testing.T) *echo.Echo {
	t.Helper()
	sales := staticSales{
		{SaleID: "1", SaleDate: "2024-03-02", AccountNumber: "10", SaleType: "Sale", Salesperson: "Alex", DownPayment: amount(1000)},
		{SaleID: "2", SaleDate: "2024-03-04", AccountNumber: "11", SaleType: "Trade", Salesperson: "Key", SalePrice: amount(5000)},
	}
	engine := commission.NewEngine(commission.DefaultPolicy(), commission.DefaultSettings())
	adjustments := services.NewAdjustmentManager(repositories.NewMemoryKVStore(), []float64{0, 50, 100})
	svc := services.NewReportService(engine, sales, &memoryLogs{}, adjustments, nil)
	rc := NewCommissionReportController(svc, websocket.NewHub())

	e := echo.New()
	e.Validator = NewValidator()
	g := e.Group("/api/commission", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("userId", "user-1")
			c.Set("email", "manager@example.com")
			return next(c)
		}
	})
	g.GET("/weeks", rc.GetWeeks)
	g.PUT("/weeks/selected", rc.SelectWeek)
	g.GET("/reports/:weekKey", rc.GetReport)
	g.PUT("/reports/:weekKey/collections-bonus", rc.SelectCollectionsBonus)
	g.DELETE("/reports/:weekKey/collections-bonus", rc.ClearCollectionsBonus)
	g.POST("/reports/:weekKey/collections-bonus/lock", rc.LockCollectionsBonus)
	g.POST("/reports/:weekKey/collections-bonus/unlock", rc.UnlockCollectionsBonus)
	g.PUT("/reports/:weekKey/rows/manual-amount", rc.SetManualAmount)
	g.PUT("/reports/:weekKey/rows/note", rc.SetNote)
	g.POST("/reports/:weekKey/log", rc.PublishReport)
	g.GET("/logs", rc.ListLogs)
	g.GET("/logs/:id", rc.GetLog)
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	var resp struct {
		Status int             `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	if err := json.Unmarshal(resp.Data, dst); err != nil {
		t.Fatalf("decode data: %v (%s)", err, resp.Data)
	}
}

func TestReportEndpointsFlow(t *testing.T) {
	e := testServer(t)
	const base = "/api/commission/reports/2024-03-01"

	rec := do(e, http.MethodGet, base, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get report: %d %s", rec.Code, rec.Body.String())
	}
	var view models.CommissionReportView
	decodeData(t, rec, &view)
	if !view.Editable || view.Source != models.ReportSourceLive || len(view.Snapshot.Salespeople) != 2 {
		t.Fatalf("view = %+v", view)
	}
	keyRows := view.Snapshot.Salespeople[0].Rows
	if len(keyRows) != 1 || !keyRows[0].ManualAmountRequired {
		t.Fatalf("key rows = %+v", keyRows)
	}

	if rec := do(e, http.MethodPost, base+"/log", ""); rec.Code != http.StatusConflict {
		t.Fatalf("publish before lock: %d", rec.Code)
	}
	body := fmt.Sprintf(`{"rowKey":%q,"manualAmount":"$300"}`, keyRows[0].Key)
	if rec := do(e, http.MethodPut, base+"/rows/manual-amount", body); rec.Code != http.StatusOK {
		t.Fatalf("manual amount: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(e, http.MethodPut, base+"/collections-bonus", `{"value":50}`); rec.Code != http.StatusOK {
		t.Fatalf("select bonus: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(e, http.MethodPost, base+"/collections-bonus/lock", ""); rec.Code != http.StatusOK {
		t.Fatalf("lock: %d", rec.Code)
	}
	if rec := do(e, http.MethodDelete, base+"/collections-bonus", ""); rec.Code != http.StatusConflict {
		t.Fatalf("clear locked: %d", rec.Code)
	}

	rec = do(e, http.MethodPost, base+"/log", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("publish: %d %s", rec.Code, rec.Body.String())
	}
	var entry models.CommissionReportLog
	decodeData(t, rec, &entry)
	if entry.LoggedBy != "manager@example.com" {
		t.Fatalf("loggedBy = %q", entry.LoggedBy)
	}
	if got := entry.Snapshot.Salespeople[0].Rows[0].AdjustedCommission; got != 300 {
		t.Fatalf("manual commission = %v", got)
	}

	rec = do(e, http.MethodGet, "/api/commission/logs/"+entry.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get log: %d", rec.Code)
	}
	var archived models.CommissionReportView
	decodeData(t, rec, &archived)
	if archived.Editable || archived.Source != models.ReportSourceArchived {
		t.Fatalf("archived = %+v", archived)
	}

	if rec := do(e, http.MethodGet, "/api/commission/logs?limit=5", ""); rec.Code != http.StatusOK {
		t.Fatalf("list logs: %d", rec.Code)
	}
}

func TestReportEndpointErrors(t *testing.T) {
	e := testServer(t)
	tests := []struct {
		name, method, path, body string
		want                     int
	}{
		{"bad week key", http.MethodGet, "/api/commission/reports/2024-03-02", "", http.StatusUnprocessableEntity},
		{"missing bonus value", http.MethodPut, "/api/commission/reports/2024-03-01/collections-bonus", `{}`, http.StatusBadRequest},
		{"invalid tier", http.MethodPut, "/api/commission/reports/2024-03-01/collections-bonus", `{"value":75}`, http.StatusUnprocessableEntity},
		{"lock without bonus", http.MethodPost, "/api/commission/reports/2024-03-01/collections-bonus/lock", "", http.StatusConflict},
		{"missing row key", http.MethodPut, "/api/commission/reports/2024-03-01/rows/note", `{"notes":"x"}`, http.StatusBadRequest},
		{"malformed body", http.MethodPut, "/api/commission/reports/2024-03-01/rows/note", `{`, http.StatusBadRequest},
		{"unknown log", http.MethodGet, "/api/commission/logs/nope", "", http.StatusNotFound},
		{"bad limit", http.MethodGet, "/api/commission/logs?limit=-1", "", http.StatusBadRequest},
		{"unknown week selection", http.MethodPut, "/api/commission/weeks/selected", `{"weekKey":"2020-01-03"}`, http.StatusNotFound},
		{"empty week publish", http.MethodPost, "/api/commission/reports/2024-02-23/log", "", http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestGetWeeks(t *testing.T) {
	e := testServer(t)
	rec := do(e, http.MethodGet, "/api/commission/weeks", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp weeksResponse
	decodeData(t, rec, &resp)
	if len(resp.Weeks) == 0 || resp.Selected != resp.Weeks[0].Key {
		t.Fatalf("resp = %+v", resp)
	}
	if len(resp.Tiers) != 3 {
		t.Fatalf("tiers = %v", resp.Tiers)
	}
	if !resp.Weeks[0].IsCurrent {
		t.Fatalf("newest week should be current: %+v", resp.Weeks[0])
	}
}

func TestErrorStatusDefaultsToInternal(t *testing.T) {
	if got := errorStatus(errors.New("boom")); got != http.StatusInternalServerError {
		t.Fatalf("status = %d", got)
	}
	unavailable := fmt.Errorf("load collections bonus: %w", repositories.ErrStoreUnavailable)
	if got := errorStatus(unavailable); got != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", got)
	}
	wrapped := fmt.Errorf("publish: %w", &commission.ValidationError{Err: commission.ErrEmptyReport})
	if got := errorStatus(wrapped); got != http.StatusConflict {
		t.Fatalf("status = %d", got)
	}
}
