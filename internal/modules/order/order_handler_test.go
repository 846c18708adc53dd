package order

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"food-delivery/internal/auth"
	"food-delivery/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type stubService struct {
	called string
	order  *models.Order
	err    error
}

func (s *stubService) result(name string) (*models.Order, error) {
	s.called = name
	return s.order, s.err
}

func (s *stubService) PlaceOrder(ctx context.Context, caller models.Caller, req models.PlaceOrderRequest) (*models.Order, error) {
	return s.result("PlaceOrder")
}

func (s *stubService) GetOrder(ctx context.Context, caller models.Caller, orderID string) (*models.Order, error) {
	return s.result("GetOrder")
}

func (s *stubService) CancelOrder(ctx context.Context, caller models.Caller, orderID string) (*models.Order, error) {
	return s.result("CancelOrder")
}

func (s *stubService) AssignRider(ctx context.Context, caller models.Caller, orderID string, req models.AssignRiderRequest) (*models.Order, error) {
	return s.result("AssignRider")
}

func (s *stubService) MarkPicked(ctx context.Context, caller models.Caller, orderID string) (*models.Order, error) {
	return s.result("MarkPicked")
}

func (s *stubService) MarkDelivered(ctx context.Context, caller models.Caller, orderID string) (*models.Order, error) {
	return s.result("MarkDelivered")
}

func (s *stubService) Cashout(ctx context.Context, caller models.Caller, orderID string) (*models.Order, error) {
	return s.result("Cashout")
}

func newTestServer(svc ServiceInterface) *echo.Echo {
	e := echo.New()
	NewHandler(svc).RegisterRoutes(e.Group("", auth.Middleware(testSecret)))
	return e
}

func token(t *testing.T, role models.Role) string {
	t.Helper()
	tok, err := auth.SignToken(testSecret, string(role)+"@example.com", role, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestHandlerRoutes(t *testing.T) {
	validOrder := `{"customer":{"name":"Rahim","email":"customer@example.com","address":{"district":"Dhaka","thana":"Gulshan","region":"Dhaka"}},
		"items":[{"food_id":"f1","quantity":2}],"total":500,"delivery_charge":50}`

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		role       models.Role
		svcErr     error
		wantCode   int
		wantCalled string
	}{
		{name: "place order", method: http.MethodPost, path: "/orders", body: validOrder, role: models.RoleCustomer, wantCode: http.StatusCreated, wantCalled: "PlaceOrder"},
		{name: "place order without items", method: http.MethodPost, path: "/orders", body: `{"customer":{"email":"customer@example.com"},"items":[]}`, role: models.RoleCustomer, wantCode: http.StatusBadRequest},
		{name: "get order", method: http.MethodGet, path: "/orders/o1", role: models.RoleRider, wantCode: http.StatusOK, wantCalled: "GetOrder"},
		{name: "get missing order", method: http.MethodGet, path: "/orders/o1", role: models.RoleAdmin, svcErr: models.ErrNotFound, wantCode: http.StatusNotFound, wantCalled: "GetOrder"},
		{name: "cancel", method: http.MethodPatch, path: "/orders/o1", body: `{"status":"cancelled"}`, role: models.RoleCustomer, wantCode: http.StatusOK, wantCalled: "CancelOrder"},
		{name: "cancel with other status", method: http.MethodPatch, path: "/orders/o1", body: `{"status":"picked"}`, role: models.RoleCustomer, wantCode: http.StatusBadRequest},
		{name: "cancel picked order", method: http.MethodPatch, path: "/orders/o1", body: `{"status":"cancelled"}`, role: models.RoleCustomer,
			svcErr: fmt.Errorf("%w: cannot cancel a picked order", models.ErrInvalidTransition), wantCode: http.StatusConflict, wantCalled: "CancelOrder"},
		{name: "assign as admin", method: http.MethodPatch, path: "/orders/o1/assign", body: `{"rider_id":"r1"}`, role: models.RoleAdmin, wantCode: http.StatusOK, wantCalled: "AssignRider"},
		{name: "assign as customer", method: http.MethodPatch, path: "/orders/o1/assign", body: `{"rider_id":"r1"}`, role: models.RoleCustomer, wantCode: http.StatusForbidden},
		{name: "assign busy rider", method: http.MethodPatch, path: "/orders/o1/assign", body: `{"rider_id":"r1"}`, role: models.RoleAdmin,
			svcErr: models.ErrConflict, wantCode: http.StatusConflict, wantCalled: "AssignRider"},
		{name: "picked", method: http.MethodPatch, path: "/orders/o1/status", body: `{"status":"picked"}`, role: models.RoleRider, wantCode: http.StatusOK, wantCalled: "MarkPicked"},
		{name: "delivered", method: http.MethodPatch, path: "/orders/o1/status", body: `{"status":"delivered"}`, role: models.RoleRider, wantCode: http.StatusOK, wantCalled: "MarkDelivered"},
		{name: "unknown status", method: http.MethodPatch, path: "/orders/o1/status", body: `{"status":"teleported"}`, role: models.RoleRider, wantCode: http.StatusBadRequest},
		{name: "status as admin", method: http.MethodPatch, path: "/orders/o1/status", body: `{"status":"picked"}`, role: models.RoleAdmin, wantCode: http.StatusForbidden},
		{name: "cashout twice", method: http.MethodPatch, path: "/orders/o1/cashout", role: models.RoleRider,
			svcErr: fmt.Errorf("%w: earnings already cashed out", models.ErrConflict), wantCode: http.StatusConflict, wantCalled: "Cashout"},
		{name: "storage failure", method: http.MethodPatch, path: "/orders/o1/cashout", role: models.RoleRider,
			svcErr: fmt.Errorf("repository.Cashout: connection reset"), wantCode: http.StatusInternalServerError, wantCalled: "Cashout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{order: &models.Order{ID: "o1", Status: models.OrderNotAssigned}, err: tt.svcErr}
			e := newTestServer(svc)

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, tt.role))
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCalled, svc.called)
		})
	}
}

func TestHandlerErrorBody(t *testing.T) {
	svc := &stubService{err: fmt.Errorf("service.CancelOrder: %w", fmt.Errorf("%w: cannot cancel a delivered order", models.ErrInvalidTransition))}
	e := newTestServer(svc)

	req := httptest.NewRequest(http.MethodPatch, "/orders/o1", strings.NewReader(`{"status":"cancelled"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, models.RoleCustomer))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "cannot cancel a delivered order", body.Message)
}

func TestHandlerRequiresToken(t *testing.T) {
	e := newTestServer(&stubService{})
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
