package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fekuna/storefront-service/internal/apperror"
	"github.com/fekuna/storefront-service/internal/auth"
	"github.com/fekuna/storefront-service/internal/model"
	"github.com/fekuna/storefront-service/internal/order"
	"github.com/fekuna/storefront-service/internal/order/dto"
	"github.com/fekuna/storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubUseCase records inputs; methods a test does not set panic through the
// nil embedded interface.
type stubUseCase struct {
	order.UseCase

	placed   *dto.PlaceOrderInput
	checked  *dto.CheckDiscountInput
	listed   *dto.OrderFilters
	placeErr error
	viewer   *auth.UserContext
}

func (s *stubUseCase) PlaceOrder(_ context.Context, input *dto.PlaceOrderInput) (*dto.PlaceOrderResult, error) {
	s.placed = input
	if s.placeErr != nil {
		return nil, s.placeErr
	}
	return &dto.PlaceOrderResult{
		OrderNumber: "ORD-M7X2K1-ABCD",
		OrderID:     "o-1",
		TotalAmount: decimal.RequireFromString("155"),
		Status:      model.OrderStatusPending,
	}, nil
}

func (s *stubUseCase) CheckDiscount(_ context.Context, input *dto.CheckDiscountInput) (*dto.CheckDiscountResult, error) {
	s.checked = input
	return &dto.CheckDiscountResult{
		Code:           "SAVE20",
		Percentage:     decimal.NewFromInt(20),
		DiscountAmount: decimal.NewFromInt(20),
		FinalAmount:    decimal.NewFromInt(80),
	}, nil
}

func (s *stubUseCase) ListOrders(_ context.Context, filters *dto.OrderFilters) ([]model.Order, int, error) {
	s.listed = filters
	return []model.Order{{
		BaseModel:   model.BaseModel{ID: "o-1"},
		OrderNumber: "ORD-M7X2K1-ABCD",
		Subtotal:    decimal.NewFromInt(150),
		TotalAmount: decimal.NewFromInt(155),
		Status:      model.OrderStatusPending,
		Items: []model.OrderItem{
			{ID: "i-1", ProductID: "p-1", ProductName: "Mug", Quantity: 3, UnitPrice: decimal.NewFromInt(50)},
		},
	}}, 1, nil
}

func (s *stubUseCase) GetOrder(_ context.Context, id string, viewer *auth.UserContext) (*model.Order, error) {
	s.viewer = viewer
	if viewer == nil || viewer.UserID != "u-1" {
		return nil, apperror.Forbidden("you do not have access to this order")
	}
	return &model.Order{BaseModel: model.BaseModel{ID: id}, TotalAmount: decimal.NewFromInt(10)}, nil
}

type testServer struct {
	router *gin.Engine
	tokens *auth.TokenManager
	uc     *stubUseCase
}

func newTestServer() *testServer {
	uc := &stubUseCase{}
	tm := auth.NewTokenManager("test-secret", time.Hour)
	h := NewOrderHandler(uc, logger.NewNop())

	r := gin.New()
	r.POST("/api/orders", auth.OptionalAuthenticate(tm), h.PlaceOrder)
	r.POST("/api/orders/check-discount", auth.Authenticate(tm), h.CheckDiscount)
	r.GET("/api/orders", auth.Authenticate(tm), auth.RequireRole(model.RoleAdmin), h.ListOrders)
	r.GET("/api/orders/:id", auth.Authenticate(tm), h.GetOrder)
	return &testServer{router: r, tokens: tm, uc: uc}
}

func (s *testServer) token(t *testing.T, id, role string) string {
	t.Helper()
	token, _, err := s.tokens.Issue(&model.User{BaseModel: model.BaseModel{ID: id}, Email: id + "@shop.test", Role: role})
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, target, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w.Code, out
}

func placeBody() map[string]interface{} {
	return map[string]interface{}{
		"customerInfo": map[string]string{"name": "Ann", "email": "ann@example.com", "phone": "555-0101"},
		"items":        []map[string]interface{}{{"productId": "p-1", "quantity": 3}},
		"deliveryFee":  5,
	}
}

func TestPlaceOrder_Guest(t *testing.T) {
	s := newTestServer()

	code, body := s.do(t, http.MethodPost, "/api/orders", "", placeBody())
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "ORD-M7X2K1-ABCD", data["orderNumber"])
	assert.Equal(t, "155.00", data["totalAmount"])
	assert.Equal(t, "pending", data["status"])

	require.NotNil(t, s.uc.placed)
	assert.Empty(t, s.uc.placed.UserID)
	assert.Equal(t, "5", s.uc.placed.DeliveryFee.String())
	assert.Equal(t, 3, s.uc.placed.Items[0].Quantity)
}

func TestPlaceOrder_AttachesCaller(t *testing.T) {
	s := newTestServer()

	code, _ := s.do(t, http.MethodPost, "/api/orders", s.token(t, "u-1", model.RoleUser), placeBody())
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "u-1", s.uc.placed.UserID)
	assert.Equal(t, model.RoleUser, s.uc.placed.UserRole)
}

func TestPlaceOrder_StockErrorBody(t *testing.T) {
	s := newTestServer()
	s.uc.placeErr = apperror.InsufficientStock("p-1", "Mug", 10, 11)

	code, body := s.do(t, http.MethodPost, "/api/orders", "", placeBody())
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "p-1", data["productId"])
	assert.Equal(t, float64(10), data["available"])
	assert.Equal(t, float64(11), data["requested"])
}

func TestPlaceOrder_MalformedBody(t *testing.T) {
	s := newTestServer()

	code, _ := s.do(t, http.MethodPost, "/api/orders", "", map[string]interface{}{"items": "nope"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Nil(t, s.uc.placed)
}

func TestCheckDiscount_RendersMoney(t *testing.T) {
	s := newTestServer()

	code, body := s.do(t, http.MethodPost, "/api/orders/check-discount", s.token(t, "u-1", model.RoleUser),
		map[string]interface{}{"code": "save20", "subtotal": "100"})
	require.Equal(t, http.StatusOK, code)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "20.00", data["discountAmount"])
	assert.Equal(t, "80.00", data["finalAmount"])
	assert.Equal(t, "20", data["percentage"])
	assert.Equal(t, "u-1", s.uc.checked.UserID)

	code, _ = s.do(t, http.MethodPost, "/api/orders/check-discount", "", map[string]interface{}{"code": "save20"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestListOrders_AdminOnly(t *testing.T) {
	s := newTestServer()

	code, _ := s.do(t, http.MethodGet, "/api/orders", s.token(t, "u-1", model.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body := s.do(t, http.MethodGet, "/api/orders?status=pending&endDate=2026-03-01&page=2&limit=5",
		s.token(t, "a-1", model.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, model.OrderStatusPending, s.uc.listed.Status)
	require.NotNil(t, s.uc.listed.EndDate)
	assert.Equal(t, 23, s.uc.listed.EndDate.Hour())
	assert.Equal(t, 2, s.uc.listed.Page)
	assert.Equal(t, 5, s.uc.listed.PageSize)

	items := body["data"].([]interface{})
	require.Len(t, items, 1)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "155.00", first["totalAmount"])
	line := first["items"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "150.00", line["lineTotal"])
	assert.NotNil(t, body["pagination"])
}

func TestGetOrder_PassesViewer(t *testing.T) {
	s := newTestServer()

	code, _ := s.do(t, http.MethodGet, "/api/orders/o-1", s.token(t, "u-2", model.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body := s.do(t, http.MethodGet, "/api/orders/o-1", s.token(t, "u-1", model.RoleUser), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "u-1", s.uc.viewer.UserID)
	assert.Equal(t, "10.00", body["data"].(map[string]interface{})["totalAmount"])
}
