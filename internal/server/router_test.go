package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fekuna/storefront-service/internal/auth"
	"github.com/fekuna/storefront-service/internal/model"
	"github.com/fekuna/storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// The handlers are never reached in these tests: every request is answered
// by the health check or stopped by the auth middleware.
func TestRouter_Guards(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", time.Hour)
	r := NewRouter(Handlers{}, tm, OrderRateLimit{}, logger.NewNop())

	userToken, _, err := tm.Issue(&model.User{BaseModel: model.BaseModel{ID: "u-1"}, Role: model.RoleUser})
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"health", http.MethodGet, "/healthz", "", http.StatusOK},
		{"admin list needs token", http.MethodGet, "/api/orders", "", http.StatusUnauthorized},
		{"admin list rejects user", http.MethodGet, "/api/orders", userToken, http.StatusForbidden},
		{"stats rejects user", http.MethodGet, "/api/orders/admin/stats", userToken, http.StatusForbidden},
		{"inventory rejects user", http.MethodPost, "/api/inventory/adjust", userToken, http.StatusForbidden},
		{"discounts need token", http.MethodGet, "/api/discounts", "", http.StatusUnauthorized},
		{"my orders need token", http.MethodGet, "/api/orders/my", "", http.StatusUnauthorized},
		{"bad token on checkout", http.MethodPost, "/api/orders", "garbage", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		})
	}
}
