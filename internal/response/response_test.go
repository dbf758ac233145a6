package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/storefront-service/internal/apperror"
	"github.com/fekuna/storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, target string, h gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	r := gin.New()
	r.GET("/x", h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestError_BusinessErrorKeepsMessage(t *testing.T) {
	w, body := serve(t, "/x", func(c *gin.Context) {
		Error(c, logger.NewNop(), apperror.Validation("customer name is required"))
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "customer name is required", body["message"])
}

func TestError_InsufficientStockCarriesQuantities(t *testing.T) {
	w, body := serve(t, "/x", func(c *gin.Context) {
		Error(c, logger.NewNop(), apperror.InsufficientStock("p1", "Mug", 10, 11))
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(10), data["available"])
	assert.Equal(t, float64(11), data["requested"])
}

func TestError_UnknownErrorIsHidden(t *testing.T) {
	w, body := serve(t, "/x", func(c *gin.Context) {
		Error(c, logger.NewNop(), errors.New("pq: relation does not exist"))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", body["message"])
}

func TestPageParams(t *testing.T) {
	cases := []struct {
		query       string
		page, limit int
	}{
		{"/x", 1, 12},
		{"/x?page=3&limit=5", 3, 5},
		{"/x?page=0&limit=-1", 1, 12},
		{"/x?page=abc&limit=500", 1, 100},
	}
	for _, tc := range cases {
		_, body := serve(t, tc.query, func(c *gin.Context) {
			page, limit := PageParams(c)
			OK(c, gin.H{"page": page, "limit": limit})
		})
		data := body["data"].(map[string]interface{})
		assert.Equal(t, float64(tc.page), data["page"], tc.query)
		assert.Equal(t, float64(tc.limit), data["limit"], tc.query)
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 35)
	assert.Equal(t, 4, p.TotalPages)
	assert.Equal(t, 35, p.TotalItems)

	assert.Equal(t, 0, NewPagination(1, 10, 0).TotalPages)
}
