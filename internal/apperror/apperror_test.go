package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStatusCode(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:        http.StatusBadRequest,
		KindNotFound:          http.StatusNotFound,
		KindInsufficientStock: http.StatusBadRequest,
		KindInvalidState:      http.StatusBadRequest,
		KindUnauthorized:      http.StatusUnauthorized,
		KindForbidden:         http.StatusForbidden,
		KindAlreadyUsed:       http.StatusBadRequest,
		KindConflict:          http.StatusConflict,
		KindPersistence:       http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.StatusCode(), kind.String())
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("placing order: %w", NotFound("product %s not found", "p1"))

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(errors.New("plain"), KindNotFound))
}

func TestInsufficientStock_CarriesQuantities(t *testing.T) {
	err := InsufficientStock("p1", "Mug", 10, 11)

	var se *StockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 10, se.Available)
	assert.Equal(t, 11, se.Requested)
	assert.Equal(t, "insufficient stock for Mug: available 10, requested 11", err.Message)
	assert.Equal(t, "insufficient stock for Mug: available 10, requested 11", err.Error())
}

func TestPersistence_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Persistence(cause, "failed to save order")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindPersistence, err.Kind)
}
