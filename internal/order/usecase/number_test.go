package usecase

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderNumber(t *testing.T) {
	at := time.UnixMilli(1735689600000)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		n, err := newOrderNumber("ORD", at)
		require.NoError(t, err)

		parts := strings.Split(n, "-")
		require.Len(t, parts, 3)
		assert.Equal(t, "ORD", parts[0])

		millis, err := strconv.ParseInt(strings.ToLower(parts[1]), 36, 64)
		require.NoError(t, err)
		assert.Equal(t, at.UnixMilli(), millis)

		require.Len(t, parts[2], numberSuffixLen)
		for _, r := range parts[2] {
			assert.Contains(t, numberAlphabet, string(r))
		}
		seen[n] = true
	}
	assert.Greater(t, len(seen), 1)
}
