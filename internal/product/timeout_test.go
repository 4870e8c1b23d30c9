package product

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  time.Duration
	}{
		{"bare seconds", "3600", time.Hour},
		{"single digit", "5", 5 * time.Second},
		{"seconds", "45s", 45 * time.Second},
		{"minutes", "30m", 30 * time.Minute},
		{"hours", "2h", 2 * time.Hour},
		{"uppercase unit", "10M", 10 * time.Minute},
		{"trailing text after unit", "10sec", 10 * time.Second},
		{"zero", "0s", 0},
		{"surrounding spaces", " 15m ", 15 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseTimeout(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTimeout_UnitMultipliers(t *testing.T) {
	t.Parallel()

	for _, n := range []int64{0, 1, 7, 59, 60, 1000} {
		s, err := ParseTimeout(fmt.Sprintf("%ds", n))
		require.NoError(t, err)
		assert.Equal(t, n, int64(s/time.Second))

		m, err := ParseTimeout(fmt.Sprintf("%dm", n))
		require.NoError(t, err)
		assert.Equal(t, n*60, int64(m/time.Second))

		h, err := ParseTimeout(fmt.Sprintf("%dh", n))
		require.NoError(t, err)
		assert.Equal(t, n*3600, int64(h/time.Second))

		bare, err := ParseTimeout(fmt.Sprintf("%d", n))
		require.NoError(t, err)
		assert.Equal(t, n, int64(bare/time.Second))
	}
}

func TestParseTimeout_Invalid(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"abc", "", "10x", "1d", "-5", "m10", "99999999999999999999"} {
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			_, err := ParseTimeout(input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTimeoutFormat)
		})
	}
}
