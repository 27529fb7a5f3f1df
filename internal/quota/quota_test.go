package quota

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewDailyDefaults(t *testing.T) {
	d := NewDaily(0, 0)
	require.Equal(t, DefaultDailyLimit, d.Limit)
	require.Equal(t, 24*time.Hour, d.Window)

	d = NewDaily(6, time.Hour)
	require.Equal(t, 6, d.Limit)
	require.Equal(t, time.Hour, d.Window)
}

func TestRemaining(t *testing.T) {
	d := NewDaily(4, 0)
	require.Equal(t, 4, d.Remaining(0))
	require.Equal(t, 1, d.Remaining(3))
	require.Equal(t, 0, d.Remaining(4))
	require.Equal(t, 0, d.Remaining(9))
	require.Equal(t, 4, d.Remaining(-1))
}

func TestEffective(t *testing.T) {
	d := NewDaily(4, 0)
	tests := []struct {
		name      string
		requested int
		used      int
		want      int
	}{
		{"under quota", 2, 0, 2},
		{"clamped by quota", 3, 2, 2},
		{"quota exhausted", 2, 4, 0},
		{"over ceiling", 2, 7, 0},
		{"zero requested", 0, 0, 0},
		{"negative requested", -1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, d.Effective(tt.requested, tt.used))
		})
	}
}

func TestCheck(t *testing.T) {
	d := NewDaily(2, 0)
	require.NoError(t, d.Check(1))

	err := d.Check(2)
	var limitErr *LimitError
	require.True(t, errors.As(err, &limitErr))
	require.Equal(t, 2, limitErr.Current)
	require.Equal(t, 2, limitErr.Maximum)
	require.Contains(t, err.Error(), "publishes per day")
}
