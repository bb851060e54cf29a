package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextMidnightDelay(t *testing.T) {
	loc := time.FixedZone("SGT", 8*3600)

	cases := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{
			name: "thirty seconds before midnight",
			now:  time.Date(2025, 3, 1, 23, 59, 30, 0, loc),
			want: 30 * time.Second,
		},
		{
			name: "noon",
			now:  time.Date(2025, 3, 1, 12, 0, 0, 0, loc),
			want: 12 * time.Hour,
		},
		{
			name: "exactly midnight waits a full day",
			now:  time.Date(2025, 3, 1, 0, 0, 0, 0, loc),
			want: 24 * time.Hour,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NextMidnightDelay(tc.now))
		})
	}
}

func TestNextMidnightDelayAlwaysPositive(t *testing.T) {
	now := time.Now()
	for i := 0; i < 48; i++ {
		d := NextMidnightDelay(now.Add(time.Duration(i) * 30 * time.Minute))
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 24*time.Hour)
	}
}
