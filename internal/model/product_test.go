package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProductBatchStatusAt(t *testing.T) {
	// Noon on a fixed day; StatusAt compares against the start of that day.
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		expiry time.Time
		want   BatchStatus
	}{
		{"expired yesterday", time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC), BatchExpired},
		{"expires today is not expired", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), BatchExpiringSoon},
		{"expires within a month", time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC), BatchExpiringSoon},
		{"expires exactly one month out", time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC), BatchActive},
		{"expires next year", time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), BatchActive},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := ProductBatch{ExpiryDate: tc.expiry}
			assert.Equal(t, tc.want, b.StatusAt(now))
		})
	}
}
