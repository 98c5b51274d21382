package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateExpiresAt(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		minutes int
		want    time.Time
	}{
		{"one minute", 1, time.Date(2025, 1, 1, 10, 1, 0, 0, time.UTC)},
		{"one hour", 60, time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC)},
		{"crosses midnight", 14*60 + 30, time.Date(2025, 1, 2, 0, 30, 0, 0, time.UTC)},
		{"one year", 525600, time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateExpiresAt(base, tt.minutes)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestCalculateExpiresAt_ExactMillisecondArithmetic(t *testing.T) {
	base := time.UnixMilli(1735725600123).UTC()

	got := CalculateExpiresAt(base, 7)

	assert.Equal(t, int64(1735725600123+7*60_000), got.UnixMilli())
	assert.True(t, got.After(base))
}

func TestCalculateExpiresAt_DoesNotMutateInput(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	before := base

	first := CalculateExpiresAt(base, 5)
	second := CalculateExpiresAt(base, 5)

	assert.Equal(t, before, base)
	assert.True(t, first.Equal(second))
}

func TestCalculateExpiresAt_LargestAllowedValue(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	got := CalculateExpiresAt(base, int(MaxExpiresInMinutes))

	assert.True(t, got.After(base))
}
