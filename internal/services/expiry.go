package services

import (
	"math"
	"time"
)

// MaxExpiresInMinutes is the longest lifetime whose duration fits in a
// time.Duration.
const MaxExpiresInMinutes = math.MaxInt64 / int64(time.Minute)

// CalculateExpiresAt returns createdAt advanced by the given number of whole
// minutes. Callers validate that minutes is positive and small enough to fit
// in a time.Duration.
func CalculateExpiresAt(createdAt time.Time, minutes int) time.Time {
	return createdAt.Add(time.Duration(minutes) * time.Minute)
}
