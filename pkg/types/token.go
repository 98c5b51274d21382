package types

import "time"

// TimestampFormat renders instants the way the API exposes them: UTC,
// millisecond precision, ISO-8601.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Token is the public representation of an issued access token
type Token struct {
	ID        string   `json:"id" yaml:"id"`
	UserID    string   `json:"userId" yaml:"userId"`
	Scopes    []string `json:"scopes" yaml:"scopes"`
	Token     string   `json:"token" yaml:"token"`
	CreatedAt string   `json:"createdAt" yaml:"createdAt"` // ISO-8601
	ExpiresAt string   `json:"expiresAt" yaml:"expiresAt"` // ISO-8601
}

// CreateTokenRequest is the body accepted by POST /api/tokens
type CreateTokenRequest struct {
	UserID           string   `json:"userId"`
	Scopes           []string `json:"scopes"`
	ExpiresInMinutes int      `json:"expiresInMinutes"`
}

// FormatTimestamp converts t to the API timestamp format.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// ParseTimestamp parses a timestamp produced by FormatTimestamp (or any RFC 3339 value).
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
