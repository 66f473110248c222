package helpers

import "time"

// StringOrDefault returns the pointed-to string, or defaultValue when the
// pointer is nil. Used when mapping source payloads whose optional fields
// arrive as null or are missing entirely.
func StringOrDefault(s *string, defaultValue string) string {
	if s == nil {
		return defaultValue
	}
	return *s
}

// StrPtr returns a pointer to the given string.
func StrPtr(s string) *string {
	return &s
}

// Float64Ptr returns a pointer to the given float64.
func Float64Ptr(f float64) *float64 {
	return &f
}

// TimePtr returns a pointer to the given time.
func TimePtr(t time.Time) *time.Time {
	return &t
}
