package models

import "time"

// IndicatorSnapshot is the flat mapping published by the snapshot aggregator:
// indicator name -> scalar, short numeric list, or categorical string.
// Keys are present only when enough history backs them; consumers must treat
// absence as "not computable", never as zero.
type IndicatorSnapshot map[string]any

// Float returns the float value for key if present and of float type.
func (s IndicatorSnapshot) Float(key string) (float64, bool) {
	v, ok := s[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// Str returns the string value for key if present and of string type.
func (s IndicatorSnapshot) Str(key string) (string, bool) {
	v, ok := s[key]
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// Floats returns the float-list value for key if present.
func (s IndicatorSnapshot) Floats(key string) ([]float64, bool) {
	v, ok := s[key]
	if !ok {
		return nil, false
	}
	fs, ok := v.([]float64)
	return fs, ok
}

// StoredSnapshot is a persisted snapshot row keyed by instrument and date.
type StoredSnapshot struct {
	Symbol    string
	Market    string
	Date      time.Time
	Snapshot  IndicatorSnapshot
	CreatedAt time.Time
}
