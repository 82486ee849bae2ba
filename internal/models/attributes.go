// Package models defines the data structures for the income recommendation engine.
package models

import (
	"math"
	"strings"
)

// ClientAttributes is the raw feature map for a single client as delivered by
// the feature store. The schema is owned by the store; the engine only reads
// the subset of keys it needs through the typed accessors below.
type ClientAttributes map[string]interface{}

// IsMissingValue reports whether a raw attribute value counts as missing.
// Absent keys, nil, NaN and the literal strings "nan"/"none"/"" are all
// treated identically so that sparse feature exports never break scoring.
func IsMissingValue(value interface{}) bool {
	if value == nil {
		return true
	}

	switch v := value.(type) {
	case float64:
		return math.IsNaN(v)
	case float32:
		return math.IsNaN(float64(v))
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "nan", "none":
			return true
		}
	}

	return false
}

// Numeric returns the attribute as a float64. The second return value is
// false when the attribute is missing or not a number.
func (a ClientAttributes) Numeric(key string) (float64, bool) {
	value, ok := a[key]
	if !ok || IsMissingValue(value) {
		return 0, false
	}

	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}

	return 0, false
}

// NumericOr returns the attribute as a float64, or the default when the
// attribute is missing or non-numeric.
func (a ClientAttributes) NumericOr(key string, defaultValue float64) float64 {
	if v, ok := a.Numeric(key); ok {
		return v
	}
	return defaultValue
}

// Categorical returns the attribute as a string. The second return value is
// false when the attribute is missing or not a string.
func (a ClientAttributes) Categorical(key string) (string, bool) {
	value, ok := a[key]
	if !ok || IsMissingValue(value) {
		return "", false
	}

	if s, ok := value.(string); ok {
		return strings.TrimSpace(s), true
	}

	return "", false
}

// CategoricalOr returns the attribute as a string, or the default when the
// attribute is missing or non-categorical.
func (a ClientAttributes) CategoricalOr(key string, defaultValue string) string {
	if v, ok := a.Categorical(key); ok {
		return v
	}
	return defaultValue
}

// ID returns the client identifier carried inside the feature map, or 0 when
// it is absent.
func (a ClientAttributes) ID() int64 {
	if v, ok := a.Numeric("id"); ok {
		return int64(v)
	}
	return 0
}

// Sanitized returns a copy of the attributes with every missing value
// normalized to nil. Used when shipping features to the model server, which
// expects explicit nulls rather than the string variants of "missing".
func (a ClientAttributes) Sanitized() ClientAttributes {
	out := make(ClientAttributes, len(a))
	for key, value := range a {
		if IsMissingValue(value) {
			out[key] = nil
			continue
		}
		out[key] = value
	}
	return out
}
