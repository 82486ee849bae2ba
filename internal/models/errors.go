// Package models defines the data structures for the income recommendation engine.
package models

import (
	"errors"
)

// Common errors
var (
	ErrClientNotFound     = errors.New("client not found")
	ErrMissingClientID    = errors.New("feature row has no client id")
	ErrInvalidIncomeTier  = errors.New("invalid income tier")
	ErrModelUnavailable   = errors.New("model server unavailable")
	ErrEmptyFeatureUpload = errors.New("feature upload contains no rows")
)
