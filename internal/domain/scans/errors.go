package scans

import "errors"

var (
	// ErrStoreUnavailable marks a transient connectivity failure of the backing store.
	ErrStoreUnavailable = errors.New("scan store unavailable")

	// ErrSchemaMissing indicates the Scans table does not exist.
	ErrSchemaMissing = errors.New("scan store schema missing")

	// ErrEmptyVIN is returned when an intake or record carries no VIN at all.
	ErrEmptyVIN = errors.New("vin is required")

	// ErrNegativeValue rejects a record whose EstimatedValue is below zero.
	ErrNegativeValue = errors.New("estimated value must not be negative")
)
