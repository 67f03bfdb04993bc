// Package errs defines the error kinds shared across the collector.
//
// ConfigurationError and DataFetchError are real error values. Validation
// warnings are plain values that get collected and logged; processing
// continues after them.
package errs

import (
	"errors"
	"fmt"
)

// ConfigurationError reports invalid startup input or invalid weight data.
// It is fatal before a session starts.
type ConfigurationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Configuration builds a ConfigurationError.
func Configuration(field, value, reason string) error {
	return &ConfigurationError{Field: field, Value: value, Reason: reason}
}

// IsConfiguration reports whether err is or wraps a ConfigurationError.
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// DataFetchError wraps a network or parse failure from a data provider.
type DataFetchError struct {
	Source string
	Err    error
}

func (e *DataFetchError) Error() string {
	return fmt.Sprintf("fetch from %s failed: %v", e.Source, e.Err)
}

func (e *DataFetchError) Unwrap() error {
	return e.Err
}

// DataFetch wraps err as a DataFetchError. A nil err stays nil and an
// existing DataFetchError is returned unchanged.
func DataFetch(source string, err error) error {
	if err == nil {
		return nil
	}
	var existing *DataFetchError
	if errors.As(err, &existing) {
		return err
	}
	return &DataFetchError{Source: source, Err: err}
}

// IsDataFetch reports whether err is or wraps a DataFetchError.
func IsDataFetch(err error) bool {
	var target *DataFetchError
	return errors.As(err, &target)
}

// WarningKind classifies a ValidationWarning.
type WarningKind string

const (
	// WarnUnresolvedCard marks a deck entry whose card is not in the catalog.
	WarnUnresolvedCard WarningKind = "unresolved_card"
	// WarnNotLegal marks a deck entry whose card is not legal in the format.
	WarnNotLegal WarningKind = "not_legal"
	// WarnInvalidQuantity marks an entry with a quantity out of range.
	WarnInvalidQuantity WarningKind = "invalid_quantity"
	// WarnDuplicateEntry marks a repeated collection entry for one identity.
	WarnDuplicateEntry WarningKind = "duplicate_entry"
	// WarnDuplicateCard marks a catalog card seen more than once.
	WarnDuplicateCard WarningKind = "duplicate_card"
)

// ValidationWarning is a non-fatal data problem found during ingestion.
type ValidationWarning struct {
	Kind    WarningKind
	Subject string
	Message string
}

func (w ValidationWarning) String() string {
	return fmt.Sprintf("%s: %s (%s)", w.Kind, w.Subject, w.Message)
}
