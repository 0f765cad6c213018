package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingData    = errors.New("missing data")
	ErrMalformedInput = errors.New("malformed input")
	ErrOutputConflict = errors.New("output conflict")
	ErrConfiguration  = errors.New("configuration error")
	ErrExternal       = errors.New("external service error")
	ErrNotSupported   = errors.New("not supported")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternal
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Skippable reports whether a batch should log the failure and move on to the
// next item instead of aborting.
func Skippable(err error) bool {
	return errors.Is(err, ErrMissingData) || errors.Is(err, ErrMalformedInput)
}

// Statuses recorded in the ledger for each processed item.
const (
	OutcomeCleaned   = "cleaned"
	OutcomeMissing   = "missing"
	OutcomeMalformed = "malformed"
	OutcomeFailed    = "failed"
)

// Outcome maps an item error to the status recorded in the ledger.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeCleaned
	case errors.Is(err, ErrMissingData):
		return OutcomeMissing
	case errors.Is(err, ErrMalformedInput):
		return OutcomeMalformed
	default:
		return OutcomeFailed
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "failure"
	}
	return strings.Join(parts, ": ")
}
