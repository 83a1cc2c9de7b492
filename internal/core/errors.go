package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is the parent of every draft validation failure.
	ErrValidation = errors.New("purchase: validation failed")
	// ErrMissingRequiredField indicates supplier, type, quantity or rate was left blank.
	ErrMissingRequiredField = errors.New("purchase: missing required field")
	// ErrInvalidNumber indicates a numeric field could not be parsed or is out of range.
	ErrInvalidNumber = errors.New("purchase: invalid number")
	// ErrDuplicateContainer indicates the container number is already in use.
	ErrDuplicateContainer = errors.New("purchase: duplicate container number")
	// ErrDuplicatePurchase indicates a purchase with the same id was already saved.
	ErrDuplicatePurchase = errors.New("purchase: already saved")
	// ErrUnbalancedVoucher indicates debits != credits.
	ErrUnbalancedVoucher = errors.New("journal: voucher does not balance")
	// ErrVoucherNotFound indicates no entries exist for a voucher id.
	ErrVoucherNotFound = errors.New("journal: voucher not found")
	// ErrAlreadyReversed indicates a reversal voucher already exists.
	ErrAlreadyReversed = errors.New("journal: voucher already reversed")
	// ErrDuplicateEntry indicates a journal entry id is already stored.
	ErrDuplicateEntry = errors.New("journal: duplicate entry id")
)

// Field failure reasons.
const (
	ReasonRequired = "required"
	ReasonInvalid  = "invalid number"
	ReasonUnknown  = "unknown"
)

// FieldError describes one rejected draft field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every rejected field of a draft.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	var missing, other []string
	for _, f := range e.Fields {
		if f.Reason == ReasonRequired {
			missing = append(missing, f.Field)
			continue
		}
		other = append(other, fmt.Sprintf("%s: %s", f.Field, f.Reason))
	}
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(missing, ", "))
	}
	if len(other) > 0 {
		parts = append(parts, strings.Join(other, "; "))
	}
	return "purchase validation failed: " + strings.Join(parts, "; ")
}

// Is matches ErrValidation always, and ErrMissingRequiredField / ErrInvalidNumber
// when at least one field failed for that reason.
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrValidation:
		return true
	case ErrMissingRequiredField:
		return e.has(ReasonRequired)
	case ErrInvalidNumber:
		return e.has(ReasonInvalid) || e.has(ReasonNotPositive)
	}
	return false
}

// MissingFields returns the names of the fields that were left blank.
func (e *ValidationError) MissingFields() []string {
	var out []string
	for _, f := range e.Fields {
		if f.Reason == ReasonRequired {
			out = append(out, f.Field)
		}
	}
	return out
}

func (e *ValidationError) has(reason string) bool {
	for _, f := range e.Fields {
		if f.Reason == reason {
			return true
		}
	}
	return false
}

func (e *ValidationError) add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// DuplicateContainerError names the container number that is already in use,
// as the user typed it.
type DuplicateContainerError struct {
	Value string
}

func (e *DuplicateContainerError) Error() string {
	return fmt.Sprintf("DUPLICATE CONTAINER: the container number %q is already in use", e.Value)
}

func (e *DuplicateContainerError) Is(target error) bool {
	return target == ErrDuplicateContainer
}
