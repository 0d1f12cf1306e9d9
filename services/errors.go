package services

import "fmt"

// CapacityError is returned when a booking request cannot be satisfied by
// the availability ledger: the date has no slot row, the date is blocked,
// or fewer than the requested number of places remain. Remaining carries
// the actual count left so the caller can surface it.
type CapacityError struct {
	Remaining int
}

func (e *CapacityError) Error() string {
	if e.Remaining <= 0 {
		return "no slots available for this date"
	}
	return fmt.Sprintf("only %d slots available", e.Remaining)
}

// ValidationError reports a guest count outside the allowed range for the
// tour.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
