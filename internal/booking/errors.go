package booking

import (
	"errors"
	"fmt"
)

var (
	ErrMissingFields    = errors.New("equipment/task and password are required")
	ErrScheduleConflict = errors.New("schedule conflict")
	ErrNotFound         = errors.New("reservation not found")
	ErrWrongPassword    = errors.New("wrong password")
	ErrNotEditable      = errors.New("reservation is outside the edit window")
	ErrDuplicateID      = errors.New("reservation id already exists, retry")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("reservation store unavailable")
)

// ConflictError reports the approved reservation a candidate collides with.
type ConflictError struct {
	Conflict Reservation
}

func (e *ConflictError) Error() string {
	return ConflictDescription(e.Conflict)
}

func (e *ConflictError) Unwrap() error {
	return ErrScheduleConflict
}

// ConflictDescription describes an existing reservation for display next to a rejected request.
func ConflictDescription(r Reservation) string {
	start, end := r.Slot().Interval()
	return fmt.Sprintf("schedule conflict: [%s] %s ~ %s", r.EquipmentTask, start.Format("15:04"), end.Format("15:04"))
}
