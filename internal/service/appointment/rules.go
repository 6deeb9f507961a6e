package appointment

import (
	"errors"
	"fmt"
	"time"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

var (
	ErrSlotTaken                = errors.New("the practitioner already has an appointment at that date and time")
	ErrNotInFuture              = errors.New("appointment must be later than now")
	ErrCancellationWindowClosed = errors.New("cancellation window closed: appointments can only be cancelled more than 24 hours ahead")
	ErrInvalidTransition        = errors.New("invalid status transition")
)

// CancellationWindow is how far ahead a patient must cancel.
const CancellationWindow = 24 * time.Hour

// SlotTime combines a date and time of day in loc.
func SlotTime(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(validator.DateLayout+" "+validator.TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slot %q %q: %w", date, clock, err)
	}
	return t, nil
}

// HasConflict reports whether a scheduled appointment already holds the
// practitioner's slot. Completed and cancelled appointments never block.
func HasConflict(existing []model.Appointment, staffID, date, clock string) bool {
	for _, a := range existing {
		if a.Status == model.AppointmentStatusScheduled && a.SameSlot(staffID, date, clock) {
			return true
		}
	}
	return false
}

// CanPatientCancel holds while the appointment is scheduled and strictly
// more than CancellationWindow away.
func CanPatientCancel(a model.Appointment, now time.Time, loc *time.Location) bool {
	if a.Status != model.AppointmentStatusScheduled {
		return false
	}
	at, err := SlotTime(a.Date, a.Time, loc)
	if err != nil {
		return false
	}
	return at.Sub(now) > CancellationWindow
}

// transition validates a status change out of scheduled.
func transition(from, to model.AppointmentStatus) error {
	if from != model.AppointmentStatusScheduled {
		return fmt.Errorf("%w: appointment is already %s", ErrInvalidTransition, from)
	}
	switch to {
	case model.AppointmentStatusCompleted, model.AppointmentStatusCancelled:
		return nil
	default:
		return fmt.Errorf("%w: cannot move to %s", ErrInvalidTransition, to)
	}
}
