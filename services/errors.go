package services

import "errors"

// Booking rejections. Callers surface all of them as one generic failure;
// the distinction is kept for logs and tests.
var (
	ErrInvalidTableID   = errors.New("table id is not a number")
	ErrInvalidPartySize = errors.New("party size must be a positive number")
	ErrInvalidSlot      = errors.New("date/time does not match YYYY-MM-DD HH:MM")
	ErrMissingContact   = errors.New("name and email are required")
	ErrContactTooLong   = errors.New("contact field too long")
	ErrUnknownTable     = errors.New("table does not exist")
	ErrSlotConflict     = errors.New("table already reserved within 5 hours")
)

var rejections = []error{
	ErrInvalidTableID,
	ErrInvalidPartySize,
	ErrInvalidSlot,
	ErrMissingContact,
	ErrContactTooLong,
	ErrUnknownTable,
	ErrSlotConflict,
}

// IsBookingRejected reports whether err is a validation or conflict
// rejection rather than an infrastructure failure.
func IsBookingRejected(err error) bool {
	for _, target := range rejections {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
