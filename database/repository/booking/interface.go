package bookingRepo

import (
	"context"
	"errors"

	"salonflow/models"
)

// ErrSlotTaken is returned by CreateBookingTransactionally when the target
// staff+time window already holds an overlapping confirmed booking. Callers
// use it to distinguish a lost race from infrastructure failure.
var ErrSlotTaken = errors.New("slot already booked")

// BookingRepository defines data access for confirmed bookings.
type BookingRepository interface {
	// ListForStaffDay retrieves confirmed bookings for a staff member on a date.
	ListForStaffDay(ctx context.Context, staffID, date string) ([]models.Booking, error)
	// FindByAttemptID retrieves the booking created for a booking-attempt id, if any.
	FindByAttemptID(ctx context.Context, attemptID string) (*models.Booking, error)
	// CreateBookingTransactionally persists the booking inside a transaction
	// that serializes commits per staff+time window. Returns ErrSlotTaken when
	// an overlapping confirmed booking already exists.
	CreateBookingTransactionally(ctx context.Context, booking *models.Booking) error
	// CancelBooking marks a booking cancelled and returns the cancelled record.
	CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error)
}
