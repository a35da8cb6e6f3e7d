package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	bookingRepo "salonflow/database/repository/booking"
	"salonflow/models"
)

// fakeCatalog is an in-memory catalog for tests.
type fakeCatalog struct {
	services map[string]models.Service
	staff    map[string]models.Staff
}

func (f *fakeCatalog) GetServiceByID(_ context.Context, serviceID string) (*models.Service, error) {
	svc, ok := f.services[serviceID]
	if !ok {
		return nil, errors.New("service not found")
	}
	return &svc, nil
}

func (f *fakeCatalog) ListServices(_ context.Context, salonID string) ([]models.Service, error) {
	var out []models.Service
	for _, svc := range f.services {
		if svc.SalonID == salonID && svc.Active {
			out = append(out, svc)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetStaffByID(_ context.Context, staffID string) (*models.Staff, error) {
	st, ok := f.staff[staffID]
	if !ok {
		return nil, errors.New("staff not found")
	}
	return &st, nil
}

func (f *fakeCatalog) ListQualifiedStaff(_ context.Context, salonID, serviceID string) ([]models.Staff, error) {
	var out []models.Staff
	for _, st := range f.staff {
		if st.SalonID == salonID && st.Active && st.QualifiedFor(serviceID) {
			out = append(out, st)
		}
	}
	return out, nil
}

// fakeBookingRepo mirrors the transactional repository's semantics in memory:
// overlap checks and attempt-id dedupe happen under one mutex, so concurrent
// commits serialize the way the Mongo transaction does.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings []models.Booking
}

func (f *fakeBookingRepo) ListForStaffDay(_ context.Context, staffID, date string) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.bookings {
		if b.StaffID == staffID && b.Date == date && b.Status == models.BookingStatusConfirmed {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) FindByAttemptID(_ context.Context, attemptID string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.bookings {
		if f.bookings[i].AttemptID == attemptID {
			b := f.bookings[i]
			return &b, nil
		}
	}
	return nil, nil
}

func (f *fakeBookingRepo) CreateBookingTransactionally(_ context.Context, booking *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.bookings {
		if f.bookings[i].AttemptID == booking.AttemptID {
			*booking = f.bookings[i]
			return nil
		}
	}
	for _, b := range f.bookings {
		if b.Status != models.BookingStatusConfirmed {
			continue
		}
		if b.StaffID == booking.StaffID && b.Date == booking.Date &&
			booking.Start < b.End && booking.End > b.Start {
			return bookingRepo.ErrSlotTaken
		}
	}
	f.bookings = append(f.bookings, *booking)
	return nil
}

func (f *fakeBookingRepo) CancelBooking(_ context.Context, bookingID string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.bookings {
		if f.bookings[i].ID == bookingID {
			f.bookings[i].Status = models.BookingStatusCancelled
			b := f.bookings[i]
			return &b, nil
		}
	}
	return nil, errors.New("booking not found")
}

func allWeekHours(start, end int) map[int]models.DayHours {
	hours := make(map[int]models.DayHours, 7)
	for d := 0; d < 7; d++ {
		hours[d] = models.DayHours{Start: start, End: end}
	}
	return hours
}

func fixedNow() time.Time {
	// A Monday morning, well before opening.
	return time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
}
