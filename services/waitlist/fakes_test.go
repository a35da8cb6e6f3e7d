package waitlist

import (
	"context"
	"errors"
	"sync"
	"time"

	waitlistRepo "salonflow/database/repository/waitlist"
	"salonflow/models"
	"salonflow/services/booking"
)

// memWaitlistRepo reproduces the Mongo repository's atomic semantics under a
// single mutex: head pops and status transitions are compare-and-swap.
type memWaitlistRepo struct {
	mu      sync.Mutex
	entries []*models.WaitlistEntry
}

func (r *memWaitlistRepo) Enqueue(_ context.Context, entry *models.WaitlistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ahead := 0
	for _, e := range r.entries {
		if e.Group() == entry.Group() && e.Status == models.WaitlistActive && e.CreatedAt.Before(entry.CreatedAt) {
			ahead++
		}
	}
	entry.PositionInQueue = ahead + 1
	copied := *entry
	r.entries = append(r.entries, &copied)
	return nil
}

func (r *memWaitlistRepo) GetByID(_ context.Context, entryID string) (*models.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == entryID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, errors.New("waitlist entry not found")
}

func (r *memWaitlistRepo) ListByCustomer(_ context.Context, customerID string) ([]models.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.WaitlistEntry
	for _, e := range r.entries {
		if e.CustomerID != customerID {
			continue
		}
		if e.Status == models.WaitlistActive || e.Status == models.WaitlistNotified {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *memWaitlistRepo) PopHeadToNotified(_ context.Context, group models.WaitlistGroup, offeredSlotID string, expiresAt time.Time) (*models.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var head *models.WaitlistEntry
	for _, e := range r.entries {
		if e.Group() != group || e.Status != models.WaitlistActive {
			continue
		}
		if head == nil || e.CreatedAt.Before(head.CreatedAt) {
			head = e
		}
	}
	if head == nil {
		return nil, nil
	}
	now := time.Now()
	head.Status = models.WaitlistNotified
	head.OfferedSlotID = offeredSlotID
	head.NotifiedAt = &now
	head.ExpiresAt = &expiresAt
	copied := *head
	return &copied, nil
}

func (r *memWaitlistRepo) Transition(_ context.Context, entryID, from, to string) (*models.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID != entryID {
			continue
		}
		if e.Status != from {
			return nil, waitlistRepo.ErrStatusConflict
		}
		e.Status = to
		copied := *e
		return &copied, nil
	}
	return nil, errors.New("waitlist entry not found")
}

func (r *memWaitlistRepo) CountActiveAhead(_ context.Context, group models.WaitlistGroup, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.Group() == group && e.Status == models.WaitlistActive && e.CreatedAt.Before(before) {
			n++
		}
	}
	return n, nil
}

func (r *memWaitlistRepo) status(entryID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == entryID {
			return e.Status
		}
	}
	return ""
}

// memCatalog backs buildSlot lookups.
type memCatalog struct {
	services map[string]models.Service
	staff    map[string]models.Staff
}

func (c *memCatalog) GetServiceByID(_ context.Context, serviceID string) (*models.Service, error) {
	svc, ok := c.services[serviceID]
	if !ok {
		return nil, errors.New("service not found")
	}
	return &svc, nil
}

func (c *memCatalog) ListServices(_ context.Context, salonID string) ([]models.Service, error) {
	var out []models.Service
	for _, svc := range c.services {
		if svc.SalonID == salonID && svc.Active {
			out = append(out, svc)
		}
	}
	return out, nil
}

func (c *memCatalog) GetStaffByID(_ context.Context, staffID string) (*models.Staff, error) {
	st, ok := c.staff[staffID]
	if !ok {
		return nil, errors.New("staff not found")
	}
	return &st, nil
}

func (c *memCatalog) ListQualifiedStaff(_ context.Context, salonID, serviceID string) ([]models.Staff, error) {
	var out []models.Staff
	for _, st := range c.staff {
		if st.SalonID == salonID && st.Active && st.QualifiedFor(serviceID) {
			out = append(out, st)
		}
	}
	return out, nil
}

// scriptedCommitter lets tests force a lost race.
type scriptedCommitter struct {
	mu       sync.Mutex
	conflict bool
	commits  []string // attempt ids, in order
}

func (c *scriptedCommitter) Commit(_ context.Context, salonID, customerID, attemptID string, slot models.SlotCandidate) (*models.Booking, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conflict {
		return nil, booking.NewFlowError(booking.CodeSlotConflict, "slot was booked by someone else")
	}
	c.commits = append(c.commits, attemptID)
	return &models.Booking{
		ID: "bk-" + attemptID, AttemptID: attemptID, SalonID: salonID, CustomerID: customerID,
		ServiceID: slot.ServiceID, StaffID: slot.StaffID, StaffName: slot.StaffName,
		Date: slot.Date, Start: slot.Start, End: slot.End,
		Status: models.BookingStatusConfirmed, CreatedAt: time.Now(),
	}, nil
}

func (c *scriptedCommitter) Cancel(_ context.Context, bookingID string) (*models.Booking, error) {
	return nil, errors.New("not supported in tests")
}

// scriptedSlotFinder feeds informLoss and offerFreshSlot.
type scriptedSlotFinder struct {
	result *models.SlotSearchResult
}

func (f *scriptedSlotFinder) FindSlots(_ context.Context, _ string, _ models.BookingIntent, _ int) (*models.SlotSearchResult, error) {
	if f.result == nil {
		return &models.SlotSearchResult{Exhausted: true}, nil
	}
	return f.result, nil
}

// recordingScheduler records expiry schedules instead of enqueueing tasks.
type recordingScheduler struct {
	mu        sync.Mutex
	scheduled []string
}

func (s *recordingScheduler) ScheduleExpiry(_ context.Context, entryID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled = append(s.scheduled, entryID)
	return nil
}

// recordingNotifications records outbound sends per kind.
type recordingNotifications struct {
	mu        sync.Mutex
	offers    []string // customer ids, in dispatch order
	lost      []string
	expired   []string
	confirmed []string
}

func (n *recordingNotifications) SendWaitlistOffer(_ context.Context, customerID string, _ models.WaitlistEntry, _ models.SlotCandidate) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.offers = append(n.offers, customerID)
	return nil
}

func (n *recordingNotifications) SendOfferLost(_ context.Context, customerID string, _ []models.RankedSlot) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lost = append(n.lost, customerID)
	return nil
}

func (n *recordingNotifications) SendOfferExpired(_ context.Context, customerID string, _ models.WaitlistEntry) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.expired = append(n.expired, customerID)
	return nil
}

func (n *recordingNotifications) SendBookingConfirmed(_ context.Context, customerID string, _ models.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, customerID)
	return nil
}

func (n *recordingNotifications) offerCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.offers)
}
