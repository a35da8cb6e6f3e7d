package waitlist

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	catalogRepo "salonflow/database/repository/catalog"
	waitlistRepo "salonflow/database/repository/waitlist"
	"salonflow/models"
	"salonflow/services/booking"
	"salonflow/services/notification"
	"salonflow/utils"
)

// Notifier reacts to freed slots: it offers the head of the matching FIFO a
// time-boxed reservation and advances the queue on pass, timeout, or a lost
// race. Correctness of "at most one booking per released slot" is enforced
// by the BookingCommitter choke point, not by the notifier's bookkeeping.
type Notifier interface {
	// OnSlotReleased is the event hook the booking-cancellation path calls.
	OnSlotReleased(ctx context.Context, salonID, serviceID, staffID, date string, start int) error
	// RespondToOffer handles a customer's book-now or pass on a live offer.
	// Returns the booking on a successful book-now, nil on pass.
	RespondToOffer(ctx context.Context, entryID string, bookNow bool) (*models.Booking, error)
	// HandleExpiry is the scheduled check firing at notificationExpiresAt.
	HandleExpiry(ctx context.Context, entryID string) error
}

// DefaultNotifier implements Notifier.
type DefaultNotifier struct {
	Repo      waitlistRepo.WaitlistRepository
	Catalog   catalogRepo.CatalogRepository
	Committer booking.BookingCommitter
	Finder    booking.SlotFinder
	Ranker    *booking.AlternativeRanker
	Locks     OfferLocker
	Scheduler ExpiryScheduler
	Notify    notification.NotificationService

	OfferWindow time.Duration
	Now         func() time.Time // overridable for tests
}

func (n *DefaultNotifier) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}

func (n *DefaultNotifier) window() time.Duration {
	if n.OfferWindow > 0 {
		return n.OfferWindow
	}
	return 15 * time.Minute
}

// OnSlotReleased offers the freed slot to the head of the staff-specific
// queue first, then the any-staff queue. The per-slot lock ensures that two
// release events racing on overlapping slots issue one offer per concrete
// slot.
func (n *DefaultNotifier) OnSlotReleased(ctx context.Context, salonID, serviceID, staffID, date string, start int) error {
	logger := utils.GetLogger()

	slot, err := n.buildSlot(ctx, serviceID, staffID, date, start)
	if err != nil {
		return err
	}

	acquired, err := n.Locks.Acquire(ctx, slot.ID, n.window()+time.Minute)
	if err != nil {
		return fmt.Errorf("failed to acquire offer lock: %w", err)
	}
	if !acquired {
		logger.Debug("slot already under a live offer", zap.String("slotId", slot.ID))
		return nil
	}

	groups := []models.WaitlistGroup{
		{SalonID: salonID, ServiceID: serviceID, StaffID: staffID},
		{SalonID: salonID, ServiceID: serviceID, StaffID: ""},
	}
	for _, group := range groups {
		notified, err := n.dispatch(ctx, group, slot)
		if err != nil {
			_ = n.Locks.Release(ctx, slot.ID)
			return err
		}
		if notified {
			return nil
		}
	}

	// Nobody is waiting; the slot goes back to the normal search flow.
	return n.Locks.Release(ctx, slot.ID)
}

// dispatch is the explicit work-queue pop: it keeps taking the head of the
// group until one customer is successfully notified or the queue drains.
// Entries whose notification cannot be delivered after retries are expired
// rather than blocking the queue.
func (n *DefaultNotifier) dispatch(ctx context.Context, group models.WaitlistGroup, slot models.SlotCandidate) (bool, error) {
	logger := utils.GetLogger()

	for {
		expiresAt := n.now().Add(n.window())
		entry, err := n.Repo.PopHeadToNotified(ctx, group, slot.ID, expiresAt)
		if err != nil {
			return false, err
		}
		if entry == nil {
			return false, nil
		}

		if err := retryWithBackoff(3, func() error {
			return n.Scheduler.ScheduleExpiry(ctx, entry.ID, expiresAt)
		}); err != nil {
			logger.Error("failed to schedule offer expiry, skipping entry",
				zap.String("entryId", entry.ID), zap.Error(err))
			n.expireEntry(ctx, entry.ID)
			continue
		}

		if err := retryWithBackoff(3, func() error {
			return n.Notify.SendWaitlistOffer(ctx, entry.CustomerID, *entry, slot)
		}); err != nil {
			logger.Error("failed to deliver waitlist offer, skipping entry",
				zap.String("entryId", entry.ID), zap.Error(err))
			n.expireEntry(ctx, entry.ID)
			continue
		}

		logger.Info("waitlist offer dispatched",
			zap.String("entryId", entry.ID),
			zap.String("customerId", entry.CustomerID),
			zap.String("slotId", slot.ID),
			zap.Time("expiresAt", expiresAt))
		return true, nil
	}
}

// RespondToOffer resolves a live offer. Status moves are compare-and-swap:
// if the expiry task or a duplicate response got there first, the CAS loses
// and the customer gets an "offer no longer active" flow error.
func (n *DefaultNotifier) RespondToOffer(ctx context.Context, entryID string, bookNow bool) (*models.Booking, error) {
	entry, err := n.Repo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != models.WaitlistNotified {
		return nil, booking.NewFlowError(booking.CodeStaleSelection, "offer is no longer active")
	}

	if !bookNow {
		if _, err := n.Repo.Transition(ctx, entryID, models.WaitlistNotified, models.WaitlistPassed); err != nil {
			if err == waitlistRepo.ErrStatusConflict {
				return nil, booking.NewFlowError(booking.CodeStaleSelection, "offer is no longer active")
			}
			return nil, err
		}
		// Pass advances immediately; no waiting out the window.
		n.advance(ctx, *entry)
		return nil, nil
	}

	if entry.ExpiresAt != nil && n.now().After(*entry.ExpiresAt) {
		n.expireEntry(ctx, entryID)
		n.advance(ctx, *entry)
		return nil, booking.NewFlowError(booking.CodeStaleSelection, "offer window has closed")
	}

	slot, err := n.buildSlotFromOffer(ctx, *entry)
	if err != nil {
		return nil, err
	}

	// Defensive re-check happens inside the committer's transactional guard:
	// elapsed time may have let someone book this through the normal flow.
	attemptID := "waitlist:" + entry.ID
	booked, err := n.Committer.Commit(ctx, entry.SalonID, entry.CustomerID, attemptID, slot)
	if err != nil {
		if booking.FlowCode(err) == booking.CodeSlotConflict {
			n.expireEntry(ctx, entryID)
			_ = n.Locks.Release(ctx, slot.ID)
			n.informLoss(ctx, *entry)
			n.offerFreshSlot(ctx, *entry)
			return nil, err
		}
		return nil, err
	}

	if _, err := n.Repo.Transition(ctx, entryID, models.WaitlistNotified, models.WaitlistBooked); err != nil && err != waitlistRepo.ErrStatusConflict {
		utils.GetLogger().Error("failed to mark waitlist entry booked",
			zap.String("entryId", entryID), zap.Error(err))
	}
	_ = n.Locks.Release(ctx, slot.ID)
	if err := n.Notify.SendBookingConfirmed(ctx, entry.CustomerID, *booked); err != nil {
		utils.GetLogger().Warn("failed to send booking confirmation",
			zap.String("customerId", entry.CustomerID), zap.Error(err))
	}
	return booked, nil
}

// HandleExpiry fires at notificationExpiresAt. If the entry is still
// notified it expires, the next entry is offered the same slot, and the
// expired customer is informed asynchronously.
func (n *DefaultNotifier) HandleExpiry(ctx context.Context, entryID string) error {
	entry, err := n.Repo.Transition(ctx, entryID, models.WaitlistNotified, models.WaitlistExpired)
	if err != nil {
		if err == waitlistRepo.ErrStatusConflict {
			// Already booked or passed; nothing to do.
			return nil
		}
		return err
	}

	n.advance(ctx, *entry)

	go func(e models.WaitlistEntry) {
		if err := n.Notify.SendOfferExpired(context.Background(), e.CustomerID, e); err != nil {
			utils.GetLogger().Warn("failed to send offer-expired notice",
				zap.String("customerId", e.CustomerID), zap.Error(err))
		}
	}(*entry)
	return nil
}

// advance re-offers the resolved entry's slot to the next customer in the
// same grouping. The slot lock stays held across the hand-off; it is
// released only when nobody is left waiting.
func (n *DefaultNotifier) advance(ctx context.Context, resolved models.WaitlistEntry) {
	logger := utils.GetLogger()

	slot, err := n.buildSlotFromOffer(ctx, resolved)
	if err != nil {
		logger.Error("failed to rebuild offered slot, releasing lock",
			zap.String("entryId", resolved.ID), zap.Error(err))
		_ = n.Locks.Release(ctx, resolved.OfferedSlotID)
		return
	}

	notified, err := n.dispatch(ctx, resolved.Group(), slot)
	if err != nil {
		logger.Error("failed to advance waitlist", zap.String("entryId", resolved.ID), zap.Error(err))
	}
	if !notified {
		_ = n.Locks.Release(ctx, slot.ID)
	}
}

// offerFreshSlot runs a fresh search for the grouping after a lost race and,
// if an open slot exists, offers it to the next active entry.
func (n *DefaultNotifier) offerFreshSlot(ctx context.Context, resolved models.WaitlistEntry) {
	logger := utils.GetLogger()

	intent := models.BookingIntent{
		ServiceID:     resolved.ServiceID,
		StaffID:       resolved.StaffID,
		PreferredDate: resolved.PreferredDate,
	}
	result, err := n.Finder.FindSlots(ctx, resolved.SalonID, intent, 30)
	if err != nil || len(result.Slots) == 0 {
		return
	}

	slot := result.Slots[0]
	acquired, err := n.Locks.Acquire(ctx, slot.ID, n.window()+time.Minute)
	if err != nil || !acquired {
		return
	}
	notified, err := n.dispatch(ctx, resolved.Group(), slot)
	if err != nil {
		logger.Error("failed to offer fresh slot", zap.Error(err))
	}
	if !notified {
		_ = n.Locks.Release(ctx, slot.ID)
	}
}

// informLoss sends the losing customer fresh alternatives.
func (n *DefaultNotifier) informLoss(ctx context.Context, entry models.WaitlistEntry) {
	intent := models.BookingIntent{
		ServiceID:     entry.ServiceID,
		StaffID:       entry.StaffID,
		PreferredDate: entry.PreferredDate,
	}
	var alternatives []models.RankedSlot
	if result, err := n.Finder.FindSlots(ctx, entry.SalonID, intent, 30); err == nil {
		alternatives = n.Ranker.Rank(result.Slots, intent, n.now())
		if len(alternatives) > 5 {
			alternatives = alternatives[:5]
		}
	}
	if err := n.Notify.SendOfferLost(ctx, entry.CustomerID, alternatives); err != nil {
		utils.GetLogger().Warn("failed to send offer-lost notice",
			zap.String("customerId", entry.CustomerID), zap.Error(err))
	}
}

func (n *DefaultNotifier) expireEntry(ctx context.Context, entryID string) {
	if _, err := n.Repo.Transition(ctx, entryID, models.WaitlistNotified, models.WaitlistExpired); err != nil && err != waitlistRepo.ErrStatusConflict {
		utils.GetLogger().Error("failed to expire waitlist entry",
			zap.String("entryId", entryID), zap.Error(err))
	}
}

// buildSlot resolves a concrete candidate from its coordinates.
func (n *DefaultNotifier) buildSlot(ctx context.Context, serviceID, staffID, date string, start int) (models.SlotCandidate, error) {
	svc, err := n.Catalog.GetServiceByID(ctx, serviceID)
	if err != nil {
		return models.SlotCandidate{}, err
	}
	st, err := n.Catalog.GetStaffByID(ctx, staffID)
	if err != nil {
		return models.SlotCandidate{}, err
	}
	return models.SlotCandidate{
		ID:              models.CandidateID(staffID, date, start),
		ServiceID:       svc.ID,
		StaffID:         st.ID,
		StaffName:       st.Name,
		Date:            date,
		Start:           start,
		End:             start + svc.DurationMinutes,
		DurationMinutes: svc.DurationMinutes,
		Price:           svc.Price,
	}, nil
}

// buildSlotFromOffer rebuilds the concrete slot an entry was offered from
// its stored offer id (staff|date|start).
func (n *DefaultNotifier) buildSlotFromOffer(ctx context.Context, entry models.WaitlistEntry) (models.SlotCandidate, error) {
	parts := strings.SplitN(entry.OfferedSlotID, "|", 3)
	if len(parts) != 3 {
		return models.SlotCandidate{}, fmt.Errorf("malformed offered slot id %q", entry.OfferedSlotID)
	}
	start, err := strconv.Atoi(parts[2])
	if err != nil {
		return models.SlotCandidate{}, fmt.Errorf("malformed offered slot id %q", entry.OfferedSlotID)
	}
	return n.buildSlot(ctx, entry.ServiceID, parts[0], parts[1], start)
}

func retryWithBackoff(attempts int, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
	}
	return err
}
