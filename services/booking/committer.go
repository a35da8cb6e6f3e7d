package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingRepo "salonflow/database/repository/booking"
	"salonflow/models"
	"salonflow/utils"
)

// BookingCommitter is the single choke point converting a chosen slot into a
// persisted booking. All booking writes — conversational flow and waitlist
// offers alike — go through Commit.
type BookingCommitter interface {
	Commit(ctx context.Context, salonID, customerID, attemptID string, slot models.SlotCandidate) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID string) (*models.Booking, error)
}

// DefaultBookingCommitter implements BookingCommitter over the transactional
// booking repository.
type DefaultBookingCommitter struct {
	Repo bookingRepo.BookingRepository
}

// Commit persists the booking under the repository's transactional guard.
// Repeated commits with the same attemptID return the original booking. A
// lost race surfaces as a slotConflict flow error, distinguishable from
// infrastructure failure.
func (c *DefaultBookingCommitter) Commit(ctx context.Context, salonID, customerID, attemptID string, slot models.SlotCandidate) (*models.Booking, error) {
	logger := utils.GetLogger()

	record := models.Booking{
		ID:         uuid.New().String(),
		AttemptID:  attemptID,
		SalonID:    salonID,
		CustomerID: customerID,
		ServiceID:  slot.ServiceID,
		StaffID:    slot.StaffID,
		StaffName:  slot.StaffName,
		Date:       slot.Date,
		Start:      slot.Start,
		End:        slot.End,
		Price:      slot.Price,
		Status:     models.BookingStatusConfirmed,
		CreatedAt:  time.Now(),
	}

	if err := c.Repo.CreateBookingTransactionally(ctx, &record); err != nil {
		if err == bookingRepo.ErrSlotTaken {
			logger.Info("booking commit lost race",
				zap.String("staffId", slot.StaffID),
				zap.String("date", slot.Date),
				zap.Int("start", slot.Start))
			return nil, NewFlowError(CodeSlotConflict, "slot was booked by someone else")
		}
		logger.Error("booking commit failed", zap.Error(err))
		return nil, NewFlowError(CodeInfrastructure, "failed to persist booking")
	}

	logger.Info("booking committed",
		zap.String("bookingId", record.ID),
		zap.String("customerId", customerID),
		zap.String("staffId", record.StaffID),
		zap.String("date", record.Date))
	return &record, nil
}

// Cancel marks an existing booking cancelled and returns the record so the
// caller can release the freed slot to the waitlist.
func (c *DefaultBookingCommitter) Cancel(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := c.Repo.CancelBooking(ctx, bookingID)
	if err != nil {
		return nil, NewFlowError(CodeInfrastructure, "failed to cancel booking")
	}
	return booking, nil
}
