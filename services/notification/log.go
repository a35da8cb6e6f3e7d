package notification

import (
	"context"

	"go.uber.org/zap"

	"salonflow/models"
	"salonflow/utils"
)

// LogNotificationService is the development implementation: it logs instead
// of delivering. Useful in tests and local runs.
type LogNotificationService struct{}

func (s *LogNotificationService) SendWaitlistOffer(_ context.Context, customerID string, entry models.WaitlistEntry, slot models.SlotCandidate) error {
	utils.GetLogger().Info("waitlist offer",
		zap.String("customerId", customerID),
		zap.String("entryId", entry.ID),
		zap.String("slotId", slot.ID),
		zap.String("date", slot.Date),
		zap.Int("start", slot.Start))
	return nil
}

func (s *LogNotificationService) SendOfferLost(_ context.Context, customerID string, alternatives []models.RankedSlot) error {
	utils.GetLogger().Info("waitlist offer lost",
		zap.String("customerId", customerID),
		zap.Int("alternatives", len(alternatives)))
	return nil
}

func (s *LogNotificationService) SendOfferExpired(_ context.Context, customerID string, entry models.WaitlistEntry) error {
	utils.GetLogger().Info("waitlist offer expired",
		zap.String("customerId", customerID),
		zap.String("entryId", entry.ID))
	return nil
}

func (s *LogNotificationService) SendBookingConfirmed(_ context.Context, customerID string, booking models.Booking) error {
	utils.GetLogger().Info("booking confirmed notification",
		zap.String("customerId", customerID),
		zap.String("bookingId", booking.ID))
	return nil
}
