package notification

import (
	"context"

	"salonflow/models"
)

// NotificationService is the outbound transport boundary. Real deployments
// plug a messaging channel in here; the core only depends on this interface.
type NotificationService interface {
	// SendWaitlistOffer delivers a time-boxed offer for a freed slot.
	SendWaitlistOffer(ctx context.Context, customerID string, entry models.WaitlistEntry, slot models.SlotCandidate) error
	// SendOfferLost tells a customer their offered slot was booked away,
	// with fresh alternatives when any exist.
	SendOfferLost(ctx context.Context, customerID string, alternatives []models.RankedSlot) error
	// SendOfferExpired tells a customer their offer window lapsed.
	SendOfferExpired(ctx context.Context, customerID string, entry models.WaitlistEntry) error
	// SendBookingConfirmed delivers the booking confirmation.
	SendBookingConfirmed(ctx context.Context, customerID string, booking models.Booking) error
}
