package booking

import (
	"context"

	"salonflow/models"
)

// IntentParser is the external NLP boundary. Parse may fail; the
// orchestrator treats failure as "ask the customer to rephrase".
type IntentParser interface {
	Parse(ctx context.Context, salonID, rawText string, prior *models.BookingIntent) (*models.BookingIntent, error)
}

// WaitlistEnqueuer is the slice of the waitlist service the orchestrator
// needs when the search horizon is exhausted.
type WaitlistEnqueuer interface {
	Enqueue(ctx context.Context, salonID, customerID string, intent models.BookingIntent) (*models.WaitlistEntry, error)
}

// Orchestrator drives one booking conversation per customer through
// selection, confirmation, and commit.
type Orchestrator interface {
	HandleMessage(ctx context.Context, customerID, salonID, text, language string) *models.UIResponse
	HandleAction(ctx context.Context, customerID, actionType, slotID string) *models.UIResponse
	CancelSession(ctx context.Context, customerID string) error
}
