package waitlistRepo

import (
	"context"
	"errors"
	"time"

	"salonflow/models"
)

// ErrStatusConflict is returned when a compare-and-swap transition finds the
// entry no longer in the expected status. The notifier and the direct booking
// path can both touch an entry; only one writer wins.
var ErrStatusConflict = errors.New("waitlist entry not in expected status")

// WaitlistRepository defines data access for waitlist entries.
type WaitlistRepository interface {
	// Enqueue appends the entry to the tail of its group's FIFO and fills in
	// PositionInQueue from a recount of active entries ahead of it.
	Enqueue(ctx context.Context, entry *models.WaitlistEntry) error
	// GetByID retrieves a waitlist entry.
	GetByID(ctx context.Context, entryID string) (*models.WaitlistEntry, error)
	// ListByCustomer retrieves a customer's non-terminal entries.
	ListByCustomer(ctx context.Context, customerID string) ([]models.WaitlistEntry, error)
	// PopHeadToNotified atomically selects the oldest active entry in the
	// group and transitions it to notified with the offer details. Returns
	// nil (no error) when the group has no active entries.
	PopHeadToNotified(ctx context.Context, group models.WaitlistGroup, offeredSlotID string, expiresAt time.Time) (*models.WaitlistEntry, error)
	// Transition moves an entry from one status to another with a
	// compare-and-swap on the current status. Returns ErrStatusConflict when
	// the entry is not in the expected status.
	Transition(ctx context.Context, entryID, from, to string) (*models.WaitlistEntry, error)
	// CountActiveAhead recounts active entries enqueued before the given
	// creation time within a group (queue position = count + 1).
	CountActiveAhead(ctx context.Context, group models.WaitlistGroup, before time.Time) (int, error)
}
