package waitlist

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	waitlistRepo "salonflow/database/repository/waitlist"
	"salonflow/models"
	"salonflow/utils"
)

// QueueService manages the durable FIFO queues, one per
// (salon, service, optional staff) grouping.
type QueueService interface {
	Enqueue(ctx context.Context, salonID, customerID string, intent models.BookingIntent) (*models.WaitlistEntry, error)
	Status(ctx context.Context, customerID string) ([]models.WaitlistEntry, error)
}

// DefaultQueueService implements QueueService.
type DefaultQueueService struct {
	Repo waitlistRepo.WaitlistRepository
}

// Enqueue appends the customer to the tail of the grouping's FIFO. Position
// is assigned by a recount of active entries ahead.
func (s *DefaultQueueService) Enqueue(ctx context.Context, salonID, customerID string, intent models.BookingIntent) (*models.WaitlistEntry, error) {
	entry := &models.WaitlistEntry{
		ID:            uuid.New().String(),
		SalonID:       salonID,
		CustomerID:    customerID,
		ServiceID:     intent.ServiceID,
		StaffID:       intent.StaffID,
		PreferredDate: intent.PreferredDate,
		Status:        models.WaitlistActive,
		CreatedAt:     time.Now(),
	}
	if intent.HasTime {
		entry.PreferredTime = intent.PreferredTime
	}

	if err := s.Repo.Enqueue(ctx, entry); err != nil {
		return nil, err
	}

	utils.GetLogger().Info("waitlist enqueued",
		zap.String("entryId", entry.ID),
		zap.String("customerId", customerID),
		zap.String("serviceId", intent.ServiceID),
		zap.String("staffId", intent.StaffID),
		zap.Int("position", entry.PositionInQueue))
	return entry, nil
}

// Status returns the customer's live entries with freshly recounted
// positions.
func (s *DefaultQueueService) Status(ctx context.Context, customerID string) ([]models.WaitlistEntry, error) {
	entries, err := s.Repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Status != models.WaitlistActive {
			continue
		}
		ahead, err := s.Repo.CountActiveAhead(ctx, entries[i].Group(), entries[i].CreatedAt)
		if err != nil {
			return nil, err
		}
		entries[i].PositionInQueue = ahead + 1
	}
	return entries, nil
}
