package waitlist

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// TypeOfferExpire is the delayed task fired at an offer's expiry time.
const TypeOfferExpire = "waitlist:offer_expire"

// OfferExpirePayload identifies the entry whose offer window is ending.
type OfferExpirePayload struct {
	EntryID string `json:"entryId"`
}

// NewOfferExpireTask builds the delayed expiry-check task.
func NewOfferExpireTask(entryID string, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(OfferExpirePayload{EntryID: entryID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeOfferExpire, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}
	return task, opts, nil
}

// ExpiryScheduler schedules the expiry check for a notified entry. The
// notify path returns immediately after scheduling; nothing blocks for the
// offer window.
type ExpiryScheduler interface {
	ScheduleExpiry(ctx context.Context, entryID string, at time.Time) error
}

// AsynqExpiryScheduler enqueues the expiry task on the asynq client.
type AsynqExpiryScheduler struct {
	Client *asynq.Client
}

func (s *AsynqExpiryScheduler) ScheduleExpiry(ctx context.Context, entryID string, at time.Time) error {
	task, opts, err := NewOfferExpireTask(entryID, at)
	if err != nil {
		return err
	}
	_, err = s.Client.EnqueueContext(ctx, task, opts...)
	return err
}
