package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"salonflow/models"
)

// CreateBookingTransactionally runs the read-check-write commit sequence
// inside a single Mongo transaction. A per staff+window lock document is
// inserted first; its unique index forces a second concurrent commit against
// an overlapping window to wait on the write conflict and then observe the
// booking, so at most one commit succeeds per slot.
func (repo *MongoBookingRepo) CreateBookingTransactionally(ctx context.Context, booking *models.Booking) error {
	// Idempotent replay: a repeated confirm for an already-committed attempt
	// returns the original booking instead of a conflict.
	if existing, err := repo.FindByAttemptID(ctx, booking.AttemptID); err == nil && existing != nil {
		*booking = *existing
		return nil
	}

	client := repo.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		// Serialize commits on this staff+window via the lock document.
		lock := bson.M{
			"lock_key":   fmt.Sprintf("%s|%s|%d", booking.StaffID, booking.Date, booking.Start),
			"created_at": time.Now(),
		}
		if _, err := repo.lockColl.InsertOne(sc, lock); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrSlotTaken
			}
			return fmt.Errorf("insert booking lock failed: %w", err)
		}

		// Re-check for overlap now that the lock is held.
		overlap := bson.M{
			"staff_id": booking.StaffID,
			"date":     booking.Date,
			"status":   models.BookingStatusConfirmed,
			"start":    bson.M{"$lt": booking.End},
			"end":      bson.M{"$gt": booking.Start},
		}
		count, err := repo.bookingColl.CountDocuments(sc, overlap)
		if err != nil {
			return fmt.Errorf("overlap check failed: %w", err)
		}
		if count > 0 {
			return ErrSlotTaken
		}

		if _, err := repo.bookingColl.InsertOne(sc, booking); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrSlotTaken
			}
			return fmt.Errorf("insert booking failed: %w", err)
		}

		// The lock only needs to live for the duration of the transaction.
		if _, err := repo.lockColl.DeleteOne(sc, bson.M{"lock_key": lock["lock_key"]}); err != nil {
			return fmt.Errorf("release booking lock failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if err == ErrSlotTaken {
			return ErrSlotTaken
		}
		return fmt.Errorf("booking transaction failed: %w", err)
	}

	return nil
}
