package waitlistRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"salonflow/database"
	"salonflow/models"
)

// MongoWaitlistRepo is the MongoDB implementation of WaitlistRepository.
type MongoWaitlistRepo struct {
	coll *mongo.Collection
}

// NewMongoWaitlistRepo returns a repo backed by the "waitlist" collection.
func NewMongoWaitlistRepo() *MongoWaitlistRepo {
	return &MongoWaitlistRepo{coll: database.DB().Collection("waitlist")}
}

// EnsureIndexes creates the index backing FIFO head pops per group.
func (repo *MongoWaitlistRepo) EnsureIndexes(ctx context.Context) error {
	_, err := repo.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "salon_id", Value: 1},
			{Key: "service_id", Value: 1},
			{Key: "staff_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "created_at", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create waitlist index: %w", err)
	}
	return nil
}

func groupFilter(group models.WaitlistGroup) bson.M {
	return bson.M{
		"salon_id":   group.SalonID,
		"service_id": group.ServiceID,
		"staff_id":   group.StaffID,
	}
}

func (repo *MongoWaitlistRepo) Enqueue(ctx context.Context, entry *models.WaitlistEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ahead, err := repo.CountActiveAhead(ctx, entry.Group(), entry.CreatedAt)
	if err != nil {
		return err
	}
	entry.PositionInQueue = ahead + 1

	if _, err := repo.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to enqueue waitlist entry: %w", err)
	}
	return nil
}

func (repo *MongoWaitlistRepo) GetByID(ctx context.Context, entryID string) (*models.WaitlistEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var entry models.WaitlistEntry
	if err := repo.coll.FindOne(ctx, bson.M{"id": entryID}).Decode(&entry); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("waitlist entry %s not found", entryID)
		}
		return nil, fmt.Errorf("failed to fetch waitlist entry %s: %w", entryID, err)
	}
	return &entry, nil
}

func (repo *MongoWaitlistRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.WaitlistEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"customer_id": customerID,
		"status":      bson.M{"$in": bson.A{models.WaitlistActive, models.WaitlistNotified}},
	}
	cur, err := repo.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list waitlist entries: %w", err)
	}
	defer cur.Close(ctx)

	var entries []models.WaitlistEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode waitlist entries: %w", err)
	}
	return entries, nil
}

// PopHeadToNotified is the single-writer step of notification dispatch: the
// FindOneAndUpdate is atomic, so concurrent release events can never move two
// entries of the same group to notified for one pop.
func (repo *MongoWaitlistRepo) PopHeadToNotified(ctx context.Context, group models.WaitlistGroup, offeredSlotID string, expiresAt time.Time) (*models.WaitlistEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	filter := groupFilter(group)
	filter["status"] = models.WaitlistActive

	update := bson.M{"$set": bson.M{
		"status":          models.WaitlistNotified,
		"offered_slot_id": offeredSlotID,
		"notified_at":     now,
		"expires_at":      expiresAt,
	}}

	var entry models.WaitlistEntry
	err := repo.coll.FindOneAndUpdate(
		ctx, filter, update,
		options.FindOneAndUpdate().
			SetSort(bson.D{{Key: "created_at", Value: 1}}).
			SetReturnDocument(options.After),
	).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop waitlist head: %w", err)
	}
	return &entry, nil
}

func (repo *MongoWaitlistRepo) Transition(ctx context.Context, entryID, from, to string) (*models.WaitlistEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var entry models.WaitlistEntry
	err := repo.coll.FindOneAndUpdate(
		ctx,
		bson.M{"id": entryID, "status": from},
		bson.M{"$set": bson.M{"status": to}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, ErrStatusConflict
	}
	if err != nil {
		return nil, fmt.Errorf("failed to transition waitlist entry %s: %w", entryID, err)
	}
	return &entry, nil
}

func (repo *MongoWaitlistRepo) CountActiveAhead(ctx context.Context, group models.WaitlistGroup, before time.Time) (int, error) {
	filter := groupFilter(group)
	filter["status"] = models.WaitlistActive
	filter["created_at"] = bson.M{"$lt": before}

	count, err := repo.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count waitlist entries ahead: %w", err)
	}
	return int(count), nil
}
