package booking

import (
	"context"
	"testing"
	"time"

	"salonflow/models"
)

func TestMemorySessionStoreRoundTrip(t *testing.T) {
	store := NewMemorySessionStore(30 * time.Minute)
	ctx := context.Background()

	slot := models.RankedSlot{
		SlotCandidate: models.SlotCandidate{ID: models.CandidateID("s1", "2026-03-02", 540)},
		Score:         700,
	}
	session := &models.BookingSession{
		SchemaVersion:  models.SessionSchemaVersion,
		SessionID:      "sess1",
		CustomerID:     "custA",
		SalonID:        "salon1",
		State:          models.StateConfirmationShown,
		CandidateSlots: []models.RankedSlot{slot},
		SelectedSlot:   &slot,
		AttemptID:      "attempt-1",
		HorizonDays:    30,
	}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := store.Get(ctx, "custA")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if loaded.SelectedSlot == nil || loaded.SelectedSlot.ID != slot.ID {
		t.Fatalf("selected slot lost in round trip: %+v", loaded.SelectedSlot)
	}
	// The persisted selection must still reference a candidate in the set.
	if loaded.Candidate(loaded.SelectedSlot.ID) == nil {
		t.Fatal("selected slot no longer resolvable against the candidate set")
	}
	if loaded.AttemptID != "attempt-1" {
		t.Errorf("attempt id lost, got %q", loaded.AttemptID)
	}
}

func TestMemorySessionStoreExpiresByTTL(t *testing.T) {
	store := NewMemorySessionStore(30 * time.Minute)
	base := fixedNow()
	store.now = func() time.Time { return base }
	ctx := context.Background()

	session := &models.BookingSession{
		SchemaVersion: models.SessionSchemaVersion,
		CustomerID:    "custA",
		State:         models.StateSlotsShown,
	}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	store.now = func() time.Time { return base.Add(31 * time.Minute) }
	if _, err := store.Get(ctx, "custA"); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound past TTL, got %v", err)
	}
}

func TestMemorySessionStoreMigratesOldSchema(t *testing.T) {
	store := NewMemorySessionStore(30 * time.Minute)
	ctx := context.Background()

	if err := store.Save(ctx, &models.BookingSession{SchemaVersion: 1, CustomerID: "custA"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := store.Get(ctx, "custA")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if loaded.SchemaVersion != models.SessionSchemaVersion {
		t.Fatalf("expected migration to schema %d, got %d", models.SessionSchemaVersion, loaded.SchemaVersion)
	}
	if loaded.HorizonDays != 30 {
		t.Errorf("migrated session missing default horizon, got %d", loaded.HorizonDays)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := NewMemorySessionStore(30 * time.Minute)
	ctx := context.Background()

	if err := store.Delete(ctx, "custA"); err != nil {
		t.Fatalf("deleting a missing session must not fail: %v", err)
	}
}
