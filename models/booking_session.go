package models

import "time"

// SessionSchemaVersion is the current BookingSession schema. Sessions loaded
// with an older version go through a pure migration before any handler sees
// them.
const SessionSchemaVersion = 2

// Booking conversation states. Committed is terminal: the session lives out
// its TTL so a duplicate confirm replays the same booking.
const (
	StateAwaitingIntent    = "awaiting_intent"
	StateSlotsShown        = "slots_shown"
	StateConfirmationShown = "confirmation_shown"
	StateWaitlistOffered   = "waitlist_offered"
	StateCommitted         = "committed"
)

// BookingSession holds the conversational context of one in-progress booking
// attempt, keyed by customer. It lives in an expiring key-value store; a
// successful commit parks it in the committed state until the TTL clears it.
type BookingSession struct {
	SchemaVersion     int           `json:"schemaVersion"`
	SessionID         string        `json:"sessionId"`
	CustomerID        string        `json:"customerId"`
	SalonID           string        `json:"salonId"`
	Language          string        `json:"language,omitempty"`
	State             string        `json:"state"`
	Intent            BookingIntent `json:"intent"`
	CandidateSlots    []RankedSlot  `json:"candidateSlots,omitempty"`
	SelectedSlot      *RankedSlot   `json:"selectedSlot,omitempty"`
	AttemptID         string        `json:"attemptId,omitempty"` // idempotency key for the pending confirm
	HorizonDays       int           `json:"horizonDays"`         // grows on "show more"
	Turns             int           `json:"turns"`
	CreatedAt         time.Time     `json:"createdAt"`
	LastInteractionAt time.Time     `json:"lastInteractionAt"`
}

// Candidate returns the ranked slot with the given id from the most recently
// stored candidate set, or nil. Selections referencing ids outside this set
// are stale and must be rejected.
func (s *BookingSession) Candidate(slotID string) *RankedSlot {
	for i := range s.CandidateSlots {
		if s.CandidateSlots[i].ID == slotID {
			return &s.CandidateSlots[i]
		}
	}
	return nil
}

// MigrateSession upgrades a session loaded from the store to the current
// schema. Pure: no I/O, safe to apply on every load.
func MigrateSession(s BookingSession) BookingSession {
	if s.SchemaVersion < 2 {
		// v1 sessions predate horizon tracking and attempt ids.
		if s.HorizonDays == 0 {
			s.HorizonDays = 30
		}
		if s.State == "" {
			s.State = StateAwaitingIntent
		}
	}
	s.SchemaVersion = SessionSchemaVersion
	return s
}
