package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"salonflow/models"
	"salonflow/utils"
)

// DefaultOrchestrator implements Orchestrator. It owns BookingSession
// exclusively: every transition that changes the candidate set or the
// selected slot is persisted before a UI payload is returned, and no
// internal error is ever propagated to the transport layer.
type DefaultOrchestrator struct {
	Sessions  SessionStore
	Parser    IntentParser
	Finder    SlotFinder
	Ranker    *AlternativeRanker
	Committer BookingCommitter
	Waitlist  WaitlistEnqueuer

	HorizonDays   int
	TopCandidates int
	SessionTTL    time.Duration
	Now           func() time.Time // overridable for tests
}

func (o *DefaultOrchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *DefaultOrchestrator) horizon() int {
	if o.HorizonDays > 0 {
		return o.HorizonDays
	}
	return 30
}

func (o *DefaultOrchestrator) topN() int {
	if o.TopCandidates > 0 {
		return o.TopCandidates
	}
	return 10
}

func (o *DefaultOrchestrator) ttl() time.Duration {
	if o.SessionTTL > 0 {
		return o.SessionTTL
	}
	return 30 * time.Minute
}

// HandleMessage consumes a free-form customer message. A message mid-flow is
// a correction: only the fields present in the newly parsed partial intent
// are merged into the existing one, and the search re-runs from SlotsShown.
func (o *DefaultOrchestrator) HandleMessage(ctx context.Context, customerID, salonID, text, language string) *models.UIResponse {
	logger := utils.GetLogger()
	now := o.now()

	session := o.loadSession(ctx, customerID, now)

	var prior *models.BookingIntent
	if session != nil {
		prior = &session.Intent
	}
	parsed, err := o.Parser.Parse(ctx, salonID, text, prior)
	if err != nil || parsed == nil {
		logger.Debug("intent parse failed", zap.String("customerId", customerID), zap.Error(err))
		return promptPayload("Sorry, I didn't quite get that. Could you tell me what you'd like to book, and when?")
	}

	if session == nil {
		if parsed.ServiceID == "" {
			return promptPayload("Which service would you like to book?")
		}
		session = &models.BookingSession{
			SchemaVersion: models.SessionSchemaVersion,
			SessionID:     uuid.New().String(),
			CustomerID:    customerID,
			SalonID:       salonID,
			Language:      language,
			State:         models.StateAwaitingIntent,
			Intent:        *parsed,
			HorizonDays:   o.horizon(),
			CreatedAt:     now,
		}
	} else {
		session.Intent = session.Intent.Merge(*parsed)
		// A correction supersedes whatever was selected before.
		session.SelectedSlot = nil
		session.AttemptID = ""
		session.HorizonDays = o.horizon()
	}
	if language != "" {
		session.Language = language
	}
	session.Turns++
	session.LastInteractionAt = now

	return o.runSearch(ctx, session, "Here are the closest available times:")
}

// HandleAction consumes a tap on one of the buttons the orchestrator
// previously emitted.
func (o *DefaultOrchestrator) HandleAction(ctx context.Context, customerID, actionType, slotID string) *models.UIResponse {
	logger := utils.GetLogger()
	now := o.now()

	session := o.loadSession(ctx, customerID, now)
	if session == nil {
		return errorPayload("That conversation has expired. Tell me what you'd like to book and we'll start fresh.")
	}
	session.Turns++
	session.LastInteractionAt = now

	switch actionType {
	case models.ActionRestart:
		o.deleteSession(ctx, customerID)
		return promptPayload("No problem. What would you like to book?")

	case models.ActionShowMore:
		session.HorizonDays += o.horizon()
		return o.extendSearch(ctx, session)

	case models.ActionSelectSlot:
		return o.handleSelect(ctx, session, slotID)

	case models.ActionChangeSlot:
		// Cheap back-navigation: re-render the prior candidates, no search.
		session.State = models.StateSlotsShown
		session.SelectedSlot = nil
		session.AttemptID = ""
		if err := o.Sessions.Save(ctx, session); err != nil {
			return o.infrastructurePayload(err)
		}
		return slotChoicesPayload("Pick a different time:", session.CandidateSlots)

	case models.ActionConfirm:
		return o.handleConfirm(ctx, session)

	case models.ActionJoinWaitlist:
		return o.handleJoinWaitlist(ctx, session)

	case models.ActionContactSalon:
		return promptPayload("You can reach the salon directly by phone; they'll be glad to help.")

	default:
		logger.Warn("unknown action", zap.String("customerId", customerID), zap.String("action", actionType))
		return promptPayload("Sorry, I didn't understand that. What would you like to book?")
	}
}

// CancelSession discards the customer's in-progress conversation. No
// compensating action is needed: an unconfirmed session holds no resources.
func (o *DefaultOrchestrator) CancelSession(ctx context.Context, customerID string) error {
	return o.Sessions.Delete(ctx, customerID)
}

// loadSession fetches and idle-checks the customer's session. Store
// unavailability degrades to a missing session; it never errors upward.
func (o *DefaultOrchestrator) loadSession(ctx context.Context, customerID string, now time.Time) *models.BookingSession {
	session, err := o.Sessions.Get(ctx, customerID)
	if err != nil {
		if err != ErrSessionNotFound {
			utils.GetLogger().Warn("session store unavailable, treating as expired",
				zap.String("customerId", customerID), zap.Error(err))
		}
		return nil
	}
	if now.Sub(session.LastInteractionAt) > o.ttl() {
		o.deleteSession(ctx, customerID)
		return nil
	}
	return session
}

func (o *DefaultOrchestrator) deleteSession(ctx context.Context, customerID string) {
	if err := o.Sessions.Delete(ctx, customerID); err != nil {
		utils.GetLogger().Warn("failed to delete session", zap.String("customerId", customerID), zap.Error(err))
	}
}

// runSearch invokes the finder and ranker, stores the refreshed candidate
// set, and emits either a slot-choice payload or a waitlist offer when the
// horizon is exhausted. Finder and ranker failures become a generic
// "try again" response.
func (o *DefaultOrchestrator) runSearch(ctx context.Context, session *models.BookingSession, text string) *models.UIResponse {
	logger := utils.GetLogger()

	result, err := o.Finder.FindSlots(ctx, session.SalonID, session.Intent, session.HorizonDays)
	if err != nil {
		logger.Error("slot search failed", zap.String("customerId", session.CustomerID), zap.Error(err))
		return errorPayload("Something went wrong while looking for times. Please try again.")
	}

	if len(result.Slots) == 0 && result.Exhausted {
		return o.offerWaitlist(ctx, session)
	}

	ranked := o.Ranker.Rank(result.Slots, session.Intent, o.now())
	if len(ranked) > o.topN() {
		ranked = ranked[:o.topN()]
	}

	session.CandidateSlots = ranked
	session.SelectedSlot = nil
	session.AttemptID = ""
	session.State = models.StateSlotsShown
	if err := o.Sessions.Save(ctx, session); err != nil {
		return o.infrastructurePayload(err)
	}
	return slotChoicesPayload(text, ranked)
}

// extendSearch re-runs the search over the widened horizon and appends only
// candidates not shown before, so "show more" surfaces new times whenever any
// exist. Earlier candidates stay in the set and remain selectable.
func (o *DefaultOrchestrator) extendSearch(ctx context.Context, session *models.BookingSession) *models.UIResponse {
	logger := utils.GetLogger()

	result, err := o.Finder.FindSlots(ctx, session.SalonID, session.Intent, session.HorizonDays)
	if err != nil {
		logger.Error("slot search failed", zap.String("customerId", session.CustomerID), zap.Error(err))
		return errorPayload("Something went wrong while looking for times. Please try again.")
	}

	if len(result.Slots) == 0 && result.Exhausted && len(session.CandidateSlots) == 0 {
		return o.offerWaitlist(ctx, session)
	}

	shown := make(map[string]bool, len(session.CandidateSlots))
	for _, s := range session.CandidateSlots {
		shown[s.ID] = true
	}

	ranked := o.Ranker.Rank(result.Slots, session.Intent, o.now())
	fresh := make([]models.RankedSlot, 0, o.topN())
	for _, r := range ranked {
		if shown[r.ID] {
			continue
		}
		fresh = append(fresh, r)
		if len(fresh) == o.topN() {
			break
		}
	}

	session.SelectedSlot = nil
	session.AttemptID = ""
	session.State = models.StateSlotsShown
	session.CandidateSlots = append(session.CandidateSlots, fresh...)
	if err := o.Sessions.Save(ctx, session); err != nil {
		return o.infrastructurePayload(err)
	}

	if len(fresh) == 0 {
		if len(session.CandidateSlots) == 0 {
			return promptPayload("I couldn't find any open times. What would you like to book?")
		}
		return slotChoicesPayload("Those are all the times I can find right now:", session.CandidateSlots)
	}
	return slotChoicesPayload("Here are more available times:", fresh)
}

func (o *DefaultOrchestrator) handleSelect(ctx context.Context, session *models.BookingSession, slotID string) *models.UIResponse {
	candidate := session.Candidate(slotID)
	if candidate == nil {
		// Stale card or client race: reject and re-render the current set.
		if err := o.Sessions.Save(ctx, session); err != nil {
			return o.infrastructurePayload(err)
		}
		if len(session.CandidateSlots) == 0 {
			return promptPayload("Those times are no longer on offer. What would you like to book?")
		}
		return slotChoicesPayload("That time is no longer on the list. Here are the current options:", session.CandidateSlots)
	}

	session.SelectedSlot = candidate
	session.AttemptID = uuid.New().String()
	session.State = models.StateConfirmationShown
	if err := o.Sessions.Save(ctx, session); err != nil {
		return o.infrastructurePayload(err)
	}
	return confirmationPayload(*candidate)
}

func (o *DefaultOrchestrator) handleConfirm(ctx context.Context, session *models.BookingSession) *models.UIResponse {
	if session.State == models.StateCommitted && session.SelectedSlot != nil && session.AttemptID != "" {
		// Duplicate confirm: the committer collapses repeats of the same
		// attempt id onto the original booking.
		booking, err := o.Committer.Commit(ctx, session.SalonID, session.CustomerID, session.AttemptID, session.SelectedSlot.SlotCandidate)
		if err != nil {
			return o.infrastructurePayload(err)
		}
		return successPayload(booking)
	}

	if session.State != models.StateConfirmationShown || session.SelectedSlot == nil {
		if len(session.CandidateSlots) > 0 {
			return slotChoicesPayload("Pick a time first:", session.CandidateSlots)
		}
		return promptPayload("Nothing is selected yet. What would you like to book?")
	}

	booking, err := o.Committer.Commit(ctx, session.SalonID, session.CustomerID, session.AttemptID, session.SelectedSlot.SlotCandidate)
	if err != nil {
		if FlowCode(err) == CodeSlotConflict {
			// Lost the race between selection and confirm: fresh search,
			// telling the customer the original slot is gone.
			session.HorizonDays = o.horizon()
			return o.runSearch(ctx, session, "So sorry — that time was just taken. Here are the closest alternatives:")
		}
		return o.infrastructurePayload(err)
	}

	// The session survives in a terminal state until its TTL so a repeated
	// confirm reads as a replay, not as an expired conversation.
	session.State = models.StateCommitted
	if err := o.Sessions.Save(ctx, session); err != nil {
		utils.GetLogger().Warn("failed to persist committed session",
			zap.String("customerId", session.CustomerID), zap.Error(err))
	}
	return successPayload(booking)
}

func (o *DefaultOrchestrator) offerWaitlist(ctx context.Context, session *models.BookingSession) *models.UIResponse {
	entry, err := o.Waitlist.Enqueue(ctx, session.SalonID, session.CustomerID, session.Intent)
	if err != nil {
		return o.infrastructurePayload(err)
	}

	session.CandidateSlots = nil
	session.SelectedSlot = nil
	session.AttemptID = ""
	session.State = models.StateWaitlistOffered
	if err := o.Sessions.Save(ctx, session); err != nil {
		return o.infrastructurePayload(err)
	}
	return waitlistOfferedPayload(entry.PositionInQueue)
}

func (o *DefaultOrchestrator) handleJoinWaitlist(ctx context.Context, session *models.BookingSession) *models.UIResponse {
	if session.Intent.ServiceID == "" {
		return promptPayload("Tell me which service you'd like and I'll add you to the waitlist.")
	}
	return o.offerWaitlist(ctx, session)
}

func (o *DefaultOrchestrator) infrastructurePayload(err error) *models.UIResponse {
	utils.GetLogger().Error("booking flow infrastructure error", zap.Error(err))
	return errorPayload("Something went wrong on our side. Please try again in a moment.")
}
