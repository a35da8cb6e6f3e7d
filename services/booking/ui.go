package booking

import (
	"fmt"

	"salonflow/models"
)

// Payload builders. Every payload carries at least one actionable next step;
// the conversation must never end in a dead end.

func slotChoicesPayload(text string, slots []models.RankedSlot) *models.UIResponse {
	actions := make([]models.UIAction, 0, len(slots)+1)
	for _, s := range slots {
		actions = append(actions, models.UIAction{
			Label:  fmt.Sprintf("%s %s %s", s.Date, minutesToClock(s.Start), s.StaffName),
			Type:   models.ActionSelectSlot,
			SlotID: s.ID,
		})
	}
	actions = append(actions, models.UIAction{Label: "Show more times", Type: models.ActionShowMore})
	return &models.UIResponse{
		Kind:    models.UISlotChoices,
		Text:    text,
		Slots:   slots,
		Actions: actions,
	}
}

func confirmationPayload(slot models.RankedSlot) *models.UIResponse {
	return &models.UIResponse{
		Kind: models.UIConfirmation,
		Text: fmt.Sprintf("Book %s on %s at %s with %s?", slot.ServiceID, slot.Date, minutesToClock(slot.Start), slot.StaffName),
		Slot: &slot,
		Actions: []models.UIAction{
			{Label: "Confirm", Type: models.ActionConfirm, SlotID: slot.ID},
			{Label: "Pick another time", Type: models.ActionChangeSlot},
		},
	}
}

func successPayload(booking *models.Booking) *models.UIResponse {
	return &models.UIResponse{
		Kind:    models.UISuccess,
		Text:    fmt.Sprintf("You're booked with %s on %s at %s.", booking.StaffName, booking.Date, minutesToClock(booking.Start)),
		Booking: booking,
		Actions: []models.UIAction{
			{Label: "Book something else", Type: models.ActionRestart},
		},
	}
}

func waitlistOfferedPayload(position int) *models.UIResponse {
	return &models.UIResponse{
		Kind: models.UIWaitlistOffer,
		Text: fmt.Sprintf("Everything is booked up right now. You're number %d on the waitlist; we'll message you the moment a time frees up.", position),
		Actions: []models.UIAction{
			{Label: "Start over", Type: models.ActionRestart},
			{Label: "Contact the salon", Type: models.ActionContactSalon},
		},
	}
}

func promptPayload(text string) *models.UIResponse {
	return &models.UIResponse{
		Kind: models.UIPrompt,
		Text: text,
		Actions: []models.UIAction{
			{Label: "Start over", Type: models.ActionRestart},
		},
	}
}

func errorPayload(text string, actions ...models.UIAction) *models.UIResponse {
	if len(actions) == 0 {
		actions = []models.UIAction{
			{Label: "Try again", Type: models.ActionRestart},
			{Label: "Contact the salon", Type: models.ActionContactSalon},
		}
	}
	return &models.UIResponse{
		Kind:    models.UIError,
		Text:    text,
		Actions: actions,
	}
}

func minutesToClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
