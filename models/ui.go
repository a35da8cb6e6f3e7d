package models

// UIResponse kinds. The transport layer renders these; the orchestrator
// never emits a payload without at least one actionable next step.
const (
	UISlotChoices   = "slot_choices"
	UIConfirmation  = "confirmation"
	UISuccess       = "success"
	UIWaitlistOffer = "waitlist_offer"
	UIError         = "error"
	UIPrompt        = "prompt"
)

// Action types understood by HandleAction.
const (
	ActionSelectSlot   = "select_slot"
	ActionConfirm      = "confirm"
	ActionChangeSlot   = "change_slot"
	ActionShowMore     = "show_more"
	ActionJoinWaitlist = "join_waitlist"
	ActionRestart      = "restart"
	ActionContactSalon = "contact_salon"
)

// UIAction is a tappable button in a rendered card.
type UIAction struct {
	Label  string `json:"label"`
	Type   string `json:"type"`
	SlotID string `json:"slotId,omitempty"`
}

// UIResponse is the opaque payload handed to the transport layer.
type UIResponse struct {
	Kind    string       `json:"kind"`
	Text    string       `json:"text"`
	Slots   []RankedSlot `json:"slots,omitempty"`
	Slot    *RankedSlot  `json:"slot,omitempty"`
	Booking *Booking     `json:"booking,omitempty"`
	Actions []UIAction   `json:"actions,omitempty"`
}
