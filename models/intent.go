package models

// BookingIntent is the structured result of parsing a customer's free-form
// booking request. Produced by the external intent parser; the orchestrator
// only applies field-level merges when the customer corrects themselves
// mid-flow.
type BookingIntent struct {
	ServiceID     string `json:"serviceId"`
	StaffID       string `json:"staffId,omitempty"`
	PreferredDate string `json:"preferredDate,omitempty"` // "YYYY-MM-DD"
	PreferredTime int    `json:"preferredTime,omitempty"` // minutes from midnight
	HasTime       bool   `json:"hasTime"`                 // distinguishes "midnight" from "no preference"
	Language      string `json:"language,omitempty"`
	IsFlexible    bool   `json:"isFlexible"`
}

// Merge applies the fields present in a partial correction onto the intent,
// preserving everything the correction does not mention. Service and staff
// context must survive a "actually, make it Friday" style message.
func (i BookingIntent) Merge(partial BookingIntent) BookingIntent {
	merged := i
	if partial.ServiceID != "" {
		merged.ServiceID = partial.ServiceID
	}
	if partial.StaffID != "" {
		merged.StaffID = partial.StaffID
	}
	if partial.PreferredDate != "" {
		merged.PreferredDate = partial.PreferredDate
	}
	if partial.HasTime {
		merged.PreferredTime = partial.PreferredTime
		merged.HasTime = true
	}
	if partial.Language != "" {
		merged.Language = partial.Language
	}
	if partial.IsFlexible {
		merged.IsFlexible = true
	}
	return merged
}
