package models

import "fmt"

// SlotCandidate represents a concrete open interval a service can be booked
// into. Candidates are ephemeral: they are regenerated on every search and
// never persisted.
type SlotCandidate struct {
	ID              string  `json:"id"` // deterministic: staffID|date|start
	ServiceID       string  `json:"serviceId"`
	StaffID         string  `json:"staffId"`
	StaffName       string  `json:"staffName"`
	Date            string  `json:"date"`  // "YYYY-MM-DD"
	Start           int     `json:"start"` // minutes from midnight
	End             int     `json:"end"`   // minutes from midnight
	DurationMinutes int     `json:"durationMinutes"`
	Price           float64 `json:"price"`
}

// CandidateID builds the stable identifier for a (staff, date, start) slot.
func CandidateID(staffID, date string, start int) string {
	return fmt.Sprintf("%s|%s|%d", staffID, date, start)
}

// Proximity labels describe how closely a slot matches the stated preference.
const (
	ProximityExact    = "exact"
	ProximityClose    = "close"
	ProximitySameDay  = "same-day"
	ProximitySameWeek = "same-week"
	ProximityAlt      = "alternative"
)

// RankedSlot is a SlotCandidate scored against a BookingIntent.
type RankedSlot struct {
	SlotCandidate
	Score          int    `json:"score"`
	ProximityLabel string `json:"proximityLabel"`
}

// SlotSearchResult is what the finder hands back to the orchestrator.
// The finder never special-cases "no availability" messaging; Exhausted
// just reports that the horizon was fully walked.
type SlotSearchResult struct {
	Slots        []SlotCandidate `json:"slots"`
	DaysSearched int             `json:"daysSearched"`
	Exhausted    bool            `json:"exhausted"`
}
