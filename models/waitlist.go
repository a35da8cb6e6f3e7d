package models

import "time"

// Waitlist entry statuses. Transitions are one-directional:
// active -> notified -> booked | passed | expired.
const (
	WaitlistActive   = "active"
	WaitlistNotified = "notified"
	WaitlistBooked   = "booked"
	WaitlistPassed   = "passed"
	WaitlistExpired  = "expired"
)

// WaitlistEntry is a durable FIFO entry for a customer waiting on
// availability within a (salon, service, optional staff) grouping.
type WaitlistEntry struct {
	ID              string     `bson:"id" json:"id"`
	SalonID         string     `bson:"salon_id" json:"salonId"`
	CustomerID      string     `bson:"customer_id" json:"customerId"`
	ServiceID       string     `bson:"service_id" json:"serviceId"`
	StaffID         string     `bson:"staff_id,omitempty" json:"staffId,omitempty"` // empty means any staff
	PreferredDate   string     `bson:"preferred_date,omitempty" json:"preferredDate,omitempty"`
	PreferredTime   int        `bson:"preferred_time,omitempty" json:"preferredTime,omitempty"`
	Status          string     `bson:"status" json:"status"`
	PositionInQueue int        `bson:"position_in_queue" json:"positionInQueue"`
	OfferedSlotID   string     `bson:"offered_slot_id,omitempty" json:"offeredSlotId,omitempty"`
	NotifiedAt      *time.Time `bson:"notified_at,omitempty" json:"notifiedAt,omitempty"`
	ExpiresAt       *time.Time `bson:"expires_at,omitempty" json:"notificationExpiresAt,omitempty"`
	CreatedAt       time.Time  `bson:"created_at" json:"createdAt"`
}

// WaitlistGroup is the key partitioning independent FIFO queues.
type WaitlistGroup struct {
	SalonID   string `bson:"salon_id" json:"salonId"`
	ServiceID string `bson:"service_id" json:"serviceId"`
	StaffID   string `bson:"staff_id" json:"staffId"` // empty means any staff
}

// Group returns the entry's FIFO grouping key.
func (e WaitlistEntry) Group() WaitlistGroup {
	return WaitlistGroup{SalonID: e.SalonID, ServiceID: e.ServiceID, StaffID: e.StaffID}
}
