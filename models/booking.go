package models

import "time"

// Booking statuses.
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Booking represents a confirmed booking record.
type Booking struct {
	ID         string    `bson:"id" json:"id"`                   // Unique booking identifier (UUID)
	AttemptID  string    `bson:"attempt_id" json:"attemptId"`    // Stable booking-attempt identifier; repeated confirms collapse onto one booking
	SalonID    string    `bson:"salon_id" json:"salonId"`        // Salon the booking belongs to
	CustomerID string    `bson:"customer_id" json:"customerId"`  // Customer who made the booking
	ServiceID  string    `bson:"service_id" json:"serviceId"`    // Booked service
	StaffID    string    `bson:"staff_id" json:"staffId"`        // Staff member who was booked
	StaffName  string    `bson:"staff_name" json:"staffName"`    //
	Date       string    `bson:"date" json:"date"`               // Booking date in "YYYY-MM-DD" format
	Start      int       `bson:"start" json:"start"`             // Booking start time (minutes from midnight)
	End        int       `bson:"end" json:"end"`                 // Booking end time (minutes from midnight)
	Price      float64   `bson:"price" json:"price"`             //
	Status     string    `bson:"status" json:"status"`           // "confirmed" or "cancelled"
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`    // Timestamp when booking was created
}
