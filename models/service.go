package models

// Service represents a bookable salon service from the catalog.
type Service struct {
	ID              string  `bson:"id" json:"id"`
	SalonID         string  `bson:"salon_id" json:"salonId"`
	Name            string  `bson:"name" json:"name"`
	DurationMinutes int     `bson:"duration_minutes" json:"durationMinutes"`
	Price           float64 `bson:"price" json:"price"`
	Active          bool    `bson:"active" json:"active"`
}
