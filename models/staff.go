package models

// DayHours is a staff member's working window for one weekday.
type DayHours struct {
	Start  int  `bson:"start" json:"start"` // minutes from midnight (e.g., 540 for 9:00 AM)
	End    int  `bson:"end" json:"end"`     // minutes from midnight (e.g., 1080 for 6:00 PM)
	Closed bool `bson:"closed" json:"closed"`
}

// Staff represents a salon staff member who can be booked for services.
type Staff struct {
	ID         string   `bson:"id" json:"id"`
	SalonID    string   `bson:"salon_id" json:"salonId"`
	Name       string   `bson:"name" json:"name"`
	ServiceIDs []string `bson:"service_ids" json:"serviceIds"` // services this staff member is qualified for
	// WeeklyHours is keyed by time.Weekday (0 = Sunday ... 6 = Saturday).
	WeeklyHours map[int]DayHours `bson:"weekly_hours" json:"weeklyHours"`
	Active      bool             `bson:"active" json:"active"`
}

// QualifiedFor reports whether the staff member can perform the given service.
func (s Staff) QualifiedFor(serviceID string) bool {
	for _, id := range s.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

// HoursOn returns the working window for the given weekday, with Closed set
// when the staff member does not work that day.
func (s Staff) HoursOn(weekday int) DayHours {
	h, ok := s.WeeklyHours[weekday]
	if !ok {
		return DayHours{Closed: true}
	}
	return h
}
