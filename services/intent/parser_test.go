package intent

import (
	"context"
	"errors"
	"testing"
	"time"

	"salonflow/models"
)

type stubCatalog struct {
	services []models.Service
	staff    []models.Staff
}

func (c *stubCatalog) GetServiceByID(_ context.Context, serviceID string) (*models.Service, error) {
	for _, svc := range c.services {
		if svc.ID == serviceID {
			return &svc, nil
		}
	}
	return nil, errors.New("service not found")
}

func (c *stubCatalog) ListServices(_ context.Context, _ string) ([]models.Service, error) {
	return c.services, nil
}

func (c *stubCatalog) GetStaffByID(_ context.Context, staffID string) (*models.Staff, error) {
	for _, st := range c.staff {
		if st.ID == staffID {
			return &st, nil
		}
	}
	return nil, errors.New("staff not found")
}

func (c *stubCatalog) ListQualifiedStaff(_ context.Context, _, serviceID string) ([]models.Staff, error) {
	var out []models.Staff
	for _, st := range c.staff {
		if st.QualifiedFor(serviceID) {
			out = append(out, st)
		}
	}
	return out, nil
}

func newTestParser() *KeywordParser {
	return &KeywordParser{
		Catalog: &stubCatalog{
			services: []models.Service{
				{ID: "cut", SalonID: "salon1", Name: "Haircut", Active: true},
				{ID: "color", SalonID: "salon1", Name: "Color", Active: true},
			},
			staff: []models.Staff{
				{ID: "s1", SalonID: "salon1", Name: "Ana", ServiceIDs: []string{"cut", "color"}, Active: true},
			},
		},
		Location: time.UTC,
		Now: func() time.Time {
			// A Monday.
			return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
		},
	}
}

func TestParseServiceStaffDateAndTime(t *testing.T) {
	p := newTestParser()
	intent, err := p.Parse(context.Background(), "salon1", "Haircut with Ana on friday at 15:30", nil)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if intent.ServiceID != "cut" {
		t.Errorf("expected service cut, got %q", intent.ServiceID)
	}
	if intent.StaffID != "s1" {
		t.Errorf("expected staff s1, got %q", intent.StaffID)
	}
	if intent.PreferredDate != "2026-03-06" {
		t.Errorf("expected next Friday 2026-03-06, got %q", intent.PreferredDate)
	}
	if !intent.HasTime || intent.PreferredTime != 15*60+30 {
		t.Errorf("expected 15:30, got hasTime=%v minute=%d", intent.HasTime, intent.PreferredTime)
	}
}

func TestParseAmPmTimes(t *testing.T) {
	p := newTestParser()
	cases := map[string]int{
		"color at 3pm":  15 * 60,
		"color at 12pm": 12 * 60,
		"color at 12am": 0,
		"color at 9am":  9 * 60,
	}
	for text, want := range cases {
		intent, err := p.Parse(context.Background(), "salon1", text, nil)
		if err != nil {
			t.Fatalf("parse %q failed: %v", text, err)
		}
		if !intent.HasTime || intent.PreferredTime != want {
			t.Errorf("%q: expected minute %d, got hasTime=%v minute=%d", text, want, intent.HasTime, intent.PreferredTime)
		}
	}
}

func TestParseRelativeDates(t *testing.T) {
	p := newTestParser()

	intent, err := p.Parse(context.Background(), "salon1", "haircut today", nil)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if intent.PreferredDate != "2026-03-02" {
		t.Errorf("today: expected 2026-03-02, got %q", intent.PreferredDate)
	}

	intent, err = p.Parse(context.Background(), "salon1", "haircut tomorrow", nil)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if intent.PreferredDate != "2026-03-03" {
		t.Errorf("tomorrow: expected 2026-03-03, got %q", intent.PreferredDate)
	}

	// A weekday name always means the next occurrence, never today.
	intent, err = p.Parse(context.Background(), "salon1", "haircut monday", nil)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if intent.PreferredDate != "2026-03-09" {
		t.Errorf("monday-on-monday: expected 2026-03-09, got %q", intent.PreferredDate)
	}
}

func TestParseStaffNeedsServiceContext(t *testing.T) {
	p := newTestParser()

	// No service in the message and no prior intent: the staff name alone
	// cannot be resolved, but the date still parses.
	intent, err := p.Parse(context.Background(), "salon1", "with ana tomorrow", nil)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if intent.StaffID != "" {
		t.Errorf("staff should not resolve without service context, got %q", intent.StaffID)
	}

	// With a prior intent the correction resolves against its service.
	prior := &models.BookingIntent{ServiceID: "cut"}
	intent, err = p.Parse(context.Background(), "salon1", "with ana instead", prior)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if intent.StaffID != "s1" {
		t.Errorf("expected staff s1 via prior service context, got %q", intent.StaffID)
	}
	if intent.ServiceID != "" {
		t.Errorf("a staff-only correction must not set a service, got %q", intent.ServiceID)
	}
}

func TestParseFlexibleKeyword(t *testing.T) {
	p := newTestParser()
	intent, err := p.Parse(context.Background(), "salon1", "haircut whenever works", nil)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !intent.IsFlexible {
		t.Error("expected flexible intent")
	}
}

func TestParseNothingBookableErrs(t *testing.T) {
	p := newTestParser()
	if _, err := p.Parse(context.Background(), "salon1", "hello there", nil); err != ErrUnparsed {
		t.Fatalf("expected ErrUnparsed, got %v", err)
	}
}
