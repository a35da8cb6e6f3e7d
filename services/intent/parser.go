package intent

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	catalogRepo "salonflow/database/repository/catalog"
	"salonflow/models"
)

// ErrUnparsed signals that nothing bookable could be extracted from the
// message. The orchestrator asks the customer to rephrase.
var ErrUnparsed = errors.New("could not extract a booking intent")

// KeywordParser is the development stand-in for the external NLP parser: it
// extracts service, staff, date, and time by keyword matching against the
// salon's catalog. Production deployments swap in a real parser behind the
// same interface.
type KeywordParser struct {
	Catalog  catalogRepo.CatalogRepository
	Location *time.Location
	Now      func() time.Time // overridable for tests
}

var (
	isoDateRe   = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	clockTimeRe = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	amPmTimeRe  = regexp.MustCompile(`\b(\d{1,2})\s?(am|pm)\b`)
)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

func (p *KeywordParser) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *KeywordParser) loc() *time.Location {
	if p.Location != nil {
		return p.Location
	}
	return time.Local
}

// Parse extracts a partial BookingIntent: only the fields present in the
// message are filled in. prior supplies the service context needed to match
// staff names on mid-flow corrections.
func (p *KeywordParser) Parse(ctx context.Context, salonID, rawText string, prior *models.BookingIntent) (*models.BookingIntent, error) {
	lower := strings.ToLower(rawText)
	parsed := &models.BookingIntent{}
	found := false

	if svcID := p.matchService(ctx, salonID, lower); svcID != "" {
		parsed.ServiceID = svcID
		found = true
	}

	serviceCtx := parsed.ServiceID
	if serviceCtx == "" && prior != nil {
		serviceCtx = prior.ServiceID
	}
	if serviceCtx != "" {
		if staffID := p.matchStaff(ctx, salonID, serviceCtx, lower); staffID != "" {
			parsed.StaffID = staffID
			found = true
		}
	}

	if date := p.matchDate(lower); date != "" {
		parsed.PreferredDate = date
		found = true
	}

	if minute, ok := p.matchTime(lower); ok {
		parsed.PreferredTime = minute
		parsed.HasTime = true
		found = true
	}

	for _, kw := range []string{"any time", "anytime", "whenever", "flexible"} {
		if strings.Contains(lower, kw) {
			parsed.IsFlexible = true
			found = true
			break
		}
	}

	if !found {
		return nil, ErrUnparsed
	}
	return parsed, nil
}

func (p *KeywordParser) matchService(ctx context.Context, salonID, lower string) string {
	services, err := p.Catalog.ListServices(ctx, salonID)
	if err != nil {
		return ""
	}
	for _, svc := range services {
		if strings.Contains(lower, strings.ToLower(svc.Name)) {
			return svc.ID
		}
	}
	return ""
}

func (p *KeywordParser) matchStaff(ctx context.Context, salonID, serviceID, lower string) string {
	staff, err := p.Catalog.ListQualifiedStaff(ctx, salonID, serviceID)
	if err != nil {
		return ""
	}
	for _, st := range staff {
		if strings.Contains(lower, strings.ToLower(st.Name)) {
			return st.ID
		}
	}
	return ""
}

func (p *KeywordParser) matchDate(lower string) string {
	now := p.now().In(p.loc())
	if m := isoDateRe.FindStringSubmatch(lower); m != nil {
		if _, err := time.ParseInLocation("2006-01-02", m[1], p.loc()); err == nil {
			return m[1]
		}
	}
	if strings.Contains(lower, "today") {
		return now.Format("2006-01-02")
	}
	if strings.Contains(lower, "tomorrow") {
		return now.AddDate(0, 0, 1).Format("2006-01-02")
	}
	for name, wd := range weekdays {
		if strings.Contains(lower, name) {
			days := (int(wd) - int(now.Weekday()) + 7) % 7
			if days == 0 {
				days = 7
			}
			return now.AddDate(0, 0, days).Format("2006-01-02")
		}
	}
	return ""
}

func (p *KeywordParser) matchTime(lower string) (int, bool) {
	if m := clockTimeRe.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		if h < 24 && min < 60 {
			return h*60 + min, true
		}
	}
	if m := amPmTimeRe.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		if h >= 1 && h <= 12 {
			if m[2] == "pm" && h != 12 {
				h += 12
			}
			if m[2] == "am" && h == 12 {
				h = 0
			}
			return h * 60, true
		}
	}
	return 0, false
}
