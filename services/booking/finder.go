package booking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	bookingRepo "salonflow/database/repository/booking"
	catalogRepo "salonflow/database/repository/catalog"
	"salonflow/models"
	"salonflow/utils"
)

// SlotFinder searches a bounded horizon of calendar days for open intervals.
type SlotFinder interface {
	FindSlots(ctx context.Context, salonID string, intent models.BookingIntent, maxDaysAhead int) (*models.SlotSearchResult, error)
}

// DefaultSlotFinder walks whole calendar days in the salon's local time zone.
type DefaultSlotFinder struct {
	Catalog         catalogRepo.CatalogRepository
	Bookings        bookingRepo.BookingRepository
	Location        *time.Location
	MinCandidates   int
	BaseHorizonDays int
	Now             func() time.Time // overridable for tests
}

const dateLayout = "2006-01-02"

func (f *DefaultSlotFinder) now() time.Time {
	if f.Now != nil {
		return f.Now().In(f.loc())
	}
	return time.Now().In(f.loc())
}

func (f *DefaultSlotFinder) loc() *time.Location {
	if f.Location != nil {
		return f.Location
	}
	return time.Local
}

// FindSlots iterates days from the preferred date (or today) up to
// maxDaysAhead, collecting candidates until at least MinCandidates are found
// or the horizon is exhausted. It never special-cases "no availability"
// messaging; the orchestrator escalates an exhausted empty result.
func (f *DefaultSlotFinder) FindSlots(ctx context.Context, salonID string, intent models.BookingIntent, maxDaysAhead int) (*models.SlotSearchResult, error) {
	logger := utils.GetLogger()
	now := f.now()

	svc, err := f.Catalog.GetServiceByID(ctx, intent.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve service: %w", err)
	}
	if svc.DurationMinutes <= 0 {
		return nil, fmt.Errorf("service %s has no duration configured", svc.ID)
	}

	staff, err := f.eligibleStaff(ctx, salonID, intent)
	if err != nil {
		return nil, err
	}
	if len(staff) == 0 {
		return &models.SlotSearchResult{DaysSearched: 0, Exhausted: true}, nil
	}

	startDay := now
	if intent.PreferredDate != "" {
		if d, perr := time.ParseInLocation(dateLayout, intent.PreferredDate, f.loc()); perr == nil && d.After(now) {
			startDay = d
		}
	}

	minCandidates := f.MinCandidates
	if minCandidates <= 0 {
		minCandidates = 20
	}
	// A widened search must dig proportionally deeper, or the early stop
	// would hand back the same leading candidates on every extension.
	base := f.BaseHorizonDays
	if base <= 0 {
		base = 30
	}
	if maxDaysAhead > base {
		minCandidates *= (maxDaysAhead + base - 1) / base
	}

	result := &models.SlotSearchResult{}
	for dayOffset := 0; dayOffset < maxDaysAhead; dayOffset++ {
		day := startDay.AddDate(0, 0, dayOffset)
		dayStr := day.Format(dateLayout)

		daySlots, err := f.searchDay(ctx, staff, svc, day, dayStr, now)
		if err != nil {
			return nil, err
		}
		result.Slots = append(result.Slots, daySlots...)
		result.DaysSearched = dayOffset + 1

		if len(result.Slots) >= minCandidates {
			logger.Debug("slot search stopped early",
				zap.Int("daysSearched", result.DaysSearched),
				zap.Int("candidates", len(result.Slots)))
			return result, nil
		}
	}

	result.Exhausted = true
	return result, nil
}

func (f *DefaultSlotFinder) eligibleStaff(ctx context.Context, salonID string, intent models.BookingIntent) ([]models.Staff, error) {
	if intent.StaffID != "" {
		st, err := f.Catalog.GetStaffByID(ctx, intent.StaffID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve staff: %w", err)
		}
		if !st.Active || !st.QualifiedFor(intent.ServiceID) {
			return nil, nil
		}
		return []models.Staff{*st}, nil
	}

	staff, err := f.Catalog.ListQualifiedStaff(ctx, salonID, intent.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list qualified staff: %w", err)
	}
	// Deterministic enumeration order; ranking ties preserve it.
	sort.Slice(staff, func(i, j int) bool {
		if staff[i].Name != staff[j].Name {
			return staff[i].Name < staff[j].Name
		}
		return staff[i].ID < staff[j].ID
	})
	return staff, nil
}

// searchDay fans the per-staff booking lookups out concurrently (independent
// reads) and joins them before carving candidates, keeping the enumeration
// order deterministic.
func (f *DefaultSlotFinder) searchDay(ctx context.Context, staff []models.Staff, svc *models.Service, day time.Time, dayStr string, now time.Time) ([]models.SlotCandidate, error) {
	type staffDay struct {
		bookings []models.Booking
		err      error
	}
	results := make([]staffDay, len(staff))

	var wg sync.WaitGroup
	for i := range staff {
		if staff[i].HoursOn(int(day.Weekday())).Closed {
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bookings, err := f.Bookings.ListForStaffDay(ctx, staff[i].ID, dayStr)
			results[i] = staffDay{bookings: bookings, err: err}
		}(i)
	}
	wg.Wait()

	var candidates []models.SlotCandidate
	for i := range staff {
		hours := staff[i].HoursOn(int(day.Weekday()))
		if hours.Closed {
			continue
		}
		if results[i].err != nil {
			return nil, fmt.Errorf("failed to load bookings for staff %s: %w", staff[i].ID, results[i].err)
		}

		for _, free := range freeIntervals(hours, results[i].bookings) {
			// Slot granularity equals the service duration; a candidate is
			// valid only if it fits wholly inside one contiguous free interval.
			for start := free.start; start+svc.DurationMinutes <= free.end; start += svc.DurationMinutes {
				if dayStr == now.Format(dateLayout) {
					minuteOfDay := now.Hour()*60 + now.Minute()
					if start < minuteOfDay {
						continue
					}
				}
				candidates = append(candidates, models.SlotCandidate{
					ID:              models.CandidateID(staff[i].ID, dayStr, start),
					ServiceID:       svc.ID,
					StaffID:         staff[i].ID,
					StaffName:       staff[i].Name,
					Date:            dayStr,
					Start:           start,
					End:             start + svc.DurationMinutes,
					DurationMinutes: svc.DurationMinutes,
					Price:           svc.Price,
				})
			}
		}
	}
	return candidates, nil
}

type interval struct {
	start, end int
}

// freeIntervals computes the complement of the committed bookings within the
// staff member's working window for the day.
func freeIntervals(hours models.DayHours, bookings []models.Booking) []interval {
	busy := make([]interval, 0, len(bookings))
	for _, b := range bookings {
		if b.End <= hours.Start || b.Start >= hours.End {
			continue
		}
		busy = append(busy, interval{start: max(b.Start, hours.Start), end: min(b.End, hours.End)})
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].start < busy[j].start })

	var free []interval
	cursor := hours.Start
	for _, b := range busy {
		if b.start > cursor {
			free = append(free, interval{start: cursor, end: b.start})
		}
		if b.end > cursor {
			cursor = b.end
		}
	}
	if cursor < hours.End {
		free = append(free, interval{start: cursor, end: hours.End})
	}
	return free
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
