package booking

import (
	"context"
	"testing"
	"time"

	"salonflow/models"
)

func testFinder(catalog *fakeCatalog, bookings *fakeBookingRepo) *DefaultSlotFinder {
	return &DefaultSlotFinder{
		Catalog:       catalog,
		Bookings:      bookings,
		Location:      time.UTC,
		MinCandidates: 20,
		Now:           fixedNow,
	}
}

func TestFindSlotsCarvesAroundBookings(t *testing.T) {
	catalog := &fakeCatalog{
		services: map[string]models.Service{
			"cut": {ID: "cut", SalonID: "salon1", Name: "Haircut", DurationMinutes: 60, Price: 40, Active: true},
		},
		staff: map[string]models.Staff{
			"s1": {ID: "s1", SalonID: "salon1", Name: "Ana", ServiceIDs: []string{"cut"},
				WeeklyHours: allWeekHours(540, 720), Active: true}, // 09:00-12:00
		},
	}
	bookings := &fakeBookingRepo{bookings: []models.Booking{
		{ID: "b1", StaffID: "s1", Date: "2026-03-02", Start: 600, End: 660, Status: models.BookingStatusConfirmed},
	}}

	finder := testFinder(catalog, bookings)
	result, err := finder.FindSlots(context.Background(), "salon1", models.BookingIntent{ServiceID: "cut"}, 1)
	if err != nil {
		t.Fatalf("FindSlots returned error: %v", err)
	}

	if len(result.Slots) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %+v", len(result.Slots), result.Slots)
	}
	if result.Slots[0].Start != 540 || result.Slots[0].End != 600 {
		t.Errorf("first candidate should be 09:00-10:00, got %d-%d", result.Slots[0].Start, result.Slots[0].End)
	}
	if result.Slots[1].Start != 660 || result.Slots[1].End != 720 {
		t.Errorf("second candidate should be 11:00-12:00, got %d-%d", result.Slots[1].Start, result.Slots[1].End)
	}
}

func TestFindSlotsFullyBookedHorizonIsExhausted(t *testing.T) {
	catalog := &fakeCatalog{
		services: map[string]models.Service{
			"cut": {ID: "cut", SalonID: "salon1", Name: "Haircut", DurationMinutes: 60, Price: 40, Active: true},
		},
		staff: map[string]models.Staff{
			"s1": {ID: "s1", SalonID: "salon1", Name: "Ana", ServiceIDs: []string{"cut"},
				WeeklyHours: allWeekHours(540, 720), Active: true},
		},
	}

	repo := &fakeBookingRepo{}
	day := fixedNow()
	for i := 0; i < 30; i++ {
		repo.bookings = append(repo.bookings, models.Booking{
			ID: "b" + day.AddDate(0, 0, i).Format("20060102"), StaffID: "s1",
			Date: day.AddDate(0, 0, i).Format("2006-01-02"),
			Start: 540, End: 720, Status: models.BookingStatusConfirmed,
		})
	}

	finder := testFinder(catalog, repo)
	result, err := finder.FindSlots(context.Background(), "salon1", models.BookingIntent{ServiceID: "cut"}, 30)
	if err != nil {
		t.Fatalf("FindSlots returned error: %v", err)
	}
	if len(result.Slots) != 0 {
		t.Fatalf("expected no candidates, got %d", len(result.Slots))
	}
	if !result.Exhausted {
		t.Error("expected exhausted result after walking the full horizon")
	}
	if result.DaysSearched != 30 {
		t.Errorf("expected 30 days searched, got %d", result.DaysSearched)
	}
}

func TestFindSlotsCandidatesRespectHoursAndBookings(t *testing.T) {
	catalog := &fakeCatalog{
		services: map[string]models.Service{
			"color": {ID: "color", SalonID: "salon1", Name: "Color", DurationMinutes: 90, Price: 120, Active: true},
		},
		staff: map[string]models.Staff{
			"s1": {ID: "s1", SalonID: "salon1", Name: "Ana", ServiceIDs: []string{"color"},
				WeeklyHours: allWeekHours(540, 1080), Active: true},
			"s2": {ID: "s2", SalonID: "salon1", Name: "Ben", ServiceIDs: []string{"color"},
				WeeklyHours: allWeekHours(600, 900), Active: true},
		},
	}
	repo := &fakeBookingRepo{bookings: []models.Booking{
		{ID: "b1", StaffID: "s1", Date: "2026-03-02", Start: 700, End: 800, Status: models.BookingStatusConfirmed},
		{ID: "b2", StaffID: "s2", Date: "2026-03-03", Start: 600, End: 700, Status: models.BookingStatusConfirmed},
	}}

	finder := testFinder(catalog, repo)
	result, err := finder.FindSlots(context.Background(), "salon1", models.BookingIntent{ServiceID: "color"}, 5)
	if err != nil {
		t.Fatalf("FindSlots returned error: %v", err)
	}
	if len(result.Slots) == 0 {
		t.Fatal("expected candidates")
	}

	staffByID := catalog.staff
	for _, slot := range result.Slots {
		day, _ := time.Parse("2006-01-02", slot.Date)
		hours := staffByID[slot.StaffID].HoursOn(int(day.Weekday()))
		if slot.Start < hours.Start || slot.End > hours.End {
			t.Errorf("slot %s outside working hours %d-%d", slot.ID, hours.Start, hours.End)
		}
		if slot.End-slot.Start != 90 {
			t.Errorf("slot %s has wrong duration %d", slot.ID, slot.End-slot.Start)
		}
		for _, b := range repo.bookings {
			if b.StaffID == slot.StaffID && b.Date == slot.Date &&
				slot.Start < b.End && slot.End > b.Start {
				t.Errorf("slot %s overlaps booking %s", slot.ID, b.ID)
			}
		}
	}
}

func TestFindSlotsStaffPreferenceFilters(t *testing.T) {
	catalog := &fakeCatalog{
		services: map[string]models.Service{
			"cut": {ID: "cut", SalonID: "salon1", Name: "Haircut", DurationMinutes: 60, Price: 40, Active: true},
		},
		staff: map[string]models.Staff{
			"s1": {ID: "s1", SalonID: "salon1", Name: "Ana", ServiceIDs: []string{"cut"},
				WeeklyHours: allWeekHours(540, 720), Active: true},
			"s2": {ID: "s2", SalonID: "salon1", Name: "Ben", ServiceIDs: []string{"other"},
				WeeklyHours: allWeekHours(540, 720), Active: true},
		},
	}
	finder := testFinder(catalog, &fakeBookingRepo{})

	result, err := finder.FindSlots(context.Background(), "salon1",
		models.BookingIntent{ServiceID: "cut", StaffID: "s1"}, 2)
	if err != nil {
		t.Fatalf("FindSlots returned error: %v", err)
	}
	for _, slot := range result.Slots {
		if slot.StaffID != "s1" {
			t.Errorf("expected only s1 slots, got %s", slot.StaffID)
		}
	}

	// A preferred staff member not qualified for the service yields nothing.
	result, err = finder.FindSlots(context.Background(), "salon1",
		models.BookingIntent{ServiceID: "cut", StaffID: "s2"}, 2)
	if err != nil {
		t.Fatalf("FindSlots returned error: %v", err)
	}
	if len(result.Slots) != 0 || !result.Exhausted {
		t.Errorf("expected empty exhausted result, got %d slots exhausted=%v", len(result.Slots), result.Exhausted)
	}
}

func TestFindSlotsWiderHorizonDigsDeeper(t *testing.T) {
	catalog := &fakeCatalog{
		services: map[string]models.Service{
			"cut": {ID: "cut", SalonID: "salon1", Name: "Haircut", DurationMinutes: 60, Price: 40, Active: true},
		},
		staff: map[string]models.Staff{
			"s1": {ID: "s1", SalonID: "salon1", Name: "Ana", ServiceIDs: []string{"cut"},
				WeeklyHours: allWeekHours(540, 720), Active: true}, // 3 slots per day
		},
	}
	finder := testFinder(catalog, &fakeBookingRepo{})
	finder.MinCandidates = 3
	finder.BaseHorizonDays = 30

	base, err := finder.FindSlots(context.Background(), "salon1", models.BookingIntent{ServiceID: "cut"}, 30)
	if err != nil {
		t.Fatalf("FindSlots returned error: %v", err)
	}
	if len(base.Slots) != 3 || base.DaysSearched != 1 {
		t.Fatalf("base search should stop after one day with 3 slots, got %d slots over %d days",
			len(base.Slots), base.DaysSearched)
	}

	// Doubling the horizon scales the stopping threshold, so the extended
	// search reaches past the first day instead of returning the same set.
	wider, err := finder.FindSlots(context.Background(), "salon1", models.BookingIntent{ServiceID: "cut"}, 60)
	if err != nil {
		t.Fatalf("FindSlots returned error: %v", err)
	}
	if len(wider.Slots) <= len(base.Slots) {
		t.Fatalf("wider horizon must surface more candidates, got %d vs %d", len(wider.Slots), len(base.Slots))
	}
	dates := map[string]bool{}
	for _, s := range wider.Slots {
		dates[s.Date] = true
	}
	if len(dates) < 2 {
		t.Errorf("wider search must span more days, got dates %v", dates)
	}
}

func TestFindSlotsSkipsPastStartsToday(t *testing.T) {
	catalog := &fakeCatalog{
		services: map[string]models.Service{
			"cut": {ID: "cut", SalonID: "salon1", Name: "Haircut", DurationMinutes: 60, Price: 40, Active: true},
		},
		staff: map[string]models.Staff{
			"s1": {ID: "s1", SalonID: "salon1", Name: "Ana", ServiceIDs: []string{"cut"},
				WeeklyHours: allWeekHours(540, 720), Active: true},
		},
	}
	finder := testFinder(catalog, &fakeBookingRepo{})
	// 10:30 on search day: the 09:00 and 10:00 starts are already gone.
	finder.Now = func() time.Time { return time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC) }

	result, err := finder.FindSlots(context.Background(), "salon1", models.BookingIntent{ServiceID: "cut"}, 1)
	if err != nil {
		t.Fatalf("FindSlots returned error: %v", err)
	}
	if len(result.Slots) != 1 || result.Slots[0].Start != 660 {
		t.Fatalf("expected only the 11:00 start, got %+v", result.Slots)
	}
}
