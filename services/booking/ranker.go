package booking

import (
	"sort"
	"time"

	"salonflow/models"
)

// Scoring constants for AlternativeRanker.
const (
	staffMatchBonus    = 1000
	within60Bonus      = 500
	within120Bonus     = 300
	sameDateBonus      = 200
	distancePenaltyDiv = 10
)

// AlternativeRanker orders slot candidates by closeness to the customer's
// stated preference. Deterministic and explainable: additive bonuses minus a
// time-distance penalty.
type AlternativeRanker struct {
	Location *time.Location
}

func (r *AlternativeRanker) loc() *time.Location {
	if r.Location != nil {
		return r.Location
	}
	return time.Local
}

// Rank scores the candidates against the intent and stable-sorts them
// descending by score, so equal scores retain the finder's day-then-staff
// enumeration order. searchStart anchors the distance penalty when the
// intent carries no preferred date or time.
func (r *AlternativeRanker) Rank(slots []models.SlotCandidate, intent models.BookingIntent, searchStart time.Time) []models.RankedSlot {
	refDate := intent.PreferredDate
	if refDate == "" {
		refDate = searchStart.In(r.loc()).Format(dateLayout)
	}
	refMinute := searchStart.In(r.loc()).Hour()*60 + searchStart.In(r.loc()).Minute()
	if intent.HasTime {
		refMinute = intent.PreferredTime
	}

	ranked := make([]models.RankedSlot, 0, len(slots))
	for _, slot := range slots {
		diff := r.timeDistance(slot, refDate, refMinute)

		score := 0
		if intent.StaffID != "" && slot.StaffID == intent.StaffID {
			score += staffMatchBonus
		}
		if intent.HasTime {
			// Non-exclusive tiers by value; only the larger one applies.
			if diff <= 60 {
				score += within60Bonus
			} else if diff <= 120 {
				score += within120Bonus
			}
		}
		if intent.PreferredDate != "" && slot.Date == intent.PreferredDate {
			score += sameDateBonus
		}
		// The distance penalty always applies, even without a stated time:
		// "no preference" ranks as preference-equals-now.
		score -= diff / distancePenaltyDiv

		ranked = append(ranked, models.RankedSlot{
			SlotCandidate:  slot,
			Score:          score,
			ProximityLabel: r.proximityLabel(slot, intent, refDate, diff),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// timeDistance is the absolute difference in minutes between the slot start
// and the reference point, spanning day boundaries. Day deltas come from
// UTC-parsed calendar dates; a DST transition never shortens a day here.
func (r *AlternativeRanker) timeDistance(slot models.SlotCandidate, refDate string, refMinute int) int {
	slotDay, err1 := time.Parse(dateLayout, slot.Date)
	refDay, err2 := time.Parse(dateLayout, refDate)
	if err1 != nil || err2 != nil {
		return 0
	}
	dayDiff := int(slotDay.Sub(refDay).Hours() / 24)
	diff := dayDiff*24*60 + slot.Start - refMinute
	if diff < 0 {
		diff = -diff
	}
	return diff
}

func (r *AlternativeRanker) proximityLabel(slot models.SlotCandidate, intent models.BookingIntent, refDate string, diff int) string {
	switch {
	case diff == 0 && (intent.StaffID == "" || slot.StaffID == intent.StaffID):
		return models.ProximityExact
	case diff <= 60:
		return models.ProximityClose
	case slot.Date == refDate:
		return models.ProximitySameDay
	case diff <= 7*24*60:
		return models.ProximitySameWeek
	default:
		return models.ProximityAlt
	}
}
