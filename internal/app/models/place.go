package models

import (
	"time"

	"github.com/paulmach/orb"
)

// OpeningHours is the opaque provider opening-hours object; Place only
// needs to answer "is it open" questions, never to expose the raw schedule.
type OpeningHours struct {
	OpenNow bool
	Periods []OpeningPeriod
}

// OpeningPeriod is one open/close window in a week-relative schedule.
type OpeningPeriod struct {
	OpenDay   time.Weekday
	OpenTime  string // "HHMM"
	CloseDay  time.Weekday
	CloseTime string // "HHMM"
}

// IsOpenNow reports the provider's own open-now flag when present.
func (h *OpeningHours) IsOpenNow() (bool, bool) {
	if h == nil {
		return false, false
	}
	return h.OpenNow, true
}

// IsOpenAt evaluates the period table against an arbitrary timestamp. It
// returns ok=false when no period data is available, in which case callers
// must treat the place as unknown rather than closed.
func (h *OpeningHours) IsOpenAt(ts time.Time) (bool, bool) {
	if h == nil || len(h.Periods) == 0 {
		return false, false
	}
	day := ts.Weekday()
	clock := ts.Format("1504")
	for _, p := range h.Periods {
		if p.OpenDay == day && clock >= p.OpenTime && (p.CloseDay != day || clock <= p.CloseTime) {
			return true, true
		}
	}
	return false, true
}

// Place is the normalised provider result every downstream stage operates
// on — the single boundary type replacing any duck-typed provider payload.
type Place struct {
	PlaceID          string        `json:"placeId"`
	Name             string        `json:"name"`
	Types            []string      `json:"types,omitempty"`
	Address          string        `json:"address,omitempty"`
	LatLng           orb.Point     `json:"latLng"`
	Rating           *float64      `json:"rating,omitempty"`
	UserRatingsTotal *int          `json:"userRatingsTotal,omitempty"`
	PriceLevel       *int          `json:"priceLevel,omitempty"`
	OpeningHours     *OpeningHours `json:"openingHours,omitempty"`
}
