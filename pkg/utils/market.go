package utils

import (
	"time"
)

// USEasternLocation is the timezone for US equity markets.
var USEasternLocation *time.Location

func init() {
	var err error
	USEasternLocation, err = time.LoadLocation("America/New_York")
	if err != nil {
		// Fallback to UTC-5
		USEasternLocation = time.FixedZone("EST", -5*60*60)
	}
}

// IsMarketOpenAt reports whether US equity markets are in their regular
// session (9:30-16:00 Eastern, Monday through Friday) at the given time.
// Exchange holidays are not tracked; a holiday fetch just returns stale
// bars that replace-on-write makes harmless.
func IsMarketOpenAt(t time.Time) bool {
	et := t.In(USEasternLocation)

	if et.Weekday() == time.Saturday || et.Weekday() == time.Sunday {
		return false
	}

	timeMinutes := et.Hour()*60 + et.Minute()

	// Regular session: 9:30 - 16:00
	return timeMinutes >= 570 && timeMinutes < 960
}

// IsMarketOpen reports whether US equity markets are open right now.
func IsMarketOpen() bool {
	return IsMarketOpenAt(time.Now())
}

// NextMarketOpen returns the next regular session opening time.
func NextMarketOpen() time.Time {
	now := time.Now().In(USEasternLocation)

	// Start with today at 9:30
	next := time.Date(now.Year(), now.Month(), now.Day(), 9, 30, 0, 0, USEasternLocation)

	// If already past today's open, move to tomorrow
	if now.After(next) {
		next = next.AddDate(0, 0, 1)
	}

	// Skip weekends
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}

	return next
}
