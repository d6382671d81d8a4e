package solar

import (
	"math"
	"time"
)

// SunriseSunset returns sunrise and sunset for the calendar day of day, in
// the site's local time. ok is false during polar day or polar night.
func SunriseSunset(day time.Time, site Site) (sunrise, sunset time.Time, ok bool) {
	doy := float64(day.YearDay())
	inner := degToRad(356.6 + 0.9856*doy)
	outer := degToRad(278.97 + 0.9856*doy + 1.9165*math.Sin(inner))
	decl := math.Asin(0.39785 * math.Sin(outer))

	// At the horizon cos(H) = -tan(lat)·tan(δ).
	cosH := -math.Tan(degToRad(site.Latitude)) * math.Tan(decl)
	if cosH < -1.0 || cosH > 1.0 {
		return time.Time{}, time.Time{}, false
	}
	halfDay := radToDeg(math.Acos(cosH)) / 15.0 * 60.0 // minutes

	loc := site.Location()
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	noonUTC := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, time.UTC)

	// Solar noon in UTC minutes, shifted into the site's zone.
	solarNoon := 720.0 - 4.0*site.Longitude - equationOfTimeMinutes(noonUTC)
	_, offset := midnight.Zone()
	solarNoon += float64(offset) / 60.0

	sunrise = midnight.Add(time.Duration(math.Round(solarNoon-halfDay)) * time.Minute)
	sunset = midnight.Add(time.Duration(math.Round(solarNoon+halfDay)) * time.Minute)
	return sunrise, sunset, true
}
