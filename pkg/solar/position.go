package solar

import (
	"math"
	"time"
)

// SolarPosition describes where the sun is for a site at a given time. All
// angles are in degrees.
type SolarPosition struct {
	SolarTime   float64 `json:"solar_time"` // hours
	Declination float64 `json:"declination"`
	HourAngle   float64 `json:"hour_angle"`
	Zenith      float64 `json:"zenith"`
	Azimuth     float64 `json:"azimuth"`
}

// IncidenceResult is the irradiance reaching a tilted panel.
type IncidenceResult struct {
	SolarTime      float64 `json:"solar_time"`
	IncidenceAngle float64 `json:"incidence_angle"`
	// IncidentIrradiance is G·cos(θi) in W/m². It goes negative when the sun
	// is behind the panel.
	IncidentIrradiance float64 `json:"incident_irradiance"`
}

// DayOfYear returns the ordinal day of t, 1 on January 1st.
func DayOfYear(t time.Time) int {
	return t.YearDay()
}

// EquationOfTime returns the equation of time in hours using the Spencer-style
// approximation with B = 360/365·(d − 81).
func EquationOfTime(dayOfYear int) float64 {
	b := degToRad(360.0 / 365.0 * float64(dayOfYear-81))
	return (9.87*math.Sin(2*b) - 7.53*math.Cos(b) - 1.5*math.Sin(b)) / 60
}

// SolarTime converts the local wall clock of t to apparent solar time in
// hours.
func SolarTime(t time.Time, longitude, meridian, daylightSaving float64) float64 {
	local := float64(t.Hour()) + float64(t.Minute())/60
	return local - (longitude-meridian)/15 + EquationOfTime(DayOfYear(t)) + daylightSaving
}

// Declination returns the solar declination in degrees (Cooper's equation).
func Declination(dayOfYear int) float64 {
	return 23.45 * math.Sin(degToRad(360*(284+float64(dayOfYear))/365))
}

// HourAngle returns the hour angle in degrees, zero at solar noon.
func HourAngle(solarTime float64) float64 {
	return 15 * (solarTime - 12)
}

// ZenithAngle returns the solar zenith angle in degrees.
func ZenithAngle(latitude, declination, hourAngle float64) float64 {
	lat, decl, omega := degToRad(latitude), degToRad(declination), degToRad(hourAngle)
	cosZ := math.Sin(lat)*math.Sin(decl) + math.Cos(lat)*math.Cos(decl)*math.Cos(omega)
	return radToDeg(math.Acos(clampUnit(cosZ)))
}

// SolarAzimuth returns the solar azimuth in degrees.
func SolarAzimuth(latitude, declination, hourAngle float64) float64 {
	lat, decl, omega := degToRad(latitude), degToRad(declination), degToRad(hourAngle)
	return radToDeg(math.Atan2(math.Sin(omega), math.Cos(omega)*math.Sin(lat)-math.Tan(decl)*math.Cos(lat)))
}

// IncidenceAngle returns the angle between the sun beam and the panel normal
// in degrees.
func IncidenceAngle(zenith, solarAzimuth, tilt, panelAzimuth float64) float64 {
	z, beta := degToRad(zenith), degToRad(tilt)
	cosI := math.Sin(z)*math.Cos(degToRad(panelAzimuth-solarAzimuth))*math.Sin(beta) + math.Cos(z)*math.Cos(beta)
	return radToDeg(math.Acos(clampUnit(cosI)))
}

// Position returns the sun position for the site at local time t.
func Position(t time.Time, site Site) SolarPosition {
	doy := DayOfYear(t)
	st := SolarTime(t, site.Longitude, site.Meridian, site.DaylightSaving)
	decl := Declination(doy)
	omega := HourAngle(st)
	return SolarPosition{
		SolarTime:   st,
		Declination: decl,
		HourAngle:   omega,
		Zenith:      ZenithAngle(site.Latitude, decl, omega),
		Azimuth:     SolarAzimuth(site.Latitude, decl, omega),
	}
}

// Incidence projects a global irradiance reading onto a panel with the given
// orientation.
func Incidence(t time.Time, globalIrradiance float64, site Site, o Orientation) IncidenceResult {
	pos := Position(t, site)
	theta := IncidenceAngle(pos.Zenith, pos.Azimuth, o.Tilt, o.Azimuth)
	return IncidenceResult{
		SolarTime:          pos.SolarTime,
		IncidenceAngle:     theta,
		IncidentIrradiance: globalIrradiance * math.Cos(degToRad(theta)),
	}
}

// clampUnit keeps acos arguments inside [-1, 1] against rounding.
func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
