// Package solar computes sun position, panel incidence angles and clear-sky
// irradiance for a fixed site.
package solar

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// Site is a fixed installation location. Longitudes and the time-zone
// meridian are in degrees, positive east. Times handed to this package are
// local wall-clock times at the meridian.
type Site struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Altitude  float64 `json:"altitude" yaml:"altitude"` // meters
	Meridian  float64 `json:"meridian" yaml:"meridian"`
	// DaylightSaving is added to solar time, in hours.
	DaylightSaving float64 `json:"daylight_saving" yaml:"daylight_saving"`
}

// Orientation of a panel: Tilt from the horizontal plane and Azimuth of the
// panel normal measured from north, both in degrees.
type Orientation struct {
	Tilt    float64 `json:"tilt" yaml:"tilt"`
	Azimuth float64 `json:"azimuth" yaml:"azimuth"`
}

// Location returns the fixed time zone implied by the site's meridian.
func (s Site) Location() *time.Location {
	offset := int(math.Round(s.Meridian / 15 * 3600))
	return time.FixedZone("", offset)
}

// utc reinterprets the wall clock of t as local time at the site's meridian.
func (s Site) utc(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), s.Location()).UTC()
}

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}

func radToDeg(rad float64) float64 {
	return rad * (180.0 / math.Pi)
}

// fixAngle normalizes an angle to the range [0, 360) degrees
func fixAngle(angle float64) float64 {
	return angle - 360.0*math.Floor(angle/360.0)
}

// equationOfTimeMinutes is the NOAA form of the equation of time for a UTC
// instant, in minutes.
func equationOfTimeMinutes(t time.Time) float64 {
	jd := julian.TimeToJD(t.UTC())
	T := (jd - 2451545.0) / 36525.0 // Julian centuries since J2000.0

	L0 := fixAngle(280.46646 + T*(36000.76983+T*0.0003032))            // mean longitude
	M := fixAngle(357.52911 + T*(35999.05029-T*0.0001537))             // mean anomaly
	e := 0.016708634 - T*(0.000042037+T*0.0000001267)                  // orbital eccentricity
	eps0 := 23 + (26+(21.448-T*(46.815+T*(0.00059-T*0.001813)))/60)/60 // mean obliquity

	y := math.Tan(degToRad(eps0)/2) * math.Tan(degToRad(eps0)/2)
	return radToDeg(y*math.Sin(degToRad(2*L0))-
		2*e*math.Sin(degToRad(M))+
		4*e*y*math.Sin(degToRad(M))*math.Cos(degToRad(2*L0))-
		0.5*y*y*math.Sin(degToRad(4*L0))-
		1.25*e*e*math.Sin(degToRad(2*M))) * 4
}
