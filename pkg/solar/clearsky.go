package solar

import (
	"math"
	"time"
)

const (
	solarConstant  = 1361.0 // W/m² at the top of the atmosphere
	linkeTurbidity = 2.0
)

// ClearSkyGHI estimates global horizontal irradiance in W/m² for a cloudless
// sky with the Ineichen-Perez model. t is local time at the site.
func ClearSkyGHI(t time.Time, site Site) float64 {
	utc := site.utc(t)
	n := utc.YearDay()

	delta := 23.45 * math.Sin(degToRad(360.0/365.0*float64(n-81)))

	// True solar time from UTC, longitude and the equation of time.
	utcMin := float64(utc.Hour()*60+utc.Minute()) + float64(utc.Second())/60.0
	tst := utcMin + 4*site.Longitude + equationOfTimeMinutes(utc)
	h := tst/4 - 180

	lat := degToRad(site.Latitude)
	cosZ := math.Sin(lat)*math.Sin(degToRad(delta)) + math.Cos(lat)*math.Cos(degToRad(delta))*math.Cos(degToRad(h))
	zenith := radToDeg(math.Acos(clampUnit(cosZ)))
	if zenith >= 90.0 {
		return 0
	}

	g0 := solarConstant * (1 + 0.033*math.Cos(degToRad(360.0*(float64(n)-3)/365.0)))

	// Kasten-Young air mass
	am := 1.0 / (math.Cos(degToRad(zenith)) + 0.50572*math.Pow(96.07995-zenith, -1.6364))
	dni := g0 * 0.7 * math.Exp(-0.027*am*linkeTurbidity*math.Exp(-site.Altitude/8000.0))
	fh := 0.1 + 0.05*math.Sin(math.Pi*float64(n-100)/365.0)
	dhi := fh * g0 * math.Sin(degToRad(zenith))

	return dni*math.Cos(degToRad(zenith)) + dhi
}
