// Package geo has the small geographic helpers shared by the scanners and
// the read API.
package geo

import (
	"fmt"
	"math"
	"regexp"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// meanEarthRadius in meters. orb's haversine uses the equatorial radius.
const meanEarthRadius = 6371000.0

// Distance returns the great-circle distance between a and b in whole meters.
func Distance(a, b orb.Point) int {
	d := geo.DistanceHaversine(a, b) / orb.EarthRadius * meanEarthRadius
	return int(math.Round(d))
}

// FormatDistance renders meters as "850m" or "1.2km".
func FormatDistance(meters int) string {
	if meters < 1000 {
		return fmt.Sprintf("%dm", meters)
	}
	return fmt.Sprintf("%.1fkm", float64(meters)/1000)
}

var localityPattern = regexp.MustCompile(`([^\s都道府県]+[区市町村])`)

// Locality extracts the ward or municipality from a Japanese address, e.g.
// "東京都渋谷区神南1-4-8" yields "渋谷区". It returns "" when nothing matches.
func Locality(address string) string {
	m := localityPattern.FindStringSubmatch(address)
	if m == nil {
		return ""
	}
	return m[1]
}
