package pipeline

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/localpulse/pulse/app/database"
)

// Event types worth watching on a screen for businesses following a
// foreign event with local involvement.
var watchableEventTypes = map[string]bool{
	"sports_match": true,
	"marathon":     true,
	"tournament":   true,
}

var cityFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeCity lowercases and strips diacritics so "Medellín" and
// "medellin" compare equal.
func normalizeCity(city string) string {
	folded, _, err := transform.String(cityFolder, city)
	if err != nil {
		folded = city
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// haversineKm is the great-circle distance between two points in
// kilometers, used by the relevance scorer only. The eligibility gate is
// city and flag based.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371

	lat1, lon1 = lat1*math.Pi/180, lon1*math.Pi/180
	lat2, lon2 = lat2*math.Pi/180, lon2*math.Pi/180

	dlat := lat2 - lat1
	dlon := lon2 - lon1
	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// GeographicMatcher is the binary eligibility gate evaluated before the
// relevance scorer. Unknown locations default to ineligible unless the
// event is massive and the business opted into national coverage.
type GeographicMatcher struct {
	homeCountry string
}

func NewGeographicMatcher(homeCountry string) *GeographicMatcher {
	return &GeographicMatcher{homeCountry: homeCountry}
}

func (m *GeographicMatcher) Eligible(feats Features, business database.Business) bool {
	// Known foreign event.
	if feats.Country != "" && feats.Country != m.homeCountry {
		if !feats.LocalInvolvement {
			return false
		}
		return business.HasScreens && watchableEventTypes[feats.EventType]
	}

	// Home-country event with a known city.
	if feats.City != "" {
		if normalizeCity(feats.City) == normalizeCity(business.City) {
			return true
		}
		if !business.IncludeNational {
			return false
		}
		return feats.Scale == database.ScaleLarge || feats.Scale == database.ScaleMassive
	}

	// Unknown location.
	return feats.Scale == database.ScaleMassive && business.IncludeNational
}
