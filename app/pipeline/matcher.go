package pipeline

import (
	"strings"

	"github.com/localpulse/pulse/app/database"
	"github.com/localpulse/pulse/app/taxonomy"
)

// BusinessMatcher scores how relevant one article is to one business.
// It only runs for pairs that passed the geographic gate.
type BusinessMatcher struct{}

func NewBusinessMatcher() *BusinessMatcher {
	return &BusinessMatcher{}
}

// Relevance combines the global suitability score with per-business and
// per-type keyword matches, event scale, and proximity. Clipped to 1.0.
func (m *BusinessMatcher) Relevance(article *database.Article, feats Features, suitability float64, business database.Business, snap *taxonomy.Snapshot) float64 {
	text := strings.ToLower(article.Title + " " + article.Content)

	score := suitability * 0.3

	for _, kw := range business.Keywords {
		if kw.IsNegative {
			continue
		}
		if strings.Contains(text, strings.ToLower(kw.Keyword)) {
			score += kw.Weight * 0.2
		}
	}

	for _, kw := range snap.TypeKeywords[business.Type] {
		if strings.Contains(text, strings.ToLower(kw.Keyword)) {
			score += kw.Weight
		}
	}

	switch feats.Scale {
	case database.ScaleMassive:
		score += 0.2
	case database.ScaleLarge:
		score += 0.15
	case database.ScaleMedium:
		score += 0.05
	}

	if m.nearby(article, feats, business) {
		score += 0.3
	}

	if score > 1.0 {
		return 1.0
	}
	return score
}

// nearby reports whether the event is in the business's immediate area:
// an exact neighborhood name match, or coordinates that fall inside the
// business's configured radius.
func (m *BusinessMatcher) nearby(article *database.Article, feats Features, business database.Business) bool {
	if feats.Neighborhood != "" && business.Neighborhood != "" &&
		strings.EqualFold(feats.Neighborhood, business.Neighborhood) {
		return true
	}

	if article.Latitude != nil && article.Longitude != nil &&
		business.Latitude != nil && business.Longitude != nil {
		distance := haversineKm(*article.Latitude, *article.Longitude,
			*business.Latitude, *business.Longitude)
		return distance <= business.RadiusKm
	}

	return false
}
