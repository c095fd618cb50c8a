package pipeline

import (
	"math"
	"testing"

	"github.com/localpulse/pulse/app/database"
)

func matcherArticle(title, content string) *database.Article {
	return &database.Article{ID: "art-1", Title: title, Content: content}
}

func TestBusinessMatcher_SuitabilityContribution(t *testing.T) {
	matcher := NewBusinessMatcher()
	snap := newTestSnapshot()

	article := matcherArticle("Evento en la ciudad", "Sin palabras clave relevantes.")
	business := database.Business{ID: "biz-1", Type: "bookstore"}

	score := matcher.Relevance(article, Features{Scale: database.ScaleSmall}, 1.0, business, snap)
	if math.Abs(score-0.3) > 0.0001 {
		t.Errorf("Expected 0.3 from suitability alone, got %f", score)
	}
}

func TestBusinessMatcher_CustomKeywords(t *testing.T) {
	matcher := NewBusinessMatcher()
	snap := newTestSnapshot()

	article := matcherArticle("Festival de jazz", "El festival de jazz llega al teatro.")
	business := database.Business{
		ID:   "biz-1",
		Type: "bookstore",
		Keywords: []database.BusinessKeyword{
			{Keyword: "jazz", Weight: 1.0},
			{Keyword: "reguetón", Weight: 1.0, IsNegative: true},
		},
	}

	score := matcher.Relevance(article, Features{Scale: database.ScaleSmall}, 0.5, business, snap)

	// 0.5*0.3 plus one 1.0-weight keyword scaled by 0.2.
	expected := 0.15 + 0.2
	if math.Abs(score-expected) > 0.0001 {
		t.Errorf("Expected %.4f, got %.4f", expected, score)
	}
}

func TestBusinessMatcher_NegativeKeywordIgnored(t *testing.T) {
	matcher := NewBusinessMatcher()
	snap := newTestSnapshot()

	article := matcherArticle("Noche de reguetón", "Llega el reguetón a la ciudad.")
	business := database.Business{
		ID:   "biz-1",
		Type: "bookstore",
		Keywords: []database.BusinessKeyword{
			{Keyword: "reguetón", Weight: 1.0, IsNegative: true},
		},
	}

	score := matcher.Relevance(article, Features{Scale: database.ScaleSmall}, 0.5, business, snap)
	if math.Abs(score-0.15) > 0.0001 {
		t.Errorf("Negative keyword should not contribute, got %f", score)
	}
}

func TestBusinessMatcher_TypeKeywordsUnscaled(t *testing.T) {
	matcher := NewBusinessMatcher()
	snap := newTestSnapshot()

	article := matcherArticle("Feria de la cerveza", "La cerveza artesanal toma el parque.")
	business := database.Business{ID: "biz-1", Type: "pub"}

	score := matcher.Relevance(article, Features{Scale: database.ScaleSmall}, 0.5, business, snap)

	// 0.5*0.3 plus the pub type keyword at its full 0.15 weight.
	expected := 0.15 + 0.15
	if math.Abs(score-expected) > 0.0001 {
		t.Errorf("Expected %.4f, got %.4f", expected, score)
	}
}

func TestBusinessMatcher_ScaleBonus(t *testing.T) {
	matcher := NewBusinessMatcher()
	snap := newTestSnapshot()

	article := matcherArticle("Evento", "Sin detalle adicional.")
	business := database.Business{ID: "biz-1", Type: "bookstore"}

	cases := []struct {
		scale    string
		expected float64
	}{
		{database.ScaleSmall, 0.15},
		{database.ScaleMedium, 0.20},
		{database.ScaleLarge, 0.30},
		{database.ScaleMassive, 0.35},
	}

	for _, c := range cases {
		score := matcher.Relevance(article, Features{Scale: c.scale}, 0.5, business, snap)
		if math.Abs(score-c.expected) > 0.0001 {
			t.Errorf("Scale %q: expected %.4f, got %.4f", c.scale, c.expected, score)
		}
	}
}

func TestBusinessMatcher_NeighborhoodProximity(t *testing.T) {
	matcher := NewBusinessMatcher()
	snap := newTestSnapshot()

	article := matcherArticle("Evento en el barrio", "Actividad de fin de semana.")
	business := database.Business{ID: "biz-1", Type: "bookstore", Neighborhood: "El Poblado"}

	feats := Features{Scale: database.ScaleSmall, Neighborhood: "el poblado"}
	score := matcher.Relevance(article, feats, 0.5, business, snap)

	expected := 0.15 + 0.3
	if math.Abs(score-expected) > 0.0001 {
		t.Errorf("Expected %.4f with neighborhood bonus, got %.4f", expected, score)
	}
}

func TestBusinessMatcher_CoordinateProximity(t *testing.T) {
	matcher := NewBusinessMatcher()
	snap := newTestSnapshot()

	article := matcherArticle("Evento cercano", "Actividad en el sector.")
	article.Latitude = floatPtr(6.2566)
	article.Longitude = floatPtr(-75.5906)

	business := database.Business{
		ID:        "biz-1",
		Type:      "bookstore",
		Latitude:  floatPtr(6.2088),
		Longitude: floatPtr(-75.5679),
		RadiusKm:  10,
	}

	score := matcher.Relevance(article, Features{Scale: database.ScaleSmall}, 0.5, business, snap)
	expected := 0.15 + 0.3
	if math.Abs(score-expected) > 0.0001 {
		t.Errorf("Expected %.4f inside the radius, got %.4f", expected, score)
	}

	business.RadiusKm = 1
	score = matcher.Relevance(article, Features{Scale: database.ScaleSmall}, 0.5, business, snap)
	if math.Abs(score-0.15) > 0.0001 {
		t.Errorf("Expected %.4f outside the radius, got %.4f", 0.15, score)
	}
}

func TestBusinessMatcher_ClippedAtOne(t *testing.T) {
	matcher := NewBusinessMatcher()
	snap := newTestSnapshot()

	article := matcherArticle("Cerveza y jazz", "Gran festival con cerveza y jazz para todos.")
	business := database.Business{
		ID:           "biz-1",
		Type:         "pub",
		Neighborhood: "Laureles",
		Keywords: []database.BusinessKeyword{
			{Keyword: "jazz", Weight: 2.0},
			{Keyword: "cerveza", Weight: 2.0},
		},
	}

	feats := Features{Scale: database.ScaleMassive, Neighborhood: "Laureles"}
	score := matcher.Relevance(article, feats, 1.0, business, snap)
	if score != 1.0 {
		t.Errorf("Expected score clipped to 1.0, got %f", score)
	}
}
