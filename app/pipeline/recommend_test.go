package pipeline

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/localpulse/pulse/app/database"
)

func recommendArticle() *database.Article {
	return &database.Article{
		ID:      "art-1",
		Title:   "Nacional vs Millonarios: la final se juega en Medellín",
		Content: "El estadio espera lleno total.",
	}
}

func eventIn(days int, now time.Time) *time.Time {
	start := now.AddDate(0, 0, days)
	return &start
}

func TestRecommendationGenerator_SportsMatchForPub(t *testing.T) {
	gen := NewRecommendationGenerator()
	now := testNow()

	feats := Features{
		EventType:  "sports_match",
		Scale:      database.ScaleMassive,
		EventStart: eventIn(5, now),
	}
	business := database.Business{ID: "biz-1", Type: "pub"}

	recs := gen.Generate(recommendArticle(), feats, business, 0.8, now)

	if len(recs) != 3 {
		t.Fatalf("Expected 3 recommendations for a pub, got %d", len(recs))
	}

	for i, rec := range recs {
		if rec.Slot != i {
			t.Errorf("Expected slot %d at position %d, got %d", i, i, rec.Slot)
		}
		if rec.ArticleID != "art-1" || rec.BusinessID != "biz-1" {
			t.Errorf("Recommendation %d carries wrong pair: %s/%s", i, rec.ArticleID, rec.BusinessID)
		}
		if rec.ConfidenceScore != 0.8 {
			t.Errorf("Recommendation %d: expected confidence 0.8, got %f", i, rec.ConfidenceScore)
		}
	}

	// Massive scale escalates the first slot to urgent.
	if recs[0].Priority != "urgent" {
		t.Errorf("Expected urgent priority for massive event, got %q", recs[0].Priority)
	}

	// 0.7*0.8 + 0.3 massive bonus + 0.1 within a week.
	if math.Abs(recs[0].ImpactScore-0.96) > 0.0001 {
		t.Errorf("Expected impact 0.96, got %f", recs[0].ImpactScore)
	}

	if math.Abs(recs[0].EffortScore-0.5) > 0.0001 {
		t.Errorf("Expected effort 12h/24 = 0.5, got %f", recs[0].EffortScore)
	}
}

func TestRecommendationGenerator_BusinessTypeFiltering(t *testing.T) {
	gen := NewRecommendationGenerator()
	now := testNow()

	feats := Features{
		EventType:  "sports_match",
		Scale:      database.ScaleMedium,
		EventStart: eventIn(5, now),
	}

	bookstore := database.Business{ID: "biz-2", Type: "bookstore"}
	if recs := gen.Generate(recommendArticle(), feats, bookstore, 0.6, now); len(recs) != 0 {
		t.Errorf("Expected no sports recommendations for a bookstore, got %d", len(recs))
	}

	coffeeShop := database.Business{ID: "biz-3", Type: "coffee_shop"}
	recs := gen.Generate(recommendArticle(), feats, coffeeShop, 0.6, now)
	if len(recs) != 1 {
		t.Fatalf("Expected only the marketing template for a coffee shop, got %d", len(recs))
	}
	if recs[0].Slot != 0 {
		t.Errorf("Expected slot 0, got %d", recs[0].Slot)
	}
}

func TestRecommendationGenerator_LeadTimeThresholds(t *testing.T) {
	gen := NewRecommendationGenerator()
	now := testNow()

	feats := Features{
		EventType:  "sports_match",
		Scale:      database.ScaleMedium,
		EventStart: eventIn(12, now),
	}
	business := database.Business{ID: "biz-1", Type: "pub"}

	// Twelve days out: only the 14-day marketing template is actionable,
	// the 10-day and 7-day ones are too far ahead.
	recs := gen.Generate(recommendArticle(), feats, business, 0.6, now)
	if len(recs) != 1 {
		t.Fatalf("Expected 1 recommendation at 12 days out, got %d", len(recs))
	}
	if recs[0].Slot != 0 {
		t.Errorf("Expected the marketing slot, got %d", recs[0].Slot)
	}
}

func TestRecommendationGenerator_PriorityEscalation(t *testing.T) {
	gen := NewRecommendationGenerator()
	now := testNow()

	feats := Features{
		EventType:  "sports_match",
		Scale:      database.ScaleMedium,
		EventStart: eventIn(1, now),
	}
	business := database.Business{ID: "biz-1", Type: "pub"}

	recs := gen.Generate(recommendArticle(), feats, business, 0.6, now)
	if len(recs) != 3 {
		t.Fatalf("Expected 3 recommendations one day out, got %d", len(recs))
	}

	// Medium scale leaves the default medium priority, escalated one step
	// for an imminent event.
	for i, rec := range recs {
		if rec.Priority != "high" {
			t.Errorf("Recommendation %d: expected high priority for imminent event, got %q", i, rec.Priority)
		}
	}
}

func TestRecommendationGenerator_PastEvent(t *testing.T) {
	gen := NewRecommendationGenerator()
	now := testNow()

	feats := Features{
		EventType:  "sports_match",
		Scale:      database.ScaleMassive,
		EventStart: eventIn(-2, now),
	}
	business := database.Business{ID: "biz-1", Type: "pub"}

	if recs := gen.Generate(recommendArticle(), feats, business, 0.9, now); recs != nil {
		t.Errorf("Expected no recommendations for a past event, got %d", len(recs))
	}
}

func TestRecommendationGenerator_UnknownDate(t *testing.T) {
	gen := NewRecommendationGenerator()
	now := testNow()

	feats := Features{EventType: "sports_match", Scale: database.ScaleMedium}
	business := database.Business{ID: "biz-1", Type: "pub"}

	recs := gen.Generate(recommendArticle(), feats, business, 0.6, now)
	if len(recs) != 3 {
		t.Fatalf("Expected all templates without a known date, got %d", len(recs))
	}

	for i, rec := range recs {
		if rec.Priority != "medium" {
			t.Errorf("Recommendation %d: expected no escalation without a date, got %q", i, rec.Priority)
		}
		if rec.RecommendedStart != nil || rec.RecommendedEnd != nil {
			t.Errorf("Recommendation %d: expected no recommended window without a date", i)
		}
		// 0.7*0.6 + 0.1 medium bonus, no date bonus.
		if math.Abs(rec.ImpactScore-0.52) > 0.0001 {
			t.Errorf("Recommendation %d: expected impact 0.52, got %f", i, rec.ImpactScore)
		}
	}
}

func TestRecommendationGenerator_UnknownEventType(t *testing.T) {
	gen := NewRecommendationGenerator()

	feats := Features{EventType: "politics", Scale: database.ScaleLarge}
	business := database.Business{ID: "biz-1", Type: "pub"}

	if recs := gen.Generate(recommendArticle(), feats, business, 0.9, testNow()); recs != nil {
		t.Errorf("Expected no recommendations for politics, got %d", len(recs))
	}
}

func TestRecommendationGenerator_RendersPlaceholders(t *testing.T) {
	gen := NewRecommendationGenerator()
	now := testNow()

	feats := Features{
		EventType:  "sports_match",
		Scale:      database.ScaleMassive,
		EventStart: eventIn(3, now),
	}
	business := database.Business{ID: "biz-1", Type: "pub"}
	article := recommendArticle()

	recs := gen.Generate(article, feats, business, 0.8, now)
	if len(recs) != 3 {
		t.Fatalf("Expected 3 recommendations, got %d", len(recs))
	}

	if !strings.Contains(recs[0].Title, article.Title) {
		t.Errorf("Expected {event} replaced with the article title, got %q", recs[0].Title)
	}
	if strings.Contains(recs[0].Description, "{traffic}") {
		t.Errorf("Unreplaced placeholder in %q", recs[0].Description)
	}
	if !strings.Contains(recs[0].Description, "300") {
		t.Errorf("Expected massive-scale traffic estimate, got %q", recs[0].Description)
	}
	if !strings.Contains(recs[1].Title, "400") {
		t.Errorf("Expected massive-scale stock estimate, got %q", recs[1].Title)
	}

	if recs[0].RecommendedStart == nil || recs[0].RecommendedEnd == nil {
		t.Fatal("Expected a recommended window for a dated event")
	}
	if !recs[0].RecommendedEnd.Equal(*feats.EventStart) {
		t.Errorf("Expected window to end at the event start")
	}
}
