package pipeline

import (
	"math"
	"testing"

	"github.com/localpulse/pulse/app/database"
)

func TestGeographicMatcher_HomeCityMatch(t *testing.T) {
	matcher := NewGeographicMatcher("Colombia")

	feats := Features{City: "Medellín", Country: "Colombia", Scale: database.ScaleSmall}
	business := database.Business{City: "medellin", Country: "Colombia"}

	if !matcher.Eligible(feats, business) {
		t.Error("Accent-insensitive city match should be eligible regardless of scale")
	}
}

func TestGeographicMatcher_OtherCityRequiresNationalOptIn(t *testing.T) {
	matcher := NewGeographicMatcher("Colombia")

	feats := Features{City: "Bogotá", Country: "Colombia", Scale: database.ScaleMassive}
	business := database.Business{City: "Medellín", IncludeNational: false}

	if matcher.Eligible(feats, business) {
		t.Error("Business without national opt-in should never match another city")
	}

	business.IncludeNational = true
	if !matcher.Eligible(feats, business) {
		t.Error("Massive event in another city should match with national opt-in")
	}

	feats.Scale = database.ScaleMedium
	if matcher.Eligible(feats, business) {
		t.Error("Medium event in another city should not match even with opt-in")
	}

	feats.Scale = database.ScaleLarge
	if !matcher.Eligible(feats, business) {
		t.Error("Large event in another city should match with national opt-in")
	}
}

func TestGeographicMatcher_ForeignEvent(t *testing.T) {
	matcher := NewGeographicMatcher("Colombia")

	business := database.Business{City: "Medellín", HasScreens: true, IncludeNational: true}

	feats := Features{Country: "Qatar", EventType: "sports_match"}
	if matcher.Eligible(feats, business) {
		t.Error("Foreign event without local involvement should never be eligible")
	}

	feats.LocalInvolvement = true
	if !matcher.Eligible(feats, business) {
		t.Error("Watchable foreign event with involvement should match a screened business")
	}

	business.HasScreens = false
	if matcher.Eligible(feats, business) {
		t.Error("Foreign event should not match a business without screens")
	}

	business.HasScreens = true
	feats.EventType = "concert"
	if matcher.Eligible(feats, business) {
		t.Error("Non-watchable foreign event should not match")
	}
}

func TestGeographicMatcher_UnknownLocation(t *testing.T) {
	matcher := NewGeographicMatcher("Colombia")

	feats := Features{Scale: database.ScaleMassive}
	business := database.Business{City: "Medellín", IncludeNational: true}

	if !matcher.Eligible(feats, business) {
		t.Error("Massive event with unknown location should match a national business")
	}

	business.IncludeNational = false
	if matcher.Eligible(feats, business) {
		t.Error("Unknown location should not match without national opt-in")
	}

	business.IncludeNational = true
	feats.Scale = database.ScaleLarge
	if matcher.Eligible(feats, business) {
		t.Error("Only massive unknown-location events should match")
	}
}

func TestNormalizeCity(t *testing.T) {
	cases := []struct {
		in, expected string
	}{
		{"Medellín", "medellin"},
		{" BOGOTÁ ", "bogota"},
		{"cali", "cali"},
		{"Itagüí", "itagui"},
	}

	for _, c := range cases {
		if got := normalizeCity(c.in); got != c.expected {
			t.Errorf("normalizeCity(%q): expected %q, got %q", c.in, c.expected, got)
		}
	}
}

func TestHaversineKm(t *testing.T) {
	// Estadio Atanasio Girardot to Parque Lleras is roughly 4 km.
	distance := haversineKm(6.2566, -75.5906, 6.2088, -75.5679)
	if distance < 3 || distance > 7 {
		t.Errorf("Expected roughly 4-6 km, got %f", distance)
	}

	if got := haversineKm(6.25, -75.56, 6.25, -75.56); math.Abs(got) > 0.0001 {
		t.Errorf("Expected zero distance for identical points, got %f", got)
	}
}
