package taxonomy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/localpulse/pulse/app/database"
)

type fakeSeedStore struct {
	existing  int
	types     []database.EventType
	subtypes  []database.EventSubtype
	patterns  []database.ExtractionPattern
	sports    []database.SportType
	levels    []database.CompetitionLevel
	hypes     []database.HypeIndicator
	keywords  []database.BusinessTypeKeyword
}

func (s *fakeSeedStore) CountTaxonomyRows(ctx context.Context) (int, error) {
	return s.existing, nil
}

func (s *fakeSeedStore) InsertEventType(ctx context.Context, t database.EventType) (string, error) {
	s.types = append(s.types, t)
	return fmt.Sprintf("type-%d", len(s.types)), nil
}

func (s *fakeSeedStore) InsertEventSubtype(ctx context.Context, st database.EventSubtype) (string, error) {
	s.subtypes = append(s.subtypes, st)
	return fmt.Sprintf("subtype-%d", len(s.subtypes)), nil
}

func (s *fakeSeedStore) InsertExtractionPattern(ctx context.Context, p database.ExtractionPattern) error {
	s.patterns = append(s.patterns, p)
	return nil
}

func (s *fakeSeedStore) InsertSportType(ctx context.Context, sp database.SportType) error {
	s.sports = append(s.sports, sp)
	return nil
}

func (s *fakeSeedStore) InsertCompetitionLevel(ctx context.Context, l database.CompetitionLevel) error {
	s.levels = append(s.levels, l)
	return nil
}

func (s *fakeSeedStore) InsertHypeIndicator(ctx context.Context, h database.HypeIndicator) error {
	s.hypes = append(s.hypes, h)
	return nil
}

func (s *fakeSeedStore) InsertBusinessTypeKeyword(ctx context.Context, k database.BusinessTypeKeyword) error {
	s.keywords = append(s.keywords, k)
	return nil
}

const taxonomySeed = `event_types:
  - code: sports_match
    name: Partido deportivo
    relevance: high
    category: Deportes
    patterns:
      - pattern: 'partido\s+de\s+f[uú]tbol'
        weight: 2.0
      - pattern: 'campeonato'
    subtypes:
      - code: soccer_match
        name: Partido de fútbol
        patterns:
          - 'f[uú]tbol'
`

const broadcastSeed = `sports:
  - code: soccer
    name: Fútbol
    appeal: 0.95
    keywords: [fútbol, partido]
competition_levels:
  - code: world_cup
    name: Mundial
    sport: soccer
    multiplier: 3.0
    keywords: [mundial]
hype_indicators:
  - pattern: 'hist[oó]rico'
    boost: 0.2
    category: historic
config:
  sport_appeal_weight: 0.35
  competition_level_weight: 0.30
  hype_weight: 0.20
  attendance_weight: 0.15
  min_score: 0.55
  attendance_small: 5000
  attendance_medium: 20000
  attendance_large: 50000
  requires_screens: true
`

const keywordSeed = `keywords:
  - business_type: pub
    keyword: cerveza
    weight: 0.15
    category: product
`

func writeSeedDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"taxonomy.yml":          taxonomySeed,
		"broadcastability.yml":  broadcastSeed,
		"business_keywords.yml": keywordSeed,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write seed file: %v", err)
		}
	}

	return dir
}

func TestSeeder_Run(t *testing.T) {
	store := &fakeSeedStore{}
	repo := &fakeTaxonomyRepo{}
	seeder := NewSeeder(writeSeedDir(t), store)

	if err := seeder.Run(context.Background(), repo); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(store.types) != 1 {
		t.Fatalf("Expected 1 event type, got %d", len(store.types))
	}
	if store.types[0].Code != "sports_match" || store.types[0].RelevanceCategory != "high" {
		t.Errorf("Unexpected event type: %+v", store.types[0])
	}

	// Two type patterns plus one subtype pattern.
	if len(store.patterns) != 3 {
		t.Fatalf("Expected 3 patterns, got %d", len(store.patterns))
	}
	if store.patterns[0].Weight != 2.0 {
		t.Errorf("Expected explicit weight 2.0, got %f", store.patterns[0].Weight)
	}
	if store.patterns[1].Weight != 1.0 {
		t.Errorf("Expected default weight 1.0, got %f", store.patterns[1].Weight)
	}
	if store.patterns[2].Target != "subtype" {
		t.Errorf("Expected a subtype pattern, got %q", store.patterns[2].Target)
	}

	if len(store.subtypes) != 1 || store.subtypes[0].Code != "soccer_match" {
		t.Errorf("Unexpected subtypes: %+v", store.subtypes)
	}
	if len(store.sports) != 1 || store.sports[0].Appeal != 0.95 {
		t.Errorf("Unexpected sports: %+v", store.sports)
	}
	if len(store.levels) != 1 || store.levels[0].BroadcastMultiplier != 3.0 {
		t.Errorf("Unexpected levels: %+v", store.levels)
	}
	if len(store.hypes) != 1 || store.hypes[0].Boost != 0.2 {
		t.Errorf("Unexpected hype indicators: %+v", store.hypes)
	}
	if len(store.keywords) != 1 || store.keywords[0].BusinessType != "pub" {
		t.Errorf("Unexpected keywords: %+v", store.keywords)
	}
}

func TestSeeder_SkipsWhenAlreadySeeded(t *testing.T) {
	store := &fakeSeedStore{existing: 13}
	seeder := NewSeeder(writeSeedDir(t), store)

	if err := seeder.Run(context.Background(), &fakeTaxonomyRepo{}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(store.types) != 0 || len(store.patterns) != 0 {
		t.Error("Expected no inserts when the taxonomy is already seeded")
	}
}

func TestSeeder_MissingDirectory(t *testing.T) {
	store := &fakeSeedStore{}
	seeder := NewSeeder(filepath.Join(t.TempDir(), "nope"), store)

	if err := seeder.Run(context.Background(), &fakeTaxonomyRepo{}); err != nil {
		t.Fatalf("A missing seeds directory is not an error: %v", err)
	}
	if len(store.types) != 0 {
		t.Error("Expected no inserts without seed files")
	}
}

func TestSeeder_InvalidConfigRejected(t *testing.T) {
	dir := t.TempDir()
	broken := `config:
  sport_appeal_weight: 0.9
  competition_level_weight: 0.9
  hype_weight: 0.1
  attendance_weight: 0.1
  min_score: 0.55
  attendance_small: 5000
  attendance_medium: 20000
  attendance_large: 50000
`
	if err := os.WriteFile(filepath.Join(dir, "broadcastability.yml"), []byte(broken), 0644); err != nil {
		t.Fatalf("Failed to write seed file: %v", err)
	}

	store := &fakeSeedStore{}
	seeder := NewSeeder(dir, store)

	err := seeder.Run(context.Background(), &fakeTaxonomyRepo{})
	if err == nil {
		t.Fatal("Expected an error for an invalid config")
	}
}
