package taxonomy

import (
	"context"
	"errors"
	"testing"

	"github.com/localpulse/pulse/app/database"
)

type fakeTaxonomyRepo struct {
	eventTypes []database.EventType
	subtypes   []database.EventSubtype
	patterns   []database.ExtractionPattern
	sports     []database.SportType
	levels     []database.CompetitionLevel
	hypes      []database.HypeIndicator
	keywords   []database.BusinessTypeKeyword
	config     *database.BroadcastConfig
	err        error
}

func (r *fakeTaxonomyRepo) GetEventTypes(ctx context.Context) ([]database.EventType, error) {
	return r.eventTypes, r.err
}

func (r *fakeTaxonomyRepo) GetEventSubtypes(ctx context.Context) ([]database.EventSubtype, error) {
	return r.subtypes, nil
}

func (r *fakeTaxonomyRepo) GetExtractionPatterns(ctx context.Context) ([]database.ExtractionPattern, error) {
	return r.patterns, nil
}

func (r *fakeTaxonomyRepo) GetSportTypes(ctx context.Context) ([]database.SportType, error) {
	return r.sports, nil
}

func (r *fakeTaxonomyRepo) GetCompetitionLevels(ctx context.Context) ([]database.CompetitionLevel, error) {
	return r.levels, nil
}

func (r *fakeTaxonomyRepo) GetHypeIndicators(ctx context.Context) ([]database.HypeIndicator, error) {
	return r.hypes, nil
}

func (r *fakeTaxonomyRepo) GetBusinessTypeKeywords(ctx context.Context) ([]database.BusinessTypeKeyword, error) {
	return r.keywords, nil
}

func (r *fakeTaxonomyRepo) GetBroadcastConfig(ctx context.Context) (*database.BroadcastConfig, error) {
	return r.config, nil
}

func (r *fakeTaxonomyRepo) SaveBroadcastConfig(ctx context.Context, cfg database.BroadcastConfig) error {
	return nil
}

func TestBuildSnapshot_FallbackPatterns(t *testing.T) {
	repo := &fakeTaxonomyRepo{}

	snap, err := buildSnapshot(context.Background(), repo, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(snap.TypePatterns) == 0 {
		t.Fatal("Expected built-in patterns for an empty taxonomy")
	}
	if snap.Version != 1 {
		t.Errorf("Expected version 1, got %d", snap.Version)
	}

	meta, ok := snap.EventTypes["sports_match"]
	if !ok {
		t.Fatal("Expected sports_match in the fallback event types")
	}
	if meta.RelevanceCategory != "high" {
		t.Errorf("Expected high relevance, got %q", meta.RelevanceCategory)
	}

	if snap.Config != DefaultBroadcastConfig() {
		t.Errorf("Expected default config, got %+v", snap.Config)
	}
}

func TestBuildSnapshot_SeededPatternsWinOverFallback(t *testing.T) {
	repo := &fakeTaxonomyRepo{
		eventTypes: []database.EventType{
			{ID: "t1", Code: "concert", RelevanceCategory: "high", Active: true},
		},
		patterns: []database.ExtractionPattern{
			{Target: "type", EventTypeID: "t1", Pattern: `concierto`, Weight: 2.0},
		},
	}

	snap, err := buildSnapshot(context.Background(), repo, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(snap.TypePatterns) != 1 {
		t.Fatalf("Expected only the seeded pattern, got %d", len(snap.TypePatterns))
	}
	if snap.TypePatterns[0].EventType != "concert" {
		t.Errorf("Expected concert, got %q", snap.TypePatterns[0].EventType)
	}
	if snap.TypePatterns[0].Weight != 2.0 {
		t.Errorf("Expected weight 2.0, got %f", snap.TypePatterns[0].Weight)
	}
	if len(snap.FallbackPatterns) == 0 {
		t.Error("Expected the built-in table to ride along on a seeded snapshot")
	}
	if !snap.TypePatterns[0].Re.MatchString("gran concierto") {
		t.Error("Expected the compiled pattern to match")
	}
}

func TestBuildSnapshot_SubtypeCarriesParentType(t *testing.T) {
	repo := &fakeTaxonomyRepo{
		eventTypes: []database.EventType{
			{ID: "t1", Code: "sports_match", RelevanceCategory: "high", Active: true},
		},
		subtypes: []database.EventSubtype{
			{ID: "s1", EventTypeID: "t1", Code: "soccer_match"},
		},
		patterns: []database.ExtractionPattern{
			{Target: "type", EventTypeID: "t1", Pattern: `partido`, Weight: 1.0},
			{Target: "subtype", EventSubtypeID: "s1", Pattern: `f[uú]tbol`, Weight: 1.0},
		},
	}

	snap, err := buildSnapshot(context.Background(), repo, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(snap.SubtypePatterns) != 1 {
		t.Fatalf("Expected 1 subtype pattern, got %d", len(snap.SubtypePatterns))
	}
	if snap.SubtypePatterns[0].Subtype != "soccer_match" {
		t.Errorf("Expected soccer_match, got %q", snap.SubtypePatterns[0].Subtype)
	}
	if snap.SubtypePatterns[0].EventType != "sports_match" {
		t.Errorf("Expected the parent type to be carried, got %q", snap.SubtypePatterns[0].EventType)
	}
}

func TestBuildSnapshot_OrphanPatternSkipped(t *testing.T) {
	repo := &fakeTaxonomyRepo{
		eventTypes: []database.EventType{
			{ID: "t1", Code: "concert", RelevanceCategory: "high", Active: true},
		},
		patterns: []database.ExtractionPattern{
			{Target: "type", EventTypeID: "t1", Pattern: `concierto`, Weight: 1.0},
			{Target: "type", EventTypeID: "missing", Pattern: `huérfano`, Weight: 1.0},
		},
	}

	snap, err := buildSnapshot(context.Background(), repo, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(snap.TypePatterns) != 1 {
		t.Errorf("Expected the orphan pattern to be skipped, got %d patterns", len(snap.TypePatterns))
	}
}

func TestBuildSnapshot_MalformedPatternSkipped(t *testing.T) {
	repo := &fakeTaxonomyRepo{
		eventTypes: []database.EventType{
			{ID: "t1", Code: "concert", RelevanceCategory: "high", Active: true},
		},
		patterns: []database.ExtractionPattern{
			{Target: "type", EventTypeID: "t1", Pattern: `concierto`, Weight: 1.0},
			{Target: "type", EventTypeID: "t1", Pattern: `[unclosed`, Weight: 1.0},
		},
	}

	snap, err := buildSnapshot(context.Background(), repo, 1)
	if err != nil {
		t.Fatalf("One bad pattern must not fail the build: %v", err)
	}

	if len(snap.TypePatterns) != 1 {
		t.Fatalf("Expected the malformed pattern to be skipped, got %d patterns", len(snap.TypePatterns))
	}
	if snap.TypePatterns[0].EventType != "concert" {
		t.Errorf("Expected the valid pattern to survive, got %q", snap.TypePatterns[0].EventType)
	}
}

func TestBuildSnapshot_AllPatternsMalformed(t *testing.T) {
	repo := &fakeTaxonomyRepo{
		eventTypes: []database.EventType{
			{ID: "t1", Code: "concert", RelevanceCategory: "high", Active: true},
		},
		patterns: []database.ExtractionPattern{
			{Target: "type", EventTypeID: "t1", Pattern: `[unclosed`, Weight: 1.0},
		},
	}

	snap, err := buildSnapshot(context.Background(), repo, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// With nothing usable left, the built-in table keeps classification alive.
	if len(snap.TypePatterns) == 0 {
		t.Error("Expected the fallback table when no seeded pattern compiles")
	}
}

func TestCompilePattern_ReturnsPatternError(t *testing.T) {
	_, err := compilePattern(`[unclosed`)
	if err == nil {
		t.Fatal("Expected an error for an invalid pattern")
	}

	var patternErr *PatternError
	if !errors.As(err, &patternErr) {
		t.Fatalf("Expected a PatternError, got %T", err)
	}
	if patternErr.Pattern != "[unclosed" {
		t.Errorf("Expected the offending pattern in the error, got %q", patternErr.Pattern)
	}
}

func TestBuildSnapshot_InvalidConfig(t *testing.T) {
	repo := &fakeTaxonomyRepo{
		config: &database.BroadcastConfig{
			SportAppealWeight:      0.5,
			CompetitionLevelWeight: 0.5,
			HypeWeight:             0.5,
			AttendanceWeight:       0.5,
			MinScore:               0.55,
			AttendanceSmall:        5000,
			AttendanceMedium:       20000,
			AttendanceLarge:        50000,
		},
	}

	_, err := buildSnapshot(context.Background(), repo, 1)
	if err == nil {
		t.Fatal("Expected an error for weights that do not sum to 1.0")
	}

	var configErr *ConfigValidationError
	if !errors.As(err, &configErr) {
		t.Fatalf("Expected a ConfigValidationError, got %T", err)
	}
}

func TestValidateConfig(t *testing.T) {
	valid := DefaultBroadcastConfig()
	if err := validateConfig(valid); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}

	badWeights := valid
	badWeights.HypeWeight = 0.5
	if err := validateConfig(badWeights); err == nil {
		t.Error("Expected an error for weights summing above 1.0")
	}

	badMin := valid
	badMin.MinScore = 0
	if err := validateConfig(badMin); err == nil {
		t.Error("Expected an error for a zero min score")
	}

	badThresholds := valid
	badThresholds.AttendanceMedium = badThresholds.AttendanceLarge
	if err := validateConfig(badThresholds); err == nil {
		t.Error("Expected an error for non-increasing thresholds")
	}
}

func TestSnapshot_RelevanceCategory(t *testing.T) {
	snap := &Snapshot{
		EventTypes: map[string]database.EventType{
			"concert": {Code: "concert", RelevanceCategory: "high"},
			"crime":   {Code: "crime", RelevanceCategory: "low"},
		},
	}

	if got := snap.RelevanceCategory("concert"); got != "high" {
		t.Errorf("Expected high, got %q", got)
	}
	if got := snap.RelevanceCategory("crime"); got != "low" {
		t.Errorf("Expected low, got %q", got)
	}
	if got := snap.RelevanceCategory("unknown"); got != "" {
		t.Errorf("Expected empty for unknown code, got %q", got)
	}
}

func TestCache_ReloadSwapsSnapshot(t *testing.T) {
	repo := &fakeTaxonomyRepo{}
	cache := NewCache(repo, 0)

	if cache.Current() != nil {
		t.Fatal("Expected no snapshot before the first reload")
	}

	if err := cache.Reload(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	first := cache.Current()
	if first == nil {
		t.Fatal("Expected a snapshot after reload")
	}
	if first.Version != 1 {
		t.Errorf("Expected version 1, got %d", first.Version)
	}

	if err := cache.Reload(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	second := cache.Current()
	if second == first {
		t.Error("Expected a fresh snapshot instance after reload")
	}
	if second.Version != 2 {
		t.Errorf("Expected version 2, got %d", second.Version)
	}
}

func TestCache_FailedReloadKeepsSnapshot(t *testing.T) {
	repo := &fakeTaxonomyRepo{}
	cache := NewCache(repo, 0)

	if err := cache.Reload(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	previous := cache.Current()

	repo.err = errors.New("connection reset")
	if err := cache.Reload(context.Background()); err == nil {
		t.Fatal("Expected the reload to fail")
	}

	if cache.Current() != previous {
		t.Error("A failed reload must keep the previous snapshot")
	}
}
