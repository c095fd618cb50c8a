package taxonomy

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"time"

	"github.com/localpulse/pulse/app/database"
)

// Pattern is a compiled classification pattern bound to an event type or
// subtype code.
type Pattern struct {
	EventType string
	Subtype   string
	Re        *regexp.Regexp
	Weight    float64
}

type Sport struct {
	Code     string
	Name     string
	Appeal   float64
	Keywords []string
}

type Level struct {
	Code       string
	Name       string
	SportCode  string
	Multiplier float64
	Keywords   []string
}

type Hype struct {
	Re       *regexp.Regexp
	Boost    float64
	Category string
}

// Snapshot is an immutable view of the taxonomy tables with every pattern
// pre-compiled. Pipeline stages read one snapshot for an entire article
// run, so a refresh never changes scoring mid-article.
type Snapshot struct {
	Version  int64
	LoadedAt time.Time

	EventTypes      map[string]database.EventType
	TypePatterns    []Pattern
	SubtypePatterns []Pattern

	// FallbackPatterns is the built-in table, consulted per article when
	// TypePatterns yield no match.
	FallbackPatterns []Pattern

	Sports []Sport
	Levels []Level
	Hypes  []Hype

	TypeKeywords map[string][]database.BusinessTypeKeyword

	Config database.BroadcastConfig
}

// RelevanceCategory returns the business-relevance tier for an event type
// code: "high", "medium", "low", or "" when the code is unknown.
func (s *Snapshot) RelevanceCategory(eventType string) string {
	if t, ok := s.EventTypes[eventType]; ok {
		return t.RelevanceCategory
	}
	return ""
}

// DefaultBroadcastConfig returns the built-in scoring configuration used
// until an operator saves one.
func DefaultBroadcastConfig() database.BroadcastConfig {
	return database.BroadcastConfig{
		SportAppealWeight:      0.35,
		CompetitionLevelWeight: 0.30,
		HypeWeight:             0.20,
		AttendanceWeight:       0.15,
		MinScore:               0.55,
		AttendanceSmall:        5000,
		AttendanceMedium:       20000,
		AttendanceLarge:        50000,
		RequiresScreens:        true,
	}
}

func validateConfig(c database.BroadcastConfig) error {
	sum := c.SportAppealWeight + c.CompetitionLevelWeight + c.HypeWeight + c.AttendanceWeight
	if math.Abs(sum-1.0) > 0.01 {
		return &ConfigValidationError{
			Field:   "weights",
			Message: fmt.Sprintf("must sum to 1.0, got %.3f", sum),
		}
	}
	if c.MinScore <= 0 || c.MinScore > 1 {
		return &ConfigValidationError{
			Field:   "min_score",
			Message: fmt.Sprintf("must be in (0, 1], got %.3f", c.MinScore),
		}
	}
	if !(c.AttendanceSmall < c.AttendanceMedium && c.AttendanceMedium < c.AttendanceLarge) {
		return &ConfigValidationError{
			Field:   "attendance thresholds",
			Message: "must be strictly increasing",
		}
	}
	return nil
}

func compilePattern(expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil, &PatternError{Pattern: expr, Err: err}
	}
	return re, nil
}

// buildSnapshot assembles a snapshot from taxonomy rows. The built-in
// fallback table rides along on every snapshot; when the extraction
// pattern table is empty it also becomes the primary table, so
// classification works before any seeding has happened.
func buildSnapshot(ctx context.Context, repo database.TaxonomyRepository, version int64) (*Snapshot, error) {
	s := &Snapshot{
		Version:      version,
		LoadedAt:     time.Now(),
		EventTypes:   make(map[string]database.EventType),
		TypeKeywords: make(map[string][]database.BusinessTypeKeyword),
	}

	eventTypes, err := repo.GetEventTypes(ctx)
	if err != nil {
		return nil, err
	}
	typeCodeByID := make(map[string]string, len(eventTypes))
	for _, t := range eventTypes {
		s.EventTypes[t.Code] = t
		typeCodeByID[t.ID] = t.Code
	}

	subtypes, err := repo.GetEventSubtypes(ctx)
	if err != nil {
		return nil, err
	}
	subtypeCodeByID := make(map[string]string, len(subtypes))
	subtypeParentByID := make(map[string]string, len(subtypes))
	for _, st := range subtypes {
		subtypeCodeByID[st.ID] = st.Code
		subtypeParentByID[st.ID] = typeCodeByID[st.EventTypeID]
	}

	patterns, err := repo.GetExtractionPatterns(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range patterns {
		re, err := compilePattern(p.Pattern)
		if err != nil {
			// One malformed pattern never breaks the others.
			slog.Warn("Skipping malformed extraction pattern", "error", err)
			continue
		}
		compiled := Pattern{Re: re, Weight: p.Weight}
		switch p.Target {
		case "type":
			compiled.EventType = typeCodeByID[p.EventTypeID]
			if compiled.EventType == "" {
				continue
			}
			s.TypePatterns = append(s.TypePatterns, compiled)
		case "subtype":
			compiled.Subtype = subtypeCodeByID[p.EventSubtypeID]
			compiled.EventType = subtypeParentByID[p.EventSubtypeID]
			if compiled.Subtype == "" || compiled.EventType == "" {
				continue
			}
			s.SubtypePatterns = append(s.SubtypePatterns, compiled)
		}
	}

	s.FallbackPatterns = FallbackTypePatterns()
	if len(s.TypePatterns) == 0 {
		s.applyFallbackPatterns()
	}

	sports, err := repo.GetSportTypes(ctx)
	if err != nil {
		return nil, err
	}
	for _, sp := range sports {
		s.Sports = append(s.Sports, Sport{
			Code: sp.Code, Name: sp.Name, Appeal: sp.Appeal, Keywords: sp.Keywords,
		})
	}

	levels, err := repo.GetCompetitionLevels(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range levels {
		s.Levels = append(s.Levels, Level{
			Code: l.Code, Name: l.Name, SportCode: l.SportCode,
			Multiplier: l.BroadcastMultiplier, Keywords: l.Keywords,
		})
	}

	hypes, err := repo.GetHypeIndicators(ctx)
	if err != nil {
		return nil, err
	}
	for _, h := range hypes {
		re, err := compilePattern(h.Pattern)
		if err != nil {
			slog.Warn("Skipping malformed hype pattern", "error", err)
			continue
		}
		s.Hypes = append(s.Hypes, Hype{Re: re, Boost: h.Boost, Category: h.Category})
	}

	typeKeywords, err := repo.GetBusinessTypeKeywords(ctx)
	if err != nil {
		return nil, err
	}
	for _, k := range typeKeywords {
		s.TypeKeywords[k.BusinessType] = append(s.TypeKeywords[k.BusinessType], k)
	}

	cfg, err := repo.GetBroadcastConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		s.Config = DefaultBroadcastConfig()
	} else {
		s.Config = *cfg
	}
	if err := validateConfig(s.Config); err != nil {
		return nil, err
	}

	return s, nil
}
