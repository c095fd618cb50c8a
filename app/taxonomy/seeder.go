package taxonomy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/localpulse/pulse/app/database"
)

// Seeder populates empty taxonomy tables from the bundled YAML seed
// files. It runs once at startup and is a no-op when the taxonomy has
// already been seeded.
type Seeder struct {
	seedsDir string
	store    database.SeedStore
}

func NewSeeder(seedsDir string, store database.SeedStore) *Seeder {
	return &Seeder{seedsDir: seedsDir, store: store}
}

type seedEventType struct {
	Code      string `yaml:"code"`
	Name      string `yaml:"name"`
	Relevance string `yaml:"relevance"`
	Category  string `yaml:"category"`
	Subtypes  []struct {
		Code     string   `yaml:"code"`
		Name     string   `yaml:"name"`
		Patterns []string `yaml:"patterns"`
	} `yaml:"subtypes"`
	Patterns []struct {
		Pattern string  `yaml:"pattern"`
		Weight  float64 `yaml:"weight"`
	} `yaml:"patterns"`
}

type taxonomySeedFile struct {
	EventTypes []seedEventType `yaml:"event_types"`
}

type broadcastSeedFile struct {
	Sports []struct {
		Code     string   `yaml:"code"`
		Name     string   `yaml:"name"`
		Appeal   float64  `yaml:"appeal"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"sports"`
	CompetitionLevels []struct {
		Code       string   `yaml:"code"`
		Name       string   `yaml:"name"`
		Sport      string   `yaml:"sport"`
		Multiplier float64  `yaml:"multiplier"`
		Keywords   []string `yaml:"keywords"`
	} `yaml:"competition_levels"`
	HypeIndicators []struct {
		Pattern  string  `yaml:"pattern"`
		Boost    float64 `yaml:"boost"`
		Category string  `yaml:"category"`
	} `yaml:"hype_indicators"`
	Config *struct {
		SportAppealWeight      float64 `yaml:"sport_appeal_weight"`
		CompetitionLevelWeight float64 `yaml:"competition_level_weight"`
		HypeWeight             float64 `yaml:"hype_weight"`
		AttendanceWeight       float64 `yaml:"attendance_weight"`
		MinScore               float64 `yaml:"min_score"`
		AttendanceSmall        int     `yaml:"attendance_small"`
		AttendanceMedium       int     `yaml:"attendance_medium"`
		AttendanceLarge        int     `yaml:"attendance_large"`
		RequiresScreens        bool    `yaml:"requires_screens"`
	} `yaml:"config"`
}

type keywordSeedFile struct {
	Keywords []struct {
		BusinessType string  `yaml:"business_type"`
		Keyword      string  `yaml:"keyword"`
		Weight       float64 `yaml:"weight"`
		Category     string  `yaml:"category"`
	} `yaml:"keywords"`
}

// Run seeds every taxonomy table when the database is empty. The seeds
// directory is optional: a missing directory leaves the built-in fallback
// patterns in charge.
func (s *Seeder) Run(ctx context.Context, repo database.TaxonomyRepository) error {
	count, err := s.store.CountTaxonomyRows(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		slog.Debug("Taxonomy already seeded", "event_types", count)
		return nil
	}

	if _, err := os.Stat(s.seedsDir); os.IsNotExist(err) {
		slog.Warn("Seeds directory not found, relying on built-in patterns", "dir", s.seedsDir)
		return nil
	}

	if err := s.seedTaxonomy(ctx); err != nil {
		return err
	}
	if err := s.seedBroadcastability(ctx, repo); err != nil {
		return err
	}
	if err := s.seedBusinessKeywords(ctx); err != nil {
		return err
	}

	slog.Info("Taxonomy seeded from files", "dir", s.seedsDir)
	return nil
}

func (s *Seeder) seedTaxonomy(ctx context.Context) error {
	var file taxonomySeedFile
	if err := s.parseSeedFile("taxonomy.yml", &file); err != nil {
		return err
	}

	for _, t := range file.EventTypes {
		typeID, err := s.store.InsertEventType(ctx, database.EventType{
			Code:              t.Code,
			Name:              t.Name,
			RelevanceCategory: t.Relevance,
			DisplayCategory:   t.Category,
		})
		if err != nil {
			return err
		}

		for _, p := range t.Patterns {
			weight := p.Weight
			if weight == 0 {
				weight = 1.0
			}
			err := s.store.InsertExtractionPattern(ctx, database.ExtractionPattern{
				Target:      "type",
				EventTypeID: typeID,
				Pattern:     p.Pattern,
				Weight:      weight,
			})
			if err != nil {
				return err
			}
		}

		for _, st := range t.Subtypes {
			subtypeID, err := s.store.InsertEventSubtype(ctx, database.EventSubtype{
				EventTypeID: typeID,
				Code:        st.Code,
				Name:        st.Name,
			})
			if err != nil {
				return err
			}
			for _, expr := range st.Patterns {
				err := s.store.InsertExtractionPattern(ctx, database.ExtractionPattern{
					Target:         "subtype",
					EventSubtypeID: subtypeID,
					Pattern:        expr,
					Weight:         1.0,
				})
				if err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func (s *Seeder) seedBroadcastability(ctx context.Context, repo database.TaxonomyRepository) error {
	var file broadcastSeedFile
	if err := s.parseSeedFile("broadcastability.yml", &file); err != nil {
		return err
	}

	for _, sp := range file.Sports {
		err := s.store.InsertSportType(ctx, database.SportType{
			Code: sp.Code, Name: sp.Name, Appeal: sp.Appeal, Keywords: sp.Keywords,
		})
		if err != nil {
			return err
		}
	}

	for _, l := range file.CompetitionLevels {
		err := s.store.InsertCompetitionLevel(ctx, database.CompetitionLevel{
			Code: l.Code, Name: l.Name, SportCode: l.Sport,
			BroadcastMultiplier: l.Multiplier, Keywords: l.Keywords,
		})
		if err != nil {
			return err
		}
	}

	for _, h := range file.HypeIndicators {
		err := s.store.InsertHypeIndicator(ctx, database.HypeIndicator{
			Pattern: h.Pattern, Boost: h.Boost, Category: h.Category,
		})
		if err != nil {
			return err
		}
	}

	if file.Config != nil {
		cfg := database.BroadcastConfig{
			SportAppealWeight:      file.Config.SportAppealWeight,
			CompetitionLevelWeight: file.Config.CompetitionLevelWeight,
			HypeWeight:             file.Config.HypeWeight,
			AttendanceWeight:       file.Config.AttendanceWeight,
			MinScore:               file.Config.MinScore,
			AttendanceSmall:        file.Config.AttendanceSmall,
			AttendanceMedium:       file.Config.AttendanceMedium,
			AttendanceLarge:        file.Config.AttendanceLarge,
			RequiresScreens:        file.Config.RequiresScreens,
		}
		if err := validateConfig(cfg); err != nil {
			return err
		}
		if err := repo.SaveBroadcastConfig(ctx, cfg); err != nil {
			return err
		}
	}

	return nil
}

func (s *Seeder) seedBusinessKeywords(ctx context.Context) error {
	var file keywordSeedFile
	if err := s.parseSeedFile("business_keywords.yml", &file); err != nil {
		return err
	}

	for _, k := range file.Keywords {
		err := s.store.InsertBusinessTypeKeyword(ctx, database.BusinessTypeKeyword{
			BusinessType: k.BusinessType,
			Keyword:      k.Keyword,
			Weight:       k.Weight,
			Category:     k.Category,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *Seeder) parseSeedFile(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(s.seedsDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("Seed file not found, skipping", "file", name)
			return nil
		}
		return fmt.Errorf("failed to read seed file %s: %w", name, err)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse seed file %s: %w", name, err)
	}

	return nil
}
