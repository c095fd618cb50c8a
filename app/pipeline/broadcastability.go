package pipeline

import (
	"strings"

	"github.com/localpulse/pulse/app/taxonomy"
)

// Event types the broadcastability model applies to. Everything else
// gets an all-zero result.
var sportsEventTypes = map[string]bool{
	"sports_match": true,
	"marathon":     true,
	"tournament":   true,
}

// BroadcastResult is the full scoring breakdown for one article.
type BroadcastResult struct {
	Score            float64
	HypeScore        float64
	IsBroadcastable  bool
	SportType        string
	CompetitionLevel string

	SportAppeal      float64
	CompetitionScore float64
	AttendanceScore  float64
}

// Calculator estimates how likely a sports event is to draw TV-watching
// crowds. Four normalized components are combined with the configurable
// weights from the taxonomy snapshot and clipped to [0, 1].
type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

func (c *Calculator) Calculate(title, content string, feats Features, snap *taxonomy.Snapshot) BroadcastResult {
	if !sportsEventTypes[feats.EventType] {
		return BroadcastResult{}
	}

	text := strings.ToLower(title + " " + content)
	cfg := snap.Config

	sportAppeal, sportCode := c.sportAppeal(text, snap)
	competitionScore, competitionCode := c.competitionLevel(text, sportCode, snap)
	hypeScore := c.hypeScore(text, snap)
	attendanceScore := c.attendanceScore(feats.Attendance, snap)

	score := sportAppeal*cfg.SportAppealWeight +
		competitionScore*cfg.CompetitionLevelWeight +
		hypeScore*cfg.HypeWeight +
		attendanceScore*cfg.AttendanceWeight

	score = clip01(score)

	return BroadcastResult{
		Score:            score,
		HypeScore:        hypeScore,
		IsBroadcastable:  score >= cfg.MinScore,
		SportType:        sportCode,
		CompetitionLevel: competitionCode,
		SportAppeal:      sportAppeal,
		CompetitionScore: competitionScore,
		AttendanceScore:  attendanceScore,
	}
}

// sportAppeal picks the sport with the most keyword hits and returns its
// appeal rating. 0.5 is the default when no sport is detected.
func (c *Calculator) sportAppeal(text string, snap *taxonomy.Snapshot) (float64, string) {
	bestCount := 0
	var best *taxonomy.Sport

	for i := range snap.Sports {
		sport := &snap.Sports[i]
		count := 0
		for _, kw := range sport.Keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				count++
			}
		}
		if count > bestCount {
			bestCount = count
			best = sport
		}
	}

	if best == nil {
		return 0.5, ""
	}
	return best.Appeal, best.Code
}

// competitionLevel finds the highest-multiplier competition whose
// keywords appear in the text, restricted to the detected sport when one
// is scoped. Normalized against the 3.0 multiplier ceiling; 0.33 when
// nothing matches.
func (c *Calculator) competitionLevel(text, sportCode string, snap *taxonomy.Snapshot) (float64, string) {
	bestMultiplier := 1.0
	var best *taxonomy.Level

	for i := range snap.Levels {
		level := &snap.Levels[i]
		if sportCode != "" && level.SportCode != "" && level.SportCode != sportCode {
			continue
		}

		matched := false
		for _, kw := range level.Keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				matched = true
				break
			}
		}
		if matched && level.Multiplier > bestMultiplier {
			bestMultiplier = level.Multiplier
			best = level
		}
	}

	if best == nil {
		return 0.33, ""
	}

	score := bestMultiplier / 3.0
	if score > 1.0 {
		score = 1.0
	}
	return score, best.Code
}

// hypeScore sums the boost of every matching hype indicator. Matches
// compound additively, capped at 1.0.
func (c *Calculator) hypeScore(text string, snap *taxonomy.Snapshot) float64 {
	total := 0.0
	for _, h := range snap.Hypes {
		if h.Re.MatchString(text) {
			total += h.Boost
		}
	}
	if total > 1.0 {
		return 1.0
	}
	return total
}

// attendanceScore maps attendance onto piecewise-linear bands over the
// configured small/medium/large thresholds.
func (c *Calculator) attendanceScore(attendance *int, snap *taxonomy.Snapshot) float64 {
	if attendance == nil || *attendance <= 0 {
		return 0.0
	}

	a := float64(*attendance)
	small := float64(snap.Config.AttendanceSmall)
	medium := float64(snap.Config.AttendanceMedium)
	large := float64(snap.Config.AttendanceLarge)

	switch {
	case a < small:
		return (a / small) * 0.2
	case a < medium:
		return 0.2 + (a-small)/(medium-small)*0.3
	case a < large:
		return 0.5 + (a-medium)/(large-medium)*0.3
	default:
		return 1.0
	}
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
