package pipeline

import (
	"regexp"
	"strings"

	"github.com/localpulse/pulse/app/database"
)

// Base suitability per event type. Unknown types get 0.4.
var suitabilityBase = map[string]float64{
	"food_event":    0.95,
	"festival":      0.90,
	"nightlife":     0.90,
	"concert":       0.85,
	"sports_match":  0.85,
	"marathon":      0.80,
	"cultural":      0.75,
	"conference":    0.60,
	"exposition":    0.55,
	"politics":      0.15,
	"international": 0.10,
	"conflict":      0.05,
	"crime":         0.05,
}

var paywallRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)contenido\s+exclusivo\s+para\s+suscriptores`),
	regexp.MustCompile(`(?i)suscr[ií]bete\s+para\s+(seguir\s+)?leyendo`),
	regexp.MustCompile(`(?i)inicia\s+sesi[oó]n\s+para\s+continuar`),
	regexp.MustCompile(`(?i)acepta(r)?\s+(las\s+)?cookies\s+para\s+continuar`),
}

var hospitalityRes = []*regexp.Regexp{
	regexp.MustCompile(`restaurante`),
	regexp.MustCompile(`caf[eé]`),
	regexp.MustCompile(`\bbar\b`),
	regexp.MustCompile(`\bpub\b`),
	regexp.MustCompile(`cerveza`),
	regexp.MustCompile(`comida`),
	regexp.MustCompile(`gastronom[ií]a`),
	regexp.MustCompile(`reservas`),
	regexp.MustCompile(`\bmesa\b`),
	regexp.MustCompile(`m[uú]sica en vivo`),
	regexp.MustCompile(`happy hour`),
	regexp.MustCompile(`brunch`),
}

var negativeRes = []*regexp.Regexp{
	regexp.MustCompile(`asesinato`),
	regexp.MustCompile(`homicidio`),
	regexp.MustCompile(`accidente`),
	regexp.MustCompile(`muerto`),
	regexp.MustCompile(`robo`),
	regexp.MustCompile(`atraco`),
	regexp.MustCompile(`incendio`),
	regexp.MustCompile(`tragedia`),
	regexp.MustCompile(`corrupci[oó]n`),
	regexp.MustCompile(`esc[aá]ndalo`),
}

const shortContentChars = 200

// PreFilter computes the global 0..1 business-suitability score through
// an ordered policy. Rule order matters: paywalls and foreign events can
// short-circuit the rest. Boosts are capped, penalties are not.
type PreFilter struct {
	homeCountry string
}

func NewPreFilter(homeCountry string) *PreFilter {
	return &PreFilter{homeCountry: homeCountry}
}

// Suitability scores one article, optionally refined against one
// reference business for the screen/broadcast rules. ref may be nil.
func (f *PreFilter) Suitability(title, content string, feats Features, bc BroadcastResult, ref *database.Business) float64 {
	text := strings.ToLower(title + " " + content)

	for _, re := range paywallRes {
		if re.MatchString(text) {
			return 0.0
		}
	}

	score, known := suitabilityBase[feats.EventType]
	if !known {
		score = 0.4
	}

	if len(content) < shortContentChars && feats.EventType == "" {
		score -= 0.3
	}

	hasScreens := ref != nil && ref.HasScreens
	isSports := sportsEventTypes[feats.EventType]

	if feats.Country != "" && feats.Country != f.homeCountry {
		if !feats.LocalInvolvement {
			// Foreign event without local involvement only survives as a
			// broadcast watch opportunity.
			if bc.IsBroadcastable && hasScreens {
				score = bc.Score * 0.75
			} else {
				return 0.0
			}
		} else {
			score *= 0.4
			if isSports && !hasScreens {
				return 0.0
			}
		}
	}

	if feats.LocalInvolvement && isSports && hasScreens {
		score += 0.2
	}

	hospitalityBoost := 0.0
	for _, re := range hospitalityRes {
		if re.MatchString(text) {
			hospitalityBoost += 0.1
		}
	}
	if hospitalityBoost > 0.3 {
		hospitalityBoost = 0.3
	}
	score += hospitalityBoost

	for _, re := range negativeRes {
		if re.MatchString(text) {
			score -= 0.5
		}
	}

	return clip01(score)
}
