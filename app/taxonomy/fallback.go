package taxonomy

import (
	"regexp"

	"github.com/localpulse/pulse/app/database"
)

// fallbackPatterns is the built-in classification table used when the
// extraction pattern tables have not been seeded yet. Patterns target
// Spanish-language news text.
var fallbackPatterns = map[string][]string{
	"sports_match": {
		`partido\s+de\s+f[uú]tbol`, `partido.*contra`, `vs\.?`, `enfrentar[áa]`,
		`liga\s+de\s+f[uú]tbol`, `campeonato`, `clasificar`, `final\s+de`,
	},
	"marathon": {
		`marat[oó]n`, `carrera\s+atl[eé]tica`, `\d+k\b`, `10k`, `21k`, `42k`,
		`media\s+marat[oó]n`, `carrera\s+recreativa`, `corredores`,
	},
	"concert": {
		`concierto`, `show\s+musical`, `presentaci[oó]n.*musical`,
		`tocar[aá]`, `artista`, `cantante`, `m[uú]sica\s+en\s+vivo`,
	},
	"festival": {
		`festival`, `feria`, `festividad`, `celebraci[oó]n`,
		`fest\b`, `carnaval`,
	},
	"conference": {
		`conferencia`, `congreso`, `simposio`, `seminario`,
		`taller`, `charla`, `foro`, `encuentro\s+empresarial`,
	},
	"exposition": {
		`exposici[oó]n`, `muestra`, `exhibici[oó]n`, `galer[ií]a`,
		`arte\s+contempor[aá]neo`, `museo`,
	},
	"food_event": {
		`gastron[oó]mico`, `culinario`, `chef`, `degustaci[oó]n`,
		`comida`, `festival\s+de\s+comida`, `cocina`,
	},
	"cultural": {
		`cultural`, `teatro`, `danza`, `[oó]pera`, `ballet`,
		`obra\s+de\s+teatro`, `obra\s+teatral`,
	},
	"nightlife": {
		`fiesta`, `rumba`, `discoteca`, `club\s+nocturno`,
		`vida\s+nocturna`, `bar\s+`, `pub\s+`,
	},
	"politics": {
		`pol[ií]tica`, `gobierno`, `congreso`, `senado`, `c[aá]mara`,
		`legislaci[oó]n`, `proyecto\s+de\s+ley`, `ministro`, `presidente`,
		`alcalde`, `gobernador`, `elecciones`, `votaci[oó]n`, `partido\s+pol[ií]tico`,
	},
	"international": {
		`internacional`, `extranjero`, `exterior`, `mundial`,
		`estados\s+unidos`, `europa`, `asia`, `áfrica`,
		`otan`, `onu`, `diplomacia`, `embajada`, `pa[ií]ses`,
	},
	"conflict": {
		`bombardeo`, `ataque`, `guerra`, `militar`, `ej[eé]rcito`,
		`conflicto\s+armado`, `operaci[oó]n\s+militar`, `ofensiva`,
		`tropas`, `misil`, `drone`, `combate`,
	},
	"crime": {
		`homicidio`, `asesinato`, `crimen`, `delincuencia`,
		`robo`, `atraco`, `hurto`, `secuestro`, `narcotr[aá]fico`,
	},
}

// fallbackRelevance tiers mirror the seeded event type metadata.
var fallbackRelevance = map[string]string{
	"sports_match":  "high",
	"marathon":      "high",
	"concert":       "high",
	"festival":      "high",
	"food_event":    "high",
	"nightlife":     "high",
	"conference":    "medium",
	"exposition":    "medium",
	"cultural":      "medium",
	"politics":      "low",
	"international": "low",
	"conflict":      "low",
	"crime":         "low",
}

// fallbackOrder fixes the classification tie-break order when the
// built-in table is in use.
var fallbackOrder = []string{
	"sports_match", "marathon", "concert", "festival", "conference",
	"exposition", "food_event", "cultural", "nightlife",
	"politics", "international", "conflict", "crime",
}

var compiledFallback = compileFallbackTable()

func compileFallbackTable() []Pattern {
	var patterns []Pattern
	for _, eventType := range fallbackOrder {
		for _, expr := range fallbackPatterns[eventType] {
			patterns = append(patterns, Pattern{
				EventType: eventType,
				Re:        regexp.MustCompile("(?i)" + expr),
				Weight:    1.0,
			})
		}
	}
	return patterns
}

// FallbackTypePatterns returns the compiled built-in table. The
// extractor consults it whenever the seeded patterns produce no match,
// so an article outside the seeded taxonomy still gets classified.
func FallbackTypePatterns() []Pattern {
	return compiledFallback
}

func (s *Snapshot) applyFallbackPatterns() {
	s.TypePatterns = append(s.TypePatterns, compiledFallback...)
	for _, eventType := range fallbackOrder {
		if _, ok := s.EventTypes[eventType]; !ok {
			s.EventTypes[eventType] = database.EventType{
				Code:              eventType,
				RelevanceCategory: fallbackRelevance[eventType],
				Active:            true,
			}
		}
	}
}
