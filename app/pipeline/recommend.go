package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/localpulse/pulse/app/database"
)

const maxRecommendationsPerPair = 3

// template is one recommendation blueprint. Slot numbers are stable per
// event type so reprocessing reconciles instead of duplicating.
type template struct {
	Slot            int
	Title           string
	Description     string
	Category        string
	ActionType      string
	BusinessTypes   []string
	PriorityByScale map[string]string
	DefaultPriority string
	EstimatedHours  int
	DaysThreshold   int
}

// Placeholders {event}, {traffic} and {stock} are filled from the
// article at generation time.
var recommendationTemplates = map[string][]template{
	"sports_match": {
		{
			Slot:        0,
			Title:       "Campaña especial: {event}",
			Description: "Crear promoción especial para el evento deportivo. Incremento esperado de tráfico del {traffic}%.",
			Category:    "marketing", ActionType: "create_promotion",
			BusinessTypes:   []string{"pub", "restaurant", "coffee_shop"},
			PriorityByScale: map[string]string{"massive": "urgent", "large": "high"},
			DefaultPriority: "medium",
			EstimatedHours:  12, DaysThreshold: 14,
		},
		{
			Slot:        1,
			Title:       "Aumentar stock de cerveza en {stock}% para el evento",
			Description: "El evento deportivo generará alta demanda. Contactar proveedores con anticipación.",
			Category:    "inventory", ActionType: "increase_inventory",
			BusinessTypes:   []string{"pub"},
			PriorityByScale: map[string]string{"massive": "urgent", "large": "high"},
			DefaultPriority: "medium",
			EstimatedHours:  6, DaysThreshold: 10,
		},
		{
			Slot:        2,
			Title:       "Contratar personal adicional para el día del evento",
			Description: "El volumen de clientes será excepcional durante {event}.",
			Category:    "staffing", ActionType: "hire_staff",
			BusinessTypes:   []string{"pub", "restaurant"},
			PriorityByScale: map[string]string{"massive": "high", "large": "high"},
			DefaultPriority: "medium",
			EstimatedHours:  3, DaysThreshold: 7,
		},
	},
	"concert": {
		{
			Slot:        0,
			Title:       "Promoción pre y post concierto",
			Description: "Ofrecer descuentos antes y después de {event}.",
			Category:    "marketing", ActionType: "create_promotion",
			BusinessTypes:   []string{"pub", "restaurant", "coffee_shop"},
			PriorityByScale: map[string]string{"massive": "high"},
			DefaultPriority: "medium",
			EstimatedHours:  8, DaysThreshold: 10,
		},
		{
			Slot:        1,
			Title:       "Extender horario de atención por el concierto",
			Description: "Considerar abrir más tarde el día del evento.",
			Category:    "operations", ActionType: "adjust_hours",
			BusinessTypes:   []string{"pub", "restaurant"},
			DefaultPriority: "medium",
			EstimatedHours:  2, DaysThreshold: 7,
		},
	},
	"marathon": {
		{
			Slot:        0,
			Title:       "Aumentar stock de bebidas isotónicas y agua",
			Description: "La maratón generará alta demanda de hidratación.",
			Category:    "inventory", ActionType: "increase_inventory",
			BusinessTypes:   []string{"restaurant", "coffee_shop", "pub"},
			PriorityByScale: map[string]string{"massive": "urgent", "large": "high"},
			DefaultPriority: "high",
			EstimatedHours:  4, DaysThreshold: 7,
		},
		{
			Slot:        1,
			Title:       "Menú especial para corredores",
			Description: "Ofrecer desayunos tempranos con opciones saludables y energéticas.",
			Category:    "operations", ActionType: "menu_modification",
			BusinessTypes:   []string{"restaurant", "coffee_shop"},
			DefaultPriority: "medium",
			EstimatedHours:  8, DaysThreshold: 7,
		},
	},
	"food_event": {
		{
			Slot:        0,
			Title:       "Considerar participación en {event}",
			Description: "Oportunidad de visibilidad y networking gastronómico.",
			Category:    "partnerships", ActionType: "partner_collaboration",
			BusinessTypes:   []string{"restaurant", "coffee_shop"},
			DefaultPriority: "low",
			EstimatedHours:  20, DaysThreshold: 30,
		},
		{
			Slot:        1,
			Title:       "Menú temático durante {event}",
			Description: "Alinear la carta con el evento gastronómico de la ciudad.",
			Category:    "operations", ActionType: "menu_modification",
			BusinessTypes:   []string{"restaurant"},
			DefaultPriority: "medium",
			EstimatedHours:  10, DaysThreshold: 14,
		},
	},
	"festival": {
		{
			Slot:        0,
			Title:       "Promoción para asistentes de {event}",
			Description: "Capturar el tráfico del festival con ofertas dirigidas.",
			Category:    "marketing", ActionType: "create_promotion",
			BusinessTypes:   []string{"pub", "restaurant", "coffee_shop", "bookstore"},
			PriorityByScale: map[string]string{"massive": "high", "large": "high"},
			DefaultPriority: "medium",
			EstimatedHours:  8, DaysThreshold: 21,
		},
		{
			Slot:        1,
			Title:       "Reforzar inventario durante el festival",
			Description: "Los días de festival multiplican la demanda habitual.",
			Category:    "inventory", ActionType: "increase_inventory",
			BusinessTypes:   []string{"pub", "restaurant"},
			DefaultPriority: "medium",
			EstimatedHours:  5, DaysThreshold: 10,
		},
	},
	"nightlife": {
		{
			Slot:        0,
			Title:       "Evento nocturno temático",
			Description: "Programar una noche especial aprovechando {event}.",
			Category:    "marketing", ActionType: "create_promotion",
			BusinessTypes:   []string{"pub"},
			DefaultPriority: "medium",
			EstimatedHours:  6, DaysThreshold: 7,
		},
	},
	"cultural": {
		{
			Slot:        0,
			Title:       "Actividad vinculada a {event}",
			Description: "Organizar una charla, lectura o muestra relacionada con el evento cultural.",
			Category:    "marketing", ActionType: "create_promotion",
			BusinessTypes:   []string{"bookstore", "coffee_shop"},
			DefaultPriority: "medium",
			EstimatedHours:  8, DaysThreshold: 14,
		},
	},
}

var priorityEscalation = map[string]string{
	"low":    "medium",
	"medium": "high",
	"high":   "urgent",
	"urgent": "urgent",
}

var impactScaleBonus = map[string]float64{
	"massive": 0.3,
	"large":   0.2,
	"medium":  0.1,
	"small":   0.05,
}

// RecommendationGenerator turns a matched (article, business) pair into
// at most three actionable recommendations.
type RecommendationGenerator struct{}

func NewRecommendationGenerator() *RecommendationGenerator {
	return &RecommendationGenerator{}
}

// Generate builds the recommendation set for one pair. Templates that do
// not apply to the business type, or whose event is further out than the
// template's lead-time threshold, are skipped. The returned slice fully
// replaces any previous set for the pair.
func (g *RecommendationGenerator) Generate(article *database.Article, feats Features, business database.Business, relevance float64, now time.Time) []database.Recommendation {
	templates, ok := recommendationTemplates[feats.EventType]
	if !ok {
		return nil
	}

	var daysOut float64 = -1
	if feats.EventStart != nil {
		daysOut = feats.EventStart.Sub(now).Hours() / 24
		if daysOut < 0 {
			// Event already happened, nothing actionable remains.
			return nil
		}
	}

	var recs []database.Recommendation
	for _, t := range templates {
		if len(recs) >= maxRecommendationsPerPair {
			break
		}
		if !t.appliesTo(business.Type) {
			continue
		}
		if daysOut >= 0 && daysOut > float64(t.DaysThreshold) {
			continue
		}

		priority := t.DefaultPriority
		if p, ok := t.PriorityByScale[feats.Scale]; ok {
			priority = p
		}
		if daysOut >= 0 && daysOut <= 2 {
			priority = priorityEscalation[priority]
		}

		impact := 0.7*relevance + impactScaleBonus[feats.Scale]
		if daysOut >= 0 && daysOut <= 7 {
			impact += 0.1
		}
		impact = clip01(impact)

		effort := float64(t.EstimatedHours) / 24.0
		if effort > 1.0 {
			effort = 1.0
		}

		rec := database.Recommendation{
			ArticleID:       article.ID,
			BusinessID:      business.ID,
			Slot:            t.Slot,
			Title:           g.render(t.Title, article, feats),
			Description:     g.render(t.Description, article, feats),
			Category:        t.Category,
			ActionType:      t.ActionType,
			Priority:        priority,
			ConfidenceScore: relevance,
			ImpactScore:     impact,
			EffortScore:     effort,
			EstimatedHours:  t.EstimatedHours,
			Reasoning: fmt.Sprintf("Generado a partir del análisis de %q (relevancia %.2f)",
				truncate(article.Title, 80), relevance),
		}

		if feats.EventStart != nil {
			start := now
			rec.RecommendedStart = &start
			rec.RecommendedEnd = feats.EventStart
		}

		recs = append(recs, rec)
	}

	return recs
}

func (t template) appliesTo(businessType string) bool {
	for _, bt := range t.BusinessTypes {
		if bt == businessType {
			return true
		}
	}
	return false
}

func (g *RecommendationGenerator) render(text string, article *database.Article, feats Features) string {
	traffic := "150"
	stock := "200"
	if feats.Scale == database.ScaleMassive {
		traffic = "300"
		stock = "400"
	}

	r := strings.NewReplacer(
		"{event}", truncate(article.Title, 100),
		"{traffic}", traffic,
		"{stock}", stock,
	)
	return r.Replace(text)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
