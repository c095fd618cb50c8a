package pipeline

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/localpulse/pulse/app/taxonomy"
)

// Colombian cities checked in priority order during extraction.
var colombianCities = []string{
	"Medellín", "Bogotá", "Cali", "Cartagena", "Barranquilla",
	"Bucaramanga", "Pereira", "Manizales", "Cúcuta", "Ibagué",
	"Santa Marta", "Pasto", "Villavicencio", "Montería", "Valledupar",
}

// International cities grouped by country, used for event country
// detection when the primary city is not Colombian.
var internationalCities = map[string][]string{
	"México":         {"Ciudad de México", "Guadalajara", "Monterrey", "Morelia", "Puebla", "Cancún", "Tijuana"},
	"Argentina":      {"Buenos Aires", "Córdoba", "Rosario", "Mendoza", "La Plata"},
	"Brasil":         {"São Paulo", "Río de Janeiro", "Brasilia", "Salvador", "Belo Horizonte"},
	"Estados Unidos": {"Nueva York", "Los Ángeles", "Miami", "Houston", "Chicago", "Las Vegas"},
	"España":         {"Madrid", "Barcelona", "Valencia", "Sevilla", "Bilbao"},
	"Chile":          {"Santiago", "Valparaíso", "Concepción"},
	"Perú":           {"Lima", "Cuzco", "Arequipa"},
	"Ecuador":        {"Quito", "Guayaquil", "Cuenca"},
	"Qatar":          {"Doha"},
	"Rusia":          {"Moscú", "San Petersburgo"},
	"Francia":        {"París", "Lyon", "Marsella"},
	"Inglaterra":     {"Londres", "Manchester", "Liverpool"},
}

var medellinNeighborhoods = []string{
	"El Poblado", "Laureles", "Envigado", "Belén", "Estadio",
	"La Candelaria", "Sabaneta", "Itagüí", "Bello", "Robledo",
}

var venueRe = regexp.MustCompile(`(?i)en\s+el\s+((?:Estadio|Teatro|Centro|Auditorio|Coliseo|Arena|Parque)\s+[A-ZÁ-Ú][a-zá-ú\s]+)`)

var attendanceRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+[,.]?\d*)\s*mil\s+(?:personas|asistentes|espectadores|hinchas)`),
	regexp.MustCompile(`(?i)m[aá]s\s+de\s+(\d+[,.]?\d*)`),
	regexp.MustCompile(`(?i)hasta\s+(\d+[,.]?\d*)`),
	regexp.MustCompile(`(?i)(\d+[,.]?\d*)\s+(?:personas|asistentes|espectadores)`),
}

var involvementRes = []*regexp.Regexp{
	regexp.MustCompile(`selección\s+colombia`),
	regexp.MustCompile(`colombia\s+(vs|contra)\s+`),
	regexp.MustCompile(`colombiano[sa]?\s+(participa|compite|juega|dirige|actúa|presenta)`),
	regexp.MustCompile(`(artista|director|atleta|actor|actriz)\s+colombiano`),
	regexp.MustCompile(`equipo\s+colombiano`),
	regexp.MustCompile(`representante\s+de\s+colombia`),
	regexp.MustCompile(`colombia\s+en\s+(la\s+)?(copa|mundial|olimpiadas|festival|ceremonia)`),
	regexp.MustCompile(`(jugador|jugadora)\s+colombiano`),
	regexp.MustCompile(`seleccionado\s+colombiano`),
}

var countryRes = []struct {
	country string
	re      *regexp.Regexp
}{
	{"México", regexp.MustCompile(`\ben\s+m[eé]xico\b`)},
	{"Argentina", regexp.MustCompile(`\ben\s+argentina\b`)},
	{"Brasil", regexp.MustCompile(`\ben\s+brasil\b`)},
	{"Estados Unidos", regexp.MustCompile(`\ben\s+(los\s+)?estados\s+unidos\b`)},
	{"España", regexp.MustCompile(`\ben\s+espa[ñn]a\b`)},
	{"Chile", regexp.MustCompile(`\ben\s+chile\b`)},
	{"Perú", regexp.MustCompile(`\ben\s+per[uú]\b`)},
	{"Ecuador", regexp.MustCompile(`\ben\s+ecuador\b`)},
	{"Qatar", regexp.MustCompile(`\ben\s+qatar\b`)},
	{"Rusia", regexp.MustCompile(`\ben\s+rusia\b`)},
	{"Francia", regexp.MustCompile(`\ben\s+francia\b`)},
	{"Inglaterra", regexp.MustCompile(`\ben\s+inglaterra\b`)},
}

var spanishMonths = map[string]time.Month{
	"enero": time.January, "febrero": time.February, "marzo": time.March,
	"abril": time.April, "mayo": time.May, "junio": time.June,
	"julio": time.July, "agosto": time.August, "septiembre": time.September,
	"octubre": time.October, "noviembre": time.November, "diciembre": time.December,
}

var (
	dayMonthRe  = regexp.MustCompile(`(?i)el\s+(?:pr[oó]ximo\s+)?(\d{1,2})\s+de\s+(enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|octubre|noviembre|diciembre)(?:\s+de\s+(\d{4}))?`)
	dateRangeRe = regexp.MustCompile(`(?i)del\s+(\d{1,2})\s+al\s+(\d{1,2})\s+de\s+(enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|octubre|noviembre|diciembre)(?:\s+de\s+(\d{4}))?`)
	numericRe   = regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`)
)

// Duration phrases mapped to hours. Matched against lowercased text.
var durationPhrases = []struct {
	phrase string
	hours  float64
}{
	{"todo el fin de semana", 48},
	{"fin de semana", 48},
	{"todo el día", 12},
	{"toda la noche", 8},
	{"medio día", 6},
	{"toda la semana", 168},
	{"tres días", 72},
	{"dos días", 48},
}

// pastTolerance keeps recap articles about recent events in scope.
const pastTolerance = 30 * 24 * time.Hour

// FeatureExtractor classifies articles and pulls geography, timing, and
// scale out of raw Spanish-language text. It is a pure function of its
// inputs: no storage access, no side effects.
type FeatureExtractor struct {
	loc *time.Location
}

func NewFeatureExtractor(loc *time.Location) *FeatureExtractor {
	if loc == nil {
		loc = time.UTC
	}
	return &FeatureExtractor{loc: loc}
}

// ExtractAll runs every extraction stage over title+content against one
// taxonomy snapshot.
func (e *FeatureExtractor) ExtractAll(title, content string, snap *taxonomy.Snapshot, now time.Time) Features {
	fullText := title + " " + content
	lower := strings.ToLower(fullText)

	var f Features

	f.EventType = e.classifyType(lower, snap)
	f.EventSubtype = e.classifySubtype(lower, snap, f.EventType)

	f.City = e.extractCity(lower)
	f.Neighborhood = e.extractNeighborhood(lower)
	f.Venue = e.extractVenue(fullText)

	f.EventStart = e.extractEventDate(fullText, now)
	f.DurationHours = e.extractDuration(lower)
	if f.EventStart != nil && f.DurationHours != nil {
		end := f.EventStart.Add(time.Duration(*f.DurationHours * float64(time.Hour)))
		f.EventEnd = &end
	}

	f.Attendance = e.extractAttendance(fullText)
	f.Scale = e.calculateScale(lower, f.Attendance)

	f.LocalInvolvement = e.detectLocalInvolvement(lower)
	f.Country = e.extractCountry(lower, f.City)

	return f
}

// classifyType scores every seeded pattern and returns the
// highest-scoring event type. Articles the seeded patterns miss are
// re-scored against the built-in fallback table, so a sparse taxonomy
// never leaves an article unclassified that the defaults would catch.
func (e *FeatureExtractor) classifyType(lower string, snap *taxonomy.Snapshot) string {
	if best := bestScoredType(lower, snap.TypePatterns); best != "" {
		return best
	}
	return bestScoredType(lower, snap.FallbackPatterns)
}

// bestScoredType sums occurrences×weight per event type. Ties keep the
// first type to reach the maximum, in pattern order.
func bestScoredType(lower string, patterns []taxonomy.Pattern) string {
	scores := make(map[string]float64)
	var order []string

	for _, p := range patterns {
		occurrences := len(p.Re.FindAllStringIndex(lower, -1))
		if occurrences == 0 {
			continue
		}
		if _, seen := scores[p.EventType]; !seen {
			order = append(order, p.EventType)
		}
		scores[p.EventType] += float64(occurrences) * p.Weight
	}

	best := ""
	bestScore := 0.0
	for _, eventType := range order {
		if scores[eventType] > bestScore {
			bestScore = scores[eventType]
			best = eventType
		}
	}

	return best
}

// classifySubtype repeats the weighted scoring restricted to subtype
// patterns of the winning type. No match is a valid outcome.
func (e *FeatureExtractor) classifySubtype(lower string, snap *taxonomy.Snapshot, eventType string) string {
	if eventType == "" {
		return ""
	}

	scores := make(map[string]float64)
	var order []string

	for _, p := range snap.SubtypePatterns {
		if p.EventType != eventType {
			continue
		}
		occurrences := len(p.Re.FindAllStringIndex(lower, -1))
		if occurrences == 0 {
			continue
		}
		if _, seen := scores[p.Subtype]; !seen {
			order = append(order, p.Subtype)
		}
		scores[p.Subtype] += float64(occurrences) * p.Weight
	}

	best := ""
	bestScore := 0.0
	for _, subtype := range order {
		if scores[subtype] > bestScore {
			bestScore = scores[subtype]
			best = subtype
		}
	}

	return best
}

func (e *FeatureExtractor) extractCity(lower string) string {
	for _, city := range colombianCities {
		if strings.Contains(lower, strings.ToLower(city)) {
			return city
		}
	}
	return ""
}

func (e *FeatureExtractor) extractNeighborhood(lower string) string {
	for _, n := range medellinNeighborhoods {
		if strings.Contains(lower, strings.ToLower(n)) {
			return n
		}
	}
	return ""
}

func (e *FeatureExtractor) extractVenue(text string) string {
	match := venueRe.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}

// extractEventDate tries Spanish day-of-month phrases first, then a
// numeric date fallback. Future interpretations are preferred; dates up
// to 30 days in the past are kept for recap articles.
func (e *FeatureExtractor) extractEventDate(text string, now time.Time) *time.Time {
	if m := dateRangeRe.FindStringSubmatch(text); m != nil {
		if t := e.resolveDayMonth(m[1], m[3], m[4], now); t != nil {
			return t
		}
	}

	if m := dayMonthRe.FindStringSubmatch(text); m != nil {
		if t := e.resolveDayMonth(m[1], m[2], m[3], now); t != nil {
			return t
		}
	}

	if m := numericRe.FindStringSubmatch(text); m != nil {
		if parsed, err := dateparse.ParseIn(m[1], e.loc); err == nil {
			if now.Sub(parsed) <= pastTolerance {
				return &parsed
			}
		}
	}

	return nil
}

func (e *FeatureExtractor) resolveDayMonth(dayStr, monthStr, yearStr string, now time.Time) *time.Time {
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return nil
	}

	month, ok := spanishMonths[strings.ToLower(monthStr)]
	if !ok {
		return nil
	}

	year := now.Year()
	if yearStr != "" {
		if y, err := strconv.Atoi(yearStr); err == nil {
			year = y
		}
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, e.loc)

	// No explicit year: roll forward when the date is too far in the past.
	if yearStr == "" && now.Sub(t) > pastTolerance {
		t = t.AddDate(1, 0, 0)
	}

	if now.Sub(t) > pastTolerance {
		return nil
	}

	return &t
}

func (e *FeatureExtractor) extractDuration(lower string) *float64 {
	for _, d := range durationPhrases {
		if strings.Contains(lower, d.phrase) {
			hours := d.hours
			return &hours
		}
	}
	return nil
}

func (e *FeatureExtractor) extractAttendance(text string) *int {
	for _, re := range attendanceRes {
		match := re.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		numberStr := strings.NewReplacer(".", "", ",", "").Replace(match[1])
		number, err := strconv.ParseFloat(numberStr, 64)
		if err != nil {
			continue
		}

		if strings.Contains(strings.ToLower(match[0]), "mil") {
			number *= 1000
		}

		attendance := int(number)
		return &attendance
	}

	return nil
}

func (e *FeatureExtractor) calculateScale(lower string, attendance *int) string {
	if attendance != nil {
		switch {
		case *attendance < 500:
			return "small"
		case *attendance < 5000:
			return "medium"
		case *attendance < 50000:
			return "large"
		default:
			return "massive"
		}
	}

	for _, kw := range []string{"masivo", "multitudinario", "miles de personas"} {
		if strings.Contains(lower, kw) {
			return "massive"
		}
	}
	for _, kw := range []string{"gran", "importante", "nacional"} {
		if strings.Contains(lower, kw) {
			return "large"
		}
	}

	return "medium"
}

func (e *FeatureExtractor) detectLocalInvolvement(lower string) bool {
	for _, re := range involvementRes {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

func (e *FeatureExtractor) extractCountry(lower, primaryCity string) string {
	if primaryCity != "" {
		for _, city := range colombianCities {
			if city == primaryCity {
				return "Colombia"
			}
		}
		for country, cities := range internationalCities {
			for _, city := range cities {
				if city == primaryCity {
					return country
				}
			}
		}
	}

	for _, c := range countryRes {
		if c.re.MatchString(lower) {
			return c.country
		}
	}

	switch {
	case strings.Contains(lower, "morelia") || strings.Contains(lower, "guadalajara"):
		return "México"
	case strings.Contains(lower, "buenos aires") || strings.Contains(lower, "río de la plata"):
		return "Argentina"
	case strings.Contains(lower, "doha") || strings.Contains(lower, "qatar"):
		return "Qatar"
	case strings.Contains(lower, "moscú") || strings.Contains(lower, "rusia"):
		return "Rusia"
	}

	return ""
}
