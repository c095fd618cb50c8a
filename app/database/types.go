package database

import (
	"time"
)

// Article scale buckets derived from expected attendance.
const (
	ScaleSmall   = "small"
	ScaleMedium  = "medium"
	ScaleLarge   = "large"
	ScaleMassive = "massive"
)

type Article struct {
	ID       string
	SourceID string

	// Immutable upstream fields written by the crawler
	Title       string
	Content     string
	URL         string
	Author      string
	PublishedAt time.Time

	// Pipeline-owned fields, set together exactly once per run
	EventType        string
	EventSubtype     string
	Category         string
	Subcategory      string
	SportType        string
	CompetitionLevel string

	City         string
	Neighborhood string
	Venue        string
	Country      string
	Latitude     *float64
	Longitude    *float64

	EventStart         *time.Time
	EventEnd           *time.Time
	DurationHours      *float64
	ExpectedAttendance *int
	Scale              string
	LocalInvolvement   bool

	BroadcastabilityScore float64
	HypeScore             float64
	IsBroadcastable       bool
	SuitabilityScore      float64
	RelevanceScore        float64
	CompletenessScore     float64

	Processed bool
	LastError string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Business struct {
	ID              string
	Owner           string
	Name            string
	Type            string // coffee_shop, restaurant, pub, bookstore
	City            string
	Country         string
	Neighborhood    string
	Latitude        *float64
	Longitude       *float64
	RadiusKm        float64
	IncludeCitywide bool
	IncludeNational bool
	HasScreens      bool
	Active          bool
	Keywords        []BusinessKeyword
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type BusinessKeyword struct {
	ID         string
	BusinessID string
	Keyword    string
	Weight     float64
	IsNegative bool
}

// BusinessTypeKeyword is a taxonomy-level keyword shared by every business
// of one type, unlike BusinessKeyword which is per business.
type BusinessTypeKeyword struct {
	ID           string
	BusinessType string
	Keyword      string
	Weight       float64
	Category     string
	Active       bool
}

type EventType struct {
	ID                 string
	Code               string
	Name               string
	RelevanceCategory  string // high, medium, low
	DisplayCategory    string
	DisplaySubcategory string
	Active             bool
}

type EventSubtype struct {
	ID          string
	EventTypeID string
	Code        string
	Name        string
	Active      bool
}

type ExtractionPattern struct {
	ID             string
	Target         string // type or subtype
	EventTypeID    string
	EventSubtypeID string
	Pattern        string
	Weight         float64
	Active         bool
}

type SportType struct {
	ID       string
	Code     string
	Name     string
	Appeal   float64 // 0..1
	Keywords []string
	Active   bool
}

type CompetitionLevel struct {
	ID                  string
	Code                string
	Name                string
	SportCode           string // empty = applies to any sport
	BroadcastMultiplier float64
	Keywords            []string
	Active              bool
}

type HypeIndicator struct {
	ID       string
	Pattern  string
	Boost    float64 // <= 0.5
	Category string
	Active   bool
}

type BroadcastConfig struct {
	SportAppealWeight      float64
	CompetitionLevelWeight float64
	HypeWeight             float64
	AttendanceWeight       float64
	MinScore               float64
	AttendanceSmall        int
	AttendanceMedium       int
	AttendanceLarge        int
	RequiresScreens        bool
}

type Recommendation struct {
	ID               string
	ArticleID        string
	BusinessID       string
	Slot             int
	Title            string
	Description      string
	Category         string
	ActionType       string
	Priority         string // low, medium, high, urgent
	ConfidenceScore  float64
	ImpactScore      float64
	EffortScore      float64
	RecommendedStart *time.Time
	RecommendedEnd   *time.Time
	EstimatedHours   int
	Reasoning        string
	CreatedAt        time.Time
}
