package pipeline

import "time"

// Features holds everything extracted from one article's text. Zero
// values mean "not detected"; extraction never fails on sparse input.
type Features struct {
	EventType    string
	EventSubtype string

	City         string
	Neighborhood string
	Venue        string
	Country      string

	EventStart    *time.Time
	EventEnd      *time.Time
	DurationHours *float64

	Attendance *int
	Scale      string

	LocalInvolvement bool
}

// Completeness reports the fraction of the eight core feature fields
// that were extracted, used as a rough confidence signal.
func (f Features) Completeness() float64 {
	total := 8.0
	found := 0.0

	if f.EventType != "" {
		found++
	}
	if f.EventSubtype != "" {
		found++
	}
	if f.City != "" {
		found++
	}
	if f.Venue != "" {
		found++
	}
	if f.EventStart != nil {
		found++
	}
	if f.Attendance != nil {
		found++
	}
	if f.Scale != "" {
		found++
	}
	if f.Country != "" {
		found++
	}

	return found / total
}
