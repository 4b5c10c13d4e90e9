// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Level is the categorical value used by AccessToResources and ParentalInvolvement.
type Level string

// Allowed categorical levels, in ascending order.
const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// Levels lists the allowed categorical values in ascending order.
var Levels = []Level{LevelLow, LevelMedium, LevelHigh}

// ParseLevel accepts a level name case-insensitively and returns its canonical form.
func ParseLevel(s string) (Level, error) {
	for _, l := range Levels {
		if strings.EqualFold(strings.TrimSpace(s), string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown level %q: must be one of Low, Medium, High", s)
}

// StudentFeatures is the input record collected by the form.
// Bounds mirror the input surface; see Schema for the trained column order.
type StudentFeatures struct {
	Attendance          int   `json:"attendance" validate:"min=0,max=100"`
	HoursStudied        int   `json:"hours_studied" validate:"min=0,max=100"`
	PreviousScores      int   `json:"previous_scores" validate:"min=0,max=100"`
	TutoringSessions    int   `json:"tutoring_sessions" validate:"min=0,max=10"`
	PhysicalActivity    int   `json:"physical_activity" validate:"min=0,max=20"`
	SleepHours          int   `json:"sleep_hours" validate:"min=0,max=24"`
	AccessToResources   Level `json:"access_to_resources" validate:"required,oneof=Low Medium High"`
	ParentalInvolvement Level `json:"parental_involvement" validate:"required,oneof=Low Medium High"`
}

// DefaultFeatures returns the values the form is pre-filled with.
func DefaultFeatures() StudentFeatures {
	return StudentFeatures{
		Attendance:          85,
		HoursStudied:        20,
		PreviousScores:      75,
		TutoringSessions:    1,
		PhysicalActivity:    3,
		SleepHours:          7,
		AccessToResources:   LevelMedium,
		ParentalInvolvement: LevelMedium,
	}
}

// Cell is one named value of a model input row. Exactly one of Number or
// Category is meaningful, depending on the column kind.
type Cell struct {
	Column   string
	Kind     ColumnKind
	Number   float64
	Category Level
}

// Row is a single ordered model input row.
type Row []Cell

// Names returns the column names of the row in order.
func (r Row) Names() []string {
	names := make([]string, len(r))
	for i, c := range r {
		names[i] = c.Column
	}
	return names
}

// Row builds the model input row in trained column order.
func (f StudentFeatures) Row() Row {
	values := []Cell{
		{Number: float64(f.Attendance)},
		{Number: float64(f.HoursStudied)},
		{Number: float64(f.PreviousScores)},
		{Number: float64(f.TutoringSessions)},
		{Number: float64(f.PhysicalActivity)},
		{Number: float64(f.SleepHours)},
		{Category: f.AccessToResources},
		{Category: f.ParentalInvolvement},
	}
	for i, col := range Schema.Columns {
		values[i].Column = col.Name
		values[i].Kind = col.Kind
	}
	return values
}
