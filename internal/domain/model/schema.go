package model

// SchemaVersion identifies the column list below. Model artifacts carry the
// same version and are rejected on mismatch.
const SchemaVersion = "student-features/v1"

// ColumnKind distinguishes numeric columns from categorical ones.
type ColumnKind string

// Column kinds.
const (
	KindNumeric     ColumnKind = "numeric"
	KindCategorical ColumnKind = "categorical"
)

// Column describes one trained input column.
type Column struct {
	Name   string     `json:"name"`
	Field  string     `json:"field"`
	Label  string     `json:"label"`
	Kind   ColumnKind `json:"kind"`
	Min    int        `json:"min,omitempty"`
	Max    int        `json:"max,omitempty"`
	Levels []Level    `json:"levels,omitempty"`
}

// InputSchema is the versioned, ordered input contract of the model.
type InputSchema struct {
	Version  string          `json:"version"`
	Columns  []Column        `json:"columns"`
	Defaults StudentFeatures `json:"defaults"`
}

// Schema pins the column order and names the model was fit on.
// Reordering or renaming entries silently changes predictions.
var Schema = InputSchema{
	Version: SchemaVersion,
	Columns: []Column{
		{Name: "Attendance", Field: "attendance", Label: "Attendance (%)", Kind: KindNumeric, Min: 0, Max: 100},
		{Name: "Hours_Studied", Field: "hours_studied", Label: "Hours Studied", Kind: KindNumeric, Min: 0, Max: 100},
		{Name: "Previous_Scores", Field: "previous_scores", Label: "Previous Score", Kind: KindNumeric, Min: 0, Max: 100},
		{Name: "Tutoring_Sessions", Field: "tutoring_sessions", Label: "Tutoring Sessions", Kind: KindNumeric, Min: 0, Max: 10},
		{Name: "Physical_Activity", Field: "physical_activity", Label: "Physical Activity (Hrs/Week)", Kind: KindNumeric, Min: 0, Max: 20},
		{Name: "Sleep_Hours", Field: "sleep_hours", Label: "Sleep Hours", Kind: KindNumeric, Min: 0, Max: 24},
		{Name: "Access_to_Resources", Field: "access_to_resources", Label: "Access to Resources", Kind: KindCategorical, Levels: Levels},
		{Name: "Parental_Involvement", Field: "parental_involvement", Label: "Parental Involvement", Kind: KindCategorical, Levels: Levels},
	},
	Defaults: DefaultFeatures(),
}

// ColumnNames returns the trained column names in order.
func ColumnNames() []string {
	names := make([]string, len(Schema.Columns))
	for i, c := range Schema.Columns {
		names[i] = c.Name
	}
	return names
}
