package models

// ResultKind identifies a family of per-student results
type ResultKind string

const (
	ResultKindGTO      ResultKind = "gto"
	ResultKindStandard ResultKind = "standard"
	ResultKindTheory   ResultKind = "theory"
)

// ResultDefinition is an entry of a kind's catalogue (a GTO level, a physical standard, a theory test)
type ResultDefinition struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// ResultRecord is one student result of any kind.
// For GTO records Label carries the level and Year the calendar year;
// for standards and theory DefinitionID, Semester and Value are set.
type ResultRecord struct {
	ID           int64      `json:"id" db:"id"`
	Kind         ResultKind `json:"kind"`
	StudentID    int64      `json:"studentId" db:"student_id"`
	DefinitionID int64      `json:"definitionId,omitempty" db:"definition_id"`
	Label        string     `json:"label,omitempty"`
	Semester     int        `json:"semester,omitempty" db:"semester"`
	Year         int        `json:"year,omitempty" db:"year"`
	Value        int        `json:"result" db:"result"`
}
