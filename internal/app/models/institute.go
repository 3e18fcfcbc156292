package models

// Institute represents an institute of the university
type Institute struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Group represents a study group that belongs to exactly one institute
type Group struct {
	ID          int64      `json:"id" db:"id"`
	InstituteID int64      `json:"instituteId" db:"institute_id"`
	Course      int        `json:"course" db:"course"`
	Name        string     `json:"name" db:"name"`
	Institute   *Institute `json:"institute,omitempty"` // Relation, no db tag
}
