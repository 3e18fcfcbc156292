package dto

// CreateDefinitionRequest adds a standard or a theory test to the catalogue
type CreateDefinitionRequest struct {
	Name string `json:"name" binding:"required,not_blank"`
}

// ResultRequest creates or replaces a student's result
type ResultRequest struct {
	DefinitionID int64 `json:"definition_id" binding:"required,gt=0"`
	Semester     int   `json:"semester" binding:"required,gt=0"`
	Result       int   `json:"result" binding:"min=0"`
}
