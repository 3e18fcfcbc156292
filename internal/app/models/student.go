package models

import "time"

// Sex values accepted for a student
const (
	SexMale   = "Мужской"
	SexFemale = "Женский"
)

// MedicalGroups lists the accepted medical groups
var MedicalGroups = []string{
	"Основная",
	"Подготовительная",
	"Специальная \"А\" (оздоровительная)",
	"Специальная \"Б\" (реабилитационная)",
}

// Student defines the student model based on the 'students' table.
// InstituteID and Course are copied from the student's group on every write.
type Student struct {
	ID            int64     `json:"id" db:"id"`
	InstituteID   int64     `json:"instituteId" db:"institute_id"`
	GroupID       int64     `json:"groupId" db:"group_id"`
	Course        int       `json:"course" db:"course"`
	FirstName     string    `json:"firstName" db:"first_name"`
	LastName      string    `json:"lastName" db:"last_name"`
	Patronymic    string    `json:"patronymic" db:"patronymic"`
	BirthDate     time.Time `json:"birthDate" db:"birth_date"`
	BirthPlace    string    `json:"birthPlace" db:"birth_place"`
	Sex           string    `json:"sex" db:"sex"`
	MedicalGroup  string    `json:"medicalGroup" db:"medical_group"`
	Email         string    `json:"email" db:"email"`
	PhoneNumber   string    `json:"phoneNumber" db:"phone_number"`
	Address       string    `json:"address" db:"address"`
	AdmissionYear int       `json:"admissionYear" db:"admission_year"`
	Height        int       `json:"height" db:"height"`
	Weight        int       `json:"weight" db:"weight"`
	Group         *Group    `json:"group,omitempty"` // Relation, no db tag
}
