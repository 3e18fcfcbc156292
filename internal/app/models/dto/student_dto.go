package dto

import (
	"time"

	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/pkg/validation"
)

// CreateStudentRequest represents the payload of a new student.
// Institute and course are taken from the group.
type CreateStudentRequest struct {
	GroupID       int64  `json:"groupId" binding:"required,gt=0"`
	FirstName     string `json:"firstName" binding:"required,ru_name"`
	LastName      string `json:"lastName" binding:"required,ru_name"`
	Patronymic    string `json:"patronymic" binding:"omitempty,ru_patronymic"`
	BirthDate     string `json:"birthDate" binding:"required,iso_date" example:"2005-05-12"`
	BirthPlace    string `json:"birthPlace" binding:"required,not_blank"`
	Sex           string `json:"sex" binding:"required,sex" example:"Мужской"`
	MedicalGroup  string `json:"medicalGroup" binding:"required,medical_group" example:"Основная"`
	Email         string `json:"email" binding:"required,email"`
	PhoneNumber   string `json:"phoneNumber" binding:"required,phone" example:"+79131234567"`
	Address       string `json:"address" binding:"required,not_blank"`
	AdmissionYear int    `json:"admissionYear" binding:"required,gt=0"`
	Height        int    `json:"height" binding:"required,gt=0"`
	Weight        int    `json:"weight" binding:"required,gt=0"`
}

// ToModel converts the request into a student model
func (r CreateStudentRequest) ToModel() (*models.Student, error) {
	birthDate, err := validation.ParseDate(r.BirthDate)
	if err != nil {
		return nil, err
	}
	return &models.Student{
		GroupID:       r.GroupID,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Patronymic:    r.Patronymic,
		BirthDate:     birthDate,
		BirthPlace:    r.BirthPlace,
		Sex:           r.Sex,
		MedicalGroup:  r.MedicalGroup,
		Email:         r.Email,
		PhoneNumber:   r.PhoneNumber,
		Address:       r.Address,
		AdmissionYear: r.AdmissionYear,
		Height:        r.Height,
		Weight:        r.Weight,
	}, nil
}

// UpdateStudentRequest is a partial student update. Absent fields are left unchanged.
type UpdateStudentRequest struct {
	GroupID       *int64  `json:"groupId" binding:"omitempty,gt=0"`
	FirstName     *string `json:"firstName" binding:"omitempty,ru_name"`
	LastName      *string `json:"lastName" binding:"omitempty,ru_name"`
	Patronymic    *string `json:"patronymic" binding:"omitempty,ru_patronymic"`
	BirthDate     *string `json:"birthDate" binding:"omitempty,iso_date"`
	BirthPlace    *string `json:"birthPlace" binding:"omitempty,not_blank"`
	Sex           *string `json:"sex" binding:"omitempty,sex"`
	MedicalGroup  *string `json:"medicalGroup" binding:"omitempty,medical_group"`
	Email         *string `json:"email" binding:"omitempty,email"`
	PhoneNumber   *string `json:"phoneNumber" binding:"omitempty,phone"`
	Address       *string `json:"address" binding:"omitempty,not_blank"`
	AdmissionYear *int    `json:"admissionYear" binding:"omitempty,gt=0"`
	Height        *int    `json:"height" binding:"omitempty,gt=0"`
	Weight        *int    `json:"weight" binding:"omitempty,gt=0"`
}

// BirthDateValue parses the optional birth date
func (r UpdateStudentRequest) BirthDateValue() (*time.Time, error) {
	if r.BirthDate == nil {
		return nil, nil
	}
	t, err := validation.ParseDate(*r.BirthDate)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
