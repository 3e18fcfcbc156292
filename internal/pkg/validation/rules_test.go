package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
)

type studentInput struct {
	FirstName    string `validate:"required,ru_name"`
	Patronymic   string `validate:"ru_patronymic"`
	Sex          string `validate:"required,sex"`
	MedicalGroup string `validate:"required,medical_group"`
	Phone        string `validate:"required,phone"`
	BirthDate    string `validate:"required,iso_date"`
	Height       int    `validate:"gt=0"`
}

func validStudent() studentInput {
	return studentInput{
		FirstName:    "Анна-Мария",
		Sex:          "Женский",
		MedicalGroup: "Основная",
		Phone:        "89991234567",
		BirthDate:    "2004-02-29",
		Height:       170,
	}
}

func TestStruct_Valid(t *testing.T) {
	require.NoError(t, Struct(validStudent()))
}

func TestStruct_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*studentInput)
		field  string
	}{
		{name: "latin name", mutate: func(s *studentInput) { s.FirstName = "Anna" }, field: "FirstName"},
		{name: "bad sex", mutate: func(s *studentInput) { s.Sex = "male" }, field: "Sex"},
		{name: "bad medical group", mutate: func(s *studentInput) { s.MedicalGroup = "Другая" }, field: "MedicalGroup"},
		{name: "bad phone", mutate: func(s *studentInput) { s.Phone = "12345" }, field: "Phone"},
		{name: "bad date", mutate: func(s *studentInput) { s.BirthDate = "29.02.2004" }, field: "BirthDate"},
		{name: "zero height", mutate: func(s *studentInput) { s.Height = 0 }, field: "Height"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validStudent()
			tt.mutate(&s)

			err := Struct(s)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+79991234567", NormalizePhone("89991234567"))
	assert.Equal(t, "+79991234567", NormalizePhone("+79991234567"))
	assert.True(t, IsPhone(NormalizePhone("89991234567")))
	assert.False(t, IsPhone("9991234567"))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2003-07-15")
	require.NoError(t, err)
	assert.Equal(t, 2003, d.Year())

	_, err = ParseDate("2003-02-30")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = ParseDate("2003-13-01")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestIsPatronymic(t *testing.T) {
	assert.True(t, IsPatronymic(""))
	assert.True(t, IsPatronymic("Иванович"))
	assert.False(t, IsPatronymic("Ivanovich"))
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("student@university.ru"))
	assert.False(t, IsEmail("student-at-university"))
	assert.False(t, IsEmail(""))
}
