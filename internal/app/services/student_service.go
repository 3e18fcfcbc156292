package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/app/repositories"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
	"github.com/yigit/gtostat/internal/pkg/validation"
)

// StudentListParams filters a student listing. FullName is "First Last" and is combined with GroupID.
type StudentListParams struct {
	InstituteID int64
	GroupID     int64
	FullName    string
	ListParams
}

// StudentPatch carries the fields of a partial student update. Nil fields are left unchanged.
type StudentPatch struct {
	GroupID       *int64
	FirstName     *string
	LastName      *string
	Patronymic    *string
	BirthDate     *time.Time
	BirthPlace    *string
	Sex           *string
	MedicalGroup  *string
	Email         *string
	PhoneNumber   *string
	Address       *string
	AdmissionYear *int
	Height        *int
	Weight        *int
}

// StudentService defines the interface for student-related operations
type StudentService interface {
	CreateStudent(ctx context.Context, student *models.Student) error
	GetStudent(ctx context.Context, id int64) (*models.Student, error)
	ListStudents(ctx context.Context, params StudentListParams) ([]*models.Student, int64, error)
	UpdateStudent(ctx context.Context, id int64, patch StudentPatch) (*models.Student, error)
	DeleteStudent(ctx context.Context, id int64) error
}

type studentServiceImpl struct {
	studentRepo   StudentStore
	groupRepo     GroupStore
	instituteRepo InstituteStore
	standings     StandingsInvalidator
}

// NewStudentService creates a new student service instance. standings may be nil.
func NewStudentService(studentRepo StudentStore, groupRepo GroupStore, instituteRepo InstituteStore, standings StandingsInvalidator) StudentService {
	return &studentServiceImpl{
		studentRepo:   studentRepo,
		groupRepo:     groupRepo,
		instituteRepo: instituteRepo,
		standings:     standings,
	}
}

// validateStudent checks field formats and normalizes the phone number in place
func validateStudent(s *models.Student) error {
	s.PhoneNumber = validation.NormalizePhone(s.PhoneNumber)

	switch {
	case !validation.IsName(s.FirstName):
		return fmt.Errorf("%w: invalid first name: %s", apperrors.ErrValidationFailed, s.FirstName)
	case !validation.IsName(s.LastName):
		return fmt.Errorf("%w: invalid last name: %s", apperrors.ErrValidationFailed, s.LastName)
	case !validation.IsPatronymic(s.Patronymic):
		return fmt.Errorf("%w: invalid patronymic: %s", apperrors.ErrValidationFailed, s.Patronymic)
	case s.BirthDate.IsZero():
		return fmt.Errorf("%w: birth date is required", apperrors.ErrValidationFailed)
	case strings.TrimSpace(s.BirthPlace) == "":
		return fmt.Errorf("%w: birth place cannot be empty", apperrors.ErrValidationFailed)
	case !validation.IsSex(s.Sex):
		return fmt.Errorf("%w: sex must be '%s' or '%s'", apperrors.ErrValidationFailed, models.SexMale, models.SexFemale)
	case !validation.IsMedicalGroup(s.MedicalGroup):
		return fmt.Errorf("%w: invalid medical group: %s", apperrors.ErrValidationFailed, s.MedicalGroup)
	case !validation.IsEmail(s.Email):
		return fmt.Errorf("%w: invalid email: %s", apperrors.ErrValidationFailed, s.Email)
	case !validation.IsPhone(s.PhoneNumber):
		return fmt.Errorf("%w: invalid phone: %s", apperrors.ErrValidationFailed, s.PhoneNumber)
	case strings.TrimSpace(s.Address) == "":
		return fmt.Errorf("%w: address cannot be empty", apperrors.ErrValidationFailed)
	case s.AdmissionYear <= 0:
		return fmt.Errorf("%w: admission year must be greater than 0", apperrors.ErrValidationFailed)
	case s.Height <= 0:
		return fmt.Errorf("%w: height must be greater than 0", apperrors.ErrValidationFailed)
	case s.Weight <= 0:
		return fmt.Errorf("%w: weight must be greater than 0", apperrors.ErrValidationFailed)
	case s.GroupID <= 0:
		return fmt.Errorf("%w: invalid group ID", apperrors.ErrValidationFailed)
	}
	return nil
}

// attachGroup copies institute and course from the student's group so the two always agree
func (s *studentServiceImpl) attachGroup(ctx context.Context, student *models.Student) error {
	group, err := s.groupRepo.GetByID(ctx, student.GroupID)
	if err != nil {
		return err
	}
	student.InstituteID = group.InstituteID
	student.Course = group.Course
	student.Group = group
	return nil
}

// CreateStudent validates and stores a new student
func (s *studentServiceImpl) CreateStudent(ctx context.Context, student *models.Student) error {
	if student == nil {
		return fmt.Errorf("%w: student is nil", apperrors.ErrValidationFailed)
	}
	if err := validateStudent(student); err != nil {
		return err
	}
	if err := s.attachGroup(ctx, student); err != nil {
		return err
	}

	if err := s.studentRepo.Create(ctx, student); err != nil {
		if errors.Is(err, apperrors.ErrStudentExists) {
			return apperrors.ErrStudentExists
		}
		return fmt.Errorf("error creating student: %w", err)
	}
	invalidateStandings(ctx, s.standings)
	return nil
}

// GetStudent returns a student with its group and institute
func (s *studentServiceImpl) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid student ID", apperrors.ErrValidationFailed)
	}

	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}

	group, err := s.groupRepo.GetByID(ctx, student.GroupID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving group of student %d: %w", id, err)
	}
	institute, err := s.instituteRepo.GetByID(ctx, group.InstituteID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving institute of student %d: %w", id, err)
	}
	group.Institute = institute
	student.Group = group

	return student, nil
}

// ListStudents returns a page of students and the total count
func (s *studentServiceImpl) ListStudents(ctx context.Context, params StudentListParams) ([]*models.Student, int64, error) {
	filter := repositories.StudentFilter{
		InstituteID: params.InstituteID,
		GroupID:     params.GroupID,
		Page:        params.page(),
	}

	if name := strings.TrimSpace(params.FullName); name != "" {
		parts := strings.Fields(name)
		if len(parts) != 2 {
			return nil, 0, fmt.Errorf("%w: name must be 'First Last'", apperrors.ErrValidationFailed)
		}
		if params.GroupID <= 0 {
			return nil, 0, fmt.Errorf("%w: name filter requires group_id", apperrors.ErrValidationFailed)
		}
		filter.FirstName, filter.LastName = parts[0], parts[1]
	}

	students, err := s.studentRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error retrieving students: %w", err)
	}

	total, err := s.studentRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting students: %w", err)
	}

	return students, total, nil
}

// UpdateStudent applies a partial update and re-derives the institute when the group changes
func (s *studentServiceImpl) UpdateStudent(ctx context.Context, id int64, patch StudentPatch) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyStudentPatch(student, patch)
	if err := validateStudent(student); err != nil {
		return nil, err
	}
	if err := s.attachGroup(ctx, student); err != nil {
		return nil, err
	}

	if err := s.studentRepo.Update(ctx, student); err != nil {
		if errors.Is(err, apperrors.ErrStudentExists) || errors.Is(err, apperrors.ErrStudentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating student: %w", err)
	}
	invalidateStandings(ctx, s.standings)
	return student, nil
}

func applyStudentPatch(s *models.Student, p StudentPatch) {
	if p.GroupID != nil {
		s.GroupID = *p.GroupID
	}
	if p.FirstName != nil {
		s.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		s.LastName = *p.LastName
	}
	if p.Patronymic != nil {
		s.Patronymic = *p.Patronymic
	}
	if p.BirthDate != nil {
		s.BirthDate = *p.BirthDate
	}
	if p.BirthPlace != nil {
		s.BirthPlace = *p.BirthPlace
	}
	if p.Sex != nil {
		s.Sex = *p.Sex
	}
	if p.MedicalGroup != nil {
		s.MedicalGroup = *p.MedicalGroup
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.PhoneNumber != nil {
		s.PhoneNumber = *p.PhoneNumber
	}
	if p.Address != nil {
		s.Address = *p.Address
	}
	if p.AdmissionYear != nil {
		s.AdmissionYear = *p.AdmissionYear
	}
	if p.Height != nil {
		s.Height = *p.Height
	}
	if p.Weight != nil {
		s.Weight = *p.Weight
	}
}

// DeleteStudent removes a student
func (s *studentServiceImpl) DeleteStudent(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid student ID", apperrors.ErrValidationFailed)
	}
	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return err
	}
	invalidateStandings(ctx, s.standings)
	return nil
}
