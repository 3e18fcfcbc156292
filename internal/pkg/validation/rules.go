package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
)

// Validation rule patterns
var (
	NamePattern  = `^[А-Яа-яЁё\s-]+$`
	PhonePattern = `^\+\d{1,20}$`
	DatePattern  = `^\d{4}-(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])$`

	NameMaxLength     = 40
	PasswordMinLength = 8
)

// DateLayout is the wire format of dates
const DateLayout = "2006-01-02"

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Name  *regexp.Regexp
	Phone *regexp.Regexp
	Date  *regexp.Regexp
}{
	Name:  regexp.MustCompile(NamePattern),
	Phone: regexp.MustCompile(PhonePattern),
	Date:  regexp.MustCompile(DatePattern),
}

var validate = New()

// New returns a validator with the custom student rules registered
func New() *validator.Validate {
	v := validator.New()
	if err := Register(v); err != nil {
		panic(err)
	}
	return v
}

// Register adds the custom rules to an existing validator, e.g. gin's binding engine
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"ru_name":       func(fl validator.FieldLevel) bool { return IsName(fl.Field().String()) },
		"ru_patronymic": func(fl validator.FieldLevel) bool { return IsPatronymic(fl.Field().String()) },
		"sex":           func(fl validator.FieldLevel) bool { return IsSex(fl.Field().String()) },
		"medical_group": func(fl validator.FieldLevel) bool { return IsMedicalGroup(fl.Field().String()) },
		"phone":         func(fl validator.FieldLevel) bool { return IsPhone(NormalizePhone(fl.Field().String())) },
		"iso_date":      func(fl validator.FieldLevel) bool { _, err := ParseDate(fl.Field().String()); return err == nil },
		"gto_level":     func(fl validator.FieldLevel) bool { return models.Level(fl.Field().String()).Valid() },
		"not_blank":     func(fl validator.FieldLevel) bool { return strings.TrimSpace(fl.Field().String()) != "" },
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

// Struct validates s and converts failures into a validation error listing each field
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, FormatFieldError(fe))
	}
	return apperrors.NewValidationError(strings.Join(msgs, "; "))
}

// FormatFieldError creates a human-readable validation error message
func FormatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "ru_name", "ru_patronymic":
		return e.Field() + " must contain only Cyrillic letters, spaces and hyphens"
	case "sex":
		return fmt.Sprintf("%s must be '%s' or '%s'", e.Field(), models.SexMale, models.SexFemale)
	case "medical_group":
		return e.Field() + " must be one of: " + strings.Join(models.MedicalGroups, ", ")
	case "phone":
		return e.Field() + " must be a phone number like +79991234567"
	case "iso_date":
		return e.Field() + " must be in format YYYY-MM-DD"
	case "gto_level":
		return e.Field() + " must be one of gold, silver, bronze"
	case "not_blank":
		return e.Field() + " must not be blank"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}

// IsName checks every word of a name against the Cyrillic pattern
func IsName(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if utf8.RuneCountInString(w) > NameMaxLength || !CompiledPatterns.Name.MatchString(w) {
			return false
		}
	}
	return true
}

// IsPatronymic accepts a blank value or a Cyrillic name
func IsPatronymic(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	return CompiledPatterns.Name.MatchString(s)
}

// IsSex reports whether s is one of the two accepted values
func IsSex(s string) bool {
	return s == models.SexMale || s == models.SexFemale
}

// IsMedicalGroup reports whether s is a known medical group
func IsMedicalGroup(s string) bool {
	for _, g := range models.MedicalGroups {
		if s == g {
			return true
		}
	}
	return false
}

// NormalizePhone rewrites a leading 8 into +7
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "8") {
		return "+7" + s[1:]
	}
	return s
}

// IsPhone checks an already normalized phone number
func IsPhone(s string) bool {
	return CompiledPatterns.Phone.MatchString(s)
}

// ParseDate parses a YYYY-MM-DD date
func ParseDate(s string) (time.Time, error) {
	if !CompiledPatterns.Date.MatchString(s) {
		return time.Time{}, apperrors.NewValidationError(fmt.Sprintf("invalid date: %s date must be in format YYYY-MM-DD", s))
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(fmt.Sprintf("invalid date: %s", s))
	}
	return t, nil
}

// IsEmail reports whether s is a syntactically valid email address
func IsEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}
