package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/achievement-portal/internal/app/models"
)

// Validation rule patterns
var (
	// Roll numbers are alphanumeric, e.g. 21CS1A0501
	RollNumberPattern = regexp.MustCompile(`^[A-Za-z0-9]{4,20}$`)

	PasswordMinLength = 6

	NameMinLength = 2
	NameMaxLength = 100
)

// Custom struct tags understood by request DTOs
const (
	TagDepartment  = "department"
	TagStudyYear   = "studyyear"
	TagSection     = "section"
	TagRollNumber  = "rollnumber"
	TagLevel       = "achlevel"
	TagAnnounceTyp = "announcetype"
)

// Register installs the portal's custom tags on v.
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		TagDepartment: func(fl validator.FieldLevel) bool {
			return models.Department(fl.Field().String()).Valid()
		},
		TagStudyYear: func(fl validator.FieldLevel) bool {
			return models.Year(fl.Field().String()).Valid()
		},
		TagSection: func(fl validator.FieldLevel) bool {
			return models.ValidSection(fl.Field().String())
		},
		TagRollNumber: func(fl validator.FieldLevel) bool {
			return RollNumberPattern.MatchString(fl.Field().String())
		},
		TagLevel: func(fl validator.FieldLevel) bool {
			return models.Level(fl.Field().String()).Valid()
		},
		TagAnnounceTyp: func(fl validator.FieldLevel) bool {
			return models.AnnouncementType(fl.Field().String()).Valid()
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validation: %w", tag, err)
		}
	}
	return nil
}

// RegisterWithGin installs the custom tags on gin's default binding validator.
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}

// NewBindingValidator returns a validator that reads the same `binding` tags
// gin does and reports fields by their JSON names.
func NewBindingValidator() (*validator.Validate, error) {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	if err := Register(v); err != nil {
		return nil, err
	}
	return v, nil
}

// FieldPath is the failed field's namespace without the root struct name,
// e.g. "semesters[0].courses[1].gpa".
func FieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// Message renders a human-readable message for one failed field.
func Message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gte":
		return e.Field() + " must be at least " + e.Param()
	case "lte":
		return e.Field() + " must be at most " + e.Param()
	case "len":
		return e.Field() + " must be exactly " + e.Param() + " characters"
	case "number":
		return e.Field() + " must contain only digits"
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case TagDepartment:
		names := make([]string, len(models.Departments))
		for i, d := range models.Departments {
			names[i] = string(d)
		}
		return e.Field() + " must be one of: " + strings.Join(names, ", ")
	case TagStudyYear:
		return e.Field() + " must be one of: I, II, III, IV"
	case TagSection:
		return e.Field() + " must be a section letter from A to S"
	case TagRollNumber:
		return e.Field() + " must be 4 to 20 letters or digits"
	case TagLevel:
		return e.Field() + " must be one of: College, State, National, International"
	case TagAnnounceTyp:
		return e.Field() + " must be one of: academic, career_opportunity"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
