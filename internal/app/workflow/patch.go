package workflow

import (
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/pkg/apperrors"
	"github.com/yigit/achievement-portal/internal/pkg/validation"
)

// ERPPatch is the allow-list of fields a student may change on an ERP record.
// Workflow fields (status, points, verifier, timestamps) have no counterpart
// here, so they are dropped when a request body is decoded into a patch.
// A nil field leaves the stored value untouched.
type ERPPatch struct {
	CurrentSemester *string            `json:"currentSemester"`
	CurrentYear     *int               `json:"currentYear" binding:"omitnil,min=1,max=4"`
	Semesters       *[]models.Semester `json:"semesters" binding:"omitnil,dive"`

	IntermediatePercentage *float64 `json:"intermediatePercentage" binding:"omitnil,gte=0,lte=100"`
	IntermediateBoard      *string  `json:"intermediateBoard"`
	IntermediateYear       *int     `json:"intermediateYear"`
	SSLCPercentage         *float64 `json:"sslcPercentage" binding:"omitnil,gte=0,lte=100"`
	SSLCBoard              *string  `json:"sslcBoard"`
	SSLCYear               *int     `json:"sslcYear"`

	FullName    *string `json:"fullName"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitnil,len=10,number"`
	Email       *string `json:"email"`

	FatherName       *string `json:"fatherName"`
	FatherPhone      *string `json:"fatherPhone"`
	FatherOccupation *string `json:"fatherOccupation"`
	MotherName       *string `json:"motherName"`
	MotherPhone      *string `json:"motherPhone"`
	MotherOccupation *string `json:"motherOccupation"`

	AccommodationType  *string `json:"accommodationType" binding:"omitnil,oneof=day_scholar residential"`
	WhereFrom          *string `json:"whereFrom"`
	ResidentialAddress *string `json:"residentialAddress"`

	ScholarshipAvailed *bool   `json:"scholarshipAvailed"`
	ScholarshipName    *string `json:"scholarshipName"`
	ScholarshipAmount  *string `json:"scholarshipAmount"`
	ScholarshipYear    *string `json:"scholarshipYear"`

	PermanentAddress *models.Address `json:"permanentAddress"`

	Projects        *[]models.Project         `json:"projects"`
	Internships     *[]models.Internship      `json:"internships"`
	Placements      *[]models.Placement       `json:"placements"`
	ResearchWorks   *[]models.ResearchWork    `json:"researchWorks"`
	Certifications  *[]models.Certification   `json:"certifications"`
	TechnicalSkills *[]string                 `json:"technicalSkills"`
	SoftSkills      *[]string                 `json:"softSkills"`
	Extracurricular *[]models.Extracurricular `json:"extracurricular"`
}

// SemestersChanged reports whether applying p replaces the semester list.
func (p ERPPatch) SemestersChanged() bool { return p.Semesters != nil }

// Validate runs the patch's binding rules outside of a request, so services
// reject the same input gin would.
func (p ERPPatch) Validate() error {
	v, err := patchRules()
	if err != nil {
		return err
	}

	var verrs validator.ValidationErrors
	if err := v.Struct(p); !errors.As(err, &verrs) {
		return err
	}
	details := make(map[string]interface{}, len(verrs))
	for _, fe := range verrs {
		details[validation.FieldPath(fe)] = validation.Message(fe)
	}
	return apperrors.NewValidationError("invalid ERP update", details)
}

var patchRules = sync.OnceValues(validation.NewBindingValidator)

// Apply returns a copy of profile with every non-nil patch field written.
func (p ERPPatch) Apply(profile models.ERPProfile) models.ERPProfile {
	set(&profile.CurrentSemester, p.CurrentSemester)
	set(&profile.CurrentYear, p.CurrentYear)
	set(&profile.Semesters, p.Semesters)

	if p.IntermediatePercentage != nil {
		v := *p.IntermediatePercentage
		profile.IntermediatePercentage = &v
	}
	set(&profile.IntermediateBoard, p.IntermediateBoard)
	set(&profile.IntermediateYear, p.IntermediateYear)
	if p.SSLCPercentage != nil {
		v := *p.SSLCPercentage
		profile.SSLCPercentage = &v
	}
	set(&profile.SSLCBoard, p.SSLCBoard)
	set(&profile.SSLCYear, p.SSLCYear)

	set(&profile.FullName, p.FullName)
	set(&profile.PhoneNumber, p.PhoneNumber)
	set(&profile.Email, p.Email)

	set(&profile.FatherName, p.FatherName)
	set(&profile.FatherPhone, p.FatherPhone)
	set(&profile.FatherOccupation, p.FatherOccupation)
	set(&profile.MotherName, p.MotherName)
	set(&profile.MotherPhone, p.MotherPhone)
	set(&profile.MotherOccupation, p.MotherOccupation)

	set(&profile.AccommodationType, p.AccommodationType)
	set(&profile.WhereFrom, p.WhereFrom)
	set(&profile.ResidentialAddress, p.ResidentialAddress)

	set(&profile.ScholarshipAvailed, p.ScholarshipAvailed)
	set(&profile.ScholarshipName, p.ScholarshipName)
	set(&profile.ScholarshipAmount, p.ScholarshipAmount)
	set(&profile.ScholarshipYear, p.ScholarshipYear)

	set(&profile.PermanentAddress, p.PermanentAddress)

	set(&profile.Projects, p.Projects)
	set(&profile.Internships, p.Internships)
	set(&profile.Placements, p.Placements)
	set(&profile.ResearchWorks, p.ResearchWorks)
	set(&profile.Certifications, p.Certifications)
	set(&profile.TechnicalSkills, p.TechnicalSkills)
	set(&profile.SoftSkills, p.SoftSkills)
	set(&profile.Extracurricular, p.Extracurricular)

	return profile
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
