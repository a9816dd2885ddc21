package models

import (
	"time"
)

// ERPStatus is the verification state of an ERP record.
type ERPStatus string

const (
	ERPDraft     ERPStatus = "draft"
	ERPSubmitted ERPStatus = "submitted"
	ERPVerified  ERPStatus = "verified"
	ERPRejected  ERPStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s ERPStatus) Valid() bool {
	switch s {
	case ERPDraft, ERPSubmitted, ERPVerified, ERPRejected:
		return true
	}
	return false
}

// PlaceholderPhone is stored on auto-created drafts and is not a real number.
const PlaceholderPhone = "0000000000"

type Course struct {
	CourseName string  `json:"courseName" binding:"required"`
	CourseCode string  `json:"courseCode,omitempty"`
	Credits    float64 `json:"credits,omitempty"`
	Grade      string  `json:"grade,omitempty"`
	GPA        float64 `json:"gpa,omitempty" binding:"gte=0,lte=10"`
}

// Semester is one academic term, e.g. "2-1".
type Semester struct {
	SemesterName   string   `json:"semesterName" binding:"required"`
	Year           int      `json:"year" binding:"min=1,max=4"`
	SemesterNumber int      `json:"semesterNumber" binding:"min=1,max=2"`
	Courses        []Course `json:"courses" binding:"dive"`
	SGPA           float64  `json:"sgpa" binding:"gte=0,lte=10"`
	TotalCredits   float64  `json:"totalCredits,omitempty"`
}

type Project struct {
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	Technologies   []string `json:"technologies,omitempty"`
	Duration       string   `json:"duration,omitempty"`
	Role           string   `json:"role,omitempty"`
	Link           string   `json:"link,omitempty"`
	CertificateURL string   `json:"certificateUrl,omitempty"`
}

type Internship struct {
	Company        string     `json:"company"`
	Role           string     `json:"role,omitempty"`
	Duration       string     `json:"duration,omitempty"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	Stipend        string     `json:"stipend,omitempty"`
	Description    string     `json:"description,omitempty"`
	CertificateURL string     `json:"certificateUrl,omitempty"`
}

type Placement struct {
	Company        string     `json:"company"`
	Package        string     `json:"package,omitempty"`
	Role           string     `json:"role,omitempty"`
	OfferDate      *time.Time `json:"offerDate,omitempty"`
	JoiningDate    *time.Time `json:"joiningDate,omitempty"`
	OfferLetterURL string     `json:"offerLetterUrl,omitempty"`
}

type ResearchWork struct {
	Title             string `json:"title"`
	Description       string `json:"description,omitempty"`
	Domain            string `json:"domain,omitempty"`
	GuideName         string `json:"guideName,omitempty"`
	PublicationStatus string `json:"publicationStatus,omitempty"`
	JournalName       string `json:"journalName,omitempty"`
	ConferenceDetails string `json:"conferenceDetails,omitempty"`
	Year              string `json:"year,omitempty"`
	PaperURL          string `json:"paperUrl,omitempty"`
	CertificateURL    string `json:"certificateUrl,omitempty"`
}

type Certification struct {
	Name           string     `json:"name"`
	IssuedBy       string     `json:"issuedBy,omitempty"`
	IssueDate      *time.Time `json:"issueDate,omitempty"`
	CertificateURL string     `json:"certificateUrl,omitempty"`
}

type Extracurricular struct {
	Activity    string `json:"activity"`
	Role        string `json:"role,omitempty"`
	Description string `json:"description,omitempty"`
	Year        string `json:"year,omitempty"`
}

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`
}

// Accommodation types
const (
	AccommodationDayScholar  = "day_scholar"
	AccommodationResidential = "residential"
)

// ERPProfile is the student-editable part of an ERP record. It is stored as a
// single document next to the workflow columns of ERPRecord.
type ERPProfile struct {
	CurrentSemester string     `json:"currentSemester"`
	CurrentYear     int        `json:"currentYear"`
	Semesters       []Semester `json:"semesters"`

	IntermediatePercentage *float64 `json:"intermediatePercentage,omitempty"`
	IntermediateBoard      string   `json:"intermediateBoard,omitempty"`
	IntermediateYear       int      `json:"intermediateYear,omitempty"`
	SSLCPercentage         *float64 `json:"sslcPercentage,omitempty"`
	SSLCBoard              string   `json:"sslcBoard,omitempty"`
	SSLCYear               int      `json:"sslcYear,omitempty"`

	FullName    string `json:"fullName,omitempty"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email,omitempty"`

	FatherName       string `json:"fatherName,omitempty"`
	FatherPhone      string `json:"fatherPhone,omitempty"`
	FatherOccupation string `json:"fatherOccupation,omitempty"`
	MotherName       string `json:"motherName,omitempty"`
	MotherPhone      string `json:"motherPhone,omitempty"`
	MotherOccupation string `json:"motherOccupation,omitempty"`

	AccommodationType  string `json:"accommodationType"`
	WhereFrom          string `json:"whereFrom,omitempty"`
	ResidentialAddress string `json:"residentialAddress,omitempty"`

	ScholarshipAvailed bool   `json:"scholarshipAvailed"`
	ScholarshipName    string `json:"scholarshipName,omitempty"`
	ScholarshipAmount  string `json:"scholarshipAmount,omitempty"`
	ScholarshipYear    string `json:"scholarshipYear,omitempty"`

	PermanentAddress Address `json:"permanentAddress"`

	Projects        []Project         `json:"projects"`
	Internships     []Internship      `json:"internships"`
	Placements      []Placement       `json:"placements"`
	ResearchWorks   []ResearchWork    `json:"researchWorks"`
	Certifications  []Certification   `json:"certifications"`
	TechnicalSkills []string          `json:"technicalSkills"`
	SoftSkills      []string          `json:"softSkills"`
	Extracurricular []Extracurricular `json:"extracurricular"`
}

// ERPRecord is a student's extended profile plus its verification state.
// There is at most one record per account.
type ERPRecord struct {
	ID          int64      `json:"id" db:"id"`
	AccountID   int64      `json:"studentId" db:"account_id"`
	Profile     ERPProfile `json:"profile" db:"profile"`
	OverallCGPA *float64   `json:"overallCGPA,omitempty" db:"overall_cgpa"`
	Status      ERPStatus  `json:"status" db:"status"`
	// ERPPoints is meaningful only while Status is verified.
	ERPPoints   int        `json:"erpPoints" db:"erp_points"`
	AdminNote   string     `json:"adminNote" db:"admin_note"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty" db:"submitted_at"`
	VerifiedAt  *time.Time `json:"verifiedAt,omitempty" db:"verified_at"`
	VerifiedBy  *int64     `json:"verifiedBy,omitempty" db:"verified_by"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`

	Owner *AccountSummary `json:"student,omitempty" db:"-"`
}

// NewDraftProfile returns the profile stored on an auto-created draft.
func NewDraftProfile() ERPProfile {
	return ERPProfile{
		CurrentSemester:   "1-1",
		CurrentYear:       1,
		PhoneNumber:       PlaceholderPhone,
		AccommodationType: AccommodationDayScholar,
	}
}
