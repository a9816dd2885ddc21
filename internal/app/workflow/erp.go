package workflow

import (
	"fmt"
	"math"
	"regexp"

	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/pkg/apperrors"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// ValidPhone reports whether p is a ten digit number other than the draft placeholder.
func ValidPhone(p string) bool {
	return phonePattern.MatchString(p) && p != models.PlaceholderPhone
}

// CheckUpdateERP blocks student edits once a record has been verified.
func CheckUpdateERP(status models.ERPStatus) error {
	if status == models.ERPVerified {
		return apperrors.ErrERPLocked
	}
	return nil
}

// CheckSubmitERP validates that a record is complete enough to be reviewed.
func CheckSubmitERP(rec *models.ERPRecord) error {
	if rec.Status == models.ERPVerified {
		return apperrors.ErrERPLocked
	}
	if !ValidPhone(rec.Profile.PhoneNumber) {
		return fmt.Errorf("%w: please provide a valid phone number", apperrors.ErrERPIncomplete)
	}
	if len(rec.Profile.Semesters) == 0 {
		return fmt.Errorf("%w: please add at least one semester's academic details", apperrors.ErrERPIncomplete)
	}
	return nil
}

// CheckVerifyERP allows verification only of a submitted record.
func CheckVerifyERP(status models.ERPStatus) error {
	switch status {
	case models.ERPVerified:
		return apperrors.ErrAlreadyVerified
	case models.ERPSubmitted:
		return nil
	default:
		return apperrors.ErrERPNotSubmitted
	}
}

// VerifyERP checks the transition and returns the ledger delta between the
// points still credited from an earlier verification and the new award.
func VerifyERP(rec *models.ERPRecord, points int) (int, error) {
	if err := CheckVerifyERP(rec.Status); err != nil {
		return 0, err
	}
	if points < 0 {
		return 0, apperrors.ErrNegativeCredit
	}
	return points - rec.ERPPoints, nil
}

// RejectERP returns the signed ledger delta implied by rejecting a record.
// Any points still credited from an earlier verification are reversed only
// under the reversing policy.
func RejectERP(status models.ERPStatus, erpPoints int, policy RejectPolicy) int {
	if policy.ReversePoints && erpPoints > 0 {
		return -erpPoints
	}
	return 0
}

// CheckSetERPPoints allows point corrections only on verified records and
// returns the ledger delta between the old and new award.
func CheckSetERPPoints(rec *models.ERPRecord, newPoints int) (int, error) {
	if newPoints < 0 {
		return 0, fmt.Errorf("%w: points must not be negative", apperrors.ErrValidationFailed)
	}
	if rec.Status != models.ERPVerified {
		return 0, apperrors.ErrERPNotVerified
	}
	return newPoints - rec.ERPPoints, nil
}

// OverallCGPA is the mean semester GPA rounded to two decimals, nil without semesters.
func OverallCGPA(semesters []models.Semester) *float64 {
	if len(semesters) == 0 {
		return nil
	}
	var sum float64
	for _, s := range semesters {
		sum += s.SGPA
	}
	cgpa := math.Round(sum/float64(len(semesters))*100) / 100
	return &cgpa
}
