// Package workflow holds the review state machine rules for achievements and
// ERP records. Functions here are pure: they inspect the current state and
// decide whether a transition is allowed and which point movements it implies.
// Persisting the result, together with the ledger update, is the caller's job
// and must happen inside one transaction.
package workflow

import (
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/pkg/apperrors"
)

// RejectPolicy decides what happens to already credited points when a
// previously approved item is rejected.
type RejectPolicy struct {
	ReversePoints bool
}

// CheckApproveAchievement rejects re-approval. Any other status may move to approved.
func CheckApproveAchievement(status models.AchievementStatus) error {
	if status == models.AchievementApproved {
		return apperrors.ErrAlreadyApproved
	}
	return nil
}

// Credited is the amount an achievement currently contributes to its
// owner's total. Pending items carry none. A rejected item keeps its points
// only when the approval it came from was not reversed.
func Credited(status models.AchievementStatus, points int) int {
	if status == models.AchievementPending || points < 0 {
		return 0
	}
	return points
}

// ApproveAchievement checks the transition and returns the ledger delta that
// brings the owner's total from the currently credited amount to points.
func ApproveAchievement(status models.AchievementStatus, current, points int) (int, error) {
	if err := CheckApproveAchievement(status); err != nil {
		return 0, err
	}
	if points < 0 {
		return 0, apperrors.ErrNegativeCredit
	}
	return points - Credited(status, current), nil
}

// RejectAchievement returns the signed ledger delta implied by rejecting an
// achievement currently in status with the given points. Rejection is allowed
// from every status.
func RejectAchievement(status models.AchievementStatus, points int, policy RejectPolicy) int {
	if !policy.ReversePoints {
		return 0
	}
	return -Credited(status, points)
}

// DeleteAchievement returns the signed ledger delta that must accompany removal.
func DeleteAchievement(status models.AchievementStatus, points int) int {
	return -Credited(status, points)
}

// CanDelete reports whether actorID may remove an achievement owned by ownerID.
func CanDelete(ownerID, actorID int64, isAdmin bool) error {
	if isAdmin || ownerID == actorID {
		return nil
	}
	return apperrors.ErrNotOwner
}
