package models

import (
	"time"
)

// AchievementStatus is the review state of an achievement.
type AchievementStatus string

const (
	AchievementPending  AchievementStatus = "pending"
	AchievementApproved AchievementStatus = "approved"
	AchievementRejected AchievementStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s AchievementStatus) Valid() bool {
	switch s {
	case AchievementPending, AchievementApproved, AchievementRejected:
		return true
	}
	return false
}

// Level is the scope of an achievement, ordered College < State < National < International.
type Level string

const (
	LevelCollege       Level = "College"
	LevelState         Level = "State"
	LevelNational      Level = "National"
	LevelInternational Level = "International"
)

// Rank returns the ordinal of l, 0 for an unknown level.
func (l Level) Rank() int {
	switch l {
	case LevelCollege:
		return 1
	case LevelState:
		return 2
	case LevelNational:
		return 3
	case LevelInternational:
		return 4
	}
	return 0
}

// Valid reports whether l is a known level.
func (l Level) Valid() bool { return l.Rank() != 0 }

// AchievementLinks are optional external profile references.
type AchievementLinks struct {
	LeetCode string `json:"leetcode"`
	LinkedIn string `json:"linkedin"`
	CodeChef string `json:"codechef"`
}

// Achievement is a student-submitted record awaiting or past review.
// Points contribute to the owner's total exactly when Status is approved.
type Achievement struct {
	ID          int64             `json:"id" db:"id"`
	AccountID   int64             `json:"studentId" db:"account_id"`
	Title       string            `json:"title" db:"title"`
	Description string            `json:"description" db:"description"`
	Category    string            `json:"category" db:"category"`
	Date        time.Time         `json:"date" db:"achieved_on"`
	Level       Level             `json:"level" db:"level"`
	ProofFiles  []string          `json:"proofFiles" db:"proof_files"`
	Links       AchievementLinks  `json:"links" db:"links"`
	Status      AchievementStatus `json:"status" db:"status"`
	Points      int               `json:"points" db:"points"`
	Highlighted bool              `json:"highlighted" db:"highlighted"`
	AdminNote   string            `json:"adminNote" db:"admin_note"`
	ReviewedBy  *int64            `json:"reviewedBy,omitempty" db:"reviewed_by"`
	ReviewedAt  *time.Time        `json:"reviewedAt,omitempty" db:"reviewed_at"`
	CreatedAt   time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time         `json:"updatedAt" db:"updated_at"`

	// Owner is populated by listings that join the account.
	Owner *AccountSummary `json:"student,omitempty" db:"-"`
}

// AccountSummary is the subset of an account embedded in other listings.
type AccountSummary struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	RollNumber  string     `json:"rollNumber"`
	Email       string     `json:"email,omitempty"`
	Department  Department `json:"department"`
	Section     string     `json:"section"`
	Year        Year       `json:"year"`
	TotalPoints int        `json:"totalPoints"`
}

// AchievementFilter narrows admin achievement listings.
type AchievementFilter struct {
	Status    AchievementStatus
	Category  string
	AccountID int64
}

// AchievementCounts tallies achievements per status.
type AchievementCounts struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}
