package dto

import (
	"mime/multipart"

	"github.com/yigit/achievement-portal/internal/app/models"
)

// MaxProofFiles bounds the proof uploads attached to one submission
const MaxProofFiles = 5

// SubmitAchievementRequest is the multipart form for a new achievement
type SubmitAchievementRequest struct {
	Title       string `form:"title" binding:"required,max=255"`
	Description string `form:"description" binding:"required"`
	Category    string `form:"category" binding:"required,max=100"`
	Date        string `form:"date" binding:"required"`
	Level       string `form:"level" binding:"required,achlevel"`
	LeetCode    string `form:"leetcode" binding:"omitempty,url"`
	LinkedIn    string `form:"linkedin" binding:"omitempty,url"`
	CodeChef    string `form:"codechef" binding:"omitempty,url"`

	ProofFiles []*multipart.FileHeader `form:"proofFiles"`
}

// ReviewDecision is the admin action on a pending item
type ReviewDecision string

const (
	DecisionApprove ReviewDecision = "approve"
	DecisionReject  ReviewDecision = "reject"
	DecisionVerify  ReviewDecision = "verify"
)

// VerifyAchievementRequest approves or rejects an achievement
type VerifyAchievementRequest struct {
	Action    ReviewDecision `json:"action" binding:"required,oneof=approve reject"`
	Points    int            `json:"points" binding:"min=0"`
	AdminNote string         `json:"adminNote" binding:"max=1000"`
}

// AdjustPointsRequest applies a manual signed correction to a student's total
type AdjustPointsRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"max=500"`
}

// PointsResponse reports a student's total after a ledger mutation
type PointsResponse struct {
	StudentID   int64 `json:"studentId"`
	TotalPoints int   `json:"totalPoints"`
}

// AchievementListResponse is a listing with per-status counts
type AchievementListResponse struct {
	Achievements []models.Achievement `json:"achievements"`
	Count        int                  `json:"count"`
	Pagination   *PaginationInfo      `json:"pagination,omitempty"`
}
