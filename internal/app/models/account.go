package models

import (
	"time"
)

// SocialLinks holds a student's public profile links.
type SocialLinks struct {
	LeetCode  string `json:"leetcode,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	CodeChef  string `json:"codechef,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
}

// Account is a registered student and the owner of the running point total.
type Account struct {
	ID            int64       `json:"id" db:"id"`
	RollNumber    string      `json:"rollNumber" db:"roll_number"`
	Email         string      `json:"email" db:"email"`
	PasswordHash  string      `json:"-" db:"password_hash"`
	Name          string      `json:"name" db:"name"`
	Department    Department  `json:"department" db:"department"`
	Section       string      `json:"section" db:"section"`
	Year          Year        `json:"year" db:"year"`
	ProfilePicURL string      `json:"profilePicUrl" db:"profile_pic_url"`
	ResumeURL     string      `json:"resumeUrl" db:"resume_url"`
	BannerURL     string      `json:"bannerUrl" db:"banner_url"`
	SocialLinks   SocialLinks `json:"socialLinks" db:"social_links"`
	// TotalPoints is only changed by the points ledger and is never negative.
	TotalPoints int       `json:"totalPoints" db:"total_points"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// AccountFilter narrows account listings and ranking populations.
type AccountFilter struct {
	Year       Year
	Department Department
}

// Admin is a reviewer account. Admins never own achievements.
type Admin struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// ProfileUpdate carries the account fields a student may edit. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name        *string      `json:"name"`
	Department  *Department  `json:"department"`
	Section     *string      `json:"section"`
	Year        *Year        `json:"year"`
	SocialLinks *SocialLinks `json:"socialLinks"`
}

// Contact is a notification recipient.
type Contact struct {
	AccountID int64
	Name      string
	Email     string
}
