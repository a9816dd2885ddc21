package models

import (
	"time"
)

// AnnouncementType classifies announcements.
type AnnouncementType string

const (
	AnnouncementAcademic AnnouncementType = "academic"
	AnnouncementCareer   AnnouncementType = "career_opportunity"
)

// Valid reports whether t is a known type.
func (t AnnouncementType) Valid() bool {
	return t == AnnouncementAcademic || t == AnnouncementCareer
}

// Announcement is an admin broadcast to students.
type Announcement struct {
	ID          int64            `json:"id" db:"id"`
	Title       string           `json:"title" db:"title"`
	Description string           `json:"description" db:"description"`
	Type        AnnouncementType `json:"type" db:"type"`

	Company             string     `json:"company,omitempty" db:"company"`
	Location            string     `json:"location,omitempty" db:"location"`
	Deadline            *time.Time `json:"deadline,omitempty" db:"deadline"`
	EligibilityCriteria string     `json:"eligibilityCriteria,omitempty" db:"eligibility_criteria"`
	ApplyLink           string     `json:"applyLink,omitempty" db:"apply_link"`
	Package             string     `json:"package,omitempty" db:"package"`

	EventDate *time.Time `json:"eventDate,omitempty" db:"event_date"`
	Venue     string     `json:"venue,omitempty" db:"venue"`

	Attachments []string `json:"attachments" db:"attachments"`
	IsActive    bool     `json:"isActive" db:"is_active"`
	IsPinned    bool     `json:"isPinned" db:"is_pinned"`
	PostedBy    int64    `json:"postedBy" db:"posted_by"`
	// PostedByName is joined from the admin table.
	PostedByName string `json:"postedByName,omitempty" db:"-"`
	ViewCount    int    `json:"viewCount" db:"view_count"`
	// TargetYear is 1..4, or nil for every year.
	TargetYear *int      `json:"targetYear" db:"target_year"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// AnnouncementFilter narrows announcement listings.
type AnnouncementFilter struct {
	Type     AnnouncementType
	IsActive *bool
	ForYear  int
	Limit    uint64
}

// AnnouncementStats counts announcements by activity and type.
type AnnouncementStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Academic int `json:"academic"`
	Career   int `json:"career"`
}
