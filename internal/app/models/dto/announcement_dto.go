package dto

import (
	"time"

	"github.com/yigit/achievement-portal/internal/app/models"
)

// AnnouncementRequest creates or replaces an announcement
type AnnouncementRequest struct {
	Title       string                  `json:"title" binding:"required,max=255"`
	Description string                  `json:"description" binding:"required"`
	Type        models.AnnouncementType `json:"type" binding:"required,announcetype"`

	Company             string     `json:"company" binding:"max=255"`
	Location            string     `json:"location" binding:"max=255"`
	Deadline            *time.Time `json:"deadline"`
	EligibilityCriteria string     `json:"eligibilityCriteria"`
	ApplyLink           string     `json:"applyLink" binding:"omitempty,url"`
	Package             string     `json:"package" binding:"max=100"`

	EventDate *time.Time `json:"eventDate"`
	Venue     string     `json:"venue" binding:"max=255"`

	Attachments []string `json:"attachments"`
	IsActive    *bool    `json:"isActive"`
	IsPinned    bool     `json:"isPinned"`
	TargetYear  *int     `json:"targetYear" binding:"omitempty,min=1,max=4"`
}

// ToModel builds an announcement from the request. New announcements are active by default.
func (r AnnouncementRequest) ToModel() *models.Announcement {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &models.Announcement{
		Title:               r.Title,
		Description:         r.Description,
		Type:                r.Type,
		Company:             r.Company,
		Location:            r.Location,
		Deadline:            r.Deadline,
		EligibilityCriteria: r.EligibilityCriteria,
		ApplyLink:           r.ApplyLink,
		Package:             r.Package,
		EventDate:           r.EventDate,
		Venue:               r.Venue,
		Attachments:         r.Attachments,
		IsActive:            active,
		IsPinned:            r.IsPinned,
		TargetYear:          r.TargetYear,
	}
}

// ViewCountResponse reports an announcement's view counter
type ViewCountResponse struct {
	ID        int64 `json:"id"`
	ViewCount int   `json:"viewCount"`
}
