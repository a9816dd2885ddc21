package activity

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/yigit/achievement-portal/internal/app/models"
)

// RecentSubmissionLimit is the number of submissions listed on the dashboard.
const RecentSubmissionLimit = 10

const (
	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day
	year  = 365 * day
)

var agoMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "just now", DivBy: 1},
	{D: 2 * time.Minute, Format: "1 minute %s", DivBy: 1},
	{D: time.Hour, Format: "%d minutes %s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 hour %s", DivBy: 1},
	{D: day, Format: "%d hours %s", DivBy: time.Hour},
	{D: 2 * day, Format: "1 day %s", DivBy: 1},
	{D: week, Format: "%d days %s", DivBy: day},
	{D: 2 * week, Format: "1 week %s", DivBy: 1},
	{D: month, Format: "%d weeks %s", DivBy: week},
	{D: 2 * month, Format: "1 month %s", DivBy: 1},
	{D: year, Format: "%d months %s", DivBy: month},
	{D: 2 * year, Format: "1 year %s", DivBy: 1},
	{D: math.MaxInt64, Format: "%d years %s", DivBy: year},
}

// TimeAgo renders the coarse "3 weeks ago" strings used on the admin dashboard.
func TimeAgo(t, now time.Time) string {
	return humanize.CustomRelTime(t, now, "ago", "from now", agoMagnitudes)
}

// Counts are the raw figures the dashboard is derived from.
type Counts struct {
	TotalStudents       int
	TotalAchievements   int
	PendingApprovals    int
	ApprovedAchievement int
	TotalPoints         int64
	NewThisMonth        int
	NewLastMonth        int
	PendingERPs         int
	ActiveAnnouncements int
}

// Stats is the dashboard summary block.
type Stats struct {
	TotalStudents       int     `json:"totalStudents"`
	TotalAchievements   int     `json:"totalAchievements"`
	PendingApprovals    int     `json:"pendingApprovals"`
	TotalPoints         int64   `json:"totalPoints"`
	ApprovalRate        float64 `json:"approvalRate"`
	MonthlyGrowth       float64 `json:"monthlyGrowth"`
	PendingERPs         int     `json:"pendingERPs"`
	ActiveAnnouncements int     `json:"activeAnnouncements"`
}

// Event is one line of the dashboard's recent activity list.
type Event struct {
	Text string `json:"text"`
	Time string `json:"time"`
	Type string `json:"type"`
}

// Dashboard is the full admin dashboard payload.
type Dashboard struct {
	Stats            Stats   `json:"stats"`
	RecentActivities []Event `json:"recentActivities"`
}

// BuildDashboard derives rates and activity strings from counts and the most
// recent submissions, which must already carry their owner summary.
func BuildDashboard(c Counts, recent []models.Achievement, now time.Time) Dashboard {
	d := Dashboard{
		Stats: Stats{
			TotalStudents:       c.TotalStudents,
			TotalAchievements:   c.TotalAchievements,
			PendingApprovals:    c.PendingApprovals,
			TotalPoints:         c.TotalPoints,
			ApprovalRate:        ApprovalRate(c.ApprovedAchievement, c.TotalAchievements),
			MonthlyGrowth:       MonthlyGrowth(c.NewThisMonth, c.NewLastMonth),
			PendingERPs:         c.PendingERPs,
			ActiveAnnouncements: c.ActiveAnnouncements,
		},
		RecentActivities: make([]Event, 0, len(recent)),
	}

	if len(recent) > RecentSubmissionLimit {
		recent = recent[:RecentSubmissionLimit]
	}
	for _, a := range recent {
		name := "Unknown"
		if a.Owner != nil && a.Owner.Name != "" {
			name = a.Owner.Name
		}
		d.RecentActivities = append(d.RecentActivities, Event{
			Text: fmt.Sprintf("New achievement submitted by %s", name),
			Time: TimeAgo(a.CreatedAt, now),
			Type: eventType(a.Status),
		})
	}
	return d
}

func eventType(s models.AchievementStatus) string {
	switch s {
	case models.AchievementApproved:
		return "success"
	case models.AchievementRejected:
		return "error"
	default:
		return "achievement"
	}
}

// ApprovalRate is approved/total as a percentage with one decimal, 0 when total is 0.
func ApprovalRate(approved, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(approved) / float64(total) * 100)
}

// MonthlyGrowth is the month-over-month change in new accounts as a
// percentage with one decimal. With no accounts last month it is thisMonth*100.
func MonthlyGrowth(thisMonth, lastMonth int) float64 {
	if lastMonth == 0 {
		return float64(thisMonth * 100)
	}
	return round1(float64(thisMonth-lastMonth) / float64(lastMonth) * 100)
}

// MonthBounds returns the start of now's calendar month and of the month before it.
func MonthBounds(now time.Time) (thisMonth, lastMonth time.Time) {
	thisMonth = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonth = thisMonth.AddDate(0, -1, 0)
	return thisMonth, lastMonth
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
