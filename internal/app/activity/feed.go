// Package activity projects achievements and account totals into the
// student activity feed and the admin dashboard summary. Everything is
// recomputed from the inputs on each call.
package activity

import (
	"fmt"
	"sort"
	"time"

	"github.com/yigit/achievement-portal/internal/app/models"
)

const (
	// FeedSourceLimit is how many recently updated achievements feed the student view.
	FeedSourceLimit = 10
	// FeedLimit caps the number of returned feed items.
	FeedLimit = 5
	// PendingWindow hides pending submissions older than this from the feed.
	PendingWindow = 7 * 24 * time.Hour
)

// Feed item kinds
const (
	KindApproved      = "achievement_approved"
	KindRejected      = "achievement_rejected"
	KindSubmitted     = "achievement_submitted"
	KindPointsUpdated = "points_updated"
)

// Item is one entry of a student's activity feed.
type Item struct {
	Type         string    `json:"type"`
	Text         string    `json:"text"`
	Points       *int      `json:"points,omitempty"`
	Time         time.Time `json:"time"`
	Icon         string    `json:"icon"`
	Color        string    `json:"color"`
	RelativeTime string    `json:"relativeTime"`
}

// StudentFeed builds the feed from the owner's most recently updated
// achievements and current total, newest first, capped at FeedLimit.
func StudentFeed(achievements []models.Achievement, totalPoints int, now time.Time) []Item {
	items := make([]Item, 0, len(achievements)+1)

	for _, a := range achievements {
		switch a.Status {
		case models.AchievementApproved:
			pts := a.Points
			items = append(items, Item{
				Type:   KindApproved,
				Text:   fmt.Sprintf("Achievement %q was approved", a.Title),
				Points: &pts,
				Time:   a.UpdatedAt,
				Icon:   "CheckCircle",
				Color:  "green",
			})
		case models.AchievementRejected:
			items = append(items, Item{
				Type:  KindRejected,
				Text:  fmt.Sprintf("Achievement %q was rejected", a.Title),
				Time:  a.UpdatedAt,
				Icon:  "XCircle",
				Color: "red",
			})
		case models.AchievementPending:
			if now.Sub(a.CreatedAt) <= PendingWindow {
				items = append(items, Item{
					Type:  KindSubmitted,
					Text:  fmt.Sprintf("Achievement %q submitted for review", a.Title),
					Time:  a.CreatedAt,
					Icon:  "Clock",
					Color: "orange",
				})
			}
		}
	}

	if totalPoints > 0 {
		items = append(items, Item{
			Type:  KindPointsUpdated,
			Text:  fmt.Sprintf("You now have %d points", totalPoints),
			Time:  now,
			Icon:  "TrendingUp",
			Color: "blue",
		})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Time.After(items[j].Time) })
	if len(items) > FeedLimit {
		items = items[:FeedLimit]
	}
	for i := range items {
		items[i].RelativeTime = RelativeTime(items[i].Time, now)
	}
	return items
}

// RelativeTime renders t relative to now: "Just now", minutes, hours, days,
// and a calendar date from one week on.
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	mins := int(diff / time.Minute)
	hours := int(diff / time.Hour)
	days := int(diff / (24 * time.Hour))

	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return plural(mins, "minute") + " ago"
	case hours < 24:
		return plural(hours, "hour") + " ago"
	case days < 7:
		return plural(days, "day") + " ago"
	default:
		return t.Format("1/2/2006")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
