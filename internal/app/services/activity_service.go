package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yigit/achievement-portal/internal/app/activity"
	"github.com/yigit/achievement-portal/internal/app/auth"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/app/models/dto"
	"github.com/yigit/achievement-portal/internal/app/ranking"
	"github.com/yigit/achievement-portal/internal/app/repositories"
)

// AnalyticsTopN is the number of accounts listed in admin analytics.
const AnalyticsTopN = 10

// Analytics is the admin analytics payload
type Analytics struct {
	TopStudents  []ranking.Entry          `json:"topStudents"`
	Achievements models.AchievementCounts `json:"achievements"`
}

// StudentDetail is an account with its achievements, for admin drill-down
type StudentDetail struct {
	Student      *models.Account      `json:"student"`
	Achievements []models.Achievement `json:"achievements"`
}

// ActivityService derives feeds and statistics from current store state
type ActivityService interface {
	Feed(ctx context.Context, actor auth.Actor) ([]activity.Item, error)
	Dashboard(ctx context.Context, actor auth.Actor) (*activity.Dashboard, error)
	Analytics(ctx context.Context, actor auth.Actor) (*Analytics, error)
	Students(ctx context.Context, actor auth.Actor, filter models.AccountFilter, page models.PageRequest) ([]models.Account, dto.PaginationInfo, error)
	Student(ctx context.Context, actor auth.Actor, id int64) (*StudentDetail, error)
}

type activityServiceImpl struct {
	accounts      repositories.AccountStore
	achievements  repositories.AchievementStore
	erp           repositories.ERPStore
	announcements repositories.AnnouncementStore
	now           func() time.Time
}

// NewActivityService creates a new ActivityService
func NewActivityService(
	accounts repositories.AccountStore,
	achievements repositories.AchievementStore,
	erp repositories.ERPStore,
	announcements repositories.AnnouncementStore,
	now func() time.Time,
) ActivityService {
	if now == nil {
		now = time.Now
	}
	return &activityServiceImpl{
		accounts:      accounts,
		achievements:  achievements,
		erp:           erp,
		announcements: announcements,
		now:           now,
	}
}

func (s *activityServiceImpl) Feed(ctx context.Context, actor auth.Actor) ([]activity.Item, error) {
	if err := actor.RequireStudent(); err != nil {
		return nil, err
	}
	account, err := s.accounts.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	recent, err := s.achievements.RecentlyUpdated(ctx, actor.ID, activity.FeedSourceLimit)
	if err != nil {
		return nil, err
	}
	return activity.StudentFeed(recent, account.TotalPoints, s.now()), nil
}

func (s *activityServiceImpl) Dashboard(ctx context.Context, actor auth.Actor) (*activity.Dashboard, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var c activity.Counts
	var err error
	if c.TotalStudents, c.TotalPoints, err = s.accounts.Totals(ctx); err != nil {
		return nil, err
	}

	counts, err := s.achievements.Counts(ctx)
	if err != nil {
		return nil, err
	}
	c.TotalAchievements = counts.Total
	c.PendingApprovals = counts.Pending
	c.ApprovedAchievement = counts.Approved

	now := s.now()
	thisMonth, lastMonth := activity.MonthBounds(now)
	if c.NewThisMonth, err = s.accounts.CountCreatedBetween(ctx, thisMonth, now.Add(time.Nanosecond)); err != nil {
		return nil, err
	}
	if c.NewLastMonth, err = s.accounts.CountCreatedBetween(ctx, lastMonth, thisMonth); err != nil {
		return nil, err
	}

	if c.PendingERPs, err = s.erp.CountByStatus(ctx, models.ERPSubmitted); err != nil {
		return nil, err
	}
	stats, err := s.announcements.Stats(ctx)
	if err != nil {
		return nil, err
	}
	c.ActiveAnnouncements = stats.Active

	recent, err := s.achievements.RecentSubmissions(ctx, activity.RecentSubmissionLimit)
	if err != nil {
		return nil, fmt.Errorf("error loading recent submissions: %w", err)
	}

	d := activity.BuildDashboard(c, recent, now)
	return &d, nil
}

func (s *activityServiceImpl) Analytics(ctx context.Context, actor auth.Actor) (*Analytics, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	top, err := s.accounts.Leaderboard(ctx, models.AccountFilter{}, AnalyticsTopN)
	if err != nil {
		return nil, err
	}
	counts, err := s.achievements.Counts(ctx)
	if err != nil {
		return nil, err
	}
	return &Analytics{
		TopStudents:  ranking.Build(top, AnalyticsTopN),
		Achievements: counts,
	}, nil
}

func (s *activityServiceImpl) Students(ctx context.Context, actor auth.Actor, filter models.AccountFilter, page models.PageRequest) ([]models.Account, dto.PaginationInfo, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	if err := validateAccountFilter(filter); err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	return s.accounts.List(ctx, filter, page)
}

func (s *activityServiceImpl) Student(ctx context.Context, actor auth.Actor, id int64) (*StudentDetail, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	achievements, err := s.achievements.ListByAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	return &StudentDetail{Student: account, Achievements: achievements}, nil
}
