package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/achievement-portal/internal/app/activity"
	"github.com/yigit/achievement-portal/internal/app/auth"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/pkg/apperrors"
)

func TestLeaderboardOrdersAndRanksTies(t *testing.T) {
	m := newMemDB()
	m.addAccount("Bala", models.YearIII, models.DeptCSE, 90)
	asha := m.addAccount("Asha", models.YearIII, models.DeptCSE, 90)
	chitra := m.addAccount("Chitra", models.YearIII, models.DeptECE, 40)
	m.addAccount("Dev", models.YearI, models.DeptCSE, 120)

	svc := NewRankingService(m.stores().Accounts, 10)
	ctx := context.Background()

	board, err := svc.Leaderboard(ctx, models.AccountFilter{Year: models.YearIII})
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, "Asha", board[0].Name)
	assert.Equal(t, "Bala", board[1].Name)
	assert.Equal(t, []int{1, 2, 3}, []int{board[0].Position, board[1].Position, board[2].Position})

	standing, err := svc.RankOf(ctx, auth.Student(asha.ID), models.AccountFilter{Year: models.YearIII})
	require.NoError(t, err)
	assert.Equal(t, 1, standing.Rank)
	assert.Equal(t, 3, standing.TotalUsers)
	assert.Equal(t, 100, standing.Percentile)

	standing, err = svc.RankOf(ctx, auth.Student(chitra.ID), models.AccountFilter{})
	require.NoError(t, err)
	assert.Equal(t, 4, standing.Rank)
	assert.Equal(t, 25, standing.Percentile)

	_, err = svc.RankOf(ctx, auth.Student(chitra.ID), models.AccountFilter{Department: models.DeptCSE})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.Leaderboard(ctx, models.AccountFilter{Year: "V"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestLeaderboardRespectsLimit(t *testing.T) {
	m := newMemDB()
	for _, name := range []string{"A", "B", "C", "D"} {
		m.addAccount(name, models.YearII, models.DeptIT, 10)
	}
	svc := NewRankingService(m.stores().Accounts, 2)

	board, err := svc.Leaderboard(context.Background(), models.AccountFilter{})
	require.NoError(t, err)
	assert.Len(t, board, 2)

	board, err = svc.LeaderboardN(context.Background(), models.AccountFilter{}, 3)
	require.NoError(t, err)
	assert.Len(t, board, 3)
}

func newActivity(m *memDB) ActivityService {
	s := m.stores()
	return NewActivityService(s.Accounts, s.Achievements, s.ERP, s.Announcements, func() time.Time { return m.now })
}

func TestStudentFeedShowsRecentDecisions(t *testing.T) {
	m := newMemDB()
	student := m.addAccount("Asha", models.YearIII, models.DeptCSE, 35)
	m.addAchievement(student.ID, models.AchievementApproved, 35)
	m.addAchievement(student.ID, models.AchievementPending, 0)

	feed, err := newActivity(m).Feed(context.Background(), auth.Student(student.ID))
	require.NoError(t, err)
	require.NotEmpty(t, feed)

	kinds := map[string]bool{}
	for _, item := range feed {
		kinds[item.Type] = true
	}
	assert.True(t, kinds[activity.KindApproved])
	assert.True(t, kinds[activity.KindSubmitted])
}

func TestDashboardCounts(t *testing.T) {
	m := newMemDB()
	a := m.addAccount("Asha", models.YearIII, models.DeptCSE, 50)
	b := m.addAccount("Bala", models.YearI, models.DeptECE, 10)
	m.addAchievement(a.ID, models.AchievementApproved, 50)
	m.addAchievement(b.ID, models.AchievementPending, 0)
	m.addERP(b.ID, models.ERPSubmitted, 0)

	svc := newActivity(m)
	_, err := svc.Dashboard(context.Background(), auth.Student(a.ID))
	assert.ErrorIs(t, err, apperrors.ErrAdminOnly)

	d, err := svc.Dashboard(context.Background(), auth.Administrator(1))
	require.NoError(t, err)
	assert.Equal(t, 2, d.Stats.TotalStudents)
	assert.Equal(t, 2, d.Stats.TotalAchievements)
	assert.Equal(t, 1, d.Stats.PendingApprovals)
	assert.Equal(t, int64(60), d.Stats.TotalPoints)
	assert.Equal(t, 50.0, d.Stats.ApprovalRate)
	assert.Equal(t, 1, d.Stats.PendingERPs)
	assert.Len(t, d.RecentActivities, 2)
}

func TestAnalyticsAndStudentDetail(t *testing.T) {
	m := newMemDB()
	a := m.addAccount("Asha", models.YearIII, models.DeptCSE, 50)
	m.addAccount("Bala", models.YearI, models.DeptECE, 70)
	m.addAchievement(a.ID, models.AchievementApproved, 50)

	svc := newActivity(m)
	admin := auth.Administrator(1)

	analytics, err := svc.Analytics(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, analytics.TopStudents, 2)
	assert.Equal(t, "Bala", analytics.TopStudents[0].Name)
	assert.Equal(t, 1, analytics.Achievements.Approved)

	detail, err := svc.Student(context.Background(), admin, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", detail.Student.Name)
	assert.Len(t, detail.Achievements, 1)

	list, page, err := svc.Students(context.Background(), admin, models.AccountFilter{Department: models.DeptECE}, models.PageRequest{Page: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Bala", list[0].Name)
	assert.Equal(t, int64(1), page.TotalItems)
	assert.Equal(t, 1, page.TotalPages)
}
