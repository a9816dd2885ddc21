//go:build integration

package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/achievement-portal/internal/app/auth"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/app/repositories"
	"github.com/yigit/achievement-portal/internal/app/services"
	"github.com/yigit/achievement-portal/internal/app/workflow"
	"github.com/yigit/achievement-portal/internal/pkg/apperrors"
	jwtauth "github.com/yigit/achievement-portal/internal/pkg/auth"
	"github.com/yigit/achievement-portal/internal/pkg/filestorage"
	"github.com/yigit/achievement-portal/internal/pkg/notify"
	"github.com/yigit/achievement-portal/internal/testutil/testdb"
)

type env struct {
	repos *repositories.Repositories
	svc   *services.Services
	admin auth.Actor
}

func setup(t *testing.T, policy workflow.RejectPolicy) *env {
	t.Helper()
	h, err := testdb.Start(context.Background())
	require.NoError(t, err)
	t.Cleanup(h.Close)

	repos := repositories.NewRepositories(h.DB.Pool)
	storage, err := filestorage.NewLocalStorage(t.TempDir(), "/uploads", 1<<20)
	require.NoError(t, err)
	dispatcher := notify.NewDispatcher(notify.NewLogSender(zerolog.Nop()), time.Second)
	t.Cleanup(dispatcher.Close)

	svc := services.NewServices(
		services.Stores{
			Accounts:      repos.Accounts,
			Admins:        repos.Admins,
			Achievements:  repos.Achievements,
			ERP:           repos.ERP,
			Announcements: repos.Announcements,
		},
		h.DB,
		jwtauth.NewJWTService(jwtauth.JWTConfig{SecretKey: "it", AccessTokenExp: time.Hour, TokenIssuer: "it"}),
		storage,
		dispatcher,
		services.Options{LeaderboardLimit: 100, RejectPolicy: policy},
	)

	admin, _, err := svc.Auth.EnsureAdmin(context.Background(), "root", "integration")
	require.NoError(t, err)
	return &env{repos: repos, svc: svc, admin: auth.Administrator(admin.ID)}
}

func (e *env) student(t *testing.T, n int) *models.Account {
	t.Helper()
	return e.namedStudent(t, n, fmt.Sprintf("Student %d", n), models.YearIII)
}

func (e *env) namedStudent(t *testing.T, n int, name string, year models.Year) *models.Account {
	t.Helper()
	a := &models.Account{
		RollNumber:   fmt.Sprintf("21CS%03d", n),
		Email:        fmt.Sprintf("student%d@example.edu", n),
		PasswordHash: "x",
		Name:         name,
		Department:   models.DeptCSE,
		Section:      "A",
		Year:         year,
	}
	require.NoError(t, e.repos.Accounts.Create(context.Background(), a))
	return a
}

func (e *env) achievement(t *testing.T, accountID int64) *models.Achievement {
	t.Helper()
	a := &models.Achievement{
		AccountID: accountID,
		Title:     "Hackathon",
		Category:  "Competition",
		Date:      time.Now().UTC().Truncate(24 * time.Hour),
		Level:     models.LevelCollege,
	}
	require.NoError(t, e.repos.Achievements.Create(context.Background(), a))
	return a
}

func (e *env) total(t *testing.T, id int64) int {
	t.Helper()
	a, err := e.repos.Accounts.GetByID(context.Background(), id)
	require.NoError(t, err)
	return a.TotalPoints
}

func TestConcurrentApprovalsCreditOnce(t *testing.T) {
	e := setup(t, workflow.RejectPolicy{})
	s := e.student(t, 1)
	ach := e.achievement(t, s.ID)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		conflict int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.svc.Review.Approve(context.Background(), e.admin, ach.ID, 25, "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case apperrors.Is(err, apperrors.ErrAlreadyApproved):
				conflict++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 7, conflict)
	assert.Equal(t, 25, e.total(t, s.ID))
}

func TestParallelCreditsSumExactly(t *testing.T) {
	e := setup(t, workflow.RejectPolicy{})
	s := e.student(t, 1)

	var ids []int64
	for i := 0; i < 20; i++ {
		ids = append(ids, e.achievement(t, s.ID).ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := e.svc.Review.Approve(context.Background(), e.admin, id, 10, "")
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 200, e.total(t, s.ID))
}

func TestDeleteApprovedRestoresTotal(t *testing.T) {
	e := setup(t, workflow.RejectPolicy{})
	s := e.student(t, 1)
	keep := e.achievement(t, s.ID)
	drop := e.achievement(t, s.ID)
	ctx := context.Background()

	_, err := e.svc.Review.Approve(ctx, e.admin, keep.ID, 15, "")
	require.NoError(t, err)
	_, err = e.svc.Review.Approve(ctx, e.admin, drop.ID, 40, "")
	require.NoError(t, err)
	require.Equal(t, 55, e.total(t, s.ID))

	require.NoError(t, e.svc.Achievements.Delete(ctx, auth.Student(s.ID), drop.ID))
	assert.Equal(t, 15, e.total(t, s.ID))

	_, err = e.repos.Achievements.GetByID(ctx, drop.ID)
	assert.ErrorIs(t, err, apperrors.ErrAchievementNotFound)
}

func TestRejectUnderPolicyReversesAndRanks(t *testing.T) {
	e := setup(t, workflow.RejectPolicy{ReversePoints: true})
	a := e.student(t, 1)
	b := e.student(t, 2)
	ctx := context.Background()

	achA := e.achievement(t, a.ID)
	achB := e.achievement(t, b.ID)
	_, err := e.svc.Review.Approve(ctx, e.admin, achA.ID, 30, "")
	require.NoError(t, err)
	_, err = e.svc.Review.Approve(ctx, e.admin, achB.ID, 20, "")
	require.NoError(t, err)

	standing, err := e.svc.Ranking.RankOf(ctx, auth.Student(b.ID), models.AccountFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, standing.Rank)

	_, err = e.svc.Review.Reject(ctx, e.admin, achA.ID, "duplicate")
	require.NoError(t, err)
	assert.Equal(t, 0, e.total(t, a.ID))

	board, err := e.svc.Ranking.Leaderboard(ctx, models.AccountFilter{Year: models.YearIII})
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, b.ID, board[0].AccountID)
}

func TestRanksAndLeaderboardAgreeOnTies(t *testing.T) {
	e := setup(t, workflow.RejectPolicy{})
	ctx := context.Background()

	ann := e.namedStudent(t, 1, "Ann", models.YearIII)
	cara := e.namedStudent(t, 2, "Cara", models.YearIII)
	bob := e.namedStudent(t, 3, "bob", models.YearIII)
	dev := e.namedStudent(t, 4, "Dev", models.YearIII)
	fresher := e.namedStudent(t, 5, "Esha", models.YearI)
	for id, pts := range map[int64]int{ann.ID: 100, cara.ID: 80, bob.ID: 80, dev.ID: 50, fresher.ID: 10} {
		_, err := e.svc.Ledger.ManualAdjust(ctx, e.admin, id, pts, "seed")
		require.NoError(t, err)
	}
	third := models.AccountFilter{Year: models.YearIII}

	board, err := e.svc.Ranking.Leaderboard(ctx, third)
	require.NoError(t, err)
	require.Len(t, board, 4)
	names := make([]string, 0, len(board))
	for i, entry := range board {
		assert.Equal(t, i+1, entry.Position)
		names = append(names, entry.Name)
	}
	assert.Equal(t, []string{"Ann", "bob", "Cara", "Dev"}, names)

	// The cut at the tie keeps the same account the full board puts first.
	top, err := e.svc.Ranking.LeaderboardN(ctx, third, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, bob.ID, top[1].AccountID)

	for _, tc := range []struct {
		id         int64
		rank, pctl int
	}{
		{ann.ID, 1, 100},
		{bob.ID, 2, 75},
		{cara.ID, 2, 75},
		{dev.ID, 4, 25},
	} {
		standing, err := e.svc.Ranking.RankOf(ctx, auth.Student(tc.id), third)
		require.NoError(t, err)
		assert.Equal(t, tc.rank, standing.Rank, "account %d", tc.id)
		assert.Equal(t, tc.pctl, standing.Percentile, "account %d", tc.id)
		assert.Equal(t, 4, standing.TotalUsers)
	}

	standing, err := e.svc.Ranking.RankOf(ctx, auth.Student(fresher.ID), models.AccountFilter{})
	require.NoError(t, err)
	assert.Equal(t, 5, standing.Rank)
	assert.Equal(t, 20, standing.Percentile)

	_, err = e.svc.Ranking.RankOf(ctx, auth.Student(fresher.ID), third)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
