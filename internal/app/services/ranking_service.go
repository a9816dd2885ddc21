package services

import (
	"context"

	"github.com/yigit/achievement-portal/internal/app/auth"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/app/ranking"
	"github.com/yigit/achievement-portal/internal/app/repositories"
	"github.com/yigit/achievement-portal/internal/pkg/apperrors"
)

// RankingService answers leaderboard and rank queries from current totals
type RankingService interface {
	Leaderboard(ctx context.Context, filter models.AccountFilter) ([]ranking.Entry, error)
	// LeaderboardN is Leaderboard with an explicit size, used by exports.
	LeaderboardN(ctx context.Context, filter models.AccountFilter, limit int) ([]ranking.Entry, error)
	// RankOf places the caller within the filtered population.
	RankOf(ctx context.Context, actor auth.Actor, filter models.AccountFilter) (ranking.Standing, error)
}

type rankingServiceImpl struct {
	accounts repositories.AccountStore
	limit    int
}

// NewRankingService creates a new RankingService
func NewRankingService(accounts repositories.AccountStore, limit int) RankingService {
	if limit <= 0 {
		limit = ranking.DefaultLimit
	}
	return &rankingServiceImpl{accounts: accounts, limit: limit}
}

func validateAccountFilter(filter models.AccountFilter) error {
	if filter.Year != "" && !filter.Year.Valid() {
		return apperrors.NewValidationError("unknown year", map[string]interface{}{"year": filter.Year})
	}
	if filter.Department != "" && !filter.Department.Valid() {
		return apperrors.NewValidationError("unknown department", map[string]interface{}{"department": filter.Department})
	}
	return nil
}

func (s *rankingServiceImpl) Leaderboard(ctx context.Context, filter models.AccountFilter) ([]ranking.Entry, error) {
	return s.LeaderboardN(ctx, filter, s.limit)
}

func (s *rankingServiceImpl) LeaderboardN(ctx context.Context, filter models.AccountFilter, limit int) ([]ranking.Entry, error) {
	if err := validateAccountFilter(filter); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.limit
	}
	entries, err := s.accounts.Leaderboard(ctx, filter, limit)
	if err != nil {
		return nil, err
	}
	return ranking.Build(entries, limit), nil
}

func (s *rankingServiceImpl) RankOf(ctx context.Context, actor auth.Actor, filter models.AccountFilter) (ranking.Standing, error) {
	if err := actor.RequireStudent(); err != nil {
		return ranking.Standing{}, err
	}
	if err := validateAccountFilter(filter); err != nil {
		return ranking.Standing{}, err
	}
	snap, err := s.accounts.Standing(ctx, actor.ID, filter)
	if err != nil {
		return ranking.Standing{}, err
	}
	if !snap.Member {
		return ranking.Standing{}, apperrors.NewValidationError("filter excludes your own year or department", map[string]interface{}{
			"year":       filter.Year,
			"department": filter.Department,
		})
	}
	return ranking.NewStanding(snap.Points, snap.Greater+1, snap.Total), nil
}
