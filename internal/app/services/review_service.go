package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/yigit/achievement-portal/internal/app/auth"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/app/repositories"
	"github.com/yigit/achievement-portal/internal/app/workflow"
	"github.com/yigit/achievement-portal/internal/db"
	"github.com/yigit/achievement-portal/internal/pkg/logger"
	"github.com/yigit/achievement-portal/internal/pkg/metrics"
	"github.com/yigit/achievement-portal/internal/pkg/notify"
)

// ReviewService applies administrator decisions to achievements
type ReviewService interface {
	// Approve moves an achievement to approved and credits its points, once.
	Approve(ctx context.Context, actor auth.Actor, id int64, points int, note string) (*models.Achievement, error)
	// Reject moves an achievement to rejected from any status.
	Reject(ctx context.Context, actor auth.Actor, id int64, note string) (*models.Achievement, error)
	ToggleHighlight(ctx context.Context, actor auth.Actor, id int64) (*models.Achievement, error)
}

type reviewServiceImpl struct {
	achievements repositories.AchievementStore
	accounts     repositories.AccountStore
	ledger       LedgerService
	tx           db.Transactor
	notifier     notify.Notifier
	policy       workflow.RejectPolicy
	portalURL    string
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	achievements repositories.AchievementStore,
	accounts repositories.AccountStore,
	ledger LedgerService,
	tx db.Transactor,
	notifier notify.Notifier,
	opts Options,
) ReviewService {
	return &reviewServiceImpl{
		achievements: achievements,
		accounts:     accounts,
		ledger:       ledger,
		tx:           tx,
		notifier:     notifier,
		policy:       opts.RejectPolicy,
		portalURL:    opts.PortalURL,
	}
}

func (s *reviewServiceImpl) Approve(ctx context.Context, actor auth.Actor, id int64, points int, note string) (*models.Achievement, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	var updated *models.Achievement
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		a, err := s.achievements.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		delta, err := workflow.ApproveAchievement(a.Status, a.Points, points)
		if err != nil {
			return err
		}
		updated, err = s.achievements.SetReview(ctx, tx, a.ID, repositories.Review{
			Status:     models.AchievementApproved,
			Points:     points,
			AdminNote:  note,
			ReviewerID: actor.ID,
		})
		if err != nil {
			return err
		}
		if delta >= 0 {
			_, err = s.ledger.Credit(ctx, tx, a.AccountID, delta)
		} else {
			_, err = s.ledger.Adjust(ctx, tx, a.AccountID, delta)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.Review("achievement", "approve")
	logger.Info().Int64("achievementID", id).Int64("adminID", actor.ID).Int("points", points).Msg("Achievement approved")
	s.notifyOwner(ctx, updated, func(to notify.Recipient) notify.Message {
		return notify.Approval(to, updated.Title, points, note, s.portalURL)
	})
	return updated, nil
}

func (s *reviewServiceImpl) Reject(ctx context.Context, actor auth.Actor, id int64, note string) (*models.Achievement, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var updated *models.Achievement
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		a, err := s.achievements.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		delta := workflow.RejectAchievement(a.Status, a.Points, s.policy)
		points := a.Points
		if delta != 0 {
			points = 0
		}
		updated, err = s.achievements.SetReview(ctx, tx, a.ID, repositories.Review{
			Status:     models.AchievementRejected,
			Points:     points,
			AdminNote:  note,
			ReviewerID: actor.ID,
		})
		if err != nil {
			return err
		}
		if delta != 0 {
			_, err = s.ledger.Adjust(ctx, tx, a.AccountID, delta)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.Review("achievement", "reject")
	logger.Info().Int64("achievementID", id).Int64("adminID", actor.ID).Msg("Achievement rejected")
	s.notifyOwner(ctx, updated, func(to notify.Recipient) notify.Message {
		return notify.Rejection(to, updated.Title, note, s.portalURL)
	})
	return updated, nil
}

func (s *reviewServiceImpl) ToggleHighlight(ctx context.Context, actor auth.Actor, id int64) (*models.Achievement, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	return s.achievements.ToggleHighlight(ctx, id)
}

// notifyOwner looks up the owner's address after commit and hands the
// message to the notifier. Lookup failures are logged only.
func (s *reviewServiceImpl) notifyOwner(ctx context.Context, a *models.Achievement, build func(notify.Recipient) notify.Message) {
	if s.notifier == nil || a == nil {
		return
	}
	owner, err := s.accounts.GetByID(ctx, a.AccountID)
	if err != nil {
		logger.Warn().Err(err).Int64("accountID", a.AccountID).Msg("Skipping review notification, owner lookup failed")
		return
	}
	s.notifier.Dispatch(build(notify.Recipient{Name: owner.Name, Email: owner.Email}))
}
