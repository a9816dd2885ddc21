package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yigit/achievement-portal/internal/app/auth"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/app/models/dto"
	"github.com/yigit/achievement-portal/internal/app/repositories"
	"github.com/yigit/achievement-portal/internal/app/workflow"
	"github.com/yigit/achievement-portal/internal/db"
	"github.com/yigit/achievement-portal/internal/pkg/apperrors"
	"github.com/yigit/achievement-portal/internal/pkg/filestorage"
	"github.com/yigit/achievement-portal/internal/pkg/logger"
)

// AchievementService handles student submissions and achievement reads
type AchievementService interface {
	Submit(ctx context.Context, actor auth.Actor, req *dto.SubmitAchievementRequest) (*models.Achievement, error)
	ListMine(ctx context.Context, actor auth.Actor) ([]models.Achievement, error)
	Get(ctx context.Context, actor auth.Actor, id int64) (*models.Achievement, error)
	List(ctx context.Context, actor auth.Actor, filter models.AchievementFilter, page models.PageRequest) ([]models.Achievement, dto.PaginationInfo, error)
	// Delete removes an achievement, reversing its points when it was approved.
	Delete(ctx context.Context, actor auth.Actor, id int64) error
}

type achievementServiceImpl struct {
	achievements repositories.AchievementStore
	ledger       LedgerService
	tx           db.Transactor
	storage      filestorage.FileStorage
}

// NewAchievementService creates a new AchievementService
func NewAchievementService(
	achievements repositories.AchievementStore,
	ledger LedgerService,
	tx db.Transactor,
	storage filestorage.FileStorage,
) AchievementService {
	return &achievementServiceImpl{
		achievements: achievements,
		ledger:       ledger,
		tx:           tx,
		storage:      storage,
	}
}

const achievementDateLayout = "2006-01-02"

func (s *achievementServiceImpl) Submit(ctx context.Context, actor auth.Actor, req *dto.SubmitAchievementRequest) (*models.Achievement, error) {
	if err := actor.RequireStudent(); err != nil {
		return nil, err
	}

	date, err := time.Parse(achievementDateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		return nil, apperrors.NewValidationError("date must be formatted as YYYY-MM-DD",
			map[string]interface{}{"date": req.Date})
	}
	if len(req.ProofFiles) > dto.MaxProofFiles {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("at most %d proof files may be attached", dto.MaxProofFiles),
			map[string]interface{}{"proofFiles": len(req.ProofFiles)})
	}

	refs := make([]string, 0, len(req.ProofFiles))
	cleanup := func() {
		for _, ref := range refs {
			_ = s.storage.Delete(ref)
		}
	}
	for _, fh := range req.ProofFiles {
		ref, err := s.storage.Save(fh, filestorage.DirProofs)
		if err != nil {
			cleanup()
			return nil, err
		}
		refs = append(refs, ref)
	}

	a := &models.Achievement{
		AccountID:   actor.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Date:        date,
		Level:       models.Level(req.Level),
		ProofFiles:  refs,
		Links: models.AchievementLinks{
			LeetCode: req.LeetCode,
			LinkedIn: req.LinkedIn,
			CodeChef: req.CodeChef,
		},
		Status: models.AchievementPending,
	}
	if err := s.achievements.Create(ctx, a); err != nil {
		cleanup()
		return nil, err
	}

	logger.Info().Int64("achievementID", a.ID).Int64("accountID", actor.ID).Msg("Achievement submitted")
	return a, nil
}

func (s *achievementServiceImpl) ListMine(ctx context.Context, actor auth.Actor) ([]models.Achievement, error) {
	if err := actor.RequireStudent(); err != nil {
		return nil, err
	}
	return s.achievements.ListByAccount(ctx, actor.ID)
}

func (s *achievementServiceImpl) Get(ctx context.Context, actor auth.Actor, id int64) (*models.Achievement, error) {
	a, err := s.achievements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanView(a.AccountID) {
		return nil, apperrors.ErrNotOwner
	}
	return a, nil
}

func (s *achievementServiceImpl) List(ctx context.Context, actor auth.Actor, filter models.AchievementFilter, page models.PageRequest) ([]models.Achievement, dto.PaginationInfo, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, dto.PaginationInfo{}, apperrors.NewValidationError("unknown achievement status",
			map[string]interface{}{"status": filter.Status})
	}
	return s.achievements.List(ctx, filter, page)
}

func (s *achievementServiceImpl) Delete(ctx context.Context, actor auth.Actor, id int64) error {
	var removed *models.Achievement
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		a, err := s.achievements.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := workflow.CanDelete(a.AccountID, actor.ID, actor.IsAdmin()); err != nil {
			return err
		}
		if delta := workflow.DeleteAchievement(a.Status, a.Points); delta != 0 {
			if _, err := s.ledger.Adjust(ctx, tx, a.AccountID, delta); err != nil {
				return err
			}
		}
		if err := s.achievements.Delete(ctx, tx, a.ID); err != nil {
			return err
		}
		removed = a
		return nil
	})
	if err != nil {
		return err
	}

	for _, ref := range removed.ProofFiles {
		if err := s.storage.Delete(ref); err != nil {
			logger.Warn().Err(err).Str("ref", ref).Msg("Failed to remove proof file")
		}
	}
	logger.Info().
		Int64("achievementID", id).
		Int64("actorID", actor.ID).
		Str("status", string(removed.Status)).
		Int("reversedPoints", workflow.DeleteAchievement(removed.Status, removed.Points)).
		Msg("Achievement deleted")
	return nil
}
