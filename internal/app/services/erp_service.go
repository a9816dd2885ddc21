package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/yigit/achievement-portal/internal/app/auth"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/app/models/dto"
	"github.com/yigit/achievement-portal/internal/app/repositories"
	"github.com/yigit/achievement-portal/internal/app/workflow"
	"github.com/yigit/achievement-portal/internal/db"
	"github.com/yigit/achievement-portal/internal/pkg/apperrors"
	"github.com/yigit/achievement-portal/internal/pkg/logger"
	"github.com/yigit/achievement-portal/internal/pkg/metrics"
	"github.com/yigit/achievement-portal/internal/pkg/notify"
)

// ERPService manages the student academic profile and its verification
type ERPService interface {
	// GetMine returns the caller's record, creating a draft on first access.
	GetMine(ctx context.Context, actor auth.Actor) (*models.ERPRecord, error)
	UpdateMine(ctx context.Context, actor auth.Actor, patch workflow.ERPPatch) (*models.ERPRecord, error)
	SubmitMine(ctx context.Context, actor auth.Actor) (*models.ERPRecord, error)

	List(ctx context.Context, actor auth.Actor, status models.ERPStatus, page models.PageRequest) ([]models.ERPRecord, dto.PaginationInfo, error)
	GetByStudent(ctx context.Context, actor auth.Actor, accountID int64) (*models.ERPRecord, error)
	Verify(ctx context.Context, actor auth.Actor, id int64, points int, note string) (*ERPDecision, error)
	Reject(ctx context.Context, actor auth.Actor, id int64, note string) (*ERPDecision, error)
	// SetPoints replaces the award of a verified record and moves the owner's total by the difference.
	SetPoints(ctx context.Context, actor auth.Actor, id int64, points int) (*ERPDecision, error)
}

// ERPDecision is a reviewed record together with the owner's resulting total.
type ERPDecision struct {
	ERP           *models.ERPRecord `json:"erp"`
	StudentPoints *int              `json:"studentPoints,omitempty"`
}

type erpServiceImpl struct {
	records   repositories.ERPStore
	accounts  repositories.AccountStore
	ledger    LedgerService
	tx        db.Transactor
	notifier  notify.Notifier
	policy    workflow.RejectPolicy
	portalURL string
}

// NewERPService creates a new ERPService
func NewERPService(
	records repositories.ERPStore,
	accounts repositories.AccountStore,
	ledger LedgerService,
	tx db.Transactor,
	notifier notify.Notifier,
	opts Options,
) ERPService {
	return &erpServiceImpl{
		records:   records,
		accounts:  accounts,
		ledger:    ledger,
		tx:        tx,
		notifier:  notifier,
		policy:    opts.RejectPolicy,
		portalURL: opts.PortalURL,
	}
}

func (s *erpServiceImpl) GetMine(ctx context.Context, actor auth.Actor) (*models.ERPRecord, error) {
	if err := actor.RequireStudent(); err != nil {
		return nil, err
	}
	return s.records.GetOrCreateDraft(ctx, actor.ID, models.NewDraftProfile())
}

func (s *erpServiceImpl) UpdateMine(ctx context.Context, actor auth.Actor, patch workflow.ERPPatch) (*models.ERPRecord, error) {
	if err := actor.RequireStudent(); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.records.GetOrCreateDraft(ctx, actor.ID, models.NewDraftProfile()); err != nil {
		return nil, err
	}

	var updated *models.ERPRecord
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		rec, err := s.records.GetByAccountForUpdate(ctx, tx, actor.ID)
		if err != nil {
			return err
		}
		if err := workflow.CheckUpdateERP(rec.Status); err != nil {
			return err
		}

		profile := patch.Apply(rec.Profile)
		upd := repositories.ERPUpdate{Profile: &profile, CGPA: rec.OverallCGPA}
		if patch.SemestersChanged() {
			upd.CGPA = workflow.OverallCGPA(profile.Semesters)
		}
		updated, err = s.records.Update(ctx, tx, rec.ID, upd)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *erpServiceImpl) SubmitMine(ctx context.Context, actor auth.Actor) (*models.ERPRecord, error) {
	if err := actor.RequireStudent(); err != nil {
		return nil, err
	}

	var updated *models.ERPRecord
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		rec, err := s.records.GetByAccountForUpdate(ctx, tx, actor.ID)
		if err != nil {
			return err
		}
		if err := workflow.CheckSubmitERP(rec); err != nil {
			return err
		}
		status := models.ERPSubmitted
		updated, err = s.records.Update(ctx, tx, rec.ID, repositories.ERPUpdate{
			Status:        &status,
			MarkSubmitted: true,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("erpID", updated.ID).Int64("accountID", actor.ID).Msg("ERP record submitted")
	return updated, nil
}

func (s *erpServiceImpl) List(ctx context.Context, actor auth.Actor, status models.ERPStatus, page models.PageRequest) ([]models.ERPRecord, dto.PaginationInfo, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	if status != "" && !status.Valid() {
		return nil, dto.PaginationInfo{}, apperrors.NewValidationError("unknown ERP status", map[string]interface{}{"status": status})
	}
	return s.records.List(ctx, status, page)
}

func (s *erpServiceImpl) GetByStudent(ctx context.Context, actor auth.Actor, accountID int64) (*models.ERPRecord, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	return s.records.GetByAccount(ctx, accountID)
}

func (s *erpServiceImpl) Verify(ctx context.Context, actor auth.Actor, id int64, points int, note string) (*ERPDecision, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var out ERPDecision
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		rec, err := s.records.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		delta, err := workflow.VerifyERP(rec, points)
		if err != nil {
			return err
		}

		status := models.ERPVerified
		adminID := actor.ID
		out.ERP, err = s.records.Update(ctx, tx, rec.ID, repositories.ERPUpdate{
			Status:       &status,
			ERPPoints:    &points,
			AdminNote:    &note,
			VerifiedBy:   &adminID,
			MarkVerified: true,
		})
		if err != nil {
			return err
		}

		var total int
		if delta >= 0 {
			total, err = s.ledger.Credit(ctx, tx, rec.AccountID, delta)
		} else {
			total, err = s.ledger.Adjust(ctx, tx, rec.AccountID, delta)
		}
		out.StudentPoints = &total
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.Review("erp", "verify")
	logger.Info().Int64("erpID", id).Int64("adminID", actor.ID).Int("points", points).Msg("ERP record verified")
	s.notifyOwner(ctx, out.ERP.AccountID, func(to notify.Recipient) notify.Message {
		return notify.ERPDecision(to, true, points, note, s.portalURL)
	})
	return &out, nil
}

func (s *erpServiceImpl) Reject(ctx context.Context, actor auth.Actor, id int64, note string) (*ERPDecision, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var out ERPDecision
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		rec, err := s.records.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		status := models.ERPRejected
		adminID := actor.ID
		upd := repositories.ERPUpdate{Status: &status, AdminNote: &note, VerifiedBy: &adminID}
		delta := workflow.RejectERP(rec.Status, rec.ERPPoints, s.policy)
		if delta != 0 {
			zero := 0
			upd.ERPPoints = &zero
		}
		out.ERP, err = s.records.Update(ctx, tx, rec.ID, upd)
		if err != nil {
			return err
		}
		if delta != 0 {
			total, err := s.ledger.Adjust(ctx, tx, rec.AccountID, delta)
			if err != nil {
				return err
			}
			out.StudentPoints = &total
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Review("erp", "reject")
	logger.Info().Int64("erpID", id).Int64("adminID", actor.ID).Msg("ERP record rejected")
	s.notifyOwner(ctx, out.ERP.AccountID, func(to notify.Recipient) notify.Message {
		return notify.ERPDecision(to, false, 0, note, s.portalURL)
	})
	return &out, nil
}

func (s *erpServiceImpl) SetPoints(ctx context.Context, actor auth.Actor, id int64, points int) (*ERPDecision, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var out ERPDecision
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		rec, err := s.records.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		delta, err := workflow.CheckSetERPPoints(rec, points)
		if err != nil {
			return err
		}
		out.ERP, err = s.records.Update(ctx, tx, rec.ID, repositories.ERPUpdate{ERPPoints: &points})
		if err != nil {
			return err
		}
		total, err := s.ledger.Adjust(ctx, tx, rec.AccountID, delta)
		if err != nil {
			return err
		}
		out.StudentPoints = &total
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("erpID", id).Int64("adminID", actor.ID).Int("points", points).Msg("ERP points updated")
	return &out, nil
}

func (s *erpServiceImpl) notifyOwner(ctx context.Context, accountID int64, build func(notify.Recipient) notify.Message) {
	if s.notifier == nil {
		return
	}
	owner, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		logger.Warn().Err(err).Int64("accountID", accountID).Msg("Skipping ERP notification, owner lookup failed")
		return
	}
	s.notifier.Dispatch(build(notify.Recipient{Name: owner.Name, Email: owner.Email}))
}
