package services

import (
	"context"
	"fmt"

	"github.com/yigit/achievement-portal/internal/app/auth"
	"github.com/yigit/achievement-portal/internal/app/repositories"
	"github.com/yigit/achievement-portal/internal/db"
	"github.com/yigit/achievement-portal/internal/pkg/apperrors"
	"github.com/yigit/achievement-portal/internal/pkg/logger"
	"github.com/yigit/achievement-portal/internal/pkg/metrics"
)

// LedgerService is the only writer of an account's point total.
// Callers pass the transaction the mutation must join, or nil to run it
// as a standalone atomic statement.
type LedgerService interface {
	// Credit adds a non-negative amount.
	Credit(ctx context.Context, q db.DBTX, accountID int64, amount int) (int, error)
	// Adjust adds a signed delta and clamps the total at zero.
	Adjust(ctx context.Context, q db.DBTX, accountID int64, delta int) (int, error)
	// ManualAdjust is an administrator's correction.
	ManualAdjust(ctx context.Context, actor auth.Actor, accountID int64, delta int, reason string) (int, error)
}

type ledgerServiceImpl struct {
	accounts repositories.AccountStore
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(accounts repositories.AccountStore) LedgerService {
	return &ledgerServiceImpl{accounts: accounts}
}

func (s *ledgerServiceImpl) Credit(ctx context.Context, q db.DBTX, accountID int64, amount int) (int, error) {
	if amount < 0 {
		return 0, apperrors.ErrNegativeCredit
	}
	total, err := s.accounts.Credit(ctx, q, accountID, amount)
	if err != nil {
		return 0, err
	}
	metrics.Ledger("credit")
	return total, nil
}

func (s *ledgerServiceImpl) Adjust(ctx context.Context, q db.DBTX, accountID int64, delta int) (int, error) {
	total, err := s.accounts.Adjust(ctx, q, accountID, delta)
	if err != nil {
		return 0, err
	}
	metrics.Ledger("adjust")
	return total, nil
}

func (s *ledgerServiceImpl) ManualAdjust(ctx context.Context, actor auth.Actor, accountID int64, delta int, reason string) (int, error) {
	if err := actor.RequireAdmin(); err != nil {
		return 0, err
	}
	if delta == 0 {
		return 0, apperrors.NewValidationError("delta must not be zero", map[string]interface{}{"delta": delta})
	}

	total, err := s.Adjust(ctx, nil, accountID, delta)
	if err != nil {
		return 0, fmt.Errorf("manual adjustment failed: %w", err)
	}

	logger.Info().
		Int64("adminID", actor.ID).
		Int64("accountID", accountID).
		Int("delta", delta).
		Int("totalPoints", total).
		Str("reason", reason).
		Msg("Manual points adjustment applied")
	return total, nil
}
