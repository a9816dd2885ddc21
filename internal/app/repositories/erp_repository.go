package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/app/models/dto"
	"github.com/yigit/achievement-portal/internal/db"
	"github.com/yigit/achievement-portal/internal/pkg/apperrors"
	"github.com/yigit/achievement-portal/internal/pkg/helpers"
	"github.com/yigit/achievement-portal/internal/pkg/logger"
)

// ERPUpdate lists the columns to write. Nil fields are left unchanged.
// When Profile is set, CGPA is written alongside it, including nil.
type ERPUpdate struct {
	Profile    *models.ERPProfile
	CGPA       *float64
	Status     *models.ERPStatus
	ERPPoints  *int
	AdminNote  *string
	VerifiedBy *int64
	// MarkSubmitted and MarkVerified stamp submitted_at / verified_at with NOW().
	MarkSubmitted bool
	MarkVerified  bool
}

var erpColumnNames = []string{
	"id", "account_id", "profile", "overall_cgpa", "status", "erp_points", "admin_note",
	"submitted_at", "verified_at", "verified_by", "created_at", "updated_at",
}

// ERPRepository handles ERP record database operations
type ERPRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewERPRepository creates a new ERPRepository
func NewERPRepository(pool *pgxpool.Pool) *ERPRepository {
	return &ERPRepository{db: pool, sb: statementBuilder()}
}

func erpDest(e *models.ERPRecord) []interface{} {
	return []interface{}{
		&e.ID, &e.AccountID, &e.Profile, &e.OverallCGPA, &e.Status, &e.ERPPoints, &e.AdminNote,
		&e.SubmittedAt, &e.VerifiedAt, &e.VerifiedBy, &e.CreatedAt, &e.UpdatedAt,
	}
}

func scanERP(row pgx.Row) (*models.ERPRecord, error) {
	e := &models.ERPRecord{}
	if err := row.Scan(erpDest(e)...); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *ERPRepository) getOne(ctx context.Context, q db.DBTX, where squirrel.Sqlizer, lock bool) (*models.ERPRecord, error) {
	b := r.sb.Select(erpColumnNames...).From("erp_records").Where(where)
	if lock {
		b = b.Suffix("FOR UPDATE")
	}
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get ERP query: %w", err)
	}

	e, err := scanERP(pick(q, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrERPNotFound
		}
		logger.Error().Err(err).Msg("Error scanning ERP row")
		return nil, fmt.Errorf("error getting ERP record: %w", err)
	}
	return e, nil
}

// GetOrCreateDraft returns the account's record, inserting profile as a draft when none exists.
func (r *ERPRepository) GetOrCreateDraft(ctx context.Context, accountID int64, profile models.ERPProfile) (*models.ERPRecord, error) {
	sql, args, err := r.sb.Insert("erp_records").
		Columns("account_id", "profile", "status").
		Values(accountID, profile, models.ERPDraft).
		Suffix("ON CONFLICT (account_id) DO NOTHING RETURNING " + strings.Join(erpColumnNames, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build create ERP draft query: %w", err)
	}

	e, err := scanERP(r.db.QueryRow(ctx, sql, args...))
	if err == nil {
		logger.Info().Int64("accountID", accountID).Msg("ERP draft created")
		return e, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		logger.Error().Err(err).Int64("accountID", accountID).Msg("Error creating ERP draft")
		return nil, fmt.Errorf("error creating ERP draft: %w", err)
	}
	return r.GetByAccount(ctx, accountID)
}

// GetByID retrieves an ERP record with its owner summary
func (r *ERPRepository) GetByID(ctx context.Context, id int64) (*models.ERPRecord, error) {
	return r.getWithOwner(ctx, squirrel.Eq{"e.id": id})
}

// GetByAccount retrieves the ERP record of an account with its owner summary
func (r *ERPRepository) GetByAccount(ctx context.Context, accountID int64) (*models.ERPRecord, error) {
	return r.getWithOwner(ctx, squirrel.Eq{"e.account_id": accountID})
}

// GetForUpdate reads and locks a record by ID inside q's transaction
func (r *ERPRepository) GetForUpdate(ctx context.Context, q db.DBTX, id int64) (*models.ERPRecord, error) {
	return r.getOne(ctx, q, squirrel.Eq{"id": id}, true)
}

// GetByAccountForUpdate reads and locks an account's record inside q's transaction
func (r *ERPRepository) GetByAccountForUpdate(ctx context.Context, q db.DBTX, accountID int64) (*models.ERPRecord, error) {
	return r.getOne(ctx, q, squirrel.Eq{"account_id": accountID}, true)
}

// Update writes the set fields of upd and returns the stored record
func (r *ERPRepository) Update(ctx context.Context, q db.DBTX, id int64, upd ERPUpdate) (*models.ERPRecord, error) {
	set := map[string]interface{}{"updated_at": squirrel.Expr("NOW()")}
	if upd.Profile != nil {
		set["profile"] = *upd.Profile
		set["overall_cgpa"] = upd.CGPA
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.ERPPoints != nil {
		set["erp_points"] = *upd.ERPPoints
	}
	if upd.AdminNote != nil {
		set["admin_note"] = *upd.AdminNote
	}
	if upd.VerifiedBy != nil {
		set["verified_by"] = *upd.VerifiedBy
	}
	if upd.MarkSubmitted {
		set["submitted_at"] = squirrel.Expr("NOW()")
	}
	if upd.MarkVerified {
		set["verified_at"] = squirrel.Expr("NOW()")
	}

	sql, args, err := r.sb.Update("erp_records").
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(erpColumnNames, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update ERP query: %w", err)
	}

	e, err := scanERP(pick(q, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrERPNotFound
		}
		logger.Error().Err(err).Int64("erpID", id).Msg("Error updating ERP record")
		return nil, fmt.Errorf("error updating ERP record: %w", err)
	}
	return e, nil
}

func (r *ERPRepository) selectWithOwner() squirrel.SelectBuilder {
	cols := make([]string, 0, len(erpColumnNames)+len(ownerColumns))
	for _, c := range erpColumnNames {
		cols = append(cols, "e."+c)
	}
	cols = append(cols, ownerColumns...)
	return r.sb.Select(cols...).From("erp_records e").Join("accounts s ON s.id = e.account_id")
}

func scanERPWithOwner(row pgx.Row) (*models.ERPRecord, error) {
	e := &models.ERPRecord{}
	o := &models.AccountSummary{}
	dest := append(erpDest(e), &o.ID, &o.Name, &o.RollNumber, &o.Email, &o.Department, &o.Section, &o.Year, &o.TotalPoints)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	e.Owner = o
	return e, nil
}

func (r *ERPRepository) getWithOwner(ctx context.Context, where squirrel.Sqlizer) (*models.ERPRecord, error) {
	sql, args, err := r.selectWithOwner().Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get ERP query: %w", err)
	}

	e, err := scanERPWithOwner(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrERPNotFound
		}
		logger.Error().Err(err).Msg("Error scanning ERP row")
		return nil, fmt.Errorf("error getting ERP record: %w", err)
	}
	return e, nil
}

// List returns one page of records with owner summaries, most recently submitted first
func (r *ERPRepository) List(ctx context.Context, status models.ERPStatus, page models.PageRequest) ([]models.ERPRecord, dto.PaginationInfo, error) {
	q := r.selectWithOwner()
	countQ := r.sb.Select("COUNT(*)").From("erp_records e")
	if status != "" {
		q = q.Where(squirrel.Eq{"e.status": status})
		countQ = countQ.Where(squirrel.Eq{"e.status": status})
	}

	total, err := countRows(ctx, r.db, countQ)
	if err != nil {
		logger.Error().Err(err).Msg("Error counting ERP records")
		return nil, dto.PaginationInfo{}, err
	}
	info := helpers.NewPaginationInfo(total, page)
	if total == 0 {
		return []models.ERPRecord{}, info, nil
	}

	offset, limit := helpers.CalculateOffsetLimit(page)
	sql, args, err := q.OrderBy("e.submitted_at DESC NULLS LAST", "e.id DESC").
		Limit(uint64(limit)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, dto.PaginationInfo{}, fmt.Errorf("failed to build list ERP query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list ERP query")
		return nil, dto.PaginationInfo{}, fmt.Errorf("error querying ERP records: %w", err)
	}
	defer rows.Close()

	records := []models.ERPRecord{}
	for rows.Next() {
		e, err := scanERPWithOwner(rows)
		if err != nil {
			return nil, dto.PaginationInfo{}, fmt.Errorf("error scanning ERP row: %w", err)
		}
		records = append(records, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	return records, info, nil
}

// CountByStatus counts records in status
func (r *ERPRepository) CountByStatus(ctx context.Context, status models.ERPStatus) (int, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("erp_records").Where(squirrel.Eq{"status": status}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count ERP query: %w", err)
	}
	var n int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting ERP records: %w", err)
	}
	return n, nil
}
