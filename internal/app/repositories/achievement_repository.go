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
	"github.com/yigit/achievement-portal/internal/pkg/dberrors"
	"github.com/yigit/achievement-portal/internal/pkg/logger"
)

// Review is the outcome an admin records on an achievement.
type Review struct {
	Status     models.AchievementStatus
	Points     int
	AdminNote  string
	ReviewerID int64
}

var achievementColumnNames = []string{
	"id", "account_id", "title", "description", "category", "achieved_on", "level", "proof_files", "links",
	"status", "points", "highlighted", "admin_note", "reviewed_by", "reviewed_at", "created_at", "updated_at",
}

func achievementColumns(prefix string) []string {
	cols := make([]string, len(achievementColumnNames))
	for i, c := range achievementColumnNames {
		cols[i] = prefix + c
	}
	return cols
}

var ownerColumns = []string{
	"s.id", "s.name", "s.roll_number", "s.email", "s.department", "s.section", "s.year", "s.total_points",
}

// AchievementRepository handles achievement database operations
type AchievementRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAchievementRepository creates a new AchievementRepository
func NewAchievementRepository(pool *pgxpool.Pool) *AchievementRepository {
	return &AchievementRepository{db: pool, sb: statementBuilder()}
}

func achievementDest(a *models.Achievement) []interface{} {
	return []interface{}{
		&a.ID, &a.AccountID, &a.Title, &a.Description, &a.Category, &a.Date, &a.Level, &a.ProofFiles, &a.Links,
		&a.Status, &a.Points, &a.Highlighted, &a.AdminNote, &a.ReviewedBy, &a.ReviewedAt, &a.CreatedAt, &a.UpdatedAt,
	}
}

func scanAchievement(row pgx.Row) (*models.Achievement, error) {
	a := &models.Achievement{}
	if err := row.Scan(achievementDest(a)...); err != nil {
		return nil, err
	}
	return a, nil
}

func scanAchievementWithOwner(row pgx.Row) (*models.Achievement, error) {
	a := &models.Achievement{}
	o := &models.AccountSummary{}
	dest := append(achievementDest(a),
		&o.ID, &o.Name, &o.RollNumber, &o.Email, &o.Department, &o.Section, &o.Year, &o.TotalPoints)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	a.Owner = o
	return a, nil
}

func (r *AchievementRepository) selectWithOwner() squirrel.SelectBuilder {
	return r.sb.Select(append(achievementColumns("a."), ownerColumns...)...).
		From("achievements a").
		Join("accounts s ON s.id = a.account_id")
}

func (r *AchievementRepository) queryWithOwner(ctx context.Context, q squirrel.SelectBuilder) ([]models.Achievement, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build achievements query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing achievements query")
		return nil, fmt.Errorf("error querying achievements: %w", err)
	}
	defer rows.Close()

	items := []models.Achievement{}
	for rows.Next() {
		a, err := scanAchievementWithOwner(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning achievement row: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// Create inserts a pending achievement
func (r *AchievementRepository) Create(ctx context.Context, a *models.Achievement) error {
	if a.ProofFiles == nil {
		a.ProofFiles = []string{}
	}
	sql, args, err := r.sb.Insert("achievements").
		Columns("account_id", "title", "description", "category", "achieved_on", "level", "proof_files", "links").
		Values(a.AccountID, a.Title, a.Description, a.Category, a.Date, a.Level, a.ProofFiles, a.Links).
		Suffix("RETURNING " + strings.Join(achievementColumnNames, ", ")).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create achievement query: %w", err)
	}

	created, err := scanAchievement(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrAccountNotFound
		}
		logger.Error().Err(err).Int64("accountID", a.AccountID).Msg("Error creating achievement")
		return fmt.Errorf("error creating achievement: %w", err)
	}
	*a = *created
	return nil
}

// GetByID retrieves an achievement and its owner summary
func (r *AchievementRepository) GetByID(ctx context.Context, id int64) (*models.Achievement, error) {
	sql, args, err := r.selectWithOwner().Where(squirrel.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get achievement query: %w", err)
	}

	a, err := scanAchievementWithOwner(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAchievementNotFound
		}
		logger.Error().Err(err).Int64("achievementID", id).Msg("Error scanning achievement row")
		return nil, fmt.Errorf("error getting achievement: %w", err)
	}
	return a, nil
}

// GetForUpdate reads an achievement and locks its row until q's transaction ends
func (r *AchievementRepository) GetForUpdate(ctx context.Context, q db.DBTX, id int64) (*models.Achievement, error) {
	sql, args, err := r.sb.Select(achievementColumnNames...).
		From("achievements").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build lock achievement query: %w", err)
	}

	a, err := scanAchievement(pick(q, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAchievementNotFound
		}
		return nil, fmt.Errorf("error locking achievement: %w", err)
	}
	return a, nil
}

// ListByAccount returns an account's achievements, newest first
func (r *AchievementRepository) ListByAccount(ctx context.Context, accountID int64) ([]models.Achievement, error) {
	return r.list(ctx, r.sb.Select(achievementColumnNames...).
		From("achievements").
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("created_at DESC", "id DESC"))
}

// RecentlyUpdated returns an account's most recently changed achievements
func (r *AchievementRepository) RecentlyUpdated(ctx context.Context, accountID int64, limit uint64) ([]models.Achievement, error) {
	return r.list(ctx, r.sb.Select(achievementColumnNames...).
		From("achievements").
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("updated_at DESC", "id DESC").
		Limit(limit))
}

func (r *AchievementRepository) list(ctx context.Context, q squirrel.SelectBuilder) ([]models.Achievement, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build achievements query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing achievements query")
		return nil, fmt.Errorf("error querying achievements: %w", err)
	}
	defer rows.Close()

	items := []models.Achievement{}
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning achievement row: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// List returns one page of achievements matching filter with owner summaries, newest first
func (r *AchievementRepository) List(ctx context.Context, filter models.AchievementFilter, page models.PageRequest) ([]models.Achievement, dto.PaginationInfo, error) {
	q := r.selectWithOwner()
	countQ := r.sb.Select("COUNT(*)").From("achievements a")
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"a.status": filter.Status})
		countQ = countQ.Where(squirrel.Eq{"a.status": filter.Status})
	}
	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"a.category": filter.Category})
		countQ = countQ.Where(squirrel.Eq{"a.category": filter.Category})
	}
	if filter.AccountID != 0 {
		q = q.Where(squirrel.Eq{"a.account_id": filter.AccountID})
		countQ = countQ.Where(squirrel.Eq{"a.account_id": filter.AccountID})
	}

	total, err := countRows(ctx, r.db, countQ)
	if err != nil {
		logger.Error().Err(err).Msg("Error counting achievements")
		return nil, dto.PaginationInfo{}, err
	}
	info := helpers.NewPaginationInfo(total, page)
	if total == 0 {
		return []models.Achievement{}, info, nil
	}

	offset, limit := helpers.CalculateOffsetLimit(page)
	items, err := r.queryWithOwner(ctx, q.OrderBy("a.created_at DESC", "a.id DESC").Limit(uint64(limit)).Offset(offset))
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	return items, info, nil
}

// RecentSubmissions returns the latest submissions across all accounts
func (r *AchievementRepository) RecentSubmissions(ctx context.Context, limit uint64) ([]models.Achievement, error) {
	return r.queryWithOwner(ctx, r.selectWithOwner().OrderBy("a.created_at DESC", "a.id DESC").Limit(limit))
}

// SetReview records a review decision inside q's transaction
func (r *AchievementRepository) SetReview(ctx context.Context, q db.DBTX, id int64, review Review) (*models.Achievement, error) {
	sql, args, err := r.sb.Update("achievements").
		SetMap(map[string]interface{}{
			"status":      review.Status,
			"points":      review.Points,
			"admin_note":  review.AdminNote,
			"reviewed_by": review.ReviewerID,
			"reviewed_at": squirrel.Expr("NOW()"),
			"updated_at":  squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(achievementColumnNames, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build review achievement query: %w", err)
	}

	a, err := scanAchievement(pick(q, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAchievementNotFound
		}
		logger.Error().Err(err).Int64("achievementID", id).Msg("Error recording review")
		return nil, fmt.Errorf("error recording review: %w", err)
	}
	return a, nil
}

// ToggleHighlight flips the highlighted flag
func (r *AchievementRepository) ToggleHighlight(ctx context.Context, id int64) (*models.Achievement, error) {
	sql, args, err := r.sb.Update("achievements").
		Set("highlighted", squirrel.Expr("NOT highlighted")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(achievementColumnNames, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build toggle highlight query: %w", err)
	}

	a, err := scanAchievement(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAchievementNotFound
		}
		return nil, fmt.Errorf("error toggling highlight: %w", err)
	}
	return a, nil
}

// Delete removes an achievement inside q's transaction
func (r *AchievementRepository) Delete(ctx context.Context, q db.DBTX, id int64) error {
	sql, args, err := r.sb.Delete("achievements").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete achievement query: %w", err)
	}

	tag, err := pick(q, r.db).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("achievementID", id).Msg("Error deleting achievement")
		return fmt.Errorf("error deleting achievement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAchievementNotFound
	}
	return nil
}

// Counts tallies achievements by status
func (r *AchievementRepository) Counts(ctx context.Context) (models.AchievementCounts, error) {
	var c models.AchievementCounts
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'approved'),
		       COUNT(*) FILTER (WHERE status = 'rejected')
		FROM achievements`).Scan(&c.Total, &c.Pending, &c.Approved, &c.Rejected)
	if err != nil {
		return c, fmt.Errorf("error counting achievements: %w", err)
	}
	return c, nil
}
