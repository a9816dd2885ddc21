package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/app/models/dto"
	"github.com/yigit/achievement-portal/internal/app/ranking"
	"github.com/yigit/achievement-portal/internal/db"
	"github.com/yigit/achievement-portal/internal/pkg/apperrors"
	"github.com/yigit/achievement-portal/internal/pkg/helpers"
	"github.com/yigit/achievement-portal/internal/pkg/dberrors"
	"github.com/yigit/achievement-portal/internal/pkg/logger"
)

// FileField names an account column holding an uploaded file reference.
type FileField string

const (
	FileProfilePic FileField = "profile_pic_url"
	FileResume     FileField = "resume_url"
	FileBanner     FileField = "banner_url"
)

var accountColumns = []string{
	"id", "roll_number", "email", "password_hash", "name", "department", "section", "year",
	"profile_pic_url", "resume_url", "banner_url", "social_links", "total_points", "created_at", "updated_at",
}

// AccountRepository handles account database operations
type AccountRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{
		db: pool,
		sb: statementBuilder(),
	}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(
		&a.ID, &a.RollNumber, &a.Email, &a.PasswordHash, &a.Name, &a.Department, &a.Section, &a.Year,
		&a.ProfilePicURL, &a.ResumeURL, &a.BannerURL, &a.SocialLinks, &a.TotalPoints, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func filterAccounts(q squirrel.SelectBuilder, f models.AccountFilter) squirrel.SelectBuilder {
	if f.Year != "" {
		q = q.Where(squirrel.Eq{"year": f.Year})
	}
	if f.Department != "" {
		q = q.Where(squirrel.Eq{"department": f.Department})
	}
	return q
}

// Create inserts a new account and fills in its generated fields
func (r *AccountRepository) Create(ctx context.Context, a *models.Account) error {
	sql, args, err := r.sb.Insert("accounts").
		Columns("roll_number", "email", "password_hash", "name", "department", "section", "year", "social_links").
		Values(a.RollNumber, strings.ToLower(a.Email), a.PasswordHash, a.Name, a.Department, a.Section, a.Year, a.SocialLinks).
		Suffix("RETURNING id, email, total_points, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create account SQL")
		return fmt.Errorf("failed to build create account query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.Email, &a.TotalPoints, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "accounts_email_key"):
			return apperrors.ErrEmailAlreadyExists
		case dberrors.IsDuplicateConstraintError(err, "accounts_roll_number_key"):
			return apperrors.ErrRollNumberExists
		}
		logger.Error().Err(err).Str("rollNumber", a.RollNumber).Msg("Error creating account")
		return fmt.Errorf("error creating account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	sql, args, err := r.sb.Select(accountColumns...).
		From("accounts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get account query: %w", err)
	}

	a, err := scanAccount(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		logger.Error().Err(err).Int64("accountID", id).Msg("Error scanning account row")
		return nil, fmt.Errorf("error getting account by ID: %w", err)
	}
	return a, nil
}

// GetByLogin retrieves an account by email or roll number
func (r *AccountRepository) GetByLogin(ctx context.Context, login string) (*models.Account, error) {
	login = strings.TrimSpace(login)
	sql, args, err := r.sb.Select(accountColumns...).
		From("accounts").
		Where(squirrel.Or{
			squirrel.Eq{"email": strings.ToLower(login)},
			squirrel.Eq{"roll_number": login},
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get account by login query: %w", err)
	}

	a, err := scanAccount(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		logger.Error().Err(err).Msg("Error scanning account row by login")
		return nil, fmt.Errorf("error getting account by login: %w", err)
	}
	return a, nil
}

// List returns one page of accounts matching filter in leaderboard order
func (r *AccountRepository) List(ctx context.Context, filter models.AccountFilter, page models.PageRequest) ([]models.Account, dto.PaginationInfo, error) {
	total, err := countRows(ctx, r.db, filterAccounts(r.sb.Select("COUNT(*)").From("accounts"), filter))
	if err != nil {
		logger.Error().Err(err).Msg("Error counting accounts")
		return nil, dto.PaginationInfo{}, err
	}
	info := helpers.NewPaginationInfo(total, page)
	if total == 0 {
		return []models.Account{}, info, nil
	}

	offset, limit := helpers.CalculateOffsetLimit(page)
	sql, args, err := filterAccounts(r.sb.Select(accountColumns...).From("accounts"), filter).
		OrderBy(ranking.OrderBy...).
		Limit(uint64(limit)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, dto.PaginationInfo{}, fmt.Errorf("failed to build list accounts query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list accounts query")
		return nil, dto.PaginationInfo{}, fmt.Errorf("error querying accounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, dto.PaginationInfo{}, fmt.Errorf("error scanning account row: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, dto.PaginationInfo{}, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, info, nil
}

// ListContacts returns name and email of every account, or only those in year when set
func (r *AccountRepository) ListContacts(ctx context.Context, year models.Year) ([]models.Contact, error) {
	sql, args, err := filterAccounts(r.sb.Select("id", "name", "email").From("accounts"), models.AccountFilter{Year: year}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list contacts query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying contacts: %w", err)
	}
	defer rows.Close()

	contacts := []models.Contact{}
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.AccountID, &c.Name, &c.Email); err != nil {
			return nil, fmt.Errorf("error scanning contact row: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// UpdateProfile writes the non-nil fields of upd
func (r *AccountRepository) UpdateProfile(ctx context.Context, id int64, upd models.ProfileUpdate) (*models.Account, error) {
	set := map[string]interface{}{"updated_at": squirrel.Expr("NOW()")}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Department != nil {
		set["department"] = *upd.Department
	}
	if upd.Section != nil {
		set["section"] = *upd.Section
	}
	if upd.Year != nil {
		set["year"] = *upd.Year
	}
	if upd.SocialLinks != nil {
		set["social_links"] = *upd.SocialLinks
	}

	sql, args, err := r.sb.Update("accounts").
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(accountColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update profile query: %w", err)
	}

	a, err := scanAccount(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		logger.Error().Err(err).Int64("accountID", id).Msg("Error updating account profile")
		return nil, fmt.Errorf("error updating profile: %w", err)
	}
	return a, nil
}

// SetFileRef stores an uploaded file reference on the account
func (r *AccountRepository) SetFileRef(ctx context.Context, id int64, field FileField, ref string) error {
	switch field {
	case FileProfilePic, FileResume, FileBanner:
	default:
		return fmt.Errorf("%w: unknown file field %q", apperrors.ErrValidationFailed, field)
	}

	sql, args, err := r.sb.Update("accounts").
		Set(string(field), ref).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set file ref query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error setting %s: %w", field, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

// Credit adds a non-negative amount to an account total
func (r *AccountRepository) Credit(ctx context.Context, q db.DBTX, id int64, amount int) (int, error) {
	return r.addPoints(ctx, q, id, squirrel.Expr("total_points + ?", amount))
}

// Adjust adds a signed delta to an account total, flooring the result at zero
func (r *AccountRepository) Adjust(ctx context.Context, q db.DBTX, id int64, delta int) (int, error) {
	return r.addPoints(ctx, q, id, squirrel.Expr("GREATEST(total_points + ?, 0)", delta))
}

func (r *AccountRepository) addPoints(ctx context.Context, q db.DBTX, id int64, expr squirrel.Sqlizer) (int, error) {
	sql, args, err := r.sb.Update("accounts").
		Set("total_points", expr).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING total_points").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build points update query: %w", err)
	}

	var total int
	if err := pick(q, r.db).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrAccountNotFound
		}
		logger.Error().Err(err).Int64("accountID", id).Msg("Error updating account points")
		return 0, fmt.Errorf("error updating points: %w", err)
	}
	return total, nil
}

// Leaderboard returns up to limit accounts ordered by points then name
func (r *AccountRepository) Leaderboard(ctx context.Context, filter models.AccountFilter, limit int) ([]ranking.Entry, error) {
	sql, args, err := filterAccounts(
		r.sb.Select("id", "name", "roll_number", "department", "section", "year", "profile_pic_url", "total_points").From("accounts"),
		filter,
	).
		OrderBy(ranking.OrderBy...).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing leaderboard query")
		return nil, fmt.Errorf("error querying leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []ranking.Entry{}
	for rows.Next() {
		var e ranking.Entry
		if err := rows.Scan(&e.AccountID, &e.Name, &e.RollNumber, &e.Department, &e.Section, &e.Year, &e.ProfilePicURL, &e.TotalPoints); err != nil {
			return nil, fmt.Errorf("error scanning leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Standing reads an account's points together with how many accounts in the
// filtered population have strictly more, the population size and whether the
// account itself belongs to it. One statement keeps the counts consistent with
// the points under concurrent credits.
func (r *AccountRepository) Standing(ctx context.Context, id int64, filter models.AccountFilter) (ranking.Snapshot, error) {
	on := []string{"TRUE"}
	var onArgs []interface{}
	if filter.Year != "" {
		on = append(on, "a.year = ?")
		onArgs = append(onArgs, filter.Year)
	}
	if filter.Department != "" {
		on = append(on, "a.department = ?")
		onArgs = append(onArgs, filter.Department)
	}

	sql, args, err := r.sb.Select(
		"me.total_points",
		"COUNT(a.id) FILTER (WHERE a.total_points > me.total_points)",
		"COUNT(a.id)",
		"COALESCE(BOOL_OR(a.id = me.id), FALSE)",
	).
		From("accounts me").
		LeftJoin("accounts a ON "+strings.Join(on, " AND "), onArgs...).
		Where(squirrel.Eq{"me.id": id}).
		GroupBy("me.id", "me.total_points").
		ToSql()
	if err != nil {
		return ranking.Snapshot{}, fmt.Errorf("failed to build standing query: %w", err)
	}

	var s ranking.Snapshot
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.Points, &s.Greater, &s.Total, &s.Member); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ranking.Snapshot{}, apperrors.ErrAccountNotFound
		}
		logger.Error().Err(err).Int64("accountID", id).Msg("Error computing standing")
		return ranking.Snapshot{}, fmt.Errorf("error computing standing: %w", err)
	}
	return s, nil
}

// Totals returns the number of accounts and the sum of their points
func (r *AccountRepository) Totals(ctx context.Context) (int, int64, error) {
	var count int
	var points int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(total_points), 0) FROM accounts`).Scan(&count, &points)
	if err != nil {
		return 0, 0, fmt.Errorf("error computing account totals: %w", err)
	}
	return count, points, nil
}

// CountCreatedBetween counts accounts created in [from, to)
func (r *AccountRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	sql, args, err := r.sb.Select("COUNT(*)").
		From("accounts").
		Where(squirrel.GtOrEq{"created_at": from}).
		Where(squirrel.Lt{"created_at": to}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count accounts query: %w", err)
	}

	var n int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting accounts: %w", err)
	}
	return n, nil
}
