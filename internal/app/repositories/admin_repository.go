package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/pkg/apperrors"
	"github.com/yigit/achievement-portal/internal/pkg/dberrors"
	"github.com/yigit/achievement-portal/internal/pkg/logger"
)

// AdminRepository handles admin database operations
type AdminRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAdminRepository creates a new AdminRepository
func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{db: pool, sb: statementBuilder()}
}

// Create inserts a new admin
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	sql, args, err := r.sb.Insert("admins").
		Columns("username", "password_hash").
		Values(admin.Username, admin.PasswordHash).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create admin query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "admins_username_key") {
			return apperrors.ErrUsernameExists
		}
		logger.Error().Err(err).Str("username", admin.Username).Msg("Error creating admin")
		return fmt.Errorf("error creating admin: %w", err)
	}
	return nil
}

// GetByID retrieves an admin by ID
func (r *AdminRepository) GetByID(ctx context.Context, id int64) (*models.Admin, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByUsername retrieves an admin by username
func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	return r.getOne(ctx, squirrel.Eq{"username": username})
}

func (r *AdminRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.Admin, error) {
	sql, args, err := r.sb.Select("id", "username", "password_hash", "created_at", "updated_at").
		From("admins").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get admin query: %w", err)
	}

	a := &models.Admin{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAdminNotFound
		}
		return nil, fmt.Errorf("error getting admin: %w", err)
	}
	return a, nil
}
