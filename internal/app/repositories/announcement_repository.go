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
	"github.com/yigit/achievement-portal/internal/pkg/apperrors"
	"github.com/yigit/achievement-portal/internal/pkg/logger"
)

var announcementColumnNames = []string{
	"id", "title", "description", "type", "company", "location", "deadline", "eligibility_criteria",
	"apply_link", "package", "event_date", "venue", "attachments", "is_active", "is_pinned",
	"posted_by", "view_count", "target_year", "created_at", "updated_at",
}

// AnnouncementRepository handles announcement database operations
type AnnouncementRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAnnouncementRepository creates a new AnnouncementRepository
func NewAnnouncementRepository(pool *pgxpool.Pool) *AnnouncementRepository {
	return &AnnouncementRepository{db: pool, sb: statementBuilder()}
}

func announcementDest(a *models.Announcement) []interface{} {
	return []interface{}{
		&a.ID, &a.Title, &a.Description, &a.Type, &a.Company, &a.Location, &a.Deadline, &a.EligibilityCriteria,
		&a.ApplyLink, &a.Package, &a.EventDate, &a.Venue, &a.Attachments, &a.IsActive, &a.IsPinned,
		&a.PostedBy, &a.ViewCount, &a.TargetYear, &a.CreatedAt, &a.UpdatedAt,
	}
}

func announcementValues(a *models.Announcement) map[string]interface{} {
	if a.Attachments == nil {
		a.Attachments = []string{}
	}
	return map[string]interface{}{
		"title":                a.Title,
		"description":          a.Description,
		"type":                 a.Type,
		"company":              a.Company,
		"location":             a.Location,
		"deadline":             a.Deadline,
		"eligibility_criteria": a.EligibilityCriteria,
		"apply_link":           a.ApplyLink,
		"package":              a.Package,
		"event_date":           a.EventDate,
		"venue":                a.Venue,
		"attachments":          a.Attachments,
		"is_active":            a.IsActive,
		"is_pinned":            a.IsPinned,
		"target_year":          a.TargetYear,
	}
}

// Create inserts an announcement
func (r *AnnouncementRepository) Create(ctx context.Context, a *models.Announcement) error {
	values := announcementValues(a)
	values["posted_by"] = a.PostedBy

	sql, args, err := r.sb.Insert("announcements").
		SetMap(values).
		Suffix("RETURNING " + strings.Join(announcementColumnNames, ", ")).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create announcement query: %w", err)
	}

	name := a.PostedByName
	if err := r.db.QueryRow(ctx, sql, args...).Scan(announcementDest(a)...); err != nil {
		logger.Error().Err(err).Msg("Error creating announcement")
		return fmt.Errorf("error creating announcement: %w", err)
	}
	a.PostedByName = name
	return nil
}

func (r *AnnouncementRepository) selectWithPoster() squirrel.SelectBuilder {
	cols := make([]string, 0, len(announcementColumnNames)+1)
	for _, c := range announcementColumnNames {
		cols = append(cols, "n."+c)
	}
	cols = append(cols, "COALESCE(ad.username, '')")
	return r.sb.Select(cols...).From("announcements n").LeftJoin("admins ad ON ad.id = n.posted_by")
}

func scanAnnouncementWithPoster(row pgx.Row) (*models.Announcement, error) {
	a := &models.Announcement{}
	if err := row.Scan(append(announcementDest(a), &a.PostedByName)...); err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID retrieves an announcement
func (r *AnnouncementRepository) GetByID(ctx context.Context, id int64) (*models.Announcement, error) {
	sql, args, err := r.selectWithPoster().Where(squirrel.Eq{"n.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get announcement query: %w", err)
	}

	a, err := scanAnnouncementWithPoster(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAnnouncementNotFound
		}
		return nil, fmt.Errorf("error getting announcement: %w", err)
	}
	return a, nil
}

// Update overwrites the editable fields of an announcement
func (r *AnnouncementRepository) Update(ctx context.Context, a *models.Announcement) error {
	values := announcementValues(a)
	values["updated_at"] = squirrel.Expr("NOW()")

	sql, args, err := r.sb.Update("announcements").
		SetMap(values).
		Where(squirrel.Eq{"id": a.ID}).
		Suffix("RETURNING " + strings.Join(announcementColumnNames, ", ")).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update announcement query: %w", err)
	}

	name := a.PostedByName
	if err := r.db.QueryRow(ctx, sql, args...).Scan(announcementDest(a)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrAnnouncementNotFound
		}
		logger.Error().Err(err).Int64("announcementID", a.ID).Msg("Error updating announcement")
		return fmt.Errorf("error updating announcement: %w", err)
	}
	a.PostedByName = name
	return nil
}

// Delete removes an announcement
func (r *AnnouncementRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("announcements").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete announcement query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting announcement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAnnouncementNotFound
	}
	return nil
}

// List returns announcements pinned first, then newest first
func (r *AnnouncementRepository) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, error) {
	q := r.selectWithPoster()
	if filter.Type != "" {
		q = q.Where(squirrel.Eq{"n.type": filter.Type})
	}
	if filter.IsActive != nil {
		q = q.Where(squirrel.Eq{"n.is_active": *filter.IsActive})
	}
	if filter.ForYear != 0 {
		q = q.Where(squirrel.Or{squirrel.Eq{"n.target_year": nil}, squirrel.Eq{"n.target_year": filter.ForYear}})
	}
	q = q.OrderBy("n.is_pinned DESC", "n.created_at DESC", "n.id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list announcements query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list announcements query")
		return nil, fmt.Errorf("error querying announcements: %w", err)
	}
	defer rows.Close()

	items := []models.Announcement{}
	for rows.Next() {
		a, err := scanAnnouncementWithPoster(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning announcement row: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// IncrementViews atomically bumps the view counter and returns its new value
func (r *AnnouncementRepository) IncrementViews(ctx context.Context, id int64) (int, error) {
	sql, args, err := r.sb.Update("announcements").
		Set("view_count", squirrel.Expr("view_count + 1")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING view_count").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build increment views query: %w", err)
	}

	var n int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrAnnouncementNotFound
		}
		return 0, fmt.Errorf("error incrementing views: %w", err)
	}
	return n, nil
}

// Stats counts announcements by activity and type
func (r *AnnouncementRepository) Stats(ctx context.Context) (models.AnnouncementStats, error) {
	var s models.AnnouncementStats
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_active),
		       COUNT(*) FILTER (WHERE is_active AND type = 'academic'),
		       COUNT(*) FILTER (WHERE is_active AND type = 'career_opportunity')
		FROM announcements`).Scan(&s.Total, &s.Active, &s.Academic, &s.Career)
	if err != nil {
		return s, fmt.Errorf("error computing announcement stats: %w", err)
	}
	return s, nil
}
