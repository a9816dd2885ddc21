package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/app/models/dto"
	"github.com/yigit/achievement-portal/internal/app/ranking"
	"github.com/yigit/achievement-portal/internal/db"
)

// AccountStore persists student accounts and their point totals.
type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByLogin(ctx context.Context, login string) (*models.Account, error)
	List(ctx context.Context, filter models.AccountFilter, page models.PageRequest) ([]models.Account, dto.PaginationInfo, error)
	ListContacts(ctx context.Context, year models.Year) ([]models.Contact, error)
	UpdateProfile(ctx context.Context, id int64, upd models.ProfileUpdate) (*models.Account, error)
	SetFileRef(ctx context.Context, id int64, field FileField, ref string) error

	// Credit adds amount to the total. Adjust adds a signed delta and clamps
	// the result at zero. Both are single atomic statements and return the new total.
	Credit(ctx context.Context, q db.DBTX, id int64, amount int) (int, error)
	Adjust(ctx context.Context, q db.DBTX, id int64, delta int) (int, error)

	Leaderboard(ctx context.Context, filter models.AccountFilter, limit int) ([]ranking.Entry, error)
	Standing(ctx context.Context, id int64, filter models.AccountFilter) (ranking.Snapshot, error)
	Totals(ctx context.Context) (count int, points int64, err error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
}

// AdminStore persists reviewer accounts.
type AdminStore interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id int64) (*models.Admin, error)
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
}

// AchievementStore persists achievements.
type AchievementStore interface {
	Create(ctx context.Context, a *models.Achievement) error
	GetByID(ctx context.Context, id int64) (*models.Achievement, error)
	// GetForUpdate reads and row-locks an achievement inside q's transaction.
	GetForUpdate(ctx context.Context, q db.DBTX, id int64) (*models.Achievement, error)
	ListByAccount(ctx context.Context, accountID int64) ([]models.Achievement, error)
	RecentlyUpdated(ctx context.Context, accountID int64, limit uint64) ([]models.Achievement, error)
	List(ctx context.Context, filter models.AchievementFilter, page models.PageRequest) ([]models.Achievement, dto.PaginationInfo, error)
	RecentSubmissions(ctx context.Context, limit uint64) ([]models.Achievement, error)
	SetReview(ctx context.Context, q db.DBTX, id int64, review Review) (*models.Achievement, error)
	ToggleHighlight(ctx context.Context, id int64) (*models.Achievement, error)
	Delete(ctx context.Context, q db.DBTX, id int64) error
	Counts(ctx context.Context) (models.AchievementCounts, error)
}

// ERPStore persists ERP records.
type ERPStore interface {
	GetOrCreateDraft(ctx context.Context, accountID int64, profile models.ERPProfile) (*models.ERPRecord, error)
	GetByID(ctx context.Context, id int64) (*models.ERPRecord, error)
	GetByAccount(ctx context.Context, accountID int64) (*models.ERPRecord, error)
	GetForUpdate(ctx context.Context, q db.DBTX, id int64) (*models.ERPRecord, error)
	GetByAccountForUpdate(ctx context.Context, q db.DBTX, accountID int64) (*models.ERPRecord, error)
	Update(ctx context.Context, q db.DBTX, id int64, upd ERPUpdate) (*models.ERPRecord, error)
	List(ctx context.Context, status models.ERPStatus, page models.PageRequest) ([]models.ERPRecord, dto.PaginationInfo, error)
	CountByStatus(ctx context.Context, status models.ERPStatus) (int, error)
}

// AnnouncementStore persists announcements.
type AnnouncementStore interface {
	Create(ctx context.Context, a *models.Announcement) error
	GetByID(ctx context.Context, id int64) (*models.Announcement, error)
	Update(ctx context.Context, a *models.Announcement) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, error)
	IncrementViews(ctx context.Context, id int64) (int, error)
	Stats(ctx context.Context) (models.AnnouncementStats, error)
}

var (
	_ AccountStore      = (*AccountRepository)(nil)
	_ AdminStore        = (*AdminRepository)(nil)
	_ AchievementStore  = (*AchievementRepository)(nil)
	_ ERPStore          = (*ERPRepository)(nil)
	_ AnnouncementStore = (*AnnouncementRepository)(nil)
)

// Repositories holds all the repository instances
type Repositories struct {
	Accounts      *AccountRepository
	Admins        *AdminRepository
	Achievements  *AchievementRepository
	ERP           *ERPRepository
	Announcements *AnnouncementRepository
}

// NewRepositories initializes all repositories
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Accounts:      NewAccountRepository(pool),
		Admins:        NewAdminRepository(pool),
		Achievements:  NewAchievementRepository(pool),
		ERP:           NewERPRepository(pool),
		Announcements: NewAnnouncementRepository(pool),
	}
}

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// pick returns q when running inside a transaction, else the pool.
func pick(q db.DBTX, pool *pgxpool.Pool) db.DBTX {
	if q == nil {
		return pool
	}
	return q
}

// countRows runs a SELECT COUNT(*) query.
func countRows(ctx context.Context, pool *pgxpool.Pool, q squirrel.SelectBuilder) (int64, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var n int64
	if err := pool.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting rows: %w", err)
	}
	return n, nil
}
