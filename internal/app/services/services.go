// Package services implements the portal's use cases on top of the
// repositories. Services receive the acting principal explicitly and run
// every state transition that touches points inside one transaction.
package services

import (
	"time"

	"github.com/yigit/achievement-portal/internal/app/repositories"
	"github.com/yigit/achievement-portal/internal/app/workflow"
	"github.com/yigit/achievement-portal/internal/db"
	"github.com/yigit/achievement-portal/internal/pkg/auth"
	"github.com/yigit/achievement-portal/internal/pkg/filestorage"
	"github.com/yigit/achievement-portal/internal/pkg/notify"
)

// Stores groups the persistence dependencies of the services.
type Stores struct {
	Accounts      repositories.AccountStore
	Admins        repositories.AdminStore
	Achievements  repositories.AchievementStore
	ERP           repositories.ERPStore
	Announcements repositories.AnnouncementStore
}

// Options carries the tunables services read from configuration.
type Options struct {
	PortalURL        string
	LeaderboardLimit int
	RejectPolicy     workflow.RejectPolicy
	Now              func() time.Time
}

// Services holds every service instance
type Services struct {
	Auth          AuthService
	Ledger        LedgerService
	Achievements  AchievementService
	Review        ReviewService
	ERP           ERPService
	Ranking       RankingService
	Activity      ActivityService
	Announcements AnnouncementService
	Assessment    AssessmentService
}

// NewServices wires all services against the given stores
func NewServices(
	stores Stores,
	tx db.Transactor,
	jwt *auth.JWTService,
	storage filestorage.FileStorage,
	notifier notify.Notifier,
	opts Options,
) *Services {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ledger := NewLedgerService(stores.Accounts)
	return &Services{
		Auth:          NewAuthService(stores.Accounts, stores.Admins, jwt, storage),
		Ledger:        ledger,
		Achievements:  NewAchievementService(stores.Achievements, ledger, tx, storage),
		Review:        NewReviewService(stores.Achievements, stores.Accounts, ledger, tx, notifier, opts),
		ERP:           NewERPService(stores.ERP, stores.Accounts, ledger, tx, notifier, opts),
		Ranking:       NewRankingService(stores.Accounts, opts.LeaderboardLimit),
		Activity:      NewActivityService(stores.Accounts, stores.Achievements, stores.ERP, stores.Announcements, opts.Now),
		Announcements: NewAnnouncementService(stores.Announcements, stores.Accounts, notifier, opts.PortalURL),
		Assessment:    NewAssessmentService(),
	}
}
