package services

import (
	"context"

	"github.com/yigit/achievement-portal/internal/app/auth"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/app/models/dto"
	"github.com/yigit/achievement-portal/internal/app/repositories"
	"github.com/yigit/achievement-portal/internal/pkg/logger"
	"github.com/yigit/achievement-portal/internal/pkg/notify"
)

// ActiveAnnouncementLimit caps the student-facing announcement list
const ActiveAnnouncementLimit = 50

// AnnouncementService manages admin announcements
type AnnouncementService interface {
	Create(ctx context.Context, actor auth.Actor, req *dto.AnnouncementRequest) (*models.Announcement, error)
	Update(ctx context.Context, actor auth.Actor, id int64, req *dto.AnnouncementRequest) (*models.Announcement, error)
	Delete(ctx context.Context, actor auth.Actor, id int64) error
	List(ctx context.Context, actor auth.Actor, filter models.AnnouncementFilter) ([]models.Announcement, error)
	Stats(ctx context.Context, actor auth.Actor) (models.AnnouncementStats, error)
	// Active lists announcements visible to the calling student.
	Active(ctx context.Context, actor auth.Actor, annType models.AnnouncementType) ([]models.Announcement, error)
	RecordView(ctx context.Context, actor auth.Actor, id int64) (int, error)
}

type announcementServiceImpl struct {
	announcements repositories.AnnouncementStore
	accounts      repositories.AccountStore
	notifier      notify.Notifier
	portalURL     string
}

// NewAnnouncementService creates a new AnnouncementService
func NewAnnouncementService(
	announcements repositories.AnnouncementStore,
	accounts repositories.AccountStore,
	notifier notify.Notifier,
	portalURL string,
) AnnouncementService {
	return &announcementServiceImpl{
		announcements: announcements,
		accounts:      accounts,
		notifier:      notifier,
		portalURL:     portalURL,
	}
}

func (s *announcementServiceImpl) Create(ctx context.Context, actor auth.Actor, req *dto.AnnouncementRequest) (*models.Announcement, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	a := req.ToModel()
	a.PostedBy = actor.ID
	if err := s.announcements.Create(ctx, a); err != nil {
		return nil, err
	}

	created, err := s.announcements.GetByID(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	logger.Info().Int64("announcementID", created.ID).Int64("adminID", actor.ID).Msg("Announcement created")

	if created.IsActive {
		s.broadcast(ctx, created)
	}
	return created, nil
}

// broadcast notifies every student the announcement targets.
func (s *announcementServiceImpl) broadcast(ctx context.Context, a *models.Announcement) {
	if s.notifier == nil {
		return
	}
	var year models.Year
	if a.TargetYear != nil {
		year = yearFromNumber(*a.TargetYear)
	}
	contacts, err := s.accounts.ListContacts(ctx, year)
	if err != nil {
		logger.Warn().Err(err).Int64("announcementID", a.ID).Msg("Skipping announcement emails, recipient lookup failed")
		return
	}

	msgs := make([]notify.Message, 0, len(contacts))
	for _, c := range contacts {
		msg, err := notify.Announcement(notify.Recipient{Name: c.Name, Email: c.Email}, a, s.portalURL)
		if err != nil {
			logger.Warn().Err(err).Int64("announcementID", a.ID).Msg("Failed to render announcement email")
			return
		}
		msgs = append(msgs, msg)
	}
	s.notifier.Dispatch(msgs...)
}

func yearFromNumber(n int) models.Year {
	for _, y := range []models.Year{models.YearI, models.YearII, models.YearIII, models.YearIV} {
		if y.Number() == n {
			return y
		}
	}
	return ""
}

func (s *announcementServiceImpl) Update(ctx context.Context, actor auth.Actor, id int64, req *dto.AnnouncementRequest) (*models.Announcement, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	existing, err := s.announcements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	a := req.ToModel()
	a.ID = existing.ID
	a.PostedBy = existing.PostedBy
	if req.IsActive == nil {
		a.IsActive = existing.IsActive
	}
	if err := s.announcements.Update(ctx, a); err != nil {
		return nil, err
	}
	return s.announcements.GetByID(ctx, id)
}

func (s *announcementServiceImpl) Delete(ctx context.Context, actor auth.Actor, id int64) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	return s.announcements.Delete(ctx, id)
}

func (s *announcementServiceImpl) List(ctx context.Context, actor auth.Actor, filter models.AnnouncementFilter) ([]models.Announcement, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	return s.announcements.List(ctx, filter)
}

func (s *announcementServiceImpl) Stats(ctx context.Context, actor auth.Actor) (models.AnnouncementStats, error) {
	if err := actor.RequireAdmin(); err != nil {
		return models.AnnouncementStats{}, err
	}
	return s.announcements.Stats(ctx)
}

func (s *announcementServiceImpl) Active(ctx context.Context, actor auth.Actor, annType models.AnnouncementType) ([]models.Announcement, error) {
	if err := actor.RequireStudent(); err != nil {
		return nil, err
	}
	account, err := s.accounts.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	active := true
	return s.announcements.List(ctx, models.AnnouncementFilter{
		Type:     annType,
		IsActive: &active,
		ForYear:  account.Year.Number(),
		Limit:    ActiveAnnouncementLimit,
	})
}

func (s *announcementServiceImpl) RecordView(ctx context.Context, actor auth.Actor, id int64) (int, error) {
	if err := actor.RequireStudent(); err != nil {
		return 0, err
	}
	return s.announcements.IncrementViews(ctx, id)
}
