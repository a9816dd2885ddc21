package services

import (
	"context"
	"mime/multipart"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/app/models/dto"
	"github.com/yigit/achievement-portal/internal/app/ranking"
	"github.com/yigit/achievement-portal/internal/app/repositories"
	"github.com/yigit/achievement-portal/internal/db"
	"github.com/yigit/achievement-portal/internal/pkg/apperrors"
	"github.com/yigit/achievement-portal/internal/pkg/helpers"
	"github.com/yigit/achievement-portal/internal/pkg/notify"
)

func paginate[T any](all []T, page models.PageRequest) ([]T, dto.PaginationInfo) {
	info := helpers.NewPaginationInfo(int64(len(all)), page)
	offset, limit := helpers.CalculateOffsetLimit(page)
	if offset >= uint64(len(all)) {
		return []T{}, info
	}
	end := int(offset) + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], info
}

// memDB is an in-memory stand-in for the database shared by the fake stores.
type memDB struct {
	mu            sync.Mutex
	accounts      map[int64]models.Account
	admins        map[int64]models.Admin
	achievements  map[int64]models.Achievement
	erp           map[int64]models.ERPRecord
	announcements map[int64]models.Announcement
	nextID        int64
	now           time.Time
}

func newMemDB() *memDB {
	return &memDB{
		accounts:      map[int64]models.Account{},
		admins:        map[int64]models.Admin{},
		achievements:  map[int64]models.Achievement{},
		erp:           map[int64]models.ERPRecord{},
		announcements: map[int64]models.Announcement{},
		now:           time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memDB) id() int64 {
	m.nextID++
	return m.nextID
}

type memSnapshot struct {
	accounts      map[int64]models.Account
	achievements  map[int64]models.Achievement
	erp           map[int64]models.ERPRecord
	announcements map[int64]models.Announcement
}

func copyMap[V any](in map[int64]V) map[int64]V {
	out := make(map[int64]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// WithTransaction runs fn and restores the previous state when it fails.
func (m *memDB) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	m.mu.Lock()
	snap := memSnapshot{
		accounts:      copyMap(m.accounts),
		achievements:  copyMap(m.achievements),
		erp:           copyMap(m.erp),
		announcements: copyMap(m.announcements),
	}
	m.mu.Unlock()

	if err := fn(ctx, nil); err != nil {
		m.mu.Lock()
		m.accounts = snap.accounts
		m.achievements = snap.achievements
		m.erp = snap.erp
		m.announcements = snap.announcements
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memDB) addAccount(name string, year models.Year, dept models.Department, points int) *models.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	a := models.Account{
		ID:          id,
		RollNumber:  strings.ToUpper(name) + "01",
		Email:       strings.ToLower(name) + "@example.edu",
		Name:        name,
		Department:  dept,
		Section:     "A",
		Year:        year,
		TotalPoints: points,
		CreatedAt:   m.now,
	}
	m.accounts[id] = a
	return &a
}

func (m *memDB) points(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[id].TotalPoints
}

func (m *memDB) addAchievement(accountID int64, status models.AchievementStatus, points int) *models.Achievement {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	a := models.Achievement{
		ID:        id,
		AccountID: accountID,
		Title:     "Hackathon",
		Category:  "Competition",
		Level:     models.LevelCollege,
		Status:    status,
		Points:    points,
		CreatedAt: m.now,
		UpdatedAt: m.now,
	}
	m.achievements[id] = a
	return &a
}

func (m *memDB) addERP(accountID int64, status models.ERPStatus, points int) *models.ERPRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	rec := models.ERPRecord{
		ID:        id,
		AccountID: accountID,
		Profile:   models.NewDraftProfile(),
		Status:    status,
		ERPPoints: points,
		CreatedAt: m.now,
		UpdatedAt: m.now,
	}
	m.erp[id] = rec
	return &rec
}

// accountStore

type fakeAccounts struct{ m *memDB }

func (f fakeAccounts) Create(_ context.Context, a *models.Account) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, existing := range f.m.accounts {
		if existing.Email == a.Email {
			return apperrors.ErrEmailAlreadyExists
		}
		if existing.RollNumber == a.RollNumber {
			return apperrors.ErrRollNumberExists
		}
	}
	a.ID = f.m.id()
	a.CreatedAt = f.m.now
	f.m.accounts[a.ID] = *a
	return nil
}

func (f fakeAccounts) GetByID(_ context.Context, id int64) (*models.Account, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	a, ok := f.m.accounts[id]
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	return &a, nil
}

func (f fakeAccounts) GetByLogin(_ context.Context, login string) (*models.Account, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, a := range f.m.accounts {
		if strings.EqualFold(a.Email, login) || a.RollNumber == login {
			a := a
			return &a, nil
		}
	}
	return nil, apperrors.ErrAccountNotFound
}

func matchesFilter(a models.Account, filter models.AccountFilter) bool {
	return (filter.Year == "" || a.Year == filter.Year) &&
		(filter.Department == "" || a.Department == filter.Department)
}

func (f fakeAccounts) List(_ context.Context, filter models.AccountFilter, page models.PageRequest) ([]models.Account, dto.PaginationInfo, error) {
	all := f.matching(filter)
	sort.Slice(all, func(i, j int) bool {
		return ranking.Less(
			ranking.Entry{AccountID: all[i].ID, Name: all[i].Name, TotalPoints: all[i].TotalPoints},
			ranking.Entry{AccountID: all[j].ID, Name: all[j].Name, TotalPoints: all[j].TotalPoints},
		)
	})
	out, info := paginate(all, page)
	return out, info, nil
}

func (f fakeAccounts) matching(filter models.AccountFilter) []models.Account {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	out := []models.Account{}
	for _, a := range f.m.accounts {
		if matchesFilter(a, filter) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f fakeAccounts) ListContacts(_ context.Context, year models.Year) ([]models.Contact, error) {
	accounts := f.matching(models.AccountFilter{Year: year})
	out := make([]models.Contact, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, models.Contact{AccountID: a.ID, Name: a.Name, Email: a.Email})
	}
	return out, nil
}

func (f fakeAccounts) UpdateProfile(_ context.Context, id int64, upd models.ProfileUpdate) (*models.Account, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	a, ok := f.m.accounts[id]
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	if upd.Name != nil {
		a.Name = *upd.Name
	}
	if upd.Year != nil {
		a.Year = *upd.Year
	}
	f.m.accounts[id] = a
	return &a, nil
}

func (f fakeAccounts) SetFileRef(_ context.Context, id int64, field repositories.FileField, ref string) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	a, ok := f.m.accounts[id]
	if !ok {
		return apperrors.ErrAccountNotFound
	}
	switch field {
	case repositories.FileProfilePic:
		a.ProfilePicURL = ref
	case repositories.FileResume:
		a.ResumeURL = ref
	case repositories.FileBanner:
		a.BannerURL = ref
	}
	f.m.accounts[id] = a
	return nil
}

func (f fakeAccounts) Credit(ctx context.Context, q db.DBTX, id int64, amount int) (int, error) {
	return f.Adjust(ctx, q, id, amount)
}

func (f fakeAccounts) Adjust(_ context.Context, _ db.DBTX, id int64, delta int) (int, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	a, ok := f.m.accounts[id]
	if !ok {
		return 0, apperrors.ErrAccountNotFound
	}
	a.TotalPoints += delta
	if a.TotalPoints < 0 {
		a.TotalPoints = 0
	}
	f.m.accounts[id] = a
	return a.TotalPoints, nil
}

func (f fakeAccounts) Leaderboard(ctx context.Context, filter models.AccountFilter, limit int) ([]ranking.Entry, error) {
	accounts := f.matching(filter)
	out := make([]ranking.Entry, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, ranking.Entry{
			AccountID:   a.ID,
			Name:        a.Name,
			RollNumber:  a.RollNumber,
			Department:  a.Department,
			Section:     a.Section,
			Year:        a.Year,
			TotalPoints: a.TotalPoints,
		})
	}
	sort.Slice(out, func(i, j int) bool { return ranking.Less(out[i], out[j]) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f fakeAccounts) Standing(ctx context.Context, id int64, filter models.AccountFilter) (ranking.Snapshot, error) {
	me, err := f.GetByID(ctx, id)
	if err != nil {
		return ranking.Snapshot{}, err
	}
	accounts := f.matching(filter)
	totals := make([]int, 0, len(accounts))
	member := false
	for _, a := range accounts {
		totals = append(totals, a.TotalPoints)
		member = member || a.ID == id
	}
	return ranking.Snapshot{
		Points:  me.TotalPoints,
		Greater: ranking.CompetitionRank(me.TotalPoints, totals) - 1,
		Total:   len(accounts),
		Member:  member,
	}, nil
}

func (f fakeAccounts) Totals(_ context.Context) (int, int64, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var sum int64
	for _, a := range f.m.accounts {
		sum += int64(a.TotalPoints)
	}
	return len(f.m.accounts), sum, nil
}

func (f fakeAccounts) CountCreatedBetween(_ context.Context, from, to time.Time) (int, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	n := 0
	for _, a := range f.m.accounts {
		if !a.CreatedAt.Before(from) && a.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

// adminStore

type fakeAdmins struct{ m *memDB }

func (f fakeAdmins) Create(_ context.Context, a *models.Admin) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, existing := range f.m.admins {
		if existing.Username == a.Username {
			return apperrors.ErrUsernameExists
		}
	}
	a.ID = f.m.id()
	f.m.admins[a.ID] = *a
	return nil
}

func (f fakeAdmins) GetByID(_ context.Context, id int64) (*models.Admin, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	a, ok := f.m.admins[id]
	if !ok {
		return nil, apperrors.ErrAdminNotFound
	}
	return &a, nil
}

func (f fakeAdmins) GetByUsername(_ context.Context, username string) (*models.Admin, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, a := range f.m.admins {
		if a.Username == username {
			a := a
			return &a, nil
		}
	}
	return nil, apperrors.ErrAdminNotFound
}

// achievementStore

type fakeAchievements struct{ m *memDB }

func (f fakeAchievements) Create(_ context.Context, a *models.Achievement) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	a.ID = f.m.id()
	a.CreatedAt = f.m.now
	a.UpdatedAt = f.m.now
	f.m.achievements[a.ID] = *a
	return nil
}

func (f fakeAchievements) GetByID(_ context.Context, id int64) (*models.Achievement, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	a, ok := f.m.achievements[id]
	if !ok {
		return nil, apperrors.ErrAchievementNotFound
	}
	return &a, nil
}

func (f fakeAchievements) GetForUpdate(ctx context.Context, _ db.DBTX, id int64) (*models.Achievement, error) {
	return f.GetByID(ctx, id)
}

func (f fakeAchievements) sorted(keep func(models.Achievement) bool) []models.Achievement {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	out := []models.Achievement{}
	for _, a := range f.m.achievements {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (f fakeAchievements) ListByAccount(_ context.Context, accountID int64) ([]models.Achievement, error) {
	return f.sorted(func(a models.Achievement) bool { return a.AccountID == accountID }), nil
}

func (f fakeAchievements) RecentlyUpdated(_ context.Context, accountID int64, limit uint64) ([]models.Achievement, error) {
	out := f.sorted(func(a models.Achievement) bool { return a.AccountID == accountID })
	if uint64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f fakeAchievements) List(_ context.Context, filter models.AchievementFilter, page models.PageRequest) ([]models.Achievement, dto.PaginationInfo, error) {
	out, info := paginate(f.sorted(func(a models.Achievement) bool {
		return (filter.Status == "" || a.Status == filter.Status) &&
			(filter.AccountID == 0 || a.AccountID == filter.AccountID)
	}), page)
	return out, info, nil
}

func (f fakeAchievements) RecentSubmissions(_ context.Context, limit uint64) ([]models.Achievement, error) {
	out := f.sorted(func(models.Achievement) bool { return true })
	if uint64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f fakeAchievements) SetReview(_ context.Context, _ db.DBTX, id int64, review repositories.Review) (*models.Achievement, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	a, ok := f.m.achievements[id]
	if !ok {
		return nil, apperrors.ErrAchievementNotFound
	}
	a.Status = review.Status
	a.Points = review.Points
	a.AdminNote = review.AdminNote
	reviewer := review.ReviewerID
	a.ReviewedBy = &reviewer
	f.m.achievements[id] = a
	return &a, nil
}

func (f fakeAchievements) ToggleHighlight(_ context.Context, id int64) (*models.Achievement, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	a, ok := f.m.achievements[id]
	if !ok {
		return nil, apperrors.ErrAchievementNotFound
	}
	a.Highlighted = !a.Highlighted
	f.m.achievements[id] = a
	return &a, nil
}

func (f fakeAchievements) Delete(_ context.Context, _ db.DBTX, id int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if _, ok := f.m.achievements[id]; !ok {
		return apperrors.ErrAchievementNotFound
	}
	delete(f.m.achievements, id)
	return nil
}

func (f fakeAchievements) Counts(_ context.Context) (models.AchievementCounts, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var c models.AchievementCounts
	for _, a := range f.m.achievements {
		c.Total++
		switch a.Status {
		case models.AchievementPending:
			c.Pending++
		case models.AchievementApproved:
			c.Approved++
		case models.AchievementRejected:
			c.Rejected++
		}
	}
	return c, nil
}

// erpStore

type fakeERP struct{ m *memDB }

func (f fakeERP) GetOrCreateDraft(ctx context.Context, accountID int64, profile models.ERPProfile) (*models.ERPRecord, error) {
	if rec, err := f.GetByAccount(ctx, accountID); err == nil {
		return rec, nil
	}
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	rec := models.ERPRecord{ID: f.m.id(), AccountID: accountID, Profile: profile, Status: models.ERPDraft}
	f.m.erp[rec.ID] = rec
	return &rec, nil
}

func (f fakeERP) GetByID(_ context.Context, id int64) (*models.ERPRecord, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	rec, ok := f.m.erp[id]
	if !ok {
		return nil, apperrors.ErrERPNotFound
	}
	return &rec, nil
}

func (f fakeERP) GetByAccount(_ context.Context, accountID int64) (*models.ERPRecord, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, rec := range f.m.erp {
		if rec.AccountID == accountID {
			rec := rec
			return &rec, nil
		}
	}
	return nil, apperrors.ErrERPNotFound
}

func (f fakeERP) GetForUpdate(ctx context.Context, _ db.DBTX, id int64) (*models.ERPRecord, error) {
	return f.GetByID(ctx, id)
}

func (f fakeERP) GetByAccountForUpdate(ctx context.Context, _ db.DBTX, accountID int64) (*models.ERPRecord, error) {
	return f.GetByAccount(ctx, accountID)
}

func (f fakeERP) Update(_ context.Context, _ db.DBTX, id int64, upd repositories.ERPUpdate) (*models.ERPRecord, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	rec, ok := f.m.erp[id]
	if !ok {
		return nil, apperrors.ErrERPNotFound
	}
	if upd.Profile != nil {
		rec.Profile = *upd.Profile
		rec.OverallCGPA = upd.CGPA
	}
	if upd.Status != nil {
		rec.Status = *upd.Status
	}
	if upd.ERPPoints != nil {
		rec.ERPPoints = *upd.ERPPoints
	}
	if upd.AdminNote != nil {
		rec.AdminNote = *upd.AdminNote
	}
	if upd.VerifiedBy != nil {
		rec.VerifiedBy = upd.VerifiedBy
	}
	now := f.m.now
	if upd.MarkSubmitted {
		rec.SubmittedAt = &now
	}
	if upd.MarkVerified {
		rec.VerifiedAt = &now
	}
	f.m.erp[id] = rec
	return &rec, nil
}

func (f fakeERP) List(_ context.Context, status models.ERPStatus, page models.PageRequest) ([]models.ERPRecord, dto.PaginationInfo, error) {
	out, info := paginate(f.matching(status), page)
	return out, info, nil
}

func (f fakeERP) matching(status models.ERPStatus) []models.ERPRecord {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	out := []models.ERPRecord{}
	for _, rec := range f.m.erp {
		if status == "" || rec.Status == status {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f fakeERP) CountByStatus(_ context.Context, status models.ERPStatus) (int, error) {
	return len(f.matching(status)), nil
}

// announcementStore

type fakeAnnouncements struct{ m *memDB }

func (f fakeAnnouncements) Create(_ context.Context, a *models.Announcement) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	a.ID = f.m.id()
	a.CreatedAt = f.m.now.Add(time.Duration(a.ID) * time.Second)
	f.m.announcements[a.ID] = *a
	return nil
}

func (f fakeAnnouncements) GetByID(_ context.Context, id int64) (*models.Announcement, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	a, ok := f.m.announcements[id]
	if !ok {
		return nil, apperrors.ErrAnnouncementNotFound
	}
	return &a, nil
}

func (f fakeAnnouncements) Update(_ context.Context, a *models.Announcement) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	existing, ok := f.m.announcements[a.ID]
	if !ok {
		return apperrors.ErrAnnouncementNotFound
	}
	a.ViewCount = existing.ViewCount
	a.CreatedAt = existing.CreatedAt
	f.m.announcements[a.ID] = *a
	return nil
}

func (f fakeAnnouncements) Delete(_ context.Context, id int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if _, ok := f.m.announcements[id]; !ok {
		return apperrors.ErrAnnouncementNotFound
	}
	delete(f.m.announcements, id)
	return nil
}

func (f fakeAnnouncements) List(_ context.Context, filter models.AnnouncementFilter) ([]models.Announcement, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	out := []models.Announcement{}
	for _, a := range f.m.announcements {
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		if filter.IsActive != nil && a.IsActive != *filter.IsActive {
			continue
		}
		if filter.ForYear != 0 && a.TargetYear != nil && *a.TargetYear != filter.ForYear {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsPinned != out[j].IsPinned {
			return out[i].IsPinned
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && uint64(len(out)) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f fakeAnnouncements) IncrementViews(_ context.Context, id int64) (int, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	a, ok := f.m.announcements[id]
	if !ok {
		return 0, apperrors.ErrAnnouncementNotFound
	}
	a.ViewCount++
	f.m.announcements[id] = a
	return a.ViewCount, nil
}

func (f fakeAnnouncements) Stats(_ context.Context) (models.AnnouncementStats, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	var s models.AnnouncementStats
	for _, a := range f.m.announcements {
		s.Total++
		if a.IsActive {
			s.Active++
		}
		switch a.Type {
		case models.AnnouncementAcademic:
			s.Academic++
		case models.AnnouncementCareer:
			s.Career++
		}
	}
	return s, nil
}

func (m *memDB) stores() Stores {
	return Stores{
		Accounts:      fakeAccounts{m},
		Admins:        fakeAdmins{m},
		Achievements:  fakeAchievements{m},
		ERP:           fakeERP{m},
		Announcements: fakeAnnouncements{m},
	}
}

// recordingNotifier captures dispatched messages instead of sending them.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (r *recordingNotifier) Dispatch(msgs ...notify.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msgs...)
}

func (r *recordingNotifier) messages() []notify.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Message(nil), r.sent...)
}

// memStorage records saved and deleted references.
type memStorage struct {
	mu      sync.Mutex
	saved   []string
	deleted []string
}

func (s *memStorage) Save(fh *multipart.FileHeader, dir string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := "/uploads/" + dir + "/" + fh.Filename
	s.saved = append(s.saved, ref)
	return ref, nil
}

func (s *memStorage) Delete(ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, ref)
	return nil
}

var (
	_ repositories.AccountStore      = fakeAccounts{}
	_ repositories.AdminStore        = fakeAdmins{}
	_ repositories.AchievementStore  = fakeAchievements{}
	_ repositories.ERPStore          = fakeERP{}
	_ repositories.AnnouncementStore = fakeAnnouncements{}
	_ db.Transactor                  = (*memDB)(nil)
)
