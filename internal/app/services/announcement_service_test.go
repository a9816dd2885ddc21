package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/achievement-portal/internal/app/auth"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/app/models/dto"
	"github.com/yigit/achievement-portal/internal/pkg/apperrors"
	"github.com/yigit/achievement-portal/internal/pkg/assessment"
	"github.com/yigit/achievement-portal/internal/pkg/notify"
)

func intPtr(n int) *int { return &n }

func TestCreateAnnouncementNotifiesTargetYear(t *testing.T) {
	m := newMemDB()
	third := m.addAccount("Asha", models.YearIII, models.DeptCSE, 0)
	m.addAccount("Bala", models.YearI, models.DeptCSE, 0)
	n := &recordingNotifier{}
	s := m.stores()
	svc := NewAnnouncementService(s.Announcements, s.Accounts, n, "https://portal.example.edu")

	created, err := svc.Create(context.Background(), auth.Administrator(3), &dto.AnnouncementRequest{
		Title:       "Campus drive",
		Description: "Apply **now**",
		Type:        models.AnnouncementCareer,
		Company:     "Acme",
		TargetYear:  intPtr(3),
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.Equal(t, int64(3), created.PostedBy)

	msgs := n.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, notify.KindAnnouncement, msgs[0].Kind)
	assert.Equal(t, third.Email, msgs[0].To.Email)
	assert.Contains(t, msgs[0].Subject, "Career Opportunity: Campus drive")
}

func TestInactiveAnnouncementIsNotBroadcast(t *testing.T) {
	m := newMemDB()
	m.addAccount("Asha", models.YearIII, models.DeptCSE, 0)
	n := &recordingNotifier{}
	s := m.stores()
	svc := NewAnnouncementService(s.Announcements, s.Accounts, n, "")

	inactive := false
	_, err := svc.Create(context.Background(), auth.Administrator(1), &dto.AnnouncementRequest{
		Title: "Draft", Description: "later", Type: models.AnnouncementAcademic, IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Empty(t, n.messages())
}

func TestActiveAnnouncementsForStudent(t *testing.T) {
	m := newMemDB()
	student := m.addAccount("Asha", models.YearII, models.DeptCSE, 0)
	s := m.stores()
	svc := NewAnnouncementService(s.Announcements, s.Accounts, nil, "")
	admin := auth.Administrator(1)
	ctx := context.Background()

	create := func(title string, year *int, pinned bool) *models.Announcement {
		a, err := svc.Create(ctx, admin, &dto.AnnouncementRequest{
			Title: title, Description: "d", Type: models.AnnouncementAcademic, TargetYear: year, IsPinned: pinned,
		})
		require.NoError(t, err)
		return a
	}
	create("everyone", nil, false)
	create("second years", intPtr(2), false)
	create("final years", intPtr(4), false)
	pinned := create("exam schedule", nil, true)

	list, err := svc.Active(ctx, auth.Student(student.ID), "")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, pinned.ID, list[0].ID)
	for _, a := range list {
		assert.NotEqual(t, "final years", a.Title)
	}

	views, err := svc.RecordView(ctx, auth.Student(student.ID), pinned.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, views)

	stats, err := svc.Stats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 4, stats.Academic)
}

func TestUpdateAndDeleteAnnouncement(t *testing.T) {
	m := newMemDB()
	s := m.stores()
	svc := NewAnnouncementService(s.Announcements, s.Accounts, nil, "")
	admin := auth.Administrator(1)
	ctx := context.Background()

	a, err := svc.Create(ctx, admin, &dto.AnnouncementRequest{Title: "Old", Description: "d", Type: models.AnnouncementAcademic})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, admin, a.ID, &dto.AnnouncementRequest{Title: "New", Description: "d", Type: models.AnnouncementAcademic})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.True(t, updated.IsActive)

	_, err = svc.Update(ctx, admin, 999, &dto.AnnouncementRequest{Title: "x", Description: "d", Type: models.AnnouncementAcademic})
	assert.ErrorIs(t, err, apperrors.ErrAnnouncementNotFound)

	require.NoError(t, svc.Delete(ctx, admin, a.ID))
	assert.ErrorIs(t, svc.Delete(ctx, admin, a.ID), apperrors.ErrResourceNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, auth.Student(2), a.ID), apperrors.ErrAdminOnly)
}

func TestAssessmentIsAdminOnly(t *testing.T) {
	svc := NewAssessmentService()
	in := assessment.Input{Title: "National Hackathon Winner", Category: "Competition", Level: "National"}

	_, err := svc.Analyze(context.Background(), auth.Student(1), in)
	assert.ErrorIs(t, err, apperrors.ErrAdminOnly)

	res, err := svc.Analyze(context.Background(), auth.Administrator(1), in)
	require.NoError(t, err)
	assert.Equal(t, assessment.Assess(in), *res)
}
