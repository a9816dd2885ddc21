package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/achievement-portal/internal/app/auth"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/app/workflow"
	"github.com/yigit/achievement-portal/internal/pkg/apperrors"
)

type erpFixture struct {
	db      *memDB
	svc     ERPService
	student *models.Account
	admin   auth.Actor
}

func newERPFixture(policy workflow.RejectPolicy) *erpFixture {
	m := newMemDB()
	stores := m.stores()
	ledger := NewLedgerService(stores.Accounts)
	return &erpFixture{
		db:      m,
		svc:     NewERPService(stores.ERP, stores.Accounts, ledger, m, &recordingNotifier{}, Options{RejectPolicy: policy}),
		student: m.addAccount("Meera", models.YearII, models.DeptEEE, 0),
		admin:   auth.Administrator(7),
	}
}

func strPtr(s string) *string { return &s }

func TestERPDraftIsCreatedOnFirstAccess(t *testing.T) {
	f := newERPFixture(workflow.RejectPolicy{})
	ctx := context.Background()

	rec, err := f.svc.GetMine(ctx, auth.Student(f.student.ID))
	require.NoError(t, err)
	assert.Equal(t, models.ERPDraft, rec.Status)
	assert.Equal(t, models.PlaceholderPhone, rec.Profile.PhoneNumber)

	again, err := f.svc.GetMine(ctx, auth.Student(f.student.ID))
	require.NoError(t, err)
	assert.Equal(t, rec.ID, again.ID)
}

func TestERPSubmitRequiresCompleteProfile(t *testing.T) {
	f := newERPFixture(workflow.RejectPolicy{})
	ctx := context.Background()
	me := auth.Student(f.student.ID)

	_, err := f.svc.GetMine(ctx, me)
	require.NoError(t, err)

	_, err = f.svc.SubmitMine(ctx, me)
	assert.ErrorIs(t, err, apperrors.ErrERPIncomplete)

	semesters := []models.Semester{
		{SemesterName: "1-1", Year: 1, SemesterNumber: 1, SGPA: 8.1},
		{SemesterName: "1-2", Year: 1, SemesterNumber: 2, SGPA: 8.6},
	}
	updated, err := f.svc.UpdateMine(ctx, me, workflow.ERPPatch{
		PhoneNumber: strPtr("9876543210"),
		Semesters:   &semesters,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.OverallCGPA)
	assert.InDelta(t, 8.35, *updated.OverallCGPA, 0.001)

	submitted, err := f.svc.SubmitMine(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, models.ERPSubmitted, submitted.Status)
	assert.NotNil(t, submitted.SubmittedAt)
}

func TestERPUpdateRejectsInvalidPatch(t *testing.T) {
	f := newERPFixture(workflow.RejectPolicy{})
	_, err := f.svc.UpdateMine(context.Background(), auth.Student(f.student.ID), workflow.ERPPatch{
		PhoneNumber: strPtr("12ab"),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestERPVerifyCreditsAndLocks(t *testing.T) {
	f := newERPFixture(workflow.RejectPolicy{})
	ctx := context.Background()
	rec := f.db.addERP(f.student.ID, models.ERPSubmitted, 0)

	decision, err := f.svc.Verify(ctx, f.admin, rec.ID, 30, "complete")
	require.NoError(t, err)
	assert.Equal(t, models.ERPVerified, decision.ERP.Status)
	require.NotNil(t, decision.StudentPoints)
	assert.Equal(t, 30, *decision.StudentPoints)
	assert.Equal(t, 30, f.db.points(f.student.ID))

	_, err = f.svc.Verify(ctx, f.admin, rec.ID, 30, "")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyVerified)

	_, err = f.svc.UpdateMine(ctx, auth.Student(f.student.ID), workflow.ERPPatch{FullName: strPtr("Meera K")})
	assert.ErrorIs(t, err, apperrors.ErrERPLocked)
}

func TestERPVerifyRequiresSubmission(t *testing.T) {
	f := newERPFixture(workflow.RejectPolicy{})
	rec := f.db.addERP(f.student.ID, models.ERPDraft, 0)

	_, err := f.svc.Verify(context.Background(), f.admin, rec.ID, 10, "")
	assert.ErrorIs(t, err, apperrors.ErrERPNotSubmitted)
	assert.Equal(t, 0, f.db.points(f.student.ID))
}

func TestERPSetPointsMovesTotalByDifference(t *testing.T) {
	f := newERPFixture(workflow.RejectPolicy{})
	ctx := context.Background()
	rec := f.db.addERP(f.student.ID, models.ERPSubmitted, 0)
	_, err := f.svc.Verify(ctx, f.admin, rec.ID, 30, "")
	require.NoError(t, err)

	decision, err := f.svc.SetPoints(ctx, f.admin, rec.ID, 45)
	require.NoError(t, err)
	assert.Equal(t, 45, decision.ERP.ERPPoints)
	assert.Equal(t, 45, f.db.points(f.student.ID))

	decision, err = f.svc.SetPoints(ctx, f.admin, rec.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, *decision.StudentPoints)
}

func TestERPSetPointsRequiresVerified(t *testing.T) {
	f := newERPFixture(workflow.RejectPolicy{})
	rec := f.db.addERP(f.student.ID, models.ERPSubmitted, 0)

	_, err := f.svc.SetPoints(context.Background(), f.admin, rec.ID, 10)
	assert.ErrorIs(t, err, apperrors.ErrERPNotVerified)
}

func TestERPRejectAfterVerify(t *testing.T) {
	t.Run("keeps points by default", func(t *testing.T) {
		f := newERPFixture(workflow.RejectPolicy{})
		ctx := context.Background()
		rec := f.db.addERP(f.student.ID, models.ERPSubmitted, 0)
		_, err := f.svc.Verify(ctx, f.admin, rec.ID, 20, "")
		require.NoError(t, err)

		decision, err := f.svc.Reject(ctx, f.admin, rec.ID, "wrong marks")
		require.NoError(t, err)
		assert.Equal(t, models.ERPRejected, decision.ERP.Status)
		assert.Nil(t, decision.StudentPoints)
		assert.Equal(t, 20, f.db.points(f.student.ID))
	})

	t.Run("reverses under policy", func(t *testing.T) {
		f := newERPFixture(workflow.RejectPolicy{ReversePoints: true})
		ctx := context.Background()
		rec := f.db.addERP(f.student.ID, models.ERPSubmitted, 0)
		_, err := f.svc.Verify(ctx, f.admin, rec.ID, 20, "")
		require.NoError(t, err)

		decision, err := f.svc.Reject(ctx, f.admin, rec.ID, "wrong marks")
		require.NoError(t, err)
		require.NotNil(t, decision.StudentPoints)
		assert.Equal(t, 0, *decision.StudentPoints)
		assert.Equal(t, 0, decision.ERP.ERPPoints)
	})
}

func TestERPAdminListValidatesStatus(t *testing.T) {
	f := newERPFixture(workflow.RejectPolicy{})
	f.db.addERP(f.student.ID, models.ERPSubmitted, 0)

	first := models.PageRequest{Page: 1, Size: 10}
	list, page, err := f.svc.List(context.Background(), f.admin, models.ERPSubmitted, first)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, int64(1), page.TotalItems)

	_, _, err = f.svc.List(context.Background(), f.admin, models.ERPStatus("archived"), first)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, _, err = f.svc.List(context.Background(), auth.Student(f.student.ID), "", first)
	assert.ErrorIs(t, err, apperrors.ErrAdminOnly)
}
