package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/achievement-portal/internal/app/auth"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/app/models/dto"
	"github.com/yigit/achievement-portal/internal/app/ranking"
	"github.com/yigit/achievement-portal/internal/app/services"
	"github.com/yigit/achievement-portal/internal/app/workflow"
	"github.com/yigit/achievement-portal/internal/middleware"
	"github.com/yigit/achievement-portal/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Unimplemented methods of the embedded interfaces panic when called.

type stubReview struct {
	services.ReviewService
	approved []int
	rejected []string
}

func (s *stubReview) Approve(_ context.Context, _ auth.Actor, id int64, points int, _ string) (*models.Achievement, error) {
	if id == 404 {
		return nil, apperrors.ErrAchievementNotFound
	}
	s.approved = append(s.approved, points)
	return &models.Achievement{ID: id, Status: models.AchievementApproved, Points: points}, nil
}

func (s *stubReview) Reject(_ context.Context, _ auth.Actor, id int64, note string) (*models.Achievement, error) {
	s.rejected = append(s.rejected, note)
	return &models.Achievement{ID: id, Status: models.AchievementRejected, AdminNote: note}, nil
}

type stubLedger struct {
	services.LedgerService
}

func (stubLedger) ManualAdjust(_ context.Context, _ auth.Actor, _ int64, delta int, _ string) (int, error) {
	return 50 + delta, nil
}

type stubRanking struct {
	services.RankingService
	limit int
}

func (s *stubRanking) LeaderboardN(_ context.Context, _ models.AccountFilter, limit int) ([]ranking.Entry, error) {
	s.limit = limit
	return []ranking.Entry{{Position: 1, AccountID: 1, Name: "Asha", TotalPoints: 90}}, nil
}

func (s *stubRanking) RankOf(_ context.Context, actor auth.Actor, _ models.AccountFilter) (ranking.Standing, error) {
	return ranking.Standing{Rank: 2, TotalUsers: 4, Percentile: 75, Points: int(actor.ID)}, nil
}

func as(actor auth.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextActor, actor)
		c.Next()
	}
}

func send(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) dto.APIResponse {
	t.Helper()
	resp := dto.APIResponse{Data: data}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func reviewRouter(review *stubReview) *gin.Engine {
	c := NewAchievementController(nil, review, stubLedger{}, zerolog.Nop())
	r := gin.New()
	admin := r.Group("", as(auth.Administrator(1)))
	admin.PUT("/achievements/:id/verify", c.Verify)
	admin.PUT("/students/:id/points", c.AdjustPoints)
	r.PUT("/anonymous/:id/verify", c.Verify)
	return r
}

func TestVerifyDispatchesOnAction(t *testing.T) {
	review := &stubReview{}
	r := reviewRouter(review)

	w := send(r, http.MethodPut, "/achievements/7/verify", map[string]interface{}{"action": "approve", "points": 30})
	require.Equal(t, http.StatusOK, w.Code)
	var a models.Achievement
	resp := decode(t, w, &a)
	assert.True(t, resp.Success)
	assert.Equal(t, models.AchievementApproved, a.Status)
	assert.Equal(t, []int{30}, review.approved)

	w = send(r, http.MethodPut, "/achievements/7/verify", map[string]interface{}{"action": "reject", "adminNote": "blurry"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"blurry"}, review.rejected)
}

func TestVerifyRejectsBadInput(t *testing.T) {
	r := reviewRouter(&stubReview{})

	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPut, "/achievements/7/verify", map[string]interface{}{"action": "maybe"}).Code)
	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPut, "/achievements/abc/verify", map[string]interface{}{"action": "approve"}).Code)
	assert.Equal(t, http.StatusNotFound, send(r, http.MethodPut, "/achievements/404/verify", map[string]interface{}{"action": "approve"}).Code)
	assert.Equal(t, http.StatusUnauthorized, send(r, http.MethodPut, "/anonymous/7/verify", map[string]interface{}{"action": "approve"}).Code)
}

func TestAdjustPoints(t *testing.T) {
	r := reviewRouter(&stubReview{})

	w := send(r, http.MethodPut, "/students/3/points", map[string]interface{}{"delta": -20, "reason": "duplicate"})
	require.Equal(t, http.StatusOK, w.Code)
	var pts dto.PointsResponse
	decode(t, w, &pts)
	assert.Equal(t, dto.PointsResponse{StudentID: 3, TotalPoints: 30}, pts)

	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPut, "/students/3/points", map[string]interface{}{"delta": 0}).Code)
}

func TestLeaderboardExport(t *testing.T) {
	rk := &stubRanking{}
	c := NewLeaderboardController(rk, zerolog.Nop())
	r := gin.New()
	r.GET("/export", c.Export)

	w := send(r, http.MethodGet, "/export?department=CSE&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, w.Body.Len())
	assert.Equal(t, 10, rk.limit)

	send(r, http.MethodGet, "/export?limit=999999", nil)
	assert.Equal(t, ExportLimit, rk.limit)
}

func TestMyRank(t *testing.T) {
	c := NewLeaderboardController(&stubRanking{}, zerolog.Nop())
	r := gin.New()
	r.GET("/me", as(auth.Student(42)), c.MyRank)

	w := send(r, http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var s ranking.Standing
	decode(t, w, &s)
	assert.Equal(t, ranking.Standing{Rank: 2, TotalUsers: 4, Percentile: 75, Points: 42}, s)
}

type stubERP struct {
	services.ERPService
	updates int
}

func (s *stubERP) UpdateMine(_ context.Context, _ auth.Actor, patch workflow.ERPPatch) (*models.ERPRecord, error) {
	s.updates++
	rec := &models.ERPRecord{Status: models.ERPDraft, Profile: models.NewDraftProfile()}
	rec.Profile = patch.Apply(rec.Profile)
	return rec, nil
}

func TestUpdateERPReportsFieldErrors(t *testing.T) {
	erp := &stubERP{}
	c := NewERPController(erp, zerolog.Nop())
	r := gin.New()
	r.PUT("/erp/me", as(auth.Student(3)), c.UpdateMine)

	w := send(r, http.MethodPut, "/erp/me", map[string]interface{}{
		"currentYear":    9,
		"sslcPercentage": 250,
		"semesters":      []map[string]interface{}{{"semesterName": "1-1", "year": 1, "semesterNumber": 1, "sgpa": 42}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrorCodeValidationFailed, resp.Error.Code)
	details, ok := resp.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, details, "CurrentYear")
	assert.Contains(t, details, "SSLCPercentage")
	assert.Contains(t, details, "Semesters[0].SGPA")
	assert.Zero(t, erp.updates)

	w = send(r, http.MethodPut, "/erp/me", map[string]interface{}{"phoneNumber": "9876543210"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, erp.updates)
}

type stubActivity struct {
	services.ActivityService
	page models.PageRequest
}

func (s *stubActivity) Students(_ context.Context, _ auth.Actor, _ models.AccountFilter, page models.PageRequest) ([]models.Account, dto.PaginationInfo, error) {
	s.page = page
	return []models.Account{{ID: 1, Name: "Asha"}}, dto.PaginationInfo{CurrentPage: page.Page, TotalPages: 4, PageSize: page.Size, TotalItems: 31}, nil
}

func TestAdminStudentsIsPaged(t *testing.T) {
	activity := &stubActivity{}
	c := NewAdminController(activity, nil, zerolog.Nop())
	r := gin.New()
	r.GET("/admin/students", as(auth.Administrator(1)), c.Students)

	w := send(r, http.MethodGet, "/admin/students?page=2&size=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.PageRequest{Page: 2, Size: 10}, activity.page)

	var body struct {
		Count      int                `json:"count"`
		Pagination dto.PaginationInfo `json:"pagination"`
	}
	decode(t, w, &body)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, int64(31), body.Pagination.TotalItems)
	assert.Equal(t, 2, body.Pagination.CurrentPage)
}
