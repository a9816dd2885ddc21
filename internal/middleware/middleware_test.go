package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/app/models/dto"
	"github.com/yigit/achievement-portal/internal/pkg/apperrors"
	jwtauth "github.com/yigit/achievement-portal/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWT() *jwtauth.JWTService {
	return jwtauth.NewJWTService(jwtauth.JWTConfig{SecretKey: "secret", AccessTokenExp: time.Hour, TokenIssuer: "test"})
}

func protectedRouter(jwt *jwtauth.JWTService) *gin.Engine {
	m := NewAuthMiddleware(jwt)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/me", m.JWTAuth(), func(c *gin.Context) {
		actor, _ := ActorFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "role": actor.Role})
	})
	r.GET("/admin", m.JWTAuth(), m.RoleRequired(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func doRequest(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	jwt := newJWT()
	r := protectedRouter(jwt)

	w := doRequest(r, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))

	w = doRequest(r, "/me", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, _, err := jwt.GenerateToken(42, "21CS001", models.RoleStudent)
	require.NoError(t, err)
	w = doRequest(r, "/me", token)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		ID   int64  `json:"id"`
		Role string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(42), body.ID)
	assert.Equal(t, string(models.RoleStudent), body.Role)
}

func TestRoleRequired(t *testing.T) {
	jwt := newJWT()
	r := protectedRouter(jwt)

	student, _, err := jwt.GenerateToken(1, "21CS001", models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, doRequest(r, "/admin", student).Code)

	admin, _, err := jwt.GenerateToken(1, "root", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, doRequest(r, "/admin", admin).Code)
}

func TestHandleAPIErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   dto.ErrorCode
	}{
		{apperrors.ErrAchievementNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{apperrors.ErrAlreadyApproved, http.StatusConflict, dto.ErrorCodeConflict},
		{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{apperrors.ErrAdminOnly, http.StatusForbidden, dto.ErrorCodeForbidden},
		{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{fmt.Errorf("%w: missing semesters", apperrors.ErrERPIncomplete), http.StatusConflict, dto.ErrorCodeConflict},
		{apperrors.NewValidationError("bad", map[string]interface{}{"delta": 0}), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			r := gin.New()
			r.GET("/", func(c *gin.Context) { HandleAPIError(c, tc.err) })

			w := doRequest(r, "/", "")
			assert.Equal(t, tc.status, w.Code)

			var resp dto.APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.code, resp.Error.Code)
		})
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(), Metrics())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
}

func TestTimeoutSetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(time.Second))
	r.GET("/", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": ok})
	})

	w := doRequest(r, "/", "")
	assert.JSONEq(t, `{"deadline":true}`, w.Body.String())
}
