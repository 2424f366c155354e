package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharath018/idea-factory-backend/config"
	"github.com/sharath018/idea-factory-backend/database"
	"github.com/sharath018/idea-factory-backend/internal/notification"
	"github.com/sharath018/idea-factory-backend/internal/testutil"
	"github.com/sharath018/idea-factory-backend/utils"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t, database.Models()...)
	log := utils.NopLogger()
	cfg := &config.Config{
		JWTAccessSecret:      "access-secret",
		JWTRefreshSecret:     "refresh-secret",
		JWTAccessTTLHours:    1,
		JWTRefreshTTLHours:   24,
		AdminSessionTTLHours: 2,
		DefaultAdminEmail:    "admin@10000ideas.com",
		DefaultAdminUsername: "admin",
		DefaultAdminPassword: "admin123",
		CacheTTLMinutes:      5,
		MaxUploadMB:          1,
		RateLimitPerMinute:   1000,
	}
	svc := NewServices(cfg, Infra{
		DB:        db,
		Cache:     utils.NewMemoryCache(),
		Publisher: notification.NopPublisher{},
		Mailer:    utils.NewMailer(cfg, log),
		Log:       log,
	})
	require.NoError(t, svc.Auth.SeedDefaultAdmin(context.Background()))

	r := gin.New()
	Setup(r, cfg, svc)
	return &testServer{t: t, router: r}
}

func (s *testServer) do(method, path, token string, body io.Reader, contentType string) (*httptest.ResponseRecorder, map[string]interface{}) {
	s.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func (s *testServer) postJSON(path, token string, payload interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	raw, err := json.Marshal(payload)
	require.NoError(s.t, err)
	return s.do(http.MethodPost, path, token, bytes.NewReader(raw), "application/json")
}

func (s *testServer) adminToken() string {
	w, body := s.postJSON("/api/auth/login", "", map[string]string{"identifier": "admin", "password": "admin123"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	return body["accessToken"].(string)
}

func TestPublicAndProtectedRoutes(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(http.MethodGet, "/healthz", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodGet, "/api/ideas", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodGet, "/api/main-categories", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, body := s.do(http.MethodGet, "/admin/upload-history", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, body["success"])

	w, _ = s.do(http.MethodGet, "/api/dashboard", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodGet, "/api/nope", "", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserTokenCannotReachAdminRoutes(t *testing.T) {
	s := newTestServer(t)

	w, body := s.postJSON("/api/users/signup", "", map[string]string{
		"fullName": "Asha Rao", "email": "asha@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token := body["accessToken"].(string)

	w, _ = s.do(http.MethodGet, "/api/dashboard", token, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodGet, "/admin/dashboard", token, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSecondAdminLoginRevokesFirstSession(t *testing.T) {
	s := newTestServer(t)

	first := s.adminToken()
	w, _ := s.do(http.MethodGet, "/admin/profile", first, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	second := s.adminToken()
	w, _ = s.do(http.MethodGet, "/admin/profile", first, nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = s.do(http.MethodGet, "/admin/profile", second, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUploadThenDeleteBatch(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "ideas.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("title,investmentNeeded\nWorm compost,25000\nDairy unit,300000\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w, body := s.do(http.MethodPost, "/admin/upload-ideas", token, &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 2, body["successCount"])
	batchID := body["batchId"].(string)

	w, _ = s.do(http.MethodGet, "/api/ideas", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var ideas []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ideas))
	assert.Len(t, ideas, 2)

	w, body = s.do(http.MethodDelete, "/admin/upload-history/"+batchID, token, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 2, body["deletedIdeas"])

	w, _ = s.do(http.MethodGet, "/api/ideas", "", nil, "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ideas))
	assert.Empty(t, ideas)

	w, _ = s.do(http.MethodGet, "/admin/upload-history/"+batchID, token, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
