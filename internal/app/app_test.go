package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"quizmaster_backend/internal/config"
	"quizmaster_backend/internal/repository"
	"quizmaster_backend/internal/service"
	"quizmaster_backend/internal/util"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct{}

func (stubGenerator) Name() string      { return "stub" }
func (stubGenerator) SupportsPDF() bool { return false }
func (stubGenerator) Generate(context.Context, string, []service.SourceFile) (string, error) {
	return `{"title":"Stub","description":"","questions":[]}`, nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server:    config.ServerConfig{Mode: "test"},
		Database:  config.DatabaseConfig{Driver: "memory"},
		JWT:       config.JWTConfig{Secret: "integration-secret", ExpireTime: time.Hour},
		Storage:   config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
		AI:        config.AIConfig{Provider: "openai", TimeoutSeconds: 5},
		RateLimit: config.RateLimitConfig{MaxRequests: 10000, WindowMinutes: 1},
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router := NewRouter(ctx, cfg, Dependencies{
		Store:     repository.NewMemoryStore(),
		Generator: stubGenerator{},
	})
	return &testServer{t: t, router: router}
}

func (s *testServer) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func (s *testServer) signup(username string) string {
	s.t.Helper()
	w, _ := s.do(http.MethodPost, "/api/user/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(s.t, http.StatusCreated, w.Code)

	w, env := s.do(http.MethodPost, "/api/user/login", "", gin.H{
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(s.t, http.StatusOK, w.Code)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == util.SessionCookieName {
			cookie = c
		}
	}
	require.NotNil(s.t, cookie)
	assert.True(s.t, cookie.HttpOnly)

	login := decode[struct {
		Token string `json:"token"`
	}](s.t, env.Data)
	assert.Equal(s.t, cookie.Value, login.Token)
	return login.Token
}

func quizBody(public bool) gin.H {
	return gin.H{
		"title":    "Capitals",
		"isPublic": public,
		"questions": []gin.H{
			{"question": "Capital of France?", "options": []string{"Paris", "Lyon"}, "answer": "Paris", "marks": 2},
			{"question": "Capital of Italy?", "options": []string{"Milan", "Rome"}, "answer": "Rome", "marks": 3},
		},
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/health", "/api/health"} {
		w, env := s.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, http.StatusOK, env.Code)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodGet, "/api/user/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "authentication required", env.Message)

	w, env = s.do(http.MethodGet, "/api/quiz/public/get", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid or expired session", env.Message)
}

func TestQuizAttemptFlow(t *testing.T) {
	s := newTestServer(t)
	owner := s.signup("owner")
	player := s.signup("player")

	w, env := s.do(http.MethodPost, "/api/quiz", owner, quizBody(true))
	require.Equal(t, http.StatusOK, w.Code)
	quizID := decode[struct {
		ID string `json:"id"`
	}](t, env.Data).ID
	require.NotEmpty(t, quizID)

	w, env = s.do(http.MethodGet, "/api/quiz/"+quizID, player, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, string(env.Data), `"answer"`)

	w, env = s.do(http.MethodPost, "/api/quiz/attempt/create/"+quizID, player, nil)
	require.Equal(t, http.StatusOK, w.Code)
	attemptID := decode[struct {
		CreatedAttempt struct {
			ID string `json:"id"`
		} `json:"createdAttempt"`
	}](t, env.Data).CreatedAttempt.ID
	require.NotEmpty(t, attemptID)

	w, _ = s.do(http.MethodPatch, "/api/quiz/attempt/save/question/"+attemptID, player, gin.H{
		"questionNumber": 1, "answer": "Paris",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodPatch, "/api/quiz/attempt/save/question/"+attemptID, player, gin.H{
		"questionNumber": 2, "answer": "Venice",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPatch, "/api/quiz/attempt/save/question/"+attemptID, owner, gin.H{
		"questionNumber": 2, "answer": "Rome",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = s.do(http.MethodPatch, "/api/quiz/attempt/save/"+attemptID, player, nil)
	require.Equal(t, http.StatusOK, w.Code)
	total := decode[struct {
		TotalMarks int `json:"totalMarks"`
	}](t, env.Data).TotalMarks
	assert.Equal(t, 2, total)

	w, _ = s.do(http.MethodPatch, "/api/quiz/attempt/save/"+attemptID, player, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = s.do(http.MethodGet, "/api/quiz/attempt/performance/"+attemptID, player, nil)
	require.Equal(t, http.StatusOK, w.Code)
	review := decode[service.AttemptReview](t, env.Data)
	assert.Equal(t, 2, review.TotalMarks)
	assert.Equal(t, 5, review.MaxMarks)

	w, env = s.do(http.MethodGet, "/api/quiz/attempt/user/all", player, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), attemptID)
}

func TestSubmitInOneStep(t *testing.T) {
	s := newTestServer(t)
	owner := s.signup("owner")
	player := s.signup("player")

	_, env := s.do(http.MethodPost, "/api/quiz", owner, quizBody(true))
	quizID := decode[struct {
		ID string `json:"id"`
	}](t, env.Data).ID

	w, _ := s.do(http.MethodPost, "/api/quiz/attempt/"+quizID, player, gin.H{"answers": []string{"Paris"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodPost, "/api/quiz/attempt/"+quizID, player, gin.H{"answers": []string{"Paris", "Rome"}})
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[service.SubmitResult](t, env.Data)
	assert.Equal(t, 5, result.TotalMarks)
}

func TestPrivateQuizIsHidden(t *testing.T) {
	s := newTestServer(t)
	owner := s.signup("owner")
	player := s.signup("player")

	_, env := s.do(http.MethodPost, "/api/quiz", owner, quizBody(false))
	quizID := decode[struct {
		ID string `json:"id"`
	}](t, env.Data).ID

	w, env := s.do(http.MethodGet, "/api/quiz/"+quizID, player, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Resource not found", env.Message)

	w, _ = s.do(http.MethodGet, "/api/quiz/"+quizID, owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodDelete, "/api/quiz/"+quizID, player, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("owner")

	w, _ := s.do(http.MethodPost, "/api/user/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodGet, "/api/user/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
