package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"quizmaster_backend/internal/model"
	"quizmaster_backend/internal/repository"
	"quizmaster_backend/internal/util"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

func newAuthRouter(sessions repository.SessionBlacklist) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(testSecret, sessions), func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		util.Success(c, gin.H{"userId": claims.UserID})
	})
	return r
}

func issueToken(t *testing.T, secret string, ttl time.Duration) (string, *util.Claims) {
	t.Helper()
	user := &model.User{Username: "alice"}
	user.ID = "user-1"
	token, claims, err := util.GenerateJWT(user, secret, ttl)
	require.NoError(t, err)
	return token, claims
}

func call(r *gin.Engine, prepare func(req *http.Request)) (int, util.Response) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if prepare != nil {
		prepare(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp util.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w.Code, resp
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	r := newAuthRouter(repository.NewMemorySessionRepository())

	code, resp := call(r, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "authentication required", resp.Message)
}

func TestAuthMiddlewareInvalidTokens(t *testing.T) {
	r := newAuthRouter(repository.NewMemorySessionRepository())
	wrongSecret, _ := issueToken(t, "another-secret", time.Hour)
	expired, _ := issueToken(t, testSecret, -time.Minute)

	for name, token := range map[string]string{
		"garbage":      "not-a-jwt",
		"wrong secret": wrongSecret,
		"expired":      expired,
	} {
		t.Run(name, func(t *testing.T) {
			code, resp := call(r, func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+token)
			})
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.Equal(t, "invalid or expired session", resp.Message)
		})
	}
}

func TestAuthMiddlewareAcceptsCookieAndHeader(t *testing.T) {
	r := newAuthRouter(repository.NewMemorySessionRepository())
	token, _ := issueToken(t, testSecret, time.Hour)

	code, _ := call(r, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: util.SessionCookieName, Value: token})
	})
	assert.Equal(t, http.StatusOK, code)

	code, resp := call(r, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "user-1", resp.Data.(map[string]interface{})["userId"])
}

func TestAuthMiddlewareRejectsRevokedSession(t *testing.T) {
	sessions := repository.NewMemorySessionRepository()
	r := newAuthRouter(sessions)
	token, claims := issueToken(t, testSecret, time.Hour)

	require.NoError(t, sessions.Revoke(context.Background(), claims.ID, time.Hour))

	code, resp := call(r, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid or expired session", resp.Message)
}
