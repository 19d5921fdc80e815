package service

import (
	"context"
	"quizmaster_backend/internal/config"
	"quizmaster_backend/internal/model"
	"quizmaster_backend/internal/repository"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	Type string
	Data interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *fakePublisher) Publish(_ context.Context, eventType string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Type: eventType, Data: data})
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	store    *repository.Store
	events   *fakePublisher
	auth     *AuthService
	users    *UserService
	quizzes  *QuizService
	attempts *AttemptService
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		JWT:    config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repository.NewMemoryStore()
	events := &fakePublisher{}
	return &testEnv{
		store:    store,
		events:   events,
		auth:     NewAuthService(store.Users, repository.NewMemorySessionRepository(), testConfig()),
		users:    NewUserService(store.Users, store.Quizzes, events),
		quizzes:  NewQuizService(store.Quizzes, store.Users, events),
		attempts: NewAttemptService(store.Attempts, store.Quizzes, store.Users, events),
	}
}

func (e *testEnv) register(t *testing.T, username string) *model.User {
	t.Helper()
	user, err := e.auth.Register(context.Background(), &RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	return user
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

// sampleQuiz 三道题，分值 1、2、3
func sampleQuiz() *CreateQuizRequest {
	return &CreateQuizRequest{
		Title:       "Capitals",
		Description: "European capitals",
		Questions: []QuestionRequest{
			{Question: "Capital of France?", Options: []string{"Paris", "Lyon", "Nice"}, Answer: "Paris", Marks: 1},
			{Question: "Capital of Italy?", Options: []string{"Milan", "Rome"}, Answer: "Rome", Marks: 2},
			{Question: "Capital of Spain?", Options: []string{"Madrid", "Seville", "Valencia"}, Answer: "Madrid", Marks: 3},
		},
	}
}

func (e *testEnv) createQuiz(t *testing.T, creatorID string, req *CreateQuizRequest) *model.Quiz {
	t.Helper()
	quiz, err := e.quizzes.CreateQuiz(context.Background(), creatorID, req)
	require.NoError(t, err)
	return quiz
}
