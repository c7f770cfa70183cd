package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"todo-app/internal/auth"
	"todo-app/internal/repository"
	"todo-app/internal/service"
)

const testSecret = "test-secret"

type testServer struct {
	*httptest.Server
	clock *clock.Mock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	clk := clock.NewMock()
	clk.Add(20000 * 24 * time.Hour)

	db, err := repository.NewDB(repository.Options{
		Driver: repository.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "test.db"),
		Clock:  clk,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	verifier, err := auth.NewVerifier(auth.VerifierConfig{HMACSecret: testSecret})
	require.NoError(t, err)

	users := repository.NewUserRepository(db)
	tags := repository.NewTagRepository(db)
	categories := repository.NewCategoryRepository(db)
	log := zaptest.NewLogger(t)

	categorySvc := service.NewCategoryService(categories, log)
	require.NoError(t, categorySvc.EnsureDefaults(context.Background(), service.DefaultCategories))

	h := NewHandler(Config{
		Log:            log,
		Verifier:       verifier,
		Resolver:       auth.NewResolver(users),
		Tasks:          service.NewTaskService(repository.NewTaskRepository(db), tags),
		Tags:           service.NewTagService(tags),
		Categories:     categorySvc,
		Profiles:       service.NewProfileService(users),
		AllowedOrigins: []string{"http://localhost:3000"},
		Registry:       prometheus.NewRegistry(),
	})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, clock: clk}
}

// token signs a short-lived token for subject.
func token(t *testing.T, subject string) string {
	t.Helper()
	tok, err := auth.SignHS256(testSecret, auth.Claims{Subject: subject, Username: subject}, "", time.Now(), time.Hour)
	require.NoError(t, err)
	return tok
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors"`
}

// do sends body as JSON with the bearer token and decodes the envelope.
func (s *testServer) do(t *testing.T, method, path, tok string, body interface{}) (int, envelope) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.URL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

// register creates the profile for subject and returns its token.
func (s *testServer) register(t *testing.T, subject string) string {
	t.Helper()
	tok := token(t, subject)
	status, env := s.do(t, http.MethodPost, "/api/users/profile", tok, map[string]string{
		"username": subject,
		"email":    subject + "@example.com",
	})
	require.Equal(t, http.StatusCreated, status, env.Errors)
	return tok
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v))
}
