package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-app/internal/auth"
	"todo-app/internal/model"
	"todo-app/internal/repository"
	"todo-app/internal/service"
)

func TestBuyMilkScenario(t *testing.T) {
	srv := newTestServer(t)
	tok := srv.register(t, "kc-alice")

	status, env := srv.do(t, http.MethodPost, "/api/tasks", tok, map[string]interface{}{
		"title": "Buy milk",
		"tags":  []string{"Urgent", "urgent", " URGENT "},
	})
	require.Equal(t, http.StatusCreated, status, env.Errors)
	assert.True(t, env.Success)
	assert.Equal(t, "Task created successfully", env.Message)

	var created TaskResponse
	decode(t, env.Data, &created)
	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, "Medium", created.Priority)
	assert.False(t, created.IsCompleted)
	require.Len(t, created.Tags, 1)
	assert.Equal(t, "Urgent", created.Tags[0].Name)

	status, env = srv.do(t, http.MethodGet, "/api/tasks?tag=URGENT", tok, nil)
	require.Equal(t, http.StatusOK, status)
	var listed []TaskResponse
	decode(t, env.Data, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	status, env = srv.do(t, http.MethodPatch, "/api/tasks/"+created.ID.String()+"/status", tok, map[string]bool{"isCompleted": true})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Task status updated successfully", env.Message)

	status, env = srv.do(t, http.MethodGet, "/api/tasks?isCompleted=false", tok, nil)
	require.Equal(t, http.StatusOK, status)
	decode(t, env.Data, &listed)
	assert.Empty(t, listed)

	status, env = srv.do(t, http.MethodGet, "/api/tags", tok, nil)
	require.Equal(t, http.StatusOK, status)
	var tags []TagResponse
	decode(t, env.Data, &tags)
	assert.Len(t, tags, 1)

	status, env = srv.do(t, http.MethodDelete, "/api/tasks/"+created.ID.String(), tok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Task deleted successfully", env.Message)
	assert.Equal(t, "null", string(env.Data))

	status, _ = srv.do(t, http.MethodGet, "/api/tasks/"+created.ID.String(), tok, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestTenantIsolation(t *testing.T) {
	srv := newTestServer(t)
	alice := srv.register(t, "kc-alice")
	bob := srv.register(t, "kc-bob")

	status, env := srv.do(t, http.MethodPost, "/api/tasks", alice, map[string]interface{}{"title": "secret"})
	require.Equal(t, http.StatusCreated, status)
	var task TaskResponse
	decode(t, env.Data, &task)
	path := "/api/tasks/" + task.ID.String()

	status, env = srv.do(t, http.MethodGet, path, bob, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)
	assert.Equal(t, []string{"task not found"}, env.Errors)

	status, _ = srv.do(t, http.MethodPut, path, bob, map[string]interface{}{"title": "mine now"})
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = srv.do(t, http.MethodPatch, path+"/status", bob, map[string]bool{"isCompleted": true})
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = srv.do(t, http.MethodDelete, path, bob, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = srv.do(t, http.MethodGet, "/api/tasks", bob, nil)
	require.Equal(t, http.StatusOK, status)
	var listed []TaskResponse
	decode(t, env.Data, &listed)
	assert.Empty(t, listed)

	status, env = srv.do(t, http.MethodGet, path, alice, nil)
	require.Equal(t, http.StatusOK, status)
	decode(t, env.Data, &task)
	assert.Equal(t, "secret", task.Title)
}

func TestAuthentication(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name    string
		token   string
		wantErr string
	}{
		{name: "no token", token: "", wantErr: auth.ErrMissingToken.Error()},
		{name: "garbage token", token: "not-a-jwt", wantErr: auth.ErrInvalidToken.Error()},
		{name: "valid token, no profile", token: token(t, "kc-ghost"), wantErr: "user not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := srv.do(t, http.MethodGet, "/api/tasks", tt.token, nil)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.False(t, env.Success)
			assert.Equal(t, []string{tt.wantErr}, env.Errors)
		})
	}
}

func TestTaskValidationAndIDs(t *testing.T) {
	srv := newTestServer(t)
	tok := srv.register(t, "kc-alice")

	status, env := srv.do(t, http.MethodPost, "/api/tasks", tok, map[string]interface{}{
		"title":    "",
		"priority": "Urgent",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"title: is required", "priority: must be one of Low, Medium, High"}, env.Errors)

	status, _ = srv.do(t, http.MethodGet, "/api/tasks/not-a-uuid", tok, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = srv.do(t, http.MethodGet, "/api/tasks/"+uuid.NewString(), tok, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = srv.do(t, http.MethodGet, "/api/tasks?isCompleted=maybe", tok, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = srv.do(t, http.MethodPatch, "/api/tasks/"+uuid.NewString()+"/status", tok, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"isCompleted: is required"}, env.Errors)
}

func TestMalformedBodies(t *testing.T) {
	srv := newTestServer(t)
	tok := srv.register(t, "kc-alice")

	tests := []struct {
		name    string
		body    interface{}
		wantErr string
	}{
		{name: "title of the wrong type", body: map[string]interface{}{"title": 42}, wantErr: "title: must be a string"},
		{name: "tags of the wrong type", body: map[string]interface{}{"title": "x", "tags": "urgent"}, wantErr: "tags: must be a list"},
		{name: "unparseable due date", body: map[string]interface{}{"title": "x", "dueDate": "tomorrow"}, wantErr: "dates must be RFC 3339 timestamps"},
		{name: "not an object", body: []string{"x"}, wantErr: "request body must be a JSON object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := srv.do(t, http.MethodPost, "/api/tasks", tok, tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			require.Len(t, env.Errors, 1)
			assert.Equal(t, tt.wantErr, env.Errors[0])
			assert.NotContains(t, env.Errors[0], "Go struct")
		})
	}
}

func TestCategoryFilterAndList(t *testing.T) {
	srv := newTestServer(t)
	tok := srv.register(t, "kc-alice")

	status, env := srv.do(t, http.MethodGet, "/api/categories", tok, nil)
	require.Equal(t, http.StatusOK, status)
	var categories []CategoryResponse
	decode(t, env.Data, &categories)
	require.Len(t, categories, len(service.DefaultCategories))

	var work CategoryResponse
	for _, c := range categories {
		if c.Name == "Work" {
			work = c
		}
	}
	require.NotEqual(t, uuid.Nil, work.ID)

	status, _ = srv.do(t, http.MethodPost, "/api/tasks", tok, map[string]interface{}{"title": "report", "categoryId": work.ID})
	require.Equal(t, http.StatusCreated, status)
	status, _ = srv.do(t, http.MethodPost, "/api/tasks", tok, map[string]interface{}{"title": "groceries"})
	require.Equal(t, http.StatusCreated, status)

	status, env = srv.do(t, http.MethodGet, "/api/tasks?category=work", tok, nil)
	require.Equal(t, http.StatusOK, status)
	var listed []TaskResponse
	decode(t, env.Data, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "report", listed[0].Title)
	require.NotNil(t, listed[0].Category)
	assert.Equal(t, "Work", listed[0].Category.Name)
}

func TestTagsAndProfileEndpoints(t *testing.T) {
	srv := newTestServer(t)
	tok := token(t, "kc-carol")

	status, env := srv.do(t, http.MethodGet, "/api/users/profile", tok, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, []string{"user profile not found"}, env.Errors)

	tok = srv.register(t, "kc-carol")

	status, env = srv.do(t, http.MethodPost, "/api/users/profile", tok, map[string]string{"username": "c", "email": "c@example.com"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, []string{"user profile already exists"}, env.Errors)

	status, env = srv.do(t, http.MethodPut, "/api/users/profile", tok, map[string]string{"username": "carol", "email": "carol@example.com"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "User profile updated successfully", env.Message)
	var profile UserProfileResponse
	decode(t, env.Data, &profile)
	assert.Equal(t, "kc-carol", profile.ExternalID)
	assert.Equal(t, "carol", profile.Username)

	status, env = srv.do(t, http.MethodPost, "/api/tags", tok, map[string]string{"name": "Home"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Tag created successfully", env.Message)

	status, env = srv.do(t, http.MethodPost, "/api/tags", tok, map[string]string{"name": "home"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, []string{"tag with this name already exists"}, env.Errors)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/tasks", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `todoapp_http_requests_total{method="GET",path="/healthz",status="200"} 1`)
}

type mockTaskService struct {
	ListFn func(ctx context.Context, userID uuid.UUID, filter repository.TaskFilter) ([]model.TaskDetails, error)
}

func (m *mockTaskService) List(ctx context.Context, userID uuid.UUID, filter repository.TaskFilter) ([]model.TaskDetails, error) {
	return m.ListFn(ctx, userID, filter)
}

func (m *mockTaskService) Get(context.Context, uuid.UUID, uuid.UUID) (*model.TaskDetails, error) {
	return nil, errors.New("not implemented")
}

func (m *mockTaskService) Create(context.Context, uuid.UUID, service.TaskInput) (*model.TaskDetails, error) {
	return nil, errors.New("not implemented")
}

func (m *mockTaskService) Update(context.Context, uuid.UUID, uuid.UUID, service.TaskInput) (*model.TaskDetails, error) {
	return nil, errors.New("not implemented")
}

func (m *mockTaskService) SetStatus(context.Context, uuid.UUID, uuid.UUID, bool) (*model.TaskDetails, error) {
	return nil, errors.New("not implemented")
}

func (m *mockTaskService) Delete(context.Context, uuid.UUID, uuid.UUID) error {
	return errors.New("not implemented")
}

type resolverFunc func(ctx context.Context, claims auth.Claims) (uuid.UUID, error)

func (f resolverFunc) Resolve(ctx context.Context, claims auth.Claims) (uuid.UUID, error) {
	return f(ctx, claims)
}

type verifierFunc func(raw string) (auth.Claims, error)

func (f verifierFunc) Verify(raw string) (auth.Claims, error) { return f(raw) }

func TestInternalErrorsAreOpaque(t *testing.T) {
	userID := uuid.New()
	var gotFilter repository.TaskFilter

	h := NewHandler(Config{
		Verifier: verifierFunc(func(string) (auth.Claims, error) { return auth.Claims{Subject: "s"}, nil }),
		Resolver: resolverFunc(func(context.Context, auth.Claims) (uuid.UUID, error) { return userID, nil }),
		Tasks: &mockTaskService{
			ListFn: func(_ context.Context, id uuid.UUID, filter repository.TaskFilter) ([]model.TaskDetails, error) {
				assert.Equal(t, userID, id)
				gotFilter = filter
				return nil, errors.New("database is locked")
			},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/tasks?category=Work&tag=x&isCompleted=true", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "An internal error has occurred.")
	assert.False(t, strings.Contains(rec.Body.String(), "database is locked"))

	assert.Equal(t, "Work", gotFilter.Category)
	assert.Equal(t, "x", gotFilter.Tag)
	require.NotNil(t, gotFilter.IsCompleted)
	assert.True(t, *gotFilter.IsCompleted)
}
