package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-app/internal/auth"
	"todo-app/internal/errs"
)

func TestProfileLifecycle(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProfileService(env.users)
	ctx := context.Background()
	claims := auth.Claims{Subject: "kc-123", Username: "alice"}

	_, err := svc.Get(ctx, claims)
	require.Error(t, err)
	assert.Equal(t, errs.ENotFound, errs.ErrorCode(err))
	assert.Equal(t, "user profile not found", errs.ErrorMessage(err))

	_, err = svc.Update(ctx, claims, ProfileInput{Username: "alice", Email: "alice@example.com"})
	assert.Equal(t, errs.ENotFound, errs.ErrorCode(err))

	created, err := svc.Create(ctx, claims, ProfileInput{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "kc-123", created.ExternalID)

	_, err = svc.Create(ctx, claims, ProfileInput{Username: "again", Email: "again@example.com"})
	require.Error(t, err)
	assert.Equal(t, errs.EConflict, errs.ErrorCode(err))
	assert.Equal(t, "user profile already exists", errs.ErrorMessage(err))

	env.clock.Add(time.Minute)
	updated, err := svc.Update(ctx, claims, ProfileInput{Username: "alice2", Email: "a2@example.com"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "a2@example.com", updated.Email)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	got, err := svc.Get(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, "alice2", got.Username)
}

func TestProfileCreate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   ProfileInput
		wantMsg string
	}{
		{"missing username", ProfileInput{Email: "a@example.com"}, "username: is required"},
		{"long username", ProfileInput{Username: strings.Repeat("u", 101), Email: "a@example.com"}, "username: must be at most 100 characters"},
		{"missing email", ProfileInput{Username: "alice"}, "email: is required"},
		{"bad email", ProfileInput{Username: "alice", Email: "not-an-email"}, "email: must be a valid email address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			svc := NewProfileService(env.users)

			_, err := svc.Create(context.Background(), auth.Claims{Subject: "s"}, tt.input)
			require.Error(t, err)
			assert.Equal(t, errs.EInvalid, errs.ErrorCode(err))
			assert.Contains(t, errs.ErrorMessage(err), tt.wantMsg)
		})
	}
}

func TestProfile_NoSubject(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProfileService(env.users)
	ctx := context.Background()

	_, err := svc.Get(ctx, auth.Claims{})
	assert.Equal(t, errs.EUnauthenticated, errs.ErrorCode(err))
	_, err = svc.Create(ctx, auth.Claims{}, ProfileInput{Username: "a", Email: "a@example.com"})
	assert.Equal(t, errs.EUnauthenticated, errs.ErrorCode(err))
	_, err = svc.Update(ctx, auth.Claims{}, ProfileInput{Username: "a", Email: "a@example.com"})
	assert.Equal(t, errs.EUnauthenticated, errs.ErrorCode(err))
}
