package auth

import (
	"context"

	"github.com/google/uuid"

	"todo-app/internal/errs"
	"todo-app/internal/model"
)

// UserFinder looks up users by the identity provider's subject.
type UserFinder interface {
	FindByExternalID(ctx context.Context, externalID string) (*model.User, error)
}

// Resolver maps verified claims to the caller's internal user id.
// It never creates users.
type Resolver struct {
	users UserFinder
}

func NewResolver(users UserFinder) *Resolver {
	return &Resolver{users: users}
}

// Resolve returns the id of the user behind c. A missing subject or an
// unknown user is reported as unauthenticated.
func (r *Resolver) Resolve(ctx context.Context, c Claims) (uuid.UUID, error) {
	if c.Subject == "" {
		return uuid.Nil, errs.Unauthenticated("auth.resolve", "user not authenticated")
	}
	user, err := r.users.FindByExternalID(ctx, c.Subject)
	switch {
	case err == nil:
		return user.ID, nil
	case errs.Is(err, errs.ENotFound):
		return uuid.Nil, errs.Unauthenticated("auth.resolve", "user not found")
	default:
		return uuid.Nil, errs.Internal("auth.resolve", err)
	}
}
