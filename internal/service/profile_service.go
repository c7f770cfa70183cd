package service

import (
	"context"
	"strings"

	"todo-app/internal/auth"
	"todo-app/internal/errs"
	"todo-app/internal/model"
	"todo-app/internal/repository"
)

type ProfileInput struct {
	Username string `json:"username" validate:"required,notblank,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
}

// ProfileService lets an authenticated identity register and edit its own
// user record.
type ProfileService struct {
	users *repository.UserRepository
}

func NewProfileService(users *repository.UserRepository) *ProfileService {
	return &ProfileService{users: users}
}

func (s *ProfileService) Get(ctx context.Context, claims auth.Claims) (*model.User, error) {
	if claims.Subject == "" {
		return nil, errs.Unauthenticated("profile.get", "user not authenticated")
	}
	user, err := s.users.FindByExternalID(ctx, claims.Subject)
	if errs.Is(err, errs.ENotFound) {
		return nil, errs.NotFound("profile.get", "user profile not found")
	}
	return user, err
}

// Create registers the caller. A second registration for the same subject
// is a conflict.
func (s *ProfileService) Create(ctx context.Context, claims auth.Claims, input ProfileInput) (*model.User, error) {
	if claims.Subject == "" {
		return nil, errs.Unauthenticated("profile.create", "user not authenticated")
	}
	if err := validateInput("profile.create", input); err != nil {
		return nil, err
	}

	_, err := s.users.FindByExternalID(ctx, claims.Subject)
	switch {
	case err == nil:
		return nil, errs.Conflict("profile.create", "user profile already exists")
	case !errs.Is(err, errs.ENotFound):
		return nil, err
	}

	user := model.User{
		ExternalID: claims.Subject,
		Username:   strings.TrimSpace(input.Username),
		Email:      strings.TrimSpace(input.Email),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *ProfileService) Update(ctx context.Context, claims auth.Claims, input ProfileInput) (*model.User, error) {
	if claims.Subject == "" {
		return nil, errs.Unauthenticated("profile.update", "user not authenticated")
	}
	if err := validateInput("profile.update", input); err != nil {
		return nil, err
	}

	user, err := s.users.FindByExternalID(ctx, claims.Subject)
	if errs.Is(err, errs.ENotFound) {
		return nil, errs.NotFound("profile.update", "user profile not found")
	}
	if err != nil {
		return nil, err
	}

	user.Username = strings.TrimSpace(input.Username)
	user.Email = strings.TrimSpace(input.Email)
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
