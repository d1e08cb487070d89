package service

import (
	"context"

	"github.com/placeshare/placeshare/internal/model"
	"github.com/placeshare/placeshare/internal/repository"
)

// UserService exposes read access to users.
type UserService struct {
	store repository.Store
}

// NewUserService creates a new UserService.
func NewUserService(store repository.Store) *UserService {
	return &UserService{store: store}
}

// ListUsers returns all users without credential material.
func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	const op = "list users"

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Op: op, Msg: "Fetching users failed, please try again later.", Err: err}
	}
	for _, u := range users {
		u.PasswordHash = ""
	}
	return users, nil
}
