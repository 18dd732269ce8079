// Package services orchestrates domain operations across storage, messaging
// and the split engine.
package services

import (
	"context"
	"fmt"

	"expensex/internal/core"
	"expensex/internal/storage"
)

// defaultCategories are seeded for every user that has none yet.
var defaultCategories = []core.Category{
	{Name: "Food & Dining", Color: "#FF6B6B", Icon: "utensils"},
	{Name: "Transportation", Color: "#48BEFF", Icon: "car"},
	{Name: "Housing", Color: "#4E67EB", Icon: "home"},
	{Name: "Entertainment", Color: "#9C62FF", Icon: "film"},
	{Name: "Shopping", Color: "#FF8F6B", Icon: "shopping-bag"},
	{Name: "Utilities", Color: "#4BD4A0", Icon: "bolt"},
	{Name: "Healthcare", Color: "#FF6BB5", Icon: "heart"},
	{Name: "Other", Color: "#8E9196", Icon: "ellipsis-h"},
}

// UserService manages user accounts and their initial setup.
type UserService struct {
	store storage.Store
}

func NewUserService(store storage.Store) *UserService {
	return &UserService{store: store}
}

// Register creates a user and seeds the default categories.
func (s *UserService) Register(ctx context.Context, email, name string) (*core.User, error) {
	u := &core.User{Email: email, Name: name}
	if err := u.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}

	if err := seedDefaultCategories(ctx, s.store, u.ID); err != nil {
		return nil, fmt.Errorf("seed categories: %w", err)
	}
	return u, nil
}

// GetUser returns a user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*core.User, error) {
	return s.store.GetUser(ctx, id)
}

// GetUserByEmail returns a user by email address.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.store.GetUserByEmail(ctx, email)
}

// ListUsers returns all registered users, ordered by name.
func (s *UserService) ListUsers(ctx context.Context) ([]core.User, error) {
	return s.store.ListUsers(ctx)
}

// UpdateProfile changes a user's name and avatar.
func (s *UserService) UpdateProfile(ctx context.Context, id, name, avatar string) (*core.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Name = name
	u.Avatar = avatar
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

func seedDefaultCategories(ctx context.Context, store storage.Store, userID string) error {
	for _, c := range defaultCategories {
		category := core.Category{UserID: userID, Name: c.Name, Color: c.Color, Icon: c.Icon}
		if err := store.CreateCategory(ctx, &category); err != nil {
			return err
		}
	}
	return nil
}
