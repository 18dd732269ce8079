package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"expensex/internal/core"
	"expensex/internal/split"
	"expensex/internal/storage"
)

// ErrNotMember is returned when an operation names a user outside the group.
var ErrNotMember = errors.New("user is not a group member")

// GroupService manages groups, shared expenses and the balances between
// members.
type GroupService struct {
	store storage.Store
}

func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a group with the creator as its first member.
func (s *GroupService) CreateGroup(ctx context.Context, name, description, creatorID, creatorName string) (*core.Group, error) {
	g := &core.Group{
		Name:        name,
		Description: description,
		CreatedBy:   creatorID,
		Members: []core.Member{
			{UserID: creatorID, DisplayName: creatorName},
		},
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateGroup(ctx, g); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	return g, nil
}

// GetGroup returns a group with its members.
func (s *GroupService) GetGroup(ctx context.Context, id string) (*core.Group, error) {
	return s.store.GetGroup(ctx, id)
}

// ListGroups returns every group the user belongs to.
func (s *GroupService) ListGroups(ctx context.Context, userID string) ([]core.Group, error) {
	return s.store.ListGroupsForUser(ctx, userID)
}

// UpdateGroup renames a group and updates its description.
func (s *GroupService) UpdateGroup(ctx context.Context, id, name, description string) (*core.Group, error) {
	g, err := s.store.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}

	g.Name = name
	g.Description = description
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateGroup(ctx, g); err != nil {
		return nil, fmt.Errorf("update group: %w", err)
	}
	return g, nil
}

// DeleteGroup removes a group along with its shared expenses.
func (s *GroupService) DeleteGroup(ctx context.Context, id string) error {
	return s.store.DeleteGroup(ctx, id)
}

// AddMember adds a user to the group.
func (s *GroupService) AddMember(ctx context.Context, groupID string, m core.Member) error {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return err
	}
	if err := s.store.AddMember(ctx, groupID, m); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return core.ErrMemberExists
		}
		return err
	}
	return nil
}

// RemoveMember removes a user from the group. When the last member leaves the
// group is deleted together with its shared expenses; the returned flag
// reports that. The member's past expense shares keep counting toward
// balances while the group exists.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, userID string) (groupDeleted bool, err error) {
	if err := s.store.RemoveMember(ctx, groupID, userID); err != nil {
		return false, err
	}

	g, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return false, err
	}
	if len(g.Members) > 0 {
		return false, nil
	}

	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		return false, fmt.Errorf("delete empty group: %w", err)
	}
	slog.InfoContext(ctx, "Deleted empty group", "group_id", groupID)
	return true, nil
}

// AddSharedExpense records an expense paid by one member and split equally
// among the participants. An empty participant list means the whole group.
func (s *GroupService) AddSharedExpense(ctx context.Context, groupID, description string, amount float64, paidBy string, date core.Date, participantIDs []string) (*core.SharedExpense, error) {
	g, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !g.HasMember(paidBy) {
		return nil, fmt.Errorf("payer %s: %w", paidBy, ErrNotMember)
	}

	if len(participantIDs) == 0 {
		participantIDs = g.MemberIDs()
	}
	for _, id := range participantIDs {
		if !g.HasMember(id) {
			return nil, fmt.Errorf("participant %s: %w", id, ErrNotMember)
		}
	}

	splits, err := split.Shares(amount, participantIDs)
	if err != nil {
		return nil, err
	}

	e := &core.SharedExpense{
		GroupID:     groupID,
		Description: description,
		Amount:      amount,
		PaidBy:      paidBy,
		Date:        date,
		Splits:      splits,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateSharedExpense(ctx, e); err != nil {
		return nil, fmt.Errorf("create shared expense: %w", err)
	}
	return e, nil
}

// ListSharedExpenses returns a group's shared expenses, newest first.
func (s *GroupService) ListSharedExpenses(ctx context.Context, groupID string) ([]core.SharedExpense, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListSharedExpenses(ctx, groupID)
}

// GetSharedExpense returns a single shared expense with its splits.
func (s *GroupService) GetSharedExpense(ctx context.Context, id string) (*core.SharedExpense, error) {
	return s.store.GetSharedExpense(ctx, id)
}

// SettleExpense marks a shared expense and all of its splits settled. It is
// idempotent.
func (s *GroupService) SettleExpense(ctx context.Context, id string) error {
	return s.store.SettleSharedExpense(ctx, id)
}

// DeleteSharedExpense removes a shared expense and its splits.
func (s *GroupService) DeleteSharedExpense(ctx context.Context, id string) error {
	return s.store.DeleteSharedExpense(ctx, id)
}

// Balances computes the current pairwise debts in a group from its unsettled
// expenses.
func (s *GroupService) Balances(ctx context.Context, groupID string) ([]core.Balance, error) {
	g, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListSharedExpenses(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return split.Balances(g.Members, expenses), nil
}
