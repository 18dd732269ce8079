package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"expensex/internal/core"
)

// CreateGroup inserts a new group together with its initial members.
func (s *SQLiteStore) CreateGroup(ctx context.Context, g *core.Group) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	now := time.Now()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, description, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		g.ID, g.Name, g.Description, g.CreatedBy, g.CreatedAt.Unix(), g.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert group: %w", err)
	}

	for i := range g.Members {
		m := &g.Members[i]
		if m.JoinedAt.IsZero() {
			m.JoinedAt = now
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO group_members (group_id, user_id, display_name, joined_at) VALUES (?, ?, ?, ?)",
			g.ID, m.UserID, m.DisplayName, m.JoinedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("insert group member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetGroup retrieves a group with its members.
func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (*core.Group, error) {
	g := &core.Group{}
	var createdAt, updatedAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, created_by, created_at, updated_at FROM groups WHERE id = ?", id,
	).Scan(&g.ID, &g.Name, &g.Description, &g.CreatedBy, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	g.CreatedAt = time.Unix(createdAt, 0)
	g.UpdatedAt = time.Unix(updatedAt, 0)

	members, err := s.groupMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Members = members
	return g, nil
}

func (s *SQLiteStore) groupMembers(ctx context.Context, groupID string) ([]core.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, display_name, joined_at FROM group_members WHERE group_id = ? ORDER BY joined_at, user_id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("get group members: %w", err)
	}
	defer rows.Close()

	var members []core.Member
	for rows.Next() {
		var m core.Member
		var joinedAt int64
		if err := rows.Scan(&m.UserID, &m.DisplayName, &joinedAt); err != nil {
			return nil, fmt.Errorf("scan group member: %w", err)
		}
		m.JoinedAt = time.Unix(joinedAt, 0)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group members: %w", err)
	}
	return members, nil
}

// ListGroupsForUser returns every group the user is a member of, with members
// loaded, newest first.
func (s *SQLiteStore) ListGroupsForUser(ctx context.Context, userID string) ([]core.Group, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.name, g.description, g.created_by, g.created_at, g.updated_at
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = ?
		ORDER BY g.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []core.Group
	for rows.Next() {
		var g core.Group
		var createdAt, updatedAt int64
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedBy, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		g.CreatedAt = time.Unix(createdAt, 0)
		g.UpdatedAt = time.Unix(updatedAt, 0)
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}

	for i := range groups {
		members, err := s.groupMembers(ctx, groups[i].ID)
		if err != nil {
			return nil, err
		}
		groups[i].Members = members
	}
	return groups, nil
}

// UpdateGroup updates a group's name and description.
func (s *SQLiteStore) UpdateGroup(ctx context.Context, g *core.Group) error {
	g.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx,
		"UPDATE groups SET name = ?, description = ?, updated_at = ? WHERE id = ?",
		g.Name, g.Description, g.UpdatedAt.Unix(), g.ID,
	)
	if err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update group rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteGroup removes a group. Members, shared expenses and splits go with it
// via foreign key cascades.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete group rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddMember adds a user to a group.
func (s *SQLiteStore) AddMember(ctx context.Context, groupID string, m core.Member) error {
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO group_members (group_id, user_id, display_name, joined_at) VALUES (?, ?, ?, ?)",
		groupID, m.UserID, m.DisplayName, m.JoinedAt.Unix(),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("add member %s: %w", m.UserID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// RemoveMember removes a user from a group.
func (s *SQLiteStore) RemoveMember(ctx context.Context, groupID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM group_members WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove member rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
