// Package repository contains data access logic separated from HTTP handlers.
// This file defines the HobbyGroup model and its repository. A hobby group is
// a community owned by the creating user; creation seeds three default
// channels and the initial memberships inside one transaction so a group is
// never observable in a half-built state.
package repository

import (
	"context"
	"database/sql"
	"errors"
)

// DefaultChannels are seeded into every group at creation time.
var DefaultChannels = [3]string{"announcement", "event", "general"}

// HobbyGroup represents a community row.
type HobbyGroup struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerID     uint64 `json:"owner_id"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ErrGroupNotFound is returned when a group cannot be found in the DB.
var ErrGroupNotFound = errors.New("group not found")

// GroupRepo encapsulates all database queries related to hobby groups.
type GroupRepo struct {
	db *sql.DB
}

func NewGroupRepo(db *sql.DB) *GroupRepo { return &GroupRepo{db: db} }

// Create inserts the group, its three default channels, a member row for the
// owner (display name resolved from users) and a member row for every other
// admin-role user, all in one transaction. Any failure rolls the whole thing
// back and the error is surfaced to the caller.
func (r *GroupRepo) Create(ctx context.Context, name, description string, ownerID uint64) (groupID uint64, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if err = tx.Commit(); err != nil {
			groupID = 0
		}
	}()

	res, execErr := tx.ExecContext(ctx,
		"INSERT INTO hobby_groups (name, description, owner_id) VALUES (?,?,?)",
		name, description, ownerID)
	if execErr != nil {
		err = execErr
		return 0, err
	}
	id64, idErr := res.LastInsertId()
	if idErr != nil {
		err = idErr
		return 0, err
	}
	groupID = uint64(id64)

	for _, ch := range DefaultChannels {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO channels (group_id, name) VALUES (?,?)", groupID, ch); err != nil {
			return 0, err
		}
	}

	// Owner membership, display name denormalized from users.
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO members (group_id, user_id, full_name)
		 SELECT ?, id, TRIM(CONCAT(first_name, ' ', last_name)) FROM users WHERE id = ?`,
		groupID, ownerID); err != nil {
		return 0, err
	}

	// Every admin that existed at creation time is a member as well.
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO members (group_id, user_id, full_name)
		 SELECT ?, id, TRIM(CONCAT(first_name, ' ', last_name))
		 FROM users WHERE role = 'admin' AND id <> ?`,
		groupID, ownerID); err != nil {
		return 0, err
	}

	return groupID, nil
}

// GetByID fetches a group by id, returning ErrGroupNotFound when absent.
func (r *GroupRepo) GetByID(ctx context.Context, id uint64) (*HobbyGroup, error) {
	const q = "SELECT id, name, description, owner_id, created_at, updated_at FROM hobby_groups WHERE id = ?"
	var g HobbyGroup
	if err := r.db.QueryRowContext(ctx, q, id).
		Scan(&g.ID, &g.Name, &g.Description, &g.OwnerID, &g.CreatedAt, &g.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &g, nil
}

// ListAll returns every group ordered by id.
func (r *GroupRepo) ListAll(ctx context.Context) ([]*HobbyGroup, error) {
	const q = "SELECT id, name, description, owner_id, created_at, updated_at FROM hobby_groups ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*HobbyGroup
	for rows.Next() {
		g := new(HobbyGroup)
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.OwnerID, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// UpdateDescription updates only the description. Ownership is enforced by
// the route middleware before this runs.
func (r *GroupRepo) UpdateDescription(ctx context.Context, id uint64, description string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE hobby_groups SET description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		description, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrGroupNotFound
	}
	return nil
}

// DeleteWithMembers removes channels, members and the group row inside one
// transaction. A missing group returns ErrGroupNotFound; a second concurrent
// delete therefore no-ops with a clean not-found instead of corrupting state.
func (r *GroupRepo) DeleteWithMembers(ctx context.Context, id uint64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var exists uint64
	if err = tx.QueryRowContext(ctx,
		"SELECT id FROM hobby_groups WHERE id = ?", id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrGroupNotFound
		}
		return err
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM events WHERE group_id = ?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM channels WHERE group_id = ?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM members WHERE group_id = ?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM hobby_groups WHERE id = ?", id); err != nil {
		return err
	}
	return nil
}
