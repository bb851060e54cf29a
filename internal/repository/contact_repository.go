package repository

import (
	"context"
	"database/sql"
	"errors"
)

// EmergencyContact is a per-user contact reachable in an emergency.
type EmergencyContact struct {
	ID           uint64 `json:"id"`
	UserID       uint64 `json:"user_id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// ErrContactNotFound is returned when a contact lookup matches no row.
var ErrContactNotFound = errors.New("contact not found")

type ContactRepo struct {
	db *sql.DB
}

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

// Create inserts a contact and populates its ID.
func (r *ContactRepo) Create(ctx context.Context, c *EmergencyContact) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO emergency_contacts (user_id, name, phone, relationship) VALUES (?,?,?,?)",
		c.UserID, c.Name, c.Phone, c.Relationship)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// ListByUser returns the user's contacts ordered by name.
func (r *ContactRepo) ListByUser(ctx context.Context, userID uint64) ([]*EmergencyContact, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, name, phone, relationship FROM emergency_contacts WHERE user_id = ? ORDER BY name", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*EmergencyContact
	for rows.Next() {
		c := new(EmergencyContact)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Phone, &c.Relationship); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update rewrites a contact, scoped to its owner.
func (r *ContactRepo) Update(ctx context.Context, c *EmergencyContact) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE emergency_contacts SET name=?, phone=?, relationship=? WHERE id=? AND user_id=?",
		c.Name, c.Phone, c.Relationship, c.ID, c.UserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrContactNotFound
	}
	return nil
}

// Delete removes a contact, scoped to its owner.
func (r *ContactRepo) Delete(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM emergency_contacts WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrContactNotFound
	}
	return nil
}
