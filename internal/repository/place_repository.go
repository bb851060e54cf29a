package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Place is a per-user saved location. Coordinates are filled by the geocoding
// provider at creation; a failed geocode leaves them at zero.
type Place struct {
	ID        uint64  `json:"id"`
	UserID    uint64  `json:"user_id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PlaceNote is a free-text note attached to a place.
type PlaceNote struct {
	ID        uint64 `json:"id"`
	PlaceID   uint64 `json:"place_id"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

// ErrPlaceNotFound is returned when a place or note lookup matches no row.
var ErrPlaceNotFound = errors.New("place not found")

type PlaceRepo struct {
	db *sql.DB
}

func NewPlaceRepo(db *sql.DB) *PlaceRepo { return &PlaceRepo{db: db} }

// Create inserts a place and populates its ID.
func (r *PlaceRepo) Create(ctx context.Context, p *Place) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO places (user_id, name, address, latitude, longitude) VALUES (?,?,?,?,?)",
		p.UserID, p.Name, p.Address, p.Latitude, p.Longitude)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// ListByUser returns the user's places ordered by name.
func (r *PlaceRepo) ListByUser(ctx context.Context, userID uint64) ([]*Place, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, name, address, latitude, longitude FROM places WHERE user_id = ? ORDER BY name", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Place
	for rows.Next() {
		p := new(Place)
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Address, &p.Latitude, &p.Longitude); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes a place and its notes, scoped to the owner.
func (r *PlaceRepo) Delete(ctx context.Context, id, userID uint64) (err error) {
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

	var one int
	if err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM places WHERE id = ? AND user_id = ?", id, userID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrPlaceNotFound
		}
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM place_notes WHERE place_id = ?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM places WHERE id = ?", id); err != nil {
		return err
	}
	return nil
}

// AddNote appends a note to a place the user owns.
func (r *PlaceRepo) AddNote(ctx context.Context, placeID, userID uint64, body string) (*PlaceNote, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM places WHERE id = ? AND user_id = ?", placeID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlaceNotFound
	}
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO place_notes (place_id, body) VALUES (?,?)", placeID, body)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &PlaceNote{ID: uint64(id), PlaceID: placeID, Body: body}, nil
}

// ListNotes returns a place's notes (owner-scoped), oldest first.
func (r *PlaceRepo) ListNotes(ctx context.Context, placeID, userID uint64) ([]*PlaceNote, error) {
	const q = `SELECT n.id, n.place_id, n.body, n.created_at
	           FROM place_notes n JOIN places p ON p.id = n.place_id
	           WHERE n.place_id = ? AND p.user_id = ? ORDER BY n.id`
	rows, err := r.db.QueryContext(ctx, q, placeID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*PlaceNote
	for rows.Next() {
		n := new(PlaceNote)
		if err := rows.Scan(&n.ID, &n.PlaceID, &n.Body, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// DeleteNote removes one note from a place the user owns.
func (r *PlaceRepo) DeleteNote(ctx context.Context, noteID, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE n FROM place_notes n JOIN places p ON p.id = n.place_id
		 WHERE n.id = ? AND p.user_id = ?`, noteID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPlaceNotFound
	}
	return nil
}
