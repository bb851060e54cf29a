package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Hotline is a global emergency hotline entry. Reads are public; writes are
// restricted to admins by the route middleware.
type Hotline struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Description string `json:"description"`
}

// ErrHotlineNotFound is returned when a hotline lookup matches no row.
var ErrHotlineNotFound = errors.New("hotline not found")

type HotlineRepo struct {
	db *sql.DB
}

func NewHotlineRepo(db *sql.DB) *HotlineRepo { return &HotlineRepo{db: db} }

// ListAll returns every hotline ordered by name.
func (r *HotlineRepo) ListAll(ctx context.Context) ([]*Hotline, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, phone, description FROM hotlines ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Hotline
	for rows.Next() {
		h := new(Hotline)
		if err := rows.Scan(&h.ID, &h.Name, &h.Phone, &h.Description); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Create inserts a hotline and populates its ID.
func (r *HotlineRepo) Create(ctx context.Context, h *Hotline) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO hotlines (name, phone, description) VALUES (?,?,?)",
		h.Name, h.Phone, h.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

// Update rewrites a hotline.
func (r *HotlineRepo) Update(ctx context.Context, h *Hotline) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE hotlines SET name=?, phone=?, description=? WHERE id=?",
		h.Name, h.Phone, h.Description, h.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrHotlineNotFound
	}
	return nil
}

// Delete removes a hotline by id.
func (r *HotlineRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM hotlines WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrHotlineNotFound
	}
	return nil
}
