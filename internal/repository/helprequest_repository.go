package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Help request lifecycle: open -> accepted -> resolved. A request is accepted
// by a helper (any other user) and resolved by either side.
const (
	HelpStatusOpen     = "open"
	HelpStatusAccepted = "accepted"
	HelpStatusResolved = "resolved"
)

// HelpRequest is a call for assistance posted by a user.
type HelpRequest struct {
	ID          uint64        `json:"id"`
	Reference   string        `json:"reference"` // short uuid shown to callers
	UserID      uint64        `json:"user_id"`
	Category    string        `json:"category"`
	Description string        `json:"description"`
	Location    string        `json:"location"`
	Status      string        `json:"status"`
	HelperID    sql.NullInt64 `json:"-"`
	CreatedAt   string        `json:"created_at"`
}

// Helper exposes the nullable helper id as a plain field for JSON.
func (h *HelpRequest) Helper() uint64 {
	if h.HelperID.Valid {
		return uint64(h.HelperID.Int64)
	}
	return 0
}

// ErrHelpRequestNotFound is returned when a request lookup matches no row.
var ErrHelpRequestNotFound = errors.New("help request not found")

// ErrBadStatus is returned when a transition is attempted from the wrong
// state, e.g. accepting an already-accepted request.
var ErrBadStatus = errors.New("invalid status transition")

type HelpRequestRepo struct {
	db *sql.DB
}

func NewHelpRequestRepo(db *sql.DB) *HelpRequestRepo { return &HelpRequestRepo{db: db} }

const helpColumns = "id, reference, user_id, category, description, location, status, helper_id, created_at"

// Create inserts an open request with a generated reference code.
func (r *HelpRequestRepo) Create(ctx context.Context, h *HelpRequest) error {
	h.Reference = uuid.NewString()[:8]
	h.Status = HelpStatusOpen
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO help_requests (reference, user_id, category, description, location, status)
		 VALUES (?,?,?,?,?,?)`,
		h.Reference, h.UserID, h.Category, h.Description, h.Location, h.Status)
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

// GetByID fetches one request.
func (r *HelpRequestRepo) GetByID(ctx context.Context, id uint64) (*HelpRequest, error) {
	var h HelpRequest
	err := r.db.QueryRowContext(ctx,
		"SELECT "+helpColumns+" FROM help_requests WHERE id = ?", id).
		Scan(&h.ID, &h.Reference, &h.UserID, &h.Category, &h.Description, &h.Location, &h.Status, &h.HelperID, &h.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHelpRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// ListOpen returns every open request, oldest first.
func (r *HelpRequestRepo) ListOpen(ctx context.Context) ([]*HelpRequest, error) {
	return r.list(ctx, "SELECT "+helpColumns+" FROM help_requests WHERE status = ? ORDER BY id", HelpStatusOpen)
}

// ListByUser returns every request the user has posted, newest first.
func (r *HelpRequestRepo) ListByUser(ctx context.Context, userID uint64) ([]*HelpRequest, error) {
	return r.list(ctx, "SELECT "+helpColumns+" FROM help_requests WHERE user_id = ? ORDER BY id DESC", userID)
}

// Accept moves an open request to accepted with the helper recorded. The
// status predicate in the UPDATE makes concurrent accepts race-safe: exactly
// one caller wins, the rest see ErrBadStatus.
func (r *HelpRequestRepo) Accept(ctx context.Context, id, helperID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE help_requests SET status = ?, helper_id = ? WHERE id = ? AND status = ?",
		HelpStatusAccepted, helperID, id, HelpStatusOpen)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, gerr := r.GetByID(ctx, id); gerr != nil {
			return gerr
		}
		return ErrBadStatus
	}
	return nil
}

// Resolve closes a request. Only the requester or the accepted helper may do
// it; the caller passes its user id for the check.
func (r *HelpRequestRepo) Resolve(ctx context.Context, id, callerID uint64) error {
	h, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if h.UserID != callerID && h.Helper() != callerID {
		return ErrForbidden
	}
	if h.Status == HelpStatusResolved {
		return ErrBadStatus
	}
	_, err = r.db.ExecContext(ctx,
		"UPDATE help_requests SET status = ? WHERE id = ?", HelpStatusResolved, id)
	return err
}

func (r *HelpRequestRepo) list(ctx context.Context, q string, arg interface{}) ([]*HelpRequest, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*HelpRequest
	for rows.Next() {
		h := new(HelpRequest)
		if err := rows.Scan(&h.ID, &h.Reference, &h.UserID, &h.Category, &h.Description, &h.Location, &h.Status, &h.HelperID, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
