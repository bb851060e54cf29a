package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// Friend request states.
const (
	FriendPending  = "pending"
	FriendAccepted = "accepted"
)

// FriendRequest is a pending or answered invitation between two users.
type FriendRequest struct {
	ID         uint64 `json:"id"`
	FromUserID uint64 `json:"from_user_id"`
	ToUserID   uint64 `json:"to_user_id"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// FriendInfo is one entry in a user's friend list.
type FriendInfo struct {
	UserID   uint64 `json:"user_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// ErrFriendRequestNotFound is returned when a request lookup matches no row.
var ErrFriendRequestNotFound = errors.New("friend request not found")

// ErrNotFriends is returned when private messaging is attempted outside a
// friendship.
var ErrNotFriends = errors.New("not friends")

// FriendRepo encapsulates friend requests and the friendships pair table.
// Friendship rows are stored with user_a < user_b so each pair exists once.
type FriendRepo struct {
	db *sql.DB
}

func NewFriendRepo(db *sql.DB) *FriendRepo { return &FriendRepo{db: db} }

func orderPair(a, b uint64) (uint64, uint64) {
	if a < b {
		return a, b
	}
	return b, a
}

// SendRequest creates a pending request. A duplicate pending request or an
// existing friendship comes back as ErrConflict.
func (r *FriendRepo) SendRequest(ctx context.Context, fromID, toID uint64) (uint64, error) {
	friends, err := r.AreFriends(ctx, fromID, toID)
	if err != nil {
		return 0, err
	}
	if friends {
		return 0, ErrConflict
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO friend_requests (from_user_id, to_user_id, status) VALUES (?,?,?)",
		fromID, toID, FriendPending)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListIncoming returns pending requests addressed to the user.
func (r *FriendRepo) ListIncoming(ctx context.Context, userID uint64) ([]*FriendRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, from_user_id, to_user_id, status, created_at
		 FROM friend_requests WHERE to_user_id = ? AND status = ? ORDER BY id`,
		userID, FriendPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*FriendRequest
	for rows.Next() {
		fr := new(FriendRequest)
		if err := rows.Scan(&fr.ID, &fr.FromUserID, &fr.ToUserID, &fr.Status, &fr.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, fr)
	}
	return out, rows.Err()
}

// Accept answers a pending request addressed to the caller and creates the
// friendship pair inside the same transaction.
func (r *FriendRepo) Accept(ctx context.Context, requestID, callerID uint64) (err error) {
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

	var fromID, toID uint64
	var status string
	if err = tx.QueryRowContext(ctx,
		"SELECT from_user_id, to_user_id, status FROM friend_requests WHERE id = ?", requestID).
		Scan(&fromID, &toID, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrFriendRequestNotFound
		}
		return err
	}
	if toID != callerID {
		err = ErrForbidden
		return err
	}
	if status != FriendPending {
		err = ErrConflict
		return err
	}

	if _, err = tx.ExecContext(ctx,
		"UPDATE friend_requests SET status = ? WHERE id = ?", FriendAccepted, requestID); err != nil {
		return err
	}
	a, b := orderPair(fromID, toID)
	if _, err = tx.ExecContext(ctx,
		"INSERT INTO friendships (user_a, user_b) VALUES (?,?)", a, b); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			err = ErrConflict
		}
		return err
	}
	return nil
}

// Decline removes a pending request addressed to the caller.
func (r *FriendRepo) Decline(ctx context.Context, requestID, callerID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM friend_requests WHERE id = ? AND to_user_id = ? AND status = ?",
		requestID, callerID, FriendPending)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFriendRequestNotFound
	}
	return nil
}

// AreFriends reports whether a friendship pair exists.
func (r *FriendRepo) AreFriends(ctx context.Context, a, b uint64) (bool, error) {
	x, y := orderPair(a, b)
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM friendships WHERE user_a = ? AND user_b = ? LIMIT 1", x, y).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListFriends returns the user's friends with display fields.
func (r *FriendRepo) ListFriends(ctx context.Context, userID uint64) ([]FriendInfo, error) {
	const q = `SELECT u.id, TRIM(CONCAT(u.first_name, ' ', u.last_name)), u.email
	           FROM friendships f
	           JOIN users u ON u.id = IF(f.user_a = ?, f.user_b, f.user_a)
	           WHERE f.user_a = ? OR f.user_b = ?
	           ORDER BY u.first_name, u.last_name`
	rows, err := r.db.QueryContext(ctx, q, userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FriendInfo
	for rows.Next() {
		var fi FriendInfo
		if err := rows.Scan(&fi.UserID, &fi.FullName, &fi.Email); err != nil {
			return nil, err
		}
		out = append(out, fi)
	}
	return out, rows.Err()
}

// Unfriend deletes the friendship pair.
func (r *FriendRepo) Unfriend(ctx context.Context, a, b uint64) error {
	x, y := orderPair(a, b)
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM friendships WHERE user_a = ? AND user_b = ?", x, y)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFriends
	}
	return nil
}
