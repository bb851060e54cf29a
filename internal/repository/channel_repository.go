package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// Channel belongs to exactly one group; (group_id, name) is unique.
type Channel struct {
	ID      uint64 `json:"id"`
	GroupID uint64 `json:"group_id"`
	Name    string `json:"name"`
}

// ErrChannelExists is returned when a channel name already exists in a group.
var ErrChannelExists = errors.New("channel already exists")

// ChannelRepo encapsulates the channels table.
type ChannelRepo struct {
	db *sql.DB
}

func NewChannelRepo(db *sql.DB) *ChannelRepo { return &ChannelRepo{db: db} }

// Create inserts a channel. The unique key on (group_id, name) turns a
// duplicate into ErrChannelExists.
func (r *ChannelRepo) Create(ctx context.Context, groupID uint64, name string) (*Channel, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO channels (group_id, name) VALUES (?,?)", groupID, name)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return nil, ErrChannelExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Channel{ID: uint64(id), GroupID: groupID, Name: name}, nil
}

// Delete removes a channel by (group, name). Deleting a channel that does not
// exist is a no-op success so repeated deletes stay safe.
func (r *ChannelRepo) Delete(ctx context.Context, groupID uint64, name string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM channels WHERE group_id = ? AND name = ?", groupID, name)
	return err
}

// ListByGroup returns a group's channels ordered by name. The preferred
// display ordering (announcements first) is a client concern.
func (r *ChannelRepo) ListByGroup(ctx context.Context, groupID uint64) ([]*Channel, error) {
	const q = "SELECT id, group_id, name FROM channels WHERE group_id = ? ORDER BY name"
	rows, err := r.db.QueryContext(ctx, q, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Channel
	for rows.Next() {
		c := new(Channel)
		if err := rows.Scan(&c.ID, &c.GroupID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Exists reports whether a channel with this (group, name) pair is present.
func (r *ChannelRepo) Exists(ctx context.Context, groupID uint64, name string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM channels WHERE group_id = ? AND name = ? LIMIT 1",
		groupID, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
