package repository

import (
	"context"
	"database/sql"
)

// PrivateMessage is one direct message between two friends. Unlike channel
// chat these live in MySQL: they are small, strictly pairwise and queried as
// a two-sided conversation.
type PrivateMessage struct {
	ID         uint64 `json:"id"`
	SenderID   uint64 `json:"sender_id"`
	ReceiverID uint64 `json:"receiver_id"`
	Body       string `json:"body"`
	CreatedAt  string `json:"created_at"`
}

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

// Create inserts a message and populates its ID. The friendship check
// happens in the handler before this runs.
func (r *MessageRepo) Create(ctx context.Context, m *PrivateMessage) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO private_messages (sender_id, receiver_id, body) VALUES (?,?,?)",
		m.SenderID, m.ReceiverID, m.Body)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// Conversation returns every message between two users, oldest first.
func (r *MessageRepo) Conversation(ctx context.Context, a, b uint64) ([]*PrivateMessage, error) {
	const q = `SELECT id, sender_id, receiver_id, body, created_at
	           FROM private_messages
	           WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
	           ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, a, b, b, a)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*PrivateMessage
	for rows.Next() {
		m := new(PrivateMessage)
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
