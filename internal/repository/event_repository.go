package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Event belongs to a group and a channel (conventionally "event"). Dates and
// times are kept as strings ("2006-01-02", "15:04") because the client edits
// them as text; no overlap detection is performed across events.
type Event struct {
	ID          uint64 `json:"id"`
	GroupID     uint64 `json:"group_id"`
	ChannelName string `json:"channel_name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	EventDate   string `json:"event_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Location    string `json:"location"`
	CreatedBy   uint64 `json:"created_by"`
	CreatedAt   string `json:"created_at"`
}

// ErrEventNotFound is returned when an event lookup matches no row.
var ErrEventNotFound = errors.New("event not found")

// EventRepo encapsulates the events table.
type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = "id, group_id, channel_name, title, description, event_date, start_time, end_time, location, created_by, created_at"

// Create inserts an event and populates its ID.
func (r *EventRepo) Create(ctx context.Context, e *Event) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO events (group_id, channel_name, title, description, event_date, start_time, end_time, location, created_by)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		e.GroupID, e.ChannelName, e.Title, e.Description, e.EventDate, e.StartTime, e.EndTime, e.Location, e.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// GetByID fetches a single event.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*Event, error) {
	var e Event
	err := r.db.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id = ?", id).
		Scan(&e.ID, &e.GroupID, &e.ChannelName, &e.Title, &e.Description, &e.EventDate,
			&e.StartTime, &e.EndTime, &e.Location, &e.CreatedBy, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListByGroup returns a group's events ordered by event date ascending.
func (r *EventRepo) ListByGroup(ctx context.Context, groupID uint64) ([]*Event, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE group_id = ? ORDER BY event_date, start_time", groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Event
	for rows.Next() {
		e := new(Event)
		if err := rows.Scan(&e.ID, &e.GroupID, &e.ChannelName, &e.Title, &e.Description, &e.EventDate,
			&e.StartTime, &e.EndTime, &e.Location, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Update rewrites the editable fields of an event.
func (r *EventRepo) Update(ctx context.Context, e *Event) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET title=?, description=?, event_date=?, start_time=?, end_time=?, location=?
		 WHERE id=?`,
		e.Title, e.Description, e.EventDate, e.StartTime, e.EndTime, e.Location, e.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// Delete removes an event by id.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEventNotFound
	}
	return nil
}
