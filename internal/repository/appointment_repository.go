package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Appointment is a per-user medical appointment. Rows are always scoped by
// user id so one user can never read or mutate another's appointments.
type Appointment struct {
	ID        uint64 `json:"id"`
	UserID    uint64 `json:"user_id"`
	Title     string `json:"title"`
	Doctor    string `json:"doctor"`
	Location  string `json:"location"`
	ApptDate  string `json:"appt_date"`
	StartTime string `json:"start_time"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"created_at"`
}

// ErrAppointmentNotFound is returned when an appointment lookup matches no row.
var ErrAppointmentNotFound = errors.New("appointment not found")

type AppointmentRepo struct {
	db *sql.DB
}

func NewAppointmentRepo(db *sql.DB) *AppointmentRepo { return &AppointmentRepo{db: db} }

const apptColumns = "id, user_id, title, doctor, location, appt_date, start_time, notes, created_at"

// Create inserts an appointment and populates its ID.
func (r *AppointmentRepo) Create(ctx context.Context, a *Appointment) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO appointments (user_id, title, doctor, location, appt_date, start_time, notes)
		 VALUES (?,?,?,?,?,?,?)`,
		a.UserID, a.Title, a.Doctor, a.Location, a.ApptDate, a.StartTime, a.Notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByIDAndUser fetches one appointment owned by the user.
func (r *AppointmentRepo) GetByIDAndUser(ctx context.Context, id, userID uint64) (*Appointment, error) {
	var a Appointment
	err := r.db.QueryRowContext(ctx,
		"SELECT "+apptColumns+" FROM appointments WHERE id = ? AND user_id = ?", id, userID).
		Scan(&a.ID, &a.UserID, &a.Title, &a.Doctor, &a.Location, &a.ApptDate, &a.StartTime, &a.Notes, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByUser returns the user's appointments ordered by date then time.
func (r *AppointmentRepo) ListByUser(ctx context.Context, userID uint64) ([]*Appointment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+apptColumns+" FROM appointments WHERE user_id = ? ORDER BY appt_date, start_time", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		a := new(Appointment)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Title, &a.Doctor, &a.Location, &a.ApptDate, &a.StartTime, &a.Notes, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Update rewrites the editable fields; the user scope keeps it owner-only.
func (r *AppointmentRepo) Update(ctx context.Context, a *Appointment) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE appointments SET title=?, doctor=?, location=?, appt_date=?, start_time=?, notes=?
		 WHERE id=? AND user_id=?`,
		a.Title, a.Doctor, a.Location, a.ApptDate, a.StartTime, a.Notes, a.ID, a.UserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

// Delete removes one appointment owned by the user.
func (r *AppointmentRepo) Delete(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM appointments WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}
