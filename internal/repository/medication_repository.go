package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Medication is a per-user medication with one or more schedule rows (one per
// time of day). Each schedule row carries the daily check-off flag that the
// midnight scheduler clears.
type Medication struct {
	ID        uint64               `json:"id"`
	UserID    uint64               `json:"user_id"`
	Name      string               `json:"name"`
	Dosage    string               `json:"dosage"`
	Notes     string               `json:"notes"`
	Schedules []MedicationSchedule `json:"schedules"`
}

// MedicationSchedule is one time-of-day slot for a medication.
type MedicationSchedule struct {
	ID           uint64 `json:"id"`
	MedicationID uint64 `json:"medication_id"`
	TimeOfDay    string `json:"time_of_day"` // "15:04"
	IsChecked    bool   `json:"is_checked"`
}

// ErrMedicationNotFound is returned when a medication or schedule lookup
// matches no row.
var ErrMedicationNotFound = errors.New("medication not found")

type MedicationRepo struct {
	db *sql.DB
}

func NewMedicationRepo(db *sql.DB) *MedicationRepo { return &MedicationRepo{db: db} }

// Create inserts the medication and its schedule rows in one transaction.
func (r *MedicationRepo) Create(ctx context.Context, m *Medication) (err error) {
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

	res, execErr := tx.ExecContext(ctx,
		"INSERT INTO medications (user_id, name, dosage, notes) VALUES (?,?,?,?)",
		m.UserID, m.Name, m.Dosage, m.Notes)
	if execErr != nil {
		err = execErr
		return err
	}
	id, idErr := res.LastInsertId()
	if idErr != nil {
		err = idErr
		return err
	}
	m.ID = uint64(id)

	for i := range m.Schedules {
		s := &m.Schedules[i]
		s.MedicationID = m.ID
		s.IsChecked = false
		var sres sql.Result
		if sres, err = tx.ExecContext(ctx,
			"INSERT INTO medication_schedules (medication_id, time_of_day, is_checked) VALUES (?,?,0)",
			m.ID, s.TimeOfDay); err != nil {
			return err
		}
		if sid, sidErr := sres.LastInsertId(); sidErr == nil {
			s.ID = uint64(sid)
		}
	}
	return nil
}

// ListByUser returns the user's medications with their schedule rows.
func (r *MedicationRepo) ListByUser(ctx context.Context, userID uint64) ([]*Medication, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, name, dosage, notes FROM medications WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := map[uint64]*Medication{}
	var out []*Medication
	for rows.Next() {
		m := new(Medication)
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.Dosage, &m.Notes); err != nil {
			return nil, err
		}
		m.Schedules = []MedicationSchedule{}
		byID[m.ID] = m
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	srows, err := r.db.QueryContext(ctx,
		`SELECT s.id, s.medication_id, s.time_of_day, s.is_checked
		 FROM medication_schedules s JOIN medications m ON m.id = s.medication_id
		 WHERE m.user_id = ? ORDER BY s.time_of_day`, userID)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var s MedicationSchedule
		if err := srows.Scan(&s.ID, &s.MedicationID, &s.TimeOfDay, &s.IsChecked); err != nil {
			return nil, err
		}
		if m, ok := byID[s.MedicationID]; ok {
			m.Schedules = append(m.Schedules, s)
		}
	}
	return out, srows.Err()
}

// SetChecked toggles one schedule slot, scoped to the owning user.
func (r *MedicationRepo) SetChecked(ctx context.Context, scheduleID, userID uint64, checked bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE medication_schedules s JOIN medications m ON m.id = s.medication_id
		 SET s.is_checked = ? WHERE s.id = ? AND m.user_id = ?`,
		checked, scheduleID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is also 0 when the flag already holds the requested
		// value, so confirm the row exists before reporting not-found.
		var one int
		qerr := r.db.QueryRowContext(ctx,
			`SELECT 1 FROM medication_schedules s JOIN medications m ON m.id = s.medication_id
			 WHERE s.id = ? AND m.user_id = ? LIMIT 1`, scheduleID, userID).Scan(&one)
		if errors.Is(qerr, sql.ErrNoRows) {
			return ErrMedicationNotFound
		}
		return qerr
	}
	return nil
}

// Update changes a medication's name, dosage and notes. Schedule slots are
// managed through SetChecked and recreate-on-change, not edited here.
func (r *MedicationRepo) Update(ctx context.Context, m *Medication) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE medications SET name=?, dosage=?, notes=? WHERE id=? AND user_id=?",
		m.Name, m.Dosage, m.Notes, m.ID, m.UserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		qerr := r.db.QueryRowContext(ctx,
			"SELECT 1 FROM medications WHERE id = ? AND user_id = ? LIMIT 1", m.ID, m.UserID).Scan(&one)
		if errors.Is(qerr, sql.ErrNoRows) {
			return ErrMedicationNotFound
		}
		return qerr
	}
	return nil
}

// Delete removes a medication and its schedule rows.
func (r *MedicationRepo) Delete(ctx context.Context, id, userID uint64) (err error) {
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
		"SELECT 1 FROM medications WHERE id = ? AND user_id = ?", id, userID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrMedicationNotFound
		}
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM medication_schedules WHERE medication_id = ?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM medications WHERE id = ?", id); err != nil {
		return err
	}
	return nil
}

// ResetAllChecks clears every schedule's check-off flag across all users.
// Fired by the midnight scheduler; returns the number of rows touched.
func (r *MedicationRepo) ResetAllChecks(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE medication_schedules SET is_checked = 0 WHERE is_checked = 1")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// LastResetDate returns the date (server-local "2006-01-02") of the most
// recent completed reset, or the zero string when none is recorded.
func (r *MedicationRepo) LastResetDate(ctx context.Context) (string, error) {
	var d string
	err := r.db.QueryRowContext(ctx,
		"SELECT reset_date FROM medication_reset_runs ORDER BY reset_date DESC LIMIT 1").Scan(&d)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return d, err
}

// RecordReset stores a completed reset so a restart after midnight does not
// silently skip the day.
func (r *MedicationRepo) RecordReset(ctx context.Context, day time.Time, rowsReset int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO medication_reset_runs (reset_date, rows_reset) VALUES (?,?)
		 ON DUPLICATE KEY UPDATE rows_reset = VALUES(rows_reset)`,
		day.Format("2006-01-02"), rowsReset)
	return err
}
