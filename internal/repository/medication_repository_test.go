package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedicationCreateCommitFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO medications").
		WithArgs(3, "Metformin", "500mg", "").
		WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectExec("INSERT INTO medication_schedules").
		WithArgs(8, "08:00").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

	m := &Medication{
		UserID:    3,
		Name:      "Metformin",
		Dosage:    "500mg",
		Schedules: []MedicationSchedule{{TimeOfDay: "08:00"}},
	}
	err = NewMedicationRepo(db).Create(context.Background(), m)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMedicationDeleteCommitFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM medications").
		WithArgs(8, 3).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("DELETE FROM medication_schedules").
		WithArgs(8).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM medications").
		WithArgs(8).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

	err = NewMedicationRepo(db).Delete(context.Background(), 8, 3)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
