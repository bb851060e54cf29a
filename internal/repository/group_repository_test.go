package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*GroupRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewGroupRepo(db), mock
}

func expectGroupCreate(mock sqlmock.Sqlmock, groupID int64) {
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO hobby_groups").
		WithArgs("Book Club", "weekly reads", 7).
		WillReturnResult(sqlmock.NewResult(groupID, 1))
	for _, ch := range DefaultChannels {
		mock.ExpectExec("INSERT INTO channels").
			WithArgs(groupID, ch).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	// Owner membership, then the admin sweep.
	mock.ExpectExec("INSERT INTO members").
		WithArgs(groupID, 7).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO members").
		WithArgs(groupID, 7).
		WillReturnResult(sqlmock.NewResult(2, 1))
}

func TestGroupCreateSeedsChannelsAndMembers(t *testing.T) {
	repo, mock := newMockDB(t)
	expectGroupCreate(mock, 12)
	mock.ExpectCommit()

	id, err := repo.Create(context.Background(), "Book Club", "weekly reads", 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupCreateCommitFailure(t *testing.T) {
	repo, mock := newMockDB(t)
	expectGroupCreate(mock, 12)
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

	id, err := repo.Create(context.Background(), "Book Club", "weekly reads", 7)
	assert.Error(t, err)
	assert.Zero(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupCreateInsertFailureRollsBack(t *testing.T) {
	repo, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO hobby_groups").
		WithArgs("Book Club", "weekly reads", 7).
		WillReturnError(errors.New("table gone"))
	mock.ExpectRollback()

	id, err := repo.Create(context.Background(), "Book Club", "weekly reads", 7)
	assert.Error(t, err)
	assert.Zero(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupDeleteWithMembersCommitFailure(t *testing.T) {
	repo, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM hobby_groups").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectExec("DELETE FROM events").WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM channels").WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM members").WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("DELETE FROM hobby_groups").WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

	err := repo.DeleteWithMembers(context.Background(), 5)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupDeleteWithMembersMissingGroup(t *testing.T) {
	repo, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM hobby_groups").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.DeleteWithMembers(context.Background(), 99)
	assert.ErrorIs(t, err, ErrGroupNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
