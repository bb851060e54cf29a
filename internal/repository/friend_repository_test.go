package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderPair(t *testing.T) {
	a, b := orderPair(9, 2)
	assert.Equal(t, uint64(2), a)
	assert.Equal(t, uint64(9), b)
	a, b = orderPair(2, 9)
	assert.Equal(t, uint64(2), a)
	assert.Equal(t, uint64(9), b)
}

func TestFriendAcceptOrdersPair(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT from_user_id, to_user_id, status FROM friend_requests").
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"from_user_id", "to_user_id", "status"}).
			AddRow(9, 2, FriendPending))
	mock.ExpectExec("UPDATE friend_requests").
		WithArgs(FriendAccepted, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// The friendship row is stored low id first regardless of who sent it.
	mock.ExpectExec("INSERT INTO friendships").
		WithArgs(2, 9).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err = NewFriendRepo(db).Accept(context.Background(), 4, 2)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFriendAcceptCommitFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT from_user_id, to_user_id, status FROM friend_requests").
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"from_user_id", "to_user_id", "status"}).
			AddRow(2, 9, FriendPending))
	mock.ExpectExec("UPDATE friend_requests").
		WithArgs(FriendAccepted, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO friendships").
		WithArgs(2, 9).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

	err = NewFriendRepo(db).Accept(context.Background(), 4, 9)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFriendAcceptWrongRecipient(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT from_user_id, to_user_id, status FROM friend_requests").
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"from_user_id", "to_user_id", "status"}).
			AddRow(2, 9, FriendPending))
	mock.ExpectRollback()

	err = NewFriendRepo(db).Accept(context.Background(), 4, 3)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}
