package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestChannelID(t *testing.T) {
	assert.Equal(t, "12_general", ChannelID(12, "general"))
	assert.Equal(t, "7_book-club", ChannelID(7, "book-club"))
}

func TestParseChannelID(t *testing.T) {
	id, name, ok := ParseChannelID("12_general")
	assert.True(t, ok)
	assert.Equal(t, uint64(12), id)
	assert.Equal(t, "general", name)

	// Channel names may themselves contain separators past the first.
	id, name, ok = ParseChannelID("3_my_channel")
	assert.True(t, ok)
	assert.Equal(t, uint64(3), id)
	assert.Equal(t, "my_channel", name)

	_, _, ok = ParseChannelID("general")
	assert.False(t, ok)
	_, _, ok = ParseChannelID("_general")
	assert.False(t, ok)
	_, _, ok = ParseChannelID("x_general")
	assert.False(t, ok)
}

func storedMessageDoc(id primitive.ObjectID, authorID int64) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "channel_id", Value: "3_general"},
		{Key: "group_id", Value: int64(3)},
		{Key: "channel_name", Value: "general"},
		{Key: "text", Value: "hello"},
		{Key: "user_id", Value: authorID},
		{Key: "user_name", Value: "Mei Lin"},
		{Key: "created_at", Value: time.Now().UTC()},
		{Key: "edited", Value: false},
	}
}

func TestChatMessageAuthorOnly(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("update by another user is forbidden", func(mt *mtest.T) {
		repo := NewChatRepo(mt.DB)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0,
			mt.DB.Name()+".messages", mtest.FirstBatch, storedMessageDoc(oid, 42)))

		msg, err := repo.UpdateMessage(context.Background(), oid, 7, "rewritten")
		assert.ErrorIs(mt, err, ErrForbidden)
		assert.Nil(mt, msg)

		// Only the lookup reached the store; no update command was sent, so
		// the document is untouched.
		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "find", evt.CommandName)
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("delete by another user is forbidden", func(mt *mtest.T) {
		repo := NewChatRepo(mt.DB)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0,
			mt.DB.Name()+".messages", mtest.FirstBatch, storedMessageDoc(oid, 42)))

		err := repo.DeleteMessage(context.Background(), oid, 7)
		assert.ErrorIs(mt, err, ErrForbidden)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "find", evt.CommandName)
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("author may update", func(mt *mtest.T) {
		repo := NewChatRepo(mt.DB)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0,
				mt.DB.Name()+".messages", mtest.FirstBatch, storedMessageDoc(oid, 42)),
			mtest.CreateSuccessResponse(),
		)

		msg, err := repo.UpdateMessage(context.Background(), oid, 42, "rewritten")
		require.NoError(mt, err)
		require.NotNil(mt, msg)
		assert.Equal(mt, "rewritten", msg.Text)
		assert.True(mt, msg.Edited)
		require.NotNil(mt, msg.EditedAt)
	})

	mt.Run("missing message maps to not found", func(mt *mtest.T) {
		repo := NewChatRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0,
			mt.DB.Name()+".messages", mtest.FirstBatch))

		_, err := repo.UpdateMessage(context.Background(), primitive.NewObjectID(), 42, "x")
		assert.ErrorIs(mt, err, ErrMessageNotFound)
	})
}
