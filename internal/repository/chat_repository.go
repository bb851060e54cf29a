package repository

// Chat messages live in MongoDB, not MySQL. Every message carries a composite
// channel id ("<groupID>_<channelName>") and all queries filter on it, so a
// message is never visible outside its channel. Only the authoring user may
// edit or delete a message; the author id is compared against the identity
// decoded from the caller's bearer token, never against anything the client
// sends in a body.

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChatMessage is one chat post in a channel.
type ChatMessage struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ChannelID   string             `bson:"channel_id" json:"channel_id"`
	GroupID     uint64             `bson:"group_id" json:"group_id"`
	ChannelName string             `bson:"channel_name" json:"channel_name"`
	Text        string             `bson:"text" json:"text"`
	UserID      uint64             `bson:"user_id" json:"user_id"`
	UserName    string             `bson:"user_name" json:"user_name"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	Edited      bool               `bson:"edited" json:"edited"`
	EditedAt    *time.Time         `bson:"edited_at,omitempty" json:"edited_at,omitempty"`
}

// ChatSummary is the per-group "last activity" record used for quick listing
// of a group's chat without scanning messages.
type ChatSummary struct {
	GroupID      uint64    `bson:"_id" json:"group_id"`
	LastText     string    `bson:"last_text" json:"last_text"`
	LastUserName string    `bson:"last_user_name" json:"last_user_name"`
	LastChannel  string    `bson:"last_channel" json:"last_channel"`
	LastActivity time.Time `bson:"last_activity" json:"last_activity"`
}

// ErrMessageNotFound is returned when a message id matches no document.
var ErrMessageNotFound = errors.New("message not found")

// ChannelID builds the composite channel identifier.
func ChannelID(groupID uint64, channelName string) string {
	return fmt.Sprintf("%d_%s", groupID, channelName)
}

// ParseChannelID splits a composite channel id back into its group id and
// channel name.
func ParseChannelID(channelID string) (uint64, string, bool) {
	idx := strings.IndexByte(channelID, '_')
	if idx <= 0 {
		return 0, "", false
	}
	n, err := strconv.ParseUint(channelID[:idx], 10, 64)
	if err != nil {
		return 0, "", false
	}
	return n, channelID[idx+1:], true
}

// ChatRepo manages chat message and summary documents.
type ChatRepo struct {
	messages  *mongo.Collection
	summaries *mongo.Collection
}

func NewChatRepo(db *mongo.Database) *ChatRepo {
	return &ChatRepo{
		messages:  db.Collection("messages"),
		summaries: db.Collection("chat_summaries"),
	}
}

// EnsureIndexes creates the indexes chat queries rely on.
func (r *ChatRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "channel_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_messages_channel"),
		},
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}},
			Options: options.Index().SetName("idx_messages_group"),
		},
	})
	return err
}

// CreateMessage inserts a message with a server-assigned timestamp and
// refreshes the group's chat summary. The summary upsert is part of the same
// call so listings stay close to the truth; last writer wins on concurrent
// posts, which is the contract of the summary record.
func (r *ChatRepo) CreateMessage(ctx context.Context, m *ChatMessage) error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	m.CreatedAt = time.Now().UTC()
	m.Edited = false
	m.EditedAt = nil
	if _, err := r.messages.InsertOne(ctx, m); err != nil {
		return err
	}

	_, err := r.summaries.UpdateOne(ctx,
		bson.M{"_id": m.GroupID},
		bson.M{"$set": bson.M{
			"last_text":      m.Text,
			"last_user_name": m.UserName,
			"last_channel":   m.ChannelName,
			"last_activity":  m.CreatedAt,
		}},
		options.Update().SetUpsert(true))
	return err
}

// ListByChannel returns every message in a channel ordered by creation time
// ascending. No pagination: the client re-sorts and renders the full set.
func (r *ChatRepo) ListByChannel(ctx context.Context, channelID string) ([]ChatMessage, error) {
	cur, err := r.messages.Find(ctx,
		bson.M{"channel_id": channelID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []ChatMessage{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateMessage replaces the text of a message the caller authored, marking
// it edited. A caller id that does not match the stored author id fails with
// ErrForbidden and leaves the document untouched.
func (r *ChatRepo) UpdateMessage(ctx context.Context, id primitive.ObjectID, callerID uint64, newText string) (*ChatMessage, error) {
	var m ChatMessage
	if err := r.messages.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	if m.UserID != callerID {
		return nil, ErrForbidden
	}

	now := time.Now().UTC()
	_, err := r.messages.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"text": newText, "edited": true, "edited_at": now}})
	if err != nil {
		return nil, err
	}
	m.Text = newText
	m.Edited = true
	m.EditedAt = &now
	return &m, nil
}

// DeleteMessage removes a message the caller authored.
func (r *ChatRepo) DeleteMessage(ctx context.Context, id primitive.ObjectID, callerID uint64) error {
	var m ChatMessage
	if err := r.messages.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrMessageNotFound
		}
		return err
	}
	if m.UserID != callerID {
		return ErrForbidden
	}
	_, err := r.messages.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteChannelMessages purges every message of one channel. Called after a
// channel is removed from MySQL so the document store does not accumulate
// orphans. A group summary still pointing at the purged channel is dropped
// too, otherwise the group listing keeps advertising activity in a channel
// that no longer exists.
func (r *ChatRepo) DeleteChannelMessages(ctx context.Context, channelID string) (int64, error) {
	res, err := r.messages.DeleteMany(ctx, bson.M{"channel_id": channelID})
	if err != nil {
		return 0, err
	}
	if groupID, name, ok := ParseChannelID(channelID); ok {
		if _, err := r.summaries.DeleteOne(ctx,
			bson.M{"_id": groupID, "last_channel": name}); err != nil {
			return res.DeletedCount, err
		}
	}
	return res.DeletedCount, nil
}

// DeleteGroupMessages purges all messages and the summary of a deleted group.
func (r *ChatRepo) DeleteGroupMessages(ctx context.Context, groupID uint64) (int64, error) {
	res, err := r.messages.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	_, err = r.summaries.DeleteOne(ctx, bson.M{"_id": groupID})
	return res.DeletedCount, err
}

// GetSummary returns a group's chat summary, or nil when nothing has ever
// been posted.
func (r *ChatRepo) GetSummary(ctx context.Context, groupID uint64) (*ChatSummary, error) {
	var s ChatSummary
	err := r.summaries.FindOne(ctx, bson.M{"_id": groupID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
