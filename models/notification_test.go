package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestValidKind(t *testing.T) {
	for _, k := range []Kind{
		KindNewEnrollment, KindCourseCompleted, KindNewReview, KindReviewReply,
		KindNewAnnouncement, KindCourseUpdated, KindSystemMessage,
	} {
		assert.True(t, ValidKind(k), "kind %q should be valid", k)
	}
	assert.False(t, ValidKind(""))
	assert.False(t, ValidKind("enrollment"))
}

func TestNotificationWireShape(t *testing.T) {
	readAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	n := Notification{
		ID:        primitive.NewObjectID(),
		UserID:    7,
		Kind:      KindNewReview,
		Title:     "New review",
		Body:      "4.5 stars",
		Read:      true,
		CreatedAt: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
		ReadAt:    &readAt,
		ExtraData: map[string]any{"course_id": 1},
	}

	b, err := json.Marshal(n)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	for _, key := range []string{"id", "user_id", "kind", "title", "body", "read", "created_at", "read_at", "extra_data"} {
		assert.Contains(t, raw, key)
	}
	assert.Equal(t, "new_review", raw["kind"])
}

func TestUnreadNotificationHasNullReadAt(t *testing.T) {
	n := Notification{
		ID:        primitive.NewObjectID(),
		UserID:    7,
		Kind:      KindSystemMessage,
		Title:     "t",
		Body:      "b",
		CreatedAt: time.Now().UTC(),
	}

	b, err := json.Marshal(n)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Contains(t, raw, "read_at")
	assert.Nil(t, raw["read_at"])
}
