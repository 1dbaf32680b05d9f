package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind enumerates the notification kinds the platform emits.
type Kind string

const (
	KindNewEnrollment   Kind = "new_enrollment"
	KindCourseCompleted Kind = "course_completed"
	KindNewReview       Kind = "new_review"
	KindReviewReply     Kind = "review_reply"
	KindNewAnnouncement Kind = "new_announcement"
	KindCourseUpdated   Kind = "course_updated"
	KindSystemMessage   Kind = "system_message"
)

// ValidKind reports whether k is one of the recognized notification kinds.
func ValidKind(k Kind) bool {
	switch k {
	case KindNewEnrollment, KindCourseCompleted, KindNewReview,
		KindReviewReply, KindNewAnnouncement, KindCourseUpdated, KindSystemMessage:
		return true
	}
	return false
}

// Notification is a single per-recipient notification document. The recipient
// is a weak reference into the platform's relational user store; the document
// carries enough denormalized context in ExtraData to render without lookups.
type Notification struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    int64              `json:"user_id" bson:"user_id"`
	Kind      Kind               `json:"kind" bson:"kind"`
	Title     string             `json:"title" bson:"title"`
	Body      string             `json:"body" bson:"body"`
	Read      bool               `json:"read" bson:"read"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	ReadAt    *time.Time         `json:"read_at" bson:"read_at,omitempty"`
	ExtraData map[string]any     `json:"extra_data" bson:"extra_data,omitempty"`
}
