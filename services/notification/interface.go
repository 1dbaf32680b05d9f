package notification

import (
	"context"

	"learnhub/models"
)

// ContentUpdate carries the fields an administrator may change on an existing
// notification. Kind, recipient and creation time are immutable.
type ContentUpdate struct {
	Title     *string
	Body      *string
	ExtraData map[string]any
}

// NotificationService builds, persists and delivers notifications, and serves
// the direct notification API.
type NotificationService interface {
	// Create persists an already-rendered notification (administrator path)
	// and pushes it to the recipient's live sessions.
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	// Get fetches a single notification by id.
	Get(ctx context.Context, id string) (*models.Notification, error)
	// List returns one page of a recipient's notifications, newest first.
	List(ctx context.Context, userID int64, unreadOnly bool, page, pageSize int) ([]models.Notification, error)
	// MarkRead marks one notification read; marking twice is a no-op.
	MarkRead(ctx context.Context, id string) (*models.Notification, error)
	// MarkUnread reverts a notification to unread, clearing its read time.
	MarkUnread(ctx context.Context, id string) (*models.Notification, error)
	// MarkAllRead marks all of a recipient's unread notifications read and
	// returns the number actually transitioned.
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	// CountUnread returns the recipient's unread notification count.
	CountUnread(ctx context.Context, userID int64) (int64, error)
	// UpdateContent applies an administrator edit to title/body/extra data.
	UpdateContent(ctx context.Context, id string, upd ContentUpdate) (*models.Notification, error)
	// Delete removes one notification.
	Delete(ctx context.Context, id string) error

	// Domain event triggers. They run synchronously after the originating
	// write has committed; every failure is logged and swallowed so the
	// domain operation is never rolled back or aborted.
	EnrollmentCreated(ctx context.Context, ev EnrollmentCreatedEvent)
	EnrollmentCompleted(ctx context.Context, ev EnrollmentCompletedEvent)
	CourseUpdated(ctx context.Context, ev CourseUpdatedEvent)
	ReviewCreated(ctx context.Context, ev ReviewCreatedEvent)
	ReviewAnswered(ctx context.Context, ev ReviewAnsweredEvent)
	AnnouncementCreated(ctx context.Context, ev AnnouncementCreatedEvent)
}
