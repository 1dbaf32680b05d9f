package notifRepo

import (
	"time"

	"learnhub/models"
)

// NotificationRepository defines methods for notification data access.
type NotificationRepository interface {
	// Create inserts a new notification and fills in its generated id.
	Create(n *models.Notification) error
	// GetByID retrieves a notification by its hex id.
	GetByID(id string) (*models.Notification, error)
	// ListByUser retrieves one page of a recipient's notifications, newest
	// first. When unreadOnly is set, read notifications are skipped.
	ListByUser(userID int64, unreadOnly bool, page, pageSize int) ([]models.Notification, error)
	// MarkRead marks a notification as read, recording the read timestamp the
	// first time only. Marking an already-read notification is a no-op that
	// returns the current document.
	MarkRead(id string) (*models.Notification, error)
	// MarkUnread reverts a notification to unread and clears its read
	// timestamp. Already-unread notifications are returned unchanged.
	MarkUnread(id string) (*models.Notification, error)
	// UpdateContent applies a partial edit to title, body and extra data.
	// Kind, recipient and creation time are immutable.
	UpdateContent(id string, title, body *string, extra map[string]any) (*models.Notification, error)
	// MarkAllRead marks every unread notification of the recipient as read and
	// returns the number of documents actually transitioned.
	MarkAllRead(userID int64) (int64, error)
	// CountUnread returns the recipient's number of unread notifications.
	CountUnread(userID int64) (int64, error)
	// Delete removes a notification by its hex id.
	Delete(id string) error
	// DeleteReadBefore removes read notifications created before the cutoff.
	// Used by the retention worker.
	DeleteReadBefore(cutoff time.Time) (int64, error)
}
