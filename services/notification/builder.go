package notification

import (
	"context"
	"time"

	notifRepo "learnhub/database/repository/notification"
	"learnhub/models"
	"learnhub/services/realtime"
	"learnhub/utils"

	"firebase.google.com/go/v4/messaging"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DefaultNotificationService is the production implementation. It renders
// notification content from per-kind templates, persists through the
// notification store, and attempts best-effort real-time delivery.
type DefaultNotificationService struct {
	Repo      notifRepo.NotificationRepository
	Publisher realtime.Publisher
	Directory UserDirectory
	// Cache, when set, keeps short-lived per-recipient unread counts.
	Cache *redis.Client
}

// build renders and persists one notification, then pushes it. The persisted
// record, with its generated id, is returned to the caller.
func (s *DefaultNotificationService) build(ctx context.Context, userID int64, kind models.Kind, title, body string, extra map[string]any) (*models.Notification, error) {
	n := &models.Notification{
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
		ExtraData: extra,
	}
	if err := s.Repo.Create(n); err != nil {
		return nil, err
	}
	s.push(ctx, n)
	return n, nil
}

// push fans a persisted notification out to the recipient's live sessions and,
// when a device token is known, to their mobile device. Both paths are best
// effort; the record is already durable.
func (s *DefaultNotificationService) push(ctx context.Context, n *models.Notification) {
	s.invalidateUnreadCount(ctx, n.UserID)
	if s.Publisher != nil {
		s.Publisher.PublishNotification(n.UserID, n)
	}
	s.sendMobilePush(ctx, n)
}

// sendMobilePush sends an FCM message when Firebase is configured and the
// directory knows a device token for the recipient.
func (s *DefaultNotificationService) sendMobilePush(ctx context.Context, n *models.Notification) {
	if utils.FCMClient == nil || s.Directory == nil {
		return
	}
	logger := utils.GetLogger()

	info, err := s.Directory.Resolve(ctx, n.UserID)
	if err != nil || info == nil || info.DeviceToken == "" {
		return
	}

	msg := &messaging.Message{
		Token: info.DeviceToken,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: map[string]string{
			"kind":            string(n.Kind),
			"notification_id": n.ID.Hex(),
		},
	}
	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		logger.Warn("notification: mobile push failed",
			zap.Int64("userID", n.UserID), zap.Error(err))
	}
}

// resolveName prefers the name carried on the event payload and falls back to
// a directory lookup. A dangling user reference renders as a generic label
// rather than failing the notification.
func (s *DefaultNotificationService) resolveName(ctx context.Context, userID int64, provided string) string {
	if provided != "" {
		return provided
	}
	if s.Directory != nil {
		if info, err := s.Directory.Resolve(ctx, userID); err == nil && info != nil && info.DisplayName != "" {
			return info.DisplayName
		}
	}
	return "A former user"
}

// excerpt truncates s to at most max runes, appending "..." when truncated.
func excerpt(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
