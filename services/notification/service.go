package notification

import (
	"context"
	"fmt"

	notifRepo "learnhub/database/repository/notification"
	"learnhub/models"
)

// Direct notification API operations, serving the REST handlers.

// Create persists an already-rendered notification (administrator path) and
// pushes it to the recipient's live sessions.
func (s *DefaultNotificationService) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: empty notification", notifRepo.ErrInvalid)
	}
	if err := s.Repo.Create(n); err != nil {
		return nil, err
	}
	s.push(ctx, n)
	return n, nil
}

// Get fetches a single notification by id.
func (s *DefaultNotificationService) Get(_ context.Context, id string) (*models.Notification, error) {
	return s.Repo.GetByID(id)
}

// List returns one page of a recipient's notifications, newest first.
func (s *DefaultNotificationService) List(_ context.Context, userID int64, unreadOnly bool, page, pageSize int) ([]models.Notification, error) {
	return s.Repo.ListByUser(userID, unreadOnly, page, pageSize)
}

// MarkRead marks one notification read; marking twice is a no-op.
func (s *DefaultNotificationService) MarkRead(ctx context.Context, id string) (*models.Notification, error) {
	n, err := s.Repo.MarkRead(id)
	if err != nil {
		return nil, err
	}
	s.invalidateUnreadCount(ctx, n.UserID)
	return n, nil
}

// MarkUnread reverts a notification to unread.
func (s *DefaultNotificationService) MarkUnread(ctx context.Context, id string) (*models.Notification, error) {
	n, err := s.Repo.MarkUnread(id)
	if err != nil {
		return nil, err
	}
	s.invalidateUnreadCount(ctx, n.UserID)
	return n, nil
}

// MarkAllRead marks all of a recipient's unread notifications read.
func (s *DefaultNotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	count, err := s.Repo.MarkAllRead(userID)
	if err != nil {
		return 0, err
	}
	s.invalidateUnreadCount(ctx, userID)
	return count, nil
}

// CountUnread returns the recipient's unread notification count, served from
// a short-lived cache when one is configured.
func (s *DefaultNotificationService) CountUnread(ctx context.Context, userID int64) (int64, error) {
	if cached := s.cachedUnreadCount(ctx, userID); cached >= 0 {
		return cached, nil
	}
	count, err := s.Repo.CountUnread(userID)
	if err != nil {
		return 0, err
	}
	s.storeUnreadCount(ctx, userID, count)
	return count, nil
}

// UpdateContent applies an administrator edit to title/body/extra data.
func (s *DefaultNotificationService) UpdateContent(_ context.Context, id string, upd ContentUpdate) (*models.Notification, error) {
	return s.Repo.UpdateContent(id, upd.Title, upd.Body, upd.ExtraData)
}

// Delete removes one notification.
func (s *DefaultNotificationService) Delete(ctx context.Context, id string) error {
	n, err := s.Repo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(id); err != nil {
		return err
	}
	if !n.Read {
		s.invalidateUnreadCount(ctx, n.UserID)
	}
	return nil
}
