package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	notifRepo "learnhub/database/repository/notification"
	"learnhub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryRepo is an in-memory NotificationRepository mirroring the store's
// semantics: generated ids, newest-first ordering and once-only read marking.
type memoryRepo struct {
	mu    sync.Mutex
	items map[string]*models.Notification
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[string]*models.Notification)}
}

func (r *memoryRepo) Create(n *models.Notification) error {
	if n.UserID == 0 || !models.ValidKind(n.Kind) || n.Title == "" || n.Body == "" {
		return notifRepo.ErrInvalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	clone := *n
	r.items[n.ID.Hex()] = &clone
	return nil
}

func (r *memoryRepo) GetByID(id string) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok {
		return nil, notifRepo.ErrNotFound
	}
	clone := *n
	return &clone, nil
}

func (r *memoryRepo) ListByUser(userID int64, unreadOnly bool, page, pageSize int) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Notification
	for _, n := range r.items {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})

	start := (page - 1) * pageSize
	if start >= len(out) {
		return []models.Notification{}, nil
	}
	end := start + pageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (r *memoryRepo) MarkRead(id string) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok {
		return nil, notifRepo.ErrNotFound
	}
	if !n.Read {
		now := time.Now().UTC()
		n.Read = true
		n.ReadAt = &now
	}
	clone := *n
	return &clone, nil
}

func (r *memoryRepo) MarkUnread(id string) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok {
		return nil, notifRepo.ErrNotFound
	}
	n.Read = false
	n.ReadAt = nil
	clone := *n
	return &clone, nil
}

func (r *memoryRepo) UpdateContent(id string, title, body *string, extra map[string]any) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok {
		return nil, notifRepo.ErrNotFound
	}
	if title != nil {
		if *title == "" {
			return nil, notifRepo.ErrInvalid
		}
		n.Title = *title
	}
	if body != nil {
		if *body == "" {
			return nil, notifRepo.ErrInvalid
		}
		n.Body = *body
	}
	if extra != nil {
		n.ExtraData = extra
	}
	clone := *n
	return &clone, nil
}

func (r *memoryRepo) MarkAllRead(userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	now := time.Now().UTC()
	for _, n := range r.items {
		if n.UserID == userID && !n.Read {
			n.Read = true
			t := now
			n.ReadAt = &t
			count++
		}
	}
	return count, nil
}

func (r *memoryRepo) CountUnread(userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.items {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *memoryRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return notifRepo.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memoryRepo) DeleteReadBefore(cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, n := range r.items {
		if n.Read && n.CreatedAt.Before(cutoff) {
			delete(r.items, id)
			count++
		}
	}
	return count, nil
}

// recordingPublisher captures hub deliveries per recipient.
type recordingPublisher struct {
	mu     sync.Mutex
	pushed map[int64][]*models.Notification
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{pushed: make(map[int64][]*models.Notification)}
}

func (p *recordingPublisher) PublishNotification(userID int64, n *models.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushed[userID] = append(p.pushed[userID], n)
}

func (p *recordingPublisher) forUser(userID int64) []*models.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pushed[userID]
}

// staticDirectory resolves users from a fixed map.
type staticDirectory struct {
	users map[int64]*UserInfo
}

func (d *staticDirectory) Resolve(_ context.Context, userID int64) (*UserInfo, error) {
	info, ok := d.users[userID]
	if !ok {
		return nil, notifRepo.ErrNotFound
	}
	return info, nil
}
