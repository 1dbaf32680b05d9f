package handlers

import (
	"errors"
	"net/http"
	"strconv"

	notifRepo "learnhub/database/repository/notification"
	"learnhub/middleware"
	"learnhub/models"
	notifService "learnhub/services/notification"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// NotificationHandler serves the direct notification API.
type NotificationHandler struct {
	Service notifService.NotificationService
}

// NewNotificationHandler creates a handler bound to the given service.
func NewNotificationHandler(svc notifService.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: svc}
}

// principal returns the authenticated caller's user id and admin flag.
func principal(c *gin.Context) (int64, bool) {
	v, _ := c.Get("userID")
	userID, _ := v.(int64)
	role, _ := c.Get("role")
	return userID, role == middleware.RoleAdministrator
}

// pagination reads page/page_size query parameters with sane bounds.
func pagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if err != nil || size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// targetUser resolves which recipient a list/count call addresses: admins may
// pass a user_id filter, everyone else always gets their own.
func targetUser(c *gin.Context) int64 {
	userID, isAdmin := principal(c)
	if !isAdmin {
		return userID
	}
	if raw := c.Query("user_id"); raw != "" {
		if target, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return target
		}
	}
	return userID
}

// writeServiceError maps store errors onto HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, notifRepo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
	case errors.Is(err, notifRepo.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, notifRepo.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Notification store unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// fetchOwned loads a notification and enforces the owner-or-admin rule.
func (h *NotificationHandler) fetchOwned(c *gin.Context) (*models.Notification, bool) {
	userID, isAdmin := principal(c)

	n, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return nil, false
	}
	if !isAdmin && n.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this notification"})
		return nil, false
	}
	return n, true
}

// ListHandler handles GET /api/notifications.
func (h *NotificationHandler) ListHandler(c *gin.Context) {
	h.list(c, false)
}

// UnreadHandler handles GET /api/notifications/unread.
func (h *NotificationHandler) UnreadHandler(c *gin.Context) {
	h.list(c, true)
}

func (h *NotificationHandler) list(c *gin.Context, unreadOnly bool) {
	page, size := pagination(c)
	target := targetUser(c)

	notifications, err := h.Service.List(c.Request.Context(), target, unreadOnly, page, size)
	if err != nil {
		getLogger(c).Error("Failed to list notifications", zap.Int64("userID", target), zap.Error(err))
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"results":   notifications,
		"page":      page,
		"page_size": size,
	})
}

// CreateHandler handles POST /api/notifications (administrator only).
func (h *NotificationHandler) CreateHandler(c *gin.Context) {
	var req struct {
		UserID    int64          `json:"user_id" binding:"required"`
		Kind      models.Kind    `json:"kind" binding:"required"`
		Title     string         `json:"title" binding:"required"`
		Body      string         `json:"body" binding:"required"`
		ExtraData map[string]any `json:"extra_data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	n := &models.Notification{
		UserID:    req.UserID,
		Kind:      req.Kind,
		Title:     req.Title,
		Body:      req.Body,
		ExtraData: req.ExtraData,
	}
	created, err := h.Service.Create(c.Request.Context(), n)
	if err != nil {
		getLogger(c).Error("Failed to create notification", zap.Error(err))
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetByIDHandler handles GET /api/notifications/:id.
func (h *NotificationHandler) GetByIDHandler(c *gin.Context) {
	n, ok := h.fetchOwned(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, n)
}

// UpdateHandler handles PATCH /api/notifications/:id. Owners may only toggle
// the read flag; administrators may also edit content fields.
func (h *NotificationHandler) UpdateHandler(c *gin.Context) {
	_, isAdmin := principal(c)

	var req map[string]any
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	n, ok := h.fetchOwned(c)
	if !ok {
		return
	}

	if !isAdmin {
		for field := range req {
			if field != "read" {
				c.JSON(http.StatusForbidden, gin.H{"error": "You may only update the \"read\" field"})
				return
			}
		}
	}
	id := n.ID.Hex()
	ctx := c.Request.Context()

	if isAdmin {
		upd := notifService.ContentUpdate{}
		if v, ok := req["title"].(string); ok {
			upd.Title = &v
		}
		if v, ok := req["body"].(string); ok {
			upd.Body = &v
		}
		if v, ok := req["extra_data"].(map[string]any); ok {
			upd.ExtraData = v
		}
		if upd.Title != nil || upd.Body != nil || upd.ExtraData != nil {
			var err error
			if n, err = h.Service.UpdateContent(ctx, id, upd); err != nil {
				writeServiceError(c, err)
				return
			}
		}
	}

	if v, present := req["read"]; present {
		read, ok := v.(bool)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "\"read\" must be a boolean"})
			return
		}
		var err error
		if read {
			n, err = h.Service.MarkRead(ctx, id)
		} else {
			n, err = h.Service.MarkUnread(ctx, id)
		}
		if err != nil {
			writeServiceError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, n)
}

// DeleteHandler handles DELETE /api/notifications/:id.
func (h *NotificationHandler) DeleteHandler(c *gin.Context) {
	n, ok := h.fetchOwned(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), n.ID.Hex()); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkReadHandler handles POST /api/notifications/:id/mark_read.
func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	n, ok := h.fetchOwned(c)
	if !ok {
		return
	}
	updated, err := h.Service.MarkRead(c.Request.Context(), n.ID.Hex())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// MarkAllReadHandler handles POST /api/notifications/mark_all_read.
func (h *NotificationHandler) MarkAllReadHandler(c *gin.Context) {
	target := targetUser(c)

	count, err := h.Service.MarkAllRead(c.Request.Context(), target)
	if err != nil {
		getLogger(c).Error("Failed to mark all read", zap.Int64("userID", target), zap.Error(err))
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked_read": count})
}

// UnreadCountHandler handles GET /api/notifications/unread_count.
func (h *NotificationHandler) UnreadCountHandler(c *gin.Context) {
	target := targetUser(c)

	count, err := h.Service.CountUnread(c.Request.Context(), target)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}
