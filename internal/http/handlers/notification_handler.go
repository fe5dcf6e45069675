package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Argor01/OkoZnaniy-sub001/internal/dto"
	"github.com/Argor01/OkoZnaniy-sub001/internal/http/handlers/common"
	"github.com/Argor01/OkoZnaniy-sub001/internal/pkg/apperror"
	"github.com/Argor01/OkoZnaniy-sub001/internal/service"
)

// NotificationHandler обслуживает маршруты уведомлений.
type NotificationHandler struct {
	notifications *service.NotificationService
}

// NewNotificationHandler создаёт новый хэндлер.
func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List обрабатывает GET /api/notifications.
func (h *NotificationHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(apperror.ErrUnauthorized)
		return
	}

	limit, offset := common.GetPagination(c)
	items, err := h.notifications.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

// MarkAsRead обрабатывает POST /api/notifications/:id/read.
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(apperror.ErrUnauthorized)
		return
	}

	notificationID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		_ = c.Error(apperror.Validation(err.Error()))
		return
	}

	if err := h.notifications.MarkAsRead(c.Request.Context(), userID, notificationID); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "уведомление прочитано"})
}

// CountUnread обрабатывает GET /api/notifications/unread-count.
func (h *NotificationHandler) CountUnread(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		_ = c.Error(apperror.ErrUnauthorized)
		return
	}

	count, err := h.notifications.CountUnread(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
