package handlers

import (
	"net/http"
	"strconv"

	"dating-match-server/internal/models"
	"dating-match-server/internal/repository"

	"github.com/gin-gonic/gin"
)

var notificationTypes = map[string]bool{
	models.NotificationLike:         true,
	models.NotificationMatch:        true,
	models.NotificationAcceptedLike: true,
	models.NotificationMessage:      true,
}

type NotificationHandler struct {
	notifications *repository.NotificationRepository
}

func NewNotificationHandler(notifications *repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	kind := c.Query("type")
	if kind != "" && !notificationTypes[kind] {
		respondError(c, models.NewInvalidInputError("Invalid notification type"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	notifications, err := h.notifications.ListForUser(c.Request.Context(), userID, kind, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "count": len(notifications)})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	updated, err := h.notifications.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notifications marked as read", "updated": updated})
}
