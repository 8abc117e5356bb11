package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/domain"
	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/ports"
)

type NotificationHandler struct {
	notificationRepo ports.NotificationRepository
	logger           ports.LoggerPort
	metrics          ports.MetricsPort
}

type NotificationInfo struct {
	ID              uuid.UUID  `json:"id"`
	Type            string     `json:"type"`
	Title           string     `json:"title"`
	Message         string     `json:"message"`
	Read            bool       `json:"read"`
	ComponentID     *uuid.UUID `json:"component_id,omitempty"`
	ComponentStatus *string    `json:"component_status,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type GetNotificationsResponse struct {
	Notifications []NotificationInfo `json:"notifications"`
	Count         int                `json:"count"`
}

func NewNotificationHandler(
	notificationRepo ports.NotificationRepository,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *NotificationHandler {
	return &NotificationHandler{
		notificationRepo: notificationRepo,
		logger:           logger,
		metrics:          metrics,
	}
}

func toNotificationInfo(n *domain.Notification) NotificationInfo {
	info := NotificationInfo{
		ID:          n.ID,
		Type:        string(n.Type),
		Title:       n.Title,
		Message:     n.Message,
		Read:        n.Read,
		ComponentID: n.ComponentID,
		CreatedAt:   n.CreatedAt,
	}
	if n.ComponentStatus != nil {
		status := string(*n.ComponentStatus)
		info.ComponentStatus = &status
	}
	return info
}

// @Summary Уведомления пользователя
// @Description Список уведомлений авторизованного пользователя, новые первыми
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} GetNotificationsResponse "Список уведомлений"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Router /notifications [get]
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	notifications, err := h.notificationRepo.GetNotificationsByUserID(c.Request.Context(), payload.UserID)
	if err != nil {
		h.logger.Error("Failed to get notifications", map[string]interface{}{
			"error":   err.Error(),
			"user_id": payload.UserID.String(),
		})
		newErrorResponse(c, http.StatusInternalServerError, "Failed to get notifications")
		return
	}

	infos := make([]NotificationInfo, len(notifications))
	for i, n := range notifications {
		infos[i] = toNotificationInfo(n)
	}

	c.JSON(http.StatusOK, GetNotificationsResponse{
		Notifications: infos,
		Count:         len(infos),
	})
}

// @Summary Отметить уведомление прочитанным
// @Description Пометка уведомления как прочитанного
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Param id path string true "ID уведомления"
// @Success 200 {object} successResponse "Уведомление прочитано"
// @Failure 400 {object} errorResponse "Неверный запрос"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	_, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	if err := h.notificationRepo.MarkNotificationRead(c.Request.Context(), notificationID); err != nil {
		h.logger.Error("Failed to mark notification read", map[string]interface{}{
			"error":           err.Error(),
			"notification_id": notificationID.String(),
		})
		newErrorResponse(c, http.StatusInternalServerError, "Failed to mark notification read")
		return
	}

	c.JSON(http.StatusOK, successResponse{Message: "Notification marked as read"})
}

// @Summary Удалить уведомление
// @Description Удаление уведомления
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Param id path string true "ID уведомления"
// @Success 200 {object} successResponse "Уведомление удалено"
// @Failure 400 {object} errorResponse "Неверный запрос"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	_, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	if err := h.notificationRepo.DeleteNotification(c.Request.Context(), notificationID); err != nil {
		h.logger.Error("Failed to delete notification", map[string]interface{}{
			"error":           err.Error(),
			"notification_id": notificationID.String(),
		})
		newErrorResponse(c, http.StatusInternalServerError, "Failed to delete notification")
		return
	}

	c.JSON(http.StatusOK, successResponse{Message: "Notification deleted"})
}
