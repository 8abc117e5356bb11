package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sm8ta/webike_gear_microservice_nikita/internal/config"
	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/domain"
	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/ports"
	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/services"
)

type SyncHandler struct {
	syncService    *services.SyncService
	credentialRepo ports.CredentialRepository
	profileClient  ports.ProfileClient
	stravaConfig   *config.Strava
	logger         ports.LoggerPort
	metrics        ports.MetricsPort
}

type SyncResponse struct {
	Success       bool   `json:"success"`
	BikesImported int    `json:"bikes_imported"`
	Message       string `json:"message"`
}

type syncErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

type ConnectURLResponse struct {
	URL string `json:"url"`
}

type StravaStatusResponse struct {
	Connected bool  `json:"connected"`
	AthleteID int64 `json:"athlete_id,omitempty"`
}

func NewSyncHandler(
	syncService *services.SyncService,
	credentialRepo ports.CredentialRepository,
	profileClient ports.ProfileClient,
	stravaConfig *config.Strava,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *SyncHandler {
	return &SyncHandler{
		syncService:    syncService,
		credentialRepo: credentialRepo,
		profileClient:  profileClient,
		stravaConfig:   stravaConfig,
		logger:         logger,
		metrics:        metrics,
	}
}

// @Summary Синхронизировать байки
// @Description Запуск синхронизации со Strava: импорт байков, пересчет износа компонентов, алерты
// @Tags sync
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} SyncResponse "Синхронизация завершена"
// @Failure 401 {object} syncErrorResponse "Не авторизован"
// @Failure 409 {object} syncErrorResponse "Strava не подключена"
// @Failure 502 {object} syncErrorResponse "Ошибка Strava API"
// @Router /sync [post]
func (h *SyncHandler) SyncBikes(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := h.syncService.Sync(c.Request.Context(), payload.UserID)
	if err != nil {
		h.syncError(c, payload.UserID, err)
		return
	}

	h.metrics.RecordSync("success")
	c.JSON(http.StatusOK, SyncResponse{
		Success:       true,
		BikesImported: result.BikesImported,
		Message:       fmt.Sprintf("Imported %d bikes from Strava", result.BikesImported),
	})
}

// syncError мапит ошибки пайплайна в категории для клиента.
func (h *SyncHandler) syncError(c *gin.Context, userID uuid.UUID, err error) {
	var status int
	var category string

	switch {
	case errors.Is(err, domain.ErrNotConnected):
		status, category = http.StatusConflict, "not_connected"
	case errors.Is(err, domain.ErrRefreshFailed):
		status, category = http.StatusUnauthorized, "auth_refresh_failed"
	case errors.Is(err, domain.ErrTelemetryFetch):
		status, category = http.StatusBadGateway, "sync_failed"
	default:
		status, category = http.StatusInternalServerError, "sync_failed"
	}

	h.metrics.RecordSync(category)
	h.logger.Error("Sync failed", map[string]interface{}{
		"error":    err.Error(),
		"category": category,
		"user_id":  userID.String(),
	})

	c.AbortWithStatusJSON(status, syncErrorResponse{
		Success: false,
		Error:   category,
		Message: err.Error(),
	})
}

// @Summary URL авторизации Strava
// @Description Ссылка на страницу авторизации Strava для подключения аккаунта
// @Tags sync
// @Security BearerAuth
// @Produce json
// @Success 200 {object} ConnectURLResponse "URL авторизации"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Router /strava/connect [get]
func (h *SyncHandler) StravaConnect(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	params := url.Values{}
	params.Set("client_id", h.stravaConfig.ClientID)
	params.Set("redirect_uri", h.stravaConfig.RedirectURI)
	params.Set("response_type", "code")
	params.Set("scope", "read,profile:read_all")
	params.Set("state", payload.UserID.String())

	c.JSON(http.StatusOK, ConnectURLResponse{
		URL: "https://www.strava.com/oauth/authorize?" + params.Encode(),
	})
}

// @Summary OAuth колбек Strava
// @Description Обмен кода авторизации на токены, сохранение подключения и первичный импорт байков
// @Tags sync
// @Produce json
// @Param code query string true "Код авторизации"
// @Param state query string true "ID пользователя"
// @Param error query string false "Ошибка от Strava"
// @Success 200 {object} SyncResponse "Аккаунт подключен"
// @Failure 400 {object} errorResponse "Неверный запрос"
// @Router /strava/callback [get]
func (h *SyncHandler) StravaCallback(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if oauthErr := c.Query("error"); oauthErr != "" {
		h.logger.Warn("Strava authorization denied", map[string]interface{}{
			"error": oauthErr,
		})
		newErrorResponse(c, http.StatusBadRequest, "Strava authorization denied")
		return
	}

	code := c.Query("code")
	if code == "" {
		newErrorResponse(c, http.StatusBadRequest, "Missing authorization code")
		return
	}

	userID, err := uuid.Parse(c.Query("state"))
	if err != nil {
		h.logger.Error("Invalid state in Strava callback", map[string]interface{}{
			"state": c.Query("state"),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid state parameter")
		return
	}

	result, athlete, err := h.syncService.HandleCallback(c.Request.Context(), userID, code)
	if err != nil {
		h.logger.Error("Strava callback failed", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID.String(),
		})
		h.metrics.RecordSync("callback_failed")
		newErrorResponse(c, http.StatusBadGateway, "Failed to connect Strava account")
		return
	}

	// профиль обновляем best-effort, неудача не мешает подключению
	displayName := strings.TrimSpace(athlete.FirstName + " " + athlete.LastName)
	if err := h.profileClient.UpdateProfile(c.Request.Context(), userID, displayName, athlete.Avatar); err != nil {
		h.logger.Warn("Failed to update user profile", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID.String(),
		})
	}

	h.metrics.RecordSync("connected")
	c.JSON(http.StatusOK, SyncResponse{
		Success:       true,
		BikesImported: result.BikesImported,
		Message:       "Strava account connected",
	})
}

// @Summary Статус подключения Strava
// @Description Проверка, подключен ли аккаунт Strava
// @Tags sync
// @Security BearerAuth
// @Produce json
// @Success 200 {object} StravaStatusResponse "Статус подключения"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Router /strava/status [get]
func (h *SyncHandler) StravaStatus(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cred, err := h.credentialRepo.GetCredential(c.Request.Context(), payload.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotConnected) {
			c.JSON(http.StatusOK, StravaStatusResponse{Connected: false})
			return
		}
		newErrorResponse(c, http.StatusInternalServerError, "Failed to get connection status")
		return
	}

	c.JSON(http.StatusOK, StravaStatusResponse{
		Connected: true,
		AthleteID: cred.AthleteID,
	})
}

// @Summary Отключить Strava
// @Description Удаление сохраненного подключения Strava
// @Tags sync
// @Security BearerAuth
// @Produce json
// @Success 200 {object} successResponse "Аккаунт отключен"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Router /strava [delete]
func (h *SyncHandler) StravaDisconnect(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.credentialRepo.DeleteCredential(c.Request.Context(), payload.UserID); err != nil {
		h.logger.Error("Failed to delete credential", map[string]interface{}{
			"error":   err.Error(),
			"user_id": payload.UserID.String(),
		})
		newErrorResponse(c, http.StatusInternalServerError, "Failed to disconnect")
		return
	}

	h.logger.Info("Strava account disconnected", map[string]interface{}{
		"user_id": payload.UserID.String(),
	})

	c.JSON(http.StatusOK, successResponse{Message: "Strava account disconnected"})
}
