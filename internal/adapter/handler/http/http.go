package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/domain"
	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/ports"
	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/services"
)

type BikeHandler struct {
	bikeService *services.BikeService
	logger      ports.LoggerPort
	metrics     ports.MetricsPort
}

type BikeRequest struct {
	BikeName      string  `json:"bike_name" binding:"required" example:"Canyon Endurace"`
	Brand         string  `json:"brand,omitempty" example:"Canyon"`
	Model         string  `json:"model,omitempty" example:"Endurace CF 8"`
	FrameType     string  `json:"frame_type,omitempty" example:"road"`
	TotalDistance float64 `json:"total_distance" example:"1500"`
	TotalDuration float64 `json:"total_duration,omitempty" example:"80"`
	IsPrimary     bool    `json:"is_primary,omitempty" example:"true"`
}

type UpdateBike struct {
	BikeName      *string  `json:"bike_name,omitempty" example:"New Name"`
	Brand         *string  `json:"brand,omitempty" example:"Canyon"`
	Model         *string  `json:"model,omitempty" example:"Endurace CF 8"`
	FrameType     *string  `json:"frame_type,omitempty" example:"gravel"`
	TotalDistance *float64 `json:"total_distance,omitempty" example:"2000"`
	TotalDuration *float64 `json:"total_duration,omitempty" example:"100"`
	IsPrimary     *bool    `json:"is_primary,omitempty" example:"false"`
}

type BikeInfo struct {
	BikeID        uuid.UUID  `json:"bike_id"`
	UserID        uuid.UUID  `json:"user_id"`
	ExternalID    *string    `json:"external_id,omitempty"`
	BikeName      string     `json:"bike_name"`
	Brand         string     `json:"brand"`
	Model         string     `json:"model"`
	FrameType     string     `json:"frame_type"`
	TotalDistance float64    `json:"total_distance"`
	TotalDuration float64    `json:"total_duration"`
	IsPrimary     bool       `json:"is_primary"`
	LastSynced    *time.Time `json:"last_synced,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type GetMyBikesResponse struct {
	Bikes []BikeInfo `json:"bikes"`
	Count int        `json:"count"`
}

type DeleteBikeResponse struct {
	Message string `json:"message"`
}

type GetBikeWithComponentsResponse struct {
	BikeInfo
	Components []ComponentInfo `json:"components"`
}

type ComponentInfo struct {
	ID                uuid.UUID `json:"id"`
	BikeID            uuid.UUID `json:"bike_id"`
	TypeID            *string   `json:"type_id,omitempty"`
	CustomName        *string   `json:"custom_name,omitempty"`
	Name              string    `json:"name"`
	InstallDistance   float64   `json:"install_distance"`
	InstallDuration   float64   `json:"install_duration"`
	ThresholdDistance *float64  `json:"threshold_distance,omitempty"`
	ThresholdDuration *float64  `json:"threshold_duration,omitempty"`
	CurrentDistance   float64   `json:"current_distance"`
	CurrentDuration   float64   `json:"current_duration"`
	WearPercent       float64   `json:"wear_percent"`
	Status            string    `json:"status"`
	Notes             string    `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func NewBikeHandler(
	bikeService *services.BikeService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *BikeHandler {
	return &BikeHandler{
		bikeService: bikeService,
		logger:      logger,
		metrics:     metrics,
	}
}

func toBikeInfo(bike *domain.Bike) BikeInfo {
	return BikeInfo{
		BikeID:        bike.BikeID,
		UserID:        bike.UserID,
		ExternalID:    bike.ExternalID,
		BikeName:      bike.BikeName,
		Brand:         bike.Brand,
		Model:         bike.Model,
		FrameType:     string(bike.FrameType),
		TotalDistance: bike.TotalDistance,
		TotalDuration: bike.TotalDuration,
		IsPrimary:     bike.IsPrimary,
		LastSynced:    bike.LastSynced,
		CreatedAt:     bike.CreatedAt,
		UpdatedAt:     bike.UpdatedAt,
	}
}

func toComponentInfo(comp *domain.Component) ComponentInfo {
	return ComponentInfo{
		ID:                comp.ID,
		BikeID:            comp.BikeID,
		TypeID:            comp.TypeID,
		CustomName:        comp.CustomName,
		Name:              comp.DisplayName(),
		InstallDistance:   comp.InstallDistance,
		InstallDuration:   comp.InstallDuration,
		ThresholdDistance: comp.ThresholdDistance,
		ThresholdDuration: comp.ThresholdDuration,
		CurrentDistance:   comp.CurrentDistance,
		CurrentDuration:   comp.CurrentDuration,
		WearPercent:       comp.WearPercent(),
		Status:            string(comp.Status),
		Notes:             comp.Notes,
		CreatedAt:         comp.CreatedAt,
		UpdatedAt:         comp.UpdatedAt,
	}
}

// @Summary Создать байк
// @Description Создание нового байка вручную
// @Tags bikes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body BikeRequest true "Данные байка"
// @Success 201 {object} BikeInfo "Байк создан"
// @Failure 400 {object} errorResponse "Неверный запрос"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Router /bikes [post]
func (h *BikeHandler) CreateBike(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		h.logger.Warn("Unauthorized access attempt to CreateBike", map[string]interface{}{
			"ip": c.ClientIP(),
		})
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req BikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in create bike", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	bike := &domain.Bike{
		UserID:        payload.UserID,
		BikeName:      req.BikeName,
		Brand:         req.Brand,
		Model:         req.Model,
		FrameType:     domain.FrameType(req.FrameType),
		TotalDistance: req.TotalDistance,
		TotalDuration: req.TotalDuration,
		IsPrimary:     req.IsPrimary,
	}

	createdBike, err := h.bikeService.CreateBike(c.Request.Context(), bike)
	if err != nil {
		h.logger.Error("Failed to create bike", map[string]interface{}{
			"error":   err.Error(),
			"user_id": payload.UserID,
		})
		newErrorResponse(c, http.StatusInternalServerError, "Failed to create bike")
		return
	}

	c.JSON(http.StatusCreated, toBikeInfo(createdBike))
}

// @Summary Получить байк
// @Description Получение информации о байке по ID
// @Tags bikes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID байка" example:"3fa85f64-5717-4562-b3fc-2c963f66afa6"
// @Success 200 {object} BikeInfo "Байк найден"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 403 {object} errorResponse "Доступ запрещен"
// @Failure 404 {object} errorResponse "Байк не найден"
// @Router /bikes/{id} [get]
func (h *BikeHandler) GetBike(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	bikeID := c.Param("id")

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		h.logger.Warn("Unauthorized access attempt to GetBike", map[string]interface{}{
			"bike_id": bikeID,
			"ip":      c.ClientIP(),
		})
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bike, err := h.bikeService.GetBikeByID(c.Request.Context(), bikeID)
	if err != nil {
		h.logger.Error("Failed to get bike", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
		})
		newErrorResponse(c, http.StatusNotFound, "Bike not found")
		return
	}
	if payload.Role != domain.Admin && payload.UserID != bike.UserID {
		h.logger.Warn("Access denied to bike", map[string]interface{}{
			"requester_id": payload.UserID.String(),
			"bike_owner":   bike.UserID.String(),
			"bike_id":      bikeID,
		})
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	c.JSON(http.StatusOK, toBikeInfo(bike))
}

// @Summary Получить байки пользователя
// @Description Получение всех байков авторизованного пользователя
// @Tags bikes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} GetMyBikesResponse "Список байков пользователя"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 500 {object} errorResponse "Внутренняя ошибка сервера"
// @Router /bikes/my [get]
func (h *BikeHandler) GetMyBikes(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		h.logger.Warn("Unauthorized access attempt to GetMyBikes", map[string]interface{}{
			"ip": c.ClientIP(),
		})
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bikes, err := h.bikeService.GetBikesByUserID(c.Request.Context(), payload.UserID.String())
	if err != nil {
		h.logger.Error("Failed to get bikes", map[string]interface{}{
			"error":   err.Error(),
			"user_id": payload.UserID,
		})
		newErrorResponse(c, http.StatusInternalServerError, "Failed to get bikes")
		return
	}
	bikeInfos := make([]BikeInfo, len(bikes))
	for i, bike := range bikes {
		bikeInfos[i] = toBikeInfo(bike)
	}

	c.JSON(http.StatusOK, GetMyBikesResponse{
		Bikes: bikeInfos,
		Count: len(bikeInfos),
	})
}

// @Summary Обновить байк
// @Description Обновление данных байка
// @Tags bikes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID байка" example:"3fa85f64-5717-4562-b3fc-2c963f66afa6"
// @Param request body UpdateBike true "Данные для обновления"
// @Success 200 {object} BikeInfo "Байк обновлен"
// @Failure 400 {object} errorResponse "Неверный запрос"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 403 {object} errorResponse "Доступ запрещен"
// @Router /bikes/{id} [put]
func (h *BikeHandler) UpdateBike(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	bikeID := c.Param("id")

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		h.logger.Warn("Unauthorized access attempt to UpdateBike", map[string]interface{}{
			"bike_id": bikeID,
			"ip":      c.ClientIP(),
		})
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	existingBike, err := h.bikeService.GetBikeByID(c.Request.Context(), bikeID)
	if err != nil {
		h.logger.Error("Failed to get bike", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
		})
		newErrorResponse(c, http.StatusNotFound, "Bike not found")
		return
	}

	if payload.Role != domain.Admin && payload.UserID != existingBike.UserID {
		h.logger.Warn("Access denied to update bike", map[string]interface{}{
			"requester_id": payload.UserID.String(),
			"bike_owner":   existingBike.UserID.String(),
			"bike_id":      bikeID,
		})
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	var req UpdateBike
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in update bike", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	parsedID, err := uuid.Parse(bikeID)
	if err != nil {
		h.logger.Error("Invalid bike ID format", map[string]interface{}{
			"bike_id": bikeID,
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid bike ID")
		return
	}

	// -1 — маркер "поле не передано" для COALESCE в репозитории
	bike := &domain.Bike{
		BikeID:        parsedID,
		UserID:        existingBike.UserID,
		IsPrimary:     existingBike.IsPrimary,
		TotalDistance: -1,
		TotalDuration: -1,
	}
	if req.BikeName != nil {
		bike.BikeName = *req.BikeName
	}
	if req.Brand != nil {
		bike.Brand = *req.Brand
	}
	if req.Model != nil {
		bike.Model = *req.Model
	}
	if req.FrameType != nil {
		bike.FrameType = domain.FrameType(*req.FrameType)
	}
	if req.TotalDistance != nil {
		bike.TotalDistance = *req.TotalDistance
	}
	if req.TotalDuration != nil {
		bike.TotalDuration = *req.TotalDuration
	}
	if req.IsPrimary != nil {
		bike.IsPrimary = *req.IsPrimary
	}

	updatedBike, err := h.bikeService.UpdateBike(c.Request.Context(), bike)
	if err != nil {
		h.logger.Error("Failed to update bike", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
		})
		newErrorResponse(c, http.StatusInternalServerError, "Update failed")
		return
	}

	c.JSON(http.StatusOK, toBikeInfo(updatedBike))
}

// @Summary Удалить байк
// @Description Удаление байка
// @Tags bikes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID байка" example:"3fa85f64-5717-4562-b3fc-2c963f66afa6"
// @Success 200 {object} DeleteBikeResponse "Байк удален"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 403 {object} errorResponse "Доступ запрещен"
// @Router /bikes/{id} [delete]
func (h *BikeHandler) DeleteBike(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	bikeID := c.Param("id")

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		h.logger.Warn("Unauthorized access attempt to DeleteBike", map[string]interface{}{
			"bike_id": bikeID,
			"ip":      c.ClientIP(),
		})
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	existingBike, err := h.bikeService.GetBikeByID(c.Request.Context(), bikeID)
	if err != nil {
		h.logger.Error("Failed to get bike", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
		})
		newErrorResponse(c, http.StatusNotFound, "Bike not found")
		return
	}

	if payload.Role != domain.Admin && payload.UserID != existingBike.UserID {
		h.logger.Warn("Access denied to delete bike", map[string]interface{}{
			"requester_id": payload.UserID.String(),
			"bike_owner":   existingBike.UserID.String(),
			"bike_id":      bikeID,
		})
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	err = h.bikeService.DeleteBike(c.Request.Context(), bikeID)
	if err != nil {
		h.logger.Error("Failed to delete bike", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
		})
		newErrorResponse(c, http.StatusInternalServerError, "Delete failed")
		return
	}

	c.JSON(http.StatusOK, DeleteBikeResponse{
		Message: "Bike deleted successfully",
	})
}

// @Summary Получить байк с компонентами
// @Description Получение байка со всеми компонентами и их износом
// @Tags bikes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID байка" example:"3fa85f64-5717-4562-b3fc-2c963f66afa6"
// @Success 200 {object} GetBikeWithComponentsResponse "Байк с компонентами"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 403 {object} errorResponse "Доступ запрещен"
// @Failure 404 {object} errorResponse "Байк не найден"
// @Router /bikes/{id}/with-components [get]
func (h *BikeHandler) GetBikeWithComponents(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	bikeID := c.Param("id")

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		h.logger.Warn("Unauthorized access attempt to GetBikeWithComponents", map[string]interface{}{
			"bike_id": bikeID,
			"ip":      c.ClientIP(),
		})
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bike, err := h.bikeService.GetBikeWithComponents(c.Request.Context(), bikeID)
	if err != nil {
		h.logger.Error("Failed to get bike with components", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
		})
		newErrorResponse(c, http.StatusNotFound, "Bike not found")
		return
	}

	if payload.Role != domain.Admin && payload.UserID != bike.UserID {
		h.logger.Warn("Access denied to bike", map[string]interface{}{
			"requester_id": payload.UserID.String(),
			"bike_owner":   bike.UserID.String(),
			"bike_id":      bikeID,
		})
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}
	componentInfos := make([]ComponentInfo, len(bike.Components))
	for i, comp := range bike.Components {
		componentInfos[i] = toComponentInfo(comp)
	}

	c.JSON(http.StatusOK, GetBikeWithComponentsResponse{
		BikeInfo:   toBikeInfo(bike),
		Components: componentInfos,
	})
}
