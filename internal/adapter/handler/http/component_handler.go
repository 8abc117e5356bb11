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

type ComponentHandler struct {
	componentService *services.ComponentService
	bikeService      *services.BikeService
	logger           ports.LoggerPort
	metrics          ports.MetricsPort
}

type ComponentRequest struct {
	BikeID            string   `json:"bike_id" binding:"required" example:"3fa85f64-5717-4562-b3fc-2c963f66afa6"`
	TypeID            *string  `json:"type_id,omitempty" example:"chain"`
	CustomName        *string  `json:"custom_name,omitempty" example:"Карбоновый подседел"`
	ThresholdDistance *float64 `json:"threshold_distance,omitempty" example:"2500"`
	ThresholdDuration *float64 `json:"threshold_duration,omitempty" example:"150"`
	Notes             string   `json:"notes,omitempty" example:"Установлена новая цепь"`
}

type UpdateComponentRequest struct {
	TypeID            *string  `json:"type_id,omitempty" example:"cassette"`
	CustomName        *string  `json:"custom_name,omitempty" example:"Новое имя"`
	InstallDistance   *float64 `json:"install_distance,omitempty" example:"1200"`
	InstallDuration   *float64 `json:"install_duration,omitempty" example:"60"`
	ThresholdDistance *float64 `json:"threshold_distance,omitempty" example:"8000"`
	ThresholdDuration *float64 `json:"threshold_duration,omitempty" example:"200"`
	Notes             *string  `json:"notes,omitempty" example:"Обновленные заметки"`
}

type ReplaceComponentRequest struct {
	Cost  *float64 `json:"cost,omitempty" example:"45.90"`
	Notes string   `json:"notes,omitempty" example:"Заменена на Shimano CN-HG701"`
}

type MaintenanceLogRequest struct {
	Action string   `json:"action" binding:"required" example:"maintained"`
	Cost   *float64 `json:"cost,omitempty" example:"15.00"`
	Notes  string   `json:"notes,omitempty" example:"Смазка цепи"`
}

type MaintenanceLogInfo struct {
	ID               uuid.UUID `json:"id"`
	ComponentID      uuid.UUID `json:"component_id"`
	Action           string    `json:"action"`
	DistanceAtAction float64   `json:"distance_at_action"`
	DurationAtAction float64   `json:"duration_at_action"`
	Cost             *float64  `json:"cost,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type GetMaintenanceLogsResponse struct {
	Logs  []MaintenanceLogInfo `json:"logs"`
	Count int                  `json:"count"`
}

type GetComponentsResponse struct {
	Components []ComponentInfo `json:"components"`
	Count      int             `json:"count"`
}

type CatalogResponse struct {
	Types []domain.ComponentType `json:"types"`
}

func NewComponentHandler(
	componentService *services.ComponentService,
	bikeService *services.BikeService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *ComponentHandler {
	return &ComponentHandler{
		componentService: componentService,
		bikeService:      bikeService,
		logger:           logger,
		metrics:          metrics,
	}
}

// ownsBike проверяет, что байк принадлежит пользователю из токена.
func (h *ComponentHandler) ownsBike(c *gin.Context, payload *domain.TokenPayload, bikeID uuid.UUID) bool {
	bike, err := h.bikeService.GetBikeByID(c.Request.Context(), bikeID.String())
	if err != nil {
		h.logger.Error("Failed to get bike for ownership check", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID.String(),
		})
		newErrorResponse(c, http.StatusNotFound, "Bike not found")
		return false
	}
	if payload.Role != domain.Admin && payload.UserID != bike.UserID {
		h.logger.Warn("Access denied to bike", map[string]interface{}{
			"requester_id": payload.UserID.String(),
			"bike_owner":   bike.UserID.String(),
			"bike_id":      bikeID.String(),
		})
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return false
	}
	return true
}

// ownsComponent достает компонент и проверяет владение через его байк.
func (h *ComponentHandler) ownsComponent(c *gin.Context, payload *domain.TokenPayload, componentID string) (*domain.Component, bool) {
	component, err := h.componentService.GetComponentByID(c.Request.Context(), componentID)
	if err != nil {
		newErrorResponse(c, http.StatusNotFound, "Component not found")
		return nil, false
	}
	if !h.ownsBike(c, payload, component.BikeID) {
		return nil, false
	}
	return component, true
}

// @Summary Создать компонент
// @Description Установка нового компонента на байк. Тип либо из каталога (type_id), либо произвольный (custom_name)
// @Tags components
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body ComponentRequest true "Данные компонента"
// @Success 201 {object} ComponentInfo "Компонент создан"
// @Failure 400 {object} errorResponse "Неверный запрос"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 403 {object} errorResponse "Доступ запрещен"
// @Router /components [post]
func (h *ComponentHandler) CreateComponent(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in create component", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	bikeID, err := uuid.Parse(req.BikeID)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid bike ID")
		return
	}

	if !h.ownsBike(c, payload, bikeID) {
		return
	}

	component := &domain.Component{
		BikeID:            bikeID,
		TypeID:            req.TypeID,
		CustomName:        req.CustomName,
		ThresholdDistance: req.ThresholdDistance,
		ThresholdDuration: req.ThresholdDuration,
		Notes:             req.Notes,
	}

	created, err := h.componentService.CreateComponent(c.Request.Context(), component)
	if err != nil {
		h.logger.Error("Failed to create component", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": req.BikeID,
		})
		newErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusCreated, toComponentInfo(created))
}

// @Summary Получить компонент
// @Description Получение компонента по ID с текущим износом
// @Tags components
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID компонента"
// @Success 200 {object} ComponentInfo "Компонент найден"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 404 {object} errorResponse "Компонент не найден"
// @Router /components/{id} [get]
func (h *ComponentHandler) GetComponent(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	component, ok := h.ownsComponent(c, payload, c.Param("id"))
	if !ok {
		return
	}

	c.JSON(http.StatusOK, toComponentInfo(component))
}

// @Summary Компоненты байка
// @Description Список всех компонентов байка
// @Tags components
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID байка"
// @Success 200 {object} GetComponentsResponse "Список компонентов"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 403 {object} errorResponse "Доступ запрещен"
// @Router /bikes/{id}/components [get]
func (h *ComponentHandler) GetBikeComponents(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bikeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid bike ID")
		return
	}

	if !h.ownsBike(c, payload, bikeID) {
		return
	}

	components, err := h.componentService.GetComponentsByBikeID(c.Request.Context(), bikeID.String())
	if err != nil {
		h.logger.Error("Failed to get components", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID.String(),
		})
		newErrorResponse(c, http.StatusInternalServerError, "Failed to get components")
		return
	}

	infos := make([]ComponentInfo, len(components))
	for i, comp := range components {
		infos[i] = toComponentInfo(comp)
	}

	c.JSON(http.StatusOK, GetComponentsResponse{
		Components: infos,
		Count:      len(infos),
	})
}

// @Summary Обновить компонент
// @Description Обновление полей компонента, износ пересчитывается автоматически
// @Tags components
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID компонента"
// @Param request body UpdateComponentRequest true "Данные для обновления"
// @Success 200 {object} ComponentInfo "Компонент обновлен"
// @Failure 400 {object} errorResponse "Неверный запрос"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 403 {object} errorResponse "Доступ запрещен"
// @Router /components/{id} [put]
func (h *ComponentHandler) UpdateComponent(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	component, ok := h.ownsComponent(c, payload, c.Param("id"))
	if !ok {
		return
	}

	var req UpdateComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in update component", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if req.TypeID != nil {
		component.TypeID = req.TypeID
	}
	if req.CustomName != nil {
		component.CustomName = req.CustomName
	}
	if req.InstallDistance != nil {
		component.InstallDistance = *req.InstallDistance
	}
	if req.InstallDuration != nil {
		component.InstallDuration = *req.InstallDuration
	}
	if req.ThresholdDistance != nil {
		component.ThresholdDistance = req.ThresholdDistance
	}
	if req.ThresholdDuration != nil {
		component.ThresholdDuration = req.ThresholdDuration
	}
	if req.Notes != nil {
		component.Notes = *req.Notes
	}

	updated, err := h.componentService.UpdateComponent(c.Request.Context(), component)
	if err != nil {
		h.logger.Error("Failed to update component", map[string]interface{}{
			"error":        err.Error(),
			"component_id": component.ID.String(),
		})
		newErrorResponse(c, http.StatusInternalServerError, "Update failed")
		return
	}

	c.JSON(http.StatusOK, toComponentInfo(updated))
}

// @Summary Заменить компонент
// @Description Замена компонента: база установки сбрасывается на текущие тоталы байка, статус возвращается в ok
// @Tags components
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID компонента"
// @Param request body ReplaceComponentRequest false "Детали замены"
// @Success 200 {object} ComponentInfo "Компонент заменен"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 403 {object} errorResponse "Доступ запрещен"
// @Failure 404 {object} errorResponse "Компонент не найден"
// @Router /components/{id}/replace [post]
func (h *ComponentHandler) ReplaceComponent(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	component, ok := h.ownsComponent(c, payload, c.Param("id"))
	if !ok {
		return
	}

	// тело опционально, пустой запрос означает замену без деталей
	var req ReplaceComponentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
			return
		}
	}

	replaced, err := h.componentService.ReplaceComponent(c.Request.Context(), component.ID.String(), req.Cost, req.Notes)
	if err != nil {
		h.logger.Error("Failed to replace component", map[string]interface{}{
			"error":        err.Error(),
			"component_id": component.ID.String(),
		})
		newErrorResponse(c, http.StatusInternalServerError, "Replace failed")
		return
	}

	c.JSON(http.StatusOK, toComponentInfo(replaced))
}

// @Summary Удалить компонент
// @Description Удаление компонента вместе с историей обслуживания
// @Tags components
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID компонента"
// @Success 200 {object} successResponse "Компонент удален"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 403 {object} errorResponse "Доступ запрещен"
// @Router /components/{id} [delete]
func (h *ComponentHandler) DeleteComponent(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	component, ok := h.ownsComponent(c, payload, c.Param("id"))
	if !ok {
		return
	}

	if err := h.componentService.DeleteComponent(c.Request.Context(), component.ID.String()); err != nil {
		h.logger.Error("Failed to delete component", map[string]interface{}{
			"error":        err.Error(),
			"component_id": component.ID.String(),
		})
		newErrorResponse(c, http.StatusInternalServerError, "Delete failed")
		return
	}

	c.JSON(http.StatusOK, successResponse{Message: "Component deleted successfully"})
}

// @Summary Добавить запись обслуживания
// @Description Добавление записи в историю обслуживания компонента
// @Tags components
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID компонента"
// @Param request body MaintenanceLogRequest true "Запись обслуживания"
// @Success 201 {object} MaintenanceLogInfo "Запись добавлена"
// @Failure 400 {object} errorResponse "Неверный запрос"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Router /components/{id}/maintenance [post]
func (h *ComponentHandler) AddMaintenanceLog(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	component, ok := h.ownsComponent(c, payload, c.Param("id"))
	if !ok {
		return
	}

	var req MaintenanceLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	bike, err := h.bikeService.GetBikeByID(c.Request.Context(), component.BikeID.String())
	if err != nil {
		newErrorResponse(c, http.StatusNotFound, "Bike not found")
		return
	}

	log := &domain.MaintenanceLog{
		ComponentID:      component.ID,
		Action:           domain.MaintenanceAction(req.Action),
		DistanceAtAction: bike.TotalDistance,
		DurationAtAction: bike.TotalDuration,
		Cost:             req.Cost,
		Notes:            req.Notes,
	}

	created, err := h.componentService.AddMaintenanceLog(c.Request.Context(), log)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusCreated, toMaintenanceLogInfo(created))
}

// @Summary История обслуживания
// @Description История обслуживания компонента, новые записи первыми
// @Tags components
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID компонента"
// @Success 200 {object} GetMaintenanceLogsResponse "История обслуживания"
// @Failure 401 {object} errorResponse "Не авторизован"
// @Failure 404 {object} errorResponse "Компонент не найден"
// @Router /components/{id}/maintenance [get]
func (h *ComponentHandler) GetMaintenanceLogs(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	component, ok := h.ownsComponent(c, payload, c.Param("id"))
	if !ok {
		return
	}

	logs, err := h.componentService.GetMaintenanceLogs(c.Request.Context(), component.ID.String())
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to get maintenance logs")
		return
	}

	infos := make([]MaintenanceLogInfo, len(logs))
	for i, log := range logs {
		infos[i] = toMaintenanceLogInfo(log)
	}

	c.JSON(http.StatusOK, GetMaintenanceLogsResponse{
		Logs:  infos,
		Count: len(infos),
	})
}

// @Summary Каталог типов компонентов
// @Description Предустановленные типы компонентов с дефолтными порогами износа
// @Tags components
// @Produce json
// @Success 200 {object} CatalogResponse "Каталог типов"
// @Router /components/catalog [get]
func (h *ComponentHandler) GetCatalog(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	c.JSON(http.StatusOK, CatalogResponse{Types: domain.ComponentCatalog()})
}

func toMaintenanceLogInfo(log *domain.MaintenanceLog) MaintenanceLogInfo {
	return MaintenanceLogInfo{
		ID:               log.ID,
		ComponentID:      log.ComponentID,
		Action:           string(log.Action),
		DistanceAtAction: log.DistanceAtAction,
		DurationAtAction: log.DurationAtAction,
		Cost:             log.Cost,
		Notes:            log.Notes,
		CreatedAt:        log.CreatedAt,
	}
}
