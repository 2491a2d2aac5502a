package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"car-price-api/internal/domain"
	"car-price-api/internal/repository"
	"car-price-api/internal/service"
)

// PredictionHandler mantiene dependencias para los endpoints de predicción.
type PredictionHandler struct {
	logger      *zap.Logger
	predictions *service.PredictionService
	limiter     service.GuestRateLimiter
}

func NewPredictionHandler(logger *zap.Logger, predictions *service.PredictionService, limiter service.GuestRateLimiter) *PredictionHandler {
	return &PredictionHandler{
		logger:      logger,
		predictions: predictions,
		limiter:     limiter,
	}
}

// predictionRequest lleva los rangos de negocio en los tags de binding; el
// núcleo no vuelve a validar rangos. Los numéricos son punteros para que
// "required" distinga ausente de cero.
type predictionRequest struct {
	Brand            string   `json:"brand" binding:"required"`
	CarModel         string   `json:"car_model" binding:"required"`
	YearOfProduction *int     `json:"year_of_production" binding:"required,gte=1900,lte=2100"`
	Mileage          *int     `json:"mileage" binding:"required,gte=0"`
	FuelType         string   `json:"fuel_type" binding:"required"`
	Transmission     string   `json:"transmission" binding:"required"`
	Body             string   `json:"body" binding:"required"`
	EngineCapacity   *float64 `json:"engine_capacity" binding:"required,gte=0"`
	Power            *int     `json:"power" binding:"required,gte=0"`
	NumberOfDoors    *int     `json:"number_of_doors" binding:"required,gte=1,lte=10"`
	Color            string   `json:"color" binding:"required"`
}

func (r predictionRequest) toRecord() domain.FeatureRecord {
	return domain.FeatureRecord{
		Brand:            r.Brand,
		CarModel:         r.CarModel,
		YearOfProduction: *r.YearOfProduction,
		Mileage:          *r.Mileage,
		FuelType:         r.FuelType,
		Transmission:     r.Transmission,
		Body:             r.Body,
		EngineCapacity:   *r.EngineCapacity,
		Power:            *r.Power,
		NumberOfDoors:    *r.NumberOfDoors,
		Color:            r.Color,
	}
}

// Predict maneja POST /api/predict (autenticado): infiere y persiste.
func (h *PredictionHandler) Predict(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req predictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid prediction request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	prediction, err := h.predictions.PredictForUser(c.Request.Context(), claims.UserID, req.toRecord())
	if err != nil {
		h.respondPredictionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, prediction)
}

// PredictGuest maneja POST /api/predict/guest: infiere sin persistir.
func (h *PredictionHandler) PredictGuest(c *gin.Context) {
	if h.limiter != nil && !h.limiter.Allow(c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		return
	}

	var req predictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid guest prediction request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	prediction, err := h.predictions.PredictGuest(c.Request.Context(), req.toRecord())
	if err != nil {
		h.respondPredictionError(c, err)
		return
	}

	c.JSON(http.StatusOK, prediction)
}

func (h *PredictionHandler) respondPredictionError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	// ErrModelUnavailable y fallas de persistencia: detalle solo en el log.
	h.logger.Error("prediction failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "error processing your request"})
}

// History maneja GET /api/predictions con filtros, orden y paginación.
// Parámetros con formato inválido se ignoran, igual que en los filtros de la
// versión anterior del API.
func (h *PredictionHandler) History(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	filter := historyFilterFromQuery(c)
	page, err := h.predictions.History(c.Request.Context(), claims.UserID, filter)
	if err != nil {
		h.logger.Error("prediction history failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "an error occurred while fetching predictions"})
		return
	}

	response := gin.H{
		"count":        page.Count,
		"total_pages":  page.TotalPages,
		"current_page": page.CurrentPage,
		"page_size":    page.PageSize,
		"results":      page.Results,
		"filters":      echoFilters(c),
	}
	if filter.Sort != "" {
		response["sort"] = filter.Sort
	}
	c.JSON(http.StatusOK, response)
}

var validSortFields = map[string]struct{}{
	"timestamp":        {},
	"-timestamp":       {},
	"predicted_price":  {},
	"-predicted_price": {},
}

func historyFilterFromQuery(c *gin.Context) repository.HistoryFilter {
	filter := repository.HistoryFilter{}

	if v, err := strconv.Atoi(c.Query("page")); err == nil {
		filter.Page = v
	}
	if v, err := strconv.Atoi(c.Query("page_size")); err == nil {
		filter.PageSize = v
	}
	if sort := c.Query("sort"); sort != "" {
		if _, ok := validSortFields[sort]; ok {
			filter.Sort = sort
		}
	}
	if v, err := time.Parse("2006-01-02", c.Query("start_date")); err == nil {
		filter.StartDate = &v
	}
	if v, err := time.Parse("2006-01-02", c.Query("end_date")); err == nil {
		// Inclusivo por fecha: el corte queda al final del día pedido.
		end := v.Add(24 * time.Hour)
		filter.EndDate = &end
	}
	if v, err := strconv.ParseFloat(c.Query("min_price"), 64); err == nil {
		filter.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(c.Query("max_price"), 64); err == nil {
		filter.MaxPrice = &v
	}
	filter.Brand = c.Query("brand")
	filter.CarModel = c.Query("car_model")

	return filter
}

func echoFilters(c *gin.Context) gin.H {
	filters := gin.H{}
	for _, key := range []string{"start_date", "end_date", "min_price", "max_price", "brand", "car_model"} {
		if value, ok := c.GetQuery(key); ok {
			filters[key] = value
		}
	}
	return filters
}
