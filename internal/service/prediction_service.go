package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"car-price-api/internal/domain"
	"car-price-api/internal/repository"
)

const (
	defaultHistoryPageSize = 10
	maxHistoryPageSize     = 100
)

// PredictionService orquesta una predicción: inferencia y, para usuarios
// autenticados, persistencia en el record store. Las predicciones de
// invitados son efímeras.
type PredictionService struct {
	logger      *zap.Logger
	inference   *InferenceService
	predictions repository.PredictionRepository
	now         func() time.Time
}

func NewPredictionService(logger *zap.Logger, inference *InferenceService, predictions repository.PredictionRepository) *PredictionService {
	return &PredictionService{
		logger:      logger,
		inference:   inference,
		predictions: predictions,
		now:         time.Now,
	}
}

// PredictForUser infiere el precio y persiste el resultado con su dueño.
func (s *PredictionService) PredictForUser(ctx context.Context, userID string, record domain.FeatureRecord) (domain.Prediction, error) {
	price, err := s.inference.Predict(ctx, record)
	if err != nil {
		return domain.Prediction{}, err
	}

	prediction := domain.Prediction{
		ID:             uuid.NewString(),
		UserID:         userID,
		FeatureRecord:  record,
		PredictedPrice: price,
		Timestamp:      s.now().UTC(),
	}
	if err := s.predictions.Create(ctx, prediction); err != nil {
		return domain.Prediction{}, err
	}
	return prediction, nil
}

// PredictGuest infiere el precio sin persistir nada.
func (s *PredictionService) PredictGuest(ctx context.Context, record domain.FeatureRecord) (domain.Prediction, error) {
	price, err := s.inference.Predict(ctx, record)
	if err != nil {
		return domain.Prediction{}, err
	}
	return domain.Prediction{
		FeatureRecord:  record,
		PredictedPrice: price,
		Timestamp:      s.now().UTC(),
	}, nil
}

// HistoryPage es una página del historial de predicciones de un usuario.
type HistoryPage struct {
	Count       int                 `json:"count"`
	TotalPages  int                 `json:"total_pages"`
	CurrentPage int                 `json:"current_page"`
	PageSize    int                 `json:"page_size"`
	Results     []domain.Prediction `json:"results"`
}

// History lista las predicciones del usuario aplicando filtros, orden y
// paginación. Page y PageSize fuera de rango caen a los defaults.
func (s *PredictionService) History(ctx context.Context, userID string, filter repository.HistoryFilter) (HistoryPage, error) {
	if filter.PageSize < 1 {
		filter.PageSize = defaultHistoryPageSize
	}
	if filter.PageSize > maxHistoryPageSize {
		filter.PageSize = maxHistoryPageSize
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	results, total, err := s.predictions.ListByUser(ctx, userID, filter)
	if err != nil {
		return HistoryPage{}, err
	}

	totalPages := total / filter.PageSize
	if total%filter.PageSize != 0 {
		totalPages++
	}
	return HistoryPage{
		Count:       total,
		TotalPages:  totalPages,
		CurrentPage: filter.Page,
		PageSize:    filter.PageSize,
		Results:     results,
	}, nil
}
