package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"car-price-api/internal/domain"
	"car-price-api/internal/ml"
)

var (
	// ErrInvalidInput indica un registro vacío; nunca llega al modelo.
	ErrInvalidInput = errors.New("invalid input")
	// ErrModelUnavailable indica que el artefacto no cargó. Es permanente
	// para el proceso: cada Predict posterior falla igual hasta reiniciar.
	ErrModelUnavailable = errors.New("model unavailable")
)

// ModelLoader produce la instancia del modelo. Se invoca a lo sumo una vez.
type ModelLoader func() (ml.Model, error)

// InferenceService es el dueño del modelo de precios cargado. La carga es
// perezosa: ocurre en el primer Predict, y el par (modelo, error) capturado
// por sync.Once es inmutable por el resto de la vida del proceso.
type InferenceService struct {
	logger *zap.Logger
	loader ModelLoader

	once    sync.Once
	model   ml.Model
	loadErr error
}

func NewInferenceService(logger *zap.Logger, loader ModelLoader) *InferenceService {
	return &InferenceService{
		logger: logger,
		loader: loader,
	}
}

// Predict evalúa el modelo sobre un registro ya validado por el boundary y
// devuelve el precio estimado. El modelo fue entrenado sobre log1p(precio),
// así que la salida cruda pasa por floor(expm1(raw)) antes de devolverse.
func (s *InferenceService) Predict(ctx context.Context, record domain.FeatureRecord) (float64, error) {
	if record.IsZero() {
		return 0, fmt.Errorf("%w: empty feature record", ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.once.Do(func() {
		s.model, s.loadErr = s.loader()
		if s.loadErr != nil {
			s.logger.Error("model load failed", zap.Error(s.loadErr))
			return
		}
		s.logger.Info("model loaded")
	})
	if s.loadErr != nil {
		return 0, fmt.Errorf("%w: %v", ErrModelUnavailable, s.loadErr)
	}

	raw, err := s.model.Predict(record)
	if err != nil {
		return 0, fmt.Errorf("model predict: %w", err)
	}

	price := math.Floor(math.Expm1(raw))
	s.logger.Info("prediction made",
		zap.String("brand", record.Brand),
		zap.String("car_model", record.CarModel),
		zap.Float64("predicted_price", price),
	)
	return price, nil
}
