package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"car-price-api/internal/dataset"
	"car-price-api/internal/domain"
)

// ErrDatasetUnavailable indica que el dataset no se pudo leer o no tiene el
// esquema esperado. No se devuelven resultados parciales.
var ErrDatasetUnavailable = errors.New("dataset unavailable")

const (
	cacheKeyDropdownOptions   = "dropdown_options"
	cacheKeyBrandModelMapping = "brand_model_mapping"

	defaultDropdownTTL   = time.Hour
	defaultBrandModelTTL = 24 * time.Hour
)

// cacheEntry es un valor calculado con su instante de expiración. La
// expiración se chequea en lectura; no hay barrido en background.
type cacheEntry struct {
	value     any
	expiresAt time.Time
}

// ttlCache es el cache explícito por clave. Cada entrada se reemplaza entera
// (compute-then-publish); dos misses concurrentes pueden recalcular ambos,
// lo que es trabajo duplicado pero no incorrecto.
type ttlCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

func newTTLCache(now func() time.Time) *ttlCache {
	if now == nil {
		now = time.Now
	}
	return &ttlCache{
		entries: make(map[string]cacheEntry),
		now:     now,
	}
}

func (c *ttlCache) get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

func (c *ttlCache) set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
}

func (c *ttlCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// MetadataService sirve las dos vistas agregadas del dataset desde un cache
// con TTL, recalculando en miss o expiración.
type MetadataService struct {
	logger        *zap.Logger
	data          dataset.Accessor
	cache         *ttlCache
	dropdownTTL   time.Duration
	brandModelTTL time.Duration
}

func NewMetadataService(logger *zap.Logger, data dataset.Accessor, dropdownTTL, brandModelTTL time.Duration) *MetadataService {
	if dropdownTTL <= 0 {
		dropdownTTL = defaultDropdownTTL
	}
	if brandModelTTL <= 0 {
		brandModelTTL = defaultBrandModelTTL
	}
	return &MetadataService{
		logger:        logger,
		data:          data,
		cache:         newTTLCache(nil),
		dropdownTTL:   dropdownTTL,
		brandModelTTL: brandModelTTL,
	}
}

// DropdownOptions devuelve los valores distintos de cada campo categórico y
// los rangos de año y puertas. Con dataset vacío cada campo categórico es una
// lista vacía y cada rango {nil, nil}; nunca es un error.
func (s *MetadataService) DropdownOptions(ctx context.Context) (domain.DropdownOptions, error) {
	if cached, ok := s.cache.get(cacheKeyDropdownOptions); ok {
		return cached.(domain.DropdownOptions), nil
	}

	options, err := s.computeDropdownOptions(ctx)
	if err != nil {
		s.logger.Error("dropdown options recompute failed", zap.Error(err))
		return domain.DropdownOptions{}, fmt.Errorf("%w: %v", ErrDatasetUnavailable, err)
	}

	s.cache.set(cacheKeyDropdownOptions, options, s.dropdownTTL)
	s.logger.Info("dropdown options recomputed", zap.Duration("ttl", s.dropdownTTL))
	return options, nil
}

// BrandModelMapping devuelve los pares (marca, modelo) distintos agrupados
// por marca, con los modelos ordenados ascendente. Filas con marca o modelo
// vacíos quedan fuera. Con dataset vacío devuelve un mapping vacío.
func (s *MetadataService) BrandModelMapping(ctx context.Context) (domain.BrandModelMapping, error) {
	if cached, ok := s.cache.get(cacheKeyBrandModelMapping); ok {
		return cached.(domain.BrandModelMapping), nil
	}

	pairs, err := s.data.DistinctPairs(ctx, dataset.FieldBrand, dataset.FieldCarModel)
	if err != nil {
		s.logger.Error("brand-model mapping recompute failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrDatasetUnavailable, err)
	}

	mapping := domain.BrandModelMapping{}
	for _, pair := range pairs {
		brand, model := pair[0], pair[1]
		if brand == "" || model == "" {
			continue
		}
		mapping[brand] = append(mapping[brand], model)
	}
	for brand := range mapping {
		sort.Strings(mapping[brand])
	}

	s.cache.set(cacheKeyBrandModelMapping, mapping, s.brandModelTTL)
	s.logger.Info("brand-model mapping recomputed", zap.Duration("ttl", s.brandModelTTL))
	return mapping, nil
}

// Invalidate descarta ambas entradas del cache. Es la acción administrativa
// de limpieza; el flujo normal depende solo de la expiración por TTL.
func (s *MetadataService) Invalidate() {
	s.cache.clear()
}

func (s *MetadataService) computeDropdownOptions(ctx context.Context) (domain.DropdownOptions, error) {
	options := domain.DropdownOptions{}

	categorical := []struct {
		field string
		dest  *[]string
	}{
		{dataset.FieldBrand, &options.Brand},
		{dataset.FieldCarModel, &options.CarModel},
		{dataset.FieldFuelType, &options.FuelType},
		{dataset.FieldTransmission, &options.Transmission},
		{dataset.FieldBody, &options.Body},
		{dataset.FieldColor, &options.Color},
	}
	for _, c := range categorical {
		values, err := s.data.DistinctValues(ctx, c.field)
		if err != nil {
			return domain.DropdownOptions{}, err
		}
		sort.Strings(values)
		if values == nil {
			values = []string{}
		}
		*c.dest = values
	}

	years, err := s.data.Range(ctx, dataset.FieldYearOfProduction)
	if err != nil {
		return domain.DropdownOptions{}, err
	}
	options.YearOfProduction = years

	doors, err := s.data.Range(ctx, dataset.FieldNumberOfDoors)
	if err != nil {
		return domain.DropdownOptions{}, err
	}
	options.NumberOfDoors = doors

	return options, nil
}
