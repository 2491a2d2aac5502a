package dataset

import (
	"context"
	"errors"

	"car-price-api/internal/domain"
)

// Accessor define las consultas agregadas que la capa de metadatos hace sobre
// el corpus de avisos históricos. Las implementaciones no mutan el dataset.
type Accessor interface {
	DistinctValues(ctx context.Context, field string) ([]string, error)
	Range(ctx context.Context, field string) (domain.NumericRange, error)
	DistinctPairs(ctx context.Context, fieldA, fieldB string) ([][2]string, error)
}

var (
	// ErrUnavailable indica que el dataset no se pudo leer (archivo o store
	// inaccesible).
	ErrUnavailable = errors.New("dataset unavailable")
	// ErrMalformed indica que el dataset no tiene el esquema esperado.
	ErrMalformed = errors.New("dataset malformed")
)

// Columnas del dataset de avisos.
const (
	FieldBrand            = "brand"
	FieldCarModel         = "car_model"
	FieldYearOfProduction = "year_of_production"
	FieldFuelType         = "fuel_type"
	FieldTransmission     = "transmission"
	FieldBody             = "body"
	FieldNumberOfDoors    = "number_of_doors"
	FieldColor            = "color"
)

// RequiredColumns son las columnas que la capa de metadatos necesita.
var RequiredColumns = []string{
	FieldBrand,
	FieldCarModel,
	FieldYearOfProduction,
	FieldFuelType,
	FieldTransmission,
	FieldBody,
	FieldNumberOfDoors,
	FieldColor,
}
