package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"

	"car-price-api/internal/domain"
)

// Model define la interfaz del modelo de regresión cargado. La salida es el
// valor crudo del modelo (entrenado sobre log1p(precio)); la transformación
// inversa la aplica el servicio de inferencia.
type Model interface {
	Predict(record domain.FeatureRecord) (float64, error)
}

var ErrModelLoad = errors.New("model load failed")

// numericFeature es un término numérico del modelo: coef * (x - mean) / scale.
type numericFeature struct {
	Name  string  `json:"name"`
	Mean  float64 `json:"mean"`
	Scale float64 `json:"scale"`
	Coef  float64 `json:"coef"`
}

// categoricalFeature aporta un peso por valor observado en entrenamiento y un
// peso por defecto para valores no vistos.
type categoricalFeature struct {
	Name    string             `json:"name"`
	Weights map[string]float64 `json:"weights"`
	Default float64            `json:"default"`
}

type artifact struct {
	Version     string               `json:"version"`
	Intercept   float64              `json:"intercept"`
	Numeric     []numericFeature     `json:"numeric"`
	Categorical []categoricalFeature `json:"categorical"`
}

// LinearModel implementa Model con los coeficientes serializados por el
// pipeline de entrenamiento. Es de solo lectura después de cargarse.
type LinearModel struct {
	version     string
	intercept   float64
	numeric     []numericFeature
	categorical []categoricalFeature
}

// Load lee y deserializa el artefacto del modelo desde path. Cualquier fallo
// (archivo inexistente, JSON inválido, artefacto incompleto) devuelve un error
// que envuelve ErrModelLoad.
func Load(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrModelLoad, path, err)
	}
	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrModelLoad, path, err)
	}
	if len(art.Numeric) == 0 && len(art.Categorical) == 0 {
		return nil, fmt.Errorf("%w: artifact %s declares no features", ErrModelLoad, path)
	}
	for _, f := range art.Numeric {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: numeric feature without name", ErrModelLoad)
		}
		if f.Scale == 0 {
			return nil, fmt.Errorf("%w: numeric feature %q has zero scale", ErrModelLoad, f.Name)
		}
	}
	for _, f := range art.Categorical {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: categorical feature without name", ErrModelLoad)
		}
	}
	return &LinearModel{
		version:     art.Version,
		intercept:   art.Intercept,
		numeric:     art.Numeric,
		categorical: art.Categorical,
	}, nil
}

// Version devuelve el identificador del artefacto cargado.
func (m *LinearModel) Version() string {
	return m.version
}

// Predict evalúa el modelo sobre un registro. El orden de los features lo
// dicta el artefacto, igual que en entrenamiento.
func (m *LinearModel) Predict(record domain.FeatureRecord) (float64, error) {
	values := make([]float64, len(m.numeric))
	coefs := make([]float64, len(m.numeric))
	for i, f := range m.numeric {
		v, ok := numericValue(record, f.Name)
		if !ok {
			return 0, fmt.Errorf("unknown numeric feature %q", f.Name)
		}
		values[i] = (v - f.Mean) / f.Scale
		coefs[i] = f.Coef
	}

	raw := m.intercept + floats.Dot(values, coefs)
	for _, f := range m.categorical {
		v, ok := categoricalValue(record, f.Name)
		if !ok {
			return 0, fmt.Errorf("unknown categorical feature %q", f.Name)
		}
		if w, seen := f.Weights[v]; seen {
			raw += w
		} else {
			raw += f.Default
		}
	}

	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, fmt.Errorf("non-finite model output for record %s %s", record.Brand, record.CarModel)
	}
	return raw, nil
}

func numericValue(record domain.FeatureRecord, name string) (float64, bool) {
	switch name {
	case "year_of_production":
		return float64(record.YearOfProduction), true
	case "mileage":
		return float64(record.Mileage), true
	case "engine_capacity":
		return record.EngineCapacity, true
	case "power":
		return float64(record.Power), true
	case "number_of_doors":
		return float64(record.NumberOfDoors), true
	}
	return 0, false
}

func categoricalValue(record domain.FeatureRecord, name string) (string, bool) {
	switch name {
	case "brand":
		return record.Brand, true
	case "car_model":
		return record.CarModel, true
	case "fuel_type":
		return record.FuelType, true
	case "transmission":
		return record.Transmission, true
	case "body":
		return record.Body, true
	case "color":
		return record.Color, true
	}
	return "", false
}
