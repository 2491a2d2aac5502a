package domain

import "time"

// FeatureRecord describe un vehículo con los once atributos que espera el
// modelo de precios. El boundary HTTP valida los rangos de negocio; el núcleo
// solo asume que el registro no está vacío.
type FeatureRecord struct {
	Brand            string  `json:"brand"`
	CarModel         string  `json:"car_model"`
	YearOfProduction int     `json:"year_of_production"`
	Mileage          int     `json:"mileage"` // [km]
	FuelType         string  `json:"fuel_type"`
	Transmission     string  `json:"transmission"`
	Body             string  `json:"body"`
	EngineCapacity   float64 `json:"engine_capacity"` // [dm3]
	Power            int     `json:"power"`           // [hp]
	NumberOfDoors    int     `json:"number_of_doors"`
	Color            string  `json:"color"`
}

// IsZero indica si el registro no trae ningún dato.
func (r FeatureRecord) IsZero() bool {
	return r == FeatureRecord{}
}

// Prediction es el resultado de una inferencia. Para usuarios autenticados se
// persiste con ID y dueño; para invitados UserID queda vacío y nunca se guarda.
type Prediction struct {
	ID             string    `json:"id,omitempty"`
	UserID         string    `json:"user_id,omitempty"`
	FeatureRecord
	PredictedPrice float64   `json:"predicted_price"`
	Timestamp      time.Time `json:"timestamp"`
}
