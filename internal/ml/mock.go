package ml

import "car-price-api/internal/domain"

// MockModel permite tests sin un artefacto real.
type MockModel struct {
	Raw   float64
	Err   error
	Calls int
}

func (m *MockModel) Predict(_ domain.FeatureRecord) (float64, error) {
	m.Calls++
	return m.Raw, m.Err
}
