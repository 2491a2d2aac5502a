package ml

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"car-price-api/internal/domain"
)

const testArtifact = `{
	"version": "linear-log1p-v1",
	"intercept": 9.5,
	"numeric": [
		{"name": "year_of_production", "mean": 2015, "scale": 5, "coef": 0.5},
		{"name": "mileage", "mean": 100000, "scale": 50000, "coef": -0.25},
		{"name": "engine_capacity", "mean": 1.8, "scale": 0.6, "coef": 0.1},
		{"name": "power", "mean": 120, "scale": 40, "coef": 0.2},
		{"name": "number_of_doors", "mean": 4, "scale": 1, "coef": 0.01}
	],
	"categorical": [
		{"name": "brand", "weights": {"Audi": 0.2, "BMW": 0.3}, "default": -0.1},
		{"name": "car_model", "weights": {"A4": 0.05}, "default": 0},
		{"name": "fuel_type", "weights": {"Diesel": -0.02}, "default": 0},
		{"name": "transmission", "weights": {"Automatic": 0.04}, "default": 0},
		{"name": "body", "weights": {"Sedan": 0.01}, "default": 0},
		{"name": "color", "weights": {}, "default": 0}
	]
}`

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func testRecord() domain.FeatureRecord {
	return domain.FeatureRecord{
		Brand:            "Audi",
		CarModel:         "A4",
		YearOfProduction: 2020,
		Mileage:          50000,
		FuelType:         "Diesel",
		Transmission:     "Automatic",
		Body:             "Sedan",
		EngineCapacity:   2.4,
		Power:            160,
		NumberOfDoors:    5,
		Color:            "Black",
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, ErrModelLoad) {
		t.Fatalf("expected ErrModelLoad, got %v", err)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := writeArtifact(t, "{not json")
	if _, err := Load(path); !errors.Is(err, ErrModelLoad) {
		t.Fatalf("expected ErrModelLoad, got %v", err)
	}
}

func TestLoad_ZeroScaleRejected(t *testing.T) {
	path := writeArtifact(t, `{"intercept": 1, "numeric": [{"name": "mileage", "mean": 0, "scale": 0, "coef": 1}]}`)
	if _, err := Load(path); !errors.Is(err, ErrModelLoad) {
		t.Fatalf("expected ErrModelLoad, got %v", err)
	}
}

func TestLoad_EmptyArtifactRejected(t *testing.T) {
	path := writeArtifact(t, `{"intercept": 1}`)
	if _, err := Load(path); !errors.Is(err, ErrModelLoad) {
		t.Fatalf("expected ErrModelLoad, got %v", err)
	}
}

func TestLinearModel_PredictKnownValue(t *testing.T) {
	model, err := Load(writeArtifact(t, testArtifact))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if model.Version() != "linear-log1p-v1" {
		t.Fatalf("unexpected version %q", model.Version())
	}

	raw, err := model.Predict(testRecord())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}

	// Suma a mano de los términos del artefacto de prueba.
	want := 9.5 +
		0.5*(2020-2015)/5.0 +
		-0.25*(50000-100000)/50000.0 +
		0.1*(2.4-1.8)/0.6 +
		0.2*(160-120)/40.0 +
		0.01*(5-4)/1.0 +
		0.2 + 0.05 + -0.02 + 0.04 + 0.01 + 0
	if math.Abs(raw-want) > 1e-9 {
		t.Fatalf("raw = %v, want %v", raw, want)
	}
}

func TestLinearModel_PredictDeterministic(t *testing.T) {
	model, err := Load(writeArtifact(t, testArtifact))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	first, err := model.Predict(testRecord())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := model.Predict(testRecord())
		if err != nil {
			t.Fatalf("predict #%d: %v", i, err)
		}
		if again != first {
			t.Fatalf("prediction changed between calls: %v vs %v", again, first)
		}
	}
}

func TestLinearModel_UnseenCategoryUsesDefault(t *testing.T) {
	model, err := Load(writeArtifact(t, testArtifact))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	known := testRecord()
	unseen := testRecord()
	unseen.Brand = "Lada"

	rawKnown, err := model.Predict(known)
	if err != nil {
		t.Fatalf("predict known: %v", err)
	}
	rawUnseen, err := model.Predict(unseen)
	if err != nil {
		t.Fatalf("predict unseen: %v", err)
	}
	// Audi pesa 0.2, el default de brand es -0.1.
	if diff := rawKnown - rawUnseen; math.Abs(diff-0.3) > 1e-9 {
		t.Fatalf("expected 0.3 difference between known and unseen brand, got %v", diff)
	}
}
