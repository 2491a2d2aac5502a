package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"go.uber.org/zap"

	"car-price-api/internal/domain"
	"car-price-api/internal/ml"
)

func validRecord() domain.FeatureRecord {
	return domain.FeatureRecord{
		Brand:            "Audi",
		CarModel:         "A4",
		YearOfProduction: 2018,
		Mileage:          120000,
		FuelType:         "Diesel",
		Transmission:     "Automatic",
		Body:             "Sedan",
		EngineCapacity:   2.0,
		Power:            190,
		NumberOfDoors:    5,
		Color:            "Black",
	}
}

func TestInferenceService_PredictAppliesInverseTransform(t *testing.T) {
	mock := &ml.MockModel{Raw: 10.0}
	svc := NewInferenceService(zap.NewNop(), func() (ml.Model, error) { return mock, nil })

	price, err := svc.Predict(context.Background(), validRecord())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	want := math.Floor(math.Expm1(10.0))
	if price != want {
		t.Fatalf("price = %v, want floor(expm1(10)) = %v", price, want)
	}
	if price < 0 || math.IsInf(price, 0) || math.IsNaN(price) {
		t.Fatalf("expected non-negative finite price, got %v", price)
	}
}

func TestInferenceService_PredictDeterministic(t *testing.T) {
	svc := NewInferenceService(zap.NewNop(), func() (ml.Model, error) {
		return &ml.MockModel{Raw: 9.21}, nil
	})

	first, err := svc.Predict(context.Background(), validRecord())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := svc.Predict(context.Background(), validRecord())
		if err != nil {
			t.Fatalf("predict #%d: %v", i, err)
		}
		if again != first {
			t.Fatalf("prediction changed between calls: %v vs %v", again, first)
		}
	}
}

func TestInferenceService_EmptyRecordNeverTouchesModel(t *testing.T) {
	loaderCalls := 0
	mock := &ml.MockModel{Raw: 10}
	svc := NewInferenceService(zap.NewNop(), func() (ml.Model, error) {
		loaderCalls++
		return mock, nil
	})

	_, err := svc.Predict(context.Background(), domain.FeatureRecord{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if loaderCalls != 0 {
		t.Fatalf("loader invoked for empty record")
	}
	if mock.Calls != 0 {
		t.Fatalf("model invoked for empty record")
	}
}

func TestInferenceService_LoadFailureIsSticky(t *testing.T) {
	loaderCalls := 0
	svc := NewInferenceService(zap.NewNop(), func() (ml.Model, error) {
		loaderCalls++
		return nil, errors.New("artifact missing")
	})

	for i := 0; i < 3; i++ {
		_, err := svc.Predict(context.Background(), validRecord())
		if !errors.Is(err, ErrModelUnavailable) {
			t.Fatalf("call %d: expected ErrModelUnavailable, got %v", i, err)
		}
	}
	if loaderCalls != 1 {
		t.Fatalf("expected single load attempt, got %d", loaderCalls)
	}
}

func TestInferenceService_ConcurrentFirstUseLoadsOnce(t *testing.T) {
	loaderCalls := 0
	svc := NewInferenceService(zap.NewNop(), func() (ml.Model, error) {
		loaderCalls++
		return &ml.MockModel{Raw: 8}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Predict(context.Background(), validRecord()); err != nil {
				t.Errorf("predict: %v", err)
			}
		}()
	}
	wg.Wait()

	if loaderCalls != 1 {
		t.Fatalf("expected single load, got %d", loaderCalls)
	}
}

func TestInferenceService_ModelErrorPropagates(t *testing.T) {
	modelErr := errors.New("boom")
	svc := NewInferenceService(zap.NewNop(), func() (ml.Model, error) {
		return &ml.MockModel{Err: modelErr}, nil
	})

	_, err := svc.Predict(context.Background(), validRecord())
	if !errors.Is(err, modelErr) {
		t.Fatalf("expected model error to surface, got %v", err)
	}
}

// La responsabilidad de los rangos de negocio es del boundary: un registro
// fuera de rango que igual llega al núcleo no debe romper ni "corregirse".
func TestInferenceService_OutOfRangeRecordPassesThrough(t *testing.T) {
	mock := &ml.MockModel{Raw: 7.5}
	svc := NewInferenceService(zap.NewNop(), func() (ml.Model, error) { return mock, nil })

	record := validRecord()
	record.YearOfProduction = 1800

	price, err := svc.Predict(context.Background(), record)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if price != math.Floor(math.Expm1(7.5)) {
		t.Fatalf("unexpected price %v", price)
	}
	if mock.Calls != 1 {
		t.Fatalf("expected model call, got %d", mock.Calls)
	}
}
