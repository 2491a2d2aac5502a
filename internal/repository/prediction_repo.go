package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"car-price-api/internal/domain"
)

// HistoryFilter acota el listado de predicciones de un usuario. Los punteros
// nil significan "sin filtro".
type HistoryFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	MinPrice  *float64
	MaxPrice  *float64
	Brand     string
	CarModel  string
	Sort      string
	Page      int
	PageSize  int
}

// PredictionRepository define el contrato de persistencia para predicciones.
type PredictionRepository interface {
	Create(ctx context.Context, prediction domain.Prediction) error
	ListByUser(ctx context.Context, userID string, filter HistoryFilter) ([]domain.Prediction, int, error)
}

// Campos de orden aceptados, con el descendente por timestamp como default.
var sortColumns = map[string]string{
	"timestamp":        "timestamp ASC",
	"-timestamp":       "timestamp DESC",
	"predicted_price":  "predicted_price ASC",
	"-predicted_price": "predicted_price DESC",
}

// PgPredictionRepository implementa PredictionRepository usando pgxpool.
type PgPredictionRepository struct {
	pool *pgxpool.Pool
}

func NewPgPredictionRepository(pool *pgxpool.Pool) *PgPredictionRepository {
	return &PgPredictionRepository{pool: pool}
}

func (r *PgPredictionRepository) Create(ctx context.Context, p domain.Prediction) error {
	const query = `
		INSERT INTO predictions (
			id, user_id, brand, car_model, year_of_production, mileage,
			fuel_type, transmission, body, engine_capacity, power,
			number_of_doors, color, predicted_price, timestamp
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.UserID,
		p.Brand,
		p.CarModel,
		p.YearOfProduction,
		p.Mileage,
		p.FuelType,
		p.Transmission,
		p.Body,
		p.EngineCapacity,
		p.Power,
		p.NumberOfDoors,
		p.Color,
		p.PredictedPrice,
		p.Timestamp,
	)
	return err
}

func (r *PgPredictionRepository) ListByUser(ctx context.Context, userID string, filter HistoryFilter) ([]domain.Prediction, int, error) {
	where, args := buildHistoryWhere(userID, filter)

	var total int
	countQuery := "SELECT COUNT(*) FROM predictions " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderBy, ok := sortColumns[filter.Sort]
	if !ok {
		orderBy = sortColumns["-timestamp"]
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, brand, car_model, year_of_production, mileage,
		       fuel_type, transmission, body, engine_capacity, power,
		       number_of_doors, color, predicted_price, timestamp
		FROM predictions
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, where, orderBy, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	predictions := []domain.Prediction{}
	for rows.Next() {
		var p domain.Prediction
		if err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.Brand,
			&p.CarModel,
			&p.YearOfProduction,
			&p.Mileage,
			&p.FuelType,
			&p.Transmission,
			&p.Body,
			&p.EngineCapacity,
			&p.Power,
			&p.NumberOfDoors,
			&p.Color,
			&p.PredictedPrice,
			&p.Timestamp,
		); err != nil {
			return nil, 0, err
		}
		predictions = append(predictions, p)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return predictions, total, nil
}

func buildHistoryWhere(userID string, filter HistoryFilter) (string, []any) {
	conditions := []string{"user_id = $1"}
	args := []any{userID}

	add := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if filter.StartDate != nil {
		add("timestamp >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("timestamp < $%d", *filter.EndDate)
	}
	if filter.MinPrice != nil {
		add("predicted_price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("predicted_price <= $%d", *filter.MaxPrice)
	}
	if filter.Brand != "" {
		add("lower(brand) = lower($%d)", filter.Brand)
	}
	if filter.CarModel != "" {
		add("car_model ILIKE $%d", "%"+filter.CarModel+"%")
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}
