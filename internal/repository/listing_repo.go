package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"car-price-api/internal/dataset"
	"car-price-api/internal/domain"
)

// PgListingRepository implementa dataset.Accessor sobre la tabla car_listings.
// Es la variante record-store del accessor CSV: mismas tres consultas, pero
// resueltas por el motor.
type PgListingRepository struct {
	pool *pgxpool.Pool
}

func NewPgListingRepository(pool *pgxpool.Pool) *PgListingRepository {
	return &PgListingRepository{pool: pool}
}

// listingColumns es la whitelist de identificadores interpolables en SQL.
var listingColumns = map[string]struct{}{
	dataset.FieldBrand:            {},
	dataset.FieldCarModel:         {},
	dataset.FieldYearOfProduction: {},
	dataset.FieldFuelType:         {},
	dataset.FieldTransmission:     {},
	dataset.FieldBody:             {},
	dataset.FieldNumberOfDoors:    {},
	dataset.FieldColor:            {},
}

func listingColumn(field string) (string, error) {
	if _, ok := listingColumns[field]; !ok {
		return "", fmt.Errorf("%w: unknown column %q", dataset.ErrMalformed, field)
	}
	return field, nil
}

func (r *PgListingRepository) DistinctValues(ctx context.Context, field string) ([]string, error) {
	column, err := listingColumn(field)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT DISTINCT %s FROM car_listings
		WHERE %s IS NOT NULL AND %s <> ''
	`, column, column, column)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dataset.ErrUnavailable, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("%w: %v", dataset.ErrUnavailable, err)
		}
		values = append(values, v)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%w: %v", dataset.ErrUnavailable, rows.Err())
	}
	return values, nil
}

func (r *PgListingRepository) Range(ctx context.Context, field string) (domain.NumericRange, error) {
	column, err := listingColumn(field)
	if err != nil {
		return domain.NumericRange{}, err
	}
	query := fmt.Sprintf(`SELECT MIN(%s), MAX(%s) FROM car_listings`, column, column)

	var rng domain.NumericRange
	if err := r.pool.QueryRow(ctx, query).Scan(&rng.Min, &rng.Max); err != nil {
		return domain.NumericRange{}, fmt.Errorf("%w: %v", dataset.ErrUnavailable, err)
	}
	return rng, nil
}

func (r *PgListingRepository) DistinctPairs(ctx context.Context, fieldA, fieldB string) ([][2]string, error) {
	columnA, err := listingColumn(fieldA)
	if err != nil {
		return nil, err
	}
	columnB, err := listingColumn(fieldB)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT DISTINCT %s, %s FROM car_listings
	`, columnA, columnB)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dataset.ErrUnavailable, err)
	}
	defer rows.Close()

	pairs := [][2]string{}
	for rows.Next() {
		var a, b *string
		if err := rows.Scan(&a, &b); err != nil {
			return nil, fmt.Errorf("%w: %v", dataset.ErrUnavailable, err)
		}
		pair := [2]string{}
		if a != nil {
			pair[0] = *a
		}
		if b != nil {
			pair[1] = *b
		}
		pairs = append(pairs, pair)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%w: %v", dataset.ErrUnavailable, rows.Err())
	}
	return pairs, nil
}
