package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mcosta/btcfolio-backend/internal/domain"
)

// priceRepository implements domain.PriceRepository
type priceRepository struct {
	db *DB
}

// NewPriceRepository creates a new hourly price repository
func NewPriceRepository(db *DB) domain.PriceRepository {
	return &priceRepository{db: db}
}

const pricePointColumns = "unix_timestamp, open, high, low, close, volumefrom, volumeto"

func scanPricePoint(row interface{ Scan(...any) error }) (*domain.HourlyPricePoint, error) {
	var point domain.HourlyPricePoint
	var open, high, low, closeP, volumeFrom, volumeTo string

	if err := row.Scan(&point.UnixTimestamp, &open, &high, &low, &closeP, &volumeFrom, &volumeTo); err != nil {
		return nil, err
	}

	for _, field := range []struct {
		raw string
		dst *decimal.Decimal
	}{
		{open, &point.Open},
		{high, &point.High},
		{low, &point.Low},
		{closeP, &point.Close},
		{volumeFrom, &point.VolumeFrom},
		{volumeTo, &point.VolumeTo},
	} {
		value, err := decimal.NewFromString(field.raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price column: %w", err)
		}
		*field.dst = value
	}
	return &point, nil
}

// GetByTimestamp retrieves the candle stored for an exact timestamp
func (r *priceRepository) GetByTimestamp(ctx context.Context, unixTimestamp int64) (*domain.HourlyPricePoint, error) {
	query := `
		SELECT ` + pricePointColumns + `
		FROM hourly_bitcoin_prices
		WHERE unix_timestamp = $1
	`

	point, err := scanPricePoint(r.db.QueryRowContext(ctx, query, unixTimestamp))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no candle for timestamp %d: %w", unixTimestamp, domain.ErrPriceNotFound)
		}
		return nil, fmt.Errorf("failed to get price by timestamp: %w", err)
	}
	return point, nil
}

// Latest retrieves the candle with the highest timestamp
func (r *priceRepository) Latest(ctx context.Context) (*domain.HourlyPricePoint, error) {
	query := `
		SELECT ` + pricePointColumns + `
		FROM hourly_bitcoin_prices
		ORDER BY unix_timestamp DESC
		LIMIT 1
	`

	point, err := scanPricePoint(r.db.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoPriceData
		}
		return nil, fmt.Errorf("failed to get latest price: %w", err)
	}
	return point, nil
}

// TimestampBounds returns the smallest and largest stored timestamps
func (r *priceRepository) TimestampBounds(ctx context.Context) (int64, int64, error) {
	query := `SELECT MIN(unix_timestamp), MAX(unix_timestamp) FROM hourly_bitcoin_prices`

	var min, max sql.NullInt64
	if err := r.db.QueryRowContext(ctx, query).Scan(&min, &max); err != nil {
		return 0, 0, fmt.Errorf("failed to get timestamp bounds: %w", err)
	}
	if !min.Valid || !max.Valid {
		return 0, 0, domain.ErrNoPriceData
	}
	return min.Int64, max.Int64, nil
}

// Insert stores a candle; a duplicate timestamp is a no-op
func (r *priceRepository) Insert(ctx context.Context, point *domain.HourlyPricePoint) (bool, error) {
	query := `
		INSERT INTO hourly_bitcoin_prices (unix_timestamp, open, high, low, close, volumefrom, volumeto)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (unix_timestamp) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		point.UnixTimestamp,
		point.Open.String(),
		point.High.String(),
		point.Low.String(),
		point.Close.String(),
		point.VolumeFrom.String(),
		point.VolumeTo.String(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert price point: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return rows > 0, nil
}

// List retrieves a page of candles sorted by timestamp descending
func (r *priceRepository) List(ctx context.Context, limit, offset int) ([]*domain.HourlyPricePoint, error) {
	query := `
		SELECT ` + pricePointColumns + `
		FROM hourly_bitcoin_prices
		ORDER BY unix_timestamp DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list prices: %w", err)
	}
	defer rows.Close()

	var points []*domain.HourlyPricePoint
	for rows.Next() {
		point, err := scanPricePoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price row: %w", err)
		}
		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate price rows: %w", err)
	}
	return points, nil
}
