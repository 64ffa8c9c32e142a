package data

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/ridopark/JonBuhBacktest/pkg/series"
)

// TimescaleDBProvider loads historical OHLCV bars from TimescaleDB.
// It is the bar-supplying collaborator for the CLI; the engine itself
// never touches it.
type TimescaleDBProvider struct {
	db *sql.DB
}

// NewTimescaleDBProvider creates a new TimescaleDB data provider
func NewTimescaleDBProvider(connectionString string) (*TimescaleDBProvider, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &TimescaleDBProvider{
		db: db,
	}, nil
}

// GetBars retrieves the ordered bar series for one symbol over the
// given range.
func (p *TimescaleDBProvider) GetBars(symbol string, timeframe string, start time.Time, end time.Time) (series.Series, error) {
	query := `
		SELECT symbol, timestamp, open, high, low, close, volume, timeframe
		FROM ohlcv_data
		WHERE symbol = $1 AND timeframe = $2 AND timestamp >= $3 AND timestamp <= $4
		ORDER BY timestamp ASC
	`

	rows, err := p.db.Query(query, symbol, timeframe, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query ohlcv_data: %w", err)
	}
	defer rows.Close()

	var bars series.Series
	for rows.Next() {
		var bar series.Bar
		err := rows.Scan(
			&bar.Symbol,
			&bar.Timestamp,
			&bar.Open,
			&bar.High,
			&bar.Low,
			&bar.Close,
			&bar.Volume,
			&bar.Timeframe,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		bars = append(bars, bar)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return bars, nil
}

// GetLastBar gets the most recent bar for a symbol
func (p *TimescaleDBProvider) GetLastBar(symbol string, timeframe string) (*series.Bar, error) {
	query := `
		SELECT symbol, timestamp, open, high, low, close, volume, timeframe
		FROM ohlcv_data
		WHERE symbol = $1 AND timeframe = $2
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var bar series.Bar
	err := p.db.QueryRow(query, symbol, timeframe).Scan(
		&bar.Symbol,
		&bar.Timestamp,
		&bar.Open,
		&bar.High,
		&bar.Low,
		&bar.Close,
		&bar.Volume,
		&bar.Timeframe,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last bar: %w", err)
	}

	return &bar, nil
}

// Close closes the database connection
func (p *TimescaleDBProvider) Close() error {
	return p.db.Close()
}
