package repositories

import (
	"context"
	"fmt"

	"FireGar/internal/models/domain"

	"github.com/google/uuid"
)

// GetStations returns all configured fire stations ordered by name.
func (r *Repository) GetStations(ctx context.Context) ([]domain.Station, error) {
	op := "Repository.GetStations"
	var stations []domain.Station
	query := `SELECT id, name, address, created_at
		FROM stations
		ORDER BY name`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var s domain.Station
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		stations = append(stations, s)
	}
	return stations, rows.Err()
}

// CreateStation inserts a new station.
func (r *Repository) CreateStation(ctx context.Context, name, address string) (*domain.Station, error) {
	op := "Repository.CreateStation"
	station := &domain.Station{
		ID:      uuid.New(),
		Name:    name,
		Address: address,
	}

	query := `INSERT INTO stations (id, name, address)
		VALUES ($1, $2, $3)
		RETURNING created_at`
	err := r.DB.QueryRowContext(ctx, query, station.ID, station.Name, station.Address).
		Scan(&station.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return station, nil
}
