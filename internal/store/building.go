package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"orgatlas.app/api-server/internal/model"
)

type buildingStore struct {
	q querier
}

func newBuildingStore(q querier) BuildingStore {
	return &buildingStore{q: q}
}

func (s *buildingStore) GetByID(ctx context.Context, id int64) (*model.Building, error) {
	row := s.q.QueryRow(ctx,
		`SELECT id, address, created_at,
                ST_Y(location::geometry), ST_X(location::geometry)
         FROM buildings WHERE id = $1`,
		id,
	)

	var b model.Building
	err := row.Scan(&b.ID, &b.Address, &b.CreatedAt, &b.Location.Latitude, &b.Location.Longitude)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying building: %w", err)
	}
	return &b, nil
}

func (s *buildingStore) Create(ctx context.Context, building *model.Building) error {
	if !building.Location.Valid() {
		return fmt.Errorf("building %d has out-of-range coordinates", building.ID)
	}

	_, err := s.q.Exec(ctx,
		`INSERT INTO buildings (id, address, location)
         VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography)`,
		building.ID, building.Address,
		building.Location.Longitude, building.Location.Latitude,
	)
	if err != nil {
		return fmt.Errorf("inserting building: %w", err)
	}
	return nil
}
