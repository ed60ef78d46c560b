package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"orgatlas.app/api-server/internal/model"
)

// organizationSelect joins each organization with its building; phone numbers
// and activities are batch-loaded afterwards to avoid row multiplication.
const organizationSelect = `
SELECT
    o.id, o.name, o.building_id, o.created_at,
    b.address, b.created_at,
    ST_Y(b.location::geometry), ST_X(b.location::geometry)
FROM organizations o
JOIN buildings b ON b.id = o.building_id`

type organizationStore struct {
	q querier
}

func newOrganizationStore(q querier) OrganizationStore {
	return &organizationStore{q: q}
}

func (s *organizationStore) GetByID(ctx context.Context, id int64) (*model.Organization, error) {
	row := s.q.QueryRow(ctx, organizationSelect+" WHERE o.id = $1", id)

	org, err := scanOrganization(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying organization: %w", err)
	}

	orgs := []model.Organization{*org}
	if err := s.loadAssociations(ctx, orgs); err != nil {
		return nil, err
	}
	return &orgs[0], nil
}

func (s *organizationStore) List(ctx context.Context, filter OrganizationFilter) ([]model.Organization, error) {
	qb := &queryBuilder{}
	applyOrganizationFilter(qb, filter)
	return s.selectOrganizations(ctx, qb, filter.Page)
}

func (s *organizationStore) ListInRadius(ctx context.Context, center model.GeoPoint, radiusMeters float64, filter OrganizationFilter) ([]model.Organization, error) {
	qb := &queryBuilder{}
	// ST_DWithin on geography measures great-circle meters; radius 0
	// degenerates to exact coincidence with the center point.
	qb.where(
		"ST_DWithin(b.location, ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography, ?)",
		center.Longitude, center.Latitude, radiusMeters,
	)
	applyOrganizationFilter(qb, filter)
	return s.selectOrganizations(ctx, qb, filter.Page)
}

func (s *organizationStore) ListInBBox(ctx context.Context, sw, ne model.GeoPoint, filter OrganizationFilter) ([]model.Organization, error) {
	qb := &queryBuilder{}
	// ST_MakeEnvelope is a planar lat/lon rectangle; the service layer
	// rejects boxes crossing the antimeridian before we get here.
	qb.where(
		"ST_Within(b.location::geometry, ST_MakeEnvelope(?, ?, ?, ?, 4326))",
		sw.Longitude, sw.Latitude, ne.Longitude, ne.Latitude,
	)
	applyOrganizationFilter(qb, filter)
	return s.selectOrganizations(ctx, qb, filter.Page)
}

func (s *organizationStore) Create(ctx context.Context, org *model.Organization, activityIDs []int64) error {
	_, err := s.q.Exec(ctx,
		"INSERT INTO organizations (id, name, building_id) VALUES ($1, $2, $3)",
		org.ID, org.Name, org.BuildingID,
	)
	if err != nil {
		return fmt.Errorf("inserting organization: %w", err)
	}

	for _, number := range org.Phones {
		_, err := s.q.Exec(ctx,
			"INSERT INTO organization_phones (organization_id, number) VALUES ($1, $2)",
			org.ID, number,
		)
		if err != nil {
			return fmt.Errorf("inserting phone number: %w", err)
		}
	}

	for _, activityID := range activityIDs {
		_, err := s.q.Exec(ctx,
			"INSERT INTO organization_activities (organization_id, activity_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			org.ID, activityID,
		)
		if err != nil {
			return fmt.Errorf("linking activity: %w", err)
		}
	}

	return nil
}

func (s *organizationStore) selectOrganizations(ctx context.Context, qb *queryBuilder, page Page) ([]model.Organization, error) {
	sql := organizationSelect + qb.whereClause() + " ORDER BY o.id" + qb.limitOffset(page)

	rows, err := s.q.Query(ctx, sql, qb.args...)
	if err != nil {
		return nil, fmt.Errorf("querying organizations: %w", err)
	}
	defer rows.Close()

	orgs := []model.Organization{}
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning organization: %w", err)
		}
		orgs = append(orgs, *org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading organizations: %w", err)
	}

	if err := s.loadAssociations(ctx, orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// loadAssociations batch-loads phone numbers and activities for the given
// organizations with one query each.
func (s *organizationStore) loadAssociations(ctx context.Context, orgs []model.Organization) error {
	if len(orgs) == 0 {
		return nil
	}

	ids := make([]int64, len(orgs))
	byID := make(map[int64]*model.Organization, len(orgs))
	for i := range orgs {
		ids[i] = orgs[i].ID
		byID[orgs[i].ID] = &orgs[i]
	}

	phoneRows, err := s.q.Query(ctx,
		"SELECT organization_id, number FROM organization_phones WHERE organization_id = ANY($1) ORDER BY id",
		ids,
	)
	if err != nil {
		return fmt.Errorf("querying phone numbers: %w", err)
	}
	defer phoneRows.Close()

	for phoneRows.Next() {
		var orgID int64
		var number string
		if err := phoneRows.Scan(&orgID, &number); err != nil {
			return fmt.Errorf("scanning phone number: %w", err)
		}
		if org, ok := byID[orgID]; ok {
			org.Phones = append(org.Phones, number)
		}
	}
	if err := phoneRows.Err(); err != nil {
		return fmt.Errorf("reading phone numbers: %w", err)
	}

	activityRows, err := s.q.Query(ctx,
		`SELECT oa.organization_id, a.id, a.name
         FROM organization_activities oa
         JOIN activities a ON a.id = oa.activity_id
         WHERE oa.organization_id = ANY($1)
         ORDER BY a.id`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("querying activities: %w", err)
	}
	defer activityRows.Close()

	for activityRows.Next() {
		var orgID int64
		var ref model.ActivityRef
		if err := activityRows.Scan(&orgID, &ref.ID, &ref.Name); err != nil {
			return fmt.Errorf("scanning activity: %w", err)
		}
		if org, ok := byID[orgID]; ok {
			org.Activities = append(org.Activities, ref)
		}
	}
	if err := activityRows.Err(); err != nil {
		return fmt.Errorf("reading activities: %w", err)
	}

	return nil
}

func scanOrganization(row pgx.Row) (*model.Organization, error) {
	org := &model.Organization{
		Phones:     []string{},
		Activities: []model.ActivityRef{},
	}
	err := row.Scan(
		&org.ID, &org.Name, &org.BuildingID, &org.CreatedAt,
		&org.Building.Address, &org.Building.CreatedAt,
		&org.Building.Location.Latitude, &org.Building.Location.Longitude,
	)
	if err != nil {
		return nil, err
	}
	org.Building.ID = org.BuildingID
	return org, nil
}
