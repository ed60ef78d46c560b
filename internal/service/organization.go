package service

import (
	"context"
	"errors"
	"fmt"

	"orgatlas.app/api-server/internal/model"
	"orgatlas.app/api-server/internal/store"
)

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrActivityNotFound     = errors.New("activity not found")

	ErrInvalidCoordinates  = errors.New("coordinates out of range")
	ErrNegativeRadius      = errors.New("radius must be non-negative")
	ErrInvertedBoundingBox = errors.New("southwest corner must not be north of northeast corner")
	// Boxes crossing the antimeridian are rejected outright: ST_MakeEnvelope
	// does not wrap, so accepting them would silently return wrong results.
	ErrBoundingBoxCrossesAntimeridian = errors.New("bounding boxes crossing the antimeridian are not supported")
)

const (
	defaultLimit = 10
	maxLimit     = 50
)

// ListFilters are the optional predicates of the plain listing endpoint.
type ListFilters struct {
	BuildingID *int64
	Name       *string
	ActivityID *int64
	Offset     int32
	Limit      int32
}

// GeoFilters are the optional predicates shared by the radius and bbox
// searches. ActivityRootID filters by the whole activity subtree.
type GeoFilters struct {
	BuildingID     *int64
	ActivityRootID *int64
	Offset         int32
	Limit          int32
}

type OrganizationService interface {
	List(ctx context.Context, filters ListFilters) ([]model.Organization, error)
	Get(ctx context.Context, id int64) (*model.Organization, error)
	ListInRadius(ctx context.Context, center model.GeoPoint, radiusMeters float64, filters GeoFilters) ([]model.Organization, error)
	ListInBBox(ctx context.Context, sw, ne model.GeoPoint, filters GeoFilters) ([]model.Organization, error)
	ListByActivitySubtree(ctx context.Context, rootID int64) ([]model.Organization, error)
}

type organizationService struct {
	tx store.TxRunner
}

func NewOrganizationService(tx store.TxRunner) OrganizationService {
	return &organizationService{tx: tx}
}

func (s *organizationService) List(ctx context.Context, filters ListFilters) ([]model.Organization, error) {
	var orgs []model.Organization

	err := s.tx.WithReadTx(ctx, func(stores store.Provider) error {
		var err error
		orgs, err = stores.Organizations().List(ctx, store.OrganizationFilter{
			BuildingID: filters.BuildingID,
			Name:       filters.Name,
			ActivityID: filters.ActivityID,
			Page:       normalizePage(filters.Offset, filters.Limit),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return orgs, nil
}

func (s *organizationService) Get(ctx context.Context, id int64) (*model.Organization, error) {
	var org *model.Organization

	err := s.tx.WithReadTx(ctx, func(stores store.Provider) error {
		var err error
		org, err = stores.Organizations().GetByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return ErrOrganizationNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return org, nil
}

func (s *organizationService) ListInRadius(ctx context.Context, center model.GeoPoint, radiusMeters float64, filters GeoFilters) ([]model.Organization, error) {
	if !center.Valid() {
		return nil, ErrInvalidCoordinates
	}
	if radiusMeters < 0 {
		return nil, ErrNegativeRadius
	}

	var orgs []model.Organization

	err := s.tx.WithReadTx(ctx, func(stores store.Provider) error {
		filter, err := s.geoFilter(ctx, stores, filters)
		if err != nil {
			return err
		}
		orgs, err = stores.Organizations().ListInRadius(ctx, center, radiusMeters, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	return orgs, nil
}

func (s *organizationService) ListInBBox(ctx context.Context, sw, ne model.GeoPoint, filters GeoFilters) ([]model.Organization, error) {
	if !sw.Valid() || !ne.Valid() {
		return nil, ErrInvalidCoordinates
	}
	if sw.Latitude > ne.Latitude {
		return nil, ErrInvertedBoundingBox
	}
	if sw.Longitude > ne.Longitude {
		return nil, ErrBoundingBoxCrossesAntimeridian
	}

	var orgs []model.Organization

	err := s.tx.WithReadTx(ctx, func(stores store.Provider) error {
		filter, err := s.geoFilter(ctx, stores, filters)
		if err != nil {
			return err
		}
		orgs, err = stores.Organizations().ListInBBox(ctx, sw, ne, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	return orgs, nil
}

func (s *organizationService) ListByActivitySubtree(ctx context.Context, rootID int64) ([]model.Organization, error) {
	var orgs []model.Organization

	err := s.tx.WithReadTx(ctx, func(stores store.Provider) error {
		closure, err := collectActivitySubtree(ctx, stores.Activities(), rootID)
		if err != nil {
			return err
		}
		orgs, err = stores.Organizations().List(ctx, store.OrganizationFilter{
			ActivityIDs: closure,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return orgs, nil
}

func (s *organizationService) geoFilter(ctx context.Context, stores store.Provider, filters GeoFilters) (store.OrganizationFilter, error) {
	filter := store.OrganizationFilter{
		BuildingID: filters.BuildingID,
		Page:       normalizePage(filters.Offset, filters.Limit),
	}

	if filters.ActivityRootID != nil {
		closure, err := collectActivitySubtree(ctx, stores.Activities(), *filters.ActivityRootID)
		if err != nil {
			return store.OrganizationFilter{}, err
		}
		filter.ActivityIDs = closure
	}

	return filter, nil
}

// collectActivitySubtree expands the root activity into the set of activity
// IDs reachable through parent->child links, root included. The traversal is
// an iterative breadth-first walk bounded by the documented maximum tree
// depth, with a visited set so an accidental cycle in the stored data cannot
// loop it.
func collectActivitySubtree(ctx context.Context, activities store.ActivityStore, rootID int64) ([]int64, error) {
	if _, err := activities.GetByID(ctx, rootID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("resolving activity root: %w", err)
	}

	closure := []int64{rootID}
	visited := map[int64]struct{}{rootID: {}}
	frontier := []int64{rootID}

	for level := 1; level < model.MaxActivityDepth && len(frontier) > 0; level++ {
		children, err := activities.ListChildren(ctx, frontier)
		if err != nil {
			return nil, fmt.Errorf("expanding activity subtree: %w", err)
		}

		next := make([]int64, 0, len(children))
		for _, child := range children {
			if _, seen := visited[child.ID]; seen {
				continue
			}
			visited[child.ID] = struct{}{}
			closure = append(closure, child.ID)
			next = append(next, child.ID)
		}
		frontier = next
	}

	return closure, nil
}

func normalizePage(offset, limit int32) store.Page {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return store.Page{Offset: offset, Limit: limit}
}
