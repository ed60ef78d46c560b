package store

import (
	"context"
	"errors"

	"orgatlas.app/api-server/internal/model"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrMaxDepthExceeded is returned when inserting an activity below the
	// deepest allowed level of the taxonomy.
	ErrMaxDepthExceeded = errors.New("maximum activity depth exceeded")
)

// Page bounds a list query. Limit must be positive; callers normalize it
// before reaching the store.
type Page struct {
	Offset int32
	Limit  int32
}

// OrganizationFilter is the set of optional predicates AND-ed into a single
// WHERE clause. A nil/empty field contributes no predicate.
type OrganizationFilter struct {
	BuildingID  *int64
	Name        *string // case-insensitive substring match
	ActivityID  *int64  // direct association only
	ActivityIDs []int64 // association with any of the given activities
	Page        Page
}

type OrganizationStore interface {
	GetByID(ctx context.Context, id int64) (*model.Organization, error)
	List(ctx context.Context, filter OrganizationFilter) ([]model.Organization, error)
	ListInRadius(ctx context.Context, center model.GeoPoint, radiusMeters float64, filter OrganizationFilter) ([]model.Organization, error)
	ListInBBox(ctx context.Context, sw, ne model.GeoPoint, filter OrganizationFilter) ([]model.Organization, error)
	Create(ctx context.Context, org *model.Organization, activityIDs []int64) error
}

type BuildingStore interface {
	GetByID(ctx context.Context, id int64) (*model.Building, error)
	Create(ctx context.Context, building *model.Building) error
}

type ActivityStore interface {
	GetByID(ctx context.Context, id int64) (*model.Activity, error)
	ListChildren(ctx context.Context, parentIDs []int64) ([]model.Activity, error)
	Create(ctx context.Context, activity *model.Activity) error
}

// Provider hands out stores bound to one transaction scope.
type Provider interface {
	Organizations() OrganizationStore
	Buildings() BuildingStore
	Activities() ActivityStore
}

// TxRunner scopes a function to a single database transaction. The
// transaction is rolled back unless fn returns nil and the commit succeeds.
type TxRunner interface {
	WithReadTx(ctx context.Context, fn func(Provider) error) error
	WithWriteTx(ctx context.Context, fn func(Provider) error) error
}
