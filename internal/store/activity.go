package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"orgatlas.app/api-server/internal/model"
)

type activityStore struct {
	q querier
}

func newActivityStore(q querier) ActivityStore {
	return &activityStore{q: q}
}

func (s *activityStore) GetByID(ctx context.Context, id int64) (*model.Activity, error) {
	row := s.q.QueryRow(ctx,
		"SELECT id, name, parent_id, depth, created_at FROM activities WHERE id = $1",
		id,
	)

	var a model.Activity
	err := row.Scan(&a.ID, &a.Name, &a.ParentID, &a.Depth, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying activity: %w", err)
	}
	return &a, nil
}

func (s *activityStore) ListChildren(ctx context.Context, parentIDs []int64) ([]model.Activity, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}

	rows, err := s.q.Query(ctx,
		"SELECT id, name, parent_id, depth, created_at FROM activities WHERE parent_id = ANY($1) ORDER BY id",
		parentIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("querying child activities: %w", err)
	}
	defer rows.Close()

	var children []model.Activity
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.Name, &a.ParentID, &a.Depth, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning child activity: %w", err)
		}
		children = append(children, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading child activities: %w", err)
	}
	return children, nil
}

// Create inserts an activity, deriving its depth from the parent. Insertions
// below MaxActivityDepth are rejected, which keeps the taxonomy bounded.
func (s *activityStore) Create(ctx context.Context, activity *model.Activity) error {
	activity.Depth = 1
	if activity.ParentID != nil {
		parent, err := s.GetByID(ctx, *activity.ParentID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("parent activity %d: %w", *activity.ParentID, ErrNotFound)
			}
			return err
		}
		if parent.Depth >= model.MaxActivityDepth {
			return ErrMaxDepthExceeded
		}
		activity.Depth = parent.Depth + 1
	}

	_, err := s.q.Exec(ctx,
		"INSERT INTO activities (id, name, parent_id, depth) VALUES ($1, $2, $3, $4)",
		activity.ID, activity.Name, activity.ParentID, activity.Depth,
	)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}
