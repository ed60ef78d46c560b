package model

import "time"

// MaxActivityDepth bounds the activity taxonomy. Roots sit at depth 1, so the
// tree holds at most three levels.
const MaxActivityDepth = 3

type Activity struct {
	CreatedAt time.Time
	Name      string
	ParentID  *int64
	ID        int64
	Depth     int32
}
