package model

import "time"

// Organization is a directory entry housed in exactly one building and
// associated with zero or more activities.
type Organization struct {
	CreatedAt  time.Time
	Name       string
	Phones     []string
	Activities []ActivityRef
	Building   Building
	ID         int64
	BuildingID int64
}

// ActivityRef is the slim activity view embedded in organization records.
type ActivityRef struct {
	Name string
	ID   int64
}
