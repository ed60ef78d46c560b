package dto

import (
	"orgatlas.app/api-server/internal/model"
)

type ListOrganizationsQuery struct {
	BuildingID *int64  `form:"building_id"`
	Name       *string `form:"name"`
	ActivityID *int64  `form:"activity_id"`
	Offset     int32   `form:"offset" binding:"omitempty,gte=0"`
	Limit      int32   `form:"limit" binding:"omitempty,gte=1,lte=50"`
}

// RadiusQuery binds the radius search parameters. Required floats are
// pointers so zero values (equator, prime meridian, radius 0) survive the
// required check.
type RadiusQuery struct {
	Latitude       *float64 `form:"latitude" binding:"required"`
	Longitude      *float64 `form:"longitude" binding:"required"`
	Radius         *float64 `form:"radius" binding:"required"`
	BuildingID     *int64   `form:"building_id"`
	ActivityRootID *int64   `form:"activity_root_id"`
	Offset         int32    `form:"offset" binding:"omitempty,gte=0"`
	Limit          int32    `form:"limit" binding:"omitempty,gte=1,lte=50"`
}

type BBoxQuery struct {
	SwLat          *float64 `form:"sw_lat" binding:"required"`
	SwLon          *float64 `form:"sw_lon" binding:"required"`
	NeLat          *float64 `form:"ne_lat" binding:"required"`
	NeLon          *float64 `form:"ne_lon" binding:"required"`
	BuildingID     *int64   `form:"building_id"`
	ActivityRootID *int64   `form:"activity_root_id"`
	Offset         int32    `form:"offset" binding:"omitempty,gte=0"`
	Limit          int32    `form:"limit" binding:"omitempty,gte=1,lte=50"`
}

type BuildingResponse struct {
	Address   string  `json:"address"`
	ID        int64   `json:"id,string"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type ActivityResponse struct {
	Name string `json:"name"`
	ID   int64  `json:"id,string"`
}

type OrganizationResponse struct {
	Name       string             `json:"name"`
	Phones     []string           `json:"phones"`
	Activities []ActivityResponse `json:"activities"`
	Building   BuildingResponse   `json:"building"`
	ID         int64              `json:"id,string"`
}

func ToOrganizationResponse(org *model.Organization) *OrganizationResponse {
	activities := make([]ActivityResponse, len(org.Activities))
	for i, a := range org.Activities {
		activities[i] = ActivityResponse{ID: a.ID, Name: a.Name}
	}

	phones := org.Phones
	if phones == nil {
		phones = []string{}
	}

	return &OrganizationResponse{
		ID:     org.ID,
		Name:   org.Name,
		Phones: phones,
		Building: BuildingResponse{
			ID:        org.Building.ID,
			Address:   org.Building.Address,
			Latitude:  org.Building.Location.Latitude,
			Longitude: org.Building.Location.Longitude,
		},
		Activities: activities,
	}
}

func ToOrganizationResponses(orgs []model.Organization) []OrganizationResponse {
	result := make([]OrganizationResponse, len(orgs))
	for i := range orgs {
		result[i] = *ToOrganizationResponse(&orgs[i])
	}
	return result
}
