package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"orgatlas.app/api-server/internal/http/dto"
	"orgatlas.app/api-server/internal/model"
	"orgatlas.app/api-server/internal/service"
)

type OrganizationHandler struct {
	service service.OrganizationService
}

func NewOrganizationHandler(svc service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{service: svc}
}

func (h *OrganizationHandler) List(c *gin.Context) {
	var q dto.ListOrganizationsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	orgs, err := h.service.List(c.Request.Context(), service.ListFilters{
		BuildingID: q.BuildingID,
		Name:       q.Name,
		ActivityID: q.ActivityID,
		Offset:     q.Offset,
		Limit:      q.Limit,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationResponses(orgs))
}

func (h *OrganizationHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organization ID"})
		return
	}

	org, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationResponse(org))
}

func (h *OrganizationHandler) InRadius(c *gin.Context) {
	var q dto.RadiusQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	center := model.GeoPoint{Latitude: *q.Latitude, Longitude: *q.Longitude}
	orgs, err := h.service.ListInRadius(c.Request.Context(), center, *q.Radius, service.GeoFilters{
		BuildingID:     q.BuildingID,
		ActivityRootID: q.ActivityRootID,
		Offset:         q.Offset,
		Limit:          q.Limit,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationResponses(orgs))
}

func (h *OrganizationHandler) InBBox(c *gin.Context) {
	var q dto.BBoxQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	sw := model.GeoPoint{Latitude: *q.SwLat, Longitude: *q.SwLon}
	ne := model.GeoPoint{Latitude: *q.NeLat, Longitude: *q.NeLon}
	orgs, err := h.service.ListInBBox(c.Request.Context(), sw, ne, service.GeoFilters{
		BuildingID:     q.BuildingID,
		ActivityRootID: q.ActivityRootID,
		Offset:         q.Offset,
		Limit:          q.Limit,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationResponses(orgs))
}

func (h *OrganizationHandler) SearchByActivity(c *gin.Context) {
	rootID, err := strconv.ParseInt(c.Param("activity_root_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity ID"})
		return
	}

	orgs, err := h.service.ListByActivitySubtree(c.Request.Context(), rootID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationResponses(orgs))
}

// respondServiceError maps service errors onto the HTTP error taxonomy:
// not-found and validation failures are client errors with a message,
// anything else is a 500 with details kept to the logs.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrganizationNotFound),
		errors.Is(err, service.ErrActivityNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCoordinates),
		errors.Is(err, service.ErrNegativeRadius),
		errors.Is(err, service.ErrInvertedBoundingBox),
		errors.Is(err, service.ErrBoundingBoxCrossesAntimeridian):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.ErrorContext(c.Request.Context(), "query failed",
			"error", err,
			"path", c.Request.URL.Path,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
