package router

import (
	"github.com/gin-gonic/gin"

	"orgatlas.app/api-server/internal/http/handler"
)

func OrganizationRouter(rg *gin.RouterGroup, h *handler.OrganizationHandler) {
	rg.GET("", h.List)
	rg.GET("/in_radius", h.InRadius)
	rg.GET("/in_bbox", h.InBBox)
	rg.GET("/search_by_activity/:activity_root_id", h.SearchByActivity)
	rg.GET("/:id", h.GetByID)
}
