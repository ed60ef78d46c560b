package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"orgatlas.app/api-server/internal/http/handler"
	"orgatlas.app/api-server/internal/http/router"
	"orgatlas.app/api-server/internal/model"
	"orgatlas.app/api-server/internal/service"
)

type mockOrganizationService struct {
	listFn                  func(ctx context.Context, filters service.ListFilters) ([]model.Organization, error)
	getFn                   func(ctx context.Context, id int64) (*model.Organization, error)
	listInRadiusFn          func(ctx context.Context, center model.GeoPoint, radiusMeters float64, filters service.GeoFilters) ([]model.Organization, error)
	listInBBoxFn            func(ctx context.Context, sw, ne model.GeoPoint, filters service.GeoFilters) ([]model.Organization, error)
	listByActivitySubtreeFn func(ctx context.Context, rootID int64) ([]model.Organization, error)
}

func (m *mockOrganizationService) List(ctx context.Context, filters service.ListFilters) ([]model.Organization, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filters)
	}
	return nil, nil
}

func (m *mockOrganizationService) Get(ctx context.Context, id int64) (*model.Organization, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, service.ErrOrganizationNotFound
}

func (m *mockOrganizationService) ListInRadius(ctx context.Context, center model.GeoPoint, radiusMeters float64, filters service.GeoFilters) ([]model.Organization, error) {
	if m.listInRadiusFn != nil {
		return m.listInRadiusFn(ctx, center, radiusMeters, filters)
	}
	return nil, nil
}

func (m *mockOrganizationService) ListInBBox(ctx context.Context, sw, ne model.GeoPoint, filters service.GeoFilters) ([]model.Organization, error) {
	if m.listInBBoxFn != nil {
		return m.listInBBoxFn(ctx, sw, ne, filters)
	}
	return nil, nil
}

func (m *mockOrganizationService) ListByActivitySubtree(ctx context.Context, rootID int64) ([]model.Organization, error) {
	if m.listByActivitySubtreeFn != nil {
		return m.listByActivitySubtreeFn(ctx, rootID)
	}
	return nil, nil
}

func sampleOrganization() model.Organization {
	return model.Organization{
		ID:         101,
		Name:       "Hearthside Bakery LLC",
		BuildingID: 55,
		Phones:     []string{"+12175550134"},
		Activities: []model.ActivityRef{{ID: 7, Name: "Food"}},
		Building: model.Building{
			ID:      55,
			Address: "Business Center \"Main St\", 12 Oak Ave, Springfield",
			Location: model.GeoPoint{
				Latitude:  39.7817,
				Longitude: -89.6501,
			},
		},
	}
}

var _ = Describe("OrganizationHandler", func() {
	var (
		svc    *mockOrganizationService
		engine *gin.Engine
	)

	BeforeEach(func() {
		svc = &mockOrganizationService{}
		engine = gin.New()
		router.OrganizationRouter(engine.Group("/organizations"), handler.NewOrganizationHandler(svc))
	})

	do := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, target, nil)
		engine.ServeHTTP(rec, req)
		return rec
	}

	Describe("GET /organizations", func() {
		It("returns the organizations as JSON with string IDs", func() {
			svc.listFn = func(_ context.Context, _ service.ListFilters) ([]model.Organization, error) {
				return []model.Organization{sampleOrganization()}, nil
			}

			rec := do("/organizations")

			Expect(rec.Code).To(Equal(http.StatusOK))

			var body []map[string]any
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body).To(HaveLen(1))
			Expect(body[0]["id"]).To(Equal("101"))
			Expect(body[0]["name"]).To(Equal("Hearthside Bakery LLC"))

			building, ok := body[0]["building"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(building["id"]).To(Equal("55"))
			Expect(building["latitude"]).To(BeNumerically("~", 39.7817, 1e-9))
		})

		It("forwards the filters", func() {
			var captured service.ListFilters
			svc.listFn = func(_ context.Context, filters service.ListFilters) ([]model.Organization, error) {
				captured = filters
				return nil, nil
			}

			rec := do("/organizations?building_id=5&name=bakery&offset=10&limit=20")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(*captured.BuildingID).To(Equal(int64(5)))
			Expect(*captured.Name).To(Equal("bakery"))
			Expect(captured.Offset).To(Equal(int32(10)))
			Expect(captured.Limit).To(Equal(int32(20)))
		})

		It("rejects a limit above the maximum", func() {
			rec := do("/organizations?limit=100")

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("renders an empty list as []", func() {
			svc.listFn = func(_ context.Context, _ service.ListFilters) ([]model.Organization, error) {
				return []model.Organization{}, nil
			}

			rec := do("/organizations")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON("[]"))
		})
	})

	Describe("GET /organizations/:id", func() {
		It("returns the organization", func() {
			svc.getFn = func(_ context.Context, id int64) (*model.Organization, error) {
				Expect(id).To(Equal(int64(101)))
				org := sampleOrganization()
				return &org, nil
			}

			rec := do("/organizations/101")

			Expect(rec.Code).To(Equal(http.StatusOK))

			var body map[string]any
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["id"]).To(Equal("101"))
		})

		It("returns 404 for a missing organization", func() {
			rec := do("/organizations/999")

			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(rec.Body.String()).To(MatchJSON(`{"error":"organization not found"}`))
		})

		It("returns 400 for a non-numeric ID", func() {
			rec := do("/organizations/not-a-number")

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /organizations/in_radius", func() {
		It("passes the center and radius to the service", func() {
			var capturedCenter model.GeoPoint
			var capturedRadius float64
			svc.listInRadiusFn = func(_ context.Context, center model.GeoPoint, radiusMeters float64, _ service.GeoFilters) ([]model.Organization, error) {
				capturedCenter = center
				capturedRadius = radiusMeters
				return nil, nil
			}

			rec := do("/organizations/in_radius?latitude=39.78&longitude=-89.65&radius=1500")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(capturedCenter.Latitude).To(BeNumerically("~", 39.78, 1e-9))
			Expect(capturedCenter.Longitude).To(BeNumerically("~", -89.65, 1e-9))
			Expect(capturedRadius).To(Equal(1500.0))
		})

		It("accepts a center on the equator and prime meridian", func() {
			var calls int
			svc.listInRadiusFn = func(_ context.Context, center model.GeoPoint, _ float64, _ service.GeoFilters) ([]model.Organization, error) {
				calls++
				Expect(center).To(Equal(model.GeoPoint{}))
				return nil, nil
			}

			rec := do("/organizations/in_radius?latitude=0&longitude=0&radius=100")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(calls).To(Equal(1))
		})

		It("rejects a request without a radius", func() {
			rec := do("/organizations/in_radius?latitude=39.78&longitude=-89.65")

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("maps coordinate validation failures to 400", func() {
			svc.listInRadiusFn = func(_ context.Context, _ model.GeoPoint, _ float64, _ service.GeoFilters) ([]model.Organization, error) {
				return nil, service.ErrInvalidCoordinates
			}

			rec := do("/organizations/in_radius?latitude=91&longitude=0&radius=100")

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(MatchJSON(`{"error":"coordinates out of range"}`))
		})
	})

	Describe("GET /organizations/in_bbox", func() {
		It("passes both corners to the service", func() {
			var capturedSW, capturedNE model.GeoPoint
			svc.listInBBoxFn = func(_ context.Context, sw, ne model.GeoPoint, _ service.GeoFilters) ([]model.Organization, error) {
				capturedSW, capturedNE = sw, ne
				return nil, nil
			}

			rec := do("/organizations/in_bbox?sw_lat=39.7&sw_lon=-89.7&ne_lat=39.8&ne_lon=-89.6")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(capturedSW.Latitude).To(BeNumerically("~", 39.7, 1e-9))
			Expect(capturedNE.Longitude).To(BeNumerically("~", -89.6, 1e-9))
		})

		It("rejects a request missing a corner", func() {
			rec := do("/organizations/in_bbox?sw_lat=39.7&sw_lon=-89.7&ne_lat=39.8")

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("maps an inverted box to 400", func() {
			svc.listInBBoxFn = func(_ context.Context, _, _ model.GeoPoint, _ service.GeoFilters) ([]model.Organization, error) {
				return nil, service.ErrInvertedBoundingBox
			}

			rec := do("/organizations/in_bbox?sw_lat=50&sw_lon=10&ne_lat=40&ne_lon=20")

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /organizations/search_by_activity/:activity_root_id", func() {
		It("expands through the service", func() {
			svc.listByActivitySubtreeFn = func(_ context.Context, rootID int64) ([]model.Organization, error) {
				Expect(rootID).To(Equal(int64(7)))
				return []model.Organization{sampleOrganization()}, nil
			}

			rec := do("/organizations/search_by_activity/7")

			Expect(rec.Code).To(Equal(http.StatusOK))

			var body []map[string]any
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body).To(HaveLen(1))
		})

		It("returns 404 for an unknown activity", func() {
			svc.listByActivitySubtreeFn = func(_ context.Context, _ int64) ([]model.Organization, error) {
				return nil, service.ErrActivityNotFound
			}

			rec := do("/organizations/search_by_activity/999")

			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("returns 400 for a non-numeric root", func() {
			rec := do("/organizations/search_by_activity/food")

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	It("hides unexpected errors behind a 500", func() {
		svc.listFn = func(_ context.Context, _ service.ListFilters) ([]model.Organization, error) {
			return nil, errors.New("pool exhausted")
		}

		rec := do("/organizations")

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).To(MatchJSON(`{"error":"internal server error"}`))
	})
})
