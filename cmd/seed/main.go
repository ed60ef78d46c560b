// Seed populates the database with sample directory data: a three-level
// activity taxonomy and buildings with organizations spread around a few
// city centers. It is the only write path in the system.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"orgatlas.app/api-server/common/id"
	"orgatlas.app/api-server/core/config"
	"orgatlas.app/api-server/core/db"
	"orgatlas.app/api-server/internal/model"
	"orgatlas.app/api-server/internal/store"
)

type city struct {
	name        string
	phonePrefix string
	streets     []string
	lat         float64
	lon         float64
}

var cities = []city{
	{name: "Springfield", phonePrefix: "+1217", lat: 39.7817, lon: -89.6501, streets: []string{"Main St", "Oak Ave", "Washington St", "Lincoln Blvd"}},
	{name: "Riverton", phonePrefix: "+1307", lat: 43.0249, lon: -108.3801, streets: []string{"River Rd", "Cedar St", "Federal Blvd", "Park Ave"}},
	{name: "Lakewood", phonePrefix: "+1303", lat: 39.7047, lon: -105.0814, streets: []string{"Union Blvd", "Alameda Ave", "Wadsworth Blvd", "Garrison St"}},
	{name: "Fairview", phonePrefix: "+1615", lat: 35.9820, lon: -87.1214, streets: []string{"Fairview Blvd", "Crow Cut Rd", "Bowie Lake Rd", "Hill Rd"}},
}

var buildingTypes = []string{"Business Center", "Shopping Mall", "Office Tower", "Trade Complex", "Plaza"}

var companyNames = []string{
	"Northwind Trading", "Cascade Consulting", "Bluepeak Logistics", "Ironwood Legal",
	"Summit Dental", "Lakeside Grocery", "Redstone Auto", "Brightline Media",
	"Hearthside Bakery", "Pinebrook Finance", "Clearwater Clinic", "Stonegate Security",
}

type activitySpec struct {
	name     string
	children []activitySpec
}

var activityTree = []activitySpec{
	{name: "Food", children: []activitySpec{
		{name: "Meat Products", children: []activitySpec{{name: "Beef"}, {name: "Poultry"}}},
		{name: "Dairy Products", children: []activitySpec{{name: "Milk"}, {name: "Cheese"}}},
	}},
	{name: "Automotive", children: []activitySpec{
		{name: "Trucks", children: []activitySpec{{name: "Spare Parts"}, {name: "Maintenance"}}},
		{name: "Passenger Cars"},
	}},
	{name: "Services", children: []activitySpec{
		{name: "Legal"},
		{name: "Financial", children: []activitySpec{{name: "Accounting"}, {name: "Insurance"}}},
		{name: "Healthcare"},
	}},
}

func main() {
	buildingsPerCity := flag.Int("buildings", 5, "buildings to create per city")
	clear := flag.Bool("clear", false, "truncate all tables before seeding")
	randSeed := flag.Int64("seed", 1, "random source seed for reproducible data")
	flag.Parse()

	if err := run(*buildingsPerCity, *clear, *randSeed); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(buildingsPerCity int, clear bool, randSeed int64) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if err := db.Migrate(ctx, cfg.Database.URL); err != nil {
		return err
	}

	pool, err := db.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if clear {
		_, err := pool.Exec(ctx,
			"TRUNCATE organization_activities, organization_phones, organizations, activities, buildings")
		if err != nil {
			return fmt.Errorf("clearing tables: %w", err)
		}
		slog.Info("tables cleared")
	}

	rng := rand.New(rand.NewSource(randSeed))
	runner := store.NewTxRunner(pool)

	return runner.WithWriteTx(ctx, func(stores store.Provider) error {
		activityIDs, err := seedActivities(ctx, stores)
		if err != nil {
			return err
		}
		slog.Info("activities created", "count", len(activityIDs))

		var orgCount int
		for _, c := range cities {
			for i := 0; i < buildingsPerCity; i++ {
				building := &model.Building{
					ID:      id.New(),
					Address: buildingAddress(rng, c),
					Location: model.GeoPoint{
						// Scatter within roughly +-5km of the city center.
						Latitude:  c.lat + rng.Float64()*0.1 - 0.05,
						Longitude: c.lon + rng.Float64()*0.1 - 0.05,
					},
				}
				if err := stores.Buildings().Create(ctx, building); err != nil {
					return err
				}

				for n := 1 + rng.Intn(3); n > 0; n-- {
					if err := seedOrganization(ctx, stores, rng, c, building, activityIDs); err != nil {
						return err
					}
					orgCount++
				}
			}
		}

		slog.Info("seed complete", "buildings", len(cities)*buildingsPerCity, "organizations", orgCount)
		return nil
	})
}

func seedActivities(ctx context.Context, stores store.Provider) ([]int64, error) {
	var ids []int64

	var create func(spec activitySpec, parentID *int64) error
	create = func(spec activitySpec, parentID *int64) error {
		activity := &model.Activity{
			ID:       id.New(),
			Name:     spec.name,
			ParentID: parentID,
		}
		if err := stores.Activities().Create(ctx, activity); err != nil {
			return fmt.Errorf("creating activity %q: %w", spec.name, err)
		}
		ids = append(ids, activity.ID)

		for _, child := range spec.children {
			if err := create(child, &activity.ID); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range activityTree {
		if err := create(root, nil); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func seedOrganization(ctx context.Context, stores store.Provider, rng *rand.Rand, c city, building *model.Building, activityIDs []int64) error {
	phones := make([]string, 1+rng.Intn(3))
	for i := range phones {
		phones[i] = fmt.Sprintf("%s%07d", c.phonePrefix, rng.Intn(10000000))
	}

	linked := make([]int64, 0, 3)
	seen := map[int64]struct{}{}
	for n := 1 + rng.Intn(3); n > 0; n-- {
		activityID := activityIDs[rng.Intn(len(activityIDs))]
		if _, ok := seen[activityID]; ok {
			continue
		}
		seen[activityID] = struct{}{}
		linked = append(linked, activityID)
	}

	org := &model.Organization{
		ID:         id.New(),
		Name:       fmt.Sprintf("%s LLC", companyNames[rng.Intn(len(companyNames))]),
		BuildingID: building.ID,
		Phones:     phones,
	}
	if err := stores.Organizations().Create(ctx, org, linked); err != nil {
		return fmt.Errorf("creating organization %q: %w", org.Name, err)
	}
	return nil
}

func buildingAddress(rng *rand.Rand, c city) string {
	return fmt.Sprintf("%s %q, %d %s, %s",
		buildingTypes[rng.Intn(len(buildingTypes))],
		c.streets[rng.Intn(len(c.streets))],
		1+rng.Intn(150),
		c.streets[rng.Intn(len(c.streets))],
		c.name,
	)
}
