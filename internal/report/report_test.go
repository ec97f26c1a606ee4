package report

import (
	"context"
	"testing"

	"github.com/stadam23/orejita-planner/internal/catalog"
	"github.com/stadam23/orejita-planner/internal/config"
	"github.com/stadam23/orejita-planner/internal/model"
	"github.com/stadam23/orejita-planner/internal/plan"
	"github.com/stadam23/orejita-planner/internal/snapshot"
)

// fakeDB is a minimal catalog.DB stand-in: Get is never called (the test
// wires rows directly, bypassing plan.FetchCatalogRows), only Volume and
// Name matter once the graph is built.
type fakeDB struct {
	names map[model.TypeId]string
}

func (f *fakeDB) Get(ctx context.Context, product model.TypeId, blueprint model.Item, kind model.JobKind, systemID model.SystemId, include catalog.Include) (catalog.Row, error) {
	return catalog.Row{}, nil
}

func (f *fakeDB) Decryptors(ctx context.Context) ([]catalog.DecryptorEntry, error) { return nil, nil }

func (f *fakeDB) Volume(ctx context.Context, typeID model.TypeId) (float64, bool, error) {
	return 0, false, nil
}

func (f *fakeDB) Name(ctx context.Context, item model.Item) (string, error) {
	return f.names[item.TypeID], nil
}

const (
	locID       model.LocationId = 1
	systemID    model.SystemId   = 1
	lineID      model.LineId     = 1
	routeID     model.RouteId    = 1
	pipeID      model.PipeId     = 1
	materialTID model.TypeId     = 34
	productTID  model.TypeId     = 999
	blueprintID model.TypeId     = 100
)

func buildTestGraph(t *testing.T) *plan.Graph {
	t.Helper()

	cfg := &config.Config{
		Locations: []config.LocationConfig{{
			ID:       locID,
			Name:     "Jita IV - Moon 4",
			SystemID: systemID,
			Production: &config.ProductionConfig{
				ProductionLines: []config.ProductionLineConfig{{
					ID:                     lineID,
					Blueprint:              config.ItemConfig{TypeID: blueprintID, Runs: model.RunsBPO},
					Product:                productTID,
					Kind:                   "Manufacturing",
					ExportKind:             "Product",
					ExportPipeID:           pipeID,
					ImportSrcMarketPipeIDs: []model.PipeId{pipeID},
					Parallel:               1,
				}},
			},
			Market: &config.MarketConfig{SalesTax: 0, BrokersFee: 0},
		}},
		Routes: config.RoutesConfig{
			locID: {locID: config.RouteConfig{ID: routeID, ServiceName: "local"}},
		},
		Pipes:     map[model.PipeId][]model.RouteId{pipeID: {routeID}},
		Skills:    map[model.TypeId]int8{},
		Slots:     config.SlotsConfig{Manufacturing: 10, Reaction: 10, Science: 10},
		MaxTime:   "24h",
		DailyFlexTime: "1h",
	}

	snap := &snapshot.Snapshot{
		AdjustedPrices: map[model.TypeId]float64{},
		CostIndices:    map[model.SystemId]snapshot.CostIndexSet{systemID: {Manufacturing: 0.02}},
		MarketOrders: map[model.LocationId]map[model.TypeId]snapshot.OrderBook{
			locID: {
				materialTID: {Orders: []snapshot.OrderLevel{{Price: 2, Volume: 10000}}, Total: 10000},
				productTID:  {Orders: []snapshot.OrderLevel{{Price: 50, Volume: 10000}}, Total: 10000},
			},
		},
		Assets: map[model.LocationId]map[model.Item]int64{},
	}

	row := catalog.Row{
		BasePortion:     5,
		BaseProbability: 1.0,
		// A run longer than half the horizon collapses the schedule to a
		// single one-run sequence (catalog.Project's short-horizon branch),
		// keeping the material bill a flat, easy-to-check total.
		BaseDuration:   86_400_000_000_000, // 24h, in time.Duration nanoseconds
		Minerals:       []catalog.Mineral{{Item: model.NewItem(materialTID), Quantity: 10}},
		SystemSecurity: 0.9,
	}

	db := &fakeDB{names: map[model.TypeId]string{
		materialTID: "Tritanium",
		productTID:  "Widget",
		blueprintID: "Widget Blueprint",
	}}

	g, err := plan.NewGraph(cfg, snap, db, map[model.LineId]catalog.Row{lineID: row}, nil)
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}
	return g
}

func TestGenerate_ProducesPurchasesBuildsAndMissingAssets(t *testing.T) {
	g := buildTestGraph(t)
	plan.Run(g)

	if g.Lines[lineID].NumBuilds() == 0 {
		t.Fatal("expected scheduler to commit at least one build in this profitable scenario")
	}

	out, err := Generate(context.Background(), g)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(out.Locations) != 1 {
		t.Fatalf("len(Locations) = %d, want 1", len(out.Locations))
	}

	loc := out.Locations[0]
	if loc.Name != "Jita IV - Moon 4" {
		t.Fatalf("loc.Name = %q", loc.Name)
	}
	if len(loc.Purchases) == 0 {
		t.Fatal("expected at least one purchase of the material bought off the market")
	}
	foundMaterial := false
	for _, p := range loc.Purchases {
		if p.TypeID == materialTID {
			foundMaterial = true
			if p.Item != "Tritanium" {
				t.Fatalf("purchase item name = %q, want Tritanium", p.Item)
			}
			if p.Quantity <= 0 {
				t.Fatalf("purchase quantity = %d, want > 0", p.Quantity)
			}
		}
	}
	if !foundMaterial {
		t.Fatal("expected a purchase entry for the material")
	}

	if len(loc.Builds) != 1 {
		t.Fatalf("len(Builds) = %d, want 1", len(loc.Builds))
	}
	if loc.Builds[0].Product != "Widget" {
		t.Fatalf("build product = %q, want Widget", loc.Builds[0].Product)
	}
	if loc.Builds[0].BuildsCount == 0 {
		t.Fatal("expected BuildsCount > 0")
	}

	if out.SnapshotID == "" {
		t.Fatal("expected a non-empty snapshot id")
	}
}

func TestGenerate_NoBuildableLines_EmptyLocation(t *testing.T) {
	cfg := &config.Config{
		Locations: []config.LocationConfig{{ID: locID, Name: "Empty Outpost", SystemID: systemID}},
		Skills:    map[model.TypeId]int8{},
		Slots:     config.SlotsConfig{},
		MaxTime:   "24h",
		DailyFlexTime: "1h",
	}
	snap := &snapshot.Snapshot{
		AdjustedPrices: map[model.TypeId]float64{},
		CostIndices:    map[model.SystemId]snapshot.CostIndexSet{},
		MarketOrders:   map[model.LocationId]map[model.TypeId]snapshot.OrderBook{},
		Assets:         map[model.LocationId]map[model.Item]int64{},
	}
	db := &fakeDB{names: map[model.TypeId]string{}}

	g, err := plan.NewGraph(cfg, snap, db, map[model.LineId]catalog.Row{}, nil)
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}
	plan.Run(g)

	out, err := Generate(context.Background(), g)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(out.Locations) != 1 {
		t.Fatalf("len(Locations) = %d, want 1", len(out.Locations))
	}
	loc := out.Locations[0]
	if len(loc.Purchases) != 0 || len(loc.Builds) != 0 || len(loc.DeliveriesByDestination) != 0 {
		t.Fatalf("expected an empty location report, got %+v", loc)
	}
	if out.GrandTotalCost != 0 {
		t.Fatalf("GrandTotalCost = %v, want 0", out.GrandTotalCost)
	}
}
