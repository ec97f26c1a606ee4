package plan

import (
	"testing"
	"time"

	"github.com/stadam23/orejita-planner/internal/catalog"
	"github.com/stadam23/orejita-planner/internal/config"
	"github.com/stadam23/orejita-planner/internal/logistics"
	"github.com/stadam23/orejita-planner/internal/market"
	"github.com/stadam23/orejita-planner/internal/model"
	"github.com/stadam23/orejita-planner/internal/planerr"
	"github.com/stadam23/orejita-planner/internal/snapshot"
)

func newTestLocation(id model.LocationId) *Location {
	return &Location{
		ID:           id,
		Name:         "loc",
		assets:       make(map[model.Item]int64),
		consumed:     make(map[model.Item]int64),
		AssetsTarget: make(map[model.Item]int64),
	}
}

func TestLocation_Available_CombinesAllTerms(t *testing.T) {
	tritanium := model.NewItem(34)
	loc := newTestLocation(1)
	loc.assets[tritanium] = 100

	loc.Market = market.NewLocationMarketOrders(map[model.TypeId]*market.TypeMarketOrders{
		34: market.NewTypeMarketOrders([]market.OrderLevel{{Price: 5, Volume: 1000}}, 1000),
	})
	loc.Market.For(34).Reserve(false, 0, 40)

	inPipe, err := logistics.NewPipe(1, []*logistics.Route{{ID: 1, Src: 2, Dst: 1}})
	if err != nil {
		t.Fatal(err)
	}
	inPipe.Deliver(tritanium, 30)
	loc.PipesIn = append(loc.PipesIn, inPipe)

	outPipe, err := logistics.NewPipe(2, []*logistics.Route{{ID: 2, Src: 1, Dst: 3}})
	if err != nil {
		t.Fatal(err)
	}
	outPipe.Deliver(tritanium, 10)
	loc.PipesOut = append(loc.PipesOut, outPipe)

	producing := &ProductionLine{
		Product:   tritanium,
		Projected: catalog.ProjectedLine{Portion: 5},
		builds:    3,
	}
	loc.Lines = append(loc.Lines, producing)

	loc.consume(tritanium, 7)

	// 100 + 40 + 30 - 10 + (5*3) - 7 = 168
	if got := loc.Available(tritanium); got != 168 {
		t.Fatalf("Available() = %d, want 168", got)
	}
}

func TestProductionLine_MaxSlots_SumsSubLinesRecursively(t *testing.T) {
	leaf := &ProductionLine{Kind: model.Invention}
	mid := &ProductionLine{
		Kind:                     model.Reaction,
		ImportSrcProductionLines: map[model.TypeId]*ProductionLine{1: leaf},
	}
	top := &ProductionLine{
		Kind:                     model.Manufacturing,
		ImportSrcProductionLines: map[model.TypeId]*ProductionLine{2: mid},
	}

	got := top.MaxSlots()
	want := map[model.SlotKind]int64{
		model.SlotManufacturing: 1,
		model.SlotReaction:      1,
		model.SlotScience:       1,
	}
	for kind, n := range want {
		if got[kind] != n {
			t.Fatalf("MaxSlots()[%v] = %d, want %d (full: %v)", kind, got[kind], n, got)
		}
	}
}

func TestProductionLine_InstallationCostFor_ScalesByPortion(t *testing.T) {
	line := &ProductionLine{
		InstallationCost: 100,
		Projected:        catalog.ProjectedLine{Portion: 10},
	}
	if got := line.InstallationCostFor(5); got != 50 {
		t.Fatalf("InstallationCostFor(5) = %v, want 50", got)
	}
	zero := &ProductionLine{InstallationCost: 100, Projected: catalog.ProjectedLine{Portion: 0}}
	if got := zero.InstallationCostFor(5); got != 0 {
		t.Fatalf("InstallationCostFor with zero portion = %v, want 0", got)
	}
}

func TestComputeAssetsTargets_SubLineBuffersAlongWholeExportPipe(t *testing.T) {
	mid := newTestLocation(1)
	dst := newTestLocation(2)

	material := model.NewItem(100)
	product := model.NewItem(200)

	pipe, err := logistics.NewPipe(1, []*logistics.Route{{ID: 1, Src: 1, Dst: 2}})
	if err != nil {
		t.Fatal(err)
	}

	sub := &ProductionLine{
		ID:         1,
		Location:   mid,
		ExportKind: model.Intermediate,
		ExportPipe: pipe,
		Product:    material,
		Parallel:   1,
		Projected:  catalog.ProjectedLine{Portion: 1},
	}
	top := &ProductionLine{
		ID:         2,
		Location:   dst,
		ExportKind: model.Product,
		ExportPipe: pipe,
		Product:    product,
		Parallel:   2,
		Projected: catalog.ProjectedLine{
			Portion:  4,
			Minerals: []catalog.Mineral{{Item: material, Quantity: 3}},
		},
		ImportSrcProductionLines: map[model.TypeId]*ProductionLine{material.TypeID: sub},
	}

	g := &Graph{
		Locations: map[model.LocationId]*Location{1: mid, 2: dst},
		Lines:     map[model.LineId]*ProductionLine{1: sub, 2: top},
		LineOrder: []model.LineId{1, 2},
	}

	computeAssetsTargets(g)

	// sub-line material buffered at every location on its own export pipe.
	if mid.AssetsTarget[material] != 6 {
		t.Fatalf("mid.AssetsTarget[material] = %d, want 6", mid.AssetsTarget[material])
	}
	if dst.AssetsTarget[material] != 6 {
		t.Fatalf("dst.AssetsTarget[material] = %d, want 6", dst.AssetsTarget[material])
	}
	// product buffered at every location along its own export pipe.
	if mid.AssetsTarget[product] != 8 {
		t.Fatalf("mid.AssetsTarget[product] = %d, want 8", mid.AssetsTarget[product])
	}
	if dst.AssetsTarget[product] != 8 {
		t.Fatalf("dst.AssetsTarget[product] = %d, want 8", dst.AssetsTarget[product])
	}
}

func TestSortLineIDs(t *testing.T) {
	ids := []model.LineId{5, 1, 3, 2, 4}
	sortLineIDs(ids)
	want := []model.LineId{1, 2, 3, 4, 5}
	for i, id := range ids {
		if id != want[i] {
			t.Fatalf("sortLineIDs() = %v, want %v", ids, want)
		}
	}
}

func TestCheckAcyclic_DetectsCycle(t *testing.T) {
	a := &ProductionLine{ID: 1}
	b := &ProductionLine{ID: 2}
	a.ImportSrcProductionLines = map[model.TypeId]*ProductionLine{1: b}
	b.ImportSrcProductionLines = map[model.TypeId]*ProductionLine{2: a}

	g := &Graph{Lines: map[model.LineId]*ProductionLine{1: a, 2: b}}
	if err := checkAcyclic(g); err == nil {
		t.Fatal("expected cycle to be detected")
	}
}

// buildLineInventionFixture wires the minimal graph/row/config inputs
// buildLine needs for an Invention line with a configured decryptor: a
// base (undecrypted) invention outcome of 1 run, -2% ME, +4% TE.
func buildLineInventionFixture(t *testing.T, decryptorID model.TypeId, configuredRuns int16, configuredME, configuredTE int8) (*Graph, *Location, config.ProductionLineConfig, catalog.Row, []catalog.DecryptorEntry) {
	t.Helper()
	const blueprintID model.TypeId = 100

	loc := newTestLocation(1)
	pipe, err := logistics.NewPipe(1, []*logistics.Route{{ID: 1, Src: 1, Dst: 1}})
	if err != nil {
		t.Fatal(err)
	}
	loc.PipesIn = append(loc.PipesIn, pipe)
	loc.PipesOut = append(loc.PipesOut, pipe)

	db := newFakeDB()
	g := newTestGraph(db)
	g.Pipes[1] = pipe
	g.Locations[1] = loc

	plc := config.ProductionLineConfig{
		ID:                     1,
		Blueprint:              config.ItemConfig{TypeID: blueprintID, Runs: configuredRuns, ME: configuredME, TE: configuredTE},
		Product:                500,
		Kind:                   "Invention",
		ExportKind:             "Intermediate",
		ExportPipeID:           1,
		ImportSrcMarketPipeIDs: []model.PipeId{1},
		Decryptor:              &decryptorID,
		Parallel:               1,
	}
	row := catalog.Row{
		BasePortion:     1,
		BaseProbability: 1.0,
		BaseDuration:    3_600_000_000_000, // 1h
		SystemSecurity:  0.5,
		BaseProduct:     model.NewBlueprint(blueprintID, 1, -2, 4),
	}
	decryptors := []catalog.DecryptorEntry{
		{TypeID: 34203, RunsModifier: 9, MEModifier: -2, TEModifier: 2, ProbabilityMultiplier: 0.6},
	}
	return g, loc, plc, row, decryptors
}

func TestBuildLine_DecryptorMatchingBaseDelta_Builds(t *testing.T) {
	// base(1,-2,4) + delta(9,-2,2) = (10,-4,6): matches the configured outcome.
	g, loc, plc, row, decryptors := buildLineInventionFixture(t, 34203, 10, -4, 6)

	line, err := buildLine(g, loc, config.TaxConfig{}, catalog.Structure{}, plc, row, decryptors, 24*time.Hour, time.Hour, &snapshot.Snapshot{})
	if err != nil {
		t.Fatalf("buildLine: %v", err)
	}
	if line.Decryptor == nil || *line.Decryptor != 34203 {
		t.Fatalf("line.Decryptor = %v, want 34203", line.Decryptor)
	}
}

func TestBuildLine_DecryptorNotMatchingConfiguredProduct_RejectsConfigInvalid(t *testing.T) {
	// configured (99,-4,6) doesn't match base(1,-2,4) + delta(9,-2,2) = (10,-4,6).
	g, loc, plc, row, decryptors := buildLineInventionFixture(t, 34203, 99, -4, 6)

	_, err := buildLine(g, loc, config.TaxConfig{}, catalog.Structure{}, plc, row, decryptors, 24*time.Hour, time.Hour, &snapshot.Snapshot{})
	if err == nil {
		t.Fatal("expected ConfigInvalid for a decryptor whose delta doesn't match the configured product")
	}
	perr, ok := err.(*planerr.Error)
	if !ok || perr.Kind != planerr.ConfigInvalid {
		t.Fatalf("err = %v, want *planerr.Error{Kind: ConfigInvalid}", err)
	}
}

func TestCheckMaterialSources_RejectsUnsourcedMaterial(t *testing.T) {
	material := model.NewItem(999)
	line := &ProductionLine{
		ID:                       1,
		Projected:                catalog.ProjectedLine{Minerals: []catalog.Mineral{{Item: material, Quantity: 1}}},
		ImportSrcProductionLines: map[model.TypeId]*ProductionLine{},
	}
	g := &Graph{Lines: map[model.LineId]*ProductionLine{1: line}}
	if err := checkMaterialSources(g); err == nil {
		t.Fatal("expected error for material with no sub-line and no market pipes")
	}
}
