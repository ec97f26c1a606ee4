package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/stadam23/orejita-planner/internal/catalog"
	"github.com/stadam23/orejita-planner/internal/config"
	"github.com/stadam23/orejita-planner/internal/logistics"
	"github.com/stadam23/orejita-planner/internal/market"
	"github.com/stadam23/orejita-planner/internal/model"
	"github.com/stadam23/orejita-planner/internal/planerr"
	"github.com/stadam23/orejita-planner/internal/snapshot"
)

// Location is one facility: its optional production lines, optional market
// presence, on-hand assets, and logistics attachments. Grounded on
// original_source/src/runtime/location.rs's Location struct.
type Location struct {
	ID       model.LocationId
	Name     string
	SystemID model.SystemId

	Market     *market.LocationMarketOrders
	SalesTax   float64
	BrokersFee float64

	Lines []*ProductionLine

	PipesIn  []*logistics.Pipe
	PipesOut []*logistics.Pipe

	assets       map[model.Item]int64
	consumed     map[model.Item]int64
	AssetsTarget map[model.Item]int64
}

// AssetQuantity returns the raw on-hand quantity of item at this location,
// ignoring deliveries, production, and consumption — the report emitter's
// "current" figure.
func (l *Location) AssetQuantity(item model.Item) int64 { return l.assets[item] }

func (l *Location) consume(item model.Item, qty int64) { l.consumed[item] += qty }

// Available computes the net buildable/sellable quantity of item at this
// location per spec §4.4: on-hand assets, plus anything bought on this
// location's own market, plus net pipe deliveries, plus committed
// production of item by lines hosted here, minus what has already been
// consumed as a material by committed builds here.
func (l *Location) Available(item model.Item) int64 {
	total := l.assets[item]
	if l.Market != nil {
		if t := l.Market.For(item.TypeID); t != nil {
			total += t.Permanent()
		}
	}
	for _, p := range l.PipesIn {
		total += p.Delivered(item)
	}
	for _, p := range l.PipesOut {
		total -= p.Delivered(item)
	}
	for _, line := range l.Lines {
		if line.Product == item {
			total += line.Projected.Portion * line.builds
		}
	}
	total -= l.consumed[item]
	return total
}

// ProductionLine is one configured manufacturing/reaction/invention/copy job
// slot. Grounded on original_source/src/runtime/production_line.rs.
type ProductionLine struct {
	ID         model.LineId
	Location   *Location
	Blueprint  model.Item
	Product    model.Item
	Kind       model.JobKind
	ExportKind model.ExportKind
	Decryptor  *model.TypeId
	TaxRate    float64
	Parallel   int64

	ExportPipe            *logistics.Pipe
	ImportSrcMarketPipes  []*logistics.Pipe
	ImportSrcProductionLines map[model.TypeId]*ProductionLine

	Projected        catalog.ProjectedLine
	InstallationCost float64

	builds int64
}

// NumBuilds is the count of committed jobs for this line so far in the plan.
func (l *ProductionLine) NumBuilds() int64 { return l.builds }

// MaxSlots is this line's own slot usage plus the recursive sum of every
// sub-line it may need to build to supply one commit — a static upper bound
// used by the scheduler to pre-book capacity for intermediates (spec §4.7).
func (l *ProductionLine) MaxSlots() map[model.SlotKind]int64 {
	totals := map[model.SlotKind]int64{l.Kind.SlotKind(): 1}
	for _, sub := range l.ImportSrcProductionLines {
		for kind, n := range sub.MaxSlots() {
			totals[kind] += n
		}
	}
	return totals
}

// InstallationCostFor scales the line's full-horizon installation cost down
// to Q produced units (spec §4.6.4).
func (l *ProductionLine) InstallationCostFor(q float64) float64 {
	if l.Projected.Portion == 0 {
		return 0
	}
	return l.InstallationCost * q / float64(l.Projected.Portion)
}

// Graph is the fully constructed production graph: every location, pipe,
// and line, plus the shared slot pool and scheduling thresholds. Grounded on
// original_source/src/runtime/location.rs's top-level plan state.
type Graph struct {
	Catalog  catalog.DB
	Snapshot *snapshot.Snapshot

	Locations map[model.LocationId]*Location
	Pipes     map[model.PipeId]*logistics.Pipe
	Lines     map[model.LineId]*ProductionLine
	// LineOrder is every LineId sorted ascending, the stable iteration order
	// spec §9 requires for deterministic scheduling and tie-breaks.
	LineOrder []model.LineId

	Slots     *Slots
	MinProfit float64
	MinMargin float64

	volumeCache map[model.TypeId]float64
}

func (g *Graph) volume(typeID model.TypeId) float64 {
	if v, ok := g.volumeCache[typeID]; ok {
		return v
	}
	v, ok, err := g.Catalog.Volume(context.Background(), typeID)
	if err != nil || !ok {
		v = 0
	}
	g.volumeCache[typeID] = v
	return v
}

// NewGraph builds the production graph from config, the API snapshot, and
// the already-fetched catalog rows (keyed by LineId, one row per configured
// production line) and decryptor table, following the five-step
// construction order of spec §4.5.
func NewGraph(cfg *config.Config, snap *snapshot.Snapshot, db catalog.DB, rows map[model.LineId]catalog.Row, decryptors []catalog.DecryptorEntry) (*Graph, error) {
	horizon, err := cfg.Horizon()
	if err != nil {
		return nil, err
	}
	dailyFlex, err := cfg.DailyFlex()
	if err != nil {
		return nil, err
	}

	g := &Graph{
		Catalog:     db,
		Snapshot:    snap,
		Locations:   make(map[model.LocationId]*Location, len(cfg.Locations)),
		Pipes:       make(map[model.PipeId]*logistics.Pipe, len(cfg.Pipes)),
		Lines:       make(map[model.LineId]*ProductionLine),
		Slots:       NewSlots(cfg.Slots.Manufacturing, cfg.Slots.Reaction, cfg.Slots.Science),
		MinProfit:   cfg.MinProfit,
		MinMargin:   cfg.MinMargin,
		volumeCache: make(map[model.TypeId]float64),
	}

	// Step 1: locations.
	for _, lc := range cfg.Locations {
		loc := &Location{
			ID:       lc.ID,
			Name:     lc.Name,
			SystemID: lc.SystemID,
			consumed: make(map[model.Item]int64),
			AssetsTarget: make(map[model.Item]int64),
		}
		if lc.Market != nil {
			loc.SalesTax = lc.Market.SalesTax
			loc.BrokersFee = lc.Market.BrokersFee
		}
		loc.assets = snap.Assets[lc.ID]
		if loc.assets == nil {
			loc.assets = make(map[model.Item]int64)
		}
		loc.Market = locationMarketFrom(snap, lc.ID)
		g.Locations[lc.ID] = loc
	}

	// Step 2: routes, keyed by (src, dst) per config.RoutesConfig.
	routesByID := make(map[model.RouteId]*logistics.Route)
	for src, byDst := range cfg.Routes {
		for dst, rc := range byDst {
			routesByID[rc.ID] = &logistics.Route{
				ID:          rc.ID,
				ServiceName: rc.ServiceName,
				Src:         src,
				Dst:         dst,
				Rate:        logistics.Rate{M3Rate: rc.M3Rate, CollateralRate: rc.CollateralRate},
			}
		}
	}

	// Step 3: pipes, attached to src (outgoing) and dst (incoming) locations.
	for pipeID, routeIDs := range cfg.Pipes {
		routes := make([]*logistics.Route, 0, len(routeIDs))
		for _, rid := range routeIDs {
			r, ok := routesByID[rid]
			if !ok {
				return nil, planerr.New(planerr.ConfigInvalid, "plan.NewGraph",
					fmt.Sprintf("pipe %d: unknown route %d", pipeID, rid))
			}
			routes = append(routes, r)
		}
		pipe, err := logistics.NewPipe(pipeID, routes)
		if err != nil {
			return nil, err
		}
		g.Pipes[pipeID] = pipe
		src, ok := g.Locations[pipe.Src()]
		if !ok {
			return nil, planerr.New(planerr.ConfigInvalid, "plan.NewGraph",
				fmt.Sprintf("pipe %d: unknown src location %d", pipeID, pipe.Src()))
		}
		dst, ok := g.Locations[pipe.Dst()]
		if !ok {
			return nil, planerr.New(planerr.ConfigInvalid, "plan.NewGraph",
				fmt.Sprintf("pipe %d: unknown dst location %d", pipeID, pipe.Dst()))
		}
		src.PipesOut = append(src.PipesOut, pipe)
		dst.PipesIn = append(dst.PipesIn, pipe)
	}

	// Step 4 (first pass): lines, export pipe, market import pipes, and
	// projected bill of materials.
	lineConfigs := make(map[model.LineId]config.ProductionLineConfig)
	for _, lc := range cfg.Locations {
		if lc.Production == nil {
			continue
		}
		loc := g.Locations[lc.ID]
		structure := catalog.Structure{
			StructureType: lc.Production.StructureTypeID,
			Rigs:          lc.Production.Rigs,
			Skills:        cfg.Skills,
		}
		for _, plc := range lc.Production.ProductionLines {
			lineConfigs[plc.ID] = plc
			line, err := buildLine(g, loc, lc.Production.Tax, structure, plc, rows[plc.ID], decryptors, horizon, dailyFlex, snap)
			if err != nil {
				return nil, err
			}
			g.Lines[plc.ID] = line
			loc.Lines = append(loc.Lines, line)
		}
	}

	// Step 4 (second pass): resolve sub-line-provided materials.
	for lineID, plc := range lineConfigs {
		line := g.Lines[lineID]
		for materialType, srcLineID := range plc.ImportSrcProductionLineIDs {
			sub, ok := g.Lines[srcLineID]
			if !ok {
				return nil, planerr.New(planerr.ConfigInvalid, "plan.NewGraph",
					fmt.Sprintf("line %d: import_src_production_line_ids[%d]: unknown line %d", lineID, materialType, srcLineID))
			}
			if sub.Product.TypeID != materialType {
				return nil, planerr.New(planerr.ConfigInvalid, "plan.NewGraph",
					fmt.Sprintf("line %d: sub-line %d produces type %d, not %d", lineID, srcLineID, sub.Product.TypeID, materialType))
			}
			line.ImportSrcProductionLines[materialType] = sub
		}
	}

	if err := checkAcyclic(g); err != nil {
		return nil, err
	}
	if err := checkMaterialSources(g); err != nil {
		return nil, err
	}

	g.LineOrder = make([]model.LineId, 0, len(g.Lines))
	for id := range g.Lines {
		g.LineOrder = append(g.LineOrder, id)
	}
	sortLineIDs(g.LineOrder)

	computeAssetsTargets(g)

	return g, nil
}

func locationMarketFrom(snap *snapshot.Snapshot, locID model.LocationId) *market.LocationMarketOrders {
	books, ok := snap.MarketOrders[locID]
	if !ok {
		return nil
	}
	byType := make(map[model.TypeId]*market.TypeMarketOrders, len(books))
	for tid, ob := range books {
		orders := make([]market.OrderLevel, 0, len(ob.Orders))
		for _, o := range ob.Orders {
			orders = append(orders, market.OrderLevel{Price: o.Price, Volume: o.Volume})
		}
		byType[tid] = market.NewTypeMarketOrders(orders, ob.Total)
	}
	return market.NewLocationMarketOrders(byType)
}

func buildLine(g *Graph, loc *Location, tax config.TaxConfig, structure catalog.Structure, plc config.ProductionLineConfig, row catalog.Row, decryptors []catalog.DecryptorEntry, horizon, dailyFlex time.Duration, snap *snapshot.Snapshot) (*ProductionLine, error) {
	kind, err := plc.JobKind()
	if err != nil {
		return nil, err
	}
	exportKind, err := plc.ExportKindValue()
	if err != nil {
		return nil, err
	}
	blueprint := plc.Blueprint.Item()
	product := model.NewItem(plc.Product)

	composed := catalog.Compose(row, structure).RefineForBlueprint(kind, blueprint)

	var decEntry *catalog.DecryptorEntry
	if plc.Decryptor != nil {
		d, ok := catalog.FindMatching(decryptors, *plc.Decryptor, row.BaseProduct, blueprint)
		if !ok {
			return nil, planerr.New(planerr.ConfigInvalid, "plan.buildLine",
				fmt.Sprintf("line %d: decryptor %d does not transform base outcome %+v into configured outcome %+v",
					plc.ID, *plc.Decryptor, row.BaseProduct, blueprint))
		}
		decEntry = &d
	}

	taxRate := tax.ForKind(kind)
	projected, err := catalog.Project(row, composed, kind, blueprint, decEntry, horizon, dailyFlex, taxRate)
	if err != nil {
		return nil, err
	}

	var eiv float64
	for _, m := range projected.InstallationMinerals {
		eiv += snap.AdjustedPrices[m.Item.TypeID] * float64(m.Quantity)
	}
	costIdx := snap.CostIndices[loc.SystemID].ForKind(kind)
	installationCost := eiv * costIdx * projected.CostMultiplier

	line := &ProductionLine{
		ID:                       plc.ID,
		Location:                 loc,
		Blueprint:                blueprint,
		Product:                  product,
		Kind:                     kind,
		ExportKind:               exportKind,
		TaxRate:                  taxRate,
		Parallel:                 plc.Parallel,
		ImportSrcProductionLines: make(map[model.TypeId]*ProductionLine),
		Projected:                projected,
		InstallationCost:         installationCost,
	}
	if plc.Decryptor != nil {
		line.Decryptor = plc.Decryptor
	}

	if pipe, ok := g.Pipes[plc.ExportPipeID]; ok {
		line.ExportPipe = pipe
	} else {
		return nil, planerr.New(planerr.ConfigInvalid, "plan.buildLine",
			fmt.Sprintf("line %d: unknown export_pipe_id %d", plc.ID, plc.ExportPipeID))
	}
	for _, pid := range plc.ImportSrcMarketPipeIDs {
		pipe, ok := g.Pipes[pid]
		if !ok {
			return nil, planerr.New(planerr.ConfigInvalid, "plan.buildLine",
				fmt.Sprintf("line %d: unknown import_src_market_pipe_id %d", plc.ID, pid))
		}
		line.ImportSrcMarketPipes = append(line.ImportSrcMarketPipes, pipe)
	}

	return line, nil
}

func checkMaterialSources(g *Graph) error {
	for _, line := range g.Lines {
		for _, m := range line.Projected.Minerals {
			_, subLine := line.ImportSrcProductionLines[m.Item.TypeID]
			marketed := len(line.ImportSrcMarketPipes) > 0 && m.Item.IsMarketable()
			if !subLine && !marketed {
				return planerr.New(planerr.ConfigInvalid, "plan.checkMaterialSources",
					fmt.Sprintf("line %d: material %d has neither a sub-line nor a market source", line.ID, m.Item.TypeID))
			}
		}
	}
	return nil
}

func checkAcyclic(g *Graph) error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[model.LineId]int, len(g.Lines))
	var visit func(id model.LineId) error
	visit = func(id model.LineId) error {
		switch color[id] {
		case black:
			return nil
		case gray:
			return planerr.New(planerr.ConfigInvalid, "plan.checkAcyclic",
				fmt.Sprintf("cyclic sub-line graph at line %d", id))
		}
		color[id] = gray
		line := g.Lines[id]
		for _, sub := range line.ImportSrcProductionLines {
			if err := visit(sub.ID); err != nil {
				return err
			}
		}
		color[id] = black
		return nil
	}
	for id := range g.Lines {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

func sortLineIDs(ids []model.LineId) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

// computeAssetsTargets implements spec §4.5 step 5: for each line, for each
// material, buffer one parallel-wide build's worth of that material — at
// every location along the supplying sub-line's export pipe for a
// sub-line-provided material, at the line's own location for a
// market-provided one; for Product lines, also buffer one parallel-wide
// build's worth of the product at every location along the export pipe.
func computeAssetsTargets(g *Graph) {
	for _, id := range g.LineOrder {
		line := g.Lines[id]
		for _, m := range line.Projected.Minerals {
			qty := m.Quantity * line.Parallel
			if sub, ok := line.ImportSrcProductionLines[m.Item.TypeID]; ok {
				for _, locID := range sub.ExportPipe.Locations() {
					g.Locations[locID].AssetsTarget[m.Item] += qty
				}
				continue
			}
			g.Locations[line.Location.ID].AssetsTarget[m.Item] += qty
		}
		if line.ExportKind == model.Product && line.ExportPipe != nil {
			qty := line.Projected.Portion * line.Parallel
			for _, locID := range line.ExportPipe.Locations() {
				g.Locations[locID].AssetsTarget[line.Product] += qty
			}
		}
	}
}
