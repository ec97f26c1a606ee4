package plan

import (
	"math"

	"github.com/stadam23/orejita-planner/internal/logistics"
	"github.com/stadam23/orejita-planner/internal/model"
)

// Run drives the greedy outer scheduler of spec §4.7: exhaust every
// currently buildable intermediate, then commit the single best-profit
// buildable product line, repeating until nothing more can be built.
func Run(g *Graph) {
	for {
		for tryBuildIntermediates(g) {
		}

		var best *ProductionLine
		var bestProfit Profit
		found := false
		for _, id := range g.LineOrder {
			line := g.Lines[id]
			if line.ExportKind != model.Product {
				continue
			}
			if !canBuild(g, line) {
				continue
			}
			p, ok := Evaluate(g, line)
			if !ok {
				continue
			}
			if p.Value() <= g.MinProfit || p.Margin() < 1+g.MinMargin {
				continue
			}
			if !found || p.Value() > bestProfit.Value() {
				best, bestProfit, found = line, p, true
			}
		}
		if !found {
			return
		}
		commitBuild(g, best)
	}
}

// tryBuildIntermediates makes one pass over every intermediate line in
// stable order, committing each one found buildable as the pass
// progresses, and reports whether any build happened.
func tryBuildIntermediates(g *Graph) bool {
	changed := false
	for _, id := range g.LineOrder {
		line := g.Lines[id]
		if line.ExportKind != model.Intermediate {
			continue
		}
		if canBuild(g, line) {
			commitBuild(g, line)
			changed = true
		}
	}
	return changed
}

// canBuild implements spec §4.7's buildability gate.
func canBuild(g *Graph, line *ProductionLine) bool {
	if !g.Slots.CanAbsorb(line.MaxSlots()) {
		return false
	}
	if line.builds >= line.Parallel {
		return false
	}
	if line.ExportKind == model.Intermediate {
		loc := line.Location
		var outgoing int64
		for _, p := range loc.PipesOut {
			outgoing += p.Delivered(line.Product)
		}
		return loc.Available(line.Product) < loc.AssetsTarget[line.Product]+outgoing
	}
	dst := g.Locations[line.ExportPipe.Dst()]
	return dst.Available(line.Product) < dst.AssetsTarget[line.Product]
}

// commitBuild implements spec §4.7's build commit: every material is
// either pulled from a sub-line build (recursing first if the sub-line
// still needs to build) or bought permanently off the market, the product
// is delivered on the export pipe if this is a Product line, and the
// line's slot and build counters advance.
func commitBuild(g *Graph, line *ProductionLine) {
	loc := line.Location
	for _, m := range line.Projected.Minerals {
		if sub, isSubLine := line.ImportSrcProductionLines[m.Item.TypeID]; isSubLine {
			if canBuild(g, sub) {
				commitBuild(g, sub)
			}
			sub.ExportPipe.Deliver(m.Item, m.Quantity)
		} else {
			permanentReserveFromMarketAndDeliver(g, line, m.Item, m.Quantity)
		}
		loc.consume(m.Item, m.Quantity)
	}

	if line.ExportKind == model.Product {
		line.ExportPipe.Deliver(line.Product, line.Projected.Portion)
	}

	g.Slots.Use(line.Kind.SlotKind())
	line.builds++
}

// permanentReserveFromMarketAndDeliver implements spec §4.7's market commit
// path: greedily reserve whole-unit chunks at the cheapest delivered price
// across every source market pipe; if every pipe's reservation frontier is
// exhausted before qty is satisfied, fall back to the single source market
// with the highest total order-book volume for the rest.
func permanentReserveFromMarketAndDeliver(g *Graph, line *ProductionLine, item model.Item, qty int64) {
	remaining := qty
	for remaining > 0 {
		pipe, ok := cheapestDeliveredOrderPermanent(g, line.ImportSrcMarketPipes, item.TypeID)
		if !ok {
			break
		}
		_, avail, _ := g.Locations[pipe.Src()].Market.For(item.TypeID).NextAvailablePermanent()
		amt := int64(math.Floor(math.Min(avail, float64(remaining))))
		if amt <= 0 {
			break
		}
		g.Locations[pipe.Src()].Market.For(item.TypeID).Reserve(false, 0, float64(amt))
		pipe.Deliver(item, amt)
		remaining -= amt
	}
	if remaining <= 0 {
		return
	}

	var deepest *logistics.Pipe
	bestTotal := -1.0
	for _, p := range line.ImportSrcMarketPipes {
		srcLoc := g.Locations[p.Src()]
		if srcLoc.Market == nil {
			continue
		}
		if total := srcLoc.Market.TotalVolume(item.TypeID); total > bestTotal {
			bestTotal, deepest = total, p
		}
	}
	if deepest == nil {
		return
	}
	t := g.Locations[deepest.Src()].Market.For(item.TypeID)
	if t == nil {
		return
	}
	t.Reserve(false, 0, float64(remaining))
	deepest.Deliver(item, remaining)
}

func cheapestDeliveredOrderPermanent(g *Graph, pipes []*logistics.Pipe, tid model.TypeId) (*logistics.Pipe, bool) {
	vol := g.volume(tid)
	var best *logistics.Pipe
	bestUnit := 0.0
	found := false
	for _, p := range pipes {
		srcLoc := g.Locations[p.Src()]
		if srcLoc.Market == nil {
			continue
		}
		t := srcLoc.Market.For(tid)
		if t == nil {
			continue
		}
		price, _, ok := t.NextAvailablePermanent()
		if !ok {
			continue
		}
		rate := p.Rate()
		unit := price + rate.M3Rate*vol + rate.CollateralRate*price
		if !found || unit < bestUnit {
			found, best, bestUnit = true, p, unit
		}
	}
	return best, found
}
