package plan

import (
	"math"

	"github.com/stadam23/orejita-planner/internal/logistics"
	"github.com/stadam23/orejita-planner/internal/model"
)

// epsilon is the tolerance below which a remaining fractional demand is
// treated as satisfied, avoiding an infinite loop on float rounding noise.
const epsilon = 1e-9

// Profit is the recursive evaluator's result for one candidate line: the
// delivered cost of its materials (including any sub-line recursion and
// sales tax/broker's fee/m3/collateral fees) and its gross sale revenue.
type Profit struct {
	Cost    float64
	Revenue float64
}

// Value is profit_value = revenue - cost.
func (p Profit) Value() float64 { return p.Revenue - p.Cost }

// Margin is revenue / cost. A zero-cost line (free materials) has infinite
// margin, which always clears a min_margin gate.
func (p Profit) Margin() float64 {
	if p.Cost == 0 {
		return math.Inf(1)
	}
	return p.Revenue / p.Cost
}

// Evaluate runs profit(line) at a fresh root context, per spec §4.6.1: the
// context is derived from the line's identity and current build count so
// repeated probes against the same committed state see the same tentative
// reservations, and a probe taken after a commit starts clean.
func Evaluate(g *Graph, line *ProductionLine) (Profit, bool) {
	ctx := (uint64(line.ID) << 32) | uint64(line.builds)
	return evaluate(g, line, ctx, float64(line.Projected.Portion))
}

func evaluate(g *Graph, line *ProductionLine, ctx uint64, numProduced float64) (Profit, bool) {
	ownCost, ok := marketCostWithDelivery(g, line, ctx, numProduced)
	if !ok {
		return Profit{}, false
	}
	cost := ownCost

	portion := float64(line.Projected.Portion)
	if portion > 0 {
		for _, m := range line.Projected.Minerals {
			sub, isSubLine := line.ImportSrcProductionLines[m.Item.TypeID]
			if !isSubLine {
				continue
			}
			subQ := float64(m.Quantity) * numProduced / portion
			subProfit, ok := evaluate(g, sub, ctx, subQ)
			if !ok {
				return Profit{}, false
			}
			cost += subProfit.Cost
		}
	}

	revenue, fees := revenueWithDelivery(g, line, ownCost, numProduced)
	return Profit{Cost: cost + fees, Revenue: revenue}, true
}

// marketCostWithDelivery prices every material not supplied by a sub-line,
// scaled to numProduced units of this line's product, per spec §4.6.2:
// greedily consume the cheapest delivered order across every source market
// pipe, reserving tentatively under ctx as it goes. A material with no
// market depth at all makes the line's profit undefined.
func marketCostWithDelivery(g *Graph, line *ProductionLine, ctx uint64, numProduced float64) (float64, bool) {
	portion := float64(line.Projected.Portion)
	if portion <= 0 {
		return 0, true
	}

	var total float64
	for _, m := range line.Projected.Minerals {
		if _, isSubLine := line.ImportSrcProductionLines[m.Item.TypeID]; isSubLine {
			continue
		}
		remaining := float64(m.Quantity) * numProduced / portion
		if remaining <= epsilon {
			continue
		}

		var reserved, cost float64
		for remaining > epsilon {
			pipe, price, avail, unit, ok := cheapestDeliveredOrder(g, line.ImportSrcMarketPipes, m.Item.TypeID, ctx)
			if !ok {
				break
			}
			_ = price
			amt := math.Min(avail, remaining)
			srcLoc := g.Locations[pipe.Src()]
			srcLoc.Market.For(m.Item.TypeID).Reserve(true, ctx, amt)
			cost += amt * unit
			reserved += amt
			remaining -= amt
		}
		if reserved <= epsilon {
			return 0, false
		}
		if remaining > epsilon {
			cost += remaining * (cost / reserved)
		}
		total += cost
	}
	return total, true
}

// cheapestDeliveredOrder examines next_available(pipe.src, tid, ctx) across
// every candidate pipe and returns the one with the lowest delivered unit
// price: order price plus the pipe's m3 and collateral fees.
func cheapestDeliveredOrder(g *Graph, pipes []*logistics.Pipe, tid model.TypeId, ctx uint64) (pipe *logistics.Pipe, price, available, unit float64, ok bool) {
	vol := g.volume(tid)
	for _, p := range pipes {
		srcLoc := g.Locations[p.Src()]
		if srcLoc.Market == nil {
			continue
		}
		t := srcLoc.Market.For(tid)
		if t == nil {
			continue
		}
		orderPrice, orderAvail, found := t.NextAvailable(ctx)
		if !found {
			continue
		}
		rate := p.Rate()
		deliveredUnit := orderPrice + rate.M3Rate*vol + rate.CollateralRate*orderPrice
		if !ok || deliveredUnit < unit {
			ok, pipe, price, available, unit = true, p, orderPrice, orderAvail, deliveredUnit
		}
	}
	return
}

// revenueWithDelivery implements spec §4.6.3: gross sale proceeds at the
// export pipe's destination market (revenue = p*Q, standalone) plus the
// delivery fees charged against it — sales tax, broker's fee, the pipe's
// m3 delivery fee, and its collateral fee (basis = sale value for a Product
// line; for an Intermediate line, which pays neither sales tax nor broker's
// fee since it is never actually sold, this line's own direct market cost
// plus its installation cost for numProduced units).
// ownCost is this line's own direct market cost, excluding any recursively
// summed sub-line cost, per spec §4.6: a nested Intermediate line's
// collateral basis is its own materials, not its whole sub-tree.
func revenueWithDelivery(g *Graph, line *ProductionLine, ownCost, numProduced float64) (revenue, fees float64) {
	if line.ExportPipe == nil {
		return 0, 0
	}
	dst := g.Locations[line.ExportPipe.Dst()]

	var price float64
	if dst.Market != nil {
		if t := dst.Market.For(line.Product.TypeID); t != nil {
			price, _ = t.MinSell()
		}
	}
	gross := price * numProduced

	rate := line.ExportPipe.Rate()
	vol := g.volume(line.Product.TypeID)

	var salesTax, brokersFee, collateralBasis float64
	if line.ExportKind == model.Product {
		salesTax = dst.SalesTax
		brokersFee = dst.BrokersFee
		collateralBasis = gross
	} else {
		collateralBasis = ownCost + line.InstallationCostFor(numProduced)
	}

	fees = salesTax*gross + brokersFee*gross + rate.M3Rate*vol*numProduced + rate.CollateralRate*collateralBasis
	return gross, fees
}
