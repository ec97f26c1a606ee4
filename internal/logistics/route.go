// Package logistics is the C4 logistics graph: routes (atomic hops) and
// pipes (ordered route chains) with summed delivery rates and a per-pipe
// delivery ledger. Grounded on
// original_source/src/runtime/{delivery_route.rs,delivery_pipe.rs}.
package logistics

import "github.com/stadam23/orejita-planner/internal/model"

// Rate is a per-unit delivery cost: m3_rate charges by cargo volume,
// collateral_rate charges by shipped value.
type Rate struct {
	M3Rate         float64
	CollateralRate float64
}

// Add returns the component-wise sum of two rates, used to compose a
// pipe's rate from its routes.
func (r Rate) Add(o Rate) Rate {
	return Rate{M3Rate: r.M3Rate + o.M3Rate, CollateralRate: r.CollateralRate + o.CollateralRate}
}

// Route is a single atomic logistics hop between two locations.
type Route struct {
	ID          model.RouteId
	ServiceName string
	Src         model.LocationId
	Dst         model.LocationId
	Rate        Rate
}
