package logistics

import (
	"fmt"

	"github.com/stadam23/orejita-planner/internal/model"
	"github.com/stadam23/orejita-planner/internal/planerr"
)

// Pipe is an ordered, non-empty chain of routes forming a path. Its rate
// is the component-wise sum of its routes' rates; it owns a per-item
// deliveries ledger that only ever grows.
type Pipe struct {
	ID     model.PipeId
	Routes []*Route

	deliveries map[model.Item]int64
}

// NewPipe builds a pipe from an ordered, non-empty route chain. Consecutive
// routes must connect (routes[i].Dst == routes[i+1].Src); this is a
// construction-time invariant, enforced with a ConfigInvalid error rather
// than left to panic later on a malformed config.
func NewPipe(id model.PipeId, routes []*Route) (*Pipe, error) {
	if len(routes) == 0 {
		return nil, planerr.New(planerr.ConfigInvalid, "logistics.NewPipe", fmt.Sprintf("pipe %d: empty route chain", id))
	}
	for i := 0; i < len(routes)-1; i++ {
		if routes[i].Dst != routes[i+1].Src {
			return nil, planerr.New(planerr.ConfigInvalid, "logistics.NewPipe",
				fmt.Sprintf("pipe %d: route %d dst does not match route %d src", id, routes[i].ID, routes[i+1].ID))
		}
	}
	return &Pipe{ID: id, Routes: routes, deliveries: make(map[model.Item]int64)}, nil
}

// Src is the pipe's entry location.
func (p *Pipe) Src() model.LocationId { return p.Routes[0].Src }

// Dst is the pipe's final destination.
func (p *Pipe) Dst() model.LocationId { return p.Routes[len(p.Routes)-1].Dst }

// Locations lists the source of each route in order, followed by the
// final destination.
func (p *Pipe) Locations() []model.LocationId {
	out := make([]model.LocationId, 0, len(p.Routes)+1)
	for _, r := range p.Routes {
		out = append(out, r.Src)
	}
	return append(out, p.Dst())
}

// Rate is the component-wise sum of the pipe's routes' rates.
func (p *Pipe) Rate() Rate {
	var total Rate
	for _, r := range p.Routes {
		total = total.Add(r.Rate)
	}
	return total
}

// Deliver adds qty of item to the pipe's delivery ledger. The ledger is
// additive only and never goes negative.
func (p *Pipe) Deliver(item model.Item, qty int64) {
	p.deliveries[item] += qty
}

// Delivered returns the total quantity of item delivered on this pipe so
// far in the current plan.
func (p *Pipe) Delivered(item model.Item) int64 {
	return p.deliveries[item]
}

// Deliveries returns a snapshot of every item currently on this pipe's
// ledger, for the report emitter.
func (p *Pipe) Deliveries() map[model.Item]int64 {
	out := make(map[model.Item]int64, len(p.deliveries))
	for item, qty := range p.deliveries {
		out[item] = qty
	}
	return out
}
