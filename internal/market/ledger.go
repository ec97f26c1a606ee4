// Package market is the C3 market-order consumption ledger: per
// (location, type) order books with tentative (context-scoped) and
// permanent reservation counters, grounded on
// original_source/src/runtime/market_orders.rs.
package market

import (
	"math"

	"github.com/stadam23/orejita-planner/internal/model"
)

// OrderLevel is one price/volume rung of a type's order book, cheapest
// first.
type OrderLevel struct {
	Price  float64
	Volume float64
}

// TypeMarketOrders is the immutable order book for one (location, type)
// pair plus its two reservation counters. Orders is never mutated after
// construction; only the counters change.
type TypeMarketOrders struct {
	Orders []OrderLevel
	Total  float64

	permanent float64
	tentative float64
	// tentativeSet is false until the first Reserve call with a ctx is
	// observed; it lets a fresh zero-value TypeMarketOrders behave as
	// "no tentative ctx yet" rather than matching ctx==0.
	tentativeSet bool
	tentativeCtx uint64
}

// NewTypeMarketOrders builds a ledger entry from an ascending order list
// and its total volume.
func NewTypeMarketOrders(orders []OrderLevel, total float64) *TypeMarketOrders {
	return &TypeMarketOrders{Orders: orders, Total: total}
}

func (t *TypeMarketOrders) tentativeFor(ctx uint64) float64 {
	if t.tentativeSet && t.tentativeCtx == ctx {
		return t.tentative
	}
	return 0
}

// Reserved returns permanent + tentative reserved under ctx.
func (t *TypeMarketOrders) Reserved(ctx uint64) float64 {
	return t.permanent + t.tentativeFor(ctx)
}

// NumPurchased returns floor(permanent + tentative_for_ctx).
func (t *TypeMarketOrders) NumPurchased(ctx uint64) int64 {
	return int64(math.Floor(t.Reserved(ctx)))
}

// Permanent returns floor(permanent), ignoring any tentative reservation —
// the quantity actually committed to a build so far.
func (t *TypeMarketOrders) Permanent() int64 {
	return int64(math.Floor(t.permanent))
}

func (t *TypeMarketOrders) nextAvailableFrom(reserved float64) (price, available float64, ok bool) {
	var cumulative float64
	for _, o := range t.Orders {
		cumulative += o.Volume
		if cumulative > reserved {
			return o.Price, cumulative - reserved, true
		}
	}
	return 0, 0, false
}

// NextAvailablePermanent is NextAvailable restricted to permanent
// reservations, used by the commit-time market purchase path which has no
// probe context to scope a tentative reservation to.
func (t *TypeMarketOrders) NextAvailablePermanent() (price, available float64, ok bool) {
	return t.nextAvailableFrom(t.permanent)
}

// MinSell returns the cheapest order's price, if any order exists.
func (t *TypeMarketOrders) MinSell() (float64, bool) {
	if len(t.Orders) == 0 {
		return 0, false
	}
	return t.Orders[0].Price, true
}

// NextAvailable walks the order list accumulating volume until cumulative
// volume exceeds what is already reserved (permanent + tentative under
// ctx), and returns the price and remaining (unreserved) volume of the
// crossing order. ok is false if every order is already fully reserved.
func (t *TypeMarketOrders) NextAvailable(ctx uint64) (price float64, available float64, ok bool) {
	return t.nextAvailableFrom(t.Reserved(ctx))
}

// Reserve applies a reservation of vol units. hasCtx selects tentative
// (scoped to ctx) vs permanent accounting: a tentative reservation for a
// new ctx overwrites (not adds to) any existing tentative amount, since a
// fresh profit probe starts from a clean slate; reservations under the
// same ctx accumulate; reservations with no ctx are permanent and always
// additive.
func (t *TypeMarketOrders) Reserve(hasCtx bool, ctx uint64, vol float64) {
	if !hasCtx {
		t.permanent += vol
		return
	}
	if t.tentativeSet && t.tentativeCtx == ctx {
		t.tentative += vol
		return
	}
	t.tentativeSet = true
	t.tentativeCtx = ctx
	t.tentative = vol
}

// PurchaseStats reports the price range spanning the consumed prefix of
// the order book (the orders touched by permanent reservations only —
// tentative reservations never ship a purchase). Reports ok=false if
// nothing has been permanently reserved yet.
func (t *TypeMarketOrders) PurchaseStats() (priceLow, priceHigh float64, ok bool) {
	if t.permanent <= 0 {
		return 0, 0, false
	}
	var cumulative float64
	for _, o := range t.Orders {
		if !ok {
			priceLow = o.Price
			ok = true
		}
		priceHigh = o.Price
		cumulative += o.Volume
		if cumulative >= t.permanent {
			break
		}
	}
	return priceLow, priceHigh, ok
}

// LocationMarketOrders is the set of TypeMarketOrders for every type
// traded at one location.
type LocationMarketOrders struct {
	byType map[model.TypeId]*TypeMarketOrders
}

// NewLocationMarketOrders wraps a pre-built per-type order-book map.
func NewLocationMarketOrders(byType map[model.TypeId]*TypeMarketOrders) *LocationMarketOrders {
	if byType == nil {
		byType = make(map[model.TypeId]*TypeMarketOrders)
	}
	return &LocationMarketOrders{byType: byType}
}

// For returns the ledger for a type, or nil if the location has no order
// book for it at all (distinct from an order book with zero total
// volume).
func (l *LocationMarketOrders) For(tid model.TypeId) *TypeMarketOrders {
	return l.byType[tid]
}

// TotalVolume returns the type's total order-book volume at this
// location, or 0 if untraded.
func (l *LocationMarketOrders) TotalVolume(tid model.TypeId) float64 {
	if t := l.For(tid); t != nil {
		return t.Total
	}
	return 0
}

// Entries returns every type traded at this location, for the report
// emitter to walk when listing purchases.
func (l *LocationMarketOrders) Entries() map[model.TypeId]*TypeMarketOrders {
	return l.byType
}
