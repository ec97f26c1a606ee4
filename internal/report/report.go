// Package report assembles the plan's final JSON output: per-location
// purchases, builds, deliveries, and missing assets, plus a grand total
// cost. Grounded on original_source/src/runtime/output.rs's OutputLocation/
// OutputPurchase/OutputBuild/OutputDeliveries/OutputAssetTarget shapes,
// translated from serde_json to encoding/json.
package report

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stadam23/orejita-planner/internal/logistics"
	"github.com/stadam23/orejita-planner/internal/model"
	"github.com/stadam23/orejita-planner/internal/plan"
)

// Purchase is one permanently reserved market buy at a location.
type Purchase struct {
	Item      string       `json:"item"`
	TypeID    model.TypeId `json:"type_id"`
	Quantity  int64        `json:"quantity"`
	PriceLow  float64      `json:"price_low"`
	PriceHigh float64      `json:"price_high"`
}

// Build is one production line's committed job count at a location.
type Build struct {
	Product         string        `json:"product"`
	ProductTypeID   model.TypeId  `json:"product_type_id"`
	Blueprint       string        `json:"blueprint"`
	BlueprintTypeID model.TypeId  `json:"blueprint_type_id"`
	Decryptor       *model.TypeId `json:"decryptor,omitempty"`
	RunsPerSequence int64         `json:"runs_per_sequence"`
	Sequences       int64         `json:"sequences"`
	BuildsCount     int64         `json:"builds_count"`
}

// Delivery is one item's committed shipment out of a location on one pipe.
type Delivery struct {
	DestinationLocationID model.LocationId `json:"destination_location_id"`
	DestinationName       string           `json:"destination_name"`
	ServiceName           string           `json:"service_name"`
	Item                  string           `json:"item"`
	TypeID                model.TypeId     `json:"type_id"`
	Quantity              int64            `json:"quantity"`
}

// MissingAsset is one item whose current availability falls short of the
// plan's asset target at a location.
type MissingAsset struct {
	Item     string       `json:"item"`
	TypeID   model.TypeId `json:"type_id"`
	Target   int64        `json:"target"`
	Current  int64        `json:"current"`
	Missing  int64        `json:"missing"`
}

// Location is one location's section of the report.
type Location struct {
	Name                    string         `json:"name"`
	Purchases               []Purchase     `json:"purchases"`
	Builds                  []Build        `json:"builds"`
	DeliveriesByDestination []Delivery     `json:"deliveries_by_destination"`
	MissingAssets           []MissingAsset `json:"missing_assets"`
}

// Report is the full plan output: one entry per location plus the grand
// total cost (installation costs across every build, plus every pipe's m3
// delivery fee across every delivered item).
type Report struct {
	SnapshotID     string     `json:"snapshot_id"`
	Locations      []Location `json:"locations"`
	GrandTotalCost float64    `json:"grand_total_cost"`
}

// Generate walks the finished plan graph and assembles the report. It mints
// a fresh snapshot id so repeated runs against the same plan state are
// distinguishable in stored output history.
func Generate(ctx context.Context, g *plan.Graph) (*Report, error) {
	locIDs := make([]model.LocationId, 0, len(g.Locations))
	for id := range g.Locations {
		locIDs = append(locIDs, id)
	}
	sort.Slice(locIDs, func(i, j int) bool { return locIDs[i] < locIDs[j] })

	grandTotal := decimal.Zero
	locations := make([]Location, 0, len(locIDs))
	for _, id := range locIDs {
		loc := g.Locations[id]

		purchases, err := purchasesFor(ctx, g, loc)
		if err != nil {
			return nil, err
		}
		builds, buildCost, err := buildsFor(ctx, g, loc)
		if err != nil {
			return nil, err
		}
		deliveries, deliveryFee, err := deliveriesFor(ctx, g, loc)
		if err != nil {
			return nil, err
		}
		missing := missingAssetsFor(ctx, g, loc)

		grandTotal = grandTotal.Add(buildCost).Add(deliveryFee)
		locations = append(locations, Location{
			Name:                    loc.Name,
			Purchases:               purchases,
			Builds:                  builds,
			DeliveriesByDestination: deliveries,
			MissingAssets:           missing,
		})
	}

	total, _ := grandTotal.Float64()
	return &Report{
		SnapshotID:     uuid.NewString(),
		Locations:      locations,
		GrandTotalCost: total,
	}, nil
}

func purchasesFor(ctx context.Context, g *plan.Graph, loc *plan.Location) ([]Purchase, error) {
	if loc.Market == nil {
		return nil, nil
	}
	var out []Purchase
	entries := loc.Market.Entries()
	tids := make([]model.TypeId, 0, len(entries))
	for tid := range entries {
		tids = append(tids, tid)
	}
	sort.Slice(tids, func(i, j int) bool { return tids[i] < tids[j] })
	for _, tid := range tids {
		t := entries[tid]
		qty := t.Permanent()
		if qty <= 0 {
			continue
		}
		low, high, ok := t.PurchaseStats()
		if !ok {
			continue
		}
		name, err := g.Catalog.Name(ctx, model.NewItem(tid))
		if err != nil {
			return nil, err
		}
		out = append(out, Purchase{Item: name, TypeID: tid, Quantity: qty, PriceLow: low, PriceHigh: high})
	}
	return out, nil
}

func buildsFor(ctx context.Context, g *plan.Graph, loc *plan.Location) ([]Build, decimal.Decimal, error) {
	var out []Build
	total := decimal.Zero
	for _, line := range loc.Lines {
		if line.NumBuilds() <= 0 {
			continue
		}
		productName, err := g.Catalog.Name(ctx, line.Product)
		if err != nil {
			return nil, total, err
		}
		blueprintName, err := g.Catalog.Name(ctx, line.Blueprint)
		if err != nil {
			return nil, total, err
		}
		out = append(out, Build{
			Product:         productName,
			ProductTypeID:   line.Product.TypeID,
			Blueprint:       blueprintName,
			BlueprintTypeID: line.Blueprint.TypeID,
			Decryptor:       line.Decryptor,
			RunsPerSequence: line.Projected.RunsPerSequence,
			Sequences:       line.Projected.Sequences,
			BuildsCount:     line.NumBuilds(),
		})
		total = total.Add(decimal.NewFromFloat(line.InstallationCost).Mul(decimal.NewFromInt(line.NumBuilds())))
	}
	return out, total, nil
}

func deliveriesFor(ctx context.Context, g *plan.Graph, loc *plan.Location) ([]Delivery, decimal.Decimal, error) {
	var out []Delivery
	fee := decimal.Zero
	for _, pipe := range loc.PipesOut {
		dst := g.Locations[pipe.Dst()]
		items := pipe.Deliveries()
		tids := make([]model.Item, 0, len(items))
		for item := range items {
			tids = append(tids, item)
		}
		sort.Slice(tids, func(i, j int) bool { return tids[i].TypeID < tids[j].TypeID })
		for _, item := range tids {
			qty := items[item]
			if qty <= 0 {
				continue
			}
			name, err := g.Catalog.Name(ctx, item)
			if err != nil {
				return nil, fee, err
			}
			out = append(out, Delivery{
				DestinationLocationID: dst.ID,
				DestinationName:       dst.Name,
				ServiceName:           serviceNameOf(pipe),
				Item:                  name,
				TypeID:                item.TypeID,
				Quantity:              qty,
			})
			volume, ok, err := g.Catalog.Volume(ctx, item.TypeID)
			if err != nil {
				return nil, fee, err
			}
			if ok {
				fee = fee.Add(decimal.NewFromFloat(pipe.Rate().M3Rate).Mul(decimal.NewFromFloat(volume)).Mul(decimal.NewFromInt(qty)))
			}
		}
	}
	return out, fee, nil
}

// serviceNameOf reports the carrier handling the pipe's final hop into its
// destination, the leg whose terms a report reader actually cares about.
func serviceNameOf(pipe *logistics.Pipe) string {
	if len(pipe.Routes) == 0 {
		return ""
	}
	return pipe.Routes[len(pipe.Routes)-1].ServiceName
}

func missingAssetsFor(ctx context.Context, g *plan.Graph, loc *plan.Location) []MissingAsset {
	var out []MissingAsset
	items := make([]model.Item, 0, len(loc.AssetsTarget))
	for item := range loc.AssetsTarget {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].TypeID < items[j].TypeID })
	for _, item := range items {
		target := loc.AssetsTarget[item]
		current := loc.Available(item)
		if current < target {
			name, err := g.Catalog.Name(ctx, item)
			if err != nil {
				name = ""
			}
			out = append(out, MissingAsset{Item: name, TypeID: item.TypeID, Target: target, Current: current, Missing: target - current})
		}
	}
	return out
}
