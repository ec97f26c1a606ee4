// Package snapshot loads the JSON API snapshot the plan runs against:
// adjusted reference prices, per-system cost indices, market order books,
// and on-hand assets. Grounded on the teacher's internal/esi
// market.go/industry.go JSON-unmarshal idiom (anonymous wire structs
// converted into internal types).
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stadam23/orejita-planner/internal/model"
	"github.com/stadam23/orejita-planner/internal/planerr"
)

// CostIndexSet is one system's per-activity cost index.
type CostIndexSet struct {
	Manufacturing float64 `json:"manufacturing"`
	Invention     float64 `json:"invention"`
	Reaction      float64 `json:"reaction"`
	Copy          float64 `json:"copy"`
}

// ForKind returns the cost index for a job kind.
func (c CostIndexSet) ForKind(kind model.JobKind) float64 {
	switch kind {
	case model.Manufacturing:
		return c.Manufacturing
	case model.Invention:
		return c.Invention
	case model.Reaction:
		return c.Reaction
	case model.Copying:
		return c.Copy
	default:
		return 0
	}
}

// OrderLevel is one order book rung as it appears on the wire.
type OrderLevel struct {
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
}

// OrderBook is one type's order book at one location.
type OrderBook struct {
	Orders []OrderLevel `json:"orders"`
	Total  float64      `json:"total"`
}

// assetRow is the wire shape of one assets.json entry.
type assetRow struct {
	TypeID   model.TypeId `json:"type_id"`
	Runs     int16        `json:"runs"`
	ME       int8         `json:"me"`
	TE       int8         `json:"te"`
	Quantity int64        `json:"quantity"`
}

// Snapshot is the fully parsed, combined API snapshot.
type Snapshot struct {
	AdjustedPrices map[model.TypeId]float64
	CostIndices    map[model.SystemId]CostIndexSet
	MarketOrders   map[model.LocationId]map[model.TypeId]OrderBook
	Assets         map[model.LocationId]map[model.Item]int64
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return planerr.Wrap(err, planerr.InputIO, "snapshot.readJSON")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return planerr.Wrap(err, planerr.InputParse, fmt.Sprintf("snapshot.readJSON(%s)", filepath.Base(path)))
	}
	return nil
}

// Load reads adjusted_prices.json, cost_indices.json, market_orders.json,
// and assets.json from dir.
func Load(dir string) (*Snapshot, error) {
	snap := &Snapshot{}

	if err := readJSON(filepath.Join(dir, "adjusted_prices.json"), &snap.AdjustedPrices); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, "cost_indices.json"), &snap.CostIndices); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, "market_orders.json"), &snap.MarketOrders); err != nil {
		return nil, err
	}

	var rawAssets map[model.LocationId][]assetRow
	if err := readJSON(filepath.Join(dir, "assets.json"), &rawAssets); err != nil {
		return nil, err
	}
	snap.Assets = make(map[model.LocationId]map[model.Item]int64, len(rawAssets))
	for loc, rows := range rawAssets {
		byItem := make(map[model.Item]int64, len(rows))
		for _, row := range rows {
			item := model.Item{TypeID: row.TypeID, Runs: row.Runs, ME: row.ME, TE: row.TE}
			byItem[item] += row.Quantity
		}
		snap.Assets[loc] = byItem
	}

	return snap, nil
}
