// Package catalog is the C1/C2 layer: blueprint catalog rows keyed by
// product/blueprint/job kind/system, efficiency composition, decryptor
// lookup, and the projection of a catalog row into a sequence/horizon
// production schedule.
package catalog

import (
	"time"

	"github.com/stadam23/orejita-planner/internal/model"
)

// Mineral is a (item, quantity) pair: a blueprint material requirement or
// an installation material requirement, before or after horizon scaling
// depending on which list it came from.
type Mineral struct {
	Item     model.Item
	Quantity int64
}

// EfficiencyMod is one modifier source's contribution to a blueprint's
// final material/time/cost efficiency and invention probability: a
// structure type, a rig, or a skill. Composition is multiplicative on the
// (1 - mult*level*securityMult) factor per active field, matching the way
// EVE stacks these bonuses.
type EfficiencyMod struct {
	MaterialEfficiency float64
	TimeEfficiency     float64
	CostEfficiency     float64
	ProbabilityAdd     float64

	HighSecMultiplier float64
	LowSecMultiplier  float64
	ZeroSecMultiplier float64
}

// Row is the raw response for a single (product, blueprint, kind, system)
// catalog lookup: base figures plus the uncomposed set of efficiency
// modifiers available to this blueprint. Composition into final
// me/te/ce/probability happens in Compose, once the caller's configured
// structure/rigs/skills are known.
type Row struct {
	Product              model.TypeId
	BasePortion          int64
	BaseProbability      float64
	BaseDuration         time.Duration
	Minerals             []Mineral
	InstallationMinerals []Mineral
	// Efficiencies maps a modifier source's TypeId (structure, rig, or
	// skill) to the bonuses it contributes when active.
	Efficiencies   map[model.TypeId]EfficiencyMod
	SystemSecurity float64
	// BaseProduct is the undecrypted invention outcome: the BPC runs/ME/TE
	// this blueprint yields with no decryptor applied. Only meaningful for
	// Invention rows; used to validate a configured decryptor's delta
	// against the line's configured blueprint outcome.
	BaseProduct model.Item
}

// Structure carries the configured structure and its rigs used to compose
// a catalog row's efficiency modifiers for one production line.
type Structure struct {
	StructureType model.TypeId
	Rigs          []model.TypeId
	// Skills maps a skill TypeId to its trained level (1-5).
	Skills map[model.TypeId]int8
}
