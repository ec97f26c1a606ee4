package catalog

import (
	"fmt"
	"math"
	"time"

	"github.com/stadam23/orejita-planner/internal/model"
	"github.com/stadam23/orejita-planner/internal/planerr"
)

const day = 24 * time.Hour

// ProjectedLine is the C2 output: a catalog row transformed, for one
// configured blueprint and horizon, into a concrete "N runs, N materials,
// N portion" bill. Horizon-scaled quantities are stored directly (an
// in-place-scaled snapshot, not a per-run template), since every downstream
// consumer (the profit evaluator, the scheduler, the report) works off
// fractions of the horizon total rather than a per-run unit.
type ProjectedLine struct {
	RunDuration      time.Duration
	SequenceDuration time.Duration
	Sequences        int64
	RunsPerSequence  int64
	// Portion is the horizon-total product output (post-probability floor
	// for Invention lines).
	Portion int64
	// Minerals are horizon-scaled material requirements, ME applied,
	// with a BPC's own consumable copy and an invention decryptor (if
	// configured) folded in.
	Minerals []Mineral
	// InstallationMinerals are horizon-scaled installation material
	// requirements; ME does not apply to these.
	InstallationMinerals []Mineral
	// CostMultiplier = job-kind base x cost-efficiency x (1 + tax).
	CostMultiplier float64
}

// HorizonRuns is the total number of individual production runs across the
// whole horizon (runs_per_sequence x sequences).
func (p ProjectedLine) HorizonRuns() int64 { return p.RunsPerSequence * p.Sequences }

// roundUpDay rounds t up to the next multiple of 24h, strictly: an exact
// multiple still advances by a full day (matching the source's relisting
// overhead rule — a job slot freed exactly at a day boundary still waits
// for the next one).
func roundUpDay(t time.Duration) time.Duration {
	n := t / day
	return (n + 1) * day
}

func ceilQuantity(base int64, horizonRuns int64, me float64) int64 {
	if base <= 1 {
		return base * horizonRuns
	}
	return int64(math.Ceil(float64(base) * float64(horizonRuns) * me))
}

// Project transforms a catalog row, already composed into me/te/ce and
// probability for this blueprint, into a ProjectedLine sized for the given
// planning horizon. decryptor must already have been validated (via
// FindMatching) against the configured product outcome; Project only
// applies its quantity/probability effect.
func Project(row Row, composed Composed, kind model.JobKind, blueprint model.Item, decryptor *DecryptorEntry, horizon, dailyFlexTime time.Duration, taxRate float64) (ProjectedLine, error) {
	runDuration := time.Duration(float64(row.BaseDuration) * composed.TimeEfficiency)

	var sequences, runsPerSequence int64
	var sequenceDuration time.Duration
	if 2*runDuration > horizon {
		sequences, runsPerSequence = 1, 1
		sequenceDuration = runDuration
	} else {
		t := roundUpDay(runDuration + dailyFlexTime)
		sequences = int64(horizon / t)
		if sequences < 1 {
			return ProjectedLine{}, planerr.New(planerr.Unsupported, "catalog.Project",
				fmt.Sprintf("blueprint %d: insufficient horizon runs (sequence period %s exceeds horizon %s)", blueprint.TypeID, t, horizon))
		}
		if blueprint.IsBPC() {
			runsPerSequence = int64(blueprint.Runs)
		} else {
			runsPerSequence = int64(t / runDuration)
		}
		sequenceDuration = t
	}
	horizonRuns := runsPerSequence * sequences

	probability := composed.Probability
	if decryptor != nil {
		probability *= decryptor.ProbabilityMultiplier
	}

	portion := row.BasePortion * sequences
	if kind == model.Invention {
		portion = int64(math.Floor(float64(portion) * probability))
	}

	minerals := make([]Mineral, 0, len(row.Minerals)+2)
	for _, m := range row.Minerals {
		minerals = append(minerals, Mineral{Item: m.Item, Quantity: ceilQuantity(m.Quantity, horizonRuns, composed.MaterialEfficiency)})
	}
	if blueprint.IsBPC() {
		minerals = append(minerals, Mineral{Item: blueprint, Quantity: sequences})
	}
	if kind == model.Invention && decryptor != nil {
		minerals = append(minerals, Mineral{Item: model.NewItem(decryptor.TypeID), Quantity: horizonRuns})
	}

	installationMinerals := make([]Mineral, 0, len(row.InstallationMinerals))
	for _, m := range row.InstallationMinerals {
		installationMinerals = append(installationMinerals, Mineral{Item: m.Item, Quantity: m.Quantity * sequences})
	}

	return ProjectedLine{
		RunDuration:          runDuration,
		SequenceDuration:     sequenceDuration,
		Sequences:            sequences,
		RunsPerSequence:      runsPerSequence,
		Portion:              portion,
		Minerals:             minerals,
		InstallationMinerals: installationMinerals,
		CostMultiplier:       kind.BaseCostMultiplier() * composed.CostEfficiency * (1 + taxRate),
	}, nil
}
