package catalog

import "github.com/stadam23/orejita-planner/internal/model"

// Security buckets a system's security status for efficiency-modifier
// purposes: high-sec structures/rigs get their own bonus multiplier, as do
// low-sec and null/wormhole/Pochven ("zero").
type Security int

const (
	SecurityHigh Security = iota
	SecurityLow
	SecurityZero
)

// SecurityOf buckets a raw system security value.
func SecurityOf(systemSecurity float64) Security {
	switch {
	case systemSecurity >= 0.45:
		return SecurityHigh
	case systemSecurity > 0.0:
		return SecurityLow
	default:
		return SecurityZero
	}
}

func (m EfficiencyMod) securityMultiplier(sec Security) float64 {
	switch sec {
	case SecurityHigh:
		return m.HighSecMultiplier
	case SecurityLow:
		return m.LowSecMultiplier
	default:
		return m.ZeroSecMultiplier
	}
}

func applyMultiplicative(e *float64, mult, level, securityMult float64) {
	*e *= 1.0 - mult*level*securityMult
}

// addEfficiencies folds one modifier source's contribution into the
// running me/te/ce/probability composition, at the given trained skill
// level (1-5) and system security bucket. A zero field in the modifier
// (e.g. a rig with no cost-efficiency bonus) leaves its factor untouched.
func (m EfficiencyMod) addEfficiencies(me, te, ce, probability *float64, level int8, sec Security) {
	levelMult := float64(level)
	secMult := m.securityMultiplier(sec)
	if m.MaterialEfficiency > 0 {
		applyMultiplicative(me, m.MaterialEfficiency, levelMult, secMult)
	}
	if m.TimeEfficiency > 0 {
		applyMultiplicative(te, m.TimeEfficiency, levelMult, secMult)
	}
	if m.CostEfficiency > 0 {
		applyMultiplicative(ce, m.CostEfficiency, levelMult, secMult)
	}
	if m.ProbabilityAdd > 0 {
		*probability += m.ProbabilityAdd * levelMult
	}
}

// Composed is the fully composed set of efficiencies for one production
// line, before blueprint ME/TE refinement.
type Composed struct {
	MaterialEfficiency float64
	TimeEfficiency     float64
	CostEfficiency     float64
	Probability        float64
}

// Compose folds the row's available efficiency modifiers across the
// structure, its rigs (each counted at skill level 1, since rig bonuses do
// not scale with a trained skill), and the operator's trained skills, for
// the given system security. Modifier sources the row has no entry for
// (an untrained skill, an unfitted rig type) contribute nothing.
func Compose(row Row, structure Structure) Composed {
	sec := SecurityOf(row.SystemSecurity)
	me, te, ce, probability := 1.0, 1.0, 1.0, row.BaseProbability

	if mod, ok := row.Efficiencies[structure.StructureType]; ok {
		mod.addEfficiencies(&me, &te, &ce, &probability, 1, sec)
	}
	for _, rig := range structure.Rigs {
		if mod, ok := row.Efficiencies[rig]; ok {
			mod.addEfficiencies(&me, &te, &ce, &probability, 1, sec)
		}
	}
	for skillType, level := range structure.Skills {
		if mod, ok := row.Efficiencies[skillType]; ok {
			mod.addEfficiencies(&me, &te, &ce, &probability, level, sec)
		}
	}

	return Composed{
		MaterialEfficiency: me,
		TimeEfficiency:     te,
		CostEfficiency:     ce,
		Probability:        probability,
	}
}

// RefineForBlueprint folds a manufacturing blueprint's own ME/TE (percent
// points, 0-10) into the structure/rig/skill-composed efficiency. Reaction
// and science-kind blueprints carry no per-copy ME/TE of their own.
func (c Composed) RefineForBlueprint(kind model.JobKind, blueprint model.Item) Composed {
	if kind != model.Manufacturing {
		return c
	}
	out := c
	out.MaterialEfficiency *= 1 - float64(blueprint.ME)/100
	out.TimeEfficiency *= 1 - float64(blueprint.TE)/100
	return out
}
