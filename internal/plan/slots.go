// Package plan is the C5/C6/C7 layer: the production graph (locations
// owning lines, linked by logistics pipes and a market ledger), the
// recursive profit evaluator, and the greedy scheduler. Grounded on
// original_source/src/runtime/{location.rs,production_line.rs}.
package plan

import "github.com/stadam23/orejita-planner/internal/model"

// Slots tracks industry slot capacity and usage per category.
type Slots struct {
	capacity map[model.SlotKind]int64
	used     map[model.SlotKind]int64
}

// NewSlots builds a slot pool from configured per-category capacity.
func NewSlots(manufacturing, reaction, science int64) *Slots {
	return &Slots{
		capacity: map[model.SlotKind]int64{
			model.SlotManufacturing: manufacturing,
			model.SlotReaction:      reaction,
			model.SlotScience:       science,
		},
		used: make(map[model.SlotKind]int64),
	}
}

// CanAbsorb reports whether every slot kind in need has enough remaining
// capacity to cover it, without mutating usage.
func (s *Slots) CanAbsorb(need map[model.SlotKind]int64) bool {
	for kind, want := range need {
		if s.used[kind]+want > s.capacity[kind] {
			return false
		}
	}
	return true
}

// Use records one slot of the given kind as consumed.
func (s *Slots) Use(kind model.SlotKind) {
	s.used[kind]++
}
