package catalog

import "github.com/stadam23/orejita-planner/internal/model"

// DecryptorEntry is one row of the decryptor table: the run/ME/TE deltas
// and invention-probability multiplier a decryptor type applies to an
// invention job's resulting BPC.
type DecryptorEntry struct {
	TypeID                model.TypeId
	RunsModifier          int16
	MEModifier            int8
	TEModifier            int8
	ProbabilityMultiplier float64
}

// Apply returns the BPC that inventing with this decryptor against the
// given base (undecrypted) outcome would produce.
func Apply(base model.Item, d DecryptorEntry) model.Item {
	return model.NewBlueprint(base.TypeID, base.Runs+d.RunsModifier, base.ME+d.MEModifier, base.TE+d.TEModifier)
}

// FindMatching looks up decryptorType in the table and returns its entry
// only if applying it to base produces exactly the configured outcome.
// A configured decryptor whose table entry does not reproduce the
// configured runs/ME/TE is not a match — the caller treats that as a
// ConfigInvalid error rather than silently using the wrong deltas.
func FindMatching(table []DecryptorEntry, decryptorType model.TypeId, base, configured model.Item) (DecryptorEntry, bool) {
	for _, d := range table {
		if d.TypeID != decryptorType {
			continue
		}
		applied := Apply(base, d)
		if applied.Runs == configured.Runs && applied.ME == configured.ME && applied.TE == configured.TE {
			return d, true
		}
	}
	return DecryptorEntry{}, false
}
