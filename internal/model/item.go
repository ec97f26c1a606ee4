package model

// Item identifies a tradeable or buildable quantity: either a plain
// marketable type, or a specific blueprint copy (BPC, bounded runs, fixed
// ME/TE) or blueprint original (BPO, unlimited runs). Two Items with the
// same TypeId but different Runs/ME/TE are distinct inventory lines — a BPC
// and its product share a TypeId-for-sale identity but never compare equal
// as Items, which is what lets them coexist as separate map keys in a
// ledger or a deliveries map.
//
// Runs == 0 means "not a blueprint" (a plain material or product). Runs ==
// -1 means a BPO (unlimited runs). Runs > 0 means a BPC with that many runs
// remaining.
type Item struct {
	TypeID TypeId
	Runs   int16
	ME     int8
	TE     int8
}

// RunsBPO marks an Item as an unlimited-run blueprint original.
const RunsBPO int16 = -1

// NewItem returns a plain, non-blueprint Item for the given type.
func NewItem(typeID TypeId) Item {
	return Item{TypeID: typeID}
}

// NewBlueprint returns a blueprint Item (BPO if runs == RunsBPO, BPC
// otherwise) with the given material/time efficiency.
func NewBlueprint(typeID TypeId, runs int16, me, te int8) Item {
	return Item{TypeID: typeID, Runs: runs, ME: me, TE: te}
}

// IsBlueprint reports whether the item is a blueprint (BPO or BPC) rather
// than a plain marketable quantity.
func (i Item) IsBlueprint() bool { return i.Runs != 0 }

// IsBPO reports whether the item is an unlimited-run blueprint original.
func (i Item) IsBPO() bool { return i.Runs == RunsBPO }

// IsBPC reports whether the item is a bounded-run blueprint copy.
func (i Item) IsBPC() bool { return i.Runs > 0 }

// IsMarketable reports whether the item can be bought or sold on the order
// book: plain materials always are; blueprints only as a stock BPO (ME and
// TE both zero — a configured copy with non-zero ME/TE has no market
// listing of its own).
func (i Item) IsMarketable() bool {
	if !i.IsBlueprint() {
		return true
	}
	return i.IsBPO() && i.ME == 0 && i.TE == 0
}
