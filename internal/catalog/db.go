package catalog

import (
	"context"

	"github.com/stadam23/orejita-planner/internal/model"
)

// Include selects which parts of a Row the caller actually needs, so the
// SQLite backend can skip joins the caller has no use for (installation
// cost lookups never need minerals, for instance).
type Include struct {
	Minerals             bool
	InstallationMinerals bool
	Efficiencies         bool
	Security             bool
}

// FullInclude requests every field of a Row.
var FullInclude = Include{Minerals: true, InstallationMinerals: true, Efficiencies: true, Security: true}

// DB is the catalog backend: given a product, the blueprint item producing
// it, the job kind, and the system it runs in, it returns the raw catalog
// row. Implementations must be safe for concurrent use by multiple
// goroutines, since the concurrent catalog fetch fans these calls out
// across an errgroup.
type DB interface {
	Get(ctx context.Context, product model.TypeId, blueprint model.Item, kind model.JobKind, systemID model.SystemId, include Include) (Row, error)
	// Decryptors returns the full decryptor table.
	Decryptors(ctx context.Context) ([]DecryptorEntry, error)
	// Volume returns a type's unit volume in m3, used for delivery rate
	// calculations. ok is false if the type has no known volume (not
	// cargo-movable, e.g. a service type).
	Volume(ctx context.Context, typeID model.TypeId) (volume float64, ok bool, err error)
	// Name returns a human-readable label for an item, used by the report
	// emitter.
	Name(ctx context.Context, item model.Item) (string, error)
}
