package plan

import (
	"context"

	"github.com/stadam23/orejita-planner/internal/catalog"
	"github.com/stadam23/orejita-planner/internal/logistics"
	"github.com/stadam23/orejita-planner/internal/model"
)

// fakeDB is a minimal in-memory catalog.DB stand-in for tests that only
// need Volume/Name lookups, not real blueprint rows.
type fakeDB struct {
	volumes map[model.TypeId]float64
	names   map[model.TypeId]string
}

func newFakeDB() *fakeDB {
	return &fakeDB{volumes: make(map[model.TypeId]float64), names: make(map[model.TypeId]string)}
}

func (f *fakeDB) Get(ctx context.Context, product model.TypeId, blueprint model.Item, kind model.JobKind, systemID model.SystemId, include catalog.Include) (catalog.Row, error) {
	return catalog.Row{}, nil
}

func (f *fakeDB) Decryptors(ctx context.Context) ([]catalog.DecryptorEntry, error) {
	return nil, nil
}

func (f *fakeDB) Volume(ctx context.Context, typeID model.TypeId) (float64, bool, error) {
	v, ok := f.volumes[typeID]
	return v, ok, nil
}

func (f *fakeDB) Name(ctx context.Context, item model.Item) (string, error) {
	if n, ok := f.names[item.TypeID]; ok {
		return n, nil
	}
	return "", nil
}

func newTestGraph(catalogDB catalog.DB) *Graph {
	return &Graph{
		Catalog:     catalogDB,
		Locations:   make(map[model.LocationId]*Location),
		Pipes:       make(map[model.PipeId]*logistics.Pipe),
		Lines:       make(map[model.LineId]*ProductionLine),
		Slots:       NewSlots(0, 0, 0),
		volumeCache: make(map[model.TypeId]float64),
	}
}
