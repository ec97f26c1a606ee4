package plan

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/stadam23/orejita-planner/internal/catalog"
	"github.com/stadam23/orejita-planner/internal/config"
	"github.com/stadam23/orejita-planner/internal/model"
)

// FetchCatalogRows issues one catalog lookup per configured production line
// concurrently (spec §5: the only fan-out the planner performs), together
// with one fetch of the decryptor table in the same group, joining on the
// first error. Results are
// written into per-index slots by worker index and assembled into the
// returned map only after every goroutine has finished, so no map is
// written concurrently.
func FetchCatalogRows(ctx context.Context, db catalog.DB, cfg *config.Config) (map[model.LineId]catalog.Row, []catalog.DecryptorEntry, error) {
	type job struct {
		lineID    model.LineId
		product   model.TypeId
		blueprint model.Item
		kind      model.JobKind
		systemID  model.SystemId
	}

	var jobs []job
	for _, lc := range cfg.Locations {
		if lc.Production == nil {
			continue
		}
		for _, plc := range lc.Production.ProductionLines {
			kind, err := plc.JobKind()
			if err != nil {
				return nil, nil, err
			}
			jobs = append(jobs, job{
				lineID:    plc.ID,
				product:   plc.Product,
				blueprint: plc.Blueprint.Item(),
				kind:      kind,
				systemID:  lc.SystemID,
			})
		}
	}

	rows := make([]catalog.Row, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			row, err := db.Get(gctx, j.product, j.blueprint, j.kind, j.systemID, catalog.FullInclude)
			if err != nil {
				return err
			}
			rows[i] = row
			return nil
		})
	}

	var decryptors []catalog.DecryptorEntry
	g.Go(func() error {
		d, err := db.Decryptors(gctx)
		if err != nil {
			return err
		}
		decryptors = d
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	byLine := make(map[model.LineId]catalog.Row, len(jobs))
	for i, j := range jobs {
		byLine[j.lineID] = rows[i]
	}
	return byLine, decryptors, nil
}
