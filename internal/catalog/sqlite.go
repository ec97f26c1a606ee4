package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/stadam23/orejita-planner/internal/model"
	"github.com/stadam23/orejita-planner/internal/planerr"
)

// SQLite is a catalog.DB backed by a read-only SQLite database file (the
// shape expected is: types, systems, blueprints (carrying the undecrypted
// invention outcome as base_runs/base_me/base_te alongside base_portion),
// blueprint_materials, blueprint_installation_materials,
// efficiency_modifiers, and decryptors tables). It wraps *sql.DB and issues parameterized
// queries per call, the way the teacher's own db package opens its
// operational store.
type SQLite struct {
	sql *sql.DB
}

// OpenSQLite opens the catalog database at path in read-only, WAL mode.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, planerr.Wrap(err, planerr.InputIO, "catalog.OpenSQLite")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, planerr.Wrap(err, planerr.InputIO, "catalog.OpenSQLite")
	}
	return &SQLite{sql: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error { return s.sql.Close() }

func (s *SQLite) Get(ctx context.Context, product model.TypeId, blueprint model.Item, kind model.JobKind, systemID model.SystemId, include Include) (Row, error) {
	row := Row{Product: product}

	var durationSeconds int64
	var baseRuns int16
	var baseME, baseTE int8
	err := s.sql.QueryRowContext(ctx,
		`SELECT base_portion, base_probability, base_duration_seconds, base_runs, base_me, base_te
		   FROM blueprints
		  WHERE blueprint_type_id = ? AND product_type_id = ? AND kind = ?`,
		int32(blueprint.TypeID), int32(product), kind.String(),
	).Scan(&row.BasePortion, &row.BaseProbability, &durationSeconds, &baseRuns, &baseME, &baseTE)
	if err == sql.ErrNoRows {
		return Row{}, planerr.New(planerr.CatalogMiss, "catalog.SQLite.Get",
			fmt.Sprintf("no blueprint row for product=%d blueprint=%d kind=%s", product, blueprint.TypeID, kind))
	}
	if err != nil {
		return Row{}, planerr.Wrap(err, planerr.CatalogError, "catalog.SQLite.Get")
	}
	row.BaseDuration = time.Duration(durationSeconds) * time.Second
	row.BaseProduct = model.NewBlueprint(product, baseRuns, baseME, baseTE)

	if include.Minerals {
		minerals, err := s.selectMaterials(ctx, "blueprint_materials", blueprint.TypeID, kind)
		if err != nil {
			return Row{}, err
		}
		row.Minerals = minerals
	}
	if include.InstallationMinerals {
		minerals, err := s.selectMaterials(ctx, "blueprint_installation_materials", blueprint.TypeID, kind)
		if err != nil {
			return Row{}, err
		}
		row.InstallationMinerals = minerals
	}
	if include.Efficiencies {
		effs, err := s.selectEfficiencies(ctx, blueprint.TypeID, kind)
		if err != nil {
			return Row{}, err
		}
		row.Efficiencies = effs
	}
	if include.Security {
		var sec float64
		if err := s.sql.QueryRowContext(ctx, `SELECT security FROM systems WHERE system_id = ?`, int32(systemID)).Scan(&sec); err != nil {
			return Row{}, planerr.Wrap(err, planerr.CatalogError, "catalog.SQLite.Get")
		}
		row.SystemSecurity = sec
	}

	return row, nil
}

func (s *SQLite) selectMaterials(ctx context.Context, table string, blueprintType model.TypeId, kind model.JobKind) ([]Mineral, error) {
	rows, err := s.sql.QueryContext(ctx,
		fmt.Sprintf(`SELECT material_type_id, quantity FROM %s WHERE blueprint_type_id = ? AND kind = ?`, table),
		int32(blueprintType), kind.String(),
	)
	if err != nil {
		return nil, planerr.Wrap(err, planerr.CatalogError, "catalog.SQLite.selectMaterials")
	}
	defer rows.Close()

	var out []Mineral
	for rows.Next() {
		var typeID int32
		var qty int64
		if err := rows.Scan(&typeID, &qty); err != nil {
			return nil, planerr.Wrap(err, planerr.CatalogError, "catalog.SQLite.selectMaterials")
		}
		out = append(out, Mineral{Item: model.NewItem(model.TypeId(typeID)), Quantity: qty})
	}
	return out, rows.Err()
}

func (s *SQLite) selectEfficiencies(ctx context.Context, blueprintType model.TypeId, kind model.JobKind) (map[model.TypeId]EfficiencyMod, error) {
	rows, err := s.sql.QueryContext(ctx,
		`SELECT source_type_id, material_efficiency, time_efficiency, cost_efficiency,
		        probability_multiplier, high_sec_multiplier, low_sec_multiplier, zero_sec_multiplier
		   FROM efficiency_modifiers
		  WHERE blueprint_type_id = ? AND kind = ?`,
		int32(blueprintType), kind.String(),
	)
	if err != nil {
		return nil, planerr.Wrap(err, planerr.CatalogError, "catalog.SQLite.selectEfficiencies")
	}
	defer rows.Close()

	out := make(map[model.TypeId]EfficiencyMod)
	for rows.Next() {
		var sourceType int32
		var mod EfficiencyMod
		if err := rows.Scan(&sourceType, &mod.MaterialEfficiency, &mod.TimeEfficiency, &mod.CostEfficiency,
			&mod.ProbabilityAdd, &mod.HighSecMultiplier, &mod.LowSecMultiplier, &mod.ZeroSecMultiplier); err != nil {
			return nil, planerr.Wrap(err, planerr.CatalogError, "catalog.SQLite.selectEfficiencies")
		}
		out[model.TypeId(sourceType)] = mod
	}
	return out, rows.Err()
}

func (s *SQLite) Decryptors(ctx context.Context) ([]DecryptorEntry, error) {
	rows, err := s.sql.QueryContext(ctx,
		`SELECT type_id, runs_modifier, me_modifier, te_modifier, probability_multiplier FROM decryptors`)
	if err != nil {
		return nil, planerr.Wrap(err, planerr.CatalogError, "catalog.SQLite.Decryptors")
	}
	defer rows.Close()

	var out []DecryptorEntry
	for rows.Next() {
		var d DecryptorEntry
		var typeID int32
		if err := rows.Scan(&typeID, &d.RunsModifier, &d.MEModifier, &d.TEModifier, &d.ProbabilityMultiplier); err != nil {
			return nil, planerr.Wrap(err, planerr.CatalogError, "catalog.SQLite.Decryptors")
		}
		d.TypeID = model.TypeId(typeID)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLite) Volume(ctx context.Context, typeID model.TypeId) (float64, bool, error) {
	var volume sql.NullFloat64
	err := s.sql.QueryRowContext(ctx, `SELECT volume FROM types WHERE type_id = ?`, int32(typeID)).Scan(&volume)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, planerr.Wrap(err, planerr.CatalogError, "catalog.SQLite.Volume")
	}
	return volume.Float64, volume.Valid, nil
}

func (s *SQLite) Name(ctx context.Context, item model.Item) (string, error) {
	var name string
	err := s.sql.QueryRowContext(ctx, `SELECT name FROM types WHERE type_id = ?`, int32(item.TypeID)).Scan(&name)
	if err == sql.ErrNoRows {
		return "", planerr.New(planerr.CatalogMiss, "catalog.SQLite.Name", fmt.Sprintf("no type row for %d", item.TypeID))
	}
	if err != nil {
		return "", planerr.Wrap(err, planerr.CatalogError, "catalog.SQLite.Name")
	}
	return name, nil
}
