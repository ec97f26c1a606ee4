// Package config loads and represents config.yaml: locations, production
// lines, logistics routes/pipes, skills, slot capacity, and the horizon
// parameters. Grounded on original_source/src/config/*.rs
// (serde_yaml::from_reader) and on EverforgeWorks-Galaxies-Server's use of
// gopkg.in/yaml.v3 for the pack's only other YAML-configured server.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stadam23/orejita-planner/internal/model"
	"github.com/stadam23/orejita-planner/internal/planerr"
)

// Config is the full parsed config.yaml.
type Config struct {
	Locations     []LocationConfig             `yaml:"locations"`
	Routes        RoutesConfig                 `yaml:"routes"`
	Pipes         map[model.PipeId][]model.RouteId `yaml:"pipes"`
	Skills        map[model.TypeId]int8        `yaml:"skills"`
	Slots         SlotsConfig                  `yaml:"slots"`
	MaxTime       string                        `yaml:"max_time"`
	DailyFlexTime string                        `yaml:"daily_flex_time"`
	MinProfit     float64                       `yaml:"min_profit"`
	MinMargin     float64                       `yaml:"min_margin"`
}

// RoutesConfig is keyed by source location, then by destination location:
// every route this source can ship to, and on what terms.
type RoutesConfig map[model.LocationId]map[model.LocationId]RouteConfig

// RouteConfig is one configured atomic hop.
type RouteConfig struct {
	ID             model.RouteId `yaml:"id"`
	ServiceName    string        `yaml:"service_name"`
	M3Rate         float64       `yaml:"m3_rate"`
	CollateralRate float64       `yaml:"collateral_rate"`
}

// SlotsConfig is the industry slot capacity available across every
// configured location, pooled by activity category.
type SlotsConfig struct {
	Manufacturing int64 `yaml:"manufacturing"`
	Reaction      int64 `yaml:"reaction"`
	Science       int64 `yaml:"science"`
}

// LocationConfig describes one facility: its identity, optional
// production capability, and optional market presence.
type LocationConfig struct {
	ID         model.LocationId  `yaml:"id"`
	Name       string            `yaml:"name"`
	SystemID   model.SystemId    `yaml:"system_id"`
	Production *ProductionConfig `yaml:"production,omitempty"`
	Market     *MarketConfig     `yaml:"market,omitempty"`
}

// MarketConfig is a location's trading fee structure.
type MarketConfig struct {
	SalesTax   float64 `yaml:"sales_tax"`
	BrokersFee float64 `yaml:"brokers_fee"`
}

// TaxConfig is a location's per-activity installation tax rate.
type TaxConfig struct {
	Manufacturing float64 `yaml:"manufacturing"`
	Invention     float64 `yaml:"invention"`
	Reaction      float64 `yaml:"reaction"`
	Copy          float64 `yaml:"copy"`
}

// ForKind returns the tax rate for a job kind.
func (t TaxConfig) ForKind(kind model.JobKind) float64 {
	switch kind {
	case model.Manufacturing:
		return t.Manufacturing
	case model.Invention:
		return t.Invention
	case model.Reaction:
		return t.Reaction
	case model.Copying:
		return t.Copy
	default:
		return 0
	}
}

// ProductionConfig is a location's production facility: its structure
// bonuses and the lines it hosts.
type ProductionConfig struct {
	Tax             TaxConfig              `yaml:"tax"`
	Rigs            []model.TypeId         `yaml:"rigs"`
	StructureTypeID model.TypeId           `yaml:"structure_type_id"`
	ProductionLines []ProductionLineConfig `yaml:"production_lines"`
}

// ItemConfig is the YAML shape of a blueprint Item.
type ItemConfig struct {
	TypeID model.TypeId `yaml:"type_id"`
	Runs   int16        `yaml:"runs"`
	ME     int8         `yaml:"me"`
	TE     int8         `yaml:"te"`
}

// Item converts the configured blueprint into a model.Item.
func (c ItemConfig) Item() model.Item { return model.NewBlueprint(c.TypeID, c.Runs, c.ME, c.TE) }

// ProductionLineConfig is one configured production line.
type ProductionLineConfig struct {
	ID                         model.LineId              `yaml:"id"`
	Blueprint                  ItemConfig                `yaml:"blueprint"`
	Product                    model.TypeId              `yaml:"product"`
	Kind                       string                    `yaml:"kind"`
	ExportKind                 string                    `yaml:"export_kind"`
	ExportPipeID               model.PipeId              `yaml:"export_pipe_id"`
	ImportSrcMarketPipeIDs     []model.PipeId            `yaml:"import_src_market_pipe_ids"`
	ImportSrcProductionLineIDs map[model.TypeId]model.LineId `yaml:"import_src_production_line_ids"`
	Decryptor                  *model.TypeId             `yaml:"decryptor,omitempty"`
	Parallel                   int64                     `yaml:"parallel"`
}

// JobKind parses the configured kind string.
func (c ProductionLineConfig) JobKind() (model.JobKind, error) {
	switch c.Kind {
	case "Manufacturing":
		return model.Manufacturing, nil
	case "Reaction":
		return model.Reaction, nil
	case "Invention":
		return model.Invention, nil
	case "Copy":
		return model.Copying, nil
	default:
		return 0, planerr.New(planerr.ConfigInvalid, "config.ProductionLineConfig.JobKind",
			fmt.Sprintf("line %d: unknown kind %q", c.ID, c.Kind))
	}
}

// ExportKindValue parses the configured export_kind string.
func (c ProductionLineConfig) ExportKindValue() (model.ExportKind, error) {
	switch c.ExportKind {
	case "Product":
		return model.Product, nil
	case "Intermediate":
		return model.Intermediate, nil
	default:
		return 0, planerr.New(planerr.ConfigInvalid, "config.ProductionLineConfig.ExportKindValue",
			fmt.Sprintf("line %d: unknown export_kind %q", c.ID, c.ExportKind))
	}
}

// Horizon parses max_time into a time.Duration.
func (c *Config) Horizon() (time.Duration, error) {
	d, err := time.ParseDuration(c.MaxTime)
	if err != nil {
		return 0, planerr.Wrap(err, planerr.InputParse, "config.Config.Horizon")
	}
	return d, nil
}

// DailyFlex parses daily_flex_time into a time.Duration.
func (c *Config) DailyFlex() (time.Duration, error) {
	d, err := time.ParseDuration(c.DailyFlexTime)
	if err != nil {
		return 0, planerr.Wrap(err, planerr.InputParse, "config.Config.DailyFlex")
	}
	return d, nil
}

// Load reads and parses config.yaml at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, planerr.Wrap(err, planerr.InputIO, "config.Load")
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, planerr.Wrap(err, planerr.InputParse, "config.Load")
	}
	return &cfg, nil
}
