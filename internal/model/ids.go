// Package model holds the identifiers and domain value types shared across
// every layer of the planner: catalog, market, logistics, and plan.
package model

// TypeId identifies an EVE Online item type (a product, material, blueprint,
// or decryptor).
type TypeId int32

// LocationId identifies a station or structure where production, markets,
// and assets live.
type LocationId int64

// SystemId identifies a solar system, used for cost/security index lookups.
type SystemId int32

// RouteId identifies a single atomic logistics hop between two locations.
type RouteId int32

// PipeId identifies an ordered chain of routes used to deliver items
// between a production line and its market or sub-line partner.
type PipeId int32

// LineId identifies a single configured production line.
type LineId int32
