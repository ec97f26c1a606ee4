// Package planerr defines the typed error kinds the planner's phases return,
// so callers (and cmd/planner/main.go's fatal-error message) can distinguish
// "bad input" from "bad configuration" from "catalog failure" without
// string-matching error text.
package planerr

import (
	"errors"
	"fmt"
)

// Kind classifies a planner error.
type Kind int

const (
	// InputIO covers failed reads of config, snapshot, or catalog files.
	InputIO Kind = iota
	// InputParse covers a file that was read but did not parse (bad YAML,
	// bad JSON).
	InputParse
	// CatalogMiss means the catalog has no row for a requested
	// product/blueprint/kind combination.
	CatalogMiss
	// CatalogError wraps an unexpected catalog backend failure.
	CatalogError
	// ConfigInvalid means the configuration is internally inconsistent
	// (a bad decryptor, a dangling pipe reference, an unreachable
	// sub-line) independent of any catalog or snapshot data.
	ConfigInvalid
	// Unsupported marks an input the planner cannot schedule, such as a
	// blueprint whose sequence period exceeds the planning horizon.
	Unsupported
)

func (k Kind) String() string {
	switch k {
	case InputIO:
		return "input_io"
	case InputParse:
		return "input_parse"
	case CatalogMiss:
		return "catalog_miss"
	case CatalogError:
		return "catalog_error"
	case ConfigInvalid:
		return "config_invalid"
	case Unsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Error is a planner error tagged with a Kind, wrapping an underlying cause
// where one exists.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a Kind-tagged error with no wrapped cause.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf("%s", msg)}
}

// Wrap tags an existing error with a Kind and the operation that produced
// it. Wrap(nil, ...) returns nil so call sites can write
// `return planerr.Wrap(err, ...)` unconditionally.
func Wrap(err error, kind Kind, op string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err is a *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
