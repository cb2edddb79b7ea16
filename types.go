package draft3

import (
	"io"
	"log/slog"
)

// Mode selects between interactive and strict validation.
type Mode int

const (
	// ModeInteractive injects schema defaults into containers missing a key
	// and skips embedded "$schema" checks of nested mappings.
	ModeInteractive Mode = iota
	// ModeStrict never mutates the instance and validates nested mappings
	// that carry their own "$schema".
	ModeStrict
)

func (m Mode) String() string {
	if m == ModeStrict {
		return "strict"
	}
	return "interactive"
}

// DefaultMaxDepth bounds checker recursion when Options.MaxDepth is zero.
const DefaultMaxDepth = 256

// Options bundles validator options.
type Options struct {
	Mode Mode
	// MaxDepth bounds nested checks (schema and data nesting, extends chains
	// and embedded schemas alike). Zero means DefaultMaxDepth.
	MaxDepth int
	// Logger receives debug records about default injection and reference
	// registration. Nil discards them.
	Logger *slog.Logger
}

func lastOptions(opts []Options) Options {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.MaxDepth <= 0 {
		opt.MaxDepth = DefaultMaxDepth
	}
	if opt.Logger == nil {
		opt.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return opt
}
