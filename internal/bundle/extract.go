// Package bundle recovers the individual modules of a JavaScript bundle.
//
// A bundle keeps its modules in a table literal: an array whose object
// elements map a module id to the module's factory function. Recognize finds
// those entries, and Extractor regenerates each body into a ModuleTable keyed
// by the filesystem-safe module name.
package bundle

import (
	"context"
	"fmt"
	"time"

	"unbundle/internal/codegen"
	"unbundle/internal/logging"
	"unbundle/internal/syntax"
)

// ExtractorOptions configures Extractor behavior.
type ExtractorOptions struct {
	// Generate is passed to the code generator for every module body.
	Generate codegen.Options

	// RequireFunction skips entries whose value is not a function
	// expression instead of regenerating them as modules.
	RequireFunction bool
}

// DefaultExtractorOptions regenerates bodies on their original lines with
// comments, expanded layout and function parentheses kept.
func DefaultExtractorOptions() ExtractorOptions {
	return ExtractorOptions{
		Generate: codegen.DefaultOptions(),
	}
}

// ExtractorOption is a functional option for configuring Extractor.
type ExtractorOption func(*ExtractorOptions)

// WithGenerateOptions sets the code generator options.
func WithGenerateOptions(opts codegen.Options) ExtractorOption {
	return func(o *ExtractorOptions) {
		o.Generate = opts
	}
}

// WithRequireFunction sets whether non-function entries are skipped.
func WithRequireFunction(require bool) ExtractorOption {
	return func(o *ExtractorOptions) {
		o.RequireFunction = require
	}
}

// Extractor builds a ModuleTable from a parsed bundle.
type Extractor struct {
	gen     codegen.Generator
	options ExtractorOptions
}

// NewExtractor creates an Extractor that regenerates bodies with gen.
func NewExtractor(gen codegen.Generator, opts ...ExtractorOption) *Extractor {
	options := DefaultExtractorOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Extractor{gen: gen, options: options}
}

// Extract regenerates every recognized module of tree. Entries are processed
// in document order, so when two names sanitize to the same key the later
// entry wins. The first generation error aborts the run with a
// *GenerationFailure.
func (e *Extractor) Extract(ctx context.Context, tree *syntax.Tree) (*ModuleTable, error) {
	start := time.Now()
	table := NewModuleTable()
	skipped := 0

	for entry := range Recognize(tree) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("extraction canceled: %w", err)
		}

		line := entry.Pair.Line()
		if e.options.RequireFunction && !isFunctionValue(entry.Body) {
			logging.ExtractDebug("skipping non-function entry %s (%s) at line %d", entry.Name, entry.Body.Type, line)
			skipped++
			continue
		}

		code, err := e.gen.Generate(tree, entry.Body, e.options.Generate)
		if err != nil {
			logging.ExtractDebug("generation failed for %s at line %d: %v", entry.Name, line, err)
			return nil, &GenerationFailure{Name: entry.Name.Value, Line: line, Err: err}
		}

		m := Module{
			Key:     Sanitize(entry.Name.Value),
			RawName: entry.Name.Value,
			Source:  Normalize(code),
			Line:    line,
		}
		if prev, ok := table.Get(m.Key); ok {
			logging.ExtractWarn("module %q (line %d) overwrites %q (line %d) under key %q",
				m.RawName, m.Line, prev.RawName, prev.Line, m.Key)
		}
		table.Put(m)
		logging.ExtractDebug("extracted %s -> %s (%d bytes)", entry.Name, m.Key, len(m.Source))
	}

	logging.Extract("extracted %d modules (%d collisions, %d skipped) in %v",
		table.Len(), len(table.Collisions()), skipped, time.Since(start))
	return table, nil
}

func isFunctionValue(n *syntax.Node) bool {
	for n != nil && n.Kind == syntax.KindParenthesized {
		var inner *syntax.Node
		for _, c := range n.NamedChildren() {
			if c.Kind != syntax.KindComment {
				inner = c
				break
			}
		}
		n = inner
	}
	return n != nil && n.Kind == syntax.KindFunction
}
