// Package pipeline runs one extraction: read the bundle, parse it, extract
// its modules and write them out. The phases run one after another on the
// calling goroutine.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"unbundle/internal/bundle"
	"unbundle/internal/codegen"
	"unbundle/internal/config"
	"unbundle/internal/logging"
	"unbundle/internal/output"
	"unbundle/internal/syntax"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Step names, in execution order.
const (
	StepRead     = "read"
	StepParse    = "parse"
	StepExtract  = "extract"
	StepMkdir    = "mkdir"
	StepWrite    = "write"
	StepManifest = "manifest"
)

// Outcome classifies how a step ended.
type Outcome int

const (
	OutcomeOK          Outcome = iota
	OutcomeRecoverable         // errors were recorded, the run continued
	OutcomeFatal               // the run stopped here
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeRecoverable:
		return "recoverable"
	case OutcomeFatal:
		return "fatal"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// StepResult is the typed result of one pipeline step.
type StepResult struct {
	Step     string
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// Options configures a run.
type Options struct {
	InputPath string
	OutputDir string

	MaxFileSize     int
	Generate        codegen.Options
	RequireFunction bool

	Extension    string
	Manifest     bool
	ManifestName string

	// Generator overrides the code generator; nil uses SourceGenerator.
	Generator codegen.Generator

	// OnFile is called after each module file attempt.
	OnFile func(output.FileResult)
}

// OptionsFromConfig builds run options from cfg. Input and output paths are
// left for the caller except for the configured output directory.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		OutputDir:   cfg.Output.Dir,
		MaxFileSize: cfg.Parse.MaxFileSize,
		Generate: codegen.Options{
			RetainLines:          cfg.Generate.RetainLines,
			Comments:             cfg.Generate.Comments,
			Compact:              cfg.Generate.Compact,
			RetainFunctionParens: cfg.Generate.RetainFunctionParens,
			Dedent:               cfg.Generate.Dedent,
		},
		RequireFunction: cfg.Extract.RequireFunction,
		Extension:       cfg.Output.Extension,
		Manifest:        cfg.Output.Manifest,
		ManifestName:    cfg.Output.ManifestName,
	}
}

// Report summarizes a run.
type Report struct {
	RunID      string
	Input      string
	OutputDir  string
	Modules    int
	Collisions []bundle.Collision
	Files      []output.FileResult
	Steps      []StepResult
	Duration   time.Duration
}

// WriteFailures returns every recoverable write failure of the run,
// including a failed manifest write.
func (r *Report) WriteFailures() []*bundle.WriteFailure {
	var out []*bundle.WriteFailure
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f.Err)
		}
	}
	for _, s := range r.Steps {
		var wf *bundle.WriteFailure
		if s.Step == StepManifest && errors.As(s.Err, &wf) {
			out = append(out, wf)
		}
	}
	return out
}

// Fatal returns the step that stopped the run, or nil.
func (r *Report) Fatal() *StepResult {
	for i := range r.Steps {
		if r.Steps[i].Outcome == OutcomeFatal {
			return &r.Steps[i]
		}
	}
	return nil
}

// Run executes one extraction. A fatal step ends the run and its error is
// returned together with the partial report: *bundle.InputError for read and
// parse, *bundle.GenerationFailure for extraction, *bundle.DirectoryError for
// directory creation. Per-file write failures are recoverable and only
// appear in the report.
func Run(ctx context.Context, opts Options) (*Report, error) {
	start := time.Now()
	report := &Report{
		RunID:     uuid.NewString(),
		Input:     opts.InputPath,
		OutputDir: opts.OutputDir,
	}
	log := logging.L().With(zap.String("run_id", report.RunID))
	log.Info("run started", zap.String("input", opts.InputPath), zap.String("output", opts.OutputDir))

	finish := func(err error) (*Report, error) {
		report.Duration = time.Since(start)
		if err != nil {
			log.Debug("run failed", zap.Error(err), zap.Duration("duration", report.Duration))
		} else {
			log.Info("run finished",
				zap.Int("modules", report.Modules),
				zap.Int("write_failures", len(report.WriteFailures())),
				zap.Duration("duration", report.Duration))
		}
		return report, err
	}
	record := func(step string, stepStart time.Time, outcome Outcome, err error) {
		report.Steps = append(report.Steps, StepResult{
			Step:     step,
			Outcome:  outcome,
			Err:      err,
			Duration: time.Since(stepStart),
		})
	}

	// read
	stepStart := time.Now()
	content, err := os.ReadFile(opts.InputPath)
	if err != nil {
		ierr := &bundle.InputError{Path: opts.InputPath, Err: err}
		record(StepRead, stepStart, OutcomeFatal, ierr)
		return finish(ierr)
	}
	record(StepRead, stepStart, OutcomeOK, nil)

	// parse
	stepStart = time.Now()
	parser := syntax.NewParser(syntax.WithMaxFileSize(opts.MaxFileSize))
	tree, err := parser.Parse(ctx, opts.InputPath, content)
	if err != nil {
		ierr := &bundle.InputError{Path: opts.InputPath, Err: err}
		record(StepParse, stepStart, OutcomeFatal, ierr)
		return finish(ierr)
	}
	record(StepParse, stepStart, OutcomeOK, nil)

	// extract
	stepStart = time.Now()
	gen := opts.Generator
	if gen == nil {
		gen = codegen.NewSourceGenerator()
	}
	extractor := bundle.NewExtractor(gen,
		bundle.WithGenerateOptions(opts.Generate),
		bundle.WithRequireFunction(opts.RequireFunction))
	table, err := extractor.Extract(ctx, tree)
	if err != nil {
		record(StepExtract, stepStart, OutcomeFatal, err)
		return finish(err)
	}
	report.Modules = table.Len()
	report.Collisions = table.Collisions()
	record(StepExtract, stepStart, OutcomeOK, nil)

	// mkdir
	stepStart = time.Now()
	ext := opts.Extension
	if ext == "" {
		ext = output.DefaultExtension
	}
	writer := output.NewWriter(output.WithExtension(ext), output.WithProgress(opts.OnFile))
	if err := writer.EnsureDir(opts.OutputDir); err != nil {
		record(StepMkdir, stepStart, OutcomeFatal, err)
		return finish(err)
	}
	record(StepMkdir, stepStart, OutcomeOK, nil)

	// write
	stepStart = time.Now()
	written, err := writer.Write(table, opts.OutputDir)
	if err != nil {
		// The directory existed a moment ago; treat its loss like mkdir.
		record(StepWrite, stepStart, OutcomeFatal, err)
		return finish(err)
	}
	report.Files = written.Files
	if failures := written.Failures(); len(failures) > 0 {
		record(StepWrite, stepStart, OutcomeRecoverable, fmt.Errorf("%d of %d files failed: %w",
			len(failures), len(written.Files), failures[0]))
	} else {
		record(StepWrite, stepStart, OutcomeOK, nil)
	}

	// manifest
	if opts.Manifest {
		stepStart = time.Now()
		name := opts.ManifestName
		if name == "" {
			name = output.DefaultManifestName
		}
		m := writer.BuildManifest(opts.InputPath, content, table, written)
		if err := writer.WriteManifest(m, opts.OutputDir, name); err != nil {
			record(StepManifest, stepStart, OutcomeRecoverable, err)
		} else {
			record(StepManifest, stepStart, OutcomeOK, nil)
		}
	}

	return finish(nil)
}
