// Package output persists a ModuleTable as one file per module.
package output

import (
	"fmt"
	"os"
	"path/filepath"

	"unbundle/internal/bundle"
	"unbundle/internal/logging"
)

// DefaultExtension is appended to every module key.
const DefaultExtension = ".js"

// FileResult is the outcome of writing one module.
type FileResult struct {
	Key   string
	Path  string
	Bytes int
	Err   *bundle.WriteFailure // nil on success
}

// OK reports whether the file was written.
func (r FileResult) OK() bool { return r.Err == nil }

// WriteReport collects the per-file results of one Write call.
type WriteReport struct {
	Dir   string
	Files []FileResult
}

// Written returns the number of files written successfully.
func (r *WriteReport) Written() int {
	n := 0
	for _, f := range r.Files {
		if f.OK() {
			n++
		}
	}
	return n
}

// Failures returns the write failures in table order.
func (r *WriteReport) Failures() []*bundle.WriteFailure {
	var out []*bundle.WriteFailure
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f.Err)
		}
	}
	return out
}

// WriterOptions configures Writer behavior.
type WriterOptions struct {
	Extension string
	FileMode  os.FileMode
	DirMode   os.FileMode

	// OnFile is called after each file attempt, in table order.
	OnFile func(FileResult)
}

// WriterOption is a functional option for configuring Writer.
type WriterOption func(*WriterOptions)

// WithExtension sets the extension appended to module keys.
func WithExtension(ext string) WriterOption {
	return func(o *WriterOptions) {
		o.Extension = ext
	}
}

// WithProgress registers a callback invoked after every file attempt.
func WithProgress(fn func(FileResult)) WriterOption {
	return func(o *WriterOptions) {
		o.OnFile = fn
	}
}

// Writer writes modules into a destination directory.
type Writer struct {
	options WriterOptions
}

// NewWriter creates a Writer with the given options.
func NewWriter(opts ...WriterOption) *Writer {
	options := WriterOptions{
		Extension: DefaultExtension,
		FileMode:  0644,
		DirMode:   0755,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &Writer{options: options}
}

// EnsureDir creates dir and any missing parents. An existing directory is
// not an error.
func (w *Writer) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, w.options.DirMode); err != nil {
		logging.WriteDebug("error creating directory %s: %v", dir, err)
		return &bundle.DirectoryError{Path: dir, Err: err}
	}
	return nil
}

// Write ensures dir exists, then writes every module of table to
// dir/<key><ext> with exactly the module's source as content. A failed
// directory creation is returned as a *bundle.DirectoryError; per-file
// failures are collected in the report and do not stop the remaining writes.
func (w *Writer) Write(table *bundle.ModuleTable, dir string) (*WriteReport, error) {
	if err := w.EnsureDir(dir); err != nil {
		return nil, err
	}

	report := &WriteReport{Dir: dir, Files: make([]FileResult, 0, table.Len())}
	for key, m := range table.All() {
		path := filepath.Join(dir, w.FileName(key))
		res := FileResult{Key: key, Path: path, Bytes: len(m.Source)}
		if err := os.WriteFile(path, []byte(m.Source), w.options.FileMode); err != nil {
			res.Err = &bundle.WriteFailure{Path: path, Err: err}
			// With a progress callback the caller reports the failure.
			if w.options.OnFile != nil {
				logging.WriteDebug("%v", res.Err)
			} else {
				logging.WriteError("%v", res.Err)
			}
		} else {
			logging.Write("Saved %s", path)
		}
		logging.FileOp("write", path, res.Bytes, errOrNil(res.Err))
		report.Files = append(report.Files, res)
		if w.options.OnFile != nil {
			w.options.OnFile(res)
		}
	}
	return report, nil
}

// FileName returns the file name used for key.
func (w *Writer) FileName(key string) string {
	return fmt.Sprintf("%s%s", key, w.options.Extension)
}

// errOrNil avoids handing a typed nil pointer to an error interface.
func errOrNil(f *bundle.WriteFailure) error {
	if f == nil {
		return nil
	}
	return f
}
