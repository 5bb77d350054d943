package bundle

import "fmt"

// InputError reports a bundle that could not be read or parsed. It is fatal
// and raised before any extraction.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("error reading or parsing file %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// GenerationFailure reports a module body that could not be regenerated. It
// aborts the whole extraction.
type GenerationFailure struct {
	Name string
	Line int
	Err  error
}

func (e *GenerationFailure) Error() string {
	return fmt.Sprintf("error generating module %q (line %d): %v", e.Name, e.Line, e.Err)
}

func (e *GenerationFailure) Unwrap() error { return e.Err }

// DirectoryError reports a destination directory that could not be created.
// It is fatal and raised before any file is written.
type DirectoryError struct {
	Path string
	Err  error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("error creating directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryError) Unwrap() error { return e.Err }

// WriteFailure reports one output file that could not be written. Writing
// continues with the remaining files.
type WriteFailure struct {
	Path string
	Err  error
}

func (e *WriteFailure) Error() string {
	return fmt.Sprintf("error writing file %s: %v", e.Path, e.Err)
}

func (e *WriteFailure) Unwrap() error { return e.Err }
