package output

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"unbundle/internal/bundle"
	"unbundle/internal/logging"

	"gopkg.in/yaml.v3"
)

// DefaultManifestName is the manifest file written next to the modules.
const DefaultManifestName = "unbundle-manifest.yaml"

// Manifest describes one extraction. It holds no timestamps or run IDs so
// that repeated runs over the same input produce the same manifest.
type Manifest struct {
	Input       string          `yaml:"input"`
	InputSHA256 string          `yaml:"input_sha256"`
	Modules     []ManifestEntry `yaml:"modules"`
	Collisions  []ManifestClash `yaml:"collisions,omitempty"`
}

// ManifestEntry describes one written module.
type ManifestEntry struct {
	File    string `yaml:"file"`
	Name    string `yaml:"name"`
	Line    int    `yaml:"line"`
	Bytes   int    `yaml:"bytes"`
	SHA256  string `yaml:"sha256"`
	Written bool   `yaml:"written"`
}

// ManifestClash records a key collision.
type ManifestClash struct {
	Key      string `yaml:"key"`
	Replaced string `yaml:"replaced"`
	By       string `yaml:"by"`
}

// Digest returns the hex SHA-256 of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// BuildManifest describes table as written by w. report may be nil when
// nothing was written.
func (w *Writer) BuildManifest(input string, content []byte, table *bundle.ModuleTable, report *WriteReport) *Manifest {
	written := make(map[string]bool)
	if report != nil {
		for _, f := range report.Files {
			written[f.Key] = f.OK()
		}
	}

	m := &Manifest{
		Input:       input,
		InputSHA256: Digest(content),
		Modules:     make([]ManifestEntry, 0, table.Len()),
	}
	for key, mod := range table.All() {
		m.Modules = append(m.Modules, ManifestEntry{
			File:    w.FileName(key),
			Name:    mod.RawName,
			Line:    mod.Line,
			Bytes:   len(mod.Source),
			SHA256:  Digest([]byte(mod.Source)),
			Written: written[key],
		})
	}
	for _, c := range table.Collisions() {
		m.Collisions = append(m.Collisions, ManifestClash{Key: c.Key, Replaced: c.Replaced, By: c.By})
	}
	return m
}

// WriteManifest writes m as YAML to dir/name.
func (w *Writer) WriteManifest(m *Manifest, dir, name string) error {
	path := filepath.Join(dir, name)
	data, err := yaml.Marshal(m)
	if err != nil {
		return &bundle.WriteFailure{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, w.options.FileMode); err != nil {
		failure := &bundle.WriteFailure{Path: path, Err: err}
		logging.FileOp("manifest", path, len(data), failure)
		return failure
	}
	logging.FileOp("manifest", path, len(data), nil)
	logging.Write("Saved manifest %s", path)
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
