package config

// WatchConfig controls watch mode.
type WatchConfig struct {
	// Debounce is how long the bundle must stay unchanged before a re-run.
	Debounce string `yaml:"debounce" json:"debounce,omitempty"`
}
