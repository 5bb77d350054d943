package config

// ParseConfig controls bundle parsing.
type ParseConfig struct {
	// MaxFileSize rejects larger bundles. Zero disables the limit.
	MaxFileSize int `yaml:"max_file_size" json:"max_file_size,omitempty"`
}

// DefaultParseConfig returns defaults for parsing.
func DefaultParseConfig() ParseConfig {
	return ParseConfig{
		MaxFileSize: 64 * 1024 * 1024,
	}
}

// GenerateConfig controls how module bodies are regenerated.
type GenerateConfig struct {
	RetainLines          bool `yaml:"retain_lines" json:"retain_lines"`
	Comments             bool `yaml:"comments" json:"comments"`
	Compact              bool `yaml:"compact" json:"compact"`
	RetainFunctionParens bool `yaml:"retain_function_parens" json:"retain_function_parens"`
	Dedent               bool `yaml:"dedent" json:"dedent"`
}

// DefaultGenerateConfig keeps lines, comments and function parentheses and
// uses expanded layout.
func DefaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		RetainLines:          true,
		Comments:             true,
		Compact:              false,
		RetainFunctionParens: true,
		Dedent:               true,
	}
}

// ExtractConfig controls module recognition.
type ExtractConfig struct {
	// RequireFunction skips table entries whose value is not a function.
	RequireFunction bool `yaml:"require_function" json:"require_function,omitempty"`
}
