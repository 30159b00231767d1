package config

// Settings holds optional exporter settings read from uaexport.yaml
type Settings struct {
	DataDir         string `json:"data_dir" yaml:"data_dir"`                   // Output directory for monthly CSV files
	HeaderDelimiter string `json:"header_delimiter" yaml:"header_delimiter"`   // Namespace separator stripped from header names, e.g. "ga:"
	TrailingComma   *bool  `json:"trailing_comma,omitempty" yaml:"trailing_comma,omitempty"`
	LedgerPath      string `json:"ledger_path,omitempty" yaml:"ledger_path,omitempty"` // DuckDB run ledger, empty disables
}

// Exporter is the resolved configuration for one run
type Exporter struct {
	CredentialsFile string
	ViewID          string
	Settings        Settings
}

// DefaultSettings returns the settings used when no settings file exists
func DefaultSettings() Settings {
	trailing := true
	return Settings{
		DataDir:         DefaultDataDir,
		HeaderDelimiter: DefaultHeaderDelimiter,
		TrailingComma:   &trailing,
	}
}

// UseTrailingComma reports whether every CSV cell is followed by a comma
func (s Settings) UseTrailingComma() bool {
	if s.TrailingComma == nil {
		return true
	}
	return *s.TrailingComma
}
