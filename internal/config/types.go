// Package config holds the user-tunable settings of tv and their embedded
// defaults.
package config

// Search scopes.
const (
	ScopeAll     = "all"
	ScopeVisible = "visible"
)

// Key modes.
const (
	KeyModeVim      = "vim"
	KeyModeFunction = "function"
)

// Config is the merged configuration: embedded defaults, then the user's
// file, then CLI flags.
type Config struct {
	Display DisplayConfig `yaml:"display" toml:"display" yamlcomment:"Table layout settings"`
	Limits  LimitsConfig  `yaml:"limits" toml:"limits" yamlcomment:"Guards applied before a file is decoded"`
	Search  SearchConfig  `yaml:"search" toml:"search" yamlcomment:"Search behavior"`
	Keys    KeysConfig    `yaml:"keys" toml:"keys" yamlcomment:"Key bindings"`
	Log     LogConfig     `yaml:"log" toml:"log" yamlcomment:"Diagnostic logging"`
}

type DisplayConfig struct {
	MaxColumnWidth int  `yaml:"max_column_width" toml:"max_column_width" yamlcomment:"Widest a normal column is drawn; 0 disables the cap"`
	ColumnMargin   int  `yaml:"column_margin" toml:"column_margin" yamlcomment:"Blank cells added to every column"`
	ShowIndex      bool `yaml:"show_index" toml:"show_index" yamlcomment:"Show original row numbers"`
	NoColor        bool `yaml:"no_color" toml:"no_color" yamlcomment:"Render without colors"`
}

type LimitsConfig struct {
	MaxFileSize int64 `yaml:"max_file_size" toml:"max_file_size" yamlcomment:"Largest file accepted, in bytes; 0 disables"`
	MaxRows     int   `yaml:"max_rows" toml:"max_rows" yamlcomment:"Most rows accepted; 0 disables"`
	Workers     int   `yaml:"workers" toml:"workers" yamlcomment:"Concurrent column decoders; 0 uses all CPUs"`
}

type SearchConfig struct {
	Scope      string `yaml:"scope" toml:"scope" yamlcomment:"Columns searched: all or visible"`
	IgnoreCase bool   `yaml:"ignore_case" toml:"ignore_case" yamlcomment:"Case-insensitive substring search"`
}

type KeysConfig struct {
	Mode     string            `yaml:"mode" toml:"mode" yamlcomment:"Key mode: vim or function"`
	Bindings map[string]string `yaml:"bindings,omitempty" toml:"bindings,omitempty" yamlcomment:"Extra key to action bindings"`
}

type LogConfig struct {
	File  string `yaml:"file,omitempty" toml:"file,omitempty" yamlcomment:"Write JSON logs to this file"`
	Level int8   `yaml:"level" toml:"level" yamlcomment:"Verbosity; 1 enables debug"`
}
