package config

import (
	"github.com/spf13/pflag"

	"github.com/MKhiriev/go-crm-sync/models"
)

// Flags holds the command-line overrides shared by every command.
type Flags struct {
	ConfigPath string
	EnvFile    string
	ExcelPath  string
	StatePath  string
	Strategy   string
	Only       []string
	Verbose    bool
}

// Register binds the flags to fs. It is called on the root command's
// persistent flag set.
//
// Flags:
//
//	-v, --verbose     debug logging
//	-c, --config      YAML or JSON configuration file
//	    --env-file    .env file to load (default ".env")
//	    --excel       workbook path
//	    --state       sync state path
//	    --strategy    remote_wins | tabular_wins | newest_wins
//	    --only        comma-separated object types to sync
func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "enable debug logging")
	fs.StringVarP(&f.ConfigPath, "config", "c", "", "path to a YAML or JSON config file")
	fs.StringVar(&f.EnvFile, "env-file", "", "path to a .env file (default \".env\")")
	fs.StringVar(&f.ExcelPath, "excel", "", "path to the .xlsx workbook")
	fs.StringVar(&f.StatePath, "state", "", "path to the sync state file")
	fs.StringVar(&f.Strategy, "strategy", "", "conflict strategy: remote_wins, tabular_wins or newest_wins")
	fs.StringSliceVar(&f.Only, "only", nil, "restrict the run to these object types")
}

// toConfig converts the flags to a sparse [StructuredConfig]; unset flags
// stay zero so that mergo leaves earlier sources untouched.
func (f *Flags) toConfig() *StructuredConfig {
	cfg := &StructuredConfig{
		Sheet: Sheet{Path: f.ExcelPath},
		State: State{Path: f.StatePath},
		Sync: Sync{
			Strategy: models.Strategy(f.Strategy),
			Only:     f.Only,
		},
		ConfigFilePath: f.ConfigPath,
	}
	if f.Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg
}
