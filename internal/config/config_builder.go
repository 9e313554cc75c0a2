package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"

	"github.com/MKhiriev/go-crm-sync/models"
)

// DefaultEnvFile is loaded when no --env-file is given. Its absence is not an
// error.
const DefaultEnvFile = ".env"

type configBuilder struct {
	configs []*StructuredConfig
	err     error

	// environ overrides the process environment in tests.
	environ map[string]string
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{
		configs: make([]*StructuredConfig, 0, 4),
	}
}

func (b *configBuilder) build() (*StructuredConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occured during building config: %w", b.err)
	}

	config := new(StructuredConfig)
	for _, cfg := range b.configs {
		if err := mergo.Merge(config, cfg, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	config.normalize()
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (b *configBuilder) withDefaults() *configBuilder {
	b.configs = append(b.configs, defaults())
	return b
}

// withDotEnv loads path into the process environment without overriding
// variables that are already set. An explicit path must exist.
func (b *configBuilder) withDotEnv(path string) *configBuilder {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return b
		}
		b.err = errors.Join(b.err, fmt.Errorf("error loading env file %s: %w", path, err))
	}
	return b
}

// withFile merges the configuration file named by path, or by the CONFIG
// environment variable when path is empty.
func (b *configBuilder) withFile(path string) *configBuilder {
	if path == "" {
		path = b.getenv("CONFIG")
	}
	if path == "" {
		return b
	}

	fileCfg, err := parseFile(path)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}
	fileCfg.ConfigFilePath = path

	b.configs = append(b.configs, fileCfg)
	return b
}

func (b *configBuilder) withEnv() *configBuilder {
	envCfg := &StructuredConfig{}
	if err := parseEnv(envCfg, b.environ); err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, envCfg)
	return b
}

func (b *configBuilder) withFlags(flags *Flags) *configBuilder {
	b.configs = append(b.configs, flags.toConfig())
	return b
}

func (b *configBuilder) getenv(key string) string {
	if b.environ != nil {
		return b.environ[key]
	}
	return os.Getenv(key)
}

func defaults() *StructuredConfig {
	return &StructuredConfig{
		CRM: CRM{
			URL:            "http://localhost:3000",
			RequestTimeout: 30 * time.Second,
		},
		Sheet: Sheet{Path: "twenty_crm_data.xlsx"},
		State: State{Path: ".sync_state.json"},
		Sync: Sync{
			Strategy:        models.StrategyNewestWins,
			IntervalMinutes: 30,
			BatchSize:       60,
			RateLimitDelay:  0.7,
		},
		LinkedIn: LinkedIn{
			RedirectURI:     "http://localhost:8787/callback",
			Scope:           "r_dma_portability_3rd_party",
			TokenPath:       ".linkedin_token.json",
			SnapshotDomains: []string{"PROFILE", "CONNECTIONS", "POSITIONS", "SKILLS", "EDUCATION"},
			APIURL:          "https://api.linkedin.com",
			AuthURL:         "https://www.linkedin.com/oauth/v2",
			AuthTimeout:     2 * time.Minute,
		},
		Objects: models.DefaultObjects(),
	}
}

// normalize applies aliases and trims list entries.
func (cfg *StructuredConfig) normalize() {
	cfg.Sync.Strategy = NormalizeStrategy(cfg.Sync.Strategy)
	cfg.Sync.Only = trimAll(cfg.Sync.Only)
	cfg.LinkedIn.SnapshotDomains = trimAll(cfg.LinkedIn.SnapshotDomains)
	cfg.CRM.URL = strings.TrimRight(strings.TrimSpace(cfg.CRM.URL), "/")
	cfg.State.Backend = strings.ToLower(strings.TrimSpace(cfg.State.Backend))
}

// NormalizeStrategy maps legacy strategy names to their current form.
func NormalizeStrategy(s models.Strategy) models.Strategy {
	switch strings.ToLower(strings.TrimSpace(string(s))) {
	case "crm_wins", "remote_wins":
		return models.StrategyRemoteWins
	case "excel_wins", "tabular_wins":
		return models.StrategyTabularWins
	case "newest_wins":
		return models.StrategyNewestWins
	default:
		return s
	}
}

func trimAll(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
