package main

import (
	"os"
	"strings"

	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/2x3systems/hyperfold/libfold"
	"github.com/2x3systems/hyperfold/libfold/workspace"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk form of a hyperfold session.
type Config struct {
	Workspace hyperfold.WorkspaceOpts `yaml:"workspace"`
	Oracle    OracleConfig            `yaml:"oracle"`
}

// OracleConfig names the RNAfold executable to run.
type OracleConfig struct {
	Path string   `yaml:"path"`
	Args []string `yaml:"args"`
}

// DefaultConfig returns the config used when no file is given.
func DefaultConfig() Config {
	return Config{
		Workspace: workspace.DefaultOpts(""),
	}
}

// LoadConfig reads a yaml config from pathname, filling unset fields from DefaultConfig.
// An empty pathname returns DefaultConfig.
func LoadConfig(pathname string) (Config, error) {
	cfg := DefaultConfig()
	if pathname == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(pathname)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %q", pathname)
	}
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(hyperfold.ErrInvalidArgument, "parsing config %q: %v", pathname, err)
	}
	return cfg, nil
}

// Validate checks everything that can be checked before folding starts.
func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.Workspace.Sequence) == "" {
		return errors.Wrap(hyperfold.ErrInvalidArgument, "no sequence given")
	}
	if _, err := hyperfold.NewGrid(cfg.Workspace.Store.Resolution); err != nil {
		return err
	}
	if cfg.Workspace.Sweep.Workers < 0 {
		return errors.Wrapf(hyperfold.ErrInvalidArgument, "workers %d", cfg.Workspace.Sweep.Workers)
	}
	return nil
}

// NewOracle returns the fold oracle the config names.
func (cfg *Config) NewOracle() hyperfold.Oracle {
	return libfold.RNAfoldOracle{
		Path:      cfg.Oracle.Path,
		ExtraArgs: cfg.Oracle.Args,
	}
}

// loadConfig applies the command line overrides on top of the config file.
func loadConfig() (Config, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}
	if sequence != "" {
		cfg.Workspace.Sequence = sequence
	}
	if strategy != "" {
		if cfg.Workspace.Store.Strategy, err = hyperfold.ParseStoreStrategy(strategy); err != nil {
			return cfg, err
		}
	}
	if workers >= 0 {
		cfg.Workspace.Sweep.Workers = workers
	}
	return cfg, cfg.Validate()
}

func openWorkspace() (*workspace.Workspace, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return workspace.New(cfg.Workspace, cfg.NewOracle(), nil)
}
