package cmd

import (
	"github.com/clubworks/hookconf/internal/config"
	"github.com/clubworks/hookconf/pkg/loader"
	"github.com/clubworks/hookconf/pkg/log"
	"github.com/clubworks/hookconf/pkg/persist"
	"github.com/clubworks/hookconf/pkg/schema"
	"github.com/clubworks/hookconf/pkg/validate"
	"github.com/clubworks/hookconf/pkg/version"
)

// app bundles the component graph a CLI invocation works with. Commands
// construct it once; there is no global singleton.
type app struct {
	cfg       *config.Config
	logger    log.Logger
	registry  *schema.Registry
	validator *validate.Validator
	versions  *version.Manager
	loader    *loader.Loader
	store     *persist.Store
}

// newApp wires the full component graph from the tool configuration.
func newApp() (*app, error) {
	cfg, err := loadToolConfig()
	if err != nil {
		return nil, err
	}
	logger := newCLILogger(cfg)

	registry := schema.NewRegistry()
	validator := validate.NewValidator(registry, logger)
	versions := version.NewManager(logger)
	ldr := loader.NewLoader(loader.Options{
		Dir:       cfg.ConfigDir,
		BaseName:  cfg.BaseName,
		EnvPrefix: cfg.EnvPrefix,
		CacheTTL:  cfg.CacheTTL,
	}, validator, versions, logger)

	storeOpts := persist.DefaultOptions()
	storeOpts.BackupDir = cfg.Backup.Dir
	if cfg.Backup.MaxBackups > 0 {
		storeOpts.MaxBackups = cfg.Backup.MaxBackups
	}
	store := persist.NewStore(storeOpts, validator, logger)

	return &app{
		cfg:       cfg,
		logger:    logger,
		registry:  registry,
		validator: validator,
		versions:  versions,
		loader:    ldr,
		store:     store,
	}, nil
}
