// Package persist durably stores configuration with backup and atomic-write
// guarantees.
package persist

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/clubworks/hookconf/pkg/log"
	"github.com/clubworks/hookconf/pkg/types"
	"github.com/clubworks/hookconf/pkg/validate"
)

// Options configures a Store.
type Options struct {
	// BackupDir is where backup artifacts are written. Empty means next to
	// the original file.
	BackupDir string

	// MaxBackups is the retention count per base file; oldest backups
	// beyond it are pruned. Zero disables pruning.
	MaxBackups int

	// FileMode applied to written configuration files.
	FileMode os.FileMode

	// ValidateOnSave controls whether Save validates before writing.
	ValidateOnSave bool
}

// DefaultOptions are the store defaults: ten retained backups, 0644 files,
// validation on.
func DefaultOptions() Options {
	return Options{
		MaxBackups:     10,
		FileMode:       0o644,
		ValidateOnSave: true,
	}
}

// Store persists configuration snapshots.
type Store struct {
	opts      Options
	validator *validate.Validator
	logger    log.Logger
}

// NewStore creates a persistence store.
func NewStore(opts Options, validator *validate.Validator, logger log.Logger) *Store {
	if opts.FileMode == 0 {
		opts.FileMode = 0o644
	}
	return &Store{
		opts:      opts,
		validator: validator,
		logger:    logger.WithComponent("persist"),
	}
}

// Save validates the configuration, backs up the existing file at the path,
// then writes the new content atomically and prunes old backups.
func (s *Store) Save(cfg *types.SystemConfiguration, path, reason string) (*BackupMetadata, error) {
	if s.opts.ValidateOnSave {
		result := s.validator.ValidateSystem(cfg)
		if !result.IsValid {
			return nil, types.NewValidationError(
				"refusing to save invalid configuration: %v", result.ErrorMessages())
		}
	}

	var backup *BackupMetadata
	if _, err := os.Stat(path); err == nil {
		b, backupErr := s.CreateBackup(path, reason)
		if backupErr != nil {
			return nil, backupErr
		}
		backup = b
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, types.NewPersistenceError(path, "failed to encode configuration", err)
	}

	if err := s.writeAtomic(path, data); err != nil {
		return nil, err
	}

	if s.opts.MaxBackups > 0 {
		if err := s.pruneBackups(path); err != nil {
			s.logger.Warn("backup pruning failed", log.Err(err))
		}
	}

	s.logger.Info("configuration saved",
		log.Str("path", path),
		log.Str("reason", reason))
	return backup, nil
}

// writeAtomic writes data to a temp file in the target directory and renames
// it over the destination. The temp file is removed on failure.
func (s *Store) writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return types.NewPersistenceError(path, "failed to create directory", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return types.NewPersistenceError(path, "failed to create temp file", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return types.NewPersistenceError(path, "failed to write temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return types.NewPersistenceError(path, "failed to close temp file", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return types.NewPersistenceError(path, "failed to replace file", err)
	}

	if err := os.Chmod(path, s.opts.FileMode); err != nil {
		return types.NewPersistenceError(path, "failed to set file mode", err)
	}
	return nil
}

// LoadFile reads and decodes a configuration file.
func (s *Store) LoadFile(path string) (*types.SystemConfiguration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewPersistenceError(path, "failed to read configuration", err)
	}
	var cfg types.SystemConfiguration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, types.NewPersistenceError(path, "failed to parse configuration", err)
	}
	return &cfg, nil
}

func (s *Store) backupDirFor(path string) string {
	if s.opts.BackupDir != "" {
		return s.opts.BackupDir
	}
	return filepath.Dir(path)
}

func baseNameWithoutExt(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}

func (s *Store) ensureBackupDir(path string) (string, error) {
	dir := s.backupDirFor(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", types.NewPersistenceError(dir, "failed to create backup directory", err)
	}
	return dir, nil
}
