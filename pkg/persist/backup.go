package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/clubworks/hookconf/pkg/log"
	"github.com/clubworks/hookconf/pkg/types"
)

// backupTimestampLayout is the ISO-like, filename-safe timestamp embedded in
// backup names.
const backupTimestampLayout = "2006-01-02T15-04-05.000"

// backupSuffix terminates every backup artifact name.
const backupSuffix = ".backup.json"

// BackupMetadata describes one backup artifact.
type BackupMetadata struct {
	OriginalPath string    `json:"originalPath"`
	BackupPath   string    `json:"backupPath"`
	Timestamp    time.Time `json:"timestamp"`
	Version      string    `json:"version"`
	Environment  string    `json:"environment"`
	Reason       string    `json:"reason"`
	Size         int64     `json:"size"`
	Checksum     string    `json:"checksum"`
}

// backupArtifact is the on-disk shape of a backup file.
type backupArtifact struct {
	Metadata      BackupMetadata `json:"metadata"`
	Configuration types.Document `json:"configuration"`
}

// CreateBackup snapshots the current file at path into a timestamped backup
// artifact embedding metadata and the full prior configuration.
func (s *Store) CreateBackup(path, reason string) (*BackupMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewPersistenceError(path, "failed to read file for backup", err)
	}

	var doc types.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, types.NewPersistenceError(path, "existing file is not valid configuration", err)
	}

	dir, err := s.ensureBackupDir(path)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	backupPath := filepath.Join(dir, fmt.Sprintf("%s_%s%s",
		baseNameWithoutExt(path), now.Format(backupTimestampLayout), backupSuffix))

	version, _ := doc["version"].(string)
	environment := ""
	if meta, ok := doc["metadata"].(map[string]interface{}); ok {
		environment, _ = meta["environment"].(string)
	}

	checksum, err := documentChecksum(doc)
	if err != nil {
		return nil, types.NewPersistenceError(path, "failed to checksum configuration", err)
	}

	artifact := backupArtifact{
		Metadata: BackupMetadata{
			OriginalPath: path,
			BackupPath:   backupPath,
			Timestamp:    now,
			Version:      version,
			Environment:  environment,
			Reason:       reason,
			Size:         int64(len(data)),
			Checksum:     checksum,
		},
		Configuration: doc,
	}

	encoded, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return nil, types.NewPersistenceError(backupPath, "failed to encode backup", err)
	}
	if err := s.writeAtomic(backupPath, encoded); err != nil {
		return nil, err
	}

	s.logger.Info("backup created",
		log.Str("original", path),
		log.Str("backup", backupPath),
		log.Str("reason", reason))
	return &artifact.Metadata, nil
}

// Restore reads a backup artifact, validates its embedded configuration and
// writes it to the target path (the backup's original path when target is
// empty). When backupCurrent is set, the current target file is backed up
// first.
func (s *Store) Restore(backupPath, targetPath string, backupCurrent bool) (*types.SystemConfiguration, error) {
	artifact, err := s.readBackup(backupPath)
	if err != nil {
		return nil, err
	}

	result := s.validator.ValidateSystemDocument(artifact.Configuration)
	if !result.IsValid {
		return nil, types.NewValidationError(
			"backup holds invalid configuration: %v", result.ErrorMessages())
	}

	if targetPath == "" {
		targetPath = artifact.Metadata.OriginalPath
	}

	if backupCurrent {
		if _, statErr := os.Stat(targetPath); statErr == nil {
			if _, err := s.CreateBackup(targetPath, "pre-restore"); err != nil {
				return nil, err
			}
		}
	}

	cfg, err := types.FromDocument(artifact.Configuration)
	if err != nil {
		return nil, types.NewPersistenceError(backupPath, "failed to decode backup configuration", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, types.NewPersistenceError(targetPath, "failed to encode configuration", err)
	}
	if err := s.writeAtomic(targetPath, data); err != nil {
		return nil, err
	}

	s.logger.Info("configuration restored",
		log.Str("backup", backupPath),
		log.Str("target", targetPath))
	return cfg, nil
}

// VerifyBackup recomputes the checksum and re-validates the embedded
// configuration. Mismatches are reported, never silently repaired.
func (s *Store) VerifyBackup(backupPath string) error {
	artifact, err := s.readBackup(backupPath)
	if err != nil {
		return err
	}

	checksum, err := documentChecksum(artifact.Configuration)
	if err != nil {
		return types.NewPersistenceError(backupPath, "failed to checksum backup", err)
	}
	if checksum != artifact.Metadata.Checksum {
		return types.NewPersistenceError(backupPath,
			fmt.Sprintf("checksum mismatch: recorded %s, computed %s",
				artifact.Metadata.Checksum, checksum), nil)
	}

	result := s.validator.ValidateSystemDocument(artifact.Configuration)
	if !result.IsValid {
		return types.NewValidationError(
			"backup configuration fails validation: %v", result.ErrorMessages())
	}
	return nil
}

// ListBackups returns the metadata of every backup for the given original
// path, newest first.
func (s *Store) ListBackups(path string) ([]BackupMetadata, error) {
	dir := s.backupDirFor(path)
	prefix := baseNameWithoutExt(path) + "_"

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, types.NewPersistenceError(dir, "failed to list backups", err)
	}

	var backups []BackupMetadata
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, backupSuffix) {
			continue
		}
		artifact, readErr := s.readBackup(filepath.Join(dir, name))
		if readErr != nil {
			s.logger.Warn("skipping unreadable backup",
				log.Str("file", name), log.Err(readErr))
			continue
		}
		backups = append(backups, artifact.Metadata)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// pruneBackups removes the oldest backups beyond the retention count.
func (s *Store) pruneBackups(path string) error {
	backups, err := s.ListBackups(path)
	if err != nil {
		return err
	}
	if len(backups) <= s.opts.MaxBackups {
		return nil
	}
	for _, old := range backups[s.opts.MaxBackups:] {
		if err := os.Remove(old.BackupPath); err != nil {
			return types.NewPersistenceError(old.BackupPath, "failed to prune backup", err)
		}
		s.logger.Debug("pruned backup", log.Str("backup", old.BackupPath))
	}
	return nil
}

func (s *Store) readBackup(backupPath string) (*backupArtifact, error) {
	data, err := os.ReadFile(backupPath)
	if err != nil {
		return nil, types.NewPersistenceError(backupPath, "failed to read backup", err)
	}
	var artifact backupArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, types.NewPersistenceError(backupPath, "failed to parse backup", err)
	}
	return &artifact, nil
}

// documentChecksum computes the additive byte checksum of the canonical
// JSON encoding of a document, hex-encoded. Canonical encoding (Go's sorted
// map keys) keeps the sum reproducible across backup and verify.
func documentChecksum(doc types.Document) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	var sum uint64
	for _, b := range data {
		sum += uint64(b)
	}
	return fmt.Sprintf("%016x", sum), nil
}
