package persist

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubworks/hookconf/pkg/log"
	"github.com/clubworks/hookconf/pkg/schema"
	"github.com/clubworks/hookconf/pkg/types"
	"github.com/clubworks/hookconf/pkg/validate"
)

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	logger := log.NewTestLogger()
	validator := validate.NewValidator(schema.NewRegistry(), logger)
	return NewStore(opts, validator, logger)
}

func TestSaveAndLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hookconf.json")
	store := newTestStore(t, DefaultOptions())

	cfg := types.NewDefaultConfiguration()
	backup, err := store.Save(cfg, path, "initial")
	require.NoError(t, err)
	assert.Nil(t, backup, "first save has nothing to back up")

	loaded, err := store.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Version, loaded.Version)
	assert.Equal(t, cfg.Global, loaded.Global)
	assert.Equal(t, cfg.ContentTypes, loaded.ContentTypes)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestSaveRefusesInvalidConfiguration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hookconf.json")
	store := newTestStore(t, DefaultOptions())

	cfg := types.NewDefaultConfiguration()
	cfg.Global.LogLevel = "shouting"

	_, err := store.Save(cfg, path, "bad")
	require.Error(t, err)
	assert.True(t, types.IsValidationError(err))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "nothing may be written for an invalid configuration")
}

func TestSaveCreatesBackupOfExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hookconf.json")
	store := newTestStore(t, DefaultOptions())

	cfg := types.NewDefaultConfiguration()
	_, err := store.Save(cfg, path, "initial")
	require.NoError(t, err)

	updated := cfg.Clone()
	updated.Global.LogLevel = "warn"
	backup, err := store.Save(updated, path, "tuning")
	require.NoError(t, err)
	require.NotNil(t, backup)

	assert.Equal(t, path, backup.OriginalPath)
	assert.Equal(t, "tuning", backup.Reason)
	assert.Equal(t, cfg.Version, backup.Version)
	assert.True(t, strings.HasSuffix(backup.BackupPath, ".backup.json"))
	assert.FileExists(t, backup.BackupPath)

	// The backup embeds the prior configuration.
	restored, err := store.Restore(backup.BackupPath, "", false)
	require.NoError(t, err)
	assert.Equal(t, "info", restored.Global.LogLevel)
}

func TestRestoreWithPreRestoreBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hookconf.json")
	store := newTestStore(t, DefaultOptions())

	original := types.NewDefaultConfiguration()
	_, err := store.Save(original, path, "initial")
	require.NoError(t, err)

	changed := original.Clone()
	changed.Global.LogLevel = "error"
	backup, err := store.Save(changed, path, "change")
	require.NoError(t, err)

	restored, err := store.Restore(backup.BackupPath, "", true)
	require.NoError(t, err)
	assert.Equal(t, "info", restored.Global.LogLevel)

	onDisk, err := store.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "info", onDisk.Global.LogLevel)

	// The pre-restore state was preserved as its own backup.
	backups, err := store.ListBackups(path)
	require.NoError(t, err)
	found := false
	for _, b := range backups {
		if b.Reason == "pre-restore" {
			found = true
		}
	}
	assert.True(t, found, "expected a pre-restore backup")
}

func TestVerifyBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hookconf.json")
	store := newTestStore(t, DefaultOptions())

	cfg := types.NewDefaultConfiguration()
	_, err := store.Save(cfg, path, "initial")
	require.NoError(t, err)

	backup, err := store.CreateBackup(path, "manual")
	require.NoError(t, err)

	require.NoError(t, store.VerifyBackup(backup.BackupPath))

	// Corrupt the embedded configuration without touching the recorded
	// checksum.
	data, err := os.ReadFile(backup.BackupPath)
	require.NoError(t, err)
	var artifact map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &artifact))
	artifact["configuration"].(map[string]interface{})["version"] = "9.9.9"
	tampered, err := json.Marshal(artifact)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(backup.BackupPath, tampered, 0o644))

	err = store.VerifyBackup(backup.BackupPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestListBackupsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hookconf.json")
	store := newTestStore(t, DefaultOptions())

	cfg := types.NewDefaultConfiguration()
	_, err := store.Save(cfg, path, "initial")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := store.CreateBackup(path, "manual")
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	backups, err := store.ListBackups(path)
	require.NoError(t, err)
	require.Len(t, backups, 3)
	for i := 1; i < len(backups); i++ {
		assert.False(t, backups[i].Timestamp.After(backups[i-1].Timestamp),
			"backups must be sorted newest first")
	}
}

func TestBackupPruning(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hookconf.json")
	opts := DefaultOptions()
	opts.MaxBackups = 2
	store := newTestStore(t, opts)

	cfg := types.NewDefaultConfiguration()
	_, err := store.Save(cfg, path, "initial")
	require.NoError(t, err)

	// Each save after the first creates a backup; pruning keeps two.
	for i := 0; i < 4; i++ {
		next := cfg.Clone()
		next.Global.RetryAttempts = i + 1
		_, err := store.Save(next, path, "iteration")
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	backups, err := store.ListBackups(path)
	require.NoError(t, err)
	assert.Len(t, backups, 2)
}

func TestSeparateBackupDir(t *testing.T) {
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "backups")
	path := filepath.Join(dir, "hookconf.json")

	opts := DefaultOptions()
	opts.BackupDir = backupDir
	store := newTestStore(t, opts)

	cfg := types.NewDefaultConfiguration()
	_, err := store.Save(cfg, path, "initial")
	require.NoError(t, err)

	backup, err := store.CreateBackup(path, "manual")
	require.NoError(t, err)
	assert.Equal(t, backupDir, filepath.Dir(backup.BackupPath))

	backups, err := store.ListBackups(path)
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestListBackupsIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hookconf.json")
	store := newTestStore(t, DefaultOptions())

	cfg := types.NewDefaultConfiguration()
	_, err := store.Save(cfg, path, "initial")
	require.NoError(t, err)
	_, err = store.CreateBackup(path, "manual")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other_2020-01-01T00-00-00.000.backup.json"), []byte("{}"), 0o644))

	backups, err := store.ListBackups(path)
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestExportEnvFormat(t *testing.T) {
	store := newTestStore(t, DefaultOptions())
	cfg := types.NewDefaultConfiguration()

	out, err := store.ExportEnv(cfg, "")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")

	assert.Contains(t, lines, "HOOK_CONFIG_GLOBAL_LOGLEVEL=info")
	assert.Contains(t, lines, "HOOK_CONFIG_FACTORY_JOBQUEUESIZE=100")
	assert.Contains(t, lines, "HOOK_CONFIG_VERSION=1.0.0")

	// Output is sorted by key.
	for i := 1; i < len(lines); i++ {
		assert.LessOrEqual(t, lines[i-1], lines[i])
	}
}

func TestExportJSONAndYAML(t *testing.T) {
	store := newTestStore(t, DefaultOptions())
	cfg := types.NewDefaultConfiguration()

	jsonOut, err := store.ExportJSON(cfg)
	require.NoError(t, err)
	var decoded types.SystemConfiguration
	require.NoError(t, json.Unmarshal(jsonOut, &decoded))
	assert.Equal(t, cfg.Version, decoded.Version)

	yamlOut, err := store.ExportYAML(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(yamlOut), "logLevel: info")
}

func TestFlatten(t *testing.T) {
	flat := Flatten(types.Document{
		"global": map[string]interface{}{
			"logLevel": "info",
			"nested":   map[string]interface{}{"x": 1},
		},
		"enabled": true,
	})

	assert.Equal(t, "info", flat["global.logLevel"])
	assert.Equal(t, "1", flat["global.nested.x"])
	assert.Equal(t, "true", flat["enabled"])
}
