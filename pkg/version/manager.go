package version

import (
	"time"

	"github.com/clubworks/hookconf/pkg/log"
	"github.com/clubworks/hookconf/pkg/types"
)

// maxHistoryEntries bounds the in-memory migration audit log.
const maxHistoryEntries = 100

// MigrateFunc transforms a configuration document from one version to the
// next.
type MigrateFunc func(types.Document) (types.Document, error)

// Migration is a registered transformation between two version strings.
// Rollback is optional; a migration without one cannot be reversed.
type Migration struct {
	FromVersion string
	ToVersion   string
	Description string
	Migrate     MigrateFunc
	Rollback    MigrateFunc
}

// HistoryEntry records one applied migration step.
type HistoryEntry struct {
	FromVersion string    `json:"fromVersion"`
	ToVersion   string    `json:"toVersion"`
	Description string    `json:"description"`
	AppliedAt   time.Time `json:"appliedAt"`
	RolledBack  bool      `json:"rolledBack"`
}

// Manager registers migrations and executes migration chains. The migration
// set forms a directed graph over version strings; path selection is greedy
// (first registered migration whose target is at or below the requested
// version) with a visited-set guard so a cyclic graph fails fast instead of
// looping.
type Manager struct {
	migrations map[string][]Migration
	history    []HistoryEntry
	logger     log.Logger
}

// NewManager creates a migration manager with the built-in migrations
// registered.
func NewManager(logger log.Logger) *Manager {
	m := &Manager{
		migrations: make(map[string][]Migration),
		logger:     logger.WithComponent("version-manager"),
	}
	for _, migration := range builtinMigrations() {
		m.Register(migration)
	}
	return m
}

// Register adds a migration to the graph. Registration order is preserved
// per source version and determines greedy path selection.
func (m *Manager) Register(migration Migration) {
	m.migrations[migration.FromVersion] = append(m.migrations[migration.FromVersion], migration)
}

// Path computes the migration chain from one version to another.
func (m *Manager) Path(from, to string) ([]Migration, error) {
	if Compare(from, to).IsEqual {
		return nil, nil
	}

	var path []Migration
	visited := map[string]bool{from: true}
	current := from

	for !Compare(current, to).IsEqual {
		next, ok := m.pickNext(current, to)
		if !ok {
			return nil, types.NewMigrationError(from, to,
				"no migration path from %s", current)
		}
		if visited[next.ToVersion] {
			return nil, types.NewMigrationError(from, to,
				"migration graph cycle detected at %s", next.ToVersion)
		}
		visited[next.ToVersion] = true
		path = append(path, next)
		current = next.ToVersion
	}
	return path, nil
}

// pickNext selects, among migrations registered for the current version,
// the first whose target is equal to or older than the requested version.
func (m *Manager) pickNext(current, target string) (Migration, bool) {
	for _, migration := range m.migrations[current] {
		cmp := Compare(migration.ToVersion, target)
		if cmp.IsEqual || cmp.IsOlder {
			return migration, true
		}
	}
	return Migration{}, false
}

// Migrate applies the migration chain from one version to another. It is a
// no-op when versions are equal and fails when asked to downgrade. The
// first failing migration aborts the whole chain; no partial result is
// returned.
func (m *Manager) Migrate(doc types.Document, from, to string) (types.Document, error) {
	cmp := Compare(from, to)
	if cmp.IsEqual {
		return doc, nil
	}
	if cmp.IsNewer {
		return nil, types.NewMigrationError(from, to,
			"downgrade is not supported")
	}

	path, err := m.Path(from, to)
	if err != nil {
		return nil, err
	}

	current := types.CloneDocument(doc)
	for _, step := range path {
		m.logger.Info("applying migration",
			log.Str("from", step.FromVersion),
			log.Str("to", step.ToVersion),
			log.Str("description", step.Description))

		next, stepErr := step.Migrate(current)
		if stepErr != nil {
			return nil, types.NewMigrationError(step.FromVersion, step.ToVersion,
				"migration failed: %v", stepErr)
		}
		if next == nil {
			return nil, types.NewMigrationError(step.FromVersion, step.ToVersion,
				"migration returned no document")
		}
		next["version"] = step.ToVersion
		current = next

		m.appendHistory(HistoryEntry{
			FromVersion: step.FromVersion,
			ToVersion:   step.ToVersion,
			Description: step.Description,
			AppliedAt:   time.Now().UTC(),
		})
	}
	return current, nil
}

// RollbackStep reverses a single migration. It fails explicitly when the
// migration did not declare a rollback function.
func (m *Manager) RollbackStep(doc types.Document, migration Migration) (types.Document, error) {
	if migration.Rollback == nil {
		return nil, types.NewMigrationError(migration.FromVersion, migration.ToVersion,
			"migration declares no rollback")
	}
	out, err := migration.Rollback(types.CloneDocument(doc))
	if err != nil {
		return nil, types.NewMigrationError(migration.FromVersion, migration.ToVersion,
			"rollback failed: %v", err)
	}
	if out == nil {
		return nil, types.NewMigrationError(migration.FromVersion, migration.ToVersion,
			"rollback returned no document")
	}
	out["version"] = migration.FromVersion

	m.appendHistory(HistoryEntry{
		FromVersion: migration.ToVersion,
		ToVersion:   migration.FromVersion,
		Description: "rollback: " + migration.Description,
		AppliedAt:   time.Now().UTC(),
		RolledBack:  true,
	})
	return out, nil
}

// History returns a copy of the bounded migration audit log.
func (m *Manager) History() []HistoryEntry {
	out := make([]HistoryEntry, len(m.history))
	copy(out, m.history)
	return out
}

func (m *Manager) appendHistory(entry HistoryEntry) {
	m.history = append(m.history, entry)
	if len(m.history) > maxHistoryEntries {
		m.history = m.history[len(m.history)-maxHistoryEntries:]
	}
}
