// Package audit provides a durable, append-only store for update audit
// entries backed by BadgerDB. The bounded in-memory histories stay
// authoritative; this store exists so audit records survive a process
// restart.
package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/clubworks/hookconf/pkg/log"
	"github.com/clubworks/hookconf/pkg/types"
	"github.com/clubworks/hookconf/pkg/update"
)

// keyPrefix namespaces audit entries inside the database.
const keyPrefix = "audit/"

// Store is a BadgerDB-backed audit log.
type Store struct {
	db     *badger.DB
	path   string
	logger log.Logger
}

// NewStore creates an unopened audit store.
func NewStore(logger log.Logger) *Store {
	return &Store{logger: logger.WithComponent("audit")}
}

// Open opens the BadgerDB database at the given path.
func (s *Store) Open(path string) error {
	s.path = path

	opts := badger.DefaultOptions(path)
	opts.Logger = &badgerLogAdapter{logger: s.logger}

	db, err := badger.Open(opts)
	if err != nil {
		return types.NewPersistenceError(path, "failed to open audit store", err)
	}
	s.db = db

	s.logger.Info("audit store opened", log.Str("path", path))
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	s.logger.Info("closing audit store", log.Str("path", s.path))
	return s.db.Close()
}

// Record appends one history entry. Keys are ordered by timestamp so List
// returns entries chronologically.
func (s *Store) Record(entry update.HistoryEntry) error {
	if s.db == nil {
		return types.NewPersistenceError(s.path, "audit store is not open", nil)
	}

	key := fmt.Sprintf("%s%s/%s", keyPrefix,
		entry.Timestamp.UTC().Format(time.RFC3339Nano), entry.UpdateID)
	value, err := json.Marshal(entry)
	if err != nil {
		return types.NewPersistenceError(s.path, "failed to encode audit entry", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// List returns up to limit audit entries, oldest first. A limit of zero
// returns everything.
func (s *Store) List(limit int) ([]update.HistoryEntry, error) {
	if s.db == nil {
		return nil, types.NewPersistenceError(s.path, "audit store is not open", nil)
	}

	var entries []update.HistoryEntry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(keyPrefix)); it.Valid(); it.Next() {
			if limit > 0 && len(entries) >= limit {
				break
			}
			var entry update.HistoryEntry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, types.NewPersistenceError(s.path, "failed to list audit entries", err)
	}
	return entries, nil
}

// badgerLogAdapter adapts the hookconf logger to BadgerDB's logger
// interface.
type badgerLogAdapter struct {
	logger log.Logger
}

// Errorf implements badger.Logger.
func (l *badgerLogAdapter) Errorf(format string, args ...interface{}) {
	l.logger.Error("badger: " + fmt.Sprintf(format, args...))
}

// Warningf implements badger.Logger.
func (l *badgerLogAdapter) Warningf(format string, args ...interface{}) {
	l.logger.Warn("badger: " + fmt.Sprintf(format, args...))
}

// Infof implements badger.Logger.
func (l *badgerLogAdapter) Infof(format string, args ...interface{}) {
	l.logger.Debug("badger: " + fmt.Sprintf(format, args...))
}

// Debugf implements badger.Logger.
func (l *badgerLogAdapter) Debugf(format string, args ...interface{}) {
	l.logger.Debug("badger: " + fmt.Sprintf(format, args...))
}
