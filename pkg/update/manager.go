// Package update applies runtime partial configuration mutations with
// validation, rollback points, and an audit history.
package update

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clubworks/hookconf/pkg/loader"
	"github.com/clubworks/hookconf/pkg/log"
	"github.com/clubworks/hookconf/pkg/persist"
	"github.com/clubworks/hookconf/pkg/types"
	"github.com/clubworks/hookconf/pkg/validate"
)

// Type selects which part of the configuration an update targets.
type Type string

// Update types.
const (
	TypeGlobal      Type = "global"
	TypeFactory     Type = "factory"
	TypeContentType Type = "contentType"
	TypeFeatureFlag Type = "featureFlag"
	TypeFull        Type = "full"
)

// Bounds of the in-memory rollback stack and audit log.
const (
	maxRollbackPoints = 20
	maxHistoryEntries = 1000
)

// Request describes one configuration update.
type Request struct {
	// Type selects the patch target.
	Type Type

	// Path names the content type or feature flag for those update types.
	Path string

	// Data is the partial patch: a section document for global/factory/
	// contentType/full, or the new flag value for featureFlag.
	Data interface{}

	Reason       string
	Author       string
	ValidateOnly bool
	SkipBackup   bool
}

// Result reports the outcome of an update.
type Result struct {
	Success    bool
	UpdateID   string
	Applied    bool
	Validation *types.ValidationResult
}

// AuditSink receives durable copies of history entries. The in-memory
// history stays authoritative; a sink failure is logged, never fatal.
type AuditSink interface {
	Record(entry HistoryEntry) error
}

// Manager holds the current configuration snapshot and applies updates to
// it. It is deliberately unsynchronized: the system is single-process and
// cooperative, and two racing updates may silently drop one change.
type Manager struct {
	current   *types.SystemConfiguration
	path      string
	validator *validate.Validator
	store     *persist.Store
	loader    *loader.Loader
	bus       *Bus
	audit     AuditSink
	logger    log.Logger

	rollback []RollbackPoint
	history  []HistoryEntry
}

// NewManager creates an update manager around the given current
// configuration and its durable path.
func NewManager(current *types.SystemConfiguration, path string, validator *validate.Validator, store *persist.Store, ldr *loader.Loader, bus *Bus, logger log.Logger) *Manager {
	if bus == nil {
		bus = NewBus()
	}
	return &Manager{
		current:   current,
		path:      path,
		validator: validator,
		store:     store,
		loader:    ldr,
		bus:       bus,
		logger:    logger.WithComponent("update-manager"),
	}
}

// SetAuditSink wires a durable audit sink.
func (m *Manager) SetAuditSink(sink AuditSink) { m.audit = sink }

// Bus exposes the change event bus for subscribers.
func (m *Manager) Bus() *Bus { return m.bus }

// Current returns the current configuration snapshot.
func (m *Manager) Current() *types.SystemConfiguration { return m.current }

// Apply runs one update: clone, patch, validate, persist, swap, notify.
func (m *Manager) Apply(ctx context.Context, req Request) (*Result, error) {
	updateID := uuid.NewString()
	result := &Result{UpdateID: updateID}

	doc := m.current.Document()
	// applyPatch mutates doc in place, so the old value must come from a
	// separate snapshot.
	oldValue := m.valueAt(m.current.Document(), req)

	if err := applyPatch(doc, req); err != nil {
		return nil, err
	}

	validation := m.validator.ValidateSystemDocument(doc)
	m.checkNaming(req, validation)
	result.Validation = validation
	if !validation.IsValid {
		return result, nil
	}

	if req.ValidateOnly {
		result.Success = true
		return result, nil
	}

	newCfg, err := types.FromDocument(doc)
	if err != nil {
		return nil, err
	}
	newCfg.Metadata.UpdatedAt = time.Now().UTC()
	if req.Author != "" {
		newCfg.Metadata.UpdatedBy = req.Author
	}

	if !req.SkipBackup {
		m.pushRollbackPoint(RollbackPoint{
			UpdateID:      updateID,
			Configuration: m.current.Clone(),
			Timestamp:     time.Now().UTC(),
		})
	}

	if _, err := m.store.Save(newCfg, m.path, req.Reason); err != nil {
		return nil, err
	}

	m.current = newCfg
	if m.loader != nil {
		m.loader.Invalidate(newCfg.Metadata.Environment)
	}

	event := ChangeEvent{
		UpdateID:  updateID,
		Type:      req.Type,
		Path:      req.Path,
		OldValue:  oldValue,
		NewValue:  m.valueAt(newCfg.Document(), req),
		Timestamp: time.Now().UTC(),
		Author:    req.Author,
		Reason:    req.Reason,
	}
	m.bus.Publish(event)

	m.appendHistory(HistoryEntry{
		UpdateID:  updateID,
		Type:      req.Type,
		Path:      req.Path,
		Reason:    req.Reason,
		Author:    req.Author,
		Timestamp: event.Timestamp,
	})

	m.logger.Info("configuration updated",
		log.Str("updateId", updateID),
		log.Str("type", string(req.Type)),
		log.Str("path", req.Path),
		log.Str("author", req.Author))

	result.Success = true
	result.Applied = true
	return result, nil
}

// Rollback restores the configuration captured before the given update. It
// fails once the rollback point has been evicted from the bounded stack.
func (m *Manager) Rollback(ctx context.Context, updateID string) error {
	idx := -1
	for i := len(m.rollback) - 1; i >= 0; i-- {
		if m.rollback[i].UpdateID == updateID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return types.NewValidationError(
			"no rollback point for update %q (evicted or unknown)", updateID)
	}
	point := m.rollback[idx]

	validation := m.validator.ValidateSystem(point.Configuration)
	if !validation.IsValid {
		return types.NewValidationError(
			"rollback point fails validation: %v", validation.ErrorMessages())
	}

	if _, err := m.store.Save(point.Configuration, m.path, "rollback of "+updateID); err != nil {
		return err
	}
	m.current = point.Configuration
	if m.loader != nil {
		m.loader.Invalidate(point.Configuration.Metadata.Environment)
	}
	m.rollback = append(m.rollback[:idx], m.rollback[idx+1:]...)

	for i := range m.history {
		if m.history[i].UpdateID == updateID {
			m.history[i].RolledBack = true
		}
	}
	m.appendHistory(HistoryEntry{
		UpdateID:  uuid.NewString(),
		Type:      TypeFull,
		Reason:    "rollback of " + updateID,
		Timestamp: time.Now().UTC(),
	})

	m.logger.Info("configuration rolled back", log.Str("updateId", updateID))
	return nil
}

// CanRollback reports whether a rollback point is still held for an update.
func (m *Manager) CanRollback(updateID string) bool {
	for _, p := range m.rollback {
		if p.UpdateID == updateID {
			return true
		}
	}
	return false
}

// History returns up to limit most recent entries, newest first. A limit of
// zero returns everything.
func (m *Manager) History(limit int) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(m.history))
	for i := len(m.history) - 1; i >= 0; i-- {
		out = append(out, m.history[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func (m *Manager) pushRollbackPoint(point RollbackPoint) {
	m.rollback = append(m.rollback, point)
	if len(m.rollback) > maxRollbackPoints {
		m.rollback = m.rollback[len(m.rollback)-maxRollbackPoints:]
	}
}

func (m *Manager) appendHistory(entry HistoryEntry) {
	m.history = append(m.history, entry)
	if len(m.history) > maxHistoryEntries {
		m.history = m.history[len(m.history)-maxHistoryEntries:]
	}
	if m.audit != nil {
		if err := m.audit.Record(entry); err != nil {
			m.logger.Warn("audit sink rejected entry", log.Err(err))
		}
	}
}

// checkNaming runs the type-specific naming checks on top of full-system
// validation.
func (m *Manager) checkNaming(req Request, validation *types.ValidationResult) {
	switch req.Type {
	case TypeContentType:
		if !types.ContentTypeNamePattern.MatchString(req.Path) {
			validation.AddError("contentTypes."+req.Path, types.CodeInvalidName,
				"content type name %q must match %s", req.Path, types.ContentTypeNamePattern.String())
		}
	case TypeFeatureFlag:
		if !types.FeatureFlagNamePattern.MatchString(req.Path) {
			validation.AddError("featureFlags."+req.Path, types.CodeInvalidName,
				"feature flag name %q must be camelCase", req.Path)
		}
	}
}

// valueAt extracts the value the request targets, for event payloads.
func (m *Manager) valueAt(doc types.Document, req Request) interface{} {
	var path string
	switch req.Type {
	case TypeGlobal:
		path = "global"
	case TypeFactory:
		path = "factory"
	case TypeContentType:
		path = "contentTypes." + req.Path
	case TypeFeatureFlag:
		path = "featureFlags." + req.Path
	case TypeFull:
		return doc
	}
	v, _ := types.GetPath(doc, path)
	return v
}

// applyPatch merges the request data into the document according to the
// update type.
func applyPatch(doc types.Document, req Request) error {
	switch req.Type {
	case TypeGlobal, TypeFactory:
		patch, ok := req.Data.(map[string]interface{})
		if !ok {
			return fmt.Errorf("%s update requires an object patch, got %T", req.Type, req.Data)
		}
		section := string(req.Type)
		target, ok := doc[section].(map[string]interface{})
		if !ok {
			target = make(map[string]interface{})
			doc[section] = target
		}
		for k, v := range patch {
			target[k] = v
		}
		return nil

	case TypeContentType:
		if req.Path == "" {
			return fmt.Errorf("contentType update requires a content type name")
		}
		patch, ok := req.Data.(map[string]interface{})
		if !ok {
			return fmt.Errorf("contentType update requires an object patch, got %T", req.Data)
		}
		contentTypes, ok := doc["contentTypes"].(map[string]interface{})
		if !ok {
			contentTypes = make(map[string]interface{})
			doc["contentTypes"] = contentTypes
		}
		existing, ok := contentTypes[req.Path].(map[string]interface{})
		if !ok {
			existing = make(map[string]interface{})
		}
		for k, v := range patch {
			existing[k] = v
		}
		contentTypes[req.Path] = existing
		return nil

	case TypeFeatureFlag:
		if req.Path == "" {
			return fmt.Errorf("featureFlag update requires a flag name")
		}
		flags, ok := doc["featureFlags"].(map[string]interface{})
		if !ok {
			flags = make(map[string]interface{})
			doc["featureFlags"] = flags
		}
		flags[req.Path] = req.Data
		return nil

	case TypeFull:
		replacement, ok := req.Data.(map[string]interface{})
		if !ok {
			return fmt.Errorf("full update requires a complete document, got %T", req.Data)
		}
		for k := range doc {
			delete(doc, k)
		}
		for k, v := range replacement {
			doc[k] = v
		}
		return nil

	default:
		return fmt.Errorf("unknown update type %q", req.Type)
	}
}
