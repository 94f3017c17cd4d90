package log

import "sync"

// TestLogger is a Logger implementation that records entries in memory for
// assertions in unit tests.
type TestLogger struct {
	mu      sync.Mutex
	level   Level
	fields  Fields
	entries *[]Entry
}

// NewTestLogger creates a new TestLogger for use in unit tests.
func NewTestLogger() *TestLogger {
	entries := make([]Entry, 0, 16)
	return &TestLogger{
		level:   DebugLevel,
		fields:  Fields{},
		entries: &entries,
	}
}

// Entries returns a copy of the recorded entries.
func (l *TestLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(*l.entries))
	copy(out, *l.entries)
	return out
}

// HasMessage reports whether any recorded entry carries the given message.
func (l *TestLogger) HasMessage(msg string) bool {
	for _, e := range l.Entries() {
		if e.Message == msg {
			return true
		}
	}
	return false
}

func (l *TestLogger) record(level Level, msg string, fields []Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := Entry{Level: level, Message: msg, Fields: Fields{}}
	for k, v := range l.fields {
		entry.Fields[k] = v
	}
	for _, f := range fields {
		entry.Fields[f.Key] = f.Value
	}
	*l.entries = append(*l.entries, entry)
}

// Debug records a debug entry.
func (l *TestLogger) Debug(msg string, fields ...Field) { l.record(DebugLevel, msg, fields) }

// Info records an info entry.
func (l *TestLogger) Info(msg string, fields ...Field) { l.record(InfoLevel, msg, fields) }

// Warn records a warn entry.
func (l *TestLogger) Warn(msg string, fields ...Field) { l.record(WarnLevel, msg, fields) }

// Error records an error entry.
func (l *TestLogger) Error(msg string, fields ...Field) { l.record(ErrorLevel, msg, fields) }

// Fatal records a fatal entry without exiting, so tests can assert on it.
func (l *TestLogger) Fatal(msg string, fields ...Field) { l.record(FatalLevel, msg, fields) }

// With returns a logger that shares the recorded entry slice.
func (l *TestLogger) With(fields ...Field) Logger {
	child := &TestLogger{level: l.level, fields: Fields{}, entries: l.entries}
	for k, v := range l.fields {
		child.fields[k] = v
	}
	for _, f := range fields {
		child.fields[f.Key] = f.Value
	}
	return child
}

// WithComponent tags entries with a component name.
func (l *TestLogger) WithComponent(component string) Logger {
	return l.With(Component(component))
}

// SetLevel sets the minimum level (entries are recorded regardless).
func (l *TestLogger) SetLevel(level Level) { l.level = level }

// GetLevel returns the configured level.
func (l *TestLogger) GetLevel() Level { return l.level }
