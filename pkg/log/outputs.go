package log

import (
	"io"
	"os"
	"sync"
)

// ConsoleOutput writes log entries to a terminal stream.
type ConsoleOutput struct {
	writer io.Writer
	mu     sync.Mutex
}

// ConsoleOutputOption configures a ConsoleOutput.
type ConsoleOutputOption func(*ConsoleOutput)

// WithWriter directs console output to the given writer.
func WithWriter(w io.Writer) ConsoleOutputOption {
	return func(o *ConsoleOutput) { o.writer = w }
}

// NewConsoleOutput creates an output writing to stderr by default.
func NewConsoleOutput(options ...ConsoleOutputOption) *ConsoleOutput {
	o := &ConsoleOutput{writer: os.Stderr}
	for _, opt := range options {
		opt(o)
	}
	return o
}

// Write writes the formatted entry to the console.
func (o *ConsoleOutput) Write(_ *Entry, formatted []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := o.writer.Write(formatted)
	return err
}

// Close is a no-op for console output.
func (o *ConsoleOutput) Close() error { return nil }

// FileOutput appends log entries to a file.
type FileOutput struct {
	file *os.File
	mu   sync.Mutex
}

// NewFileOutput opens (or creates) the log file for appending.
func NewFileOutput(filename string) (*FileOutput, error) {
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileOutput{file: f}, nil
}

// Write appends the formatted entry to the file.
func (o *FileOutput) Write(_ *Entry, formatted []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := o.file.Write(formatted)
	return err
}

// Close closes the underlying file.
func (o *FileOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.file.Close()
}

// NullOutput discards all entries.
type NullOutput struct{}

// NewNullOutput creates an output that discards everything.
func NewNullOutput() *NullOutput { return &NullOutput{} }

// Write discards the entry.
func (o *NullOutput) Write(_ *Entry, _ []byte) error { return nil }

// Close is a no-op.
func (o *NullOutput) Close() error { return nil }
