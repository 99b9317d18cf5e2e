// Package test runs the codeartifact CLI in tests and reads its JSON logs.
package test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/spf13/cobra"

	"github.com/brcolow/codeartifact-maven-extension/cmd"
	"github.com/brcolow/codeartifact-maven-extension/internal/codeartifact"
	cactx "github.com/brcolow/codeartifact-maven-extension/internal/context"
	"github.com/brcolow/codeartifact-maven-extension/internal/flags/log"
)

type Options struct {
	args     []string
	out      io.Writer
	logs     io.Writer
	format   string
	registry *codeartifact.ClientRegistry
}

type Option func(*Options)

func WithArgs(args ...string) Option {
	return func(o *Options) {
		o.args = args
	}
}

// WithOutput captures the command output.
func WithOutput(out io.Writer) Option {
	return func(o *Options) {
		o.out = out
	}
}

// WithLogs captures the logs, which are written to stderr.
func WithLogs(logs io.Writer) Option {
	return func(o *Options) {
		o.logs = logs
	}
}

func WithLogFormat(format string) Option {
	return func(o *Options) {
		o.format = format
	}
}

// WithClientRegistry makes all commands use the given registry instead of loading AWS credentials,
// typically the registry of a codeartifacttest.Service.
func WithClientRegistry(registry *codeartifact.ClientRegistry) Option {
	return func(o *Options) {
		o.registry = registry
	}
}

// CodeArtifact executes the CLI with the given options and returns the executed command.
// Without WithOutput or WithLogs, output and logs are discarded.
func CodeArtifact(tb testing.TB, opts ...Option) (*cobra.Command, error) {
	tb.Helper()

	opt := Options{}
	for _, o := range opts {
		o(&opt)
	}
	instance := cmd.New()
	if len(opt.args) == 0 {
		opt.args = []string{"help"}
	}

	if opt.out == nil {
		opt.out = io.Discard
	}
	if opt.logs == nil {
		opt.logs = io.Discard
	}
	instance.SetOut(opt.out)
	instance.SetErr(opt.logs)

	// JSON logs are easier to assert on
	if opt.format == "" {
		opt.format = log.FormatJSON
	}
	f := instance.PersistentFlags().Lookup(log.FormatFlagName)
	if err := f.Value.Set(opt.format); err != nil {
		return nil, fmt.Errorf("failed to set format: %w", err)
	}

	ctx := tb.Context()
	if opt.registry != nil {
		ctx = cactx.WithClientRegistry(ctx, opt.registry)
	}

	instance.SetArgs(opt.args)
	return instance.ExecuteContextC(ctx)
}

// JSONLogReader collects JSON log lines. Lines that are not JSON end up in Discarded.
type JSONLogReader struct {
	*bytes.Buffer
	Discarded *bytes.Buffer
}

func NewJSONLogReader() *JSONLogReader {
	return &JSONLogReader{
		Buffer:    bytes.NewBuffer(make([]byte, 0, 1024)),
		Discarded: bytes.NewBuffer(make([]byte, 0, 1024)),
	}
}

type JSONLogEntry struct {
	Time  string `json:"time"`
	Level string `json:"level"`
	Msg   string `json:"msg"`

	// Extras holds all other attributes of the record.
	Extras map[string]any `json:"-"`
}

func (l *JSONLogEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	l.Time, _ = raw["time"].(string)
	l.Level, _ = raw["level"].(string)
	l.Msg, _ = raw["msg"].(string)
	delete(raw, "time")
	delete(raw, "level")
	delete(raw, "msg")
	l.Extras = raw
	return nil
}

// List parses all buffered log lines.
func (logs *JSONLogReader) List() ([]*JSONLogEntry, error) {
	scanner := bufio.NewScanner(logs.Buffer)
	var entries []*JSONLogEntry
	for scanner.Scan() {
		data := scanner.Bytes()
		entry := JSONLogEntry{}
		if err := json.Unmarshal(data, &entry); err == nil {
			entries = append(entries, &entry)
		} else if _, err := logs.Discarded.Write(append(data, '\n')); err != nil {
			return nil, err
		}
	}
	return entries, scanner.Err()
}

// Find returns the first entry with the given message or nil.
func (logs *JSONLogReader) Find(msg string) (*JSONLogEntry, error) {
	entries, err := logs.List()
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.Msg == msg {
			return entry, nil
		}
	}
	return nil, nil
}
