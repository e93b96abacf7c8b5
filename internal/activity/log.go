// Package activity records time spent on steps in an append-only JSON log
// that feeds the activity chart.
package activity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/prism/internal/duration"
	"github.com/twiced-technology-gmbh/prism/internal/filelock"
)

const (
	// FileName is the default activity log filename inside the data dir.
	FileName = "Task_Activity_Log.json"

	// TimestampLayout is how entry timestamps are written, in local time.
	TimestampLayout = "2006-01-02 15:04:05"

	logFileMode = 0o600
)

// Entry is one logged unit of work on a step.
type Entry struct {
	Project     string `json:"project"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
	Duration    string `json:"duration"`
}

// Time parses the entry timestamp in loc.
func (e Entry) Time(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, strings.TrimSpace(e.Timestamp), loc)
}

// Elapsed parses the entry duration; malformed values count as zero.
func (e Entry) Elapsed() time.Duration {
	return duration.Parse(e.Duration)
}

// NewEntry builds an entry for seconds spent on step of the task titled
// title, stamped with now.
func NewEntry(project, title, step string, seconds int, now time.Time) Entry {
	return Entry{
		Project:     project,
		Title:       title,
		Description: step,
		Timestamp:   now.Format(TimestampLayout),
		Duration:    duration.FormatSeconds(seconds),
	}
}

var labelRe = regexp.MustCompile(`([^\\/]+)_Task_Data\.json$`)

// ProjectLabel derives the short project name from a task store path,
// e.g. "data/Prism_Task_Data.json" gives "Prism". Other names fall back
// to the base name without its extension.
func ProjectLabel(taskFile string) string {
	if m := labelRe.FindStringSubmatch(taskFile); m != nil {
		return m[1]
	}
	base := filepath.Base(strings.ReplaceAll(taskFile, `\`, "/"))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Log is the activity log document: a JSON array of entries.
type Log struct {
	Path string
}

// NewLog returns a log stored at path.
func NewLog(path string) *Log {
	return &Log{Path: path}
}

// Load reads all entries. A missing or malformed document yields no
// entries; individual entries that do not decode are skipped.
func (l *Log) Load() ([]Entry, error) {
	data, err := os.ReadFile(l.Path) //nolint:gosec // log path from config
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading activity log: %w", err)
	}
	return decode(data), nil
}

func decode(data []byte) []Entry {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	entries := make([]Entry, 0, len(raw))
	for _, r := range raw {
		var e Entry
		if err := json.Unmarshal(r, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// Append adds entry to the end of the log and rewrites the whole document.
// Existing elements are written back verbatim, including ones Load skips.
// A document that is not a JSON array is replaced.
func (l *Log) Append(entry Entry) error {
	return filelock.With(l.Path, func() error {
		data, err := os.ReadFile(l.Path) //nolint:gosec // log path from config
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reading activity log: %w", err)
		}
		var raw []json.RawMessage
		if len(bytes.TrimSpace(data)) > 0 {
			if json.Unmarshal(data, &raw) != nil {
				raw = nil
			}
		}
		var e bytes.Buffer
		enc := json.NewEncoder(&e)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(entry); err != nil {
			return fmt.Errorf("marshaling activity entry: %w", err)
		}
		return l.write(append(raw, bytes.TrimSpace(e.Bytes())))
	})
}

func (l *Log) write(entries []json.RawMessage) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("marshaling activity log: %w", err)
	}

	tmp := l.Path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), logFileMode); err != nil {
		return fmt.Errorf("writing activity log: %w", err)
	}
	if err := os.Rename(tmp, l.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing activity log: %w", err)
	}
	return nil
}

// ForProject returns the entries recorded under project, in log order.
func ForProject(entries []Entry, project string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Project == project {
			out = append(out, e)
		}
	}
	return out
}
