package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/PolarWolf314/trove/internal/repo"
	"github.com/PolarWolf314/trove/internal/utils"
	"github.com/google/uuid"
)

// Entry represents a single audit log entry. Document content and passwords
// are never recorded.
type Entry struct {
	ID        string `json:"id"`
	Timestamp string `json:"ts"` // RFC3339 with microseconds.
	User      string `json:"user"`
	Host      string `json:"host,omitempty"`
	Operation string `json:"op"`

	// Optional fields depending on operation.
	Collection string   `json:"collection,omitempty"` // For add/read/delete/list.
	Handles    []string `json:"handles,omitempty"`    // For add/read/delete.
	Count      int      `json:"count,omitempty"`      // For list.
	Failures   int      `json:"failures,omitempty"`   // Entries that could not be read.
	Source     string   `json:"source,omitempty"`     // Password source, for setup.
}

// NewEntry returns an entry for op with the user and host filled in.
func NewEntry(op string) Entry {
	entry := Entry{Operation: op}
	if user, err := utils.GetUsername(); err == nil {
		entry.User = user
	}
	if host, err := utils.GetHostname(); err == nil {
		entry.Host = host
	}
	return entry
}

// LogPath returns the audit log path for the repository folder.
func LogPath(folder string) string {
	return filepath.Join(folder, repo.AuditFileName)
}

// Log appends an entry to the audit log in folder.
// Logging is best-effort: failures are reported to the caller but
// operations should not fail because of them.
func Log(folder string, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(LogPath(folder), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadEntries reads all entries from the audit log in folder.
// Returns an empty slice if the log doesn't exist.
func ReadEntries(folder string) ([]Entry, error) {
	data, err := os.ReadFile(LogPath(folder))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}
