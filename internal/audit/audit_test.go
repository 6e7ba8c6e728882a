package audit

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func TestLog_CreatesFile(t *testing.T) {
	folder := t.TempDir()

	entry := Entry{User: "tester", Operation: "add", Collection: "pages", Handles: []string{"00ff00ff00ff00ff"}}
	if err := Log(folder, entry); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	info, err := os.Stat(LogPath(folder))
	if err != nil {
		t.Fatalf("Audit log file was not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected 0600 permissions, got %o", info.Mode().Perm())
	}
}

func TestLog_AppendsEntries(t *testing.T) {
	folder := t.TempDir()

	for _, op := range []string{"setup", "add", "delete"} {
		if err := Log(folder, Entry{User: "tester", Operation: op}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	data, err := os.ReadFile(LogPath(folder))
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Errorf("Expected 3 lines, got %d", len(lines))
	}
}

func TestLog_FillsIDAndTimestamp(t *testing.T) {
	folder := t.TempDir()

	if err := Log(folder, Entry{Operation: "list", Collection: "pages", Count: 4, Failures: 1}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	data, err := os.ReadFile(LogPath(folder))
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}

	var parsed Entry
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &parsed); err != nil {
		t.Fatalf("Audit log line is not valid JSON: %v", err)
	}
	if len(parsed.ID) != 36 {
		t.Errorf("Expected a UUID id, got %q", parsed.ID)
	}
	if !strings.HasSuffix(parsed.Timestamp, "Z") {
		t.Errorf("Expected UTC timestamp, got %q", parsed.Timestamp)
	}
	if parsed.Count != 4 || parsed.Failures != 1 {
		t.Errorf("Unexpected counts: %+v", parsed)
	}
}

func TestLog_MissingFolder(t *testing.T) {
	if err := Log(t.TempDir()+"/missing", Entry{Operation: "add"}); err == nil {
		t.Fatal("Expected an error when the repository folder does not exist")
	}
}

func TestReadEntries_NoLog(t *testing.T) {
	entries, err := ReadEntries(t.TempDir())
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}

func TestParseEntries_SkipsMalformed(t *testing.T) {
	data := []byte(`{"op":"add","collection":"pages"}
not json at all

{"op":"delete","handles":["00ff00ff00ff00ff"]}
{"op":`)

	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Operation != "add" || entries[1].Operation != "delete" {
		t.Errorf("Unexpected operations: %q, %q", entries[0].Operation, entries[1].Operation)
	}
}

func TestNewEntry(t *testing.T) {
	entry := NewEntry("check")
	if entry.Operation != "check" {
		t.Errorf("Expected op check, got %q", entry.Operation)
	}
	if entry.User == "" {
		t.Error("Expected user to be filled in")
	}
}
