package workflows

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/trove/internal/audit"
	"github.com/PolarWolf314/trove/internal/configs"
	kerrors "github.com/PolarWolf314/trove/internal/errors"
	"github.com/PolarWolf314/trove/internal/repo"
)

const testPassword = "correct horse battery staple"

// testOptions returns options for a repository under a fresh data root.
func testOptions(t *testing.T) RepoOptions {
	t.Helper()
	root := t.TempDir()
	return RepoOptions{
		Settings: configs.Settings{DataRoot: root, ConfigDir: filepath.Join(root, "config")},
		Source:   repo.PassIn{Value: testPassword},
	}
}

func setupRepo(t *testing.T, opts RepoOptions) {
	t.Helper()
	if _, err := Setup(context.Background(), SetupOptions{RepoOptions: opts}); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
}

func auditOps(t *testing.T, opts RepoOptions) []string {
	t.Helper()
	entries, err := audit.ReadEntries(filepath.Join(opts.Settings.DataRoot, repo.RepoDirName))
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	var ops []string
	for _, e := range entries {
		ops = append(ops, e.Operation)
	}
	return ops
}

func TestSetupCreatesConfig(t *testing.T) {
	opts := testOptions(t)

	result, err := Setup(context.Background(), SetupOptions{RepoOptions: opts})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if !result.CreatedConfig {
		t.Error("Expected first setup to create the config")
	}
	if result.StoredPassword {
		t.Error("Expected pass-in source not to store a password")
	}
	if _, err := os.Stat(filepath.Join(result.Folder, repo.ConfigFileName)); err != nil {
		t.Errorf("Expected config to exist: %v", err)
	}

	again, err := Setup(context.Background(), SetupOptions{RepoOptions: opts})
	if err != nil {
		t.Fatalf("Second setup failed: %v", err)
	}
	if again.CreatedConfig {
		t.Error("Expected second setup to reuse the config")
	}
}

func TestSetupStoresKeyringPassword(t *testing.T) {
	opts := testOptions(t)
	store := repo.NewMemoryKeyringStore()
	opts.Source = repo.Keyring{Store: store}

	prompts := 0
	prompter := func(string) (string, error) {
		prompts++
		return testPassword, nil
	}

	result, err := Setup(context.Background(), SetupOptions{RepoOptions: opts, Prompter: prompter})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if !result.StoredPassword {
		t.Error("Expected the password to be stored")
	}
	if prompts != 2 {
		t.Errorf("Expected 2 prompts (entry and confirmation), got %d", prompts)
	}

	got, err := store.Get(repo.KeyringService, repo.KeyringAccount)
	if err != nil || got != testPassword {
		t.Errorf("Expected stored password, got %q (err: %v)", got, err)
	}
}

func TestSetupWithoutPassword(t *testing.T) {
	opts := testOptions(t)
	opts.Source = repo.PassIn{}

	_, err := Setup(context.Background(), SetupOptions{RepoOptions: opts})
	if !errors.Is(err, kerrors.ErrNoPassword) {
		t.Fatalf("Expected ErrNoPassword, got: %v", err)
	}
}

func TestCheckBeforeSetup(t *testing.T) {
	opts := testOptions(t)

	report, err := Check(context.Background(), CheckOptions{RepoOptions: opts})
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if report.Summary.Errors == 0 {
		t.Error("Expected errors for a missing repository")
	}
	if len(report.Suggestions) == 0 {
		t.Error("Expected a setup suggestion")
	}
	if _, err := os.Stat(report.Folder); !os.IsNotExist(err) {
		t.Error("Check must not create the repository folder")
	}
}

func TestCheckAfterSetup(t *testing.T) {
	opts := testOptions(t)
	setupRepo(t, opts)

	report, err := Check(context.Background(), CheckOptions{RepoOptions: opts})
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if report.Summary.Errors != 0 || report.Summary.Warnings != 0 {
		t.Errorf("Expected a clean report, got: %+v", report.Checks)
	}
}

func TestCheckCorruptConfig(t *testing.T) {
	opts := testOptions(t)
	setupRepo(t, opts)

	folder := filepath.Join(opts.Settings.DataRoot, repo.RepoDirName)
	if err := os.WriteFile(filepath.Join(folder, repo.ConfigFileName), []byte{0xff}, 0600); err != nil {
		t.Fatal(err)
	}

	report, err := Check(context.Background(), CheckOptions{RepoOptions: opts})
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	statuses := make(map[string]CheckStatus)
	for _, c := range report.Checks {
		statuses[c.Name] = c.Status
	}
	if statuses["config"] != CheckError {
		t.Errorf("Expected config error, got %s", statuses["config"])
	}
	if statuses["key"] != CheckSkipped {
		t.Errorf("Expected key check to be skipped, got %s", statuses["key"])
	}
}

func TestAddReadDeleteFiles(t *testing.T) {
	opts := testOptions(t)
	setupRepo(t, opts)

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "notes", "deep"), 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"notes/a.txt":      "alpha",
		"notes/deep/b.txt": "bravo",
		"notes/c.md":       "charlie",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
	}

	ctx := context.Background()
	added, err := Add(ctx, AddOptions{
		RepoOptions: opts,
		Collection:  "notes",
		Patterns:    []string{"notes/**/*.txt"},
		BaseDir:     dir,
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if len(added.Documents) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(added.Documents))
	}

	for _, doc := range added.Documents {
		read, err := Read(ctx, ReadOptions{RepoOptions: opts, Collection: "notes", Handle: doc.Handle})
		if err != nil {
			t.Fatalf("Read %s failed: %v", doc.Handle, err)
		}
		if want := files[filepath.ToSlash(doc.Source)]; string(read.Document.Content) != want {
			t.Errorf("Expected %q for %s, got %q", want, doc.Source, read.Document.Content)
		}
	}

	deleted, err := Delete(ctx, DeleteOptions{RepoOptions: opts, Collection: "notes", Handles: []repo.Handle{added.Documents[0].Handle}})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(deleted.Deleted) != 1 {
		t.Errorf("Expected 1 deleted handle, got %d", len(deleted.Deleted))
	}

	_, err = Read(ctx, ReadOptions{RepoOptions: opts, Collection: "notes", Handle: added.Documents[0].Handle})
	if !errors.Is(err, kerrors.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got: %v", err)
	}

	want := []string{"setup", "add", "read", "read", "delete"}
	ops := auditOps(t, opts)
	if len(ops) != len(want) {
		t.Fatalf("Expected audit ops %v, got %v", want, ops)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("Expected audit op %d to be %s, got %s", i, want[i], ops[i])
		}
	}
}

func TestAddContent(t *testing.T) {
	opts := testOptions(t)
	setupRepo(t, opts)

	result, err := Add(context.Background(), AddOptions{RepoOptions: opts, Collection: "inbox", Content: []byte{}})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if len(result.Documents) != 1 || result.Documents[0].Source != StdinSource {
		t.Fatalf("Expected one stdin document, got %+v", result.Documents)
	}

	read, err := Read(context.Background(), ReadOptions{RepoOptions: opts, Collection: "inbox", Handle: result.Documents[0].Handle})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(read.Document.Content) != 0 {
		t.Errorf("Expected empty content, got %q", read.Document.Content)
	}
}

func TestAddNoMatches(t *testing.T) {
	opts := testOptions(t)
	setupRepo(t, opts)

	_, err := Add(context.Background(), AddOptions{
		RepoOptions: opts,
		Collection:  "notes",
		Patterns:    []string{"*.nothing"},
		BaseDir:     t.TempDir(),
	})
	if !errors.Is(err, kerrors.ErrNoFilesFound) {
		t.Fatalf("Expected ErrNoFilesFound, got: %v", err)
	}
}

func TestAddInvalidCollection(t *testing.T) {
	opts := testOptions(t)

	_, err := Add(context.Background(), AddOptions{RepoOptions: opts, Collection: "../escape", Content: []byte("x")})
	if !errors.Is(err, kerrors.ErrInvalidCollection) {
		t.Fatalf("Expected ErrInvalidCollection, got: %v", err)
	}
}

func TestAddCancelled(t *testing.T) {
	opts := testOptions(t)
	setupRepo(t, opts)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Add(ctx, AddOptions{RepoOptions: opts, Collection: "notes", Patterns: []string{"a.txt"}, BaseDir: dir})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got: %v", err)
	}
	if len(result.Documents) != 0 {
		t.Errorf("Expected no documents, got %d", len(result.Documents))
	}
}

func TestListReportsFailures(t *testing.T) {
	opts := testOptions(t)
	setupRepo(t, opts)

	ctx := context.Background()
	for _, content := range []string{"one", "two"} {
		if _, err := Add(ctx, AddOptions{RepoOptions: opts, Collection: "docs", Content: []byte(content)}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	folder := filepath.Join(opts.Settings.DataRoot, repo.RepoDirName, "docs")
	if err := os.WriteFile(filepath.Join(folder, "0123456789abcdef"), []byte("garbage"), 0600); err != nil {
		t.Fatal(err)
	}

	result, err := List(ctx, ListOptions{RepoOptions: opts, Collection: "docs"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if result.Count != 2 || len(result.Documents) != 2 {
		t.Errorf("Expected 2 documents, got count=%d docs=%d", result.Count, len(result.Documents))
	}
	if len(result.Failures) != 1 {
		t.Fatalf("Expected 1 failure, got %d", len(result.Failures))
	}
	if !errors.Is(result.Failures[0].Err, kerrors.ErrCorruptEntry) {
		t.Errorf("Expected ErrCorruptEntry, got: %v", result.Failures[0].Err)
	}
}

func TestListEachStopsEarly(t *testing.T) {
	opts := testOptions(t)
	setupRepo(t, opts)

	ctx := context.Background()
	for _, content := range []string{"one", "two", "three"} {
		if _, err := Add(ctx, AddOptions{RepoOptions: opts, Collection: "docs", Content: []byte(content)}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	var seen [][]byte
	result, err := List(ctx, ListOptions{
		RepoOptions: opts,
		Collection:  "docs",
		Each: func(doc repo.Document) bool {
			seen = append(seen, bytes.Clone(doc.Content))
			return false
		},
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(seen) != 1 || result.Count != 1 {
		t.Errorf("Expected listing to stop after one document, saw %d", len(seen))
	}
	if len(result.Documents) != 0 {
		t.Error("Expected Each mode to keep no documents")
	}
}

func TestListMissingCollection(t *testing.T) {
	opts := testOptions(t)
	setupRepo(t, opts)

	result, err := List(context.Background(), ListOptions{RepoOptions: opts, Collection: "empty"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if result.Count != 0 || len(result.Failures) != 0 {
		t.Errorf("Expected an empty listing, got %+v", result)
	}
}

func TestWrongPasswordFailsRead(t *testing.T) {
	opts := testOptions(t)
	setupRepo(t, opts)

	added, err := Add(context.Background(), AddOptions{RepoOptions: opts, Collection: "docs", Content: []byte("secret")})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	opts.Source = repo.PassIn{Value: "wrong password"}
	_, err = Read(context.Background(), ReadOptions{RepoOptions: opts, Collection: "docs", Handle: added.Documents[0].Handle})
	if !errors.Is(err, kerrors.ErrDecrypt) {
		t.Fatalf("Expected ErrDecrypt, got: %v", err)
	}
}
