package repo

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	kerrors "github.com/PolarWolf314/trove/internal/errors"
)

// buildTestRepo builds a repository under a fresh data root.
func buildTestRepo(t *testing.T, dataRoot, password string) *EncryptedRepo {
	t.Helper()
	r, err := Build(dataRoot, PassIn{Value: password})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func collectList(t *testing.T, s Store, c Collection) (docs []Document, errs []error) {
	t.Helper()
	for doc, err := range s.List(c) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, errs
}

func TestBuildCreatesLayout(t *testing.T) {
	dataRoot := t.TempDir()
	r := buildTestRepo(t, dataRoot, "correct horse")

	want := filepath.Join(dataRoot, RepoDirName)
	if r.Folder() != want {
		t.Errorf("Expected folder %s, got %s", want, r.Folder())
	}
	if _, err := os.Stat(filepath.Join(want, ConfigFileName)); err != nil {
		t.Errorf("Expected %s to exist: %v", ConfigFileName, err)
	}
}

func TestBuildWithoutPassword(t *testing.T) {
	_, err := Build(t.TempDir(), PassIn{})
	if !errors.Is(err, kerrors.ErrNoPassword) {
		t.Fatalf("Expected ErrNoPassword, got: %v", err)
	}
}

func TestAddReadRoundTrip(t *testing.T) {
	r := buildTestRepo(t, t.TempDir(), "correct horse")

	binary := make([]byte, 256)
	for i := range binary {
		binary[i] = byte(i)
	}

	contents := map[string][]byte{
		"empty":  {},
		"text":   []byte("<html><body>hello</body></html>"),
		"binary": binary,
		"large":  bytes.Repeat([]byte("trove "), 100000),
	}

	for name, content := range contents {
		t.Run(name, func(t *testing.T) {
			h, err := r.Add("pages", content)
			if err != nil {
				t.Fatalf("Add failed: %v", err)
			}
			if err := h.Validate(); err != nil {
				t.Fatalf("Add returned malformed handle: %v", err)
			}

			got, err := r.Read("pages", h)
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if !bytes.Equal(got, content) {
				t.Errorf("Round trip mismatch: got %d bytes, want %d", len(got), len(content))
			}
		})
	}
}

func TestAddSameContentTwice(t *testing.T) {
	r := buildTestRepo(t, t.TempDir(), "correct horse")
	content := []byte("same page captured twice")

	h1, err := r.Add("pages", content)
	if err != nil {
		t.Fatalf("First Add failed: %v", err)
	}
	h2, err := r.Add("pages", content)
	if err != nil {
		t.Fatalf("Second Add failed: %v", err)
	}

	if h1 == h2 {
		t.Fatalf("Expected distinct handles for repeated content, both were %s", h1)
	}

	for _, h := range []Handle{h1, h2} {
		got, err := r.Read("pages", h)
		if err != nil {
			t.Fatalf("Read %s failed: %v", h, err)
		}
		if !bytes.Equal(got, content) {
			t.Errorf("Read %s returned %q", h, got)
		}
	}
}

func TestReadWithWrongPassword(t *testing.T) {
	dataRoot := t.TempDir()
	first := buildTestRepo(t, dataRoot, "correct horse")

	h, err := first.Add("pages", []byte("secret page"))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	second := buildTestRepo(t, dataRoot, "battery staple")
	got, err := second.Read("pages", h)
	if !errors.Is(err, kerrors.ErrDecrypt) {
		t.Fatalf("Expected ErrDecrypt, got content %q and error %v", got, err)
	}
	if got != nil {
		t.Errorf("Expected no content on decrypt failure, got %q", got)
	}
}

func TestReadTamperedEntry(t *testing.T) {
	r := buildTestRepo(t, t.TempDir(), "correct horse")

	h, err := r.Add("pages", []byte("do not touch"))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	path := filepath.Join(r.Folder(), "pages", string(h))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read entry: %v", err)
	}
	data[len(data)-1] ^= 0x01
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("Failed to write entry: %v", err)
	}

	if _, err := r.Read("pages", h); !errors.Is(err, kerrors.ErrDecrypt) {
		t.Fatalf("Expected ErrDecrypt, got: %v", err)
	}
}

func TestReadAndDeleteMissingEntry(t *testing.T) {
	r := buildTestRepo(t, t.TempDir(), "correct horse")

	for _, h := range []Handle{"nonexistent-handle", "0123456789abcdef"} {
		if _, err := r.Read("pages", h); !errors.Is(err, kerrors.ErrNotFound) {
			t.Errorf("Read(%q): expected ErrNotFound, got: %v", h, err)
		}
		if err := r.Delete("pages", h); !errors.Is(err, kerrors.ErrNotFound) {
			t.Errorf("Delete(%q): expected ErrNotFound, got: %v", h, err)
		}
	}

	if _, err := os.Stat(filepath.Join(r.Folder(), "pages")); !os.IsNotExist(err) {
		t.Errorf("Expected no collection folder to be created, stat error: %v", err)
	}
}

func TestReadRejectsPathTraversal(t *testing.T) {
	r := buildTestRepo(t, t.TempDir(), "correct horse")

	_, err := r.Read("pages", Handle("../"+ConfigFileName))
	if !errors.Is(err, kerrors.ErrInvalidHandle) {
		t.Fatalf("Expected ErrInvalidHandle, got: %v", err)
	}
	if _, err := r.Read("..", "0123456789abcdef"); !errors.Is(err, kerrors.ErrInvalidCollection) {
		t.Fatalf("Expected ErrInvalidCollection, got: %v", err)
	}
}

func TestDeleteRemovesEntry(t *testing.T) {
	r := buildTestRepo(t, t.TempDir(), "correct horse")

	h, err := r.Add("pages", []byte("short-lived"))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := r.Delete("pages", h); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := r.Read("pages", h); !errors.Is(err, kerrors.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got: %v", err)
	}
	if err := r.Delete("pages", h); !errors.Is(err, kerrors.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got: %v", err)
	}
}

func TestReadCorruptEntry(t *testing.T) {
	r := buildTestRepo(t, t.TempDir(), "correct horse")

	folder := filepath.Join(r.Folder(), "pages")
	if err := os.MkdirAll(folder, 0700); err != nil {
		t.Fatalf("Failed to create collection: %v", err)
	}

	garbage := filepath.Join(folder, "00000000000000aa")
	if err := os.WriteFile(garbage, []byte{0xff, 0x01, 0x02}, 0600); err != nil {
		t.Fatalf("Failed to write garbage: %v", err)
	}
	_, err := r.Read("pages", "00000000000000aa")
	if !errors.Is(err, kerrors.ErrCorruptEntry) {
		t.Fatalf("Expected ErrCorruptEntry, got: %v", err)
	}
	if !bytes.Contains([]byte(err.Error()), []byte(garbage)) {
		t.Errorf("Expected error to name %s, got: %v", garbage, err)
	}

	shortNonce := filepath.Join(folder, "00000000000000bb")
	data, _ := diskEntry{Nonce: []byte{1, 2, 3}, Content: []byte("x")}.MarshalBinary()
	if err := os.WriteFile(shortNonce, data, 0600); err != nil {
		t.Fatalf("Failed to write entry: %v", err)
	}
	if _, err := r.Read("pages", "00000000000000bb"); !errors.Is(err, kerrors.ErrInvalidNonce) {
		t.Fatalf("Expected ErrInvalidNonce, got: %v", err)
	}
}

func TestListSurvivesCorruptEntry(t *testing.T) {
	r := buildTestRepo(t, t.TempDir(), "correct horse")

	want := map[string]bool{"one": true, "two": true, "three": true}
	for content := range want {
		if _, err := r.Add("pages", []byte(content)); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	folder := filepath.Join(r.Folder(), "pages")
	if err := os.WriteFile(filepath.Join(folder, "garbage"), []byte{0xff, 0x01, 0x02}, 0600); err != nil {
		t.Fatalf("Failed to write garbage: %v", err)
	}
	// Neither of these may show up in the listing.
	if err := os.WriteFile(filepath.Join(folder, ConfigFileName), []byte("not an entry"), 0600); err != nil {
		t.Fatalf("Failed to write reserved file: %v", err)
	}
	if err := os.Mkdir(filepath.Join(folder, "subdir"), 0700); err != nil {
		t.Fatalf("Failed to create subdir: %v", err)
	}

	docs, errs := collectList(t, r, "pages")

	if len(docs)+len(errs) != 4 {
		t.Fatalf("Expected 4 items, got %d documents and %d errors", len(docs), len(errs))
	}
	if len(errs) != 1 {
		t.Fatalf("Expected exactly 1 error, got: %v", errs)
	}
	if !errors.Is(errs[0], kerrors.ErrCorruptEntry) && !errors.Is(errs[0], kerrors.ErrInvalidNonce) {
		t.Errorf("Expected a corrupt entry error, got: %v", errs[0])
	}

	for _, doc := range docs {
		if !want[string(doc.Content)] {
			t.Errorf("Unexpected document %s: %q", doc.Handle, doc.Content)
		}
		delete(want, string(doc.Content))
	}
	if len(want) != 0 {
		t.Errorf("Documents missing from listing: %v", want)
	}
}

func TestListIsolatesCollections(t *testing.T) {
	r := buildTestRepo(t, t.TempDir(), "correct horse")

	if _, err := r.Add("pages", []byte("hello")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	docs, errs := collectList(t, r, "other-collection")
	if len(docs) != 0 || len(errs) != 0 {
		t.Fatalf("Expected empty listing, got %d documents and %d errors", len(docs), len(errs))
	}

	docs, errs = collectList(t, r, "pages")
	if len(docs) != 1 || len(errs) != 0 {
		t.Fatalf("Expected 1 document in pages, got %d documents and %d errors", len(docs), len(errs))
	}
}

func TestListStopsWhenConsumerBreaks(t *testing.T) {
	r := buildTestRepo(t, t.TempDir(), "correct horse")

	for i := 0; i < 5; i++ {
		if _, err := r.Add("pages", []byte{byte(i)}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	seen := 0
	for range r.List("pages") {
		seen++
		if seen == 2 {
			break
		}
	}
	if seen != 2 {
		t.Errorf("Expected iteration to stop after 2 items, saw %d", seen)
	}
}

func TestListInvalidCollection(t *testing.T) {
	r := buildTestRepo(t, t.TempDir(), "correct horse")

	_, errs := collectList(t, r, "../escape")
	if len(errs) != 1 || !errors.Is(errs[0], kerrors.ErrInvalidCollection) {
		t.Fatalf("Expected one ErrInvalidCollection, got: %v", errs)
	}
}

func TestClosedRepo(t *testing.T) {
	r := buildTestRepo(t, t.TempDir(), "correct horse")

	h, err := r.Add("pages", []byte("before close"))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := r.Add("pages", []byte("after close")); !errors.Is(err, kerrors.ErrRepoClosed) {
		t.Errorf("Add: expected ErrRepoClosed, got: %v", err)
	}
	if _, err := r.Read("pages", h); !errors.Is(err, kerrors.ErrRepoClosed) {
		t.Errorf("Read: expected ErrRepoClosed, got: %v", err)
	}
}

func TestCheck(t *testing.T) {
	dataRoot := t.TempDir()

	if err := Check(dataRoot, PassIn{Value: "correct horse"}); !errors.Is(err, kerrors.ErrRepoNotInitialized) {
		t.Fatalf("Expected ErrRepoNotInitialized before build, got: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dataRoot, RepoDirName)); !os.IsNotExist(err) {
		t.Fatalf("Check must not create the repository folder")
	}

	buildTestRepo(t, dataRoot, "correct horse")

	if err := Check(dataRoot, PassIn{Value: "correct horse"}); err != nil {
		t.Errorf("Expected check to pass, got: %v", err)
	}
	if err := Check(dataRoot, PassIn{}); !errors.Is(err, kerrors.ErrNoPassword) {
		t.Errorf("Expected ErrNoPassword, got: %v", err)
	}

	configPath := filepath.Join(dataRoot, RepoDirName, ConfigFileName)
	if err := os.WriteFile(configPath, []byte("junk"), 0600); err != nil {
		t.Fatalf("Failed to corrupt config: %v", err)
	}
	if err := Check(dataRoot, PassIn{Value: "correct horse"}); !errors.Is(err, kerrors.ErrConfigCorrupt) {
		t.Errorf("Expected ErrConfigCorrupt, got: %v", err)
	}
}

func TestReadSurvivesGarbageCollection(t *testing.T) {
	raw := bytes.Repeat([]byte{0x42}, KeySize)
	base := t.TempDir()

	key, err := NewKey(raw)
	if err != nil {
		t.Fatalf("NewKey failed: %v", err)
	}
	writer := Open(base, key)
	defer writer.Close()

	content := bytes.Repeat([]byte("page "), 8<<20/5)
	h, err := writer.Add("pages", content)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				runtime.GC()
			}
		}
	}()
	defer func() {
		close(stop)
		<-done
	}()

	for i := 0; i < 50; i++ {
		k, err := NewKey(raw)
		if err != nil {
			t.Fatalf("NewKey failed: %v", err)
		}
		// The repo is unreachable once Read starts; the key must stay usable.
		got, err := Open(base, k).Read("pages", h)
		if err != nil {
			t.Fatalf("Read %d with the correct key failed: %v", i, err)
		}
		if !bytes.Equal(got, content) {
			t.Fatalf("Read %d returned different content", i)
		}
	}
}

func TestCloseDuringReads(t *testing.T) {
	r := buildTestRepo(t, t.TempDir(), "correct horse")

	h, err := r.Add("pages", bytes.Repeat([]byte("x"), 1<<16))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8*20)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				if _, err := r.Read("pages", h); err != nil {
					errs <- err
				}
			}
		}()
	}
	r.Close()
	wg.Wait()
	close(errs)

	for err := range errs {
		if !errors.Is(err, kerrors.ErrRepoClosed) {
			t.Errorf("Expected only ErrRepoClosed while closing, got: %v", err)
		}
	}
}
