package repo

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	kerrors "github.com/PolarWolf314/trove/internal/errors"
)

// Document is one element of a collection listing.
type Document struct {
	Handle  Handle
	Content []byte
}

// Store is the capability shared by the repository backends.
type Store interface {
	Add(c Collection, content []byte) (Handle, error)
	Read(c Collection, h Handle) ([]byte, error)
	Delete(c Collection, h Handle) error
	List(c Collection) iter.Seq2[Document, error]
}

var (
	_ Store = (*EncryptedRepo)(nil)
	_ Store = (*PlainRepo)(nil)
)

const listBatchSize = 64

func collectionFolder(base string, c Collection) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	return filepath.Join(base, string(c)), nil
}

// entryPath resolves the file for h. Malformed handles report ErrNotFound
// as well as ErrInvalidHandle, since no such entry can exist.
func entryPath(base string, c Collection, h Handle) (string, error) {
	folder, err := collectionFolder(base, c)
	if err != nil {
		return "", err
	}
	if err := h.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", kerrors.ErrNotFound, err)
	}
	return filepath.Join(folder, string(h)), nil
}

// writeEntry creates the collection folder if needed and writes data to h,
// replacing any file already stored under the same handle.
func writeEntry(base string, c Collection, h Handle, data []byte) error {
	folder, err := collectionFolder(base, c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(folder, 0700); err != nil {
		return ioErr("creating collection "+folder, err)
	}

	path := filepath.Join(folder, string(h))
	if err := os.WriteFile(path, data, 0600); err != nil {
		return ioErr("writing "+path, err)
	}
	return nil
}

func readEntry(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, kerrors.ErrNotFound)
	}
	if err != nil {
		return nil, ioErr("reading "+path, err)
	}
	return data, nil
}

func removeEntry(base string, c Collection, h Handle) error {
	path, err := entryPath(base, c, h)
	if err != nil {
		return err
	}

	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", path, kerrors.ErrNotFound)
	}
	if err != nil {
		return ioErr("inspecting "+path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file: %w", path, kerrors.ErrNotFound)
	}

	if err := os.Remove(path); err != nil {
		return ioErr("removing "+path, err)
	}
	return nil
}

// listCollection lazily yields every regular file in the collection except
// the config file, reading each with open as the sequence advances. A
// missing collection folder is an empty sequence.
func listCollection(base string, c Collection, open func(path string) ([]byte, error)) iter.Seq2[Document, error] {
	return func(yield func(Document, error) bool) {
		folder, err := collectionFolder(base, c)
		if err != nil {
			yield(Document{}, err)
			return
		}

		dir, err := os.Open(folder)
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		if err != nil {
			yield(Document{}, ioErr("opening collection "+folder, err))
			return
		}
		defer dir.Close()

		for {
			entries, err := dir.ReadDir(listBatchSize)
			for _, entry := range entries {
				if entry.Name() == ConfigFileName || !entry.Type().IsRegular() {
					continue
				}

				content, openErr := open(filepath.Join(folder, entry.Name()))
				if !yield(Document{Handle: Handle(entry.Name()), Content: content}, openErr) {
					return
				}
			}

			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(Document{}, ioErr("listing collection "+folder, err))
				return
			}
		}
	}
}
