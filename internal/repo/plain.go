package repo

import "iter"

// PlainRepo stores documents unencrypted. Handles hash the content itself,
// so identical documents share one entry.
type PlainRepo struct {
	base string
}

// NewPlainRepo returns a plain repository rooted at base.
func NewPlainRepo(base string) *PlainRepo {
	return &PlainRepo{base: base}
}

func (r *PlainRepo) Add(c Collection, content []byte) (Handle, error) {
	h := handleOf(content)
	if err := writeEntry(r.base, c, h, content); err != nil {
		return "", err
	}
	return h, nil
}

func (r *PlainRepo) Read(c Collection, h Handle) ([]byte, error) {
	path, err := entryPath(r.base, c, h)
	if err != nil {
		return nil, err
	}
	return readEntry(path)
}

func (r *PlainRepo) Delete(c Collection, h Handle) error {
	return removeEntry(r.base, c, h)
}

func (r *PlainRepo) List(c Collection) iter.Seq2[Document, error] {
	return listCollection(r.base, c, readEntry)
}
