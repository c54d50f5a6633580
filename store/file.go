package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/rotisserie/eris"
)

// Save writes the store to path. A sibling .lock file serializes writers
// across processes, and the document is renamed into place so readers never
// see a partial file.
func (s *Store) Save(path string) error {
	data, err := s.Serialize()
	if err != nil {
		return err
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return eris.Wrapf(err, "store: lock %s", path)
	}
	defer lock.Unlock()

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return eris.Wrap(err, "store: create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return eris.Wrap(err, "store: write temp file")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "store: close temp file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrapf(err, "store: replace %s", path)
	}
	return nil
}

// Load reads a store saved at path. A missing file yields an empty store.
func Load(path string) (*Store, error) {
	s := New()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}

	lock := flock.New(path + ".lock")
	if err := lock.RLock(); err != nil {
		return nil, eris.Wrapf(err, "store: lock %s", path)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "store: read %s", path)
	}

	m, err := Deserialize(data)
	if err != nil {
		return nil, eris.Wrapf(err, "store: load %s", path)
	}
	s.Merge(m)
	return s, nil
}
