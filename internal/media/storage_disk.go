package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// maxNameAttempts bounds the name_N search so a full directory cannot spin
// forever.
const maxNameAttempts = 10000

type diskStorage struct {
	fs        afero.Fs
	dir       string
	urlPrefix string
	mu        sync.Mutex
}

// NewDiskStorage stores uploads flat in dir. Name clashes are resolved by
// appending _1, _2, ... before the extension.
func NewDiskStorage(fs afero.Fs, dir, urlPrefix string) (ObjectStorage, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create upload dir %s", dir)
	}
	return &diskStorage{
		fs:        fs,
		dir:       dir,
		urlPrefix: urlPrefix,
	}, nil
}

func (s *diskStorage) Save(_ context.Context, filename string, _ string, data []byte) (StoredObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	name := filename
	for counter := 1; ; counter++ {
		f, err := s.fs.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			if _, err := f.Write(data); err != nil {
				_ = f.Close()
				_ = s.fs.Remove(filepath.Join(s.dir, name))
				return StoredObject{}, errors.Wrapf(err, "write %s", name)
			}
			if err := f.Close(); err != nil {
				return StoredObject{}, errors.Wrapf(err, "close %s", name)
			}
			return StoredObject{
				Key:      name,
				Filename: name,
				Checksum: hashSHA256(data),
				Size:     int64(len(data)),
			}, nil
		}
		if !os.IsExist(err) {
			return StoredObject{}, errors.Wrapf(err, "create %s", name)
		}
		if counter > maxNameAttempts {
			return StoredObject{}, errors.Errorf("no free name for %s", filename)
		}
		name = fmt.Sprintf("%s_%d%s", base, counter, ext)
	}
}

func (s *diskStorage) Open(_ context.Context, key string) (io.ReadCloser, int64, error) {
	p, err := s.resolve(key)
	if err != nil {
		return nil, 0, err
	}
	f, err := s.fs.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, ErrObjectNotFound
		}
		return nil, 0, errors.Wrapf(err, "open %s", key)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, errors.Wrapf(err, "stat %s", key)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, 0, ErrObjectNotFound
	}
	return f, info.Size(), nil
}

func (s *diskStorage) Delete(_ context.Context, key string) error {
	p, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove %s", key)
	}
	return nil
}

func (s *diskStorage) Location(key string) string {
	return joinLocation(s.urlPrefix, key)
}

// resolve keeps keys inside the upload directory.
func (s *diskStorage) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(strings.TrimPrefix(clean, "/"), "/") {
		return "", ErrObjectNotFound
	}
	return filepath.Join(s.dir, strings.TrimPrefix(clean, "/")), nil
}
