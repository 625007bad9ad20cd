package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// documentField is the editor's form field for a command line session.
// Every sync is written to path when one is set.
type documentField struct {
	fs    afero.Fs
	path  string
	value string
	syncs int
	err   error
}

// newDocumentField starts from the existing page at path, if any.
func newDocumentField(fs afero.Fs, path string) (*documentField, error) {
	f := &documentField{fs: fs, path: path}
	if path == "" {
		return f, nil
	}

	data, err := afero.ReadFile(fs, path)
	switch {
	case err == nil:
		f.value = string(data)
	case os.IsNotExist(err):
	default:
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return f, nil
}

func (f *documentField) SetValue(content string) error {
	f.value = content
	f.syncs++
	if f.path == "" {
		return nil
	}
	f.err = errors.Wrapf(afero.WriteFile(f.fs, f.path, []byte(content), 0o644), "write %s", f.path)
	return f.err
}
