package bridge

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// File is a user-selected file.
type File interface {
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// Picker asks the user for a single file matching accept, an HTML-style
// filter such as "image/*". A dismissed dialog yields ErrNoSelection.
type Picker interface {
	Pick(ctx context.Context, accept string) (File, error)
}

type PickerFunc func(ctx context.Context, accept string) (File, error)

func (f PickerFunc) Pick(ctx context.Context, accept string) (File, error) {
	return f(ctx, accept)
}

type memFile struct {
	name string
	data []byte
}

// NewFile wraps in-memory content as a File.
func NewFile(name string, data []byte) File {
	return &memFile{name: name, data: data}
}

func (f *memFile) Name() string { return f.name }
func (f *memFile) Size() int64  { return int64(len(f.data)) }

func (f *memFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// FSPicker "selects" a fixed path on a filesystem. It backs the command
// line client, where the path comes from an argument instead of a dialog.
type FSPicker struct {
	Fs   afero.Fs
	Path string
}

func (p FSPicker) Pick(ctx context.Context, accept string) (File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Path == "" {
		return nil, ErrNoSelection
	}

	info, err := p.Fs.Stat(p.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", p.Path)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", p.Path)
	}
	if !MatchesAccept(accept, info.Name()) {
		return nil, errors.Wrapf(ErrNotAccepted, "%s does not match %s", info.Name(), accept)
	}

	return &fsFile{fs: p.Fs, path: p.Path, name: info.Name(), size: info.Size()}, nil
}

type fsFile struct {
	fs   afero.Fs
	path string
	name string
	size int64
}

func (f *fsFile) Name() string { return f.name }
func (f *fsFile) Size() int64  { return f.size }

func (f *fsFile) Open() (io.ReadCloser, error) {
	return f.fs.Open(f.path)
}

var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".svg":  "image/svg+xml",
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".ogv":  "video/ogg",
	".avi":  "video/x-msvideo",
}

func typeByName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		mediaType, _, err := mime.ParseMediaType(t)
		if err == nil {
			return mediaType
		}
	}
	return ""
}

// MatchesAccept reports whether name passes an accept filter made of
// comma separated MIME types, "family/*" wildcards and ".ext" suffixes.
// An empty filter accepts everything.
func MatchesAccept(accept, name string) bool {
	accept = strings.TrimSpace(accept)
	if accept == "" {
		return true
	}

	ext := strings.ToLower(filepath.Ext(name))
	contentType := typeByName(name)
	for _, entry := range strings.Split(accept, ",") {
		entry = strings.ToLower(strings.TrimSpace(entry))
		switch {
		case entry == "":
		case entry == "*/*":
			return true
		case strings.HasPrefix(entry, "."):
			if entry == ext {
				return true
			}
		case strings.HasSuffix(entry, "/*"):
			if contentType != "" && strings.HasPrefix(contentType, strings.TrimSuffix(entry, "*")) {
				return true
			}
		case entry == contentType:
			return true
		}
	}
	return false
}

// WriterNotifier prints alerts as lines on W.
type WriterNotifier struct {
	W io.Writer
}

func (n WriterNotifier) Alert(message string) {
	fmt.Fprintln(n.W, message)
}
