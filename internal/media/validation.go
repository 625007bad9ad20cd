package media

import (
	"bytes"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var allowedExtensions = map[string]Kind{
	".png":  KindImage,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".gif":  KindImage,
	".mp4":  KindVideo,
	".webm": KindVideo,
}

var fallbackContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".mp4":  "video/mp4",
	".webm": "video/webm",
}

var (
	ErrInvalidFilename = errors.New("invalid filename")
	ErrInvalidFileType = errors.New("file type not allowed")
	ErrInvalidContent  = errors.New("file content does not match its type")
)

var (
	jpegMagic = []byte{0xFF, 0xD8}
	pngMagic  = []byte{0x89, 'P', 'N', 'G'}
	gifMagic  = []byte("GIF")
	mp4Magic  = []byte{0x00, 0x00, 0x00}
	webmMagic = []byte{0x1A, 0x45, 0xDF, 0xA3}
)

// sniffLen is how much of an upload is inspected for magic bytes.
const sniffLen = 512

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename reduces a client supplied name to a flat ASCII name that is
// safe to use on disk and in URLs. It can return "" for names made only of
// unsafe characters.
func SecureFilename(name string) string {
	name = norm.NFKD.String(name)

	var ascii strings.Builder
	for _, r := range name {
		if r < utf8.RuneSelf {
			ascii.WriteRune(r)
		}
	}

	name = strings.NewReplacer("/", " ", "\\", " ").Replace(ascii.String())
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// KindOf returns the media kind for an allowed filename.
func KindOf(filename string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return "", ErrInvalidFilename
	}
	kind, ok := allowedExtensions[ext]
	if !ok {
		return "", ErrInvalidFileType
	}
	return kind, nil
}

// ValidateFilename checks a sanitised name.
func ValidateFilename(filename string) error {
	if filename == "" || len(filename) > 255 {
		return ErrInvalidFilename
	}
	ext := filepath.Ext(filename)
	if strings.TrimSuffix(filename, ext) == "" {
		return ErrInvalidFilename
	}
	_, err := KindOf(filename)
	return err
}

// ValidateContent compares the leading bytes of the upload with the
// signature expected for its extension.
func ValidateContent(filename string, content []byte) error {
	header := content
	if len(header) > sniffLen {
		header = header[:sniffLen]
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		if bytes.HasPrefix(header, jpegMagic) || bytes.HasPrefix(header, pngMagic) || bytes.HasPrefix(header, gifMagic) {
			return nil
		}
	case ".mp4", ".webm":
		if bytes.HasPrefix(header, mp4Magic) || bytes.HasPrefix(header, webmMagic) {
			return nil
		}
	default:
		return ErrInvalidFileType
	}
	return ErrInvalidContent
}

// ContentTypeOf picks a MIME type from the extension, falling back to
// sniffing.
func ContentTypeOf(filename string, content []byte) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	if ct, ok := fallbackContentTypes[ext]; ok {
		return ct
	}
	return http.DetectContentType(content)
}

// EscapeFilename escapes a filename for use in a quoted header value.
func EscapeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, `\`, `\\`)
	filename = strings.ReplaceAll(filename, `"`, `\"`)
	return filename
}
