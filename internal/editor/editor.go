// Package editor hosts a single rich text editor instance: it keeps the
// document content, syncs it into the page's form field on every change and
// routes file picker requests to the media upload bridge.
package editor

import (
	"context"
	"errors"
	"html"
	"sync"

	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Oniqq60/wiki_media/internal/bridge"
)

var ErrClosed = errors.New("editor is closed")

// FormField is the page's form input backing the editor.
type FormField interface {
	SetValue(content string) error
}

type ChangeListener func(content string)

type Editor struct {
	cfg    Config
	field  FormField
	picker bridge.FilePickerFunc

	mu        sync.Mutex
	content   string
	listeners []ChangeListener
	closed    bool
}

// New creates the editor and runs its setup hook, which registers a save
// on every change event. picker may be nil, in which case the file picker
// does nothing.
func New(cfg Config, field FormField, picker bridge.FilePickerFunc) (*Editor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if field == nil {
		return nil, errors.New("editor needs a form field")
	}

	e := &Editor{cfg: cfg, field: field, picker: picker}
	e.setup()
	return e, nil
}

func (e *Editor) setup() {
	e.OnChange(func(string) {
		if err := e.Save(); err != nil {
			log.Warnf("editor save: %v", err)
		}
	})
}

func (e *Editor) Config() Config {
	return e.cfg
}

func (e *Editor) Content() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.content
}

// OnChange registers fn to run after every change event.
func (e *Editor) OnChange(fn ChangeListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.listeners = append(e.listeners, fn)
}

// Load replaces the document without a change event, as when the editor
// starts from the form field's existing value.
func (e *Editor) Load(content string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.content = content
	return nil
}

// SetContent replaces the document and fires one change event.
func (e *Editor) SetContent(content string) error {
	return e.change(func(string) string { return content })
}

// InsertMedia appends an image or video element for url and fires one
// change event.
func (e *Editor) InsertMedia(kind bridge.Kind, url string, details bridge.Details) error {
	fragment := mediaElement(kind, url, details)
	return e.change(func(current string) string { return current + fragment })
}

// Save writes the current content into the form field.
func (e *Editor) Save() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	content := e.content
	e.mu.Unlock()

	return pkgerrors.Wrap(e.field.SetValue(content), "sync form field")
}

// OpenFilePicker hands the request to the registered picker. A successful
// pick inserts the uploaded media at the end of the document.
func (e *Editor) OpenFilePicker(ctx context.Context, value string, meta bridge.PickerMeta) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed || e.picker == nil {
		return
	}

	kind := bridge.KindFromFileType(meta.FileType)
	e.picker(ctx, func(url string, details bridge.Details) {
		if err := e.InsertMedia(kind, url, details); err != nil {
			log.Warnf("insert %s %s: %v", kind, url, err)
		}
	}, value, meta)
}

// Close detaches listeners. Further edits fail with ErrClosed.
func (e *Editor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.listeners = nil
	return nil
}

func (e *Editor) change(apply func(current string) string) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.content = apply(e.content)
	content := e.content
	listeners := append([]ChangeListener(nil), e.listeners...)
	e.mu.Unlock()

	for _, fn := range listeners {
		fn(content)
	}
	return nil
}

func mediaElement(kind bridge.Kind, url string, details bridge.Details) string {
	src := html.EscapeString(url)
	title := html.EscapeString(details.Title)
	if kind == bridge.KindImage {
		return `<img src="` + src + `" alt="` + title + `">`
	}
	return `<video controls="controls" src="` + src + `" title="` + title + `"></video>`
}
