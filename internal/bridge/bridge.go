// Package bridge connects an editor's file picker to the /upload_media
// endpoint: it asks the user for a file, enforces the size limit locally,
// uploads the file and hands the stored location back to the editor.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Oniqq60/wiki_media/internal/dto"
)

const (
	// MaxFileSize is the largest file the editor will try to upload.
	MaxFileSize int64 = 16 * 1024 * 1024

	DefaultEndpoint = "/upload_media"
	uploadField     = "file"
)

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// KindFromFileType maps the editor's picker file type to a media kind.
// Anything other than "image" is treated as video.
func KindFromFileType(fileType string) Kind {
	if fileType == string(KindImage) {
		return KindImage
	}
	return KindVideo
}

// Accept returns the MIME filter shown in the file dialog.
func (k Kind) Accept() string {
	if k == KindImage {
		return "image/*"
	}
	return "video/*"
}

// PickerMeta describes the context the editor opened the picker in.
type PickerMeta struct {
	FileType string
}

// Details accompany the URL handed back to the editor.
type Details struct {
	Title string
}

// Callback is the editor's completion callback.
type Callback func(url string, details Details)

// FilePickerFunc is the editor extension point a Bridge registers as.
type FilePickerFunc func(ctx context.Context, cb Callback, value string, meta PickerMeta)

// Result is a successful upload.
type Result struct {
	URL   string
	Title string
}

type Notifier interface {
	// Alert shows a blocking message to the user.
	Alert(message string)
}

type Bridge struct {
	client   *resty.Client
	picker   Picker
	notifier Notifier
	endpoint string
	maxSize  int64
	logger   log.FieldLogger
}

type options struct {
	endpoint   string
	maxSize    int64
	token      string
	timeout    time.Duration
	httpClient *http.Client
	logger     *log.Logger
}

type Option func(*options)

func WithEndpoint(path string) Option {
	return func(o *options) { o.endpoint = path }
}

func WithMaxSize(bytes int64) Option {
	return func(o *options) { o.maxSize = bytes }
}

// WithToken sends a bearer token with every upload.
func WithToken(token string) Option {
	return func(o *options) { o.token = token }
}

// WithTimeout bounds each upload. Without it an upload waits as long as
// the context allows.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func New(baseURL string, picker Picker, notifier Notifier, opts ...Option) *Bridge {
	o := options{
		endpoint: DefaultEndpoint,
		maxSize:  MaxFileSize,
		logger:   log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	var client *resty.Client
	if o.httpClient != nil {
		client = resty.NewWithClient(o.httpClient)
	} else {
		client = resty.New()
	}
	client.SetBaseURL(baseURL).
		SetLogger(o.logger).
		SetRetryCount(0)
	if o.token != "" {
		client.SetAuthToken(o.token)
	}
	if o.timeout > 0 {
		client.SetTimeout(o.timeout)
	}

	return &Bridge{
		client:   client,
		picker:   picker,
		notifier: notifier,
		endpoint: o.endpoint,
		maxSize:  o.maxSize,
		logger:   o.logger.WithField("component", "media-bridge"),
	}
}

// Upload sends one file to the upload endpoint. Files over the size limit
// fail with ErrFileTooLarge without touching the network; every other
// failure is ErrUploadFailed.
func (b *Bridge) Upload(ctx context.Context, file File) (Result, error) {
	if file.Size() > b.maxSize {
		return Result{}, tooLarge(file.Name(), file.Size(), b.maxSize)
	}

	rc, err := file.Open()
	if err != nil {
		return Result{}, uploadFailed(pkgerrors.Wrap(err, "open selected file"))
	}
	defer rc.Close()

	resp, err := b.client.R().
		SetContext(ctx).
		SetFileReader(uploadField, file.Name(), rc).
		Post(b.endpoint)
	if err != nil {
		return Result{}, uploadFailed(err)
	}
	if !resp.IsSuccess() {
		return Result{}, uploadFailed(fmt.Errorf("unexpected status %d", resp.StatusCode()))
	}

	var body dto.UploadResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return Result{}, uploadFailed(pkgerrors.Wrap(err, "decode upload response"))
	}
	if body.Location == "" {
		return Result{}, uploadFailed(errMissingLocation)
	}

	return Result{URL: body.Location, Title: file.Name()}, nil
}

// PickFile is the editor's file-picker handler. It prompts for a file of
// the requested kind, uploads it and calls cb exactly once on success.
// Failures are shown through the notifier and cb is not called.
func (b *Bridge) PickFile(ctx context.Context, cb Callback, value string, meta PickerMeta) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Errorf("file picker panic: %v", r)
		}
	}()

	accept := KindFromFileType(meta.FileType).Accept()
	file, err := b.picker.Pick(ctx, accept)
	if err != nil {
		if !errors.Is(err, ErrNoSelection) {
			b.logger.Warnf("pick %s file: %v", accept, err)
		}
		return
	}

	result, err := b.Upload(ctx, file)
	if err != nil {
		b.logger.WithField("file", file.Name()).Warnf("media upload: %v", err)
		b.notifier.Alert(b.message(err))
		return
	}

	b.logger.WithField("file", file.Name()).Debugf("uploaded to %s", result.URL)
	cb(result.URL, Details{Title: result.Title})
}

// FilePicker returns PickFile as an editor extension point.
func (b *Bridge) FilePicker() FilePickerFunc {
	return b.PickFile
}

func (b *Bridge) message(err error) string {
	if errors.Is(err, ErrFileTooLarge) {
		return TooLargeMessage(b.maxSize)
	}
	return MessageUploadFailed
}
