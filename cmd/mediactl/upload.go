package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Oniqq60/wiki_media/internal/bridge"
	"github.com/Oniqq60/wiki_media/internal/editor"
)

var errNotUploaded = errors.New("file was not uploaded")

type uploadOptions struct {
	server   string
	endpoint string
	fileType string
	token    string
	timeout  time.Duration
	out      string
}

func newUploadCmd(fs afero.Fs) *cobra.Command {
	var opts uploadOptions

	cmd := &cobra.Command{
		Use:     "upload <path>",
		Short:   "Upload an image or video through the editor file picker",
		Long: `Upload an image or video the way the wiki editor does. The location is
printed and the media element is appended to the page given with --out.`,
		Example: `mediactl upload ./diagram.png --server http://localhost:8082 --out page.html`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, fs, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", "http://localhost:8082", "media service base URL")
	cmd.Flags().StringVar(&opts.endpoint, "endpoint", bridge.DefaultEndpoint, "upload path on the server")
	cmd.Flags().StringVar(&opts.fileType, "type", "", "picker file type, image or media (guessed from the extension when empty)")
	cmd.Flags().StringVar(&opts.token, "token", "", "bearer token for authenticated servers")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "upload timeout, 0 waits indefinitely")
	cmd.Flags().StringVar(&opts.out, "out", "", "page file the editor syncs into; the uploaded media is appended to it")
	return cmd
}

func runUpload(cmd *cobra.Command, fs afero.Fs, path string, opts uploadOptions) error {
	fileType := opts.fileType
	if fileType == "" {
		fileType = "media"
		if bridge.MatchesAccept(bridge.KindImage.Accept(), path) {
			fileType = "image"
		}
	}

	bridgeOpts := []bridge.Option{
		bridge.WithEndpoint(opts.endpoint),
		bridge.WithLogger(log.StandardLogger()),
	}
	if opts.token != "" {
		bridgeOpts = append(bridgeOpts, bridge.WithToken(opts.token))
	}
	if opts.timeout > 0 {
		bridgeOpts = append(bridgeOpts, bridge.WithTimeout(opts.timeout))
	}

	picker := bridge.FSPicker{Fs: fs, Path: path}
	notifier := bridge.WriterNotifier{W: cmd.ErrOrStderr()}
	b := bridge.New(opts.server, picker, notifier, bridgeOpts...)

	field, err := newDocumentField(fs, opts.out)
	if err != nil {
		return err
	}
	cfg := editor.DefaultConfig()
	cfg.ImagesUploadURL = opts.endpoint
	return uploadIntoEditor(cmd.Context(), cfg, b.FilePicker(), field, fileType, cmd.OutOrStdout())
}

// uploadIntoEditor runs one file picker round in an editor backed by field.
// The location of each upload is echoed to out before it is inserted.
func uploadIntoEditor(ctx context.Context, cfg editor.Config, pick bridge.FilePickerFunc, field *documentField, fileType string, out io.Writer) error {
	e, err := editor.New(cfg, field, func(ctx context.Context, cb bridge.Callback, value string, meta bridge.PickerMeta) {
		pick(ctx, func(url string, details bridge.Details) {
			fmt.Fprintf(out, "%s\t%s\n", url, details.Title)
			cb(url, details)
		}, value, meta)
	})
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.Load(field.value); err != nil {
		return err
	}

	before := field.syncs
	e.OpenFilePicker(ctx, "", bridge.PickerMeta{FileType: fileType})
	if field.syncs == before {
		return errNotUploaded
	}
	return field.err
}
