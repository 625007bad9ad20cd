package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oniqq60/wiki_media/internal/bridge"
	"github.com/Oniqq60/wiki_media/internal/editor"
	"github.com/Oniqq60/wiki_media/internal/media"
)

func execute(t *testing.T, fs afero.Fs, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(fs)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestUploadCommand(t *testing.T) {
	var gotName string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, `{"error": "No file part"}`, http.StatusBadRequest)
			return
		}
		_, _ = io.Copy(io.Discard, file)
		gotName = header.Filename
		_, _ = w.Write([]byte(`{"location": "/static/uploads/` + header.Filename + `"}`))
	}))
	defer srv.Close()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tmp/clip.mp4", []byte("video"), 0o644))

	stdout, _, err := execute(t, fs, "upload", "/tmp/clip.mp4", "--server", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", gotName)
	assert.Equal(t, "/static/uploads/clip.mp4\tclip.mp4\n", stdout)
}

func newLocationServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, `{"error": "No file part"}`, http.StatusBadRequest)
			return
		}
		_, _ = io.Copy(io.Discard, file)
		_, _ = w.Write([]byte(`{"location": "/static/uploads/` + header.Filename + `"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestUploadIntoEditorSyncsFieldOnce(t *testing.T) {
	srv := newLocationServer(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tmp/diagram.png", []byte("png"), 0o644))

	b := bridge.New(srv.URL, bridge.FSPicker{Fs: fs, Path: "/tmp/diagram.png"}, bridge.WriterNotifier{W: io.Discard})
	field, err := newDocumentField(fs, "")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, uploadIntoEditor(context.Background(), editor.DefaultConfig(), b.FilePicker(), field, "image", &out))

	assert.Equal(t, 1, field.syncs)
	assert.Equal(t, `<img src="/static/uploads/diagram.png" alt="diagram.png">`, field.value)
	assert.Equal(t, "/static/uploads/diagram.png\tdiagram.png\n", out.String())
}

func TestUploadCommandAppendsToPage(t *testing.T) {
	srv := newLocationServer(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tmp/clip.mp4", []byte("video"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/tmp/diagram.png", []byte("png"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/tmp/page.html", []byte("<p>intro</p>"), 0o644))

	_, _, err := execute(t, fs, "upload", "/tmp/clip.mp4", "--server", srv.URL, "--out", "/tmp/page.html")
	require.NoError(t, err)
	_, _, err = execute(t, fs, "upload", "/tmp/diagram.png", "--server", srv.URL, "--out", "/tmp/page.html")
	require.NoError(t, err)

	page, err := afero.ReadFile(fs, "/tmp/page.html")
	require.NoError(t, err)
	assert.Equal(t, `<p>intro</p>`+
		`<video controls="controls" src="/static/uploads/clip.mp4" title="clip.mp4"></video>`+
		`<img src="/static/uploads/diagram.png" alt="diagram.png">`, string(page))
}

func TestUploadCommandLeavesPageOnFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tmp/clip.mp4", []byte("video"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/tmp/page.html", []byte("<p>intro</p>"), 0o644))

	_, _, err := execute(t, fs, "upload", "/tmp/clip.mp4", "--server", "http://127.0.0.1:1", "--out", "/tmp/page.html")
	assert.ErrorIs(t, err, errNotUploaded)

	page, err := afero.ReadFile(fs, "/tmp/page.html")
	require.NoError(t, err)
	assert.Equal(t, "<p>intro</p>", string(page))
}

func TestUploadCommandReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "Failed to save file"}`))
	}))
	defer srv.Close()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tmp/a.png", []byte("png"), 0o644))

	stdout, stderr, err := execute(t, fs, "upload", "/tmp/a.png", "--server", srv.URL)
	assert.ErrorIs(t, err, errNotUploaded)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Upload failed")
}

func TestUploadCommandRejectsWrongType(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tmp/clip.mp4", []byte("video"), 0o644))

	_, _, err := execute(t, fs, "upload", "/tmp/clip.mp4", "--type", "image", "--server", "http://127.0.0.1:1")
	assert.ErrorIs(t, err, errNotUploaded)
}

func TestEditorConfigCommand(t *testing.T) {
	stdout, _, err := execute(t, afero.NewMemMapFs(), "editor-config", "--height", "640")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"selector": "#content"`)
	assert.Contains(t, stdout, `"height": 640`)
	assert.Contains(t, stdout, `"file_picker_types": "image media"`)

	_, _, err = execute(t, afero.NewMemMapFs(), "editor-config", "--upload-url", "upload_media")
	assert.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	const secret = "0123456789abcdef0123456789abcdef"
	stdout, _, err := execute(t, afero.NewMemMapFs(), "token", "--secret", secret, "--user", "42", "--role", "ADMIN")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/upload_media", nil)
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(stdout))
	requester, err := media.NewAuthorizer([]byte(secret), nil).Authorize(req)
	require.NoError(t, err)
	assert.Equal(t, media.Requester{UserID: "42", Role: media.RoleAdmin}, requester)

	_, _, err = execute(t, afero.NewMemMapFs(), "token", "--secret", secret, "--user", "42", "--role", "owner")
	assert.Error(t, err)
}
