package bridge

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSPicker(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/home/user/cat.png", []byte("png data"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/home/user/clip.mp4", []byte("mp4 data"), 0o644))
	require.NoError(t, fs.MkdirAll("/home/user/dir", 0o755))

	file, err := FSPicker{Fs: fs, Path: "/home/user/cat.png"}.Pick(context.Background(), "image/*")
	require.NoError(t, err)
	assert.Equal(t, "cat.png", file.Name())
	assert.Equal(t, int64(8), file.Size())

	rc, err := file.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, []byte("png data"), data)

	_, err = FSPicker{Fs: fs, Path: "/home/user/clip.mp4"}.Pick(context.Background(), "image/*")
	assert.ErrorIs(t, err, ErrNotAccepted)

	_, err = FSPicker{Fs: fs}.Pick(context.Background(), "image/*")
	assert.ErrorIs(t, err, ErrNoSelection)

	_, err = FSPicker{Fs: fs, Path: "/home/user/missing.png"}.Pick(context.Background(), "image/*")
	assert.Error(t, err)

	_, err = FSPicker{Fs: fs, Path: "/home/user/dir"}.Pick(context.Background(), "")
	assert.Error(t, err)
}

func TestMatchesAccept(t *testing.T) {
	tests := []struct {
		accept string
		name   string
		want   bool
	}{
		{"image/*", "a.jpg", true},
		{"image/*", "a.JPEG", true},
		{"image/*", "a.mp4", false},
		{"video/*", "a.mp4", true},
		{"video/*", "a.webm", true},
		{"video/*", "a.png", false},
		{"video/*", "noext", false},
		{"", "anything.bin", true},
		{"*/*", "anything.bin", true},
		{".png, .gif", "a.gif", true},
		{".png, .gif", "a.jpg", false},
		{"image/png", "a.png", true},
		{"image/png", "a.jpg", false},
	}

	for _, tt := range tests {
		t.Run(tt.accept+" "+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesAccept(tt.accept, tt.name))
		})
	}
}

func TestWriterNotifier(t *testing.T) {
	var buf bytes.Buffer
	WriterNotifier{W: &buf}.Alert("Upload failed")
	assert.Equal(t, "Upload failed\n", buf.String())
}
