package bridge_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oniqq60/wiki_media/internal/bridge"
	"github.com/Oniqq60/wiki_media/internal/media"
)

type alerts []string

func (a *alerts) Alert(message string) { *a = append(*a, message) }

func TestBridgeAgainstMediaServer(t *testing.T) {
	storage, err := media.NewDiskStorage(afero.NewMemMapFs(), "static/uploads", "/static/uploads")
	require.NoError(t, err)
	svc := media.NewService(media.NewMemoryRepository(), storage, media.NewNopPublisher(), bridge.MaxFileSize)
	srv := httptest.NewServer(media.NewHandler(svc, media.NewAuthorizer(nil, nil), bridge.MaxFileSize, "/static/uploads").Routes())
	defer srv.Close()

	logger := log.New()
	logger.SetOutput(io.Discard)

	jpeg := append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}, []byte("JFIF image body")...)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/photos/abc.jpg", jpeg, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/photos/fake.jpg", []byte("not an image"), 0o644))

	var shown alerts
	var gotURL string
	var gotDetails bridge.Details
	calls := 0
	cb := func(url string, details bridge.Details) {
		calls++
		gotURL = url
		gotDetails = details
	}

	b := bridge.New(srv.URL, bridge.FSPicker{Fs: fs, Path: "/photos/abc.jpg"}, &shown, bridge.WithLogger(logger))
	b.PickFile(context.Background(), cb, "", bridge.PickerMeta{FileType: "image"})

	require.Equal(t, 1, calls)
	assert.Equal(t, "/static/uploads/abc.jpg", gotURL)
	assert.Equal(t, bridge.Details{Title: "abc.jpg"}, gotDetails)
	assert.Empty(t, shown)

	b = bridge.New(srv.URL, bridge.FSPicker{Fs: fs, Path: "/photos/fake.jpg"}, &shown, bridge.WithLogger(logger))
	b.PickFile(context.Background(), cb, "", bridge.PickerMeta{FileType: "image"})

	assert.Equal(t, 1, calls)
	assert.Equal(t, alerts{bridge.MessageUploadFailed}, shown)
}
