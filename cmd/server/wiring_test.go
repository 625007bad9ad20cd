package main

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oniqq60/wiki_media/internal/cfg"
	"github.com/Oniqq60/wiki_media/internal/dto"
)

func testConfig(t *testing.T) cfg.Config {
	t.Helper()
	return cfg.Config{
		HTTPPort:          "0",
		MaxUploadBytes:    cfg.DefaultMaxUploadBytes,
		StorageBackend:    cfg.StorageDisk,
		UploadDir:         t.TempDir(),
		MediaURLPrefix:    "/static/uploads",
		MetadataBackend:   cfg.MetadataMemory,
		KafkaTopic:        "media.uploaded",
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
	}
}

func newTestRouter(t *testing.T, conf cfg.Config) http.Handler {
	t.Helper()
	deps, err := connect(context.Background(), conf)
	require.NoError(t, err)
	t.Cleanup(deps.Close)

	router, err := newRouter(conf, deps)
	require.NoError(t, err)
	return router
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload_media", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestRouterUploadAndServe(t *testing.T) {
	router := newTestRouter(t, testConfig(t))
	png := append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}, []byte("png body")...)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "diagram.png", png))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	var resp dto.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "/static/uploads/diagram.png", resp.Location)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, resp.Location, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, png, rec.Body.Bytes())
}

func TestRouterServesEditorConfig(t *testing.T) {
	router := newTestRouter(t, testConfig(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/editor/config", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "#content", body["selector"])
	assert.Equal(t, "/upload_media", body["images_upload_url"])
}

func TestRouterRateLimits(t *testing.T) {
	conf := testConfig(t)
	conf.RateLimitRequests = 1
	router := newTestRouter(t, conf)

	send := func() int {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/editor/config", nil))
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}
