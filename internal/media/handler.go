package media

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Oniqq60/wiki_media/internal/dto"
	log "github.com/sirupsen/logrus"
)

const (
	// multipartOverhead is the slack allowed on top of the file limit for
	// boundaries and part headers.
	multipartOverhead = 1 << 20
	multipartMemory   = 8 << 20

	UploadPath = "/upload_media"
)

type Handler struct {
	service   Service
	auth      Authorizer
	maxSize   int64
	urlPrefix string
}

func NewHandler(service Service, auth Authorizer, maxSize int64, urlPrefix string) *Handler {
	if auth == nil {
		auth = openAuthorizer{}
	}
	return &Handler{
		service:   service,
		auth:      auth,
		maxSize:   maxSize,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
	}
}

// UploadMedia accepts a multipart body with a single "file" part and
// answers with the location editors insert into documents.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	requester, err := h.auth.Authorize(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		// A part without a filename is parsed as a plain value.
		if _, ok := r.MultipartForm.Value["file"]; ok {
			writeError(w, http.StatusBadRequest, "No selected file")
			return
		}
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No selected file")
		return
	}
	if header.Size > h.maxSize {
		log.Warnf("file size %d exceeds limit of %d bytes", header.Size, h.maxSize)
		writeError(w, http.StatusRequestEntityTooLarge, "File is too large")
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, h.maxSize+1))
	if err != nil {
		log.Errorf("read upload %s: %v", header.Filename, err)
		writeError(w, http.StatusInternalServerError, "Failed to save file")
		return
	}

	metadata, err := h.service.Upload(r.Context(), UploadInput{
		OwnerID:  requester.UserID,
		Filename: header.Filename,
		Content:  content,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrFileTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "File is too large")
		case errors.Is(err, ErrInvalidFilename), errors.Is(err, ErrInvalidFileType):
			writeError(w, http.StatusBadRequest, "File type not allowed")
		case errors.Is(err, ErrInvalidContent):
			writeError(w, http.StatusBadRequest, "Invalid file content")
		case errors.Is(err, ErrEmptyContent):
			writeError(w, http.StatusBadRequest, "Empty file")
		default:
			log.Errorf("file upload error: %+v", err)
			writeError(w, http.StatusInternalServerError, "Failed to save file")
		}
		return
	}

	log.Infof("stored %s %s (%d bytes) at %s", metadata.Kind, metadata.Filename, metadata.Size, metadata.Location)
	writeJSON(w, http.StatusOK, dto.UploadResponse{Location: metadata.Location})
}

// ServeObject streams a stored upload. Locations are public so that
// rendered wiki pages can embed them.
func (h *Handler) ServeObject(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, h.urlPrefix+"/")
	if key == "" || key == r.URL.Path {
		http.NotFound(w, r)
		return
	}

	reader, size, doc, err := h.service.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Errorf("open object %s: %v", key, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer reader.Close()

	contentType := doc.ContentType
	if contentType == "" {
		contentType = ContentTypeOf(key, nil)
	}
	name := doc.Filename
	if name == "" {
		name = key[strings.LastIndex(key, "/")+1:]
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Content-Disposition", `inline; filename="`+EscapeFilename(name)+`"`)
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, reader); err != nil {
		log.Debugf("stream object %s: %v", key, err)
	}
}

func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	requester, err := h.auth.Authorize(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/media/")
	doc, err := h.service.Get(r.Context(), id, requester)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapMetadata(doc))
}

func (h *Handler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	requester, err := h.auth.Authorize(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	ownerID := strings.TrimPrefix(r.URL.Path, "/media/owner/")
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "owner id required")
		return
	}

	docs, err := h.service.ListByOwner(r.Context(), ownerID, requester)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]dto.MediaResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, mapMetadata(doc))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	requester, err := h.auth.Authorize(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/media/")
	if err := h.service.Delete(r.Context(), id, requester); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.Register(mux)
	return mux
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc(UploadPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.UploadMedia(w, r)
	})
	mux.HandleFunc(h.urlPrefix+"/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.ServeObject(w, r)
	})
	mux.HandleFunc("/media/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/media/owner/"):
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, "method not allowed")
				return
			}
			h.ListByOwner(w, r)
		case r.URL.Path == "/media/":
			writeError(w, http.StatusBadRequest, "media id required")
		default:
			switch r.Method {
			case http.MethodGet:
				h.GetMedia(w, r)
			case http.MethodDelete:
				h.DeleteMedia(w, r)
			default:
				writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			}
		}
	})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		log.Errorf("media request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeAuthError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrUnauthorized) {
		writeError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	log.Errorf("authorize request: %v", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Errorf("write json error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message})
}
