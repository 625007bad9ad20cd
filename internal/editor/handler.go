package editor

import (
	"net/http"

	log "github.com/sirupsen/logrus"
)

const ConfigPath = "/editor/config"

// Handler serves the editor options to the wiki page.
type Handler struct {
	body []byte
}

func NewHandler(cfg Config) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	body, err := cfg.JSON()
	if err != nil {
		return nil, err
	}
	return &Handler{body: body}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(h.body); err != nil {
		log.Debugf("write editor config: %v", err)
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle(ConfigPath, h)
}
