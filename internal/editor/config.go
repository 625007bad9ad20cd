package editor

import (
	"errors"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/Oniqq60/wiki_media/internal/bridge"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config holds the rich text editor options the wiki page initialises the
// editor with. Field names follow the editor's own option keys.
type Config struct {
	Selector         string `json:"selector"`
	Height           int    `json:"height"`
	Plugins          string `json:"plugins"`
	Toolbar          string `json:"toolbar"`
	ContentStyle     string `json:"content_style"`
	AutomaticUploads bool   `json:"automatic_uploads"`
	ImagesUploadURL  string `json:"images_upload_url"`
	FilePickerTypes  string `json:"file_picker_types"`
	RelativeURLs     bool   `json:"relative_urls"`
}

func DefaultConfig() Config {
	return Config{
		Selector:         "#content",
		Height:           500,
		Plugins:          "image media link code autolink lists table",
		Toolbar:          "undo redo | formatselect | bold italic | alignleft aligncenter alignright | bullist numlist | link image media | code",
		ContentStyle:     "body { font-family: Arial, sans-serif; }",
		AutomaticUploads: true,
		ImagesUploadURL:  bridge.DefaultEndpoint,
		FilePickerTypes:  "image media",
		RelativeURLs:     false,
	}
}

var pickerTypes = map[string]struct{}{
	"file":  {},
	"image": {},
	"media": {},
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Selector) == "" {
		return errors.New("editor selector is required")
	}
	if c.Height <= 0 {
		return fmt.Errorf("editor height must be positive, got %d", c.Height)
	}
	if !strings.HasPrefix(c.ImagesUploadURL, "/") && !strings.Contains(c.ImagesUploadURL, "://") {
		return fmt.Errorf("images upload url %q must be absolute", c.ImagesUploadURL)
	}
	for _, t := range c.PickerTypes() {
		if _, ok := pickerTypes[t]; !ok {
			return fmt.Errorf("unknown file picker type %q", t)
		}
	}
	return nil
}

// PickerTypes splits FilePickerTypes into its entries.
func (c Config) PickerTypes() []string {
	return strings.Fields(c.FilePickerTypes)
}

func (c Config) JSON() ([]byte, error) {
	return json.Marshal(c)
}
