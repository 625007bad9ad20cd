package dto

// UploadResponse is the body returned by POST /upload_media. Editors only
// look at Location.
type UploadResponse struct {
	Location string `json:"location"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MediaResponse struct {
	ID           string `json:"id"`
	OwnerID      string `json:"owner_id,omitempty"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	Kind         string `json:"kind"`
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size"`
	Location     string `json:"location"`
	Checksum     string `json:"checksum,omitempty"`
	UploadedAt   int64  `json:"uploaded_at"`
}
