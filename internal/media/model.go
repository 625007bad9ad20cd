package media

import (
	"time"

	"github.com/Oniqq60/wiki_media/internal/dto"
)

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Metadata describes one stored upload. The same struct is persisted to
// MongoDB and Postgres.
type Metadata struct {
	ID           string    `bson:"_id" gorm:"primaryKey;type:varchar(36)" json:"id"`
	OwnerID      string    `bson:"owner_id" gorm:"index;type:varchar(64)" json:"owner_id"`
	Filename     string    `bson:"filename" gorm:"type:varchar(255);not null" json:"filename"`
	OriginalName string    `bson:"original_name" gorm:"type:varchar(255)" json:"original_name"`
	Kind         Kind      `bson:"kind" gorm:"type:varchar(10);not null" json:"kind"`
	ContentType  string    `bson:"content_type" gorm:"type:varchar(100)" json:"content_type"`
	Size         int64     `bson:"size" json:"size"`
	ObjectKey    string    `bson:"object_key" gorm:"uniqueIndex;type:varchar(512)" json:"object_key"`
	Location     string    `bson:"location" gorm:"type:varchar(1024)" json:"location"`
	Checksum     string    `bson:"checksum,omitempty" gorm:"type:varchar(64)" json:"checksum,omitempty"`
	UploadedAt   time.Time `bson:"uploaded_at" json:"uploaded_at"`
}

func (Metadata) TableName() string {
	return "wiki_media"
}

func mapMetadata(m Metadata) dto.MediaResponse {
	return dto.MediaResponse{
		ID:           m.ID,
		OwnerID:      m.OwnerID,
		Filename:     m.Filename,
		OriginalName: m.OriginalName,
		Kind:         string(m.Kind),
		ContentType:  m.ContentType,
		Size:         m.Size,
		Location:     m.Location,
		Checksum:     m.Checksum,
		UploadedAt:   m.UploadedAt.Unix(),
	}
}
