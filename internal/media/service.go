package media

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	ErrFileTooLarge = errors.New("file too large")
	ErrEmptyContent = errors.New("file content required")
)

type Service interface {
	Upload(ctx context.Context, input UploadInput) (Metadata, error)
	Open(ctx context.Context, key string) (io.ReadCloser, int64, Metadata, error)
	Get(ctx context.Context, id string, requester Requester) (Metadata, error)
	ListByOwner(ctx context.Context, ownerID string, requester Requester) ([]Metadata, error)
	Delete(ctx context.Context, id string, requester Requester) error
}

type UploadInput struct {
	OwnerID  string
	Filename string
	Content  []byte
}

type service struct {
	repo      Repository
	storage   ObjectStorage
	publisher EventPublisher
	maxSize   int64
}

func NewService(repo Repository, storage ObjectStorage, publisher EventPublisher, maxSize int64) Service {
	if publisher == nil {
		publisher = NewNopPublisher()
	}
	return &service{
		repo:      repo,
		storage:   storage,
		publisher: publisher,
		maxSize:   maxSize,
	}
}

func (s *service) Upload(ctx context.Context, input UploadInput) (Metadata, error) {
	filename := SecureFilename(input.Filename)
	if err := ValidateFilename(filename); err != nil {
		return Metadata{}, err
	}
	kind, err := KindOf(filename)
	if err != nil {
		return Metadata{}, err
	}
	if len(input.Content) == 0 {
		return Metadata{}, ErrEmptyContent
	}
	if int64(len(input.Content)) > s.maxSize {
		log.Warnf("file size %d exceeds limit of %d bytes", len(input.Content), s.maxSize)
		return Metadata{}, ErrFileTooLarge
	}
	if err := ValidateContent(filename, input.Content); err != nil {
		log.Warnf("invalid %s format for file %s", kind, filename)
		return Metadata{}, err
	}
	contentType := ContentTypeOf(filename, input.Content)

	saveCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	obj, err := s.storage.Save(saveCtx, filename, contentType, input.Content)
	if err != nil {
		return Metadata{}, pkgerrors.Wrap(err, "save media")
	}

	metadata := Metadata{
		ID:           uuid.NewString(),
		OwnerID:      input.OwnerID,
		Filename:     obj.Filename,
		OriginalName: input.Filename,
		Kind:         kind,
		ContentType:  contentType,
		Size:         obj.Size,
		ObjectKey:    obj.Key,
		Location:     s.storage.Location(obj.Key),
		Checksum:     obj.Checksum,
		UploadedAt:   time.Now().UTC(),
	}

	insertCtx, cancelInsert := context.WithTimeout(ctx, 10*time.Second)
	defer cancelInsert()
	metadata, err = s.repo.Insert(insertCtx, metadata)
	if err != nil {
		_ = s.storage.Delete(context.Background(), obj.Key)
		return Metadata{}, pkgerrors.Wrap(err, "record media")
	}

	if err := s.publisher.PublishUploaded(ctx, UploadedEvent{
		MediaID:   metadata.ID,
		OwnerID:   metadata.OwnerID,
		Filename:  metadata.Filename,
		Kind:      metadata.Kind,
		Size:      metadata.Size,
		Location:  metadata.Location,
		Timestamp: metadata.UploadedAt,
	}); err != nil {
		log.Errorf("publish upload event for %s: %v", metadata.ID, err)
	}

	return metadata, nil
}

// Open streams a stored object by key. Metadata is zero when the object
// predates the repository.
func (s *service) Open(ctx context.Context, key string) (io.ReadCloser, int64, Metadata, error) {
	reader, size, err := s.storage.Open(ctx, key)
	if err != nil {
		return nil, 0, Metadata{}, err
	}
	doc, err := s.repo.FindByObjectKey(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		_ = reader.Close()
		return nil, 0, Metadata{}, err
	}
	return reader, size, doc, nil
}

func (s *service) Get(ctx context.Context, id string, requester Requester) (Metadata, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Metadata{}, err
	}
	if !requester.CanManage(doc) {
		return Metadata{}, ErrForbidden
	}
	return doc, nil
}

func (s *service) ListByOwner(ctx context.Context, ownerID string, requester Requester) ([]Metadata, error) {
	if requester.Role != RoleAdmin && requester.UserID != ownerID {
		return nil, ErrForbidden
	}
	return s.repo.FindByOwner(ctx, ownerID)
}

func (s *service) Delete(ctx context.Context, id string, requester Requester) error {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !requester.CanManage(doc) {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	go func(objectKey string) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.storage.Delete(ctx, objectKey); err != nil {
			log.Errorf("delete object %s: %v", objectKey, err)
		}
	}(doc.ObjectKey)

	return nil
}
