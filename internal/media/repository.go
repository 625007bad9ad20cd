package media

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("media not found")

type Repository interface {
	Insert(ctx context.Context, metadata Metadata) (Metadata, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (Metadata, error)
	FindByObjectKey(ctx context.Context, key string) (Metadata, error)
	FindByOwner(ctx context.Context, ownerID string) ([]Metadata, error)
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(collection *mongo.Collection) Repository {
	return &mongoRepository{
		collection: collection,
	}
}

func (r *mongoRepository) Insert(ctx context.Context, metadata Metadata) (Metadata, error) {
	if metadata.UploadedAt.IsZero() {
		metadata.UploadedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, metadata); err != nil {
		return Metadata{}, err
	}
	return metadata, nil
}

func (r *mongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepository) FindByID(ctx context.Context, id string) (Metadata, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoRepository) FindByObjectKey(ctx context.Context, key string) (Metadata, error) {
	return r.findOne(ctx, bson.M{"object_key": key})
}

func (r *mongoRepository) FindByOwner(ctx context.Context, ownerID string) ([]Metadata, error) {
	opts := options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}})
	cur, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []Metadata
	for cur.Next(ctx) {
		var doc Metadata
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *mongoRepository) findOne(ctx context.Context, filter bson.M) (Metadata, error) {
	var metadata Metadata
	err := r.collection.FindOne(ctx, filter).Decode(&metadata)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Metadata{}, ErrNotFound
		}
		return Metadata{}, err
	}
	return metadata, nil
}

type memoryRepository struct {
	mu   sync.RWMutex
	docs map[string]Metadata
}

// NewMemoryRepository keeps metadata for the lifetime of the process.
func NewMemoryRepository() Repository {
	return &memoryRepository{docs: make(map[string]Metadata)}
}

func (r *memoryRepository) Insert(_ context.Context, metadata Metadata) (Metadata, error) {
	if metadata.UploadedAt.IsZero() {
		metadata.UploadedAt = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[metadata.ID]; ok {
		return Metadata{}, errors.New("duplicate media id")
	}
	r.docs[metadata.ID] = metadata
	return metadata, nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Metadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return Metadata{}, ErrNotFound
	}
	return doc, nil
}

func (r *memoryRepository) FindByObjectKey(_ context.Context, key string) (Metadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, doc := range r.docs {
		if doc.ObjectKey == key {
			return doc, nil
		}
	}
	return Metadata{}, ErrNotFound
}

func (r *memoryRepository) FindByOwner(_ context.Context, ownerID string) ([]Metadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var docs []Metadata
	for _, doc := range r.docs {
		if doc.OwnerID == ownerID {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})
	return docs, nil
}
