package media

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB
}

// OpenPostgres connects and migrates the wiki_media table.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Metadata{}); err != nil {
		return nil, err
	}
	return db, nil
}

func NewGormRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Insert(ctx context.Context, metadata Metadata) (Metadata, error) {
	if metadata.UploadedAt.IsZero() {
		metadata.UploadedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(&metadata).Error; err != nil {
		return Metadata{}, err
	}
	return metadata, nil
}

func (r *gormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Metadata{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id string) (Metadata, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *gormRepository) FindByObjectKey(ctx context.Context, key string) (Metadata, error) {
	return r.first(ctx, "object_key = ?", key)
}

func (r *gormRepository) FindByOwner(ctx context.Context, ownerID string) ([]Metadata, error) {
	var docs []Metadata
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("uploaded_at DESC").
		Find(&docs).Error
	return docs, err
}

func (r *gormRepository) first(ctx context.Context, query string, arg interface{}) (Metadata, error) {
	var metadata Metadata
	err := r.db.WithContext(ctx).Where(query, arg).First(&metadata).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Metadata{}, ErrNotFound
		}
		return Metadata{}, err
	}
	return metadata, nil
}
