package collections

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
)

// GormStore keeps collections in the collection_documents table. It is the
// authoritative copy.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(ctx context.Context, key Key) ([]byte, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	var doc models.CollectionDocument
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND collection = ?", key.Namespace, key.Collection).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(doc.Payload), nil
}

func (s *GormStore) Save(ctx context.Context, key Key, payload []byte) error {
	if err := key.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	doc := models.CollectionDocument{
		Namespace:  key.Namespace,
		Collection: key.Collection,
		Payload:    string(payload),
		Version:    1,
		UpdatedAt:  now,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "namespace"}, {Name: "collection"}},
			DoUpdates: clause.Assignments(map[string]any{
				"payload":    doc.Payload,
				"version":    gorm.Expr("collection_documents.version + 1"),
				"updated_at": now,
			}),
		}).
		Create(&doc).Error
}
