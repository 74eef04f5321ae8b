package models

import "time"

// CollectionDocument stores one whole tenant collection as a JSON payload.
type CollectionDocument struct {
	Namespace  string    `gorm:"column:namespace;primaryKey"`
	Collection string    `gorm:"column:collection;primaryKey"`
	Payload    string    `gorm:"column:payload;type:jsonb;not null"`
	Version    int64     `gorm:"column:version;not null;default:1"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CollectionDocument) TableName() string { return "collection_documents" }
