package migrate

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// sqliteSchema mirrors the goose migrations with types sqlite understands.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS plans (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		base_price NUMERIC NOT NULL DEFAULT 0,
		price_per_user NUMERIC NOT NULL DEFAULT 0,
		min_users INTEGER NOT NULL DEFAULT 1,
		features TEXT DEFAULT '{}',
		recommended BOOLEAN NOT NULL DEFAULT 0,
		action_limit INTEGER,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS tenants (
		id TEXT PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		owner_name TEXT NOT NULL,
		email TEXT NOT NULL,
		plan TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		mrr NUMERIC NOT NULL DEFAULT 0,
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		action_count INTEGER NOT NULL DEFAULT 0 CHECK (action_count >= 0),
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS collection_documents (
		namespace TEXT NOT NULL,
		collection TEXT NOT NULL,
		payload TEXT NOT NULL DEFAULT '[]',
		version INTEGER NOT NULL DEFAULT 1,
		updated_at DATETIME,
		PRIMARY KEY (namespace, collection)
	)`,
}

// ApplySQLiteSchema creates the platform tables on a sqlite connection. It is
// used for local runs with SALONBOOK_USE_SQLITE and by repository tests.
func ApplySQLiteSchema(ctx context.Context, conn *gorm.DB) error {
	for _, stmt := range sqliteSchema {
		if err := conn.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return nil
}
