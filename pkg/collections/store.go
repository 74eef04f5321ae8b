package collections

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by a Store when nothing has been saved under a key yet.
var ErrNotFound = errors.New("collection not found")

// Key addresses one whole collection inside a tenant namespace.
type Key struct {
	Namespace  string
	Collection string
}

func (k Key) Validate() error {
	if strings.TrimSpace(k.Namespace) == "" {
		return fmt.Errorf("collection namespace is required")
	}
	if strings.TrimSpace(k.Collection) == "" {
		return fmt.Errorf("collection name is required")
	}
	return nil
}

func (k Key) String() string {
	return k.Namespace + "/" + k.Collection
}

// Store persists raw JSON payloads. Save always replaces the whole collection.
type Store interface {
	Load(ctx context.Context, key Key) ([]byte, error)
	Save(ctx context.Context, key Key, payload []byte) error
}
