package contract

import "context"

// DocumentRepository stores small JSON documents under a key.
type DocumentRepository interface {
	// Get decodes the document into dest and reports whether it existed.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Put(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
}
