package port

import "context"

// StoredObject identifies a persisted object and its public URL
type StoredObject struct {
	Key string
	URL string
}

// ObjectStorage persists opaque byte sequences under caller-chosen keys.
// Put is overwrite-safe: writing the same key twice must not corrupt prior
// content, which makes bounded retries of the same write acceptable.
type ObjectStorage interface {
	Put(ctx context.Context, key string, content []byte, contentType string) (*StoredObject, error)
	Get(ctx context.Context, key string) ([]byte, error)
}
