package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Repository reads and writes versioned documents on top of a Store.
type Repository struct {
	store Store
}

func NewRepository(store Store) *Repository {
	return &Repository{store: store}
}

func (r *Repository) Store() Store {
	return r.store
}

// Load decodes the document under key into dst, upgrading older versions.
// It reports false when the key has never been written.
func (r *Repository) Load(ctx context.Context, key string, dst any) (bool, error) {
	raw, found, err := r.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !found {
		return false, nil
	}
	env, err := DecodeEnvelope(raw)
	if err != nil {
		return true, fmt.Errorf("%s: %w", key, err)
	}
	payload, err := Migrate(key, env)
	if err != nil {
		return true, err
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Save writes v under key at the current schema version.
func (r *Repository) Save(ctx context.Context, key string, v any) error {
	raw, err := EncodeEnvelope(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := r.store.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.store.Close()
}
