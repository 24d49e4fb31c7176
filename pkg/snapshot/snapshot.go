// Package snapshot persists the last successfully fetched catalog under a
// single fixed key so it can be served while offline.
//
// A Store pairs a byte level Backend with a Codec. Backends live in
// internal/snapshot: bbolt, plain files and memory.
package snapshot

import (
	"context"

	"github.com/agentstation/utc"

	"github.com/agentstation/productmap/pkg/constants"
	"github.com/agentstation/productmap/pkg/errors"
	"github.com/agentstation/productmap/pkg/products"
)

// Backend is a durable key-value store. Put must replace the value of key
// all at once: a reader sees either the old or the new value, never a mix.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Envelope is the persisted form of a snapshot.
//
// Owner is the user the favorite flags were merged for. Readers must clear the
// flags when the owner is not the current user.
type Envelope struct {
	Version  int               `json:"version" yaml:"version"`
	Owner    string            `json:"owner,omitempty" yaml:"owner,omitempty"`
	SavedAt  utc.Time          `json:"saved_at" yaml:"saved_at"`
	Products products.Snapshot `json:"products" yaml:"products"`
}

// NewEnvelope stamps products for owner with the current time.
func NewEnvelope(owner string, snapshot products.Snapshot) Envelope {
	return Envelope{
		Version:  constants.SnapshotVersion,
		Owner:    owner,
		SavedAt:  utc.Now(),
		Products: snapshot.Clone(),
	}
}

// ProductsFor returns the stored products as seen by userID. Favorite flags
// survive only when userID owns the envelope.
func (e Envelope) ProductsFor(userID string) products.Snapshot {
	if userID == "" || userID != e.Owner {
		return e.Products.ClearFavorites()
	}
	return e.Products.Clone()
}

// Store reads and writes envelopes through a Backend.
type Store struct {
	backend Backend
	codec   Codec
	key     string
}

// Option configures a Store.
type Option func(*Store)

// WithCodec sets the encoding. Defaults to JSON.
func WithCodec(codec Codec) Option {
	return func(s *Store) {
		if codec != nil {
			s.codec = codec
		}
	}
}

// WithKey overrides the storage key. Defaults to constants.SnapshotCacheKey.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// New creates a Store over backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		codec:   JSON,
		key:     constants.SnapshotCacheKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key.
func (s *Store) Key() string {
	return s.key
}

// Codec returns the codec in use.
func (s *Store) Codec() Codec {
	return s.codec
}

// Write encodes env and replaces the stored value.
func (s *Store) Write(ctx context.Context, env Envelope) error {
	if env.Version == 0 {
		env.Version = constants.SnapshotVersion
	}
	data, err := s.codec.Encode(env)
	if err != nil {
		return errors.WrapParse(s.codec.Name(), s.key, err)
	}
	if err := s.backend.Put(ctx, s.key, data); err != nil {
		return errors.WrapIO("write", s.key, err)
	}
	return nil
}

// Read returns the stored envelope. A missing value is (Envelope{}, false, nil).
// A value that cannot be decoded is reported as a miss together with an error
// of kind DeserializationFailed.
func (s *Store) Read(ctx context.Context) (Envelope, bool, error) {
	data, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return Envelope{}, false, errors.WrapIO("read", s.key, err)
	}
	if !ok || len(data) == 0 {
		return Envelope{}, false, nil
	}

	var env Envelope
	if err := s.codec.Decode(data, &env); err != nil {
		return Envelope{}, false, errors.WrapCatalog(errors.KindDeserializationFailed, "snapshot.read",
			errors.WrapParse(s.codec.Name(), s.key, err))
	}
	if env.Version > constants.SnapshotVersion {
		return Envelope{}, false, errors.NewCatalogError(errors.KindDeserializationFailed, "snapshot.read",
			errors.NewValidationError("version", env.Version, "unsupported snapshot version"))
	}
	return env, true, nil
}

// Clear removes the stored value.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Delete(ctx, s.key); err != nil {
		return errors.WrapIO("delete", s.key, err)
	}
	return nil
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
