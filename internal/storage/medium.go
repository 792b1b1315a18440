// Package storage provides key-value persistence media for chat state.
//
// A Medium stores opaque values under string keys. It distinguishes an
// absent key (ErrNotFound) from a capacity failure (ErrQuotaExceeded) so
// callers can treat the former as "nothing saved yet" and surface the latter.
package storage

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Get when the key holds no value.
	ErrNotFound = errors.New("storage: key not found")

	// ErrQuotaExceeded is returned by Put when the medium is out of space.
	ErrQuotaExceeded = errors.New("storage: quota exceeded")
)

// Medium is a durable key-value store.
type Medium interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Option configures a Medium.
type Option func(*options)

type options struct {
	quotaBytes int64
}

// WithQuota limits the size of a single stored value. Zero means unlimited.
func WithQuota(bytes int64) Option {
	return func(o *options) {
		o.quotaBytes = bytes
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) checkQuota(key string, value []byte) error {
	if o.quotaBytes > 0 && int64(len(value)) > o.quotaBytes {
		return fmt.Errorf("writing %q (%d bytes, limit %d): %w", key, len(value), o.quotaBytes, ErrQuotaExceeded)
	}
	return nil
}
