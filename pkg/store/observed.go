package store

import (
	"context"
	"time"

	"github.com/matzehuels/karmyc/pkg/observability"
)

// Observed wraps a Store and reports hits, misses and writes to the
// observability store hooks.
type Observed struct {
	Store
	keyType string
}

// Observe wraps s. keyType labels the hook calls, e.g. "layout".
func Observe(s Store, keyType string) *Observed {
	return &Observed{Store: s, keyType: keyType}
}

func (o *Observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := o.Store.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Store().OnStoreHit(ctx, o.keyType)
		} else {
			observability.Store().OnStoreMiss(ctx, o.keyType)
		}
	}
	return data, hit, err
}

func (o *Observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := o.Store.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Store().OnStoreSet(ctx, o.keyType, len(data))
	}
	return err
}
