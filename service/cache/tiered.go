package cache

import (
	"context"
	"errors"
	"log/slog"
)

// Tiered checks tiers in order and back-fills faster tiers on a hit in a
// slower one. A failing tier is logged and treated as a miss, so a degraded
// shared cache never fails a lookup.
type Tiered[V any] struct {
	tiers  []Cache[V]
	logger *slog.Logger
}

// NewTiered composes tiers, fastest first.
func NewTiered[V any](logger *slog.Logger, tiers ...Cache[V]) *Tiered[V] {
	return &Tiered[V]{tiers: tiers, logger: logger}
}

func (t *Tiered[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	for i, tier := range t.tiers {
		v, ok, err := tier.Get(ctx, key)
		if err != nil {
			t.logger.WarnContext(ctx, "cache tier get failed", "tier", i, "key", key, "error", err)
			continue
		}
		if !ok {
			continue
		}
		for j := 0; j < i; j++ {
			if err := t.tiers[j].Set(ctx, key, v); err != nil {
				t.logger.WarnContext(ctx, "cache back-fill failed", "tier", j, "key", key, "error", err)
			}
		}
		return v, true, nil
	}
	return zero, false, nil
}

// Set writes every tier. Failures are logged; the joined error is returned
// so callers may decide whether to care.
func (t *Tiered[V]) Set(ctx context.Context, key string, value V) error {
	var errs []error
	for i, tier := range t.tiers {
		if err := tier.Set(ctx, key, value); err != nil {
			t.logger.WarnContext(ctx, "cache tier set failed", "tier", i, "key", key, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
