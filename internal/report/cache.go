package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Cache stores reports by fingerprint. Implementations write a fingerprint at
// most once: a Put for a fingerprint that is already present keeps the stored report.
type Cache interface {
	Get(ctx context.Context, fingerprint string) (*Report, bool, error)
	Put(ctx context.Context, fingerprint string, r *Report) error
	Delete(ctx context.Context, fingerprint string) error
}

// MemoryCache is an in-process cache bounded by entry count.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]*Report
	order      []string
	maxEntries int
}

// NewMemoryCache returns a cache holding at most maxEntries reports.
// maxEntries <= 0 means unbounded.
func NewMemoryCache(maxEntries int) *MemoryCache {
	return &MemoryCache{
		entries:    make(map[string]*Report),
		maxEntries: maxEntries,
	}
}

func (c *MemoryCache) Get(_ context.Context, fingerprint string) (*Report, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.entries[fingerprint]
	return r, ok, nil
}

func (c *MemoryCache) Put(_ context.Context, fingerprint string, r *Report) error {
	if r == nil {
		return errors.New("memory cache: nil report")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[fingerprint]; ok {
		return nil
	}

	// Oldest entries go first.
	for c.maxEntries > 0 && len(c.order) >= c.maxEntries {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}

	c.entries[fingerprint] = r
	c.order = append(c.order, fingerprint)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, fingerprint string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[fingerprint]; !ok {
		return nil
	}
	delete(c.entries, fingerprint)
	for i, fp := range c.order {
		if fp == fingerprint {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of cached reports.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Tiered chains caches from fastest to slowest.
type Tiered struct {
	layers []Cache
}

// NewTiered builds a tiered cache; nil layers are skipped.
func NewTiered(layers ...Cache) *Tiered {
	t := &Tiered{}
	for _, l := range layers {
		if l != nil {
			t.layers = append(t.layers, l)
		}
	}
	return t
}

// Get walks the layers in order and back-fills the faster ones on a hit.
// A failing layer is treated as a miss as long as a later layer can answer.
func (t *Tiered) Get(ctx context.Context, fingerprint string) (*Report, bool, error) {
	var errs []error
	for i, layer := range t.layers {
		r, ok, err := layer.Get(ctx, fingerprint)
		if err != nil {
			errs = append(errs, fmt.Errorf("layer %d: %w", i, err))
			continue
		}
		if !ok {
			continue
		}

		for _, faster := range t.layers[:i] {
			if err := faster.Put(ctx, fingerprint, r); err != nil {
				errs = append(errs, err)
			}
		}
		return r, true, nil
	}

	if len(errs) == len(t.layers) && len(errs) > 0 {
		return nil, false, errors.Join(errs...)
	}
	return nil, false, nil
}

// Put writes the report to every layer.
func (t *Tiered) Put(ctx context.Context, fingerprint string, r *Report) error {
	var errs []error
	for i, layer := range t.layers {
		if err := layer.Put(ctx, fingerprint, r); err != nil {
			errs = append(errs, fmt.Errorf("layer %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Delete removes the report from every layer.
func (t *Tiered) Delete(ctx context.Context, fingerprint string) error {
	var errs []error
	for i, layer := range t.layers {
		if err := layer.Delete(ctx, fingerprint); err != nil {
			errs = append(errs, fmt.Errorf("layer %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
