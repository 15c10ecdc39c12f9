// Package registry holds the in-memory map of project id to allowed
// origin used by the ingest CORS check.
package registry

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// OriginLoader is the persistent-store side of the registry. In
// production it is the Postgres project store.
type OriginLoader interface {
	LoadOrigins(ctx context.Context) (map[string]string, error)
}

// OriginRegistry caches project origins in process memory. The request
// path only ever reads it; writes happen on Load, either once at startup
// or from the optional refresh loop.
type OriginRegistry struct {
	loader OriginLoader

	mu      sync.RWMutex
	origins map[string]string
}

func NewOriginRegistry(loader OriginLoader) *OriginRegistry {
	return &OriginRegistry{
		loader:  loader,
		origins: map[string]string{},
	}
}

// Load replaces the cached map with a fresh bulk read. Projects whose
// origin is NULL in the store are absent from the map, so membership is
// the authorization check, not an empty-string compare.
func (r *OriginRegistry) Load(ctx context.Context) error {
	origins, err := r.loader.LoadOrigins(ctx)
	if err != nil {
		return fmt.Errorf("failed to load project origins: %w", err)
	}

	r.mu.Lock()
	r.origins = origins
	r.mu.Unlock()
	return nil
}

// Resolve looks up the allowed origin for a project. ok == false means
// the project is unknown or has no configured origin; callers must treat
// that as a hard rejection.
func (r *OriginRegistry) Resolve(projectID string) (string, bool) {
	r.mu.RLock()
	origin, ok := r.origins[projectID]
	r.mu.RUnlock()
	return origin, ok
}

// Len reports how many projects currently have a registered origin.
func (r *OriginRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.origins)
}

// Run refreshes the registry every interval until ctx is cancelled. A
// failed refresh keeps the previous map. An interval of zero disables
// refreshing entirely (load-once behavior).
func (r *OriginRegistry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Load(ctx); err != nil {
				log.Printf("Origin registry refresh failed: %v", err)
			}
		}
	}
}
