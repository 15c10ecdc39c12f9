package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	origins map[string]string
	err     error
	calls   int
}

func (f *fakeLoader) LoadOrigins(ctx context.Context) (map[string]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]string, len(f.origins))
	for k, v := range f.origins {
		out[k] = v
	}
	return out, nil
}

func TestRegistryResolve(t *testing.T) {
	loader := &fakeLoader{origins: map[string]string{
		"p1": "https://one.example.com",
		"p2": "https://two.example.com",
	}}
	reg := NewOriginRegistry(loader)
	require.NoError(t, reg.Load(context.Background()))

	origin, ok := reg.Resolve("p1")
	require.True(t, ok)
	assert.Equal(t, "https://one.example.com", origin)

	// A project without a configured origin is absent, not empty.
	_, ok = reg.Resolve("p3")
	assert.False(t, ok)

	assert.Equal(t, 2, reg.Len())
}

func TestRegistryLoadIdempotent(t *testing.T) {
	loader := &fakeLoader{origins: map[string]string{"p1": "https://one.example.com"}}
	reg := NewOriginRegistry(loader)

	require.NoError(t, reg.Load(context.Background()))
	first, _ := reg.Resolve("p1")
	require.NoError(t, reg.Load(context.Background()))
	second, _ := reg.Resolve("p1")

	assert.Equal(t, first, second)
	assert.Equal(t, 2, loader.calls)
}

func TestRegistryEmptyBeforeLoad(t *testing.T) {
	reg := NewOriginRegistry(&fakeLoader{})
	_, ok := reg.Resolve("p1")
	assert.False(t, ok)
}

func TestRegistryFailedLoadKeepsPreviousMap(t *testing.T) {
	loader := &fakeLoader{origins: map[string]string{"p1": "https://one.example.com"}}
	reg := NewOriginRegistry(loader)
	require.NoError(t, reg.Load(context.Background()))

	loader.err = errors.New("connection refused")
	require.Error(t, reg.Load(context.Background()))

	origin, ok := reg.Resolve("p1")
	require.True(t, ok)
	assert.Equal(t, "https://one.example.com", origin)
}

func TestRegistryReflectsStoreChangesOnReload(t *testing.T) {
	loader := &fakeLoader{origins: map[string]string{"p1": "https://one.example.com"}}
	reg := NewOriginRegistry(loader)
	require.NoError(t, reg.Load(context.Background()))

	loader.origins["p2"] = "https://two.example.com"
	delete(loader.origins, "p1")
	require.NoError(t, reg.Load(context.Background()))

	_, ok := reg.Resolve("p1")
	assert.False(t, ok)
	origin, ok := reg.Resolve("p2")
	require.True(t, ok)
	assert.Equal(t, "https://two.example.com", origin)
}
