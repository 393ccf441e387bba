package resolver

import (
	"context"
	"sync"
	"testing"

	"secrets-service/internal/auth"
	"secrets-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreResolver_Idempotent(t *testing.T) {
	r := NewStoreResolver(store.NewMemoryStore())
	ctx := context.Background()

	identity := &auth.Identity{Provider: "google", SubjectID: "sub-42"}

	first, err := r.Resolve(ctx, identity)
	require.NoError(t, err)

	second, err := r.Resolve(ctx, identity)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestStoreResolver_Concurrent(t *testing.T) {
	r := NewStoreResolver(store.NewMemoryStore())
	ctx := context.Background()

	const workers = 32
	var wg sync.WaitGroup
	ids := make([]string, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			account, err := r.Resolve(ctx, &auth.Identity{
				Provider:  "facebook",
				SubjectID: "race-sub",
			})
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = account.ID
		}(i)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i], "concurrent first logins must resolve to one account")
	}
}

func TestStoreResolver_ProvidersAreNamespaced(t *testing.T) {
	r := NewStoreResolver(store.NewMemoryStore())
	ctx := context.Background()

	google, err := r.Resolve(ctx, &auth.Identity{Provider: "google", SubjectID: "12345"})
	require.NoError(t, err)

	facebook, err := r.Resolve(ctx, &auth.Identity{Provider: "facebook", SubjectID: "12345"})
	require.NoError(t, err)

	assert.NotEqual(t, google.ID, facebook.ID)
}

func TestStoreResolver_InvalidIdentity(t *testing.T) {
	r := NewStoreResolver(store.NewMemoryStore())
	ctx := context.Background()

	_, err := r.Resolve(ctx, nil)
	require.Error(t, err)

	_, err = r.Resolve(ctx, &auth.Identity{Provider: "google"})
	require.Error(t, err)

	_, err = r.Resolve(ctx, &auth.Identity{SubjectID: "sub"})
	require.Error(t, err)
}
