package provider

import (
	"context"
	"testing"

	"secrets-service/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) AuthCodeURL(state, codeChallenge string) string {
	return "https://example.test/auth?state=" + state
}

func (f *fakeProvider) ExchangeCode(context.Context, string, string) (*auth.Identity, error) {
	return &auth.Identity{Provider: f.name, SubjectID: "sub"}, nil
}

func TestRegistry_Get(t *testing.T) {
	registry := NewRegistry(
		&fakeProvider{name: "google"},
		&fakeProvider{name: "facebook"},
	)

	p, err := registry.Get("google")
	require.NoError(t, err)
	assert.Equal(t, "google", p.Name())

	p, err = registry.Get("facebook")
	require.NoError(t, err)
	assert.Equal(t, "facebook", p.Name())

	_, err = registry.Get("github")
	require.Error(t, err)
}
