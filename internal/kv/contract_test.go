package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract exercises the behavior every backend must share.
func runStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("absent key is not an error", func(t *testing.T) {
		v, ok, err := s.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, ModuleKey("pregnancy"), `[{"clientId":"P00001"}]`))
		v, ok, err := s.Get(ctx, ModuleKey("pregnancy"))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `[{"clientId":"P00001"}]`, v)
	})

	t.Run("set overwrites whole value", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, KeySelectedLanguage, "ta"))
		require.NoError(t, s.Set(ctx, KeySelectedLanguage, "en"))
		v, _, err := s.Get(ctx, KeySelectedLanguage)
		require.NoError(t, err)
		assert.Equal(t, "en", v)
	})

	t.Run("empty value is present", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, KeyCurrentUser, ""))
		_, ok, err := s.Get(ctx, KeyCurrentUser)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, LanguageKey("ta"), "{}"))
		require.NoError(t, s.Remove(ctx, LanguageKey("ta")))
		_, ok, err := s.Get(ctx, LanguageKey("ta"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("remove absent key", func(t *testing.T) {
		assert.NoError(t, s.Remove(ctx, "never-set"))
	})
}
