// Package kvtest holds the behaviour every core.KVStore engine must share.
package kvtest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/aula/core"
)

// Run exercises store. Keys are namespaced with t.Name() so shared backends can be reused.
func Run(t *testing.T, store core.KVStore) {
	ctx := context.Background()
	ns := t.Name() + "/"

	t.Run("missing key", func(t *testing.T) {
		_, err := store.Get(ctx, ns+"missing")
		assert.Equal(t, core.ErrKeyNotFound, err)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, ns+"users", []byte(`[{"id":"1"}]`)))
		val, err := store.Get(ctx, ns+"users")
		require.NoError(t, err)
		assert.Equal(t, `[{"id":"1"}]`, string(val))
	})

	t.Run("set replaces wholesale", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, ns+"courses", []byte(`[{"id":"a"},{"id":"b"}]`)))
		require.NoError(t, store.Set(ctx, ns+"courses", []byte(`[]`)))
		val, err := store.Get(ctx, ns+"courses")
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(val))
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, ns+"copy", []byte("abc")))
		val, err := store.Get(ctx, ns+"copy")
		require.NoError(t, err)
		val[0] = 'z'
		again, err := store.Get(ctx, ns+"copy")
		require.NoError(t, err)
		assert.Equal(t, "abc", string(again))
	})

	t.Run("concurrent writers", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := fmt.Sprintf("%sconc_%d", ns, i)
				assert.NoError(t, store.Set(ctx, key, []byte(key)))
			}(i)
		}
		wg.Wait()
		for i := 0; i < 10; i++ {
			key := fmt.Sprintf("%sconc_%d", ns, i)
			val, err := store.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, key, string(val))
		}
	})
}
