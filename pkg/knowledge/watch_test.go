package knowledge_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_ReloadsStaticFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "static.yaml")
	require.NoError(t, os.WriteFile(path, []byte("slang:\n  卷: 第一版\n"), 0o644))

	st, err := knowledge.LoadStatic(path)
	require.NoError(t, err)
	store := newStore(t, knowledge.WithStatic(st))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, store.Watch(ctx, path))

	lookup := func() any {
		return store.Lookup(ctx, "slang", domain.Filters{"term": "卷"}).Data
	}
	assert.Equal(t, "第一版", lookup())

	require.NoError(t, os.WriteFile(path, []byte("slang:\n  卷: 第二版\n"), 0o644))
	assert.Eventually(t, func() bool { return lookup() == "第二版" }, 5*time.Second, 50*time.Millisecond)

	// A broken file keeps the last good version.
	require.NoError(t, os.WriteFile(path, []byte("slang: [broken"), 0o644))
	time.Sleep(500 * time.Millisecond)
	assert.Equal(t, "第二版", lookup())
}
