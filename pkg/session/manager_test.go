package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/campusmate/pkg/adapters/memory"
	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/aretw0/campusmate/pkg/ports"
	"github.com/aretw0/campusmate/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_SaveLoad(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	s := domain.NewSession("s1", "alice", "hi")
	s.Status = domain.StatusCompleted
	require.NoError(t, manager.Save(ctx, s))

	loaded, err := manager.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, loaded.Status)

	_, err = manager.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)

	require.NoError(t, manager.Delete(ctx, "s1"))
	_, err = manager.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_WithLockSerializes(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := manager.WithLock(ctx, "user:alice", func(ctx context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside, "critical sections for one key must not overlap")
}

type fakeLocker struct {
	locked   int32
	unlocked int32
	err      error
}

func (f *fakeLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if f.err != nil {
		return nil, f.err
	}
	atomic.AddInt32(&f.locked, 1)
	return func(ctx context.Context) error {
		atomic.AddInt32(&f.unlocked, 1)
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &fakeLocker{}
	manager := session.NewManager(memory.NewStore(), session.WithLocker(locker))

	called := false
	err := manager.WithLock(context.Background(), "k", func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, int32(1), locker.locked)
	assert.Equal(t, int32(1), locker.unlocked)

	locker.err = errors.New("redis down")
	err = manager.WithLock(context.Background(), "k", func(ctx context.Context) error {
		t.Fatal("must not run without the lock")
		return nil
	})
	assert.Error(t, err)
}
