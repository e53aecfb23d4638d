package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/aretw0/questionnaire/pkg/ports"
	"github.com/aretw0/questionnaire/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data map[string]domain.FlowRecord
	mu   sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, rec domain.FlowRecord) error {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]domain.FlowRecord)
	}
	s.data[sessionID] = rec
	return nil
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (domain.FlowRecord, error) {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.data[sessionID]; ok {
		return rec, nil
	}
	return domain.FlowRecord{}, domain.ErrSessionNotFound
}

func (s *SlowStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	return nil, nil
}

func TestManager_UpdateSerializes(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "race-test"

	require.NoError(t, manager.Save(ctx, id, domain.FlowRecord{SessionID: id, Index: 0}))

	var wg sync.WaitGroup
	concurrentWrites := 10

	// Read-modify-write without locking would lose increments.
	for i := 0; i < concurrentWrites; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Update(ctx, id, func(ctx context.Context, rec domain.FlowRecord) (domain.FlowRecord, error) {
				rec.Index++
				return rec, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, concurrentWrites, rec.Index)
}

func TestManager_UpdateErrorSkipsSave(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()

	require.NoError(t, manager.Save(ctx, "s1", domain.FlowRecord{SessionID: "s1", Index: 3}))

	boom := errors.New("boom")
	_, err := manager.Update(ctx, "s1", func(ctx context.Context, rec domain.FlowRecord) (domain.FlowRecord, error) {
		rec.Index = 99
		return rec, boom
	})
	assert.ErrorIs(t, err, boom)

	rec, err := manager.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Index)
}

type saveFailStore struct {
	*SlowStore
	err error
}

func (s *saveFailStore) Save(ctx context.Context, sessionID string, rec domain.FlowRecord) error {
	if s.err != nil {
		return s.err
	}
	return s.SlowStore.Save(ctx, sessionID, rec)
}

func TestManager_UpdateThen(t *testing.T) {
	store := &saveFailStore{SlowStore: &SlowStore{}}
	manager := session.NewManager(store)
	ctx := context.Background()
	require.NoError(t, manager.Save(ctx, "s1", domain.FlowRecord{SessionID: "s1", Index: 0}))

	advance := func(ctx context.Context, rec domain.FlowRecord) (domain.FlowRecord, error) {
		rec.Index++
		return rec, nil
	}

	// then observes the saved record.
	var seen int
	_, err := manager.UpdateThen(ctx, "s1", advance, func(ctx context.Context, next domain.FlowRecord) error {
		stored, err := store.Load(ctx, "s1")
		require.NoError(t, err)
		seen = stored.Index
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, seen)

	// A failed save skips then.
	store.err = errors.New("disk full")
	called := false
	_, err = manager.UpdateThen(ctx, "s1", advance, func(ctx context.Context, next domain.FlowRecord) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, store.err)
	assert.False(t, called)

	// Errors from then are returned.
	store.err = nil
	boom := errors.New("boom")
	_, err = manager.UpdateThen(ctx, "s1", advance, func(ctx context.Context, next domain.FlowRecord) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestManager_UpdateMissingSession(t *testing.T) {
	manager := session.NewManager(&SlowStore{})
	_, err := manager.Update(context.Background(), "ghost", func(ctx context.Context, rec domain.FlowRecord) (domain.FlowRecord, error) {
		return rec, nil
	})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

type recordingLocker struct {
	mu     sync.Mutex
	keys   []string
	ttls   []time.Duration
	failOn string
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if key == l.failOn {
		return nil, errors.New("locker unavailable")
	}
	l.mu.Lock()
	l.keys = append(l.keys, key)
	l.ttls = append(l.ttls, ttl)
	l.mu.Unlock()
	return func(context.Context) error { return nil }, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &recordingLocker{failOn: "blocked"}
	manager := session.NewManager(&SlowStore{}, session.WithLocker(locker), session.WithLockTTL(5*time.Second))
	ctx := context.Background()

	called := false
	err := manager.WithLock(ctx, "questionnaire:default", func(context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, []string{"questionnaire:default"}, locker.keys)
	assert.Equal(t, 5*time.Second, locker.ttls[0])

	called = false
	err = manager.WithLock(ctx, "blocked", func(context.Context) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called, "fn must not run without the distributed lock")
}
