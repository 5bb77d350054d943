package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newBundle(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundle.js")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0644))
	return path
}

func TestBundleWatcher_RunsOnChange(t *testing.T) {
	path := newBundle(t)

	var runs atomic.Int32
	w, err := NewBundleWatcher(path, 50*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("[{ a: function () {} }]"), 0644))

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	stats := w.Stats()
	assert.GreaterOrEqual(t, stats.Events, 1)
	assert.Equal(t, 1, stats.Runs)
	assert.Zero(t, stats.Failures)
}

func TestBundleWatcher_DebouncesBursts(t *testing.T) {
	path := newBundle(t)

	var runs atomic.Int32
	w, err := NewBundleWatcher(path, 200*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("[1]"), 0644))
		time.Sleep(20 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestBundleWatcher_IgnoresSiblings(t *testing.T) {
	path := newBundle(t)

	var runs atomic.Int32
	w, err := NewBundleWatcher(path, 20*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.js"), []byte("x"), 0644))
	time.Sleep(200 * time.Millisecond)

	assert.Zero(t, runs.Load())
	assert.Zero(t, w.Stats().Events)
}

func TestBundleWatcher_RecordsFailures(t *testing.T) {
	path := newBundle(t)

	runErr := errors.New("parse failed")
	w, err := NewBundleWatcher(path, 20*time.Millisecond, func(context.Context) error { return runErr })
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("[{"), 0644))

	assert.Eventually(t, func() bool { return w.Stats().Failures == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, w.Stats().LastRunErr, runErr)
}

func TestBundleWatcher_StopsOnContextCancel(t *testing.T) {
	path := newBundle(t)

	w, err := NewBundleWatcher(path, 0, func(context.Context) error { return nil })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()

	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("event loop did not exit after cancel")
	}
	w.Stop()
}

func TestBundleWatcher_StartTwice(t *testing.T) {
	w, err := NewBundleWatcher(newBundle(t), 0, func(context.Context) error { return nil })
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()
}

func TestBundleWatcher_MissingDirectory(t *testing.T) {
	w, err := NewBundleWatcher(filepath.Join(t.TempDir(), "gone", "bundle.js"), 0, func(context.Context) error { return nil })
	require.NoError(t, err)

	assert.Error(t, w.Start(context.Background()))
	w.Stop()
}
