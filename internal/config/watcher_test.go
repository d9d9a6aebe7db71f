package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls []*Settings
}

func (r *recorder) callback(s *Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recorder) last() *Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

func TestNewWatcher_Validation(t *testing.T) {
	_, err := NewWatcher(WatcherConfig{}, func(*Settings) error { return nil })
	assert.Error(t, err)

	_, err = NewWatcher(WatcherConfig{FilePath: "casa.yaml"}, nil)
	assert.Error(t, err)
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "casa.yaml")
	require.NoError(t, os.WriteFile(path, []byte("schema_version: \"1.0\"\nanalysis:\n  min_inad: 6\n"), 0o644))

	rec := &recorder{}
	w, err := NewWatcher(WatcherConfig{FilePath: path, DebounceMillis: 50}, rec.callback)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop(context.Background())

	require.Equal(t, 1, rec.count(), "initial load calls back")

	require.NoError(t, os.WriteFile(path, []byte("schema_version: \"1.0\"\nanalysis:\n  min_inad: 9\n"), 0o644))

	require.Eventually(t, func() bool {
		if rec.count() < 2 {
			return false
		}
		cfg, err := rec.last().AnalysisConfig()
		return err == nil && cfg.MinInad == 9
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcher_KeepsPreviousOnInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "casa.yaml")
	require.NoError(t, os.WriteFile(path, []byte("schema_version: \"1.0\"\n"), 0o644))

	rec := &recorder{}
	w, err := NewWatcher(WatcherConfig{FilePath: path, DebounceMillis: 50}, rec.callback)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop(context.Background())

	require.NoError(t, os.WriteFile(path, []byte("schema_version: \"9.0\"\n"), 0o644))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
}

func TestWatcher_StartFailsOnInvalidInitialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "casa.yaml")
	require.NoError(t, os.WriteFile(path, []byte("schema_version: \"0.1\"\n"), 0o644))

	w, err := NewWatcher(WatcherConfig{FilePath: path}, func(*Settings) error { return nil })
	require.NoError(t, err)
	assert.Error(t, w.Start(context.Background()))
	assert.NoError(t, w.Stop(context.Background()))
}
