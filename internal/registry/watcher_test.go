package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelevant(t *testing.T) {
	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"yaml write", fsnotify.Event{Name: "a.yaml", Op: fsnotify.Write}, true},
		{"yml create", fsnotify.Event{Name: "b.yml", Op: fsnotify.Create}, true},
		{"yaml remove", fsnotify.Event{Name: "a.yaml", Op: fsnotify.Remove}, true},
		{"yaml rename", fsnotify.Event{Name: "a.yaml", Op: fsnotify.Rename}, true},
		{"yaml chmod only", fsnotify.Event{Name: "a.yaml", Op: fsnotify.Chmod}, false},
		{"non-yaml write", fsnotify.Event{Name: "notes.txt", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relevant(tt.ev))
		})
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()

	reg, err := New()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, reg, dir) }()

	// Let the watcher attach to the directory before the first write.
	time.Sleep(50 * time.Millisecond)

	path := filepath.Join(dir, "custom-hasher.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDefinition), 0o644))

	require.Eventually(t, func() bool {
		_, _, err := reg.Get("custom-hasher")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond, "component should appear after write")

	cancel()
	assert.NoError(t, <-done)
}

func TestWatch_BrokenDefinitionKeepsPreviousSet(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom-hasher.yaml"), []byte(sampleDefinition), 0o644))

	reg, err := New()
	require.NoError(t, err)
	require.NoError(t, reg.LoadDir(dir))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, reg, dir) }()

	time.Sleep(50 * time.Millisecond)

	// No version and no operations: reload must fail and keep the old set.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("id: broken\n"), 0o644))

	// Give the failed reload time to happen, then check nothing was lost.
	time.Sleep(200 * time.Millisecond)
	_, def, err := reg.Get("custom-hasher")
	require.NoError(t, err)
	assert.Equal(t, "custom-hasher", def.ID)
	_, _, err = reg.Get("broken")
	assert.ErrorIs(t, err, ErrUnknownComponent)

	cancel()
	assert.NoError(t, <-done)
}

func TestWatch_RemoveDropsComponent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom-hasher.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDefinition), 0o644))

	reg, err := New()
	require.NoError(t, err)
	require.NoError(t, reg.LoadDir(dir))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, reg, dir) }()

	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.Remove(path))

	require.Eventually(t, func() bool {
		_, _, err := reg.Get("custom-hasher")
		return errors.Is(err, ErrUnknownComponent)
	}, 2*time.Second, 10*time.Millisecond, "component should disappear after remove")

	cancel()
	assert.NoError(t, <-done)
}
