package fswatch_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
)

func pollConfig(root string) domain.WatchConfig {
	return domain.WatchConfig{
		UID:      1,
		Root:     root,
		Patterns: []string{"**"},
		Options: domain.WatchOptions{
			Polling:            true,
			PollInterval:       20 * time.Millisecond,
			PollIntervalBinary: 40 * time.Millisecond,
		},
	}
}

func TestPollWatcher_CreateChangeRemove(t *testing.T) {
	root := t.TempDir()
	ch := startWatcher(t, pollConfig(root))

	path := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o600))
	waitFor(t, ch, "added event", func(e ports.RawEvent) bool {
		return e.Kind == ports.RawAdded && e.Path == path
	})

	require.NoError(t, os.WriteFile(path, []byte("different content"), 0o600))
	waitFor(t, ch, "changed event", func(e ports.RawEvent) bool {
		return e.Kind == ports.RawChanged && e.Path == path
	})

	require.NoError(t, os.Remove(path))
	waitFor(t, ch, "removed event", func(e ports.RawEvent) bool {
		return e.Kind == ports.RawRemoved && e.Path == path
	})
}

func TestPollWatcher_InitialReport(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "present.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	cfg := pollConfig(root)
	cfg.Options.ReportInitial = true
	ch := startWatcher(t, cfg)

	waitFor(t, ch, "initial added event", func(e ports.RawEvent) bool {
		return e.Kind == ports.RawAdded && e.Path == path
	})
}

func TestPollWatcher_SameContentRewriteIsQuiet(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("same"), 0o600))

	ch := startWatcher(t, pollConfig(root))

	// Touch the file without changing its content. The fingerprint hash
	// must suppress the event even though mtime moved.
	require.NoError(t, os.Chtimes(path, time.Now(), time.Now().Add(time.Second)))

	select {
	case event := <-ch:
		t.Fatalf("unexpected event: %v %s", event.Kind, event.Path)
	case <-time.After(200 * time.Millisecond):
	}
}
