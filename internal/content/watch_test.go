package content

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_DebouncesPerLocale(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "en/.keep.md", "")
	writeFile(t, dir, "ko/.keep.md", "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, []string{"en", "ko", "fr"}, 50*time.Millisecond, func(l string) { got <- l })
	}()
	time.Sleep(100 * time.Millisecond) // let the watcher register

	writeFile(t, dir, "en/a.mdx", "---\ntitle: A\n---\n")
	writeFile(t, dir, "en/b.md", "---\ntitle: B\n---\n")
	writeFile(t, dir, "en/notes.txt", "ignored")

	select {
	case l := <-got:
		assert.Equal(t, "en", l)
	case <-time.After(5 * time.Second):
		t.Fatal("no callback")
	}
	select {
	case l := <-got:
		t.Fatalf("unexpected second callback for %s", l)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatch_NothingToWatch(t *testing.T) {
	err := Watch(context.Background(), t.TempDir(), []string{"en"}, time.Millisecond, func(string) {})
	assert.Error(t, err)
}
