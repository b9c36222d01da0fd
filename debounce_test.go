package watch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebounceStreamCoalescesWithinWindow(t *testing.T) {
	d := newDebounceStream(50 * time.Millisecond)
	defer d.Close()

	d.TryEnqueue("/a")
	d.TryEnqueue("/b")
	d.TryEnqueue("/a") // duplicate, should not appear twice

	select {
	case batch := <-d.Out():
		assert.ElementsMatch(t, []string{"/a", "/b"}, batch)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for batch")
	}
}

func TestDebounceStreamDeadlineIsFromFirstPath(t *testing.T) {
	d := newDebounceStream(100 * time.Millisecond)
	defer d.Close()

	start := time.Now()
	d.TryEnqueue("/a")

	// Keep feeding paths well within the window; if the deadline reset on
	// every arrival (a sliding/quiet-period debounce) the flush would come
	// no earlier than 100ms after the last arrival (at 60ms or 90ms), i.e.
	// past the 150ms bound below.
	stop := time.After(90 * time.Millisecond)
	ticker := time.NewTicker(30 * time.Millisecond)
	defer ticker.Stop()
loop:
	for {
		select {
		case <-stop:
			break loop
		case <-ticker.C:
			d.TryEnqueue("/b")
		}
	}

	select {
	case batch := <-d.Out():
		elapsed := time.Since(start)
		assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
		assert.Less(t, elapsed, 150*time.Millisecond)
		assert.Contains(t, batch, "/a")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for batch flush at fixed deadline")
	}
}

func TestDebounceStreamClosingFlushesPending(t *testing.T) {
	d := newDebounceStream(time.Hour)
	d.TryEnqueue("/a")
	d.Close()

	select {
	case batch, ok := <-d.Out():
		require.True(t, ok)
		assert.Equal(t, []string{"/a"}, batch)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for flush on close")
	}

	_, ok := <-d.Out()
	assert.False(t, ok, "output channel should close after the final flush")
}

func TestDebounceStreamCloseIsIdempotent(t *testing.T) {
	d := newDebounceStream(time.Hour)
	assert.NotPanics(t, func() {
		d.Close()
		d.Close()
	})
}

func TestDebounceStreamSeparateBatchesAfterFlush(t *testing.T) {
	d := newDebounceStream(30 * time.Millisecond)
	defer d.Close()

	d.TryEnqueue("/a")
	select {
	case batch := <-d.Out():
		assert.Equal(t, []string{"/a"}, batch)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for first batch")
	}

	d.TryEnqueue("/b")
	select {
	case batch := <-d.Out():
		assert.Equal(t, []string{"/b"}, batch)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for second batch")
	}
}
