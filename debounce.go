package watch

import "time"

// debounceStream accumulates paths over a fixed time window and emits them
// in deduplicated batches. A batch is emitted no later than window after
// the first path enqueued into it arrives; paths that keep arriving within
// that window continue to accumulate into the same batch rather than
// pushing the deadline back. Input is buffered (256 paths) and TryEnqueue
// never blocks the caller: a path offered while the buffer is full is
// dropped. Output is single-consumer.
//
// This is a fixed-window batcher, not a quiet-period debounce: the deadline
// is pinned to the first path of each batch and never resets on later
// arrivals, so a steady trickle of events can't starve the output
// indefinitely.
type debounceStream struct {
	window time.Duration
	in     chan string
	out    chan []string
	done   chan struct{}
}

func newDebounceStream(window time.Duration) *debounceStream {
	d := &debounceStream{
		window: window,
		in:     make(chan string, 256),
		out:    make(chan []string),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

// TryEnqueue offers path to the stream without blocking. If the input
// buffer is momentarily full, the path is dropped; a later event for the
// same path (or its parent) will trigger the same re-read anyway.
func (d *debounceStream) TryEnqueue(path string) {
	select {
	case d.in <- path:
	default:
	}
}

// Out returns the channel of deduplicated batches.
func (d *debounceStream) Out() <-chan []string {
	return d.out
}

// Close signals the stream that no more paths will be enqueued. Any
// pending batch is flushed before the output channel closes.
func (d *debounceStream) Close() {
	select {
	case <-d.done:
	default:
		close(d.done)
	}
}

func (d *debounceStream) run() {
	defer close(d.out)

	var batch map[string]struct{}
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(batch) == 0 {
			return
		}
		paths := make([]string, 0, len(batch))
		for p := range batch {
			paths = append(paths, p)
		}
		batch = nil
		timerC = nil
		d.out <- paths
	}

	for {
		select {
		case <-d.done:
			if timer != nil {
				timer.Stop()
			}
			for drained := false; !drained; {
				select {
				case p := <-d.in:
					if batch == nil {
						batch = make(map[string]struct{})
					}
					batch[p] = struct{}{}
				default:
					drained = true
				}
			}
			flush()
			return
		case p := <-d.in:
			if batch == nil {
				batch = make(map[string]struct{})
			}
			batch[p] = struct{}{}
			if timerC == nil {
				timer = time.NewTimer(d.window)
				timerC = timer.C
			}
		case <-timerC:
			flush()
		}
	}
}
