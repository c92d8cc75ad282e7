package track

import "context"

// Task is a running extraction started with Extractor.Start.
type Task struct {
	done   chan struct{}
	cancel context.CancelFunc

	track Track
	err   error
}

// Start runs Extract on a new goroutine and returns immediately. Cancelling
// ctx or calling Task.Cancel stops the run between windows.
func (x *Extractor) Start(ctx context.Context, src WindowSource, totalDurationMs int64, onProgress ProgressFunc) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go func() {
		defer close(t.done)
		defer cancel()
		t.track, t.err = x.Extract(ctx, src, totalDurationMs, onProgress)
	}()
	return t
}

// Cancel requests cooperative cancellation. It does not wait.
func (t *Task) Cancel() { t.cancel() }

// Done is closed when the run has returned.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the run returns and reports its result.
func (t *Task) Wait() (Track, error) {
	<-t.done
	return t.track, t.err
}
