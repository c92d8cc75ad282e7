package singing

import "context"

// Job is a scoring run started with Scorer.Start.
type Job struct {
	done   chan struct{}
	cancel context.CancelFunc

	res Result
	err error
}

// Start runs ScoreRecording on a new goroutine and returns immediately.
func (s *Scorer) Start(ctx context.Context, reference, user Recording, onProgress ProgressFunc) *Job {
	ctx, cancel := context.WithCancel(ctx)
	j := &Job{done: make(chan struct{}), cancel: cancel}
	go func() {
		defer close(j.done)
		defer cancel()
		j.res, j.err = s.ScoreRecording(ctx, reference, user, onProgress)
	}()
	return j
}

// Cancel stops both analyses between windows. The job still finishes with a
// result scored on what was collected, marked incomplete.
func (j *Job) Cancel() { j.cancel() }

// Done is closed when the job has finished.
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the job finishes.
func (j *Job) Wait() (Result, error) {
	<-j.done
	return j.res, j.err
}
