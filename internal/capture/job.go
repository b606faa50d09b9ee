package capture

import (
	"context"
	"log/slog"
	"sync"
)

// JobKind identifies one of the two background generation jobs run for every
// capture session.
type JobKind string

// The two generation jobs
const (
	JobStyle       JobKind = "style"
	JobIngredients JobKind = "ingredients"
)

// JobKinds lists both generation jobs in delivery order: the style artifact
// is always delivered before the ingredients artifact.
var JobKinds = []JobKind{JobStyle, JobIngredients}

// JobStatus represents the current state of a generation job.
type JobStatus string

// Possible job status values. Done and Error are both terminal: a failed job
// still counts as finished for the delivery barrier so a broken generation
// endpoint can never stall the customer-facing flow.
const (
	JobStatusIdle    JobStatus = "idle"
	JobStatusRunning JobStatus = "running"
	JobStatusDone    JobStatus = "done"
	JobStatusError   JobStatus = "error"
)

// GenerateFunc performs the external generation call for a job and returns
// an image reference (a URL or a data URL), or empty when the endpoint
// produced no usable image.
type GenerateFunc func(ctx context.Context, kind JobKind) (string, error)

// job is the per-kind state. The done channel is closed exactly once, when
// the job reaches a terminal status.
type job struct {
	status JobStatus
	image  string
	done   chan struct{}
}

// JobTracker manages the two generation jobs of one capture session. Each
// job transitions idle→running exactly once (Start is a guarded no-op
// otherwise) and running→done or running→error exactly once; terminal state
// is only cleared by replacing the whole tracker on session reset.
//
// Status fields are written only by Start and by the job's own completion
// goroutine; everything else reads under the same lock. There is no
// cancellation: abandoning a session orphans the in-flight request, and its
// late completion lands on the replaced tracker where nobody is listening.
type JobTracker struct {
	mu         sync.Mutex
	jobs       map[JobKind]*job
	onTerminal func(JobKind)
	logger     *slog.Logger
}

// NewJobTracker creates a tracker with both jobs idle. onTerminal, if
// non-nil, is invoked (outside the tracker lock) every time a job reaches a
// terminal status; the delivery barrier hangs off this callback.
func NewJobTracker(logger *slog.Logger, onTerminal func(JobKind)) *JobTracker {
	if logger == nil {
		logger = slog.Default()
	}

	jobs := make(map[JobKind]*job, len(JobKinds))
	for _, kind := range JobKinds {
		jobs[kind] = &job{status: JobStatusIdle, done: make(chan struct{})}
	}

	return &JobTracker{
		jobs:       jobs,
		onTerminal: onTerminal,
		logger:     logger.With(slog.String("component", "job_tracker")),
	}
}

// Start launches the generation call for the given job in a new goroutine.
// It is a no-op returning false unless the job is idle: repeated button
// presses and handler re-entry must never issue a second external request
// for the same job.
func (t *JobTracker) Start(ctx context.Context, kind JobKind, generate GenerateFunc) bool {
	t.mu.Lock()
	j, ok := t.jobs[kind]
	if !ok {
		t.mu.Unlock()
		t.logger.Warn("start requested for unknown job kind", slog.String("job", string(kind)))
		return false
	}
	if j.status != JobStatusIdle {
		status := j.status
		t.mu.Unlock()
		t.logger.Debug("duplicate job start suppressed",
			slog.String("job", string(kind)),
			slog.String("status", string(status)))
		return false
	}
	j.status = JobStatusRunning
	t.mu.Unlock()

	t.logger.Info("generation job started", slog.String("job", string(kind)))

	go t.run(ctx, kind, j, generate)
	return true
}

// run executes the external call and records the terminal state. A response
// with no usable image counts as an error terminal, not a success.
func (t *JobTracker) run(ctx context.Context, kind JobKind, j *job, generate GenerateFunc) {
	image, err := generate(ctx, kind)

	t.mu.Lock()
	switch {
	case err != nil:
		j.status = JobStatusError
		t.logger.Warn("generation job failed",
			slog.String("job", string(kind)),
			slog.String("error", err.Error()))
	case image == "":
		j.status = JobStatusError
		t.logger.Warn("generation job produced no image", slog.String("job", string(kind)))
	default:
		j.status = JobStatusDone
		j.image = image
		t.logger.Info("generation job completed", slog.String("job", string(kind)))
	}
	close(j.done)
	t.mu.Unlock()

	if t.onTerminal != nil {
		t.onTerminal(kind)
	}
}

// Await blocks until the job reaches a terminal state and returns its stored
// image reference (empty for error terminals). If the job is already
// terminal it resolves immediately with the stored result and never
// re-invokes the external call.
func (t *JobTracker) Await(ctx context.Context, kind JobKind) (string, error) {
	t.mu.Lock()
	j, ok := t.jobs[kind]
	t.mu.Unlock()
	if !ok {
		return "", nil
	}

	select {
	case <-j.done:
		return t.Result(kind), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Status returns the current status of the given job.
func (t *JobTracker) Status(kind JobKind) JobStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	if j, ok := t.jobs[kind]; ok {
		return j.status
	}
	return JobStatusIdle
}

// Result returns the stored image reference for the given job, empty unless
// the job finished with a usable image.
func (t *JobTracker) Result(kind JobKind) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if j, ok := t.jobs[kind]; ok {
		return j.image
	}
	return ""
}

// Terminal reports whether the given job has reached done or error.
func (t *JobTracker) Terminal(kind JobKind) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.jobs[kind]
	return ok && (j.status == JobStatusDone || j.status == JobStatusError)
}

// BothTerminal reports whether every job has reached a terminal state.
func (t *JobTracker) BothTerminal() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, j := range t.jobs {
		if j.status != JobStatusDone && j.status != JobStatusError {
			return false
		}
	}
	return true
}
