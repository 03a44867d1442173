package queue

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/finsight/chartpipe/model"
)

// ErrTimeout matches (via errors.Is) tasks that waited in the queue past the
// configured bound.
var ErrTimeout = errors.New("queue: task timed out waiting")

// ErrCancelled resolves tasks cancelled while still queued.
var ErrCancelled = errors.New("queue: task cancelled")

// TimeoutError carries how long the task waited before it was reaped, so
// callers can decide whether a retry is worth it.
type TimeoutError struct {
	Waited time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("queue: task timed out after waiting %s", e.Waited)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

type State int32

const (
	StateQueued State = iota
	StateRunning
	StateCompleted
	StateFailed
	StateTimedOut
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateTimedOut:
		return "timed_out"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// TaskFunc is the work a task performs once a worker picks it up.
type TaskFunc func(ctx context.Context) (*model.Artifact, error)

// Task is one admitted-but-possibly-deferred generation. The queue owns it
// until a worker dequeues it; the completion handle resolves exactly once,
// whichever of worker, reaper or caller gets there first.
type Task struct {
	ID         string
	Request    *model.GenerationRequest
	Key        string
	EnqueuedAt time.Time

	seq   uint64
	index int // heap bookkeeping

	fn    TaskFunc
	state atomic.Int32

	done     chan struct{}
	artifact *model.Artifact
	err      error
}

func newTask(req *model.GenerationRequest, key string, seq uint64, fn TaskFunc) *Task {
	return &Task{
		ID:         uuid.NewString(),
		Request:    req,
		Key:        key,
		EnqueuedAt: time.Now(),
		seq:        seq,
		fn:         fn,
		done:       make(chan struct{}),
	}
}

func (t *Task) State() State {
	return State(t.state.Load())
}

// Done is closed once the task reaches a terminal state.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Result is valid only after Done is closed.
func (t *Task) Result() (*model.Artifact, error) {
	return t.artifact, t.err
}

// Cancel takes a still-queued task out of play. A running task is not
// preempted; cancellation then is the generator's business.
func (t *Task) Cancel() bool {
	if !t.transition(StateQueued, StateCancelled) {
		return false
	}
	t.resolve(nil, ErrCancelled)
	return true
}

func (t *Task) transition(from, to State) bool {
	return t.state.CompareAndSwap(int32(from), int32(to))
}

// resolve publishes the outcome. Only the goroutine that won the transition
// into a terminal state may call it; the done close orders the field writes
// before any reader.
func (t *Task) resolve(art *model.Artifact, err error) {
	t.artifact = art
	t.err = err
	close(t.done)
}
