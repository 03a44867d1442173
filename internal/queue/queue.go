// Package queue holds admitted-but-deferred generation tasks and drains them
// with a fixed worker pool, highest priority first.
package queue

import (
	"container/heap"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/finsight/chartpipe/config"
	"github.com/finsight/chartpipe/internal/metrics"
	"github.com/finsight/chartpipe/internal/shared/rate"
	"github.com/finsight/chartpipe/model"
)

// ErrFull reports the hard capacity bound; the caller gets immediate
// backpressure instead of a task that cannot meet any deadline.
var ErrFull = errors.New("queue: at hard capacity")

// Queue respects given ctx: workers and the reaper stop when it ends.
type Queue struct {
	ctx     context.Context
	cancel  context.CancelFunc
	cfg     config.QueueCfg
	logger  *slog.Logger
	metrics *metrics.Registry

	mu   sync.Mutex
	heap taskHeap
	seq  uint64

	// signal carries one wakeup per pushed task; capacity matches the hard
	// bound so Submit never blocks on it.
	signal chan struct{}
	active atomic.Int64
}

func New(ctx context.Context, cfg config.QueueCfg, workers int, logger *slog.Logger, reg *metrics.Registry) *Queue {
	ctx, cancel := context.WithCancel(ctx)
	q := &Queue{
		ctx:     ctx,
		cancel:  cancel,
		cfg:     cfg,
		logger:  logger,
		metrics: reg,
		heap:    make(taskHeap, 0, cfg.MaxDepth),
		signal:  make(chan struct{}, cfg.MaxDepth),
	}
	return q.run(workers)
}

// Submit parks a task on the priority heap. The returned task's Done channel
// resolves on completion, failure, timeout or cancellation.
func (q *Queue) Submit(req *model.GenerationRequest, key string, fn TaskFunc) (*Task, error) {
	q.mu.Lock()
	if len(q.heap) >= q.cfg.MaxDepth {
		q.mu.Unlock()
		return nil, ErrFull
	}
	q.seq++
	t := newTask(req, key, q.seq, fn)
	heap.Push(&q.heap, t)
	depth := len(q.heap)
	q.mu.Unlock()

	q.metrics.SetQueueDepth(int64(depth))
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return t, nil
}

func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.heap)
}

func (q *Queue) Active() int64 {
	return q.active.Load()
}

func (q *Queue) Close() error {
	q.cancel()
	return nil
}

func (q *Queue) run(workers int) *Queue {
	q.logger.Info("execution queue is running",
		"workers", workers, "max_depth", q.cfg.MaxDepth, "max_wait", q.cfg.MaxWait.String())
	for i := 0; i < workers; i++ {
		go q.worker()
	}
	go q.reaper()
	return q
}

func (q *Queue) worker() {
	for {
		select {
		case <-q.ctx.Done():
			return
		case <-q.signal:
			t := q.pop()
			if t == nil {
				continue
			}
			if waited := time.Since(t.EnqueuedAt); waited > q.cfg.MaxWait {
				q.expire(t, waited)
				continue
			}
			if !t.transition(StateQueued, StateRunning) {
				continue // cancelled while parked
			}
			q.execute(t)
		}
	}
}

func (q *Queue) execute(t *Task) {
	q.active.Add(1)
	q.metrics.AddActiveJobs(1)
	defer func() {
		q.active.Add(-1)
		q.metrics.AddActiveJobs(-1)
	}()

	art, err := t.fn(q.ctx)
	if err != nil {
		t.state.Store(int32(StateFailed))
		t.resolve(nil, err)
		return
	}
	t.state.Store(int32(StateCompleted))
	t.resolve(art, nil)
}

// reaper sweeps the heap for tasks that waited past the bound. Paced by the
// jitter so sweeps spread out instead of stacking on a ticker edge; workers
// double-check the deadline on pop, so a slow sweep only delays, never
// loses, a timeout.
func (q *Queue) reaper() {
	jitter := rate.NewJitter(q.ctx, q.cfg.ReaperRate)
	for {
		select {
		case <-q.ctx.Done():
			return
		case <-jitter.Chan():
			for _, t := range q.takeExpired() {
				q.expire(t, time.Since(t.EnqueuedAt))
			}
		}
	}
}

func (q *Queue) pop() *Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.heap) == 0 {
		return nil
	}
	t := heap.Pop(&q.heap).(*Task)
	q.metrics.SetQueueDepth(int64(len(q.heap)))
	return t
}

func (q *Queue) takeExpired() []*Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []*Task
	for i := 0; i < len(q.heap); {
		t := q.heap[i]
		if time.Since(t.EnqueuedAt) > q.cfg.MaxWait {
			heap.Remove(&q.heap, i)
			out = append(out, t)
			continue // slot i now holds a different task
		}
		i++
	}
	if out != nil {
		q.metrics.SetQueueDepth(int64(len(q.heap)))
	}
	return out
}

func (q *Queue) expire(t *Task, waited time.Duration) {
	if !t.transition(StateQueued, StateTimedOut) {
		return
	}
	t.resolve(nil, &TimeoutError{Waited: waited})
	q.metrics.Timeout()
	q.logger.Warn("task timed out in queue",
		"task", t.ID, "symbol", t.Request.Symbol, "kind", t.Request.Kind, "waited", waited.String())
}
