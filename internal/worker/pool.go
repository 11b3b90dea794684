package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vytor/triviaflash/internal/logger"
)

var (
	ErrQueueFull   = errors.New("worker queue is full")
	ErrPoolStopped = errors.New("worker pool is stopped")
)

type Job interface {
	Run(context.Context) error
	Name() string
}

// Dropper is implemented by jobs that must learn when they will never run.
// Stop calls Drop with ErrPoolStopped for every job still queued.
type Dropper interface {
	Drop(err error)
}

// Pool runs jobs on a fixed set of goroutines fed by a bounded queue.
// Submit never blocks; a full queue is reported to the caller instead.
type Pool struct {
	size   int
	queue  chan Job
	wg     sync.WaitGroup
	cancel context.CancelFunc
	log    *logger.Logger

	mu      sync.RWMutex
	stopped bool
}

func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Pool{
		size:  workers,
		queue: make(chan Job, queueSize),
		log:   logger.Default().WithPrefix("worker-pool"),
	}
}

func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.log.Info("starting %d workers, queue capacity %d", p.size, cap(p.queue))

	p.wg.Add(p.size)
	for i := 1; i <= p.size; i++ {
		go p.work(ctx, p.log.WithField("worker_id", i))
	}
}

func (p *Pool) work(ctx context.Context, log *logger.Logger) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			p.run(ctx, log.WithField("job", job.Name()), job)
		}
	}
}

func (p *Pool) run(ctx context.Context, log *logger.Logger, job Job) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("job panicked after %v: %v", time.Since(start), rec)
		}
	}()

	if err := job.Run(logger.NewContext(ctx, log)); err != nil {
		log.Warn("job failed after %v: %v", time.Since(start), err)
		return
	}
	log.Debug("job done in %v", time.Since(start))
}

// Stop cancels running jobs, waits for the workers to exit and drops
// whatever is still queued. It is safe to call more than once.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}
	close(p.queue)
	p.wg.Wait()

	dropped := 0
	for job := range p.queue {
		if d, ok := job.(Dropper); ok {
			d.Drop(ErrPoolStopped)
		}
		dropped++
	}
	p.log.Info("worker pool stopped, %d queued jobs dropped", dropped)
}

// Submit enqueues job without blocking.
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.queue <- job:
		return nil
	default:
		p.log.Warn("queue full (%d), rejecting %s", cap(p.queue), job.Name())
		return ErrQueueFull
	}
}

// QueueSize returns the number of jobs waiting for a worker.
func (p *Pool) QueueSize() int {
	return len(p.queue)
}
