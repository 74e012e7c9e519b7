package jobs

import (
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Pool runs submitted jobs on a fixed set of worker goroutines.
//
// The ready list is an intrusive LIFO guarded by a mutex and a condition
// variable; dependency counts and the remaining-job counter are atomic.
// Submissions and Wait may be interleaved from the same goroutine; calling
// Wait from inside a job deadlocks the pool.
//
// A panic inside a job is not recovered and takes the process down. Workers
// are never silently lost.
type Pool struct {
	mu        sync.Mutex
	cond      *sync.Cond
	head      *Job
	remaining atomic.Int64
	submitted map[*Job]struct{}
	stop      bool

	workers int
	wg      sync.WaitGroup
	log     *zap.Logger
}

// NewPool starts a pool with n workers. n <= 0 selects NumCPU-1, minimum
// one. A nil logger disables lifecycle logging.
func NewPool(n int, log *zap.Logger) *Pool {
	if n <= 0 {
		n = runtime.NumCPU() - 1
	}
	if n < 1 {
		n = 1
	}
	if log == nil {
		log = zap.NewNop()
	}

	p := &Pool{
		workers:   n,
		submitted: make(map[*Job]struct{}),
		log:       log,
	}
	p.cond = sync.NewCond(&p.mu)
	p.Restart()
	return p
}

// Size returns the number of worker goroutines.
func (p *Pool) Size() int {
	return p.workers
}

// Submit packages fn into a job and enqueues it.
func (p *Pool) Submit(fn func()) {
	p.mu.Lock()
	j := &Job{fn: fn}
	j.next = p.head
	p.head = j
	p.remaining.Add(1)
	p.mu.Unlock()

	p.cond.Signal()
}

// CreateJob allocates a job without enqueueing it, so the caller can attach
// children before SubmitJob.
func (p *Pool) CreateJob(fn func()) *Job {
	return &Job{fn: fn}
}

// SubmitJob enqueues a job created with CreateJob. The job's transitive
// children are counted into the remaining-work total now; they enter the
// ready list later, when their dependency counts reach zero. A child shared
// by several submitted parents is counted once.
func (p *Pool) SubmitJob(j *Job) {
	p.mu.Lock()
	j.next = p.head
	p.head = j

	count := int64(1)
	var walk func(*Job)
	walk = func(job *Job) {
		for _, c := range job.children {
			if _, seen := p.submitted[c]; seen {
				continue
			}
			p.submitted[c] = struct{}{}
			count++
			walk(c)
		}
	}
	walk(j)
	p.remaining.Add(count)
	p.mu.Unlock()

	p.cond.Signal()
}

// Wait blocks until the ready list is empty and every counted job has
// finished. It must not be called from inside a job running on this pool.
func (p *Pool) Wait() {
	for {
		p.mu.Lock()
		empty := p.head == nil
		p.mu.Unlock()
		if empty && p.remaining.Load() == 0 {
			break
		}
		runtime.Gosched()
	}

	p.mu.Lock()
	p.submitted = make(map[*Job]struct{})
	p.mu.Unlock()
}

// Stop drains the ready list, then joins every worker. Jobs already running
// complete normally; there is no in-job cancellation.
func (p *Pool) Stop() {
	p.mu.Lock()
	p.stop = true
	p.mu.Unlock()
	p.cond.Broadcast()

	p.wg.Wait()

	p.mu.Lock()
	p.stop = false
	p.remaining.Store(0)
	p.submitted = make(map[*Job]struct{})
	p.mu.Unlock()

	p.log.Debug("job pool stopped", zap.Int("workers", p.workers))
}

// Restart spawns a fresh set of workers after Stop.
func (p *Pool) Restart() {
	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go p.worker()
	}
	p.log.Debug("job pool started", zap.Int("workers", p.workers))
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for !p.stop && p.head == nil {
			p.cond.Wait()
		}
		if p.stop && p.head == nil {
			p.mu.Unlock()
			return
		}
		j := p.head
		p.head = j.next
		p.mu.Unlock()

		j.fn()
		p.remaining.Add(-1)

		for _, c := range j.children {
			if c.deps.Add(-1) == 0 {
				p.mu.Lock()
				c.next = p.head
				p.head = c
				p.mu.Unlock()
				p.cond.Signal()
			}
		}
	}
}
