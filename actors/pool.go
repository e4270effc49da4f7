package actors

import (
	"log"
	"runtime"
	"runtime/debug"
	"sync"
)

const poolQueueSize = 1024

// Pool is the fixed-size worker pool shared by every actor of a
// system. Each submitted task is one actor's mailbox drain; the
// per-actor executing flag guarantees at most one task per actor is in
// flight at any instant, so pool workers never contend on actor state.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewPool creates a pool with the given number of workers. A count of
// zero or less selects runtime.NumCPU().
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	p := &Pool{
		tasks: make(chan func(), poolQueueSize),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Submit hands a task to the pool. When the queue is saturated the
// task runs on a fresh goroutine instead: a worker mid-turn may submit
// the next actor's drain, and blocking here could deadlock the pool.
func (p *Pool) Submit(task func()) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	select {
	case p.tasks <- task:
		p.mu.Unlock()
		return
	default:
	}
	p.mu.Unlock()

	go runTask(task)
}

// Shutdown stops accepting tasks and waits for the workers to drain
// the queue.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		runTask(task)
	}
}

// runTask executes one task with panic isolation so a misbehaving
// interpreter cannot take down a shared worker.
func runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("actor task panicked: %v\n%s", r, debug.Stack())
		}
	}()
	task()
}
