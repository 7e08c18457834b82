package stream

import "sync"

// BlockingQueue is an unbounded FIFO shared between the main thread and
// the worker. Pushes never block. WaitPop parks the worker while idle;
// after Stop it keeps returning whatever is still queued and only then
// reports shutdown, so in-flight work is never dropped on the floor.
type BlockingQueue[T any] struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []T
	stopped bool
}

func NewBlockingQueue[T any]() *BlockingQueue[T] {
	q := &BlockingQueue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends an item and wakes one waiter. Items pushed after Stop are
// discarded.
func (q *BlockingQueue[T]) Push(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return
	}
	q.items = append(q.items, item)
	q.cond.Signal()
}

// WaitPop blocks until an item is available or the queue is stopped and
// drained. ok=false is the graceful shutdown signal, not an error.
func (q *BlockingQueue[T]) WaitPop() (item T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.stopped {
		q.cond.Wait()
	}
	return q.popLocked()
}

// TryPop is the non-blocking poll used for the main thread's per-frame
// result drain.
func (q *BlockingQueue[T]) TryPop() (item T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

func (q *BlockingQueue[T]) popLocked() (item T, ok bool) {
	if len(q.items) == 0 {
		return item, false
	}
	item = q.items[0]
	var zero T
	q.items[0] = zero // release the reference
	q.items = q.items[1:]
	return item, true
}

// Stop wakes all waiters permanently. Idempotent.
func (q *BlockingQueue[T]) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stopped = true
	q.cond.Broadcast()
}

func (q *BlockingQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
