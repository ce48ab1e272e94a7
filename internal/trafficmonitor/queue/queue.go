package queue

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrClosed is returned by Push once the queue has stopped accepting input.
var ErrClosed = errors.New("queue is closed")

// WorkQueue is a FIFO shared by producers and consumers. Pop blocks until an item is available or the
// queue has been closed; Close wakes every waiter so each of them re-evaluates its wait predicate.
//
// A capacity of zero means the queue is unbounded. Otherwise Push blocks while the queue is full.
type WorkQueue[T any] struct {
	mu        sync.Mutex
	notEmpty  *sync.Cond
	notFull   *sync.Cond
	items     []T
	head      int
	capacity  int
	accepting bool
}

func New[T any](capacity int) *WorkQueue[T] {
	if capacity < 0 {
		capacity = 0
	}
	q := &WorkQueue[T]{
		capacity:  capacity,
		accepting: true,
	}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// Push appends item to the tail of the queue and wakes one waiting consumer.
func (q *WorkQueue[T]) Push(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.accepting && q.capacity > 0 && q.lenUnlocked() >= q.capacity {
		q.notFull.Wait()
	}
	if !q.accepting {
		return ErrClosed
	}
	q.items = append(q.items, item)
	q.notEmpty.Signal()
	return nil
}

// Pop removes and returns the head of the queue, blocking while the queue is empty and still accepting
// input. ok is false only once the queue is both empty and closed. The queue lock is not held on return.
func (q *WorkQueue[T]) Pop() (item T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.lenUnlocked() == 0 && q.accepting {
		q.notEmpty.Wait()
	}
	if q.lenUnlocked() == 0 {
		return item, false
	}

	var zero T
	item = q.items[q.head]
	q.items[q.head] = zero
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 64 && q.head*2 >= len(q.items) {
		q.items = append(q.items[:0], q.items[q.head:]...)
		q.head = 0
	}
	q.notFull.Signal()
	return item, true
}

// Close marks the queue as no longer accepting input and wakes all blocked consumers and producers.
// Items already queued can still be popped. Calling Close more than once has no further effect.
func (q *WorkQueue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.accepting {
		return
	}
	q.accepting = false
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

// IsEmpty reports whether the queue currently holds no items.
func (q *WorkQueue[T]) IsEmpty() bool {
	return q.Len() == 0
}

func (q *WorkQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lenUnlocked()
}

// Accepting reports whether Close has not yet been called.
func (q *WorkQueue[T]) Accepting() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.accepting
}

func (q *WorkQueue[T]) lenUnlocked() int {
	return len(q.items) - q.head
}
