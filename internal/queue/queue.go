// Package queue implements CommandQueue: a FIFO of deferred closures that
// mutate the shell, applied between handler runs so a handler holding only
// a shared Shell reference can still schedule a mutation.
package queue

import "github.com/coshell/coshell/internal/state"

// Command is one deferred unit of work. It receives the same (Shell,
// Store) pair a Handler does, plus the Queue itself so a Command may
// enqueue further Commands.
type Command[C any] func(ctx C, store *state.Store, q *Queue[C])

// Queue is the CommandQueue. The zero value is ready to use.
type Queue[C any] struct {
	pending []Command[C]
}

// New returns an empty Queue.
func New[C any]() *Queue[C] { return &Queue[C]{} }

// Push enqueues cmd to run on the next Drain.
func (q *Queue[C]) Push(cmd Command[C]) {
	q.pending = append(q.pending, cmd)
}

// Len reports how many commands are currently queued.
func (q *Queue[C]) Len() int { return len(q.pending) }

// Drain runs every queued command in FIFO order, including any commands
// that were themselves enqueued while draining, until the queue is empty.
func (q *Queue[C]) Drain(ctx C, store *state.Store) {
	for len(q.pending) > 0 {
		cmd := q.pending[0]
		q.pending = q.pending[1:]
		cmd(ctx, store, q)
	}
}
