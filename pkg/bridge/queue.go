package bridge

import (
	"context"
	"sync"

	"github.com/entrhq/studiobridge/pkg/types"
)

// commandQueue is a FIFO with many producers and one consumer. It is
// unbounded unless max > 0.
type commandQueue struct {
	mu     sync.Mutex
	items  []*types.Command
	signal chan struct{}
	max    int
	closed bool
}

func newCommandQueue() *commandQueue {
	return &commandQueue{signal: make(chan struct{}, 1)}
}

// push appends cmd. Stop commands are accepted even when the queue is full.
func (q *commandQueue) push(cmd *types.Command) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	if q.max > 0 && !cmd.IsStop() && len(q.items) >= q.max {
		return ErrQueueFull
	}
	q.items = append(q.items, cmd)
	if cmd.IsStop() {
		q.closed = true
	}

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return nil
}

// pop blocks until a command is available or ctx is done.
func (q *commandQueue) pop(ctx context.Context) (*types.Command, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			cmd := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			q.mu.Unlock()
			return cmd, nil
		}
		q.mu.Unlock()

		select {
		case <-q.signal:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// drain removes and returns everything still queued.
func (q *commandQueue) drain() []*types.Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// close rejects further pushes.
func (q *commandQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

func (q *commandQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
