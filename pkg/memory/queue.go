package memory

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/stellarlinkco/toolstep/pkg/message"
)

// SaveQueue flushes pending conversation history durably. A flush must have
// completed before a suspending step yields control; that ordering is what
// makes a checkpoint a valid crash-recovery point.
type SaveQueue interface {
	Flush(ctx context.Context, msgs []message.Message, threadID string, cfg Config) error
}

// Persister is the storage end of the queue. DiskStore satisfies it.
type Persister interface {
	SaveMessages(threadID string, msgs []message.Message) error
}

// Queue serializes flushes to a Persister and retries transient failures
// with exponential backoff. Retries are bounded; the caller decides whether
// a failed flush matters (the step logs and swallows it).
type Queue struct {
	mu       sync.Mutex
	persist  Persister
	maxTries uint
	onError  func(threadID string, err error)
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithMaxTries bounds the retry attempts per flush. Minimum 1.
func WithMaxTries(n uint) QueueOption {
	return func(q *Queue) {
		if n < 1 {
			n = 1
		}
		q.maxTries = n
	}
}

// WithErrorCallback registers an observer for flushes that exhausted their
// retries. The error is still returned to the caller.
func WithErrorCallback(fn func(threadID string, err error)) QueueOption {
	return func(q *Queue) { q.onError = fn }
}

// NewQueue builds a queue over the given persister.
func NewQueue(p Persister, opts ...QueueOption) *Queue {
	q := &Queue{persist: p, maxTries: 3}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Flush writes the history for a thread, trimming it per cfg first. Flushes
// are serialized so concurrent tool calls in one turn cannot interleave
// partial histories.
func (q *Queue) Flush(ctx context.Context, msgs []message.Message, threadID string, cfg Config) error {
	if q == nil || q.persist == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	trimmed := trimHistory(msgs, cfg)
	operation := func() (struct{}, error) {
		return struct{}{}, q.persist.SaveMessages(threadID, trimmed)
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 50 * time.Millisecond
	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(q.maxTries),
	)
	if err != nil {
		log.Printf("memory: flush for thread %s failed after %d tries: %v", threadID, q.maxTries, err)
		if q.onError != nil {
			q.onError(threadID, err)
		}
	}
	return err
}

func trimHistory(msgs []message.Message, cfg Config) []message.Message {
	if cfg.LastMessages > 0 && len(msgs) > cfg.LastMessages {
		msgs = msgs[len(msgs)-cfg.LastMessages:]
	}
	return message.CloneMessages(msgs)
}
