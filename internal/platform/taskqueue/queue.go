// Package taskqueue is the in-process task dispatcher. Deliveries are
// at-least-once: a task may run more than once, so handlers must be
// idempotent. Transient failures are redelivered with a delay until the
// attempt budget runs out; terminal failures are recorded and dropped.
package taskqueue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Delivery is one attempt at running a task against a target.
type Delivery struct {
	TaskName string
	TargetID uuid.UUID
	Attempt  int
}

// Observer receives dispatch outcomes, typically backed by metrics.
type Observer interface {
	DeliveryStarted(taskName string)
	DeliverySucceeded(taskName string)
	DeliveryRetried(taskName string)
	DeliveryFailedTerminal(taskName string)
}

type noopObserver struct{}

func (noopObserver) DeliveryStarted(string)        {}
func (noopObserver) DeliverySucceeded(string)      {}
func (noopObserver) DeliveryRetried(string)        {}
func (noopObserver) DeliveryFailedTerminal(string) {}

// Options tune the dispatcher. Zero values fall back to defaults.
type Options struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	RetryDelay  time.Duration
	Logger      *slog.Logger
	Observer    Observer
}

// Queue owns the delivery channel and the worker pool draining it.
type Queue struct {
	registry   *Registry
	deliveries chan Delivery
	locks      *KeyLock

	workers     int
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger
	observer    Observer

	wg sync.WaitGroup
}

func NewQueue(registry *Registry, opts Options) *Queue {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Observer == nil {
		opts.Observer = noopObserver{}
	}
	return &Queue{
		registry:    registry,
		deliveries:  make(chan Delivery, opts.QueueSize),
		locks:       NewKeyLock(),
		workers:     opts.Workers,
		maxAttempts: opts.MaxAttempts,
		retryDelay:  opts.RetryDelay,
		logger:      opts.Logger,
		observer:    opts.Observer,
	}
}

// Enqueue schedules the first delivery of a task. Unregistered task names
// are rejected at enqueue time so typos surface at the call site.
func (q *Queue) Enqueue(ctx context.Context, taskName string, targetID uuid.UUID) error {
	if _, ok := q.registry.Lookup(taskName); !ok {
		return fmt.Errorf("task %q is not registered", taskName)
	}
	delivery := Delivery{TaskName: taskName, TargetID: targetID, Attempt: 1}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case q.deliveries <- delivery:
		return nil
	}
}

// Start launches the worker pool. Workers exit when ctx is cancelled.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case delivery := <-q.deliveries:
					q.process(ctx, delivery)
				}
			}
		}()
	}
	q.logger.Info("task dispatcher started",
		"event", "taskqueue_started",
		"module", "internal/platform/taskqueue",
		"layer", "platform",
		"workers", q.workers,
		"tasks", q.registry.TaskNames(),
	)
}

// Wait blocks until every worker has exited.
func (q *Queue) Wait() {
	q.wg.Wait()
}

func (q *Queue) process(ctx context.Context, delivery Delivery) {
	handler, ok := q.registry.Lookup(delivery.TaskName)
	if !ok {
		// Only reachable if the registry changed after enqueue.
		q.logger.Error("delivery for unregistered task dropped",
			"event", "taskqueue_unknown_task",
			"module", "internal/platform/taskqueue",
			"layer", "platform",
			"task", delivery.TaskName,
		)
		return
	}

	release := q.locks.Acquire(delivery.TaskName + ":" + delivery.TargetID.String())
	defer release()

	q.observer.DeliveryStarted(delivery.TaskName)
	err := handler(ctx, delivery.TargetID)
	if err == nil {
		q.observer.DeliverySucceeded(delivery.TaskName)
		return
	}

	if IsTerminal(err) {
		q.observer.DeliveryFailedTerminal(delivery.TaskName)
		q.logger.Error("task failed terminally",
			"event", "taskqueue_terminal_failure",
			"module", "internal/platform/taskqueue",
			"layer", "platform",
			"task", delivery.TaskName,
			"target_id", delivery.TargetID.String(),
			"attempt", delivery.Attempt,
			"error", err.Error(),
		)
		return
	}

	if delivery.Attempt >= q.maxAttempts {
		q.observer.DeliveryFailedTerminal(delivery.TaskName)
		q.logger.Error("task exhausted its attempt budget",
			"event", "taskqueue_attempts_exhausted",
			"module", "internal/platform/taskqueue",
			"layer", "platform",
			"task", delivery.TaskName,
			"target_id", delivery.TargetID.String(),
			"attempt", delivery.Attempt,
			"error", err.Error(),
		)
		return
	}

	q.observer.DeliveryRetried(delivery.TaskName)
	q.logger.Warn("task failed, scheduling redelivery",
		"event", "taskqueue_retry",
		"module", "internal/platform/taskqueue",
		"layer", "platform",
		"task", delivery.TaskName,
		"target_id", delivery.TargetID.String(),
		"attempt", delivery.Attempt,
		"error", err.Error(),
	)

	next := Delivery{TaskName: delivery.TaskName, TargetID: delivery.TargetID, Attempt: delivery.Attempt + 1}
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		timer := time.NewTimer(q.retryDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
			select {
			case <-ctx.Done():
			case q.deliveries <- next:
			}
		}
	}()
}
