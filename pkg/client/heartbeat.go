package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kuflow/kuflow-sdk-go/pkg/client/internal/metrics"
)

// ErrHeartbeatStarted is returned by Start on a heartbeat that was already
// started. A stopped heartbeat cannot be restarted; create a new one.
var ErrHeartbeatStarted = errors.New("heartbeat already started")

// WorkerHeartbeat keeps a worker registration fresh by calling
// Worker.CreateOrUpdate with the same params on a fixed interval.
type WorkerHeartbeat struct {
	client   *KuFlowClient
	params   WorkerCreateParams
	interval time.Duration
	onError  func(error)

	started  atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu   sync.RWMutex
	last *Worker
	err  error
}

// NewWorkerHeartbeat prepares a heartbeat for params. A nil params.ID is
// replaced with a fresh UUID so every beat updates the same worker.
func (c *KuFlowClient) NewWorkerHeartbeat(params WorkerCreateParams, interval time.Duration) *WorkerHeartbeat {
	if params.ID == nil {
		id := uuid.New()
		params.ID = &id
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &WorkerHeartbeat{
		client:   c,
		params:   params,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// OnError registers a callback invoked with every failed beat. It must be
// set before Start.
func (h *WorkerHeartbeat) OnError(fn func(error)) {
	h.onError = fn
}

// Start sends the first registration synchronously and returns its error,
// then keeps beating in the background until Stop is called or ctx ends.
// It fails with ErrHeartbeatStarted on any call after the first.
func (h *WorkerHeartbeat) Start(ctx context.Context) error {
	if !h.started.CompareAndSwap(false, true) {
		return ErrHeartbeatStarted
	}

	err := h.beat(ctx)

	h.wg.Add(1)
	go h.loop(ctx)

	h.client.log.Info().
		Str("worker_id", h.params.ID.String()).
		Dur("interval", h.interval).
		Msg("heartbeat started")

	return err
}

// Stop ends the background loop and waits for an in-flight beat to finish.
func (h *WorkerHeartbeat) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
	})
	h.wg.Wait()

	h.client.log.Info().Str("worker_id", h.params.ID.String()).Msg("heartbeat stopped")
}

// WorkerID is the id sent with every beat.
func (h *WorkerHeartbeat) WorkerID() uuid.UUID {
	return *h.params.ID
}

// Last returns the worker returned by the latest successful beat, or nil.
func (h *WorkerHeartbeat) Last() *Worker {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}

// Err returns the error of the latest beat, nil when it succeeded.
func (h *WorkerHeartbeat) Err() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}

func (h *WorkerHeartbeat) loop(ctx context.Context) {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stopCh:
			return
		case <-ticker.C:
			_ = h.beat(ctx)
		}
	}
}

func (h *WorkerHeartbeat) beat(ctx context.Context) error {
	worker, err := h.client.Worker().CreateOrUpdate(ctx, h.params)

	h.mu.Lock()
	h.err = err
	if err == nil {
		h.last = worker
	}
	h.mu.Unlock()

	if err != nil {
		metrics.RecordHeartbeat("failure")
		h.client.log.Error().Err(err).Str("worker_id", h.params.ID.String()).Msg("failed to send heartbeat")
		if h.onError != nil {
			h.onError(err)
		}
		return err
	}

	metrics.RecordHeartbeat("success")
	return nil
}
