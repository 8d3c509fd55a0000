package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leadlens-ai/leadlens/pkg/logging"
)

// ErrDispatcherClosed indicates the dispatcher is no longer accepting work.
var ErrDispatcherClosed = errors.New("interview: dispatcher closed")

// Dispatcher routes interview work through a queue before invoking the
// engine. The queue gives same-session turns a single serialization point
// and lets development point at LocalStack SQS while production uses AWS
// SQS, without touching the HTTP handlers.
type Dispatcher struct {
	processor Service
	queue     queueClient
	logger    *logging.Logger

	cfg dispatcherConfig

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	pending sync.Map // jobID -> chan dispatchResult
}

var _ Service = (*Dispatcher)(nil)

const (
	defaultWorkers          = 2
	defaultReceiveWait      = 2  // seconds
	defaultReceiveMax       = 5  // messages
	maxReceiveWaitSeconds   = 20 // SQS limit
	maxReceiveBatchMessages = 10
)

// JobLifecycle persists the queued/completed/failed progression of a job so
// clients can poll status even when no caller is blocked on the result.
type JobLifecycle interface {
	JobRecorder
	JobUpdater
}

type dispatcherConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
	jobs             JobLifecycle
}

// DispatcherOption configures the dispatcher.
type DispatcherOption func(*dispatcherConfig)

// WithWorkerCount overrides the number of queue polling goroutines.
func WithWorkerCount(workers int) DispatcherOption {
	return func(cfg *dispatcherConfig) {
		if workers > 0 {
			cfg.workers = workers
		}
	}
}

// WithReceiveWaitSeconds sets the long-poll wait time for ReceiveMessage calls.
func WithReceiveWaitSeconds(seconds int) DispatcherOption {
	return func(cfg *dispatcherConfig) {
		if seconds < 0 {
			return
		}
		if seconds > maxReceiveWaitSeconds {
			seconds = maxReceiveWaitSeconds
		}
		cfg.receiveWaitSecs = seconds
	}
}

// WithJobLifecycle records job progression in the store, for polling
// clients and for workers running without a blocked caller.
func WithJobLifecycle(jobs JobLifecycle) DispatcherOption {
	return func(cfg *dispatcherConfig) {
		cfg.jobs = jobs
	}
}

// WithReceiveBatchSize overrides how many messages each poll should return.
func WithReceiveBatchSize(size int) DispatcherOption {
	return func(cfg *dispatcherConfig) {
		if size <= 0 {
			return
		}
		if size > maxReceiveBatchMessages {
			size = maxReceiveBatchMessages
		}
		cfg.receiveBatchSize = size
	}
}

// NewDispatcher wires a queue-backed dispatcher around the supplied service.
func NewDispatcher(processor Service, queue queueClient, logger *logging.Logger, opts ...DispatcherOption) *Dispatcher {
	if processor == nil {
		panic("interview: processor cannot be nil")
	}
	if queue == nil {
		panic("interview: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	cfg := dispatcherConfig{
		workers:          defaultWorkers,
		receiveWaitSecs:  defaultReceiveWait,
		receiveBatchSize: defaultReceiveMax,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		processor: processor,
		queue:     queue,
		logger:    logger,
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
	}

	for i := 0; i < cfg.workers; i++ {
		d.wg.Add(1)
		go d.runWorker(i + 1)
	}

	return d
}

// StartInterview enqueues the request and blocks until the engine completes.
func (d *Dispatcher) StartInterview(ctx context.Context, req StartRequest) (*TurnResult, error) {
	return d.enqueue(ctx, jobTypeStart, req, TurnRequest{})
}

// ProcessTurn enqueues an interview turn and returns the processed output.
func (d *Dispatcher) ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	return d.enqueue(ctx, jobTypeTurn, StartRequest{}, req)
}

// Shutdown stops worker goroutines and notifies any pending callers.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
	}

	d.pending.Range(func(key, value any) bool {
		if ch, ok := value.(chan dispatchResult); ok {
			select {
			case ch <- dispatchResult{err: ErrDispatcherClosed}:
			default:
			}
		}
		d.pending.Delete(key)
		return true
	})

	return nil
}

func (d *Dispatcher) enqueue(ctx context.Context, kind jobType, startReq StartRequest, turnReq TurnRequest) (*TurnResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	jobID := uuid.NewString()
	payload := queuePayload{
		ID:    jobID,
		Kind:  kind,
		Start: startReq,
		Turn:  turnReq,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("interview: failed to encode payload: %w", err)
	}

	if d.cfg.jobs != nil {
		record := &JobRecord{JobID: jobID, RequestType: kind}
		switch kind {
		case jobTypeStart:
			record.StartRequest = &startReq
			record.SessionID = startReq.SessionID
		case jobTypeTurn:
			record.TurnRequest = &turnReq
			record.SessionID = turnReq.SessionID
		}
		if err := d.cfg.jobs.PutPending(ctx, record); err != nil {
			d.logger.Error("failed to record pending interview job", "error", err, "job_id", jobID)
		}
	}

	resultCh := make(chan dispatchResult, 1)
	d.pending.Store(jobID, resultCh)
	defer d.pending.Delete(jobID)

	if err := d.queue.Send(ctx, string(body)); err != nil {
		return nil, fmt.Errorf("interview: failed to enqueue job: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultCh:
		return res.result, res.err
	}
}

func (d *Dispatcher) runWorker(workerID int) {
	defer d.wg.Done()
	d.logger.Debug("interview dispatcher worker started", "worker_id", workerID)

	backoff := time.Second

	for {
		select {
		case <-d.ctx.Done():
			d.logger.Debug("interview dispatcher worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := d.queue.Receive(d.ctx, d.cfg.receiveBatchSize, d.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			d.logger.Error("failed to receive interview jobs", "error", err, "worker_id", workerID)
			time.Sleep(backoff)
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if len(messages) == 0 {
			continue
		}

		for _, msg := range messages {
			d.handleQueueMessage(msg)
		}
	}
}

func (d *Dispatcher) handleQueueMessage(msg queueMessage) {
	var payload queuePayload
	if err := json.Unmarshal([]byte(msg.Body), &payload); err != nil {
		d.logger.Error("failed to decode interview job", "error", err)
		deleteCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = d.queue.Delete(deleteCtx, msg.ReceiptHandle)
		return
	}

	var (
		result *TurnResult
		err    error
	)

	processingCtx := d.ctx

	switch payload.Kind {
	case jobTypeStart:
		result, err = d.processor.StartInterview(processingCtx, payload.Start)
	case jobTypeTurn:
		result, err = d.processor.ProcessTurn(processingCtx, payload.Turn)
	default:
		err = fmt.Errorf("interview: unknown job type %q", payload.Kind)
	}

	deleteCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if delErr := d.queue.Delete(deleteCtx, msg.ReceiptHandle); delErr != nil {
		d.logger.Error("failed to delete interview job", "error", delErr)
	}

	if d.cfg.jobs != nil {
		var storeErr error
		if err != nil {
			storeErr = d.cfg.jobs.MarkFailed(deleteCtx, payload.ID, err.Error())
		} else {
			sessionID := ""
			if result != nil {
				sessionID = result.SessionID
			}
			storeErr = d.cfg.jobs.MarkCompleted(deleteCtx, payload.ID, result, sessionID)
		}
		if storeErr != nil {
			d.logger.Error("failed to update interview job status", "error", storeErr, "job_id", payload.ID)
		}
	}

	d.deliverResult(payload.ID, result, err)
}

func (d *Dispatcher) deliverResult(jobID string, result *TurnResult, err error) {
	value, ok := d.pending.Load(jobID)
	if !ok {
		d.logger.Debug("no waiting caller for interview job", "job_id", jobID)
		return
	}

	ch, ok := value.(chan dispatchResult)
	if !ok {
		d.logger.Error("interview dispatcher pending map corrupted", "job_id", jobID)
		d.pending.Delete(jobID)
		return
	}

	select {
	case ch <- dispatchResult{result: result, err: err}:
	default:
	}
}

type dispatchResult struct {
	result *TurnResult
	err    error
}

type jobType string

const (
	jobTypeStart jobType = "start"
	jobTypeTurn  jobType = "turn"
)

type queuePayload struct {
	ID    string       `json:"id"`
	Kind  jobType      `json:"kind"`
	Start StartRequest `json:"start,omitempty"`
	Turn  TurnRequest  `json:"turn,omitempty"`
}
