package interview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/leadlens-ai/leadlens/pkg/logging"
)

type fakeProcessor struct {
	startResult  *TurnResult
	turnResult   *TurnResult
	lastStartReq StartRequest
	lastTurnReq  TurnRequest
}

func (f *fakeProcessor) StartInterview(_ context.Context, req StartRequest) (*TurnResult, error) {
	f.lastStartReq = req
	if f.startResult != nil {
		return f.startResult, nil
	}
	return &TurnResult{SessionID: "default"}, nil
}

func (f *fakeProcessor) ProcessTurn(_ context.Context, req TurnRequest) (*TurnResult, error) {
	f.lastTurnReq = req
	if f.turnResult != nil {
		return f.turnResult, nil
	}
	return &TurnResult{SessionID: req.SessionID}, nil
}

type blockingProcessor struct {
	block chan struct{}
}

func (b *blockingProcessor) StartInterview(_ context.Context, _ StartRequest) (*TurnResult, error) {
	<-b.block
	return &TurnResult{}, nil
}

func (b *blockingProcessor) ProcessTurn(_ context.Context, _ TurnRequest) (*TurnResult, error) {
	<-b.block
	return &TurnResult{}, nil
}

func newTestDispatcher(t *testing.T, processor Service) *Dispatcher {
	t.Helper()
	d := NewDispatcher(
		processor,
		NewMemoryQueue(8),
		logging.Default(),
		WithWorkerCount(1),
		WithReceiveBatchSize(1),
		WithReceiveWaitSeconds(0),
	)
	t.Cleanup(func() {
		_ = d.Shutdown(context.Background())
	})
	return d
}

func TestDispatcher_StartInterview(t *testing.T) {
	processor := &fakeProcessor{
		startResult: &TurnResult{SessionID: "sess-1"},
	}
	d := newTestDispatcher(t, processor)

	res, err := d.StartInterview(context.Background(), StartRequest{SessionID: "sess-1"})
	if err != nil {
		t.Fatalf("StartInterview returned error: %v", err)
	}
	if res.SessionID != "sess-1" {
		t.Fatalf("expected session sess-1, got %s", res.SessionID)
	}
	if processor.lastStartReq.SessionID != "sess-1" {
		t.Fatalf("expected request to reach processor, got %+v", processor.lastStartReq)
	}
}

func TestDispatcher_ProcessTurn(t *testing.T) {
	processor := &fakeProcessor{}
	d := newTestDispatcher(t, processor)

	res, err := d.ProcessTurn(context.Background(), TurnRequest{
		SessionID:  "sess-2",
		QuestionID: "q_company_industry",
	})
	if err != nil {
		t.Fatalf("ProcessTurn returned error: %v", err)
	}
	if res.SessionID != "sess-2" {
		t.Fatalf("expected session sess-2, got %s", res.SessionID)
	}
	if processor.lastTurnReq.QuestionID != "q_company_industry" {
		t.Fatalf("expected question id to reach processor, got %+v", processor.lastTurnReq)
	}
}

func TestDispatcher_ContextCancellation(t *testing.T) {
	block := make(chan struct{})
	d := newTestDispatcher(t, &blockingProcessor{block: block})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := d.StartInterview(ctx, StartRequest{SessionID: "first"}); err != context.DeadlineExceeded {
		t.Fatalf("expected context deadline exceeded, got %v", err)
	}

	close(block)
}

type memoryJobLifecycle struct {
	mu      sync.Mutex
	records map[string]*JobRecord
}

func newMemoryJobLifecycle() *memoryJobLifecycle {
	return &memoryJobLifecycle{records: make(map[string]*JobRecord)}
}

func (m *memoryJobLifecycle) PutPending(_ context.Context, job *JobRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job.Status = JobStatusPending
	m.records[job.JobID] = job
	return nil
}

func (m *memoryJobLifecycle) GetJob(_ context.Context, jobID string) (*JobRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.records[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job, nil
}

func (m *memoryJobLifecycle) MarkCompleted(_ context.Context, jobID string, result *TurnResult, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.records[jobID]
	if !ok {
		return ErrJobNotFound
	}
	job.Status = JobStatusCompleted
	job.Result = result
	job.SessionID = sessionID
	return nil
}

func (m *memoryJobLifecycle) MarkFailed(_ context.Context, jobID string, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.records[jobID]
	if !ok {
		return ErrJobNotFound
	}
	job.Status = JobStatusFailed
	job.ErrorMessage = errMsg
	return nil
}

func (m *memoryJobLifecycle) onlyRecord(t *testing.T) *JobRecord {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.records) != 1 {
		t.Fatalf("expected exactly one job record, got %d", len(m.records))
	}
	for _, job := range m.records {
		return job
	}
	return nil
}

func TestDispatcher_JobLifecycleCompleted(t *testing.T) {
	jobs := newMemoryJobLifecycle()
	d := NewDispatcher(
		&fakeProcessor{turnResult: &TurnResult{SessionID: "sess-3", Finished: true}},
		NewMemoryQueue(8),
		logging.Default(),
		WithWorkerCount(1),
		WithReceiveBatchSize(1),
		WithReceiveWaitSeconds(0),
		WithJobLifecycle(jobs),
	)
	t.Cleanup(func() { _ = d.Shutdown(context.Background()) })

	if _, err := d.ProcessTurn(context.Background(), TurnRequest{SessionID: "sess-3", QuestionID: "q"}); err != nil {
		t.Fatalf("ProcessTurn returned error: %v", err)
	}

	job := jobs.onlyRecord(t)
	if job.Status != JobStatusCompleted {
		t.Fatalf("expected completed status, got %s", job.Status)
	}
	if job.SessionID != "sess-3" {
		t.Fatalf("expected session id on record, got %q", job.SessionID)
	}
	if job.Result == nil || !job.Result.Finished {
		t.Fatalf("expected finished result on record, got %+v", job.Result)
	}
}

func TestDispatcher_JobLifecycleFailed(t *testing.T) {
	jobs := newMemoryJobLifecycle()
	d := NewDispatcher(
		&failingProcessor{err: errors.New("session store down")},
		NewMemoryQueue(8),
		logging.Default(),
		WithWorkerCount(1),
		WithReceiveBatchSize(1),
		WithReceiveWaitSeconds(0),
		WithJobLifecycle(jobs),
	)
	t.Cleanup(func() { _ = d.Shutdown(context.Background()) })

	if _, err := d.ProcessTurn(context.Background(), TurnRequest{SessionID: "sess-4", QuestionID: "q"}); err == nil {
		t.Fatalf("expected processor error to surface")
	}

	job := jobs.onlyRecord(t)
	if job.Status != JobStatusFailed {
		t.Fatalf("expected failed status, got %s", job.Status)
	}
	if job.ErrorMessage == "" {
		t.Fatalf("expected error message on record")
	}
}

type failingProcessor struct {
	err error
}

func (f *failingProcessor) StartInterview(_ context.Context, _ StartRequest) (*TurnResult, error) {
	return nil, f.err
}

func (f *failingProcessor) ProcessTurn(_ context.Context, _ TurnRequest) (*TurnResult, error) {
	return nil, f.err
}

func TestDispatcher_ShutdownRejectsPending(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	d := NewDispatcher(
		&blockingProcessor{block: block},
		NewMemoryQueue(8),
		logging.Default(),
		WithWorkerCount(1),
		WithReceiveBatchSize(1),
		WithReceiveWaitSeconds(0),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
}
