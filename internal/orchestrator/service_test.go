package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadlens-ai/leadlens/internal/catalog"
	"github.com/leadlens-ai/leadlens/internal/interview"
)

func newTestService(t *testing.T, opts ...ServiceOption) (*Service, *MemoryStateStore) {
	t.Helper()
	store := NewMemoryStateStore(time.Hour)
	base := []ServiceOption{
		WithServiceClock(func() time.Time { return time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC) }),
	}
	return NewService(store, newTestMachine(t), append(base, opts...)...), store
}

func TestServiceStartCreatesSession(t *testing.T) {
	svc, store := newTestService(t)

	res, err := svc.StartInterview(context.Background(), interview.StartRequest{SessionID: "sess-1"})
	require.NoError(t, err)
	require.NotNil(t, res.Question)
	assert.Equal(t, "sess-1", res.SessionID)
	assert.False(t, res.Finished)
	assert.Equal(t, interview.SourceCatalog, res.Question.Source)
	assert.NotEmpty(t, res.Question.Prompt)

	state, err := store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	require.NotNil(t, state.Pending)
	assert.Equal(t, res.Question.ID, state.Pending.QuestionID)
}

func TestServiceStartGeneratesSessionID(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.StartInterview(context.Background(), interview.StartRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, res.SessionID)
}

func TestServiceTurnAdvancesSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	start, err := svc.StartInterview(ctx, interview.StartRequest{SessionID: "sess-1"})
	require.NoError(t, err)

	res, err := svc.ProcessTurn(ctx, interview.TurnRequest{
		SessionID:  "sess-1",
		QuestionID: start.Question.ID,
		VariantID:  start.Question.VariantID,
		Answer:     catalog.TextAnswer("We run a 40-person dental support org in Texas."),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.QuestionsAsked)

	c, err := svc.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, c.Asked, 1)
	assert.Equal(t, start.Question.ID, c.Asked[0].QuestionID)
}

func TestServiceTurnRequiresSessionID(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ProcessTurn(context.Background(), interview.TurnRequest{QuestionID: "q_industry"})
	require.Error(t, err)
}

func TestServiceTurnUnknownSession(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ProcessTurn(context.Background(), interview.TurnRequest{
		SessionID:  "missing",
		QuestionID: "q_industry",
		Answer:     catalog.TextAnswer("hi"),
	})
	require.ErrorIs(t, err, interview.ErrSessionNotFound)
}

func TestServiceStaleQuestionRepresentsPending(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	start, err := svc.StartInterview(ctx, interview.StartRequest{SessionID: "sess-1"})
	require.NoError(t, err)

	res, err := svc.ProcessTurn(ctx, interview.TurnRequest{
		SessionID:  "sess-1",
		QuestionID: "q_from_last_week",
		Answer:     catalog.TextAnswer("this answer must not be consumed"),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Question)
	assert.Equal(t, start.Question.ID, res.Question.ID)
	assert.Zero(t, res.QuestionsAsked, "stale turn must not advance the interview")

	c, err := svc.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, c.Asked)
}

func TestServiceFinishRunsHooks(t *testing.T) {
	var finished []string
	hook := interview.FinishHookFunc(func(ctx context.Context, c interview.Context) error {
		finished = append(finished, c.SessionID)
		return nil
	})
	svc, _ := newTestService(t, WithServiceHooks(hook))
	ctx := context.Background()

	res, err := svc.StartInterview(ctx, interview.StartRequest{SessionID: "sess-1"})
	require.NoError(t, err)

	// Drive the session to the hard question cap; the small test catalog
	// exhausts long before the completeness threshold is met.
	for i := 0; i < 40 && !res.Finished; i++ {
		require.NotNil(t, res.Question, "unfinished step must present a question")
		res, err = svc.ProcessTurn(ctx, interview.TurnRequest{
			SessionID:  "sess-1",
			QuestionID: res.Question.ID,
			VariantID:  res.Question.VariantID,
			Answer:     catalog.TextAnswer("Collections dropped 18% after the front desk turnover last quarter."),
		})
		require.NoError(t, err)
	}

	require.True(t, res.Finished)
	assert.Equal(t, []string{"sess-1"}, finished)

	// A turn after the end returns the terminal result without re-firing hooks.
	again, err := svc.ProcessTurn(ctx, interview.TurnRequest{
		SessionID:  "sess-1",
		QuestionID: "anything",
		Answer:     catalog.TextAnswer("late"),
	})
	require.NoError(t, err)
	assert.True(t, again.Finished)
	assert.Equal(t, res.FinishReason, again.FinishReason)
	assert.Len(t, finished, 1)
}

func TestServiceReport(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	start, err := svc.StartInterview(ctx, interview.StartRequest{SessionID: "sess-1"})
	require.NoError(t, err)
	_, err = svc.ProcessTurn(ctx, interview.TurnRequest{
		SessionID:  "sess-1",
		QuestionID: start.Question.ID,
		Answer:     catalog.TextAnswer("Multi-site med spa, Austin and Dallas."),
	})
	require.NoError(t, err)

	report, err := svc.Report(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", report.SessionID)
}

func TestServiceAbandonSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.StartInterview(ctx, interview.StartRequest{SessionID: "sess-1"})
	require.NoError(t, err)

	require.NoError(t, svc.AbandonSession(ctx, "sess-1"))
	_, err = svc.GetSession(ctx, "sess-1")
	require.ErrorIs(t, err, interview.ErrSessionNotFound)
}
