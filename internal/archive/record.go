package archive

import (
	"time"

	"github.com/leadlens-ai/leadlens/internal/interview"
)

// InterviewRecord is the archived form of a finished interview: the full
// context plus the headline numbers that downstream reporting queries on.
type InterviewRecord struct {
	SessionID      string              `json:"sessionId"`
	Persona        string              `json:"persona"`
	FinishReason   string              `json:"finishReason"`
	Score          int                 `json:"score"`
	QuestionsAsked int                 `json:"questionsAsked"`
	StartedAt      time.Time           `json:"startedAt"`
	FinishedAt     time.Time           `json:"finishedAt"`
	ArchivedAt     time.Time           `json:"archivedAt"`
	Context        interview.Context   `json:"context"`
}

// NewRecord snapshots a terminal context into its archive form.
func NewRecord(c interview.Context, archivedAt time.Time) InterviewRecord {
	return InterviewRecord{
		SessionID:      c.SessionID,
		Persona:        string(c.Persona),
		FinishReason:   string(c.FinishReason),
		Score:          c.Completion.Score,
		QuestionsAsked: c.QuestionsAsked(),
		StartedAt:      c.CreatedAt,
		FinishedAt:     c.UpdatedAt,
		ArchivedAt:     archivedAt.UTC(),
		Context:        c,
	}
}
