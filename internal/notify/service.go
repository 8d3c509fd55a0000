package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/leadlens-ai/leadlens/internal/catalog"
	"github.com/leadlens-ai/leadlens/internal/interview"
	"github.com/leadlens-ai/leadlens/pkg/logging"
)

// Config controls when and to whom finished-interview reports are sent.
type Config struct {
	Enabled    bool
	Recipients []string
	// MinScore suppresses notifications for interviews below this
	// completeness score. Zero means notify on every finish.
	MinScore int
}

// Service emails a qualification summary to the sales team when an
// interview reaches a terminal state.
type Service struct {
	email  EmailSender
	cfg    Config
	logger *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, cfg Config, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:  email,
		cfg:    cfg,
		logger: logger,
	}
}

// NotifyInterviewFinished sends the qualification summary for a finished
// interview to all configured recipients.
func (s *Service) NotifyInterviewFinished(ctx context.Context, c interview.Context) error {
	if !s.cfg.Enabled || s.email == nil || len(s.cfg.Recipients) == 0 {
		s.logger.Debug("notify: interview notifications disabled, skipping", "session_id", c.SessionID)
		return nil
	}
	if c.Completion.Score < s.cfg.MinScore {
		s.logger.Debug("notify: score below notification threshold",
			"session_id", c.SessionID, "score", c.Completion.Score, "min_score", s.cfg.MinScore)
		return nil
	}

	persona := string(c.Persona)
	if persona == "" {
		persona = "unknown"
	}

	subject := fmt.Sprintf("📋 Interview Complete — %s lead, score %d", persona, c.Completion.Score)
	body := s.buildTextBody(c, persona)
	html := s.buildHTMLBody(c, persona)

	var errs []error
	for _, recipient := range s.cfg.Recipients {
		msg := EmailMessage{
			To:        recipient,
			Subject:   subject,
			Body:      body,
			HTML:      html,
			SessionID: c.SessionID,
		}
		if err := s.email.Send(ctx, msg); err != nil {
			s.logger.Error("notify: failed to send report email", "error", err, "to", recipient)
			errs = append(errs, err)
		} else {
			s.logger.Info("notify: interview report sent", "to", recipient, "session_id", c.SessionID)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d notification(s) failed", len(errs))
	}
	return nil
}

func (s *Service) buildTextBody(c interview.Context, persona string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "An interview just finished and is ready for review.\n\n")
	fmt.Fprintf(&b, "Session: %s\n", c.SessionID)
	fmt.Fprintf(&b, "Persona: %s (confidence %.2f)\n", persona, c.PersonaConfidence)
	fmt.Fprintf(&b, "Completeness: %d/100\n", c.Completion.Score)
	fmt.Fprintf(&b, "Finish reason: %s\n", c.FinishReason)
	fmt.Fprintf(&b, "Questions asked: %d\n", c.QuestionsAsked())
	fmt.Fprintf(&b, "Urgency: %s\n", c.Insights.Urgency)

	if len(c.Insights.ToolsMentioned) > 0 {
		fmt.Fprintf(&b, "Tools mentioned: %s\n", strings.Join(c.Insights.ToolsMentioned, ", "))
	}
	if c.Insights.BudgetSignal {
		b.WriteString("Budget discussed: yes\n")
	}
	if c.Insights.AuthoritySignal {
		b.WriteString("Decision authority confirmed: yes\n")
	}

	if highlights := assessmentHighlights(c); len(highlights) > 0 {
		b.WriteString("\nKey answers:\n")
		for _, h := range highlights {
			fmt.Fprintf(&b, "  %s: %s\n", h.label, h.value)
		}
	}

	if signals := signalList(c.Signals); len(signals) > 0 {
		fmt.Fprintf(&b, "\nAnswer quality flags: %s\n", strings.Join(signals, ", "))
	}

	b.WriteString("\n— LeadLens")
	return b.String()
}

func (s *Service) buildHTMLBody(c interview.Context, persona string) string {
	var rows strings.Builder
	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&rows, `<tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>%s:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>`, label, value)
	}

	row("Session", c.SessionID)
	row("Persona", fmt.Sprintf("%s (confidence %.2f)", persona, c.PersonaConfidence))
	row("Completeness", fmt.Sprintf("%d/100", c.Completion.Score))
	row("Finish reason", string(c.FinishReason))
	row("Questions asked", fmt.Sprintf("%d", c.QuestionsAsked()))
	row("Urgency", string(c.Insights.Urgency))
	row("Tools mentioned", strings.Join(c.Insights.ToolsMentioned, ", "))
	for _, h := range assessmentHighlights(c) {
		row(h.label, h.value)
	}
	row("Answer quality flags", strings.Join(signalList(c.Signals), ", "))

	return fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px;">
<h2 style="color: #3b82f6;">📋 Interview Complete</h2>
<p>A <strong>%s</strong> lead finished their interview with a completeness score of <strong>%d</strong>.</p>
<table style="border-collapse: collapse; margin: 20px 0;">
  %s
</table>
<p style="color: #6b7280; font-size: 12px; margin-top: 20px;">— LeadLens</p>
</div>`, persona, c.Completion.Score, rows.String())
}

type highlight struct {
	label string
	value string
}

var highlightFields = []struct {
	label string
	path  string
}{
	{"Industry", catalog.FieldIndustry},
	{"Team size", catalog.FieldTeamSize},
	{"Primary pain", catalog.FieldPainPrimary},
	{"Pain cost", catalog.FieldPainCost},
	{"Budget range", catalog.FieldBudgetRange},
	{"Timeline", catalog.FieldUrgency},
}

func assessmentHighlights(c interview.Context) []highlight {
	var out []highlight
	for _, f := range highlightFields {
		v, ok := c.Assessment.Get(f.path)
		if !ok {
			continue
		}
		text := strings.TrimSpace(fmt.Sprint(v))
		if text == "" {
			continue
		}
		out = append(out, highlight{label: f.label, value: text})
	}
	return out
}

func signalList(w interview.WeakSignals) []string {
	var out []string
	if w.Vague {
		out = append(out, "vague")
	}
	if w.Hesitant {
		out = append(out, "hesitant")
	}
	if w.Contradictory {
		out = append(out, "contradictory")
	}
	if w.LacksMetrics {
		out = append(out, "lacks metrics")
	}
	if w.Emotional {
		out = append(out, "emotional")
	}
	if w.UnderPressure {
		out = append(out, "under pressure")
	}
	return out
}

// Hook adapts the service to the engine's finish boundary.
type Hook struct {
	service *Service
}

// NewHook wraps a notification service as a finish hook.
func NewHook(service *Service) *Hook {
	if service == nil {
		panic("notify: service required")
	}
	return &Hook{service: service}
}

func (h *Hook) OnFinish(ctx context.Context, c interview.Context) error {
	return h.service.NotifyInterviewFinished(ctx, c)
}

var _ interview.FinishHook = (*Hook)(nil)
