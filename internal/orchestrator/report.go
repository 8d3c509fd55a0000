package orchestrator

import (
	"sort"
	"time"

	"github.com/leadlens-ai/leadlens/internal/catalog"
	"github.com/leadlens-ai/leadlens/internal/interview"
)

// Opportunity is one automation opening derived from the classified answers.
type Opportunity struct {
	Tag     string   `json:"tag"`
	Title   string   `json:"title"`
	Areas   []string `json:"areas"`
	Stories int      `json:"stories"`
}

// Report is the structured end-of-interview payload handed to the report
// generator. Formatting is the consumer's concern; this is data only.
type Report struct {
	SessionID      string                    `json:"sessionId"`
	GeneratedAt    time.Time                 `json:"generatedAt"`
	Persona        catalog.Persona           `json:"persona"`
	Confidence     float64                   `json:"personaConfidence"`
	FinishReason   interview.FinishReason    `json:"finishReason"`
	Completion     interview.Completion      `json:"completion"`
	Company        CompanySnapshot           `json:"company"`
	Assessment     interview.Assessment      `json:"assessment"`
	Expertise      map[string]ExpertiseLevel `json:"expertise,omitempty"`
	Stories        []ProblemStory            `json:"stories,omitempty"`
	DeepDives      []DeepDive                `json:"deepDives,omitempty"`
	Opportunities  []Opportunity             `json:"opportunities,omitempty"`
	QuestionsAsked int                       `json:"questionsAsked"`
	FollowUps      int                       `json:"followUps"`
	LLMCalls       int                       `json:"llmCalls"`
}

var opportunityTitles = map[string]string{
	TagManualProcess:       "Automate a manual process",
	TagMissingMetric:       "Instrument an unmeasured workflow",
	TagKeyPersonDependency: "Reduce a key-person dependency",
	TagToolSprawl:          "Consolidate overlapping tools",
	TagComplianceRisk:      "Close a compliance gap",
	TagGrowthBlocker:       "Remove a growth blocker",
}

// BuildReport assembles the report payload from a finished (or in-flight)
// session. Deep dives and opportunities come out in deterministic order.
func BuildReport(s State, now time.Time) Report {
	report := Report{
		SessionID:      s.SessionID,
		GeneratedAt:    now.UTC(),
		Persona:        s.Persona,
		Confidence:     s.PersonaConfidence,
		FinishReason:   s.FinishReason,
		Completion:     s.Completion,
		Company:        s.Company,
		Assessment:     s.Assessment.Clone(),
		Stories:        append([]ProblemStory(nil), s.Stories...),
		QuestionsAsked: s.QuestionsAsked(),
		LLMCalls:       s.LLMCalls,
	}

	if len(s.Expertise) > 0 {
		report.Expertise = make(map[string]ExpertiseLevel, len(s.Expertise))
		for area, level := range s.Expertise {
			report.Expertise[area] = level
		}
	}

	areas := make([]string, 0, len(s.DeepDives))
	for area := range s.DeepDives {
		areas = append(areas, area)
	}
	sort.Strings(areas)
	for _, area := range areas {
		report.DeepDives = append(report.DeepDives, *s.DeepDives[area])
	}

	for _, n := range s.FollowUpsAsked {
		report.FollowUps += n
	}

	report.Opportunities = deriveOpportunities(s)
	return report
}

// deriveOpportunities rolls the classified tags up into one opportunity per
// vocabulary tag, noting which areas and how many stories support it.
func deriveOpportunities(s State) []Opportunity {
	type rollup struct {
		areas   map[string]bool
		stories int
	}
	byTag := make(map[string]*rollup)
	touch := func(tag, area string) *rollup {
		r, ok := byTag[tag]
		if !ok {
			r = &rollup{areas: make(map[string]bool)}
			byTag[tag] = r
		}
		if area != "" {
			r.areas[area] = true
		}
		return r
	}

	for _, dive := range s.DeepDives {
		for _, tag := range dive.Tags {
			touch(tag, dive.Area)
		}
	}
	for _, story := range s.Stories {
		for _, tag := range story.Tags {
			touch(tag, story.Area).stories++
		}
	}

	var out []Opportunity
	for _, tag := range TagVocabulary() {
		r, ok := byTag[tag]
		if !ok {
			continue
		}
		areas := make([]string, 0, len(r.areas))
		for area := range r.areas {
			areas = append(areas, area)
		}
		sort.Strings(areas)
		out = append(out, Opportunity{
			Tag:     tag,
			Title:   opportunityTitles[tag],
			Areas:   areas,
			Stories: r.stories,
		})
	}
	return out
}
