package interview

import (
	"strings"

	"github.com/leadlens-ai/leadlens/internal/catalog"
)

var knownTools = []string{
	"salesforce", "hubspot", "quickbooks", "xero", "excel", "google sheets",
	"airtable", "zapier", "slack", "notion", "asana", "trello", "monday",
	"netsuite", "sap", "jira", "zendesk",
}

var budgetMarkers = []string{"budget", "$", "per month", "per year", "willing to spend", "allocated"}

var authorityMarkers = []string{
	"i decide", "my decision", "my call", "sign off", "i approve",
	"final say", "i'm the owner", "i am the owner",
}

// updateInsights refreshes the derived observations after an answer lands.
// Urgency and complexity only ever escalate within a session.
func updateInsights(c *Context, answerText string, ext catalog.Extraction) {
	text := strings.ToLower(answerText)

	for _, tool := range knownTools {
		if strings.Contains(text, tool) && !containsString(c.Insights.ToolsMentioned, tool) {
			c.Insights.ToolsMentioned = append(c.Insights.ToolsMentioned, tool)
		}
	}
	if stack, ok := ext.Fields[catalog.FieldToolingStack].([]string); ok {
		for _, tool := range stack {
			t := strings.ToLower(tool)
			if !containsString(c.Insights.ToolsMentioned, t) {
				c.Insights.ToolsMentioned = append(c.Insights.ToolsMentioned, t)
			}
		}
	}

	if !c.Insights.BudgetSignal {
		c.Insights.BudgetSignal = c.FieldPresent(catalog.FieldBudgetRange) || containsAny(text, budgetMarkers)
	}
	if !c.Insights.AuthoritySignal {
		c.Insights.AuthoritySignal = c.FieldPresent(catalog.FieldDecisionMaker) || containsAny(text, authorityMarkers)
	}

	c.Insights.Urgency = escalateUrgency(c.Insights.Urgency, urgencyFor(c))
	c.Insights.Complexity = escalateComplexity(c.Insights.Complexity, complexityFor(c))
}

func urgencyFor(c *Context) UrgencyLevel {
	urgent := c.Signals.UnderPressure
	if v, ok := c.Assessment.Get(catalog.FieldUrgency); ok {
		if s, ok := v.(string); ok && (s == "this quarter" || s == "this month") {
			if urgent {
				return UrgencyCritical
			}
			return UrgencyElevated
		}
	}
	if urgent {
		return UrgencyElevated
	}
	return UrgencyNormal
}

func complexityFor(c *Context) ComplexityLevel {
	points := len(c.Topics) + len(c.Insights.ToolsMentioned)
	switch {
	case points >= 7:
		return ComplexityHigh
	case points >= 3:
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}

func escalateUrgency(cur, next UrgencyLevel) UrgencyLevel {
	if urgencyRank(next) > urgencyRank(cur) {
		return next
	}
	return cur
}

func urgencyRank(u UrgencyLevel) int {
	switch u {
	case UrgencyCritical:
		return 2
	case UrgencyElevated:
		return 1
	default:
		return 0
	}
}

func escalateComplexity(cur, next ComplexityLevel) ComplexityLevel {
	if complexityRank(next) > complexityRank(cur) {
		return next
	}
	return cur
}

func complexityRank(cx ComplexityLevel) int {
	switch cx {
	case ComplexityHigh:
		return 2
	case ComplexityMedium:
		return 1
	default:
		return 0
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
