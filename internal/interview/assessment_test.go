package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssessmentSetAndGet(t *testing.T) {
	a := make(Assessment)
	a.Set("pain.cost_estimate", "about 2k per month")
	a.Set("company.team_size", 12)

	v, ok := a.Get("pain.cost_estimate")
	require.True(t, ok)
	assert.Equal(t, "about 2k per month", v)

	v, ok = a.Get("company.team_size")
	require.True(t, ok)
	assert.Equal(t, 12, v)

	_, ok = a.Get("pain.frequency")
	assert.False(t, ok)

	_, ok = a.Get("pain.cost_estimate.detail")
	assert.False(t, ok, "leaf values must not resolve further")
}

func TestAssessmentHas(t *testing.T) {
	a := make(Assessment)
	a.Set("company.industry", "logistics")
	a.Set("company.revenue_band", "")
	a.Set("tooling.stack", []string{})
	a.Set("metrics.tracked", nil)
	a.Set("process.manual_hours", 0)

	assert.True(t, a.Has("company.industry"))
	assert.False(t, a.Has("company.revenue_band"), "empty string is not collected")
	assert.False(t, a.Has("tooling.stack"), "empty slice is not collected")
	assert.False(t, a.Has("metrics.tracked"), "nil is not collected")
	assert.True(t, a.Has("process.manual_hours"), "zero is still a value")
	assert.False(t, a.Has("budget.range"))
}

func TestAssessmentMergeOverwrites(t *testing.T) {
	a := make(Assessment)
	a.Set("pain.primary", "invoicing delays")
	a.Merge(map[string]any{
		"pain.primary":   "chasing invoices",
		"pain.frequency": "weekly",
	})

	v, _ := a.Get("pain.primary")
	assert.Equal(t, "chasing invoices", v)
	assert.True(t, a.Has("pain.frequency"))
}

func TestAssessmentCloneIsDeep(t *testing.T) {
	a := make(Assessment)
	a.Set("tooling.stack", []string{"excel"})
	a.Set("company.industry", "retail")

	clone := a.Clone()
	clone.Set("company.industry", "saas")
	clone.Set("pain.primary", "churn")

	v, _ := a.Get("company.industry")
	assert.Equal(t, "retail", v)
	assert.False(t, a.Has("pain.primary"))
}
