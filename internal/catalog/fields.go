package catalog

// Dotted paths into the assessment record. Extractors write these; the
// completeness scorer reads them. The first path segment doubles as the
// question category it belongs to.
const (
	FieldIndustry       = "company.industry"
	FieldTeamSize       = "company.team_size"
	FieldRevenueBand    = "company.revenue_band"
	FieldPainPrimary    = "pain.primary"
	FieldPainCost       = "pain.cost_estimate"
	FieldPainFrequency  = "pain.frequency"
	FieldManualHours    = "process.manual_hours"
	FieldBudgetRange    = "budget.range"
	FieldGoalsPrimary   = "goals.primary"
	FieldUrgency        = "timeline.urgency"
	FieldToolingStack   = "tooling.stack"
	FieldDecisionMaker  = "authority.decision_maker"
	FieldGrowthPlan     = "team.growth_plan"
	FieldMetricsTracked = "metrics.tracked"
	FieldCompetitors    = "competitors.mentioned"
)
