package catalog

// BuiltinProvider supplies the standard lead-qualification question set.
type BuiltinProvider struct{}

// Version identifies the built-in set; bump when the set changes shape.
func (BuiltinProvider) Version() string { return "builtin/v1" }

// Questions returns the standard set. The slice is rebuilt per call so
// callers cannot mutate shared state.
func (BuiltinProvider) Questions() []Question {
	return []Question{
		{
			ID:       "q_company_industry",
			Category: "company",
			Variants: []Variant{
				{ID: "v1", Text: "What industry is your business in?", Tone: ToneDirect},
				{ID: "v2", Text: "Tell me a bit about your business — what space do you operate in?", Tone: ToneConsultative},
			},
			Input:    InputText,
			Priority: PriorityEssential,
			Personas: []Persona{PersonaAll},
			Tags:     []string{"company"},
			Extract:  textField(FieldIndustry, "company"),
		},
		{
			ID:       "q_company_team_size",
			Category: "company",
			Variants: []Variant{
				{ID: "v1", Text: "How many people work at your company?", Tone: ToneDirect},
				{ID: "v2", Text: "Roughly how big is the team today?", Tone: ToneCasual},
			},
			Input:    InputChoice,
			Options:  []string{"1-10", "11-50", "51-200", "200+"},
			Priority: PriorityEssential,
			Personas: []Persona{PersonaAll},
			Tags:     []string{"company"},
			Extract:  choiceField(FieldTeamSize, "company"),
		},
		{
			ID:       "q_pain_primary",
			Category: "pain",
			Variants: []Variant{
				{ID: "v1", Text: "What is the biggest operational problem you are trying to solve right now?", Tone: ToneDirect},
				{ID: "v2", Text: "If you could fix one thing about how your business runs, what would it be?", Tone: ToneConsultative},
				{ID: "v3", Text: "What's eating the most time or money in your operation these days?", Tone: ToneCasual},
			},
			Input:    InputText,
			Priority: PriorityEssential,
			Personas: []Persona{PersonaAll},
			Tags:     []string{"pain"},
			Extract:  textField(FieldPainPrimary, "pain"),
		},
		{
			ID:       "q_pain_cost",
			Category: "pain",
			Variants: []Variant{
				{ID: "v1", Text: "What do you estimate this problem costs you — in dollars, hours, or lost deals?", Tone: ToneDirect},
				{ID: "v2", Text: "If you had to put a number on it, what is this problem costing the business each month?", Tone: ToneConsultative},
			},
			Input:    InputText,
			Priority: PriorityEssential,
			Personas: []Persona{PersonaAll},
			Tags:     []string{"pain", TagQuantification},
			Eligibility: Eligibility{
				RequiresFields: []string{FieldPainPrimary},
			},
			Extract: quantifiedText(FieldPainCost, "pain_cost", "pain"),
		},
		{
			ID:       "q_goals_primary",
			Category: "goals",
			Variants: []Variant{
				{ID: "v1", Text: "What does success look like for you twelve months from now?", Tone: ToneConsultative},
				{ID: "v2", Text: "What's the main goal you want to hit this year?", Tone: ToneDirect},
			},
			Input:    InputText,
			Priority: PriorityEssential,
			Personas: []Persona{PersonaAll},
			Tags:     []string{"goals"},
			Extract:  textField(FieldGoalsPrimary, "goals"),
		},
		{
			ID:       "q_revenue_band",
			Category: "company",
			Variants: []Variant{
				{ID: "v1", Text: "Which range best describes your annual revenue?", Tone: ToneDirect},
			},
			Input:    InputChoice,
			Options:  []string{"under $250k", "$250k-$1M", "$1M-$10M", "$10M+"},
			Priority: PriorityImportant,
			Personas: []Persona{PersonaOwner, PersonaFinance, PersonaAll},
			Tags:     []string{"company", "finance"},
			Extract:  choiceField(FieldRevenueBand, "finance"),
		},
		{
			ID:       "q_pain_frequency",
			Category: "pain",
			Variants: []Variant{
				{ID: "v1", Text: "How often does this problem bite — daily, weekly, or less?", Tone: ToneCasual},
				{ID: "v2", Text: "How frequently does the team run into this issue?", Tone: ToneDirect},
			},
			Input:    InputChoice,
			Options:  []string{"daily", "weekly", "monthly", "rarely"},
			Priority: PriorityImportant,
			Personas: []Persona{PersonaAll},
			Tags:     []string{"pain"},
			Eligibility: Eligibility{
				RequiresFields: []string{FieldPainPrimary},
			},
			Extract: choiceField(FieldPainFrequency, "pain"),
		},
		{
			ID:       "q_manual_hours",
			Category: "process",
			Variants: []Variant{
				{ID: "v1", Text: "How many hours per week does your team spend on manual, repetitive work?", Tone: ToneDirect},
			},
			Input:    InputScale,
			Priority: PriorityImportant,
			Personas: []Persona{PersonaAll},
			Tags:     []string{"process", TagQuantification},
			Extract:  scaleField(FieldManualHours, "manual_hours", "process"),
		},
		{
			ID:       "q_budget_range",
			Category: "budget",
			Variants: []Variant{
				{ID: "v1", Text: "Do you have a budget range in mind for solving this?", Tone: ToneConsultative},
				{ID: "v2", Text: "What budget band are you working with for this initiative?", Tone: ToneDirect},
			},
			Input:    InputChoice,
			Options:  []string{"under $5k", "$5k-$25k", "$25k-$100k", "$100k+", "not sure yet"},
			Priority: PriorityImportant,
			Personas: []Persona{PersonaAll},
			Tags:     []string{"budget"},
			Eligibility: Eligibility{
				RequiresFields: []string{FieldPainPrimary},
			},
			Extract: choiceField(FieldBudgetRange, "budget"),
		},
		{
			ID:       "q_timeline_urgency",
			Category: "timeline",
			Variants: []Variant{
				{ID: "v1", Text: "When do you need this solved by?", Tone: ToneDirect},
				{ID: "v2", Text: "Is there a deadline or event driving the timing here?", Tone: ToneConsultative},
			},
			Input:    InputChoice,
			Options:  []string{"this quarter", "within 6 months", "this year", "just exploring"},
			Priority: PriorityImportant,
			Personas: []Persona{PersonaAll},
			Tags:     []string{"timeline"},
			Extract:  choiceField(FieldUrgency, "timeline"),
		},
		{
			ID:       "q_tooling_stack",
			Category: "tooling",
			Variants: []Variant{
				{ID: "v1", Text: "Which of these tools does your team use today?", Tone: ToneDirect},
			},
			Input:    InputMultiChoice,
			Options:  []string{"spreadsheets", "CRM", "ERP", "custom software", "pen and paper"},
			Priority: PriorityOptional,
			Personas: []Persona{PersonaAll},
			Tags:     []string{"tooling"},
			Extract:  multiChoiceField(FieldToolingStack, "tooling"),
		},
		{
			ID:       "q_decision_maker",
			Category: "authority",
			Variants: []Variant{
				{ID: "v1", Text: "Are you the person who signs off on a purchase like this?", Tone: ToneDirect},
				{ID: "v2", Text: "Who else would be involved in a decision like this?", Tone: ToneConsultative},
			},
			Input:    InputChoice,
			Options:  []string{"yes, I decide", "shared decision", "someone else decides"},
			Priority: PriorityOptional,
			Personas: []Persona{PersonaAll},
			Tags:     []string{"authority"},
			Extract:  choiceField(FieldDecisionMaker, "authority"),
		},
		{
			ID:       "q_growth_plan",
			Category: "team",
			Variants: []Variant{
				{ID: "v1", Text: "Are you planning to grow the team over the next year?", Tone: ToneCasual},
			},
			Input:    InputText,
			Priority: PriorityOptional,
			Personas: []Persona{PersonaOwner, PersonaOperations},
			Tags:     []string{"team"},
			Eligibility: Eligibility{
				RequiresFields:       []string{FieldTeamSize},
				MinPersonaConfidence: 0.4,
			},
			Extract: textField(FieldGrowthPlan, "team"),
		},
		{
			ID:       "q_metrics_tracked",
			Category: "metrics",
			Variants: []Variant{
				{ID: "v1", Text: "Which of these do you track today?", Tone: ToneDirect},
			},
			Input:    InputMultiChoice,
			Options:  []string{"revenue per employee", "cost per lead", "cycle time", "error rate", "none of these"},
			Priority: PriorityOptional,
			Personas: []Persona{PersonaAll},
			Tags:     []string{"metrics", TagQuantification},
			Extract:  multiChoiceField(FieldMetricsTracked, "metrics"),
		},
		{
			ID:       "q_competitors",
			Category: "competitors",
			Variants: []Variant{
				{ID: "v1", Text: "Have you looked at other solutions or vendors for this?", Tone: ToneConsultative},
			},
			Input:    InputText,
			Priority: PriorityOptional,
			Personas: []Persona{PersonaAll},
			Tags:     []string{"competitors"},
			Eligibility: Eligibility{
				SkipIfTopics: []string{"competitors"},
			},
			Extract: textField(FieldCompetitors, "competitors"),
		},
		{
			ID:       "q_finance_approval",
			Category: "authority",
			Variants: []Variant{
				{ID: "v1", Text: "Does a purchase in your budget range need board or CFO approval?", Tone: ToneDirect},
			},
			Input:    InputChoice,
			Options:  []string{"no approval needed", "CFO approval", "board approval"},
			Priority: PriorityOptional,
			Personas: []Persona{PersonaFinance, PersonaOwner},
			Tags:     []string{"authority", "budget"},
			Eligibility: Eligibility{
				RequiresFields:       []string{FieldBudgetRange},
				SkipIfFields:         []string{FieldDecisionMaker},
				MinPersonaConfidence: 0.5,
			},
			Extract: choiceField(FieldDecisionMaker, "authority"),
		},
		{
			ID:       "q_tech_integration",
			Category: "tooling",
			Variants: []Variant{
				{ID: "v1", Text: "Any systems a new tool would absolutely have to integrate with?", Tone: ToneDirect},
			},
			Input:    InputText,
			Priority: PriorityOptional,
			Personas: []Persona{PersonaTechnical},
			Tags:     []string{"tooling", "integration"},
			Eligibility: Eligibility{
				RequiresTopics:       []string{"tooling"},
				MinPersonaConfidence: 0.5,
			},
			Extract: textField("tooling.integration_notes", "integration"),
		},
	}
}
