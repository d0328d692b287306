package models

// AnalysisResult is the structured report returned by the model.
// Every field is optional; a response that could not be parsed only carries RawResponse.
type AnalysisResult struct {
	ExecutiveSummary        FlexString             `json:"executive_summary,omitempty"`
	TimeAnalysis            *TimeAnalysis          `json:"time_analysis,omitempty"`
	DelegationOpportunities []Delegation           `json:"delegation_opportunities,omitempty"`
	SOPCandidates           []SOP                  `json:"sop_candidates,omitempty"`
	CommunicationPatterns   *CommunicationPatterns `json:"communication_patterns,omitempty"`
	AutomationIdeas         []AutomationIdea       `json:"automation_ideas,omitempty"`
	Metrics                 *Metrics               `json:"metrics,omitempty"`
	ActionPlan              []Action               `json:"action_plan,omitempty"`

	RawResponse string `json:"raw_response,omitempty"`
}

// TimeAnalysis describes how the user's time is spent
type TimeAnalysis struct {
	PeakHours          FlexList `json:"peak_hours,omitempty"`
	WastedTimePatterns FlexList `json:"wasted_time_patterns,omitempty"`
	Recommendations    FlexList `json:"recommendations,omitempty"`
}

// Delegation is a task that could be handed to someone else
type Delegation struct {
	Task             FlexString `json:"task"`
	CurrentTimeSpent FlexString `json:"current_time_spent"`
	CanDelegateTo    FlexString `json:"can_delegate_to"`
	Priority         FlexString `json:"priority"`
}

// SOP is a repeatable procedure extracted from the conversations
type SOP struct {
	ProcessName FlexString `json:"process_name"`
	Description FlexString `json:"description"`
	Steps       FlexList   `json:"steps"`
	Triggers    FlexString `json:"triggers"`
	Owner       FlexString `json:"owner"`
	ToolsNeeded FlexList   `json:"tools_needed"`
}

// CommunicationPatterns describes recurring communication problems
type CommunicationPatterns struct {
	RepetitiveExplanations FlexList `json:"repetitive_explanations,omitempty"`
	Bottlenecks            FlexList `json:"bottlenecks,omitempty"`
	Improvements           FlexList `json:"improvements,omitempty"`
}

// AutomationIdea is something worth automating
type AutomationIdea struct {
	Idea           FlexString `json:"idea"`
	Impact         FlexString `json:"impact"`
	Implementation FlexString `json:"implementation"`
}

// Metrics holds the model's qualitative estimates
type Metrics struct {
	OperationalVsStrategic FlexString `json:"operational_vs_strategic,omitempty"`
	ResponseTimeEstimate   FlexString `json:"response_time_estimate,omitempty"`
	ContextSwitching       FlexString `json:"context_switching,omitempty"`
}

// Action is one prioritized step of the action plan
type Action struct {
	Action         FlexString `json:"action"`
	Priority       FlexString `json:"priority"`
	ExpectedResult FlexString `json:"expected_result"`
}

// IsDegraded reports whether the model output could not be parsed
func (a *AnalysisResult) IsDegraded() bool {
	return a == nil || a.RawResponse != ""
}

// Time returns the time analysis or an empty one
func (a *AnalysisResult) Time() TimeAnalysis {
	if a == nil || a.TimeAnalysis == nil {
		return TimeAnalysis{}
	}
	return *a.TimeAnalysis
}

// Communication returns the communication patterns or empty ones
func (a *AnalysisResult) Communication() CommunicationPatterns {
	if a == nil || a.CommunicationPatterns == nil {
		return CommunicationPatterns{}
	}
	return *a.CommunicationPatterns
}

// MetricValues returns the metrics or empty ones
func (a *AnalysisResult) MetricValues() Metrics {
	if a == nil || a.Metrics == nil {
		return Metrics{}
	}
	return *a.Metrics
}

// Summary returns the executive summary, empty for a nil result
func (a *AnalysisResult) Summary() string {
	if a == nil {
		return ""
	}
	return a.ExecutiveSummary.String()
}

// Delegations returns the delegation opportunities, empty for a nil result
func (a *AnalysisResult) Delegations() []Delegation {
	if a == nil {
		return nil
	}
	return a.DelegationOpportunities
}

// SOPs returns the procedure candidates, empty for a nil result
func (a *AnalysisResult) SOPs() []SOP {
	if a == nil {
		return nil
	}
	return a.SOPCandidates
}

// Automation returns the automation ideas, empty for a nil result
func (a *AnalysisResult) Automation() []AutomationIdea {
	if a == nil {
		return nil
	}
	return a.AutomationIdeas
}

// Actions returns the action plan, empty for a nil result
func (a *AnalysisResult) Actions() []Action {
	if a == nil {
		return nil
	}
	return a.ActionPlan
}
