package onboarding

// FlowState is the caller-side view of a user's onboarding flow.
type FlowState string

const (
	FlowStateUnknown    FlowState = "unknown"
	FlowStateIncomplete FlowState = "incomplete"
	FlowStateComplete   FlowState = "complete"
)

// ResolveFlowState maps the outcome of a status lookup to a flow state.
// A failed lookup stays unknown; it is never read as incomplete.
func ResolveFlowState(status Status, err error) FlowState {
	if err != nil {
		return FlowStateUnknown
	}
	if status.OnboardingCompleted {
		return FlowStateComplete
	}
	return FlowStateIncomplete
}
