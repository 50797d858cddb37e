package policy

// Rule identifies which business rule rejected a request.
type Rule string

const (
	RulePastTime      Rule = "past_time"
	RuleBusinessHours Rule = "business_hours"
	RuleDuration      Rule = "duration"
	RuleDaysAhead     Rule = "days_ahead"
	RuleEndOfDay      Rule = "end_of_day"
)

// Violation is a rule-breaking request. Message is shown to the requester verbatim.
type Violation struct {
	Rule    Rule
	Message string
}

func (v *Violation) Error() string {
	return v.Message
}
