package command

// ParseError reports malformed or unknown command text. Reason is shown to the
// requester as-is; Usage, when set, is the syntax line for the attempted command.
type ParseError struct {
	Reason string
	Usage  string
}

func (e *ParseError) Error() string {
	if e.Usage == "" {
		return e.Reason
	}
	return e.Reason + "\n사용법: " + e.Usage
}

func newParseError(usage, reason string) *ParseError {
	return &ParseError{Reason: reason, Usage: usage}
}
