package domain

const (
	CallCollectFeedback  = "collect_feedback"
	CallDetectExitIntent = "detect_exit_intent"
)

// StructuredCall is a validated function call reported by the backend.
type StructuredCall interface {
	CallName() string
	structuredCall()
}

type FeedbackCall struct {
	Review     string
	Rating     Rating
	IsFeedback bool
}

func (FeedbackCall) CallName() string { return CallCollectFeedback }
func (FeedbackCall) structuredCall()  {}

type ExitIntentCall struct {
	IsExitIntent bool
	Confidence   float64
}

func (ExitIntentCall) CallName() string { return CallDetectExitIntent }
func (ExitIntentCall) structuredCall()  {}

func FindExitIntent(calls []StructuredCall) (ExitIntentCall, bool) {
	for _, c := range calls {
		if ec, ok := c.(ExitIntentCall); ok {
			return ec, true
		}
	}
	return ExitIntentCall{}, false
}
