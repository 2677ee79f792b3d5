package domain

// InterpretationKind identifies an interpretation mode
type InterpretationKind string

const (
	// InterpretationSingle - explain one drawn card
	InterpretationSingle InterpretationKind = "single"
	// InterpretationFeedback - respond to the querent's feedback on one card
	InterpretationFeedback InterpretationKind = "feedback"
	// InterpretationFinal - synthesize the whole spread
	InterpretationFinal InterpretationKind = "final"
)

// InterpretationRequest is one of SingleRequest, FeedbackRequest or FinalRequest.
// The interface is sealed; other packages cannot add variants.
type InterpretationRequest interface {
	Kind() InterpretationKind
	isInterpretationRequest()
}

// SingleRequest asks for the explanation of the card at CardIndex
type SingleRequest struct {
	CardIndex int
	Question  string
}

// FeedbackRequest asks for a reaction to the querent's latest feedback.
// Turns is the dialogue so far for that card.
type FeedbackRequest struct {
	CardIndex int
	Feedback  string
	Turns     []DialogueTurn
}

// FinalRequest asks for the closing synthesis.
// Interactions maps card index to its dialogue.
type FinalRequest struct {
	Question     string
	Interactions map[int][]DialogueTurn
}

func (SingleRequest) Kind() InterpretationKind   { return InterpretationSingle }
func (FeedbackRequest) Kind() InterpretationKind { return InterpretationFeedback }
func (FinalRequest) Kind() InterpretationKind    { return InterpretationFinal }

func (SingleRequest) isInterpretationRequest()   {}
func (FeedbackRequest) isInterpretationRequest() {}
func (FinalRequest) isInterpretationRequest()    {}

// HasHistory reports whether at least one card has a recorded turn
func HasHistory(interactions map[int][]DialogueTurn) bool {
	for _, turns := range interactions {
		if len(turns) > 0 {
			return true
		}
	}
	return false
}
