package http

import (
	"fmt"

	"tarot-reading/internal/domain"
)

// Interpretation request types
const (
	InterpretTypeSingle   = "single"
	InterpretTypeFeedback = "feedback"
	InterpretTypeFinal    = "final"
)

type (
	// TurnRequest struct - HTTP request DTO for recording one dialogue field
	TurnRequest struct {
		CardIndex *int   `json:"card_index" validate:"required,min=0"`
		Field     string `json:"field" validate:"required,oneof=interpretation feedback reaction"`
		Value     string `json:"value" validate:"required,notblank,max=4000"`
	}

	// QuestionRequest struct - HTTP request DTO for setting the reading topic
	QuestionRequest struct {
		Question string `json:"question" validate:"max=500"`
	}

	// DialogueTurnRequest struct - one exchange supplied by the caller
	DialogueTurnRequest struct {
		Interpretation *string `json:"interpretation,omitempty"`
		Feedback       *string `json:"feedback,omitempty"`
		Reaction       *string `json:"reaction,omitempty"`
	}

	// InterpretRequest struct - HTTP request DTO for /interpret.
	// Fields that do not belong to the chosen type are ignored.
	InterpretRequest struct {
		Type         string                        `json:"type" validate:"required,oneof=single feedback final"`
		CardIndex    *int                          `json:"card_index,omitempty" validate:"omitempty,min=0"`
		Question     string                        `json:"question,omitempty" validate:"max=500"`
		Feedback     string                        `json:"feedback,omitempty" validate:"max=1000"`
		Turns        []DialogueTurnRequest         `json:"turns,omitempty"`
		Interactions map[int][]DialogueTurnRequest `json:"interactions,omitempty"`
		Record       bool                          `json:"record,omitempty"`
	}
)

// ToDomain parses the payload into its interpretation request variant
func (r InterpretRequest) ToDomain() (domain.InterpretationRequest, error) {
	switch r.Type {
	case InterpretTypeSingle:
		if r.CardIndex == nil {
			return nil, fmt.Errorf("%w: card_index is required", domain.ErrInvalidRequest)
		}
		return domain.SingleRequest{CardIndex: *r.CardIndex, Question: r.Question}, nil
	case InterpretTypeFeedback:
		if r.CardIndex == nil {
			return nil, fmt.Errorf("%w: card_index is required", domain.ErrInvalidRequest)
		}
		return domain.FeedbackRequest{CardIndex: *r.CardIndex, Feedback: r.Feedback, Turns: toTurns(r.Turns)}, nil
	case InterpretTypeFinal:
		var interactions map[int][]domain.DialogueTurn
		if len(r.Interactions) > 0 {
			interactions = make(map[int][]domain.DialogueTurn, len(r.Interactions))
			for index, turns := range r.Interactions {
				interactions[index] = toTurns(turns)
			}
		}
		return domain.FinalRequest{Question: r.Question, Interactions: interactions}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidRequest, r.Type)
	}
}

func toTurns(in []DialogueTurnRequest) []domain.DialogueTurn {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.DialogueTurn, len(in))
	for i, t := range in {
		out[i] = domain.DialogueTurn{
			Interpretation: t.Interpretation,
			Feedback:       t.Feedback,
			Reaction:       t.Reaction,
		}
	}
	return out
}
