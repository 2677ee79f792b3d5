package http

import (
	"net/http"
	"sort"

	"tarot-reading/internal/domain"
)

var (
	// Success response
	Success = Status{Code: http.StatusOK, Message: []string{"Success"}}
	// BadRequest response
	BadRequest = Status{Code: http.StatusBadRequest, Message: []string{"Sorry, Not responding because of incorrect syntax"}}
	// ConFlict response
	ConFlict = Status{Code: http.StatusConflict, Message: []string{"Sorry, No cards are left to draw"}}
	// BadGateway response
	BadGateway = Status{Code: http.StatusBadGateway, Message: []string{"Sorry, The cards could not be read right now. Please try again"}}
	// InternalServerError response
	InternalServerError = Status{Code: http.StatusInternalServerError, Message: []string{"Internal Server Error"}}
)

// ResponseBody struct - Generic HTTP response wrapper
type ResponseBody struct {
	Status Status      `json:"status,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// Status struct
type Status struct {
	Code    int      `json:"code,omitempty"`
	Message []string `json:"message,omitempty"`
}

type (
	// DrawnCardResponse struct - one card of the spread
	DrawnCardResponse struct {
		Position    string `json:"position"`
		CardName    string `json:"card_name"`
		Orientation string `json:"orientation"`
		Meaning     string `json:"meaning"`
	}

	// DrawCardResponse struct - HTTP response DTO for /draw_card
	DrawCardResponse struct {
		NewCard    *DrawnCardResponse  `json:"new_card,omitempty"`
		DrawnCards []DrawnCardResponse `json:"drawn_cards"`
		CardCount  int                 `json:"card_count"`
	}

	// InteractionResponse struct - recorded dialogue for one card
	InteractionResponse struct {
		CardIndex int                   `json:"card_index"`
		Turns     []DialogueTurnRequest `json:"turns"`
	}

	// SessionResponse struct - HTTP response DTO for /session
	SessionResponse struct {
		Question     string                `json:"question,omitempty"`
		DrawnCards   []DrawnCardResponse   `json:"drawn_cards"`
		CardCount    int                   `json:"card_count"`
		Interactions []InteractionResponse `json:"interactions"`
	}

	// InterpretResponse struct - HTTP response DTO for /interpret
	InterpretResponse struct {
		Interpretation     string `json:"interpretation"`
		InterpretationHTML string `json:"interpretation_html"`
	}

	// MessageResponse struct
	MessageResponse struct {
		Message string `json:"message"`
	}
)

func newDrawnCardResponse(index int, c domain.DrawnCard) DrawnCardResponse {
	return DrawnCardResponse{
		Position:    domain.PositionLabel(index),
		CardName:    c.Card.Name,
		Orientation: c.Orientation.Label(),
		Meaning:     c.Meaning(),
	}
}

func newDrawnCardsResponse(cards []domain.DrawnCard) []DrawnCardResponse {
	out := make([]DrawnCardResponse, len(cards))
	for i, c := range cards {
		out[i] = newDrawnCardResponse(i, c)
	}
	return out
}

func newDrawCardResponse(result *domain.DrawResult, withNew bool) DrawCardResponse {
	resp := DrawCardResponse{
		DrawnCards: newDrawnCardsResponse(result.DrawnCards),
		CardCount:  result.CardCount,
	}
	if withNew {
		card := newDrawnCardResponse(result.CardCount-1, result.NewCard)
		resp.NewCard = &card
	}
	return resp
}

func newSessionResponse(session *domain.ReadingSession) SessionResponse {
	indexes := make([]int, 0, len(session.Interactions))
	for index := range session.Interactions {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)

	interactions := make([]InteractionResponse, 0, len(indexes))
	for _, index := range indexes {
		turns := session.Interactions[index]
		out := make([]DialogueTurnRequest, len(turns))
		for i, t := range turns {
			out[i] = DialogueTurnRequest{Interpretation: t.Interpretation, Feedback: t.Feedback, Reaction: t.Reaction}
		}
		interactions = append(interactions, InteractionResponse{CardIndex: index, Turns: out})
	}

	return SessionResponse{
		Question:     session.Question,
		DrawnCards:   newDrawnCardsResponse(session.DrawnCards),
		CardCount:    session.CardCount(),
		Interactions: interactions,
	}
}
