package input

import (
	"context"

	"tarot-reading/internal/domain"
)

// TarotService interface - Input port (use case)
// Defines what a caller can do with one reading session
type TarotService interface {
	// DrawCard draws the next card of the spread
	DrawCard(sessionID string) (*domain.DrawResult, error)

	// Reset clears the session's cards and dialogue
	Reset(sessionID string) error

	// RecordTurn stores one dialogue field for a drawn card
	RecordTurn(sessionID string, index int, field domain.TurnField, value string) error

	// GetSession returns a snapshot of the session, creating an empty one if needed
	GetSession(sessionID string) (*domain.ReadingSession, error)

	// SetQuestion stores the reading topic used when a request has none
	SetQuestion(sessionID string, question string) error

	// Interpret asks the model for an interpretation without changing the session
	Interpret(ctx context.Context, sessionID string, request domain.InterpretationRequest) (string, error)

	// Converse interprets and, on success, records the exchange in the session
	Converse(ctx context.Context, sessionID string, request domain.InterpretationRequest) (string, error)

	// Deck returns the loaded card deck
	Deck() *domain.Deck
}
