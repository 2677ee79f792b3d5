package domain

import (
	"fmt"
	"time"
)

// TurnField names one slot of a DialogueTurn
type TurnField string

const (
	// TurnFieldInterpretation - the reader's explanation of the card
	TurnFieldInterpretation TurnField = "interpretation"
	// TurnFieldFeedback - what the querent said back
	TurnFieldFeedback TurnField = "feedback"
	// TurnFieldReaction - the reader's answer to the feedback
	TurnFieldReaction TurnField = "reaction"
)

func (f TurnField) rank() int {
	switch f {
	case TurnFieldInterpretation:
		return 0
	case TurnFieldFeedback:
		return 1
	case TurnFieldReaction:
		return 2
	}
	return -1
}

// Valid reports whether f is a known field
func (f TurnField) Valid() bool {
	return f.rank() >= 0
}

// DialogueTurn is one round of interpretation, feedback and reaction for a card.
// Fields fill in that order and a turn may be read before it is complete.
type DialogueTurn struct {
	Interpretation *string `json:"interpretation,omitempty"`
	Feedback       *string `json:"feedback,omitempty"`
	Reaction       *string `json:"reaction,omitempty"`
}

func (t *DialogueTurn) highestRank() int {
	switch {
	case t.Reaction != nil:
		return 2
	case t.Feedback != nil:
		return 1
	case t.Interpretation != nil:
		return 0
	}
	return -1
}

func (t *DialogueTurn) set(field TurnField, value string) {
	v := value
	switch field {
	case TurnFieldInterpretation:
		t.Interpretation = &v
	case TurnFieldFeedback:
		t.Feedback = &v
	case TurnFieldReaction:
		t.Reaction = &v
	}
}

func (t DialogueTurn) clone() DialogueTurn {
	return DialogueTurn{
		Interpretation: cloneString(t.Interpretation),
		Feedback:       cloneString(t.Feedback),
		Reaction:       cloneString(t.Reaction),
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// StringValue dereferences an optional turn field
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ReadingSession represents one querent's single spread attempt
type ReadingSession struct {
	ID             string                 `json:"id"`
	DrawnCards     []DrawnCard            `json:"drawn_cards"`
	Interactions   map[int][]DialogueTurn `json:"interactions"`
	Question       string                 `json:"question,omitempty"` // Set by chat readers
	Focus          int                    `json:"focus"`              // Last card interpreted, -1 when none
	Round          int                    `json:"round"`              // Bumped by every reset that clears cards
	LastAccessTime time.Time              `json:"-"`
	timeout        time.Duration
}

// NewReadingSession creates an empty session that expires after timeout of inactivity
func NewReadingSession(id string, timeout time.Duration) *ReadingSession {
	return &ReadingSession{
		ID:             id,
		DrawnCards:     make([]DrawnCard, 0, SpreadSize),
		Interactions:   make(map[int][]DialogueTurn),
		Focus:          -1,
		LastAccessTime: time.Now(),
		timeout:        timeout,
	}
}

// IsExpired checks if the session has exceeded the configured timeout
func (s *ReadingSession) IsExpired() bool {
	return time.Since(s.LastAccessTime) > s.timeout
}

// IsFull reports whether the whole spread has been drawn
func (s *ReadingSession) IsFull() bool {
	return len(s.DrawnCards) >= SpreadSize
}

// CardCount returns the number of drawn cards
func (s *ReadingSession) CardCount() int {
	return len(s.DrawnCards)
}

// ValidIndex reports whether index points at a drawn card
func (s *ReadingSession) ValidIndex(index int) bool {
	return index >= 0 && index < len(s.DrawnCards)
}

// DrawNext draws one card not yet in this session with a random orientation
// and appends it. A full session is left untouched.
func (s *ReadingSession) DrawNext(deck *Deck, rng RNG) (DrawnCard, error) {
	if s.IsFull() {
		return DrawnCard{}, ErrSessionFull
	}

	excluding := make(map[string]struct{}, len(s.DrawnCards))
	for _, d := range s.DrawnCards {
		excluding[d.Card.Name] = struct{}{}
	}

	card, err := deck.DrawOne(excluding, rng)
	if err != nil {
		return DrawnCard{}, err
	}

	drawn := DrawnCard{Card: card, Orientation: RandomOrientation(rng)}
	s.DrawnCards = append(s.DrawnCards, drawn)
	return drawn, nil
}

// Reset clears drawn cards and dialogue. The question is kept.
func (s *ReadingSession) Reset() {
	if len(s.DrawnCards) > 0 || len(s.Interactions) > 0 {
		s.Round++
	}
	s.DrawnCards = make([]DrawnCard, 0, SpreadSize)
	s.Interactions = make(map[int][]DialogueTurn)
	s.Focus = -1
}

// RecordTurn stores value in the given field of the card's dialogue.
// The value goes into the latest turn unless that turn already holds this
// field or a later one, in which case a new turn is started.
func (s *ReadingSession) RecordTurn(index int, field TurnField, value string) error {
	if !s.ValidIndex(index) {
		return fmt.Errorf("%w: card index %d with %d cards drawn", ErrInvalidIndex, index, len(s.DrawnCards))
	}
	if !field.Valid() {
		return fmt.Errorf("%w: unknown turn field %q", ErrInvalidRequest, field)
	}
	if value == "" {
		return fmt.Errorf("%w: empty %s", ErrInvalidRequest, field)
	}

	if s.Interactions == nil {
		s.Interactions = make(map[int][]DialogueTurn)
	}
	turns := s.Interactions[index]
	if n := len(turns); n == 0 || turns[n-1].highestRank() >= field.rank() {
		turns = append(turns, DialogueTurn{})
	}
	turns[len(turns)-1].set(field, value)
	s.Interactions[index] = turns
	return nil
}

// SameCardAs reports whether index still holds the card other had there,
// with no reset in between
func (s *ReadingSession) SameCardAs(other *ReadingSession, index int) bool {
	if s.Round != other.Round || !s.ValidIndex(index) || !other.ValidIndex(index) {
		return false
	}
	return s.DrawnCards[index] == other.DrawnCards[index]
}

// TurnsFor returns a copy of the dialogue recorded for one card
func (s *ReadingSession) TurnsFor(index int) []DialogueTurn {
	return cloneTurns(s.Interactions[index])
}

// History returns a copy of every card's dialogue, skipping cards without turns
func (s *ReadingSession) History() map[int][]DialogueTurn {
	out := make(map[int][]DialogueTurn, len(s.Interactions))
	for i, turns := range s.Interactions {
		if len(turns) == 0 {
			continue
		}
		out[i] = cloneTurns(turns)
	}
	return out
}

// Clone returns a deep copy sharing no mutable state with s
func (s *ReadingSession) Clone() *ReadingSession {
	c := *s
	c.DrawnCards = make([]DrawnCard, len(s.DrawnCards))
	copy(c.DrawnCards, s.DrawnCards)
	c.Interactions = s.History()
	return &c
}

func cloneTurns(turns []DialogueTurn) []DialogueTurn {
	if len(turns) == 0 {
		return nil
	}
	out := make([]DialogueTurn, len(turns))
	for i, t := range turns {
		out[i] = t.clone()
	}
	return out
}
