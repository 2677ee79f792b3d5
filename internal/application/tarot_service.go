package application

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"tarot-reading/internal/domain"
	"tarot-reading/internal/ports/input"
	"tarot-reading/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// Compile-time check to ensure TarotService implements the input port
var _ input.TarotService = (*TarotService)(nil)

// TarotService struct - Application service owning the reading session lifecycle.
// Mutations of one session are serialized by a per-session mutex; distinct
// sessions never share a lock. Model calls run outside the lock on a snapshot.
type TarotService struct {
	deck           *domain.Deck
	store          output.SessionStore
	interpretation *InterpretationService
	rng            domain.RNG

	locks sync.Map // session ID -> *sync.Mutex
}

// NewTarotService func - rng may be nil to use the process-wide generator
func NewTarotService(deck *domain.Deck, store output.SessionStore, interpretation *InterpretationService, rng domain.RNG) *TarotService {
	if rng == nil {
		rng = defaultRNG{}
	} else {
		rng = &lockedRNG{rng: rng}
	}
	return &TarotService{
		deck:           deck,
		store:          store,
		interpretation: interpretation,
		rng:            rng,
	}
}

// Deck returns the loaded card deck
func (s *TarotService) Deck() *domain.Deck {
	return s.deck
}

// DrawCard func - Use case: draw the next card. A full session returns the
// current cards together with domain.ErrSessionFull.
func (s *TarotService) DrawCard(sessionID string) (*domain.DrawResult, error) {
	var result *domain.DrawResult
	err := s.withSession(sessionID, func(session *domain.ReadingSession) (bool, error) {
		drawn, err := session.DrawNext(s.deck, s.rng)
		result = &domain.DrawResult{
			NewCard:    drawn,
			DrawnCards: append([]domain.DrawnCard(nil), session.DrawnCards...),
			CardCount:  session.CardCount(),
		}
		if err != nil {
			logrus.Warnf("Draw rejected for session %s: %v", sessionID, err)
			return false, err
		}
		logrus.Infof("Session %s drew %s (%s), %d/%d", sessionID, drawn.Card.Name, drawn.Orientation, session.CardCount(), domain.SpreadSize)
		return true, nil
	})
	return result, err
}

// Reset func - Use case: clear the spread and its dialogue
func (s *TarotService) Reset(sessionID string) error {
	return s.withSession(sessionID, func(session *domain.ReadingSession) (bool, error) {
		session.Reset()
		logrus.Infof("Session %s reset", sessionID)
		return true, nil
	})
}

// RecordTurn func - Use case: store one dialogue field for a drawn card
func (s *TarotService) RecordTurn(sessionID string, index int, field domain.TurnField, value string) error {
	return s.withSession(sessionID, func(session *domain.ReadingSession) (bool, error) {
		if err := session.RecordTurn(index, field, value); err != nil {
			logrus.Warnf("Turn rejected for session %s: %v", sessionID, err)
			return false, err
		}
		return true, nil
	})
}

// GetSession func - Use case: read the session, creating an empty one on first contact
func (s *TarotService) GetSession(sessionID string) (*domain.ReadingSession, error) {
	var snapshot *domain.ReadingSession
	err := s.withSession(sessionID, func(session *domain.ReadingSession) (bool, error) {
		snapshot = session.Clone()
		return true, nil
	})
	return snapshot, err
}

// SetQuestion func - Use case: remember the reading topic for later requests
func (s *TarotService) SetQuestion(sessionID string, question string) error {
	return s.withSession(sessionID, func(session *domain.ReadingSession) (bool, error) {
		session.Question = strings.TrimSpace(question)
		return true, nil
	})
}

// Interpret func - Use case: interpret without touching session state.
// Missing questions, turns and interactions are taken from the session.
func (s *TarotService) Interpret(ctx context.Context, sessionID string, request domain.InterpretationRequest) (string, error) {
	text, _, err := s.interpret(ctx, sessionID, request)
	return text, err
}

// Converse func - Use case: interpret, then record the exchange.
// Nothing is recorded when the interpretation fails, or when the card was
// reset or replaced while the model was answering.
func (s *TarotService) Converse(ctx context.Context, sessionID string, request domain.InterpretationRequest) (string, error) {
	text, snapshot, err := s.interpret(ctx, sessionID, request)
	if err != nil {
		return "", err
	}

	err = s.withSession(sessionID, func(session *domain.ReadingSession) (bool, error) {
		switch r := request.(type) {
		case domain.SingleRequest:
			if !session.SameCardAs(snapshot, r.CardIndex) {
				return false, fmt.Errorf("%w: card %d changed during interpretation", domain.ErrInvalidIndex, r.CardIndex)
			}
			if err := session.RecordTurn(r.CardIndex, domain.TurnFieldInterpretation, text); err != nil {
				return false, err
			}
			session.Focus = r.CardIndex
		case domain.FeedbackRequest:
			if !session.SameCardAs(snapshot, r.CardIndex) {
				return false, fmt.Errorf("%w: card %d changed during interpretation", domain.ErrInvalidIndex, r.CardIndex)
			}
			if err := session.RecordTurn(r.CardIndex, domain.TurnFieldFeedback, strings.TrimSpace(r.Feedback)); err != nil {
				return false, err
			}
			if err := session.RecordTurn(r.CardIndex, domain.TurnFieldReaction, text); err != nil {
				return false, err
			}
			session.Focus = r.CardIndex
		default:
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		logrus.Warnf("Could not record %s exchange for session %s: %v", request.Kind(), sessionID, err)
	}
	return text, nil
}

// interpret runs the model on a snapshot taken under the session lock and
// returns that snapshot with the text
func (s *TarotService) interpret(ctx context.Context, sessionID string, request domain.InterpretationRequest) (string, *domain.ReadingSession, error) {
	snapshot, err := s.snapshot(sessionID)
	if err != nil {
		return "", nil, err
	}
	text, err := s.interpretation.Interpret(ctx, snapshot, complete(snapshot, request))
	return text, snapshot, err
}

// snapshot copies the session without storing it. An unknown ID yields an
// empty session that is not persisted.
func (s *TarotService) snapshot(sessionID string) (*domain.ReadingSession, error) {
	var snapshot *domain.ReadingSession
	err := s.withSession(sessionID, func(session *domain.ReadingSession) (bool, error) {
		snapshot = session.Clone()
		return false, nil
	})
	return snapshot, err
}

// withSession loads the session under its lock, runs fn and stores the
// session when fn reports a change
func (s *TarotService) withSession(sessionID string, fn func(session *domain.ReadingSession) (bool, error)) error {
	if sessionID == "" {
		return domain.ErrSessionNotFound
	}

	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, err := s.store.GetSession(sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		session = domain.NewReadingSession(sessionID, s.store.GetTimeout())
		logrus.Infof("Created new reading session %s", sessionID)
	}

	changed, fnErr := fn(session)
	if changed {
		if err := s.store.UpdateSession(session); err != nil {
			return fmt.Errorf("failed to store session: %w", err)
		}
	}
	return fnErr
}

func (s *TarotService) lockFor(sessionID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// complete fills the optional parts of request from the session snapshot.
// Values supplied by the caller win.
func complete(session *domain.ReadingSession, request domain.InterpretationRequest) domain.InterpretationRequest {
	switch r := request.(type) {
	case domain.SingleRequest:
		if strings.TrimSpace(r.Question) == "" {
			r.Question = session.Question
		}
		return r
	case domain.FeedbackRequest:
		if r.Turns == nil {
			r.Turns = session.TurnsFor(r.CardIndex)
		}
		return r
	case domain.FinalRequest:
		if strings.TrimSpace(r.Question) == "" {
			r.Question = session.Question
		}
		if r.Interactions == nil {
			r.Interactions = session.History()
		}
		return r
	}
	return request
}

// defaultRNG draws from math/rand/v2's goroutine-safe source
type defaultRNG struct{}

func (defaultRNG) Intn(n int) int { return rand.IntN(n) }

// lockedRNG serializes an injected generator shared by all sessions
type lockedRNG struct {
	mu  sync.Mutex
	rng domain.RNG
}

func (r *lockedRNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}
