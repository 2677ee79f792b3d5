package application

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarot-reading/internal/domain"
)

func fullSession(t *testing.T) *domain.ReadingSession {
	t.Helper()
	deck := newTestDeck(78)
	session := domain.NewReadingSession("session-1", defaultTestTimeout)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < domain.SpreadSize; i++ {
		_, err := session.DrawNext(deck, rng)
		require.NoError(t, err)
	}
	return session
}

func TestInterpretFinalReturnsModelTextWithoutMutatingSession(t *testing.T) {
	session := fullSession(t)
	seen := make(map[string]struct{})
	for _, c := range session.DrawnCards {
		seen[c.Card.Name] = struct{}{}
	}
	require.Len(t, seen, domain.SpreadSize)

	before := session.Clone()
	model := &MockModelClient{}
	service := NewInterpretationService(model, time.Second)

	out, err := service.Interpret(context.Background(), session, domain.FinalRequest{
		Question:     "What lies ahead?",
		Interactions: map[int][]domain.DialogueTurn{0: {{Interpretation: strPtr("a new start")}}},
	})

	require.NoError(t, err)
	assert.Equal(t, "OK", out)
	assert.Equal(t, 1, model.Calls())
	assert.Equal(t, before.DrawnCards, session.DrawnCards)
	assert.Empty(t, session.Interactions)
}

func TestInterpretSingleOutOfRangeNeverCallsModel(t *testing.T) {
	session := domain.NewReadingSession("session-1", defaultTestTimeout)
	_, err := session.DrawNext(newTestDeck(10), &sequenceRNG{})
	require.NoError(t, err)

	model := &MockModelClient{}
	service := NewInterpretationService(model, time.Second)

	_, err = service.Interpret(context.Background(), session, domain.SingleRequest{CardIndex: 2})

	assert.ErrorIs(t, err, domain.ErrInvalidIndex)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Equal(t, 0, model.Calls())
}

func TestInterpretFinalWithFourCardsNeverCallsModel(t *testing.T) {
	session := fullSession(t)
	session.DrawnCards = session.DrawnCards[:4]

	model := &MockModelClient{}
	service := NewInterpretationService(model, time.Second)

	_, err := service.Interpret(context.Background(), session, domain.FinalRequest{
		Interactions: map[int][]domain.DialogueTurn{0: {{Interpretation: strPtr("x")}}},
	})

	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Equal(t, 0, model.Calls())
}

func TestInterpretValidationFailures(t *testing.T) {
	session := fullSession(t)
	model := &MockModelClient{}
	service := NewInterpretationService(model, time.Second)

	tests := []struct {
		name    string
		request domain.InterpretationRequest
	}{
		{name: "nil request", request: nil},
		{name: "feedback without turns", request: domain.FeedbackRequest{CardIndex: 0, Feedback: "yes"}},
		{name: "feedback without text", request: domain.FeedbackRequest{CardIndex: 0, Turns: []domain.DialogueTurn{{Interpretation: strPtr("x")}}}},
		{name: "feedback bad index", request: domain.FeedbackRequest{CardIndex: 7, Feedback: "yes", Turns: []domain.DialogueTurn{{Interpretation: strPtr("x")}}}},
		{name: "final without history", request: domain.FinalRequest{Question: "q"}},
		{name: "nil single pointer", request: (*domain.SingleRequest)(nil)},
		{name: "final pointer", request: &domain.FinalRequest{Question: "q"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Interpret(context.Background(), session, tt.request)
			assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		})
	}
	assert.Equal(t, 0, model.Calls())
}

func TestInterpretWrapsModelFailure(t *testing.T) {
	session := fullSession(t)
	before := session.Clone()
	cause := errors.New("dial tcp: connection refused")
	model := &MockModelClient{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", cause
		},
	}
	service := NewInterpretationService(model, time.Second)

	_, err := service.Interpret(context.Background(), session, domain.SingleRequest{CardIndex: 3})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInterpretationFailed)
	assert.ErrorIs(t, err, cause)

	var failed *domain.InterpretationFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, domain.InterpretationSingle, failed.Kind)
	assert.Equal(t, 1, model.Calls(), "failures are not retried")
	assert.Equal(t, before.DrawnCards, session.DrawnCards)
	assert.Empty(t, session.Interactions)
}

func TestInterpretTimeoutBecomesInterpretationFailed(t *testing.T) {
	session := fullSession(t)
	model := &MockModelClient{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	service := NewInterpretationService(model, 20*time.Millisecond)

	_, err := service.Interpret(context.Background(), session, domain.SingleRequest{CardIndex: 0})

	assert.ErrorIs(t, err, domain.ErrInterpretationFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInterpretSinglePromptMentionsOnlyEarlierCards(t *testing.T) {
	session := fullSession(t)
	model := &MockModelClient{}
	service := NewInterpretationService(model, time.Second)

	_, err := service.Interpret(context.Background(), session, domain.SingleRequest{CardIndex: 1, Question: "love"})
	require.NoError(t, err)

	p := model.LastPrompt()
	assert.Contains(t, p, session.DrawnCards[0].Card.Name)
	assert.Contains(t, p, session.DrawnCards[1].Card.Name)
	assert.Contains(t, p, domain.PositionLabel(1))
	for _, later := range session.DrawnCards[2:] {
		assert.NotContains(t, p, later.Card.Name)
	}
}
