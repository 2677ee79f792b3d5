package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarot-reading/internal/domain"
)

func TestDrawCardUpToFive(t *testing.T) {
	service, _ := newTestTarotService(&MockModelClient{})

	for i := 1; i <= domain.SpreadSize; i++ {
		result, err := service.DrawCard("s1")
		require.NoError(t, err)
		assert.Equal(t, i, result.CardCount)
		assert.Len(t, result.DrawnCards, i)
		assert.Equal(t, result.NewCard, result.DrawnCards[i-1])
	}

	result, err := service.DrawCard("s1")
	assert.ErrorIs(t, err, domain.ErrSessionFull)
	require.NotNil(t, result)
	assert.Equal(t, domain.SpreadSize, result.CardCount)
	assert.Len(t, result.DrawnCards, domain.SpreadSize)
}

func TestDrawCardRejectsEmptySessionID(t *testing.T) {
	service, _ := newTestTarotService(&MockModelClient{})

	_, err := service.DrawCard("")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionsAreIndependent(t *testing.T) {
	service, _ := newTestTarotService(&MockModelClient{})

	_, err := service.DrawCard("a")
	require.NoError(t, err)
	_, err = service.DrawCard("a")
	require.NoError(t, err)
	_, err = service.DrawCard("b")
	require.NoError(t, err)

	a, err := service.GetSession("a")
	require.NoError(t, err)
	b, err := service.GetSession("b")
	require.NoError(t, err)
	assert.Equal(t, 2, a.CardCount())
	assert.Equal(t, 1, b.CardCount())
}

func TestConcurrentDrawsKeepSpreadInvariant(t *testing.T) {
	service, _ := newTestTarotService(&MockModelClient{})

	var wg sync.WaitGroup
	var mu sync.Mutex
	var full, ok int
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.DrawCard("shared")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrSessionFull):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, domain.SpreadSize, ok)
	assert.Equal(t, 20-domain.SpreadSize, full)

	session, err := service.GetSession("shared")
	require.NoError(t, err)
	seen := make(map[string]struct{})
	for _, c := range session.DrawnCards {
		seen[c.Card.Name] = struct{}{}
	}
	assert.Len(t, seen, domain.SpreadSize)
}

func TestResetThenDraw(t *testing.T) {
	service, _ := newTestTarotService(&MockModelClient{})

	for i := 0; i < 3; i++ {
		_, err := service.DrawCard("s1")
		require.NoError(t, err)
	}
	require.NoError(t, service.RecordTurn("s1", 0, domain.TurnFieldInterpretation, "hello"))

	require.NoError(t, service.Reset("s1"))
	result, err := service.DrawCard("s1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.CardCount)

	session, err := service.GetSession("s1")
	require.NoError(t, err)
	assert.Empty(t, session.Interactions)
}

func TestRecordTurnInvalidIndex(t *testing.T) {
	service, _ := newTestTarotService(&MockModelClient{})
	_, err := service.DrawCard("s1")
	require.NoError(t, err)

	err = service.RecordTurn("s1", 3, domain.TurnFieldFeedback, "hi")
	assert.ErrorIs(t, err, domain.ErrInvalidIndex)
}

func TestInterpretFillsHistoryFromSession(t *testing.T) {
	model := &MockModelClient{}
	service, _ := newTestTarotService(model)
	for i := 0; i < domain.SpreadSize; i++ {
		_, err := service.DrawCard("s1")
		require.NoError(t, err)
	}
	require.NoError(t, service.SetQuestion("s1", "Should I travel?"))
	require.NoError(t, service.RecordTurn("s1", 2, domain.TurnFieldInterpretation, "recorded interpretation"))

	out, err := service.Interpret(context.Background(), "s1", domain.FinalRequest{})
	require.NoError(t, err)
	assert.Equal(t, "OK", out)
	assert.Contains(t, model.LastPrompt(), "recorded interpretation")
	assert.Contains(t, model.LastPrompt(), "Should I travel?")

	session, err := service.GetSession("s1")
	require.NoError(t, err)
	assert.Len(t, session.Interactions[2], 1, "interpret must not record anything")
}

func TestInterpretSuppliedHistoryWins(t *testing.T) {
	model := &MockModelClient{}
	service, _ := newTestTarotService(model)
	_, err := service.DrawCard("s1")
	require.NoError(t, err)
	require.NoError(t, service.RecordTurn("s1", 0, domain.TurnFieldInterpretation, "from session"))

	_, err = service.Interpret(context.Background(), "s1", domain.FeedbackRequest{
		CardIndex: 0,
		Feedback:  "that fits",
		Turns:     []domain.DialogueTurn{{Interpretation: strPtr("from caller")}},
	})
	require.NoError(t, err)
	assert.Contains(t, model.LastPrompt(), "from caller")
	assert.NotContains(t, model.LastPrompt(), "from session")
}

func TestConverseRecordsExchange(t *testing.T) {
	n := 0
	model := &MockModelClient{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			n++
			return fmt.Sprintf("answer %d", n), nil
		},
	}
	service, _ := newTestTarotService(model)
	_, err := service.DrawCard("s1")
	require.NoError(t, err)

	out, err := service.Converse(context.Background(), "s1", domain.SingleRequest{CardIndex: 0})
	require.NoError(t, err)
	assert.Equal(t, "answer 1", out)

	out, err = service.Converse(context.Background(), "s1", domain.FeedbackRequest{CardIndex: 0, Feedback: "  it does  "})
	require.NoError(t, err)
	assert.Equal(t, "answer 2", out)
	assert.Contains(t, model.LastPrompt(), "answer 1")

	session, err := service.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, 0, session.Focus)
	turns := session.Interactions[0]
	require.Len(t, turns, 1)
	assert.Equal(t, "answer 1", domain.StringValue(turns[0].Interpretation))
	assert.Equal(t, "it does", domain.StringValue(turns[0].Feedback))
	assert.Equal(t, "answer 2", domain.StringValue(turns[0].Reaction))
}

func TestConverseRecordsNothingOnFailure(t *testing.T) {
	model := &MockModelClient{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("boom")
		},
	}
	service, _ := newTestTarotService(model)
	_, err := service.DrawCard("s1")
	require.NoError(t, err)

	_, err = service.Converse(context.Background(), "s1", domain.SingleRequest{CardIndex: 0})
	assert.ErrorIs(t, err, domain.ErrInterpretationFailed)

	session, err := service.GetSession("s1")
	require.NoError(t, err)
	assert.Empty(t, session.Interactions)
	assert.Equal(t, -1, session.Focus)
}

func TestStoreFailureIsReported(t *testing.T) {
	service, store := newTestTarotService(&MockModelClient{})
	store.GetSessionFunc = func(sessionID string) (*domain.ReadingSession, error) {
		return nil, errors.New("store down")
	}

	_, err := service.DrawCard("s1")
	assert.Error(t, err)
}

func TestConverseSkipsRecordingWhenCardReplacedMidCall(t *testing.T) {
	var service *TarotService
	model := &MockModelClient{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			require.NoError(t, service.Reset("s1"))
			_, err := service.DrawCard("s1")
			require.NoError(t, err)
			return "reading of the earlier card", nil
		},
	}
	service, _ = newTestTarotService(model)
	_, err := service.DrawCard("s1")
	require.NoError(t, err)

	out, err := service.Converse(context.Background(), "s1", domain.SingleRequest{CardIndex: 0})
	require.NoError(t, err)
	assert.Equal(t, "reading of the earlier card", out)

	session, err := service.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, 1, session.CardCount())
	assert.Empty(t, session.Interactions, "the new card must not inherit the old reading")
	assert.Equal(t, -1, session.Focus)
}

func TestConverseFeedbackSkipsRecordingAfterReset(t *testing.T) {
	var service *TarotService
	resetDuringCall := false
	model := &MockModelClient{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			if resetDuringCall {
				require.NoError(t, service.Reset("s1"))
				_, err := service.DrawCard("s1")
				require.NoError(t, err)
			}
			return "answer", nil
		},
	}
	service, _ = newTestTarotService(model)
	_, err := service.DrawCard("s1")
	require.NoError(t, err)
	_, err = service.Converse(context.Background(), "s1", domain.SingleRequest{CardIndex: 0})
	require.NoError(t, err)

	resetDuringCall = true
	_, err = service.Converse(context.Background(), "s1", domain.FeedbackRequest{CardIndex: 0, Feedback: "that fits"})
	require.NoError(t, err)

	session, err := service.GetSession("s1")
	require.NoError(t, err)
	assert.Empty(t, session.Interactions)
}

func TestInterpretDoesNotStoreUnknownSession(t *testing.T) {
	model := &MockModelClient{}
	service, store := newTestTarotService(model)

	_, err := service.Interpret(context.Background(), "fresh", domain.SingleRequest{CardIndex: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidIndex)
	assert.Equal(t, 0, model.Calls())
	assert.Equal(t, 0, store.UpdateCalls)

	stored, err := store.GetSession("fresh")
	require.NoError(t, err)
	assert.Nil(t, stored)
}
