package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tarot-reading/internal/domain"
)

// Default session configuration values for tests
const defaultTestTimeout = 30 * time.Minute

// Mock implementations for testing

// MockLineClient implements output.LineClient for testing
type MockLineClient struct {
	ReplyMessageFunc func(request domain.LineReplyMessageRequest) (*domain.LineMessageResponse, error)
	PushMessageFunc  func(request domain.LinePushMessageRequest) (*domain.LineMessageResponse, error)
	GetProfileFunc   func(userID string) (*domain.LineProfile, error)

	// Captured values for assertions
	LastReplyRequest *domain.LineReplyMessageRequest
	ReplyRequests    []domain.LineReplyMessageRequest
	PushRequests     []domain.LinePushMessageRequest
}

func (m *MockLineClient) ReplyMessage(request domain.LineReplyMessageRequest) (*domain.LineMessageResponse, error) {
	m.LastReplyRequest = &request
	m.ReplyRequests = append(m.ReplyRequests, request)
	if m.ReplyMessageFunc != nil {
		return m.ReplyMessageFunc(request)
	}
	return &domain.LineMessageResponse{Status: "ok"}, nil
}

func (m *MockLineClient) PushMessage(request domain.LinePushMessageRequest) (*domain.LineMessageResponse, error) {
	m.PushRequests = append(m.PushRequests, request)
	if m.PushMessageFunc != nil {
		return m.PushMessageFunc(request)
	}
	return &domain.LineMessageResponse{Status: "ok"}, nil
}

func (m *MockLineClient) GetProfile(userID string) (*domain.LineProfile, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(userID)
	}
	return nil, fmt.Errorf("no profile for %s", userID)
}

// LastReplyText returns the first text of the last reply
func (m *MockLineClient) LastReplyText() string {
	if m.LastReplyRequest == nil || len(m.LastReplyRequest.Messages) == 0 {
		return ""
	}
	return m.LastReplyRequest.Messages[0].Text
}

// MockModelClient implements output.ModelClient for testing
type MockModelClient struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	mu      sync.Mutex
	Prompts []string
}

func (m *MockModelClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "OK", nil
}

// Calls returns how many prompts were sent
func (m *MockModelClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

// LastPrompt returns the most recent prompt
func (m *MockModelClient) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Prompts) == 0 {
		return ""
	}
	return m.Prompts[len(m.Prompts)-1]
}

// MockSessionStore implements output.SessionStore with a plain map
type MockSessionStore struct {
	GetSessionFunc    func(sessionID string) (*domain.ReadingSession, error)
	UpdateSessionFunc func(session *domain.ReadingSession) error

	mu          sync.Mutex
	sessions    map[string]*domain.ReadingSession
	UpdateCalls int
}

func (m *MockSessionStore) GetSession(sessionID string) (*domain.ReadingSession, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(sessionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[sessionID], nil
}

func (m *MockSessionStore) UpdateSession(session *domain.ReadingSession) error {
	m.mu.Lock()
	m.UpdateCalls++
	if m.sessions == nil {
		m.sessions = make(map[string]*domain.ReadingSession)
	}
	m.sessions[session.ID] = session
	m.mu.Unlock()
	if m.UpdateSessionFunc != nil {
		return m.UpdateSessionFunc(session)
	}
	return nil
}

func (m *MockSessionStore) DeleteSession(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func (m *MockSessionStore) GetTimeout() time.Duration {
	return defaultTestTimeout
}

// sequenceRNG always returns the same value modulo n
type sequenceRNG struct {
	value int
}

func (r *sequenceRNG) Intn(n int) int {
	return r.value % n
}

func newTestDeck(n int) *domain.Deck {
	cards := make([]domain.Card, n)
	for i := range cards {
		cards[i] = domain.Card{
			Name:            fmt.Sprintf("Card %02d", i),
			MeaningUpright:  fmt.Sprintf("upright %02d", i),
			MeaningReversed: fmt.Sprintf("reversed %02d", i),
		}
	}
	deck, err := domain.NewDeck(cards)
	if err != nil {
		panic(err)
	}
	return deck
}

func newTestTarotService(model *MockModelClient) (*TarotService, *MockSessionStore) {
	store := &MockSessionStore{}
	interp := NewInterpretationService(model, time.Second)
	return NewTarotService(newTestDeck(78), store, interp, nil), store
}

func strPtr(s string) *string { return &s }
