package lmstudio

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"tarot-reading/configs"
	"tarot-reading/internal/domain"
)

func completionHandler(t *testing.T, content string, captured *chatCompletionAPIRequest) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("expected path /v1/chat/completions, got: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("expected POST method, got: %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected Content-Type application/json, got: %s", r.Header.Get("Content-Type"))
		}

		var reqBody chatCompletionAPIRequest
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if captured != nil {
			*captured = reqBody
		}

		choice := chatChoiceAPI{Index: 0, FinishReason: "stop"}
		choice.Message.Role = "assistant"
		choice.Message.Content = content
		response := chatCompletionAPIResponse{
			ID:      "chatcmpl-123",
			Object:  "chat.completion",
			Created: time.Now().Unix(),
			Model:   reqBody.Model,
			Choices: []chatChoiceAPI{choice},
		}
		response.Usage.TotalTokens = 42

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}

// TestNewLMStudioClientAdapterWithConfig tests adapter construction with valid config
func TestNewLMStudioClientAdapterWithConfig(t *testing.T) {
	config := configs.LMStudio{
		BaseURL:      "http://localhost:5678/",
		Model:        "test-model",
		Timeout:      30,
		SystemPrompt: "  be kind  ",
		MaxAttempts:  3,
	}

	adapter, err := NewLMStudioClientAdapter(config)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if adapter.baseURL != "http://localhost:5678" {
		t.Errorf("expected baseURL to be http://localhost:5678, got: %s", adapter.baseURL)
	}
	if adapter.configModel != "test-model" {
		t.Errorf("expected configModel to be test-model, got: %s", adapter.configModel)
	}
	if adapter.timeout != 30*time.Second {
		t.Errorf("expected timeout to be 30s, got: %v", adapter.timeout)
	}
	if adapter.systemPrompt != "be kind" {
		t.Errorf("expected trimmed system prompt, got: %q", adapter.systemPrompt)
	}
	if adapter.maxAttempts != 3 {
		t.Errorf("expected 3 attempts, got: %d", adapter.maxAttempts)
	}
}

// TestNewLMStudioClientAdapterWithDefaultValues tests adapter construction with default values
func TestNewLMStudioClientAdapterWithDefaultValues(t *testing.T) {
	adapter, err := NewLMStudioClientAdapter(configs.LMStudio{})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if adapter.baseURL != "http://localhost:1234" {
		t.Errorf("expected default baseURL to be http://localhost:1234, got: %s", adapter.baseURL)
	}
	if adapter.timeout != 60*time.Second {
		t.Errorf("expected default timeout to be 60s, got: %v", adapter.timeout)
	}
	if adapter.maxAttempts != 1 {
		t.Errorf("expected a single attempt by default, got: %d", adapter.maxAttempts)
	}
}

// TestGenerateSendsSystemAndUserMessages tests the prompt framing sent to the model
func TestGenerateSendsSystemAndUserMessages(t *testing.T) {
	var captured chatCompletionAPIRequest
	server := httptest.NewServer(completionHandler(t, "  The Tower asks you to let go.  ", &captured))
	defer server.Close()

	adapter, err := NewLMStudioClientAdapter(configs.LMStudio{
		BaseURL:      server.URL,
		Model:        "test-model",
		SystemPrompt: "You are a tarot reader.",
	})
	if err != nil {
		t.Fatalf("failed to create adapter: %v", err)
	}

	out, err := adapter.Generate(context.Background(), "Interpret The Tower")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if out != "The Tower asks you to let go." {
		t.Errorf("expected trimmed completion, got: %q", out)
	}
	if captured.Stream {
		t.Error("expected stream=false")
	}
	if captured.Model != "test-model" {
		t.Errorf("expected model test-model, got: %s", captured.Model)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("expected 2 messages, got: %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || captured.Messages[0].Content != "You are a tarot reader." {
		t.Errorf("unexpected system message: %+v", captured.Messages[0])
	}
	if captured.Messages[1].Role != "user" || captured.Messages[1].Content != "Interpret The Tower" {
		t.Errorf("unexpected user message: %+v", captured.Messages[1])
	}
}

// TestGenerateWithoutSystemPrompt tests that no empty system message is sent
func TestGenerateWithoutSystemPrompt(t *testing.T) {
	var captured chatCompletionAPIRequest
	server := httptest.NewServer(completionHandler(t, "ok", &captured))
	defer server.Close()

	adapter, _ := NewLMStudioClientAdapter(configs.LMStudio{BaseURL: server.URL, Model: "m"})

	if _, err := adapter.Generate(context.Background(), "hello"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Role != "user" {
		t.Errorf("expected a single user message, got: %+v", captured.Messages)
	}
	if captured.Temperature != nil {
		t.Errorf("expected no temperature by default, got: %v", *captured.Temperature)
	}
}

// TestGenerateSendsConfiguredTemperature tests that lmstudio.temperature reaches the request
func TestGenerateSendsConfiguredTemperature(t *testing.T) {
	var captured chatCompletionAPIRequest
	server := httptest.NewServer(completionHandler(t, "ok", &captured))
	defer server.Close()

	adapter, _ := NewLMStudioClientAdapter(configs.LMStudio{BaseURL: server.URL, Model: "m", Temperature: 0.4})

	if _, err := adapter.Generate(context.Background(), "hello"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if captured.Temperature == nil || *captured.Temperature != 0.4 {
		t.Errorf("expected temperature 0.4, got: %v", captured.Temperature)
	}
}

// TestIsTransientError tests which transport errors are retried
func TestIsTransientError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "dial failure", err: &net.OpError{Op: "dial", Err: errors.New("refused")}, want: true},
		{name: "dns failure", err: &net.DNSError{Err: "no such host", Name: "lmstudio"}, want: true},
		{name: "reset by peer text", err: errors.New("read: connection reset by peer"), want: true},
		{name: "unexpected eof", err: io.ErrUnexpectedEOF, want: true},
		{name: "other", err: errors.New("malformed response"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTransientError(tt.err); got != tt.want {
				t.Errorf("isTransientError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// TestGenerateEmptyCompletionIsError tests that a blank answer is not returned as an interpretation
func TestGenerateEmptyCompletionIsError(t *testing.T) {
	server := httptest.NewServer(completionHandler(t, "   ", nil))
	defer server.Close()

	adapter, _ := NewLMStudioClientAdapter(configs.LMStudio{BaseURL: server.URL, Model: "m"})

	_, err := adapter.Generate(context.Background(), "hello")
	if !errors.Is(err, domain.ErrLMStudioUnavailable) {
		t.Errorf("expected ErrLMStudioUnavailable, got: %v", err)
	}
}

// TestGenerateSelectsFirstModelWhenUnconfigured tests model auto-selection through /v1/models
func TestGenerateSelectsFirstModelWhenUnconfigured(t *testing.T) {
	var captured chatCompletionAPIRequest
	var modelCalls int32
	completion := completionHandler(t, "ok", &captured)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/models" {
			atomic.AddInt32(&modelCalls, 1)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(modelsResponse{
				Object: "list",
				Data:   []modelAPI{{ID: "llama-3.2-1b-instruct", Object: "model", OwnedBy: "lmstudio"}},
			})
			return
		}
		completion(w, r)
	}))
	defer server.Close()

	adapter, _ := NewLMStudioClientAdapter(configs.LMStudio{BaseURL: server.URL})

	for i := 0; i < 2; i++ {
		if _, err := adapter.Generate(context.Background(), "hello"); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
	}

	if captured.Model != "llama-3.2-1b-instruct" {
		t.Errorf("expected auto-selected model, got: %s", captured.Model)
	}
	if atomic.LoadInt32(&modelCalls) != 1 {
		t.Errorf("expected model list to be fetched once, got: %d", modelCalls)
	}
}

// TestListModelsResponseParsing tests ListModels response parsing
func TestListModelsResponseParsing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			t.Errorf("expected path /v1/models, got: %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("expected GET method, got: %s", r.Method)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(modelsResponse{
			Object: "list",
			Data: []modelAPI{
				{ID: "llama-3.2-1b-instruct", Object: "model", OwnedBy: "lmstudio"},
				{ID: "qwen2.5-7b-instruct", Object: "model", OwnedBy: "lmstudio"},
			},
		})
	}))
	defer server.Close()

	adapter, _ := NewLMStudioClientAdapter(configs.LMStudio{BaseURL: server.URL})

	models, err := adapter.ListModels(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(models) != 2 {
		t.Fatalf("expected 2 models, got: %d", len(models))
	}
	if models[0].ID != "llama-3.2-1b-instruct" {
		t.Errorf("expected first model ID 'llama-3.2-1b-instruct', got: %s", models[0].ID)
	}
	if models[1].OwnedBy != "lmstudio" {
		t.Errorf("expected OwnedBy 'lmstudio', got: %s", models[1].OwnedBy)
	}
}

// TestNoRetryByDefault tests that a single 5xx fails immediately with the default budget
func TestNoRetryByDefault(t *testing.T) {
	var requestCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	adapter, _ := NewLMStudioClientAdapter(configs.LMStudio{BaseURL: server.URL, Model: "m"})

	_, err := adapter.Generate(context.Background(), "hello")

	if !errors.Is(err, domain.ErrLMStudioUnavailable) {
		t.Errorf("expected ErrLMStudioUnavailable, got: %v", err)
	}
	if atomic.LoadInt32(&requestCount) != 1 {
		t.Errorf("expected exactly 1 request, got: %d", requestCount)
	}
}

// TestRetryLogicFor5xxErrors tests retry behavior for 5xx server errors when attempts are configured
func TestRetryLogicFor5xxErrors(t *testing.T) {
	var requestCount int32
	completion := completionHandler(t, "third time lucky", nil)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requestCount, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Service temporarily unavailable"))
			return
		}
		completion(w, r)
	}))
	defer server.Close()

	adapter, _ := NewLMStudioClientAdapter(configs.LMStudio{BaseURL: server.URL, Model: "m", MaxAttempts: 3})
	adapter.initialDelay = time.Millisecond

	out, err := adapter.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("expected no error after retry, got: %v", err)
	}

	if out != "third time lucky" {
		t.Errorf("unexpected completion: %q", out)
	}
	if atomic.LoadInt32(&requestCount) != 3 {
		t.Errorf("expected 3 requests (2 failures + 1 success), got: %d", requestCount)
	}
}

// TestNoRetryFor4xxErrors tests that 4xx errors are not retried
func TestNoRetryFor4xxErrors(t *testing.T) {
	var requestCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Invalid request"}`))
	}))
	defer server.Close()

	adapter, _ := NewLMStudioClientAdapter(configs.LMStudio{BaseURL: server.URL, Model: "m", MaxAttempts: 5})
	adapter.initialDelay = time.Millisecond

	_, err := adapter.Generate(context.Background(), "hello")

	if err == nil {
		t.Fatal("expected error for 4xx response, got nil")
	}
	if atomic.LoadInt32(&requestCount) != 1 {
		t.Errorf("expected exactly 1 request (no retry for 4xx), got: %d", requestCount)
	}
}

// TestContextDeadlineMapsToTimeout tests that a caller deadline surfaces as ErrLMStudioTimeout
func TestContextDeadlineMapsToTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	adapter, _ := NewLMStudioClientAdapter(configs.LMStudio{BaseURL: server.URL, Model: "m"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := adapter.Generate(ctx, "hello")

	if !errors.Is(err, domain.ErrLMStudioTimeout) {
		t.Errorf("expected ErrLMStudioTimeout, got: %v", err)
	}
}
