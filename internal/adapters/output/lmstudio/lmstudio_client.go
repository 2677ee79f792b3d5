package lmstudio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"tarot-reading/configs"
	"tarot-reading/internal/domain"
	"tarot-reading/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// Compile-time check to ensure LMStudioClientAdapter implements ModelClient interface
var _ output.ModelClient = (*LMStudioClientAdapter)(nil)

// LMStudioClientAdapter struct - Output adapter for LM Studio's OpenAI-compatible API
type LMStudioClientAdapter struct {
	httpClient   *http.Client
	baseURL      string
	configModel  string
	systemPrompt string
	timeout      time.Duration
	maxAttempts  int
	temperature  float64
	initialDelay time.Duration

	// Model caching
	cachedModel string
	modelMu     sync.RWMutex
}

// Retry configuration constants
const (
	defaultInitialDelay = 1 * time.Second
	maxDelay            = 30 * time.Second
	backoffMultiplier   = 2
)

// NewLMStudioClientAdapter func - Creates new LM Studio client adapter
func NewLMStudioClientAdapter(config configs.LMStudio) (*LMStudioClientAdapter, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:1234"
	}

	// Remove trailing slash if present
	baseURL = strings.TrimSuffix(baseURL, "/")

	timeout := time.Duration(config.Timeout) * time.Second
	if config.Timeout <= 0 {
		timeout = 60 * time.Second
	}

	maxAttempts := config.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	adapter := &LMStudioClientAdapter{
		httpClient:   httpClient,
		baseURL:      baseURL,
		configModel:  config.Model,
		systemPrompt: strings.TrimSpace(config.SystemPrompt),
		timeout:      timeout,
		maxAttempts:  maxAttempts,
		temperature:  config.Temperature,
		initialDelay: defaultInitialDelay,
	}

	logrus.Infof("LM Studio client adapter initialized with base URL: %s, timeout: %v, attempts: %d", baseURL, timeout, maxAttempts)

	return adapter, nil
}

// Generate sends the prompt as the user message, preceded by the configured system prompt,
// and returns the completion text
func (a *LMStudioClientAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	messages := make([]domain.ChatMessage, 0, 2)
	if a.systemPrompt != "" {
		messages = append(messages, domain.ChatMessage{Role: domain.ChatMessageRoleSystem, Content: a.systemPrompt})
	}
	messages = append(messages, domain.ChatMessage{Role: domain.ChatMessageRoleUser, Content: prompt})

	request := domain.ChatCompletionRequest{Messages: messages}
	if a.temperature > 0 {
		temperature := a.temperature
		request.Temperature = &temperature
	}

	resp, err := a.ChatCompletion(ctx, request)
	if err != nil {
		return "", err
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", fmt.Errorf("%w: empty completion from model %s", domain.ErrLMStudioUnavailable, resp.Model)
	}
	return content, nil
}

// retryWithBackoff executes an operation with exponential backoff retry logic
func (a *LMStudioClientAdapter) retryWithBackoff(ctx context.Context, operation func() (*http.Response, error)) (*http.Response, error) {
	var lastErr error
	delay := a.initialDelay

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		resp, err := operation()

		// Check if we should retry
		if err != nil {
			if ctx.Err() != nil || isTimeout(err) {
				return nil, fmt.Errorf("%w: %w", domain.ErrLMStudioTimeout, err)
			}
			if !isTransientError(err) {
				return nil, err
			}
			lastErr = err
			logrus.Warnf("LM Studio request attempt %d/%d failed with error: %v", attempt, a.maxAttempts, err)
		} else if resp != nil {
			// Check status code
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return resp, nil
			}

			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()

			// Don't retry on 4xx client errors
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return nil, fmt.Errorf("%w: request rejected with status %d - %s", domain.ErrLMStudioUnavailable, resp.StatusCode, string(body))
			}

			lastErr = fmt.Errorf("server error: status %d - %s", resp.StatusCode, string(body))
			logrus.Warnf("LM Studio request attempt %d/%d failed with status %d", attempt, a.maxAttempts, resp.StatusCode)
		}

		// Check context before sleeping
		if attempt < a.maxAttempts {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %w", domain.ErrLMStudioTimeout, ctx.Err())
			case <-time.After(delay):
			}

			// Calculate next delay with exponential backoff
			delay = delay * backoffMultiplier
			if delay > maxDelay {
				delay = maxDelay
			}
		}
	}

	return nil, fmt.Errorf("%w: %v after %d attempts", domain.ErrLMStudioUnavailable, lastErr, a.maxAttempts)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isTransientError reports whether a transport error is worth retrying.
// Status codes are judged in retryWithBackoff.
func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	// Connection refused and other dial failures
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	errMsg := strings.ToLower(err.Error())
	for _, pattern := range []string{"connection refused", "connection reset", "no such host", "network is unreachable", "eof"} {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return false
}

// ListModels queries the /v1/models endpoint to retrieve available models from LM Studio
func (a *LMStudioClientAdapter) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	url := fmt.Sprintf("%s/v1/models", a.baseURL)

	resp, err := a.retryWithBackoff(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		return a.httpClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer resp.Body.Close()

	var modelsResp modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&modelsResp); err != nil {
		return nil, fmt.Errorf("failed to parse models response: %w", err)
	}

	models := make([]domain.ModelInfo, len(modelsResp.Data))
	for i, m := range modelsResp.Data {
		models[i] = domain.ModelInfo{
			ID:      m.ID,
			Object:  m.Object,
			OwnedBy: m.OwnedBy,
		}
	}

	logrus.Infof("Listed %d models from LM Studio", len(models))

	return models, nil
}

// getModel returns the model to use for requests, with caching
func (a *LMStudioClientAdapter) getModel(ctx context.Context) (string, error) {
	// Fast path: check if model is already cached
	a.modelMu.RLock()
	if a.cachedModel != "" {
		model := a.cachedModel
		a.modelMu.RUnlock()
		return model, nil
	}
	a.modelMu.RUnlock()

	a.modelMu.Lock()
	defer a.modelMu.Unlock()

	// Double-check after acquiring write lock
	if a.cachedModel != "" {
		return a.cachedModel, nil
	}

	if a.configModel != "" {
		a.cachedModel = a.configModel
		logrus.Infof("Using configured model: %s", a.cachedModel)
		return a.cachedModel, nil
	}

	// Query available models and select the first one
	models, err := a.ListModels(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get models for selection: %w", err)
	}

	if len(models) == 0 {
		return "", fmt.Errorf("%w: no models available in LM Studio", domain.ErrLMStudioUnavailable)
	}

	a.cachedModel = models[0].ID
	logrus.Infof("Selected first available model: %s", a.cachedModel)

	return a.cachedModel, nil
}

// ChatCompletion sends a non-streaming chat completion request to LM Studio
func (a *LMStudioClientAdapter) ChatCompletion(ctx context.Context, request domain.ChatCompletionRequest) (*domain.ChatCompletionResponse, error) {
	model, err := a.getModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get model: %w", err)
	}

	reqBody := chatCompletionAPIRequest{
		Model:       model,
		Messages:    make([]chatMessageAPI, len(request.Messages)),
		Stream:      false,
		Temperature: request.Temperature,
	}

	for i, msg := range request.Messages {
		reqBody.Messages[i] = chatMessageAPI{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/chat/completions", a.baseURL)

	resp, err := a.retryWithBackoff(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return a.httpClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send chat completion request: %w", err)
	}
	defer resp.Body.Close()

	var apiResp chatCompletionAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse chat completion response: %w", err)
	}

	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", domain.ErrLMStudioUnavailable)
	}

	response := &domain.ChatCompletionResponse{
		Content:          apiResp.Choices[0].Message.Content,
		Model:            apiResp.Model,
		PromptTokens:     apiResp.Usage.PromptTokens,
		CompletionTokens: apiResp.Usage.CompletionTokens,
		TotalTokens:      apiResp.Usage.TotalTokens,
	}

	logrus.Infof("Chat completion successful, model: %s, tokens: %d", response.Model, response.TotalTokens)

	return response, nil
}

// API request/response structures for LM Studio's OpenAI-compatible API

type chatMessageAPI struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionAPIRequest struct {
	Model       string           `json:"model"`
	Messages    []chatMessageAPI `json:"messages"`
	Stream      bool             `json:"stream"`
	Temperature *float64         `json:"temperature,omitempty"`
}

type chatChoiceAPI struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatCompletionAPIResponse struct {
	ID      string          `json:"id"`
	Object  string          `json:"object"`
	Created int64           `json:"created"`
	Model   string          `json:"model"`
	Choices []chatChoiceAPI `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type modelAPI struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	OwnedBy string `json:"owned_by"`
}

type modelsResponse struct {
	Object string     `json:"object"`
	Data   []modelAPI `json:"data"`
}
