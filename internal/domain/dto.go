package domain

// DTOs (Data Transfer Objects) - Domain layer request/response structures

// ChatMessageRole is the author of a chat message
type ChatMessageRole string

const (
	// ChatMessageRoleSystem - system instructions
	ChatMessageRoleSystem ChatMessageRole = "system"
	// ChatMessageRoleUser - user message
	ChatMessageRoleUser ChatMessageRole = "user"
	// ChatMessageRoleAssistant - model answer
	ChatMessageRoleAssistant ChatMessageRole = "assistant"
)

type (
	// ChatMessage struct - one message of a chat completion
	ChatMessage struct {
		Role    ChatMessageRole
		Content string
	}

	// ChatCompletionRequest struct - Domain chat completion request DTO
	ChatCompletionRequest struct {
		Messages    []ChatMessage
		Temperature *float64
	}

	// ChatCompletionResponse struct - Domain chat completion response DTO
	ChatCompletionResponse struct {
		Content          string
		Model            string
		PromptTokens     int
		CompletionTokens int
		TotalTokens      int
	}

	// ModelInfo struct - a model served by an OpenAI-compatible backend
	ModelInfo struct {
		ID      string
		Object  string
		OwnedBy string
	}

	// DrawResult struct - outcome of one draw
	DrawResult struct {
		NewCard    DrawnCard
		DrawnCards []DrawnCard
		CardCount  int
	}

	// LineWebhookRequest struct - Domain LINE webhook request DTO
	LineWebhookRequest struct {
		Events []LineWebhookEvent
	}

	// LineReplyMessageRequest struct - Domain LINE reply message request DTO
	LineReplyMessageRequest struct {
		ReplyToken string
		Messages   []LineOutgoingMessage
	}

	// LinePushMessageRequest struct - Domain LINE push message request DTO
	LinePushMessageRequest struct {
		To       string
		Messages []LineOutgoingMessage
	}

	// LineOutgoingMessage struct - Domain LINE outgoing message DTO
	LineOutgoingMessage struct {
		Type      LineMessageType
		Text      string
		PackageID string // For sticker
		StickerID string // For sticker
	}

	// LineMessageResponse struct - Domain LINE API response DTO
	LineMessageResponse struct {
		Status  string
		Message string
	}
)
