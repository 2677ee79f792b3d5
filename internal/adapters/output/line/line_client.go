package line

import (
	"fmt"

	"tarot-reading/internal/domain"
	"tarot-reading/internal/ports/output"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/sirupsen/logrus"
)

// Compile-time check to ensure LineClientAdapter implements LineClient interface
var _ output.LineClient = (*LineClientAdapter)(nil)

// LineClientAdapter struct - Output adapter for LINE messaging platform
type LineClientAdapter struct {
	client *messaging_api.MessagingApiAPI
}

// NewLineClientAdapter func - Creates new LINE client adapter
func NewLineClientAdapter(channelToken string) (*LineClientAdapter, error) {
	client, err := messaging_api.NewMessagingApiAPI(channelToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create LINE messaging API client: %w", err)
	}

	return &LineClientAdapter{
		client: client,
	}, nil
}

// ReplyMessage - Sends reply messages to LINE user via reply token
func (a *LineClientAdapter) ReplyMessage(request domain.LineReplyMessageRequest) (*domain.LineMessageResponse, error) {
	messages, err := a.convertMessages(request.Messages)
	if err != nil {
		return nil, err
	}

	// Send reply via LINE SDK
	req := &messaging_api.ReplyMessageRequest{
		ReplyToken: request.ReplyToken,
		Messages:   messages,
	}

	if _, err := a.client.ReplyMessage(req); err != nil {
		return nil, fmt.Errorf("failed to send reply message: %w", err)
	}

	logrus.Infof("Sent %d reply message(s)", len(messages))

	return &domain.LineMessageResponse{
		Status:  "success",
		Message: "Reply message sent successfully",
	}, nil
}

// PushMessage - Sends push messages to LINE user directly.
// Used for the continuation of readings longer than one reply.
func (a *LineClientAdapter) PushMessage(request domain.LinePushMessageRequest) (*domain.LineMessageResponse, error) {
	messages, err := a.convertMessages(request.Messages)
	if err != nil {
		return nil, err
	}

	// Send push message via LINE SDK
	req := &messaging_api.PushMessageRequest{
		To:       request.To,
		Messages: messages,
	}

	if _, err := a.client.PushMessage(req, ""); err != nil {
		return nil, fmt.Errorf("failed to send push message: %w", err)
	}

	logrus.Infof("Pushed %d message(s) to: %s", len(messages), request.To)

	return &domain.LineMessageResponse{
		Status:  "success",
		Message: "Push message sent successfully",
	}, nil
}

// GetProfile - Gets the display name used in greetings
func (a *LineClientAdapter) GetProfile(userID string) (*domain.LineProfile, error) {
	profile, err := a.client.GetProfile(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	return &domain.LineProfile{
		UserID:      profile.UserId,
		DisplayName: profile.DisplayName,
	}, nil
}

func (a *LineClientAdapter) convertMessages(in []domain.LineOutgoingMessage) ([]messaging_api.MessageInterface, error) {
	messages := make([]messaging_api.MessageInterface, 0, len(in))
	for _, msg := range in {
		lineMsg, err := a.convertToLineMessage(msg)
		if err != nil {
			logrus.Errorf("Failed to convert message: %v", err)
			continue
		}
		messages = append(messages, lineMsg)
	}

	if len(messages) == 0 {
		return nil, fmt.Errorf("no valid messages to send")
	}
	return messages, nil
}

// convertToLineMessage - Helper function to convert domain message to LINE SDK message
func (a *LineClientAdapter) convertToLineMessage(msg domain.LineOutgoingMessage) (messaging_api.MessageInterface, error) {
	switch msg.Type {
	case domain.LineMessageTypeText:
		return &messaging_api.TextMessage{
			Text: msg.Text,
		}, nil

	case domain.LineMessageTypeSticker:
		return &messaging_api.StickerMessage{
			PackageId: msg.PackageID,
			StickerId: msg.StickerID,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported message type: %s", msg.Type)
	}
}
