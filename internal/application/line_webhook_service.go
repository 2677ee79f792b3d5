package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tarot-reading/internal/domain"
	"tarot-reading/internal/ports/input"
	"tarot-reading/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// LINE message limits
const (
	maxUserInputLength     = 1000
	maxLineMessageLength   = 5000
	maxMessagesPerResponse = 5
	sentenceLookback       = 200
)

const (
	friendlyErrorMessage = "Sorry, the cards are quiet right now. Please try again in a moment."
	helpMessage          = "Tarot reader commands:\n" +
		"/ask <question> - Set the topic of your reading\n" +
		"/draw - Draw the next card (up to 5)\n" +
		"/card <n> - Hear the reading for card n\n" +
		"/final [question] - Get the full reading once all 5 cards are drawn\n" +
		"/status - Show your cards\n" +
		"/reset - Start over\n" +
		"/help - Show this message\n\n" +
		"Anything else you write is shared with the reader as feedback on the last card."
	welcomeMessage = "Welcome to the Greek Cross tarot reader%s!\n\nType /ask followed by your question, then /draw to begin. Type /help to see every command."
)

// Compile-time check to ensure LineReaderService implements the input port
var _ input.LineWebhookService = (*LineReaderService)(nil)

// LineReaderService struct - Application service running readings over LINE chat.
// Each LINE user owns one reading session keyed by their user ID.
type LineReaderService struct {
	lineClient output.LineClient
	tarot      input.TarotService
}

// NewLineReaderService func - Creates new LINE reader service
func NewLineReaderService(lineClient output.LineClient, tarot input.TarotService) *LineReaderService {
	return &LineReaderService{
		lineClient: lineClient,
		tarot:      tarot,
	}
}

// HandleWebhook func - Use case: Handle incoming webhook events from LINE
func (s *LineReaderService) HandleWebhook(ctx context.Context, request domain.LineWebhookRequest) error {
	for _, event := range request.Events {
		logrus.Infof("Received LINE event: type=%s, source=%s, userID=%s",
			event.Type, event.Source.Type, event.Source.UserID)

		switch event.Type {
		case domain.LineEventTypeMessage:
			if err := s.handleMessageEvent(ctx, event); err != nil {
				logrus.Errorf("Failed to handle message event: %v", err)
				return err
			}

		case domain.LineEventTypeFollow:
			if err := s.handleFollowEvent(event); err != nil {
				logrus.Errorf("Failed to handle follow event: %v", err)
				return err
			}

		case domain.LineEventTypePostback:
			if err := s.handlePostbackEvent(ctx, event); err != nil {
				logrus.Errorf("Failed to handle postback event: %v", err)
				return err
			}

		case domain.LineEventTypeUnfollow:
			logrus.Infof("User unfollowed: userID=%s", event.Source.UserID)
			if event.Source.UserID != "" {
				if err := s.tarot.Reset(event.Source.UserID); err != nil {
					logrus.Warnf("Failed to clear reading for %s: %v", event.Source.UserID, err)
				}
			}

		default:
			logrus.Infof("Unhandled event type: %s", event.Type)
		}
	}

	return nil
}

// handleMessageEvent - routes one text message to a command or feedback
func (s *LineReaderService) handleMessageEvent(ctx context.Context, event domain.LineWebhookEvent) error {
	if event.Message == nil {
		return nil
	}

	if event.Message.Type != domain.LineMessageTypeText {
		logrus.Infof("Ignoring non-text message: type=%s", event.Message.Type)
		return nil
	}

	userID := event.Source.UserID
	text := strings.TrimSpace(event.Message.Text)
	if userID == "" || text == "" {
		return nil
	}

	var reply string
	if strings.HasPrefix(text, "/") {
		reply = s.handleCommand(ctx, text, userID)
	} else {
		reply = s.handleFeedback(ctx, userID, s.truncateUserInput(text))
	}

	return s.sendReply(event.ReplyToken, userID, reply)
}

// handlePostbackEvent - rich menu buttons send commands as postback data
func (s *LineReaderService) handlePostbackEvent(ctx context.Context, event domain.LineWebhookEvent) error {
	userID := event.Source.UserID
	data := strings.TrimSpace(event.PostbackData)
	if userID == "" || !strings.HasPrefix(data, "/") {
		logrus.Infof("Ignoring postback: %q", data)
		return nil
	}
	return s.sendReply(event.ReplyToken, userID, s.handleCommand(ctx, data, userID))
}

// handleCommand - command routing
func (s *LineReaderService) handleCommand(ctx context.Context, text, userID string) string {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return helpMessage
	}

	command := strings.ToLower(parts[0])
	arg := strings.TrimSpace(strings.TrimPrefix(text, parts[0]))

	switch command {
	case "/help":
		return helpMessage

	case "/ask":
		if arg == "" {
			return "Usage: /ask <question>"
		}
		if err := s.tarot.SetQuestion(userID, s.truncateUserInput(arg)); err != nil {
			return s.describeError(err)
		}
		return fmt.Sprintf("Your reading topic is now: %s\nType /draw to draw a card.", s.truncateUserInput(arg))

	case "/draw":
		return s.draw(userID)

	case "/card":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return "Usage: /card <n> where n is the card number, for example /card 1"
		}
		return s.interpret(ctx, userID, domain.SingleRequest{CardIndex: n - 1})

	case "/final":
		return s.interpret(ctx, userID, domain.FinalRequest{Question: s.truncateUserInput(arg)})

	case "/status":
		return s.status(userID)

	case "/reset":
		if err := s.tarot.Reset(userID); err != nil {
			return s.describeError(err)
		}
		return "Your reading has been reset. Type /draw to start again."

	default:
		return fmt.Sprintf("Unknown command: %s\nType /help for available commands", command)
	}
}

func (s *LineReaderService) draw(userID string) string {
	result, err := s.tarot.DrawCard(userID)
	if err != nil {
		return s.describeError(err)
	}

	index := result.CardCount - 1
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s (%s)\n%s", domain.PositionLabel(index), result.NewCard.Card.Name, result.NewCard.Orientation.Label(), result.NewCard.Meaning())
	if result.CardCount < domain.SpreadSize {
		fmt.Fprintf(&b, "\n\nType /card %d for its reading or /draw for the next card.", result.CardCount)
	} else {
		fmt.Fprintf(&b, "\n\nAll %d cards are drawn. Type /card %d for its reading, then /final for the full reading.", domain.SpreadSize, result.CardCount)
	}
	return b.String()
}

func (s *LineReaderService) status(userID string) string {
	session, err := s.tarot.GetSession(userID)
	if err != nil {
		return s.describeError(err)
	}
	if session.CardCount() == 0 {
		return "No cards drawn yet. Type /draw to begin."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", domain.QuestionOrDefault(session.Question))
	for i, c := range session.DrawnCards {
		fmt.Fprintf(&b, "\n%s: %s (%s) - %d turn(s)", domain.PositionLabel(i), c.Card.Name, c.Orientation.Label(), len(session.Interactions[i]))
	}
	return b.String()
}

// handleFeedback - free text is feedback on the last card interpreted
func (s *LineReaderService) handleFeedback(ctx context.Context, userID, text string) string {
	session, err := s.tarot.GetSession(userID)
	if err != nil {
		return s.describeError(err)
	}
	if session.Focus < 0 {
		return "Ask for a card's reading first with /card <n>, then tell me how it feels."
	}
	return s.interpret(ctx, userID, domain.FeedbackRequest{CardIndex: session.Focus, Feedback: text})
}

func (s *LineReaderService) interpret(ctx context.Context, userID string, request domain.InterpretationRequest) string {
	text, err := s.tarot.Converse(ctx, userID, request)
	if err != nil {
		return s.describeError(err)
	}
	return text
}

// describeError turns a service error into a chat reply without technical details
func (s *LineReaderService) describeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrSessionFull):
		return "All 5 cards are already drawn. Type /final for the full reading or /reset to start over."
	case errors.Is(err, domain.ErrInvalidIndex):
		return "That card has not been drawn yet. Type /status to see your cards."
	case errors.Is(err, domain.ErrInvalidRequest):
		return "The full reading needs all 5 cards and at least one card you have talked about. Type /status to check."
	case errors.Is(err, domain.ErrDeckExhausted):
		return "The deck has run out of cards. Type /reset to start over."
	default:
		logrus.Errorf("LINE reader request failed: %v", err)
		return friendlyErrorMessage
	}
}

// sendReply sends the first chunk as a reply and the rest as push messages
func (s *LineReaderService) sendReply(replyToken, userID, text string) error {
	if replyToken == "" || text == "" {
		return nil
	}

	chunks := s.splitAIResponse(text)
	replyReq := domain.LineReplyMessageRequest{
		ReplyToken: replyToken,
		Messages: []domain.LineOutgoingMessage{
			{Type: domain.LineMessageTypeText, Text: chunks[0]},
		},
	}
	if _, err := s.lineClient.ReplyMessage(replyReq); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}

	for i, chunk := range chunks[1:] {
		pushReq := domain.LinePushMessageRequest{
			To: userID,
			Messages: []domain.LineOutgoingMessage{
				{Type: domain.LineMessageTypeText, Text: chunk},
			},
		}
		if _, err := s.lineClient.PushMessage(pushReq); err != nil {
			logrus.Errorf("Failed to push message %d/%d to %s: %v", i+2, len(chunks), userID, err)
			return fmt.Errorf("failed to push message: %w", err)
		}
	}
	return nil
}

// truncateUserInput caps user text at maxUserInputLength runes
func (s *LineReaderService) truncateUserInput(text string) string {
	r := []rune(text)
	if len(r) <= maxUserInputLength {
		return text
	}
	logrus.Warnf("User input truncated from %d to %d characters", len(r), maxUserInputLength)
	return string(r[:maxUserInputLength])
}

// splitAIResponse splits text into at most maxMessagesPerResponse chunks of
// at most maxLineMessageLength runes, preferring sentence ends near the limit
func (s *LineReaderService) splitAIResponse(text string) []string {
	remaining := []rune(text)
	if len(remaining) <= maxLineMessageLength {
		return []string{text}
	}

	chunks := make([]string, 0, maxMessagesPerResponse)
	for len(remaining) > 0 && len(chunks) < maxMessagesPerResponse {
		if len(remaining) <= maxLineMessageLength {
			chunks = append(chunks, string(remaining))
			remaining = nil
			break
		}

		cut := maxLineMessageLength
		for i := maxLineMessageLength - 1; i >= maxLineMessageLength-sentenceLookback; i-- {
			if isSentenceEnd(remaining[i]) {
				cut = i + 1
				// keep the following space with this chunk
				if cut < maxLineMessageLength && remaining[cut] == ' ' {
					cut++
				}
				break
			}
		}

		chunks = append(chunks, string(remaining[:cut]))
		remaining = remaining[cut:]
	}

	if len(remaining) > 0 && len(chunks) == maxMessagesPerResponse {
		logrus.Warnf("Response truncated to %d messages", maxMessagesPerResponse)
	}
	return chunks
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？', '\n':
		return true
	}
	return false
}

// handleFollowEvent - greets a new friend
func (s *LineReaderService) handleFollowEvent(event domain.LineWebhookEvent) error {
	logrus.Infof("User followed: userID=%s", event.Source.UserID)

	name := ""
	if profile, err := s.lineClient.GetProfile(event.Source.UserID); err != nil {
		logrus.Warnf("Failed to get profile for %s: %v", event.Source.UserID, err)
	} else if profile != nil && profile.DisplayName != "" {
		name = ", " + profile.DisplayName
	}

	welcomeMsg := domain.LinePushMessageRequest{
		To: event.Source.UserID,
		Messages: []domain.LineOutgoingMessage{
			{Type: domain.LineMessageTypeText, Text: fmt.Sprintf(welcomeMessage, name)},
		},
	}

	if _, err := s.lineClient.PushMessage(welcomeMsg); err != nil {
		return fmt.Errorf("failed to send welcome message: %w", err)
	}

	return nil
}
