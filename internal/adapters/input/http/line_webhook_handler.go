package http

import (
	"bytes"
	"net/http"

	"tarot-reading/internal/domain"
	"tarot-reading/internal/ports/input"

	"github.com/gofiber/fiber/v2"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/sirupsen/logrus"
)

// LineWebhookHandler struct - Primary/Driving adapter for the LINE reader.
// Events are verified with the channel secret before they reach the reader.
type LineWebhookHandler struct {
	service       input.LineWebhookService
	channelSecret string
}

// NewLineWebhookHandler func
func NewLineWebhookHandler(service input.LineWebhookService, channelSecret string) *LineWebhookHandler {
	return &LineWebhookHandler{
		service:       service,
		channelSecret: channelSecret,
	}
}

// HandleWebhook func - Handles incoming LINE webhook requests
// @Summary LINE Webhook
// @Description Handles webhook events from LINE Messaging API
// @Tags LINE
// @Accept application/json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /webhook/line [post]
func (h *LineWebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	// The SDK verifies signatures against a net/http request
	httpReq, err := http.NewRequestWithContext(c.UserContext(), http.MethodPost, "/webhook/line", bytes.NewReader(c.Body()))
	if err != nil {
		logrus.Errorf("Failed to create http request: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ResponseBody{Status: InternalServerError})
	}
	c.Request().Header.VisitAll(func(key, value []byte) {
		httpReq.Header.Set(string(key), string(value))
	})

	cb, err := webhook.ParseRequest(h.channelSecret, httpReq)
	if err != nil {
		logrus.Warnf("Rejected LINE webhook: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
	}

	events := make([]domain.LineWebhookEvent, 0, len(cb.Events))
	for _, event := range cb.Events {
		if converted, ok := toLineEvent(event); ok {
			events = append(events, converted)
		}
	}

	if err := h.service.HandleWebhook(c.UserContext(), domain.LineWebhookRequest{Events: events}); err != nil {
		logrus.Errorf("Failed to handle webhook: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ResponseBody{Status: InternalServerError})
	}

	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success})
}

// toLineEvent keeps the events the reader acts on. Joins, leaves, beacons and the rest are dropped.
func toLineEvent(event webhook.EventInterface) (domain.LineWebhookEvent, bool) {
	switch e := event.(type) {
	case webhook.MessageEvent:
		return domain.LineWebhookEvent{
			Type:       domain.LineEventTypeMessage,
			ReplyToken: e.ReplyToken,
			Source:     toLineSource(e.Source),
			Message:    toLineMessage(e.Message),
		}, true
	case webhook.PostbackEvent:
		converted := domain.LineWebhookEvent{
			Type:       domain.LineEventTypePostback,
			ReplyToken: e.ReplyToken,
			Source:     toLineSource(e.Source),
		}
		if e.Postback != nil {
			converted.PostbackData = e.Postback.Data
		}
		return converted, true
	case webhook.FollowEvent:
		return domain.LineWebhookEvent{
			Type:       domain.LineEventTypeFollow,
			ReplyToken: e.ReplyToken,
			Source:     toLineSource(e.Source),
		}, true
	case webhook.UnfollowEvent:
		return domain.LineWebhookEvent{
			Type:   domain.LineEventTypeUnfollow,
			Source: toLineSource(e.Source),
		}, true
	default:
		logrus.Debugf("Dropping LINE event %T", event)
		return domain.LineWebhookEvent{}, false
	}
}

func toLineMessage(content webhook.MessageContentInterface) *domain.LineMessage {
	switch m := content.(type) {
	case webhook.TextMessageContent:
		return &domain.LineMessage{ID: m.Id, Type: domain.LineMessageTypeText, Text: m.Text}
	case webhook.StickerMessageContent:
		return &domain.LineMessage{ID: m.Id, Type: domain.LineMessageTypeSticker}
	case webhook.ImageMessageContent:
		return &domain.LineMessage{ID: m.Id, Type: domain.LineMessageTypeImage}
	default:
		return &domain.LineMessage{Type: domain.LineMessageTypeOther}
	}
}

func toLineSource(source webhook.SourceInterface) domain.LineSource {
	switch s := source.(type) {
	case webhook.UserSource:
		return domain.LineSource{Type: domain.LineSourceTypeUser, UserID: s.UserId}
	case webhook.GroupSource:
		return domain.LineSource{Type: domain.LineSourceTypeGroup, UserID: s.UserId}
	case webhook.RoomSource:
		return domain.LineSource{Type: domain.LineSourceTypeRoom, UserID: s.UserId}
	default:
		return domain.LineSource{}
	}
}
