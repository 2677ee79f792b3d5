package domain

// LineEventType is the kind of webhook event the reader reacts to
type LineEventType string

// Events the LINE reader handles. Anything else is dropped at the webhook.
const (
	LineEventTypeMessage  LineEventType = "message"
	LineEventTypeFollow   LineEventType = "follow"
	LineEventTypeUnfollow LineEventType = "unfollow"
	LineEventTypePostback LineEventType = "postback"
)

// LineMessageType represents the type of message
type LineMessageType string

const (
	LineMessageTypeText    LineMessageType = "text"
	LineMessageTypeImage   LineMessageType = "image"
	LineMessageTypeSticker LineMessageType = "sticker"
	// LineMessageTypeOther covers inbound content the reader cannot read
	LineMessageTypeOther LineMessageType = "other"
)

// LineSourceType represents the source type of the event
type LineSourceType string

const (
	LineSourceTypeUser  LineSourceType = "user"
	LineSourceTypeGroup LineSourceType = "group"
	LineSourceTypeRoom  LineSourceType = "room"
)

// LineWebhookEvent is one inbound event. Readings are keyed by Source.UserID,
// so a reading started in a group follows the user into a 1:1 chat.
type LineWebhookEvent struct {
	Type       LineEventType
	Source     LineSource
	ReplyToken string
	Message    *LineMessage
	// PostbackData carries the data of a rich menu or button action
	PostbackData string
}

// LineSource identifies who sent the event
type LineSource struct {
	Type   LineSourceType
	UserID string
}

// LineMessage is an inbound message. Text is empty unless Type is text.
type LineMessage struct {
	ID   string
	Type LineMessageType
	Text string
}

// LineProfile is the public profile of a LINE user
type LineProfile struct {
	UserID      string
	DisplayName string
}
