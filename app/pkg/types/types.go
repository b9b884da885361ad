package types

import "context"

type UpdateKind string

const (
	UpdateText     UpdateKind = "text"
	UpdateCallback UpdateKind = "callback"
	UpdatePhoto    UpdateKind = "photo"
)

// Update is one inbound chat event: a text message, a pressed inline
// button or an uploaded photo.
type Update struct {
	Kind      UpdateKind
	ChatID    string
	UserID    string
	Username  string
	MessageID string
	Text      string // message text or photo caption

	CallbackID string // set for UpdateCallback
	Data       string // callback payload

	PhotoID string // file id of the largest photo variant

	ReplyToText string // text of the replied-to message, if any
	RequestID   string
}

// Button is one inline keyboard button.
type Button struct {
	Label string
	Data  string
}

// Keyboard describes the reply markup attached to an outbound message.
// At most one of Inline/Reply/ForceReply/Remove is meaningful.
type Keyboard struct {
	Inline     [][]Button
	Reply      [][]string
	ForceReply bool
	Remove     bool
}

func InlineKeyboard(rows ...[]Button) *Keyboard {
	return &Keyboard{Inline: rows}
}

func ForceReply() *Keyboard {
	return &Keyboard{ForceReply: true}
}

// Transport is the outbound side of a chat platform.
type Transport interface {
	SendText(ctx context.Context, chatID string, text string, kb *Keyboard) error
	EditMessage(ctx context.Context, chatID string, messageID string, text string, kb *Keyboard) error
	AnswerCallback(ctx context.Context, callbackID string, text string) error
	FileURL(ctx context.Context, fileID string) (string, error)
}

// Channel delivers inbound updates. Start blocks until ctx is canceled.
type Channel interface {
	Start(ctx context.Context, handler func(Update)) error
	ID() string
}
