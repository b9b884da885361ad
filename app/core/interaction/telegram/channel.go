// Package telegram is the long-poll chat channel. It converts raw API
// updates into the transport-neutral update type and exposes the send
// side of the same API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"taskdesk/app/pkg/logger"
	"taskdesk/app/pkg/types"
)

const defaultAPIRoot = "https://api.telegram.org"

type Config struct {
	BotToken       string
	PollInterval   time.Duration
	TimeoutSeconds int
	APIRoot        string
}

type Channel struct {
	cfg Config
	id  string

	offset int64

	mu      sync.RWMutex
	handler func(types.Update)
}

func NewChannel(cfg Config) *Channel {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 20
	}
	if strings.TrimSpace(cfg.APIRoot) == "" {
		cfg.APIRoot = defaultAPIRoot
	}
	return &Channel{cfg: cfg, id: "telegram"}
}

func (c *Channel) ID() string {
	return c.id
}

func (c *Channel) Start(ctx context.Context, handler func(types.Update)) error {
	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()

	if strings.TrimSpace(c.cfg.BotToken) == "" {
		return fmt.Errorf("telegram bot token is required")
	}

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := c.pollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("[Telegram] poll error: %v", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (c *Channel) pollOnce(ctx context.Context) error {
	payload := map[string]interface{}{
		"timeout":         c.cfg.TimeoutSeconds,
		"allowed_updates": []string{"message", "callback_query"},
	}
	if offset := atomic.LoadInt64(&c.offset); offset > 0 {
		payload["offset"] = offset
	}
	body, err := c.call(ctx, "getUpdates", payload)
	if err != nil {
		return err
	}

	c.mu.RLock()
	handler := c.handler
	c.mu.RUnlock()
	if handler == nil {
		return nil
	}

	for _, raw := range gjson.GetBytes(body, "result").Array() {
		if id := raw.Get("update_id").Int(); id >= atomic.LoadInt64(&c.offset) {
			atomic.StoreInt64(&c.offset, id+1)
		}
		upd, ok := c.toUpdate(raw)
		if !ok {
			continue
		}
		handler(upd)
	}
	return nil
}

// toUpdate maps one raw update to the neutral form. Callback queries
// and photo messages get their own kinds; anything without text, data
// or a photo is dropped.
func (c *Channel) toUpdate(raw gjson.Result) (types.Update, bool) {
	if cb := raw.Get("callback_query"); cb.Exists() {
		return types.Update{
			Kind:       types.UpdateCallback,
			ChatID:     cb.Get("message.chat.id").String(),
			UserID:     cb.Get("from.id").String(),
			Username:   cb.Get("from.username").String(),
			MessageID:  cb.Get("message.message_id").String(),
			CallbackID: cb.Get("id").String(),
			Data:       cb.Get("data").String(),
			RequestID:  uuid.NewString(),
		}, true
	}

	msg := raw.Get("message")
	if !msg.Exists() {
		return types.Update{}, false
	}
	upd := types.Update{
		Kind:        types.UpdateText,
		ChatID:      msg.Get("chat.id").String(),
		UserID:      msg.Get("from.id").String(),
		Username:    msg.Get("from.username").String(),
		MessageID:   msg.Get("message_id").String(),
		Text:        strings.TrimSpace(msg.Get("text").String()),
		ReplyToText: msg.Get("reply_to_message.text").String(),
		RequestID:   uuid.NewString(),
	}

	if photos := msg.Get("photo").Array(); len(photos) > 0 {
		upd.Kind = types.UpdatePhoto
		// The last entry is the largest rendition.
		upd.PhotoID = photos[len(photos)-1].Get("file_id").String()
		if upd.Text == "" {
			upd.Text = strings.TrimSpace(msg.Get("caption").String())
		}
		return upd, true
	}
	if upd.Text == "" {
		return types.Update{}, false
	}
	return upd, true
}

func (c *Channel) SendText(ctx context.Context, chatID, text string, kb *types.Keyboard) error {
	if strings.TrimSpace(chatID) == "" {
		return fmt.Errorf("telegram chat id is required")
	}
	payload := map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	}
	if markup := replyMarkup(kb); markup != nil {
		payload["reply_markup"] = markup
	}
	_, err := c.call(ctx, "sendMessage", payload)
	return err
}

func (c *Channel) EditMessage(ctx context.Context, chatID string, messageID string, text string, kb *types.Keyboard) error {
	id, err := strconv.ParseInt(messageID, 10, 64)
	if err != nil {
		return fmt.Errorf("message id must be numeric: %w", err)
	}
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"message_id": id,
		"text":       text,
	}
	// Edits only accept inline markup; reply keyboards are ignored.
	if kb != nil && len(kb.Inline) > 0 {
		payload["reply_markup"] = inlineMarkup(kb.Inline)
	}
	_, err = c.call(ctx, "editMessageText", payload)
	return err
}

func (c *Channel) AnswerCallback(ctx context.Context, callbackID, text string) error {
	payload := map[string]interface{}{
		"callback_query_id": callbackID,
	}
	if text != "" {
		payload["text"] = text
	}
	_, err := c.call(ctx, "answerCallbackQuery", payload)
	return err
}

// FileURL resolves a file id to its download URL.
func (c *Channel) FileURL(ctx context.Context, fileID string) (string, error) {
	body, err := c.call(ctx, "getFile", map[string]interface{}{"file_id": fileID})
	if err != nil {
		return "", err
	}
	path := gjson.GetBytes(body, "result.file_path").String()
	if path == "" {
		return "", fmt.Errorf("telegram getFile returned no path for %s", fileID)
	}
	return strings.TrimRight(c.cfg.APIRoot, "/") + "/file/bot" + c.cfg.BotToken + "/" + path, nil
}

func replyMarkup(kb *types.Keyboard) interface{} {
	switch {
	case kb == nil:
		return nil
	case len(kb.Inline) > 0:
		return inlineMarkup(kb.Inline)
	case len(kb.Reply) > 0:
		rows := make([][]map[string]string, 0, len(kb.Reply))
		for _, row := range kb.Reply {
			buttons := make([]map[string]string, 0, len(row))
			for _, label := range row {
				buttons = append(buttons, map[string]string{"text": label})
			}
			rows = append(rows, buttons)
		}
		return map[string]interface{}{"keyboard": rows, "resize_keyboard": true}
	case kb.ForceReply:
		return map[string]interface{}{"force_reply": true}
	case kb.Remove:
		return map[string]interface{}{"remove_keyboard": true}
	default:
		return nil
	}
}

func inlineMarkup(rows [][]types.Button) map[string]interface{} {
	markup := make([][]map[string]string, 0, len(rows))
	for _, row := range rows {
		buttons := make([]map[string]string, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, map[string]string{"text": btn.Label, "callback_data": btn.Data})
		}
		markup = append(markup, buttons)
	}
	return map[string]interface{}{"inline_keyboard": markup}
}

func (c *Channel) call(ctx context.Context, method string, payload interface{}) ([]byte, error) {
	url := strings.TrimRight(c.cfg.APIRoot, "/") + "/bot" + c.cfg.BotToken + "/" + method
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("telegram api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if !gjson.GetBytes(respBody, "ok").Bool() {
		return nil, fmt.Errorf("telegram api error: %s", gjson.GetBytes(respBody, "description").String())
	}
	return respBody, nil
}

var _ types.Transport = (*Channel)(nil)
var _ types.Channel = (*Channel)(nil)
