package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taskdesk/app/pkg/types"
)

func TestPollOnceDispatchesMessage(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/getUpdates") {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"ok": true,
			"result": []map[string]interface{}{
				{
					"update_id": 101,
					"message": map[string]interface{}{
						"message_id": 77,
						"text":       "hello",
						"from":       map[string]interface{}{"id": 11, "username": "mira"},
						"chat":       map[string]interface{}{"id": 22},
					},
				},
			},
		})
	}))
	defer server.Close()

	ch := NewChannel(Config{BotToken: "token", APIRoot: server.URL})
	ch.handler = func(u types.Update) {
		called = true
		if u.Kind != types.UpdateText {
			t.Fatalf("unexpected kind: %s", u.Kind)
		}
		if u.ChatID != "22" || u.UserID != "11" || u.Username != "mira" {
			t.Fatalf("unexpected identity: %+v", u)
		}
		if u.Text != "hello" || u.MessageID != "77" {
			t.Fatalf("unexpected message: %+v", u)
		}
		if u.RequestID == "" {
			t.Fatal("expected request id")
		}
	}

	if err := ch.pollOnce(context.Background()); err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if !called {
		t.Fatal("expected handler call")
	}
	if ch.offset != 102 {
		t.Fatalf("offset not advanced: %d", ch.offset)
	}
}

func TestPollOnceDispatchesCallback(t *testing.T) {
	var got types.Update
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"ok": true,
			"result": []map[string]interface{}{
				{
					"update_id": 7,
					"callback_query": map[string]interface{}{
						"id":   "cb-9",
						"data": "task:view:t1",
						"from": map[string]interface{}{"id": 11, "username": "mira"},
						"message": map[string]interface{}{
							"message_id": 40,
							"chat":       map[string]interface{}{"id": 22},
						},
					},
				},
			},
		})
	}))
	defer server.Close()

	ch := NewChannel(Config{BotToken: "token", APIRoot: server.URL})
	ch.handler = func(u types.Update) { got = u }

	if err := ch.pollOnce(context.Background()); err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if got.Kind != types.UpdateCallback {
		t.Fatalf("unexpected kind: %s", got.Kind)
	}
	if got.CallbackID != "cb-9" || got.Data != "task:view:t1" {
		t.Fatalf("unexpected callback: %+v", got)
	}
	if got.ChatID != "22" || got.MessageID != "40" {
		t.Fatalf("unexpected origin: %+v", got)
	}
}

func TestPollOncePicksLargestPhoto(t *testing.T) {
	var got types.Update
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"ok": true,
			"result": []map[string]interface{}{
				{
					"update_id": 8,
					"message": map[string]interface{}{
						"message_id": 41,
						"caption":    "broken sink",
						"from":       map[string]interface{}{"id": 11},
						"chat":       map[string]interface{}{"id": 22},
						"photo": []map[string]interface{}{
							{"file_id": "small"},
							{"file_id": "large"},
						},
					},
				},
			},
		})
	}))
	defer server.Close()

	ch := NewChannel(Config{BotToken: "token", APIRoot: server.URL})
	ch.handler = func(u types.Update) { got = u }

	if err := ch.pollOnce(context.Background()); err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if got.Kind != types.UpdatePhoto {
		t.Fatalf("unexpected kind: %s", got.Kind)
	}
	if got.PhotoID != "large" {
		t.Fatalf("unexpected photo id: %s", got.PhotoID)
	}
	if got.Text != "broken sink" {
		t.Fatalf("caption not carried: %q", got.Text)
	}
}

func TestSendTextWithInlineKeyboard(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if !strings.HasSuffix(r.URL.Path, "/sendMessage") {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload["chat_id"] != "22" {
			t.Fatalf("unexpected chat id: %v", payload["chat_id"])
		}
		if payload["text"] != "pong" {
			t.Fatalf("unexpected text: %v", payload["text"])
		}
		markup, ok := payload["reply_markup"].(map[string]interface{})
		if !ok || markup["inline_keyboard"] == nil {
			t.Fatalf("missing inline keyboard: %v", payload["reply_markup"])
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "result": map[string]interface{}{}})
	}))
	defer server.Close()

	ch := NewChannel(Config{BotToken: "token", APIRoot: server.URL})
	kb := types.InlineKeyboard([]types.Button{{Label: "ok", Data: "noop"}})
	if err := ch.SendText(context.Background(), "22", "pong", kb); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if !called {
		t.Fatal("expected API call")
	}
}

func TestCallRejectsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "description": "chat not found"})
	}))
	defer server.Close()

	ch := NewChannel(Config{BotToken: "token", APIRoot: server.URL})
	err := ch.SendText(context.Background(), "404", "hi", nil)
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestFileURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/getFile") {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":     true,
			"result": map[string]interface{}{"file_path": "photos/file_1.jpg"},
		})
	}))
	defer server.Close()

	ch := NewChannel(Config{BotToken: "token", APIRoot: server.URL})
	url, err := ch.FileURL(context.Background(), "abc")
	if err != nil {
		t.Fatalf("file url failed: %v", err)
	}
	want := server.URL + "/file/bottoken/photos/file_1.jpg"
	if url != want {
		t.Fatalf("unexpected url: %s want %s", url, want)
	}
}
