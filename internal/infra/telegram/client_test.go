package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage(t *testing.T) {
	var gotPath string
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"chat":{"id":42,"type":"private"},"date":0}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "TOKEN")
	err := c.SendMessage(context.Background(), SendMessageRequest{
		ChatID:      "42",
		Text:        "Настроение",
		ReplyMarkup: Keyboard([]string{"0", "1", "2"}, 2),
	})
	require.NoError(t, err)

	assert.Equal(t, "/botTOKEN/sendMessage", gotPath)
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "Настроение", got["text"])
	markup := got["reply_markup"].(map[string]interface{})
	assert.Len(t, markup["keyboard"], 2)
	assert.Equal(t, true, markup["one_time_keyboard"])
}

func TestSendMessageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "TOKEN").SendMessage(context.Background(), SendMessageRequest{ChatID: "42", Text: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")
}

func TestSendMessageUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "bad").SendMessage(context.Background(), SendMessageRequest{ChatID: "42", Text: "hi"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestKeyboardLayout(t *testing.T) {
	kb := Keyboard([]string{"0", "1", "2", "3", "4", "5"}, 3)
	require.Len(t, kb.Keyboard, 2)
	assert.Equal(t, []KeyboardButton{{Text: "3"}, {Text: "4"}, {Text: "5"}}, kb.Keyboard[1])

	single := Keyboard([]string{"да", "нет"}, 0)
	require.Len(t, single.Keyboard, 1)
	assert.Len(t, single.Keyboard[0], 2)
}
