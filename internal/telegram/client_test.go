package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dromero/barberbot/internal/config"
	"github.com/dromero/barberbot/pkg/logger"
)

func testConfig(baseURL string) config.TelegramConfig {
	return config.TelegramConfig{
		APIBaseURL:     baseURL,
		PollTimeout:    time.Second,
		SendRatePerSec: 100,
		SendBurst:      10,
	}
}

func quietLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.FatalLevel, Output: io.Discard})
}

func TestSendMessage(t *testing.T) {
	var gotPath string
	var gotBody sendMessageRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"ok":true,"result":{"message_id":7,"chat":{"id":1}}}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), "TOKEN", quietLogger())
	err := c.SendMessage(context.Background(), "12345", "hello *there*", true)
	require.NoError(t, err)

	assert.Equal(t, "/botTOKEN/sendMessage", gotPath)
	assert.Equal(t, "12345", gotBody.ChatID)
	assert.Equal(t, "hello *there*", gotBody.Text)
	assert.Equal(t, "Markdown", gotBody.ParseMode)
}

func TestSendMessagePlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req sendMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Empty(t, req.ParseMode)
		w.Write([]byte(`{"ok":true,"result":{"message_id":1,"chat":{"id":1}}}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), "TOKEN", quietLogger())
	require.NoError(t, c.SendMessage(context.Background(), "1", "plain", false))
}

func TestSendMessageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), "TOKEN", quietLogger())
	err := c.SendMessage(context.Background(), "999", "hi", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestGetUpdates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req getUpdatesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(42), req.Offset)
		w.Write([]byte(`{"ok":true,"result":[
			{"update_id":42,"message":{"message_id":1,"chat":{"id":10,"type":"private"},"text":"/start","from":{"id":10,"first_name":"Ana"}}},
			{"update_id":43,"message":{"message_id":2,"chat":{"id":11,"type":"private"},"text":"hola","from":{"id":11,"first_name":"Luis"}}}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), "TOKEN", quietLogger())
	updates, err := c.GetUpdates(context.Background(), 42, time.Second)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, "/start", updates[0].Message.Text)
	assert.Equal(t, int64(11), updates[1].Message.Chat.ID)
}
