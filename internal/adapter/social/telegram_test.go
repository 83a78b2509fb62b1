package social

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func telegramServer(t *testing.T, wantChat string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			w.Write([]byte(`{"ok":true,"result":{"id":7,"is_bot":true,"first_name":"Trend","username":"trendpulse_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			require.NoError(t, r.ParseForm())
			assert.Equal(t, wantChat, r.PostForm.Get("chat_id"))
			assert.Equal(t, "Trending Now: AI", r.PostForm.Get("text"))
			w.Write([]byte(`{"ok":true,"result":{"message_id":42,"date":1700000000,"chat":{"id":100,"type":"channel"},"text":"Trending Now: AI"}}`))
		default:
			w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTelegramPublish(t *testing.T) {
	tests := []struct {
		name string
		chat string
	}{
		{"numeric chat", "100"},
		{"channel handle", "@trendpulse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := telegramServer(t, tt.chat)

			tg, err := NewTelegram(TelegramConfig{
				Token:    "123:abc",
				Chat:     tt.chat,
				Endpoint: srv.URL + "/bot%s/%s",
			}, nil)
			require.NoError(t, err)
			assert.Equal(t, "telegram", tg.Name())

			id, err := tg.Publish(context.Background(), "Trending Now: AI")
			require.NoError(t, err)
			assert.Equal(t, "42", id)
		})
	}
}

func TestTelegramRequiresToken(t *testing.T) {
	_, err := NewTelegram(TelegramConfig{Chat: "1"}, nil)
	assert.Error(t, err)

	_, err = NewTelegram(TelegramConfig{Token: "x"}, nil)
	assert.Error(t, err)
}
