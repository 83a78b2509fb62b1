package social

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"trendpulse/internal/logging"
)

// TelegramConfig contains Telegram bot configuration
type TelegramConfig struct {
	Token string
	// Chat is a numeric chat ID or a @channel username
	Chat        string
	Endpoint    string
	HTTPTimeout time.Duration
}

// Telegram posts messages to one chat or channel
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
	handle string
	log    *zap.Logger
}

// NewTelegram creates a bot and verifies the token with getMe
func NewTelegram(cfg TelegramConfig, log *zap.Logger) (*Telegram, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram bot token is required")
	}
	if cfg.Chat == "" {
		return nil, errors.New("telegram chat is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = tgbotapi.APIEndpoint
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, cfg.Endpoint, &http.Client{Timeout: cfg.HTTPTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	t := &Telegram{
		api: api,
		log: logging.OrNop(log).With(zap.String("component", "telegram"), zap.String("bot", api.Self.UserName)),
	}
	if id, err := strconv.ParseInt(cfg.Chat, 10, 64); err == nil {
		t.chatID = id
	} else {
		t.handle = cfg.Chat
	}
	return t, nil
}

// Name returns the platform name
func (t *Telegram) Name() string {
	return "telegram"
}

// Publish sends message and returns the Telegram message ID
func (t *Telegram) Publish(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var msg tgbotapi.MessageConfig
	if t.handle != "" {
		msg = tgbotapi.NewMessageToChannel(t.handle, message)
	} else {
		msg = tgbotapi.NewMessage(t.chatID, message)
	}
	msg.DisableWebPagePreview = true

	sent, err := t.api.Send(msg)
	if err != nil {
		return "", fmt.Errorf("send telegram message: %w", err)
	}

	id := strconv.Itoa(sent.MessageID)
	t.log.Info("Telegram message sent", zap.String("message_id", id))
	return id, nil
}
