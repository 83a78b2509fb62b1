// Package social holds the publication.Publisher implementations.
package social

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dghubble/oauth1"
	twitter "github.com/g8rswimmer/go-twitter/v2"
	"go.uber.org/zap"

	"trendpulse/internal/logging"
)

const DefaultTwitterHost = "https://api.twitter.com"

// TwitterConfig holds OAuth 1.0a user-context credentials
type TwitterConfig struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
	Host           string
}

// Twitter posts tweets through the v2 API
type Twitter struct {
	client *twitter.Client
	log    *zap.Logger
}

// requests are already signed by the oauth1 transport
type signedTransport struct{}

func (signedTransport) Add(*http.Request) {}

// NewTwitter creates a new tweet publisher
func NewTwitter(cfg TwitterConfig, log *zap.Logger) (*Twitter, error) {
	if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" || cfg.AccessToken == "" || cfg.AccessSecret == "" {
		return nil, errors.New("twitter credentials are incomplete")
	}
	if cfg.Host == "" {
		cfg.Host = DefaultTwitterHost
	}

	oauthCfg := oauth1.NewConfig(cfg.ConsumerKey, cfg.ConsumerSecret)
	token := oauth1.NewToken(cfg.AccessToken, cfg.AccessSecret)

	return &Twitter{
		client: &twitter.Client{
			Authorizer: signedTransport{},
			Client:     oauthCfg.Client(oauth1.NoContext, token),
			Host:       cfg.Host,
		},
		log: logging.OrNop(log).With(zap.String("component", "twitter")),
	}, nil
}

// Name returns the platform name
func (t *Twitter) Name() string {
	return "twitter"
}

// Publish posts message as a tweet and returns its ID
func (t *Twitter) Publish(ctx context.Context, message string) (string, error) {
	resp, err := t.client.CreateTweet(ctx, twitter.CreateTweetRequest{Text: message})
	if err != nil {
		return "", fmt.Errorf("create tweet: %w", err)
	}
	if resp.Tweet == nil {
		return "", errors.New("create tweet: empty response")
	}

	t.log.Info("Tweet posted", zap.String("tweet_id", resp.Tweet.ID))
	return resp.Tweet.ID, nil
}
