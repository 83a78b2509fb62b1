// Package googletrends reads interest-over-time series from the unofficial
// Google Trends web API. A request is two calls: explore returns a signed
// TIMESERIES widget, and widgetdata/multiline returns its timeline.
package googletrends

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"trendpulse/internal/domain/trend"
	"trendpulse/internal/logging"
)

const (
	DefaultBaseURL  = "https://trends.google.com"
	DefaultLanguage = "en-US"
	// DefaultTZOffset is minutes west of UTC, the way the web client sends it
	DefaultTZOffset = 360

	explorePath   = "/trends/api/explore"
	multilinePath = "/trends/api/widgetdata/multiline"
	timeseriesID  = "TIMESERIES"
	maxBodyBytes  = 4 << 20
)

// ErrUnexpectedResponse marks a body that could not be decoded
var ErrUnexpectedResponse = errors.New("unexpected trends response")

// Config contains configuration for the trends client
type Config struct {
	BaseURL           string
	Language          string
	TZOffset          int
	RequestsPerMinute int
	Timeout           time.Duration
}

// Client implements trend.Provider
type Client struct {
	http    *http.Client
	base    string
	hl      string
	tz      int
	limiter *rate.Limiter
	log     *zap.Logger
}

// New creates a trends client with its own cookie session
func New(cfg Config, log *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60.0)
	}

	return &Client{
		http:    &http.Client{Jar: jar, Timeout: cfg.Timeout},
		base:    cfg.BaseURL,
		hl:      cfg.Language,
		tz:      cfg.TZOffset,
		limiter: rate.NewLimiter(limit, burst),
		log:     logging.OrNop(log).With(zap.String("component", "googletrends")),
	}, nil
}

type comparisonItem struct {
	Keyword string `json:"keyword"`
	Time    string `json:"time"`
	Geo     string `json:"geo"`
}

type exploreRequest struct {
	ComparisonItem []comparisonItem `json:"comparisonItem"`
	Category       int              `json:"category"`
	Property       string           `json:"property"`
}

type exploreResponse struct {
	Widgets []struct {
		ID      string          `json:"id"`
		Token   string          `json:"token"`
		Request json.RawMessage `json:"request"`
	} `json:"widgets"`
}

type multilineResponse struct {
	Default struct {
		TimelineData []struct {
			Time      string `json:"time"`
			Value     []int  `json:"value"`
			IsPartial bool   `json:"isPartial"`
		} `json:"timelineData"`
	} `json:"default"`
}

// InterestOverTime returns the interest series of one keyword. An empty
// timeline is returned as nil with no error.
func (c *Client) InterestOverTime(ctx context.Context, keyword trend.Keyword, q trend.Query) ([]trend.ProviderPoint, error) {
	widgetReq, token, err := c.explore(ctx, keyword, q)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("hl", c.hl)
	params.Set("tz", strconv.Itoa(c.tz))
	params.Set("req", string(widgetReq))
	params.Set("token", token)

	var data multilineResponse
	if err := c.get(ctx, multilinePath, params, &data); err != nil {
		return nil, fmt.Errorf("timeline %q: %w", keyword, err)
	}

	points := make([]trend.ProviderPoint, 0, len(data.Default.TimelineData))
	for _, td := range data.Default.TimelineData {
		secs, err := strconv.ParseInt(td.Time, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: timestamp %q", ErrUnexpectedResponse, td.Time)
		}
		if len(td.Value) == 0 {
			continue
		}
		points = append(points, trend.ProviderPoint{
			Date:     time.Unix(secs, 0).UTC(),
			Interest: td.Value[0],
			Partial:  td.IsPartial,
		})
	}

	if len(points) == 0 {
		return nil, nil
	}
	return points, nil
}

func (c *Client) explore(ctx context.Context, keyword trend.Keyword, q trend.Query) (json.RawMessage, string, error) {
	timeframe := q.Timeframe
	if timeframe == "" {
		timeframe = "today 3-m"
	}

	body, err := json.Marshal(exploreRequest{
		ComparisonItem: []comparisonItem{{Keyword: string(keyword), Time: timeframe, Geo: q.Geo}},
		Category:       q.Category,
	})
	if err != nil {
		return nil, "", err
	}

	params := url.Values{}
	params.Set("hl", c.hl)
	params.Set("tz", strconv.Itoa(c.tz))
	params.Set("req", string(body))

	var resp exploreResponse
	if err := c.get(ctx, explorePath, params, &resp); err != nil {
		return nil, "", fmt.Errorf("explore %q: %w", keyword, err)
	}

	for _, w := range resp.Widgets {
		if w.ID == timeseriesID {
			return w.Request, w.Token, nil
		}
	}
	return nil, "", fmt.Errorf("explore %q: %w: no %s widget", keyword, ErrUnexpectedResponse, timeseriesID)
}

// get performs one paced request and decodes the JSON body. Rate limiting,
// server errors and network errors are transient; other statuses and decode
// failures are permanent.
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return trend.Transient(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return trend.Transient(err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		c.log.Debug("Trends request throttled or failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return trend.Transient(fmt.Errorf("status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	if err := json.Unmarshal(stripGuard(body), out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return nil
}

// stripGuard removes the anti-XSSI prefix that precedes every JSON body
func stripGuard(body []byte) []byte {
	if i := bytes.IndexAny(body, "{["); i > 0 {
		return body[i:]
	}
	return body
}
