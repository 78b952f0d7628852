package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/oops"

	"github.com/TheStevenMiller/Discord-Bot/internal/modules/discord/domain"
	"github.com/TheStevenMiller/Discord-Bot/internal/shared/config"
)

// maxMessagesPerRequest is the Discord API ceiling for a single page.
const maxMessagesPerRequest = 100

// APIError is a non-2xx response from the Discord API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord api returned status %d: %s", e.StatusCode, e.Body)
}

// Client is a thin wrapper over the Discord REST API. It owns an HTTP
// client for its lifetime; callers must Close it on every exit path.
type Client struct {
	baseURL       string
	authHeader    string
	warnThreshold int
	httpClient    *http.Client
	logger        *slog.Logger
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:       strings.TrimRight(cfg.DiscordAPIURL, "/"),
		authHeader:    authorizationHeader(cfg.DiscordBotToken),
		warnThreshold: cfg.RateLimitWarningThreshold,
		httpClient:    &http.Client{Timeout: cfg.APITimeout()},
		logger:        slog.Default(),
	}
}

// authorizationHeader prefixes the bot token with the "Bot " scheme the
// API expects, unless the credential already carries a scheme.
func authorizationHeader(token string) string {
	if strings.HasPrefix(token, "Bot ") || strings.HasPrefix(token, "Bearer ") {
		return token
	}
	return "Bot " + token
}

func (c *Client) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// FetchMessages fetches a single page of messages from a channel. When
// after is non-nil, only messages with IDs strictly greater than it are
// returned. The wire order is newest-first; the returned slice is always
// oldest-first. The rate-limit info is extracted from the response
// headers and never influences the call itself.
func (c *Client) FetchMessages(ctx context.Context, channelID string, after *string, limit int) ([]domain.Message, *domain.RateLimit, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > maxMessagesPerRequest {
		limit = maxMessagesPerRequest
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if after != nil {
		params.Set("after", *after)
	}

	endpoint := fmt.Sprintf("%s/channels/%s/messages?%s", c.baseURL, channelID, params.Encode())
	c.logger.Info("Fetching messages", "channel_id", channelID, "limit", limit, "after", lo.FromPtr(after))

	body, rateLimit, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, rateLimit, oops.With("channel_id", channelID).Wrap(err)
	}

	var messages []domain.Message
	if err := json.Unmarshal(body, &messages); err != nil {
		return nil, rateLimit, oops.With("channel_id", channelID, "context", "decoding message list").Wrap(err)
	}

	// Discord returns newest first; reverse to chronological order
	lo.Reverse(messages)

	c.logger.Info("Successfully fetched messages", "channel_id", channelID, "count", len(messages))
	return messages, rateLimit, nil
}

// FetchChannelInfo fetches a channel's metadata. Callers treat failure
// as "channel info unavailable" rather than fatal.
func (c *Client) FetchChannelInfo(ctx context.Context, channelID string) (*domain.Channel, error) {
	endpoint := fmt.Sprintf("%s/channels/%s", c.baseURL, channelID)
	c.logger.Info("Fetching channel info", "channel_id", channelID)

	body, _, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, oops.With("channel_id", channelID).Wrap(err)
	}

	var channel domain.Channel
	if err := json.Unmarshal(body, &channel); err != nil {
		return nil, oops.With("channel_id", channelID, "context", "decoding channel info").Wrap(err)
	}

	return &channel, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, *domain.RateLimit, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, oops.With("url", endpoint).Wrap(err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("User-Agent", config.UserAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, oops.With("url", endpoint, "context", "request failed").Wrap(err)
	}
	defer resp.Body.Close()

	rateLimit := c.extractRateLimit(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, rateLimit, oops.With("url", endpoint, "context", "reading response body").Wrap(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, rateLimit, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, rateLimit, nil
}

// extractRateLimit pulls Discord's rate-limit headers off a response and
// warns when the remaining quota dips below the configured threshold.
func (c *Client) extractRateLimit(resp *http.Response) *domain.RateLimit {
	rateLimit := &domain.RateLimit{
		Limit:      resp.Header.Get("X-RateLimit-Limit"),
		Remaining:  resp.Header.Get("X-RateLimit-Remaining"),
		Reset:      resp.Header.Get("X-RateLimit-Reset"),
		ResetAfter: resp.Header.Get("X-RateLimit-Reset-After"),
		Bucket:     resp.Header.Get("X-RateLimit-Bucket"),
		Global:     resp.Header.Get("X-RateLimit-Global"),
	}

	if rateLimit.Empty() {
		return rateLimit
	}

	c.logger.Debug("Rate limit info",
		"limit", rateLimit.Limit,
		"remaining", rateLimit.Remaining,
		"reset", rateLimit.Reset,
		"reset_after", rateLimit.ResetAfter,
		"bucket", rateLimit.Bucket,
	)

	if remaining, err := strconv.Atoi(rateLimit.Remaining); err == nil && remaining < c.warnThreshold {
		c.logger.Warn("Rate limit warning", "remaining", remaining)
	}

	return rateLimit
}

// Close releases the client's pooled connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
