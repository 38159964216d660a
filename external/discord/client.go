package discord

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/platform/logging"
	"github.com/Volence/elemental-website-sub005/internal/platform/resilience"
	"github.com/Volence/elemental-website-sub005/internal/usecase"
	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"
)

const (
	defaultBaseURL = "https://discord.com/api/v10"
	// Discord JSON error code for a message that no longer exists.
	codeUnknownMessage = 10008
	maxRateLimitWait   = 10 * time.Second
)

var errDiscordTransient = crerr.New("discord transient failure")

type ClientConfig struct {
	BaseURL        string
	BotToken       string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client posts, edits and deletes channel messages through the Discord REST API.
type Client struct {
	http       *fasthttp.Client
	baseURL    string
	token      string
	timeout    time.Duration
	maxRetries int
	logger     *logging.Logger
	guard      *resilience.Guard
}

var _ usecase.ChatMessenger = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		http: &fasthttp.Client{
			Name:                "competition-sync (https://github.com/Volence/elemental-website-sub005, 1.0)",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		baseURL:    baseURL,
		token:      strings.TrimSpace(cfg.BotToken),
		timeout:    timeout,
		maxRetries: maxInt(cfg.MaxRetries, 0),
		logger:     logger,
		guard:      resilience.NewGuard(cfg.CircuitBreaker),
	}
}

func (c *Client) CreateMessage(ctx context.Context, channelID string, content usecase.MessageContent) (string, error) {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return "", fmt.Errorf("%w: channel id is required", usecase.ErrInvalidInput)
	}
	body, err := sonic.Marshal(toPayload(content))
	if err != nil {
		return "", crerr.Wrap(err, "marshal discord message")
	}

	raw, err := c.do(ctx, fasthttp.MethodPost, "/channels/"+channelID+"/messages", body)
	if err != nil {
		return "", err
	}
	var created messageResponse
	if err := sonic.Unmarshal(raw, &created); err != nil {
		return "", crerr.Wrap(err, "decode discord message")
	}
	if strings.TrimSpace(created.ID) == "" {
		return "", crerr.New("discord returned a message without id")
	}
	return created.ID, nil
}

func (c *Client) EditMessage(ctx context.Context, channelID, messageID string, content usecase.MessageContent) error {
	if strings.TrimSpace(channelID) == "" || strings.TrimSpace(messageID) == "" {
		return fmt.Errorf("%w: channel id and message id are required", usecase.ErrInvalidInput)
	}
	body, err := sonic.Marshal(toPayload(content))
	if err != nil {
		return crerr.Wrap(err, "marshal discord message")
	}
	_, err = c.do(ctx, fasthttp.MethodPatch, "/channels/"+strings.TrimSpace(channelID)+"/messages/"+strings.TrimSpace(messageID), body)
	return err
}

func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	if strings.TrimSpace(channelID) == "" || strings.TrimSpace(messageID) == "" {
		return fmt.Errorf("%w: channel id and message id are required", usecase.ErrInvalidInput)
	}
	_, err := c.do(ctx, fasthttp.MethodDelete, "/channels/"+strings.TrimSpace(channelID)+"/messages/"+strings.TrimSpace(messageID), nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if err := c.guard.Allow(); err != nil {
		c.logger.WarnContext(ctx, "discord circuit breaker rejected request", "state", c.guard.State())
		return nil, fmt.Errorf("%w: discord is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	raw, err := c.execute(ctx, method, path, body)
	c.guard.Record(err, isCircuitFailure)
	return raw, err
}

func (c *Client) execute(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req.Reset()
		resp.Reset()
		req.SetRequestURI(c.baseURL + path)
		req.Header.SetMethod(method)
		req.Header.Set("Authorization", "Bot "+c.token)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.SetContentType("application/json")
			req.SetBody(body)
		}

		if err := c.http.DoDeadline(req, resp, c.deadline(ctx)); err != nil {
			lastErr = crerr.Mark(crerr.Wrapf(err, "discord %s %s", method, path), errDiscordTransient)
		} else {
			status := resp.StatusCode()
			raw := append([]byte(nil), resp.Body()...)
			switch {
			case status >= 200 && status < 300:
				return raw, nil
			case status == http.StatusNotFound && isUnknownMessage(raw, method):
				return nil, fmt.Errorf("discord %s %s: %w", method, path, usecase.ErrMessageNotFound)
			case status == http.StatusTooManyRequests:
				lastErr = crerr.Mark(crerr.Newf("discord %s %s rate limited", method, path), errDiscordTransient)
				if attempt < c.maxRetries {
					if err := sleepContext(ctx, retryAfter(resp, raw)); err != nil {
						return nil, err
					}
					continue
				}
			case status >= http.StatusInternalServerError:
				lastErr = crerr.Mark(crerr.Newf("discord %s %s status=%d body=%s", method, path, status, abbreviateBody(raw)), errDiscordTransient)
			default:
				return nil, crerr.Newf("discord %s %s status=%d body=%s", method, path, status, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		if err := sleepContext(ctx, time.Duration(attempt+1)*500*time.Millisecond); err != nil {
			return nil, err
		}
	}

	if lastErr == nil {
		lastErr = crerr.New("discord request failed")
	}
	c.logger.WarnContext(ctx, "discord request failed", "method", method, "path", path, "error", lastErr)
	return nil, lastErr
}

func (c *Client) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		return ctxDeadline
	}
	return deadline
}

// isUnknownMessage treats a 404 on a message route as a deleted message. A 404
// on create means the channel itself is gone, which is not recoverable here.
func isUnknownMessage(raw []byte, method string) bool {
	if method == fasthttp.MethodPost {
		return false
	}
	var decoded errorResponse
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return true
	}
	return decoded.Code == 0 || decoded.Code == codeUnknownMessage
}

func retryAfter(resp *fasthttp.Response, raw []byte) time.Duration {
	var decoded rateLimitResponse
	wait := time.Duration(0)
	if err := sonic.Unmarshal(raw, &decoded); err == nil && decoded.RetryAfter > 0 {
		wait = time.Duration(decoded.RetryAfter * float64(time.Second))
	} else if header := strings.TrimSpace(string(resp.Header.Peek("Retry-After"))); header != "" {
		if seconds, err := strconv.ParseFloat(header, 64); err == nil {
			wait = time.Duration(seconds * float64(time.Second))
		}
	}
	if wait <= 0 {
		wait = time.Second
	}
	if wait > maxRateLimitWait {
		wait = maxRateLimitWait
	}
	return wait
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isCircuitFailure(err error) bool {
	return err != nil && crerr.Is(err, errDiscordTransient)
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
