// Package jobqueue publishes delayed sync continuations through Upstash
// QStash, which calls the internal job endpoint back after the delay.
package jobqueue

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/platform/logging"
	"github.com/Volence/elemental-website-sub005/internal/platform/resilience"
	"github.com/Volence/elemental-website-sub005/internal/usecase"
	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errQStashTransient = crerr.New("qstash transient failure")

const (
	headerDelay        = "Upstash-Delay"
	headerDedupID      = "Upstash-Deduplication-Id"
	headerRetries      = "Upstash-Retries"
	headerMethod       = "Upstash-Method"
	headerForwardToken = "Upstash-Forward-X-Internal-Job-Token"
)

type QStashPublisherConfig struct {
	HTTPClient    *http.Client
	BaseURL       string
	Token         string
	TargetBaseURL string
	Retries       int
	// InternalJobToken is forwarded so the callback passes the internal job guard.
	InternalJobToken string
	Timeout          time.Duration
	CircuitBreaker   resilience.CircuitBreakerConfig
}

type QStashPublisher struct {
	client           *http.Client
	publishURL       string
	token            string
	targetBaseURL    string
	retries          int
	internalJobToken string
	logger           *logging.Logger
	guard            *resilience.Guard
}

var _ usecase.JobQueue = (*QStashPublisher)(nil)

type publishResponse struct {
	MessageID    string `json:"messageId"`
	Deduplicated bool   `json:"deduplicated"`
}

// NewQStashPublisher validates both base URLs up front so a bad deploy fails
// at startup instead of on the first deferred batch.
func NewQStashPublisher(cfg QStashPublisherConfig, logger *logging.Logger) (*QStashPublisher, error) {
	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetBaseURL, err := validateHTTPBaseURL(cfg.TargetBaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid QSTASH_TARGET_BASE_URL")
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &QStashPublisher{
		client:           client,
		publishURL:       baseURL + "/v2/publish/",
		token:            strings.TrimSpace(cfg.Token),
		targetBaseURL:    targetBaseURL,
		retries:          cfg.Retries,
		internalJobToken: strings.TrimSpace(cfg.InternalJobToken),
		logger:           logger,
		guard:            resilience.NewGuard(cfg.CircuitBreaker),
	}, nil
}

func (p *QStashPublisher) Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	path = "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "/" {
		return crerr.New("job path is required")
	}
	if err := p.guard.Allow(); err != nil {
		p.logger.WarnContext(ctx, "qstash circuit breaker rejected request", "state", p.guard.State())
		return fmt.Errorf("%w: qstash is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	if payload == nil {
		payload = map[string]any{}
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		return crerr.Wrap(err, "marshal job payload")
	}

	targetURL := p.targetBaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.publishURL+targetURL, bytes.NewReader(body))
	if err != nil {
		return crerr.Wrap(err, "create qstash request")
	}
	p.setHeaders(req.Header, delay, deduplicationID)

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.target_url", targetURL),
			attribute.String("qstash.deduplication_id", deduplicationID),
			attribute.String("qstash.headers", describeHeaders(req.Header)),
		)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)

	out, err := p.send(req, targetURL)
	p.guard.Record(err, isQStashCircuitFailure)
	if err != nil {
		return err
	}

	p.logger.InfoContext(ctx, "qstash job published",
		"path", path,
		"delay", formatDelay(delay),
		"deduplication_id", deduplicationID,
		"message_id", out.MessageID,
		"deduplicated", out.Deduplicated,
	)
	return nil
}

func (p *QStashPublisher) send(req *http.Request, targetURL string) (publishResponse, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return publishResponse{}, crerr.Mark(crerr.Wrapf(err, "publish qstash job target_url=%s", targetURL), errQStashTransient)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode/100 != 2 {
		callErr := crerr.Newf("publish qstash job status=%d target_url=%s body=%s", resp.StatusCode, targetURL, strings.TrimSpace(string(raw)))
		if isQStashRetryableStatus(resp.StatusCode) {
			return publishResponse{}, crerr.Mark(callErr, errQStashTransient)
		}
		return publishResponse{}, callErr
	}

	// The body only feeds logs; an unexpected shape is not a failure.
	var out publishResponse
	_ = sonic.Unmarshal(raw, &out)
	return out, nil
}

func (p *QStashPublisher) setHeaders(h http.Header, delay time.Duration, deduplicationID string) {
	h.Set("Content-Type", "application/json")
	h.Set(headerMethod, http.MethodPost)
	if p.retries > 0 {
		h.Set(headerRetries, strconv.Itoa(p.retries))
	}
	if delay > 0 {
		h.Set(headerDelay, formatDelay(delay))
	}
	if id := strings.TrimSpace(deduplicationID); id != "" {
		h.Set(headerDedupID, id)
	}
	if p.internalJobToken != "" {
		h.Set(headerForwardToken, p.internalJobToken)
	}
}

// describeHeaders renders headers in key order for tracing with secrets masked.
func describeHeaders(h http.Header) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	keys := make([]string, 0, len(h))
	for key := range h {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for i, key := range keys {
		if i > 0 {
			_, _ = buf.WriteString("; ")
		}
		value := h.Get(key)
		lower := strings.ToLower(key)
		if strings.Contains(lower, "token") || lower == "authorization" {
			value = "***"
		}
		_, _ = buf.WriteString(key + ": " + value)
	}
	return buf.String()
}

// formatDelay renders whole seconds, the unit QStash accepts.
func formatDelay(delay time.Duration) string {
	if delay <= 0 {
		return "0s"
	}
	return strconv.Itoa(int(delay.Round(time.Second).Seconds())) + "s"
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimRight(strings.TrimSpace(raw), "/")
	if candidate == "" {
		return "", crerr.New("value is empty")
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}
	return candidate, nil
}

func isQStashCircuitFailure(err error) bool {
	return err != nil && crerr.Is(err, errQStashTransient)
}

func isQStashRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
