package faceit

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/platform/logging"
	"github.com/Volence/elemental-website-sub005/internal/platform/resilience"
	"github.com/Volence/elemental-website-sub005/internal/usecase"
	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"
)

const (
	defaultBaseURL      = "https://www.faceit.com/api"
	defaultGame         = "ow2"
	defaultPageSize     = 50
	defaultMaxPages     = 10
	defaultRetryBackoff = time.Second
	maxBodyBytes        = 6 << 20

	standingsPath = "/team-leagues/v2/standings"
	matchesPath   = "/championships/v1/matches"
)

var errFaceitTransient = crerr.New("faceit transient failure")

type ClientConfig struct {
	HTTPClient   *http.Client
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	// PageSize and MaxPages bound match pagination.
	PageSize       int
	MaxPages       int
	Game           string
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads standings and match schedules from FaceIt's public, unauthenticated
// endpoints.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	maxRetries   int
	retryBackoff time.Duration
	pageSize     int
	maxPages     int
	game         string
	logger       *logging.Logger
	guard        *resilience.Guard
	flight       singleflight.Group
}

var _ usecase.CompetitionProvider = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	retryBackoff := cfg.RetryBackoff
	if retryBackoff <= 0 {
		retryBackoff = defaultRetryBackoff
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		maxRetries:   maxInt(cfg.MaxRetries, 0),
		retryBackoff: retryBackoff,
		pageSize:     pageSize,
		maxPages:     maxPages,
		game:         firstNonEmpty(cfg.Game, defaultGame),
		logger:       logger,
		guard:        resilience.NewGuard(cfg.CircuitBreaker),
	}
}

// FetchStandings returns the team's row in lc's standings. A 404 or a table
// without the team reports false.
func (c *Client) FetchStandings(ctx context.Context, teamExternalID string, lc usecase.LeagueContext) (usecase.ExternalStandings, bool, error) {
	teamExternalID = strings.TrimSpace(teamExternalID)
	if teamExternalID == "" {
		return usecase.ExternalStandings{}, false, fmt.Errorf("%w: external_team_id", usecase.ErrMissingIdentifier)
	}

	root, err := c.doJSON(ctx, "faceit.standings", standingsPath, contextQuery(lc, teamExternalID))
	if err != nil {
		if fetchErr, ok := usecase.AsFetchError(err); ok && fetchErr.StatusCode == http.StatusNotFound {
			return usecase.ExternalStandings{}, false, nil
		}
		return usecase.ExternalStandings{}, false, err
	}

	row, found := findStandingsRow(collectItems(root, "standings", "rows"), teamExternalID)
	if !found {
		return usecase.ExternalStandings{}, false, nil
	}
	return parseStandingsRow(row), true, nil
}

// FetchMatches pages through the team's matches in lc until a short page or
// the page cap. Any failing page fails the whole call.
func (c *Client) FetchMatches(ctx context.Context, teamExternalID string, lc usecase.LeagueContext) ([]usecase.ExternalMatch, error) {
	teamExternalID = strings.TrimSpace(teamExternalID)
	if teamExternalID == "" {
		return nil, fmt.Errorf("%w: external_team_id", usecase.ErrMissingIdentifier)
	}

	out := make([]usecase.ExternalMatch, 0, c.pageSize)
	for page := 0; page < c.maxPages; page++ {
		query := contextQuery(lc, teamExternalID)
		query.Set("participantType", "TEAM")
		query.Set("offset", strconv.Itoa(page*c.pageSize))
		query.Set("limit", strconv.Itoa(c.pageSize))

		root, err := c.doJSON(ctx, "faceit.matches", matchesPath, query)
		if err != nil {
			return nil, err
		}
		items := collectItems(root, "items", "matches")
		for _, item := range items {
			out = append(out, parseMatch(item, teamExternalID, c.game))
		}
		if len(items) < c.pageSize {
			return out, nil
		}
	}

	c.logger.WarnContext(ctx, "faceit match pagination hit page cap",
		"team_external_id", teamExternalID,
		"max_pages", c.maxPages,
		"matches", len(out),
	)
	return out, nil
}

func contextQuery(lc usecase.LeagueContext, teamExternalID string) url.Values {
	values := url.Values{}
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			values.Set(key, value)
		}
	}
	set("championshipId", lc.ChampionshipID)
	set("leagueId", lc.LeagueID)
	set("seasonId", lc.SeasonID)
	set("stageId", lc.StageID)
	set("participantId", teamExternalID)
	return values
}

func (c *Client) doJSON(ctx context.Context, op, path string, query url.Values) (map[string]any, error) {
	if err := c.guard.Allow(); err != nil {
		c.logger.WarnContext(ctx, "faceit circuit breaker rejected request", "op", op, "state", c.guard.State())
		return nil, &usecase.FetchError{
			Op:   op,
			Kind: usecase.FetchErrorUnavailable,
			Err:  fmt.Errorf("%w: competition platform is temporarily unavailable", usecase.ErrDependencyUnavailable),
		}
	}

	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, op, fullURL)
		c.guard.Record(reqErr, isCircuitFailure)
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, &usecase.FetchError{Op: op, Kind: usecase.FetchErrorDecode, Err: fmt.Errorf("unexpected response payload type %T", out)}
	}

	var root map[string]any
	if err := sonic.Unmarshal(raw, &root); err != nil {
		return nil, &usecase.FetchError{Op: op, Kind: usecase.FetchErrorDecode, Err: crerr.Wrap(err, "decode faceit payload")}
	}
	return root, nil
}

func (c *Client) executeRequest(ctx context.Context, op, fullURL string) ([]byte, error) {
	var lastErr *usecase.FetchError
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, &usecase.FetchError{Op: op, Kind: usecase.FetchErrorTransport, Err: crerr.Wrap(err, "build request")}
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, &usecase.FetchError{Op: op, Kind: usecase.FetchErrorTimeout, Err: ctxErr}
			}
			kind := usecase.FetchErrorTransport
			var netErr net.Error
			if stderrors.As(err, &netErr) && netErr.Timeout() {
				kind = usecase.FetchErrorTimeout
			}
			lastErr = &usecase.FetchError{Op: op, Kind: kind, Err: crerr.Mark(crerr.Wrap(err, "send request"), errFaceitTransient)}
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = &usecase.FetchError{Op: op, Kind: usecase.FetchErrorTransport, Err: crerr.Mark(crerr.Wrap(readErr, "read response body"), errFaceitTransient)}
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			default:
				statusErr := crerr.Newf("faceit status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
				if isRetryableStatus(resp.StatusCode) {
					statusErr = crerr.Mark(statusErr, errFaceitTransient)
				}
				lastErr = &usecase.FetchError{Op: op, Kind: usecase.FetchErrorStatus, StatusCode: resp.StatusCode, Err: statusErr}
				if !isRetryableStatus(resp.StatusCode) {
					return nil, lastErr
				}
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * c.retryBackoff
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &usecase.FetchError{Op: op, Kind: usecase.FetchErrorTimeout, Err: ctx.Err()}
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = &usecase.FetchError{Op: op, Kind: usecase.FetchErrorTransport, Err: crerr.New("faceit request failed")}
	}
	c.logger.WarnContext(ctx, "faceit request failed", "op", op, "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return crerr.Is(err, errFaceitTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
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
