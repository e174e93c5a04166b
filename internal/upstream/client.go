package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"varietyd/internal/providers"
	"varietyd/internal/structures"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

type Kind string

const (
	KindGames   Kind = "games"
	KindStreams Kind = "streams"
)

const (
	PageSize         = 100
	breakerName      = "upstream"
	maxErrorBodySize = 512
)

// PageSource fetches one page of a channel table and decodes it into out.
type PageSource interface {
	FetchPage(ctx context.Context, kind Kind, year, offset int, out any) error
}

type Client struct {
	baseUrl   string
	channelId string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker[[]byte]
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
}

func NewClient(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) PageSource {
	limit := rate.Inf
	if conf.Upstream.RateLimit > 0 {
		limit = rate.Limit(conf.Upstream.RateLimit)
	}
	burst := max(conf.Upstream.Burst, 1)

	c := &Client{
		baseUrl:   strings.TrimRight(conf.Upstream.BaseUrl, "/"),
		channelId: conf.Upstream.ChannelId,
		userAgent: conf.Upstream.UserAgent,
		http:      &http.Client{Timeout: conf.Upstream.Timeout},
		limiter:   rate.NewLimiter(limit, burst),
		logger:    logger,
		metrics:   metrics,
	}

	metrics.SetBreakerState(breakerName, 0)
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf(providers.TypeUpstream, "circuit breaker %s: %s -> %s", name, from, to)
			metrics.SetBreakerState(name, breakerStateValue(to))
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
	})

	return c
}

func (c *Client) FetchPage(ctx context.Context, kind Kind, year, offset int, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	pageUrl := c.pageUrl(kind, year, offset)
	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.get(ctx, pageUrl)
	})
	c.metrics.ObserveUpstreamDuration(string(kind), time.Since(start))
	if err != nil {
		c.metrics.IncUpstreamErrors(string(kind))
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.metrics.IncUpstreamErrors(string(kind))
		return fmt.Errorf("decode %s page: %w", kind, err)
	}
	c.logger.Debugf(providers.TypeUpstream, "fetched %s", pageUrl)
	return nil
}

func (c *Client) get(ctx context.Context, pageUrl string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageUrl, http.NoBody)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet)
	}
	return io.ReadAll(resp.Body)
}

// pageUrl builds the channel table address. Sorting is by stream time for
// games and by start time for streams, newest first.
func (c *Client) pageUrl(kind Kind, year, offset int) string {
	sortColumn := 1
	if kind == KindGames {
		sortColumn = 2
	}
	return fmt.Sprintf("%s/api/tables/channeltables/%s/%d/%s/%%20/1/%d/desc/%d/%d",
		c.baseUrl, kind, year, url.PathEscape(c.channelId), sortColumn, offset, PageSize)
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
