package microcms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kapu/higapro-site/internal/constants"
	"github.com/kapu/higapro-site/internal/util"
	"github.com/kapu/higapro-site/pkg/errors"
	"go.uber.org/zap"
)

// Cache is the storage behind the revalidate hint.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Observer is told about every request outcome ("hit", "ok", "error").
type Observer func(endpoint, result string)

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cache      Cache
	observe    Observer
	logger     *zap.Logger
}

type Option func(*Client)

func WithCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

func WithObserver(observe Observer) Option {
	return func(c *Client) {
		c.observe = observe
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(baseURL, apiKey string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: constants.CacheTTL.CMSRequest},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListQuery restricts a list request. Revalidate > 0 lets the response be served
// from the cache for that long.
type ListQuery struct {
	Fields     []string
	Filters    string
	Limit      int
	Offset     int
	Orders     string
	Revalidate time.Duration
}

type DetailQuery struct {
	Fields     []string
	Revalidate time.Duration
}

type ListResponse[T any] struct {
	Contents   []T `json:"contents"`
	TotalCount int `json:"totalCount"`
	Offset     int `json:"offset"`
	Limit      int `json:"limit"`
}

func (q ListQuery) params() (url.Values, error) {
	if q.Limit < 0 || q.Limit > constants.ListLimits.Max {
		return nil, errors.NewValidationError(
			fmt.Sprintf("limit must be between 1 and %d", constants.ListLimits.Max), "limit", q.Limit)
	}
	if q.Offset < 0 {
		return nil, errors.NewValidationError("offset must not be negative", "offset", q.Offset)
	}

	params := url.Values{}
	if len(q.Fields) > 0 {
		params.Set("fields", strings.Join(q.Fields, ","))
	}
	if q.Filters != "" {
		params.Set("filters", q.Filters)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Orders != "" {
		params.Set("orders", q.Orders)
	}
	return params, nil
}

func (q DetailQuery) params() url.Values {
	params := url.Values{}
	if len(q.Fields) > 0 {
		params.Set("fields", strings.Join(q.Fields, ","))
	}
	return params
}

// GetList fetches a list endpoint.
func GetList[T any](ctx context.Context, c *Client, endpoint string, q ListQuery) (*ListResponse[T], error) {
	params, err := q.params()
	if err != nil {
		return nil, err
	}

	body, err := c.DoRequest(ctx, endpoint, params, q.Revalidate)
	if err != nil {
		return nil, err
	}

	var resp ListResponse[T]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.NewServiceError("failed to decode list response", "microcms", endpoint, err)
	}
	return &resp, nil
}

// GetDetail fetches one content of a list endpoint by id.
func GetDetail[T any](ctx context.Context, c *Client, endpoint, id string, q DetailQuery) (*T, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.NewValidationError("content id is required", "id", id)
	}

	body, err := c.DoRequest(ctx, endpoint+"/"+url.PathEscape(id), q.params(), q.Revalidate)
	if err != nil {
		return nil, err
	}

	var content T
	if err := json.Unmarshal(body, &content); err != nil {
		return nil, errors.NewServiceError("failed to decode detail response", "microcms", endpoint, err)
	}
	return &content, nil
}

// DoRequest performs a GET against path (relative to the API base) and returns the
// raw JSON body, consulting the cache first when revalidate is positive.
func (c *Client) DoRequest(ctx context.Context, path string, params url.Values, revalidate time.Duration) ([]byte, error) {
	endpoint := strings.SplitN(path, "/", 2)[0]
	cacheKey := "microcms:" + path + "?" + params.Encode()
	useCache := c.cache != nil && revalidate > 0

	if useCache {
		var cached json.RawMessage
		found, err := c.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			c.logger.Warn("CMS cache read failed, fetching", zap.String("key", cacheKey), zap.Error(err))
		} else if found {
			c.logger.Debug("CMS cache hit", zap.String("key", cacheKey))
			c.record(endpoint, "hit")
			return cached, nil
		}
	}

	reqURL := c.baseURL + "/" + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-MICROCMS-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(endpoint, "error")
		c.logger.Error("CMS request failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("microcms request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.record(endpoint, "error")
		return nil, fmt.Errorf("microcms response %s unreadable: %w", path, err)
	}

	if resp.StatusCode >= 500 {
		c.record(endpoint, "error")
		c.logger.Warn("CMS server error", zap.String("path", path), zap.Int("status", resp.StatusCode))
		return nil, errors.NewAPIError(fmt.Sprintf("Server error: %d", resp.StatusCode), resp.StatusCode, map[string]any{
			"path": path,
		})
	}

	if resp.StatusCode >= 400 {
		c.record(endpoint, "error")
		return nil, errors.NewAPIError(fmt.Sprintf("Client error: %d", resp.StatusCode), resp.StatusCode, map[string]any{
			"path": path,
			"body": util.TruncateString(string(body), 200),
		})
	}

	c.record(endpoint, "ok")
	c.logger.Debug("CMS request completed",
		zap.String("path", path),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if useCache {
		if err := c.cache.Set(ctx, cacheKey, json.RawMessage(body), revalidate); err != nil {
			c.logger.Warn("CMS cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	return body, nil
}

func (c *Client) record(endpoint, result string) {
	if c.observe != nil {
		c.observe(endpoint, result)
	}
}
