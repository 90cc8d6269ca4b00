package shop

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/xavierca1/stockwatch/internal/entity"
)

const (
	requestTimeout = 30 * time.Second
	userAgent      = "Mozilla/5.0 (compatible; stockwatch stock checker)"
)

// Client fetches the product page over HTTP.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(productURL string, logger *zap.Logger) *Client {
	return &Client{
		url:        productURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

// Fetch returns the page body as text. Byte sequences that are not valid
// UTF-8 are replaced with U+FFFD instead of failing.
func (c *Client) Fetch(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", &entity.NetworkError{URL: c.url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &entity.NetworkError{URL: c.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &entity.NetworkError{URL: c.url, StatusCode: resp.StatusCode}
	}

	decoded := transform.NewReader(resp.Body, unicode.UTF8.NewDecoder())
	body, err := io.ReadAll(decoded)
	if err != nil {
		return "", &entity.NetworkError{URL: c.url, Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.Debug("page fetched",
		zap.String("url", c.url),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return string(body), nil
}
