package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

// BuylistClient fetches the buylist vendor's full pricelist. The pricelist is
// a single large download the vendor refreshes a few times a day, so the raw
// body is cached on disk and reused while fresh. The vendor blocks generic
// API clients, hence the browser-shaped request headers.
type BuylistClient struct {
	url       string
	cacheFile string
	maxAge    time.Duration
	client    *http.Client
	logger    *zap.Logger
}

// NewBuylistClient builds a pricelist client with an on-disk cache.
func NewBuylistClient(url, cacheFile string, maxAge, timeout time.Duration, logger *zap.Logger) *BuylistClient {
	return &BuylistClient{
		url:       url,
		cacheFile: cacheFile,
		maxAge:    maxAge,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

// Pricelist returns the vendor's current pricelist rows, from cache when the
// cached body is younger than the configured max age.
func (b *BuylistClient) Pricelist(ctx context.Context) ([]buylistItem, error) {
	body, fromCache, err := b.loadBody(ctx)
	if err != nil {
		return nil, err
	}
	items, err := parseBuylistBody(body)
	if err != nil {
		if !fromCache {
			return nil, err
		}
		// A stale cache with a truncated or changed shape must not wedge the
		// sync until it expires.
		b.logger.Warn("cached pricelist unreadable, refetching", zap.Error(err))
		body, err = b.fetchBody(ctx)
		if err != nil {
			return nil, err
		}
		b.writeCache(body)
		return parseBuylistBody(body)
	}
	return items, nil
}

func (b *BuylistClient) loadBody(ctx context.Context) ([]byte, bool, error) {
	if b.cacheFresh() {
		body, err := os.ReadFile(b.cacheFile)
		if err == nil {
			return body, true, nil
		}
		b.logger.Warn("pricelist cache unreadable", zap.Error(err))
	}
	body, err := b.fetchBody(ctx)
	if err != nil {
		return nil, false, err
	}
	b.writeCache(body)
	return body, false, nil
}

func (b *BuylistClient) cacheFresh() bool {
	info, err := os.Stat(b.cacheFile)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) <= b.maxAge
}

func (b *BuylistClient) fetchBody(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "application/json,text/plain,*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "close")
	req.Header.Set("Referer", "https://www.cardkingdom.com/")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pricelist request failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (b *BuylistClient) writeCache(body []byte) {
	if err := os.WriteFile(b.cacheFile, body, 0o644); err != nil {
		b.logger.Warn("pricelist cache write failed",
			zap.String("file", b.cacheFile), zap.Error(err))
	}
}

// parseBuylistBody accepts both pricelist shapes the vendor has shipped: a
// {"data": [...]} envelope and a bare array.
func parseBuylistBody(body []byte) ([]buylistItem, error) {
	var envelope buylistPayload
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}
	var bare []buylistItem
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}
	return nil, fmt.Errorf("unable to parse pricelist payload")
}
