package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const feedUserAgent = "card-catalog/1.0"

// TrackerClient fetches per-set market pricing from the tracker API. The API
// exposes one endpoint per concern: the set index, then products, pricing and
// skus per set id.
type TrackerClient struct {
	baseURL string
	client  *http.Client
}

// NewTrackerClient builds a tracker client against the given API base.
func NewTrackerClient(baseURL string, timeout time.Duration) *TrackerClient {
	return &TrackerClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// SetIDs returns every set id the tracker knows about.
func (t *TrackerClient) SetIDs(ctx context.Context) ([]int64, error) {
	var payload trackerSetList
	if err := t.getJSON(ctx, t.baseURL+"/sets", &payload); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(payload.Sets))
	for _, item := range payload.Sets {
		ids = append(ids, item.ID)
	}
	return ids, nil
}

// SetProducts returns the set's products keyed by product id, carrying the
// catalog printing id each product maps to.
func (t *TrackerClient) SetProducts(ctx context.Context, setID int64) (map[ProductID]trackerProduct, error) {
	var payload trackerSetProducts
	url := fmt.Sprintf("%s/sets/%d", t.baseURL, setID)
	if err := t.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}
	products := make(map[ProductID]trackerProduct, len(payload.Products))
	for key, product := range payload.Products {
		id, err := ParseProductID(key)
		if err != nil {
			continue
		}
		products[id] = product
	}
	return products, nil
}

// SetPricing returns the set's low/market price points per product and finish.
func (t *TrackerClient) SetPricing(ctx context.Context, setID int64) (map[ProductID]trackerPriceItem, error) {
	var payload trackerSetPricing
	url := fmt.Sprintf("%s/sets/%d/pricing", t.baseURL, setID)
	if err := t.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}
	prices := make(map[ProductID]trackerPriceItem, len(payload.Prices))
	for key, item := range payload.Prices {
		id, err := ParseProductID(key)
		if err != nil {
			continue
		}
		prices[id] = item
	}
	return prices, nil
}

// SetSkus returns the set's sku attributes per product.
func (t *TrackerClient) SetSkus(ctx context.Context, setID int64) (map[ProductID][]trackerSku, error) {
	var payload trackerSetSkus
	url := fmt.Sprintf("%s/sets/%d/skus", t.baseURL, setID)
	if err := t.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}
	skus := make(map[ProductID][]trackerSku, len(payload.Products))
	for key, skuMap := range payload.Products {
		id, err := ParseProductID(key)
		if err != nil {
			continue
		}
		list := make([]trackerSku, 0, len(skuMap))
		for _, sku := range skuMap {
			list = append(list, sku)
		}
		skus[id] = list
	}
	return skus, nil
}

func (t *TrackerClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", feedUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tracker request %s failed with status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
