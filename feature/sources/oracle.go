package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// OracleClient downloads the card metadata provider's bulk default-cards
// dump: first the bulk-data index, then the dump it points at. The dump runs
// to hundreds of megabytes, so the client carries a long timeout independent
// of the per-request one the other feeds use.
type OracleClient struct {
	baseURL string
	dataset string
	client  *http.Client
}

// NewOracleClient builds a bulk metadata client for the given dataset type.
func NewOracleClient(baseURL, dataset string) *OracleClient {
	return &OracleClient{
		baseURL: baseURL,
		dataset: dataset,
		client:  &http.Client{Timeout: 20 * time.Minute},
	}
}

// BulkCards downloads the full card dump for the client's dataset.
func (o *OracleClient) BulkCards(ctx context.Context) ([]OracleCard, error) {
	var index oracleBulkIndex
	if err := o.getJSON(ctx, o.baseURL+"/bulk-data", &index); err != nil {
		return nil, err
	}

	var downloadURI string
	for _, item := range index.Data {
		if item.Type == o.dataset && item.DownloadURI != nil {
			downloadURI = *item.DownloadURI
			break
		}
	}
	if downloadURI == "" {
		return nil, fmt.Errorf("bulk-data index has no %s download uri", o.dataset)
	}

	var cards []OracleCard
	if err := o.getJSON(ctx, downloadURI, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (o *OracleClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", feedUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bulk metadata request %s failed with status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
