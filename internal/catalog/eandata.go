package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const SourceEANData = "eandata"

// EANData is the primary catalog, queried through its JSON feed.
type EANData struct {
	baseURL string
	key     string
	client  *http.Client
}

func NewEANData(baseURL, key string, timeout time.Duration) *EANData {
	return &EANData{
		baseURL: baseURL,
		key:     key,
		client:  &http.Client{Timeout: timeout},
	}
}

func (e *EANData) Name() string { return SourceEANData }

type eanDataResponse struct {
	Product *struct {
		Title      string `json:"title"`
		Attributes struct {
			Product string `json:"product"`
			Price   amount `json:"price"`
			MSRP    amount `json:"msrp"`
		} `json:"attributes"`
	} `json:"product"`
}

// Lookup only accepts a product carrying a non-empty name or title.
func (e *EANData) Lookup(ctx context.Context, barcode string) (Product, error) {
	q := url.Values{}
	q.Set("v", "3")
	q.Set("keycode", e.key)
	q.Set("mode", "json")
	q.Set("find", barcode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Product{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return Product{}, fmt.Errorf("calling eandata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Product{}, ErrNoMatch
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Product{}, fmt.Errorf("eandata error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var data eanDataResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Product{}, fmt.Errorf("decoding response: %w", err)
	}

	if data.Product == nil {
		return Product{}, ErrNoMatch
	}

	name := strings.TrimSpace(data.Product.Attributes.Product)
	if name == "" {
		name = strings.TrimSpace(data.Product.Title)
	}

	if name == "" {
		return Product{}, ErrNoMatch
	}

	return Product{
		Barcode: barcode,
		Name:    name,
		Price:   firstAmount(data.Product.Attributes.Price, data.Product.Attributes.MSRP),
		Source:  SourceEANData,
	}, nil
}
