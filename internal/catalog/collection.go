package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const SourceCollection = "collection"

// Collection is the secondary catalog: a REST collection of {ean, nome, valor}
// records that also receives bulk uploads.
type Collection struct {
	baseURL string
	client  *http.Client
}

func NewCollection(baseURL string, timeout time.Duration) *Collection {
	return &Collection{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Collection) Name() string { return SourceCollection }

type collectionRecord struct {
	ID    string `json:"id,omitempty"`
	EAN   string `json:"ean"`
	Nome  string `json:"nome"`
	Valor amount `json:"valor"`
}

// Lookup filters the collection by barcode and keeps only exact matches.
func (c *Collection) Lookup(ctx context.Context, barcode string) (Product, error) {
	q := url.Values{}
	q.Set("ean", barcode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Product{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Product{}, fmt.Errorf("calling collection: %w", err)
	}
	defer resp.Body.Close()

	// The collection answers 404 for a filter with no results.
	if resp.StatusCode == http.StatusNotFound {
		return Product{}, ErrNoMatch
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Product{}, fmt.Errorf("collection error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var records []collectionRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return Product{}, fmt.Errorf("decoding response: %w", err)
	}

	for _, r := range records {
		if strings.TrimSpace(r.EAN) != barcode || strings.TrimSpace(r.Nome) == "" {
			continue
		}

		return Product{
			Barcode: barcode,
			Name:    strings.TrimSpace(r.Nome),
			Price:   firstAmount(r.Valor),
			Source:  SourceCollection,
		}, nil
	}

	return Product{}, ErrNoMatch
}

// Upload is one record sent to the collection.
type Upload struct {
	Barcode string
	Name    string
	Price   *decimal.Decimal
}

type uploadRequest struct {
	EAN   string           `json:"ean"`
	Nome  string           `json:"nome"`
	Valor *decimal.Decimal `json:"valor,omitempty"`
}

func (c *Collection) Create(ctx context.Context, u Upload) error {
	body, err := json.Marshal(uploadRequest{EAN: u.Barcode, Nome: u.Name, Valor: u.Price})
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling collection: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("collection error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	return nil
}
