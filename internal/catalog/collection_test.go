package catalog_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/catalog"
)

func TestCollection_Lookup(t *testing.T) {
	type testCase struct {
		name      string
		status    int
		body      string
		wantName  string
		wantPrice string
		wantErr   error
	}

	tests := []testCase{
		{
			name:      "ExactMatch",
			status:    http.StatusOK,
			body:      `[{"id":"1","ean":"78910001001031","nome":"Other","valor":1},{"id":"2","ean":"7891000100103","nome":"Feijão","valor":"8,50"}]`,
			wantName:  "Feijão",
			wantPrice: "8.5",
		},
		{
			name:    "OnlyPartialMatches",
			status:  http.StatusOK,
			body:    `[{"id":"1","ean":"78910001001031","nome":"Other","valor":1}]`,
			wantErr: catalog.ErrNoMatch,
		},
		{
			name:    "EmptyArray",
			status:  http.StatusOK,
			body:    `[]`,
			wantErr: catalog.ErrNoMatch,
		},
		{
			name:    "NotFoundStatus",
			status:  http.StatusNotFound,
			body:    `"Not found"`,
			wantErr: catalog.ErrNoMatch,
		},
		{
			name:      "MissingPrice",
			status:    http.StatusOK,
			body:      `[{"ean":"7891000100103","nome":"Sal"}]`,
			wantName:  "Sal",
			wantPrice: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "7891000100103", r.URL.Query().Get("ean"))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			got, err := catalog.NewCollection(ts.URL, time.Second).Lookup(context.Background(), "7891000100103")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name)
			assert.True(t, decimal.RequireFromString(tt.wantPrice).Equal(got.Price))
		})
	}
}

func TestCollection_Create(t *testing.T) {
	var received map[string]any

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))

		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	c := catalog.NewCollection(ts.URL+"/", time.Second)
	err := c.Create(context.Background(), catalog.Upload{Barcode: "123", Name: "Arroz"})
	require.NoError(t, err)

	assert.Equal(t, "123", received["ean"])
	assert.Equal(t, "Arroz", received["nome"])
	assert.NotContains(t, received, "valor")
}

func TestCollection_CreateRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	err := catalog.NewCollection(ts.URL, time.Second).Create(context.Background(), catalog.Upload{Barcode: "1", Name: "x"})
	assert.Error(t, err)
}
