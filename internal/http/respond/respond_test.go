package respond_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/tally/internal/auth"
	"github.com/MrJamesThe3rd/tally/internal/catalog"
	"github.com/MrJamesThe3rd/tally/internal/collector"
	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&ledger.ValidationError{Field: "name", Message: "is required"}, http.StatusUnprocessableEntity},
		{fmt.Errorf("row 1: %w", collector.ErrValidation), http.StatusUnprocessableEntity},
		{catalog.ErrInvalidBarcode, http.StatusBadRequest},
		{ledger.ErrNotFound, http.StatusNotFound},
		{collector.ErrNotFound, http.StatusNotFound},
		{ledger.ErrCeilingRequired, http.StatusConflict},
		{fmt.Errorf("%w: timeout", catalog.ErrNetwork), http.StatusBadGateway},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{auth.ErrForbidden, http.StatusForbidden},
		{errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, respond.Status(tt.err))
		})
	}
}

func TestError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.Error(rec, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}
