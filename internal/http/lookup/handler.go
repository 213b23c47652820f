package lookup

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/catalog"
	"github.com/MrJamesThe3rd/tally/internal/http/respond"
)

type Resolver interface {
	Resolve(ctx context.Context, barcode string) (catalog.Result, error)
}

type Handler struct {
	resolver Resolver
}

func NewHandler(resolver Resolver) *Handler {
	return &Handler{resolver: resolver}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{barcode}", h.lookup)
}

type productResponse struct {
	Barcode string          `json:"barcode"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Source  string          `json:"source"`
}

type lookupResponse struct {
	Status      string           `json:"status"`
	Product     *productResponse `json:"product,omitempty"`
	Unreachable []string         `json:"unreachable,omitempty"`
}

// lookup answers 404 with a body when no catalog has the barcode, so clients
// can still show which catalogs could not be checked.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	res, err := h.resolver.Resolve(r.Context(), chi.URLParam(r, "barcode"))
	if err != nil {
		respond.Error(w, err)
		return
	}

	resp := lookupResponse{Status: res.Status.String(), Unreachable: res.Unreachable}

	if !res.Found() {
		respond.JSON(w, http.StatusNotFound, resp)
		return
	}

	resp.Product = &productResponse{
		Barcode: res.Product.Barcode,
		Name:    res.Product.Name,
		Price:   res.Product.Price,
		Source:  res.Product.Source,
	}

	respond.JSON(w, http.StatusOK, resp)
}
