package budget

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Put("/", h.set)
	r.Delete("/", h.unset)
}

type budgetResponse struct {
	Ceiling    *decimal.Decimal `json:"ceiling"`
	Total      decimal.Decimal  `json:"total"`
	Remaining  *decimal.Decimal `json:"remaining"`
	OverBudget bool             `json:"over_budget"`
}

type setRequest struct {
	Ceiling *decimal.Decimal `json:"ceiling"`
}

func (h *Handler) get(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, h.snapshot())
}

func (h *Handler) set(w http.ResponseWriter, r *http.Request) {
	var req setRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	if req.Ceiling == nil {
		respond.BadRequest(w, "ceiling is required; use DELETE to unset it")
		return
	}

	if err := h.svc.SetBudgetCeiling(r.Context(), req.Ceiling); err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, h.snapshot())
}

func (h *Handler) unset(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SetBudgetCeiling(r.Context(), nil); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) snapshot() budgetResponse {
	resp := budgetResponse{Total: h.svc.AggregateTotal()}

	if c, ok := h.svc.Ceiling(); ok {
		resp.Ceiling = &c
	}

	if rem, ok := h.svc.Remaining(); ok {
		resp.Remaining = &rem
		resp.OverBudget = rem.IsNegative()
	}

	return resp
}
