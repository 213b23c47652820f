package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	"github.com/MrJamesThe3rd/tally/internal/report"
)

type Handler struct {
	svc *report.Service
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.summary)
	r.Get("/download", h.download)
}

type summaryResponse struct {
	Items      int              `json:"items"`
	Total      decimal.Decimal  `json:"total"`
	Ceiling    *decimal.Decimal `json:"ceiling"`
	Remaining  *decimal.Decimal `json:"remaining"`
	OverBudget bool             `json:"over_budget"`
	Text       string           `json:"text"`
}

func (h *Handler) summary(w http.ResponseWriter, _ *http.Request) {
	sum := h.svc.Summary()

	respond.JSON(w, http.StatusOK, summaryResponse{
		Items:      len(sum.Items),
		Total:      sum.Total,
		Ceiling:    sum.Ceiling,
		Remaining:  sum.Remaining,
		OverBudget: sum.OverBudget,
		Text:       h.svc.Text(),
	})
}

// download builds the archive in memory first so a failure still yields a clean error response.
func (h *Handler) download(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := h.svc.WriteArchive(&buf); err != nil {
		respond.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"tally_%s.zip\"", time.Now().Format("20060102")))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write zip", "error", err)
	}
}
