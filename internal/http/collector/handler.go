package collector

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/collector"
	"github.com/MrJamesThe3rd/tally/internal/http/respond"
)

type Handler struct {
	svc *collector.Service
}

func NewHandler(svc *collector.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Delete("/", h.clear)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/import", h.importCSV)
	r.Post("/upload", h.upload)
}

type recordRequest struct {
	Barcode string           `json:"barcode"`
	Name    string           `json:"name"`
	Price   *decimal.Decimal `json:"price,omitempty"`
}

type recordResponse struct {
	ID      uuid.UUID        `json:"id"`
	Barcode string           `json:"barcode"`
	Name    string           `json:"name"`
	Price   *decimal.Decimal `json:"price,omitempty"`
}

type importResponse struct {
	Imported int `json:"imported"`
}

type uploadResponse struct {
	Sent    []recordResponse `json:"sent"`
	Skipped []recordResponse `json:"skipped"`
	Pending int              `json:"pending"`
	Error   string           `json:"error,omitempty"`
}

func toResponse(rec collector.Record) recordResponse {
	return recordResponse{ID: rec.ID, Barcode: rec.Barcode, Name: rec.Name, Price: rec.Price}
}

func toResponseList(records []collector.Record) []recordResponse {
	resp := make([]recordResponse, len(records))
	for i, rec := range records {
		resp[i] = toResponse(rec)
	}

	return resp
}

func (h *Handler) list(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, toResponseList(h.svc.List()))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	rec, err := h.svc.Add(r.Context(), collector.Params(req))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(rec))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	rec, err := h.svc.Update(r.Context(), id, collector.Params(req))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(rec))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	if err := h.svc.Remove(r.Context(), id); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		respond.BadRequest(w, "clearing the list requires confirm=true")
		return
	}

	if err := h.svc.ClearAll(r.Context()); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respond.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	n, err := h.svc.Import(r.Context(), file)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, importResponse{Imported: n})
}

// upload answers 502 with the partial report when the collection rejects a record.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Upload(r.Context())

	resp := uploadResponse{
		Sent:    toResponseList(report.Sent),
		Skipped: toResponseList(report.Skipped),
		Pending: report.Pending,
	}

	if err != nil {
		resp.Error = err.Error()
		respond.JSON(w, http.StatusBadGateway, resp)

		return
	}

	respond.JSON(w, http.StatusOK, resp)
}
