package httpapi

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/furniture-factory/internal/adapters/export"
	"github.com/andrescamacho/furniture-factory/internal/application/orders"
	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
)

var exportContentTypes = map[export.Format]string{
	export.FormatJSON: "application/json",
	export.FormatXML:  "application/xml",
	export.FormatYAML: "application/yaml",
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (h *handlers) snapshot(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, newSnapshotResponse(h.ent.Snapshot()))
}

func (h *handlers) listOrders(w http.ResponseWriter, r *http.Request) {
	pending := h.ent.PendingOrders()
	resp := make([]orderResponse, 0, len(pending))
	for _, o := range pending {
		resp = append(resp, newOrderResponse(o))
	}
	render.JSON(w, r, resp)
}

func (h *handlers) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.PlaceOrderRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.fail(w, r, http.StatusBadRequest, err)
		return
	}

	order, err := orders.Place(r.Context(), h.ent, h.ent.Clock(), req)
	if err != nil {
		h.fail(w, r, statusFor(err), err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, newOrderResponse(order))
}

func (h *handlers) getJob(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	job, ok := h.ent.Job(orderID)
	if !ok {
		h.fail(w, r, http.StatusNotFound, errors.New("no job for order "+orderID))
		return
	}
	render.JSON(w, r, newJobResponse(job.State()))
}

func (h *handlers) roster(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(export.FormatJSON)
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Encode(&buf, export.FromSnapshot(h.ent.Snapshot()), format); err != nil {
		h.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", exportContentTypes[format])
	_, _ = w.Write(buf.Bytes())
}

func (h *handlers) ledgerEntries(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		h.fail(w, r, http.StatusNotFound, errors.New("ledger is not persisted"))
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.fail(w, r, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	entries, err := h.ledger.FindAll(r.Context(), limit)
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	resp := make([]ledgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, newLedgerEntryResponse(e))
	}
	render.JSON(w, r, resp)
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, code int, err error) {
	render.Status(r, code)
	render.JSON(w, r, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	var validation validator.ValidationErrors
	var unknown *factory.ErrUnknownMaterial
	switch {
	case factory.IsInvalidArgument(err), errors.As(err, &unknown), errors.As(err, &validation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
