package invoices

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harborlight/harborlight-ops/internal/shared"
)

// PDFRenderer converts an HTML document into PDF bytes.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Handler manages invoice endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	pdf     PDFRenderer
	now     func() time.Time
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, pdf PDFRenderer) *Handler {
	return &Handler{logger: logger, service: service, pdf: pdf, now: time.Now}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listInvoices)
	r.Post("/", h.createInvoice)
	r.Get("/check-number", h.checkNumber)
	r.Get("/summary", h.summary)
	r.Get("/report", h.reportHTML)
	r.Get("/report.pdf", h.reportPDF)
	r.Get("/{id}", h.getInvoice)
	r.Put("/{id}", h.updateInvoice)
	r.Delete("/{id}", h.deleteInvoice)
}

// listInvoices returns derived invoice views, filterable by status,
// vendor_id and exact invoice_number.
func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, perPage := shared.PageFromQuery(q)
	var vendorID int64
	if v := q.Get("vendor_id"); v != "" {
		vendorID, _ = strconv.ParseInt(v, 10, 64)
	}

	result, err := h.service.List(r.Context(), ListInvoicesRequest{
		Status:        q.Get("status"),
		VendorID:      vendorID,
		InvoiceNumber: q.Get("invoice_number"),
		Limit:         perPage,
		Offset:        (page - 1) * perPage,
	})
	if err != nil {
		h.fail(w, "list invoices", err)
		return
	}
	h.respond(w, http.StatusOK, result)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	view, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get invoice", err)
		return
	}
	h.respond(w, http.StatusOK, view)
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var input InvoiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.fail(w, "create invoice", err)
		return
	}
	h.respond(w, http.StatusCreated, result)
}

func (h *Handler) updateInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var input InvoiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.fail(w, "update invoice", err)
		return
	}
	h.respond(w, http.StatusOK, result)
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete invoice", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// checkNumber answers the advisory duplicate-number probe used by the
// invoice form while the user types.
func (h *Handler) checkNumber(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var excludeID int64
	if v := q.Get("exclude_id"); v != "" {
		excludeID, _ = strconv.ParseInt(v, 10, 64)
	}
	exists := h.service.CheckNumber(r.Context(), q.Get("number"), excludeID)
	h.respond(w, http.StatusOK, map[string]bool{"exists": exists})
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Summary(r.Context())
	if err != nil {
		h.fail(w, "invoice summary", err)
		return
	}
	h.respond(w, http.StatusOK, counts)
}

func (h *Handler) reportHTML(w http.ResponseWriter, r *http.Request) {
	data, err := h.buildReport(r.Context())
	if err != nil {
		h.fail(w, "build report", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := RenderReportHTML(w, *data); err != nil {
		h.logger.Error("render report", slog.Any("error", err))
	}
}

func (h *Handler) reportPDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		h.respondError(w, http.StatusServiceUnavailable, "PDF rendering not configured")
		return
	}
	data, err := h.buildReport(r.Context())
	if err != nil {
		h.fail(w, "build report", err)
		return
	}
	var buf bytes.Buffer
	if err := RenderReportHTML(&buf, *data); err != nil {
		h.fail(w, "render report", err)
		return
	}
	pdf, err := h.pdf.RenderHTML(r.Context(), buf.String())
	if err != nil {
		h.fail(w, "convert report to pdf", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="invoice-report.pdf"`)
	_, _ = w.Write(pdf)
}

func (h *Handler) buildReport(ctx context.Context) (*ReportData, error) {
	rows, err := h.service.Report(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := h.service.Summary(ctx)
	if err != nil {
		return nil, err
	}
	data := BuildReport(rows, counts, h.now())
	return &data, nil
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.respondError(w, http.StatusBadRequest, "invalid invoice ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) respond(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("encode response", slog.Any("error", err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respond(w, status, map[string]string{"error": message})
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		h.respondError(w, http.StatusNotFound, shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrValidation), errors.Is(err, shared.ErrVendorNotFound):
		h.respondError(w, http.StatusBadRequest, shared.UserSafeMessage(err))
	default:
		h.logger.Error(op, slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, shared.UserSafeMessage(err))
	}
}
