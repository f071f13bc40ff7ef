package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"agri-inventory/internal/app"
	"agri-inventory/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const (
	maxJSONBody   = 1 << 20  // 1 MB
	maxImportBody = 20 << 20 // 20 MB
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	log    *logrus.Entry
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, logger *logrus.Logger, allowedOrigins []string) http.Handler {
	h := &Handler{
		svc: svc,
		log: logger.WithField("component", "web"),
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(h.log))
	r.Use(Recoverer(h.log))
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)

	r.Route("/api", func(r chi.Router) {
		// Import bodies are whole export files and get their own limit.
		r.With(RequestBodyLimit(maxImportBody)).Post("/import", h.apiImport)

		r.Group(func(r chi.Router) {
			r.Use(RequestBodyLimit(maxJSONBody))

			r.Get("/dashboard", h.apiDashboard)

			// ── Warehouses ───────────────────────────────────────────────────────
			r.Get("/warehouses", h.apiListWarehouses)
			r.Post("/warehouses", h.apiAddWarehouse)
			r.Delete("/warehouses/{id}", h.apiDeleteWarehouse)

			// ── Items ────────────────────────────────────────────────────────────
			r.Get("/items", h.apiListItems)
			r.Post("/items", h.apiAddItem)
			r.Get("/items/{id}", h.apiGetItem)
			r.Put("/items/{id}", h.apiEditItem)
			r.Delete("/items/{id}", h.apiDeleteItem)
			r.Post("/items/{id}/adjustments", h.apiAdjustStock)

			// ── Transfers & history ──────────────────────────────────────────────
			r.Get("/transfer-candidates", h.apiTransferCandidates)
			r.Post("/transfers", h.apiTransfer)
			r.Get("/transactions", h.apiListTransactions)

			// ── Data ─────────────────────────────────────────────────────────────
			r.Get("/export", h.apiExport)
			r.Get("/export/history", h.apiExportHistory)
			r.Post("/save", h.apiSave)
			r.Delete("/data", h.apiClearAll)
		})
	})

	h.router = r
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status     string `json:"status"`
		Warehouses int    `json:"warehouses"`
		Items      int    `json:"items"`
	}
	res, err := h.svc.GetDashboard(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, response{Status: "ok", Warehouses: res.Summary.TotalWarehouses, Items: res.Summary.TotalItems})
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// confirmed reports whether the request carries ?confirm=yes (or true).
func confirmed(r *http.Request) bool {
	switch strings.ToLower(r.URL.Query().Get("confirm")) {
	case "yes", "true", "1":
		return true
	}
	return false
}

func (h *Handler) apiDashboard(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetDashboard(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) apiListWarehouses(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListWarehouses(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) apiAddWarehouse(w http.ResponseWriter, r *http.Request) {
	var body app.AddWarehouseRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	wh, err := h.svc.AddWarehouse(r.Context(), body)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, wh)
}

func (h *Handler) apiDeleteWarehouse(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteWarehouse(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) apiListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.svc.ListItems(r.Context(), core.ItemFilter{
		WarehouseID: q.Get("warehouse"),
		Search:      q.Get("search"),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) apiAddItem(w http.ResponseWriter, r *http.Request) {
	var body app.AddItemRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	it, err := h.svc.AddItem(r.Context(), body)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, it)
}

func (h *Handler) apiGetItem(w http.ResponseWriter, r *http.Request) {
	it, err := h.svc.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, it)
}

func (h *Handler) apiEditItem(w http.ResponseWriter, r *http.Request) {
	var body app.EditItemRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	body.ID = chi.URLParam(r, "id")
	it, err := h.svc.EditItem(r.Context(), body)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, it)
}

func (h *Handler) apiDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) apiAdjustStock(w http.ResponseWriter, r *http.Request) {
	var body app.AdjustStockRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	body.ItemID = chi.URLParam(r, "id")
	res, err := h.svc.AdjustStock(r.Context(), body)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, res)
}

func (h *Handler) apiTransferCandidates(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListTransferCandidates(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) apiTransfer(w http.ResponseWriter, r *http.Request) {
	var body app.TransferRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	res, err := h.svc.TransferStock(r.Context(), body)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, res)
}

func transactionFilter(r *http.Request) core.TransactionFilter {
	q := r.URL.Query()
	return core.TransactionFilter{
		Text: q.Get("search"),
		Type: core.TransactionType(q.Get("type")),
		Date: q.Get("date"),
	}
}

func (h *Handler) apiListTransactions(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListTransactions(r.Context(), transactionFilter(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// ── Data ──────────────────────────────────────────────────────────────────────

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// apiExport streams the full export as an attachment. ?format=xlsx selects the workbook.
func (h *Handler) apiExport(w http.ResponseWriter, r *http.Request) {
	var (
		buf         bytes.Buffer
		res         *app.ExportResult
		err         error
		contentType string
	)
	switch app.ImportFormat(strings.ToLower(r.URL.Query().Get("format"))) {
	case "", app.FormatJSON:
		res, err = h.svc.ExportData(r.Context(), &buf)
		contentType = "application/json"
	case app.FormatXLSX:
		res, err = h.svc.ExportWorkbook(r.Context(), &buf)
		contentType = xlsxContentType
	default:
		writeError(w, r, "format must be json or xlsx", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeAttachment(w, res.Filename, contentType, buf.Bytes())
}

func (h *Handler) apiExportHistory(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	res, err := h.svc.ExportHistory(r.Context(), &buf, transactionFilter(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeAttachment(w, res.Filename, "application/json", buf.Bytes())
}

func writeAttachment(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(data)
}

// apiImport decodes and validates the uploaded export. Without ?confirm=yes it
// only returns the preview; with it, all current data is replaced.
func (h *Handler) apiImport(w http.ResponseWriter, r *http.Request) {
	format := app.ImportFormat(strings.ToLower(r.URL.Query().Get("format")))
	switch format {
	case "":
		format = app.FormatJSON
		if strings.Contains(r.Header.Get("Content-Type"), "spreadsheetml") {
			format = app.FormatXLSX
		}
	case app.FormatJSON, app.FormatXLSX:
	default:
		writeError(w, r, "format must be json or xlsx", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "import file too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return
		}
		writeError(w, r, "could not read upload: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	preview, err := h.svc.PreviewImport(r.Context(), bytes.NewReader(data), format)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	type response struct {
		Preview  *app.ImportPreview `json:"preview"`
		Imported *app.ImportResult  `json:"imported,omitempty"`
	}
	if !confirmed(r) {
		writeJSON(w, response{Preview: preview})
		return
	}
	res, err := h.svc.ImportData(r.Context(), preview)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, response{Preview: preview, Imported: res})
}

func (h *Handler) apiSave(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Save(r.Context()); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiClearAll deletes everything. It requires ?confirm=yes.
func (h *Handler) apiClearAll(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		writeError(w, r, "clearing all data requires ?confirm=yes", "CONFIRMATION_REQUIRED", http.StatusBadRequest)
		return
	}
	if err := h.svc.ClearAllData(r.Context()); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
