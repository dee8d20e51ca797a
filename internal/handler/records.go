package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/dietdesk/internal/collection"
	"github.com/dukerupert/dietdesk/internal/controller"
	"github.com/dukerupert/dietdesk/internal/export"
	"github.com/dukerupert/dietdesk/internal/filter"
)

type record interface {
	collection.Record
	filter.Filterable
}

// recordController is the controller surface shared by the three entities.
type recordController[T record, F any] interface {
	controller.Editor[T, F]
	List(c filter.Criteria) []T
	Delete(id int64) bool
	Page() *controller.Page[T, F]
}

type formResponse[F any] struct {
	Form    F              `json:"form"`
	Editing int64          `json:"editing,omitempty"`
	Choices map[string]any `json:"choices"`
}

// recordHandler serves list, form, CRUD, export and print routes for one
// entity.
type recordHandler[T record, F any] struct {
	ctrl           recordController[T, F]
	noun           string
	categoryParams []string
	choices        map[string]any
	table          func([]T) export.Table
	logger         *slog.Logger
}

func (h *recordHandler[T, F]) notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": h.noun + " not found"})
}

func (h *recordHandler[T, F]) visible(w http.ResponseWriter, r *http.Request) ([]T, bool) {
	c, err := filter.FromQuery(r.URL.Query(), h.categoryParams...)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return nil, false
	}
	return h.ctrl.List(c), true
}

func (h *recordHandler[T, F]) List(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.visible(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *recordHandler[T, F]) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	rec, ok := h.ctrl.Get(id)
	if !ok {
		h.notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Create decodes the body over a blank form, so omitted fields keep their
// defaults.
func (h *recordHandler[T, F]) Create(w http.ResponseWriter, r *http.Request) {
	page := h.ctrl.Page()
	if err := page.Fill(func(f *F) error { return json.NewDecoder(r.Body).Decode(f) }); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	rec, _, err := page.Submit()
	if err != nil {
		writeMutationError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// Update decodes the body over the record's current form, so omitted fields
// keep their stored values.
func (h *recordHandler[T, F]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	page := h.ctrl.Page()
	if !page.EditOpen(id) {
		h.notFound(w)
		return
	}
	if err := page.Fill(func(f *F) error { return json.NewDecoder(r.Body).Decode(f) }); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	rec, found, err := page.Submit()
	if err != nil {
		writeMutationError(w, err, h.logger)
		return
	}
	if !found {
		h.notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *recordHandler[T, F]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if !h.ctrl.Delete(id) {
		h.notFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *recordHandler[T, F]) NewForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, formResponse[F]{
		Form:    h.ctrl.BlankForm(),
		Choices: h.choices,
	})
}

func (h *recordHandler[T, F]) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	rec, ok := h.ctrl.Get(id)
	if !ok {
		h.notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, formResponse[F]{
		Form:    h.ctrl.FormFor(rec),
		Editing: id,
		Choices: h.choices,
	})
}

// ExportCSV downloads the visible rows.
func (h *recordHandler[T, F]) ExportCSV(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.visible(w, r)
	if !ok {
		return
	}
	t := h.table(rows)

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, t); err != nil {
		h.logger.Error("export csv", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to export"})
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+t.Filename+`"`)
	w.Write(buf.Bytes())
}

// Print renders the visible rows as a page that opens the print dialog.
func (h *recordHandler[T, F]) Print(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.visible(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.Print(&buf, h.table(rows)); err != nil {
		h.logger.Error("print view", "error", err)
		http.Error(w, "failed to render print view", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
