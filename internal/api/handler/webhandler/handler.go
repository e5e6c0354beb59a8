// Package webhandler serves the HTML form for validating a schedule document.
package webhandler

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net/http"
	"validator/internal/validation"
	"validator/pkg/controller"
	"validator/pkg/domain"
	"validator/pkg/logger"

	"go.uber.org/zap"
)

// FieldName is the form field holding the document or its URL.
const FieldName = "schedulexml"

// maxMultipartMemory is how much of a multipart form is kept in memory.
const maxMultipartMemory = 1 << 20

//go:embed templates/index.html
var templates embed.FS

var indexTemplate = template.Must(template.ParseFS(templates, "templates/index.html")) //nolint: gochecknoglobals

type schemaView struct {
	URL         string
	Fingerprint string
	FetchedAt   string
}

type page struct {
	Schema    schemaView
	Submitted bool
	Input     string
	Errors    []string
}

// Deps are the services the web handler depends on.
type Deps struct {
	Validation validation.Service
	// SchemaURL is shown while no snapshot is loaded.
	SchemaURL string
}

type Handler struct {
	deps Deps
}

func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// Register mounts the form routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("POST /validate", h.Validate)
}

// parseForm fills r.PostForm from a url-encoded or multipart body.
func parseForm(r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return nil
	}

	return r.ParseMultipartForm(maxMultipartMemory)
}

// Index renders the empty form.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, page{Schema: h.schemaView(h.deps.Validation.Snapshot())})
}

// Validate validates the submitted field and renders the form with the
// result. A missing field is a bad request; an empty one is validated as an
// empty document.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := parseForm(r); err != nil {
		logger.Warn(ctx, "could not parse form", zap.Error(err))
		status := http.StatusBadRequest
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
		}
		w.WriteHeader(status)

		return
	}
	if !r.PostForm.Has(FieldName) {
		logger.Warn(ctx, "form field is missing", zap.String("field", FieldName))
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	input := r.PostForm.Get(FieldName)
	source := domain.ParseDocumentSource(input)
	if source.Kind() == domain.DocumentRemote {
		ctx = logger.WithFields(ctx, zap.String("documentURL", source.URL()))
	}

	result, err := h.deps.Validation.Validate(ctx, source)
	if err != nil {
		logger.Warn(ctx, "could not validate document", zap.Error(err))
		w.WriteHeader(controller.HTTPStatus(err))

		return
	}

	view := h.schemaView(h.deps.Validation.Snapshot())
	if view.Fingerprint != result.SchemaFingerprint {
		// refreshed since; name the schema the result was produced with.
		view = schemaView{URL: view.URL, Fingerprint: result.SchemaFingerprint}
	}

	h.render(w, r, page{
		Schema:    view,
		Submitted: true,
		Input:     input,
		Errors:    result.Errors,
	})
}

func (h *Handler) schemaView(snapshot *domain.SchemaSnapshot) schemaView {
	if snapshot == nil {
		return schemaView{URL: h.deps.SchemaURL}
	}

	return schemaView{
		URL:         snapshot.URL,
		Fingerprint: snapshot.Fingerprint,
		FetchedAt:   snapshot.FetchedAtString(),
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, p page) {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, p); err != nil {
		logger.Error(r.Context(), "could not render page", zap.Error(fmt.Errorf("could not execute template: %w", err)))
		w.WriteHeader(http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
