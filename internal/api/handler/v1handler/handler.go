// Package v1handler implements the JSON validation API mounted under /v1.
package v1handler

import (
	"context"
	"io"
	"net/http"
	"validator/internal/validation"
	"validator/pkg/controller"
	"validator/pkg/logger"
	"validator/pkg/serrors"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.uber.org/zap"
)

// Deps are the services the v1 API depends on.
type Deps struct {
	Validation validation.Service
}

type Handler struct {
	deps Deps
}

func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// Register mounts the v1 routes on mux. Any other request under /v1/ gets a
// JSON error: 405 for a known path, 404 otherwise.
func (h *Handler) Register(mux *http.ServeMux) {
	routes := []struct {
		method string
		path   string
		op     operation
	}{
		{http.MethodPost, "/v1/validate", h.Validate},
		{http.MethodGet, "/v1/schema", h.Schema},
		{http.MethodPost, "/v1/schema/refresh", h.RefreshSchema},
	}
	for _, route := range routes {
		mux.HandleFunc(route.method+" "+route.path, h.serve(route.op))
		mux.HandleFunc(route.path, h.methodNotAllowed(route.method))
	}
	mux.HandleFunc("/v1/", h.serve(notFound))
}

func (h *Handler) methodNotAllowed(allow string) http.HandlerFunc {
	op := h.serve(func(_ context.Context, r *http.Request) (encoder, error) {
		return nil, serrors.With(serrors.ErrMethodNotAllowed, "method %s is not allowed on %s", r.Method, r.URL.Path)
	})

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		op(w, r)
	}
}

func notFound(_ context.Context, r *http.Request) (encoder, error) {
	return nil, serrors.With(serrors.ErrNotFound, "no route for %s %s", r.Method, r.URL.Path)
}

type operation func(ctx context.Context, r *http.Request) (encoder, error)

func (h *Handler) serve(op operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := op(r.Context(), r)
		if err != nil {
			e := h.NewError(r.Context(), err)
			writeJSON(w, e.StatusCode, e)

			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func writeJSON(w http.ResponseWriter, status int, v encoder) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	v.Encode(e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// Validate handles POST /v1/validate.
func (h *Handler) Validate(ctx context.Context, r *http.Request) (encoder, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, serrors.Wrap(serrors.ErrBadRequest, err, "request body too large")
		}

		return nil, errors.Wrap(err, "read request body")
	}

	var req ValidateRequest
	d := jx.DecodeBytes(body)
	if err := req.Decode(d); err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body")
	}
	if err := d.Skip(); !errors.Is(err, io.EOF) {
		return nil, serrors.With(serrors.ErrBadRequest, "invalid request body: unexpected data after the object")
	}
	source, err := req.Source()
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body")
	}

	result, err := h.deps.Validation.Validate(ctx, source)
	if err != nil {
		return nil, err //nolint: wrapcheck
	}

	res := ValidateResponse{
		Valid:  result.Valid(),
		Errors: result.Errors,
		Schema: SchemaInfo{Fingerprint: result.SchemaFingerprint},
	}
	// a refresh may have replaced the snapshot since; only describe it if it
	// is still the one that produced the result.
	if snapshot := h.deps.Validation.Snapshot(); snapshot != nil && snapshot.Fingerprint == result.SchemaFingerprint {
		res.Schema = NewSchemaInfo(snapshot)
	}

	return res, nil
}

// Schema handles GET /v1/schema.
func (h *Handler) Schema(_ context.Context, _ *http.Request) (encoder, error) {
	snapshot := h.deps.Validation.Snapshot()
	if snapshot == nil {
		return nil, serrors.With(serrors.ErrUnavailable, "schema is not loaded")
	}

	return NewSchemaInfo(snapshot), nil
}

// RefreshSchema handles POST /v1/schema/refresh.
func (h *Handler) RefreshSchema(ctx context.Context, _ *http.Request) (encoder, error) {
	snapshot, err := h.deps.Validation.Refresh(ctx)
	if err != nil {
		return nil, err //nolint: wrapcheck
	}

	return NewSchemaInfo(snapshot), nil
}

// NewError maps err to its response. The status follows the error's kind;
// internal errors are logged and their details are not exposed.
func (h *Handler) NewError(ctx context.Context, err error) *ErrorStatusCode {
	kind := serrors.KindOf(err)
	status := controller.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		kind = serrors.ErrInternal
	}

	msg := err.Error()
	if kind == serrors.ErrInternal {
		logger.Error(ctx, "internal error", zap.Error(err))
		msg = "internal error"
	} else {
		logger.Warn(ctx, "request failed", zap.String("code", kind.Error()), zap.Error(err))
	}

	return &ErrorStatusCode{
		StatusCode: status,
		Response: ErrorResponse{
			Code:    kind.Error(),
			Message: msg,
		},
	}
}
