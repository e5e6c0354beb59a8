package v1handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"validator/internal/api/handler/v1handler"
	"validator/pkg/controller"
	"validator/pkg/domain"
	"validator/pkg/serrors"

	mockvalidation "validator/internal/validation/mock"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var snapshot = &domain.SchemaSnapshot{
	URL:         "https://schema.example/schedule.xml.xsd",
	Fingerprint: "0123456789abcdef0123456789abcdef",
	FetchedAt:   time.Date(2024, 12, 27, 10, 0, 0, 0, time.UTC),
}

func newServer(t *testing.T) (*mockvalidation.MockService, http.Handler) {
	t.Helper()

	ctrl := gomock.NewController(t)
	service := mockvalidation.NewMockService(ctrl)

	mux := http.NewServeMux()
	v1handler.New(v1handler.Deps{Validation: service}).Register(mux)

	return service, controller.WithMaxBytes(1 << 10)(mux)
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestValidate_Inline(t *testing.T) {
	service, h := newServer(t)

	service.EXPECT().Validate(gomock.Any(), domain.InlineDocument([]byte("<schedule/>"))).
		Return(domain.ValidationResult{
			Errors:            []string{"missing conference"},
			SchemaFingerprint: snapshot.Fingerprint,
		}, nil)
	service.EXPECT().Snapshot().Return(snapshot)

	rec := do(h, http.MethodPost, "/v1/validate", `{"document":"<schedule/>"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{
		"valid": false,
		"errors": ["missing conference"],
		"schema": {
			"url": "https://schema.example/schedule.xml.xsd",
			"fingerprint": "0123456789abcdef0123456789abcdef",
			"fetchedAt": "2024-12-27 10:00:00 UTC"
		}
	}`, rec.Body.String())
}

func TestValidate_RemoteValid(t *testing.T) {
	service, h := newServer(t)

	service.EXPECT().Validate(gomock.Any(), domain.RemoteDocument("https://example.com/s.xml")).
		Return(domain.ValidationResult{Errors: []string{}, SchemaFingerprint: snapshot.Fingerprint}, nil)
	service.EXPECT().Snapshot().Return(snapshot)

	rec := do(h, http.MethodPost, "/v1/validate", `{"url":"https://example.com/s.xml","extra":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"valid":true`)
	require.Contains(t, rec.Body.String(), `"errors":[]`)
}

func TestValidate_SnapshotReplacedMeanwhile(t *testing.T) {
	service, h := newServer(t)

	service.EXPECT().Validate(gomock.Any(), gomock.Any()).
		Return(domain.ValidationResult{SchemaFingerprint: "older"}, nil)
	service.EXPECT().Snapshot().Return(snapshot)

	rec := do(h, http.MethodPost, "/v1/validate", `{"document":"<x/>"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"valid":true,"errors":[],"schema":{"url":"","fingerprint":"older","fetchedAt":""}}`,
		rec.Body.String())
}

func TestValidate_BadRequests(t *testing.T) {
	tests := map[string]string{
		"not json":      `<schedule/>`,
		"empty object":  `{}`,
		"both fields":   `{"document":"<x/>","url":"https://example.com"}`,
		"wrong type":    `{"document":42}`,
		"too large":     `{"document":"` + strings.Repeat("x", 2<<10) + `"}`,
		"second value":  `{"document":"<x/>"} {}`,
		"trailing text": `{"document":"<x/>"}garbage`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, h := newServer(t)

			rec := do(h, http.MethodPost, "/v1/validate", body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Contains(t, rec.Body.String(), `"code":"BAD_REQUEST"`)
		})
	}
}

func TestValidate_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "fetch",
			err:        serrors.With(serrors.ErrFetch, "unexpected status 404"),
			wantStatus: http.StatusBadGateway,
			wantCode:   "FETCH",
		},
		{
			name:       "unavailable",
			err:        serrors.With(serrors.ErrUnavailable, "schema is not loaded"),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "UNAVAILABLE",
		},
		{
			name:       "timeout",
			err:        serrors.Wrap(serrors.ErrTimeout, context.DeadlineExceeded, "request deadline exceeded"),
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   "TIMEOUT",
		},
		{
			name:       "internal",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, h := newServer(t)
			service.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(domain.ValidationResult{}, tt.err)

			rec := do(h, http.MethodPost, "/v1/validate", `{"document":"<x/>"}`)
			require.Equal(t, tt.wantStatus, rec.Code)
			require.Contains(t, rec.Body.String(), `"code":"`+tt.wantCode+`"`)
			require.NotContains(t, rec.Body.String(), "disk on fire")
		})
	}
}

func TestSchema(t *testing.T) {
	service, h := newServer(t)

	service.EXPECT().Snapshot().Return(snapshot)

	rec := do(h, http.MethodGet, "/v1/schema", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{
		"url": "https://schema.example/schedule.xml.xsd",
		"fingerprint": "0123456789abcdef0123456789abcdef",
		"fetchedAt": "2024-12-27 10:00:00 UTC"
	}`, rec.Body.String())
}

func TestSchema_NotLoaded(t *testing.T) {
	service, h := newServer(t)

	service.EXPECT().Snapshot().Return(nil)

	rec := do(h, http.MethodGet, "/v1/schema", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.JSONEq(t, `{"code":"UNAVAILABLE","message":"schema is not loaded"}`, rec.Body.String())
}

func TestRefreshSchema(t *testing.T) {
	service, h := newServer(t)

	service.EXPECT().Refresh(gomock.Any()).Return(snapshot, nil)

	rec := do(h, http.MethodPost, "/v1/schema/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), snapshot.Fingerprint)
}

func TestRefreshSchema_ParseFailure(t *testing.T) {
	service, h := newServer(t)

	service.EXPECT().Refresh(gomock.Any()).
		Return(nil, serrors.With(serrors.ErrSchemaParse, "could not compile schema"))

	rec := do(h, http.MethodPost, "/v1/schema/refresh", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), `"code":"SCHEMA_PARSE"`)
}

func TestValidate_TrailingWhitespace(t *testing.T) {
	service, h := newServer(t)

	service.EXPECT().Validate(gomock.Any(), domain.InlineDocument([]byte("<schedule/>"))).
		Return(domain.ValidationResult{SchemaFingerprint: snapshot.Fingerprint}, nil)
	service.EXPECT().Snapshot().Return(snapshot)

	rec := do(h, http.MethodPost, "/v1/validate", "{\"document\":\"<schedule/>\"}\n")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutes_Unmatched(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		path      string
		wantCode  int
		wantBody  string
		wantAllow string
	}{
		{
			name:      "wrong method on validate",
			method:    http.MethodGet,
			path:      "/v1/validate",
			wantCode:  http.StatusMethodNotAllowed,
			wantBody:  `"code":"METHOD_NOT_ALLOWED"`,
			wantAllow: http.MethodPost,
		},
		{
			name:      "wrong method on schema",
			method:    http.MethodDelete,
			path:      "/v1/schema",
			wantCode:  http.StatusMethodNotAllowed,
			wantBody:  `"code":"METHOD_NOT_ALLOWED"`,
			wantAllow: http.MethodGet,
		},
		{
			name:      "wrong method on refresh",
			method:    http.MethodGet,
			path:      "/v1/schema/refresh",
			wantCode:  http.StatusMethodNotAllowed,
			wantBody:  `"code":"METHOD_NOT_ALLOWED"`,
			wantAllow: http.MethodPost,
		},
		{
			name:     "unknown path",
			method:   http.MethodGet,
			path:     "/v1/nope",
			wantCode: http.StatusNotFound,
			wantBody: `"code":"NOT_FOUND"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, h := newServer(t)

			rec := do(h, tt.method, tt.path, "")
			require.Equal(t, tt.wantCode, rec.Code)
			require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			require.Contains(t, rec.Body.String(), tt.wantBody)
			require.Equal(t, tt.wantAllow, rec.Header().Get("Allow"))
		})
	}
}

func TestNewError(t *testing.T) {
	h := v1handler.New(v1handler.Deps{})
	ctx := context.Background()

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "plain error is internal",
			err:         errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "INTERNAL",
			wantMessage: "internal error",
		},
		{
			name:        "bare kind",
			err:         serrors.ErrBadRequest,
			wantStatus:  http.StatusBadRequest,
			wantCode:    "BAD_REQUEST",
			wantMessage: "BAD_REQUEST",
		},
		{
			name:        "wrapped cause is shown",
			err:         serrors.Wrap(serrors.ErrFetch, errors.New("connection refused"), "could not fetch document"),
			wantStatus:  http.StatusBadGateway,
			wantCode:    "FETCH",
			wantMessage: "could not fetch document: connection refused",
		},
		{
			name:        "schema parse",
			err:         serrors.KindOnly(serrors.ErrSchemaParse),
			wantStatus:  http.StatusBadGateway,
			wantCode:    "SCHEMA_PARSE",
			wantMessage: "SCHEMA_PARSE",
		},
		{
			name:        "internal kind",
			err:         serrors.With(serrors.ErrInternal, "secret detail"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "INTERNAL",
			wantMessage: "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := h.NewError(ctx, tt.err)
			require.Equal(t, tt.wantStatus, res.StatusCode)
			require.Equal(t, tt.wantCode, res.Response.Code)
			require.Equal(t, tt.wantMessage, res.Response.Message)
		})
	}
}
