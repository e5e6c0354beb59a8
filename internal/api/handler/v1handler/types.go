package v1handler

import (
	"validator/pkg/domain"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// ValidateRequest is the body of POST /v1/validate. Exactly one of Document
// and URL must be set.
type ValidateRequest struct {
	Document string
	URL      string
}

// Decode decodes ValidateRequest from json.
func (r *ValidateRequest) Decode(d *jx.Decoder) error {
	if r == nil {
		return errors.New("invalid: unable to decode ValidateRequest to nil")
	}

	if err := d.ObjBytes(func(d *jx.Decoder, k []byte) error {
		switch string(k) {
		case "document":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "decode field \"document\"")
			}
			r.Document = v
		case "url":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "decode field \"url\"")
			}
			r.URL = v
		default:
			return d.Skip() //nolint: wrapcheck
		}

		return nil
	}); err != nil {
		return errors.Wrap(err, "decode ValidateRequest")
	}

	return nil
}

// Source converts the request into a document source.
func (r *ValidateRequest) Source() (domain.DocumentSource, error) {
	switch {
	case r.Document != "" && r.URL != "":
		return domain.DocumentSource{}, errors.New("only one of document or url may be set")
	case r.Document != "":
		return domain.InlineDocument([]byte(r.Document)), nil
	case r.URL != "":
		return domain.RemoteDocument(r.URL), nil
	default:
		return domain.DocumentSource{}, errors.New("one of document or url is required")
	}
}

// SchemaInfo describes the snapshot a response was produced with.
type SchemaInfo struct {
	URL         string
	Fingerprint string
	FetchedAt   string
}

// NewSchemaInfo returns the metadata of snapshot.
func NewSchemaInfo(snapshot *domain.SchemaSnapshot) SchemaInfo {
	return SchemaInfo{
		URL:         snapshot.URL,
		Fingerprint: snapshot.Fingerprint,
		FetchedAt:   snapshot.FetchedAtString(),
	}
}

// Encode implements json.Marshaler.
func (s SchemaInfo) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("url")
	e.Str(s.URL)
	e.FieldStart("fingerprint")
	e.Str(s.Fingerprint)
	e.FieldStart("fetchedAt")
	e.Str(s.FetchedAt)
	e.ObjEnd()
}

// ValidateResponse is the body of a successful POST /v1/validate.
type ValidateResponse struct {
	Valid  bool
	Errors []string
	Schema SchemaInfo
}

// Encode implements json.Marshaler.
func (r ValidateResponse) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("valid")
	e.Bool(r.Valid)
	e.FieldStart("errors")
	e.ArrStart()
	for _, msg := range r.Errors {
		e.Str(msg)
	}
	e.ArrEnd()
	e.FieldStart("schema")
	r.Schema.Encode(e)
	e.ObjEnd()
}

// ErrorResponse is the body of every failed v1 request.
type ErrorResponse struct {
	Code    string
	Message string
}

// Encode implements json.Marshaler.
func (r ErrorResponse) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("code")
	e.Str(r.Code)
	e.FieldStart("message")
	e.Str(r.Message)
	e.ObjEnd()
}

// ErrorStatusCode pairs an ErrorResponse with its HTTP status.
type ErrorStatusCode struct {
	StatusCode int
	Response   ErrorResponse
}

// Encode implements json.Marshaler.
func (s *ErrorStatusCode) Encode(e *jx.Encoder) {
	s.Response.Encode(e)
}

type encoder interface {
	Encode(e *jx.Encoder)
}
