package controller

import (
	"net/http"
	"validator/pkg/serrors"
)

// HTTPStatus maps the semantic kind of err to an HTTP status code.
func HTTPStatus(err error) int {
	switch serrors.KindOf(err) {
	case nil:
		return http.StatusOK
	case serrors.ErrBadRequest:
		return http.StatusBadRequest
	case serrors.ErrNotFound:
		return http.StatusNotFound
	case serrors.ErrMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case serrors.ErrFetch, serrors.ErrSchemaParse:
		return http.StatusBadGateway
	case serrors.ErrUnavailable:
		return http.StatusServiceUnavailable
	case serrors.ErrTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
