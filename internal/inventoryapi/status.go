package inventoryapi

import (
	"context"
	"errors"
	"net/http"
)

// HTTPStatus maps an upstream failure to the status the gateway answers with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
