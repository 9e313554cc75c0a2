package adapter

import (
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}
	apiErr := &APIError{Status: resp.StatusCode(), Body: body}

	switch code := resp.StatusCode(); {
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		apiErr.Err = ErrBadRequest
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		apiErr.Err = ErrUnauthorized
	case code == http.StatusNotFound:
		apiErr.Err = ErrNotFound
	case code == http.StatusTooManyRequests:
		apiErr.Err = ErrRateLimited
	case code >= http.StatusInternalServerError:
		apiErr.Err = ErrServer
	}
	return apiErr
}
