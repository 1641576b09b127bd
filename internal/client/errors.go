package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gameghor/internal/apperr"
)

// KindForStatus maps an HTTP status code back to an error kind.
func KindForStatus(code int) apperr.Kind {
	switch code {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperr.KindValidation
	case http.StatusUnauthorized:
		return apperr.KindAuth
	case http.StatusForbidden:
		return apperr.KindAuthorization
	case http.StatusNotFound:
		return apperr.KindNotFound
	case http.StatusConflict:
		return apperr.KindInvalidTransition
	default:
		return apperr.KindTransport
	}
}

// decodeError turns a non-2xx response into a classified error carrying the
// server's detail message.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload struct {
		Detail string `json:"detail"`
	}
	detail := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		detail = strings.TrimSpace(payload.Detail)
	}
	if detail == "" {
		detail = strings.TrimSpace(string(body))
	}
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}

	kind := KindForStatus(resp.StatusCode)
	if kind == apperr.KindTransport {
		return apperr.Transport(fmt.Errorf("unexpected status %d", resp.StatusCode), "%s", detail)
	}
	return &apperr.Error{Kind: kind, Detail: detail}
}
