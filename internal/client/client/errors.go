package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/gallerist/internal/common"
)

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// mapStatus turns a non-2xx response into a sentinel-wrapped error.
func mapStatus(resp *http.Response) error {
	var sentinel error
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		sentinel = common.ErrorUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		sentinel = common.ErrorForbidden
	case resp.StatusCode == http.StatusNotFound:
		sentinel = common.ErrorNotFound
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnprocessableEntity,
		resp.StatusCode == http.StatusConflict:
		sentinel = common.ErrorValidation
	case resp.StatusCode >= 500:
		sentinel = common.ErrorUnavailable
	default:
		sentinel = common.ErrorInternal
	}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body errorBody
	if json.Unmarshal(b, &body) == nil {
		if msg := body.Message; msg != "" {
			return fmt.Errorf("%w: %s", sentinel, msg)
		}
		if msg := body.Error; msg != "" {
			return fmt.Errorf("%w: %s", sentinel, msg)
		}
	}
	return sentinel
}

// mapError wraps transport failures. Context cancellation is passed through
// untouched so callers can tell it apart from an outage.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", common.ErrorUnavailable, err)
}
