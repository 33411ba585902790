package upstream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/authgateway/pkg/apierr"
)

// defaultRetryAfter applies when a 429 carries no usable Retry-After header.
const defaultRetryAfter = 60

// Provider error codes that mean the presented credential or grant is bad.
var authErrorCodes = []string{
	"invalid_credentials",
	"invalid_grant",
	"refresh_token_not_found",
	"refresh_token_already_used",
	"session_not_found",
	"session_expired",
	"bad_code_verifier",
	"flow_state_not_found",
	"flow_state_expired",
	"bad_jwt",
	"email_not_confirmed",
}

var conflictErrorCodes = []string{
	"user_already_exists",
	"email_exists",
}

// errorResponse covers both error shapes the provider emits: the current
// {code, error_code, msg} and the OAuth-style {error, error_description}.
type errorResponse struct {
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e errorResponse) code() string {
	if e.ErrorCode != "" {
		return e.ErrorCode
	}
	return e.Error
}

func (e errorResponse) message() string {
	for _, m := range []string{e.Msg, e.ErrorDescription, e.Message, e.Error} {
		if m != "" {
			return m
		}
	}
	return ""
}

// mapError converts a non-2xx provider response into the gateway taxonomy.
func mapError(resp *http.Response, body []byte) *apierr.Error {
	var er errorResponse
	_ = json.Unmarshal(body, &er)

	code := strings.ToLower(er.code())
	msg := er.message()
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	cause := fmt.Errorf("upstream: status %d: %s", resp.StatusCode, code)

	switch status := resp.StatusCode; {
	case status == http.StatusUnauthorized,
		status == http.StatusBadRequest && slices.Contains(authErrorCodes, code):
		return apierr.Authentication(apierr.CodeInvalidCredentials, msg).Wrap(cause)
	case (status == http.StatusConflict || status == http.StatusUnprocessableEntity) && slices.Contains(conflictErrorCodes, code):
		return apierr.Conflict(msg).Wrap(cause)
	case status == http.StatusConflict:
		return apierr.Conflict(msg).Wrap(cause)
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return apierr.Validation(msg).Wrap(cause)
	case status == http.StatusForbidden:
		return apierr.Forbidden(msg).Wrap(cause)
	case status == http.StatusNotFound:
		return apierr.NotFound(msg).Wrap(cause)
	case status == http.StatusRequestEntityTooLarge:
		return apierr.PayloadTooLarge(msg).Wrap(cause)
	case status == http.StatusTooManyRequests:
		return apierr.RateLimited(retryAfter(resp.Header.Get("Retry-After"))).Wrap(cause)
	default:
		return unavailable(cause)
	}
}

func retryAfter(v string) int {
	if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
		return n
	}
	return defaultRetryAfter
}

func unavailable(cause error) *apierr.Error {
	return apierr.Internal(apierr.CodeUpstreamUnavailable, "Authentication service unavailable", cause)
}
