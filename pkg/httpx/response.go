package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/authgateway/pkg/apierr"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 64 << 10

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// WriteError renders err using the apierr taxonomy. Anything that is not an
// *apierr.Error is reported as a 500 without leaking its text.
func WriteError(w http.ResponseWriter, err error) {
	e := apierr.From(err)
	if e.Kind == apierr.KindRateLimit {
		w.Header().Set("Retry-After", strconv.Itoa(e.RetryAfter))
	}
	WriteJSON(w, e.Status(), ErrorBody{
		Error:      e.Message,
		Code:       e.Code,
		RetryAfter: e.RetryAfter,
	})
}

// DecodeJSON reads a size-limited JSON body into dst. Oversized bodies map to
// PayloadTooLarge, anything else unreadable to Validation.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return apierr.PayloadTooLarge("Request body too large").Wrap(err)
		case errors.Is(err, io.EOF):
			return apierr.Validation("Request body is required").Wrap(err)
		default:
			return apierr.Validation("Invalid JSON body").Wrap(err)
		}
	}
	return nil
}
