/*
Package req provides helper functions for HTTP request parsing and data binding.

It decodes JSON bodies strictly (unknown fields and trailing data are
rejected) and reads bounded numeric query parameters, reporting failures as
errs.CustomError values ready for resp.RespondError.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"roomchat/internal/pkg/errs"
)

// MaxJSONBodyBytes bounds the size of a JSON request body (64 KB).
const MaxJSONBodyBytes int64 = 64 << 10

// BindJSON decodes the JSON body of r into dst.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxJSONBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// QueryInt reads the integer query parameter key of r.
// A missing parameter yields def; values outside [1, max] are rejected.
func QueryInt(r *http.Request, key string, def, max int) (int, *errs.CustomError) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > max {
		return 0, errs.NewError(errs.ErrInvalidInput, key+" must be between 1 and "+strconv.Itoa(max))
	}

	return n, nil
}
