/*
Package resp writes the JSON envelope shared by every HTTP endpoint.

Every body has the shape {"code", "message", "data"}; code 0 means success and
any other value is one of the errs codes, the same codes carried by WebSocket
error events.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
)

// JSONResponse is the envelope returned to HTTP clients.
type JSONResponse struct {
	// Code is 0 on success, otherwise an errs code.
	Code int `json:"code"`

	Message string `json:"message"`

	Data any `json:"data,omitempty"`
}

// RespondJSON writes payload with the given status.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logx.Error(err, "Error encoding JSON response",
			"http_status", httpStatus,
			"request_id", middleware.GetReqID(r.Context()),
		)
		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(httpStatus)
	_, _ = w.Write(body)
}

// RespondSuccess writes a 200 envelope carrying data.
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusOK, JSONResponse{Code: 0, Message: "success", Data: data})
}

// RespondError writes the envelope for customErr using its HTTP status.
// A nil error is reported as ErrUnknown.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	if customErr.Status >= http.StatusInternalServerError {
		logx.Error(customErr, "Request failed",
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
		)
	}

	RespondJSON(w, r, customErr.Status, JSONResponse{Code: customErr.Code, Message: customErr.Message})
}
