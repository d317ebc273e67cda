/*
Package resp provides helpers for writing JSON responses on the relay's
side-channel HTTP API.

The status endpoints answer with plain documents ({roomId, timeLeft, ...})
and errors as {"error": message}, so the helpers here write arbitrary
payloads rather than a fixed envelope.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"fadechat/internal/pkg/errs"
	"fadechat/internal/pkg/logx"
)

// errorBody is the error document returned by the status API.
type errorBody struct {
	Error string `json:"error"`
}

// RespondJSON writes payload as JSON with the given HTTP status.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(
			err,
			"Error encoding JSON response",
			"http_status", httpStatus,
		)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	w.Write(response)
}

// RespondOK writes payload with HTTP 200.
func RespondOK(w http.ResponseWriter, r *http.Request, payload any) {
	RespondJSON(w, r, http.StatusOK, payload)
}

// RespondError writes {"error": message} with the error's HTTP status.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	RespondJSON(w, r, customErr.Status, errorBody{Error: customErr.Message})
}
