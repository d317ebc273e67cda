/*
Package req provides helpers for parsing HTTP request bodies.

The relay only accepts small JSON documents on its side-channel API, so the
binder is strict: exact Content-Type, no unknown fields, no trailing data.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"fadechat/internal/pkg/errs"
)

// BindJSON decodes the request body into dst.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
