/*
Package handler provides the HTTP surface of the relay: connection
upgrades, the room status API, and attachment presigning.

This file serves attachment presigning. Attachment bytes never cross the
relay: uploads and downloads go straight to the object store through
short-lived presigned URLs, and file keys stay scoped to their room.
*/
package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"fadechat/internal/app/room"
	"fadechat/internal/pkg/errs"
	"fadechat/internal/pkg/randx"
	"fadechat/internal/pkg/req"
	"fadechat/internal/pkg/resp"
)

// PresignUploadInput is the JSON body for the upload-presign endpoint.
type PresignUploadInput struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// HandlePresignUpload serves POST /room/{roomId}/attachments/presign:
// validate the declared file, mint a room-scoped key, and hand back a
// presigned PUT URL plus the message kind the upload maps to.
func HandlePresignUpload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.StorageService == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageDisabled))
			return
		}

		roomID := chi.URLParam(r, "roomId")
		if !randx.IsValidRoomID(roomID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if !deps.Store.Exists(roomID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
			return
		}

		var input PresignUploadInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := room.ValidateFileSize(input.FileSize); err != nil {
			resp.RespondError(w, r, err)
			return
		}

		if err := room.ValidateFileType(input.FileName, input.MimeType); err != nil {
			resp.RespondError(w, r, err)
			return
		}

		fileExt := strings.ToLower(filepath.Ext(input.FileName))
		fileKey := fmt.Sprintf("%s/%s%s", roomID, randx.FileID(), fileExt)

		uploadURL, err := deps.StorageService.PresignUpload(
			r.Context(),
			fileKey,
			input.MimeType,
			input.FileSize,
			room.PresignedURLDuration,
		)

		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		// fileUrl is the durable reference clients embed in messages; it
		// resolves through the download endpoint, not the store directly.
		fileURL := fmt.Sprintf("/attachments?roomId=%s&k=%s",
			url.QueryEscape(roomID), url.QueryEscape(fileKey))

		resp.RespondOK(w, r, map[string]any{
			"presignedUrl": uploadURL,
			"fileKey":      fileKey,
			"fileName":     input.FileName,
			"fileUrl":      fileURL,
			"kind":         room.KindForMIME(input.MimeType),
		})
	}
}

// HandlePresignDownload serves GET /attachments?roomId=...&k=...: redirect
// to a presigned GET URL for a key inside the room's namespace.
func HandlePresignDownload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.StorageService == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageDisabled))
			return
		}

		roomID := r.URL.Query().Get("roomId")
		fileKey := r.URL.Query().Get("k")
		if !randx.IsValidRoomID(roomID) || fileKey == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if !strings.HasPrefix(fileKey, roomID+"/") {
			resp.RespondError(w, r, errs.NewError(errs.ErrAttachmentKeyInvalid))
			return
		}

		url, err := deps.StorageService.PresignDownload(
			r.Context(),
			fileKey,
			room.PresignedURLDuration,
		)

		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		http.Redirect(w, r, url, http.StatusFound)
	}
}
