/*
Package handler provides the HTTP surface of the relay: connection
upgrades, the room status API, and attachment presigning.

This file serves the side-channel room endpoints: status lookup,
create-if-absent for a chosen ID, and creation under a generated ID.
*/
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fadechat/internal/pkg/errs"
	"fadechat/internal/pkg/randx"
	"fadechat/internal/pkg/resp"
)

// roomStatusBody is the 200 document for GET /room/{roomId}.
type roomStatusBody struct {
	RoomID       string `json:"roomId"`
	TimeLeft     int64  `json:"timeLeft"`
	UserCount    int    `json:"userCount"`
	MessageCount int    `json:"messageCount"`
	CreatedAt    string `json:"createdAt"`
	ExpiresAt    string `json:"expiresAt"`
}

// roomCreatedBody is the response for the room creation endpoints.
type roomCreatedBody struct {
	RoomID   string `json:"roomId"`
	TimeLeft int64  `json:"timeLeft"`
	Created  bool   `json:"created"`
}

// HandleRoomStatus serves GET /room/{roomId}: a snapshot of a live room,
// or 404 when the room is absent or expired. The lookup itself applies the
// store's lazy eviction.
func HandleRoomStatus(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomId")

		st, ok := deps.Store.Stat(roomID)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
			return
		}

		resp.RespondOK(w, r, roomStatusBody{
			RoomID:       st.RoomID,
			TimeLeft:     int64(st.TimeLeft.Seconds()),
			UserCount:    st.UserCount,
			MessageCount: st.MessageCount,
			CreatedAt:    st.CreatedAt.Format(time.RFC3339),
			ExpiresAt:    st.ExpiresAt.Format(time.RFC3339),
		})
	}
}

// HandleEnsureRoom serves POST /room/{roomId}: create the room when it is
// absent or expired, leave it untouched otherwise.
func HandleEnsureRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomId")

		if !randx.IsValidRoomID(roomID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if !deps.Store.Exists(roomID) {
			deps.Store.Create(roomID)
		}

		resp.RespondOK(w, r, roomCreatedBody{
			RoomID:   roomID,
			TimeLeft: int64(deps.Store.TimeLeft(roomID).Seconds()),
			Created:  true,
		})
	}
}

// HandleCreateRoom serves POST /room: create a fresh room under a
// generated Base62 ID.
func HandleCreateRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID, err := randx.RoomID()
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		st := deps.Store.Create(roomID)

		resp.RespondOK(w, r, roomCreatedBody{
			RoomID:   roomID,
			TimeLeft: int64(st.TimeLeft.Seconds()),
			Created:  true,
		})
	}
}
