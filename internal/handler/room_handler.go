/*
Package handler provides HTTP handler functions for listing, creating and reading rooms.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
	"roomchat/internal/pkg/randx"
	"roomchat/internal/pkg/req"
	"roomchat/internal/pkg/resp"
)

// MaxHistoryLimit caps the limit query parameter of the history endpoint.
const MaxHistoryLimit = 100

var validate = validator.New()

type CreateRoomInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description,omitempty" validate:"max=500"`
}

// HandleListRooms returns every room in creation order.
func HandleListRooms(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms, err := deps.Directory.ListRooms(r.Context())
		if err != nil {
			logx.Error(err, "Failed to list rooms")
			resp.RespondError(w, r, errs.From(err))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"rooms": rooms})
	}
}

// HandleCreateRoom creates a room; live WebSocket sessions are notified like for a createRoom event.
func HandleCreateRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CreateRoomInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := validate.Struct(input); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidInput, "name is required and must be at most 100 characters"))
			return
		}

		room, err := deps.Directory.CreateRoom(r.Context(), "", input.Name, input.Description)
		if err != nil {
			resp.RespondError(w, r, errs.From(err))
			return
		}

		resp.RespondSuccess(w, r, room)
	}
}

// HandleRoomHistory returns the latest messages of a room in chronological order.
// A roomID that is not a room identifier is reported as RoomNotFound without a store lookup.
func HandleRoomHistory(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomID")
		if !randx.IsValidID(roomID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
			return
		}

		limit, customErr := req.QueryInt(r, "limit", deps.Config.HistoryLimit, MaxHistoryLimit)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		room, err := deps.Directory.FindRoom(r.Context(), roomID)
		if err != nil {
			resp.RespondError(w, r, errs.From(err))
			return
		}

		messages, err := deps.Channel.RecentHistory(r.Context(), room.ID, limit)
		if err != nil {
			logx.Error(err, "Failed to load room history", "room_id", room.ID)
			resp.RespondError(w, r, errs.From(err))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"roomId":   room.ID,
			"roomName": room.Name,
			"messages": messages,
		})
	}
}
