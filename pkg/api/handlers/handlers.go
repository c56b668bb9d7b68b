package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cbodonnell/tycoon/pkg/api/middleware"
	"github.com/cbodonnell/tycoon/pkg/game"
	"github.com/cbodonnell/tycoon/pkg/log"
	"github.com/cbodonnell/tycoon/pkg/messages"
	"github.com/cbodonnell/tycoon/pkg/repositories/models"
	"github.com/gorilla/mux"
)

// LobbyService is the room-side of the lobby endpoints.
type LobbyService interface {
	CreateLobby(adminIdentity string) (string, error)
	ReserveAdmin(ctx context.Context, roomID string, adminIdentity string) bool
	RoomState(roomID string) (*messages.ServerState, bool)
}

// LobbyRecorder persists lobby records so later room creation can hydrate from them.
type LobbyRecorder interface {
	SaveLobby(ctx context.Context, lobby *models.Lobby) error
}

type CreateLobbyResponse struct {
	Code string `json:"code"`
}

// HandleCreateLobby creates a lobby with the caller reserved as admin.
// recorder may be nil.
func HandleCreateLobby(service LobbyService, recorder LobbyRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.IdentityFromContext(r.Context())

		code, err := service.CreateLobby(identity)
		if err != nil {
			if errors.Is(err, game.ErrLobbyCodesExhausted) {
				log.Warn("failed to create lobby: %v", err)
				http.Error(w, "No lobby codes available", http.StatusServiceUnavailable)
				return
			}
			log.Error("failed to create lobby: %v", err)
			http.Error(w, "Failed to create lobby", http.StatusInternalServerError)
			return
		}

		if recorder != nil {
			lobby := &models.Lobby{
				Code:          code,
				AdminIdentity: identity,
				CreatedAt:     time.Now().UTC(),
			}
			if err := recorder.SaveLobby(r.Context(), lobby); err != nil {
				log.Warn("failed to record lobby %s: %v", code, err)
			}
		}

		writeJSON(w, http.StatusCreated, &CreateLobbyResponse{Code: code})
	}
}

// HandleReserveAdmin reserves the caller as the pending admin of a room.
func HandleReserveAdmin(service LobbyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.IdentityFromContext(r.Context())
		if identity == "" {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		code := mux.Vars(r)["code"]
		if code == "" {
			http.Error(w, "Missing lobby code", http.StatusBadRequest)
			return
		}

		if !service.ReserveAdmin(r.Context(), code, identity) {
			http.Error(w, "Lobby already has an admin", http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleGetRoom returns the broadcast state of an existing room.
func HandleGetRoom(service LobbyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := mux.Vars(r)["code"]
		state, ok := service.RoomState(code)
		if !ok {
			http.Error(w, "Room not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}

func HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
	}
}
