package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/wolfpen/backend/internal/directory"
	"github.com/wolfpen/backend/internal/game"
)

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// LobbyIndex mirrors the websocket LobbyList message over plain HTTP, for
// ops tooling and the landing page.
func LobbyIndex(d *directory.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Lobbies any `json:"lobbies"`
		}{Lobbies: d.Lobbies()})
	}
}

// LobbyQR renders a QR code pointing phones at the join URL for a room.
func LobbyQR(baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID, err := game.SanitizeRoomID(chi.URLParam(r, "roomID"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		joinURL := fmt.Sprintf("%s/?room=%s", baseURL, roomID)
		png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
		if err != nil {
			http.Error(w, "failed to render qr code", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}
