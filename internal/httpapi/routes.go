package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wolfpen/backend/internal/config"
	"github.com/wolfpen/backend/internal/directory"
	"github.com/wolfpen/backend/internal/ws"
)

func SetupRoutes(d *directory.Directory, cfg config.Config, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(d, log))
	r.Get("/lobbies", LobbyIndex(d))
	r.Get("/lobbies/{roomID}/qr", LobbyQR(cfg.PublicBaseURL))
	return r
}
