/*
Package handler provides the HTTP surface of the relay: connection
upgrades, the room status API, and attachment presigning.

This file wires the chi router: CORS, request logging, per-IP rate limits,
and the route table.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"fadechat/internal/pkg/limiter"
	"fadechat/internal/pkg/logx"
	"fadechat/internal/pkg/resp"
)

// Rate limits for the write-ish endpoints, per client IP.
const (
	CreateRate   = 0.2
	CreateBurst  = 5
	ConnectRate  = 1.0
	ConnectBurst = 10
)

// Router builds the HTTP routing table over the app's dependencies.
func Router(deps *AppDeps) http.Handler {
	createLimiter := limiter.NewIPRateLimiter(rate.Limit(CreateRate), CreateBurst)
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondOK(w, r, map[string]string{
			"status":  "ok",
			"service": "Fade Chat Relay",
		})
	})

	r.Route("/room", func(api chi.Router) {
		api.With(createLimiter.Middleware).Post("/", HandleCreateRoom(deps))
		api.Get("/{roomId}", HandleRoomStatus(deps))
		api.With(createLimiter.Middleware).Post("/{roomId}", HandleEnsureRoom(deps))
		api.Post("/{roomId}/attachments/presign", HandlePresignUpload(deps))
	})

	r.Get("/attachments", HandlePresignDownload(deps))

	r.Get("/ws", HandleWebSocket(deps, wsUpgrader, connectLimiter))

	return r
}
