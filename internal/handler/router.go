/*
Package handler provides the HTTP handlers and routing setup for the chat server.

This file defines the main Router, applying middleware for CORS, request IDs,
logging and panic recovery before delegating to the room API and the
WebSocket endpoint.
*/
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"roomchat/internal/pkg/limiter"
	"roomchat/internal/pkg/logx"
	"roomchat/internal/pkg/resp"
)

const (
	// CreateRate is the sustained per-IP rate of POST /api/rooms, in requests per second.
	CreateRate = 0.2

	// CreateBurst is the number of room creations an IP may make before CreateRate applies.
	CreateBurst = 5
)

// Router sets up the main HTTP routing table for the application.
// Background limiter cleanup stops when ctx is done.
func Router(ctx context.Context, deps *AppDeps) http.Handler {
	createLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(CreateRate), CreateBurst, limiter.DefaultCleanupInterval)
	wsLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(deps.Config.WSRate), deps.Config.WSBurst, limiter.DefaultCleanupInterval)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
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
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]any{
			"status":   "ok",
			"service":  "roomchat",
			"sessions": deps.Manager.SessionCount(),
		})
	})

	r.Route("/api/rooms", func(rooms chi.Router) {
		rooms.Get("/", HandleListRooms(deps))
		rooms.With(createLimiter.Middleware).Post("/", HandleCreateRoom(deps))
		rooms.Get("/{roomID}/messages", HandleRoomHistory(deps))
	})

	r.Get("/ws", HandleWebSocket(deps, wsUpgrader, wsLimiter))

	return r
}
