/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains the HandleWebSocket function, which is responsible for rate limiting,
upgrading the HTTP connection to WebSocket, and running the client lifecycle.
*/
package handler

import (
	"context"
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"roomchat/internal/app/chat"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/limiter"
	"roomchat/internal/pkg/logx"
	"roomchat/internal/pkg/randx"
	"roomchat/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
// The handler blocks for the lifetime of the connection.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", logx.AnonymizeIP(ip))
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(randx.ConnectionID(), conn, deps.Config.MaxMessageBytes)
		session := deps.Manager.Open(client)

		logx.Info("WebSocket connection established.", "connection_id", client.ID())

		go client.WritePump()

		client.ReadPump(context.WithoutCancel(r.Context()), deps.Manager, session)
	}
}
