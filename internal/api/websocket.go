// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

package api

import (
	"net/http"

	gws "github.com/gorilla/websocket"

	"github.com/tomtom215/proscenium/internal/logging"
	"github.com/tomtom215/proscenium/internal/websocket"
)

// WebSocketHandler upgrades connections and hands them to the hub. Clients
// receive refresh_completed notifications pushed after each trigger
// invocation that refreshed anything.
type WebSocketHandler struct {
	hub      *websocket.Hub
	upgrader gws.Upgrader
}

// NewWebSocketHandler creates the upgrade handler. allowedOrigins uses the
// same origin list as the CORS layer; an empty list allows same-host
// connections only.
func NewWebSocketHandler(hub *websocket.Hub, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: gws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// ServeWS handles GET /api/v1/ws.
func (ws *WebSocketHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logging.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("WebSocket upgrade failed")
		return
	}

	client := websocket.NewClient(ws.hub, conn)
	ws.hub.Register <- client
	client.Start()
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil // gorilla default: same-host origins only
	}
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
