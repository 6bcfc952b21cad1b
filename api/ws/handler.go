package ws

import (
	"net/http"

	gws "github.com/gorilla/websocket"

	"github.com/nihalshetty-boop/listri/internal/presence"
	"github.com/nihalshetty-boop/listri/internal/router"
	"github.com/nihalshetty-boop/listri/internal/websocket"
	"github.com/nihalshetty-boop/listri/pkg/logger"
)

var upgrader = gws.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for testing; restrict in production.
	},
}

// HandleWebSocket upgrades the request and starts the connection pumps. The
// username query parameter identifies the client for presence tracking.
func HandleWebSocket(
	hub *websocket.Hub,
	rtr *router.Router,
	tracker presence.Tracker,
	logg logger.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := r.URL.Query().Get("username")
		if username == "" {
			http.Error(w, "username is required", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logg.Errorf("upgrade error: %v", err)
			return
		}

		if err := tracker.AddActiveUser(r.Context(), username); err != nil {
			logg.Errorf("failed to add active user %s: %v", username, err)
		}

		client := websocket.NewConnection(conn, hub, rtr, tracker, username, logg)
		hub.Register <- client
		logg.Infof("new connection from %s (user=%s)", conn.RemoteAddr(), username)

		go client.ReadPump()
		go client.WritePump()
	}
}
