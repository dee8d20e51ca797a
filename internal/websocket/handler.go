package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"
)

// HandleWebSocket returns an HTTP handler that upgrades connections to WebSocket
// and runs them as Hub clients.
func HandleWebSocket(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // kitchen consoles on the hospital LAN
		})
		if err != nil {
			hub.logger.Warn("websocket accept", "error", err, "remote", r.RemoteAddr)
			return
		}

		client := NewClient(hub, conn)
		client.Run(r.Context())
	}
}
