package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// PingInterval est la période des pings envoyés sur les WebSockets
const PingInterval = 30 * time.Second

// NewUpgrader n'accepte que les origines listées ; sans liste, ou sans en-tête Origin, tout passe
func NewUpgrader(origins []string) websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(origins) == 0 {
				return true
			}
			for _, o := range origins {
				if o == origin || o == "*" {
					return true
				}
			}
			return false
		},
	}
}
