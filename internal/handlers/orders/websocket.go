package orders

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"supply_order_back_end/internal/cache"
	"supply_order_back_end/internal/handlers"
)

// EventSource fournit l'abonnement aux événements du registre
type EventSource interface {
	Subscribe(ctx context.Context) *redis.PubSub
}

// LedgerWebSocket GET /ws/orders : pousse chaque modification du registre aux pages de réception
func (h *Handler) LedgerWebSocket(c *gin.Context) {
	if h.Events == nil {
		handlers.Fail(c, http.StatusServiceUnavailable, "Temps réel indisponible (Redis non configuré)")
		return
	}

	upgrader := handlers.NewUpgrader(h.Origins)
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pubsub := h.Events.Subscribe(ctx)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		log.Printf("❌ Abonnement au registre impossible: %v", err)
		return
	}
	ch := pubsub.Channel()

	// Lecture en tâche de fond pour détecter la fermeture côté client
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(gin.H{"type": "connected", "message": "Suivi du registre activé"}); err != nil {
		return
	}

	ticker := time.NewTicker(handlers.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			ev, err := cache.DecodeLedgerEvent(msg.Payload)
			if err != nil {
				log.Printf("⚠️ Événement illisible: %v", err)
				continue
			}
			if err := conn.WriteJSON(ev); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
