package carts

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"supply_order_back_end/internal/cart"
	"supply_order_back_end/internal/handlers"
)

// Watcher fournit l'abonnement aux changements d'un panier
type Watcher interface {
	Subscribe(ctx context.Context, cartID string) *redis.PubSub
}

// CartWebSocket GET /ws/carts/:cartId : synchronise le panier entre les onglets d'une session
func (h *Handler) CartWebSocket(c *gin.Context) {
	if h.Watch == nil {
		handlers.Fail(c, http.StatusServiceUnavailable, "Temps réel indisponible (Redis non configuré)")
		return
	}
	cartID := c.Param("cartId")
	if _, err := h.Carts.Load(c.Request.Context(), cartID); err != nil {
		handlers.FailErr(c, err)
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

	pubsub := h.Watch.Subscribe(ctx, cartID)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		log.Printf("❌ Abonnement au panier %s impossible: %v", cartID, err)
		return
	}
	ch := pubsub.Channel()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(gin.H{"type": "connected", "message": "Synchronisation panier activée"}); err != nil {
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
			var response gin.H
			switch msg.Payload {
			case cart.MessageUpdated:
				ct, err := h.Carts.Load(ctx, cartID)
				if err != nil {
					response = gin.H{"type": "cart_cleared"}
					break
				}
				response = gin.H{"type": "cart_updated", "cart": ct, "totals": ct.Totals()}
			case cart.MessageCleared:
				response = gin.H{"type": "cart_cleared"}
			default:
				continue
			}
			if err := conn.WriteJSON(response); err != nil {
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
