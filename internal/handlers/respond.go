package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"supply_order_back_end/internal/cart"
	"supply_order_back_end/internal/ordering"
	"supply_order_back_end/internal/store"
)

// StatusFor associe une erreur du domaine à un statut HTTP ; le reste est une erreur de transport
func StatusFor(err error) int {
	switch {
	case ordering.IsValidation(err), errors.Is(err, cart.ErrBadQuantity):
		return http.StatusBadRequest
	case errors.Is(err, ordering.ErrOrderNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, ordering.ErrNothingToReceive), errors.Is(err, store.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ordering.ErrRateLimited):
		return http.StatusTooManyRequests
	}
	return http.StatusBadGateway
}

// TransportMessage remplace le détail d'une erreur de transport dans les réponses
const TransportMessage = "Erreur de communication avec le registre"

// ErrorStatus retourne le statut associé à err. Pour une erreur de transport, le détail
// est journalisé et *message remplacé par TransportMessage.
func ErrorStatus(c *gin.Context, err error, message *string) int {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
		*message = TransportMessage
	}
	return status
}

// Fail répond {success: false, message}
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// FailErr répond avec le statut associé à err. Les erreurs de transport ne
// sont pas détaillées au client.
func FailErr(c *gin.Context, err error) {
	message := err.Error()
	status := ErrorStatus(c, err, &message)
	Fail(c, status, message)
}
